package safety

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/webclient"
)

var artifactStopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "with": {}, "was": {}, "is": {}, "it": {}, "this": {}, "that": {},
	"i": {}, "my": {}, "me": {}, "all": {}, "at": {}, "by": {}, "from": {},
}

// ArtifactVerifier checks a user-submitted artifact URL against the open
// web: existence, substance, timestamp plausibility, and relevance.
type ArtifactVerifier struct {
	client webclient.WebClient
}

// NewArtifactVerifier wraps a WebClient. client may be a NoopClient, in
// which case every verification degrades to ArtifactInaccessible.
func NewArtifactVerifier(client webclient.WebClient) *ArtifactVerifier {
	return &ArtifactVerifier{client: client}
}

// Verify runs the five-step pipeline described in §4.8.
func (v *ArtifactVerifier) Verify(ctx context.Context, artifact *core.Artifact, experience *core.Experience) core.ArtifactVerification {
	now := time.Now().UTC()
	result := core.ArtifactVerification{
		ArtifactID: artifact.ID,
		VerifiedAt: now,
	}

	page, err := v.client.FetchPage(ctx, artifact.URL)
	if err != nil || !page.Accessible {
		result.Status = core.ArtifactInaccessible
		result.Notes = "artifact URL could not be fetched"
		return result
	}
	result.URLAccessible = true
	result.ContentSummary = summarize(page.ContentText)

	result.ContentSubstantive = isSubstantive(page.ContentText)

	result.TimestampPlausible = timestampPlausible(page.PublishDate, experience.Timestamp)

	result.RelevanceScore = relevance(experience, artifact, page)

	switch {
	case !result.ContentSubstantive || result.RelevanceScore < 0.10:
		result.Status = core.ArtifactUnverified
		result.Notes = "content not substantive or not relevant to the claimed experience"
	case !result.TimestampPlausible:
		result.Status = core.ArtifactSuspicious
		result.Notes = "publish date is implausibly far from the experience timestamp"
	case result.RelevanceScore >= 0.30:
		result.Status = core.ArtifactVerified
		result.Notes = "content substantive, timely, and relevant"
	default:
		result.Status = core.ArtifactUnverified
		result.Notes = "relevance below the verification threshold"
	}

	return result
}

func summarize(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= 200 {
		return body
	}
	return body[:200] + "..."
}

// isSubstantive requires at least 50 words and a unique-word ratio of at
// least 0.20 — rules out both boilerplate-short pages and word-salad spam.
func isSubstantive(body string) bool {
	words := strings.Fields(strings.ToLower(body))
	if len(words) < 50 {
		return false
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.Trim(w, ".,!?;:\"'()")] = struct{}{}
	}
	ratio := float64(len(unique)) / float64(len(words))
	return ratio >= 0.20
}

// timestampPlausible requires the publish date, when present, to fall
// within 365 days of the experience's own timestamp. Absent a publish date,
// the artifact gets the benefit of the doubt.
func timestampPlausible(publishDate *time.Time, experienceTime time.Time) bool {
	if publishDate == nil {
		return true
	}
	delta := publishDate.Sub(experienceTime)
	if delta < 0 {
		delta = -delta
	}
	return delta <= 365*24*time.Hour
}

func artifactTokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) <= 2 {
			continue
		}
		if _, stop := artifactStopwords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// relevance is a Jaccard-style recall of the experience's own vocabulary
// against the fetched page's body, plus a title-overlap bonus.
func relevance(experience *core.Experience, artifact *core.Artifact, page webclient.WebPage) float64 {
	claimTokens := artifactTokenize(fmt.Sprintf("%s %s %s", experience.Description, experience.Context, artifact.UserClaim))
	if len(claimTokens) == 0 {
		return 0
	}
	bodyTokens := artifactTokenize(page.ContentText)

	var matched int
	for w := range claimTokens {
		if _, ok := bodyTokens[w]; ok {
			matched++
		}
	}
	recall := float64(matched) / float64(len(claimTokens))

	titleTokens := artifactTokenize(page.Title)
	var titleMatched int
	for w := range claimTokens {
		if _, ok := titleTokens[w]; ok {
			titleMatched++
		}
	}
	var titleBonus float64
	if len(claimTokens) > 0 && titleMatched > 0 {
		titleBonus = 0.15 * (float64(titleMatched) / float64(len(claimTokens)))
	}

	return core.Clamp(recall+titleBonus, 0, 1)
}
