// Package extrapolation generates evidence-backed hypotheses about where an
// action pattern typically leads, by searching public sources. It is a
// mentor, not a judge: every hypothesis cites sources, names distinguishing
// factors and notable exceptions, and ends on an empowering note. The model
// degrades gracefully to an empty evidence set when search is unavailable
// or too thin to synthesise from.
package extrapolation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/internal/webclient"
)

const (
	maxHypotheses           = 3
	minResultsForHypothesis = 2
)

var fillerPrefixes = []string{
	"i have been ", "i've been ", "i was ", "i am ",
	"i started ", "been ", "started ",
}

var creativeKeywords = []string{
	"career", "professional", "creative", "develop",
	"build", "create", "skill", "mastery", "success",
}

var consumptiveKeywords = []string{
	"addiction", "waste", "decline", "negative",
	"harm", "risk", "concern", "problem",
}

// Model searches public sources via a WebClient for documented evidence
// about what similar actions typically lead to, then synthesises hypotheses.
type Model struct {
	client webclient.WebClient
}

// NewModel wraps a WebClient. A nil client means the caller should instead
// use ExternalValidator's degraded path; Model itself assumes client is set.
func NewModel(client webclient.WebClient) *Model {
	return &Model{client: client}
}

// Hypothesise builds 3-4 search queries from experience's description,
// searches, dedups by URL, partitions into thematic clusters, and emits up
// to 3 hypotheses.
func (m *Model) Hypothesise(ctx context.Context, experience *core.Experience, trajectory *core.Trajectory) core.TrajectoryEvidence {
	queries := buildSearchQueries(experience)

	var allResults []webclient.SearchResult
	for _, q := range queries {
		results, err := m.client.Search(ctx, q, 5)
		if err != nil {
			continue
		}
		allResults = append(allResults, results...)
	}

	if len(allResults) < minResultsForHypothesis {
		return core.TrajectoryEvidence{
			Query:             experience.Description,
			SearchTimestamp:   time.Now().UTC(),
			TotalSourcesFound: len(allResults),
			Note: "Insufficient public evidence found for this specific action pattern. " +
				"The system continues with other defence layers. As more evidence becomes available, this will improve.",
		}
	}

	hypotheses := synthesiseHypotheses(experience, allResults, trajectory)

	return core.TrajectoryEvidence{
		Query:             experience.Description,
		Hypotheses:        hypotheses,
		SearchTimestamp:   time.Now().UTC(),
		TotalSourcesFound: len(allResults),
		Note:              buildEvidenceNote(len(allResults), len(hypotheses)),
	}
}

func buildSearchQueries(experience *core.Experience) []string {
	desc := strings.TrimSpace(experience.Description)
	if desc == "" {
		return nil
	}
	action := extractActionPhrase(desc)

	queries := []string{
		fmt.Sprintf("%s long term outcomes", action),
		fmt.Sprintf("%s career development research", action),
		fmt.Sprintf("%s creative results examples", action),
	}
	if experience.Context != "" {
		queries = append(queries, fmt.Sprintf("%s %s outcomes", action, experience.Context))
	}
	if len(queries) > 4 {
		queries = queries[:4]
	}
	return queries
}

func extractActionPhrase(description string) string {
	lower := strings.ToLower(description)
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			description = description[len(prefix):]
			break
		}
	}
	words := strings.Fields(description)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

func synthesiseHypotheses(experience *core.Experience, results []webclient.SearchResult, trajectory *core.Trajectory) []core.ExtrapolationHypothesis {
	var hypotheses []core.ExtrapolationHypothesis

	seenURLs := make(map[string]struct{})
	var unique []webclient.SearchResult
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if _, seen := seenURLs[r.URL]; seen {
			continue
		}
		seenURLs[r.URL] = struct{}{}
		unique = append(unique, r)
	}
	if len(unique) == 0 {
		return hypotheses
	}

	var creativeResults, consumptiveResults, neutralResults []webclient.SearchResult
	for _, r := range unique {
		text := strings.ToLower(r.Title + r.Snippet)
		switch {
		case containsAny(text, creativeKeywords):
			creativeResults = append(creativeResults, r)
		case containsAny(text, consumptiveKeywords):
			consumptiveResults = append(consumptiveResults, r)
		default:
			neutralResults = append(neutralResults, r)
		}
	}

	action := extractActionPhrase(experience.Description)

	if len(consumptiveResults) > 0 || len(neutralResults) > 0 {
		majority := append(append([]webclient.SearchResult{}, consumptiveResults...), neutralResults...)
		if len(majority) > 5 {
			majority = majority[:5]
		}
		hypotheses = append(hypotheses, core.ExtrapolationHypothesis{
			ActionPattern: action,
			TypicalTrajectory: fmt.Sprintf(
				"For most people, %s remains a consumptive activity — enjoyed but not leveraged into creation or skill development.",
				action,
			),
			ProbabilityEstimate: 0.6,
			DistinguishingFactors: []string{
				"Intentional practice vs. passive consumption",
				"Setting time boundaries and creative goals",
				"Seeking community of practitioners, not just consumers",
				"Documenting and sharing the experience",
			},
			NotableExceptions: []string{
				"Many professionals in creative fields trace their passion to an early consumptive phase that sparked curiosity.",
			},
			Sources: urlsOf(majority),
			EmpowermentNote: fmt.Sprintf(
				"This is the statistical baseline, not your destiny. The distinguishing factors above are actionable. "+
					"If %s sparks something in you, lean into the creative impulse — that's the vector that matters.",
				action,
			),
			Confidence: math.Min(0.3+float64(len(majority))*0.1, 0.7),
		})
	}

	if len(creativeResults) > 0 {
		capped := creativeResults
		if len(capped) > 5 {
			capped = capped[:5]
		}
		hypotheses = append(hypotheses, core.ExtrapolationHypothesis{
			ActionPattern: action,
			TypicalTrajectory: fmt.Sprintf(
				"A meaningful minority leverage %s into creative output, skill development, or career growth.", action,
			),
			ProbabilityEstimate: 0.25,
			DistinguishingFactors: []string{
				"Active engagement: analysing, not just consuming",
				"Creating derivative or original work",
				"Teaching or sharing insights with others",
				"Connecting the activity to broader goals",
			},
			NotableExceptions: []string{
				"Some of the most successful creators in this space had unconventional paths that wouldn't have been predicted by early patterns.",
			},
			Sources: urlsOf(capped),
			EmpowermentNote: fmt.Sprintf(
				"You don't need to fit a pattern. The evidence shows that the transition from consumer to creator "+
					"often starts with a single intentional act. What could you create from this experience?",
			),
			Confidence: math.Min(0.3+float64(len(creativeResults))*0.1, 0.7),
		})
	}

	if trajectory != nil && len(trajectory.Experiences) >= 3 {
		direction := trajectory.CurrentVector.Direction
		var trend, note string
		switch {
		case direction > 0.2:
			trend = "creative"
			note = "Your trajectory shows a creative trend. Based on your pattern of turning experiences into creation, " +
				"you're more likely than average to leverage this productively."
		case direction < -0.2:
			trend = "consumptive"
			note = "Your recent trajectory leans consumptive. This isn't a judgment — it's an observation. " +
				"Small creative acts can shift the vector. What's one thing you could make from this experience?"
		default:
			trend = "mixed"
			note = "Your trajectory is balanced. You have creative and consumptive phases. The evidence suggests " +
				"that intentionally choosing to create after consuming is the key inflection point."
		}

		hypotheses = append(hypotheses, core.ExtrapolationHypothesis{
			ActionPattern:       action,
			TypicalTrajectory:   fmt.Sprintf("Based on your personal trajectory (%s trend), combined with public evidence about %s.", trend, action),
			ProbabilityEstimate: 0, // not a probability — personalised
			DistinguishingFactors: []string{
				"Your own creation rate and propagation history",
				"Whether this specific experience leads to follow-up action",
				"The compounding direction of your vector over time",
			},
			NotableExceptions: []string{
				"Trajectories can change at any point. A single powerful experience can redirect the entire vector.",
			},
			Sources:         nil,
			EmpowermentNote: note,
			Confidence:      math.Min(trajectory.CurrentVector.Confidence, 0.6),
		})
	}

	if len(hypotheses) > maxHypotheses {
		hypotheses = hypotheses[:maxHypotheses]
	}
	return hypotheses
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func urlsOf(results []webclient.SearchResult) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

func buildEvidenceNote(totalSources, numHypotheses int) string {
	switch {
	case totalSources == 0:
		return "No public evidence found. The system operates with lower confidence on this action pattern."
	case totalSources < 5:
		return fmt.Sprintf(
			"Limited evidence (%d sources). Hypotheses are directional, not definitive. More evidence will improve accuracy over time.",
			totalSources,
		)
	default:
		return fmt.Sprintf(
			"Found %d relevant sources, generating %d hypothesis(es). All hypotheses are probabilistic, not deterministic. "+
				"You are not a statistic — the distinguishing factors matter more than the base rates.",
			totalSources, numHypotheses,
		)
	}
}
