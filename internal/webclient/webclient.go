// Package webclient provides the internet-access abstraction required by
// two defence layers: ArtifactVerifier (fetch a user-submitted URL) and
// ExtrapolationModel (search for evidence about where an action typically
// leads). Multiple backends satisfy WebClient: HTTPClient for production,
// MockClient for tests, and NoopClient for graceful degradation when no
// internet access is configured.
package webclient

import (
	"context"
	"time"
)

// WebPage is the content fetched from a URL.
type WebPage struct {
	URL           string
	StatusCode    int
	Title         string
	ContentText   string
	ContentLength int
	PublishDate   *time.Time
	Platform      string
	Accessible    bool
	Error         string
}

// WordCount returns the number of whitespace-separated tokens in the page body.
func (p WebPage) WordCount() int {
	return len(splitWords(p.ContentText))
}

// IsSubstantive reports whether the page carries meaningful textual content
// rather than boilerplate: at least 50 words.
func (p WebPage) IsSubstantive() bool {
	return p.WordCount() >= 50
}

// SearchResult is a single result from a web search.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
	Source  string
	Date    *time.Time
}

// EvidenceType names one of the four structured evidence requests a
// WebClient may optionally support via RequestEvidence.
type EvidenceType string

const (
	EvidenceArtifactVerify     EvidenceType = "ARTIFACT_VERIFY"
	EvidenceTrajectorySearch   EvidenceType = "TRAJECTORY_SEARCH"
	EvidenceQualityEvidence    EvidenceType = "QUALITY_EVIDENCE"
	EvidenceVectorProbability  EvidenceType = "VECTOR_PROBABILITY"
)

// EvidenceRequest is a natural-language query plus structured context for
// one of the four supported evidence types.
type EvidenceRequest struct {
	Type    EvidenceType
	Query   string
	Context map[string]any
}

// EvidenceResponse is the agent-mediated reply to an EvidenceRequest. Only
// the fields relevant to Type are populated.
type EvidenceResponse struct {
	Success                bool
	Summary                string
	SourceURLs             []string
	Confidence             float64
	QualityScore           float64
	QualityDimensions      map[string]float64
	CreativeProbability    float64
	ConsumptiveProbability float64
	KeyFactors             []string
	ResolutionHorizon      string
}

// WebClient is the abstract internet-access layer. Concrete implementations
// provide real HTTP, canned test responses, or a no-op for offline mode.
type WebClient interface {
	FetchPage(ctx context.Context, url string) (WebPage, error)
	Search(ctx context.Context, query string, numResults int) ([]SearchResult, error)
	// RequestEvidence is optional: implementations that don't support
	// agent-mediated evidence should return (EvidenceResponse{}, false).
	RequestEvidence(ctx context.Context, req EvidenceRequest) (EvidenceResponse, bool)
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}
