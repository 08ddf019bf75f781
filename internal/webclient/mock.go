package webclient

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a WebClient returning canned responses for tests. Register
// fixtures with AddPage/AddSearchResults before use.
type MockClient struct {
	mu      sync.Mutex
	pages   map[string]WebPage
	results map[string][]SearchResult
}

var _ WebClient = (*MockClient)(nil)

// NewMockClient returns an empty MockClient ready to have fixtures registered.
func NewMockClient() *MockClient {
	return &MockClient{
		pages:   make(map[string]WebPage),
		results: make(map[string][]SearchResult),
	}
}

// AddPage registers the page to be returned when FetchPage(url) is called.
func (m *MockClient) AddPage(url string, page WebPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = page
}

// AddSearchResults registers results to be returned for an exact or
// fuzzy-matching Search(query) call.
func (m *MockClient) AddSearchResults(query string, results []SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[query] = results
}

func (m *MockClient) FetchPage(ctx context.Context, url string) (WebPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page, ok := m.pages[url]; ok {
		return page, nil
	}
	return WebPage{URL: url, Accessible: false, Error: "mock: URL not configured"}, nil
}

// Search tries an exact query match first, then falls back to flexible
// word-overlap matching against registered fixture keys, mirroring how a
// real search engine would loosely match a query to indexed content.
func (m *MockClient) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if results, ok := m.results[query]; ok {
		return capResults(results, numResults), nil
	}

	queryWords := wordSet(query)
	var best []SearchResult
	bestOverlap := 0
	for key, results := range m.results {
		keyWords := wordSet(key)
		overlap := len(intersect(queryWords, keyWords))
		threshold := float64(len(keyWords)) * 0.5
		if threshold < 1 {
			threshold = 1
		}
		if overlap > bestOverlap && float64(overlap) >= threshold {
			bestOverlap = overlap
			best = results
		}
	}
	return capResults(best, numResults), nil
}

func (m *MockClient) RequestEvidence(ctx context.Context, req EvidenceRequest) (EvidenceResponse, bool) {
	return EvidenceResponse{}, false
}

func capResults(results []SearchResult, n int) []SearchResult {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for w := range a {
		if _, ok := b[w]; ok {
			out[w] = struct{}{}
		}
	}
	return out
}
