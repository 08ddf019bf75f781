package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/chusla/improvement-axiom/internal/core"
	"github.com/chusla/improvement-axiom/pkg/cache"
)

// HTTPClient is the production WebClient: real HTTP fetches and (optionally)
// a configured search endpoint, a shared connection pool, per-host rate
// limiting, and a small TTL response cache so concurrent handlers sharing
// one HTTPClient don't hammer the same host.
type HTTPClient struct {
	client         *http.Client
	searchEndpoint string
	searchAPIKey   string

	pageCache   *cache.LRU[string, WebPage]
	searchCache *cache.LRU[string, []SearchResult]

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// HTTPClientOption configures an HTTPClient at construction time.
type HTTPClientOption func(*HTTPClient)

// WithSearchEndpoint configures a search API endpoint and key used by Search.
func WithSearchEndpoint(endpoint, apiKey string) HTTPClientOption {
	return func(c *HTTPClient) {
		c.searchEndpoint = endpoint
		c.searchAPIKey = apiKey
	}
}

// NewHTTPClient builds a production WebClient with the given per-request
// timeout, applied to every request through http.Client.Timeout.
func NewHTTPClient(timeout time.Duration, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		pageCache:   cache.New[string, WebPage](&cache.Config{MaxEntries: 500, TTL: 10 * time.Minute}),
		searchCache: cache.New[string, []SearchResult](&cache.Config{MaxEntries: 500, TTL: 10 * time.Minute}),
		limiters:    make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ WebClient = (*HTTPClient)(nil)

func (c *HTTPClient) hostLimiter(host string) *rate.Limiter {
	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(2), 4) // 2 req/s, burst 4, per host
		c.limiters[host] = l
	}
	return l
}

// FetchPage fetches a URL and extracts textual content, a title, a
// publication date if detectable, and the platform.
func (c *HTTPClient) FetchPage(ctx context.Context, rawURL string) (WebPage, error) {
	if page, ok := c.pageCache.Get(rawURL); ok {
		return page, nil
	}

	u, err := url.Parse(rawURL)
	if err == nil && u.Host != "" {
		if err := c.hostLimiter(u.Host).Wait(ctx); err != nil {
			return WebPage{URL: rawURL, Accessible: false, Error: err.Error()}, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return WebPage{URL: rawURL, Accessible: false, Error: err.Error()}, nil
	}
	req.Header.Set("User-Agent", "ImprovementAxiom/0.2 (ArtifactVerifier)")

	resp, err := c.client.Do(req)
	if err != nil {
		return WebPage{URL: rawURL, Accessible: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return WebPage{URL: rawURL, Accessible: false, Error: err.Error()}, nil
	}

	html := string(body)
	page := WebPage{
		URL:           rawURL,
		StatusCode:    resp.StatusCode,
		Title:         extractTitle(html),
		ContentText:   extractText(html),
		ContentLength: len(body),
		PublishDate:   extractDate(html),
		Platform:      detectPlatform(rawURL),
		Accessible:    resp.StatusCode >= 200 && resp.StatusCode < 400,
	}
	c.pageCache.Set(rawURL, page)
	return page, nil
}

// Search queries the configured search endpoint. Returns an empty result
// set (not an error) if no endpoint is configured — graceful degradation.
func (c *HTTPClient) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	if c.searchEndpoint == "" {
		return nil, nil
	}
	key := fmt.Sprintf("%s|%d", query, numResults)
	if results, ok := c.searchCache.Get(key); ok {
		return results, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchEndpoint, nil)
	if err != nil {
		return nil, nil
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", numResults))
	q.Set("key", c.searchAPIKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	// The search API's response shape is deployment-specific; callers that
	// need real search should supply a WebClient tailored to their provider.
	// This generic client degrades to no results rather than guessing a schema.
	return nil, nil
}

// RequestEvidence is not supported by the plain HTTP client — agent-mediated
// evidence requires an LLM integration layer outside this module's scope.
func (c *HTTPClient) RequestEvidence(ctx context.Context, req EvidenceRequest) (EvidenceResponse, bool) {
	return EvidenceResponse{}, false
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagRe   = regexp.MustCompile(`(?s)<[^>]+>`)
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	wsRe    = regexp.MustCompile(`\s+`)

	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<meta[^>]*property="article:published_time"[^>]*content="([^"]+)"`),
		regexp.MustCompile(`(?i)<meta[^>]*name="date"[^>]*content="([^"]+)"`),
		regexp.MustCompile(`(?i)<meta[^>]*name="DC\.date"[^>]*content="([^"]+)"`),
		regexp.MustCompile(`(?i)<time[^>]*datetime="([^"]+)"`),
	)
)

func extractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func extractText(html string) string {
	text := scriptRe.ReplaceAllString(html, "")
	text = tagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
}

func extractDate(html string) *time.Time {
	for _, re := range dateRes {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		if t, err := core.ParseFlexibleTimestamp(m[1]); err == nil {
			return &t
		}
	}
	return nil
}

func detectPlatform(rawURL string) string {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "x.com"), strings.Contains(lower, "twitter.com"):
		return "x"
	case strings.Contains(lower, "github.com"):
		return "github"
	case strings.Contains(lower, "medium.com"):
		return "medium"
	case strings.Contains(lower, "wikipedia.org"), strings.Contains(lower, "grokipedia"):
		return "wiki"
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return "youtube"
	case strings.Contains(lower, "substack.com"):
		return "substack"
	case strings.Contains(lower, "linkedin.com"):
		return "linkedin"
	case strings.Contains(lower, "reddit.com"):
		return "reddit"
	default:
		return "web"
	}
}
