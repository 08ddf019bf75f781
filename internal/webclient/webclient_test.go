package webclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopClientDegradesEveryCall(t *testing.T) {
	c := NoopClient{}
	page, err := c.FetchPage(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, page.Accessible)

	results, err := c.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Nil(t, results)

	_, ok := c.RequestEvidence(context.Background(), EvidenceRequest{})
	assert.False(t, ok)
}

func TestMockClientFetchPageReturnsRegisteredFixture(t *testing.T) {
	c := NewMockClient()
	c.AddPage("https://example.com/x", WebPage{URL: "https://example.com/x", Accessible: true, ContentText: "hello"})

	page, err := c.FetchPage(context.Background(), "https://example.com/x")
	require.NoError(t, err)
	assert.True(t, page.Accessible)
	assert.Equal(t, "hello", page.ContentText)
}

func TestMockClientFetchPageUnregisteredURLIsInaccessible(t *testing.T) {
	c := NewMockClient()
	page, err := c.FetchPage(context.Background(), "https://nowhere.example")
	require.NoError(t, err)
	assert.False(t, page.Accessible)
}

func TestMockClientSearchExactAndFuzzyMatch(t *testing.T) {
	c := NewMockClient()
	c.AddSearchResults("video games outcomes", []SearchResult{{Title: "r1", URL: "https://a.example"}})

	exact, err := c.Search(context.Background(), "video games outcomes", 5)
	require.NoError(t, err)
	require.Len(t, exact, 1)

	fuzzy, err := c.Search(context.Background(), "video games outcomes research", 5)
	require.NoError(t, err)
	assert.Len(t, fuzzy, 1)
}

func TestMockClientRequestEvidenceAlwaysUnsupported(t *testing.T) {
	c := NewMockClient()
	_, ok := c.RequestEvidence(context.Background(), EvidenceRequest{})
	assert.False(t, ok)
}

func TestWebPageIsSubstantiveRequiresFiftyWords(t *testing.T) {
	short := WebPage{ContentText: "too short"}
	assert.False(t, short.IsSubstantive())

	words := ""
	for i := 0; i < 60; i++ {
		words += "word "
	}
	long := WebPage{ContentText: words}
	assert.True(t, long.IsSubstantive())
}

func TestHTTPClientFetchPageExtractsTitleAndText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>My Post</title></head><body><script>ignore()</script><p>Hello world</p></body></html>`))
	}))
	defer server.Close()

	c := NewHTTPClient(5 * time.Second)
	page, err := c.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, page.Accessible)
	assert.Equal(t, "My Post", page.Title)
	assert.Contains(t, page.ContentText, "Hello world")
	assert.NotContains(t, page.ContentText, "ignore()")
}

func TestHTTPClientFetchPageCachesResponses(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`<html><title>x</title><body>content</body></html>`))
	}))
	defer server.Close()

	c := NewHTTPClient(5 * time.Second)
	_, err := c.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = c.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestHTTPClientSearchWithoutEndpointReturnsNil(t *testing.T) {
	c := NewHTTPClient(5 * time.Second)
	results, err := c.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestHTTPClientFetchPageUnreachableHostIsInaccessible(t *testing.T) {
	c := NewHTTPClient(200 * time.Millisecond)
	page, err := c.FetchPage(context.Background(), "http://127.0.0.1:1")
	require.NoError(t, err)
	assert.False(t, page.Accessible)
}
