package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(_ context.Context, _ gateway.GenerateRequest) (string, error) {
	return s.text, s.err
}

func TestDiscover_KnownSitesOnly(t *testing.T) {
	r := NewResearcher(NewFetcher(time.Second), &stubGenerator{err: eris.New("model down")}, 8)

	results := r.Discover(context.Background(), "Acme Corp", "devtools")
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 8)

	seen := make(map[string]bool)
	for _, res := range results {
		assert.False(t, seen[res.URL], "duplicate url %s", res.URL)
		seen[res.URL] = true
	}
	assert.True(t, seen["https://www.trustradius.com/products/acme-corp/reviews"])
	assert.True(t, seen["https://www.peerspot.com/products/acme-corp-reviews"])
}

func TestDiscover_MergesModelSuggestions(t *testing.T) {
	gen := &stubGenerator{text: `Here are the URLs:
[
  {"title": "Acme on AlternativeTo", "url": "https://alternativeto.net/software/acme/", "snippet": "alternatives and user opinions"},
  {"title": "dup of known", "url": "https://techcrunch.com/tag/acme/", "snippet": "already present"},
  {"title": "bogus", "url": "ftp://not-http.example", "snippet": "dropped"}
]`}
	r := NewResearcher(NewFetcher(time.Second), gen, 20)

	results := r.Discover(context.Background(), "Acme", "")
	urls := make(map[string]int)
	for _, res := range results {
		urls[res.URL]++
	}
	assert.Equal(t, 1, urls["https://alternativeto.net/software/acme/"])
	assert.Equal(t, 1, urls["https://techcrunch.com/tag/acme/"])
	assert.Zero(t, urls["ftp://not-http.example"])
}

func TestDiscover_CapsAtMaxFetch(t *testing.T) {
	r := NewResearcher(NewFetcher(time.Second), nil, 3)
	results := r.Discover(context.Background(), "Acme", "")
	assert.Len(t, results, 3)
}

func TestFetchAll_SnippetFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/good" {
			w.Write([]byte(`<html><body><main><p>` + //nolint:errcheck
				`Customers praise the analytics module but complain about slow exports and support wait times.` +
				`</p></main></body></html>`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewResearcher(NewFetcher(5*time.Second), nil, 8)
	docs := r.FetchAll(context.Background(), []ResearchResult{
		{Title: "Good page", URL: srv.URL + "/good", Snippet: "ignored"},
		{Title: "Blocked reviews", URL: srv.URL + "/blocked", Snippet: "Detailed user reviews mentioning pricing frustration."},
		{Title: "Blocked, thin snippet", URL: srv.URL + "/thin", Snippet: "too short"},
	})

	require.Len(t, docs, 2)
	byURL := make(map[string]FetchedDoc)
	for _, d := range docs {
		byURL[d.URL] = d
	}

	good := byURL[srv.URL+"/good"]
	assert.Contains(t, good.Text, "analytics module")
	assert.NotEqual(t, model.SourceKindSnippet, good.Kind)

	fallback := byURL[srv.URL+"/blocked"]
	assert.Equal(t, model.SourceKindSnippet, fallback.Kind)
	assert.Contains(t, fallback.Text, "Title: Blocked reviews")
	assert.Contains(t, fallback.Text, "pricing frustration")
}
