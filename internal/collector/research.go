package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
)

// ResearchResult is one candidate research page.
type ResearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// FetchedDoc is one successfully collected research document. For
// unreachable URLs the pipeline substitutes a snippet pseudo-document with
// kind web_snippet.
type FetchedDoc struct {
	Text string
	Kind model.SourceKind
	URL  string
}

// Researcher discovers and collects public pages about a competitor. URL
// candidates come from a known-site table plus gateway-suggested pages.
type Researcher struct {
	fetcher  *Fetcher
	gen      gateway.Generator
	maxFetch int
}

// NewResearcher wires a Researcher; maxFetch caps both the candidate list
// and the concurrent fetch fan-out.
func NewResearcher(fetcher *Fetcher, gen gateway.Generator, maxFetch int) *Researcher {
	if maxFetch <= 0 {
		maxFetch = 8
	}
	return &Researcher{fetcher: fetcher, gen: gen, maxFetch: maxFetch}
}

// Discover assembles candidate URLs: known review/comparison sites first,
// then model-suggested pages, de-duplicated by URL and capped at maxFetch.
// Model discovery failure degrades to the known-site list alone.
func (r *Researcher) Discover(ctx context.Context, competitorName, sector string) []ResearchResult {
	var results []ResearchResult
	seen := make(map[string]bool)

	for _, entry := range knownSiteURLs(competitorName) {
		if !seen[entry.URL] {
			seen[entry.URL] = true
			results = append(results, entry)
		}
	}

	suggested, err := r.suggestURLs(ctx, competitorName, sector)
	if err != nil {
		zap.L().Warn("collector: model url discovery failed",
			zap.String("competitor", competitorName), zap.Error(err))
	}
	for _, entry := range suggested {
		if !seen[entry.URL] {
			seen[entry.URL] = true
			results = append(results, entry)
		}
	}

	if len(results) > r.maxFetch {
		results = results[:r.maxFetch]
	}
	zap.L().Info("collector: research candidates assembled",
		zap.String("competitor", competitorName),
		zap.Int("count", len(results)),
	)
	return results
}

func knownSiteURLs(name string) []ResearchResult {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	slug = strings.ReplaceAll(slug, ".", "")

	entries := []ResearchResult{}
	for _, domain := range []string{"www." + slug + ".com", slug + ".com"} {
		entries = append(entries, ResearchResult{
			Title:   name + " — Official Website",
			URL:     "https://" + domain,
			Snippet: "Official website for " + name,
		})
	}
	entries = append(entries,
		ResearchResult{
			Title:   name + " Reviews - TrustRadius",
			URL:     "https://www.trustradius.com/products/" + slug + "/reviews",
			Snippet: "User reviews and ratings for " + name,
		},
		ResearchResult{
			Title:   name + " Reviews - PeerSpot",
			URL:     "https://www.peerspot.com/products/" + slug + "-reviews",
			Snippet: "Enterprise reviews for " + name,
		},
		ResearchResult{
			Title:   "Reddit discussions about " + name,
			URL:     "https://old.reddit.com/search/?q=" + url.QueryEscape(name) + "&sort=relevance&t=year",
			Snippet: "Reddit posts about " + name + " from the past year",
		},
		ResearchResult{
			Title:   name + " - TechCrunch",
			URL:     "https://techcrunch.com/tag/" + slug + "/",
			Snippet: "TechCrunch articles about " + name,
		},
	)
	return entries
}

func (r *Researcher) suggestURLs(ctx context.Context, name, sector string) ([]ResearchResult, error) {
	if r.gen == nil {
		return nil, nil
	}
	if sector == "" {
		sector = "unknown"
	}

	prompt := fmt.Sprintf(`I need to research the company %q (sector: %s) for competitive intelligence.

Suggest 6-8 specific, real, publicly accessible URLs where I can find:
- Customer reviews, complaints, and feedback
- Product comparisons and alternatives
- Pricing information and criticism
- Recent news about problems or changes
- Technical documentation or status pages

For each URL, provide:
- "title": brief description
- "url": the full URL (must be real, publicly accessible pages — no paywalled or login-required content)
- "snippet": what competitive intelligence I can find there

Return ONLY a JSON array. URLs must be specific, real pages (not search result pages). Prefer:
- TrustRadius, PeerSpot, AlternativeTo, StackShare, ProductHunt
- Official status/changelog pages
- Reddit threads (use old.reddit.com for reliability)
- Blog comparison posts from known tech blogs
- Company's own pricing and feature pages`, name, sector)

	text, err := r.gen.Generate(ctx, gateway.GenerateRequest{Prompt: prompt, MaxTokens: 2048})
	if err != nil {
		return nil, err
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, nil
	}

	var raw []ResearchResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		zap.L().Warn("collector: unparseable url suggestions", zap.Error(err))
		return nil, nil
	}

	valid := raw[:0]
	for _, entry := range raw {
		if strings.HasPrefix(entry.URL, "http") {
			valid = append(valid, entry)
		}
	}
	return valid, nil
}

// FetchAll collects the candidate pages concurrently, bounded at maxFetch
// in flight. Unreachable URLs degrade to a title+snippet pseudo-document
// when the snippet carries enough text; otherwise they are dropped.
func (r *Researcher) FetchAll(ctx context.Context, results []ResearchResult) []FetchedDoc {
	if len(results) > r.maxFetch {
		results = results[:r.maxFetch]
	}

	var mu sync.Mutex
	docs := make([]FetchedDoc, 0, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxFetch)
	for _, result := range results {
		g.Go(func() error {
			text, kind, err := r.fetcher.Fetch(gctx, result.URL)
			if err != nil {
				zap.L().Warn("collector: research fetch failed",
					zap.String("url", result.URL), zap.Error(err))
				if len(result.Snippet) > 30 {
					mu.Lock()
					docs = append(docs, FetchedDoc{
						Text: fmt.Sprintf("Title: %s\nURL: %s\n\n%s", result.Title, result.URL, result.Snippet),
						Kind: model.SourceKindSnippet,
						URL:  result.URL,
					})
					mu.Unlock()
				}
				return nil
			}
			mu.Lock()
			docs = append(docs, FetchedDoc{Text: text, Kind: kind, URL: result.URL})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("collector: research fetch complete",
		zap.Int("fetched", len(docs)),
		zap.Int("candidates", len(results)),
	)
	return docs
}
