package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/rivaliq/internal/model"
)

// browserHeaders is a realistic desktop Chrome header set. Review sites and
// Reddit return 403 for obvious bot user agents.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
}

// minExtractedChars is the floor below which extracted content is treated
// as a fetch failure rather than a usable source.
const minExtractedChars = 50

// FetchError reports a failed fetch with enough detail for the source row's
// error message. Status is zero for transport-level failures.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d fetching %s", e.Status, e.URL)
	}
	return fmt.Sprintf("could not reach %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves and extracts text from public URLs. Safe for concurrent
// use; per-host limiters keep concurrent research fetches polite.
type Fetcher struct {
	client *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher builds a Fetcher with the given request timeout. Redirects are
// followed by the default http.Client policy.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(2, 4)
		f.limiters[host] = lim
	}
	return lim
}

// Fetch retrieves a URL and returns its extracted text and detected source
// kind. PDF responses are routed through the PDF extractor. Non-2xx
// responses, transport failures, and pages yielding fewer than 50 chars of
// text all return a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, model.SourceKind, error) {
	kind := DetectSourceKind(rawURL)

	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return "", kind, eris.Wrap(err, "collector: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", kind, eris.Wrapf(err, "collector: build request for %s", rawURL)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Warn("collector: fetch transport failure",
			zap.String("url", rawURL), zap.Error(err))
		return "", kind, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Warn("collector: fetch non-2xx",
			zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return "", kind, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", kind, &FetchError{URL: rawURL, Err: err}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/pdf") || strings.HasSuffix(strings.ToLower(rawURL), ".pdf") {
		name := rawURL[strings.LastIndex(rawURL, "/")+1:]
		if name == "" {
			name = "remote.pdf"
		}
		text, err := ExtractPDF(body, name)
		if err != nil {
			return "", model.SourceKindPDF, &FetchError{URL: rawURL, Err: err}
		}
		if len(strings.TrimSpace(text)) < minExtractedChars {
			return "", model.SourceKindPDF, &FetchError{URL: rawURL, Err: eris.New("no meaningful content extracted from PDF")}
		}
		return text, model.SourceKindPDF, nil
	}

	text, err := ExtractHTML(string(body), kind)
	if err != nil {
		return "", kind, &FetchError{URL: rawURL, Err: err}
	}
	if len(strings.TrimSpace(text)) < minExtractedChars {
		return "", kind, &FetchError{URL: rawURL, Err: eris.New("no meaningful content extracted")}
	}

	zap.L().Debug("collector: fetched",
		zap.String("url", rawURL),
		zap.String("kind", string(kind)),
		zap.Int("chars", len(text)),
	)
	return text, kind, nil
}
