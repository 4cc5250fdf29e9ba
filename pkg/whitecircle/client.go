// Package whitecircle provides a client for the White Circle AI quality
// monitoring API, used to score generated artifacts against evaluation
// rubrics.
package whitecircle

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// maxContentChars is the API's content size limit per evaluation request.
const maxContentChars = 5000

// Client defines the White Circle evaluation operations.
type Client interface {
	// Evaluate scores artifact content against the supplied rubrics.
	Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error)
}

// ThemeContext carries the theme the artifact was generated from.
type ThemeContext struct {
	ThemeName        string  `json:"theme_name"`
	ThemeDescription string  `json:"theme_description"`
	ThemeSeverity    float64 `json:"theme_severity"`
	IsWeakness       bool    `json:"is_weakness"`
}

// EvidenceItem is one supporting insight sent alongside the artifact.
type EvidenceItem struct {
	Text       string  `json:"text"`
	Quote      string  `json:"quote"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// Rubric describes one scoring dimension and its quality-gate threshold.
type Rubric struct {
	Description string  `json:"description"`
	Threshold   float64 `json:"threshold"`
}

// EvaluateRequest is the full evaluation payload. Citations is a raw JSON
// array; malformed citations are sent as an empty array rather than failing
// the request.
type EvaluateRequest struct {
	Content     string
	ContentType string
	Context     ThemeContext
	Evidence    []EvidenceItem
	Citations   string
	Rubrics     map[string]Rubric
}

// EvaluateResponse holds the provider's raw per-rubric values. Values are
// left untyped; the caller owns clamping and non-numeric handling.
type EvaluateResponse struct {
	Scores     map[string]any
	FlagReason string
}

// Option configures the White Circle client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new White Circle evaluation client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.whitecircle.ai/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wirePayload struct {
	Content     string            `json:"content"`
	ContentType string            `json:"content_type"`
	Context     ThemeContext      `json:"context"`
	Evidence    []EvidenceItem    `json:"evidence"`
	Citations   []json.RawMessage `json:"citations"`
	Rubrics     map[string]Rubric `json:"rubrics"`
}

func (c *httpClient) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	content := req.Content
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	var citations []json.RawMessage
	if req.Citations != "" {
		if err := json.Unmarshal([]byte(req.Citations), &citations); err != nil {
			citations = nil
		}
	}
	if citations == nil {
		citations = []json.RawMessage{}
	}

	evidence := req.Evidence
	if evidence == nil {
		evidence = []EvidenceItem{}
	}

	payload, err := json.Marshal(wirePayload{
		Content:     content,
		ContentType: req.ContentType,
		Context:     req.Context,
		Evidence:    evidence,
		Citations:   citations,
		Rubrics:     req.Rubrics,
	})
	if err != nil {
		return nil, eris.Wrap(err, "whitecircle: marshal payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "whitecircle: create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Source", "rivaliq-backend")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "whitecircle: evaluate request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("whitecircle: unexpected status %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "whitecircle: unmarshal response")
	}

	// Scores nest under "scores" or sit at the top level.
	scores := body
	if nested, ok := body["scores"].(map[string]any); ok {
		scores = nested
	}

	out := &EvaluateResponse{Scores: scores}
	if reason, ok := scores["flag_reason"].(string); ok {
		out.FlagReason = reason
	} else if reason, ok := body["flag_reason"].(string); ok {
		out.FlagReason = reason
	}
	return out, nil
}
