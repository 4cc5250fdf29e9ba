// Package analyst turns collected text into structured insights and clusters
// them into competitive themes. All heavy lifting runs through the gateway;
// this package owns the prompts and the defensive output parsing.
package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
)

// Analyst extracts insights and clusters themes via the generation gateway.
type Analyst struct {
	gen gateway.Generator
}

// New wires an Analyst over a generator.
func New(gen gateway.Generator) *Analyst {
	return &Analyst{gen: gen}
}

const extractPromptTemplate = `Analyze the following text about competitor %q and extract competitive insights.

TEXT:
%s

SOURCE URL: %s

Extract each distinct competitive insight as a JSON object with these fields:
- "text": concise summary of the insight (1-2 sentences)
- "sentiment": one of "positive", "negative", "neutral", "mixed"
- "sentiment_score": float from -1.0 (very negative) to 1.0 (very positive). Calculate this precisely:
  * -1.0 to -0.7: Strongly negative — explicit complaints, severe criticisms, deal-breakers mentioned
  * -0.7 to -0.3: Moderately negative — notable shortcomings, frustrations, unmet expectations
  * -0.3 to -0.1: Mildly negative — minor issues, caveats, small concerns
  * -0.1 to 0.1: Neutral — factual observations, neither positive nor negative
  * 0.1 to 0.3: Mildly positive — decent aspects, adequate performance
  * 0.3 to 0.7: Moderately positive — clear praise, notable strengths, satisfied users
  * 0.7 to 1.0: Strongly positive — enthusiastic endorsement, major differentiator, exceptional praise
  The score MUST be grounded in the actual language and tone of the source text. Do not default to round numbers — use precise values (e.g. -0.65, 0.42, -0.15).
- "persona": likely job role of the person expressing this (e.g. "DevOps Engineer", "Product Manager", "Customer"). Infer from context clues in the text.
- "quote": the most relevant direct quote from the text (verbatim, 1-2 sentences max). If no direct quote available, use the most relevant phrase.
- "confidence": float 0.0-1.0 indicating how confident you are in this insight. Base this on:
  * 0.9-1.0: Direct quote with clear attribution, verifiable claim
  * 0.7-0.9: Clear statement but indirect or partial attribution
  * 0.5-0.7: Implied or inferred from context, some ambiguity
  * 0.3-0.5: Weak signal, heavily inferred
  * Below 0.3: Speculative, barely supported

Return ONLY a JSON array of insight objects. If no meaningful insights, return [].
Do not include any explanatory text outside the JSON array.`

// rawInsight separates "field absent" from zero values so defaults apply
// only to what the model actually omitted.
type rawInsight struct {
	Text           string   `json:"text"`
	Sentiment      *string  `json:"sentiment"`
	SentimentScore *float64 `json:"sentiment_score"`
	Persona        *string  `json:"persona"`
	Quote          *string  `json:"quote"`
	Confidence     *float64 `json:"confidence"`
}

func (r rawInsight) toDraft() model.InsightDraft {
	draft := model.InsightDraft{
		Text:       r.Text,
		Sentiment:  model.SentimentNeutral,
		Persona:    "Unknown",
		Confidence: 0.5,
	}
	if r.Sentiment != nil && *r.Sentiment != "" {
		draft.Sentiment = model.Sentiment(*r.Sentiment)
	}
	if r.SentimentScore != nil {
		draft.SentimentScore = *r.SentimentScore
	}
	if r.Persona != nil && *r.Persona != "" {
		draft.Persona = *r.Persona
	}
	if r.Quote != nil {
		draft.Quote = *r.Quote
	}
	if r.Confidence != nil {
		draft.Confidence = *r.Confidence
	}
	return draft
}

// ExtractInsights runs one extraction call per chunk, tolerating individual
// chunk failures, then de-duplicates by the lower-cased trimmed 80-char
// prefix of the text; the first occurrence wins.
func (a *Analyst) ExtractInsights(ctx context.Context, chunks []string, sourceLabel, competitorName string) []model.InsightDraft {
	var all []model.InsightDraft
	for i, chunk := range chunks {
		drafts, err := a.extractFromChunk(ctx, chunk, sourceLabel, competitorName)
		if err != nil {
			zap.L().Error("analyst: chunk extraction failed",
				zap.Int("chunk", i), zap.Error(err))
			continue
		}
		all = append(all, drafts...)
	}

	seen := make(map[string]bool)
	unique := make([]model.InsightDraft, 0, len(all))
	for _, draft := range all {
		key := dedupeKey(draft.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, draft)
	}

	zap.L().Info("analyst: insights extracted",
		zap.Int("unique", len(unique)),
		zap.Int("chunks", len(chunks)),
	)
	return unique
}

func dedupeKey(text string) string {
	// Slice runes, not bytes: a byte cut can land inside a multi-byte
	// character and split it.
	if runes := []rune(text); len(runes) > 80 {
		text = string(runes[:80])
	}
	return strings.TrimSpace(strings.ToLower(text))
}

func (a *Analyst) extractFromChunk(ctx context.Context, chunk, sourceLabel, competitorName string) ([]model.InsightDraft, error) {
	prompt := fmt.Sprintf(extractPromptTemplate, competitorName, chunk, sourceLabel)

	text, err := a.gen.Generate(ctx, gateway.GenerateRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	arr := sliceJSONArray(text)
	if arr == "" {
		return nil, nil
	}

	var raw []rawInsight
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		zap.L().Error("analyst: unparseable insight payload",
			zap.String("prefix", truncate(text, 200)), zap.Error(err))
		return nil, nil
	}

	drafts := make([]model.InsightDraft, 0, len(raw))
	for _, r := range raw {
		drafts = append(drafts, r.toDraft())
	}
	return drafts, nil
}

// sliceJSONArray cuts the outermost JSON array out of model prose.
func sliceJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
