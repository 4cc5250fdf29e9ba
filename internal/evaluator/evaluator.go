// Package evaluator scores generated artifacts on five quality rubrics and
// applies the quality gate. An external scorer is tried first when
// configured; a judge call through the gateway serves as fallback. Total
// failure of both paths degrades to a fixed conservative result, so
// evaluation never returns an error.
package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/config"
	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
	"github.com/sells-group/rivaliq/pkg/whitecircle"
)

// maxJudgeContentChars caps artifact content embedded in the judge prompt.
const maxJudgeContentChars = 3000

// maxEvidenceItems caps the insights sent as evidence to either scorer.
const maxEvidenceItems = 10

// Result is the quality-gate outcome for one artifact.
type Result struct {
	Relevance         float64
	EvidenceCoverage  float64
	HallucinationRisk float64
	Actionability     float64
	Freshness         float64
	Overall           float64
	Flagged           bool
	FlagReason        string
}

// Evaluator runs the external-first, judge-fallback scoring strategy.
type Evaluator struct {
	external   whitecircle.Client
	gen        gateway.Generator
	thresholds config.EvalConfig
}

// New wires an Evaluator. external may be nil when no scoring service is
// configured; the judge path then serves alone.
func New(external whitecircle.Client, gen gateway.Generator, thresholds config.EvalConfig) *Evaluator {
	return &Evaluator{external: external, gen: gen, thresholds: thresholds}
}

// Evaluate scores the artifact. It never returns an error: every failure
// mode degrades to the conservative manual-review result.
func (e *Evaluator) Evaluate(ctx context.Context, content, contentType string, theme model.Theme, insights []model.Insight, citationsJSON string) Result {
	if e.external != nil {
		result, err := e.evaluateExternal(ctx, content, contentType, theme, insights, citationsJSON)
		if err == nil {
			zap.L().Info("evaluator: external scorer result",
				zap.Float64("overall", result.Overall),
				zap.Bool("flagged", result.Flagged),
			)
			return result
		}
		zap.L().Warn("evaluator: external scorer failed, falling back to judge", zap.Error(err))
	}

	return e.evaluateJudge(ctx, content, contentType, theme, insights, citationsJSON)
}

func (e *Evaluator) evaluateExternal(ctx context.Context, content, contentType string, theme model.Theme, insights []model.Insight, citationsJSON string) (Result, error) {
	evidence := make([]whitecircle.EvidenceItem, 0, maxEvidenceItems)
	for _, ins := range insights {
		if len(evidence) == maxEvidenceItems {
			break
		}
		sentiment := string(ins.Sentiment)
		if sentiment == "" {
			sentiment = "neutral"
		}
		evidence = append(evidence, whitecircle.EvidenceItem{
			Text:       ins.Text,
			Quote:      ins.Quote,
			Sentiment:  sentiment,
			Confidence: ins.Confidence,
		})
	}

	resp, err := e.external.Evaluate(ctx, whitecircle.EvaluateRequest{
		Content:     content,
		ContentType: contentType,
		Context: whitecircle.ThemeContext{
			ThemeName:        theme.Name,
			ThemeDescription: theme.Description,
			ThemeSeverity:    theme.SeverityScore,
			IsWeakness:       theme.IsWeakness,
		},
		Evidence:  evidence,
		Citations: citationsJSON,
		Rubrics: map[string]whitecircle.Rubric{
			"relevance":          {Description: "Does the artifact address the theme correctly?", Threshold: e.thresholds.RelevanceThreshold},
			"evidence_coverage":  {Description: "Are claims supported by cited evidence?", Threshold: e.thresholds.EvidenceCoverageThreshold},
			"hallucination_risk": {Description: "Likelihood of unsupported claims (1.0 = safe)", Threshold: e.thresholds.HallucinationRiskThreshold},
			"actionability":      {Description: "Does it provide concrete next steps?", Threshold: e.thresholds.ActionabilityThreshold},
			"freshness":          {Description: "Are sources recent and timely?", Threshold: e.thresholds.FreshnessThreshold},
		},
	})
	if err != nil {
		return Result{}, err
	}

	return e.processScores(resp.Scores, resp.FlagReason), nil
}

func (e *Evaluator) evaluateJudge(ctx context.Context, content, contentType string, theme model.Theme, insights []model.Insight, citationsJSON string) Result {
	if len(content) > maxJudgeContentChars {
		content = content[:maxJudgeContentChars]
	}

	prompt := fmt.Sprintf(`You are a competitive intelligence quality auditor. Evaluate the following artifact rigorously.

ARTIFACT TYPE: %s
ARTIFACT CONTENT:
%s

THEME: %s — %s

AVAILABLE EVIDENCE:
%s

Score the artifact on these 5 rubrics (0.0 to 1.0 each):

1. **relevance**: Does the artifact correctly address the theme? (1.0 = perfectly relevant)
2. **evidence_coverage**: Are all major claims supported by cited evidence? (1.0 = fully cited)
3. **hallucination_risk**: Likelihood of unsupported claims. Score as SAFETY: 1.0 = no hallucination risk, 0.0 = high hallucination risk
4. **actionability**: Does the artifact provide concrete, usable next steps? (1.0 = immediately actionable)
5. **freshness**: Are sources recent and timely? (1.0 = all sources within 30 days, 0.5 = within 90 days, 0.0 = stale)

Also provide:
- "flag_reason": If ANY score is below its threshold, explain why (1-2 sentences). Otherwise null.

Thresholds: relevance>%g, evidence>%g, hallucination_risk>%g, actionability>%g, freshness>%g

Return ONLY a JSON object with keys: relevance, evidence_coverage, hallucination_risk, actionability, freshness, flag_reason (string or null).`,
		contentType, content, theme.Name, theme.Description,
		evidenceSummary(insights, citationsJSON),
		e.thresholds.RelevanceThreshold, e.thresholds.EvidenceCoverageThreshold,
		e.thresholds.HallucinationRiskThreshold, e.thresholds.ActionabilityThreshold,
		e.thresholds.FreshnessThreshold,
	)

	text, err := e.gen.Generate(ctx, gateway.GenerateRequest{Prompt: prompt, MaxTokens: 1024})
	if err != nil {
		zap.L().Error("evaluator: judge call failed", zap.Error(err))
		return e.fallbackResult()
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		zap.L().Error("evaluator: judge returned no JSON object",
			zap.String("prefix", text[:min(len(text), 200)]))
		return e.fallbackResult()
	}

	var scores map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &scores); err != nil {
		zap.L().Error("evaluator: unparseable judge payload", zap.Error(err))
		return e.fallbackResult()
	}

	reason, _ := scores["flag_reason"].(string)
	return e.processScores(scores, reason)
}

func evidenceSummary(insights []model.Insight, citationsJSON string) string {
	var parts []string
	for i, ins := range insights {
		if i == maxEvidenceItems {
			break
		}
		quote := ins.Quote
		if quote == "" {
			quote = "N/A"
		}
		parts = append(parts, fmt.Sprintf("- %s (quote: %q)", ins.Text, quote))
	}

	if citationsJSON != "" {
		var citations []model.Citation
		if err := json.Unmarshal([]byte(citationsJSON), &citations); err == nil {
			for _, cit := range citations {
				parts = append(parts, fmt.Sprintf("- Citation: [%s - %s] %q", cit.Source, cit.Date, cit.Quote))
			}
		}
	}

	if len(parts) == 0 {
		return "No evidence provided."
	}
	return strings.Join(parts, "\n")
}

// rubricThreshold pairs a rubric key with its gate threshold, in the order
// reasons are reported.
type rubricThreshold struct {
	name      string
	threshold float64
}

func (e *Evaluator) orderedThresholds() []rubricThreshold {
	return []rubricThreshold{
		{"relevance", e.thresholds.RelevanceThreshold},
		{"evidence_coverage", e.thresholds.EvidenceCoverageThreshold},
		{"hallucination_risk", e.thresholds.HallucinationRiskThreshold},
		{"actionability", e.thresholds.ActionabilityThreshold},
		{"freshness", e.thresholds.FreshnessThreshold},
	}
}

// processScores clamps raw rubric values, computes the weighted overall
// score, and applies the gate: any rubric strictly below its threshold
// flags the artifact.
func (e *Evaluator) processScores(scores map[string]any, flagReason string) Result {
	vals := map[string]float64{
		"relevance":          clamp(scores["relevance"]),
		"evidence_coverage":  clamp(scores["evidence_coverage"]),
		"hallucination_risk": clamp(scores["hallucination_risk"]),
		"actionability":      clamp(scores["actionability"]),
		"freshness":          clamp(scores["freshness"]),
	}

	overall := vals["relevance"]*0.25 +
		vals["evidence_coverage"]*0.25 +
		vals["hallucination_risk"]*0.2 +
		vals["actionability"]*0.2 +
		vals["freshness"]*0.1
	overall = math.Round(overall*1000) / 1000

	flagged := false
	var reasons []string
	for _, rt := range e.orderedThresholds() {
		if vals[rt.name] < rt.threshold {
			flagged = true
			reasons = append(reasons, fmt.Sprintf("%s (%.2f) below threshold (%g)", rt.name, vals[rt.name], rt.threshold))
		}
	}

	if flagged && flagReason == "" {
		flagReason = strings.Join(reasons, "; ")
	}
	if !flagged {
		flagReason = strings.TrimSpace(flagReason)
	}

	return Result{
		Relevance:         vals["relevance"],
		EvidenceCoverage:  vals["evidence_coverage"],
		HallucinationRisk: vals["hallucination_risk"],
		Actionability:     vals["actionability"],
		Freshness:         vals["freshness"],
		Overall:           overall,
		Flagged:           flagged,
		FlagReason:        flagReason,
	}
}

// clamp coerces a raw rubric value into [0, 1]. Missing or non-numeric
// values default to 0.5.
func clamp(val any) float64 {
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0.5
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0.5
		}
		f = parsed
	default:
		return 0.5
	}
	return math.Max(0, math.Min(1, f))
}

func (e *Evaluator) fallbackResult() Result {
	return Result{
		Relevance:         0.5,
		EvidenceCoverage:  0.5,
		HallucinationRisk: 0.5,
		Actionability:     0.5,
		Freshness:         0.5,
		Overall:           0.5,
		Flagged:           true,
		FlagReason:        "Automated evaluation failed — manual review required",
	}
}
