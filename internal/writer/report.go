package writer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
)

// maxReportInsights bounds the insight sample embedded in the report prompt.
const maxReportInsights = 20

// GenerateSnapshotReport produces a full competitive snapshot as a JSON
// document. Failure degrades to an error-JSON string, never a Go error.
func (w *Writer) GenerateSnapshotReport(ctx context.Context, competitorName string, themes []model.Theme, insights []model.Insight) string {
	sample := insights
	if len(sample) > maxReportInsights {
		sample = sample[:maxReportInsights]
	}

	themesJSON, err := json.MarshalIndent(themes, "", "  ")
	if err != nil {
		return errorJSON(err)
	}
	insightsJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return errorJSON(err)
	}

	prompt := fmt.Sprintf(`You are a competitive intelligence strategist. Generate a comprehensive competitive snapshot report for %q.

THEMES:
%s

KEY INSIGHTS (sample):
%s

Generate a JSON object with these fields:
- "title": report title with competitor name and current date
- "swot": object with "strengths", "weaknesses", "opportunities", "threats" (each an array of strings, based ONLY on the evidence provided)
- "positioning_angle": one-sentence positioning recommendation
- "top_weaknesses": array of objects with "name", "severity" (0-1), "evidence" (supporting quote/fact from the data)
- "recommended_actions": array of 3-5 concrete next-step actions
- "evidence_count": %d
- "theme_count": %d
- "avg_confidence": calculated average confidence from the insights

Return ONLY valid JSON. All claims must be supported by the themes/insights provided.`,
		competitorName, themesJSON, insightsJSON, len(insights), len(themes))

	text, err := w.gen.Generate(ctx, gateway.GenerateRequest{Prompt: prompt})
	if err != nil {
		zap.L().Error("writer: report generation failed", zap.Error(err))
		return errorJSON(err)
	}

	if obj := sliceJSONObject(text); obj != "" {
		if json.Valid([]byte(obj)) {
			return obj
		}
	}
	return text
}

func sliceJSONObject(text string) string {
	start := -1
	for i, r := range text {
		if r == '{' {
			start = i
			break
		}
	}
	end := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '}' {
			end = i
			break
		}
	}
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func errorJSON(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}
