package analyst

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
)

const clusterPromptTemplate = `You are a competitive intelligence analyst. Given these insights about competitor %q, cluster them into distinct competitive themes.

INSIGHTS:
%s

For each theme, provide:
- "name": short theme name (3-6 words)
- "description": 1-2 sentence description
- "sentiment": overall sentiment ("positive", "negative", "neutral", "mixed")
- "severity_score": float 0.0-1.0 — calculate this genuinely using the formula:
  severity = (frequency_weight * 0.4) + (sentiment_intensity * 0.4) + (recency_weight * 0.2)
  Where:
  * frequency_weight = min(1.0, number_of_insights_in_theme / total_insights). More mentions = higher weight.
  * sentiment_intensity = average absolute sentiment_score of insights in this theme (e.g. avg of |-0.8|, |-0.6| = 0.7). Stronger negative/positive language = higher.
  * recency_weight = 1.0 if signals appear very recent, 0.5 if moderately recent, 0.2 if old.
  Show your calculation reasoning in the description. The score MUST reflect the actual data — do NOT use placeholder values.
- "frequency": actual count of insights belonging to this theme (not estimated — count them)
- "recency_days": estimated days since most recent signal based on any date clues in the source text. If no date clues, use 30 as default.
- "is_weakness": boolean, true if this is a competitor weakness we can exploit (based on negative sentiment insights)
- "differentiation_move": if is_weakness, suggest a concrete differentiation action (1-2 sentences). If not a weakness, suggest how to counter this competitor strength.
- "insight_indices": array of 0-based indices into the insights array that belong to this theme

Return ONLY a JSON array of theme objects. Merge similar insights into the same theme. Every insight should belong to at least one theme.`

// ClusterThemes groups the full insight list into themes with a single
// gateway call. Empty input short-circuits without a call; malformed model
// output degrades to an empty theme list.
func (a *Analyst) ClusterThemes(ctx context.Context, insights []model.InsightDraft, competitorName string) ([]model.ThemeDraft, error) {
	if len(insights) == 0 {
		return nil, nil
	}

	payload, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(clusterPromptTemplate, competitorName, payload)
	text, err := a.gen.Generate(ctx, gateway.GenerateRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	arr := sliceJSONArray(text)
	if arr == "" {
		return nil, nil
	}

	var themes []model.ThemeDraft
	if err := json.Unmarshal([]byte(arr), &themes); err != nil {
		zap.L().Error("analyst: unparseable theme payload",
			zap.String("prefix", truncate(text, 200)), zap.Error(err))
		return nil, nil
	}

	zap.L().Info("analyst: themes clustered",
		zap.Int("themes", len(themes)),
		zap.Int("insights", len(insights)),
	)
	return themes, nil
}
