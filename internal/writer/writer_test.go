package writer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
)

type stubGenerator struct {
	text    string
	err     error
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, req gateway.GenerateRequest) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, req.Prompt)
	return s.text, s.err
}

func sampleInsights() []model.Insight {
	return []model.Insight{
		{
			Text:           "Support response times frustrate enterprise buyers.",
			Sentiment:      model.SentimentNegative,
			SentimentScore: -0.7,
			Persona:        "IT Director",
			Quote:          "we waited four days for a P1 response",
			Confidence:     0.9,
			SourceURL:      "https://example.com/review",
			SourceDate:     "2026-08-01",
		},
		{
			Text:       "No quote on this one.",
			Sentiment:  model.SentimentNeutral,
			Confidence: 0.5,
		},
	}
}

func TestGenerateArtifact_Battlecard(t *testing.T) {
	gen := &stubGenerator{text: "  ## Battlecard\nTheir support is slow.  "}
	w := New(gen)
	theme := model.Theme{Name: "Slow support", Description: "Users wait days.", SeverityScore: 0.74}

	content, citations := w.GenerateArtifact(context.Background(), model.ActionKindBattlecard, theme, sampleInsights(), "Acme")

	assert.Equal(t, "## Battlecard\nTheir support is slow.", content)
	assert.Contains(t, gen.prompts[0], "WEAKNESS THEME: Slow support")
	assert.Contains(t, gen.prompts[0], "we waited four days")

	var parsed []model.Citation
	require.NoError(t, json.Unmarshal([]byte(citations), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "IT Director", parsed[0].Source)
	assert.Equal(t, "2026-08-01", parsed[0].Date)
	assert.Equal(t, "https://example.com/review", parsed[0].URL)
}

func TestGenerateArtifact_IgnoreShortCircuits(t *testing.T) {
	gen := &stubGenerator{}
	w := New(gen)

	content, citations := w.GenerateArtifact(context.Background(), model.ActionKindIgnore, model.Theme{}, nil, "Acme")

	assert.Equal(t, ignoreContent, content)
	assert.Equal(t, "[]", citations)
	assert.Zero(t, gen.calls)
}

func TestGenerateArtifact_FailureDegrades(t *testing.T) {
	gen := &stubGenerator{err: eris.New("model unavailable")}
	w := New(gen)

	content, citations := w.GenerateArtifact(context.Background(), model.ActionKindMessaging, model.Theme{Name: "X"}, sampleInsights(), "Acme")

	assert.Contains(t, content, "Error generating artifact")
	assert.Contains(t, content, "model unavailable")
	assert.Equal(t, "[]", citations)
}

func TestGenerateArtifact_NoQuotesEmptyCitations(t *testing.T) {
	gen := &stubGenerator{text: "doc"}
	w := New(gen)

	_, citations := w.GenerateArtifact(context.Background(), model.ActionKindRoadmap, model.Theme{},
		[]model.Insight{{Text: "quoteless"}}, "Acme")
	assert.Equal(t, "[]", citations)
}

func TestGenerateSnapshotReport(t *testing.T) {
	gen := &stubGenerator{text: "Here you go:\n{\"title\": \"Acme snapshot\", \"theme_count\": 1}"}
	w := New(gen)

	out := w.GenerateSnapshotReport(context.Background(), "Acme",
		[]model.Theme{{Name: "Slow support"}}, sampleInsights())

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "Acme snapshot", parsed["title"])
}

func TestGenerateSnapshotReport_CapsInsightSample(t *testing.T) {
	gen := &stubGenerator{text: "{}"}
	w := New(gen)

	insights := make([]model.Insight, 30)
	for i := range insights {
		insights[i] = model.Insight{Text: "insight", Confidence: 0.5}
	}
	_ = w.GenerateSnapshotReport(context.Background(), "Acme", nil, insights)

	// The prompt reports the full count even though the embedded sample is capped.
	assert.Contains(t, gen.prompts[0], `"evidence_count": 30`)
}

func TestGenerateSnapshotReport_FailureReturnsErrorJSON(t *testing.T) {
	gen := &stubGenerator{err: eris.New("timeout")}
	w := New(gen)

	out := w.GenerateSnapshotReport(context.Background(), "Acme", nil, nil)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Contains(t, parsed["error"], "timeout")
}
