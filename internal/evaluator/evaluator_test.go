package evaluator

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rivaliq/internal/config"
	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
	"github.com/sells-group/rivaliq/pkg/whitecircle"
)

func defaultThresholds() config.EvalConfig {
	return config.EvalConfig{
		RelevanceThreshold:         0.6,
		EvidenceCoverageThreshold:  0.5,
		HallucinationRiskThreshold: 0.4,
		ActionabilityThreshold:     0.5,
		FreshnessThreshold:         0.4,
	}
}

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(_ context.Context, _ gateway.GenerateRequest) (string, error) {
	return s.text, s.err
}

type stubExternal struct {
	resp *whitecircle.EvaluateResponse
	err  error
	req  *whitecircle.EvaluateRequest
}

func (s *stubExternal) Evaluate(_ context.Context, req whitecircle.EvaluateRequest) (*whitecircle.EvaluateResponse, error) {
	s.req = &req
	return s.resp, s.err
}

func TestClamp(t *testing.T) {
	assert.InDelta(t, 0.0, clamp(-3.0), 1e-9)
	assert.InDelta(t, 1.0, clamp(17.0), 1e-9)
	assert.InDelta(t, 0.42, clamp(0.42), 1e-9)
	assert.InDelta(t, 0.7, clamp("0.7"), 1e-9)
	assert.InDelta(t, 1.0, clamp(2), 1e-9)
	assert.InDelta(t, 0.5, clamp("high"), 1e-9)
	assert.InDelta(t, 0.5, clamp(nil), 1e-9)
	assert.InDelta(t, 0.5, clamp(true), 1e-9)
}

func TestProcessScores_OverallWeighting(t *testing.T) {
	e := New(nil, nil, defaultThresholds())
	result := e.processScores(map[string]any{
		"relevance":          0.8,
		"evidence_coverage":  0.8,
		"hallucination_risk": 0.8,
		"actionability":      0.8,
		"freshness":          0.5,
	}, "")

	// 0.25*0.8 + 0.25*0.8 + 0.2*0.8 + 0.2*0.8 + 0.1*0.5 = 0.77
	assert.InDelta(t, 0.77, result.Overall, 1e-9)
	assert.False(t, result.Flagged)
	assert.Empty(t, result.FlagReason)
}

func TestProcessScores_HallucinationGate(t *testing.T) {
	e := New(nil, nil, defaultThresholds())
	result := e.processScores(map[string]any{
		"relevance":          0.9,
		"evidence_coverage":  0.9,
		"hallucination_risk": 0.35,
		"actionability":      0.9,
		"freshness":          0.9,
	}, "")

	assert.True(t, result.Flagged)
	assert.Contains(t, result.FlagReason, "hallucination_risk")
	assert.Contains(t, result.FlagReason, "0.35")
}

func TestProcessScores_ScorerReasonPreserved(t *testing.T) {
	e := New(nil, nil, defaultThresholds())
	result := e.processScores(map[string]any{"relevance": 0.1}, "external scorer says: off-topic")
	assert.True(t, result.Flagged)
	assert.Equal(t, "external scorer says: off-topic", result.FlagReason)
}

func TestEvaluate_ExternalFirst(t *testing.T) {
	external := &stubExternal{resp: &whitecircle.EvaluateResponse{Scores: map[string]any{
		"relevance":          0.9,
		"evidence_coverage":  0.8,
		"hallucination_risk": 0.85,
		"actionability":      0.7,
		"freshness":          0.6,
	}}}
	gen := &stubGenerator{err: eris.New("judge must not be called")}
	e := New(external, gen, defaultThresholds())

	result := e.Evaluate(context.Background(), "content", "battlecard",
		model.Theme{Name: "Slow support"}, []model.Insight{{Text: "t", Quote: "q", Confidence: 0.9}}, "[]")

	assert.False(t, result.Flagged)
	assert.InDelta(t, 0.9, result.Relevance, 1e-9)

	require.NotNil(t, external.req)
	assert.Equal(t, "battlecard", external.req.ContentType)
	assert.Equal(t, "Slow support", external.req.Context.ThemeName)
	assert.Len(t, external.req.Rubrics, 5)
}

func TestEvaluate_ExternalFailureFallsBackToJudge(t *testing.T) {
	external := &stubExternal{err: eris.New("502 from scorer")}
	gen := &stubGenerator{text: `{"relevance": 0.7, "evidence_coverage": 0.6, "hallucination_risk": 0.8, "actionability": 0.7, "freshness": 0.5, "flag_reason": null}`}
	e := New(external, gen, defaultThresholds())

	result := e.Evaluate(context.Background(), "content", "messaging", model.Theme{}, nil, "")
	assert.False(t, result.Flagged)
	assert.InDelta(t, 0.7, result.Relevance, 1e-9)
}

func TestEvaluate_TotalFailureConservative(t *testing.T) {
	external := &stubExternal{err: eris.New("scorer down")}
	gen := &stubGenerator{err: eris.New("gateway exhausted")}
	e := New(external, gen, defaultThresholds())

	result := e.Evaluate(context.Background(), "content", "roadmap", model.Theme{}, nil, "")
	assert.True(t, result.Flagged)
	assert.InDelta(t, 0.5, result.Overall, 1e-9)
	assert.InDelta(t, 0.5, result.Relevance, 1e-9)
	assert.Contains(t, result.FlagReason, "manual review")
}

func TestEvaluate_JudgeUnparseableConservative(t *testing.T) {
	gen := &stubGenerator{text: "I cannot score this."}
	e := New(nil, gen, defaultThresholds())

	result := e.Evaluate(context.Background(), "content", "battlecard", model.Theme{}, nil, "")
	assert.True(t, result.Flagged)
	assert.Contains(t, result.FlagReason, "manual review")
}

func TestEvaluate_MissingRubricsDefault(t *testing.T) {
	gen := &stubGenerator{text: `{"relevance": 0.9}`}
	e := New(nil, gen, defaultThresholds())

	result := e.Evaluate(context.Background(), "c", "battlecard", model.Theme{}, nil, "")
	assert.InDelta(t, 0.5, result.EvidenceCoverage, 1e-9)
	assert.InDelta(t, 0.5, result.Freshness, 1e-9)
	assert.False(t, result.Flagged)
}
