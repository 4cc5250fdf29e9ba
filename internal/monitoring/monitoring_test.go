package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/rivaliq/internal/model"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 0, 0, 0)
	assert.Zero(t, s.TotalArtifacts)
	assert.Zero(t, s.AvgOverall)
	assert.Zero(t, s.FlaggedCount)
	assert.Empty(t, s.Evaluations)
}

func TestSummarize_AveragesRounded(t *testing.T) {
	evals := []model.EvaluationScore{
		{Relevance: 0.9, EvidenceCoverage: 0.8, HallucinationRisk: 0.7, Actionability: 0.6, Freshness: 0.5, OverallScore: 0.75},
		{Relevance: 0.6, EvidenceCoverage: 0.5, HallucinationRisk: 0.4, Actionability: 0.3, Freshness: 0.2, OverallScore: 0.45, Flagged: true},
		{Relevance: 0.5, EvidenceCoverage: 0.5, HallucinationRisk: 0.5, Actionability: 0.5, Freshness: 0.5, OverallScore: 0.5, Flagged: true},
	}

	s := Summarize(evals, 3, 1, 2)

	assert.InDelta(t, 0.667, s.AvgRelevance, 1e-9)
	assert.InDelta(t, 0.6, s.AvgEvidenceCoverage, 1e-9)
	assert.InDelta(t, 0.533, s.AvgHallucinationRisk, 1e-9)
	assert.InDelta(t, 0.467, s.AvgActionability, 1e-9)
	assert.InDelta(t, 0.4, s.AvgFreshness, 1e-9)
	assert.InDelta(t, 0.567, s.AvgOverall, 1e-9)
	assert.Equal(t, 2, s.FlaggedCount)
	assert.Equal(t, 3, s.TotalArtifacts)
	assert.Equal(t, 1, s.AcceptedCount)
	assert.Equal(t, 2, s.PendingReview)
	assert.Len(t, s.Evaluations, 3)
}

func TestSummarize_DetailCapped(t *testing.T) {
	var evals []model.EvaluationScore
	for i := 0; i < 60; i++ {
		evals = append(evals, model.EvaluationScore{ID: fmt.Sprintf("e%d", i), OverallScore: 0.5})
	}

	s := Summarize(evals, 60, 0, 0)
	assert.Len(t, s.Evaluations, 50)
	assert.Equal(t, "e0", s.Evaluations[0].ID)
}
