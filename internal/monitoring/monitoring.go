// Package monitoring aggregates evaluation outcomes across artifacts for
// the quality dashboard.
package monitoring

import (
	"math"

	"github.com/sells-group/rivaliq/internal/model"
)

// maxDetail caps the per-evaluation rows included in a summary.
const maxDetail = 50

// Summarize folds a set of evaluations plus artifact counts into one
// dashboard summary. Averages are over every evaluation given, rounded to
// three decimals.
func Summarize(evals []model.EvaluationScore, totalArtifacts, accepted, pendingReview int) model.MonitoringSummary {
	summary := model.MonitoringSummary{
		TotalArtifacts: totalArtifacts,
		AcceptedCount:  accepted,
		PendingReview:  pendingReview,
	}

	if len(evals) > 0 {
		var relevance, coverage, hallucination, actionability, freshness, overall float64
		for _, e := range evals {
			relevance += e.Relevance
			coverage += e.EvidenceCoverage
			hallucination += e.HallucinationRisk
			actionability += e.Actionability
			freshness += e.Freshness
			overall += e.OverallScore
			if e.Flagged {
				summary.FlaggedCount++
			}
		}

		n := float64(len(evals))
		summary.AvgRelevance = round3(relevance / n)
		summary.AvgEvidenceCoverage = round3(coverage / n)
		summary.AvgHallucinationRisk = round3(hallucination / n)
		summary.AvgActionability = round3(actionability / n)
		summary.AvgFreshness = round3(freshness / n)
		summary.AvgOverall = round3(overall / n)
	}

	if len(evals) > maxDetail {
		evals = evals[:maxDetail]
	}
	summary.Evaluations = evals

	return summary
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
