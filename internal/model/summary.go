package model

// IngestStatus is the overall outcome of one ingestion run.
type IngestStatus string

const (
	// IngestStatusSuccess: content was produced, regardless of per-source errors.
	IngestStatusSuccess IngestStatus = "success"
	// IngestStatusWarning: no errors occurred but nothing was produced.
	IngestStatusWarning IngestStatus = "warning"
	// IngestStatusError: nothing was produced and at least one source failed.
	IngestStatusError IngestStatus = "error"
)

// IngestSummary is the status-tagged result every pipeline entry point
// returns. Message concatenates all per-source errors; the counts are the
// source of truth for what was durably persisted.
type IngestSummary struct {
	Status            IngestStatus `json:"status"`
	SourcesCreated    int          `json:"sources_created"`
	InsightsExtracted int          `json:"insights_extracted"`
	ThemesGenerated   int          `json:"themes_generated"`
	Message           string       `json:"message"`
}

// MonitoringSummary aggregates evaluation outcomes across a competitor's
// artifacts.
type MonitoringSummary struct {
	TotalArtifacts       int               `json:"total_artifacts"`
	AvgRelevance         float64           `json:"avg_relevance"`
	AvgEvidenceCoverage  float64           `json:"avg_evidence_coverage"`
	AvgHallucinationRisk float64           `json:"avg_hallucination_risk"`
	AvgActionability     float64           `json:"avg_actionability"`
	AvgFreshness         float64           `json:"avg_freshness"`
	AvgOverall           float64           `json:"avg_overall"`
	FlaggedCount         int               `json:"flagged_count"`
	AcceptedCount        int               `json:"accepted_count"`
	PendingReview        int               `json:"pending_review"`
	Evaluations          []EvaluationScore `json:"evaluations,omitempty"`
}
