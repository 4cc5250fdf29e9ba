package model

import "time"

// ActionKind is the user's decision on a theme. All kinds except ignore
// produce an artifact.
type ActionKind string

const (
	ActionKindBattlecard ActionKind = "battlecard"
	ActionKindMessaging  ActionKind = "messaging"
	ActionKindRoadmap    ActionKind = "roadmap"
	ActionKindIgnore     ActionKind = "ignore"
)

// ProducesArtifact reports whether this action kind generates content.
func (k ActionKind) ProducesArtifact() bool {
	return k == ActionKindBattlecard || k == ActionKindMessaging || k == ActionKindRoadmap
}

// ActionStatus is the lifecycle state of an action item.
type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "pending"
	ActionStatusInProgress ActionStatus = "in_progress"
	ActionStatusDone       ActionStatus = "done"
	ActionStatusFlagged    ActionStatus = "flagged"
)

// ActionItem records a user decision on a theme. Ignore actions are created
// already done, with no artifact.
type ActionItem struct {
	ID           string       `json:"id"`
	ThemeID      string       `json:"theme_id"`
	CompetitorID string       `json:"competitor_id"`
	Kind         ActionKind   `json:"kind"`
	Title        string       `json:"title,omitempty"`
	Owner        string       `json:"owner,omitempty"`
	DueDate      string       `json:"due_date,omitempty"`
	Status       ActionStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`

	Artifact *Artifact `json:"artifact,omitempty"`
}

// Artifact is the generated content for one non-ignore action. Citations is
// a JSON-serialized list of Citation values. One-to-one with ActionItem.
type Artifact struct {
	ID        string     `json:"id"`
	ActionID  string     `json:"action_id"`
	Content   string     `json:"content"`
	Kind      ActionKind `json:"kind"`
	Citations string     `json:"citations,omitempty"`
	Accepted  bool       `json:"accepted"`
	CreatedAt time.Time  `json:"created_at"`

	Evaluation *EvaluationScore `json:"evaluation,omitempty"`
}

// Citation ties a generated claim back to a real insight quote. Citations
// are derived from insights, never parsed out of generated prose.
type Citation struct {
	Source string `json:"source"`
	Date   string `json:"date"`
	URL    string `json:"url"`
	Quote  string `json:"quote"`
}

// EvaluationScore is the quality-gate result for one artifact. All rubric
// values are in [0.0, 1.0]; HallucinationRisk is inverted (1.0 = safe).
// Written exactly once per artifact; re-evaluation replaces it.
type EvaluationScore struct {
	ID                string    `json:"id"`
	ArtifactID        string    `json:"artifact_id"`
	Relevance         float64   `json:"relevance"`
	EvidenceCoverage  float64   `json:"evidence_coverage"`
	HallucinationRisk float64   `json:"hallucination_risk"`
	Actionability     float64   `json:"actionability"`
	Freshness         float64   `json:"freshness"`
	OverallScore      float64   `json:"overall_score"`
	Flagged           bool      `json:"flagged"`
	FlagReason        string    `json:"flag_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Report is a generated competitive snapshot for a competitor. Content is a
// JSON document produced by the writer.
type Report struct {
	ID           string    `json:"id"`
	CompetitorID string    `json:"competitor_id"`
	ReportType   string    `json:"report_type"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}
