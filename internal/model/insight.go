package model

import "time"

// Sentiment labels the tone of an insight or theme.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// Insight is one extracted, evidence-backed claim about a competitor.
// SentimentScore is in [-1.0, 1.0]; Confidence in [0.0, 1.0].
type Insight struct {
	ID             string    `json:"id"`
	SourceID       string    `json:"source_id"`
	CompetitorID   string    `json:"competitor_id"`
	Text           string    `json:"text"`
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	Persona        string    `json:"persona,omitempty"`
	Quote          string    `json:"quote,omitempty"`
	Confidence     float64   `json:"confidence"`
	SourceURL      string    `json:"source_url,omitempty"`
	SourceDate     string    `json:"source_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsightDraft is an insight as returned by the extraction backend, before
// it is bound to a source and persisted.
type InsightDraft struct {
	Text           string    `json:"text"`
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	Persona        string    `json:"persona"`
	Quote          string    `json:"quote"`
	Confidence     float64   `json:"confidence"`
}

// Theme is a named cluster of related insights. SeverityScore is in
// [0.0, 1.0]; Frequency must equal the number of linked insights.
type Theme struct {
	ID                  string    `json:"id"`
	CompetitorID        string    `json:"competitor_id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	Sentiment           Sentiment `json:"sentiment"`
	SeverityScore       float64   `json:"severity_score"`
	Frequency           int       `json:"frequency"`
	RecencyDays         int       `json:"recency_days"`
	IsWeakness          bool      `json:"is_weakness"`
	DifferentiationMove string    `json:"differentiation_move,omitempty"`
	CreatedAt           time.Time `json:"created_at"`

	// Insights is populated on reads that hydrate theme membership.
	Insights []Insight `json:"insights,omitempty"`
}

// ThemeDraft is a theme as returned by the clustering backend. InsightIndices
// are zero-based positions into the insight list the clusterer was given;
// the orchestrator translates them into durable join rows.
type ThemeDraft struct {
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Sentiment           Sentiment `json:"sentiment"`
	SeverityScore       float64   `json:"severity_score"`
	Frequency           int       `json:"frequency"`
	RecencyDays         int       `json:"recency_days"`
	IsWeakness          bool      `json:"is_weakness"`
	DifferentiationMove string    `json:"differentiation_move"`
	InsightIndices      []int     `json:"insight_indices"`
}
