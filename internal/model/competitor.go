package model

import "time"

// Competitor is the root entity: a company being tracked. Deleting a
// competitor cascades to all sources, insights, themes, actions, artifacts,
// evaluations, and reports underneath it.
type Competitor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	Sector      string    `json:"sector,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SourceKind classifies where a source's content came from.
type SourceKind string

const (
	SourceKindReddit     SourceKind = "reddit"
	SourceKindG2         SourceKind = "g2"
	SourceKindCapterra   SourceKind = "capterra"
	SourceKindTrustpilot SourceKind = "trustpilot"
	SourceKindForum      SourceKind = "forum"
	SourceKindBlog       SourceKind = "blog"
	SourceKindPricing    SourceKind = "pricing"
	SourceKindWeb        SourceKind = "web"
	SourceKindPDF        SourceKind = "pdf"
	SourceKindManual     SourceKind = "manual"
	SourceKindSnippet    SourceKind = "web_snippet"
)

// SourceStatus is the lifecycle state of one fetch/paste attempt.
// A source is never mutated after reaching done or failed.
type SourceStatus string

const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusProcessing SourceStatus = "processing"
	SourceStatusDone       SourceStatus = "done"
	SourceStatusFailed     SourceStatus = "failed"
)

// MaxRawContentChars caps the raw text persisted per source.
const MaxRawContentChars = 10000

// Source records one ingestion attempt for a competitor. URL is empty for
// manual pastes and PDF uploads.
type Source struct {
	ID           string       `json:"id"`
	CompetitorID string       `json:"competitor_id"`
	URL          string       `json:"url,omitempty"`
	Kind         SourceKind   `json:"kind"`
	Status       SourceStatus `json:"status"`
	RawContent   string       `json:"raw_content,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
