// Package store persists the competitive-intelligence data model. Two
// implementations exist: SQLite (default, embedded) and Postgres.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/rivaliq/internal/model"
)

// ErrNotFound is returned when a referenced entity id does not exist.
// Callers distinguish it with errors.Is.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err is an entity-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store defines the persistence interface for the intelligence pipeline.
// Deleting a competitor cascades to every row underneath it.
type Store interface {
	// Competitors
	CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error)
	GetCompetitor(ctx context.Context, id string) (*model.Competitor, error)
	ListCompetitors(ctx context.Context) ([]model.Competitor, error)
	DeleteCompetitor(ctx context.Context, id string) error

	// Sources
	CreateSource(ctx context.Context, competitorID, url string, kind model.SourceKind) (*model.Source, error)
	FinishSource(ctx context.Context, id string, status model.SourceStatus, rawContent, errorMessage string) error
	ListSources(ctx context.Context, competitorID string) ([]model.Source, error)

	// Insights
	InsertInsights(ctx context.Context, insights []model.Insight) ([]model.Insight, error)
	ListInsights(ctx context.Context, competitorID string) ([]model.Insight, error)

	// Themes
	CreateTheme(ctx context.Context, t model.Theme) (*model.Theme, error)
	LinkThemeInsights(ctx context.Context, themeID string, insightIDs []string) error
	GetTheme(ctx context.Context, id string) (*model.Theme, error)
	ListThemes(ctx context.Context, competitorID string) ([]model.Theme, error)

	// Actions and artifacts
	CreateAction(ctx context.Context, a model.ActionItem) (*model.ActionItem, error)
	UpdateActionStatus(ctx context.Context, id string, status model.ActionStatus) error
	ListActions(ctx context.Context, competitorID string) ([]model.ActionItem, error)
	CreateArtifact(ctx context.Context, a model.Artifact) (*model.Artifact, error)
	GetArtifact(ctx context.Context, id string) (*model.Artifact, error)
	SetArtifactAccepted(ctx context.Context, id string, accepted bool) error

	// Evaluations
	ReplaceEvaluation(ctx context.Context, e model.EvaluationScore) (*model.EvaluationScore, error)
	ListEvaluations(ctx context.Context, limit int) ([]model.EvaluationScore, error)
	CountArtifacts(ctx context.Context) (total, accepted int, err error)
	CountPendingReview(ctx context.Context) (int, error)

	// Reports
	CreateReport(ctx context.Context, r model.Report) (*model.Report, error)
	ListReports(ctx context.Context, competitorID string) ([]model.Report, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
