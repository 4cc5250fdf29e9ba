package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/rivaliq/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to the given DSN and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse dsn")
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS competitors (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	url         TEXT NOT NULL DEFAULT '',
	sector      TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sources (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	url           TEXT NOT NULL DEFAULT '',
	kind          TEXT NOT NULL DEFAULT 'web',
	status        TEXT NOT NULL DEFAULT 'pending',
	raw_content   TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS insights (
	id              TEXT PRIMARY KEY,
	source_id       TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	competitor_id   TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	text            TEXT NOT NULL,
	sentiment       TEXT NOT NULL DEFAULT 'neutral',
	sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	persona         TEXT NOT NULL DEFAULT '',
	quote           TEXT NOT NULL DEFAULT '',
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	source_url      TEXT NOT NULL DEFAULT '',
	source_date     TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS themes (
	id                   TEXT PRIMARY KEY,
	competitor_id        TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	name                 TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	sentiment            TEXT NOT NULL DEFAULT 'neutral',
	severity_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	frequency            INTEGER NOT NULL DEFAULT 0,
	recency_days         INTEGER NOT NULL DEFAULT 30,
	is_weakness          BOOLEAN NOT NULL DEFAULT FALSE,
	differentiation_move TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS theme_insights (
	theme_id   TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
	insight_id TEXT NOT NULL REFERENCES insights(id) ON DELETE CASCADE,
	PRIMARY KEY (theme_id, insight_id)
);

CREATE TABLE IF NOT EXISTS action_items (
	id            TEXT PRIMARY KEY,
	theme_id      TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
	competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	kind          TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	owner         TEXT NOT NULL DEFAULT '',
	due_date      TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS artifacts (
	id         TEXT PRIMARY KEY,
	action_id  TEXT NOT NULL REFERENCES action_items(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	citations  TEXT NOT NULL DEFAULT '[]',
	accepted   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS evaluation_scores (
	id                 TEXT PRIMARY KEY,
	artifact_id        TEXT NOT NULL REFERENCES artifacts(id) ON DELETE CASCADE,
	relevance          DOUBLE PRECISION NOT NULL,
	evidence_coverage  DOUBLE PRECISION NOT NULL,
	hallucination_risk DOUBLE PRECISION NOT NULL,
	actionability      DOUBLE PRECISION NOT NULL,
	freshness          DOUBLE PRECISION NOT NULL,
	overall_score      DOUBLE PRECISION NOT NULL,
	flagged            BOOLEAN NOT NULL DEFAULT FALSE,
	flag_reason        TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	report_type   TEXT NOT NULL DEFAULT 'snapshot',
	title         TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sources_competitor ON sources(competitor_id);
CREATE INDEX IF NOT EXISTS idx_insights_competitor ON insights(competitor_id);
CREATE INDEX IF NOT EXISTS idx_insights_source ON insights(source_id);
CREATE INDEX IF NOT EXISTS idx_themes_competitor ON themes(competitor_id);
CREATE INDEX IF NOT EXISTS idx_theme_insights_theme ON theme_insights(theme_id);
CREATE INDEX IF NOT EXISTS idx_actions_competitor ON action_items(competitor_id);
CREATE INDEX IF NOT EXISTS idx_artifacts_action ON artifacts(action_id);
CREATE INDEX IF NOT EXISTS idx_evals_artifact ON evaluation_scores(artifact_id);
CREATE INDEX IF NOT EXISTS idx_reports_competitor ON reports(competitor_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Competitors

func (s *PostgresStore) CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	_, err := s.pool.Exec(ctx,
		`INSERT INTO competitors (id, name, url, sector, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.URL, c.Sector, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert competitor")
	}
	return &c, nil
}

func (s *PostgresStore) GetCompetitor(ctx context.Context, id string) (*model.Competitor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, url, sector, description, created_at, updated_at
		 FROM competitors WHERE id = $1`, id)

	var c model.Competitor
	err := row.Scan(&c.ID, &c.Name, &c.URL, &c.Sector, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "competitor %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get competitor")
	}
	return &c, nil
}

func (s *PostgresStore) ListCompetitors(ctx context.Context) ([]model.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, url, sector, description, created_at, updated_at
		 FROM competitors ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list competitors")
	}
	defer rows.Close()

	var out []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.URL, &c.Sector, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan competitor")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list competitors iterate")
}

func (s *PostgresStore) DeleteCompetitor(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete competitor %s", id)
	}
	return checkTag(tag, "competitor", id)
}

// Sources

func (s *PostgresStore) CreateSource(ctx context.Context, competitorID, url string, kind model.SourceKind) (*model.Source, error) {
	src := model.Source{
		ID:           uuid.New().String(),
		CompetitorID: competitorID,
		URL:          url,
		Kind:         kind,
		Status:       model.SourceStatusProcessing,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sources (id, competitor_id, url, kind, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		src.ID, src.CompetitorID, src.URL, string(src.Kind), string(src.Status), src.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert source")
	}
	return &src, nil
}

func (s *PostgresStore) FinishSource(ctx context.Context, id string, status model.SourceStatus, rawContent, errorMessage string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sources SET status = $1, raw_content = $2, error_message = $3 WHERE id = $4`,
		string(status), rawContent, errorMessage, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish source %s", id)
	}
	return checkTag(tag, "source", id)
}

func (s *PostgresStore) ListSources(ctx context.Context, competitorID string) ([]model.Source, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, competitor_id, url, kind, status, raw_content, error_message, created_at
		 FROM sources WHERE competitor_id = $1 ORDER BY created_at DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sources")
	}
	defer rows.Close()

	var out []model.Source
	for rows.Next() {
		var src model.Source
		if err := rows.Scan(&src.ID, &src.CompetitorID, &src.URL, &src.Kind, &src.Status,
			&src.RawContent, &src.ErrorMessage, &src.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan source")
		}
		out = append(out, src)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list sources iterate")
}

// Insights

func (s *PostgresStore) InsertInsights(ctx context.Context, insights []model.Insight) ([]model.Insight, error) {
	if len(insights) == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin insights tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	for i := range insights {
		if insights[i].ID == "" {
			insights[i].ID = uuid.New().String()
		}
		insights[i].CreatedAt = now

		ins := insights[i]
		_, err := tx.Exec(ctx,
			`INSERT INTO insights (id, source_id, competitor_id, text, sentiment, sentiment_score,
			   persona, quote, confidence, source_url, source_date, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			ins.ID, ins.SourceID, ins.CompetitorID, ins.Text, string(ins.Sentiment), ins.SentimentScore,
			ins.Persona, ins.Quote, ins.Confidence, ins.SourceURL, ins.SourceDate, ins.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: insert insight")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit insights")
	}
	return insights, nil
}

func (s *PostgresStore) ListInsights(ctx context.Context, competitorID string) ([]model.Insight, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, competitor_id, text, sentiment, sentiment_score,
		   persona, quote, confidence, source_url, source_date, created_at
		 FROM insights WHERE competitor_id = $1 ORDER BY created_at DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list insights")
	}
	defer rows.Close()

	var out []model.Insight
	for rows.Next() {
		ins, err := scanInsightPG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ins)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list insights iterate")
}

// Themes

func (s *PostgresStore) CreateTheme(ctx context.Context, t model.Theme) (*model.Theme, error) {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO themes (id, competitor_id, name, description, sentiment, severity_score,
		   frequency, recency_days, is_weakness, differentiation_move, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.CompetitorID, t.Name, t.Description, string(t.Sentiment), t.SeverityScore,
		t.Frequency, t.RecencyDays, t.IsWeakness, t.DifferentiationMove, t.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert theme")
	}
	return &t, nil
}

func (s *PostgresStore) LinkThemeInsights(ctx context.Context, themeID string, insightIDs []string) error {
	if len(insightIDs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin links tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, insightID := range insightIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO theme_insights (theme_id, insight_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			themeID, insightID,
		); err != nil {
			return eris.Wrapf(err, "postgres: link theme %s insight %s", themeID, insightID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit links")
}

func (s *PostgresStore) GetTheme(ctx context.Context, id string) (*model.Theme, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, competitor_id, name, description, sentiment, severity_score,
		   frequency, recency_days, is_weakness, differentiation_move, created_at
		 FROM themes WHERE id = $1`, id)

	var t model.Theme
	err := row.Scan(&t.ID, &t.CompetitorID, &t.Name, &t.Description, &t.Sentiment,
		&t.SeverityScore, &t.Frequency, &t.RecencyDays, &t.IsWeakness,
		&t.DifferentiationMove, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "theme %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get theme")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT i.id, i.source_id, i.competitor_id, i.text, i.sentiment, i.sentiment_score,
		   i.persona, i.quote, i.confidence, i.source_url, i.source_date, i.created_at
		 FROM insights i
		 JOIN theme_insights ti ON ti.insight_id = i.id
		 WHERE ti.theme_id = $1 ORDER BY i.created_at`, id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get theme insights")
	}
	defer rows.Close()

	for rows.Next() {
		ins, err := scanInsightPG(rows)
		if err != nil {
			return nil, err
		}
		t.Insights = append(t.Insights, *ins)
	}
	return &t, eris.Wrap(rows.Err(), "postgres: get theme insights iterate")
}

func (s *PostgresStore) ListThemes(ctx context.Context, competitorID string) ([]model.Theme, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, competitor_id, name, description, sentiment, severity_score,
		   frequency, recency_days, is_weakness, differentiation_move, created_at
		 FROM themes WHERE competitor_id = $1 ORDER BY severity_score DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list themes")
	}
	defer rows.Close()

	var out []model.Theme
	for rows.Next() {
		var t model.Theme
		if err := rows.Scan(&t.ID, &t.CompetitorID, &t.Name, &t.Description, &t.Sentiment,
			&t.SeverityScore, &t.Frequency, &t.RecencyDays, &t.IsWeakness,
			&t.DifferentiationMove, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan theme")
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list themes iterate")
}

// Actions and artifacts

func (s *PostgresStore) CreateAction(ctx context.Context, a model.ActionItem) (*model.ActionItem, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO action_items (id, theme_id, competitor_id, kind, title, owner, due_date, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.ThemeID, a.CompetitorID, string(a.Kind), a.Title, a.Owner, a.DueDate, string(a.Status), a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert action")
	}
	return &a, nil
}

func (s *PostgresStore) UpdateActionStatus(ctx context.Context, id string, status model.ActionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE action_items SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update action status %s", id)
	}
	return checkTag(tag, "action", id)
}

func (s *PostgresStore) ListActions(ctx context.Context, competitorID string) ([]model.ActionItem, error) {
	query := `SELECT id, theme_id, competitor_id, kind, title, owner, due_date, status, created_at
	          FROM action_items`
	var args []any
	if competitorID != "" {
		query += ` WHERE competitor_id = $1`
		args = append(args, competitorID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list actions")
	}
	defer rows.Close()

	var out []model.ActionItem
	for rows.Next() {
		var a model.ActionItem
		if err := rows.Scan(&a.ID, &a.ThemeID, &a.CompetitorID, &a.Kind, &a.Title,
			&a.Owner, &a.DueDate, &a.Status, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan action")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list actions iterate")
}

func (s *PostgresStore) CreateArtifact(ctx context.Context, a model.Artifact) (*model.Artifact, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()
	if a.Citations == "" {
		a.Citations = "[]"
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO artifacts (id, action_id, content, kind, citations, accepted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ActionID, a.Content, string(a.Kind), a.Citations, a.Accepted, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert artifact")
	}
	return &a, nil
}

func (s *PostgresStore) GetArtifact(ctx context.Context, id string) (*model.Artifact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, action_id, content, kind, citations, accepted, created_at
		 FROM artifacts WHERE id = $1`, id)

	var a model.Artifact
	err := row.Scan(&a.ID, &a.ActionID, &a.Content, &a.Kind, &a.Citations, &a.Accepted, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "artifact %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get artifact")
	}
	return &a, nil
}

func (s *PostgresStore) SetArtifactAccepted(ctx context.Context, id string, accepted bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE artifacts SET accepted = $1 WHERE id = $2`, accepted, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: set artifact accepted %s", id)
	}
	return checkTag(tag, "artifact", id)
}

// Evaluations

func (s *PostgresStore) ReplaceEvaluation(ctx context.Context, e model.EvaluationScore) (*model.EvaluationScore, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin evaluation tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM evaluation_scores WHERE artifact_id = $1`, e.ArtifactID); err != nil {
		return nil, eris.Wrap(err, "postgres: delete prior evaluation")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO evaluation_scores (id, artifact_id, relevance, evidence_coverage,
		   hallucination_risk, actionability, freshness, overall_score, flagged, flag_reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.ArtifactID, e.Relevance, e.EvidenceCoverage, e.HallucinationRisk,
		e.Actionability, e.Freshness, e.OverallScore, e.Flagged, e.FlagReason, e.CreatedAt,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert evaluation")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit evaluation")
	}
	return &e, nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, limit int) ([]model.EvaluationScore, error) {
	query := `SELECT id, artifact_id, relevance, evidence_coverage, hallucination_risk,
	   actionability, freshness, overall_score, flagged, flag_reason, created_at
	 FROM evaluation_scores ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list evaluations")
	}
	defer rows.Close()

	var out []model.EvaluationScore
	for rows.Next() {
		var e model.EvaluationScore
		if err := rows.Scan(&e.ID, &e.ArtifactID, &e.Relevance, &e.EvidenceCoverage,
			&e.HallucinationRisk, &e.Actionability, &e.Freshness, &e.OverallScore,
			&e.Flagged, &e.FlagReason, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan evaluation")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list evaluations iterate")
}

func (s *PostgresStore) CountArtifacts(ctx context.Context) (int, int, error) {
	var total, accepted int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE accepted) FROM artifacts`).Scan(&total, &accepted)
	if err != nil {
		return 0, 0, eris.Wrap(err, "postgres: count artifacts")
	}
	return total, accepted, nil
}

func (s *PostgresStore) CountPendingReview(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM evaluation_scores es
		 JOIN artifacts a ON a.id = es.artifact_id
		 WHERE es.flagged AND NOT a.accepted`).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count pending review")
	}
	return n, nil
}

// Reports

func (s *PostgresStore) CreateReport(ctx context.Context, r model.Report) (*model.Report, error) {
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()
	if r.ReportType == "" {
		r.ReportType = "snapshot"
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO reports (id, competitor_id, report_type, title, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.CompetitorID, r.ReportType, r.Title, r.Content, r.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert report")
	}
	return &r, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, competitorID string) ([]model.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, competitor_id, report_type, title, content, created_at
		 FROM reports WHERE competitor_id = $1 ORDER BY created_at DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(&r.ID, &r.CompetitorID, &r.ReportType, &r.Title, &r.Content, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list reports iterate")
}

func checkTag(tag pgconn.CommandTag, entity, id string) error {
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

func scanInsightPG(row scannable) (*model.Insight, error) {
	var ins model.Insight
	err := row.Scan(&ins.ID, &ins.SourceID, &ins.CompetitorID, &ins.Text, &ins.Sentiment,
		&ins.SentimentScore, &ins.Persona, &ins.Quote, &ins.Confidence,
		&ins.SourceURL, &ins.SourceDate, &ins.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan insight")
	}
	return &ins, nil
}
