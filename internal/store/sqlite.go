package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/rivaliq/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. Foreign keys are enabled for the cascade deletes.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS competitors (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	url         TEXT NOT NULL DEFAULT '',
	sector      TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sources (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	url           TEXT NOT NULL DEFAULT '',
	kind          TEXT NOT NULL DEFAULT 'web',
	status        TEXT NOT NULL DEFAULT 'pending',
	raw_content   TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS insights (
	id              TEXT PRIMARY KEY,
	source_id       TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	competitor_id   TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	text            TEXT NOT NULL,
	sentiment       TEXT NOT NULL DEFAULT 'neutral',
	sentiment_score REAL NOT NULL DEFAULT 0,
	persona         TEXT NOT NULL DEFAULT '',
	quote           TEXT NOT NULL DEFAULT '',
	confidence      REAL NOT NULL DEFAULT 0.5,
	source_url      TEXT NOT NULL DEFAULT '',
	source_date     TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS themes (
	id                   TEXT PRIMARY KEY,
	competitor_id        TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	name                 TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	sentiment            TEXT NOT NULL DEFAULT 'neutral',
	severity_score       REAL NOT NULL DEFAULT 0,
	frequency            INTEGER NOT NULL DEFAULT 0,
	recency_days         INTEGER NOT NULL DEFAULT 30,
	is_weakness          INTEGER NOT NULL DEFAULT 0,
	differentiation_move TEXT NOT NULL DEFAULT '',
	created_at           DATETIME NOT NULL DEFAULT (datetime('now'))
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
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS artifacts (
	id         TEXT PRIMARY KEY,
	action_id  TEXT NOT NULL REFERENCES action_items(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	citations  TEXT NOT NULL DEFAULT '[]',
	accepted   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS evaluation_scores (
	id                 TEXT PRIMARY KEY,
	artifact_id        TEXT NOT NULL REFERENCES artifacts(id) ON DELETE CASCADE,
	relevance          REAL NOT NULL,
	evidence_coverage  REAL NOT NULL,
	hallucination_risk REAL NOT NULL,
	actionability      REAL NOT NULL,
	freshness          REAL NOT NULL,
	overall_score      REAL NOT NULL,
	flagged            INTEGER NOT NULL DEFAULT 0,
	flag_reason        TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reports (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	report_type   TEXT NOT NULL DEFAULT 'snapshot',
	title         TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Competitors

func (s *SQLiteStore) CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO competitors (id, name, url, sector, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.URL, c.Sector, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert competitor")
	}
	return &c, nil
}

func (s *SQLiteStore) GetCompetitor(ctx context.Context, id string) (*model.Competitor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, url, sector, description, created_at, updated_at
		 FROM competitors WHERE id = ?`, id)

	var c model.Competitor
	err := row.Scan(&c.ID, &c.Name, &c.URL, &c.Sector, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "competitor %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get competitor")
	}
	return &c, nil
}

func (s *SQLiteStore) ListCompetitors(ctx context.Context) ([]model.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, sector, description, created_at, updated_at
		 FROM competitors ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list competitors")
	}
	defer rows.Close()

	var out []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.URL, &c.Sector, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan competitor")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list competitors iterate")
}

func (s *SQLiteStore) DeleteCompetitor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete competitor %s", id)
	}
	return checkRowsAffected(res, "competitor", id)
}

// Sources

func (s *SQLiteStore) CreateSource(ctx context.Context, competitorID, url string, kind model.SourceKind) (*model.Source, error) {
	src := model.Source{
		ID:           uuid.New().String(),
		CompetitorID: competitorID,
		URL:          url,
		Kind:         kind,
		Status:       model.SourceStatusProcessing,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (id, competitor_id, url, kind, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		src.ID, src.CompetitorID, src.URL, string(src.Kind), string(src.Status), src.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert source")
	}
	return &src, nil
}

func (s *SQLiteStore) FinishSource(ctx context.Context, id string, status model.SourceStatus, rawContent, errorMessage string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sources SET status = ?, raw_content = ?, error_message = ? WHERE id = ?`,
		string(status), rawContent, errorMessage, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish source %s", id)
	}
	return checkRowsAffected(res, "source", id)
}

func (s *SQLiteStore) ListSources(ctx context.Context, competitorID string) ([]model.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, competitor_id, url, kind, status, raw_content, error_message, created_at
		 FROM sources WHERE competitor_id = ? ORDER BY created_at DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sources")
	}
	defer rows.Close()

	var out []model.Source
	for rows.Next() {
		var src model.Source
		if err := rows.Scan(&src.ID, &src.CompetitorID, &src.URL, &src.Kind, &src.Status,
			&src.RawContent, &src.ErrorMessage, &src.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan source")
		}
		out = append(out, src)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list sources iterate")
}

// Insights

func (s *SQLiteStore) InsertInsights(ctx context.Context, insights []model.Insight) ([]model.Insight, error) {
	if len(insights) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin insights tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for i := range insights {
		if insights[i].ID == "" {
			insights[i].ID = uuid.New().String()
		}
		insights[i].CreatedAt = now

		ins := insights[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO insights (id, source_id, competitor_id, text, sentiment, sentiment_score,
			   persona, quote, confidence, source_url, source_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ins.ID, ins.SourceID, ins.CompetitorID, ins.Text, string(ins.Sentiment), ins.SentimentScore,
			ins.Persona, ins.Quote, ins.Confidence, ins.SourceURL, ins.SourceDate, ins.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: insert insight")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit insights")
	}
	return insights, nil
}

func (s *SQLiteStore) ListInsights(ctx context.Context, competitorID string) ([]model.Insight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, competitor_id, text, sentiment, sentiment_score,
		   persona, quote, confidence, source_url, source_date, created_at
		 FROM insights WHERE competitor_id = ? ORDER BY created_at DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list insights")
	}
	defer rows.Close()

	var out []model.Insight
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ins)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list insights iterate")
}

// Themes

func (s *SQLiteStore) CreateTheme(ctx context.Context, t model.Theme) (*model.Theme, error) {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO themes (id, competitor_id, name, description, sentiment, severity_score,
		   frequency, recency_days, is_weakness, differentiation_move, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CompetitorID, t.Name, t.Description, string(t.Sentiment), t.SeverityScore,
		t.Frequency, t.RecencyDays, t.IsWeakness, t.DifferentiationMove, t.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert theme")
	}
	return &t, nil
}

func (s *SQLiteStore) LinkThemeInsights(ctx context.Context, themeID string, insightIDs []string) error {
	if len(insightIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin links tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, insightID := range insightIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO theme_insights (theme_id, insight_id) VALUES (?, ?)`,
			themeID, insightID,
		); err != nil {
			return eris.Wrapf(err, "sqlite: link theme %s insight %s", themeID, insightID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit links")
}

func (s *SQLiteStore) GetTheme(ctx context.Context, id string) (*model.Theme, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, competitor_id, name, description, sentiment, severity_score,
		   frequency, recency_days, is_weakness, differentiation_move, created_at
		 FROM themes WHERE id = ?`, id)

	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "theme %s", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.source_id, i.competitor_id, i.text, i.sentiment, i.sentiment_score,
		   i.persona, i.quote, i.confidence, i.source_url, i.source_date, i.created_at
		 FROM insights i
		 JOIN theme_insights ti ON ti.insight_id = i.id
		 WHERE ti.theme_id = ? ORDER BY i.created_at`, id)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get theme insights")
	}
	defer rows.Close()

	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		t.Insights = append(t.Insights, *ins)
	}
	return t, eris.Wrap(rows.Err(), "sqlite: get theme insights iterate")
}

func (s *SQLiteStore) ListThemes(ctx context.Context, competitorID string) ([]model.Theme, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, competitor_id, name, description, sentiment, severity_score,
		   frequency, recency_days, is_weakness, differentiation_move, created_at
		 FROM themes WHERE competitor_id = ? ORDER BY severity_score DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list themes")
	}
	defer rows.Close()

	var out []model.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list themes iterate")
}

// Actions and artifacts

func (s *SQLiteStore) CreateAction(ctx context.Context, a model.ActionItem) (*model.ActionItem, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO action_items (id, theme_id, competitor_id, kind, title, owner, due_date, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ThemeID, a.CompetitorID, string(a.Kind), a.Title, a.Owner, a.DueDate, string(a.Status), a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert action")
	}
	return &a, nil
}

func (s *SQLiteStore) UpdateActionStatus(ctx context.Context, id string, status model.ActionStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE action_items SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update action status %s", id)
	}
	return checkRowsAffected(res, "action", id)
}

func (s *SQLiteStore) ListActions(ctx context.Context, competitorID string) ([]model.ActionItem, error) {
	query := `SELECT id, theme_id, competitor_id, kind, title, owner, due_date, status, created_at
	          FROM action_items`
	var args []any
	if competitorID != "" {
		query += ` WHERE competitor_id = ?`
		args = append(args, competitorID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list actions")
	}
	defer rows.Close()

	var out []model.ActionItem
	for rows.Next() {
		var a model.ActionItem
		if err := rows.Scan(&a.ID, &a.ThemeID, &a.CompetitorID, &a.Kind, &a.Title,
			&a.Owner, &a.DueDate, &a.Status, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan action")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list actions iterate")
}

func (s *SQLiteStore) CreateArtifact(ctx context.Context, a model.Artifact) (*model.Artifact, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()
	if a.Citations == "" {
		a.Citations = "[]"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, action_id, content, kind, citations, accepted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ActionID, a.Content, string(a.Kind), a.Citations, a.Accepted, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert artifact")
	}
	return &a, nil
}

func (s *SQLiteStore) GetArtifact(ctx context.Context, id string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, action_id, content, kind, citations, accepted, created_at
		 FROM artifacts WHERE id = ?`, id)

	var a model.Artifact
	err := row.Scan(&a.ID, &a.ActionID, &a.Content, &a.Kind, &a.Citations, &a.Accepted, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "artifact %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get artifact")
	}
	return &a, nil
}

func (s *SQLiteStore) SetArtifactAccepted(ctx context.Context, id string, accepted bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE artifacts SET accepted = ? WHERE id = ?`, accepted, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set artifact accepted %s", id)
	}
	return checkRowsAffected(res, "artifact", id)
}

// Evaluations

func (s *SQLiteStore) ReplaceEvaluation(ctx context.Context, e model.EvaluationScore) (*model.EvaluationScore, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin evaluation tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM evaluation_scores WHERE artifact_id = ?`, e.ArtifactID); err != nil {
		return nil, eris.Wrap(err, "sqlite: delete prior evaluation")
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO evaluation_scores (id, artifact_id, relevance, evidence_coverage,
		   hallucination_risk, actionability, freshness, overall_score, flagged, flag_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ArtifactID, e.Relevance, e.EvidenceCoverage, e.HallucinationRisk,
		e.Actionability, e.Freshness, e.OverallScore, e.Flagged, e.FlagReason, e.CreatedAt,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert evaluation")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit evaluation")
	}
	return &e, nil
}

func (s *SQLiteStore) ListEvaluations(ctx context.Context, limit int) ([]model.EvaluationScore, error) {
	query := `SELECT id, artifact_id, relevance, evidence_coverage, hallucination_risk,
	   actionability, freshness, overall_score, flagged, flag_reason, created_at
	 FROM evaluation_scores ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list evaluations")
	}
	defer rows.Close()

	var out []model.EvaluationScore
	for rows.Next() {
		var e model.EvaluationScore
		if err := rows.Scan(&e.ID, &e.ArtifactID, &e.Relevance, &e.EvidenceCoverage,
			&e.HallucinationRisk, &e.Actionability, &e.Freshness, &e.OverallScore,
			&e.Flagged, &e.FlagReason, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evaluation")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list evaluations iterate")
}

func (s *SQLiteStore) CountArtifacts(ctx context.Context) (int, int, error) {
	var total, accepted int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(accepted), 0) FROM artifacts`).Scan(&total, &accepted)
	if err != nil {
		return 0, 0, eris.Wrap(err, "sqlite: count artifacts")
	}
	return total, accepted, nil
}

func (s *SQLiteStore) CountPendingReview(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluation_scores es
		 JOIN artifacts a ON a.id = es.artifact_id
		 WHERE es.flagged = 1 AND a.accepted = 0`).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: count pending review")
	}
	return n, nil
}

// Reports

func (s *SQLiteStore) CreateReport(ctx context.Context, r model.Report) (*model.Report, error) {
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()
	if r.ReportType == "" {
		r.ReportType = "snapshot"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, competitor_id, report_type, title, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.CompetitorID, r.ReportType, r.Title, r.Content, r.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert report")
	}
	return &r, nil
}

func (s *SQLiteStore) ListReports(ctx context.Context, competitorID string) ([]model.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, competitor_id, report_type, title, content, created_at
		 FROM reports WHERE competitor_id = ? ORDER BY created_at DESC`, competitorID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(&r.ID, &r.CompetitorID, &r.ReportType, &r.Title, &r.Content, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list reports iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanInsight(row scannable) (*model.Insight, error) {
	var ins model.Insight
	err := row.Scan(&ins.ID, &ins.SourceID, &ins.CompetitorID, &ins.Text, &ins.Sentiment,
		&ins.SentimentScore, &ins.Persona, &ins.Quote, &ins.Confidence,
		&ins.SourceURL, &ins.SourceDate, &ins.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan insight")
	}
	return &ins, nil
}

func scanTheme(row scannable) (*model.Theme, error) {
	var t model.Theme
	err := row.Scan(&t.ID, &t.CompetitorID, &t.Name, &t.Description, &t.Sentiment,
		&t.SeverityScore, &t.Frequency, &t.RecencyDays, &t.IsWeakness,
		&t.DifferentiationMove, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan theme")
	}
	return &t, nil
}
