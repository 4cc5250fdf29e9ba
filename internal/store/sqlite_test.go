package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rivaliq/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedCompetitor(t *testing.T, s *SQLiteStore) *model.Competitor {
	t.Helper()
	c, err := s.CreateCompetitor(context.Background(), model.Competitor{
		Name:   "Acme Analytics",
		URL:    "https://acme.example.com",
		Sector: "analytics",
	})
	require.NoError(t, err)
	return c
}

func TestCompetitorCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := seedCompetitor(t, s)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := s.GetCompetitor(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Analytics", got.Name)
	assert.Equal(t, "analytics", got.Sector)

	list, err := s.ListCompetitors(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteCompetitor(ctx, c.ID))

	_, err = s.GetCompetitor(ctx, c.ID)
	assert.True(t, IsNotFound(err))
}

func TestGetCompetitor_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetCompetitor(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSourceLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)

	src, err := s.CreateSource(ctx, c.ID, "https://g2.com/products/acme/reviews", model.SourceKindG2)
	require.NoError(t, err)
	assert.Equal(t, model.SourceStatusProcessing, src.Status)

	require.NoError(t, s.FinishSource(ctx, src.ID, model.SourceStatusDone, "extracted text", ""))

	sources, err := s.ListSources(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, model.SourceStatusDone, sources[0].Status)
	assert.Equal(t, "extracted text", sources[0].RawContent)
	assert.Equal(t, model.SourceKindG2, sources[0].Kind)

	err = s.FinishSource(ctx, "missing", model.SourceStatusFailed, "", "boom")
	assert.True(t, IsNotFound(err))
}

func TestInsertInsights_Batch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)
	src, err := s.CreateSource(ctx, c.ID, "", model.SourceKindManual)
	require.NoError(t, err)

	inserted, err := s.InsertInsights(ctx, []model.Insight{
		{SourceID: src.ID, CompetitorID: c.ID, Text: "Support is slow", Sentiment: model.SentimentNegative, SentimentScore: -0.7, Confidence: 0.9},
		{SourceID: src.ID, CompetitorID: c.ID, Text: "Pricing went up", Sentiment: model.SentimentNegative, SentimentScore: -0.4, Confidence: 0.6},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.NotEmpty(t, inserted[0].ID)
	assert.NotEmpty(t, inserted[1].ID)

	list, err := s.ListInsights(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	empty, err := s.InsertInsights(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestThemeHydration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)
	src, err := s.CreateSource(ctx, c.ID, "", model.SourceKindManual)
	require.NoError(t, err)

	insights, err := s.InsertInsights(ctx, []model.Insight{
		{SourceID: src.ID, CompetitorID: c.ID, Text: "a"},
		{SourceID: src.ID, CompetitorID: c.ID, Text: "b"},
		{SourceID: src.ID, CompetitorID: c.ID, Text: "c"},
	})
	require.NoError(t, err)

	theme, err := s.CreateTheme(ctx, model.Theme{
		CompetitorID:  c.ID,
		Name:          "Slow support",
		Sentiment:     model.SentimentNegative,
		SeverityScore: 0.8,
		Frequency:     2,
		IsWeakness:    true,
	})
	require.NoError(t, err)

	require.NoError(t, s.LinkThemeInsights(ctx, theme.ID, []string{insights[0].ID, insights[2].ID}))
	// Linking the same pair twice must not fail.
	require.NoError(t, s.LinkThemeInsights(ctx, theme.ID, []string{insights[0].ID}))

	got, err := s.GetTheme(ctx, theme.ID)
	require.NoError(t, err)
	assert.True(t, got.IsWeakness)
	require.Len(t, got.Insights, 2)

	texts := []string{got.Insights[0].Text, got.Insights[1].Text}
	assert.ElementsMatch(t, []string{"a", "c"}, texts)

	_, err = s.GetTheme(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestListThemes_SeverityOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)

	_, err := s.CreateTheme(ctx, model.Theme{CompetitorID: c.ID, Name: "minor", SeverityScore: 0.2})
	require.NoError(t, err)
	_, err = s.CreateTheme(ctx, model.Theme{CompetitorID: c.ID, Name: "major", SeverityScore: 0.9})
	require.NoError(t, err)

	themes, err := s.ListThemes(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "major", themes[0].Name)
}

func TestActionAndArtifact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)
	theme, err := s.CreateTheme(ctx, model.Theme{CompetitorID: c.ID, Name: "t"})
	require.NoError(t, err)

	action, err := s.CreateAction(ctx, model.ActionItem{
		ThemeID:      theme.ID,
		CompetitorID: c.ID,
		Kind:         model.ActionKindBattlecard,
		Status:       model.ActionStatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateActionStatus(ctx, action.ID, model.ActionStatusDone))
	actions, err := s.ListActions(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, model.ActionStatusDone, actions[0].Status)

	art, err := s.CreateArtifact(ctx, model.Artifact{
		ActionID: action.ID,
		Content:  "## Battlecard",
		Kind:     model.ActionKindBattlecard,
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", art.Citations)

	require.NoError(t, s.SetArtifactAccepted(ctx, art.ID, true))
	got, err := s.GetArtifact(ctx, art.ID)
	require.NoError(t, err)
	assert.True(t, got.Accepted)

	err = s.UpdateActionStatus(ctx, "missing", model.ActionStatusDone)
	assert.True(t, IsNotFound(err))
}

func TestListActions_AllCompetitors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c1 := seedCompetitor(t, s)
	c2, err := s.CreateCompetitor(ctx, model.Competitor{Name: "Other"})
	require.NoError(t, err)

	t1, err := s.CreateTheme(ctx, model.Theme{CompetitorID: c1.ID, Name: "a"})
	require.NoError(t, err)
	t2, err := s.CreateTheme(ctx, model.Theme{CompetitorID: c2.ID, Name: "b"})
	require.NoError(t, err)

	_, err = s.CreateAction(ctx, model.ActionItem{ThemeID: t1.ID, CompetitorID: c1.ID, Kind: model.ActionKindIgnore, Status: model.ActionStatusDone})
	require.NoError(t, err)
	_, err = s.CreateAction(ctx, model.ActionItem{ThemeID: t2.ID, CompetitorID: c2.ID, Kind: model.ActionKindRoadmap, Status: model.ActionStatusPending})
	require.NoError(t, err)

	all, err := s.ListActions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := s.ListActions(ctx, c1.ID)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestReplaceEvaluation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)
	theme, err := s.CreateTheme(ctx, model.Theme{CompetitorID: c.ID, Name: "t"})
	require.NoError(t, err)
	action, err := s.CreateAction(ctx, model.ActionItem{ThemeID: theme.ID, CompetitorID: c.ID, Kind: model.ActionKindMessaging, Status: model.ActionStatusPending})
	require.NoError(t, err)
	art, err := s.CreateArtifact(ctx, model.Artifact{ActionID: action.ID, Content: "x", Kind: model.ActionKindMessaging})
	require.NoError(t, err)

	_, err = s.ReplaceEvaluation(ctx, model.EvaluationScore{
		ArtifactID: art.ID, Relevance: 0.4, OverallScore: 0.4, Flagged: true, FlagReason: "thin",
	})
	require.NoError(t, err)

	// Re-evaluation replaces the prior row rather than appending.
	_, err = s.ReplaceEvaluation(ctx, model.EvaluationScore{
		ArtifactID: art.ID, Relevance: 0.9, OverallScore: 0.85,
	})
	require.NoError(t, err)

	evals, err := s.ListEvaluations(ctx, 50)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.InDelta(t, 0.85, evals[0].OverallScore, 1e-9)
	assert.False(t, evals[0].Flagged)
}

func TestMonitoringCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)
	theme, err := s.CreateTheme(ctx, model.Theme{CompetitorID: c.ID, Name: "t"})
	require.NoError(t, err)

	makeArtifact := func(accepted, flagged bool) {
		action, err := s.CreateAction(ctx, model.ActionItem{ThemeID: theme.ID, CompetitorID: c.ID, Kind: model.ActionKindBattlecard, Status: model.ActionStatusPending})
		require.NoError(t, err)
		art, err := s.CreateArtifact(ctx, model.Artifact{ActionID: action.ID, Content: "x", Kind: model.ActionKindBattlecard, Accepted: accepted})
		require.NoError(t, err)
		_, err = s.ReplaceEvaluation(ctx, model.EvaluationScore{ArtifactID: art.ID, OverallScore: 0.5, Flagged: flagged})
		require.NoError(t, err)
	}

	makeArtifact(true, false)  // accepted, clean
	makeArtifact(false, true)  // pending review
	makeArtifact(true, true)   // flagged but already accepted
	makeArtifact(false, false) // not accepted, not flagged

	total, accepted, err := s.CountArtifacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, accepted)

	pending, err := s.CountPendingReview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestDeleteCompetitor_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)

	src, err := s.CreateSource(ctx, c.ID, "https://example.com", model.SourceKindWeb)
	require.NoError(t, err)
	insights, err := s.InsertInsights(ctx, []model.Insight{{SourceID: src.ID, CompetitorID: c.ID, Text: "x"}})
	require.NoError(t, err)
	theme, err := s.CreateTheme(ctx, model.Theme{CompetitorID: c.ID, Name: "t"})
	require.NoError(t, err)
	require.NoError(t, s.LinkThemeInsights(ctx, theme.ID, []string{insights[0].ID}))
	action, err := s.CreateAction(ctx, model.ActionItem{ThemeID: theme.ID, CompetitorID: c.ID, Kind: model.ActionKindBattlecard, Status: model.ActionStatusPending})
	require.NoError(t, err)
	art, err := s.CreateArtifact(ctx, model.Artifact{ActionID: action.ID, Content: "x", Kind: model.ActionKindBattlecard})
	require.NoError(t, err)
	_, err = s.ReplaceEvaluation(ctx, model.EvaluationScore{ArtifactID: art.ID, OverallScore: 0.7})
	require.NoError(t, err)
	_, err = s.CreateReport(ctx, model.Report{CompetitorID: c.ID, Content: "{}"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCompetitor(ctx, c.ID))

	sources, err := s.ListSources(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, sources)

	remaining, err := s.ListInsights(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	themes, err := s.ListThemes(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, themes)

	evals, err := s.ListEvaluations(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, evals)

	reports, err := s.ListReports(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s)

	r, err := s.CreateReport(ctx, model.Report{CompetitorID: c.ID, Title: "Snapshot", Content: `{"summary": "ok"}`})
	require.NoError(t, err)
	assert.Equal(t, "snapshot", r.ReportType)

	reports, err := s.ListReports(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Snapshot", reports[0].Title)
}
