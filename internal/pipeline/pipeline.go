// Package pipeline orchestrates the ingest, research, and action flows:
// collect sources, extract insights, cluster themes, generate and gate
// artifacts. Every entry point returns a status-tagged summary; a missing
// competitor or theme is the only hard error.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/rivaliq/internal/analyst"
	"github.com/sells-group/rivaliq/internal/collector"
	"github.com/sells-group/rivaliq/internal/config"
	"github.com/sells-group/rivaliq/internal/evaluator"
	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
	"github.com/sells-group/rivaliq/internal/store"
	"github.com/sells-group/rivaliq/internal/writer"
	"github.com/sells-group/rivaliq/pkg/whitecircle"
)

// maxExtractionChunks bounds the chunks concatenated into one extraction
// call, capping backend token cost per run.
const maxExtractionChunks = 10

// chunkSeparator joins the selected chunks for the extraction prompt.
const chunkSeparator = "\n\n---\n\n"

// discoverer is the research surface of collector.Researcher, behind an
// interface so tests can script discovery without the network.
type discoverer interface {
	Discover(ctx context.Context, competitorName, sector string) []collector.ResearchResult
	FetchAll(ctx context.Context, results []collector.ResearchResult) []collector.FetchedDoc
}

// Orchestrator wires the collector, analyst, writer, and evaluator around
// the store. Construct once at startup and share.
type Orchestrator struct {
	store      store.Store
	fetcher    *collector.Fetcher
	chunker    collector.Chunker
	researcher discoverer
	analyst    *analyst.Analyst
	writer     *writer.Writer
	evaluator  *evaluator.Evaluator
	maxFetch   int
}

// New builds an Orchestrator. external may be nil when no scoring service
// is configured.
func New(st store.Store, gen gateway.Generator, external whitecircle.Client, cfg *config.Config) *Orchestrator {
	fetcher := collector.NewFetcher(time.Duration(cfg.Collector.TimeoutSecs) * time.Second)
	maxFetch := cfg.Collector.MaxFetch
	if maxFetch <= 0 {
		maxFetch = 8
	}
	return &Orchestrator{
		store:      st,
		fetcher:    fetcher,
		chunker:    collector.NewChunker(cfg.Collector.ChunkWords, cfg.Collector.OverlapWords),
		researcher: collector.NewResearcher(fetcher, gen, maxFetch),
		analyst:    analyst.New(gen),
		writer:     writer.New(gen),
		evaluator:  evaluator.New(external, gen, cfg.Eval),
		maxFetch:   maxFetch,
	}
}

// collected is one successful source plus its chunked text.
type collected struct {
	sourceID string
	url      string
	label    string
	chunks   []string
}

// Ingest runs the URL/raw-text batch variant. Each input gets its own
// source row; a failed fetch is recorded on that source and does not abort
// the others.
func (o *Orchestrator) Ingest(ctx context.Context, competitorID string, urls, rawTexts []string) (*model.IngestSummary, error) {
	comp, err := o.store.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		docs []collected
		errs []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxFetch)
	for _, rawURL := range urls {
		g.Go(func() error {
			src, err := o.store.CreateSource(gctx, competitorID, rawURL, collector.DetectSourceKind(rawURL))
			if err != nil {
				return err
			}

			text, _, ferr := o.fetcher.Fetch(gctx, rawURL)
			if ferr != nil {
				zap.L().Warn("pipeline: fetch failed",
					zap.String("url", rawURL),
					zap.Error(ferr),
				)
				if err := o.store.FinishSource(gctx, src.ID, model.SourceStatusFailed, "", ferr.Error()); err != nil {
					return err
				}
				mu.Lock()
				errs = append(errs, ferr.Error())
				mu.Unlock()
				return nil
			}

			capped := truncateContent(collector.RedactPII(text))
			if err := o.store.FinishSource(gctx, src.ID, model.SourceStatusDone, capped, ""); err != nil {
				return err
			}

			mu.Lock()
			docs = append(docs, collected{sourceID: src.ID, url: rawURL, label: rawURL, chunks: o.chunker.Chunk(capped)})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, raw := range rawTexts {
		src, err := o.store.CreateSource(ctx, competitorID, "", model.SourceKindManual)
		if err != nil {
			return nil, err
		}

		cleaned, perr := collector.ParseRaw(raw)
		if perr != nil {
			if err := o.store.FinishSource(ctx, src.ID, model.SourceStatusFailed, "", perr.Error()); err != nil {
				return nil, err
			}
			errs = append(errs, perr.Error())
			continue
		}

		capped := truncateContent(collector.RedactPII(cleaned))
		if err := o.store.FinishSource(ctx, src.ID, model.SourceStatusDone, capped, ""); err != nil {
			return nil, err
		}
		docs = append(docs, collected{sourceID: src.ID, label: "manual paste", chunks: o.chunker.Chunk(capped)})
	}

	return o.finishRun(ctx, comp, docs, errs)
}

// IngestPDF runs the single-PDF variant.
func (o *Orchestrator) IngestPDF(ctx context.Context, competitorID string, data []byte, filename string) (*model.IngestSummary, error) {
	comp, err := o.store.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	src, err := o.store.CreateSource(ctx, competitorID, "", model.SourceKindPDF)
	if err != nil {
		return nil, err
	}

	text, perr := collector.ExtractPDF(data, filename)
	if perr != nil {
		zap.L().Warn("pipeline: pdf extraction failed",
			zap.String("filename", filename),
			zap.Error(perr),
		)
		if err := o.store.FinishSource(ctx, src.ID, model.SourceStatusFailed, "", perr.Error()); err != nil {
			return nil, err
		}
		return o.finishRun(ctx, comp, nil, []string{perr.Error()})
	}

	capped := truncateContent(collector.RedactPII(text))
	if err := o.store.FinishSource(ctx, src.ID, model.SourceStatusDone, capped, ""); err != nil {
		return nil, err
	}

	docs := []collected{{sourceID: src.ID, label: filename, chunks: o.chunker.Chunk(capped)}}
	return o.finishRun(ctx, comp, docs, nil)
}

// Research runs the auto-discovery variant: construct and suggest URLs,
// fetch them with snippet fallbacks, persist a combined snippet digest so
// the search context itself survives, then feed everything through the
// shared post-collection pipeline.
func (o *Orchestrator) Research(ctx context.Context, competitorID string) (*model.IngestSummary, error) {
	comp, err := o.store.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	results := o.researcher.Discover(ctx, comp.Name, comp.Sector)
	zap.L().Info("pipeline: research discovered urls",
		zap.String("competitor", comp.Name),
		zap.Int("count", len(results)),
	)

	fetched := o.researcher.FetchAll(ctx, results)

	var docs []collected
	for _, doc := range fetched {
		src, err := o.store.CreateSource(ctx, competitorID, doc.URL, doc.Kind)
		if err != nil {
			return nil, err
		}
		capped := truncateContent(collector.RedactPII(doc.Text))
		if err := o.store.FinishSource(ctx, src.ID, model.SourceStatusDone, capped, ""); err != nil {
			return nil, err
		}
		docs = append(docs, collected{sourceID: src.ID, url: doc.URL, label: doc.URL, chunks: o.chunker.Chunk(capped)})
	}

	if digest := snippetDigest(results); digest != "" {
		src, err := o.store.CreateSource(ctx, competitorID, "", model.SourceKindSnippet)
		if err != nil {
			return nil, err
		}
		if err := o.store.FinishSource(ctx, src.ID, model.SourceStatusDone, digest, ""); err != nil {
			return nil, err
		}
		docs = append(docs, collected{sourceID: src.ID, label: "search snippets", chunks: o.chunker.Chunk(digest)})
	}

	summary, err := o.finishRun(ctx, comp, docs, nil)
	if err != nil {
		return nil, err
	}
	if summary.SourcesCreated == 0 {
		summary.Message = "Could not fetch any research results."
	} else {
		summary.Message = fmt.Sprintf("Researched '%s': %d search results found, %d sources fetched, %d insights extracted.",
			comp.Name, len(results), summary.SourcesCreated, summary.InsightsExtracted)
	}
	return summary, nil
}

// snippetDigest folds every discovered result's title, URL, and snippet
// into one combined document.
func snippetDigest(results []collector.ResearchResult) string {
	var parts []string
	for _, r := range results {
		if r.Snippet == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] (%s): %s", r.Title, r.URL, r.Snippet))
	}
	return truncateContent(strings.Join(parts, "\n\n"))
}

// finishRun is the shared post-collection pipeline: extract insights from
// the first chunks, persist them, cluster themes, and build the summary.
// All source writes have committed by the time it runs.
func (o *Orchestrator) finishRun(ctx context.Context, comp *model.Competitor, docs []collected, errs []string) (*model.IngestSummary, error) {
	summary := &model.IngestSummary{
		SourcesCreated: len(docs),
		Message:        strings.Join(errs, "; "),
	}

	var drafts []model.InsightDraft
	var inserted []model.Insight
	if len(docs) > 0 {
		var chunks []string
		for _, doc := range docs {
			chunks = append(chunks, doc.chunks...)
		}
		if len(chunks) > maxExtractionChunks {
			chunks = chunks[:maxExtractionChunks]
		}
		combined := strings.Join(chunks, chunkSeparator)

		first := docs[0]
		drafts = o.analyst.ExtractInsights(ctx, []string{combined}, first.label, comp.Name)

		insights := make([]model.Insight, 0, len(drafts))
		for _, d := range drafts {
			insights = append(insights, model.Insight{
				SourceID:       first.sourceID,
				CompetitorID:   comp.ID,
				Text:           d.Text,
				Sentiment:      d.Sentiment,
				SentimentScore: d.SentimentScore,
				Persona:        d.Persona,
				Quote:          d.Quote,
				Confidence:     d.Confidence,
				SourceURL:      first.url,
			})
		}

		var err error
		inserted, err = o.store.InsertInsights(ctx, insights)
		if err != nil {
			return nil, err
		}
		summary.InsightsExtracted = len(inserted)
	}

	if len(inserted) > 0 {
		themeDrafts, err := o.analyst.ClusterThemes(ctx, drafts, comp.Name)
		if err != nil {
			zap.L().Error("pipeline: clustering failed, committing zero themes", zap.Error(err))
			themeDrafts = nil
		}

		for _, td := range themeDrafts {
			var linkIDs []string
			for _, idx := range td.InsightIndices {
				if idx < 0 || idx >= len(inserted) {
					continue
				}
				linkIDs = append(linkIDs, inserted[idx].ID)
			}

			theme, err := o.store.CreateTheme(ctx, model.Theme{
				CompetitorID:        comp.ID,
				Name:                td.Name,
				Description:         td.Description,
				Sentiment:           td.Sentiment,
				SeverityScore:       td.SeverityScore,
				Frequency:           len(linkIDs),
				RecencyDays:         td.RecencyDays,
				IsWeakness:          td.IsWeakness,
				DifferentiationMove: td.DifferentiationMove,
			})
			if err != nil {
				return nil, err
			}
			if err := o.store.LinkThemeInsights(ctx, theme.ID, linkIDs); err != nil {
				return nil, err
			}
			summary.ThemesGenerated++
		}
	}

	switch {
	case summary.InsightsExtracted > 0:
		summary.Status = model.IngestStatusSuccess
	case len(errs) > 0 && summary.SourcesCreated == 0:
		summary.Status = model.IngestStatusError
	default:
		summary.Status = model.IngestStatusWarning
	}

	zap.L().Info("pipeline: run finished",
		zap.String("competitor", comp.Name),
		zap.String("status", string(summary.Status)),
		zap.Int("sources", summary.SourcesCreated),
		zap.Int("insights", summary.InsightsExtracted),
		zap.Int("themes", summary.ThemesGenerated),
	)
	return summary, nil
}

// CreateAction records a decision on a theme. Non-ignore kinds generate an
// artifact and evaluate it; a flagged evaluation marks the action for
// manual review.
func (o *Orchestrator) CreateAction(ctx context.Context, themeID, competitorID string, kind model.ActionKind, title, owner, dueDate string) (*model.ActionItem, error) {
	theme, err := o.store.GetTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	comp, err := o.store.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	if !kind.ProducesArtifact() {
		return o.store.CreateAction(ctx, model.ActionItem{
			ThemeID:      themeID,
			CompetitorID: competitorID,
			Kind:         kind,
			Title:        title,
			Owner:        owner,
			DueDate:      dueDate,
			Status:       model.ActionStatusDone,
		})
	}

	action, err := o.store.CreateAction(ctx, model.ActionItem{
		ThemeID:      themeID,
		CompetitorID: competitorID,
		Kind:         kind,
		Title:        title,
		Owner:        owner,
		DueDate:      dueDate,
		Status:       model.ActionStatusPending,
	})
	if err != nil {
		return nil, err
	}

	content, citations := o.writer.GenerateArtifact(ctx, kind, *theme, theme.Insights, comp.Name)
	artifact, err := o.store.CreateArtifact(ctx, model.Artifact{
		ActionID:  action.ID,
		Content:   content,
		Kind:      kind,
		Citations: citations,
	})
	if err != nil {
		return nil, err
	}

	result := o.evaluator.Evaluate(ctx, content, string(kind), *theme, theme.Insights, citations)
	eval, err := o.store.ReplaceEvaluation(ctx, model.EvaluationScore{
		ArtifactID:        artifact.ID,
		Relevance:         result.Relevance,
		EvidenceCoverage:  result.EvidenceCoverage,
		HallucinationRisk: result.HallucinationRisk,
		Actionability:     result.Actionability,
		Freshness:         result.Freshness,
		OverallScore:      result.Overall,
		Flagged:           result.Flagged,
		FlagReason:        result.FlagReason,
	})
	if err != nil {
		return nil, err
	}

	if result.Flagged {
		if err := o.store.UpdateActionStatus(ctx, action.ID, model.ActionStatusFlagged); err != nil {
			return nil, err
		}
		action.Status = model.ActionStatusFlagged
	}

	artifact.Evaluation = eval
	action.Artifact = artifact
	return action, nil
}

// GenerateReport builds a competitive snapshot from everything known about
// the competitor and persists it.
func (o *Orchestrator) GenerateReport(ctx context.Context, competitorID string) (*model.Report, error) {
	comp, err := o.store.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	themes, err := o.store.ListThemes(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	insights, err := o.store.ListInsights(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	content := o.writer.GenerateSnapshotReport(ctx, comp.Name, themes, insights)
	return o.store.CreateReport(ctx, model.Report{
		CompetitorID: competitorID,
		ReportType:   "snapshot",
		Title:        fmt.Sprintf("%s Competitive Snapshot", comp.Name),
		Content:      content,
	})
}

func truncateContent(text string) string {
	if len(text) > model.MaxRawContentChars {
		return text[:model.MaxRawContentChars]
	}
	return text
}
