// Package server exposes the intelligence pipeline over HTTP.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/model"
	"github.com/sells-group/rivaliq/internal/monitoring"
	"github.com/sells-group/rivaliq/internal/pipeline"
	"github.com/sells-group/rivaliq/internal/store"
)

// maxPDFUploadBytes caps the accepted PDF upload size.
const maxPDFUploadBytes = 20 << 20

// Server holds the HTTP handler dependencies.
type Server struct {
	store store.Store
	orch  *pipeline.Orchestrator
}

// New builds a Server around the store and orchestrator.
func New(st store.Store, orch *pipeline.Orchestrator) *Server {
	return &Server{store: st, orch: orch}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/competitors", s.handleCreateCompetitor)
		r.Get("/competitors", s.handleListCompetitors)
		r.Get("/competitors/{id}", s.handleGetCompetitor)
		r.Delete("/competitors/{id}", s.handleDeleteCompetitor)

		r.Post("/ingest", s.handleIngest)
		r.Post("/ingest/pdf", s.handleIngestPDF)
		r.Post("/research/{competitorID}", s.handleResearch)

		r.Get("/themes", s.handleListThemes)

		r.Post("/actions", s.handleCreateAction)
		r.Get("/actions", s.handleListActions)
		r.Post("/artifacts/{id}/accept", s.handleAcceptArtifact)

		r.Get("/monitoring/summary", s.handleMonitoringSummary)

		r.Post("/reports", s.handleCreateReport)
		r.Get("/reports", s.handleListReports)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateCompetitor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		Sector      string `json:"sector"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := s.store.CreateCompetitor(r.Context(), model.Competitor{
		Name:        req.Name,
		URL:         req.URL,
		Sector:      req.Sector,
		Description: req.Description,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCompetitors(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListCompetitors(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if list == nil {
		list = []model.Competitor{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetCompetitor(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCompetitor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCompetitor(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCompetitor(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompetitorID string   `json:"competitor_id"`
		URLs         []string `json:"urls"`
		RawTexts     []string `json:"raw_texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompetitorID == "" {
		respondError(w, http.StatusBadRequest, "competitor_id is required")
		return
	}
	if len(req.URLs) == 0 && len(req.RawTexts) == 0 {
		respondError(w, http.StatusBadRequest, "provide urls or raw_texts")
		return
	}

	summary, err := s.orch.Ingest(r.Context(), req.CompetitorID, req.URLs, req.RawTexts)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleIngestPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPDFUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	competitorID := r.FormValue("competitor_id")
	if competitorID == "" {
		respondError(w, http.StatusBadRequest, "competitor_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPDFUploadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	summary, err := s.orch.IngestPDF(r.Context(), competitorID, data, header.Filename)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	summary, err := s.orch.Research(r.Context(), chi.URLParam(r, "competitorID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	competitorID := r.URL.Query().Get("competitor_id")
	if competitorID == "" {
		respondError(w, http.StatusBadRequest, "competitor_id is required")
		return
	}

	themes, err := s.store.ListThemes(r.Context(), competitorID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if themes == nil {
		themes = []model.Theme{}
	}
	respondJSON(w, http.StatusOK, themes)
}

func (s *Server) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThemeID      string `json:"theme_id"`
		CompetitorID string `json:"competitor_id"`
		Kind         string `json:"kind"`
		Title        string `json:"title"`
		Owner        string `json:"owner"`
		DueDate      string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ThemeID == "" || req.CompetitorID == "" {
		respondError(w, http.StatusBadRequest, "theme_id and competitor_id are required")
		return
	}
	kind := model.ActionKind(req.Kind)
	switch kind {
	case model.ActionKindBattlecard, model.ActionKindMessaging, model.ActionKindRoadmap, model.ActionKindIgnore:
	default:
		respondError(w, http.StatusBadRequest, "kind must be battlecard, messaging, roadmap, or ignore")
		return
	}

	action, err := s.orch.CreateAction(r.Context(), req.ThemeID, req.CompetitorID, kind, req.Title, req.Owner, req.DueDate)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, action)
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	actions, err := s.store.ListActions(r.Context(), r.URL.Query().Get("competitor_id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if actions == nil {
		actions = []model.ActionItem{}
	}
	respondJSON(w, http.StatusOK, actions)
}

func (s *Server) handleAcceptArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.SetArtifactAccepted(r.Context(), id, true); err != nil {
		respondStoreError(w, err)
		return
	}
	artifact, err := s.store.GetArtifact(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, artifact)
}

func (s *Server) handleMonitoringSummary(w http.ResponseWriter, r *http.Request) {
	evals, err := s.store.ListEvaluations(r.Context(), 0)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	total, accepted, err := s.store.CountArtifacts(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	pending, err := s.store.CountPendingReview(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, monitoring.Summarize(evals, total, accepted, pending))
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompetitorID string `json:"competitor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompetitorID == "" {
		respondError(w, http.StatusBadRequest, "competitor_id is required")
		return
	}

	report, err := s.orch.GenerateReport(r.Context(), req.CompetitorID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	competitorID := r.URL.Query().Get("competitor_id")
	if competitorID == "" {
		respondError(w, http.StatusBadRequest, "competitor_id is required")
		return
	}

	reports, err := s.store.ListReports(r.Context(), competitorID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	respondJSON(w, http.StatusOK, reports)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondStoreError(w http.ResponseWriter, err error) {
	if store.IsNotFound(err) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	zap.L().Error("server: request failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}
