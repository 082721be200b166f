package server

import (
	"log/slog"
	"net/http"

	"github.com/gridscope/gridscope/pkg/log"
	"github.com/gridscope/gridscope/pkg/scoring"
	"github.com/gridscope/gridscope/pkg/types"
)

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	models, err := s.forecast.Models(ctx)
	s.metrics.observeUpstream(err)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list models", slog.Any("error", err))
		writeJSONError(w, "forecast service unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	writeJSON(w, models)
}

func (s *Server) handleCurrentModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := s.forecast.CurrentModel(ctx)
	s.metrics.observeUpstream(err)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get current model", slog.Any("error", err))
		writeJSONError(w, "forecast service unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, struct {
		CurrentModel string `json:"current_model"`
	}{CurrentModel: current})
}

func (s *Server) handleSelectModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	modelID := r.PathValue("modelID")
	if modelID == "" {
		writeJSONError(w, "modelID is required", http.StatusBadRequest)
		return
	}

	changed, err := s.forecast.SelectModel(ctx, modelID)
	s.metrics.observeUpstream(err)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to select model",
			slog.String("modelID", modelID),
			slog.Any("error", err))
		writeJSONError(w, "failed to select model", http.StatusBadGateway)
		return
	}
	if changed {
		s.metrics.modelSelections.Inc()
		log.Ctx(ctx).InfoContext(ctx, "model selected", slog.String("modelID", modelID))
	}

	writeJSON(w, struct {
		CurrentModel string `json:"current_model"`
		Changed      bool   `json:"changed"`
	}{CurrentModel: modelID, Changed: changed})
}

// modelMetricsResponse pairs the raw metrics with their tiered assessment so
// every frontend shows the same badges.
type modelMetricsResponse struct {
	Metrics    types.ModelMetrics `json:"metrics"`
	Assessment scoring.Assessment `json:"assessment"`
}

func (s *Server) handleModelMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, err := s.forecast.CurrentMetrics(ctx)
	s.metrics.observeUpstream(err)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get model metrics", slog.Any("error", err))
		writeJSONError(w, "forecast service unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	writeJSON(w, modelMetricsResponse{
		Metrics:    m,
		Assessment: scoring.Assess(m),
	})
}
