package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fplcentral/analytics-api/internal/logic"
	"github.com/fplcentral/analytics-api/internal/models"
	"github.com/fplcentral/analytics-api/internal/source"
)

var pipelineRuns = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fpl_pipeline_runs_total",
	Help: "Total number of analytics pipeline runs started from a request",
})

// GetCompetitorPrediction returns the points forecast for one competitor
// @Summary Competitor Prediction
// @Tags Analytics
// @Produce json
// @Param id path int true "Competitor ID"
// @Param risk_tolerance query string false "conservative|balanced|aggressive" default(balanced)
// @Param horizon query int false "Prediction horizon in rounds (4-6)" default(5)
// @Success 200 {object} models.CompetitorOutlook
// @Failure 404 {object} map[string]string "Unknown competitor"
// @Failure 503 {object} map[string]string "Snapshot unavailable"
// @Router /analytics/competitors/{id}/prediction [get]
func (h *Handler) GetCompetitorPrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.competitorID(w, r)
	if !ok {
		return
	}

	snap, teams, ok := h.pipelineInputs(w, r)
	if !ok {
		return
	}

	cfg := models.AnalysisConfig{
		RiskTolerance:     models.RiskTolerance(r.URL.Query().Get("risk_tolerance")),
		PredictionHorizon: queryInt(r, "horizon"),
	}.Normalize()

	outlook, err := h.prediction.PredictCompetitor(r.Context(), snap, teams, id, cfg)
	if err != nil {
		h.logger.Errorw("Prediction failed", "error", err, "competitorId", id)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute prediction")
		return
	}
	if outlook == nil {
		h.errorResponse(w, http.StatusNotFound, "Unknown competitor")
		return
	}

	h.jsonResponse(w, http.StatusOK, outlook)
}

// GetCompetitorRisk returns the four-dimension risk profile for one competitor
// @Summary Competitor Risk Profile
// @Tags Analytics
// @Produce json
// @Param id path int true "Competitor ID"
// @Success 200 {object} models.RiskProfile
// @Failure 404 {object} map[string]string "Unknown competitor"
// @Failure 503 {object} map[string]string "Snapshot unavailable"
// @Router /analytics/competitors/{id}/risk [get]
func (h *Handler) GetCompetitorRisk(w http.ResponseWriter, r *http.Request) {
	id, ok := h.competitorID(w, r)
	if !ok {
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	profile, err := h.risk.AssessCompetitor(r.Context(), snap, id)
	if err != nil {
		h.logger.Errorw("Risk assessment failed", "error", err, "competitorId", id)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to assess risk")
		return
	}
	if profile == nil {
		h.errorResponse(w, http.StatusNotFound, "Unknown competitor")
		return
	}

	h.jsonResponse(w, http.StatusOK, profile)
}

// BatchPredictions forecasts many competitors, sorted by total expected points
// @Summary Batch Predictions
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body models.BatchPredictionRequest true "Batch request"
// @Success 200 {object} models.BatchPredictionResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 503 {object} map[string]string "Snapshot unavailable"
// @Router /analytics/predictions/batch [post]
func (h *Handler) BatchPredictions(w http.ResponseWriter, r *http.Request) {
	var req models.BatchPredictionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	snap, teams, ok := h.pipelineInputs(w, r)
	if !ok {
		return
	}

	outlooks, unknown, err := h.prediction.PredictMany(r.Context(), snap, teams, req.CompetitorIDs, req.ToConfig())
	if err != nil {
		h.logger.Errorw("Batch prediction failed", "error", err, "count", len(req.CompetitorIDs))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute predictions")
		return
	}

	h.jsonResponse(w, http.StatusOK, models.BatchPredictionResponse{
		Outlooks:   outlooks,
		UnknownIDs: unknown,
	})
}

// GenerateRecommendations runs the full prediction+risk pipeline
// @Summary Generate Recommendations
// @Tags Analytics
// @Accept json
// @Produce json
// @Param request body models.RecommendationRequest true "Recommendation request"
// @Success 200 {object} models.RecommendationReport
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 503 {object} map[string]string "Snapshot unavailable"
// @Router /analytics/recommendations [post]
func (h *Handler) GenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	snap, teams, ok := h.pipelineInputs(w, r)
	if !ok {
		return
	}

	report, err := h.recommendation.GenerateRecommendations(r.Context(), snap, teams, req.ToConfig())
	if err != nil {
		h.logger.Errorw("Recommendation run failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to generate recommendations")
		return
	}

	h.jsonResponse(w, http.StatusOK, report)
}

// GetTeamAnalytics returns the derived per-team strength ratings
// @Summary Team Analytics
// @Tags Analytics
// @Produce json
// @Success 200 {object} map[int]models.TeamSnapshot
// @Failure 503 {object} map[string]string "Snapshot unavailable"
// @Router /analytics/teams [get]
func (h *Handler) GetTeamAnalytics(w http.ResponseWriter, r *http.Request) {
	_, teams, ok := h.pipelineInputs(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, teams)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func (h *Handler) competitorID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "Competitor ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// snapshot fetches the season snapshot, turning an initialization failure
// into a structured 503. No partial results on failure.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*source.Snapshot, bool) {
	snap, err := h.sourceData.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, source.ErrSnapshotUnavailable) {
			h.logger.Errorw("Cannot initialize pipeline run", "error", err)
			h.errorResponse(w, http.StatusServiceUnavailable, "Upstream season data unavailable")
			return nil, false
		}
		h.logger.Errorw("Snapshot fetch failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load season data")
		return nil, false
	}
	return snap, true
}

// pipelineInputs fetches the snapshot once and derives team analytics from
// it, so every stage of the request observes the same data.
func (h *Handler) pipelineInputs(w http.ResponseWriter, r *http.Request) (*source.Snapshot, map[int]models.TeamSnapshot, bool) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return nil, nil, false
	}
	pipelineRuns.Inc()
	return snap, logic.BuildTeamSnapshots(snap.Teams, snap.Fixtures), true
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	body := http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}
