package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/interfaces"
)

// AnalyticsHandler serves dashboard aggregates
type AnalyticsHandler struct {
	analytics interfaces.AnalyticsService
	logger    arbor.ILogger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics interfaces.AnalyticsService, logger arbor.ILogger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *AnalyticsHandler) MembersHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.analytics.Members(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute member analytics")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.analytics.Documents(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute document analytics")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// OverviewHandler includes the generated summary, falling back to a fixed summary when the model fails
func (h *AnalyticsHandler) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.analytics.Overview(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute analytics overview")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) StatsOverviewHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.analytics.StatsOverview(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute stats overview")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
