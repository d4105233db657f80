package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
)

// StatusHandler serves health and version endpoints
type StatusHandler struct {
	startedAt time.Time
	provider  string
	logger    arbor.ILogger
}

// NewStatusHandler creates a new status handler. provider is the configured model provider, empty when none.
func NewStatusHandler(provider string, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		startedAt: time.Now(),
		provider:  provider,
		logger:    logger,
	}
}

// HealthHandler reports liveness and whether a generative model is configured
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"model":          h.provider,
		"model_enabled":  h.provider != "",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// VersionHandler returns build information
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version":      common.GetVersion(),
		"full_version": common.GetFullVersion(),
	})
}
