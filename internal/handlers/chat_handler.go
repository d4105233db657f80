package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/interfaces"
)

// ChatHandler serves question answering over members and documents
type ChatHandler struct {
	chat   interfaces.ChatService
	logger arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat interfaces.ChatService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// ChatRequest is the body of chat and export requests
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatHandler answers a question. Model failures still return 200 with partial=true.
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to answer question")
		return
	}

	start := time.Now()
	answer, err := h.chat.Answer(r.Context(), req.Query)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to answer question")
		return
	}

	h.logger.Info().
		Str("intent", string(answer.Intent)).
		Bool("partial", answer.Partial).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Question answered")

	WriteJSON(w, http.StatusOK, answer)
}

// ContextHandler previews the context a generic question would send to the model
func (h *ChatHandler) ContextHandler(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.chat.ContextPreview(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to build context")
		return
	}
	WriteJSON(w, http.StatusOK, bundle)
}

// ExportHandler answers a question and returns the answer as a PDF report
func (h *ChatHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to export answer")
		return
	}

	pdf, err := h.chat.ExportPDF(r.Context(), req.Query)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to export answer")
		return
	}

	filename := fmt.Sprintf("kintari-%s.pdf", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write PDF export")
	}
}
