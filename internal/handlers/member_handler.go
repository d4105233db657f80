package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
)

// MemberHandler serves member import, CRUD and statistics
type MemberHandler struct {
	members        interfaces.MemberService
	stats          interfaces.StatsEngine
	maxUploadBytes int64
	logger         arbor.ILogger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(members interfaces.MemberService, stats interfaces.StatsEngine, maxUploadBytes int64, logger arbor.ILogger) *MemberHandler {
	return &MemberHandler{
		members:        members,
		stats:          stats,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ImportHandler imports a CSV roster from the multipart file field.
// A missing required column rejects the whole file.
func (h *MemberHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartSlack)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteServiceError(w, h.logger, uploadError(err), "Failed to read import")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteServiceError(w, h.logger, fmt.Errorf("%w: missing file field", common.ErrInvalidUpload), "Failed to read import")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		WriteServiceError(w, h.logger, fmt.Errorf("%w: %s is not a CSV file", common.ErrInvalidUpload, header.Filename), "Failed to read import")
		return
	}

	result, err := h.members.Import(r.Context(), file)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to import members")
		return
	}

	h.logger.Info().
		Str("filename", header.Filename).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("Members imported")

	WriteJSON(w, http.StatusOK, result)
}

// ListHandler lists members filtered by name
func (h *MemberHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := GetPaginationParams(r)

	members, total, err := h.members.List(r.Context(), &interfaces.MemberListOptions{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list members")
		return
	}

	WriteJSON(w, http.StatusOK, ListResponse{Items: members, Total: total, Limit: limit, Offset: offset})
}

// CreateHandler creates a member from a JSON body
func (h *MemberHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := DecodeJSON(r, &member); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to create member")
		return
	}

	created, err := h.members.Create(r.Context(), &member)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to create member")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// GetHandler returns a single member
func (h *MemberHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	member, err := h.members.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get member")
		return
	}
	WriteJSON(w, http.StatusOK, member)
}

// UpdateHandler replaces a member's attributes
func (h *MemberHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := DecodeJSON(r, &member); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update member")
		return
	}

	updated, err := h.members.Update(r.Context(), r.PathValue("id"), &member)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update member")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteHandler removes a member
func (h *MemberHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.members.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to delete member")
		return
	}
	WriteSuccess(w, "Member deleted")
}

// StatsHandler returns the statistics engine output
func (h *MemberHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Compute(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute member stats")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
