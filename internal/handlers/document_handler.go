package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/documents"
)

// multipartSlack covers form fields and boundaries on top of the file itself
const multipartSlack = 1 << 20

// DocumentHandler serves the document API
type DocumentHandler struct {
	documents      interfaces.DocumentService
	maxUploadBytes int64
	logger         arbor.ILogger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents interfaces.DocumentService, maxUploadBytes int64, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documents:      documents,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadHandler accepts a multipart PDF upload with optional category and tags
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartSlack)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteServiceError(w, h.logger, uploadError(err), "Failed to read upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteServiceError(w, h.logger, fmt.Errorf("%w: missing file field", common.ErrInvalidUpload), "Failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteServiceError(w, h.logger, uploadError(err), "Failed to read upload")
		return
	}

	doc, err := h.documents.Upload(r.Context(), &interfaces.UploadRequest{
		Filename: header.Filename,
		Category: strings.TrimSpace(r.FormValue("category")),
		Tags:     documents.ParseTags(r.FormValue("tags")),
		Data:     data,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to upload document")
		return
	}

	h.logger.Info().
		Str("id", doc.ID).
		Str("filename", doc.Filename).
		Str("document_type", string(doc.DocumentType)).
		Bool("processed", doc.Processed).
		Msg("Document uploaded")

	WriteJSON(w, http.StatusCreated, doc)
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: file exceeds %d bytes", common.ErrInvalidUpload, tooLarge.Limit-multipartSlack)
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidUpload, err)
}

// ListHandler lists documents filtered by type, category and search text
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := GetPaginationParams(r)
	query := r.URL.Query()

	opts := &interfaces.DocumentListOptions{
		Type:     models.DocumentType(strings.ToUpper(query.Get("type"))),
		Category: query.Get("category"),
		Search:   query.Get("search"),
		Limit:    limit,
		Offset:   offset,
	}
	if opts.Type != "" && !opts.Type.IsValid() {
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown document type %q", query.Get("type")))
		return
	}

	docs, total, err := h.documents.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list documents")
		return
	}

	WriteJSON(w, http.StatusOK, ListResponse{Items: docs, Total: total, Limit: limit, Offset: offset})
}

// TypesHandler returns every document type label with display information
func (h *DocumentHandler) TypesHandler(w http.ResponseWriter, r *http.Request) {
	types := make([]models.DocumentTypeInfo, 0, len(models.DocumentTypes))
	for _, t := range models.DocumentTypes {
		types = append(types, t.Info())
	}
	WriteJSON(w, http.StatusOK, types)
}

// StatsHandler returns document statistics
func (h *DocumentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.documents.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get document stats")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// SearchHandler runs a substring search over filename, text and summary
func (h *DocumentHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, http.StatusUnprocessableEntity, "query parameter q is required")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= maxPageSize {
			limit = l
		}
	}

	docs, err := h.documents.Search(r.Context(), query, limit)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to search documents")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": docs,
		"count":   len(docs),
	})
}

// GetHandler returns a single document
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get document")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// DeleteHandler removes a document and its blob
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.documents.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to delete document")
		return
	}

	h.logger.Info().Str("id", id).Msg("Document deleted")
	WriteSuccess(w, "Document deleted")
}

// UpdateTagsHandler replaces the document tags
func (h *DocumentHandler) UpdateTagsHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update tags")
		return
	}

	doc, err := h.documents.UpdateTags(r.Context(), r.PathValue("id"), body.Tags)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update tags")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// UpdateCategoryHandler replaces the document category
func (h *DocumentHandler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update category")
		return
	}

	doc, err := h.documents.UpdateCategory(r.Context(), r.PathValue("id"), strings.TrimSpace(body.Category))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update category")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// UpdateTypeHandler overrides the classifier label
func (h *DocumentHandler) UpdateTypeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DocumentType string `json:"document_type"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update document type")
		return
	}

	label := models.DocumentType(strings.ToUpper(strings.TrimSpace(body.DocumentType)))
	if !label.IsValid() {
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown document type %q", body.DocumentType))
		return
	}

	doc, err := h.documents.Reclassify(r.Context(), r.PathValue("id"), label)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update document type")
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// ReprocessHandler re-runs extraction from the stored blob
func (h *DocumentHandler) ReprocessHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.Reprocess(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to reprocess document")
		return
	}

	h.logger.Info().
		Str("id", doc.ID).
		Bool("processed", doc.Processed).
		Msg("Document reprocessed")

	WriteJSON(w, http.StatusOK, doc)
}
