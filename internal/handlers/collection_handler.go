package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/interfaces"
)

// CollectionHandler serves named document groupings
type CollectionHandler struct {
	collections interfaces.CollectionService
	logger      arbor.ILogger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collections interfaces.CollectionService, logger arbor.ILogger) *CollectionHandler {
	return &CollectionHandler{
		collections: collections,
		logger:      logger,
	}
}

// ListHandler returns every collection
func (h *CollectionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collections.ListCollections(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list collections")
		return
	}
	WriteJSON(w, http.StatusOK, collections)
}

// CreateHandler creates an empty collection
func (h *CollectionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to create collection")
		return
	}

	collection, err := h.collections.CreateCollection(r.Context(), strings.TrimSpace(body.Name), body.Description)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to create collection")
		return
	}
	WriteJSON(w, http.StatusCreated, collection)
}

// GetHandler returns a single collection
func (h *CollectionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	collection, err := h.collections.GetCollection(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get collection")
		return
	}
	WriteJSON(w, http.StatusOK, collection)
}

// AddDocumentsHandler appends document IDs to a collection
func (h *CollectionHandler) AddDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DocumentIDs []string `json:"document_ids"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to add documents")
		return
	}

	collection, err := h.collections.AddDocuments(r.Context(), r.PathValue("id"), body.DocumentIDs)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to add documents")
		return
	}
	WriteJSON(w, http.StatusOK, collection)
}
