package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// StatusFor maps a service error to an HTTP status code
func StatusFor(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, common.ErrRecordNotFound), errors.Is(err, common.ErrBlobNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrImportSchemaMismatch), errors.Is(err, common.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.As(err, &validationErrs), errors.Is(err, common.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError logs err and writes the mapped status.
// Client errors carry the error text; server errors carry only the action.
func WriteServiceError(w http.ResponseWriter, logger arbor.ILogger, err error, action string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(action)
		WriteError(w, status, action)
		return
	}

	logger.Warn().Err(err).Int("status", status).Msg(action)
	WriteError(w, status, err.Error())
}

// DecodeJSON reads the request body into v, wrapping decode failures as invalid input
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", common.ErrInvalidInput, err)
	}
	return nil
}

// GetPaginationParams extracts limit and offset from the query string.
// Limit defaults to 50 and is capped at 500.
func GetPaginationParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize

	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}

// ListResponse wraps a page of items with its total count
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
