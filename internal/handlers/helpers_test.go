package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/kintari/internal/common"
)

func TestStatusFor(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}
	validationErr := validator.New().Struct(input{})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"record not found", fmt.Errorf("member x: %w", common.ErrRecordNotFound), http.StatusNotFound},
		{"blob not found", common.ErrBlobNotFound, http.StatusNotFound},
		{"schema mismatch", fmt.Errorf("%w: missing nama", common.ErrImportSchemaMismatch), http.StatusBadRequest},
		{"invalid upload", common.ErrInvalidUpload, http.StatusBadRequest},
		{"invalid input", common.ErrInvalidInput, http.StatusUnprocessableEntity},
		{"bare validation errors", validationErr, http.StatusUnprocessableEntity},
		{"write failure", errors.New("badger: disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", defaultPageSize, 0},
		{"limit=10&offset=20", 10, 20},
		{"limit=-1&offset=-5", defaultPageSize, 0},
		{"limit=100000", maxPageSize, 0},
		{"limit=abc", defaultPageSize, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/members?"+tt.query, nil)
			limit, offset := GetPaginationParams(req)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
