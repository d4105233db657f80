package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
)

func newMemberHandler(members *mockMemberService, stats *mockStatsEngine) *MemberHandler {
	if stats == nil {
		stats = &mockStatsEngine{}
	}
	return NewMemberHandler(members, stats, 1<<20, arbor.NewLogger())
}

func TestImportHandler_Success(t *testing.T) {
	var received string
	members := &mockMemberService{
		importFunc: func(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
			data, err := io.ReadAll(r)
			if err != nil {
				return nil, err
			}
			received = string(data)
			return &models.ImportResult{Imported: 2, Skipped: 1}, nil
		},
	}
	handler := newMemberHandler(members, nil)

	csv := "nama,jabatan\nIbrahim,Ketum\n"
	req := multipartRequest(t, "/api/members/import", "pengurus.CSV", []byte(csv), nil)
	rec := httptest.NewRecorder()
	handler.ImportHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, csv, received)

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportHandler_SchemaMismatch(t *testing.T) {
	members := &mockMemberService{
		importFunc: func(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
			return nil, fmt.Errorf("%w: missing columns usia, email", common.ErrImportSchemaMismatch)
		},
	}
	handler := newMemberHandler(members, nil)

	req := multipartRequest(t, "/api/members/import", "pengurus.csv", []byte("nama\nA\n"), nil)
	rec := httptest.NewRecorder()
	handler.ImportHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "usia, email")
}

func TestImportHandler_RejectsNonCSV(t *testing.T) {
	handler := newMemberHandler(&mockMemberService{}, nil)

	req := multipartRequest(t, "/api/members/import", "pengurus.xlsx", []byte("PK"), nil)
	rec := httptest.NewRecorder()
	handler.ImportHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		members := &mockMemberService{
			createFunc: func(ctx context.Context, m *models.Member) (*models.Member, error) {
				m.ID = "mbr_1"
				return m, nil
			},
		}
		handler := newMemberHandler(members, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/members", strings.NewReader(`{"name":"Ibrahim","jabatan":"Ketum"}`))
		rec := httptest.NewRecorder()
		handler.CreateHandler(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var member models.Member
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &member))
		assert.Equal(t, "mbr_1", member.ID)
		require.NotNil(t, member.Jabatan)
		assert.Equal(t, "Ketum", *member.Jabatan)
	})

	t.Run("validation failure", func(t *testing.T) {
		members := &mockMemberService{
			createFunc: func(ctx context.Context, m *models.Member) (*models.Member, error) {
				err := validator.New().Struct(m)
				return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
			},
		}
		handler := newMemberHandler(members, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/members", strings.NewReader(`{"name":""}`))
		rec := httptest.NewRecorder()
		handler.CreateHandler(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestUpdateHandler_NotFound(t *testing.T) {
	members := &mockMemberService{
		updateFunc: func(ctx context.Context, id string, m *models.Member) (*models.Member, error) {
			return nil, fmt.Errorf("member %s: %w", id, common.ErrRecordNotFound)
		},
	}
	handler := newMemberHandler(members, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/members/mbr_x", strings.NewReader(`{"name":"X"}`))
	req.SetPathValue("id", "mbr_x")
	rec := httptest.NewRecorder()
	handler.UpdateHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemberListHandler(t *testing.T) {
	var got *interfaces.MemberListOptions
	members := &mockMemberService{
		listFunc: func(ctx context.Context, opts *interfaces.MemberListOptions) ([]*models.Member, int, error) {
			got = opts
			return []*models.Member{{ID: "mbr_1", Name: "Ibrahim"}}, 1, nil
		},
	}
	handler := newMemberHandler(members, nil)

	rec := httptest.NewRecorder()
	handler.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/members?search=ibra&limit=9999", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ibra", got.Search)
	assert.Equal(t, maxPageSize, got.Limit)
}

func TestMemberStatsHandler(t *testing.T) {
	stats := &mockStatsEngine{
		computeFunc: func(ctx context.Context) (*models.MemberStats, error) {
			return &models.MemberStats{
				Total:  3,
				ByRole: map[string]int{"Ketum": 1, models.UnspecifiedBucket: 2},
			}, nil
		},
	}
	handler := newMemberHandler(&mockMemberService{}, stats)

	rec := httptest.NewRecorder()
	handler.StatsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/members/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.MemberStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.ByRole[models.UnspecifiedBucket])
}
