package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/app"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
)

const roster = "no,nama,jabatan,status_kta,usia,jenis_kelamin,whatsapp,email,nama_perusahaan,jabatan_dlm_akta_perusahaan,kategori_bidang_usaha,jmlh_karyawan\n" +
	"1,Ibrahim,Ketum,Aktif,38,Laki-laki,0811000001,ibrahim@example.com,PT Maju,Direktur,Property,120\n" +
	"2,Siti Rahma,Sekretaris Umum,Aktif,31,Perempuan,0811000002,siti@example.com,CV Rahma,Pemilik,Kuliner,15\n"

func newTestServer(t *testing.T, origins []string) http.Handler {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.InMemory = true
	cfg.Storage.Blob.Dir = t.TempDir()
	cfg.Chat.Provider = "none"
	cfg.Janitor.Enabled = false
	cfg.Server.AllowedOrigins = origins

	application, err := app.New(context.Background(), cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	return New(application).Handler()
}

func importRoster(t *testing.T, handler http.Handler) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "pengurus.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(roster))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/members/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	handler := newTestServer(t, []string{"*"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"model_enabled":false`)
}

func TestMethodMismatchIsRejected(t *testing.T) {
	handler := newTestServer(t, []string{"*"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	handler := newTestServer(t, []string{"https://kintari.example"})

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://kintari.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://kintari.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestImportThenAskRole(t *testing.T) {
	handler := newTestServer(t, []string{"*"})
	importRoster(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"Ibrahim jabatannya apa?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var answer models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, models.IntentMemberLookup, answer.Intent)
	assert.Contains(t, answer.Response, "Ketum")
	assert.False(t, answer.Partial)
	assert.Equal(t, models.SourceDirectQuery, answer.Source)
}

func TestGenericQuestionWithoutModelIsPartial(t *testing.T) {
	handler := newTestServer(t, []string{"*"})
	importRoster(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"Bagaimana strategi pengembangan organisasi ke depan?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var answer models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, models.IntentGeneric, answer.Intent)
	assert.True(t, answer.Partial)
	assert.Equal(t, 2, answer.MembersCount)
}

func TestMemberStatsAndMissingDocument(t *testing.T) {
	handler := newTestServer(t, []string{"*"})
	importRoster(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/members/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.MemberStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByIndustry["Property"])
	assert.Equal(t, 135, stats.EmployeeTotal)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/doc_missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, []string{"*"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="GET /api/version"`)
}
