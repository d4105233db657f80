package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
)

// mockDocumentService implements interfaces.DocumentService for testing
type mockDocumentService struct {
	uploadFunc     func(ctx context.Context, req *interfaces.UploadRequest) (*models.DocumentRecord, error)
	reprocessFunc  func(ctx context.Context, id string) (*models.DocumentRecord, error)
	getFunc        func(ctx context.Context, id string) (*models.DocumentRecord, error)
	listFunc       func(ctx context.Context, opts *interfaces.DocumentListOptions) ([]*models.DocumentRecord, int, error)
	searchFunc     func(ctx context.Context, query string, limit int) ([]*models.DocumentRecord, error)
	deleteFunc     func(ctx context.Context, id string) error
	updateTagsFunc func(ctx context.Context, id string, tags []string) (*models.DocumentRecord, error)
	updateCatFunc  func(ctx context.Context, id string, category string) (*models.DocumentRecord, error)
	reclassifyFunc func(ctx context.Context, id string, label models.DocumentType) (*models.DocumentRecord, error)
	statsFunc      func(ctx context.Context) (*models.DocumentStats, error)
}

func (m *mockDocumentService) Upload(ctx context.Context, req *interfaces.UploadRequest) (*models.DocumentRecord, error) {
	return m.uploadFunc(ctx, req)
}

func (m *mockDocumentService) Reprocess(ctx context.Context, id string) (*models.DocumentRecord, error) {
	return m.reprocessFunc(ctx, id)
}

func (m *mockDocumentService) Get(ctx context.Context, id string) (*models.DocumentRecord, error) {
	return m.getFunc(ctx, id)
}

func (m *mockDocumentService) List(ctx context.Context, opts *interfaces.DocumentListOptions) ([]*models.DocumentRecord, int, error) {
	return m.listFunc(ctx, opts)
}

func (m *mockDocumentService) Search(ctx context.Context, query string, limit int) ([]*models.DocumentRecord, error) {
	return m.searchFunc(ctx, query, limit)
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockDocumentService) UpdateTags(ctx context.Context, id string, tags []string) (*models.DocumentRecord, error) {
	return m.updateTagsFunc(ctx, id, tags)
}

func (m *mockDocumentService) UpdateCategory(ctx context.Context, id string, category string) (*models.DocumentRecord, error) {
	return m.updateCatFunc(ctx, id, category)
}

func (m *mockDocumentService) Reclassify(ctx context.Context, id string, label models.DocumentType) (*models.DocumentRecord, error) {
	return m.reclassifyFunc(ctx, id, label)
}

func (m *mockDocumentService) Stats(ctx context.Context) (*models.DocumentStats, error) {
	return m.statsFunc(ctx)
}

// mockMemberService implements interfaces.MemberService for testing
type mockMemberService struct {
	importFunc func(ctx context.Context, r io.Reader) (*models.ImportResult, error)
	createFunc func(ctx context.Context, member *models.Member) (*models.Member, error)
	getFunc    func(ctx context.Context, id string) (*models.Member, error)
	updateFunc func(ctx context.Context, id string, member *models.Member) (*models.Member, error)
	deleteFunc func(ctx context.Context, id string) error
	listFunc   func(ctx context.Context, opts *interfaces.MemberListOptions) ([]*models.Member, int, error)
}

func (m *mockMemberService) Import(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	return m.importFunc(ctx, r)
}

func (m *mockMemberService) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	return m.createFunc(ctx, member)
}

func (m *mockMemberService) Get(ctx context.Context, id string) (*models.Member, error) {
	return m.getFunc(ctx, id)
}

func (m *mockMemberService) Update(ctx context.Context, id string, member *models.Member) (*models.Member, error) {
	return m.updateFunc(ctx, id, member)
}

func (m *mockMemberService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockMemberService) List(ctx context.Context, opts *interfaces.MemberListOptions) ([]*models.Member, int, error) {
	return m.listFunc(ctx, opts)
}

type mockStatsEngine struct {
	computeFunc func(ctx context.Context) (*models.MemberStats, error)
}

func (m *mockStatsEngine) Compute(ctx context.Context) (*models.MemberStats, error) {
	return m.computeFunc(ctx)
}

// mockChatService implements interfaces.ChatService for testing
type mockChatService struct {
	answerFunc  func(ctx context.Context, question string) (*models.Answer, error)
	previewFunc func(ctx context.Context) (*models.ContextBundle, error)
	exportFunc  func(ctx context.Context, question string) ([]byte, error)
}

func (m *mockChatService) Answer(ctx context.Context, question string) (*models.Answer, error) {
	return m.answerFunc(ctx, question)
}

func (m *mockChatService) ContextPreview(ctx context.Context) (*models.ContextBundle, error) {
	return m.previewFunc(ctx)
}

func (m *mockChatService) ExportPDF(ctx context.Context, question string) ([]byte, error) {
	return m.exportFunc(ctx, question)
}

// multipartRequest builds a multipart POST with a single file field plus extra form values
func multipartRequest(t *testing.T, url, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
