package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/stats"
	"github.com/ternarybob/kintari/internal/storage/badger"
)

type fakeModel struct {
	answer func(ctx context.Context, contextText, question string) (string, error)
}

func (f *fakeModel) Answer(ctx context.Context, contextText, question string) (string, error) {
	return f.answer(ctx, contextText, question)
}
func (f *fakeModel) Name() string { return "fake" }
func (f *fakeModel) Close() error { return nil }

func newService(t *testing.T, model interfaces.GenerativeModel, members []*models.Member, docs []*models.DocumentRecord) *Service {
	t.Helper()
	logger := arbor.NewLogger()

	store, err := badger.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if len(members) > 0 {
		require.NoError(t, store.MemberStorage().SaveMembers(ctx, members))
	}
	for _, d := range docs {
		require.NoError(t, store.DocumentStorage().SaveDocument(ctx, d))
	}

	engine := stats.NewEngine(store.MemberStorage(), logger)
	return NewService(engine, store.MemberStorage(), store.DocumentStorage(), model, &common.ChatConfig{ModelTimeout: "1s"}, logger)
}

func rosterMember(name string, age *int, company string, industry string) *models.Member {
	return &models.Member{
		ID:                  common.NewMemberID(),
		Name:                name,
		Usia:                age,
		NamaPerusahaan:      models.StringPtr(company),
		KategoriBidangUsaha: models.StringPtr(industry),
		JumlahKaryawan:      models.IntPtr(5),
	}
}

func fixtureMembers() []*models.Member {
	return []*models.Member{
		rosterMember("Ahmad", models.IntPtr(19), "PT Maju", "Property"),
		rosterMember("Budi", models.IntPtr(27), "pt maju", "Property"),
		rosterMember("Citra", models.IntPtr(45), "CV Citra", "Kuliner"),
		rosterMember("Dewi", nil, "", ""),
	}
}

func fixtureDocs(now time.Time) []*models.DocumentRecord {
	return []*models.DocumentRecord{
		{
			ID: common.NewDocumentID(), Filename: "ad.pdf", FileSize: 1024 * 1024, PageCount: 10,
			DocumentType: models.DocumentTypeOrgCharter, Processed: true, UploadedAt: now.Add(-time.Hour),
			Keywords: []models.Keyword{{Term: "anggaran", Count: 5}, {Term: "dasar", Count: 3}},
		},
		{
			ID: common.NewDocumentID(), Filename: "laporan.pdf", FileSize: 3 * 1024 * 1024, PageCount: 5,
			DocumentType: models.DocumentTypeReport, Category: "Keuangan", UploadedAt: now.Add(-60 * 24 * time.Hour),
			Keywords: []models.Keyword{{Term: "anggaran", Count: 2}},
		},
	}
}

func TestAgeRange(t *testing.T) {
	assert.Equal(t, "20-25", AgeRange(18))
	assert.Equal(t, "20-25", AgeRange(24))
	assert.Equal(t, "25-30", AgeRange(25))
	assert.Equal(t, "40-45", AgeRange(44))
	assert.Equal(t, "45+", AgeRange(45))
}

func TestMembers(t *testing.T) {
	service := newService(t, nil, fixtureMembers(), nil)

	result, err := service.Members(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	require.Len(t, result.AgeRanges, len(AgeRanges))
	assert.Equal(t, models.CountItem{Label: "20-25", Count: 1}, result.AgeRanges[0])
	assert.Equal(t, models.CountItem{Label: "25-30", Count: 1}, result.AgeRanges[1])
	assert.Equal(t, models.CountItem{Label: "45+", Count: 1}, result.AgeRanges[5])
	assert.Equal(t, 3, result.WithCompany)
	assert.Equal(t, 1, result.WithoutCompany)
	assert.Equal(t, 2, result.UniqueCompanies)
	assert.Equal(t, 20, result.EmployeeTotal)
	assert.Equal(t, models.CountItem{Label: "Property", Count: 2}, result.ByIndustry[0])
}

func TestDocuments(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	result := documentAnalytics(fixtureDocs(now), now)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 15, result.TotalPages)
	assert.Equal(t, 7.5, result.AveragePages)
	assert.Equal(t, 4.0, result.TotalSizeMB)
	assert.Equal(t, 2.0, result.AverageSizeMB)
	assert.Equal(t, 1, result.RecentUploads)
	assert.Equal(t, 1, result.ByCategory[models.UnspecifiedBucket])
	assert.Equal(t, 1, result.ByCategory["Keuangan"])
	assert.Equal(t, []models.Keyword{{Term: "anggaran", Count: 7}, {Term: "dasar", Count: 3}}, result.TopKeywords)
}

func TestOverview_AISummary(t *testing.T) {
	var gotContext string
	model := &fakeModel{answer: func(_ context.Context, contextText, _ string) (string, error) {
		gotContext = contextText
		return "Organisasi sehat.", nil
	}}
	service := newService(t, model, fixtureMembers(), fixtureDocs(time.Now()))

	overview, err := service.Overview(context.Background())
	require.NoError(t, err)

	assert.True(t, overview.AIGenerated)
	assert.Equal(t, "Organisasi sehat.", overview.Summary)
	assert.Contains(t, gotContext, "Total Anggota: 4")
}

func TestOverview_Fallback(t *testing.T) {
	model := &fakeModel{answer: func(context.Context, string, string) (string, error) {
		return "", errors.New("unavailable")
	}}
	service := newService(t, model, fixtureMembers(), nil)

	overview, err := service.Overview(context.Background())
	require.NoError(t, err)

	assert.False(t, overview.AIGenerated)
	assert.Contains(t, overview.Summary, "HIPMI memiliki 4 pengurus terdaftar dan 0 dokumen.")
	assert.Contains(t, overview.Summary, "Property (2 pengurus)")
}

func TestOverview_Empty(t *testing.T) {
	model := &fakeModel{answer: func(context.Context, string, string) (string, error) {
		t.Fatal("model must not be called without data")
		return "", nil
	}}
	service := newService(t, model, nil, nil)

	overview, err := service.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, overview.AIGenerated)
	assert.Contains(t, overview.Summary, "Belum ada data")
}

func TestStatsOverview(t *testing.T) {
	now := time.Now().UTC()
	service := newService(t, nil, fixtureMembers(), fixtureDocs(now))

	overview, err := service.StatsOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.TotalDokumen)
	assert.Equal(t, 1, overview.ProcessedDocuments)
	assert.Equal(t, 4, overview.TotalAnggota)
	assert.Equal(t, 4.0, overview.TotalStorageMB)
	assert.Equal(t, "ad.pdf", overview.LatestDocument)
	require.NotNil(t, overview.LastUpdated)
}
