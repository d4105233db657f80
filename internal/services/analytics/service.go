// Package analytics computes dashboard aggregates over the member roster and
// the document store. Only the overview summary may use the generative model.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/metrics"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/stats"
)

// AgeRanges are the histogram buckets in display order.
// The first bucket also holds members younger than 20.
var AgeRanges = []string{"20-25", "25-30", "30-35", "35-40", "40-45", "45+"}

const (
	topKeywordLimit = 10
	recentWindow    = 30 * 24 * time.Hour
)

// Service implements interfaces.AnalyticsService
type Service struct {
	engine    *stats.Engine
	members   interfaces.MemberStorage
	documents interfaces.DocumentStorage
	model     interfaces.GenerativeModel // nil when no provider is configured
	timeout   time.Duration
	now       func() time.Time
	logger    arbor.ILogger
}

// NewService creates the analytics service
func NewService(
	engine *stats.Engine,
	members interfaces.MemberStorage,
	documents interfaces.DocumentStorage,
	model interfaces.GenerativeModel,
	config *common.ChatConfig,
	logger arbor.ILogger,
) *Service {
	timeout := 30 * time.Second
	if config != nil {
		timeout = common.ParseDuration(config.ModelTimeout, timeout)
	}
	return &Service{
		engine:    engine,
		members:   members,
		documents: documents,
		model:     model,
		timeout:   timeout,
		now:       time.Now,
		logger:    logger,
	}
}

// Members summarises the roster
func (s *Service) Members(ctx context.Context) (*models.MemberAnalytics, error) {
	snapshot, err := s.engine.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	return memberAnalytics(snapshot), nil
}

// Documents summarises the document store
func (s *Service) Documents(ctx context.Context) (*models.DocumentAnalytics, error) {
	docs, err := s.documents.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return documentAnalytics(docs, s.now()), nil
}

// Overview combines both summaries with a narrative. The model writes the
// narrative when available; otherwise a fixed template is used.
func (s *Service) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	memberStats, err := s.Members(ctx)
	if err != nil {
		return nil, err
	}
	docStats, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}

	overview := &models.AnalyticsOverview{
		Members:     memberStats,
		Documents:   docStats,
		Summary:     fallbackSummary(memberStats, docStats),
		GeneratedAt: s.now().UTC(),
	}
	if memberStats.Total == 0 && docStats.Total == 0 {
		return overview, nil
	}

	if summary, err := s.aiSummary(ctx, memberStats, docStats); err != nil {
		s.logger.Warn().Err(err).Msg("AI summary unavailable, using template summary")
	} else {
		overview.Summary = summary
		overview.AIGenerated = true
	}
	return overview, nil
}

// StatsOverview returns the dashboard counters
func (s *Service) StatsOverview(ctx context.Context) (*models.StatsOverview, error) {
	docs, err := s.documents.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	memberCount, err := s.members.CountMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	overview := &models.StatsOverview{TotalDokumen: len(docs), TotalAnggota: memberCount}
	var totalBytes int64
	var latest *models.DocumentRecord
	for _, d := range docs {
		if d.Processed {
			overview.ProcessedDocuments++
		}
		totalBytes += d.FileSize
		if latest == nil || d.UploadedAt.After(latest.UploadedAt) {
			latest = d
		}
	}
	overview.TotalStorageMB = bytesToMB(totalBytes)
	if latest != nil {
		uploaded := latest.UploadedAt
		overview.LatestDocument = latest.Filename
		overview.LastUpdated = &uploaded
	}
	return overview, nil
}

func (s *Service) aiSummary(ctx context.Context, m *models.MemberAnalytics, d *models.DocumentAnalytics) (string, error) {
	if s.model == nil {
		return "", common.ErrExternalModelUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	summary, err := s.model.Answer(ctx, statisticsText(m, d), overviewQuestion)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = fmt.Errorf("%w: empty summary", common.ErrModelMalformed)
	}
	metrics.ObserveModelCall(s.model.Name(), err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrExternalModelUnavailable, err)
	}
	return strings.TrimSpace(summary), nil
}

const overviewQuestion = "Sebagai analis organisasi HIPMI, berikan ringkasan singkat kondisi organisasi dalam 3 poin insight berdasarkan statistik di atas."

func memberAnalytics(snapshot *stats.Snapshot) *models.MemberAnalytics {
	memberStats := snapshot.Stats()
	result := &models.MemberAnalytics{
		Total:         memberStats.Total,
		ByGender:      memberStats.ByGender,
		ByRole:        stats.Ranked(memberStats.ByRole),
		ByIndustry:    stats.Ranked(memberStats.ByIndustry),
		ByCardStatus:  memberStats.ByCardStatus,
		EmployeeTotal: memberStats.EmployeeTotal,
	}

	ages := make(map[string]int, len(AgeRanges))
	companies := make(map[string]struct{})
	for _, m := range snapshot.Members() {
		if m.Usia != nil && *m.Usia > 0 {
			ages[AgeRange(*m.Usia)]++
		}
		if m.NamaPerusahaan != nil && strings.TrimSpace(*m.NamaPerusahaan) != "" {
			result.WithCompany++
			companies[common.Fold(strings.TrimSpace(*m.NamaPerusahaan))] = struct{}{}
		} else {
			result.WithoutCompany++
		}
	}
	result.UniqueCompanies = len(companies)

	result.AgeRanges = make([]models.CountItem, len(AgeRanges))
	for i, label := range AgeRanges {
		result.AgeRanges[i] = models.CountItem{Label: label, Count: ages[label]}
	}
	return result
}

// AgeRange returns the histogram bucket for an age
func AgeRange(age int) string {
	switch {
	case age < 25:
		return "20-25"
	case age < 30:
		return "25-30"
	case age < 35:
		return "30-35"
	case age < 40:
		return "35-40"
	case age < 45:
		return "40-45"
	}
	return "45+"
}

func documentAnalytics(docs []*models.DocumentRecord, now time.Time) *models.DocumentAnalytics {
	result := &models.DocumentAnalytics{
		Total:      len(docs),
		ByType:     make(map[string]int),
		ByCategory: make(map[string]int),
	}

	var totalBytes int64
	keywords := make(map[string]int)
	for _, d := range docs {
		if d.Processed {
			result.Processed++
		}
		result.ByType[string(d.DocumentType)]++
		category := strings.TrimSpace(d.Category)
		if category == "" {
			category = models.UnspecifiedBucket
		}
		result.ByCategory[category]++
		result.TotalPages += d.PageCount
		totalBytes += d.FileSize
		for _, k := range d.Keywords {
			keywords[k.Term] += k.Count
		}
		if now.Sub(d.UploadedAt) <= recentWindow {
			result.RecentUploads++
		}
	}

	result.TotalSizeMB = bytesToMB(totalBytes)
	if len(docs) > 0 {
		result.AveragePages = math.Round(float64(result.TotalPages)/float64(len(docs))*10) / 10
		result.AverageSizeMB = math.Round(float64(totalBytes)/(1024*1024)/float64(len(docs))*100) / 100
	}
	result.TopKeywords = topKeywords(keywords, topKeywordLimit)
	return result
}

func topKeywords(counts map[string]int, limit int) []models.Keyword {
	out := make([]models.Keyword, 0, len(counts))
	for term, count := range counts {
		out = append(out, models.Keyword{Term: term, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func bytesToMB(b int64) float64 {
	return math.Round(float64(b)/(1024*1024)*100) / 100
}

// statisticsText renders the figures handed to the model for the overview
func statisticsText(m *models.MemberAnalytics, d *models.DocumentAnalytics) string {
	var b strings.Builder
	b.WriteString("=== STATISTIK HIPMI ===\n")
	fmt.Fprintf(&b, "Total Anggota: %d\n", m.Total)
	fmt.Fprintf(&b, "Memiliki Perusahaan: %d (perusahaan unik: %d)\n", m.WithCompany, m.UniqueCompanies)
	fmt.Fprintf(&b, "Total Karyawan: %d\n", m.EmployeeTotal)
	b.WriteString("Distribusi Usia:")
	for _, item := range m.AgeRanges {
		fmt.Fprintf(&b, " %s=%d", item.Label, item.Count)
	}
	b.WriteString("\nBidang Usaha Teratas:")
	for i, item := range m.ByIndustry {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, " %s=%d", item.Label, item.Count)
	}
	fmt.Fprintf(&b, "\nTotal Dokumen: %d (diproses: %d)\n", d.Total, d.Processed)
	fmt.Fprintf(&b, "Total Halaman: %d, Rata-rata: %.1f halaman\n", d.TotalPages, d.AveragePages)
	fmt.Fprintf(&b, "Unggahan 30 hari terakhir: %d\n", d.RecentUploads)
	return b.String()
}

// fallbackSummary describes the figures without the model
func fallbackSummary(m *models.MemberAnalytics, d *models.DocumentAnalytics) string {
	if m.Total == 0 && d.Total == 0 {
		return "Belum ada data anggota maupun dokumen HIPMI yang tersimpan di sistem."
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("HIPMI memiliki %d pengurus terdaftar dan %d dokumen.", m.Total, d.Total))
	for _, item := range m.ByIndustry {
		if item.Label != models.UnspecifiedBucket {
			parts = append(parts, fmt.Sprintf("Bidang usaha terbanyak adalah %s (%d pengurus).", item.Label, item.Count))
			break
		}
	}
	if m.UniqueCompanies > 0 {
		parts = append(parts, fmt.Sprintf("Pengurus mengelola %d perusahaan unik dengan total %d karyawan.", m.UniqueCompanies, m.EmployeeTotal))
	}
	if d.Total > 0 {
		parts = append(parts, fmt.Sprintf("%d dari %d dokumen telah diproses.", d.Processed, d.Total))
	}
	return strings.Join(parts, " ")
}
