package chat

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/stats"
)

// TruncationMarker is appended when the context exceeds its ceiling
const TruncationMarker = "\n\n[Context truncated...]"

const contextSeparator = "\n\n---\n\n"

// ContextLimits bounds the context sent to the generative model
type ContextLimits struct {
	Members      int
	Documents    int
	ExcerptChars int
	Ceiling      int
}

// NewContextLimits reads limits from config, falling back to defaults for unset values
func NewContextLimits(config *common.ChatConfig) ContextLimits {
	limits := ContextLimits{Members: 50, Documents: 10, ExcerptChars: 3000, Ceiling: 25000}
	if config == nil {
		return limits
	}
	if config.MemberContextCap > 0 {
		limits.Members = config.MemberContextCap
	}
	if config.DocumentContextCap > 0 {
		limits.Documents = config.DocumentContextCap
	}
	if config.DocumentExcerptChars > 0 {
		limits.ExcerptChars = config.DocumentExcerptChars
	}
	if config.ContextCeiling > 0 {
		limits.Ceiling = config.ContextCeiling
	}
	return limits
}

// BuildContext renders the member snapshot and documents into a bounded context.
// Documents are excerpted newest upload first.
func BuildContext(snapshot *stats.Snapshot, docs []*models.DocumentRecord, limits ContextLimits) *models.ContextBundle {
	members := snapshot.Members()
	memberStats := snapshot.Stats()
	ratio := snapshot.GenderRatio()

	var b strings.Builder
	b.WriteString("=== DATA PENGURUS HIPMI ===\n\n")

	b.WriteString("STATISTIK PENGURUS:\n")
	fmt.Fprintf(&b, "- Total Pengurus: %d\n", memberStats.Total)
	fmt.Fprintf(&b, "- Total Karyawan (semua perusahaan): %s\n", formatThousands(memberStats.EmployeeTotal))
	fmt.Fprintf(&b, "- Gender: %d Pria, %d Wanita, %d Tidak Diketahui\n", ratio.Male, ratio.Female, ratio.Unspecified)
	fmt.Fprintf(&b, "- Distribusi Jabatan: %s\n", inlineCounts(memberStats.ByRole))
	fmt.Fprintf(&b, "- Distribusi Bidang Usaha: %s\n", inlineCounts(memberStats.ByIndustry))
	fmt.Fprintf(&b, "- Status KTA: %s\n\n", inlineCounts(memberStats.ByCardStatus))

	b.WriteString("DAFTAR PENGURUS:\n")
	shown := 0
	for _, m := range members {
		if shown == limits.Members {
			break
		}
		b.WriteString(memberLine(m))
		b.WriteString("\n")
		shown++
	}
	if rest := len(members) - shown; rest > 0 {
		fmt.Fprintf(&b, "... (dan %d pengurus lainnya)\n", rest)
	}

	byType := make(map[string]int)
	byCategory := make(map[string]int)
	for _, d := range docs {
		byType[string(d.DocumentType)]++
		category := d.Category
		if strings.TrimSpace(category) == "" {
			category = "Tidak Dikategorikan"
		}
		byCategory[category]++
	}
	b.WriteString("\nDOKUMEN HIPMI:\n")
	fmt.Fprintf(&b, "- Total Dokumen: %d\n", len(docs))
	fmt.Fprintf(&b, "- Tipe Dokumen: %s\n", inlineCounts(byType))
	fmt.Fprintf(&b, "- Kategori: %s\n\n", inlineCounts(byCategory))
	b.WriteString("===========================\n")

	parts := []string{b.String()}
	excerpted := 0
	for _, d := range newestFirst(docs) {
		if excerpted == limits.Documents {
			break
		}
		if strings.TrimSpace(d.FullText) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s: %s]\n%s\n", d.DocumentType.Info().Name, d.Filename, truncateRunes(d.FullText, limits.ExcerptChars)))
		excerpted++
	}

	text := strings.Join(parts, contextSeparator)
	truncated := false
	if len([]rune(text)) > limits.Ceiling {
		text = truncateRunes(text, limits.Ceiling) + TruncationMarker
		truncated = true
	}

	return &models.ContextBundle{
		Text:           text,
		Size:           len([]rune(text)),
		Truncated:      truncated,
		MembersCount:   len(members),
		MembersShown:   shown,
		DocumentsCount: len(docs),
		DocumentsShown: excerpted,
		Stats:          memberStats,
	}
}

func memberLine(m *models.Member) string {
	line := "- " + m.Name
	if m.Jabatan != nil {
		line += fmt.Sprintf(" (Jabatan: %s)", *m.Jabatan)
	}
	if m.NamaPerusahaan != nil {
		line += ", Perusahaan: " + *m.NamaPerusahaan
	}
	if m.KategoriBidangUsaha != nil {
		line += ", Bidang: " + *m.KategoriBidangUsaha
	}
	return line
}

// inlineCounts renders a grouping as "A: 3, B: 1" in ranked order
func inlineCounts(groups map[string]int) string {
	if len(groups) == 0 {
		return "-"
	}
	items := stats.Ranked(groups)
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s: %d", item.Label, item.Count)
	}
	return strings.Join(parts, ", ")
}

func newestFirst(docs []*models.DocumentRecord) []*models.DocumentRecord {
	sorted := make([]*models.DocumentRecord, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UploadedAt.After(sorted[j].UploadedAt)
	})
	return sorted
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var indonesian = message.NewPrinter(language.Indonesian)

// formatThousands groups digits the Indonesian way, e.g. 12500 -> "12.500"
func formatThousands(n int) string {
	return indonesian.Sprintf("%d", n)
}
