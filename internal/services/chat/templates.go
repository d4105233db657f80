package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/stats"
)

// direct renders a deterministic intent with a fixed Indonesian template
func (c *Composer) direct(cl Classification, snapshot *stats.Snapshot, docs []*models.DocumentRecord) (string, interface{}) {
	slots := cl.Slots
	switch cl.Intent {
	case models.IntentRoleCount:
		if role := slots[SlotRole]; role != "" {
			count := snapshot.CountWhere(stats.FieldRole, role)
			return fmt.Sprintf("Jumlah pengurus dengan jabatan '%s': %d orang", role, count),
				map[string]interface{}{"role": role, "count": count}
		}
		groups := snapshot.Stats().ByRole
		return distribution("**Jumlah Pengurus per Jabatan:**", groups), stats.Ranked(groups)

	case models.IntentIndustryStat:
		if slots[SlotMode] == ModeTop {
			industry, count := snapshot.TopIndustry()
			if count == 0 {
				return "Belum ada data bidang usaha pengurus.", nil
			}
			return fmt.Sprintf("Bidang usaha terbanyak adalah **%s** dengan %d pengurus.", industry, count),
				map[string]interface{}{"industry": industry, "count": count}
		}
		if industry := slots[SlotIndustry]; industry != "" {
			count := snapshot.CountWhere(stats.FieldIndustry, industry)
			return fmt.Sprintf("Jumlah pengurus di bidang usaha '%s': %d orang", industry, count),
				map[string]interface{}{"industry": industry, "count": count}
		}
		groups := snapshot.Stats().ByIndustry
		return distribution("**Jumlah Pengurus per Bidang Usaha:**", groups), stats.Ranked(groups)

	case models.IntentCardStatusStat:
		if status := slots[SlotStatus]; status != "" {
			count := snapshot.CountWhere(stats.FieldCardStatus, status)
			return fmt.Sprintf("Jumlah pengurus dengan status KTA '%s': %d orang", status, count),
				map[string]interface{}{"status": status, "count": count}
		}
		groups := snapshot.Stats().ByCardStatus
		return distribution("**Status KTA Semua Pengurus:**", groups), stats.Ranked(groups)

	case models.IntentGenderRatio:
		ratio := snapshot.GenderRatio()
		var b strings.Builder
		b.WriteString("**Rasio Gender Pengurus:**\n")
		fmt.Fprintf(&b, "- Pria: %d orang (%.1f%%)\n", ratio.Male, ratio.MalePercentage)
		fmt.Fprintf(&b, "- Wanita: %d orang (%.1f%%)\n", ratio.Female, ratio.FemalePercentage)
		if ratio.Unspecified > 0 {
			fmt.Fprintf(&b, "- %s: %d orang\n", models.UnspecifiedBucket, ratio.Unspecified)
		}
		return b.String(), ratio

	case models.IntentEmployeeTotal:
		memberStats := snapshot.Stats()
		return fmt.Sprintf("**Total Jumlah Karyawan:** %s orang\n\n(dari %d perusahaan pengurus yang melaporkan)",
				formatThousands(memberStats.EmployeeTotal), memberStats.EmployeeReported),
			map[string]int{"total": memberStats.EmployeeTotal, "reported": memberStats.EmployeeReported}

	case models.IntentContactLookup:
		m := findMember(snapshot, slots[SlotName])
		return contactCard(m, slots[SlotField]), m

	case models.IntentCompanyLookup:
		m := findMember(snapshot, slots[SlotName])
		return companyCard(m), m

	case models.IntentMemberLookup:
		m := findMember(snapshot, slots[SlotName])
		return memberCard(m), m

	case models.IntentDocumentFact:
		matched := matchDocuments(docs, models.DocumentType(slots[SlotType]), slots[SlotTopic])
		return documentList(matched), documentSummaries(matched)
	}
	return "", nil
}

func distribution(title string, groups map[string]int) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if len(groups) == 0 {
		b.WriteString("- Belum ada data\n")
	}
	for _, item := range stats.Ranked(groups) {
		fmt.Fprintf(&b, "- %s: %d orang\n", item.Label, item.Count)
	}
	return b.String()
}

// findMember returns the snapshot member carrying the resolved name
func findMember(snapshot *stats.Snapshot, name string) *models.Member {
	for _, m := range snapshot.Members() {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func orNA(v *string) string {
	return models.StringOr(v, notAvailable)
}

func intOrNA(v *int) string {
	if v == nil {
		return notAvailable
	}
	return strconv.Itoa(*v)
}

func memberCard(m *models.Member) string {
	if m == nil {
		return "Data pengurus tidak ditemukan."
	}
	var b strings.Builder
	b.WriteString("**Informasi Lengkap Pengurus:**\n")
	fmt.Fprintf(&b, "- **Nama:** %s\n", m.Name)
	fmt.Fprintf(&b, "- **Jabatan:** %s\n", orNA(m.Jabatan))
	fmt.Fprintf(&b, "- **Status KTA:** %s\n", orNA(m.StatusKTA))
	fmt.Fprintf(&b, "- **No KTA:** %s\n", orNA(m.NoKTA))
	fmt.Fprintf(&b, "- **Usia:** %s\n", intOrNA(m.Usia))
	fmt.Fprintf(&b, "- **Jenis Kelamin:** %s\n", orNA(m.JenisKelamin))
	fmt.Fprintf(&b, "- **Perusahaan:** %s\n", orNA(m.NamaPerusahaan))
	fmt.Fprintf(&b, "- **Jabatan di Perusahaan:** %s\n", orNA(m.JabatanDiPerusahaan))
	fmt.Fprintf(&b, "- **Bidang Usaha:** %s\n", orNA(m.KategoriBidangUsaha))
	fmt.Fprintf(&b, "- **WhatsApp:** %s\n", orNA(m.WhatsApp))
	fmt.Fprintf(&b, "- **Email:** %s\n", orNA(m.Email))
	return b.String()
}

func contactCard(m *models.Member, field string) string {
	if m == nil {
		return "Data pengurus tidak ditemukan."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Kontak %s:**\n", m.Name)
	if field != FieldEmail {
		fmt.Fprintf(&b, "- WhatsApp: %s\n", orNA(m.WhatsApp))
	}
	if field != FieldPhone {
		fmt.Fprintf(&b, "- Email: %s\n", orNA(m.Email))
	}
	if field == FieldAll {
		fmt.Fprintf(&b, "- Instagram: %s\n", orNA(m.Instagram))
	}
	return b.String()
}

func companyCard(m *models.Member) string {
	if m == nil {
		return "Data pengurus tidak ditemukan."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Perusahaan %s:**\n", m.Name)
	fmt.Fprintf(&b, "- Nama Perusahaan: %s\n", orNA(m.NamaPerusahaan))
	fmt.Fprintf(&b, "- Jabatan: %s\n", orNA(m.JabatanDiPerusahaan))
	fmt.Fprintf(&b, "- Bidang Usaha: %s\n", orNA(m.KategoriBidangUsaha))
	fmt.Fprintf(&b, "- Alamat: %s\n", orNA(m.AlamatPerusahaan))
	fmt.Fprintf(&b, "- Berdiri Sejak: %s\n", intOrNA(m.PerusahaanBerdiriSejak))
	fmt.Fprintf(&b, "- Jumlah Karyawan: %s\n", intOrNA(m.JumlahKaryawan))
	return b.String()
}

// matchDocuments filters by type and by topic words over filename and text, newest first
func matchDocuments(docs []*models.DocumentRecord, typ models.DocumentType, topic string) []*models.DocumentRecord {
	words := strings.Fields(common.Fold(topic))
	var matched []*models.DocumentRecord
	for _, d := range newestFirst(docs) {
		if typ != "" && d.DocumentType != typ {
			continue
		}
		if len(words) > 0 {
			haystack := common.Fold(d.Filename + "\n" + d.Summary + "\n" + d.FullText)
			found := false
			for _, w := range words {
				if strings.Contains(haystack, w) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matched = append(matched, d)
	}
	return matched
}

func documentList(docs []*models.DocumentRecord) string {
	if len(docs) == 0 {
		return "Tidak ada dokumen yang sesuai dengan pertanyaan tersebut."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Dokumen yang ditemukan (%d):**\n", len(docs))
	for i, d := range docs {
		if i == documentLimit {
			fmt.Fprintf(&b, "- ... (dan %d dokumen lainnya)\n", len(docs)-documentLimit)
			break
		}
		fmt.Fprintf(&b, "- %s (%s, %d halaman)\n", d.Filename, d.DocumentType.Info().Name, d.PageCount)
	}
	return b.String()
}

// documentSummary is the answer payload for a matched document
type documentSummary struct {
	ID           string              `json:"id"`
	Filename     string              `json:"filename"`
	DocumentType models.DocumentType `json:"document_type"`
	PageCount    int                 `json:"page_count"`
}

func documentSummaries(docs []*models.DocumentRecord) []documentSummary {
	out := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentSummary{ID: d.ID, Filename: d.Filename, DocumentType: d.DocumentType, PageCount: d.PageCount})
	}
	return out
}
