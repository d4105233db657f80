// Package stats aggregates the member roster. Every computation reads one
// consistent snapshot and nothing is persisted.
package stats

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
)

// Field names a member attribute used for grouping and filtering
type Field string

const (
	FieldRole       Field = "jabatan"
	FieldIndustry   Field = "kategori_bidang_usaha"
	FieldCardStatus Field = "status_kta"
	FieldGender     Field = "jenis_kelamin"
	FieldCompany    Field = "nama_perusahaan"
)

func (f Field) value(m *models.Member) *string {
	switch f {
	case FieldRole:
		return m.Jabatan
	case FieldIndustry:
		return m.KategoriBidangUsaha
	case FieldCardStatus:
		return m.StatusKTA
	case FieldGender:
		return m.JenisKelamin
	case FieldCompany:
		return m.NamaPerusahaan
	}
	return nil
}

// Engine computes member statistics from store snapshots
type Engine struct {
	storage interfaces.MemberStorage
	logger  arbor.ILogger
}

// NewEngine creates a statistics engine
func NewEngine(storage interfaces.MemberStorage, logger arbor.ILogger) *Engine {
	return &Engine{storage: storage, logger: logger}
}

// Snapshot reads every member in one read transaction
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	members, err := e.storage.SnapshotMembers(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(members), nil
}

// Compute aggregates a fresh snapshot
func (e *Engine) Compute(ctx context.Context) (*models.MemberStats, error) {
	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := snapshot.Stats()
	e.logger.Debug().Int("total", stats.Total).Int("roles", len(stats.ByRole)).Msg("Member statistics computed")
	return stats, nil
}

// Snapshot is an immutable view of the roster at one point in time
type Snapshot struct {
	members []*models.Member
}

// NewSnapshot wraps members already read in one transaction
func NewSnapshot(members []*models.Member) *Snapshot {
	return &Snapshot{members: members}
}

// Members returns the snapshot's members in name order
func (s *Snapshot) Members() []*models.Member {
	return s.members
}

// Stats groups the snapshot. Every grouping sums to Total.
func (s *Snapshot) Stats() *models.MemberStats {
	stats := &models.MemberStats{
		Total:        len(s.members),
		ByRole:       make(map[string]int),
		ByIndustry:   make(map[string]int),
		ByCardStatus: make(map[string]int),
		ByGender:     make(map[string]int),
	}
	for _, m := range s.members {
		stats.ByRole[models.Bucket(m.Jabatan)]++
		stats.ByIndustry[models.Bucket(m.KategoriBidangUsaha)]++
		stats.ByCardStatus[models.Bucket(m.StatusKTA)]++
		stats.ByGender[models.Bucket(m.JenisKelamin)]++
		if m.JumlahKaryawan != nil {
			stats.EmployeeTotal += *m.JumlahKaryawan
			stats.EmployeeReported++
		}
	}
	return stats
}

// CountWhere counts members whose field contains value, ignoring case and diacritics
func (s *Snapshot) CountWhere(field Field, value string) int {
	return len(s.Where(field, value))
}

// Where returns members whose field contains value, ignoring case and diacritics
func (s *Snapshot) Where(field Field, value string) []*models.Member {
	needle := strings.TrimSpace(common.Fold(value))
	var matched []*models.Member
	if needle == "" {
		return matched
	}
	for _, m := range s.members {
		if v := field.value(m); v != nil && strings.Contains(common.Fold(*v), needle) {
			matched = append(matched, m)
		}
	}
	return matched
}

// TopIndustry returns the most common specified industry; ties go to the
// alphabetically first label. Empty when no member has an industry.
func (s *Snapshot) TopIndustry() (string, int) {
	ranked := Ranked(s.Stats().ByIndustry)
	for _, item := range ranked {
		if item.Label != models.UnspecifiedBucket {
			return item.Label, item.Count
		}
	}
	return "", 0
}

// GenderRatio splits members into male, female and unspecified
func (s *Snapshot) GenderRatio() *models.GenderRatio {
	ratio := &models.GenderRatio{Total: len(s.members)}
	for _, m := range s.members {
		switch ClassifyGender(m.JenisKelamin) {
		case GenderMale:
			ratio.Male++
		case GenderFemale:
			ratio.Female++
		default:
			ratio.Unspecified++
		}
	}
	if ratio.Total > 0 {
		ratio.MalePercentage = percentage(ratio.Male, ratio.Total)
		ratio.FemalePercentage = percentage(ratio.Female, ratio.Total)
	}
	return ratio
}

// Gender is a normalised gender value
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
)

// ClassifyGender normalises free-text gender values such as "Laki-laki", "L", "Pria" or "Wanita"
func ClassifyGender(v *string) Gender {
	if v == nil {
		return GenderUnspecified
	}
	g := strings.TrimSpace(common.Fold(*v))
	switch {
	case g == "":
		return GenderUnspecified
	case g == "p" || strings.Contains(g, "perempuan") || strings.Contains(g, "wanita") || strings.Contains(g, "female"):
		return GenderFemale
	case g == "l" || strings.Contains(g, "laki") || strings.Contains(g, "pria") || strings.Contains(g, "male"):
		return GenderMale
	}
	return GenderUnspecified
}

// Ranked orders a grouping by count descending, then label
func Ranked(groups map[string]int) []models.CountItem {
	items := make([]models.CountItem, 0, len(groups))
	for label, count := range groups {
		items = append(items, models.CountItem{Label: label, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	return items
}

// percentage rounds to one decimal
func percentage(part, total int) float64 {
	return math.Round(float64(part)*1000/float64(total)) / 10
}
