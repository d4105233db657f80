package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/storage/badger"
)

func member(name, role, industry, card, gender string, employees *int) *models.Member {
	return &models.Member{
		ID:                  common.NewMemberID(),
		Name:                name,
		Jabatan:             models.StringPtr(role),
		KategoriBidangUsaha: models.StringPtr(industry),
		StatusKTA:           models.StringPtr(card),
		JenisKelamin:        models.StringPtr(gender),
		JumlahKaryawan:      employees,
	}
}

func roster() []*models.Member {
	return []*models.Member{
		member("Ibrahim", "Ketum", "Property", "Aktif", "Laki-laki", models.IntPtr(120)),
		member("Siti", "Bendum", "Kuliner", "Aktif", "Perempuan", models.IntPtr(15)),
		member("Budi", "Wakil Ketua", "Property", "", "L", nil),
		member("Rina", "Anggota", "Properti & Konstruksi", "Tidak Aktif", "Wanita", models.IntPtr(0)),
		member("Andi", "", "", "", "", nil),
	}
}

func sum(groups map[string]int) int {
	total := 0
	for _, n := range groups {
		total += n
	}
	return total
}

func TestStats_Totality(t *testing.T) {
	stats := NewSnapshot(roster()).Stats()

	assert.Equal(t, 5, stats.Total)
	for name, groups := range map[string]map[string]int{
		"role":     stats.ByRole,
		"industry": stats.ByIndustry,
		"card":     stats.ByCardStatus,
		"gender":   stats.ByGender,
	} {
		assert.Equal(t, stats.Total, sum(groups), name)
	}

	assert.Equal(t, 1, stats.ByRole[models.UnspecifiedBucket])
	assert.Equal(t, 2, stats.ByCardStatus[models.UnspecifiedBucket])
	assert.Equal(t, 2, stats.ByIndustry["Property"])
	assert.Equal(t, 135, stats.EmployeeTotal)
	assert.Equal(t, 3, stats.EmployeeReported)
}

func TestStats_Empty(t *testing.T) {
	stats := NewSnapshot(nil).Stats()
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByRole)

	ratio := NewSnapshot(nil).GenderRatio()
	assert.Zero(t, ratio.MalePercentage)

	label, count := NewSnapshot(nil).TopIndustry()
	assert.Empty(t, label)
	assert.Zero(t, count)
}

func TestCountWhere(t *testing.T) {
	s := NewSnapshot(roster())

	assert.Equal(t, 2, s.CountWhere(FieldRole, "ketu"))
	assert.Equal(t, 3, s.CountWhere(FieldIndustry, "PROPERT"))
	assert.Equal(t, 3, s.CountWhere(FieldCardStatus, "aktif"))
	assert.Equal(t, 0, s.CountWhere(FieldRole, "  "))
	assert.Equal(t, 0, s.CountWhere(FieldCompany, "PT"))
}

func TestTopIndustry(t *testing.T) {
	members := roster()
	members = append(members, member("Dewi", "Anggota", "", "", "", nil), member("Eko", "Anggota", "", "", "", nil))

	label, count := NewSnapshot(members).TopIndustry()
	assert.Equal(t, "Property", label)
	assert.Equal(t, 2, count)
}

func TestGenderRatio(t *testing.T) {
	ratio := NewSnapshot(roster()).GenderRatio()

	assert.Equal(t, 2, ratio.Male)
	assert.Equal(t, 2, ratio.Female)
	assert.Equal(t, 1, ratio.Unspecified)
	assert.Equal(t, 5, ratio.Total)
	assert.Equal(t, 40.0, ratio.MalePercentage)
	assert.Equal(t, 40.0, ratio.FemalePercentage)
}

func TestClassifyGender(t *testing.T) {
	tests := []struct {
		in   *string
		want Gender
	}{
		{nil, GenderUnspecified},
		{models.StringPtr("Laki-Laki"), GenderMale},
		{models.StringPtr("PRIA"), GenderMale},
		{models.StringPtr("male"), GenderMale},
		{models.StringPtr("Female"), GenderFemale},
		{models.StringPtr("p"), GenderFemale},
		{models.StringPtr("Wanita"), GenderFemale},
		{models.StringPtr("-"), GenderUnspecified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyGender(tt.in))
	}
}

func TestRanked(t *testing.T) {
	ranked := Ranked(map[string]int{"b": 2, "a": 2, "c": 5})
	assert.Equal(t, []models.CountItem{{Label: "c", Count: 5}, {Label: "a", Count: 2}, {Label: "b", Count: 2}}, ranked)
}

func TestEngine_Compute(t *testing.T) {
	logger := arbor.NewLogger()
	manager, err := badger.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer manager.Close()

	ctx := context.Background()
	require.NoError(t, manager.MemberStorage().SaveMembers(ctx, roster()))

	stats, err := NewEngine(manager.MemberStorage(), logger).Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, stats.Total, sum(stats.ByGender))
}
