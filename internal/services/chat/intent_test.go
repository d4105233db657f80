package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/kintari/internal/models"
)

var rosterNames = []string{"Ibrahim Sjarief", "Budi Santoso", "Siti Rahmawati", "Andi Wijaya"}

func TestRouterClassify(t *testing.T) {
	router := NewRouter()

	tests := []struct {
		name     string
		question string
		intent   models.QueryIntent
		slots    map[string]string
	}{
		{"role count", "Berapa jumlah Ketua?", models.IntentRoleCount, map[string]string{SlotRole: "Ketua"}},
		{"compound role", "Berapa jumlah wakil ketua?", models.IntentRoleCount, map[string]string{SlotRole: "wakil ketua"}},
		{"compound role with qualifier", "Berapa jumlah Ketua Umum?", models.IntentRoleCount, map[string]string{SlotRole: "Ketua Umum"}},
		{"role quoted", "Berapa pengurus dengan jabatan 'Wakil Ketua Umum'?", models.IntentRoleCount, map[string]string{SlotRole: "Wakil Ketua Umum"}},
		{"role distribution", "Berapa pengurus per jabatan?", models.IntentRoleCount, map[string]string{SlotMode: ModeDistribution}},
		{"industry value", "Berapa pengurus di bidang Property?", models.IntentIndustryStat, map[string]string{SlotIndustry: "Property"}},
		{"industry top", "Bidang usaha apa yang paling banyak?", models.IntentIndustryStat, map[string]string{SlotMode: ModeTop}},
		{"industry distribution", "Tampilkan statistik industri", models.IntentIndustryStat, map[string]string{SlotMode: ModeDistribution}},
		{"card status", "Berapa anggota dengan status KTA 'Aktif'?", models.IntentCardStatusStat, map[string]string{SlotStatus: "Aktif"}},
		{"gender ratio", "Bagaimana rasio gender pengurus?", models.IntentGenderRatio, nil},
		{"employee total", "Berapa total karyawan?", models.IntentEmployeeTotal, nil},
		{"contact phone", "Nomor WA Budi berapa?", models.IntentContactLookup, map[string]string{SlotName: "Budi Santoso", SlotField: FieldPhone}},
		{"contact email", "Email Siti apa?", models.IntentContactLookup, map[string]string{SlotName: "Siti Rahmawati", SlotField: FieldEmail}},
		{"contact all", "Kontak Andi", models.IntentContactLookup, map[string]string{SlotName: "Andi Wijaya", SlotField: FieldAll}},
		{"company", "Perusahaan Andi apa?", models.IntentCompanyLookup, map[string]string{SlotName: "Andi Wijaya"}},
		{"member trigger", "Ibrahim jabatannya apa?", models.IntentMemberLookup, map[string]string{SlotName: "Ibrahim Sjarief"}},
		{"member quoted", "Siapa 'sjarief'?", models.IntentMemberLookup, map[string]string{SlotName: "Ibrahim Sjarief"}},
		{"member mention", "Ceritakan tentang Budi", models.IntentMemberLookup, map[string]string{SlotName: "Budi Santoso"}},
		{"diacritics", "Info Sítí", models.IntentMemberLookup, map[string]string{SlotName: "Siti Rahmawati"}},
		{"document type", "Daftar dokumen surat keputusan", models.IntentDocumentFact, map[string]string{SlotType: string(models.DocumentTypeOrgDecision)}},
		{"document topic", "Apa saja dokumen tentang keuangan?", models.IntentDocumentFact, map[string]string{SlotTopic: "keuangan"}},
		{"unknown name", "Info Zaki", models.IntentGeneric, nil},
		{"generic", "Apa visi organisasi?", models.IntentGeneric, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := router.Classify(tt.question, rosterNames)
			assert.Equal(t, tt.intent, got.Intent, "rule %s", got.Rule)
			if tt.slots == nil {
				assert.Empty(t, got.Slots)
			} else {
				assert.Equal(t, tt.slots, got.Slots)
			}
		})
	}
}

func TestRouterNameNeedsResolution(t *testing.T) {
	router := NewRouter()

	// Contact words without a resolvable name fall through to the generic rule
	got := router.Classify("Berapa nomor telepon sekretariat?", nil)
	assert.Equal(t, models.IntentGeneric, got.Intent)
}

func TestRouterDeterministic(t *testing.T) {
	router := NewRouter()
	names := []string{"Budi Santoso", "Budi Hartono"}
	reversed := []string{"Budi Hartono", "Budi Santoso"}

	first := router.Classify("Nomor WA Budi", names)
	second := router.Classify("Nomor WA Budi", reversed)

	assert.Equal(t, first, second)
	assert.Equal(t, "Budi Hartono", first.Slots[SlotName])
}

func TestParseQuestion(t *testing.T) {
	q := parseQuestion(`Berapa pengurus di "Bidang Usaha"?`)

	assert.Equal(t, "Bidang Usaha", q.quoted)
	assert.Equal(t, "berapa pengurus di bidang usaha", q.text)
	assert.True(t, q.has("bidang usaha"))
	assert.False(t, q.has("usah"))
	assert.True(t, q.hasPrefix("usah"))
}
