package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/models"
)

func TestClassify(t *testing.T) {
	c := NewClassifier("", arbor.NewLogger())

	tests := []struct {
		name     string
		filename string
		content  string
		want     models.DocumentType
	}{
		{"policy filename token", "PO_HIPMI_2023.pdf", "", models.DocumentTypeOrgPolicy},
		{"charter filename token", "AD HIPMI.pdf", "", models.DocumentTypeOrgCharter},
		{"bylaws filename token", "ART-2020.pdf", "", models.DocumentTypeOrgBylaws},
		{"decision filename token", "sk_pengurus_baru.pdf", "", models.DocumentTypeOrgDecision},
		{"token must be whole word", "apollo.pdf", "", models.DocumentTypeOther},
		{"org token beats generic keyword", "laporan_po.pdf", "", models.DocumentTypeOrgPolicy},
		{"bylaws phrase checked before charter", "dokumen.pdf", "ANGGARAN DASAR DAN ANGGARAN RUMAH TANGGA", models.DocumentTypeOrgBylaws},
		{"charter phrase", "dokumen.pdf", "Anggaran Dasar Himpunan", models.DocumentTypeOrgCharter},
		{"decision phrase", "scan001.pdf", "SURAT KEPUTUSAN Nomor 12", models.DocumentTypeOrgDecision},
		{"generic filename", "Laporan Keuangan 2023.pdf", "", models.DocumentTypeReport},
		{"proposal filename", "proposal_kegiatan.pdf", "", models.DocumentTypeProposal},
		{"filename before content keyword", "presentasi.pdf", "perjanjian kerja sama", models.DocumentTypePresentation},
		{"hipmi content", "scan.pdf", "Kegiatan HIPMI Jaya", models.DocumentTypeOrgOther},
		{"contract content", "scan.pdf", "Perjanjian kerja sama", models.DocumentTypeContract},
		{"keyword outside window", "scan.pdf", strings.Repeat("x ", 1500) + "kontrak", models.DocumentTypeOther},
		{"phrase outside heading window", "scan.pdf", strings.Repeat("y ", 600) + "surat keputusan", models.DocumentTypeOther},
		{"nothing matches", "random.pdf", "lorem ipsum", models.DocumentTypeOther},
		{"empty input", "", "", models.DocumentTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.filename, tt.content))
		})
	}
}

func TestMatch_ReportsRule(t *testing.T) {
	c := NewClassifier("", arbor.NewLogger())

	label, rule := c.Match("PO.pdf", "")
	assert.Equal(t, models.DocumentTypeOrgPolicy, label)
	assert.Equal(t, "org-policy-filename", rule)

	label, rule = c.Match("random.pdf", "")
	assert.Equal(t, models.DocumentTypeOther, label)
	assert.Empty(t, rule)
}

func TestEmbeddedRulesValid(t *testing.T) {
	rules, err := parseRules(embeddedRules)
	require.NoError(t, err)
	assert.NotEmpty(t, rules)
}

func TestNewClassifier_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - name: memo
    label: REPORT
    stage: filename
    tokens: [memo]
`), 0644))

	c := NewClassifier(path, arbor.NewLogger())
	assert.Equal(t, models.DocumentTypeReport, c.Classify("memo-01.pdf", ""))
	// Override replaces the table entirely
	assert.Equal(t, models.DocumentTypeOther, c.Classify("PO.pdf", ""))
}

func TestNewClassifier_InvalidOverrideFallsBack(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad yaml":      "rules: [",
		"unknown label": "rules:\n  - name: x\n    label: NOPE\n    stage: filename\n    tokens: [x]\n",
		"unknown stage": "rules:\n  - name: x\n    label: REPORT\n    stage: body\n    phrases: [x]\n",
		"empty rule":    "rules:\n  - name: x\n    label: REPORT\n    stage: content\n",
		"empty table":   "rules: []\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			c := NewClassifier(path, arbor.NewLogger())
			assert.Equal(t, models.DocumentTypeOrgPolicy, c.Classify("PO.pdf", ""))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		c := NewClassifier(filepath.Join(dir, "absent.yaml"), arbor.NewLogger())
		assert.Equal(t, models.DocumentTypeOrgPolicy, c.Classify("PO.pdf", ""))
	})
}

func TestLeading(t *testing.T) {
	assert.Equal(t, "abc", leading("abcdef", 3))
	assert.Equal(t, "ab", leading("ab", 3))
	assert.Equal(t, "éé", leading("ééé", 2))
	assert.Equal(t, "abcdef", leading("abcdef", 0))
}
