package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestConvertMarkdownToPDF(t *testing.T) {
	renderer := NewReportRenderer(arbor.NewLogger())

	tests := []struct {
		name     string
		markdown string
	}{
		{"basic", "# Jawaban\n\nJumlah pengurus dengan jabatan 'Ketua': 3 orang"},
		{"empty", ""},
		{"list and emphasis", "**Ibrahim Imaduddin Islam**\n\n- Jabatan: Ketum\n- Email: *Tidak tersedia*"},
		{"table", "| Jabatan | Jumlah |\n|---|---|\n| Ketua | 3 |\n| Sekum | 1 |"},
		{"code span", "Gunakan `kintari.toml` untuk konfigurasi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := renderer.ConvertMarkdownToPDF(tt.markdown, "Laporan Kintari")
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

func TestConvertMarkdownToPDF_ExtractsBack(t *testing.T) {
	out, err := NewReportRenderer(arbor.NewLogger()).ConvertMarkdownToPDF("Rasio gender pengurus", "Ringkasan")
	require.NoError(t, err)

	content, err := NewExtractor(arbor.NewLogger()).Extract(context.Background(), bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	assert.Contains(t, content.FullText, "Ringkasan")
	assert.Contains(t, content.FullText, "Rasio gender pengurus")
}
