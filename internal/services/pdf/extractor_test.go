package pdf

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
)

// buildPDF renders one page per callback with fpdf
func buildPDF(t *testing.T, pages ...func(doc *fpdf.Fpdf)) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	for _, page := range pages {
		doc.AddPage()
		doc.SetFont("Arial", "", 12)
		page(doc)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestExtractor_PagesAndFullText(t *testing.T) {
	data := buildPDF(t,
		func(doc *fpdf.Fpdf) {
			doc.Text(20, 30, "Peraturan Organisasi HIPMI")
			doc.Text(20, 40, "Pasal 1 Ketentuan Umum")
		},
		func(doc *fpdf.Fpdf) {
			doc.Text(20, 30, "Halaman kedua")
		},
	)

	extractor := NewExtractor(arbor.NewLogger())
	content, err := extractor.Extract(context.Background(), bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	assert.Equal(t, 2, content.PageCount)
	assert.Equal(t, content.PageCount, len(content.Pages))
	assert.Equal(t, int64(len(data)), content.ByteSize)

	assert.Equal(t, 1, content.Pages[0].Number)
	assert.Equal(t, "Peraturan Organisasi HIPMI\nPasal 1 Ketentuan Umum", content.Pages[0].Text)
	assert.Equal(t, "Halaman kedua", content.Pages[1].Text)

	texts := []string{content.Pages[0].Text, content.Pages[1].Text}
	assert.Equal(t, strings.Join(texts, "\n\n"), content.FullText)
	assert.Empty(t, content.Tables)
}

func TestExtractor_DetectsAlignedTable(t *testing.T) {
	data := buildPDF(t, func(doc *fpdf.Fpdf) {
		doc.Text(20, 20, "Daftar Pengurus")
		rows := [][]string{
			{"Nama", "Jabatan", "Kota"},
			{"Ibrahim", "Ketum", "Jakarta"},
			{"Sari", "Sekum", "Bandung"},
		}
		for i, row := range rows {
			y := 40 + float64(i)*8
			for j, cell := range row {
				doc.Text(20+float64(j)*60, y, cell)
			}
		}
		doc.Text(20, 90, "Catatan penutup")
	})

	extractor := NewExtractor(arbor.NewLogger())
	content, err := extractor.Extract(context.Background(), bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	require.Len(t, content.Tables, 1)
	table := content.Tables[0]
	assert.Equal(t, 1, table.Page)
	assert.Equal(t, [][]string{
		{"Nama", "Jabatan", "Kota"},
		{"Ibrahim", "Ketum", "Jakarta"},
		{"Sari", "Sekum", "Bandung"},
	}, table.Rows)

	assert.Contains(t, content.Pages[0].Text, "Ibrahim Ketum Jakarta")
	assert.True(t, strings.HasPrefix(content.Pages[0].Text, "Daftar Pengurus\n"))
}

func TestExtractor_RejectsNonPDF(t *testing.T) {
	extractor := NewExtractor(arbor.NewLogger())

	tests := []struct {
		name string
		data []byte
	}{
		{"plain text", []byte("hello, this is not a pdf document at all")},
		{"too short", []byte("%PD")},
		{"header only", []byte("%PDF-1.4\ngarbage without any objects")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.Extract(context.Background(), bytes.NewReader(tt.data), int64(len(tt.data)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrUnsupportedFormat), "got %v", err)
		})
	}
}

func TestExtractor_DeadlineIsTimeout(t *testing.T) {
	data := buildPDF(t, func(doc *fpdf.Fpdf) { doc.Text(20, 30, "Isi") })

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	extractor := NewExtractor(arbor.NewLogger())
	_, err := extractor.Extract(ctx, bytes.NewReader(data), int64(len(data)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtractionTimeout))
}
