// -----------------------------------------------------------------------
// PDF Extractor Interface - Extract text and tables from PDF documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"io"

	"github.com/ternarybob/kintari/internal/models"
)

// PDFExtractor turns raw PDF bytes into per-page text and tables.
// Fails with common.ErrUnsupportedFormat or common.ErrExtractionTimeout.
type PDFExtractor interface {
	Extract(ctx context.Context, r io.ReadSeeker, size int64) (*models.ExtractedContent, error)
}

// ReportRenderer renders markdown into a PDF document
type ReportRenderer interface {
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)
}
