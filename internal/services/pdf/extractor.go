// -----------------------------------------------------------------------
// PDF Extractor - Per-page text and table extraction
// Uses pdfcpu to read the document and decode page content streams
// -----------------------------------------------------------------------

package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
)

var pdfHeader = []byte("%PDF-")

var disableConfigDir sync.Once

// Extractor implements the PDFExtractor interface using pdfcpu
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	// pdfcpu otherwise creates a config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)

	return &Extractor{logger: logger}
}

// Extract reads the document once, then interprets each page's content stream
// in turn. Only one page's decoded content is held at a time.
//
// When some pages fail to decode the returned content is still complete in
// shape (empty text for those pages) and the error wraps ErrExtractionPartialFailure.
func (e *Extractor) Extract(ctx context.Context, r io.ReadSeeker, size int64) (*models.ExtractedContent, error) {
	header := make([]byte, len(pdfHeader))
	if _, err := io.ReadFull(r, header); err != nil || !bytes.Equal(header, pdfHeader) {
		return nil, fmt.Errorf("missing %%PDF- header: %w", common.ErrUnsupportedFormat)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind document: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	doc, err := api.ReadContext(r, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %v: %w", err, common.ErrUnsupportedFormat)
	}
	if err := api.ValidateContext(doc); err != nil {
		return nil, fmt.Errorf("failed to validate PDF: %v: %w", err, common.ErrUnsupportedFormat)
	}

	content := &models.ExtractedContent{
		Pages:     make([]models.PageText, 0, doc.PageCount),
		Tables:    []models.Table{},
		PageCount: doc.PageCount,
		ByteSize:  size,
		Metadata:  metadata(doc),
	}

	cache := fontCache{}
	var failedPages []int

	for pageNr := 1; pageNr <= doc.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, timeoutError(err, pageNr)
		}

		text, tables, err := e.extractPage(ctx, doc, pageNr, cache)
		if err != nil {
			if ctx.Err() != nil {
				return nil, timeoutError(ctx.Err(), pageNr)
			}
			e.logger.Warn().Err(err).Int("page", pageNr).Msg("Failed to extract page content")
			failedPages = append(failedPages, pageNr)
		}

		content.Pages = append(content.Pages, models.PageText{Number: pageNr, Text: text})
		content.Tables = append(content.Tables, tables...)
	}

	texts := make([]string, len(content.Pages))
	for i, p := range content.Pages {
		texts[i] = p.Text
	}
	content.FullText = strings.Join(texts, "\n\n")

	e.logger.Debug().
		Int("pages", content.PageCount).
		Int("tables", len(content.Tables)).
		Int("text_len", len(content.FullText)).
		Msg("PDF extracted")

	if len(failedPages) > 0 {
		return content, fmt.Errorf("%d of %d pages unreadable (%v): %w",
			len(failedPages), doc.PageCount, failedPages, common.ErrExtractionPartialFailure)
	}
	return content, nil
}

func timeoutError(err error, pageNr int) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("stopped before page %d: %w", pageNr, common.ErrExtractionTimeout)
	}
	return fmt.Errorf("stopped before page %d: %w", pageNr, err)
}

// extractPage returns the text of one page and any tables found on it.
// Table detection problems are logged and yield no tables.
func (e *Extractor) extractPage(ctx context.Context, doc *model.Context, pageNr int, cache fontCache) (string, []models.Table, error) {
	reader, err := pdfcpu.ExtractPageContent(doc, pageNr)
	if err != nil {
		return "", nil, err
	}
	if reader == nil {
		return "", nil, nil
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, err
	}

	in := newInterpreter(ctx)
	if err := in.run(data, newResources(doc, pageResources(doc, pageNr), cache), 0); err != nil {
		return "", nil, err
	}

	lines := groupLines(in.runs)
	tables, err := safeDetectTables(pageNr, lines)
	if err != nil {
		e.logger.Warn().Err(err).Int("page", pageNr).Msg("Table detection failed")
	}

	return pageText(lines), tables, nil
}

func pageResources(doc *model.Context, pageNr int) types.Dict {
	pageDict, _, inherited, err := doc.PageDict(pageNr, false)
	if err != nil {
		return nil
	}
	if pageDict != nil {
		if d, err := doc.DereferenceDict(pageDict["Resources"]); err == nil && d != nil {
			return d
		}
	}
	if inherited != nil {
		return inherited.Resources
	}
	return nil
}

func metadata(doc *model.Context) models.PDFMetadata {
	return models.PDFMetadata{
		Title:        doc.Title,
		Author:       doc.Author,
		Subject:      doc.Subject,
		Creator:      doc.Creator,
		Producer:     doc.Producer,
		CreationDate: doc.XRefTable.CreationDate,
	}
}
