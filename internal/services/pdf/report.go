package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	reportFont     = "Arial"
	reportFontSize = 10.0
	reportWidth    = 180.0 // A4 width minus margins, mm
)

// ReportRenderer renders chat answers (markdown) into a PDF report
type ReportRenderer struct {
	logger arbor.ILogger
	md     goldmark.Markdown
}

// Compile-time assertion
var _ interfaces.ReportRenderer = (*ReportRenderer)(nil)

// NewReportRenderer creates a markdown to PDF renderer
func NewReportRenderer(logger arbor.ILogger) *ReportRenderer {
	return &ReportRenderer{
		logger: logger,
		md:     goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

// ConvertMarkdownToPDF renders markdown under a title heading
func (s *ReportRenderer) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Rendering answer report")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetCreator("Kintari", true)
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	// Core fonts are cp1252; translate UTF-8 input
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont(reportFont, "B", 14)
	doc.MultiCell(0, 7, tr(title), "", "L", false)
	doc.SetFont(reportFont, "", 8)
	doc.SetTextColor(110, 110, 110)
	doc.CellFormat(0, 5, time.Now().Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(3)
	doc.SetFont(reportFont, "", reportFontSize)

	source := []byte(markdown)
	root := s.md.Parser().Parse(text.NewReader(source))

	r := &reportWriter{pdf: doc, source: source, tr: tr}
	if err := ast.Walk(root, r.walk); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render report")
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("Report generated")
	return buf.Bytes(), nil
}

type reportWriter struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	bold      bool
	italic    bool
	listLevel int
}

func (r *reportWriter) setFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(reportFont, style, reportFontSize)
}

func (r *reportWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(4)
			size := 12.0
			if node.Level > 2 {
				size = 11
			}
			r.pdf.SetFont(reportFont, "B", size)
		} else {
			r.pdf.Ln(6)
			r.setFont()
		}
	case *ast.Paragraph:
		if !entering && r.listLevel == 0 {
			r.pdf.Ln(6)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(5, r.tr(string(node.Segment.Value(r.source))))
			if node.SoftLineBreak() {
				r.pdf.Write(5, " ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(5)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.setFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", reportFontSize)
			r.pdf.Write(5, r.tr(string(node.Text(r.source))))
			r.setFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(7)
			}
		}
	case *ast.ListItem:
		if entering {
			if node.PreviousSibling() != nil || r.listLevel > 1 {
				r.pdf.Ln(5)
			}
			r.pdf.SetX(15 + float64(r.listLevel)*4)
			r.pdf.Write(5, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *reportWriter) table(n *extast.Table) {
	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch child.(type) {
			case *extast.TableHeader, *extast.TableRow:
				var row []string
				for c := child.FirstChild(); c != nil; c = c.NextSibling() {
					row = append(row, strings.TrimSpace(string(c.Text(r.source))))
				}
				rows = append(rows, row)
			}
		}
	}
	collect(n)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	cols := len(rows[0])
	width := reportWidth / float64(cols)
	r.pdf.Ln(2)
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(reportFont, "B", 9)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont(reportFont, "", 9)
		}
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			r.pdf.CellFormat(width, 6, r.tr(fit(r.pdf, cell, width-2)), "1", 0, "L", i == 0, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(3)
	r.setFont()
}

// fit truncates s with an ellipsis so it renders within width
func fit(doc *fpdf.Fpdf, s string, width float64) string {
	if doc.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && doc.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
