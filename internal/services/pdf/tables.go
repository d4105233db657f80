package pdf

import (
	"fmt"
	"strings"

	"github.com/ternarybob/kintari/internal/models"
)

const (
	cellGapRatio   = 1.5 // Gap, in font sizes, that separates table cells
	columnAlignTol = 4.0 // Points within which cell left edges count as aligned
	minTableRows   = 2
	minTableCells  = 2
)

type cell struct {
	x    float64
	text string
}

// splitCells breaks a line into cells at wide horizontal gaps
func splitCells(line textLine) []cell {
	var cells []cell
	var current []textRun

	flush := func() {
		if len(current) == 0 {
			return
		}
		part := textLine{fontSize: line.fontSize, runs: current}
		cells = append(cells, cell{x: current[0].x, text: part.text()})
		current = nil
	}

	for i, run := range line.runs {
		if i > 0 && run.x-line.runs[i-1].endX >= cellGapRatio*line.fontSize {
			flush()
		}
		current = append(current, run)
	}
	flush()
	return cells
}

func aligned(a, b []cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if abs(a[i].x-b[i].x) > columnAlignTol {
			return false
		}
	}
	return true
}

// detectTables finds runs of consecutive rows with matching, aligned columns
func detectTables(page int, lines []textLine) []models.Table {
	var tables []models.Table
	var block [][]cell

	emit := func() {
		if len(block) >= minTableRows {
			rows := make([][]string, len(block))
			for i, cells := range block {
				row := make([]string, len(cells))
				for k, c := range cells {
					row[k] = strings.TrimSpace(c.text)
				}
				rows[i] = row
			}
			tables = append(tables, models.Table{Page: page, Rows: rows})
		}
		block = nil
	}

	for _, line := range lines {
		cells := splitCells(line)
		if len(cells) < minTableCells {
			emit()
			continue
		}
		if len(block) > 0 && !aligned(block[len(block)-1], cells) {
			emit()
		}
		block = append(block, cells)
	}
	emit()

	return tables
}

// safeDetectTables never fails the page; a panic yields no tables
func safeDetectTables(page int, lines []textLine) (tables []models.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			tables = nil
			err = fmt.Errorf("table detection panicked on page %d: %v", page, r)
		}
	}()
	return detectTables(page, lines), nil
}
