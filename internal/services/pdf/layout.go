package pdf

import (
	"sort"
	"strings"
)

const (
	baselineTolerance = 0.4  // Fraction of font size within which runs share a line
	spaceGapRatio     = 0.15 // Fraction of font size above which runs are joined with a space
)

// textLine is a set of runs sharing a baseline, ordered left to right
type textLine struct {
	y        float64
	fontSize float64
	runs     []textRun
}

// groupLines orders runs top to bottom, then left to right
func groupLines(runs []textRun) []textLine {
	if len(runs) == 0 {
		return nil
	}

	sorted := append([]textRun(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y // PDF y grows upward
		}
		return sorted[i].x < sorted[j].x
	})

	var lines []textLine
	for _, run := range sorted {
		if n := len(lines); n > 0 {
			line := &lines[n-1]
			size := line.fontSize
			if run.fontSize > size {
				size = run.fontSize
			}
			if abs(line.y-run.y) <= baselineTolerance*size {
				line.runs = append(line.runs, run)
				if run.fontSize > line.fontSize {
					line.fontSize = run.fontSize
				}
				continue
			}
		}
		lines = append(lines, textLine{y: run.y, fontSize: run.fontSize, runs: []textRun{run}})
	}

	for i := range lines {
		runs := lines[i].runs
		sort.SliceStable(runs, func(a, b int) bool { return runs[a].x < runs[b].x })
	}
	return lines
}

// text joins the runs of a line, inserting a space where the gap is wide enough
func (l textLine) text() string {
	var b strings.Builder
	for i, run := range l.runs {
		if i > 0 {
			prev := l.runs[i-1]
			gap := run.x - prev.endX
			if gap > spaceGapRatio*l.fontSize &&
				!strings.HasSuffix(prev.text, " ") && !strings.HasPrefix(run.text, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(run.text)
	}
	return strings.TrimSpace(b.String())
}

// pageText renders lines one per row
func pageText(lines []textLine) string {
	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		if t := line.text(); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
