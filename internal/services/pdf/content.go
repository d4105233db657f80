package pdf

import (
	"context"
	"math"
	"strings"
)

const (
	// TJ adjustments below this (thousandths of an em) separate words
	tjWordGap = -200.0

	maxFormDepth = 8

	// Operators between cancellation checks
	ctxCheckInterval = 4096
)

// matrix is an affine transform [a b c d e f]
type matrix [6]float64

func identity() matrix {
	return matrix{1, 0, 0, 1, 0, 0}
}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// multiply returns m × n
func (m matrix) multiply(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

// textRun is a string shown at one position, in default user space
type textRun struct {
	x, y     float64
	endX     float64
	fontSize float64
	text     string
}

type graphicsState struct {
	ctm         matrix
	font        *pdfFont
	fontSize    float64
	leading     float64
	charSpacing float64
	wordSpacing float64
	hScale      float64
	rise        float64
}

// interpreter executes the text operators of a content stream and collects runs
type interpreter struct {
	ctx   context.Context
	gs    graphicsState
	stack []graphicsState
	tm    matrix
	tlm   matrix
	runs  []textRun
	ops   int
}

func newInterpreter(ctx context.Context) *interpreter {
	return &interpreter{
		ctx: ctx,
		gs: graphicsState{
			ctm:    identity(),
			font:   fallbackFont(),
			hScale: 1,
		},
		tm:  identity(),
		tlm: identity(),
	}
}

// run interprets data with res. Malformed tokens are skipped.
func (in *interpreter) run(data []byte, res *resources, depth int) error {
	lx := newLexer(data)
	var operands []interface{}

	for {
		operand, operator, ok, err := lx.next()
		if !ok {
			return nil
		}
		if err != nil {
			operands = operands[:0]
			continue
		}
		if operator == "" {
			operands = append(operands, operand)
			continue
		}

		in.ops++
		if in.ops%ctxCheckInterval == 0 {
			if err := in.ctx.Err(); err != nil {
				return err
			}
		}

		switch operator {
		case "BI":
			// Skip parameters up to ID, then the binary data
			for {
				_, op, ok, _ := lx.next()
				if !ok || op == "ID" {
					break
				}
			}
			lx.skipInlineImage()
		case "Do":
			if depth < maxFormDepth && res != nil && len(operands) == 1 {
				if name, ok := operands[0].(pdfName); ok {
					if content, formRes, m, ok := res.form(string(name)); ok {
						in.push()
						in.gs.ctm = m.multiply(in.gs.ctm)
						err := in.run(content, formRes, depth+1)
						in.pop()
						if err != nil {
							return err
						}
					}
				}
			}
		default:
			in.execute(operator, operands, res)
		}
		operands = operands[:0]
	}
}

func (in *interpreter) push() {
	in.stack = append(in.stack, in.gs)
}

func (in *interpreter) pop() {
	if n := len(in.stack); n > 0 {
		in.gs = in.stack[n-1]
		in.stack = in.stack[:n-1]
	}
}

func nums(operands []interface{}, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, o := range operands[len(operands)-n:] {
		v, ok := o.(float64)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (in *interpreter) execute(op string, operands []interface{}, res *resources) {
	switch op {
	case "q":
		in.push()
	case "Q":
		in.pop()
	case "cm":
		if v, ok := nums(operands, 6); ok {
			in.gs.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.multiply(in.gs.ctm)
		}
	case "BT":
		in.tm = identity()
		in.tlm = identity()
	case "Tf":
		if len(operands) >= 2 {
			if name, ok := operands[len(operands)-2].(pdfName); ok && res != nil {
				in.gs.font = res.font(string(name))
			}
			if size, ok := operands[len(operands)-1].(float64); ok {
				in.gs.fontSize = size
			}
		}
	case "TL":
		if v, ok := nums(operands, 1); ok {
			in.gs.leading = v[0]
		}
	case "Tc":
		if v, ok := nums(operands, 1); ok {
			in.gs.charSpacing = v[0]
		}
	case "Tw":
		if v, ok := nums(operands, 1); ok {
			in.gs.wordSpacing = v[0]
		}
	case "Tz":
		if v, ok := nums(operands, 1); ok {
			in.gs.hScale = v[0] / 100
		}
	case "Ts":
		if v, ok := nums(operands, 1); ok {
			in.gs.rise = v[0]
		}
	case "Td":
		if v, ok := nums(operands, 2); ok {
			in.moveLine(v[0], v[1])
		}
	case "TD":
		if v, ok := nums(operands, 2); ok {
			in.gs.leading = -v[1]
			in.moveLine(v[0], v[1])
		}
	case "Tm":
		if v, ok := nums(operands, 6); ok {
			in.tm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			in.tlm = in.tm
		}
	case "T*":
		in.moveLine(0, -in.gs.leading)
	case "Tj":
		if len(operands) >= 1 {
			if s, ok := operands[len(operands)-1].([]byte); ok {
				in.show([]interface{}{s})
			}
		}
	case "TJ":
		if len(operands) >= 1 {
			if arr, ok := operands[len(operands)-1].([]interface{}); ok {
				in.show(arr)
			}
		}
	case "'":
		in.moveLine(0, -in.gs.leading)
		if len(operands) >= 1 {
			if s, ok := operands[len(operands)-1].([]byte); ok {
				in.show([]interface{}{s})
			}
		}
	case "\"":
		if len(operands) >= 3 {
			if v, ok := nums(operands[:len(operands)-1], 2); ok {
				in.gs.wordSpacing, in.gs.charSpacing = v[0], v[1]
			}
			in.moveLine(0, -in.gs.leading)
			if s, ok := operands[len(operands)-1].([]byte); ok {
				in.show([]interface{}{s})
			}
		}
	}
}

func (in *interpreter) moveLine(tx, ty float64) {
	in.tlm = translate(tx, ty).multiply(in.tlm)
	in.tm = in.tlm
}

// show renders a TJ-style array of strings and adjustments as a single run
func (in *interpreter) show(items []interface{}) {
	gs := &in.gs
	start := in.tm.multiply(gs.ctm)
	var text strings.Builder

	for _, item := range items {
		switch v := item.(type) {
		case []byte:
			for _, g := range gs.font.decode(v) {
				text.WriteString(g.text)
				advance := g.width/1000*gs.fontSize + gs.charSpacing
				if g.space {
					advance += gs.wordSpacing
				}
				in.tm = translate(advance*gs.hScale, 0).multiply(in.tm)
			}
		case float64:
			if v < tjWordGap {
				text.WriteByte(' ')
			}
			in.tm = translate(-v/1000*gs.fontSize*gs.hScale, 0).multiply(in.tm)
		}
	}

	s := text.String()
	if strings.TrimSpace(s) == "" {
		return
	}

	end := in.tm.multiply(gs.ctm)
	x, y := start.apply(0, gs.rise)
	endX, _ := end.apply(0, gs.rise)
	size := gs.fontSize * math.Hypot(start[2], start[3])
	if size <= 0 {
		size = gs.fontSize
	}

	in.runs = append(in.runs, textRun{
		x:        x,
		y:        y,
		endX:     endX,
		fontSize: math.Abs(size),
		text:     s,
	})
}
