package pdf

import (
	"unicode/utf16"
)

// toUnicodeMap maps character codes to text using a ToUnicode CMap
type toUnicodeMap struct {
	codeBytes int
	single    map[uint32]string
	ranges    []cmapRange
}

type cmapRange struct {
	lo, hi uint32
	base   []uint16 // UTF-16 destination for lo; later codes increment the last unit
	list   []string // Explicit destinations when the range maps to an array
}

func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func utf16Units(b []byte) []uint16 {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	if len(b)%2 == 1 {
		// Single byte destinations occur in sloppy CMaps
		units = append(units, uint16(b[len(b)-1]))
	}
	return units
}

func utf16String(units []uint16) string {
	return string(utf16.Decode(units))
}

// parseCMap reads bfchar, bfrange and codespacerange sections. Anything else is ignored.
func parseCMap(data []byte) *toUnicodeMap {
	m := &toUnicodeMap{single: map[uint32]string{}}
	lx := newLexer(data)
	var stack []interface{}

	for {
		operand, operator, ok, err := lx.next()
		if !ok {
			break
		}
		if err != nil {
			stack = stack[:0]
			continue
		}
		if operator == "" {
			stack = append(stack, operand)
			continue
		}

		switch operator {
		case "endcodespacerange":
			for i := 0; i+1 < len(stack); i += 2 {
				if lo, ok := stack[i].([]byte); ok && len(lo) > m.codeBytes {
					m.codeBytes = len(lo)
				}
			}
		case "endbfchar":
			for i := 0; i+1 < len(stack); i += 2 {
				src, ok1 := stack[i].([]byte)
				dst, ok2 := stack[i+1].([]byte)
				if ok1 && ok2 {
					m.single[codeValue(src)] = utf16String(utf16Units(dst))
					m.noteWidth(len(src))
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(stack); i += 3 {
				lo, ok1 := stack[i].([]byte)
				hi, ok2 := stack[i+1].([]byte)
				if !ok1 || !ok2 {
					continue
				}
				r := cmapRange{lo: codeValue(lo), hi: codeValue(hi)}
				switch dst := stack[i+2].(type) {
				case []byte:
					r.base = utf16Units(dst)
				case []interface{}:
					for _, item := range dst {
						if b, ok := item.([]byte); ok {
							r.list = append(r.list, utf16String(utf16Units(b)))
						}
					}
				default:
					continue
				}
				if r.hi >= r.lo {
					m.ranges = append(m.ranges, r)
					m.noteWidth(len(lo))
				}
			}
		}
		stack = stack[:0]
	}

	return m
}

func (m *toUnicodeMap) noteWidth(n int) {
	if m.codeBytes == 0 {
		m.codeBytes = n
	}
}

func (m *toUnicodeMap) lookup(code uint32) (string, bool) {
	if s, ok := m.single[code]; ok {
		return s, true
	}
	for _, r := range m.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		offset := code - r.lo
		if r.list != nil {
			if int(offset) < len(r.list) {
				return r.list[offset], true
			}
			return "", false
		}
		if len(r.base) == 0 {
			return "", false
		}
		units := append([]uint16(nil), r.base...)
		units[len(units)-1] += uint16(offset)
		return utf16String(units), true
	}
	return "", false
}
