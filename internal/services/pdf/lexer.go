package pdf

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Operand values produced by the lexer:
//
//	float64        numbers
//	[]byte         literal and hex strings
//	pdfName        names, without the leading slash
//	[]interface{}  arrays
//	pdfDict        dictionaries
type pdfName string

type pdfDict map[pdfName]interface{}

// lexer tokenizes content streams and CMap programs
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer {
	return &lexer{data: data}
}

func isWhite(c byte) bool {
	return c == 0 || c == '\t' || c == '\n' || c == '\f' || c == '\r' || c == ' '
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhite(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

// next returns either an operand or an operator keyword.
// At end of input it returns ok=false.
func (l *lexer) next() (operand interface{}, operator string, ok bool, err error) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return nil, "", false, nil
	}

	c := l.data[l.pos]
	switch c {
	case '(':
		return l.literal(), "", true, nil
	case '<':
		if l.peek(1) == '<' {
			l.pos += 2
			d, err := l.dict()
			return d, "", true, err
		}
		s, err := l.hexString()
		return s, "", true, err
	case '[':
		l.pos++
		a, err := l.array()
		return a, "", true, err
	case '/':
		l.pos++
		return l.name(), "", true, nil
	case ']', '>', ')':
		l.pos++
		return nil, "", true, fmt.Errorf("unexpected %q at offset %d", c, l.pos-1)
	case '{', '}':
		l.pos++
		return nil, string(c), true, nil
	}

	word := l.regular()
	if n, err := strconv.ParseFloat(word, 64); err == nil {
		return n, "", true, nil
	}
	return nil, word, true, nil
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.data) {
		return l.data[l.pos+offset]
	}
	return 0
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhite(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		// Lone delimiter we do not understand; consume it to guarantee progress
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) name() pdfName {
	raw := l.regular()
	if !strings.ContainsRune(raw, '#') {
		return pdfName(raw)
	}
	var out []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if b, err := hex.DecodeString(raw[i+1 : i+3]); err == nil {
				out = append(out, b[0])
				i += 2
				continue
			}
		}
		out = append(out, raw[i])
	}
	return pdfName(out)
}

func (l *lexer) literal() []byte {
	l.pos++ // (
	depth := 1
	var out []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && l.pos < len(l.data); k++ {
						d := l.data[l.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func (l *lexer) hexString() ([]byte, error) {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			if _, err := hex.Decode(out, digits); err != nil {
				return nil, fmt.Errorf("bad hex string: %w", err)
			}
			return out, nil
		}
		if !isWhite(c) {
			digits = append(digits, c)
		}
	}
	return nil, fmt.Errorf("unterminated hex string")
}

func (l *lexer) array() ([]interface{}, error) {
	var items []interface{}
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return items, fmt.Errorf("unterminated array")
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return items, nil
		}
		operand, operator, ok, err := l.next()
		if err != nil {
			return items, err
		}
		if !ok {
			return items, fmt.Errorf("unterminated array")
		}
		if operator != "" {
			// Keywords such as true/false/null inside arrays
			items = append(items, operator)
			continue
		}
		items = append(items, operand)
	}
}

func (l *lexer) dict() (pdfDict, error) {
	d := pdfDict{}
	var key pdfName
	haveKey := false
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return d, fmt.Errorf("unterminated dictionary")
		}
		if l.data[l.pos] == '>' && l.peek(1) == '>' {
			l.pos += 2
			return d, nil
		}
		operand, operator, ok, err := l.next()
		if err != nil {
			return d, err
		}
		if !ok {
			return d, fmt.Errorf("unterminated dictionary")
		}
		var value interface{} = operand
		if operator != "" {
			value = operator
		}
		if !haveKey {
			name, isName := value.(pdfName)
			if !isName {
				return d, fmt.Errorf("dictionary key is not a name")
			}
			key, haveKey = name, true
			continue
		}
		d[key] = value
		haveKey = false
	}
}

// skipInlineImage advances past inline image data that follows an ID operator.
// The data ends at the first EI keyword delimited by whitespace.
func (l *lexer) skipInlineImage() {
	l.pos++ // single whitespace after ID
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			(l.pos == 0 || isWhite(l.data[l.pos-1])) &&
			(l.pos+2 >= len(l.data) || isWhite(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}
