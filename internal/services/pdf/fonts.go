package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

const defaultGlyphWidth = 500.0 // Thousandths of an em, used when a font carries no widths

// pdfFont decodes shown strings into text and glyph advances
type pdfFont struct {
	composite bool
	codeBytes int
	toUnicode *toUnicodeMap
	charset   *charmap.Charmap
	widths    map[uint32]float64
	defWidth  float64
}

type glyph struct {
	text  string
	width float64 // Thousandths of an em
	space bool    // Single-byte code 32, which receives word spacing
}

// fallbackFont is used when Tf names a font the resources do not define
func fallbackFont() *pdfFont {
	return &pdfFont{codeBytes: 1, charset: charmap.Windows1252, defWidth: defaultGlyphWidth}
}

func (f *pdfFont) decode(b []byte) []glyph {
	n := f.codeBytes
	if n < 1 {
		n = 1
	}

	glyphs := make([]glyph, 0, len(b)/n)
	for i := 0; i+n <= len(b); i += n {
		code := codeValue(b[i : i+n])
		g := glyph{width: f.defWidth, space: n == 1 && code == 32}
		if w, ok := f.widths[code]; ok {
			g.width = w
		}

		if f.toUnicode != nil {
			if s, ok := f.toUnicode.lookup(code); ok {
				g.text = s
				glyphs = append(glyphs, g)
				continue
			}
		}
		switch {
		case n == 1 && f.charset != nil:
			g.text = string(f.charset.DecodeByte(b[i]))
		case n == 1:
			g.text = string(rune(b[i]))
		case code >= 0x20 && code < 0xD800:
			// Identity encodings without a ToUnicode map frequently use Unicode code points
			g.text = string(rune(code))
		}
		glyphs = append(glyphs, g)
	}
	return glyphs
}

// loadFont builds a decoder from a font dictionary. Missing or broken entries
// degrade to WinAnsi decoding with default widths.
func loadFont(doc *model.Context, fontDict types.Dict) *pdfFont {
	f := fallbackFont()

	subtype := nameValue(fontDict["Subtype"])
	if subtype == "Type0" {
		f.composite = true
		f.codeBytes = 2
		f.charset = nil
		loadCompositeWidths(doc, fontDict, f)
	} else {
		f.charset = simpleCharset(doc, fontDict["Encoding"])
		loadSimpleWidths(doc, fontDict, f)
	}

	if obj, ok := fontDict["ToUnicode"]; ok {
		if sd, _, err := doc.DereferenceStreamDict(obj); err == nil && sd != nil {
			if err := sd.Decode(); err == nil {
				cm := parseCMap(sd.Content)
				f.toUnicode = cm
				if cm.codeBytes > 0 {
					f.codeBytes = cm.codeBytes
				}
			}
		}
	}

	return f
}

func simpleCharset(doc *model.Context, encoding types.Object) *charmap.Charmap {
	name := nameValue(encoding)
	if name == "" {
		if d, err := doc.DereferenceDict(encoding); err == nil && d != nil {
			name = nameValue(d["BaseEncoding"])
		}
	}
	switch name {
	case "MacRomanEncoding":
		return charmap.Macintosh
	default:
		return charmap.Windows1252
	}
}

func loadSimpleWidths(doc *model.Context, fontDict types.Dict, f *pdfFont) {
	first, ok := numberValue(doc, fontDict["FirstChar"])
	if !ok {
		return
	}
	widths, err := doc.DereferenceArray(fontDict["Widths"])
	if err != nil || len(widths) == 0 {
		return
	}
	f.widths = make(map[uint32]float64, len(widths))
	for i, w := range widths {
		if v, ok := numberValue(doc, w); ok {
			f.widths[uint32(int(first)+i)] = v
		}
	}
}

// loadCompositeWidths reads DW and the W array of the descendant CIDFont
func loadCompositeWidths(doc *model.Context, fontDict types.Dict, f *pdfFont) {
	descendants, err := doc.DereferenceArray(fontDict["DescendantFonts"])
	if err != nil || len(descendants) == 0 {
		return
	}
	cid, err := doc.DereferenceDict(descendants[0])
	if err != nil || cid == nil {
		return
	}
	f.defWidth = 1000
	if dw, ok := numberValue(doc, cid["DW"]); ok {
		f.defWidth = dw
	}

	w, err := doc.DereferenceArray(cid["W"])
	if err != nil {
		return
	}
	f.widths = map[uint32]float64{}
	for i := 0; i < len(w); {
		start, ok := numberValue(doc, w[i])
		if !ok || i+1 >= len(w) {
			return
		}
		if list, err := doc.DereferenceArray(w[i+1]); err == nil && list != nil {
			// c [w1 w2 ...]
			for k, item := range list {
				if v, ok := numberValue(doc, item); ok {
					f.widths[uint32(int(start)+k)] = v
				}
			}
			i += 2
			continue
		}
		// cfirst clast w
		if i+2 >= len(w) {
			return
		}
		last, ok1 := numberValue(doc, w[i+1])
		v, ok2 := numberValue(doc, w[i+2])
		if !ok1 || !ok2 || last < start || last-start > 0xFFFF {
			return
		}
		for c := int(start); c <= int(last); c++ {
			f.widths[uint32(c)] = v
		}
		i += 3
	}
}

func nameValue(o types.Object) string {
	if n, ok := o.(types.Name); ok {
		return n.Value()
	}
	return ""
}

func numberValue(doc *model.Context, o types.Object) (float64, bool) {
	if o == nil {
		return 0, false
	}
	if ref, ok := o.(types.IndirectRef); ok {
		resolved, err := doc.Dereference(ref)
		if err != nil {
			return 0, false
		}
		o = resolved
	}
	switch v := o.(type) {
	case types.Integer:
		return float64(v.Value()), true
	case types.Float:
		return v.Value(), true
	}
	return 0, false
}
