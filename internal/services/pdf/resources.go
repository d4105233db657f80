package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// fontCache shares decoded fonts between pages, keyed by object number
type fontCache map[int]*pdfFont

// resources resolves font and form names for one content stream
type resources struct {
	doc   *model.Context
	dict  types.Dict
	fonts map[string]*pdfFont
	cache fontCache
}

func newResources(doc *model.Context, dict types.Dict, cache fontCache) *resources {
	return &resources{doc: doc, dict: dict, fonts: map[string]*pdfFont{}, cache: cache}
}

func (r *resources) subDict(key string) types.Dict {
	if r.dict == nil {
		return nil
	}
	d, err := r.doc.DereferenceDict(r.dict[key])
	if err != nil {
		return nil
	}
	return d
}

func (r *resources) font(name string) *pdfFont {
	if f, ok := r.fonts[name]; ok {
		return f
	}

	f := fallbackFont()
	if fonts := r.subDict("Font"); fonts != nil {
		obj := fonts[name]
		ref, isRef := obj.(types.IndirectRef)
		if cached, ok := r.cache[ref.ObjectNumber.Value()]; isRef && ok {
			f = cached
		} else if fontDict, err := r.doc.DereferenceDict(obj); err == nil && fontDict != nil {
			f = loadFont(r.doc, fontDict)
			if isRef {
				r.cache[ref.ObjectNumber.Value()] = f
			}
		}
	}

	r.fonts[name] = f
	return f
}

// form returns the decoded content, resources and matrix of a form XObject
func (r *resources) form(name string) ([]byte, *resources, matrix, bool) {
	xobjects := r.subDict("XObject")
	if xobjects == nil {
		return nil, nil, matrix{}, false
	}
	sd, _, err := r.doc.DereferenceStreamDict(xobjects[name])
	if err != nil || sd == nil {
		return nil, nil, matrix{}, false
	}
	if nameValue(sd.Dict["Subtype"]) != "Form" {
		return nil, nil, matrix{}, false
	}
	if err := sd.Decode(); err != nil {
		return nil, nil, matrix{}, false
	}

	formRes := r
	if d, err := r.doc.DereferenceDict(sd.Dict["Resources"]); err == nil && d != nil {
		formRes = newResources(r.doc, d, r.cache)
	}

	m := identity()
	if arr, err := r.doc.DereferenceArray(sd.Dict["Matrix"]); err == nil && len(arr) == 6 {
		for i, o := range arr {
			if v, ok := numberValue(r.doc, o); ok {
				m[i] = v
			}
		}
	}
	return sd.Content, formRes, m, true
}
