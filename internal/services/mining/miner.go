// -----------------------------------------------------------------------
// Package mining extracts entities (emails, phones, dates, URLs) and
// salient keywords from extracted document text.
// -----------------------------------------------------------------------

package mining

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/kintari/internal/models"
)

const (
	maxKeywords     = 20
	minKeywordLen   = 3
	maxNumbers      = 50
	phoneCueWindow  = 24 // Bytes on either side of a phone candidate searched for a cue word
	urlTrailingTrim = ".,;:!?)]}'\""
)

var monthNames = strings.Join([]string{
	// Indonesian
	"januari", "februari", "maret", "april", "mei", "juni", "juli", "agustus",
	"september", "oktober", "november", "desember",
	// English, where different
	"january", "february", "march", "may", "june", "july", "august", "october", "december",
}, "|")

// kind is an entity kind. Kinds claim text in declaration order.
type kind int

const (
	kindURL kind = iota
	kindEmail
	kindDate
	kindPhone
)

type pattern struct {
	kind kind
	re   *regexp.Regexp
}

// Miner extracts entities and keywords deterministically
type Miner struct {
	patterns []pattern
	phoneCue *regexp.Regexp
	areaCode *regexp.Regexp
	number   *regexp.Regexp
}

// NewMiner creates a miner with the Indonesian-aware pattern set
func NewMiner() *Miner {
	return &Miner{
		patterns: []pattern{
			{kindURL, regexp.MustCompile(`https?://[^\s<>"]+`)},
			{kindEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},

			// d/m/y, d-m-y
			{kindDate, regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
			// y-m-d, y/m/d
			{kindDate, regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)},
			// 17 Agustus 1945, 1 January 2024
			{kindDate, regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:` + monthNames + `)\s+\d{4}\b`)},

			// +62 812-3456-7890
			{kindPhone, regexp.MustCompile(`\+62[\s-]?\d{2,3}[\s-]?\d{3,4}[\s-]?\d{3,4}`)},
			// 0812 3456 7890, 021-5551234
			{kindPhone, regexp.MustCompile(`\b0\d{2,3}[\s-]?\d{3,4}[\s-]?\d{3,4}\b`)},
			// (021) 555-1234
			{kindPhone, regexp.MustCompile(`\(\d{2,3}\)\s?\d{3,4}[\s-]?\d{3,4}`)},
		},
		phoneCue: regexp.MustCompile(`(?i)(?:\b(?:telp|tel|hp|phone|wa|whatsapp|fax|kontak|contact|nomor)\b|\bno\.)`),
		areaCode: regexp.MustCompile(`^\(0\d{1,2}\)`),
		number:   regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`),
	}
}

// Mine returns the entities and top keywords of text. The same text always
// yields the same result.
func (m *Miner) Mine(text string) (models.EntityBundle, []models.Keyword) {
	return m.Entities(text), Keywords(text)
}

// Entities scans text kind by kind. A byte span claimed by an earlier kind is
// never matched by a later one.
func (m *Miner) Entities(text string) models.EntityBundle {
	claimed := make([]bool, len(text))
	isFree := func(start, end int) bool {
		for i := start; i < end; i++ {
			if claimed[i] {
				return false
			}
		}
		return true
	}
	claim := func(start, end int) {
		for i := start; i < end; i++ {
			claimed[i] = true
		}
	}

	found := map[kind]*set{
		kindURL:   newSet(),
		kindEmail: newSet(),
		kindDate:  newSet(),
		kindPhone: newSet(),
	}

	for _, p := range m.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			value := text[start:end]

			switch p.kind {
			case kindURL:
				value = strings.TrimRight(value, urlTrailingTrim)
				end = start + len(value)
			case kindEmail:
				value = strings.ToLower(value)
			case kindPhone:
				if !m.phoneContext(text, start, end, value) {
					continue // Left for the number pass
				}
			}

			if value == "" || !isFree(start, end) {
				continue
			}
			claim(start, end)
			found[p.kind].add(value)
		}
	}

	numbers := newSet()
	for _, loc := range m.number.FindAllStringIndex(text, -1) {
		if len(numbers.order) >= maxNumbers {
			break
		}
		if isFree(loc[0], loc[1]) {
			numbers.add(text[loc[0]:loc[1]])
		}
	}

	return models.EntityBundle{
		Emails:  found[kindEmail].sorted(),
		Phones:  found[kindPhone].sorted(),
		Dates:   found[kindDate].sorted(),
		URLs:    found[kindURL].sorted(),
		Numbers: numbers.order,
	}
}

// phoneContext reports whether a phone-shaped match qualifies as a phone:
// an international or area-code prefix, a cue word shortly before or after
// it, or internal separators.
func (m *Miner) phoneContext(text string, start, end int, value string) bool {
	if strings.HasPrefix(value, "+62") || m.areaCode.MatchString(value) {
		return true
	}

	from := max(start-phoneCueWindow, 0)
	if m.phoneCue.MatchString(text[from:start]) {
		return true
	}
	to := min(end+phoneCueWindow, len(text))
	if m.phoneCue.MatchString(text[end:to]) {
		return true
	}

	return strings.ContainsAny(strings.TrimSpace(value), " -")
}

// set keeps first-seen order and deduplicates
type set struct {
	seen  map[string]struct{}
	order []string
}

func newSet() *set {
	return &set{seen: map[string]struct{}{}, order: []string{}}
}

func (s *set) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *set) sorted() []string {
	out := append([]string{}, s.order...)
	sort.Strings(out)
	return out
}
