package chat

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
)

// Slot names
const (
	SlotRole     = "role"
	SlotIndustry = "industry"
	SlotStatus   = "status"
	SlotName     = "name"
	SlotField    = "field"
	SlotType     = "type"
	SlotTopic    = "topic"
	SlotMode     = "mode"
)

// Slot values
const (
	ModeDistribution = "distribution"
	ModeTop          = "top"

	FieldPhone = "phone"
	FieldEmail = "email"
	FieldAll   = "all"
)

// Classification is the routed intent of a question with its extracted slots
type Classification struct {
	Intent models.QueryIntent `json:"intent"`
	Slots  map[string]string  `json:"slots,omitempty"`
	Rule   string             `json:"rule"`
}

// token is one word of the question in original casing and folded form
type token struct {
	raw    string
	folded string
}

// question is a parsed question. Matching always uses the folded forms.
type question struct {
	raw    string
	text   string // folded tokens joined by single spaces
	tokens []token
	quoted string // first quoted substring, original casing
}

var quotedPattern = regexp.MustCompile(`["'“”‘’]([^"'“”‘’]+)["'“”‘’]`)

func parseQuestion(raw string) *question {
	q := &question{raw: raw}
	if m := quotedPattern.FindStringSubmatch(raw); m != nil {
		q.quoted = strings.TrimSpace(m[1])
	}
	words := strings.FieldsFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	folded := make([]string, 0, len(words))
	for _, w := range words {
		f := common.Fold(w)
		q.tokens = append(q.tokens, token{raw: w, folded: f})
		folded = append(folded, f)
	}
	q.text = strings.Join(folded, " ")
	return q
}

// has reports whether any term occurs. Single words must match a whole token;
// phrases match the folded text.
func (q *question) has(terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(term, " ") {
			if strings.Contains(" "+q.text+" ", " "+term+" ") {
				return true
			}
			continue
		}
		for _, t := range q.tokens {
			if t.folded == term {
				return true
			}
		}
	}
	return false
}

// hasPrefix reports whether any token starts with one of the stems
func (q *question) hasPrefix(stems ...string) bool {
	for _, t := range q.tokens {
		for _, stem := range stems {
			if strings.HasPrefix(t.folded, stem) {
				return true
			}
		}
	}
	return false
}

// firstPrefix returns the first stem that starts any token, in stem order
func (q *question) firstPrefix(stems ...string) string {
	for _, stem := range stems {
		for _, t := range q.tokens {
			if strings.HasPrefix(t.folded, stem) {
				return stem
			}
		}
	}
	return ""
}

// contentTokens returns tokens that are not trigger or filler words
func (q *question) contentTokens(extra map[string]struct{}) []token {
	var out []token
	for _, t := range q.tokens {
		if _, ok := fillerWords[t.folded]; ok {
			continue
		}
		if _, ok := extra[t.folded]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

var (
	countWords      = []string{"berapa", "jumlah", "how many", "banyaknya"}
	roleValueStems  = []string{"ketum", "ketua", "sekum", "sekretaris", "bendum", "bendahara", "wakil"}
	roleStems       = append([]string{"jabatan", "role"}, roleValueStems...)
	industryPhrases = []string{"bidang usaha", "kategori bisnis", "industri", "industry"}
	topPhrases      = []string{"paling banyak", "terbanyak", "most"}
	ratioWords      = []string{"rasio", "perbandingan", "ratio"}
	genderStems     = []string{"pria", "wanita", "gender", "laki", "perempuan"}
	employeeStems   = []string{"karyawan", "employee", "pegawai"}
	phoneWords      = []string{"nomor", "no", "wa", "whatsapp", "telepon", "telp", "hp", "handphone", "phone"}
	emailWords      = []string{"email", "surel", "mail"}
	contactWords    = []string{"kontak", "kontaknya", "contact", "hubungi"}
	companyStems    = []string{"perusahaan", "company"}
	lookupWords     = []string{"cari", "info", "siapa", "jabatannya", "umurnya", "usianya", "profil", "detail"}
	documentStems   = []string{"dokumen", "document", "pdf", "file", "arsip"}
	documentAsks    = []string{"berapa", "daftar", "list", "cari", "tentang", "apa saja", "mana", "ada"}
)

// fillerWords never form part of a name or topic slot
var fillerWords = toSet(
	// question words and particles
	"apa", "apakah", "siapa", "berapa", "bagaimana", "kapan", "dimana", "mana", "yang", "dan", "atau",
	"di", "ke", "dari", "untuk", "dengan", "dalam", "pada", "ini", "itu", "saja", "ada", "adalah",
	"sebagai", "tolong", "mohon", "berikan", "tampilkan", "sebutkan", "lengkap", "nya", "dong", "ya",
	"the", "of", "is", "what", "who", "how", "many", "for", "a", "an", "me", "show", "please",
	// domain words
	"pengurus", "anggota", "member", "members", "hipmi", "data", "jumlah", "total",
	// lookup triggers
	"cari", "info", "jabatannya", "umurnya", "usianya", "profil", "detail", "perusahaannya",
	"kontaknya", "jabatan", "umur", "usia", "nama",
	// contact triggers
	"nomor", "no", "wa", "whatsapp", "telepon", "telp", "hp", "handphone", "phone", "email",
	"surel", "mail", "kontak", "contact", "hubungi",
	// company triggers
	"perusahaan", "company",
	// document triggers
	"dokumen", "document", "documents", "pdf", "file", "arsip", "daftar", "list", "tentang", "mengenai",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// documentTypeWords maps folded label words to types. Phrases are checked before single words.
var documentTypeWords = []struct {
	term string
	typ  models.DocumentType
}{
	{"anggaran rumah tangga", models.DocumentTypeOrgBylaws},
	{"anggaran dasar", models.DocumentTypeOrgCharter},
	{"peraturan organisasi", models.DocumentTypeOrgPolicy},
	{"surat keputusan", models.DocumentTypeOrgDecision},
	{"art", models.DocumentTypeOrgBylaws},
	{"ad", models.DocumentTypeOrgCharter},
	{"po", models.DocumentTypeOrgPolicy},
	{"sk", models.DocumentTypeOrgDecision},
	{"kontrak", models.DocumentTypeContract},
	{"perjanjian", models.DocumentTypeContract},
	{"laporan", models.DocumentTypeReport},
	{"proposal", models.DocumentTypeProposal},
	{"presentasi", models.DocumentTypePresentation},
	{"peraturan", models.DocumentTypeRegulation},
	{"kebijakan", models.DocumentTypeRegulation},
	{"panduan", models.DocumentTypeManual},
	{"manual", models.DocumentTypeManual},
}

// intentRule is one row of the routing table. Rules that need a name do not
// match unless the name resolves.
type intentRule struct {
	name      string
	intent    models.QueryIntent
	needsName bool
	match     func(q *question) bool
	slots     func(q *question, names *nameIndex) map[string]string
}

// Router classifies questions with an ordered rule table. First match wins.
// It holds no state between calls.
type Router struct {
	rules []intentRule
}

// NewRouter creates a router with the default rule order
func NewRouter() *Router {
	return &Router{rules: []intentRule{
		{
			name:   "role-count",
			intent: models.IntentRoleCount,
			match: func(q *question) bool {
				return q.has(countWords...) && q.hasPrefix(roleStems...)
			},
			slots: roleSlots,
		},
		{
			name:   "industry-stat",
			intent: models.IntentIndustryStat,
			match: func(q *question) bool {
				return q.has(industryPhrases...) || industryAfterBidang(q) != ""
			},
			slots: industrySlots,
		},
		{
			name:   "card-status-stat",
			intent: models.IntentCardStatusStat,
			match: func(q *question) bool {
				return q.has("kta")
			},
			slots: func(q *question, _ *nameIndex) map[string]string {
				if q.quoted != "" {
					return map[string]string{SlotStatus: q.quoted}
				}
				return map[string]string{SlotMode: ModeDistribution}
			},
		},
		{
			name:   "gender-ratio",
			intent: models.IntentGenderRatio,
			match: func(q *question) bool {
				return q.has(ratioWords...) && q.hasPrefix(genderStems...)
			},
		},
		{
			name:   "employee-total",
			intent: models.IntentEmployeeTotal,
			match: func(q *question) bool {
				return q.has("total", "jumlah") && q.hasPrefix(employeeStems...)
			},
		},
		{
			name:      "contact-lookup",
			intent:    models.IntentContactLookup,
			needsName: true,
			match: func(q *question) bool {
				return q.has(phoneWords...) || q.has(emailWords...) || q.has(contactWords...)
			},
			slots: contactSlots,
		},
		{
			name:      "company-lookup",
			intent:    models.IntentCompanyLookup,
			needsName: true,
			match: func(q *question) bool {
				return q.hasPrefix(companyStems...)
			},
			slots: nameSlots,
		},
		{
			name:      "member-lookup",
			intent:    models.IntentMemberLookup,
			needsName: true,
			match: func(q *question) bool {
				return q.has(lookupWords...) && !q.hasPrefix(documentStems...)
			},
			slots: nameSlots,
		},
		{
			name:      "member-mention",
			intent:    models.IntentMemberLookup,
			needsName: true,
			match: func(q *question) bool {
				return !q.hasPrefix(documentStems...)
			},
			slots: mentionSlots,
		},
		{
			name:   "document-fact",
			intent: models.IntentDocumentFact,
			match: func(q *question) bool {
				return q.hasPrefix(documentStems...) && q.has(documentAsks...)
			},
			slots: documentSlots,
		},
	}}
}

// Classify routes a question given the known member names. The same inputs
// always produce the same result.
func (r *Router) Classify(raw string, names []string) Classification {
	q := parseQuestion(raw)
	index := newNameIndex(names)

	for _, rule := range r.rules {
		if !rule.match(q) {
			continue
		}
		var slots map[string]string
		if rule.slots != nil {
			slots = rule.slots(q, index)
		}
		if rule.needsName && slots[SlotName] == "" {
			continue
		}
		return Classification{Intent: rule.intent, Slots: slots, Rule: rule.name}
	}
	return Classification{Intent: models.IntentGeneric, Rule: "generic"}
}

func roleSlots(q *question, _ *nameIndex) map[string]string {
	slots := map[string]string{}
	switch {
	case q.quoted != "":
		slots[SlotRole] = q.quoted
	case q.has("per jabatan"):
		slots[SlotMode] = ModeDistribution
	default:
		if stem := q.firstPrefix(roleValueStems...); stem != "" {
			slots[SlotRole] = roleValue(q, stem)
		} else {
			slots[SlotMode] = ModeDistribution
		}
	}
	return slots
}

// roleQualifiers may follow a role word inside a compound title, e.g. "Ketua Umum"
var roleQualifiers = map[string]struct{}{"umum": {}, "bidang": {}, "harian": {}}

// roleValue returns the run of adjacent role tokens starting at the first one
// carrying the stem, in original casing, e.g. "wakil ketua"
func roleValue(q *question, stem string) string {
	start := -1
	for i, t := range q.tokens {
		if strings.HasPrefix(t.folded, stem) {
			start = i
			break
		}
	}
	if start < 0 {
		return stem
	}
	for start > 0 && hasRoleStem(q.tokens[start-1].folded) {
		start--
	}
	parts := []string{q.tokens[start].raw}
	for _, t := range q.tokens[start+1:] {
		if _, ok := roleQualifiers[t.folded]; !ok && !hasRoleStem(t.folded) {
			break
		}
		parts = append(parts, t.raw)
	}
	return strings.Join(parts, " ")
}

func hasRoleStem(folded string) bool {
	for _, stem := range roleValueStems {
		if strings.HasPrefix(folded, stem) {
			return true
		}
	}
	return false
}

func industrySlots(q *question, _ *nameIndex) map[string]string {
	slots := map[string]string{}
	if q.quoted != "" {
		slots[SlotIndustry] = q.quoted
	} else if industry := industryAfterBidang(q); industry != "" {
		slots[SlotIndustry] = industry
	}
	if q.has(topPhrases...) {
		slots[SlotMode] = ModeTop
	} else if slots[SlotIndustry] == "" {
		slots[SlotMode] = ModeDistribution
	}
	return slots
}

// industryAfterBidang returns the original-cased token following "bidang",
// skipping "usaha" and filler words
func industryAfterBidang(q *question) string {
	for i, t := range q.tokens {
		if t.folded != "bidang" {
			continue
		}
		for _, next := range q.tokens[i+1:] {
			if next.folded == "usaha" {
				continue
			}
			if _, filler := fillerWords[next.folded]; filler {
				break
			}
			if _, top := topWords[next.folded]; top {
				break
			}
			return next.raw
		}
	}
	return ""
}

var topWords = toSet("paling", "terbanyak", "banyak", "most", "terbesar")

func contactSlots(q *question, names *nameIndex) map[string]string {
	slots := nameSlots(q, names)
	phone := q.has(phoneWords...)
	email := q.has(emailWords...)
	switch {
	case phone && !email:
		slots[SlotField] = FieldPhone
	case email && !phone:
		slots[SlotField] = FieldEmail
	default:
		slots[SlotField] = FieldAll
	}
	return slots
}

// nameSlots resolves a quoted name, or the remaining content tokens, with substring matching
func nameSlots(q *question, names *nameIndex) map[string]string {
	slots := map[string]string{}
	if q.quoted != "" {
		if name, ok := names.resolve(q.quoted, nil); ok {
			slots[SlotName] = name
		}
		return slots
	}
	tokens := q.contentTokens(nil)
	if len(tokens) == 0 {
		return slots
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.raw
	}
	if name, ok := names.resolve(strings.Join(parts, " "), tokens); ok {
		slots[SlotName] = name
	}
	return slots
}

// mentionSlots resolves untriggered questions only when a content token equals a whole name word
func mentionSlots(q *question, names *nameIndex) map[string]string {
	slots := map[string]string{}
	if q.quoted != "" {
		if name, ok := names.resolve(q.quoted, nil); ok {
			slots[SlotName] = name
		}
		return slots
	}
	for _, t := range q.contentTokens(nil) {
		if name, ok := names.resolveWord(t.folded); ok {
			slots[SlotName] = name
			break
		}
	}
	return slots
}

func documentSlots(q *question, _ *nameIndex) map[string]string {
	slots := map[string]string{}
	typeTerms := map[string]struct{}{}
	padded := " " + q.text + " "
	for _, entry := range documentTypeWords {
		if strings.Contains(padded, " "+entry.term+" ") {
			slots[SlotType] = string(entry.typ)
			for _, w := range strings.Fields(entry.term) {
				typeTerms[w] = struct{}{}
			}
			break
		}
	}

	var topic []string
	for _, t := range q.contentTokens(typeTerms) {
		if len([]rune(t.folded)) < 3 {
			continue
		}
		topic = append(topic, t.folded)
	}
	if len(topic) > 0 {
		slots[SlotTopic] = strings.Join(topic, " ")
	}
	return slots
}

// nameIndex resolves name candidates against member names in stable order
type nameIndex struct {
	names  []string
	folded []string
}

func newNameIndex(names []string) *nameIndex {
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			sorted = append(sorted, n)
		}
	}
	index := &nameIndex{names: sorted, folded: make([]string, len(sorted))}
	for i, n := range sorted {
		index.folded[i] = strings.TrimSpace(common.Fold(n))
	}
	sort.Stable(index)
	return index
}

func (n *nameIndex) Len() int { return len(n.names) }
func (n *nameIndex) Less(i, j int) bool {
	if n.folded[i] == n.folded[j] {
		return n.names[i] < n.names[j]
	}
	return n.folded[i] < n.folded[j]
}
func (n *nameIndex) Swap(i, j int) {
	n.names[i], n.names[j] = n.names[j], n.names[i]
	n.folded[i], n.folded[j] = n.folded[j], n.folded[i]
}

// resolve tries the whole candidate first, then each token of at least 3 characters
func (n *nameIndex) resolve(candidate string, tokens []token) (string, bool) {
	whole := strings.TrimSpace(common.Fold(candidate))
	if len([]rune(whole)) >= 3 {
		for i, f := range n.folded {
			if strings.Contains(f, whole) {
				return n.names[i], true
			}
		}
	}
	if tokens == nil {
		for _, w := range strings.Fields(whole) {
			tokens = append(tokens, token{raw: w, folded: w})
		}
	}
	for _, t := range tokens {
		if len([]rune(t.folded)) < 3 {
			continue
		}
		for i, f := range n.folded {
			if strings.Contains(f, t.folded) {
				return n.names[i], true
			}
		}
	}
	return "", false
}

// resolveWord matches a token against whole words of member names
func (n *nameIndex) resolveWord(word string) (string, bool) {
	if len([]rune(word)) < 3 {
		return "", false
	}
	for i, f := range n.folded {
		for _, part := range strings.Fields(f) {
			if part == word {
				return n.names[i], true
			}
		}
	}
	return "", false
}
