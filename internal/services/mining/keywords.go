package mining

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
)

var stopWords = toSet(
	// Indonesian
	"yang", "dan", "di", "ke", "dari", "untuk", "dengan", "pada", "ini", "itu", "dalam",
	"adalah", "atau", "tidak", "akan", "juga", "oleh", "sebagai", "telah", "karena", "dapat",
	"bahwa", "ada", "para", "serta", "tersebut", "bagi", "secara", "lebih", "setiap", "harus",
	"antara", "maka", "jika", "agar", "sudah", "belum", "hanya", "masih", "saat", "kami",
	"kita", "mereka", "anda", "saya", "dia", "nya", "pun", "lain", "atas", "bawah", "hal",
	"dll", "yaitu", "yakni", "sampai", "hingga", "sejak", "tentang", "seperti", "namun",
	"tetapi", "bila", "apabila", "demikian", "dimana", "kepada", "terhadap", "salah",
	"satu", "dua", "tiga", "nomor", "tahun", "ayat", "huruf",
	// English
	"the", "and", "for", "with", "that", "this", "from", "are", "was", "were", "have", "has",
	"had", "not", "but", "all", "any", "can", "will", "shall", "may", "into", "onto", "about",
	"than", "then", "there", "their", "they", "them", "you", "your", "our", "its", "his", "her",
	"who", "whom", "which", "what", "when", "where", "why", "how", "also", "been", "being",
	"such", "each", "other", "more", "most", "some", "these", "those", "upon", "only", "over",
	"under", "per", "via",
)

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Keywords ranks folded tokens by frequency, ties broken by first occurrence
func Keywords(text string) []models.Keyword {
	type entry struct {
		term  string
		count int
		first int
	}

	entries := map[string]*entry{}
	tokens := strings.FieldsFunc(common.Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, token := range tokens {
		if !isKeyword(token) {
			continue
		}
		if e, ok := entries[token]; ok {
			e.count++
			continue
		}
		entries[token] = &entry{term: token, count: 1, first: i}
	}

	ranked := make([]*entry, 0, len(entries))
	for _, e := range entries {
		ranked = append(ranked, e)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	if len(ranked) > maxKeywords {
		ranked = ranked[:maxKeywords]
	}

	keywords := make([]models.Keyword, len(ranked))
	for i, e := range ranked {
		keywords[i] = models.Keyword{Term: e.term, Count: e.count}
	}
	return keywords
}

func isKeyword(token string) bool {
	if len([]rune(token)) < minKeywordLen {
		return false
	}
	if _, stop := stopWords[token]; stop {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
