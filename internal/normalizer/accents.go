package normalizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics loại bỏ dấu tiếng Việt một cách an toàn
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return replaceDHorn(out)
}

// isMn kiểm tra xem rune có phải là diacritic mark không
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// replaceDHorn đổi đ/Đ thành d/D (NFD không tách được ký tự này)
func replaceDHorn(s string) string {
	if !strings.ContainsAny(s, "đĐ") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'đ':
			b.WriteRune('d')
		case 'Đ':
			b.WriteRune('D')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldToASCII đưa văn bản về ASCII: bỏ dấu tiếng Việt trước, các ký tự
// ngoài Latin còn lại (kanji, hangul trong tag scrape từ nguồn nước ngoài)
// đi qua unidecode
func FoldToASCII(s string) string {
	folded := StripDiacritics(s)
	for _, r := range folded {
		if r > unicode.MaxASCII {
			return unidecode.Unidecode(folded)
		}
	}
	return folded
}
