package normalizer

import (
	"regexp"
	"strings"
)

// TagTextNormalizer chuẩn hóa chuỗi tag thô về dạng so khớp được với từ điển:
// bỏ dấu, lowercase, cắt punctuation, gom khoảng trắng
type TagTextNormalizer struct {
	rePunct  *regexp.Regexp
	reSpaces *regexp.Regexp
}

// NewTagTextNormalizer tạo mới TagTextNormalizer
func NewTagTextNormalizer() *TagTextNormalizer {
	return &TagTextNormalizer{
		// "+" và "&" giữ lại vì xuất hiện trong tag hợp lệ ("18+", "1x1 & np")
		rePunct:  regexp.MustCompile(`[.,;:!?"'` + "`" + `“”‘’()\[\]{}<>|\\/~\-–—_*#]+`),
		reSpaces: regexp.MustCompile(`\s+`),
	}
}

// Normalize chuẩn hóa một chuỗi tag. Hàm total: mọi input đều có output,
// và idempotent: Normalize(Normalize(x)) == Normalize(x)
func (tn *TagTextNormalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 1. Bỏ dấu tiếng Việt, fold về ASCII
	out := FoldToASCII(s)

	// 2. Lowercase
	out = strings.ToLower(out)

	// 3. Cắt punctuation thành khoảng trắng
	out = tn.rePunct.ReplaceAllString(out, " ")

	// 4. Gom khoảng trắng, trim
	out = tn.reSpaces.ReplaceAllString(strings.TrimSpace(out), " ")

	return out
}

// NormalizeBatch chuẩn hóa nhiều tag cùng lúc
func (tn *TagTextNormalizer) NormalizeBatch(tags []string) []string {
	results := make([]string, len(tags))
	for i, tag := range tags {
		results[i] = tn.Normalize(tag)
	}
	return results
}

// Tokens tách chuỗi đã chuẩn hóa thành token theo khoảng trắng/phẩy,
// chỉ giữ token có độ dài >= minLen
func Tokens(normalized string, minLen int) []string {
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == ','
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ContainsWholeToken kiểm tra key có xuất hiện như một token trọn vẹn trong
// text không (biên là đầu/cuối chuỗi, khoảng trắng hoặc dấu phẩy).
// Dùng cho sensitive key để "np" không match bên trong "napoleon"
func ContainsWholeToken(text, key string) bool {
	start := 0
	for {
		idx := strings.Index(text[start:], key)
		if idx == -1 {
			return false
		}
		realIdx := start + idx
		endIdx := realIdx + len(key)

		leftOK := realIdx == 0 || isBoundary(text[realIdx-1])
		rightOK := endIdx == len(text) || isBoundary(text[endIdx])

		if leftOK && rightOK {
			return true
		}
		start = realIdx + 1
	}
}

func isBoundary(b byte) bool {
	return b == ' ' || b == ','
}
