package normalizer

import (
	"fmt"
	"regexp"
	"strings"
)

// DescriptionTagMiner trích tag từ văn bản mô tả truyện bằng các dòng nhãn
// kiểu "Thể loại: đam mỹ, HE" hoặc "Tags: school life / fluff"
type DescriptionTagMiner struct {
	// Precompiled patterns theo thứ tự ưu tiên trong rules
	labelPatterns []*regexp.Regexp
	datePatterns  []*regexp.Regexp
	separators    []string
	stopWords     map[string]bool

	textNormalizer *TagTextNormalizer
}

// NewDescriptionTagMiner tạo mới DescriptionTagMiner từ embedded rules
func NewDescriptionTagMiner() (*DescriptionTagMiner, error) {
	rules, err := LoadMinerRules()
	if err != nil {
		return nil, fmt.Errorf("lỗi load miner rules: %w", err)
	}
	return NewDescriptionTagMinerWithRules(rules)
}

// NewDescriptionTagMinerWithRules tạo miner với rules cho trước
func NewDescriptionTagMinerWithRules(rules *MinerRules) (*DescriptionTagMiner, error) {
	m := &DescriptionTagMiner{
		separators:     rules.Separators,
		stopWords:      make(map[string]bool, len(rules.StopWords)),
		textNormalizer: NewTagTextNormalizer(),
	}

	for _, lp := range rules.LabelPatterns {
		re, err := regexp.Compile(lp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("label pattern %q không hợp lệ: %w", lp.Name, err)
		}
		m.labelPatterns = append(m.labelPatterns, re)
	}
	for _, dp := range rules.DatePatterns {
		re, err := regexp.Compile(dp)
		if err != nil {
			return nil, fmt.Errorf("date pattern %q không hợp lệ: %w", dp, err)
		}
		m.datePatterns = append(m.datePatterns, re)
	}

	// Stop-word so khớp trên dạng đã chuẩn hóa
	for _, sw := range rules.StopWords {
		m.stopWords[m.textNormalizer.Normalize(sw)] = true
	}

	return m, nil
}

// ExtractTags trích các tag từ mô tả. Hàm thuần, không side effect,
// không match gì thì trả về slice rỗng
func (m *DescriptionTagMiner) ExtractTags(text string) []string {
	if text == "" {
		return nil
	}

	var tags []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		for _, re := range m.labelPatterns {
			match := re.FindStringSubmatch(line)
			if len(match) < 2 {
				continue
			}
			for _, piece := range m.splitValue(match[1]) {
				piece = strings.TrimSpace(piece)
				if piece == "" || m.shouldDiscard(piece) {
					continue
				}
				// Dedupe case-insensitive, giữ casing lần gặp đầu
				key := m.textNormalizer.Normalize(piece)
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				tags = append(tags, piece)
			}
			// Một dòng chỉ ăn theo pattern đầu tiên match
			break
		}
	}

	return tags
}

// splitValue tách giá trị sau nhãn thành từng mảnh theo separators
func (m *DescriptionTagMiner) splitValue(value string) []string {
	pieces := []string{value}
	for _, sep := range m.separators {
		var next []string
		for _, p := range pieces {
			next = append(next, strings.Split(p, sep)...)
		}
		pieces = next
	}
	return pieces
}

// shouldDiscard loại mảnh thuần số, giống ngày tháng, hoặc là stop-word
func (m *DescriptionTagMiner) shouldDiscard(piece string) bool {
	trimmed := strings.TrimSpace(piece)

	if isPurelyNumeric(trimmed) {
		return true
	}
	for _, re := range m.datePatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return m.stopWords[m.textNormalizer.Normalize(trimmed)]
}

func isPurelyNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
