package services

import (
	"context"
	"sort"
	"strings"

	"github.com/vexchzi/timtruyenbl-sub000/app/config"
	"github.com/vexchzi/timtruyenbl-sub000/internal/normalizer"
	"go.uber.org/zap"
)

// UnmatchedRecorder nhận các tag không resolve được, phục vụ curation offline.
// Ghi nhận là best-effort, không bao giờ chặn hay fail normalization
type UnmatchedRecorder interface {
	RecordUnmatched(normalized, original string)
}

// TagService map danh sách tag thô (cộng tag mine từ mô tả) về tập tag chuẩn
// theo từ điển, có blacklist và negation guard cho sensitive tag
type TagService struct {
	dictionary     *DictionaryCache
	textNormalizer *normalizer.TagTextNormalizer
	miner          *normalizer.DescriptionTagMiner
	recorder       UnmatchedRecorder
	logger         *zap.Logger

	blacklist        map[string]bool
	negationMarkers  []string
	sensitiveKeys    map[string]bool
	minContainKeyLen int
	minTokenLen      int
}

// NewTagService tạo mới TagService từ cấu hình matching
func NewTagService(dictionary *DictionaryCache, miner *normalizer.DescriptionTagMiner, cfg config.MatchingCfg, recorder UnmatchedRecorder, logger *zap.Logger) *TagService {
	tn := normalizer.NewTagTextNormalizer()

	blacklist := make(map[string]bool, len(cfg.Blacklist))
	for _, b := range cfg.Blacklist {
		blacklist[tn.Normalize(b)] = true
	}
	sensitive := make(map[string]bool, len(cfg.SensitiveKeys))
	for _, s := range cfg.SensitiveKeys {
		sensitive[tn.Normalize(s)] = true
	}
	markers := make([]string, 0, len(cfg.NegationMarkers))
	for _, m := range cfg.NegationMarkers {
		markers = append(markers, tn.Normalize(m))
	}

	return &TagService{
		dictionary:       dictionary,
		textNormalizer:   tn,
		miner:            miner,
		recorder:         recorder,
		logger:           logger,
		blacklist:        blacklist,
		negationMarkers:  markers,
		sensitiveKeys:    sensitive,
		minContainKeyLen: cfg.MinContainKeyLen,
		minTokenLen:      cfg.MinTokenLen,
	}
}

// NormalizeTags map rawTags (và tag mine từ description nếu có) về tập tên tag
// chuẩn, đã dedupe và sort. Tag không resolve được bị bỏ qua im lặng,
// không bao giờ trả lỗi cho input xấu
func (ts *TagService) NormalizeTags(ctx context.Context, rawTags []string, description string) []string {
	merged := rawTags
	if description != "" {
		// Tag mine từ mô tả được đối xử hệt như tag scrape
		merged = append(append([]string{}, rawTags...), ts.miner.ExtractTags(description)...)
	}

	snapshot := ts.dictionary.Get(ctx)

	resolved := make(map[string]bool)
	for _, raw := range merged {
		for _, name := range ts.resolveOne(raw, snapshot) {
			resolved[name] = true
		}
	}

	canonical := make([]string, 0, len(resolved))
	for name := range resolved {
		canonical = append(canonical, name)
	}
	sort.Strings(canonical)
	return canonical
}

// resolveOne resolve một tag thô qua ba pass: exact, containment, token.
// Dừng ở pass đầu tiên có ít nhất một match
func (ts *TagService) resolveOne(raw string, snapshot *DictionarySnapshot) []string {
	tag := ts.textNormalizer.Normalize(raw)
	if tag == "" || ts.blacklist[tag] {
		return nil
	}

	// Pass a: exact match
	if name, ok := snapshot.Lookup(tag); ok {
		return []string{name}
	}

	negated := ts.hasNegationMarker(tag)

	// Pass b: key nằm trong tag (chỉ chiều này, tránh key ngắn
	// over-match vào tag dài không liên quan)
	var matches []string
	for _, key := range snapshot.ContainKeys {
		if !strings.Contains(tag, key) {
			continue
		}
		if !ts.acceptGuardedMatch(tag, key, negated) {
			continue
		}
		name, _ := snapshot.Lookup(key)
		matches = append(matches, name)
	}
	if len(matches) > 0 {
		return matches
	}

	// Pass c: token fallback
	for _, token := range normalizer.Tokens(tag, ts.minTokenLen) {
		name, ok := snapshot.Lookup(token)
		if !ok {
			continue
		}
		if !ts.acceptGuardedMatch(tag, token, negated) {
			continue
		}
		matches = append(matches, name)
	}
	if len(matches) > 0 {
		return matches
	}

	if ts.recorder != nil {
		// Async: ghi nhận không được chặn request
		go ts.recorder.RecordUnmatched(tag, raw)
	}
	ts.logger.Debug("Tag không resolve được", zap.String("raw", raw), zap.String("normalized", tag))
	return nil
}

// acceptGuardedMatch áp hai guard cho match tìm qua containment/token:
//   - negation guard: tag có marker phủ định và key thuộc nhóm sensitive
//     thì loại ("không có NTR" không được gán tag NTR)
//   - standalone guard: sensitive key chỉ được match khi đứng thành
//     token trọn vẹn trong tag
func (ts *TagService) acceptGuardedMatch(tag, key string, negated bool) bool {
	if !ts.sensitiveKeys[key] {
		return true
	}
	if negated {
		return false
	}
	return normalizer.ContainsWholeToken(tag, key)
}

// hasNegationMarker kiểm tra tag đã chuẩn hóa có chứa marker phủ định không.
// Marker nhiều từ check bằng contains, marker một từ check theo token
// để "no" không match bên trong "notebook"
func (ts *TagService) hasNegationMarker(tag string) bool {
	for _, marker := range ts.negationMarkers {
		if strings.Contains(marker, " ") {
			if strings.Contains(tag, marker) {
				return true
			}
			continue
		}
		if normalizer.ContainsWholeToken(tag, marker) {
			return true
		}
	}
	return false
}
