package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/config"
	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"go.uber.org/zap"
)

// RecommendService chấm điểm và xếp hạng truyện ứng viên theo độ tương đồng
// tập tag chuẩn với truyện gốc
type RecommendService struct {
	resultCache IResultCache
	logger      *zap.Logger
	scoring     config.ScoringCfg
}

// NewRecommendService tạo mới RecommendService
func NewRecommendService(resultCache IResultCache, scoring config.ScoringCfg, logger *zap.Logger) *RecommendService {
	return &RecommendService{
		resultCache: resultCache,
		logger:      logger,
		scoring:     scoring,
	}
}

// Recommend chấm điểm pool ứng viên với truyện gốc và trả về tối đa limit
// ứng viên tốt nhất. Kết quả có thể được serve từ result cache;
// truyện gốc không có tag thì trả về rỗng ngay (chính sách, không phải sót)
func (rs *RecommendService) Recommend(ctx context.Context, source *models.Novel, pool []models.Novel, limit, minMatchingTags int) []models.ScoredCandidate {
	if source == nil || len(source.CanonicalTags) == 0 {
		return []models.ScoredCandidate{}
	}
	if limit <= 0 {
		return []models.ScoredCandidate{}
	}

	cacheKey := RecommendationCacheKey(source.ID.Hex(), limit, minMatchingTags)
	if rs.resultCache != nil {
		if cached, found, err := rs.resultCache.Get(ctx, cacheKey); err == nil && found {
			return cached.Candidates
		}
	}

	candidates := rs.scorePool(ctx, source, pool, minMatchingTags)

	// Tie-break ba cấp để thứ tự total và deterministic kể cả khi
	// điểm bằng nhau (thường gặp với tập tag nhỏ)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if len(candidates[i].MatchingTags) != len(candidates[j].MatchingTags) {
			return len(candidates[i].MatchingTags) > len(candidates[j].MatchingTags)
		}
		return candidates[i].Novel.ReadCount > candidates[j].Novel.ReadCount
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if rs.resultCache != nil {
		result := &models.RecommendationResult{
			SourceID:   source.ID.Hex(),
			Candidates: candidates,
			CreatedAt:  time.Now(),
		}
		if err := rs.resultCache.Set(ctx, cacheKey, result); err != nil {
			rs.logger.Warn("Không lưu được vào result cache", zap.Error(err))
		}
	}

	return candidates
}

// scorePool chấm điểm từng ứng viên, bỏ self-match, tập tag rỗng
// và ứng viên dưới ngưỡng giao tối thiểu
func (rs *RecommendService) scorePool(ctx context.Context, source *models.Novel, pool []models.Novel, minMatchingTags int) []models.ScoredCandidate {
	sourceSet := source.TagSet()
	candidates := make([]models.ScoredCandidate, 0, len(pool))

	for i := range pool {
		// Request deadline của caller chặn pool lớn bất thường
		if ctx.Err() != nil {
			rs.logger.Warn("Recommend bị hủy giữa chừng", zap.Error(ctx.Err()))
			break
		}

		candidate := &pool[i]
		if candidate.ID == source.ID || len(candidate.CanonicalTags) == 0 {
			continue
		}

		matching, unionSize := intersectAndUnion(sourceSet, candidate.CanonicalTags)
		if len(matching) < minMatchingTags || len(matching) == 0 {
			continue
		}

		jaccard := 0.0
		if unionSize > 0 {
			jaccard = float64(len(matching)) / float64(unionSize)
		}

		score := rs.scoring.JaccardWeight*jaccard +
			rs.scoring.PopularityWeight*rs.popularityBonus(candidate.ReadCount)

		candidates = append(candidates, models.ScoredCandidate{
			Novel:        *candidate,
			MatchingTags: matching,
			Score:        roundTo(score, rs.scoring.ScoreDecimals),
		})
	}

	return candidates
}

// popularityBonus bonus độ phổ biến damp theo log và cap cứng,
// để read count thô không lấn át độ liên quan theo tag
func (rs *RecommendService) popularityBonus(readCount int64) float64 {
	if readCount <= 0 {
		return 0
	}
	bonus := math.Log(float64(readCount)+1) / rs.scoring.PopularityDamp
	return math.Min(bonus, rs.scoring.PopularityCap)
}

// intersectAndUnion tính giao (sort sẵn) và kích thước hợp của tập tag gốc
// với tag ứng viên
func intersectAndUnion(sourceSet map[string]bool, candidateTags []string) ([]string, int) {
	var matching []string
	seen := make(map[string]bool, len(candidateTags))
	unionSize := len(sourceSet)

	for _, tag := range candidateTags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if sourceSet[tag] {
			matching = append(matching, tag)
		} else {
			unionSize++
		}
	}

	sort.Strings(matching)
	return matching, unionSize
}

// roundTo làm tròn điểm về số chữ số thập phân cố định cho thứ tự ổn định,
// tái lập được
func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
