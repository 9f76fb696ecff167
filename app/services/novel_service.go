package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/internal/normalizer"
	"github.com/vexchzi/timtruyenbl-sub000/internal/search"
	"go.uber.org/zap"
)

// NovelService nghiệp vụ ingest truyện và gợi ý truyện tương tự
type NovelService struct {
	store          *NovelStore
	tagService     *TagService
	recommender    *RecommendService
	searcher       *search.NovelSearcher
	textNormalizer *normalizer.TagTextNormalizer
	logger         *zap.Logger
	startTime      time.Time

	maxPool int64
}

// NewNovelService tạo mới NovelService
func NewNovelService(store *NovelStore, tagService *TagService, recommender *RecommendService, searcher *search.NovelSearcher, logger *zap.Logger) *NovelService {
	return &NovelService{
		store:          store,
		tagService:     tagService,
		recommender:    recommender,
		searcher:       searcher,
		textNormalizer: normalizer.NewTagTextNormalizer(),
		logger:         logger,
		startTime:      time.Now(),
		maxPool:        2000,
	}
}

// Ingest nhận một truyện mới scrape: normalize tag thô về tập tag chuẩn,
// lưu vào store và index tên truyện cho tìm kiếm
func (ns *NovelService) Ingest(ctx context.Context, novel *models.Novel) (string, error) {
	if novel.Title == "" {
		return "", fmt.Errorf("tên truyện không được để trống")
	}

	novel.CanonicalTags = ns.tagService.NormalizeTags(ctx, novel.RawTags, novel.Description)

	id, err := ns.store.Insert(ctx, novel)
	if err != nil {
		return "", err
	}

	if ns.searcher != nil {
		if err := ns.searcher.IndexNovel(novel, ns.textNormalizer.Normalize(novel.Title)); err != nil {
			// Search index là phụ trợ, lỗi không roll back ingest
			ns.logger.Warn("Không index được truyện vào Meilisearch",
				zap.String("novel_id", id), zap.Error(err))
		}
	}

	ns.logger.Info("Đã ingest truyện",
		zap.String("novel_id", id),
		zap.String("title", novel.Title),
		zap.Int("raw_tags", len(novel.RawTags)),
		zap.Int("canonical_tags", len(novel.CanonicalTags)))

	return id, nil
}

// Reprocess chạy lại normalization cho một truyện đã có (sau khi từ điển
// được bổ sung) và ghi lại tập tag chuẩn mới
func (ns *NovelService) Reprocess(ctx context.Context, id string) (*models.Novel, error) {
	novel, err := ns.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	novel.CanonicalTags = ns.tagService.NormalizeTags(ctx, novel.RawTags, novel.Description)
	if err := ns.store.UpdateCanonicalTags(ctx, id, novel.CanonicalTags); err != nil {
		return nil, err
	}

	if ns.searcher != nil {
		if err := ns.searcher.IndexNovel(novel, ns.textNormalizer.Normalize(novel.Title)); err != nil {
			ns.logger.Warn("Không re-index được truyện", zap.String("novel_id", id), zap.Error(err))
		}
	}

	ns.logger.Info("Đã reprocess truyện",
		zap.String("novel_id", id),
		zap.Int("canonical_tags", len(novel.CanonicalTags)))

	return novel, nil
}

// GetNovel lấy một truyện theo ID
func (ns *NovelService) GetNovel(ctx context.Context, id string) (*models.Novel, error) {
	return ns.store.GetByID(ctx, id)
}

// Recommend lấy danh sách truyện tương tự cho một truyện gốc. Pool ứng viên
// được store pre-filter theo tag chung trước khi chấm điểm
func (ns *NovelService) Recommend(ctx context.Context, id string, limit, minMatchingTags int) ([]models.ScoredCandidate, error) {
	source, err := ns.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Không tag thì không có cơ sở tương đồng: trả rỗng, không phải lỗi
	if len(source.CanonicalTags) == 0 {
		return []models.ScoredCandidate{}, nil
	}

	pool, err := ns.store.FindCandidatesByTags(ctx, source.ID, source.CanonicalTags, ns.maxPool)
	if err != nil {
		return nil, err
	}

	return ns.recommender.Recommend(ctx, source, pool, limit, minMatchingTags), nil
}

// SearchByTitle tìm truyện theo tên qua Meilisearch
func (ns *NovelService) SearchByTitle(query string, limit int64) ([]search.NovelHit, error) {
	if ns.searcher == nil {
		return nil, fmt.Errorf("search chưa được cấu hình")
	}
	return ns.searcher.SearchByTitle(query, limit)
}

// SearchByTag tìm truyện theo tên, giới hạn trong các truyện mang một tag chuẩn
func (ns *NovelService) SearchByTag(query, canonicalTag string, limit int64) ([]search.NovelHit, error) {
	if ns.searcher == nil {
		return nil, fmt.Errorf("search chưa được cấu hình")
	}
	return ns.searcher.SearchByTag(query, canonicalTag, limit)
}

// MarkRead tăng lượt đọc của một truyện, tín hiệu cho popularity bonus
func (ns *NovelService) MarkRead(ctx context.Context, id string) error {
	return ns.store.IncrementReadCount(ctx, id)
}

// GetStartTime thời gian khởi động service
func (ns *NovelService) GetStartTime() time.Time {
	return ns.startTime
}
