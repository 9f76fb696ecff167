package services

import (
	"context"
	"fmt"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
)

// ResultCacheStats thống kê result cache
type ResultCacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// IResultCache cache best-effort cho kết quả gợi ý. Miss hay entry hết hạn
// chỉ dẫn tới tính lại, không bao giờ dẫn tới kết quả sai
type IResultCache interface {
	// Get lấy kết quả gợi ý từ cache
	Get(ctx context.Context, key string) (*models.RecommendationResult, bool, error)

	// Set lưu kết quả gợi ý vào cache
	Set(ctx context.Context, key string, result *models.RecommendationResult) error

	// Delete xóa một entry
	Delete(ctx context.Context, key string) error

	// Clear xóa toàn bộ cache
	Clear(ctx context.Context) error

	// GetStats lấy thống kê cache
	GetStats(ctx context.Context) (*ResultCacheStats, error)

	// Close đóng kết nối (nếu cần)
	Close() error
}

// RecommendationCacheKey dựng key cache từ (truyện gốc, limit, minMatchingTags).
// minMatchingTags nằm trong key vì hai request khác ngưỡng không được
// dùng chung entry
func RecommendationCacheKey(sourceID string, limit, minMatchingTags int) string {
	return fmt.Sprintf("%s:%d:%d", sourceID, limit, minMatchingTags)
}
