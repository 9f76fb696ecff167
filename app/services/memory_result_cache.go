package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// MemoryResultCache result cache in-memory: LRU chặn kích thước,
// TTL ngắn kiểm tra lúc đọc, kèm worker quét dọn định kỳ
type MemoryResultCache struct {
	cache  *lru.Cache[string, *models.RecommendationResult]
	logger *zap.Logger
	ttl    time.Duration

	// Metrics
	hits   int64
	misses int64
}

// NewMemoryResultCache tạo mới MemoryResultCache
func NewMemoryResultCache(size int, ttl time.Duration, logger *zap.Logger) (*MemoryResultCache, error) {
	cache, err := lru.New[string, *models.RecommendationResult](size)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo LRU cache: %w", err)
	}

	return &MemoryResultCache{
		cache:  cache,
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Get lấy kết quả từ cache, entry quá TTL coi như miss và bị xóa
func (mrc *MemoryResultCache) Get(ctx context.Context, key string) (*models.RecommendationResult, bool, error) {
	result, found := mrc.cache.Get(key)
	if !found {
		mrc.misses++
		return nil, false, nil
	}

	if result.IsExpired(mrc.ttl) {
		mrc.cache.Remove(key)
		mrc.misses++
		return nil, false, nil
	}

	mrc.hits++
	mrc.logger.Debug("Result cache hit", zap.String("key", key))
	return result, true, nil
}

// Set lưu kết quả vào cache
func (mrc *MemoryResultCache) Set(ctx context.Context, key string, result *models.RecommendationResult) error {
	mrc.cache.Add(key, result)
	return nil
}

// Delete xóa một entry khỏi cache
func (mrc *MemoryResultCache) Delete(ctx context.Context, key string) error {
	mrc.cache.Remove(key)
	return nil
}

// Clear xóa toàn bộ cache
func (mrc *MemoryResultCache) Clear(ctx context.Context) error {
	mrc.cache.Purge()
	mrc.hits = 0
	mrc.misses = 0
	return nil
}

// GetStats lấy thống kê cache
func (mrc *MemoryResultCache) GetStats(ctx context.Context) (*ResultCacheStats, error) {
	total := mrc.hits + mrc.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(mrc.hits) / float64(total)
	}

	return &ResultCacheStats{
		HitRate:    hitRate,
		TotalHits:  mrc.hits,
		TotalMiss:  mrc.misses,
		TotalItems: int64(mrc.cache.Len()),
	}, nil
}

// CleanupExpired quét và xóa các entry quá TTL. Chạy thưa hơn dự kiến
// không sao, chỉ tốn bộ nhớ hơn chứ không sai kết quả
func (mrc *MemoryResultCache) CleanupExpired() {
	for _, key := range mrc.cache.Keys() {
		if result, found := mrc.cache.Peek(key); found && result.IsExpired(mrc.ttl) {
			mrc.cache.Remove(key)
		}
	}
}

// StartCleanupWorker khởi động worker dọn dẹp cache định kỳ
func (mrc *MemoryResultCache) StartCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			mrc.CleanupExpired()
		}
	}()
}

// Close đóng kết nối (không cần thiết cho in-memory cache)
func (mrc *MemoryResultCache) Close() error {
	return nil
}
