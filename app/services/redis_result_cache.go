package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisResultCache result cache dùng Redis, cho deploy nhiều instance
// muốn share kết quả gợi ý. TTL giao cho Redis quản
type RedisResultCache struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	// Stats
	hits   int64
	misses int64
}

// NewRedisResultCache tạo mới Redis result cache
func NewRedisResultCache(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisResultCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return &RedisResultCache{
		client: client,
		logger: logger,
		prefix: "rec:",
		ttl:    ttl,
	}, nil
}

// Get lấy kết quả gợi ý từ cache
func (rrc *RedisResultCache) Get(ctx context.Context, key string) (*models.RecommendationResult, bool, error) {
	cacheKey := rrc.prefix + key

	val, err := rrc.client.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		rrc.misses++
		return nil, false, nil
	}
	if err != nil {
		rrc.logger.Error("Lỗi get từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var result models.RecommendationResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		rrc.logger.Error("Lỗi unmarshal cache data", zap.Error(err))
		return nil, false, err
	}

	rrc.hits++
	rrc.logger.Debug("Redis result cache hit", zap.String("key", key))
	return &result, true, nil
}

// Set lưu kết quả gợi ý vào cache với TTL
func (rrc *RedisResultCache) Set(ctx context.Context, key string, result *models.RecommendationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("lỗi marshal recommendation result: %w", err)
	}

	cacheKey := rrc.prefix + key
	if err := rrc.client.Set(ctx, cacheKey, data, rrc.ttl).Err(); err != nil {
		return fmt.Errorf("lỗi set vào Redis: %w", err)
	}
	return nil
}

// Delete xóa một entry khỏi cache
func (rrc *RedisResultCache) Delete(ctx context.Context, key string) error {
	if err := rrc.client.Del(ctx, rrc.prefix+key).Err(); err != nil {
		return fmt.Errorf("lỗi delete khỏi Redis: %w", err)
	}
	return nil
}

// Clear xóa toàn bộ các key của result cache
func (rrc *RedisResultCache) Clear(ctx context.Context) error {
	iter := rrc.client.Scan(ctx, 0, rrc.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := rrc.client.Del(ctx, iter.Val()).Err(); err != nil {
			rrc.logger.Warn("Lỗi xóa key Redis", zap.Error(err), zap.String("key", iter.Val()))
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("lỗi scan Redis: %w", err)
	}

	rrc.hits = 0
	rrc.misses = 0
	return nil
}

// GetStats lấy thống kê cache
func (rrc *RedisResultCache) GetStats(ctx context.Context) (*ResultCacheStats, error) {
	var count int64
	iter := rrc.client.Scan(ctx, 0, rrc.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("lỗi scan Redis: %w", err)
	}

	total := rrc.hits + rrc.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(rrc.hits) / float64(total)
	}

	return &ResultCacheStats{
		HitRate:    hitRate,
		TotalHits:  rrc.hits,
		TotalMiss:  rrc.misses,
		TotalItems: count,
	}, nil
}

// Close đóng kết nối Redis
func (rrc *RedisResultCache) Close() error {
	return rrc.client.Close()
}
