package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/internal/normalizer"
	"go.uber.org/zap"
)

// TagEntrySource nguồn cung cấp các entry active của từ điển tag
type TagEntrySource interface {
	// FetchActive lấy toàn bộ entry đang active
	FetchActive(ctx context.Context) ([]models.TagEntry, error)
}

// DictionarySnapshot bản materialize bất biến của từ điển tại một thời điểm.
// Sau khi build xong không được mutate: reader ở mọi goroutine dùng chung
type DictionarySnapshot struct {
	// Mapping key đã chuẩn hóa → tên tag chuẩn
	Mapping map[string]string
	// ContainKeys các key đủ dài cho pass containment, đã sort để
	// thứ tự quét deterministic
	ContainKeys []string
	LoadedAt    time.Time
}

// Lookup tra một key đã chuẩn hóa
func (s *DictionarySnapshot) Lookup(key string) (string, bool) {
	name, ok := s.Mapping[key]
	return name, ok
}

// Size số key trong snapshot
func (s *DictionarySnapshot) Size() int {
	return len(s.Mapping)
}

// DictionaryCache cache in-memory cho từ điển tag, refresh theo TTL.
// Swap snapshot nguyên tử: reader thấy snapshot cũ hoặc mới, không bao giờ
// thấy mapping đang build dở
type DictionaryCache struct {
	source         TagEntrySource
	textNormalizer *normalizer.TagTextNormalizer
	logger         *zap.Logger

	ttl              time.Duration
	minContainKeyLen int

	mu       sync.RWMutex
	snapshot *DictionarySnapshot
	forced   bool // Invalidate() đã được gọi, lần Get tới phải refresh

	// refreshMu single-flight: nhiều Get cùng thấy snapshot hết hạn thì
	// chỉ một goroutine fetch, số còn lại chờ rồi dùng snapshot mới
	refreshMu sync.Mutex
}

// NewDictionaryCache tạo mới DictionaryCache
func NewDictionaryCache(source TagEntrySource, ttl time.Duration, minContainKeyLen int, logger *zap.Logger) *DictionaryCache {
	return &DictionaryCache{
		source:           source,
		textNormalizer:   normalizer.NewTagTextNormalizer(),
		logger:           logger,
		ttl:              ttl,
		minContainKeyLen: minContainKeyLen,
	}
}

// Get trả về snapshot hiện tại, refresh đồng bộ nếu đã hết TTL.
// Refresh lỗi thì tiếp tục serve snapshot cũ (stale-but-available),
// lỗi chỉ được log chứ không trả về caller
func (dc *DictionaryCache) Get(ctx context.Context) *DictionarySnapshot {
	dc.mu.RLock()
	snap := dc.snapshot
	fresh := snap != nil && !dc.forced && time.Since(snap.LoadedAt) <= dc.ttl
	dc.mu.RUnlock()

	if fresh {
		return snap
	}

	return dc.refresh(ctx)
}

// Invalidate buộc lần Get tiếp theo refresh bất kể TTL,
// dùng sau khi admin sửa từ điển
func (dc *DictionaryCache) Invalidate() {
	dc.mu.Lock()
	dc.forced = true
	dc.mu.Unlock()
}

// refresh build mapping mới ngoài read lock rồi swap vào
func (dc *DictionaryCache) refresh(ctx context.Context) *DictionarySnapshot {
	dc.refreshMu.Lock()
	defer dc.refreshMu.Unlock()

	// Goroutine khác có thể vừa refresh xong trong lúc chờ lock
	dc.mu.RLock()
	snap := dc.snapshot
	fresh := snap != nil && !dc.forced && time.Since(snap.LoadedAt) <= dc.ttl
	dc.mu.RUnlock()
	if fresh {
		return snap
	}

	entries, err := dc.source.FetchActive(ctx)
	if err != nil {
		dc.mu.RLock()
		stale := dc.snapshot
		dc.mu.RUnlock()

		dc.logger.Warn("Không fetch được từ điển tag, tiếp tục dùng snapshot cũ",
			zap.Error(err),
			zap.Bool("has_stale", stale != nil))

		if stale != nil {
			return stale
		}
		// Chưa từng load được lần nào: snapshot rỗng để caller không phải check nil
		return &DictionarySnapshot{Mapping: map[string]string{}, LoadedAt: time.Now()}
	}

	snap = dc.buildSnapshot(entries)

	dc.mu.Lock()
	dc.snapshot = snap
	dc.forced = false
	dc.mu.Unlock()

	dc.logger.Info("Đã refresh từ điển tag",
		zap.Int("entries", len(entries)),
		zap.Int("keys", snap.Size()))

	return snap
}

// buildSnapshot dựng mapping từ entries. Key trùng nhau resolve theo
// last-write-wins, mỗi xung đột được log để curation offline
func (dc *DictionaryCache) buildSnapshot(entries []models.TagEntry) *DictionarySnapshot {
	mapping := make(map[string]string, len(entries)*2)

	for _, entry := range entries {
		for _, keyword := range entry.AllKeywords() {
			// Re-normalize phòng thủ: key lẽ ra đã chuẩn hóa từ lúc ghi
			key := dc.textNormalizer.Normalize(keyword)
			if key == "" {
				continue
			}
			if prev, exists := mapping[key]; exists && prev != entry.CanonicalName {
				dc.logger.Warn("Key từ điển bị trùng, entry sau thắng",
					zap.String("key", key),
					zap.String("previous", prev),
					zap.String("winner", entry.CanonicalName))
			}
			mapping[key] = entry.CanonicalName
		}
	}

	containKeys := make([]string, 0, len(mapping))
	for key := range mapping {
		if len(key) >= dc.minContainKeyLen {
			containKeys = append(containKeys, key)
		}
	}
	sort.Strings(containKeys)

	return &DictionarySnapshot{
		Mapping:     mapping,
		ContainKeys: containKeys,
		LoadedAt:    time.Now(),
	}
}
