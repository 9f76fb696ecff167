package services

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/internal/normalizer"
	"github.com/xrash/smetrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AdminService quản lý từ điển tag và báo cáo curation
type AdminService struct {
	db             *mongo.Database
	tagSource      *MongoTagSource
	dictionary     *DictionaryCache
	textNormalizer *normalizer.TagTextNormalizer
	logger         *zap.Logger
	startTime      time.Time
}

// SystemStats thống kê hệ thống
type SystemStats struct {
	Uptime        string                 `json:"uptime"`
	MemoryUsage   map[string]interface{} `json:"memory_usage"`
	DatabaseStats DatabaseStats          `json:"database_stats"`
	DictionaryKeys int                   `json:"dictionary_keys"`
}

// DatabaseStats thống kê database
type DatabaseStats struct {
	TagEntries    int64 `json:"tag_entries"`
	ActiveEntries int64 `json:"active_entries"`
	Novels        int64 `json:"novels"`
	UnmatchedTags int64 `json:"unmatched_tags"`
}

// NewAdminService tạo mới AdminService
func NewAdminService(db *mongo.Database, tagSource *MongoTagSource, dictionary *DictionaryCache, logger *zap.Logger) *AdminService {
	return &AdminService{
		db:             db,
		tagSource:      tagSource,
		dictionary:     dictionary,
		textNormalizer: normalizer.NewTagTextNormalizer(),
		logger:         logger,
		startTime:      time.Now(),
	}
}

// UpsertTagEntry ghi một entry từ điển. Keyword và aliases được chuẩn hóa
// tại thời điểm ghi; cache bị invalidate để lần normalize tới thấy thay đổi
func (as *AdminService) UpsertTagEntry(ctx context.Context, entry *models.TagEntry) error {
	if entry.CanonicalName == "" {
		return fmt.Errorf("canonical_name không được để trống")
	}
	if !entry.IsValidCategory() {
		return fmt.Errorf("category %q không hợp lệ", entry.Category)
	}

	entry.PrimaryKeyword = as.textNormalizer.Normalize(entry.PrimaryKeyword)
	if entry.PrimaryKeyword == "" {
		// Không có keyword thì lấy từ canonical name
		entry.PrimaryKeyword = as.textNormalizer.Normalize(entry.CanonicalName)
	}
	if entry.PrimaryKeyword == "" {
		return fmt.Errorf("primary keyword rỗng sau chuẩn hóa")
	}

	normalizedAliases := make([]string, 0, len(entry.Aliases))
	seen := map[string]bool{entry.PrimaryKeyword: true}
	for _, alias := range entry.Aliases {
		a := as.textNormalizer.Normalize(alias)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		normalizedAliases = append(normalizedAliases, a)
	}
	entry.Aliases = normalizedAliases

	if err := as.tagSource.Upsert(ctx, entry); err != nil {
		return err
	}

	as.dictionary.Invalidate()
	as.logger.Info("Đã upsert tag entry",
		zap.String("canonical_name", entry.CanonicalName),
		zap.String("primary_keyword", entry.PrimaryKeyword),
		zap.Int("aliases", len(entry.Aliases)))
	return nil
}

// DeactivateTagEntry tắt một entry và invalidate cache
func (as *AdminService) DeactivateTagEntry(ctx context.Context, primaryKeyword string) error {
	key := as.textNormalizer.Normalize(primaryKeyword)
	if err := as.tagSource.Deactivate(ctx, key); err != nil {
		return err
	}

	as.dictionary.Invalidate()
	as.logger.Info("Đã deactivate tag entry", zap.String("primary_keyword", key))
	return nil
}

// InvalidateDictionary buộc refresh từ điển (sau khi sửa dữ liệu ngoài API)
func (as *AdminService) InvalidateDictionary() {
	as.dictionary.Invalidate()
	as.logger.Info("Đã invalidate dictionary cache")
}

// RecordUnmatched ghi nhận một tag không resolve được (implement
// UnmatchedRecorder). Upsert theo dạng chuẩn hóa, tăng seen_count
func (as *AdminService) RecordUnmatched(normalized, original string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"normalized_text": normalized}
	update := bson.M{
		"$setOnInsert": bson.M{"original_text": original, "first_seen": now},
		"$set":         bson.M{"last_seen": now},
		"$inc":         bson.M{"seen_count": 1},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := as.db.Collection("unmatched_tags").UpdateOne(ctx, filter, update, opts); err != nil {
		as.logger.Warn("Lỗi ghi unmatched tag", zap.Error(err), zap.String("tag", normalized))
	}
}

// ListUnmatched lấy các unmatched tag gặp nhiều nhất kèm gợi ý key gần nhất
func (as *AdminService) ListUnmatched(ctx context.Context, limit int64, suggestionsPer int) ([]models.UnmatchedTag, map[string][]models.KeySuggestion, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "seen_count", Value: -1}}).
		SetLimit(limit)

	cursor, err := as.db.Collection("unmatched_tags").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("lỗi query unmatched_tags: %w", err)
	}
	defer cursor.Close(ctx)

	var tags []models.UnmatchedTag
	for cursor.Next(ctx) {
		var tag models.UnmatchedTag
		if err := cursor.Decode(&tag); err != nil {
			as.logger.Warn("Lỗi decode unmatched tag", zap.Error(err))
			continue
		}
		tags = append(tags, tag)
	}
	if err := cursor.Err(); err != nil {
		return nil, nil, fmt.Errorf("lỗi đọc cursor unmatched_tags: %w", err)
	}

	suggestions := make(map[string][]models.KeySuggestion, len(tags))
	snapshot := as.dictionary.Get(ctx)
	for _, tag := range tags {
		suggestions[tag.NormalizedText] = as.SuggestKeys(snapshot, tag.NormalizedText, suggestionsPer)
	}

	return tags, suggestions, nil
}

// SuggestKeys tìm các key từ điển gần một tag nhất, xếp theo Jaro-Winkler
// giảm dần rồi Levenshtein tăng dần. Chỉ phục vụ curation offline,
// không tham gia vào matching runtime
func (as *AdminService) SuggestKeys(snapshot *DictionarySnapshot, tag string, topK int) []models.KeySuggestion {
	if tag == "" || snapshot.Size() == 0 || topK <= 0 {
		return nil
	}

	suggestions := make([]models.KeySuggestion, 0, snapshot.Size())
	for key, canonical := range snapshot.Mapping {
		suggestions = append(suggestions, models.KeySuggestion{
			Key:           key,
			CanonicalName: canonical,
			Distance:      levenshtein.ComputeDistance(tag, key),
			JaroWinkler:   smetrics.JaroWinkler(tag, key, 0.7, 4),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].JaroWinkler != suggestions[j].JaroWinkler {
			return suggestions[i].JaroWinkler > suggestions[j].JaroWinkler
		}
		if suggestions[i].Distance != suggestions[j].Distance {
			return suggestions[i].Distance < suggestions[j].Distance
		}
		return suggestions[i].Key < suggestions[j].Key
	})

	if len(suggestions) > topK {
		suggestions = suggestions[:topK]
	}
	return suggestions
}

// GetStats lấy thống kê hệ thống
func (as *AdminService) GetStats(ctx context.Context) (*SystemStats, error) {
	total, err := as.tagSource.Count(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm tag entries: %w", err)
	}
	active, err := as.tagSource.Count(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm active entries: %w", err)
	}
	novels, err := as.db.Collection("novels").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm novels: %w", err)
	}
	unmatched, err := as.db.Collection("unmatched_tags").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm unmatched_tags: %w", err)
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemStats{
		Uptime: time.Since(as.startTime).String(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"total_alloc_mb": memStats.TotalAlloc / 1024 / 1024,
			"num_gc":         memStats.NumGC,
		},
		DatabaseStats: DatabaseStats{
			TagEntries:    total,
			ActiveEntries: active,
			Novels:        novels,
			UnmatchedTags: unmatched,
		},
		DictionaryKeys: as.dictionary.Get(ctx).Size(),
	}, nil
}
