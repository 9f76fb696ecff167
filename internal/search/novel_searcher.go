package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"go.uber.org/zap"
)

// NovelSearcher tìm kiếm truyện theo tên/tác giả sử dụng Meilisearch
type NovelSearcher struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// SearchConfig cấu hình cho Meilisearch
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// NovelHit một kết quả tìm kiếm truyện
type NovelHit struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	CanonicalTags []string `json:"canonical_tags,omitempty"`
}

// NewNovelSearcher tạo mới NovelSearcher với Meilisearch client
func NewNovelSearcher(config SearchConfig, logger *zap.Logger) (*NovelSearcher, error) {
	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))

	// Test connection
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Meilisearch: %w", err)
	}

	return &NovelSearcher{
		client:    client,
		logger:    logger,
		indexName: config.IndexName,
		timeout:   config.Timeout,
	}, nil
}

// SearchByTitle tìm truyện theo tên (typo tolerance do Meilisearch lo)
func (ns *NovelSearcher) SearchByTitle(query string, limit int64) ([]NovelHit, error) {
	if query == "" {
		return nil, errors.New("query không được để trống")
	}

	index := ns.client.Index(ns.indexName)
	result, err := index.Search(query, &meilisearch.SearchRequest{
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm kiếm Meilisearch: %w", err)
	}

	return ns.parseHits(result), nil
}

// SearchByTag tìm truyện có filter theo tag chuẩn
func (ns *NovelSearcher) SearchByTag(query, canonicalTag string, limit int64) ([]NovelHit, error) {
	index := ns.client.Index(ns.indexName)
	result, err := index.Search(query, &meilisearch.SearchRequest{
		Limit:  limit,
		Filter: fmt.Sprintf("canonical_tags = %q", canonicalTag),
	})
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm kiếm với filter tag: %w", err)
	}

	return ns.parseHits(result), nil
}

// parseHits parse kết quả từ Meilisearch thành NovelHit
func (ns *NovelSearcher) parseHits(result *meilisearch.SearchResponse) []NovelHit {
	var hits []NovelHit

	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		nh := NovelHit{}
		if id, ok := hitMap["id"].(string); ok {
			nh.ID = id
		}
		if title, ok := hitMap["title"].(string); ok {
			nh.Title = title
		}
		if author, ok := hitMap["author"].(string); ok {
			nh.Author = author
		}
		if tagsRaw, ok := hitMap["canonical_tags"].([]interface{}); ok {
			for _, t := range tagsRaw {
				if tagStr, ok := t.(string); ok {
					nh.CanonicalTags = append(nh.CanonicalTags, tagStr)
				}
			}
		}

		hits = append(hits, nh)
	}

	return hits
}

// BuildIndexes cấu hình index truyện
func (ns *NovelSearcher) BuildIndexes() error {
	index := ns.client.Index(ns.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"title", "title_normalized", "author"},
		FilterableAttributes: []string{"canonical_tags", "source"},
		SortableAttributes:   []string{"read_count"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  3,
				TwoTypos: 7,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("lỗi cấu hình index: %w", err)
	}

	ns.logger.Info("Đã cấu hình index Meilisearch thành công", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// IndexNovel đưa một truyện vào index (gọi lúc ingest/reprocess)
func (ns *NovelSearcher) IndexNovel(novel *models.Novel, titleNormalized string) error {
	return ns.IndexNovels([]map[string]interface{}{NovelDocument(novel, titleNormalized)})
}

// IndexNovels nạp nhiều documents vào index theo batch
func (ns *NovelSearcher) IndexNovels(documents []map[string]interface{}) error {
	if len(documents) == 0 {
		return nil
	}

	index := ns.client.Index(ns.indexName)

	batchSize := 1000
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}

		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return fmt.Errorf("lỗi thêm documents batch %d-%d: %w", i, end, err)
		}

		ns.logger.Debug("Đã thêm batch documents",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	ns.logger.Info("Đã index truyện", zap.Int("total_documents", len(documents)))
	return nil
}

// NovelDocument convert truyện sang document Meilisearch
func NovelDocument(novel *models.Novel, titleNormalized string) map[string]interface{} {
	return map[string]interface{}{
		"id":               novel.ID.Hex(),
		"title":            novel.Title,
		"title_normalized": titleNormalized,
		"author":           novel.Author,
		"source":           novel.Source,
		"canonical_tags":   novel.CanonicalTags,
		"read_count":       novel.ReadCount,
	}
}
