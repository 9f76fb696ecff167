package responses

import (
	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/internal/search"
)

// ErrorResponse response lỗi chung
type ErrorResponse struct {
	Error   string `json:"error"`   // Mã lỗi
	Message string `json:"message"` // Thông báo chi tiết
}

// IngestNovelResponse response ingest truyện
type IngestNovelResponse struct {
	NovelID       string   `json:"novel_id"`       // ID truyện vừa tạo
	CanonicalTags []string `json:"canonical_tags"` // Tập tag chuẩn đã gán
}

// NormalizePreviewResponse response normalize thử
type NormalizePreviewResponse struct {
	CanonicalTags    []string `json:"canonical_tags"`     // Tập tag chuẩn
	ProcessingTimeMs int64    `json:"processing_time_ms"` // Thời gian xử lý (ms)
}

// RecommendationResponse response gợi ý truyện tương tự
type RecommendationResponse struct {
	SourceID         string                   `json:"source_id"`          // ID truyện gốc
	Candidates       []models.ScoredCandidate `json:"candidates"`         // Đã xếp hạng
	ProcessingTimeMs int64                    `json:"processing_time_ms"` // Thời gian xử lý (ms)
}

// SearchResponse response tìm kiếm truyện
type SearchResponse struct {
	Query string            `json:"query"` // Query gốc
	Hits  []search.NovelHit `json:"hits"`  // Kết quả
}

// HealthResponse response health check
type HealthResponse struct {
	Status        string `json:"status"`         // ok
	UptimeSeconds int64  `json:"uptime_seconds"` // Thời gian chạy
}
