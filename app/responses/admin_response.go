package responses

import "github.com/vexchzi/timtruyenbl-sub000/app/models"

// SeedDictionaryResponse response seed từ điển
type SeedDictionaryResponse struct {
	EntriesProcessed int    `json:"entries_processed"` // Số entry đã ghi
	EntriesSkipped   int    `json:"entries_skipped"`   // Số entry bị bỏ qua (không hợp lệ)
	Message          string `json:"message"`           // Thông báo
}

// UnmatchedTagsResponse response báo cáo unmatched tag cho curation
type UnmatchedTagsResponse struct {
	Tags        []models.UnmatchedTag               `json:"tags"`        // Theo seen_count giảm dần
	Suggestions map[string][]models.KeySuggestion   `json:"suggestions"` // Key gần nhất cho từng tag
}

// InvalidateResponse response invalidate cache
type InvalidateResponse struct {
	Message string `json:"message"` // Thông báo
}
