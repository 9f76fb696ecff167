package models

import "time"

// UnmatchedTag tag thô không resolve được về entry nào trong từ điển,
// ghi lại để curation offline (bổ sung alias, tạo entry mới)
type UnmatchedTag struct {
	NormalizedText string    `bson:"normalized_text" json:"normalized_text"` // Dạng đã chuẩn hóa, dùng làm key
	OriginalText   string    `bson:"original_text" json:"original_text"`     // Dạng gốc lần gặp đầu
	SeenCount      int64     `bson:"seen_count" json:"seen_count"`           // Số lần gặp
	FirstSeen      time.Time `bson:"first_seen" json:"first_seen"`
	LastSeen       time.Time `bson:"last_seen" json:"last_seen"`
}

// KeySuggestion gợi ý key từ điển gần nhất cho một unmatched tag
type KeySuggestion struct {
	Key           string  `json:"key"`            // Key trong từ điển
	CanonicalName string  `json:"canonical_name"` // Tag chuẩn mà key trỏ tới
	Distance      int     `json:"distance"`       // Khoảng cách Levenshtein
	JaroWinkler   float64 `json:"jaro_winkler"`   // Độ tương đồng Jaro-Winkler
}
