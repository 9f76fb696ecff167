package models

import "time"

// ScoredCandidate một truyện ứng viên đã chấm điểm tương đồng với truyện gốc
type ScoredCandidate struct {
	Novel        Novel    `json:"novel"`                    // Truyện ứng viên
	MatchingTags []string `json:"matching_tags"`            // Giao của hai tập tag, dùng highlight trên UI
	Score        float64  `json:"score"`                    // Điểm [0,1], đã làm tròn
}

// RecommendationResult kết quả gợi ý cho một truyện gốc
type RecommendationResult struct {
	SourceID   string            `json:"source_id"`   // ID truyện gốc
	Candidates []ScoredCandidate `json:"candidates"`  // Đã xếp hạng giảm dần
	CreatedAt  time.Time         `json:"created_at"`  // Thời điểm tính, dùng cho TTL result cache
}

// IsExpired kiểm tra kết quả cache có hết hạn không
func (rr *RecommendationResult) IsExpired(ttl time.Duration) bool {
	return time.Since(rr.CreatedAt) > ttl
}
