package requests

// IngestNovelRequest request ingest một truyện mới scrape
type IngestNovelRequest struct {
	Title       string   `json:"title" binding:"required"`       // Tên truyện
	Author      string   `json:"author,omitempty"`               // Tác giả
	Source      string   `json:"source,omitempty"`               // Site nguồn
	SourceURL   string   `json:"source_url,omitempty"`           // URL trang truyện
	Description string   `json:"description,omitempty"`          // Mô tả, sẽ được mine tag
	RawTags     []string `json:"raw_tags,omitempty"`             // Tag thô từ nguồn
	ReadCount   int64    `json:"read_count,omitempty"`           // Lượt đọc đã biết
}

// NormalizePreviewRequest request normalize thử một batch tag (không lưu)
type NormalizePreviewRequest struct {
	RawTags     []string `json:"raw_tags" binding:"required,min=1"` // Tag thô cần normalize
	Description string   `json:"description,omitempty"`             // Mô tả tùy chọn
}
