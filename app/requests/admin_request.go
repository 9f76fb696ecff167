package requests

// UpsertTagEntryRequest request tạo/sửa một entry từ điển tag
type UpsertTagEntryRequest struct {
	CanonicalName  string   `json:"canonical_name" binding:"required"` // Tên tag chuẩn
	PrimaryKeyword string   `json:"primary_keyword,omitempty"`         // Key chính, rỗng thì lấy từ tên chuẩn
	Aliases        []string `json:"aliases,omitempty"`                 // Các key phụ
	Category       string   `json:"category" binding:"required"`       // genre/ending/setting/relationship/content/character/other
	Active         *bool    `json:"active,omitempty"`                  // Mặc định true
}

// SeedDictionaryRequest request seed nhiều entry cùng lúc
type SeedDictionaryRequest struct {
	Entries []UpsertTagEntryRequest `json:"entries" binding:"required,min=1"` // Danh sách entry
}
