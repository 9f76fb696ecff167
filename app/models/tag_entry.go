package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TagEntry một tag chuẩn trong từ điển cùng toàn bộ bề mặt so khớp của nó
type TagEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CanonicalName  string             `bson:"canonical_name" json:"canonical_name"`   // Tên hiển thị chuẩn ("Happy Ending")
	PrimaryKeyword string             `bson:"primary_keyword" json:"primary_keyword"` // Key chính đã chuẩn hóa (lowercase, không dấu)
	Aliases        []string           `bson:"aliases,omitempty" json:"aliases,omitempty"` // Các key phụ cũng resolve về canonical_name
	Category       string             `bson:"category" json:"category"`               // Phân loại, chỉ dùng cho hiển thị
	Active         bool               `bson:"active" json:"active"`                   // Entry inactive bị loại khỏi snapshot
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// Category constants
const (
	CategoryGenre        = "genre"
	CategoryEnding       = "ending"
	CategorySetting      = "setting"
	CategoryRelationship = "relationship"
	CategoryContent      = "content"
	CategoryCharacter    = "character"
	CategoryOther        = "other"
)

// IsValidCategory kiểm tra category có hợp lệ không
func (te *TagEntry) IsValidCategory() bool {
	validCategories := []string{
		CategoryGenre,
		CategoryEnding,
		CategorySetting,
		CategoryRelationship,
		CategoryContent,
		CategoryCharacter,
		CategoryOther,
	}

	for _, valid := range validCategories {
		if te.Category == valid {
			return true
		}
	}
	return false
}

// AllKeywords trả về primary keyword + toàn bộ aliases
func (te *TagEntry) AllKeywords() []string {
	keywords := make([]string, 0, 1+len(te.Aliases))
	keywords = append(keywords, te.PrimaryKeyword)
	keywords = append(keywords, te.Aliases...)
	return keywords
}
