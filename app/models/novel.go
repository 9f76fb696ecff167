package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Novel truyện đã ingest cùng tập tag chuẩn của nó
type Novel struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title         string             `bson:"title" json:"title"`                     // Tên truyện
	Author        string             `bson:"author,omitempty" json:"author,omitempty"`
	Source        string             `bson:"source,omitempty" json:"source,omitempty"` // Site nguồn đã scrape
	SourceURL     string             `bson:"source_url,omitempty" json:"source_url,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	RawTags       []string           `bson:"raw_tags,omitempty" json:"raw_tags,omitempty"`       // Tag thô nguyên bản từ nguồn
	CanonicalTags []string           `bson:"canonical_tags" json:"canonical_tags"`               // Tập tag chuẩn sau normalize
	ReadCount     int64              `bson:"read_count" json:"read_count"`                       // Tín hiệu độ phổ biến
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasTag kiểm tra truyện có tag chuẩn cho trước không
func (n *Novel) HasTag(canonical string) bool {
	for _, t := range n.CanonicalTags {
		if t == canonical {
			return true
		}
	}
	return false
}

// TagSet trả về canonical tags dưới dạng set để tính giao/hợp
func (n *Novel) TagSet() map[string]bool {
	set := make(map[string]bool, len(n.CanonicalTags))
	for _, t := range n.CanonicalTags {
		set[t] = true
	}
	return set
}
