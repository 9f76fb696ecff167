package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoTagSource TagEntrySource đọc từ collection tag_entries trong MongoDB
type MongoTagSource struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoTagSource tạo mới MongoTagSource và đảm bảo indexes
func NewMongoTagSource(db *mongo.Database, logger *zap.Logger) *MongoTagSource {
	collection := db.Collection("tag_entries")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "primary_keyword", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "active", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "category", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho tag_entries", zap.Error(err))
	}

	return &MongoTagSource{
		collection: collection,
		logger:     logger,
	}
}

// FetchActive lấy toàn bộ entry active, sort theo updated_at tăng dần để
// thứ tự áp dụng last-write-wins deterministic
func (mts *MongoTagSource) FetchActive(ctx context.Context) ([]models.TagEntry, error) {
	opts := options.Find().SetSort(bson.D{bson.E{Key: "updated_at", Value: 1}})

	cursor, err := mts.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("lỗi query tag_entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.TagEntry
	for cursor.Next(ctx) {
		var entry models.TagEntry
		if err := cursor.Decode(&entry); err != nil {
			mts.logger.Warn("Lỗi decode tag entry, bỏ qua", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("lỗi đọc cursor tag_entries: %w", err)
	}

	return entries, nil
}

// Upsert ghi một entry theo primary_keyword
func (mts *MongoTagSource) Upsert(ctx context.Context, entry *models.TagEntry) error {
	entry.UpdatedAt = time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"primary_keyword": entry.PrimaryKeyword}

	if _, err := mts.collection.ReplaceOne(ctx, filter, entry, opts); err != nil {
		return fmt.Errorf("lỗi upsert tag entry %q: %w", entry.PrimaryKeyword, err)
	}
	return nil
}

// Deactivate tắt một entry theo primary_keyword
func (mts *MongoTagSource) Deactivate(ctx context.Context, primaryKeyword string) error {
	update := bson.M{
		"$set": bson.M{"active": false, "updated_at": time.Now()},
	}

	result, err := mts.collection.UpdateOne(ctx, bson.M{"primary_keyword": primaryKeyword}, update)
	if err != nil {
		return fmt.Errorf("lỗi deactivate tag entry %q: %w", primaryKeyword, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("không tìm thấy tag entry %q", primaryKeyword)
	}
	return nil
}

// Count đếm số entry theo trạng thái active
func (mts *MongoTagSource) Count(ctx context.Context, activeOnly bool) (int64, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	return mts.collection.CountDocuments(ctx, filter)
}
