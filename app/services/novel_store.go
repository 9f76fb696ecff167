package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// NovelStore truy cập collection novels trong MongoDB
type NovelStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewNovelStore tạo mới NovelStore và đảm bảo indexes
func NewNovelStore(db *mongo.Database, logger *zap.Logger) *NovelStore {
	collection := db.Collection("novels")

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{bson.E{Key: "canonical_tags", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "read_count", Value: -1}},
		},
		{
			Keys:    bson.D{bson.E{Key: "source_url", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho novels", zap.Error(err))
	}

	return &NovelStore{
		collection: collection,
		logger:     logger,
	}
}

// GetByID lấy một truyện theo ObjectID hex
func (ns *NovelStore) GetByID(ctx context.Context, id string) (*models.Novel, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("novel id %q không hợp lệ: %w", id, err)
	}

	var novel models.Novel
	if err := ns.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&novel); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("không tìm thấy truyện %s", id)
		}
		return nil, fmt.Errorf("lỗi query novel %s: %w", id, err)
	}

	return &novel, nil
}

// Insert thêm truyện mới, trả về ID sinh ra
func (ns *NovelStore) Insert(ctx context.Context, novel *models.Novel) (string, error) {
	now := time.Now()
	novel.CreatedAt = now
	novel.UpdatedAt = now

	result, err := ns.collection.InsertOne(ctx, novel)
	if err != nil {
		return "", fmt.Errorf("lỗi insert novel: %w", err)
	}

	objectID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("inserted id không phải ObjectID")
	}
	novel.ID = objectID
	return objectID.Hex(), nil
}

// UpdateCanonicalTags ghi lại tập tag chuẩn sau khi (re)normalize
func (ns *NovelStore) UpdateCanonicalTags(ctx context.Context, id string, canonicalTags []string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("novel id %q không hợp lệ: %w", id, err)
	}

	update := bson.M{
		"$set": bson.M{
			"canonical_tags": canonicalTags,
			"updated_at":     time.Now(),
		},
	}

	if _, err := ns.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update); err != nil {
		return fmt.Errorf("lỗi update canonical tags cho %s: %w", id, err)
	}
	return nil
}

// FindCandidatesByTags lấy pool ứng viên chia sẻ ít nhất một tag chuẩn với
// truyện gốc (pre-filter ở store cho hiệu quả, recommender không tự query)
func (ns *NovelStore) FindCandidatesByTags(ctx context.Context, sourceID primitive.ObjectID, canonicalTags []string, maxPool int64) ([]models.Novel, error) {
	if len(canonicalTags) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"_id":            bson.M{"$ne": sourceID},
		"canonical_tags": bson.M{"$in": canonicalTags},
	}
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "read_count", Value: -1}, bson.E{Key: "_id", Value: 1}}).
		SetLimit(maxPool)

	cursor, err := ns.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("lỗi query candidate pool: %w", err)
	}
	defer cursor.Close(ctx)

	var novels []models.Novel
	for cursor.Next(ctx) {
		var novel models.Novel
		if err := cursor.Decode(&novel); err != nil {
			ns.logger.Warn("Lỗi decode novel trong pool, bỏ qua", zap.Error(err))
			continue
		}
		novels = append(novels, novel)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("lỗi đọc cursor candidate pool: %w", err)
	}

	return novels, nil
}

// IncrementReadCount tăng tín hiệu độ phổ biến
func (ns *NovelStore) IncrementReadCount(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("novel id %q không hợp lệ: %w", id, err)
	}

	update := bson.M{"$inc": bson.M{"read_count": 1}}
	if _, err := ns.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update); err != nil {
		return fmt.Errorf("lỗi tăng read_count cho %s: %w", id, err)
	}
	return nil
}
