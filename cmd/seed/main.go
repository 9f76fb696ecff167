package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/app/services"
	"github.com/vexchzi/timtruyenbl-sub000/helpers/utils"
	"github.com/vexchzi/timtruyenbl-sub000/internal/normalizer"
	"github.com/vexchzi/timtruyenbl-sub000/internal/search"
)

// seedEntry một dòng trong file seed từ điển
type seedEntry struct {
	CanonicalName  string   `yaml:"canonical_name"`
	PrimaryKeyword string   `yaml:"primary_keyword"`
	Aliases        []string `yaml:"aliases"`
	Category       string   `yaml:"category"`
}

// seedFile format file seed
type seedFile struct {
	Entries []seedEntry `yaml:"entries"`
}

func main() {
	dictPath := flag.String("dict", "cmd/seed/seed_tags.yaml", "File YAML chứa từ điển tag")
	mongoURL := flag.String("mongo", envOr("MONGO_URL", "mongodb://localhost:27017"), "MongoDB URL")
	dbName := flag.String("db", envOr("MONGO_DB", "novel_tags"), "Tên database")
	meiliURL := flag.String("meili", envOr("MEILI_URL", "http://localhost:7700"), "Meilisearch URL")
	meiliKey := flag.String("meili-key", os.Getenv("MEILI_MASTER_KEY"), "Meilisearch master key")
	indexNovels := flag.Bool("index-novels", false, "Re-index toàn bộ novels vào Meilisearch")
	flag.Parse()

	runID := utils.GenerateShortID()
	fmt.Printf("Seed run %s\n", runID)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("Không thể khởi tạo logger:", err)
	}
	defer logger.Sync()

	// MongoDB connection
	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(*mongoURL))
	if err != nil {
		log.Fatal("Không thể kết nối MongoDB:", err)
	}
	defer client.Disconnect(context.TODO())

	db := client.Database(*dbName)

	// Seed từ điển tag
	if err := seedDictionary(db, *dictPath, logger); err != nil {
		log.Fatal("Lỗi seed từ điển:", err)
	}

	// Re-index novels nếu được yêu cầu
	if *indexNovels {
		if err := reindexNovels(db, *meiliURL, *meiliKey, logger); err != nil {
			log.Fatal("Lỗi re-index novels:", err)
		}
	}

	fmt.Printf("Seed run %s hoàn tất\n", runID)
}

// seedDictionary đọc file YAML và upsert vào tag_entries.
// Key và alias được chuẩn hóa trước khi ghi, entry lỗi thì bỏ qua
func seedDictionary(db *mongo.Database, path string, logger *zap.Logger) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lỗi đọc file seed %s: %w", path, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("lỗi parse file seed: %w", err)
	}

	fmt.Printf("Đang seed %d entries vào tag_entries...\n", len(file.Entries))

	tagSource := services.NewMongoTagSource(db, logger)
	textNormalizer := normalizer.NewTagTextNormalizer()

	processed, skipped := 0, 0
	for _, se := range file.Entries {
		if se.CanonicalName == "" {
			skipped++
			continue
		}

		key := textNormalizer.Normalize(se.PrimaryKeyword)
		if key == "" {
			key = textNormalizer.Normalize(se.CanonicalName)
		}

		aliases := make([]string, 0, len(se.Aliases))
		for _, alias := range se.Aliases {
			if normalized := textNormalizer.Normalize(alias); normalized != "" && normalized != key {
				aliases = append(aliases, normalized)
			}
		}

		category := se.Category
		if category == "" {
			category = models.CategoryOther
		}

		entry := &models.TagEntry{
			CanonicalName:  se.CanonicalName,
			PrimaryKeyword: key,
			Aliases:        aliases,
			Category:       category,
			Active:         true,
		}
		if !entry.IsValidCategory() {
			fmt.Printf("Bỏ qua entry %q: category %q không hợp lệ\n", se.CanonicalName, se.Category)
			skipped++
			continue
		}

		if err := tagSource.Upsert(context.TODO(), entry); err != nil {
			fmt.Printf("Lỗi upsert entry %q: %v\n", se.CanonicalName, err)
			skipped++
			continue
		}
		processed++
	}

	fmt.Printf("Seed từ điển xong: %d processed, %d skipped\n", processed, skipped)
	return nil
}

// reindexNovels đẩy toàn bộ novels từ MongoDB vào Meilisearch theo batch
func reindexNovels(db *mongo.Database, meiliURL, meiliKey string, logger *zap.Logger) error {
	searcher, err := search.NewNovelSearcher(search.SearchConfig{
		Host:      meiliURL,
		APIKey:    meiliKey,
		IndexName: "novels",
		Timeout:   30 * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("lỗi kết nối Meilisearch: %w", err)
	}

	if err := searcher.BuildIndexes(); err != nil {
		return fmt.Errorf("lỗi build index settings: %w", err)
	}

	fmt.Println("Đang lấy novels từ MongoDB...")
	cursor, err := db.Collection("novels").Find(context.TODO(), bson.M{})
	if err != nil {
		return fmt.Errorf("lỗi query novels: %w", err)
	}
	defer cursor.Close(context.TODO())

	textNormalizer := normalizer.NewTagTextNormalizer()
	batch := make([]map[string]interface{}, 0, 1000)
	total := 0

	for cursor.Next(context.TODO()) {
		var novel models.Novel
		if err := cursor.Decode(&novel); err != nil {
			fmt.Printf("Lỗi decode novel: %v\n", err)
			continue
		}

		batch = append(batch, search.NovelDocument(&novel, textNormalizer.Normalize(novel.Title)))
		if len(batch) >= 1000 {
			if err := searcher.IndexNovels(batch); err != nil {
				return fmt.Errorf("lỗi index batch: %w", err)
			}
			total += len(batch)
			fmt.Printf("Đã index %d novels...\n", total)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := searcher.IndexNovels(batch); err != nil {
			return fmt.Errorf("lỗi index batch cuối: %w", err)
		}
		total += len(batch)
	}

	fmt.Printf("Re-index xong %d novels\n", total)
	return nil
}

// envOr lấy env var với default
func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
