package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/vexchzi/timtruyenbl-sub000/app/config"
	"github.com/vexchzi/timtruyenbl-sub000/app/controllers"
	"github.com/vexchzi/timtruyenbl-sub000/app/services"
	"github.com/vexchzi/timtruyenbl-sub000/internal/normalizer"
	"github.com/vexchzi/timtruyenbl-sub000/internal/search"
	"github.com/vexchzi/timtruyenbl-sub000/routes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	loadConfig()

	// 2. Khởi tạo logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Novel Tag Service")

	// 3. Load engine config (scoring, cache TTL, matching rules)
	if err := config.Load(getEnv("ENGINE_CONFIG", "")); err != nil {
		logger.Fatal("Invalid engine config", zap.Error(err))
	}

	// 4. Kết nối MongoDB
	mongoDB := initMongoDB(logger)
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			logger.Error("Error disconnecting MongoDB", zap.Error(err))
		}
	}()

	// 5. Khởi tạo Meilisearch
	searchConfig := search.SearchConfig{
		Host:      viper.GetString("meilisearch.url"),
		APIKey:    viper.GetString("meilisearch.master_key"),
		IndexName: "novels",
		Timeout:   30 * time.Second,
	}

	novelSearcher, err := search.NewNovelSearcher(searchConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Meilisearch", zap.Error(err))
	}

	// 6. Khởi tạo dictionary cache trên tag_entries
	tagSource := services.NewMongoTagSource(mongoDB, logger)
	dictionaryCache := services.NewDictionaryCache(
		tagSource,
		config.C.DictionaryTTL(),
		config.C.Matching.MinContainKeyLen,
		logger,
	)

	// 7. Khởi tạo admin service (kiêm recorder cho unmatched tags)
	adminService := services.NewAdminService(mongoDB, tagSource, dictionaryCache, logger)

	// 8. Khởi tạo tag pipeline
	miner, err := normalizer.NewDescriptionTagMiner()
	if err != nil {
		logger.Fatal("Failed to load miner rules", zap.Error(err))
	}
	tagService := services.NewTagService(dictionaryCache, miner, config.C.Matching, adminService, logger)

	// 9. Khởi tạo result cache (Redis nếu có, mặc định in-memory LRU)
	resultCache := initResultCache(logger)
	defer resultCache.Close()

	// 10. Khởi tạo recommend + novel services
	recommendService := services.NewRecommendService(resultCache, config.C.Scoring, logger)
	novelStore := services.NewNovelStore(mongoDB, logger)
	novelService := services.NewNovelService(novelStore, tagService, recommendService, novelSearcher, logger)

	// 11. Khởi tạo controllers
	novelController := controllers.NewNovelController(novelService, tagService, logger)
	adminController := controllers.NewAdminController(adminService, resultCache, logger)

	// 12. Khởi tạo Gin router và routes
	router := gin.New()
	routes.SetupAllRoutes(router, novelController, adminController)

	// 13. Build Meilisearch indexes nếu cần
	if err := novelSearcher.BuildIndexes(); err != nil {
		logger.Warn("Failed to build Meilisearch indexes", zap.Error(err))
	}

	// 14. Warm up dictionary snapshot trước khi serve traffic
	if snap := dictionaryCache.Get(context.Background()); snap.Size() == 0 {
		logger.Warn("Dictionary snapshot rỗng sau warm up")
	}

	// 15. Khởi động server
	port := getEnv("APP_PORT", "8080")
	logger.Info("Novel Tag Service starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// loadConfig load configuration từ file và env vars
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("meilisearch.url", "http://meili:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017/novel_tags")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger khởi tạo structured logger
func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", "development")

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// initMongoDB khởi tạo kết nối MongoDB
func initMongoDB(logger *zap.Logger) *mongo.Database {
	mongoURL := getEnv("MONGO_URL", viper.GetString("mongo.url"))

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	dbName := getEnv("MONGO_DB", "novel_tags")
	db := client.Database(dbName)
	logger.Info("Connected to MongoDB", zap.String("database", dbName))

	return db
}

// initResultCache chọn backend cho result cache.
// REDIS_URL được set thì dùng Redis, không thì dùng LRU in-process
func initResultCache(logger *zap.Logger) services.IResultCache {
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err := services.NewRedisResultCache(redisURL, config.C.ResultTTL(), logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis result cache", zap.Error(err))
		}
		logger.Info("Result cache backend: Redis")
		return cache
	}

	size := getEnvInt("RESULT_CACHE_SIZE", config.C.Cache.ResultCacheSize)
	cache, err := services.NewMemoryResultCache(size, config.C.ResultTTL(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize memory result cache", zap.Error(err))
	}
	cache.StartCleanupWorker(config.C.SweepInterval())
	logger.Info("Result cache backend: in-memory LRU", zap.Int("size", size))
	return cache
}

// getEnv lấy environment variable với default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt lấy environment variable as int với default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
