package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/vexchzi/timtruyenbl-sub000/app/controllers"
	"github.com/vexchzi/timtruyenbl-sub000/helpers/utils"
)

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, novelController *controllers.NovelController, adminController *controllers.AdminController) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		// Novel routes
		novels := v1.Group("/novels")
		{
			novels.POST("", novelController.IngestNovel)
			novels.GET("/:novelID", novelController.GetNovel)
			novels.POST("/:novelID/reprocess", novelController.ReprocessNovel)
			novels.GET("/:novelID/recommendations", novelController.GetRecommendations)
			novels.POST("/:novelID/read", novelController.MarkRead)
			novels.GET("/search", novelController.SearchNovels)
		}

		// Tag routes
		tags := v1.Group("/tags")
		{
			tags.POST("/normalize", novelController.NormalizePreview)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.POST("/tags", adminController.UpsertTagEntry)
			admin.POST("/tags/seed", adminController.SeedDictionary)
			admin.DELETE("/tags/:keyword", adminController.DeactivateTagEntry)
			admin.POST("/cache/invalidate", adminController.InvalidateCaches)
			admin.GET("/unmatched", adminController.GetUnmatchedTags)
			admin.GET("/stats", adminController.GetStats)
		}

		// Health check route
		v1.GET("/health", novelController.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, novelController *controllers.NovelController) {
	// Root health check
	router.GET("/health", novelController.HealthCheck)

	// Readiness check
	router.GET("/ready", novelController.HealthCheck)

	// Liveness check
	router.GET("/live", novelController.HealthCheck)
}

// SetupAllRoutes thiết lập tất cả routes
func SetupAllRoutes(router *gin.Engine, novelController *controllers.NovelController, adminController *controllers.AdminController) {
	// Thiết lập middleware
	setupMiddleware(router)

	// Thiết lập các loại routes
	SetupHealthRoutes(router, novelController)
	SetupAPIRoutes(router, novelController, adminController)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware thiết lập middleware cho router
func setupMiddleware(router *gin.Engine) {
	// Recovery middleware
	router.Use(gin.Recovery())

	// Logger middleware
	router.Use(gin.Logger())

	// Request ID middleware, gắn X-Request-ID để trace qua log
	router.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	})
}
