package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/app/requests"
	"github.com/vexchzi/timtruyenbl-sub000/app/responses"
	"github.com/vexchzi/timtruyenbl-sub000/app/services"
	"github.com/vexchzi/timtruyenbl-sub000/internal/search"
	"go.uber.org/zap"
)

// NovelController controller xử lý các request liên quan đến truyện
type NovelController struct {
	novelService *services.NovelService
	tagService   *services.TagService
	logger       *zap.Logger
}

// NewNovelController tạo mới NovelController
func NewNovelController(novelService *services.NovelService, tagService *services.TagService, logger *zap.Logger) *NovelController {
	return &NovelController{
		novelService: novelService,
		tagService:   tagService,
		logger:       logger,
	}
}

// IngestNovel ingest một truyện mới scrape
func (nc *NovelController) IngestNovel(c *gin.Context) {
	var req requests.IngestNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "Request không hợp lệ: " + err.Error(),
		})
		return
	}

	novel := &models.Novel{
		Title:       req.Title,
		Author:      req.Author,
		Source:      req.Source,
		SourceURL:   req.SourceURL,
		Description: req.Description,
		RawTags:     req.RawTags,
		ReadCount:   req.ReadCount,
	}

	id, err := nc.novelService.Ingest(c.Request.Context(), novel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "INGEST_ERROR",
			Message: "Lỗi ingest truyện: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, responses.IngestNovelResponse{
		NovelID:       id,
		CanonicalTags: novel.CanonicalTags,
	})
}

// GetNovel lấy thông tin một truyện
func (nc *NovelController) GetNovel(c *gin.Context) {
	novel, err := nc.novelService.GetNovel(c.Request.Context(), c.Param("novelID"))
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, novel)
}

// ReprocessNovel chạy lại normalization cho một truyện sau khi sửa từ điển
func (nc *NovelController) ReprocessNovel(c *gin.Context) {
	novel, err := nc.novelService.Reprocess(c.Request.Context(), c.Param("novelID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "REPROCESS_ERROR",
			Message: "Lỗi reprocess truyện: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, novel)
}

// NormalizePreview normalize thử một batch tag, không lưu gì
func (nc *NovelController) NormalizePreview(c *gin.Context) {
	var req requests.NormalizePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "Request không hợp lệ: " + err.Error(),
		})
		return
	}

	startTime := time.Now()
	canonical := nc.tagService.NormalizeTags(c.Request.Context(), req.RawTags, req.Description)

	c.JSON(http.StatusOK, responses.NormalizePreviewResponse{
		CanonicalTags:    canonical,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// GetRecommendations lấy danh sách truyện tương tự cho một truyện
func (nc *NovelController) GetRecommendations(c *gin.Context) {
	novelID := c.Param("novelID")
	limit := parseIntQuery(c, "limit", 10)
	minMatching := parseIntQuery(c, "min_matching_tags", 1)

	if limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_LIMIT",
			Message: "limit phải trong khoảng [1, 100]",
		})
		return
	}

	startTime := time.Now()
	candidates, err := nc.novelService.Recommend(c.Request.Context(), novelID, limit, minMatching)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "RECOMMEND_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.RecommendationResponse{
		SourceID:         novelID,
		Candidates:       candidates,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// SearchNovels tìm truyện theo tên, có thể giới hạn theo một tag chuẩn
// qua tham số tag
func (nc *NovelController) SearchNovels(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "Thiếu tham số q",
		})
		return
	}

	limit := int64(parseIntQuery(c, "limit", 20))

	var hits []search.NovelHit
	var err error
	if tag := c.Query("tag"); tag != "" {
		hits, err = nc.novelService.SearchByTag(query, tag, limit)
	} else {
		hits, err = nc.novelService.SearchByTitle(query, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "SEARCH_ERROR",
			Message: "Lỗi tìm kiếm: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SearchResponse{
		Query: query,
		Hits:  hits,
	})
}

// MarkRead ghi nhận một lượt đọc cho truyện
func (nc *NovelController) MarkRead(c *gin.Context) {
	id := c.Param("novelID")
	if err := nc.novelService.MarkRead(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "MARK_READ_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"novel_id": id, "status": "counted"})
}

// HealthCheck health check endpoint
func (nc *NovelController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(nc.novelService.GetStartTime()).Seconds()),
	})
}

// parseIntQuery đọc query param dạng số, sai thì trả về default
func parseIntQuery(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
