package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/app/requests"
	"github.com/vexchzi/timtruyenbl-sub000/app/responses"
	"github.com/vexchzi/timtruyenbl-sub000/app/services"
	"go.uber.org/zap"
)

// AdminController controller quản lý từ điển tag và cache
type AdminController struct {
	adminService *services.AdminService
	resultCache  services.IResultCache
	logger       *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(adminService *services.AdminService, resultCache services.IResultCache, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		resultCache:  resultCache,
		logger:       logger,
	}
}

// UpsertTagEntry tạo/sửa một entry từ điển
func (ac *AdminController) UpsertTagEntry(c *gin.Context) {
	var req requests.UpsertTagEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "Request không hợp lệ: " + err.Error(),
		})
		return
	}

	entry := entryFromRequest(req)
	if err := ac.adminService.UpsertTagEntry(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "UPSERT_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SeedDictionary seed nhiều entry cùng lúc
func (ac *AdminController) SeedDictionary(c *gin.Context) {
	var req requests.SeedDictionaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "Request không hợp lệ: " + err.Error(),
		})
		return
	}

	processed, skipped := 0, 0
	for _, entryReq := range req.Entries {
		if err := ac.adminService.UpsertTagEntry(c.Request.Context(), entryFromRequest(entryReq)); err != nil {
			ac.logger.Warn("Bỏ qua entry không hợp lệ",
				zap.String("canonical_name", entryReq.CanonicalName),
				zap.Error(err))
			skipped++
			continue
		}
		processed++
	}

	c.JSON(http.StatusOK, responses.SeedDictionaryResponse{
		EntriesProcessed: processed,
		EntriesSkipped:   skipped,
		Message:          "Seed từ điển hoàn tất",
	})
}

// DeactivateTagEntry tắt một entry từ điển
func (ac *AdminController) DeactivateTagEntry(c *gin.Context) {
	if err := ac.adminService.DeactivateTagEntry(c.Request.Context(), c.Param("keyword")); err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "DEACTIVATE_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.InvalidateResponse{
		Message: "Đã deactivate entry và invalidate dictionary cache",
	})
}

// InvalidateCaches buộc refresh từ điển và xóa result cache
func (ac *AdminController) InvalidateCaches(c *gin.Context) {
	ac.adminService.InvalidateDictionary()

	if err := ac.resultCache.Clear(c.Request.Context()); err != nil {
		ac.logger.Warn("Lỗi clear result cache", zap.Error(err))
	}

	c.JSON(http.StatusOK, responses.InvalidateResponse{
		Message: "Đã invalidate dictionary cache và result cache",
	})
}

// GetUnmatchedTags báo cáo các tag không resolve được kèm gợi ý key
func (ac *AdminController) GetUnmatchedTags(c *gin.Context) {
	limit := int64(parseIntQuery(c, "limit", 50))
	suggestionsPer := parseIntQuery(c, "suggestions", 3)

	tags, suggestions, err := ac.adminService.ListUnmatched(c.Request.Context(), limit, suggestionsPer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "REPORT_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.UnmatchedTagsResponse{
		Tags:        tags,
		Suggestions: suggestions,
	})
}

// GetStats thống kê hệ thống
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "STATS_ERROR",
			Message: err.Error(),
		})
		return
	}

	cacheStats, err := ac.resultCache.GetStats(c.Request.Context())
	if err != nil {
		ac.logger.Warn("Lỗi lấy result cache stats", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"system":       stats,
		"result_cache": cacheStats,
	})
}

// entryFromRequest convert request sang model
func entryFromRequest(req requests.UpsertTagEntryRequest) *models.TagEntry {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &models.TagEntry{
		CanonicalName:  req.CanonicalName,
		PrimaryKeyword: req.PrimaryKeyword,
		Aliases:        req.Aliases,
		Category:       req.Category,
		Active:         active,
	}
}
