package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gstboard/backend/internal/application/report"
	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/interfaces/http/dto"
	"github.com/gstboard/backend/internal/interfaces/http/middleware"
)

// MetricsHandler serves aggregated metrics and upload history
type MetricsHandler struct {
	BaseHandler
	service *report.MetricsService
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(service *report.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// RegisterRoutes registers metrics and history routes on the API group
func (h *MetricsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/metrics/comparison", h.Comparison)
	rg.GET("/metrics/:platform/latest", h.LatestByPlatform)
	rg.GET("/uploads", h.ListUploads)
	rg.GET("/uploads/:id", h.UploadByID)
}

// LatestByPlatform returns the most recent metrics bundle for one platform
func (h *MetricsHandler) LatestByPlatform(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing X-Seller-ID header")
		return
	}

	metrics, err := h.service.LatestByPlatform(c.Request.Context(), sellerID, c.Param("platform"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, metrics)
}

// Comparison returns the latest bundle of every platform side by side
func (h *MetricsHandler) Comparison(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing X-Seller-ID header")
		return
	}

	result, err := h.service.Comparison(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListUploads returns a page of the seller's upload history.
// Query parameters: page, page_size, platform, status.
func (h *MetricsHandler) ListUploads(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing X-Seller-ID header")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	var filter analytics.UploadHistoryFilter
	if tag := c.Query("platform"); tag != "" {
		if !analytics.IsValidPlatform(tag) {
			h.BadRequest(c, "unknown platform: "+tag)
			return
		}
		platform := analytics.Platform(tag)
		filter.Platform = &platform
	}
	if tag := c.Query("status"); tag != "" {
		status := analytics.UploadStatus(tag)
		filter.Status = &status
	}

	result, err := h.service.ListUploads(c.Request.Context(), sellerID, filter, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]dto.UploadHistoryResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.FromUploadHistory(item))
	}

	h.SuccessWithMeta(c, items, result.TotalCount, result.Page, result.PageSize)
}

// UploadByID returns one upload record with the metrics computed from it
func (h *MetricsHandler) UploadByID(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing X-Seller-ID header")
		return
	}

	uploadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid upload id")
		return
	}

	history, snapshot, err := h.service.UploadByID(c.Request.Context(), sellerID, uploadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	detail := dto.UploadDetailResponse{Upload: dto.FromUploadHistory(history)}
	if snapshot != nil {
		detail.Metrics = &snapshot.Bundle
	}

	h.Success(c, detail)
}
