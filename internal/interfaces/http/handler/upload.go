package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gstboard/backend/internal/application/ingest"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
	"github.com/gstboard/backend/internal/infrastructure/marketplace"
	"github.com/gstboard/backend/internal/interfaces/http/dto"
)

// UploadHandler handles marketplace export uploads
type UploadHandler struct {
	BaseHandler
	service     *ingest.UploadService
	maxFileSize int64
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service *ingest.UploadService, maxFileSize int64) *UploadHandler {
	if maxFileSize <= 0 {
		maxFileSize = 25 << 20
	}
	return &UploadHandler{
		service:     service,
		maxFileSize: maxFileSize,
	}
}

// RegisterRoutes registers upload routes on the API group
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.Upload)
}

// Upload accepts a multipart CSV export and processes it synchronously.
// Form fields: platform (required), file (required), returns_file (optional,
// honored only for platforms that publish a separate returns report).
func (h *UploadHandler) Upload(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing X-Seller-ID header")
		return
	}

	platform := c.PostForm("platform")
	if platform == "" {
		h.BadRequest(c, "platform is required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			"file exceeds the maximum upload size")
		return
	}
	if !isCSVContentType(header) {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedMediaType,
			"file must be a CSV file")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.InternalError(c, "failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			"file exceeds the maximum upload size")
		return
	}

	cmd := ingest.UploadCommand{
		SellerID: sellerID,
		Platform: platform,
		FileName: header.Filename,
		Data:     data,
	}

	// The returns file is smaller than the sales export by construction, so
	// it shares the same size limit.
	if returnsFile, returnsHeader, err := c.Request.FormFile("returns_file"); err == nil {
		defer returnsFile.Close()
		if returnsHeader.Size > h.maxFileSize {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
				"returns file exceeds the maximum upload size")
			return
		}
		returnsData, err := io.ReadAll(io.LimitReader(returnsFile, h.maxFileSize+1))
		if err != nil {
			h.InternalError(c, "failed to read returns file")
			return
		}
		if int64(len(returnsData)) > h.maxFileSize {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
				"returns file exceeds the maximum upload size")
			return
		}
		cmd.ReturnsData = returnsData
	}

	result, err := h.service.Process(c.Request.Context(), cmd)
	if err != nil {
		h.handleUploadError(c, err)
		return
	}

	h.Created(c, result)
}

// handleUploadError maps pipeline failures onto HTTP responses
func (h *UploadHandler) handleUploadError(c *gin.Context, err error) {
	var mismatch *marketplace.SchemaMismatchError
	if errors.As(err, &mismatch) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeSchemaMismatch, mismatch.Error())
		return
	}

	if errors.Is(err, csvtable.ErrEmptyFile) ||
		errors.Is(err, csvtable.ErrInvalidEncoding) ||
		errors.Is(err, csvtable.ErrMissingHeader) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeMalformedFile, err.Error())
		return
	}

	h.HandleError(c, err)
}

// isCSVContentType accepts the content types marketplaces and browsers
// actually send for CSV exports
func isCSVContentType(header *multipart.FileHeader) bool {
	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "", "text/csv", "application/csv", "text/plain", "application/octet-stream", "application/vnd.ms-excel":
		return true
	}
	return false
}
