package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/interfaces/http/dto"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	Ping() error
}

// SystemHandler handles health and info endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	db        HealthChecker
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db HealthChecker) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		db:        db,
	}
}

// RegisterRoutes registers system routes on the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/health", h.Health)
	rg.GET("/system/info", h.Info)
}

// HealthResponse reports service and dependency status
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Health reports liveness plus database reachability
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// InfoResponse describes the running service
type InfoResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	GoVersion string   `json:"go_version"`
	Platforms []string `json:"platforms"`
	Uptime    string   `json:"uptime"`
}

// Info returns service metadata including the supported platforms
func (h *SystemHandler) Info(c *gin.Context) {
	platforms := analytics.SupportedPlatforms()
	tags := make([]string, 0, len(platforms))
	for _, p := range platforms {
		tags = append(tags, string(p))
	}

	info := InfoResponse{
		Name:      "GST Board API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Platforms: tags,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
