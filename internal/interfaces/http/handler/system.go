package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labelprint/backend/internal/application/labeling"
	domain "github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// SystemHandler handles status, printer listing and label settings
type SystemHandler struct {
	BaseHandler
	systemService *labeling.SystemService
	startTime     time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *labeling.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		startTime:     time.Now(),
	}
}

// StatusResponse flattens the status report into the envelope
type StatusResponse struct {
	Success bool `json:"success"`
	*labeling.StatusResult
}

// PrintersResponse lists installed printers
type PrintersResponse struct {
	Success  bool              `json:"success"`
	Printers []spooler.Printer `json:"printers"`
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Status handles GET /api/status
func (h *SystemHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Success:      true,
		StatusResult: h.systemService.Status(c.Request.Context()),
	})
}

// Printers handles GET /api/printers. refresh=true bypasses the cache.
func (h *SystemHandler) Printers(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	c.JSON(http.StatusOK, PrintersResponse{
		Success:  true,
		Printers: h.systemService.Printers(c.Request.Context(), refresh),
	})
}

// GetSettings handles GET /api/settings
func (h *SystemHandler) GetSettings(c *gin.Context) {
	h.Success(c, "", h.systemService.Settings())
}

// UpdateSettings handles PUT /api/settings
func (h *SystemHandler) UpdateSettings(c *gin.Context) {
	var patch domain.LabelSizePatch
	if !h.BindJSON(c, &patch) {
		return
	}

	cfg, err := h.systemService.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Label settings saved", cfg)
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
