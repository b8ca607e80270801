package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/labelprint/backend/internal/application/labeling"
)

// SheetHandler handles production sheet printing and record management
type SheetHandler struct {
	BaseHandler
	sheetService *labeling.SheetService
}

// NewSheetHandler creates a new SheetHandler
func NewSheetHandler(sheetService *labeling.SheetService) *SheetHandler {
	return &SheetHandler{sheetService: sheetService}
}

// Print handles POST /api/print/bulk-sheet
func (h *SheetHandler) Print(c *gin.Context) {
	var req labeling.SheetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.sheetService.PrintSheet(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Production sheet saved and printed", result)
}

// Preview handles POST /api/preview/bulk-sheet
func (h *SheetHandler) Preview(c *gin.Context) {
	var req labeling.SheetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	artifact, err := h.sheetService.PreviewSheet(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Artifact(c, "bulk_sheet_preview", artifact)
}

// ListRecords handles GET /api/production-records
func (h *SheetHandler) ListRecords(c *gin.Context) {
	records, err := h.sheetService.ListRecords(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", records)
}

// GetRecord handles GET /api/production-records/:date/:shift
func (h *SheetHandler) GetRecord(c *gin.Context) {
	rec, err := h.sheetService.GetRecord(c.Request.Context(), c.Param("date"), c.Param("shift"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", rec)
}

// DeleteRecord handles DELETE /api/production-records/:date/:shift
func (h *SheetHandler) DeleteRecord(c *gin.Context) {
	if err := h.sheetService.DeleteRecord(c.Request.Context(), c.Param("date"), c.Param("shift")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Production record deleted", nil)
}
