package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labelprint/backend/internal/application/labeling"
	"github.com/labelprint/backend/internal/infrastructure/printing"
)

// LabelHandler handles compact label printing, previews and print history
type LabelHandler struct {
	BaseHandler
	labelService *labeling.LabelService
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(labelService *labeling.LabelService) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

// BatchResponse flattens the batch outcome into the envelope
type BatchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*labeling.BatchResult
}

// PrintStatusResponse flattens the print status into the envelope
type PrintStatusResponse struct {
	Success bool `json:"success"`
	*labeling.PrintStatusResult
}

// Print handles POST /api/print
func (h *LabelHandler) Print(c *gin.Context) {
	var req labeling.LabelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.labelService.PrintLabel(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Label printed successfully", result)
}

// PrintBatch handles POST /api/print/batch
func (h *LabelHandler) PrintBatch(c *gin.Context) {
	var req labeling.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.labelService.PrintBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, BatchResponse{
		Success:     result.Summary.Success > 0,
		Message:     fmt.Sprintf("%d/%d labels printed", result.Summary.Success, result.Summary.Total),
		BatchResult: result,
	})
}

// Preview handles GET and POST /preview. GET reads the label fields from the
// query string. The format query parameter picks png or pdf.
func (h *LabelHandler) Preview(c *gin.Context) {
	var req labeling.LabelRequest
	if c.Request.Method == http.MethodGet {
		req = labelRequestFromQuery(c)
	} else if !h.BindJSON(c, &req) {
		return
	}

	artifact, err := h.labelService.PreviewLabel(c.Request.Context(), req, printing.ArtifactKind(c.Query("format")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Artifact(c, "label_preview", artifact)
}

// History handles GET /api/history
func (h *LabelHandler) History(c *gin.Context) {
	entries, err := h.labelService.ListHistory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", entries)
}

// ClearHistory handles DELETE /api/history
func (h *LabelHandler) ClearHistory(c *gin.Context) {
	if err := h.labelService.ClearHistory(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Print history cleared", nil)
}

// PrintStatus handles GET /api/print/status/:label_id
func (h *LabelHandler) PrintStatus(c *gin.Context) {
	status, err := h.labelService.PrintStatus(c.Request.Context(), c.Param("label_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, PrintStatusResponse{Success: true, PrintStatusResult: status})
}

func labelRequestFromQuery(c *gin.Context) labeling.LabelRequest {
	req := labeling.LabelRequest{
		TotalWeight:  queryFlex(c, "total_weight"),
		PalletWeight: queryFlex(c, "pallet_weight"),
		ExtraWeight:  queryFlex(c, "extra_weight"),
		Weight:       queryFlex(c, "weight"),
		Copies:       queryFlex(c, "copies"),
		Date:         c.Query("date"),
		ProductName:  c.Query("product_name"),
		LabelID:      c.Query("label_id"),
	}
	if printer, ok := c.GetQuery("printer"); ok {
		req.Printer = &printer
	}
	return req
}

func queryFlex(c *gin.Context, key string) *labeling.FlexValue {
	if v, ok := c.GetQuery(key); ok {
		return labeling.NewFlexValue(v)
	}
	return nil
}

