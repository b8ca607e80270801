package labeling

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/labelprint/backend/internal/domain/labeling"
)

// FlexValue is a request field that clients send either as a JSON string or
// as a JSON number. The raw text is kept and parsed by the service.
type FlexValue string

// UnmarshalJSON implements json.Unmarshaler
func (v *FlexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FlexValue(s)
		return nil
	}
	*v = FlexValue(data)
	return nil
}

// NewFlexValue wraps a raw value
func NewFlexValue(s string) *FlexValue {
	v := FlexValue(s)
	return &v
}

// present reports whether the field was sent with a non-blank value
func (v *FlexValue) present() bool {
	return v != nil && strings.TrimSpace(string(*v)) != ""
}

func (v *FlexValue) raw() string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(string(*v))
}

// =============================================================================
// Label DTOs
// =============================================================================

// LabelRequest is one compact-label print or preview request
type LabelRequest struct {
	TotalWeight  *FlexValue `json:"total_weight"`
	PalletWeight *FlexValue `json:"pallet_weight"`
	ExtraWeight  *FlexValue `json:"extra_weight"`
	// Weight is the net weight sent by legacy clients
	Weight      *FlexValue `json:"weight"`
	Date        string     `json:"date"`
	ProductName string     `json:"product_name" binding:"max=200"`
	// Printer nil means the configured default printer
	Printer *string    `json:"printer"`
	Copies  *FlexValue `json:"copies"`
	LabelID string     `json:"label_id" binding:"max=64"`
}

// LabelResult describes a printed label
type LabelResult struct {
	LabelID      string `json:"label_id"`
	TotalWeight  string `json:"total_weight"`
	PalletWeight string `json:"pallet_weight"`
	ExtraWeight  string `json:"extra_weight"`
	NetWeight    string `json:"net_weight"`
	// Weight repeats NetWeight for legacy clients
	Weight      string    `json:"weight"`
	Barcode     string    `json:"barcode"`
	ProductName string    `json:"product_name"`
	Date        string    `json:"date"`
	Printer     string    `json:"printer"`
	Copies      int       `json:"copies"`
	PrintTime   time.Time `json:"print_time"`
}

// BatchRequest is a list of labels printed one after another
type BatchRequest struct {
	Labels []LabelRequest `json:"labels"`
}

// BatchItemResult is the outcome of one label of a batch
type BatchItemResult struct {
	Index     int    `json:"index"`
	Success   bool   `json:"success"`
	LabelID   string `json:"label_id,omitempty"`
	NetWeight string `json:"net_weight,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

// BatchSummary counts batch outcomes
type BatchSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// BatchResult is the outcome of a batch print
type BatchResult struct {
	Results []BatchItemResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

// PrintStatusResult reports whether a label was printed
type PrintStatusResult struct {
	LabelID   string    `json:"label_id"`
	Status    string    `json:"status"`
	PrintTime time.Time `json:"print_time"`
	NetWeight string    `json:"net_weight"`
	Printer   string    `json:"printer"`
	Copies    int       `json:"copies"`
}

// =============================================================================
// Production sheet DTOs
// =============================================================================

// SheetRequest is a production sheet to save and print
type SheetRequest struct {
	labeling.ProductionSheetRecord
	Printer *string    `json:"printer"`
	Copies  *FlexValue `json:"copies"`
}

// SheetResult describes a printed production sheet
type SheetResult struct {
	Date     string    `json:"date"`
	Shift    string    `json:"shift"`
	Printer  string    `json:"printer"`
	Copies   int       `json:"copies"`
	Replaced bool      `json:"replaced"`
	SavedAt  time.Time `json:"saved_at"`
}

// =============================================================================
// System DTOs
// =============================================================================

// StatusResult is the server status report
type StatusResult struct {
	Status          string    `json:"status"`
	ServerTime      time.Time `json:"server_time"`
	Version         string    `json:"version"`
	LabelSize       string    `json:"label_size"`
	LabelBackend    string    `json:"label_backend"`
	DocumentBackend string    `json:"document_backend"`
}

// printerDisplay names the OS default printer for responses
func printerDisplay(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
