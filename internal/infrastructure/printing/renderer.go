package printing

import (
	"github.com/labelprint/backend/internal/domain/labeling"
)

// ArtifactKind identifies the file format of a rendered artifact
type ArtifactKind string

const (
	ArtifactPDF ArtifactKind = "pdf"
	ArtifactPNG ArtifactKind = "png"
)

// IsValid checks if the ArtifactKind is a valid value
func (k ArtifactKind) IsValid() bool {
	return k == ArtifactPDF || k == ArtifactPNG
}

// ContentType returns the MIME type of the artifact
func (k ArtifactKind) ContentType() string {
	if k == ArtifactPNG {
		return "image/png"
	}
	return "application/pdf"
}

// Ext returns the file extension including the dot
func (k ArtifactKind) Ext() string {
	return "." + string(k)
}

// Artifact is a rendered label or sheet held in memory
type Artifact struct {
	Kind ArtifactKind
	Data []byte
	// WidthCm and HeightCm are the physical size the artifact represents
	WidthCm  float64
	HeightCm float64
}

// LabelSpec is the physical label stock and base typography
type LabelSpec struct {
	WidthCm  float64
	HeightCm float64
	FontName string
	FontSize int
}

// LabelSpecFrom extracts the render settings from the label configuration
func LabelSpecFrom(cfg labeling.LabelSizeConfig) LabelSpec {
	return LabelSpec{
		WidthCm:  cfg.WidthCm,
		HeightCm: cfg.HeightCm,
		FontName: cfg.FontName,
		FontSize: cfg.FontSize,
	}
}

// LabelContent is the text drawn on a label. Empty optional fields are skipped.
type LabelContent struct {
	NetWeight      string
	BarcodePayload string
	ProductName    string
	TotalWeight    string
	PalletWeight   string
	Date           string
}

// LabelContentFrom builds the drawable content of a label record
func LabelContentFrom(rec *labeling.LabelRecord) LabelContent {
	return LabelContent{
		NetWeight:      rec.NetWeightDisplay(),
		BarcodePayload: rec.BarcodePayload(),
		ProductName:    rec.ProductName,
		TotalWeight:    rec.Weight.Total.StringFixed(1),
		PalletWeight:   rec.Weight.Pallet.StringFixed(1),
		Date:           rec.Date,
	}
}

// RenderError represents an error during rendering or artifact handling
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeStorageFailed = "STORAGE_FAILED"
	ErrCodeBarcodeFailed = "BARCODE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
