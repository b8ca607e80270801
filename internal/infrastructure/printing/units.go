package printing

import "github.com/labelprint/backend/internal/domain/labeling"

// Physical unit conversion. Both renderers derive every coordinate from these
// declared factors, never from a screen.
const (
	PointsPerInch = 72.0
	CmPerInch     = 2.54
	// PointsPerCm is 28.3465 points per centimeter
	PointsPerCm = PointsPerInch / CmPerInch
	// RasterDPI is the resolution of the raster label
	RasterDPI = 300.0
	// PixelsPerCm is 300 DPI expressed per centimeter
	PixelsPerCm = 118.11

	// previewPixelsPerCm is the on-screen preview scale the base font size
	// was tuned on: 37.8 px/cm at 96 DPI, drawn at 2x.
	previewPixelsPerCm = 2 * 37.8
	// referenceWidthPx is the preview width of the default label stock.
	referenceWidthPx = labeling.DefaultWidthCm * previewPixelsPerCm

	minFontPixels = 20
)

// CmToPoints converts centimeters to PDF points
func CmToPoints(cm float64) float64 {
	return cm * PointsPerCm
}

// CmToPixels converts centimeters to 300 DPI pixels, truncating
func CmToPixels(cm float64) int {
	return int(cm * PixelsPerCm)
}

// PixelsToPoints converts 300 DPI pixels to points
func PixelsToPoints(px float64) float64 {
	return px * PointsPerInch / RasterDPI
}

// FontPixels returns the net-weight font size in 300 DPI pixels for a canvas
// of the given pixel width. The base size scales with canvas width relative
// to the reference stock and never drops below 20px.
func FontPixels(baseSize int, canvasWidthPx int) int {
	size := int(float64(baseSize) * float64(canvasWidthPx) / referenceWidthPx)
	if size < minFontPixels {
		return minFontPixels
	}
	return size
}
