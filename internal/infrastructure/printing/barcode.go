package printing

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// BarcodeEncoder turns a payload into a symbol image. An error tells the
// renderer to draw the payload as text instead.
type BarcodeEncoder interface {
	Encode(payload string) (image.Image, error)
}

// Code128Encoder renders Code-128 symbols
type Code128Encoder struct {
	// ModuleWidth is the width in pixels of the narrowest bar
	ModuleWidth int
	// BarHeight is the height in pixels of the bars
	BarHeight int
	// QuietZone is the blank margin on each side, in modules
	QuietZone int
}

// NewCode128Encoder returns an encoder with print-friendly proportions
func NewCode128Encoder() *Code128Encoder {
	return &Code128Encoder{
		ModuleWidth: 3,
		BarHeight:   120,
		QuietZone:   10,
	}
}

// Encode implements BarcodeEncoder
func (e *Code128Encoder) Encode(payload string) (image.Image, error) {
	if payload == "" {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "empty barcode payload", nil)
	}
	code, err := code128.Encode(payload)
	if err != nil {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "code128 encoding failed", err)
	}

	module := max(e.ModuleWidth, 1)
	height := max(e.BarHeight, 1)
	modules := code.Bounds().Dx()

	bars, err := barcode.Scale(code, modules*module, height)
	if err != nil {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "barcode scaling failed", err)
	}

	quiet := max(e.QuietZone, 0) * module
	canvas := image.NewRGBA(image.Rect(0, 0, modules*module+2*quiet, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(quiet, 0, quiet+modules*module, height), bars, image.Point{}, draw.Over)
	return canvas, nil
}

var _ BarcodeEncoder = (*Code128Encoder)(nil)
