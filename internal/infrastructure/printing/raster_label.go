package printing

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Raster label geometry, in 300 DPI pixels or fractions of the canvas
const (
	rasterBorderPx        = 3
	rasterMarginPx        = 10
	kgFontRatio           = 0.3
	barcodeHeightRatio    = 0.25
	fallbackTextRatio     = 0.05
	minFallbackTextPixels = 8
)

// RasterLayout reports where each element of a raster label landed
type RasterLayout struct {
	Canvas image.Rectangle
	// FontPx is the net-weight font size
	FontPx int
	// NetWeight is the ink box of the net-weight text
	NetWeight image.Rectangle
	// NetWeightCenterX is the exact horizontal midpoint of the ink box
	NetWeightCenterX float64
	Kg               image.Rectangle
	// Barcode holds the symbol, or the fallback text when BarcodeAsText
	Barcode       image.Rectangle
	BarcodeAsText bool
}

// RasterLabelRendererConfig configures the raster renderer
type RasterLabelRendererConfig struct {
	Fonts   *FontLoader
	Barcode BarcodeEncoder
	Logger  *zap.Logger
}

// RasterLabelRenderer draws labels at 300 DPI
type RasterLabelRenderer struct {
	fonts   *FontLoader
	barcode BarcodeEncoder
	logger  *zap.Logger
}

// NewRasterLabelRenderer creates a raster renderer. A nil encoder always
// produces the text fallback.
func NewRasterLabelRenderer(cfg RasterLabelRendererConfig) *RasterLabelRenderer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fonts := cfg.Fonts
	if fonts == nil {
		fonts = NewFontLoader(FontLoaderConfig{Logger: logger})
	}
	return &RasterLabelRenderer{
		fonts:   fonts,
		barcode: cfg.Barcode,
		logger:  logger,
	}
}

// Render draws the label. It never fails: a missing font or barcode degrades
// the output instead.
func (r *RasterLabelRenderer) Render(spec LabelSpec, content LabelContent) (*image.RGBA, RasterLayout) {
	w, h := CmToPixels(spec.WidthCm), CmToPixels(spec.HeightCm)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	layout := RasterLayout{Canvas: img.Bounds()}
	drawBorder(img, rasterBorderPx)

	layout.FontPx = FontPixels(spec.FontSize, w)
	face := r.fonts.Face(spec.FontName, true, float64(layout.FontPx))
	layout.NetWeight, layout.NetWeightCenterX = drawCentered(img, face, content.NetWeight,
		float64(w)/2, float64(h)/2)

	kgFace := r.fonts.Face(spec.FontName, false, float64(max(int(float64(layout.FontPx)*kgFontRatio), 1)))
	layout.Kg = drawAnchoredBottomRight(img, kgFace, "kg", w-rasterMarginPx, h-rasterMarginPx)

	layout.Barcode, layout.BarcodeAsText = r.drawBarcode(img, spec, content.BarcodePayload)
	return img, layout
}

// RenderPNG renders the label and encodes it as PNG
func (r *RasterLabelRenderer) RenderPNG(spec LabelSpec, content LabelContent) (*Artifact, RasterLayout, error) {
	img, layout := r.Render(spec, content)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, layout, NewRenderError(ErrCodeRenderFailed, "failed to encode label PNG", err)
	}
	return &Artifact{
		Kind:     ArtifactPNG,
		Data:     buf.Bytes(),
		WidthCm:  spec.WidthCm,
		HeightCm: spec.HeightCm,
	}, layout, nil
}

func (r *RasterLabelRenderer) drawBarcode(img *image.RGBA, spec LabelSpec, payload string) (image.Rectangle, bool) {
	h := img.Bounds().Dy()
	barHeight := int(float64(h) * barcodeHeightRatio)

	if r.barcode != nil && barHeight > 0 {
		symbol, err := r.barcode.Encode(payload)
		if err == nil {
			sb := symbol.Bounds()
			barWidth := int(float64(barHeight) * float64(sb.Dx()) / float64(sb.Dy()))
			if barWidth > 0 {
				scaled := imaging.Resize(symbol, barWidth, barHeight, imaging.NearestNeighbor)
				at := image.Rect(rasterMarginPx, h-rasterMarginPx-barHeight, rasterMarginPx+barWidth, h-rasterMarginPx)
				draw.Draw(img, at, scaled, image.Point{}, draw.Src)
				return at, false
			}
		} else {
			r.logger.Warn("barcode unavailable, printing payload as text", zap.String("payload", payload), zap.Error(err))
		}
	}

	size := max(int(float64(h)*fallbackTextRatio), minFallbackTextPixels)
	face := r.fonts.Face(spec.FontName, false, float64(size))
	return drawAnchoredBottomLeft(img, face, payload, rasterMarginPx, h-rasterMarginPx), true
}

// drawBorder strokes a rectangle flush with the canvas edge
func drawBorder(img *image.RGBA, width int) {
	b := img.Bounds()
	black := image.NewUniform(color.Black)
	draw.Draw(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+width), black, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Min.X, b.Max.Y-width, b.Max.X, b.Max.Y), black, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Max.Y), black, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Max.X-width, b.Min.Y, b.Max.X, b.Max.Y), black, image.Point{}, draw.Src)
}

// drawCentered places s so the middle of its glyph bounding box sits on
// (cx, cy). Using ink bounds rather than ascent keeps numerals of different
// widths visually centered.
func drawCentered(img *image.RGBA, face font.Face, s string, cx, cy float64) (image.Rectangle, float64) {
	b := inkBounds(face, s)
	dot := fixed.Point26_6{
		X: floatToFixed(cx) - (b.Min.X+b.Max.X)/2,
		Y: floatToFixed(cy) - (b.Min.Y+b.Max.Y)/2,
	}
	drawString(img, face, s, dot)

	ink := b.Add(dot)
	centerX := (fixedToFloat(ink.Min.X) + fixedToFloat(ink.Max.X)) / 2
	return rectFromFixed(ink), centerX
}

// drawAnchoredBottomRight places the ink box's bottom-right corner at (right, bottom)
func drawAnchoredBottomRight(img *image.RGBA, face font.Face, s string, right, bottom int) image.Rectangle {
	b := inkBounds(face, s)
	dot := fixed.Point26_6{
		X: fixed.I(right) - b.Max.X,
		Y: fixed.I(bottom) - b.Max.Y,
	}
	drawString(img, face, s, dot)
	return rectFromFixed(b.Add(dot))
}

// drawAnchoredBottomLeft places the ink box's bottom-left corner at (left, bottom)
func drawAnchoredBottomLeft(img *image.RGBA, face font.Face, s string, left, bottom int) image.Rectangle {
	b := inkBounds(face, s)
	dot := fixed.Point26_6{
		X: fixed.I(left) - b.Min.X,
		Y: fixed.I(bottom) - b.Max.Y,
	}
	drawString(img, face, s, dot)
	return rectFromFixed(b.Add(dot))
}

func drawString(img *image.RGBA, face font.Face, s string, dot fixed.Point26_6) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(s)
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func rectFromFixed(r fixed.Rectangle26_6) image.Rectangle {
	return image.Rect(r.Min.X.Floor(), r.Min.Y.Floor(), r.Max.X.Ceil(), r.Max.Y.Ceil())
}
