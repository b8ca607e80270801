package printing

import (
	"bytes"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// Vector label geometry as fractions of the page
const (
	vectorInsetXRatio   = 0.02
	vectorInsetYRatio   = 0.04
	vectorPadRatio      = 0.03
	vectorBorderWidthPt = 1.0
	vectorInfoFontRatio = 0.08
	// capHeightRatio is the Helvetica cap height per em, used to center
	// digits vertically on their visible extent.
	capHeightRatio = 0.718
)

// PointRect is an axis-aligned rectangle in points, origin top-left
type PointRect struct {
	X, Y, W, H float64
}

// VectorLayout reports where each element of a vector label landed
type VectorLayout struct {
	PageW, PageH float64
	Border       PointRect
	// FontPt is the net-weight font size in points
	FontPt float64
	// NetWeight is the ink box of the net weight, horizontally from the
	// first glyph's left edge to the last glyph's right edge and vertically
	// from baseline-minus-cap-height to baseline
	NetWeight PointRect
	// NetWeightOriginX is the pen position the text was drawn from
	NetWeightOriginX float64
	NetWeightCenterX float64
	Kg               PointRect
	Barcode          PointRect
	BarcodeAsText    bool
}

// VectorLabelRendererConfig configures the vector renderer
type VectorLabelRendererConfig struct {
	Barcode BarcodeEncoder
	Logger  *zap.Logger
}

// VectorLabelRenderer draws labels as single-page PDFs sized to the stock
type VectorLabelRenderer struct {
	barcode BarcodeEncoder
	logger  *zap.Logger
}

// NewVectorLabelRenderer creates a vector renderer
func NewVectorLabelRenderer(cfg VectorLabelRendererConfig) *VectorLabelRenderer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorLabelRenderer{
		barcode: cfg.Barcode,
		logger:  logger,
	}
}

// pdfFamily maps a configured family to a PDF core font
func pdfFamily(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "times", "times new roman", "georgia":
		return "Times"
	case "courier", "courier new":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// Render draws the label and returns the PDF artifact
func (r *VectorLabelRenderer) Render(spec LabelSpec, content LabelContent) (*Artifact, VectorLayout, error) {
	pageW, pageH := CmToPoints(spec.WidthCm), CmToPoints(spec.HeightCm)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	family := pdfFamily(spec.FontName)

	layout := VectorLayout{PageW: pageW, PageH: pageH}

	insetX, insetY := pageW*vectorInsetXRatio, pageH*vectorInsetYRatio
	layout.Border = PointRect{X: insetX, Y: insetY, W: pageW - 2*insetX, H: pageH - 2*insetY}
	pdf.SetLineWidth(vectorBorderWidthPt)
	pdf.Rect(layout.Border.X, layout.Border.Y, layout.Border.W, layout.Border.H, "D")

	// Net weight, centered on the page
	layout.FontPt = PixelsToPoints(float64(FontPixels(spec.FontSize, CmToPixels(spec.WidthCm))))
	pdf.SetFont(family, "B", layout.FontPt)
	text := tr(content.NetWeight)
	textW := pdf.GetStringWidth(text)
	lsb, rsb := inkInsets(family, content.NetWeight, layout.FontPt)
	inkW := textW - lsb - rsb
	capH := capHeightRatio * layout.FontPt
	x := (pageW-inkW)/2 - lsb
	baseline := pageH/2 + capH/2
	pdf.Text(x, baseline, text)
	layout.NetWeightOriginX = x
	layout.NetWeight = PointRect{X: x + lsb, Y: baseline - capH, W: inkW, H: capH}
	layout.NetWeightCenterX = layout.NetWeight.X + inkW/2

	pad := pageH * vectorPadRatio
	innerRight := layout.Border.X + layout.Border.W - pad
	innerBottom := layout.Border.Y + layout.Border.H - pad
	innerLeft := layout.Border.X + pad
	innerTop := layout.Border.Y + pad

	kgPt := layout.FontPt * kgFontRatio
	pdf.SetFont(family, "", kgPt)
	kgW := pdf.GetStringWidth("kg")
	pdf.Text(innerRight-kgW, innerBottom, "kg")
	layout.Kg = PointRect{X: innerRight - kgW, Y: innerBottom - capHeightRatio*kgPt, W: kgW, H: capHeightRatio * kgPt}

	r.drawInfo(pdf, tr, family, content, innerLeft, innerTop, innerRight, pageH)

	layout.Barcode, layout.BarcodeAsText = r.drawBarcode(pdf, family, content.BarcodePayload,
		innerLeft, innerBottom, pageH)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, layout, NewRenderError(ErrCodeRenderFailed, "failed to produce label PDF", err)
	}
	return &Artifact{
		Kind:     ArtifactPDF,
		Data:     buf.Bytes(),
		WidthCm:  spec.WidthCm,
		HeightCm: spec.HeightCm,
	}, layout, nil
}

// drawInfo writes the optional product and weight lines top-left and the
// date top-right
func (r *VectorLabelRenderer) drawInfo(pdf *gofpdf.Fpdf, tr func(string) string, family string,
	content LabelContent, left, top, right, pageH float64) {
	size := pageH * vectorInfoFontRatio
	pdf.SetFont(family, "", size)
	line := top + capHeightRatio*size

	if content.ProductName != "" {
		pdf.Text(left, line, tr(content.ProductName))
		line += size * 1.2
	}
	if content.TotalWeight != "" && content.PalletWeight != "" {
		pdf.Text(left, line, tr("Total "+content.TotalWeight+" / Pallet "+content.PalletWeight))
	}
	if content.Date != "" {
		d := tr(content.Date)
		pdf.Text(right-pdf.GetStringWidth(d), top+capHeightRatio*size, d)
	}
}

func (r *VectorLabelRenderer) drawBarcode(pdf *gofpdf.Fpdf, family, payload string,
	left, bottom, pageH float64) (PointRect, bool) {
	barH := pageH * barcodeHeightRatio
	if r.barcode != nil {
		symbol, err := r.barcode.Encode(payload)
		if err == nil {
			var png bytes.Buffer
			err = imaging.Encode(&png, symbol, imaging.PNG)
			if err == nil {
				sb := symbol.Bounds()
				barW := barH * float64(sb.Dx()) / float64(sb.Dy())
				name := "barcode-" + uuid.NewString()
				opts := gofpdf.ImageOptions{ImageType: "PNG"}
				pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png.Bytes()))
				if pdf.Ok() {
					at := PointRect{X: left, Y: bottom - barH, W: barW, H: barH}
					pdf.ImageOptions(name, at.X, at.Y, at.W, at.H, false, opts, 0, "")
					return at, false
				}
				err = pdf.Error()
				pdf.ClearError()
			}
		}
		r.logger.Warn("barcode unavailable, printing payload as text", zap.String("payload", payload), zap.Error(err))
	}

	size := max(pageH*fallbackTextRatio, PixelsToPoints(minFallbackTextPixels))
	pdf.SetFont(family, "", size)
	w := pdf.GetStringWidth(payload)
	pdf.Text(left, bottom, payload)
	return PointRect{X: left, Y: bottom - capHeightRatio*size, W: w, H: capHeightRatio * size}, true
}
