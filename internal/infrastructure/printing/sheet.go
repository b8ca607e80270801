package printing

import (
	"bytes"
	"math"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/labeling"
)

// Production sheet geometry in points. Every row height is fixed; content is
// wrapped and clipped to fit.
const (
	sheetMarginPt       = 36.0
	sheetTitleHeight    = 30.0
	sheetTitleFontPt    = 16.0
	sheetSectionGap     = 10.0
	sheetFieldRowHeight = 22.0
	sheetFieldLabelPart = 0.42
	sheetFieldFontPt    = 9.0
	sheetHeaderHeight   = 20.0
	sheetRowHeight      = 24.0
	sheetCellPadding    = 3.0
	sheetCellFontPt     = 8.0
	sheetLineSpacing    = 1.1
	sheetNotesHeight    = 60.0
	sheetSignatureGap   = 30.0
	checkboxInsetRatio  = 0.2
	checkboxSizePt      = 11.0
)

// SheetColumn is one column of the production table
type SheetColumn struct {
	Title string
	Ratio float64
	X     float64
	Width float64
}

// sheetColumns lists the table columns. Ratios sum to 1.
var sheetColumns = []SheetColumn{
	{Title: "Lot Code(s)", Ratio: 0.22},
	{Title: "Bag Qty", Ratio: 0.12},
	{Title: "Pallet #", Ratio: 0.12},
	{Title: "Total KG", Ratio: 0.14},
	{Title: "Notes", Ratio: 0.28},
	{Title: "Initial", Ratio: 0.12},
}

// SheetField is one bordered label/value cell of the field grid
type SheetField struct {
	Label string
	Value string
	Rect  PointRect
}

// SheetCheckbox is the drawn boolean indicator
type SheetCheckbox struct {
	Outer   PointRect
	Inner   PointRect
	Checked bool
}

// SheetCell is the wrapped, clipped content of one table cell
type SheetCell struct {
	Lines    []string
	MaxWidth float64
}

// SheetLayout reports the geometry of a rendered production sheet
type SheetLayout struct {
	PageW, PageH float64
	Fields       []SheetField
	Checkbox     SheetCheckbox
	Table        PointRect
	Columns      []SheetColumn
	RowHeight    float64
	// Cells holds one entry per visible row, one cell per column
	Cells     [][]SheetCell
	Notes     PointRect
	Signature PointRect
}

// SheetRendererConfig configures the production sheet renderer
type SheetRendererConfig struct {
	Title  string
	Logger *zap.Logger
}

// SheetRenderer draws the A4 production sheet
type SheetRenderer struct {
	title  string
	logger *zap.Logger
}

// NewSheetRenderer creates a sheet renderer
func NewSheetRenderer(cfg SheetRendererConfig) *SheetRenderer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	title := cfg.Title
	if title == "" {
		title = "Bulk Production Sheet"
	}
	return &SheetRenderer{title: title, logger: logger}
}

// Render draws the record onto one A4 page
func (r *SheetRenderer) Render(rec *labeling.ProductionSheetRecord) (*Artifact, SheetLayout, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(sheetMarginPt, sheetMarginPt, sheetMarginPt)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*sheetMarginPt
	layout := SheetLayout{PageW: pageW, PageH: pageH, RowHeight: sheetRowHeight}

	// Title
	y := sheetMarginPt
	pdf.SetFont("Helvetica", "B", sheetTitleFontPt)
	pdf.SetXY(sheetMarginPt, y)
	pdf.CellFormat(contentW, sheetTitleHeight, tr(r.title), "", 0, "C", false, 0, "")
	y += sheetTitleHeight

	// Field grid
	y = r.drawFields(pdf, tr, rec, y, contentW, &layout)
	y += sheetSectionGap

	// Table
	y = r.drawTable(pdf, tr, rec, y, contentW, &layout)
	y += sheetSectionGap

	// Notes and signature
	layout.Notes = PointRect{X: sheetMarginPt, Y: y, W: contentW, H: sheetNotesHeight}
	pdf.Rect(layout.Notes.X, layout.Notes.Y, layout.Notes.W, layout.Notes.H, "D")
	pdf.SetFont("Helvetica", "B", sheetFieldFontPt)
	pdf.Text(layout.Notes.X+sheetCellPadding, layout.Notes.Y+sheetCellPadding+capHeightRatio*sheetFieldFontPt, "Notes")
	y += sheetNotesHeight + sheetSignatureGap

	sigW := contentW / 2
	layout.Signature = PointRect{X: pageW - sheetMarginPt - sigW, Y: y, W: sigW, H: 0}
	pdf.Line(layout.Signature.X, y, layout.Signature.X+sigW, y)
	pdf.SetFont("Helvetica", "", sheetCellFontPt)
	pdf.Text(layout.Signature.X, y+sheetCellFontPt*1.4, "Supervisor Signature")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, layout, NewRenderError(ErrCodeRenderFailed, "failed to produce production sheet PDF", err)
	}
	r.logger.Debug("production sheet rendered",
		zap.String("date", rec.Date),
		zap.String("shift", rec.Shift.String()),
		zap.Int("size", buf.Len()))
	return &Artifact{
		Kind:     ArtifactPDF,
		Data:     buf.Bytes(),
		WidthCm:  pageW / PointsPerCm,
		HeightCm: pageH / PointsPerCm,
	}, layout, nil
}

func (r *SheetRenderer) drawFields(pdf *gofpdf.Fpdf, tr func(string) string, rec *labeling.ProductionSheetRecord,
	y, contentW float64, layout *SheetLayout) float64 {
	grid := [][2]SheetField{
		{{Label: "Date", Value: rec.Date}, {Label: "Shift", Value: rec.Shift.String()}},
		{{Label: "Supervisor", Value: rec.Supervisor}, {Label: "Employee", Value: rec.Employee}},
		{{Label: "Product", Value: rec.Product}, {Label: "Bulk Lot Code", Value: rec.BulkLotCode}},
		{{Label: "Parchment Reuse"}, {Label: "Parchment Lot Code", Value: rec.ParchmentLotCode}},
		{{Label: "Quantity", Value: rec.Quantity}, {Label: "QC Initial", Value: rec.QualityCheck}},
	}

	fieldW := contentW / 2
	labelW := fieldW * sheetFieldLabelPart
	for row, pair := range grid {
		for col, f := range pair {
			f.Rect = PointRect{X: sheetMarginPt + float64(col)*fieldW, Y: y, W: fieldW, H: sheetFieldRowHeight}
			pdf.Rect(f.Rect.X, f.Rect.Y, f.Rect.W, f.Rect.H, "D")
			pdf.Line(f.Rect.X+labelW, f.Rect.Y, f.Rect.X+labelW, f.Rect.Y+f.Rect.H)

			pdf.SetFont("Helvetica", "B", sheetFieldFontPt)
			pdf.SetXY(f.Rect.X+sheetCellPadding, f.Rect.Y)
			pdf.CellFormat(labelW-2*sheetCellPadding, f.Rect.H, tr(f.Label), "", 0, "L", false, 0, "")

			valueX := f.Rect.X + labelW + sheetCellPadding
			valueW := fieldW - labelW - 2*sheetCellPadding
			if row == 3 && col == 0 {
				layout.Checkbox = drawCheckbox(pdf, valueX, f.Rect.Y+(f.Rect.H-checkboxSizePt)/2, rec.ParchmentReuse)
			} else if f.Value != "" {
				pdf.SetFont("Helvetica", "", sheetFieldFontPt)
				value := fitLine(f.Value, valueW, translatedWidth(pdf, tr))
				pdf.SetXY(valueX, f.Rect.Y)
				pdf.CellFormat(valueW, f.Rect.H, tr(value), "", 0, "L", false, 0, "")
			}
			layout.Fields = append(layout.Fields, f)
		}
		y += sheetFieldRowHeight
	}
	return y
}

// drawCheckbox draws two concentric squares and strikes the outer one
// through with both diagonals when checked
func drawCheckbox(pdf *gofpdf.Fpdf, x, y float64, checked bool) SheetCheckbox {
	inset := checkboxSizePt * checkboxInsetRatio
	box := SheetCheckbox{
		Outer:   PointRect{X: x, Y: y, W: checkboxSizePt, H: checkboxSizePt},
		Inner:   PointRect{X: x + inset, Y: y + inset, W: checkboxSizePt - 2*inset, H: checkboxSizePt - 2*inset},
		Checked: checked,
	}
	pdf.Rect(box.Outer.X, box.Outer.Y, box.Outer.W, box.Outer.H, "D")
	pdf.Rect(box.Inner.X, box.Inner.Y, box.Inner.W, box.Inner.H, "D")
	if checked {
		pdf.Line(box.Outer.X, box.Outer.Y, box.Outer.X+box.Outer.W, box.Outer.Y+box.Outer.H)
		pdf.Line(box.Outer.X+box.Outer.W, box.Outer.Y, box.Outer.X, box.Outer.Y+box.Outer.H)
	}
	return box
}

func (r *SheetRenderer) drawTable(pdf *gofpdf.Fpdf, tr func(string) string, rec *labeling.ProductionSheetRecord,
	y, contentW float64, layout *SheetLayout) float64 {
	columns := make([]SheetColumn, len(sheetColumns))
	x := sheetMarginPt
	for i, c := range sheetColumns {
		c.X = x
		c.Width = contentW * c.Ratio
		columns[i] = c
		x += c.Width
	}
	layout.Columns = columns

	rows := rec.VisibleRows()
	layout.Table = PointRect{
		X: sheetMarginPt,
		Y: y,
		W: contentW,
		H: sheetHeaderHeight + float64(len(rows))*sheetRowHeight,
	}

	pdf.SetFont("Helvetica", "B", sheetFieldFontPt)
	for _, c := range columns {
		pdf.SetXY(c.X, y)
		pdf.CellFormat(c.Width, sheetHeaderHeight, c.Title, "1", 0, "C", false, 0, "")
	}
	y += sheetHeaderHeight

	lineH := sheetCellFontPt * sheetLineSpacing
	maxLines := max(int(math.Floor((sheetRowHeight-2*sheetCellPadding)/lineH)), 1)

	pdf.SetFont("Helvetica", "", sheetCellFontPt)
	measure := translatedWidth(pdf, tr)
	layout.Cells = make([][]SheetCell, len(rows))
	for i, row := range rows {
		values := []string{row.LotCodes, row.BagQty, row.PalletNum, row.TotalKg, row.Notes, row.Initial}
		cells := make([]SheetCell, len(columns))
		for j, c := range columns {
			pdf.Rect(c.X, y, c.Width, sheetRowHeight, "D")
			cell := SheetCell{MaxWidth: c.Width - 2*sheetCellPadding}
			lines := WrapText(values[j], cell.MaxWidth, measure)
			if len(lines) > maxLines {
				lines = lines[:maxLines]
			}
			cell.Lines = lines
			for k, line := range lines {
				pdf.Text(c.X+sheetCellPadding, y+sheetCellPadding+capHeightRatio*sheetCellFontPt+float64(k)*lineH, tr(line))
			}
			cells[j] = cell
		}
		layout.Cells[i] = cells
		y += sheetRowHeight
	}
	return y
}

// translatedWidth measures UTF-8 text at the current font as it will be
// drawn, after translation to the single-byte core font encoding. Wrapping
// and truncation work on the UTF-8 text so a cut never splits a character.
func translatedWidth(pdf *gofpdf.Fpdf, tr func(string) string) func(string) float64 {
	return func(s string) float64 {
		return pdf.GetStringWidth(tr(s))
	}
}

// fitLine truncates s so it fits maxWidth on a single line
func fitLine(s string, maxWidth float64, measure func(string) float64) string {
	if measure(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && measure(string(runes)) > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
