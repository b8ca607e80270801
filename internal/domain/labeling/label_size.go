package labeling

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Defaults for a label stock of 10cm x 5cm
const (
	DefaultWidthCm    = 10.0
	DefaultHeightCm   = 5.0
	DefaultFontName   = "Arial"
	DefaultFontSize   = 48
	DefaultCopies     = 1
	maxLabelDimension = 100.0
)

// LabelSizeConfig holds the process-wide label settings
type LabelSizeConfig struct {
	WidthCm            float64         `json:"width_cm"`
	HeightCm           float64         `json:"height_cm"`
	FontName           string          `json:"font_name"`
	FontSize           int             `json:"font_size"`
	ExtraWeightDefault decimal.Decimal `json:"extra_weight_default"`
	DefaultPrinter     string          `json:"default_printer"`
	DefaultLabelCopies int             `json:"default_label_copies"`
	DefaultBulkCopies  int             `json:"default_bulk_copies"`
}

// DefaultLabelSizeConfig returns the built-in settings
func DefaultLabelSizeConfig() LabelSizeConfig {
	return LabelSizeConfig{
		WidthCm:            DefaultWidthCm,
		HeightCm:           DefaultHeightCm,
		FontName:           DefaultFontName,
		FontSize:           DefaultFontSize,
		ExtraWeightDefault: decimal.Zero,
		DefaultLabelCopies: DefaultCopies,
		DefaultBulkCopies:  DefaultCopies,
	}
}

// Validate checks that the settings can drive a render
func (c LabelSizeConfig) Validate() error {
	if c.WidthCm <= 0 || c.HeightCm <= 0 || c.WidthCm > maxLabelDimension || c.HeightCm > maxLabelDimension {
		return ErrInvalidLabelSize
	}
	if c.FontSize <= 0 {
		return ErrInvalidLabelSize
	}
	if CheckWeightBounds(c.ExtraWeightDefault) != nil || c.ExtraWeightDefault.IsNegative() {
		return ErrInvalidExtra
	}
	if err := ValidateCopies(c.DefaultLabelCopies); err != nil {
		return err
	}
	return ValidateCopies(c.DefaultBulkCopies)
}

// SizeLabel renders the dimensions the way the status endpoint reports them,
// e.g. "10cm x 5cm".
func (c LabelSizeConfig) SizeLabel() string {
	return formatCm(c.WidthCm) + "cm x " + formatCm(c.HeightCm) + "cm"
}

func formatCm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LabelSizePatch is a partial update of LabelSizeConfig; nil fields are kept.
type LabelSizePatch struct {
	WidthCm            *float64         `json:"width_cm"`
	HeightCm           *float64         `json:"height_cm"`
	FontName           *string          `json:"font_name"`
	FontSize           *int             `json:"font_size"`
	ExtraWeightDefault *decimal.Decimal `json:"extra_weight_default"`
	DefaultPrinter     *string          `json:"default_printer"`
	DefaultLabelCopies *int             `json:"default_label_copies"`
	DefaultBulkCopies  *int             `json:"default_bulk_copies"`
}

// Apply returns a copy of c with the patch applied
func (p LabelSizePatch) Apply(c LabelSizeConfig) LabelSizeConfig {
	if p.WidthCm != nil {
		c.WidthCm = *p.WidthCm
	}
	if p.HeightCm != nil {
		c.HeightCm = *p.HeightCm
	}
	if p.FontName != nil {
		c.FontName = *p.FontName
	}
	if p.FontSize != nil {
		c.FontSize = *p.FontSize
	}
	if p.ExtraWeightDefault != nil {
		c.ExtraWeightDefault = *p.ExtraWeightDefault
	}
	if p.DefaultPrinter != nil {
		c.DefaultPrinter = NormalizePrinter(*p.DefaultPrinter)
	}
	if p.DefaultLabelCopies != nil {
		c.DefaultLabelCopies = *p.DefaultLabelCopies
	}
	if p.DefaultBulkCopies != nil {
		c.DefaultBulkCopies = *p.DefaultBulkCopies
	}
	return c
}
