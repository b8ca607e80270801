package labeling

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BarcodePayloadWidth is the minimum length of a barcode payload.
const BarcodePayloadWidth = 6

// Weight input bounds. Exponent notation is not accepted, so the length
// limit also bounds the digits any calculation has to carry.
const (
	maxWeightLength   = 32
	maxWeightScale    = 16
	maxWeightExponent = 6
)

// MaxWeight is the largest weight in kilograms any input may carry.
var MaxWeight = decimal.NewFromInt(1_000_000)

// NetWeight is the validated result of a weight calculation.
type NetWeight struct {
	Total  decimal.Decimal
	Pallet decimal.Decimal
	Extra  decimal.Decimal
	Net    decimal.Decimal
}

// Display returns the net weight formatted to one decimal place, the form
// printed on the label.
func (w NetWeight) Display() string {
	return w.Net.StringFixed(1)
}

// BarcodePayload returns the digits of the one-decimal net weight with the
// decimal point removed, left padded with zeros.
func (w NetWeight) BarcodePayload() string {
	return BarcodePayloadFor(w.Display())
}

// BarcodePayloadFor converts a one-decimal display string into a barcode payload.
// "12.3" becomes "000123".
func BarcodePayloadFor(display string) string {
	digits := strings.ReplaceAll(display, ".", "")
	if len(digits) >= BarcodePayloadWidth {
		return digits
	}
	return strings.Repeat("0", BarcodePayloadWidth-len(digits)) + digits
}

// ParseWeight parses a raw weight. Blank input is zero. Exponent notation,
// overlong input and magnitudes beyond MaxWeight are format errors.
func ParseWeight(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	if len(raw) > maxWeightLength || strings.ContainsAny(raw, "eE") {
		return decimal.Zero, ErrInvalidWeightFormat
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidWeightFormat
	}
	if err := CheckWeightBounds(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckWeightBounds rejects values that are not plausible weights. The
// exponent is checked before any comparison, since comparing decimals with
// far apart exponents rescales them.
func CheckWeightBounds(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -maxWeightScale || exp > maxWeightExponent {
		return ErrInvalidWeightFormat
	}
	if d.Abs().GreaterThan(MaxWeight) {
		return ErrInvalidWeightFormat
	}
	return nil
}

// CalculateNetWeight derives net = total - pallet - extra from raw inputs.
// It has no side effects. Rejections are returned in a fixed order: format,
// total, pallet, extra, then the non-positive net check.
func CalculateNetWeight(total, pallet, extra string) (NetWeight, error) {
	t, err := ParseWeight(total)
	if err != nil {
		return NetWeight{}, err
	}
	p, err := ParseWeight(pallet)
	if err != nil {
		return NetWeight{}, err
	}
	e, err := ParseWeight(extra)
	if err != nil {
		return NetWeight{}, err
	}
	return ComputeNetWeight(t, p, e)
}

// ComputeNetWeight is CalculateNetWeight for already parsed values.
func ComputeNetWeight(total, pallet, extra decimal.Decimal) (NetWeight, error) {
	if !total.IsPositive() {
		return NetWeight{}, ErrInvalidTotal
	}
	if pallet.IsNegative() {
		return NetWeight{}, ErrInvalidPallet
	}
	if extra.IsNegative() {
		return NetWeight{}, ErrInvalidExtra
	}
	if pallet.Add(extra).GreaterThanOrEqual(total) {
		return NetWeight{}, ErrInvalidWeight
	}
	return NetWeight{
		Total:  total,
		Pallet: pallet,
		Extra:  extra,
		Net:    total.Sub(pallet).Sub(extra),
	}, nil
}
