package labeling

import (
	"strconv"
	"strings"
	"time"
)

const (
	// MinCopies and MaxCopies bound the copy count of a single print request
	MinCopies = 1
	MaxCopies = 100

	// DateLayout is the calendar date format used on labels and sheets
	DateLayout = "2006-01-02"

	// DefaultProductName is printed when a request carries no product name
	DefaultProductName = "Product"
)

// defaultPrinterAliases are the printer names clients send to mean
// "whatever the OS default printer is".
var defaultPrinterAliases = []string{"default", "기본 프린터"}

// LabelRecord is one validated compact-label print request. It is built per
// request, rendered once and then discarded.
type LabelRecord struct {
	LabelID     string
	Weight      NetWeight
	Date        string
	ProductName string
	// Printer is empty for the OS default printer
	Printer string
	Copies  int
}

// NetWeightDisplay returns the one-decimal net weight string.
func (r *LabelRecord) NetWeightDisplay() string {
	return r.Weight.Display()
}

// BarcodePayload returns the payload encoded in the label barcode.
func (r *LabelRecord) BarcodePayload() string {
	return r.Weight.BarcodePayload()
}

// ValidateCopies checks a requested copy count
func ValidateCopies(copies int) error {
	if copies < MinCopies || copies > MaxCopies {
		return ErrInvalidCopies
	}
	return nil
}

// IsDefaultPrinter reports whether name selects the OS default printer.
func IsDefaultPrinter(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	for _, alias := range defaultPrinterAliases {
		if strings.EqualFold(name, alias) {
			return true
		}
	}
	return false
}

// NormalizePrinter maps default-printer aliases to the empty name.
func NormalizePrinter(name string) string {
	if IsDefaultPrinter(name) {
		return ""
	}
	return strings.TrimSpace(name)
}

// GenerateLabelID builds the time based label identifier. A negative index
// means a single label, otherwise the batch index is appended.
func GenerateLabelID(now time.Time, index int) string {
	id := "ID" + now.Format("20060102150405")
	if index >= 0 {
		id += strconv.Itoa(index)
	}
	return id
}
