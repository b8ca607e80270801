package spooler

import (
	"strings"

	"golang.org/x/text/cases"
)

// Printer status values
const (
	StatusAvailable = "available"
	StatusBusy      = "busy"
)

// DefaultPrinterName is reported when no printer can be enumerated
const DefaultPrinterName = "default"

// Printer is one enumerated printer queue
type Printer struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// DefaultPrinterEntry is the placeholder listed when enumeration yields nothing
func DefaultPrinterEntry() Printer {
	return Printer{Name: DefaultPrinterName, Status: StatusAvailable, Description: "System default printer"}
}

// fold returns the case-folded form of s. A Caser is stateful, so one is
// made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// MatchPrinter resolves a requested name against installed printers. An
// exact match wins, then a case-insensitive match, then the first installed
// name that contains the request or is contained by it.
func MatchPrinter(requested string, installed []string) (string, bool) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", false
	}
	for _, name := range installed {
		if name == requested {
			return name, true
		}
	}

	want := fold(requested)
	for _, name := range installed {
		if fold(name) == want {
			return name, true
		}
	}
	for _, name := range installed {
		have := fold(name)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return name, true
		}
	}
	return "", false
}

// printerNames extracts names from an enumeration
func printerNames(printers []Printer) []string {
	names := make([]string, 0, len(printers))
	for _, p := range printers {
		names = append(names, p.Name)
	}
	return names
}
