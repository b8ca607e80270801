package spooler

import "image"

// Device capability indexes passed to GetDeviceCaps
const (
	capHorzRes    = 8
	capVertRes    = 10
	capLogPixelsX = 88
	capLogPixelsY = 90
)

// DeviceCaps is the resolution and printable area of a printer
type DeviceCaps struct {
	DPIX int
	DPIY int
	// PrintableW and PrintableH are in device pixels
	PrintableW int
	PrintableH int
}

// DeviceContext is an open printer drawing surface
type DeviceContext interface {
	Caps() (DeviceCaps, error)
	StartDoc(name string) error
	StartPage() error
	// Blit draws img with its top-left corner at (x, y) at native size
	Blit(img *image.NRGBA, x, y int) error
	EndPage() error
	EndDoc() error
	Close() error
}

// DeviceOpener opens a device context. An empty name means the default printer.
type DeviceOpener interface {
	Open(printer string) (DeviceContext, error)
}

// DefaultPrinterController reads and changes the OS default printer
type DefaultPrinterController interface {
	Default() (string, error)
	SetDefault(name string) error
}

// ShellPrinter triggers the shell print verbs on a document
type ShellPrinter interface {
	// Print sends the document to the default printer
	Print(path string) error
	// PrintTo sends the document to a named printer
	PrintTo(path, printer string) error
}
