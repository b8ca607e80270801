//go:build !windows

package spooler

// NewSystemDeviceOpener returns an opener that fails off Windows
func NewSystemDeviceOpener() DeviceOpener {
	return unsupported{}
}

// NewSystemDefaultPrinterController returns a controller that fails off Windows
func NewSystemDefaultPrinterController() DefaultPrinterController {
	return unsupported{}
}

// NewSystemShellPrinter returns a shell printer that fails off Windows
func NewSystemShellPrinter() ShellPrinter {
	return unsupported{}
}

type unsupported struct{}

func (unsupported) Open(string) (DeviceContext, error) { return nil, ErrUnsupportedPlatform }
func (unsupported) Default() (string, error) { return "", ErrUnsupportedPlatform }
func (unsupported) SetDefault(string) error { return ErrUnsupportedPlatform }
func (unsupported) Print(string) error { return ErrUnsupportedPlatform }
func (unsupported) PrintTo(string, string) error { return ErrUnsupportedPlatform }
