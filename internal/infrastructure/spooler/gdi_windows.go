//go:build windows

package spooler

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	winspool = windows.NewLazySystemDLL("winspool.drv")

	procCreateDCW          = gdi32.NewProc("CreateDCW")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procGetDeviceCaps      = gdi32.NewProc("GetDeviceCaps")
	procStartDocW          = gdi32.NewProc("StartDocW")
	procEndDoc             = gdi32.NewProc("EndDoc")
	procStartPage          = gdi32.NewProc("StartPage")
	procEndPage            = gdi32.NewProc("EndPage")
	procStretchDIBits      = gdi32.NewProc("StretchDIBits")
	procGetDefaultPrinterW = winspool.NewProc("GetDefaultPrinterW")
	procSetDefaultPrinterW = winspool.NewProc("SetDefaultPrinterW")
)

const (
	dibRGBColors = 0
	srcCopy      = 0x00CC0020
	biRGB        = 0
)

type docInfo struct {
	cbSize       int32
	lpszDocName  *uint16
	lpszOutput   *uint16
	lpszDatatype *uint16
	fwType       uint32
}

type bitmapInfoHeader struct {
	biSize          uint32
	biWidth         int32
	biHeight        int32
	biPlanes        uint16
	biBitCount      uint16
	biCompression   uint32
	biSizeImage     uint32
	biXPelsPerMeter int32
	biYPelsPerMeter int32
	biClrUsed       uint32
	biClrImportant  uint32
}

// gdiOpener opens printer device contexts through CreateDCW
type gdiOpener struct{}

// NewSystemDeviceOpener returns the GDI device opener
func NewSystemDeviceOpener() DeviceOpener {
	return gdiOpener{}
}

func (gdiOpener) Open(printer string) (DeviceContext, error) {
	if printer == "" {
		name, err := defaultPrinter()
		if err != nil {
			return nil, err
		}
		printer = name
	}
	driver, err := windows.UTF16PtrFromString("WINSPOOL")
	if err != nil {
		return nil, err
	}
	device, err := windows.UTF16PtrFromString(printer)
	if err != nil {
		return nil, err
	}
	hdc, _, callErr := procCreateDCW.Call(uintptr(unsafe.Pointer(driver)), uintptr(unsafe.Pointer(device)), 0, 0)
	if hdc == 0 {
		return nil, fmt.Errorf("CreateDC %q: %w", printer, callErr)
	}
	return &gdiContext{hdc: hdc}, nil
}

type gdiContext struct {
	hdc uintptr
}

func (c *gdiContext) cap(index int) int {
	r, _, _ := procGetDeviceCaps.Call(c.hdc, uintptr(index))
	return int(int32(r))
}

func (c *gdiContext) Caps() (DeviceCaps, error) {
	caps := DeviceCaps{
		DPIX:       c.cap(capLogPixelsX),
		DPIY:       c.cap(capLogPixelsY),
		PrintableW: c.cap(capHorzRes),
		PrintableH: c.cap(capVertRes),
	}
	if caps.DPIX <= 0 || caps.DPIY <= 0 {
		return caps, errors.New("device reports no resolution")
	}
	return caps, nil
}

func (c *gdiContext) StartDoc(name string) error {
	docName, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	di := docInfo{lpszDocName: docName}
	di.cbSize = int32(unsafe.Sizeof(di))
	r, _, callErr := procStartDocW.Call(c.hdc, uintptr(unsafe.Pointer(&di)))
	if int32(r) <= 0 {
		return fmt.Errorf("StartDoc: %w", callErr)
	}
	return nil
}

func (c *gdiContext) StartPage() error {
	if r, _, callErr := procStartPage.Call(c.hdc); int32(r) <= 0 {
		return fmt.Errorf("StartPage: %w", callErr)
	}
	return nil
}

// Blit copies img as a top-down 32bpp DIB at native size
func (c *gdiContext) Blit(img *image.NRGBA, x, y int) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return errors.New("empty image")
	}

	bits := make([]byte, w*h*4)
	for row := 0; row < h; row++ {
		src := img.Pix[row*img.Stride : row*img.Stride+w*4]
		dst := bits[row*w*4 : (row+1)*w*4]
		for i := 0; i < len(src); i += 4 {
			// composite over white, then store as BGRX
			a := uint32(src[i+3])
			dst[i+0] = byte((uint32(src[i+2])*a + 255*(255-a)) / 255)
			dst[i+1] = byte((uint32(src[i+1])*a + 255*(255-a)) / 255)
			dst[i+2] = byte((uint32(src[i+0])*a + 255*(255-a)) / 255)
		}
	}

	hdr := bitmapInfoHeader{
		biWidth:       int32(w),
		biHeight:      -int32(h),
		biPlanes:      1,
		biBitCount:    32,
		biCompression: biRGB,
	}
	hdr.biSize = uint32(unsafe.Sizeof(hdr))

	r, _, callErr := procStretchDIBits.Call(c.hdc,
		uintptr(x), uintptr(y), uintptr(w), uintptr(h),
		0, 0, uintptr(w), uintptr(h),
		uintptr(unsafe.Pointer(&bits[0])),
		uintptr(unsafe.Pointer(&hdr)),
		dibRGBColors, srcCopy)
	if r == 0 || uint32(r) == 0xFFFFFFFF {
		return fmt.Errorf("StretchDIBits: %w", callErr)
	}
	return nil
}

func (c *gdiContext) EndPage() error {
	if r, _, callErr := procEndPage.Call(c.hdc); int32(r) <= 0 {
		return fmt.Errorf("EndPage: %w", callErr)
	}
	return nil
}

func (c *gdiContext) EndDoc() error {
	if r, _, callErr := procEndDoc.Call(c.hdc); int32(r) <= 0 {
		return fmt.Errorf("EndDoc: %w", callErr)
	}
	return nil
}

func (c *gdiContext) Close() error {
	if c.hdc == 0 {
		return nil
	}
	r, _, callErr := procDeleteDC.Call(c.hdc)
	c.hdc = 0
	if r == 0 {
		return fmt.Errorf("DeleteDC: %w", callErr)
	}
	return nil
}

func defaultPrinter() (string, error) {
	var size uint32
	procGetDefaultPrinterW.Call(0, uintptr(unsafe.Pointer(&size)))
	if size == 0 {
		return "", errors.New("no default printer")
	}
	buf := make([]uint16, size)
	r, _, callErr := procGetDefaultPrinterW.Call(uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if r == 0 {
		return "", fmt.Errorf("GetDefaultPrinter: %w", callErr)
	}
	return windows.UTF16ToString(buf), nil
}

// winspoolDefaults reads and sets the default printer through winspool
type winspoolDefaults struct{}

// NewSystemDefaultPrinterController returns the winspool controller
func NewSystemDefaultPrinterController() DefaultPrinterController {
	return winspoolDefaults{}
}

func (winspoolDefaults) Default() (string, error) {
	return defaultPrinter()
}

func (winspoolDefaults) SetDefault(name string) error {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	if r, _, callErr := procSetDefaultPrinterW.Call(uintptr(unsafe.Pointer(p))); r == 0 {
		return fmt.Errorf("SetDefaultPrinter %q: %w", name, callErr)
	}
	return nil
}

// shellExecPrinter prints through ShellExecute verbs
type shellExecPrinter struct{}

// NewSystemShellPrinter returns the ShellExecute printer
func NewSystemShellPrinter() ShellPrinter {
	return shellExecPrinter{}
}

func (shellExecPrinter) Print(path string) error {
	return shellExecute("print", path, "")
}

func (shellExecPrinter) PrintTo(path, printer string) error {
	return shellExecute("printto", path, `"`+printer+`"`)
}

func shellExecute(verb, path, args string) error {
	v, err := windows.UTF16PtrFromString(verb)
	if err != nil {
		return err
	}
	f, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	var a *uint16
	if args != "" {
		if a, err = windows.UTF16PtrFromString(args); err != nil {
			return err
		}
	}
	if err := windows.ShellExecute(0, v, f, a, nil, windows.SW_HIDE); err != nil {
		return fmt.Errorf("ShellExecute %s: %w", verb, err)
	}
	return nil
}
