package spooler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// inchesPerCm converts label stock to device pixels
const inchesPerCm = 0.393701

// WindowsRasterConfig configures the Windows raster backend
type WindowsRasterConfig struct {
	PowerShellPath string
	WmicPath       string
	Runner         CommandRunner
	Devices        DeviceOpener
	// SourceDPI is the resolution of the artifacts, used when a job carries
	// no physical size. Default: 300
	SourceDPI float64
	Logger    *zap.Logger
}

// WindowsRasterBackend blits PNG labels onto a printer device context
type WindowsRasterBackend struct {
	devices    DeviceOpener
	enumerator *WindowsEnumerator
	sourceDPI  float64
	logger     *zap.Logger
}

// NewWindowsRasterBackend creates the backend. A nil Devices uses GDI.
func NewWindowsRasterBackend(cfg WindowsRasterConfig) *WindowsRasterBackend {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	devices := cfg.Devices
	if devices == nil {
		devices = NewSystemDeviceOpener()
	}
	dpi := cfg.SourceDPI
	if dpi <= 0 {
		dpi = 300
	}
	return &WindowsRasterBackend{
		devices:    devices,
		enumerator: NewWindowsEnumerator(cfg.Runner, cfg.PowerShellPath, cfg.WmicPath, logger),
		sourceDPI:  dpi,
		logger:     logger,
	}
}

// Name implements Backend
func (b *WindowsRasterBackend) Name() string {
	return BackendWindowsRaster
}

// Printers implements Backend
func (b *WindowsRasterBackend) Printers(ctx context.Context) []Printer {
	return b.enumerator.Printers(ctx)
}

// Print scales the image to the physical label size at the printer's
// resolution and blits it at the printable-area origin, one document per copy.
func (b *WindowsRasterBackend) Print(ctx context.Context, job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	src, err := imaging.Open(job.Path)
	if err != nil {
		return &DispatchError{Backend: b.Name(), Printer: job.Printer, Cause: fmt.Errorf("load image: %w", err)}
	}

	target := ""
	if job.Printer != "" {
		if match, ok := MatchPrinter(job.Printer, printerNames(b.Printers(ctx))); ok {
			target = match
		} else {
			b.logger.Warn("printer not found, using the default printer", zap.String("requested", job.Printer))
		}
	}

	dc, err := b.devices.Open(target)
	if err != nil {
		return &DispatchError{Backend: b.Name(), Printer: target, Cause: fmt.Errorf("open device: %w", err)}
	}
	defer func() {
		if err := dc.Close(); err != nil {
			b.logger.Warn("failed to release device context", zap.Error(err))
		}
	}()

	caps, err := dc.Caps()
	if err != nil {
		return &DispatchError{Backend: b.Name(), Printer: target, Cause: fmt.Errorf("query device: %w", err)}
	}

	widthCm, heightCm := job.WidthCm, job.HeightCm
	if widthCm <= 0 || heightCm <= 0 {
		bounds := src.Bounds()
		widthCm = float64(bounds.Dx()) / b.sourceDPI / inchesPerCm
		heightCm = float64(bounds.Dy()) / b.sourceDPI / inchesPerCm
	}
	w, h := FitToPrintable(widthCm, heightCm, caps)
	if w <= 0 || h <= 0 {
		return &DispatchError{Backend: b.Name(), Printer: target, Cause: errors.New("device reports no printable area")}
	}
	scaled := imaging.Resize(src, w, h, imaging.Lanczos)

	docName := filepath.Base(job.Path)
	for n := 1; n <= job.Copies; n++ {
		if err := printPage(dc, docName, scaled); err != nil {
			b.logger.Error("copy failed, aborting remaining copies",
				zap.String("printer", target),
				zap.Int("copy", n),
				zap.Int("copies", job.Copies),
				zap.Error(err))
			return &DispatchError{Backend: b.Name(), Printer: target, Cause: err}
		}
	}

	b.logger.Info("label printed",
		zap.String("printer", target),
		zap.Int("copies", job.Copies),
		zap.Int("width_px", w),
		zap.Int("height_px", h),
		zap.Int("dpi_x", caps.DPIX),
		zap.Int("dpi_y", caps.DPIY))
	return nil
}

// FitToPrintable returns the device pixel size of a label, shrunk with its
// aspect ratio kept when it exceeds the printable area.
func FitToPrintable(widthCm, heightCm float64, caps DeviceCaps) (int, int) {
	w := widthCm * inchesPerCm * float64(caps.DPIX)
	h := heightCm * inchesPerCm * float64(caps.DPIY)
	if caps.PrintableW > 0 && caps.PrintableH > 0 && (w > float64(caps.PrintableW) || h > float64(caps.PrintableH)) {
		ratio := min(float64(caps.PrintableW)/w, float64(caps.PrintableH)/h)
		w *= ratio
		h *= ratio
	}
	return int(w), int(h)
}

// printPage runs one StartDoc..EndDoc cycle
func printPage(dc DeviceContext, docName string, img *image.NRGBA) error {
	if err := dc.StartDoc(docName); err != nil {
		return fmt.Errorf("start document: %w", err)
	}
	if err := dc.StartPage(); err != nil {
		_ = dc.EndDoc()
		return fmt.Errorf("start page: %w", err)
	}
	if err := dc.Blit(img, 0, 0); err != nil {
		_ = dc.EndPage()
		_ = dc.EndDoc()
		return fmt.Errorf("blit: %w", err)
	}
	if err := dc.EndPage(); err != nil {
		_ = dc.EndDoc()
		return fmt.Errorf("end page: %w", err)
	}
	if err := dc.EndDoc(); err != nil {
		return fmt.Errorf("end document: %w", err)
	}
	return nil
}

var _ Backend = (*WindowsRasterBackend)(nil)
