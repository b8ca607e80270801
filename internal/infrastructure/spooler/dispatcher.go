package spooler

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Role says what a backend prints
type Role int

const (
	// RoleLabel is the compact weight label
	RoleLabel Role = iota
	// RoleDocument is the A4 production sheet
	RoleDocument
)

func (r Role) String() string {
	if r == RoleLabel {
		return "label"
	}
	return "document"
}

// ResolveBackend maps a configured backend name to a concrete one. auto
// selects CUPS off Windows and the raster or vector Windows backend by role.
func ResolveBackend(name string, role Role, goos string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", BackendAuto:
		if goos != "windows" {
			return BackendCups, nil
		}
		if role == RoleLabel {
			return BackendWindowsRaster, nil
		}
		return BackendWindowsVector, nil
	case BackendCups, BackendWindowsRaster, BackendWindowsVector:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// BackendFactory builds backends from their configurations
type BackendFactory struct {
	Cups          CupsConfig
	WindowsVector WindowsVectorConfig
	WindowsRaster WindowsRasterConfig
	// GOOS overrides the platform probe. Default: runtime.GOOS
	GOOS string
}

// New creates the backend configured for a role
func (f BackendFactory) New(name string, role Role) (Backend, error) {
	goos := f.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	resolved, err := ResolveBackend(name, role, goos)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case BackendWindowsRaster:
		return NewWindowsRasterBackend(f.WindowsRaster), nil
	case BackendWindowsVector:
		return NewWindowsVectorBackend(f.WindowsVector), nil
	default:
		return NewCupsBackend(f.Cups), nil
	}
}

// PrinterCache keeps recent printer enumerations
type PrinterCache interface {
	Get(ctx context.Context, key string) ([]Printer, bool)
	Set(ctx context.Context, key string, printers []Printer)
}

// DispatcherConfig wires the dispatcher
type DispatcherConfig struct {
	Label    Backend
	Document Backend
	// Cache is optional
	Cache  PrinterCache
	Logger *zap.Logger
}

// Dispatcher routes labels and documents to their backends
type Dispatcher struct {
	label    Backend
	document Backend
	cache    PrinterCache
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		label:    cfg.Label,
		document: cfg.Document,
		cache:    cfg.Cache,
		logger:   logger,
	}
}

// LabelBackend returns the label backend name
func (d *Dispatcher) LabelBackend() string {
	return d.label.Name()
}

// DocumentBackend returns the document backend name
func (d *Dispatcher) DocumentBackend() string {
	return d.document.Name()
}

// PrintLabel sends a label artifact to the label backend
func (d *Dispatcher) PrintLabel(ctx context.Context, job *Job) error {
	return d.dispatch(ctx, d.label, RoleLabel, job)
}

// PrintDocument sends a document artifact to the document backend
func (d *Dispatcher) PrintDocument(ctx context.Context, job *Job) error {
	return d.dispatch(ctx, d.document, RoleDocument, job)
}

func (d *Dispatcher) dispatch(ctx context.Context, b Backend, role Role, job *Job) error {
	d.logger.Debug("dispatching job",
		zap.String("role", role.String()),
		zap.String("backend", b.Name()),
		zap.String("printer", job.Printer),
		zap.Int("copies", job.Copies))
	return b.Print(ctx, job)
}

// Printers enumerates printers through the document backend, served from
// the cache unless refresh is set. The result is never nil.
func (d *Dispatcher) Printers(ctx context.Context, refresh bool) []Printer {
	key := "printers:" + d.document.Name()
	if d.cache != nil && !refresh {
		if printers, ok := d.cache.Get(ctx, key); ok {
			return printers
		}
	}
	printers := d.document.Printers(ctx)
	if printers == nil {
		printers = []Printer{}
	}
	if d.cache != nil {
		d.cache.Set(ctx, key, printers)
	}
	return printers
}
