package spooler

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned by Windows-only facilities on other systems
	ErrUnsupportedPlatform = errors.New("spooler: not supported on this platform")
	// ErrAllStrategiesFailed means every dispatch strategy for a job failed
	ErrAllStrategiesFailed = errors.New("spooler: all print strategies failed")
	// ErrInvalidJob is returned for a job without a file or with a bad copy count
	ErrInvalidJob = errors.New("spooler: invalid print job")
	// ErrUnknownBackend is returned for an unrecognized backend name
	ErrUnknownBackend = errors.New("spooler: unknown backend")
)

// DispatchError describes a failed print job
type DispatchError struct {
	Backend string
	Printer string
	Cause   error
}

func (e *DispatchError) Error() string {
	printer := e.Printer
	if printer == "" {
		printer = "default"
	}
	return fmt.Sprintf("%s: print to %q failed: %v", e.Backend, printer, e.Cause)
}

func (e *DispatchError) Unwrap() error {
	return e.Cause
}
