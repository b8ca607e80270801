package spooler

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted in configuration
const (
	BackendAuto          = "auto"
	BackendCups          = "cups"
	BackendWindowsRaster = "windows-raster"
	BackendWindowsVector = "windows-vector"
)

// Job is one artifact to print
type Job struct {
	// Path is the artifact file
	Path string
	// Printer is the target queue; empty means the OS default
	Printer string
	Copies  int
	// WidthCm and HeightCm are the physical size of the artifact
	WidthCm  float64
	HeightCm float64
}

// Validate checks the job can be dispatched
func (j *Job) Validate() error {
	if j == nil || j.Path == "" {
		return fmt.Errorf("%w: missing file", ErrInvalidJob)
	}
	if j.Copies < 1 {
		return fmt.Errorf("%w: copies must be at least 1", ErrInvalidJob)
	}
	return nil
}

// Backend sends jobs to a printing subsystem
type Backend interface {
	// Name identifies the backend in logs and status output
	Name() string
	// Print dispatches every copy of the job or returns an error
	Print(ctx context.Context, job *Job) error
	// Printers enumerates queues. It never fails; problems yield an empty
	// or placeholder list.
	Printers(ctx context.Context) []Printer
}

// Sleeper waits between dispatch steps
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockSleeper sleeps on the wall clock and honors cancellation
type ClockSleeper struct{}

// Sleep implements Sleeper
func (ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
