package spooler

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CupsConfig configures the CUPS backend
type CupsConfig struct {
	// LpPath is the submit command. Default: lp
	LpPath string
	// LpstatPath is the enumeration command. Default: lpstat
	LpstatPath string
	Runner     CommandRunner
	Logger     *zap.Logger
}

// CupsBackend prints through the CUPS command line tools
type CupsBackend struct {
	lp     string
	lpstat string
	runner CommandRunner
	logger *zap.Logger
}

// NewCupsBackend creates a CUPS backend
func NewCupsBackend(cfg CupsConfig) *CupsBackend {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	b := &CupsBackend{
		lp:     cfg.LpPath,
		lpstat: cfg.LpstatPath,
		runner: runner,
		logger: logger,
	}
	if b.lp == "" {
		b.lp = "lp"
	}
	if b.lpstat == "" {
		b.lpstat = "lpstat"
	}
	return b
}

// Name implements Backend
func (b *CupsBackend) Name() string {
	return BackendCups
}

// Print submits the job with a single lp call. A named printer is resolved
// against lpstat when possible and passed through unchanged otherwise.
func (b *CupsBackend) Print(ctx context.Context, job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	printer := job.Printer
	if printer != "" {
		if match, ok := MatchPrinter(printer, printerNames(b.Printers(ctx))); ok {
			printer = match
		}
	}

	args := make([]string, 0, 5)
	if printer != "" {
		args = append(args, "-d", printer)
	}
	if job.Copies > 1 {
		args = append(args, "-n", strconv.Itoa(job.Copies))
	}
	args = append(args, job.Path)

	res, err := b.runner.Run(ctx, b.lp, args...)
	if err != nil {
		b.logger.Error("lp failed",
			zap.String("printer", printer),
			zap.String("stderr", res.Stderr),
			zap.Error(err))
		return &DispatchError{Backend: b.Name(), Printer: printer, Cause: err}
	}

	b.logger.Info("job submitted",
		zap.String("printer", printer),
		zap.Int("copies", job.Copies),
		zap.String("lp", strings.TrimSpace(res.Stdout)))
	return nil
}

// Printers lists CUPS queues from lpstat -p. A failure yields an empty list.
func (b *CupsBackend) Printers(ctx context.Context) []Printer {
	res, err := b.runner.Run(ctx, b.lpstat, "-p")
	if err != nil {
		b.logger.Warn("printer enumeration failed", zap.Error(err))
		return []Printer{}
	}
	return parseLpstat(res.Stdout)
}

// parseLpstat reads "printer NAME is idle. ..." lines
func parseLpstat(out string) []Printer {
	printers := []Printer{}
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "printer") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		status := StatusBusy
		if strings.Contains(line, "idle") {
			status = StatusAvailable
		}
		printers = append(printers, Printer{
			Name:        fields[1],
			Status:      status,
			Description: "Printer " + fields[1],
		})
	}
	return printers
}

var _ Backend = (*CupsBackend)(nil)
