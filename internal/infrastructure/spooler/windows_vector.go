package spooler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultReaderPaths are the PDF reader executables tried for silent printing
var DefaultReaderPaths = []string{
	`C:\Program Files (x86)\Adobe\Acrobat Reader DC\Reader\AcroRd32.exe`,
	`C:\Program Files\Adobe\Acrobat Reader DC\AcrobatReader.exe`,
	`C:\Program Files\Adobe\Acrobat DC\Acrobat\Acrobat.exe`,
}

var (
	errReaderNotFound = errors.New("no PDF reader installed")
	errSwapNotApplied = errors.New("default printer did not change")
)

// swapMu serializes default printer swaps within this process. Other
// processes can still change the default concurrently.
var swapMu sync.Mutex

// WindowsVectorConfig configures the Windows PDF backend
type WindowsVectorConfig struct {
	PowerShellPath string
	WmicPath       string
	ReaderPaths    []string
	// ReaderTimeout bounds the reader launch. Default: 10s
	ReaderTimeout time.Duration
	// EnablePrintTo tries the shell printto verb before swapping defaults
	EnablePrintTo bool
	// SwapSettle is the wait after changing the default. Default: 2s
	SwapSettle time.Duration
	// SwapVerifyRetry is the wait before the second check. Default: 1s
	SwapVerifyRetry time.Duration
	// SwapWait is the dispatch wait before restoring. Default: 5s
	SwapWait time.Duration

	Runner   CommandRunner
	Defaults DefaultPrinterController
	Shell    ShellPrinter
	Sleeper  Sleeper
	// FileExists reports whether a reader executable is installed
	FileExists func(path string) bool
	Logger     *zap.Logger
}

// strategy delivers one copy of a document to a resolved printer
type strategy struct {
	name string
	run  func(ctx context.Context, path, printer string) error
}

// WindowsVectorBackend prints PDFs through a chain of shell strategies
type WindowsVectorBackend struct {
	cfg        WindowsVectorConfig
	runner     CommandRunner
	enumerator *WindowsEnumerator
	sleeper    Sleeper
	fileExists func(string) bool
	logger     *zap.Logger
}

// NewWindowsVectorBackend creates the backend. Nil Defaults or Shell use the
// system implementations.
func NewWindowsVectorBackend(cfg WindowsVectorConfig) *WindowsVectorBackend {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	if cfg.PowerShellPath == "" {
		cfg.PowerShellPath = "powershell"
	}
	if cfg.ReaderPaths == nil {
		cfg.ReaderPaths = DefaultReaderPaths
	}
	if cfg.ReaderTimeout == 0 {
		cfg.ReaderTimeout = 10 * time.Second
	}
	if cfg.SwapSettle == 0 {
		cfg.SwapSettle = 2 * time.Second
	}
	if cfg.SwapVerifyRetry == 0 {
		cfg.SwapVerifyRetry = time.Second
	}
	if cfg.SwapWait == 0 {
		cfg.SwapWait = 5 * time.Second
	}
	if cfg.Defaults == nil {
		cfg.Defaults = NewSystemDefaultPrinterController()
	}
	if cfg.Shell == nil {
		cfg.Shell = NewSystemShellPrinter()
	}
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = ClockSleeper{}
	}
	exists := cfg.FileExists
	if exists == nil {
		exists = func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	return &WindowsVectorBackend{
		cfg:        cfg,
		runner:     runner,
		enumerator: NewWindowsEnumerator(runner, cfg.PowerShellPath, cfg.WmicPath, logger),
		sleeper:    sleeper,
		fileExists: exists,
		logger:     logger,
	}
}

// Name implements Backend
func (b *WindowsVectorBackend) Name() string {
	return BackendWindowsVector
}

// Printers implements Backend
func (b *WindowsVectorBackend) Printers(ctx context.Context) []Printer {
	return b.enumerator.Printers(ctx)
}

// Print tries each strategy in order for the first copy and repeats the one
// that worked for the remaining copies. A failure during the repeats aborts
// the job.
func (b *WindowsVectorBackend) Print(ctx context.Context, job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	target := ""
	if job.Printer != "" {
		match, ok := MatchPrinter(job.Printer, printerNames(b.Printers(ctx)))
		if ok {
			target = match
		} else {
			b.logger.Warn("printer not found, using the default printer", zap.String("requested", job.Printer))
		}
	}

	chain := b.strategies(target)
	var chosen *strategy
	var errs []error
	for i := range chain {
		s := &chain[i]
		if err := s.run(ctx, job.Path, target); err != nil {
			b.logger.Warn("print strategy failed",
				zap.String("strategy", s.name),
				zap.String("printer", target),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		chosen = s
		break
	}
	if chosen == nil {
		return &DispatchError{
			Backend: b.Name(),
			Printer: target,
			Cause:   fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(errs...)),
		}
	}

	for n := 2; n <= job.Copies; n++ {
		if err := chosen.run(ctx, job.Path, target); err != nil {
			b.logger.Error("copy failed, aborting remaining copies",
				zap.String("strategy", chosen.name),
				zap.Int("copy", n),
				zap.Int("copies", job.Copies),
				zap.Error(err))
			return &DispatchError{Backend: b.Name(), Printer: target, Cause: err}
		}
	}

	b.logger.Info("document printed",
		zap.String("strategy", chosen.name),
		zap.String("printer", target),
		zap.Int("copies", job.Copies))
	return nil
}

// strategies returns the delivery chain for a resolved printer. The default
// printer only has the shell print verb.
func (b *WindowsVectorBackend) strategies(printer string) []strategy {
	osDefault := strategy{name: "shell-print", run: b.printDefault}
	if printer == "" {
		return []strategy{osDefault}
	}
	chain := []strategy{{name: "reader", run: b.printWithReader}}
	if b.cfg.EnablePrintTo {
		chain = append(chain, strategy{name: "shell-printto", run: b.printTo})
	}
	return append(chain, strategy{name: "default-swap", run: b.printWithSwap}, osDefault)
}

func (b *WindowsVectorBackend) printWithReader(ctx context.Context, path, printer string) error {
	reader := ""
	for _, candidate := range b.cfg.ReaderPaths {
		if b.fileExists(candidate) {
			reader = candidate
			break
		}
	}
	if reader == "" {
		return errReaderNotFound
	}

	script := fmt.Sprintf("Start-Process -FilePath %s -ArgumentList '/t',%s,%s -WindowStyle Hidden",
		psQuote(reader), psQuote(path), psQuote(printer))

	ctx, cancel := context.WithTimeout(ctx, b.cfg.ReaderTimeout)
	defer cancel()
	_, err := b.runner.Run(ctx, b.cfg.PowerShellPath, "-NoProfile", "-NonInteractive", "-Command", script)
	return err
}

func (b *WindowsVectorBackend) printTo(_ context.Context, path, printer string) error {
	return b.cfg.Shell.PrintTo(path, printer)
}

// printWithSwap makes printer the OS default, prints, and restores the
// previous default.
func (b *WindowsVectorBackend) printWithSwap(ctx context.Context, path, printer string) error {
	swapMu.Lock()
	defer swapMu.Unlock()

	original, err := b.cfg.Defaults.Default()
	if err != nil {
		return fmt.Errorf("read default printer: %w", err)
	}
	if err := b.cfg.Defaults.SetDefault(printer); err != nil {
		return fmt.Errorf("set default printer: %w", err)
	}
	defer func() {
		if err := b.cfg.Defaults.SetDefault(original); err != nil {
			b.logger.Error("failed to restore default printer",
				zap.String("original", original),
				zap.Error(err))
		}
	}()

	if err := b.sleeper.Sleep(ctx, b.cfg.SwapSettle); err != nil {
		return err
	}
	if !b.defaultIs(printer) {
		b.logger.Warn("default printer not applied yet, retrying", zap.String("printer", printer))
		if err := b.cfg.Defaults.SetDefault(printer); err != nil {
			return fmt.Errorf("set default printer: %w", err)
		}
		if err := b.sleeper.Sleep(ctx, b.cfg.SwapVerifyRetry); err != nil {
			return err
		}
		if !b.defaultIs(printer) {
			return errSwapNotApplied
		}
	}

	if err := b.cfg.Shell.Print(path); err != nil {
		return err
	}
	return b.sleeper.Sleep(ctx, b.cfg.SwapWait)
}

func (b *WindowsVectorBackend) defaultIs(printer string) bool {
	current, err := b.cfg.Defaults.Default()
	return err == nil && current == printer
}

func (b *WindowsVectorBackend) printDefault(_ context.Context, path, _ string) error {
	return b.cfg.Shell.Print(path)
}

// psQuote wraps s in a PowerShell single-quoted literal
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var _ Backend = (*WindowsVectorBackend)(nil)
