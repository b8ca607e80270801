package spooler

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// WindowsEnumerator lists printers through PowerShell, then wmic
type WindowsEnumerator struct {
	powershell string
	wmic       string
	runner     CommandRunner
	logger     *zap.Logger
}

// NewWindowsEnumerator creates an enumerator. Empty paths use the programs
// on PATH.
func NewWindowsEnumerator(runner CommandRunner, powershell, wmic string, logger *zap.Logger) *WindowsEnumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	if powershell == "" {
		powershell = "powershell"
	}
	if wmic == "" {
		wmic = "wmic"
	}
	return &WindowsEnumerator{powershell: powershell, wmic: wmic, runner: runner, logger: logger}
}

// Printers never fails: when both sources are empty it returns the single
// default placeholder.
func (e *WindowsEnumerator) Printers(ctx context.Context) []Printer {
	res, err := e.runner.Run(ctx, e.powershell, "-NoProfile", "-NonInteractive", "-Command",
		"Get-Printer | ForEach-Object { $_.Name }")
	if err == nil {
		if printers := windowsPrinters(strings.Split(res.Stdout, "\n"), ""); len(printers) > 0 {
			return printers
		}
	} else {
		e.logger.Debug("Get-Printer failed", zap.Error(err))
	}

	res, err = e.runner.Run(ctx, e.wmic, "printer", "get", "name", "/format:list")
	if err == nil {
		if printers := windowsPrinters(strings.Split(res.Stdout, "\n"), "Name="); len(printers) > 0 {
			return printers
		}
	} else {
		e.logger.Debug("wmic failed", zap.Error(err))
	}

	e.logger.Warn("no printers enumerated, reporting the default printer only")
	return []Printer{DefaultPrinterEntry()}
}

// windowsPrinters builds entries from output lines. With a prefix only the
// lines carrying it count.
func windowsPrinters(lines []string, prefix string) []Printer {
	printers := []Printer{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if prefix != "" {
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
		if line == "" {
			continue
		}
		printers = append(printers, Printer{Name: line, Status: StatusAvailable, Description: "Windows printer"})
	}
	return printers
}
