package spooler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// CommandResult is the captured output of an external command
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs external programs. Implementations return an error for
// a non-zero exit.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates an ExecRunner
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{logger: logger}
}

// Run executes name with args and captures stdout and stderr
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	r.logger.Debug("executing command", zap.String("name", name), zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, fmt.Errorf("%s exited with %d: %s", name, res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		return res, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

var _ CommandRunner = (*ExecRunner)(nil)
