package spooler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type vectorFixture struct {
	runner   *fakeRunner
	shell    *fakeShell
	defaults *fakeDefaults
	sleeper  *noSleep
	logs     *observer.ObservedLogs
	backend  *WindowsVectorBackend
}

func newVectorFixture(readerInstalled, printTo bool) *vectorFixture {
	core, logs := observer.New(zap.DebugLevel)
	f := &vectorFixture{
		runner:   newFakeRunner(),
		shell:    &fakeShell{},
		defaults: &fakeDefaults{current: "Office"},
		sleeper:  &noSleep{},
		logs:     logs,
	}
	f.runner.results["wmic"] = CommandResult{Stdout: "Name=Office\r\nName=Zebra ZD420\r\n"}
	f.backend = NewWindowsVectorBackend(WindowsVectorConfig{
		Runner:        f.runner,
		Shell:         f.shell,
		Defaults:      f.defaults,
		Sleeper:       f.sleeper,
		EnablePrintTo: printTo,
		FileExists:    func(string) bool { return readerInstalled },
		Logger:        zap.New(core),
	})
	return f
}

// readerFails makes the PowerShell launch fail; enumeration then comes from wmic
func (f *vectorFixture) readerFails() {
	f.runner.errs["powershell"] = errors.New("powershell exited with 1")
}

func TestWindowsVector_ReaderFirst(t *testing.T) {
	f := newVectorFixture(true, true)
	f.runner.results["powershell"] = CommandResult{Stdout: "Office\r\nZebra ZD420\r\n"}

	job := &Job{Path: `C:\tmp\it's.pdf`, Printer: "zebra", Copies: 2}
	require.NoError(t, f.backend.Print(context.Background(), job))

	calls := f.runner.callsTo("powershell")
	require.Len(t, calls, 3, "one enumeration and one launch per copy")
	script := calls[1].args[len(calls[1].args)-1]
	assert.Contains(t, script, "'/t'")
	assert.Contains(t, script, `'C:\tmp\it''s.pdf'`)
	assert.Contains(t, script, "'Zebra ZD420'")
	assert.Contains(t, script, "AcroRd32.exe")
	assert.Empty(t, f.shell.printTos)
	assert.Empty(t, f.defaults.history)
}

func TestWindowsVector_PrintToBeforeSwap(t *testing.T) {
	f := newVectorFixture(false, true)

	require.NoError(t, f.backend.Print(context.Background(), &Job{Path: "a.pdf", Printer: "Zebra", Copies: 2}))

	assert.Equal(t, []string{"a.pdf|Zebra ZD420", "a.pdf|Zebra ZD420"}, f.shell.printTos)
	assert.Empty(t, f.defaults.history)
	assert.Equal(t, 1, f.logs.FilterMessage("print strategy failed").Len())
}

func TestWindowsVector_DefaultSwap(t *testing.T) {
	f := newVectorFixture(true, false)
	f.readerFails()

	require.NoError(t, f.backend.Print(context.Background(), &Job{Path: "a.pdf", Printer: "zebra zd420", Copies: 1}))

	assert.Equal(t, []string{"Zebra ZD420", "Office"}, f.defaults.history)
	assert.Equal(t, "Office", f.defaults.current, "original default restored")
	assert.Equal(t, []string{"a.pdf"}, f.shell.prints)
	assert.Equal(t, []time.Duration{2 * time.Second, 5 * time.Second}, f.sleeper.waits)
}

func TestWindowsVector_SwapRetriesOnce(t *testing.T) {
	f := newVectorFixture(false, false)
	f.defaults.sticky = 1

	require.NoError(t, f.backend.Print(context.Background(), &Job{Path: "a.pdf", Printer: "Zebra ZD420", Copies: 1}))

	assert.Equal(t, []string{"Zebra ZD420", "Zebra ZD420", "Office"}, f.defaults.history)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Second, 5 * time.Second}, f.sleeper.waits)
	assert.Equal(t, 1, f.logs.FilterMessage("default printer not applied yet, retrying").Len())
}

func TestWindowsVector_SwapFailsFallsBackToDefault(t *testing.T) {
	f := newVectorFixture(false, false)
	f.defaults.sticky = 10

	require.NoError(t, f.backend.Print(context.Background(), &Job{Path: "a.pdf", Printer: "Zebra ZD420", Copies: 1}))

	assert.Equal(t, "Office", f.defaults.current)
	assert.Equal(t, []string{"a.pdf"}, f.shell.prints, "printed once by the OS default strategy")
	entries := f.logs.FilterMessage("print strategy failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "reader", entries[0].ContextMap()["strategy"])
	assert.Equal(t, "default-swap", entries[1].ContextMap()["strategy"])
}

func TestWindowsVector_UnresolvedPrinterUsesDefault(t *testing.T) {
	f := newVectorFixture(true, true)
	f.readerFails()

	require.NoError(t, f.backend.Print(context.Background(), &Job{Path: "a.pdf", Printer: "Brother", Copies: 2}))

	assert.Equal(t, []string{"a.pdf", "a.pdf"}, f.shell.prints)
	assert.Empty(t, f.shell.printTos)
	assert.Len(t, f.runner.callsTo("powershell"), 1, "only the enumeration attempt")
	assert.Equal(t, 1, f.logs.FilterMessage("printer not found, using the default printer").Len())
}

func TestWindowsVector_AllStrategiesFail(t *testing.T) {
	f := newVectorFixture(false, true)
	f.shell.toErr = errors.New("no association")
	f.shell.printErr = errors.New("no association")
	f.defaults.setErr = errors.New("access denied")

	err := f.backend.Print(context.Background(), &Job{Path: "a.pdf", Printer: "Zebra ZD420", Copies: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllStrategiesFailed)
	for _, name := range []string{"reader", "shell-printto", "default-swap", "shell-print"} {
		assert.True(t, strings.Contains(err.Error(), name), "error mentions %s", name)
	}
}

func TestWindowsVector_CopyFailureAborts(t *testing.T) {
	f := newVectorFixture(false, false)
	f.shell.failAfter = 2

	err := f.backend.Print(context.Background(), &Job{Path: "a.pdf", Copies: 5})
	require.Error(t, err)
	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.NotErrorIs(t, err, ErrAllStrategiesFailed)
	assert.Len(t, f.shell.prints, 2)
}

func TestPsQuote(t *testing.T) {
	assert.Equal(t, "'plain'", psQuote("plain"))
	assert.Equal(t, "'O''Brien''s'", psQuote("O'Brien's"))
}
