package spooler

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"time"
)

// call is one recorded command invocation
type call struct {
	name string
	args []string
}

// fakeRunner answers commands by program name
type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	results map[string]CommandResult
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]CommandResult{}, errs: map[string]error{}}
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{name: name, args: append([]string(nil), args...)})
	return r.results[name], r.errs[name]
}

func (r *fakeRunner) callsTo(name string) []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call
	for _, c := range r.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// fakeShell records shell verbs
type fakeShell struct {
	prints   []string
	printTos []string
	printErr error
	toErr    error
	// failAfter makes Print fail once it has succeeded this many times
	failAfter int
}

func (s *fakeShell) Print(path string) error {
	if s.printErr != nil {
		return s.printErr
	}
	if s.failAfter > 0 && len(s.prints) >= s.failAfter {
		return errors.New("spooler rejected job")
	}
	s.prints = append(s.prints, path)
	return nil
}

func (s *fakeShell) PrintTo(path, printer string) error {
	if s.toErr != nil {
		return s.toErr
	}
	s.printTos = append(s.printTos, path+"|"+printer)
	return nil
}

// fakeDefaults simulates the OS default printer
type fakeDefaults struct {
	current string
	history []string
	// sticky ignores SetDefault calls until it reaches zero
	sticky int
	setErr error
}

func (d *fakeDefaults) Default() (string, error) {
	return d.current, nil
}

func (d *fakeDefaults) SetDefault(name string) error {
	if d.setErr != nil {
		return d.setErr
	}
	d.history = append(d.history, name)
	if d.sticky > 0 {
		d.sticky--
		return nil
	}
	d.current = name
	return nil
}

// noSleep records requested waits without sleeping
type noSleep struct {
	waits []time.Duration
}

func (s *noSleep) Sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

// fakeDevice records the GDI call sequence
type fakeDevice struct {
	caps     DeviceCaps
	ops      []string
	blits    []image.Rectangle
	failOn   string
	failFrom int
	closed   bool
}

func (d *fakeDevice) step(op string) error {
	d.ops = append(d.ops, op)
	if op == d.failOn && strings.Count(strings.Join(d.ops, ","), op) >= d.failFrom {
		return errors.New(op + " failed")
	}
	return nil
}

func (d *fakeDevice) Caps() (DeviceCaps, error) { return d.caps, nil }
func (d *fakeDevice) StartDoc(string) error { return d.step("StartDoc") }
func (d *fakeDevice) StartPage() error { return d.step("StartPage") }
func (d *fakeDevice) EndPage() error { return d.step("EndPage") }
func (d *fakeDevice) EndDoc() error { return d.step("EndDoc") }
func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDevice) Blit(img *image.NRGBA, x, y int) error {
	d.blits = append(d.blits, img.Bounds().Add(image.Pt(x, y)))
	return d.step("Blit")
}

type fakeOpener struct {
	device  *fakeDevice
	opened  []string
	openErr error
}

func (o *fakeOpener) Open(printer string) (DeviceContext, error) {
	o.opened = append(o.opened, printer)
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.device, nil
}
