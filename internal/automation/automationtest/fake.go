// Package automationtest provides an in-memory automation.Capability that
// simulates a debounced live-transformation page, for engine-free tests.
package automationtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rivo/uniseg"

	"livecheck/internal/automation"
)

// Fake simulates a page with one input region and one output region. Every
// input event restarts a debounce timer; when it fires the output is set to
// Transform(input).
type Fake struct {
	InputSelector  automation.Selector
	OutputSelector automation.Selector

	Transform func(string) string
	Debounce  time.Duration
	Interval  time.Duration

	// Intermediate, when set, is rendered halfway through the debounce window.
	Intermediate func(string) string
	// Flicker keeps re-rendering the output with a changing suffix at this period.
	Flicker time.Duration
	// Frozen disables rendering entirely.
	Frozen bool
	// Sticky keeps the last output when the input is cleared.
	Sticky bool

	NavigateErr error
	ReadErr     error
	Missing     map[string]bool

	mu       sync.Mutex
	input    string
	output   string
	timers   []*time.Timer
	flickers int
	stop     chan struct{}
	calls    []string
	renders  int
}

// New returns a Fake whose output mirrors transform with the given debounce.
func New(in, out automation.Selector, transform func(string) string, debounce time.Duration) *Fake {
	return &Fake{
		InputSelector:  in,
		OutputSelector: out,
		Transform:      transform,
		Debounce:       debounce,
		Interval:       5 * time.Millisecond,
		Missing:        map[string]bool{},
	}
}

type handle struct {
	sel    automation.Selector
	output bool
}

func (h handle) Selector() automation.Selector {
	return h.sel
}

func (f *Fake) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded capability calls.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Renders returns how many debounced renders have landed.
func (f *Fake) Renders() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders
}

// Input returns the current input text.
func (f *Fake) Input() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// SetOutput forces the output text, as if stale content were left on the page.
func (f *Fake) SetOutput(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.output = s
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("navigate %s", url)
	if f.NavigateErr != nil {
		return automation.Wrap("navigate", automation.Selector{}, f.NavigateErr)
	}
	return nil
}

func (f *Fake) Locate(ctx context.Context, sel automation.Selector) (automation.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("locate %s", sel)
	if f.Missing[sel.String()] {
		return nil, automation.Wrap("locate", sel, automation.ErrNotFound)
	}
	switch sel {
	case f.InputSelector:
		return handle{sel: sel}, nil
	case f.OutputSelector:
		return handle{sel: sel, output: true}, nil
	}
	return nil, automation.Wrap("locate", sel, automation.ErrNotFound)
}

func (f *Fake) ReadText(ctx context.Context, h automation.Handle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return "", automation.Wrap("read", h.Selector(), f.ReadErr)
	}
	if h.(handle).output {
		return f.output, nil
	}
	return f.input, nil
}

func (f *Fake) Clear(ctx context.Context, h automation.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("clear")
	f.input = ""
	f.changed()
	return nil
}

func (f *Fake) SetText(ctx context.Context, h automation.Handle, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set %s", text)
	f.input = text
	f.changed()
	return nil
}

func (f *Fake) TypeText(ctx context.Context, h automation.Handle, text string, delay time.Duration) error {
	f.mu.Lock()
	f.record("type %s", text)
	f.mu.Unlock()

	gr := uniseg.NewGraphemes(text)
	first := true
	for gr.Next() {
		if !first {
			if err := automation.Sleep(ctx, delay); err != nil {
				return err
			}
		}
		first = false
		f.mu.Lock()
		f.input += gr.Str()
		f.changed()
		f.mu.Unlock()
	}
	return nil
}

func (f *Fake) WaitUntil(ctx context.Context, pred automation.Predicate, timeout time.Duration) error {
	return automation.Poll(ctx, f.Interval, timeout, pred)
}

// changed restarts the debounce timers. Callers hold f.mu.
func (f *Fake) changed() {
	for _, t := range f.timers {
		t.Stop()
	}
	f.timers = f.timers[:0]
	f.stopFlicker()
	if f.Frozen {
		return
	}
	input := f.input
	if input == "" && !f.Sticky {
		// Clearing empties the output after the debounce like any other edit.
		f.timers = append(f.timers, time.AfterFunc(f.Debounce, func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.input == "" {
				f.output = ""
			}
		}))
		return
	}
	if input == "" {
		return
	}
	if f.Intermediate != nil {
		f.timers = append(f.timers, time.AfterFunc(f.Debounce/2, func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.input == input {
				f.output = f.Intermediate(input)
			}
		}))
	}
	f.timers = append(f.timers, time.AfterFunc(f.Debounce, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.input != input {
			return
		}
		f.output = f.Transform(input)
		f.renders++
		if f.Flicker > 0 {
			f.startFlicker(f.output)
		}
	}))
}

// startFlicker re-renders the output forever until the next input event. Callers hold f.mu.
func (f *Fake) startFlicker(base string) {
	stop := make(chan struct{})
	f.stop = stop
	go func() {
		t := time.NewTicker(f.Flicker)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				f.mu.Lock()
				f.flickers++
				f.output = fmt.Sprintf("%s#%d", base, f.flickers)
				f.mu.Unlock()
			}
		}
	}()
}

func (f *Fake) stopFlicker() {
	if f.stop != nil {
		close(f.stop)
		f.stop = nil
	}
}

// Close stops pending timers.
func (f *Fake) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		t.Stop()
	}
	f.timers = nil
	f.stopFlicker()
}

// Launcher hands out Fakes built by New.
type Launcher struct {
	New      func() *Fake
	SetupErr error

	mu       sync.Mutex
	sessions []*Fake
}

// NewSession implements automation.Launcher.
func (l *Launcher) NewSession(ctx context.Context) (automation.Capability, func(), error) {
	if l.SetupErr != nil {
		return nil, nil, automation.Wrap("launch", automation.Selector{}, l.SetupErr)
	}
	f := l.New()
	l.mu.Lock()
	l.sessions = append(l.sessions, f)
	l.mu.Unlock()
	return f, f.Close, nil
}

// Sessions returns the fakes created so far.
func (l *Launcher) Sessions() []*Fake {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Fake(nil), l.sessions...)
}
