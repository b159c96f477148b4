package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/rivo/uniseg"
)

// ChromeOptions configures browser sessions started by ChromeLauncher.
type ChromeOptions struct {
	Headless     bool
	ExecPath     string
	PollInterval time.Duration
	WindowWidth  int
	WindowHeight int
}

// ChromeLauncher starts one Chrome process per session so sessions share no state.
type ChromeLauncher struct {
	opts   ChromeOptions
	logger *slog.Logger
}

// NewChromeLauncher creates a new ChromeLauncher
func NewChromeLauncher(opts ChromeOptions, logger *slog.Logger) *ChromeLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromeLauncher{opts: opts, logger: logger}
}

// NewSession launches a browser and returns a Capability bound to its first tab.
// The returned func closes the tab and terminates the browser.
func (l *ChromeLauncher) NewSession(ctx context.Context) (Capability, func(), error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", l.opts.Headless))
	if l.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.opts.ExecPath))
	}
	if l.opts.WindowWidth > 0 && l.opts.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(l.opts.WindowWidth, l.opts.WindowHeight))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			l.logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			l.logger.Warn(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)
	closeFn := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// The first Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		closeFn()
		return nil, nil, Wrap("launch", Selector{}, err)
	}

	return &ChromeEngine{ctx: browserCtx, interval: l.opts.PollInterval}, closeFn, nil
}

// ChromeEngine implements Capability on top of a chromedp tab.
type ChromeEngine struct {
	ctx      context.Context
	interval time.Duration
}

type chromeHandle struct {
	sel    Selector
	finder string
}

func (h chromeHandle) Selector() Selector {
	return h.sel
}

// bind derives a context from the tab context that also honors the caller's
// deadline and cancellation.
func (e *ChromeEngine) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(e.ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		cancelParent := cancel
		cancel = func() {
			cancelDeadline()
			cancelParent()
		}
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (e *ChromeEngine) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := e.bind(ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the load event.
func (e *ChromeEngine) Navigate(ctx context.Context, url string) error {
	return Wrap("navigate", Selector{}, e.run(ctx, chromedp.Navigate(url)))
}

// Locate resolves sel against the current document.
func (e *ChromeEngine) Locate(ctx context.Context, sel Selector) (Handle, error) {
	finder := finderJS(sel)
	var found bool
	if err := e.run(ctx, chromedp.Evaluate(finder+` !== null`, &found)); err != nil {
		return nil, Wrap("locate", sel, err)
	}
	if !found {
		return nil, Wrap("locate", sel, ErrNotFound)
	}
	return chromeHandle{sel: sel, finder: finder}, nil
}

func (e *ChromeEngine) handle(h Handle) (chromeHandle, error) {
	ch, ok := h.(chromeHandle)
	if !ok {
		return chromeHandle{}, fmt.Errorf("foreign handle %T", h)
	}
	return ch, nil
}

// ReadText returns the value of form controls and the text content of anything else.
func (e *ChromeEngine) ReadText(ctx context.Context, h Handle) (string, error) {
	ch, err := e.handle(h)
	if err != nil {
		return "", Wrap("read", h.Selector(), err)
	}
	var res struct {
		Found bool   `json:"found"`
		Text  string `json:"text"`
	}
	if err := e.run(ctx, chromedp.Evaluate(readTextJS(ch.finder), &res)); err != nil {
		return "", Wrap("read", ch.sel, err)
	}
	if !res.Found {
		return "", Wrap("read", ch.sel, ErrNotFound)
	}
	return res.Text, nil
}

// Clear empties the element, firing the same events as user input.
func (e *ChromeEngine) Clear(ctx context.Context, h Handle) error {
	return e.setValue(ctx, "clear", h, "")
}

// SetText replaces the element's content in a single operation.
func (e *ChromeEngine) SetText(ctx context.Context, h Handle, text string) error {
	return e.setValue(ctx, "set", h, text)
}

func (e *ChromeEngine) setValue(ctx context.Context, op string, h Handle, text string) error {
	ch, err := e.handle(h)
	if err != nil {
		return Wrap(op, h.Selector(), err)
	}
	var ok bool
	if err := e.run(ctx, chromedp.Evaluate(setValueJS(ch.finder, text), &ok)); err != nil {
		return Wrap(op, ch.sel, err)
	}
	if !ok {
		return Wrap(op, ch.sel, ErrNotFound)
	}
	return nil
}

// TypeText focuses the element, places the caret at the end and sends key
// events one grapheme cluster at a time. Clusters of more than one rune are
// committed with Input.insertText so the page sees a single input event.
func (e *ChromeEngine) TypeText(ctx context.Context, h Handle, text string, delay time.Duration) error {
	ch, err := e.handle(h)
	if err != nil {
		return Wrap("type", h.Selector(), err)
	}
	var ok bool
	if err := e.run(ctx, chromedp.Evaluate(focusEndJS(ch.finder), &ok)); err != nil {
		return Wrap("type", ch.sel, err)
	}
	if !ok {
		return Wrap("type", ch.sel, ErrNotFound)
	}

	gr := uniseg.NewGraphemes(text)
	first := true
	for gr.Next() {
		if !first {
			if err := Sleep(ctx, delay); err != nil {
				return err
			}
		}
		first = false
		if err := e.run(ctx, keystroke(gr.Str())); err != nil {
			return Wrap("type", ch.sel, err)
		}
	}
	return nil
}

func keystroke(cluster string) chromedp.Action {
	if len([]rune(cluster)) == 1 {
		return chromedp.KeyEvent(cluster)
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return input.InsertText(cluster).Do(ctx)
	})
}

// WaitUntil polls pred at the engine's poll interval.
func (e *ChromeEngine) WaitUntil(ctx context.Context, pred Predicate, timeout time.Duration) error {
	return Poll(ctx, e.interval, timeout, pred)
}
