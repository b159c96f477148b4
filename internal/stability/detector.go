// Package stability decides when a debounced, asynchronously rendered output
// region has finished updating.
package stability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"livecheck/internal/automation"
	"livecheck/internal/domain"
)

// TimeoutError reports a stability wait that exhausted its budget.
type TimeoutError struct {
	Prior    string
	LastSeen string
	// Updated is set when the output moved away from Prior but never held still.
	Updated bool
	Waited  time.Duration
	Samples int
}

func (e *TimeoutError) Error() string {
	if e.Updated {
		return fmt.Sprintf("output did not settle within %s (%d samples, last %q)", e.Waited.Round(time.Millisecond), e.Samples, e.LastSeen)
	}
	return fmt.Sprintf("output did not update within %s (%d samples, still %q)", e.Waited.Round(time.Millisecond), e.Samples, e.LastSeen)
}

func (e *TimeoutError) Unwrap() error {
	return automation.ErrWaitTimeout
}

// Kind distinguishes an unresponsive output from one that never settled.
func (e *TimeoutError) Kind() domain.FailureKind {
	if e.Updated {
		return domain.FailureUnsettled
	}
	return domain.FailureNoUpdate
}

// Detector samples an output region through the capability's WaitUntil.
type Detector struct {
	browser    automation.Capability
	quiescence time.Duration
	logger     *slog.Logger
}

// NewDetector creates a Detector. quiescence is how long the text must stay
// unchanged across consecutive samples before it is considered settled.
func NewDetector(browser automation.Capability, quiescence time.Duration, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{browser: browser, quiescence: quiescence, logger: logger}
}

// Quiescence returns the settle window.
func (d *Detector) Quiescence() time.Duration {
	return d.quiescence
}

// AwaitStable blocks until the output has been updated away from prior and
// then held the same non-blank text for the quiescence window. It never
// returns a transient read.
func (d *Detector) AwaitStable(ctx context.Context, out automation.Handle, prior string, timeout time.Duration) (string, error) {
	var (
		samples    int
		updated    bool
		moved      bool
		last       string
		lastChange time.Time
	)
	start := time.Now()
	err := d.browser.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		text, err := d.browser.ReadText(ctx, out)
		if err != nil {
			return false, err
		}
		samples++
		now := time.Now()
		switch {
		case !fresh(text, prior):
			// Blank or back at the prior snapshot: wait for a new update.
			last = text
			updated = false
		case !updated || text != last:
			// First update, or a re-render landed mid-transition; restart the settle window.
			last = text
			updated = true
			moved = true
			lastChange = now
		}
		return updated && now.Sub(lastChange) >= d.quiescence, nil
	}, timeout)

	waited := time.Since(start)
	if err != nil {
		if errors.Is(err, automation.ErrWaitTimeout) {
			return last, &TimeoutError{Prior: prior, LastSeen: last, Updated: moved, Waited: waited, Samples: samples}
		}
		return last, err
	}
	d.logger.Debug("output stable", "samples", samples, "waited", waited, "text", last)
	return last, nil
}

// fresh reports whether text is visible output other than prior.
func fresh(text, prior string) bool {
	return strings.TrimSpace(text) != "" && text != prior
}

// AwaitChange blocks until the output is non-empty and differs from prior,
// without waiting for it to settle. It is the live-update probe used while
// typing is still in progress.
func (d *Detector) AwaitChange(ctx context.Context, out automation.Handle, prior string, timeout time.Duration) (string, error) {
	var (
		samples int
		last    string
	)
	start := time.Now()
	err := d.browser.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		text, err := d.browser.ReadText(ctx, out)
		if err != nil {
			return false, err
		}
		samples++
		last = text
		return fresh(text, prior), nil
	}, timeout)
	if err != nil {
		if errors.Is(err, automation.ErrWaitTimeout) {
			return last, &TimeoutError{Prior: prior, LastSeen: last, Waited: time.Since(start), Samples: samples}
		}
		return last, err
	}
	return last, nil
}

// AwaitValue blocks until the output reads want and keeps reading want for
// the quiescence window. On timeout it returns the last text seen.
func (d *Detector) AwaitValue(ctx context.Context, out automation.Handle, want string, timeout time.Duration) (string, error) {
	var (
		samples int
		last    string
		since   time.Time
	)
	start := time.Now()
	err := d.browser.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		text, err := d.browser.ReadText(ctx, out)
		if err != nil {
			return false, err
		}
		samples++
		now := time.Now()
		if text != want {
			since = time.Time{}
		} else if since.IsZero() {
			since = now
		}
		last = text
		return !since.IsZero() && now.Sub(since) >= d.quiescence, nil
	}, timeout)
	if err != nil {
		if errors.Is(err, automation.ErrWaitTimeout) {
			return last, &TimeoutError{Prior: want, LastSeen: last, Updated: last != want, Waited: time.Since(start), Samples: samples}
		}
		return last, err
	}
	return last, nil
}
