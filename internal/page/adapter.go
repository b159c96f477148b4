// Package page binds the automation capability to the two regions of the
// application under test: the editable input and the rendered output.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livecheck/internal/automation"
)

// Regions are the located input and output handles for one case.
type Regions struct {
	Input  automation.Handle
	Output automation.Handle
}

// Adapter opens the target page and locates its regions.
type Adapter struct {
	browser     automation.Capability
	url         string
	input       automation.Selector
	output      automation.Selector
	loadTimeout time.Duration
}

// NewAdapter creates a new Adapter
func NewAdapter(browser automation.Capability, url string, input, output automation.Selector, loadTimeout time.Duration) *Adapter {
	return &Adapter{
		browser:     browser,
		url:         url,
		input:       input,
		output:      output,
		loadTimeout: loadTimeout,
	}
}

// Capability returns the capability the adapter is bound to.
func (a *Adapter) Capability() automation.Capability {
	return a.browser
}

// Open navigates to the target and waits until both regions can be located.
func (a *Adapter) Open(ctx context.Context) error {
	if err := a.browser.Navigate(ctx, a.url); err != nil {
		return fmt.Errorf("open %s: %w", a.url, err)
	}

	var lastErr error
	err := a.browser.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		_, err := a.Bind(ctx)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, automation.ErrNotFound) {
			lastErr = err
			return false, nil
		}
		return false, err
	}, a.loadTimeout)
	if err != nil {
		if errors.Is(err, automation.ErrWaitTimeout) && lastErr != nil {
			return fmt.Errorf("open %s: regions not ready after %s: %w", a.url, a.loadTimeout, lastErr)
		}
		return fmt.Errorf("open %s: %w", a.url, err)
	}
	return nil
}

// Bind locates the input and output regions.
func (a *Adapter) Bind(ctx context.Context) (Regions, error) {
	in, err := a.browser.Locate(ctx, a.input)
	if err != nil {
		return Regions{}, fmt.Errorf("input region: %w", err)
	}
	out, err := a.browser.Locate(ctx, a.output)
	if err != nil {
		return Regions{}, fmt.Errorf("output region: %w", err)
	}
	return Regions{Input: in, Output: out}, nil
}
