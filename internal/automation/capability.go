// Package automation defines the narrow browser capability the harness core
// depends on, plus the chromedp engine that implements it.
package automation

import (
	"context"
	"time"
)

// Handle is an opaque reference to a located page region.
type Handle interface {
	Selector() Selector
}

// Predicate is polled by WaitUntil until it reports true or fails.
type Predicate func(ctx context.Context) (bool, error)

// Capability is the set of automation primitives the harness consumes.
// Implementations are bound to a single browser session and are not safe
// for concurrent use.
type Capability interface {
	Navigate(ctx context.Context, url string) error
	Locate(ctx context.Context, sel Selector) (Handle, error)
	ReadText(ctx context.Context, h Handle) (string, error)
	Clear(ctx context.Context, h Handle) error
	SetText(ctx context.Context, h Handle, text string) error
	// TypeText dispatches text one grapheme cluster at a time, pausing delay between clusters.
	TypeText(ctx context.Context, h Handle, text string, delay time.Duration) error
	// WaitUntil polls pred until it holds. It returns an error wrapping
	// ErrWaitTimeout when timeout elapses first.
	WaitUntil(ctx context.Context, pred Predicate, timeout time.Duration) error
}

// Launcher opens independent browser sessions.
type Launcher interface {
	NewSession(ctx context.Context) (Capability, func(), error)
}
