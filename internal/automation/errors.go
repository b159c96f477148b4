package automation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a selector matches no element.
	ErrNotFound = errors.New("element not found")
	// ErrWaitTimeout is returned when a WaitUntil budget is exhausted.
	ErrWaitTimeout = errors.New("wait timed out")
)

// Error is an infrastructure failure of the underlying automation engine.
type Error struct {
	Op       string
	Selector string
	Err      error
}

func (e *Error) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("automation %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("automation %s %s: %v", e.Op, e.Selector, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error for op, or returns nil when err is nil.
func Wrap(op string, sel Selector, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Op: op, Selector: sel.String(), Err: err}
}

// IsAutomation reports whether err originated in the automation layer.
func IsAutomation(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}
