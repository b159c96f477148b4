// Package sequencer injects case input into the page, always starting from a
// cleared and settled output so the previous case cannot leak into the next.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"livecheck/internal/automation"
	"livecheck/internal/page"
	"livecheck/internal/stability"
)

// ResidualOutputError means clearing the input did not drive the output empty.
type ResidualOutputError struct {
	Text   string
	Budget time.Duration
}

func (e *ResidualOutputError) Error() string {
	return fmt.Sprintf("output still %q %s after clearing input", e.Text, e.Budget)
}

// Sequencer writes to the input region.
type Sequencer struct {
	browser  automation.Capability
	detector *stability.Detector
	settle   time.Duration
	strict   bool
	logger   *slog.Logger
}

// New creates a Sequencer. settle bounds the clear-and-settle step; with
// strict set, output that survives the clear fails the injection.
func New(browser automation.Capability, detector *stability.Detector, settle time.Duration, strict bool, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		browser:  browser,
		detector: detector,
		settle:   settle,
		strict:   strict,
		logger:   logger,
	}
}

// ClearAndSettle empties the input and waits for the output to read empty
// for the detector's quiescence window. It returns the baseline snapshot the
// next stability wait must move away from.
func (s *Sequencer) ClearAndSettle(ctx context.Context, r page.Regions) (string, error) {
	if err := s.browser.Clear(ctx, r.Input); err != nil {
		return "", fmt.Errorf("clear input: %w", err)
	}
	baseline, err := s.detector.AwaitValue(ctx, r.Output, "", s.settle)
	if err == nil {
		return baseline, nil
	}
	var te *stability.TimeoutError
	if !errors.As(err, &te) {
		return baseline, fmt.Errorf("settle after clear: %w", err)
	}
	if s.strict {
		return baseline, &ResidualOutputError{Text: baseline, Budget: s.settle}
	}
	s.logger.Warn("output not empty after clear, using it as baseline", "text", baseline)
	return baseline, nil
}

// SetFull clears, settles and writes text in a single operation.
func (s *Sequencer) SetFull(ctx context.Context, r page.Regions, text string) (string, error) {
	baseline, err := s.ClearAndSettle(ctx, r)
	if err != nil {
		return baseline, err
	}
	if err := s.browser.SetText(ctx, r.Input, text); err != nil {
		return baseline, fmt.Errorf("set input: %w", err)
	}
	return baseline, nil
}

// TypeIncremental clears, settles and types text one character at a time.
func (s *Sequencer) TypeIncremental(ctx context.Context, r page.Regions, text string, perChar time.Duration) (string, error) {
	baseline, err := s.ClearAndSettle(ctx, r)
	if err != nil {
		return baseline, err
	}
	if err := s.browser.TypeText(ctx, r.Input, text, perChar); err != nil {
		return baseline, fmt.Errorf("type input: %w", err)
	}
	return baseline, nil
}

// Continue types more text after what is already in the input, without clearing.
func (s *Sequencer) Continue(ctx context.Context, r page.Regions, suffix string, perChar time.Duration) error {
	if err := s.browser.TypeText(ctx, r.Input, suffix, perChar); err != nil {
		return fmt.Errorf("continue typing: %w", err)
	}
	return nil
}
