package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"livecheck/internal/automation"
	"livecheck/internal/compare"
	"livecheck/internal/config"
	"livecheck/internal/corpus"
	"livecheck/internal/domain"
	"livecheck/internal/page"
	"livecheck/internal/sequencer"
	"livecheck/internal/stability"
)

// Timing holds the budgets a Runner waits with.
type Timing struct {
	Translation    time.Duration
	InterCasePause time.Duration
	PartialWindow  time.Duration
	TypingDelay    time.Duration
}

// TimingFromConfig extracts the runner budgets from cfg.
func TimingFromConfig(cfg *config.Config) Timing {
	return Timing{
		Translation:    cfg.TranslationTimeout,
		InterCasePause: cfg.InterCasePause,
		PartialWindow:  cfg.PartialWindow,
		TypingDelay:    cfg.TypingDelay,
	}
}

// Runner executes cases one after another on a single browser session.
type Runner struct {
	adapter   *page.Adapter
	sequencer *sequencer.Sequencer
	detector  *stability.Detector
	timing    Timing
	verify    bool
	session   int
	logger    *slog.Logger
}

// NewRunner creates a new Runner
func NewRunner(adapter *page.Adapter, seq *sequencer.Sequencer, detector *stability.Detector, timing Timing, verifyIdempotence bool, session int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		adapter:   adapter,
		sequencer: seq,
		detector:  detector,
		timing:    timing,
		verify:    verifyIdempotence,
		session:   session,
		logger:    logger.With("session", session),
	}
}

// newSessionRunner wires a Runner for browser the way cfg describes.
func newSessionRunner(browser automation.Capability, cfg *config.Config, in, out automation.Selector, session int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	scoped := logger.With("session", session)
	detector := stability.NewDetector(browser, cfg.Quiescence, scoped)
	seq := sequencer.New(browser, detector, cfg.PostClearSettle, cfg.StrictIsolation, scoped)
	adapter := page.NewAdapter(browser, cfg.TargetURL, in, out, cfg.PageLoad)
	return NewRunner(adapter, seq, detector, TimingFromConfig(cfg), cfg.VerifyIdempotence, session, logger)
}

// Open loads the target page. A failure here is fatal to the session.
func (r *Runner) Open(ctx context.Context) error {
	return r.adapter.Open(ctx)
}

// Run executes cases in order, pausing between them. It never stops on a
// failed case; it stops only when ctx is done, in which case the results
// gathered so far are returned together with the context error.
func (r *Runner) Run(ctx context.Context, cases []domain.TestCase, done func(int, domain.Result)) ([]domain.Result, error) {
	results := make([]domain.Result, 0, len(cases))
	for i, tc := range cases {
		if i > 0 {
			if err := automation.Sleep(ctx, r.timing.InterCasePause); err != nil {
				return results, err
			}
		}
		res := r.RunCase(ctx, tc)
		results = append(results, res)
		if done != nil {
			done(i, res)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// RunCase drives one case from pending to a terminal state.
func (r *Runner) RunCase(ctx context.Context, tc domain.TestCase) domain.Result {
	ec := newExecutionContext(tc, r.session, r.logger)

	regions, err := r.adapter.Bind(ctx)
	if err != nil {
		return r.failWith(ctx, ec, err)
	}
	ec.Regions = regions

	if tc.Interactive() {
		return r.runInteractive(ctx, ec)
	}
	return r.runFull(ctx, ec)
}

// runFull writes the whole input at once and waits for the settled output.
func (r *Runner) runFull(ctx context.Context, ec *ExecutionContext) domain.Result {
	actual, err := r.injectAndAwait(ctx, ec)
	if err != nil {
		return r.failWith(ctx, ec, err)
	}

	if r.verify {
		again, err := r.injectAndAwait(ctx, ec)
		if err != nil {
			return r.failWith(ctx, ec, fmt.Errorf("idempotence run: %w", err))
		}
		if again != actual {
			return ec.fail(domain.FailureNondeterministic,
				fmt.Sprintf("same input settled on %q, then on %q", actual, again),
				actual, compare.Diff(actual, again))
		}
	}
	return r.judge(ec, actual)
}

func (r *Runner) injectAndAwait(ctx context.Context, ec *ExecutionContext) (string, error) {
	baseline, err := r.sequencer.SetFull(ctx, ec.Regions, ec.Case.Input)
	if err != nil {
		return "", err
	}
	ec.observe(baseline)
	if err := ec.advance(domain.StateCleared); err != nil {
		return "", err
	}
	if err := ec.injected(); err != nil {
		return "", err
	}
	if err := ec.advance(domain.StateAwaitingStability); err != nil {
		return "", err
	}

	actual, err := r.detector.AwaitStable(ctx, ec.Regions.Output, baseline, r.timing.Translation)
	if err != nil {
		return "", err
	}
	ec.observe(actual)
	return actual, nil
}

// runInteractive types the partial input, requires a live update while the
// input is still incomplete, then finishes typing and checks the final output.
func (r *Runner) runInteractive(ctx context.Context, ec *ExecutionContext) domain.Result {
	tc := ec.Case
	baseline, err := r.sequencer.TypeIncremental(ctx, ec.Regions, tc.PartialInput, r.timing.TypingDelay)
	if err != nil {
		return r.failWith(ctx, ec, err)
	}
	ec.observe(baseline)
	for _, step := range []func() error{
		func() error { return ec.advance(domain.StateCleared) },
		ec.injected,
		func() error { return ec.advance(domain.StateAwaitingStability) },
	} {
		if err := step(); err != nil {
			return r.failWith(ctx, ec, err)
		}
	}

	partial, err := r.detector.AwaitChange(ctx, ec.Regions.Output, baseline, r.timing.PartialWindow)
	if err != nil {
		var te *stability.TimeoutError
		if errors.As(err, &te) {
			return ec.fail(domain.FailureNoLiveUpdate,
				fmt.Sprintf("no output while typing %q: %v", tc.PartialInput, err), "", "")
		}
		return r.failWith(ctx, ec, err)
	}
	ec.observe(partial)
	ec.logger.Debug("live update observed", "partial", partial)

	if err := ec.injected(); err != nil {
		return r.failWith(ctx, ec, err)
	}
	if err := r.sequencer.Continue(ctx, ec.Regions, corpus.Suffix(tc), r.timing.TypingDelay); err != nil {
		return r.failWith(ctx, ec, err)
	}
	if err := ec.advance(domain.StateAwaitingStability); err != nil {
		return r.failWith(ctx, ec, err)
	}

	actual, err := r.detector.AwaitStable(ctx, ec.Regions.Output, partial, r.timing.Translation)
	if err != nil {
		return r.failWith(ctx, ec, err)
	}
	ec.observe(actual)
	return r.judge(ec, actual)
}

func (r *Runner) judge(ec *ExecutionContext, actual string) domain.Result {
	outcome := compare.Compare(actual, ec.Case.Expected)
	if outcome.Equal {
		return ec.pass(actual)
	}
	reason := fmt.Sprintf("expected %q, got %q", ec.Case.Expected, actual)
	if outcome.NormalizationOnly {
		reason += " (texts differ only in Unicode normalization)"
	}
	return ec.fail(domain.FailureMismatch, reason, actual, outcome.Diff)
}

// failWith finishes the case with the failure kind err maps to.
func (r *Runner) failWith(ctx context.Context, ec *ExecutionContext, err error) domain.Result {
	return ec.fail(Classify(ctx, err), err.Error(), "", "")
}

// Classify maps an error raised while running a case to its failure kind.
func Classify(ctx context.Context, err error) domain.FailureKind {
	var (
		te       *stability.TimeoutError
		residual *sequencer.ResidualOutputError
	)
	switch {
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return domain.FailureCanceled
	case errors.As(err, &te):
		return te.Kind()
	case errors.As(err, &residual):
		return domain.FailureResidualOutput
	case errors.Is(err, automation.ErrWaitTimeout):
		return domain.FailureTimeout
	default:
		return domain.FailureAutomation
	}
}
