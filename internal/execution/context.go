package execution

import (
	"fmt"
	"log/slog"
	"time"

	"livecheck/internal/domain"
	"livecheck/internal/page"
)

// ExecutionContext is the transient state of the one case in flight on a
// session. It is created when the case starts and dropped once the case
// reaches a terminal state.
type ExecutionContext struct {
	Case    domain.TestCase
	Regions page.Regions
	// Generation counts injections; every write to the input bumps it.
	Generation int
	// Snapshot is the last output text the case observed.
	Snapshot string
	State    domain.CaseState

	session int
	started time.Time
	logger  *slog.Logger
}

func newExecutionContext(tc domain.TestCase, session int, logger *slog.Logger) *ExecutionContext {
	return &ExecutionContext{
		Case:    tc,
		State:   domain.StatePending,
		session: session,
		started: time.Now(),
		logger:  logger.With("case", tc.ID),
	}
}

// advance moves the case to next.
func (ec *ExecutionContext) advance(next domain.CaseState) error {
	state, err := ec.State.Transition(next)
	if err != nil {
		return err
	}
	ec.State = state
	ec.logger.Debug("case transition", "state", state, "generation", ec.Generation)
	return nil
}

// injected records a write to the input region.
func (ec *ExecutionContext) injected() error {
	ec.Generation++
	return ec.advance(domain.StateInjected)
}

// observe records a read of the output region.
func (ec *ExecutionContext) observe(text string) {
	ec.Snapshot = text
}

func (ec *ExecutionContext) result() domain.Result {
	return domain.Result{
		CaseID:      ec.Case.ID,
		Name:        ec.Case.Name,
		Group:       ec.Case.Group,
		Expected:    ec.Case.Expected,
		ElapsedMs:   time.Since(ec.started).Milliseconds(),
		Generations: ec.Generation,
		Session:     ec.session,
	}
}

// pass finishes the case with a stable output equal to the expected text.
func (ec *ExecutionContext) pass(actual string) domain.Result {
	if err := ec.advance(domain.StatePassed); err != nil {
		return ec.fail(domain.FailureAutomation, err.Error(), "", "")
	}
	res := ec.result()
	res.Passed = true
	res.Actual = actual
	res.State = ec.State
	return res
}

// fail finishes the case with kind. actual must come from a stable read or be empty.
func (ec *ExecutionContext) fail(kind domain.FailureKind, reason, actual, diff string) domain.Result {
	target := kind.TerminalState()
	if err := ec.advance(target); err != nil {
		// Unreachable transitions are bugs in the runner, not in the page.
		reason = fmt.Sprintf("%s (%v)", reason, err)
		ec.State = domain.StateErrored
	}
	res := ec.result()
	res.Actual = actual
	res.FailureKind = kind
	res.FailureReason = reason
	res.Diff = diff
	res.State = ec.State
	ec.logger.Info("case failed", "kind", kind, "state", ec.State, "reason", reason)
	return res
}
