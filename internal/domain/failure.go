package domain

// FailureKind tags why a case failed so reports can separate an unresponsive UI
// from a genuine transformation defect.
type FailureKind string

const (
	FailureNone FailureKind = ""
	// FailureTimeout is a stability wait that ran out of budget for an unspecified reason.
	FailureTimeout FailureKind = "timeout"
	// FailureNoUpdate means the output stayed at its prior value for the whole budget.
	FailureNoUpdate FailureKind = "no-update"
	// FailureUnsettled means the output changed but never held still for the quiescence window.
	FailureUnsettled FailureKind = "unsettled"
	// FailureMismatch means the output settled on something other than the expected text.
	FailureMismatch FailureKind = "mismatch"
	// FailureNondeterministic means two isolated runs of the same case settled differently.
	FailureNondeterministic FailureKind = "nondeterministic"
	// FailureNoLiveUpdate means typing a prefix produced no output within the partial window.
	FailureNoLiveUpdate FailureKind = "no-live-update"
	// FailureResidualOutput means clearing the input did not empty the output.
	FailureResidualOutput FailureKind = "residual-output"
	// FailureAutomation is an infrastructure fault in the browser layer.
	FailureAutomation FailureKind = "automation"
	// FailureCanceled means the run was interrupted while the case was in flight.
	FailureCanceled FailureKind = "canceled"
)

// TerminalState maps a failure kind to the state the case ends in.
func (k FailureKind) TerminalState() CaseState {
	switch k {
	case FailureNone:
		return StatePassed
	case FailureTimeout, FailureNoUpdate, FailureUnsettled, FailureNoLiveUpdate:
		return StateTimedOut
	case FailureAutomation, FailureCanceled:
		return StateErrored
	default:
		return StateFailed
	}
}
