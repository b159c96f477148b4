package domain

import "time"

// Result is the outcome of executing a single test case.
type Result struct {
	CaseID        string      `json:"case_id"`
	Name          string      `json:"name"`
	Group         Group       `json:"group"`
	Passed        bool        `json:"passed"`
	Actual        string      `json:"actual_output"`
	Expected      string      `json:"expected_output"`
	ElapsedMs     int64       `json:"elapsed_ms"`
	FailureKind   FailureKind `json:"failure_kind,omitempty"`
	FailureReason string      `json:"failure_reason,omitempty"`
	Diff          string      `json:"diff,omitempty"`
	State         CaseState   `json:"state"`
	Generations   int         `json:"generations"`
	Session       int         `json:"session"`
	Resolved      bool        `json:"resolved,omitempty"` // toggled in the failures viewer
}

// Elapsed returns ElapsedMs as a duration.
func (r Result) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMs) * time.Millisecond
}

// RunReport is the complete output of a run, results in corpus order.
type RunReport struct {
	RunID           string              `json:"run_id"`
	TargetURL       string              `json:"target_url"`
	StartedAt       string              `json:"started_at"`
	Duration        string              `json:"duration"`
	DurationSeconds float64             `json:"duration_seconds"`
	Sessions        int                 `json:"sessions"`
	Total           int                 `json:"total"`
	Passed          int                 `json:"passed"`
	Failed          int                 `json:"failed"`
	FailuresByKind  map[FailureKind]int `json:"failures_by_kind,omitempty"`
	Results         []Result            `json:"results"`
}

// Tally recomputes the aggregate counters from Results.
func (r *RunReport) Tally() {
	r.Total = len(r.Results)
	r.Passed, r.Failed = 0, 0
	r.FailuresByKind = make(map[FailureKind]int)
	for _, res := range r.Results {
		if res.Passed {
			r.Passed++
			continue
		}
		r.Failed++
		r.FailuresByKind[res.FailureKind]++
	}
}

// Failures returns the failed results in report order.
func (r *RunReport) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether every case passed.
func (r *RunReport) OK() bool {
	return r.Failed == 0
}
