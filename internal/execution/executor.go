package execution

import (
	"context"
	"time"

	"livecheck/internal/domain"
)

// Executor executes cases and returns their results in corpus order
type Executor interface {
	Execute(ctx context.Context, cases []domain.TestCase) ([]domain.Result, time.Duration, error)
}

// ProgressReporter receives a running tally after every finished case
type ProgressReporter interface {
	Update(completed, passed, failed int)
	Finish()
}

// Observer is notified of every finished case, e.g. to record metrics
type Observer func(domain.Result)
