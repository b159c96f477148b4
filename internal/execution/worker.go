package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"livecheck/internal/automation"
	"livecheck/internal/config"
	"livecheck/internal/domain"
)

var _ Executor = (*WorkerPool)(nil)

// WorkerPool runs the corpus on one or more independent browser sessions.
type WorkerPool struct {
	config    *config.Config
	launcher  automation.Launcher
	scheduler Scheduler
	input     automation.Selector
	output    automation.Selector
	progress  ProgressReporter
	observers []Observer
	logger    *slog.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, launcher automation.Launcher, scheduler Scheduler, logger *slog.Logger) (*WorkerPool, error) {
	in, err := automation.ParseSelector(cfg.InputSelector)
	if err != nil {
		return nil, fmt.Errorf("input selector: %w", err)
	}
	out, err := automation.ParseSelector(cfg.OutputSelector)
	if err != nil {
		return nil, fmt.Errorf("output selector: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		config:    cfg,
		launcher:  launcher,
		scheduler: scheduler,
		input:     in,
		output:    out.WithExclude(cfg.OutputExclude),
		logger:    logger,
	}, nil
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress ProgressReporter) {
	wp.progress = progress
}

// AddObserver registers fn to be called after every finished case.
func (wp *WorkerPool) AddObserver(fn Observer) {
	wp.observers = append(wp.observers, fn)
}

// Execute runs cases and returns their results in corpus order. Cases
// never stop the run; a session that cannot open the target page does,
// and so does cancellation of ctx. In both cases the results finished so
// far are returned along with the error.
func (wp *WorkerPool) Execute(ctx context.Context, cases []domain.TestCase) ([]domain.Result, time.Duration, error) {
	if len(cases) == 0 {
		return nil, 0, nil
	}

	startTime := time.Now()
	shards := wp.scheduler.Schedule(len(cases), wp.config.Sessions)
	slots := make([]*domain.Result, len(cases))

	var mu sync.Mutex
	var completed, passed, failed int
	record := func(index int, res domain.Result) {
		mu.Lock()
		defer mu.Unlock()
		slots[index] = &res
		completed++
		if res.Passed {
			passed++
		} else {
			failed++
		}
		if wp.progress != nil {
			wp.progress.Update(completed, passed, failed)
		}
		for _, fn := range wp.observers {
			fn(res)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		shard := shard
		session := i + 1
		g.Go(func() error {
			return wp.runSession(gctx, session, cases, shard, record)
		})
	}
	err := g.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	results := make([]domain.Result, 0, len(cases))
	for _, res := range slots {
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, time.Since(startTime), err
}

func (wp *WorkerPool) runSession(ctx context.Context, session int, cases []domain.TestCase, shard []int, record func(int, domain.Result)) error {
	logger := wp.logger.With("session", session)

	browser, closeSession, err := wp.launcher.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("session %d: %w", session, err)
	}
	defer closeSession()

	runner := newSessionRunner(browser, wp.config, wp.input, wp.output, session, wp.logger)
	if err := runner.Open(ctx); err != nil {
		return fmt.Errorf("session %d: %w", session, err)
	}
	logger.Info("session ready", "cases", len(shard))

	own := make([]domain.TestCase, len(shard))
	for i, idx := range shard {
		own[i] = cases[idx]
	}
	_, err = runner.Run(ctx, own, func(i int, res domain.Result) {
		record(shard[i], res)
	})
	if err != nil {
		return fmt.Errorf("session %d: %w", session, err)
	}
	return nil
}
