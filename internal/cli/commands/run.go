package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"livecheck/internal/automation"
	"livecheck/internal/config"
	"livecheck/internal/corpus"
	"livecheck/internal/domain"
	"livecheck/internal/execution"
	"livecheck/internal/metrics"
	"livecheck/internal/storage"
	"livecheck/internal/ui"
)

// ErrCasesFailed is returned by run when at least one case failed, so the
// process exits non-zero.
var ErrCasesFailed = errors.New("one or more cases failed")

const historyTimeout = 30 * time.Second

// LauncherFunc builds the browser launcher for a loaded configuration.
type LauncherFunc func(cfg *config.Config, logger *slog.Logger) automation.Launcher

// RunCommand handles the run command
type RunCommand struct {
	config      *config.Config
	scanner     *corpus.Scanner
	filter      *corpus.Filter
	scheduler   execution.Scheduler
	newLauncher LauncherFunc
	storage     storage.Storage
	formatter   *ui.Formatter
	viewer      ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *corpus.Scanner,
	filter *corpus.Filter,
	scheduler execution.Scheduler,
	newLauncher LauncherFunc,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:      cfg,
		scanner:     scanner,
		filter:      filter,
		scheduler:   scheduler,
		newLauncher: newLauncher,
		storage:     st,
		formatter:   formatter,
		viewer:      viewer,
	}
}

// loadCases loads, validates and selects the configured corpus.
func loadCases(cfg *config.Config, scanner *corpus.Scanner, filter *corpus.Filter) ([]domain.TestCase, error) {
	cases, err := corpus.Load(cfg.CorpusPath, scanner)
	if err != nil {
		return nil, err
	}
	return filter.Select(cases, cfg.Flags.Filter, cfg.Flags.Where)
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cases, err := loadCases(rc.config, rc.scanner, rc.filter)
	if err != nil {
		return err
	}

	if len(cases) == 0 {
		color.Yellow("No cases to execute")
		return nil
	}

	logger := slog.Default()
	pool, err := execution.NewWorkerPool(rc.config, rc.newLauncher(rc.config, logger), rc.scheduler, logger)
	if err != nil {
		return err
	}

	// A progress bar only makes sense on a terminal; otherwise print a line per case
	if ui.IsTerminal(os.Stderr) {
		pool.SetProgress(ui.NewProgressBar(len(cases), os.Stderr))
	} else {
		pool.AddObserver(rc.formatter.PrintCaseResult)
	}

	var recorder *metrics.Recorder
	if rc.config.MetricsFile != "" {
		recorder = metrics.NewRecorder()
		pool.AddObserver(recorder.Observe)
	}

	startedAt := time.Now()
	results, duration, runErr := pool.Execute(cmd.Context(), cases)
	if runErr != nil && len(results) == 0 {
		return fmt.Errorf("run aborted: %w", runErr)
	}

	report := &domain.RunReport{
		RunID:           uuid.NewString(),
		TargetURL:       rc.config.TargetURL,
		StartedAt:       startedAt.UTC().Format(time.RFC3339),
		Duration:        duration.Round(time.Millisecond).String(),
		DurationSeconds: duration.Seconds(),
		Sessions:        rc.config.Sessions,
		Results:         results,
	}
	report.Tally()

	if err := rc.storage.Save(report); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}
	rc.recordHistory(cmd, report)
	if recorder != nil {
		recorder.Finish(duration, time.Now())
		if err := recorder.WriteFile(rc.config.MetricsFile); err != nil {
			color.Yellow("Warning: %v", err)
		}
	}

	rc.formatter.PrintStats(report)

	if runErr != nil {
		return fmt.Errorf("run aborted after %d of %d case(s): %w", len(results), len(cases), runErr)
	}
	if !report.OK() && rc.config.Flags.OpenFailures {
		if err := rc.viewer.View(report); err != nil {
			return err
		}
	}
	if !report.OK() {
		return ErrCasesFailed
	}
	return nil
}

// recordHistory appends the run to the MySQL history when a DSN is configured.
// History is best effort: the JSON report is already saved.
func (rc *RunCommand) recordHistory(cmd *cobra.Command, report *domain.RunReport) {
	if rc.config.HistoryDSN == "" {
		return
	}
	// The run may have been interrupted; the history write still gets its own budget
	ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), historyTimeout)
	defer cancel()

	history, err := storage.NewHistory(rc.config.HistoryDSN)
	if err == nil {
		err = history.Record(ctx, report)
	}
	if err != nil {
		color.Yellow("Warning: run history not recorded: %v", err)
		return
	}
	slog.Info("run recorded", "run", report.RunID, "database", history.Database())
}
