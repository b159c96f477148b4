package commands

import (
	"log/slog"
	"os"

	"livecheck/internal/automation"
	"livecheck/internal/cli"
	"livecheck/internal/config"
	"livecheck/internal/corpus"
	"livecheck/internal/execution"
	"livecheck/internal/storage"
	"livecheck/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	scanner := corpus.NewScanner(cfg.PathsToIgnore)
	filter := corpus.NewFilter()
	scheduler := execution.NewRoundRobinScheduler()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(os.Stdout)
	failureViewer := ui.NewFailureViewer(jsonStorage)

	return &Commands{
		Run:      NewRunCommand(cfg, scanner, filter, scheduler, ChromeLauncher, jsonStorage, formatter, failureViewer),
		List:     NewListCommand(cfg, scanner, filter, formatter, jsonStorage),
		Failures: NewFailuresCommand(cfg, jsonStorage, failureViewer),
	}
}

// ChromeLauncher starts real browser sessions as cfg describes.
func ChromeLauncher(cfg *config.Config, logger *slog.Logger) automation.Launcher {
	return automation.NewChromeLauncher(automation.ChromeOptions{
		Headless:     cfg.Headless,
		ExecPath:     cfg.ChromePath,
		PollInterval: cfg.PollInterval,
		WindowWidth:  1280,
		WindowHeight: 900,
	}, logger)
}

// prepare loads the configuration for flags into cfg and installs the logger.
func prepare(cfg *config.Config, flags *cli.Flags) error {
	loaded, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return err
	}
	*cfg = *loaded

	level, _ := cfg.Level()
	slog.SetDefault(cli.NewLogger(os.Stderr, level))
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	preRun := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		return prepare(cfg, flags)
	}

	rootCmd.PersistentFlags().StringVar(&flags.Corpus, "corpus", "", "Corpus file or directory of *.corpus.yaml files (default: builtin corpus)")
	rootCmd.PersistentFlags().StringVar(&flags.Report, "report", "", "Path of the JSON run report (default storage/livecheck-report.json)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Diagnostic log level: debug, info, warn or error")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the conformance corpus against the live page",
		Long:    "Drive a browser through every selected case, wait for the debounced output to settle and compare it with the expected text",
		RunE:    c.Run.Execute,
		PreRunE: preRun,
	}
	runCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter cases by id or name pattern (supports wildcards, e.g. 'Neg_*' or '*question*')")
	runCmd.Flags().StringVarP(&flags.Where, "where", "w", "", `Select cases with an expression, e.g. 'group == "negative" && lengthClass == "S"'`)
	runCmd.Flags().StringVar(&flags.URL, "url", "", "Target page URL")
	runCmd.Flags().IntVarP(&flags.Sessions, "sessions", "s", 0, "Number of independent browser sessions (default 1)")
	runCmd.Flags().BoolVar(&flags.Headful, "headful", false, "Show the browser window")
	runCmd.Flags().BoolVar(&flags.VerifyIdempotence, "verify-idempotence", false, "Run every non-interactive case twice and fail if the outputs differ")
	runCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	runCmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "Record the run in MySQL, e.g. 'user:pass@tcp(127.0.0.1:3306)/livecheck'")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List corpus cases",
		Long:    "Load, validate and list the selected corpus cases without running them",
		RunE:    c.List.Execute,
		PreRunE: preRun,
	}
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter cases by id or name pattern (supports wildcards, e.g. 'Neg_*' or '*question*')")
	listCmd.Flags().StringVarP(&flags.Where, "where", "w", "", `Select cases with an expression, e.g. 'group == "negative"'`)
	listCmd.Flags().BoolVarP(&flags.Metadata, "metadata", "m", false, "Show category, grammar, length and texts of every case")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View failed cases interactively",
		Long:    "Display the failed cases of the last run in an interactive viewer; R marks a case resolved",
		RunE:    c.Failures.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(failuresCmd)
}
