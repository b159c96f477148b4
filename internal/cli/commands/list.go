package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"livecheck/internal/config"
	"livecheck/internal/corpus"
	"livecheck/internal/storage"
	"livecheck/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	scanner   *corpus.Scanner
	filter    *corpus.Filter
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *corpus.Scanner,
	filter *corpus.Filter,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cases, err := loadCases(lc.config, lc.scanner, lc.filter)
	if err != nil {
		return err
	}

	if len(cases) == 0 {
		color.Yellow("No cases found")
		return nil
	}

	// Mark cases that failed in the last run, if there is one
	failed := make(map[string]struct{})
	if report, err := lc.storage.Load(); err == nil {
		for _, res := range report.Failures() {
			failed[res.CaseID] = struct{}{}
		}
	}

	lc.formatter.PrintCaseList(cases, lc.config.Flags.Metadata, failed)
	return nil
}
