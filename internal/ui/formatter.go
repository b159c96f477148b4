package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"livecheck/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
	gray   = color.New(color.FgHiBlack)
)

const (
	tableTop    = "┌─────────────────────────────────┬─────────────────────────────┐"
	tableRow    = "├─────────────────────────────────┼─────────────────────────────┤"
	tableBottom = "└─────────────────────────────────┴─────────────────────────────┘"
)

func (f *Formatter) row(label string, c *color.Color, value any) {
	fmt.Fprintf(f.out, "│ %-31s │ ", label)
	c.Fprintf(f.out, "%-27v", value)
	fmt.Fprintln(f.out, " │")
}

// PrintStats displays the run statistics and the failed cases of report
func (f *Formatter) PrintStats(report *domain.RunReport) {
	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                 Conformance Run Statistics                    ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	fmt.Fprintln(f.out, tableTop)
	f.row("Total Cases", white, report.Total)
	fmt.Fprintln(f.out, tableRow)
	f.row("Passed", green, report.Passed)
	fmt.Fprintln(f.out, tableRow)
	f.row("Failed", red, report.Failed)

	kinds := make([]string, 0, len(report.FailuresByKind))
	for kind := range report.FailuresByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintln(f.out, tableRow)
		f.row("  "+kind, red, report.FailuresByKind[domain.FailureKind(kind)])
	}

	fmt.Fprintln(f.out, tableRow)
	f.row("Duration", white, fmt.Sprintf("%.2fs", report.DurationSeconds))
	fmt.Fprintln(f.out, tableRow)
	f.row("Sessions", white, report.Sessions)
	fmt.Fprintln(f.out, tableRow)
	f.row("Started", white, report.StartedAt)
	fmt.Fprintln(f.out, tableBottom)
	gray.Fprintf(f.out, "run %s against %s\n", report.RunID, report.TargetURL)

	fmt.Fprintln(f.out)
	if report.OK() {
		green.Fprintln(f.out, "✓ All cases passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d of %d case(s) failed\n", report.Failed, report.Total)
	fmt.Fprintln(f.out)
	f.printFailureTree(report.Failures())
}

// printFailureTree prints failed cases grouped by group, then failure kind
func (f *Formatter) printFailureTree(failures []domain.Result) {
	byGroup := make(map[domain.Group]map[domain.FailureKind][]domain.Result)
	for _, res := range failures {
		if byGroup[res.Group] == nil {
			byGroup[res.Group] = make(map[domain.FailureKind][]domain.Result)
		}
		byGroup[res.Group][res.FailureKind] = append(byGroup[res.Group][res.FailureKind], res)
	}

	groups := presentGroups(func(g domain.Group) bool { return byGroup[g] != nil })
	for gi, group := range groups {
		lastGroup := gi == len(groups)-1
		cyan.Fprintf(f.out, "%s%s\n", branch(lastGroup), group)

		kinds := make([]string, 0, len(byGroup[group]))
		for kind := range byGroup[group] {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)

		for ki, kind := range kinds {
			lastKind := ki == len(kinds)-1
			prefix := indent(lastGroup)
			yellow.Fprintf(f.out, "%s%s%s\n", prefix, branch(lastKind), kind)

			results := byGroup[group][domain.FailureKind(kind)]
			for ri, res := range results {
				caseLine := prefix + indent(lastKind) + branch(ri == len(results)-1)
				red.Fprintf(f.out, "%s%s\n", caseLine, caseTitle(res))
			}
		}
	}
}

// presentGroups returns the groups for which keep holds, in report order.
func presentGroups(keep func(domain.Group) bool) []domain.Group {
	var groups []domain.Group
	for _, g := range domain.Groups {
		if keep(g) {
			groups = append(groups, g)
		}
	}
	return groups
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func caseTitle(res domain.Result) string {
	if res.Name == "" {
		return res.CaseID
	}
	return res.CaseID + " - " + res.Name
}

// PrintCaseResult prints a single line for a finished case. It is the
// fallback for the progress bar when stderr is not a terminal.
func (f *Formatter) PrintCaseResult(res domain.Result) {
	elapsed := res.Elapsed().Round(10 * time.Millisecond)
	if res.Passed {
		green.Fprintf(f.out, "✓ %s ", caseTitle(res))
		gray.Fprintf(f.out, "(%s)\n", elapsed)
		return
	}
	red.Fprintf(f.out, "✗ %s ", caseTitle(res))
	yellow.Fprintf(f.out, "[%s] ", res.FailureKind)
	gray.Fprintf(f.out, "(%s)\n", elapsed)
}

// PrintCaseList prints cases as a tree by group. With showMetadata each case
// also lists its classification. Cases in failed are marked with [F].
func (f *Formatter) PrintCaseList(cases []domain.TestCase, showMetadata bool, failed map[string]struct{}) {
	byGroup := make(map[domain.Group][]domain.TestCase)
	for _, tc := range cases {
		byGroup[tc.Group] = append(byGroup[tc.Group], tc)
	}

	green.Fprintf(f.out, "Found %d case(s):\n\n", len(cases))

	groups := presentGroups(func(g domain.Group) bool { return len(byGroup[g]) > 0 })
	for gi, group := range groups {
		lastGroup := gi == len(groups)-1
		cyan.Fprintf(f.out, "%s%s (%d)\n", branch(lastGroup), group, len(byGroup[group]))

		for ci, tc := range byGroup[group] {
			lastCase := ci == len(byGroup[group])-1
			prefix := indent(lastGroup)

			marker := ""
			if _, ok := failed[tc.ID]; ok {
				marker = " " + red.Sprint("[F]")
			}
			fmt.Fprintf(f.out, "%s%s%s%s\n", prefix, branch(lastCase), yellow.Sprint(tc.Title()), marker)

			if showMetadata {
				detail := prefix + indent(lastCase)
				for _, line := range metadataLines(tc) {
					gray.Fprintf(f.out, "%s%s\n", detail, line)
				}
			}
		}
	}
}

func metadataLines(tc domain.TestCase) []string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("category", tc.Category)
	add("grammar", tc.GrammarClass)
	add("length", tc.LengthClass)
	add("input", tc.Input)
	add("partial", tc.PartialInput)
	add("expected", tc.Expected)
	if tc.Source != "" {
		add("source", strings.TrimPrefix(tc.Source, "./"))
	}
	return lines
}
