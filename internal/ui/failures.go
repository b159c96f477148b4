package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"livecheck/internal/domain"
	"livecheck/internal/storage"
)

// FailureViewer displays failed cases in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer. Resolved marks are written
// back through st.
func NewFailureViewer(st storage.Storage) *FailureViewer {
	return &FailureViewer{storage: st}
}

// View displays the failed cases of report
func (fv *FailureViewer) View(report *domain.RunReport) error {
	// Positions of failed results inside report.Results
	var failed []int
	for i, res := range report.Results {
		if !res.Passed {
			failed = append(failed, i)
		}
	}
	if len(failed) == 0 {
		color.Green("✓ No failed cases found!")
		return nil
	}

	var saveErr error

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	updateListItem := func(index int) {
		if index < 0 || index >= list.GetItemCount() {
			return
		}
		list.SetItemText(index, listItemText(report.Results[failed[index]], index+1), "")
	}

	for i, pos := range failed {
		list.AddItem(listItemText(report.Results[pos], i+1), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	countUnresolved := func() int {
		count := 0
		for _, pos := range failed {
			if !report.Results[pos].Resolved {
				count++
			}
		}
		return count
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		text := fmt.Sprintf(" Failed Cases (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ", len(failed), countUnresolved())
		if saveErr != nil {
			text += fmt.Sprintf("| [red]save failed: %s[white] ", tview.Escape(saveErr.Error()))
		}
		headerView.SetText(text)
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failed) {
			res := report.Results[failed[index]]
			statsView.SetText(formatFailureStats(res, report.TargetURL))
			detailsView.SetText(formatFailureDetails(res))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failed) {
					res := &report.Results[failed[index]]
					res.Resolved = !res.Resolved
					saveErr = fv.storage.Save(report)
					updateListItem(index)
					updateHeader()
					updateDetails()
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// listItemText renders one list entry; resolved cases are grayed out.
func listItemText(res domain.Result, number int) string {
	title := tview.Escape(caseTitle(res))
	if res.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", number, title)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", number, title)
}

// formatFailureDetails formats a failed case using tview color tags. Case
// text is escaped so brackets in diffs are not read as tags.
func formatFailureDetails(res domain.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", tview.Escape(caseTitle(res)))
	fmt.Fprintf(&b, "[cyan]Group:[white] %s   [cyan]State:[white] %s   [cyan]Kind:[white] [red]%s[white]\n", res.Group, res.State, res.FailureKind)
	fmt.Fprintf(&b, "[cyan]Elapsed:[white] %s   [cyan]Injections:[white] %d   [cyan]Session:[white] %d\n\n", res.Elapsed(), res.Generations, res.Session)

	if res.FailureReason != "" {
		fmt.Fprintf(&b, "[yellow]Reason:[white]\n%s\n\n", tview.Escape(res.FailureReason))
	}
	fmt.Fprintf(&b, "[yellow]Expected:[white]\n%s\n\n", tview.Escape(res.Expected))
	if res.Actual != "" {
		fmt.Fprintf(&b, "[yellow]Actual:[white]\n%s\n\n", tview.Escape(res.Actual))
	}
	if res.Diff != "" {
		fmt.Fprintf(&b, "[yellow]Diff:[white]\n%s\n", tview.Escape(res.Diff))
	}
	return b.String()
}

// formatFailureStats formats the stats header for a failed case
func formatFailureStats(res domain.Result, target string) string {
	status := "[red]unresolved[white]"
	if res.Resolved {
		status = "[green]resolved[white]"
	}
	return fmt.Sprintf("[cyan]case:[white] [yellow]%s[white] @ %s  %s\n", tview.Escape(res.CaseID), tview.Escape(target), status)
}
