package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecheck/internal/automation"
	"livecheck/internal/automation/automationtest"
	"livecheck/internal/config"
	"livecheck/internal/corpus"
	"livecheck/internal/domain"
	"livecheck/internal/execution"
	"livecheck/internal/storage"
	"livecheck/internal/ui"
)

const testCorpus = `cases:
  - id: Pos_Fun_001
    name: Convert simple sentences
    group: positive
    input: mama bodimata yanavaa
    expected: මම බොඩිමට යනවා
    lengthClass: S
  - id: Neg_Fun_001
    group: negative
    input: LECTURE EKA NAE
    expected: lecture එක නැ
  - id: Neg_Fun_002
    group: negative
    input: None
    expected: None
`

var transliterations = map[string]string{
	"mama bodimata yanavaa": "මම බොඩිමට යනවා",
	"LECTURE EKA NAE":       "lecture එක නැ",
}

type stubViewer struct {
	viewed *domain.RunReport
}

func (v *stubViewer) View(report *domain.RunReport) error {
	v.viewed = report
	return nil
}

func testSetup(t *testing.T, transform func(string) string) (*config.Config, *RunCommand, *bytes.Buffer, *stubViewer) {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "cases.corpus.yaml")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0644))

	cfg := config.New()
	cfg.TargetURL = "http://app.test/"
	cfg.InputSelector = "css:#in"
	cfg.OutputSelector = "css:#out"
	cfg.OutputExclude = ""
	cfg.PostClearSettle = 400 * time.Millisecond
	cfg.TranslationTimeout = 400 * time.Millisecond
	cfg.Quiescence = 30 * time.Millisecond
	cfg.InterCasePause = 0
	cfg.CorpusPath = corpusPath
	cfg.ReportPath = filepath.Join(dir, "storage", "report.json")
	cfg.MetricsFile = filepath.Join(dir, "livecheck.prom")

	in := automation.Selector{Strategy: automation.ByCSS, Value: "#in"}
	out := automation.Selector{Strategy: automation.ByCSS, Value: "#out"}
	launch := func(*config.Config, *slog.Logger) automation.Launcher {
		return &automationtest.Launcher{New: func() *automationtest.Fake {
			return automationtest.New(in, out, transform, 20*time.Millisecond)
		}}
	}

	var buf bytes.Buffer
	viewer := &stubViewer{}
	rc := NewRunCommand(cfg, corpus.NewScanner(nil), corpus.NewFilter(), execution.NewRoundRobinScheduler(),
		launch, storage.NewJSONStorage(cfg), ui.NewFormatter(&buf), viewer)
	return cfg, rc, &buf, viewer
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func passthrough(s string) string {
	if out, ok := transliterations[s]; ok {
		return out
	}
	return s
}

func TestRunCommand_AllPass(t *testing.T) {
	cfg, rc, buf, viewer := testSetup(t, passthrough)

	require.NoError(t, rc.Execute(newCmd(), nil))

	report, err := storage.NewJSONStorage(cfg).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 3, report.Passed)
	assert.Len(t, report.RunID, 36)
	assert.Equal(t, []string{"Pos_Fun_001", "Neg_Fun_001", "Neg_Fun_002"},
		[]string{report.Results[0].CaseID, report.Results[1].CaseID, report.Results[2].CaseID})

	assert.Contains(t, buf.String(), "✓ All cases passed!")
	assert.Nil(t, viewer.viewed)

	metricsText, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), `livecheck_cases_total{group="negative",outcome="passed"} 2`)
}

func TestRunCommand_FailuresExitNonZero(t *testing.T) {
	cfg, rc, buf, viewer := testSetup(t, func(s string) string { return s })
	cfg.Flags.OpenFailures = true

	err := rc.Execute(newCmd(), nil)
	require.ErrorIs(t, err, ErrCasesFailed)

	require.NotNil(t, viewer.viewed)
	assert.Equal(t, 2, viewer.viewed.Failed)
	assert.Equal(t, 2, viewer.viewed.FailuresByKind[domain.FailureMismatch])
	assert.Contains(t, buf.String(), "✗ 2 of 3 case(s) failed")
}

func TestRunCommand_Selection(t *testing.T) {
	cfg, rc, _, _ := testSetup(t, passthrough)
	cfg.Flags.Where = `group == "negative" && input == "None"`

	require.NoError(t, rc.Execute(newCmd(), nil))

	report, err := storage.NewJSONStorage(cfg).Load()
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "Neg_Fun_002", report.Results[0].CaseID)
}

func TestRunCommand_NothingSelected(t *testing.T) {
	cfg, rc, _, _ := testSetup(t, passthrough)
	cfg.Flags.Filter = "Nope_*"

	require.NoError(t, rc.Execute(newCmd(), nil))
	_, err := os.Stat(cfg.ReportPath)
	assert.True(t, os.IsNotExist(err), "no report should be written when nothing ran")
}

func TestRunCommand_InvalidCorpus(t *testing.T) {
	cfg, rc, _, _ := testSetup(t, passthrough)
	bad := filepath.Join(t.TempDir(), "bad.corpus.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cases:\n  - id: X\n    group: sideways\n    input: a\n    expected: b\n"), 0644))
	cfg.CorpusPath = bad

	err := rc.Execute(newCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Group")
}
