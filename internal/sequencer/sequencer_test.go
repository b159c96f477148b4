package sequencer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecheck/internal/automation"
	"livecheck/internal/automation/automationtest"
	"livecheck/internal/page"
	"livecheck/internal/stability"
)

var (
	inSel  = automation.Selector{Strategy: automation.ByCSS, Value: "textarea"}
	outSel = automation.Selector{Strategy: automation.ByCSS, Value: "div.out"}
)

func setup(t *testing.T, strict bool) (*automationtest.Fake, *Sequencer, page.Regions) {
	t.Helper()
	fake := automationtest.New(inSel, outSel, strings.ToUpper, 10*time.Millisecond)
	t.Cleanup(fake.Close)
	adapter := page.NewAdapter(fake, "https://example.test/", inSel, outSel, time.Second)
	regions, err := adapter.Bind(context.Background())
	require.NoError(t, err)
	d := stability.NewDetector(fake, 20*time.Millisecond, nil)
	return fake, New(fake, d, 300*time.Millisecond, strict, nil), regions
}

func TestSetFull_ClearsBeforeWriting(t *testing.T) {
	fake, seq, r := setup(t, true)
	require.NoError(t, fake.SetText(context.Background(), r.Input, "previous"))
	time.Sleep(30 * time.Millisecond)

	baseline, err := seq.SetFull(context.Background(), r, "mama")
	require.NoError(t, err)
	assert.Equal(t, "", baseline)
	assert.Equal(t, "mama", fake.Input())

	calls := fake.Calls()
	assert.Equal(t, []string{"set previous", "clear", "set mama"}, calls[len(calls)-3:])
}

func TestClearAndSettle_DrivesOutputEmpty(t *testing.T) {
	fake, seq, r := setup(t, true)
	require.NoError(t, fake.SetText(context.Background(), r.Input, "previous"))
	time.Sleep(30 * time.Millisecond)
	text, err := fake.ReadText(context.Background(), r.Output)
	require.NoError(t, err)
	require.Equal(t, "PREVIOUS", text)

	baseline, err := seq.ClearAndSettle(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "", baseline)
}

func TestClearAndSettle_ResidualOutput(t *testing.T) {
	t.Run("strict fails", func(t *testing.T) {
		fake, seq, r := setup(t, true)
		fake.Sticky = true
		fake.SetOutput("STALE")

		baseline, err := seq.ClearAndSettle(context.Background(), r)
		var re *ResidualOutputError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "STALE", re.Text)
		assert.Equal(t, "STALE", baseline)
	})

	t.Run("lenient uses residual as baseline", func(t *testing.T) {
		fake, seq, r := setup(t, false)
		fake.Sticky = true
		fake.SetOutput("STALE")

		baseline, err := seq.ClearAndSettle(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, "STALE", baseline)
	})
}

func TestTypeIncrementalThenContinue(t *testing.T) {
	fake, seq, r := setup(t, true)

	_, err := seq.TypeIncremental(context.Background(), r, "ma", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "ma", fake.Input())

	require.NoError(t, seq.Continue(context.Background(), r, "ma", time.Millisecond))
	assert.Equal(t, "mama", fake.Input())
}

func TestSetFull_ClearFailure(t *testing.T) {
	fake, seq, r := setup(t, true)
	fake.ReadErr = errors.New("detached")

	_, err := seq.SetFull(context.Background(), r, "mama")
	require.Error(t, err)
	assert.True(t, automation.IsAutomation(err))
	var re *ResidualOutputError
	assert.False(t, errors.As(err, &re))
}
