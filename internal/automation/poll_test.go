package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_ReturnsWhenPredicateHolds(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPoll_FirstEvaluationIsImmediate(t *testing.T) {
	start := time.Now()
	err := Poll(context.Background(), time.Hour, time.Second, func(ctx context.Context) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPoll_TimesOut(t *testing.T) {
	err := Poll(context.Background(), 5*time.Millisecond, 40*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestPoll_PropagatesPredicateError(t *testing.T) {
	boom := errors.New("boom")
	err := Poll(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrWaitTimeout)
}

func TestPoll_ParentCancellationIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Poll(ctx, time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrWaitTimeout)
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))
	require.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("read", Selector{}, nil))

	sel := Selector{Strategy: ByCSS, Value: "#out"}
	err := Wrap("read", sel, ErrNotFound)
	assert.True(t, IsAutomation(err))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "automation read css:#out: element not found", err.Error())

	// Already wrapped errors keep their original operation.
	again := Wrap("locate", sel, err)
	assert.Same(t, err, again)

	assert.False(t, IsAutomation(errors.New("plain")))
}
