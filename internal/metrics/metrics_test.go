package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecheck/internal/domain"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()

	r.Observe(domain.Result{Group: domain.GroupPositive, Passed: true, ElapsedMs: 1200})
	r.Observe(domain.Result{Group: domain.GroupPositive, FailureKind: domain.FailureMismatch, ElapsedMs: 900})
	r.Observe(domain.Result{Group: domain.GroupNegative, FailureKind: domain.FailureNoUpdate, ElapsedMs: 10000})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.cases.WithLabelValues("positive", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cases.WithLabelValues("positive", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("no-update")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.failures))
	assert.Equal(t, 2, testutil.CollectAndCount(r.caseDuration))
}

func TestRecorder_WriteFile(t *testing.T) {
	r := NewRecorder()
	r.Observe(domain.Result{Group: domain.GroupInteractive, Passed: true, ElapsedMs: 3000})
	r.Finish(42*time.Second, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "livecheck.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `livecheck_cases_total{group="interactive",outcome="passed"} 1`)
	assert.Contains(t, text, "livecheck_run_duration_seconds 42")
	assert.True(t, strings.Contains(text, "livecheck_last_run_timestamp_seconds 1.7e+09"))
}

func TestRecorder_WriteFileBadPath(t *testing.T) {
	r := NewRecorder()
	err := r.WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
