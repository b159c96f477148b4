// Package metrics records run outcomes in a Prometheus registry and writes
// them as a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"livecheck/internal/domain"
)

// Recorder collects per-case and per-run metrics.
type Recorder struct {
	registry *prometheus.Registry

	cases        *prometheus.CounterVec
	failures     *prometheus.CounterVec
	caseDuration *prometheus.HistogramVec
	runDuration  prometheus.Gauge
	lastRun      prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		cases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecheck_cases_total",
			Help: "Cases executed, by group and outcome",
		}, []string{"group", "outcome"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecheck_case_failures_total",
			Help: "Failed cases by failure kind",
		}, []string{"kind"}),
		caseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livecheck_case_duration_seconds",
			Help:    "Time from clearing the input to the terminal state of a case",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"group"}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livecheck_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livecheck_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one finished case.
func (r *Recorder) Observe(res domain.Result) {
	outcome := "passed"
	if !res.Passed {
		outcome = "failed"
		r.failures.WithLabelValues(string(res.FailureKind)).Inc()
	}
	r.cases.WithLabelValues(string(res.Group), outcome).Inc()
	r.caseDuration.WithLabelValues(string(res.Group)).Observe(res.Elapsed().Seconds())
}

// Finish records the run totals.
func (r *Recorder) Finish(duration time.Duration, finishedAt time.Time) {
	r.runDuration.Set(duration.Seconds())
	r.lastRun.Set(float64(finishedAt.Unix()))
}

// WriteFile writes the registry in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
