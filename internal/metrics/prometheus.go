package metrics

import (
	"net/http"
	"time"

	"tradingengine/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the analysis pipeline metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	StageDuration *prometheus.HistogramVec
	Runs          *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	LastRun       *prometheus.GaugeVec
	BarsAnalyzed  *prometheus.CounterVec
}

// NewRecorder registers the pipeline metrics on reg. A nil reg uses a fresh
// private registry.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Recorder{
		gatherer: reg,
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradingengine_stage_duration_seconds",
				Help:    "Analysis stage duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"stage"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradingengine_analysis_runs_total",
				Help: "Total number of analysis runs",
			},
			[]string{"mode", "status"}, // status: success|error
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradingengine_stage_failures_total",
				Help: "Total number of failed analysis stages",
			},
			[]string{"stage", "kind"},
		),
		LastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradingengine_analysis_last_run_timestamp",
				Help: "Unix timestamp of the last analysis run",
			},
			[]string{"mode"},
		),
		BarsAnalyzed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradingengine_bars_analyzed_total",
				Help: "Total number of bars fed into the pipeline",
			},
			[]string{"mode"},
		),
	}

	reg.MustRegister(r.StageDuration, r.Runs, r.Failures, r.LastRun, r.BarsAnalyzed)
	return r
}

// Handler returns the Prometheus HTTP handler for this recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// RecordStage records one pipeline stage.
func (r *Recorder) RecordStage(stage string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		r.Failures.WithLabelValues(stage, ports.ErrorKind(err)).Inc()
	}
}

// RecordRun records a complete pipeline run.
func (r *Recorder) RecordRun(mode string, bars int, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.Runs.WithLabelValues(mode, status).Inc()
	r.BarsAnalyzed.WithLabelValues(mode).Add(float64(bars))
	r.LastRun.WithLabelValues(mode).SetToCurrentTime()
}
