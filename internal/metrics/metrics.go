// Package metrics records extraction run statistics on a private
// prometheus registry
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors of one process
type Recorder struct {
	Registry *prometheus.Registry

	records     *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	runs        *prometheus.CounterVec
	parts       prometheus.Gauge
	clusters    prometheus.Gauge
	subcases    prometheus.Gauge
	duration    prometheus.Histogram
}

// New registers all collectors on a fresh registry
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpcforces_model_records_total",
				Help: "Number of model records read by keyword.",
			},
			[]string{"keyword"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpcforces_diagnostics_total",
				Help: "Number of non-fatal anomalies by kind.",
			},
			[]string{"kind"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpcforces_runs_total",
				Help: "Number of extraction runs by result.",
			},
			[]string{"result"},
		),
		parts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mpcforces_parts",
				Help: "Number of parts in the last decomposition.",
			},
		),
		clusters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mpcforces_spc_clusters",
				Help: "Number of SPC clusters built in the last run.",
			},
		),
		subcases: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mpcforces_subcases",
				Help: "Number of subcases read in the last run.",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mpcforces_run_duration_seconds",
				Help:    "Time taken by one extraction run.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	r.Registry.MustRegister(r.records, r.diagnostics, r.runs, r.parts, r.clusters, r.subcases, r.duration)
	return r
}

// Records adds per-keyword record counts
func (r *Recorder) Records(counts map[string]int) {
	for kw, n := range counts {
		r.records.WithLabelValues(kw).Add(float64(n))
	}
}

// Diagnostic counts one anomaly
func (r *Recorder) Diagnostic(kind string) {
	r.diagnostics.WithLabelValues(kind).Inc()
}

// Run records the outcome and shape of one finished run
func (r *Recorder) Run(err error, elapsed time.Duration, parts, clusters, subcases int) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.runs.WithLabelValues(result).Inc()
	r.duration.Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	r.parts.Set(float64(parts))
	r.clusters.Set(float64(clusters))
	r.subcases.Set(float64(subcases))
}

// WriteTextfile writes the current values in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
