// Package metrics keeps per-run transfer counters in a Prometheus registry
// and writes them in the node-exporter textfile format.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gopreprocess"

// Recorder holds the counters for one run. Every series carries the run
// mode and the source/target taxa as labels.
type Recorder struct {
	registry *prometheus.Registry
	labels   prometheus.Labels

	seen      *prometheus.CounterVec
	passed    *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	generated *prometheus.CounterVec
	output    *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
}

func NewRecorder(mode, sourceTaxon, targetTaxon string) *Recorder {
	base := []string{"mode", "source", "target"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		labels:   prometheus.Labels{"mode": mode, "source": sourceTaxon, "target": targetTaxon},
		seen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_seen_total",
			Help:      "Source annotations read.",
		}, base),
		passed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_passed_total",
			Help:      "Source annotations that passed the filter chain.",
		}, base),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_rejected_total",
			Help:      "Source annotations rejected, by filter bucket.",
		}, append(base, "bucket")),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_skipped_total",
			Help:      "Candidate transfers skipped by the rewriter, by reason.",
		}, append(base, "reason")),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_generated_total",
			Help:      "Annotations produced by the rewriter before aggregation.",
		}, base),
		output: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_rows",
			Help:      "Rows written to the output GAF.",
		}, base),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage.",
		}, append(base, "stage")),
	}
	r.registry.MustRegister(r.seen, r.passed, r.rejected, r.skipped, r.generated, r.output, r.duration)
	return r
}

func (r *Recorder) with(extra string, value string) prometheus.Labels {
	out := make(prometheus.Labels, len(r.labels)+1)
	for k, v := range r.labels {
		out[k] = v
	}
	if extra != "" {
		out[extra] = value
	}
	return out
}

func (r *Recorder) Seen(n int)      { r.seen.With(r.labels).Add(float64(n)) }
func (r *Recorder) Passed(n int)    { r.passed.With(r.labels).Add(float64(n)) }
func (r *Recorder) Generated(n int) { r.generated.With(r.labels).Add(float64(n)) }
func (r *Recorder) OutputRows(n int) {
	r.output.With(r.labels).Set(float64(n))
}

func (r *Recorder) Rejected(bucket string, n int) {
	r.rejected.With(r.with("bucket", bucket)).Add(float64(n))
}

func (r *Recorder) Skipped(reason string, n int) {
	r.skipped.With(r.with("reason", reason)).Add(float64(n))
}

func (r *Recorder) StageDuration(stage string, seconds float64) {
	r.duration.With(r.with("stage", stage)).Set(seconds)
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteFile writes all series to path, creating the parent directory.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
