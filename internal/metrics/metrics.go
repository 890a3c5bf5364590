// Package metrics provides Prometheus metrics for riskledger operations.
// Metrics live on a private registry; a CLI process has no scrape endpoint,
// so the registry is written out in textfile-collector format instead.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/riskledger/internal/ports/secondary"
)

// Recorder implements secondary.MetricsRecorder.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	scores     *prometheus.HistogramVec
}

// NewRecorder creates a Recorder on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskledger",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Assessment store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riskledger",
			Subsystem: "scoring",
			Name:      "total_score",
			Help:      "Computed total threat scores.",
			Buckets:   []float64{2, 4, 6, 8, 10},
		}, []string{"level"}),
	}
	r.registry.MustRegister(r.operations, r.scores)
	return r
}

// ObserveOperation counts one store operation.
func (r *Recorder) ObserveOperation(op, outcome string) {
	r.operations.WithLabelValues(op, outcome).Inc()
}

// ObserveScore records a computed total score.
func (r *Recorder) ObserveScore(level string, score float64) {
	r.scores.WithLabelValues(level).Observe(score)
}

// Registry exposes the underlying registry as a Gatherer.
func (r *Recorder) Registry() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Ensure Recorder implements the interface.
var _ secondary.MetricsRecorder = (*Recorder)(nil)
