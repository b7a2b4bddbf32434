package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exposes operation counts and latencies as
// Prometheus collectors.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder builds the collectors and registers them with
// reg. Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limscore",
			Name:      "operations_total",
			Help:      "Completed service operations by name and status.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "limscore",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency by name and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
	if reg != nil {
		if err := reg.Register(r.operations); err != nil {
			return nil, err
		}
		if err := reg.Register(r.latency); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusMetricsRecorder) ObserveOperation(operation, status string, elapsed time.Duration) {
	r.operations.WithLabelValues(operation, status).Inc()
	r.latency.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}

var _ MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
