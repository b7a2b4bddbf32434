package core

import (
	"expvar"
	"fmt"
	"sync"
	"time"
)

// MetricsRecorder receives one observation per completed service operation.
type MetricsRecorder interface {
	ObserveOperation(operation, status string, elapsed time.Duration)
}

// ExpvarMetricsRecorder publishes operation counters and cumulative latency
// under a single expvar map, keyed by "<operation>.<status>".
type ExpvarMetricsRecorder struct {
	mu      sync.Mutex
	calls   *expvar.Map
	latency *expvar.Map
}

// NewExpvarMetricsRecorder publishes maps named <prefix>_calls and
// <prefix>_latency_ns. Publishing the same prefix twice panics, matching
// expvar semantics, so callers should construct one recorder per process.
func NewExpvarMetricsRecorder(prefix string) *ExpvarMetricsRecorder {
	return &ExpvarMetricsRecorder{
		calls:   expvar.NewMap(prefix + "_calls"),
		latency: expvar.NewMap(prefix + "_latency_ns"),
	}
}

func (r *ExpvarMetricsRecorder) ObserveOperation(operation, status string, elapsed time.Duration) {
	key := fmt.Sprintf("%s.%s", operation, status)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Add(key, 1)
	r.latency.Add(key, elapsed.Nanoseconds())
}

var _ MetricsRecorder = (*ExpvarMetricsRecorder)(nil)
