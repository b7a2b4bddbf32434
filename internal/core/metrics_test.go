package core

import (
	"expvar"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("limscore_test")
	rec.ObserveOperation("part.create", "ok", 5*time.Millisecond)
	rec.ObserveOperation("part.create", "ok", 3*time.Millisecond)
	rec.ObserveOperation("part.create", "error", time.Millisecond)

	calls := expvar.Get("limscore_test_calls").(*expvar.Map)
	if got := calls.Get("part.create.ok").String(); got != "2" {
		t.Fatalf("expected 2 ok calls, got %s", got)
	}
	if got := calls.Get("part.create.error").String(); got != "1" {
		t.Fatalf("expected 1 error call, got %s", got)
	}
	latency := expvar.Get("limscore_test_latency_ns").(*expvar.Map)
	if latency.Get("part.create.ok") == nil {
		t.Fatalf("expected latency entry for ok calls")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}
	rec.ObserveOperation("part.create", "ok", 2*time.Millisecond)
	rec.ObserveOperation("container.assign", "error", time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	seen := map[string]bool{}
	for _, mf := range families {
		seen[mf.GetName()] = true
	}
	if !seen["limscore_operations_total"] {
		t.Fatalf("operations counter not registered: %v", seen)
	}
	if !seen["limscore_operation_duration_seconds"] {
		t.Fatalf("latency histogram not registered: %v", seen)
	}

	// Double registration on the same registry must surface an error.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
