// internal/metrics/metrics_test.go
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CycleDone(20 * time.Millisecond)
	m.CycleDone(30 * time.Millisecond)
	if got := testutil.ToFloat64(m.Cycles); got != 2 {
		t.Fatalf("expected 2 cycles, got %f", got)
	}
	if n := testutil.CollectAndCount(m.CycleSeconds); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}

	m.ThresholdFetched(15, true)
	if got := testutil.ToFloat64(m.ThresholdCm); got != 15 {
		t.Fatalf("expected threshold 15, got %f", got)
	}
	m.ThresholdFetched(15, false)
	if got := testutil.ToFloat64(m.FetchFailures); got != 1 {
		t.Fatalf("expected 1 fetch failure, got %f", got)
	}
	if got := testutil.ToFloat64(m.ThresholdStale); got != 0 {
		t.Fatalf("single failure must not mark stale, got %f", got)
	}
	m.Stale(true)
	if got := testutil.ToFloat64(m.ThresholdStale); got != 1 {
		t.Fatalf("expected stale=1, got %f", got)
	}

	m.Measured(42, true)
	m.Measured(0, false)
	if got := testutil.ToFloat64(m.LastDistanceCm); got != 42 {
		t.Fatalf("expected last distance 42, got %f", got)
	}
	if got := testutil.ToFloat64(m.SensorFaults); got != 1 {
		t.Fatalf("expected 1 sensor fault, got %f", got)
	}

	m.Consecutive("telemetry", 3)
	if got := testutil.ToFloat64(m.ConsecutiveFails.WithLabelValues("telemetry")); got != 3 {
		t.Fatalf("expected consecutive=3, got %f", got)
	}

	m.LinkStateChanged(2)
	m.Associating()
	m.LinkWasLost()
	if got := testutil.ToFloat64(m.LinkState); got != 2 {
		t.Fatalf("expected link state 2, got %f", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CycleDone(time.Second)
	m.ThresholdFetched(1, false)
	m.Stale(true)
	m.Measured(1, true)
	m.TelemetryFailed()
	m.MirrorFailed()
	m.Pulsed()
	m.Consecutive("sensor", 1)
	m.LinkStateChanged(1)
	m.Associating()
	m.LinkWasLost()
}
