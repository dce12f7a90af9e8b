// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "distalert"

// Metrics holds every collector the daemon exports.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	Cycles            prometheus.Counter
	FetchFailures     prometheus.Counter
	TelemetryFailures prometheus.Counter
	SensorFaults      prometheus.Counter
	Pulses            prometheus.Counter
	MirrorFailures    prometheus.Counter
	ThresholdCm       prometheus.Gauge
	LastDistanceCm    prometheus.Gauge
	ThresholdStale    prometheus.Gauge
	ConsecutiveFails  *prometheus.GaugeVec
	CycleSeconds      prometheus.Histogram
	LinkState         prometheus.Gauge
	AssociateAttempts prometheus.Counter
	LinkLost          prometheus.Counter
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Control loop cycles executed.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "threshold_fetch_failures_total",
			Help:      "Threshold fetches that failed and kept the previous value.",
		}),
		TelemetryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_failures_total",
			Help:      "Measurement posts that failed.",
		}),
		SensorFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_faults_total",
			Help:      "Measurements that timed out or faulted.",
		}),
		Pulses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actuator_pulses_total",
			Help:      "Alert pulses fired.",
		}),
		MirrorFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_failures_total",
			Help:      "MQTT mirror publishes that failed.",
		}),
		ThresholdCm: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threshold_cm",
			Help:      "Threshold currently in use.",
		}),
		LastDistanceCm: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_distance_cm",
			Help:      "Last successful distance measurement.",
		}),
		ThresholdStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threshold_stale",
			Help:      "1 when the threshold has not been refreshed for several cycles.",
		}),
		ConsecutiveFails: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_failures",
			Help:      "Consecutive failed cycles per step.",
		}, []string{"step"}),
		CycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one cycle, excluding the inter-cycle sleep.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		LinkState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "link_state",
			Help:      "0 idle, 1 connecting, 2 connected.",
		}),
		AssociateAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_associate_attempts_total",
			Help:      "Association attempts issued to the station.",
		}),
		LinkLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_lost_total",
			Help:      "Link-lost events received.",
		}),
	}

	reg.MustRegister(
		m.Cycles, m.FetchFailures, m.TelemetryFailures, m.SensorFaults, m.Pulses,
		m.MirrorFailures, m.ThresholdCm, m.LastDistanceCm, m.ThresholdStale,
		m.ConsecutiveFails, m.CycleSeconds, m.LinkState, m.AssociateAttempts, m.LinkLost,
	)
	return m
}

// ---- nil-safe recorders ----

func (m *Metrics) CycleDone(d time.Duration) {
	if m == nil {
		return
	}
	m.Cycles.Inc()
	m.CycleSeconds.Observe(d.Seconds())
}

func (m *Metrics) ThresholdFetched(cm int, ok bool) {
	if m == nil {
		return
	}
	m.ThresholdCm.Set(float64(cm))
	if !ok {
		m.FetchFailures.Inc()
	}
}

func (m *Metrics) Stale(stale bool) {
	if m == nil {
		return
	}
	if stale {
		m.ThresholdStale.Set(1)
		return
	}
	m.ThresholdStale.Set(0)
}

func (m *Metrics) Measured(cm int, ok bool) {
	if m == nil {
		return
	}
	if !ok {
		m.SensorFaults.Inc()
		return
	}
	m.LastDistanceCm.Set(float64(cm))
}

func (m *Metrics) TelemetryFailed() {
	if m == nil {
		return
	}
	m.TelemetryFailures.Inc()
}

func (m *Metrics) MirrorFailed() {
	if m == nil {
		return
	}
	m.MirrorFailures.Inc()
}

func (m *Metrics) Pulsed() {
	if m == nil {
		return
	}
	m.Pulses.Inc()
}

func (m *Metrics) Consecutive(step string, n int) {
	if m == nil {
		return
	}
	m.ConsecutiveFails.WithLabelValues(step).Set(float64(n))
}

func (m *Metrics) LinkStateChanged(code int) {
	if m == nil {
		return
	}
	m.LinkState.Set(float64(code))
}

func (m *Metrics) Associating() {
	if m == nil {
		return
	}
	m.AssociateAttempts.Inc()
}

func (m *Metrics) LinkWasLost() {
	if m == nil {
		return
	}
	m.LinkLost.Inc()
}

// ---- listener ----

// Serve exposes g on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
