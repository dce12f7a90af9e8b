// internal/controller/controller_test.go
package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bernardothives/projeto-final-dsme/internal/actuator"
	"github.com/bernardothives/projeto-final-dsme/internal/metrics"
	"github.com/bernardothives/projeto-final-dsme/internal/mirror"
	"github.com/bernardothives/projeto-final-dsme/internal/sensor"
	"github.com/bernardothives/projeto-final-dsme/internal/status"
)

// calls records the order collaborators were invoked in.
type calls []string

type fakeRemote struct {
	log        *calls
	thresholds []int // consumed one per fetch
	fetchErr   error
	postErr    error
	posted     []int
}

func (f *fakeRemote) FetchThreshold(context.Context) (int, error) {
	*f.log = append(*f.log, "fetch")
	if f.fetchErr != nil {
		return 0, f.fetchErr
	}
	v := f.thresholds[0]
	if len(f.thresholds) > 1 {
		f.thresholds = f.thresholds[1:]
	}
	return v, nil
}

func (f *fakeRemote) PostMeasurement(_ context.Context, cm int) error {
	*f.log = append(*f.log, "post")
	f.posted = append(f.posted, cm)
	return f.postErr
}

type fakeSensor struct {
	log      *calls
	readings []sensor.Measurement
	timeouts []time.Duration
}

func (f *fakeSensor) Measure(timeout time.Duration) sensor.Measurement {
	*f.log = append(*f.log, "measure")
	f.timeouts = append(f.timeouts, timeout)
	m := f.readings[0]
	if len(f.readings) > 1 {
		f.readings = f.readings[1:]
	}
	return m
}

func (f *fakeSensor) Close() error { return nil }

type recordingActuator struct {
	log *calls
	*actuator.Sim
}

func (r *recordingActuator) SetLevel(active bool) error {
	*r.log = append(*r.log, "actuate")
	return r.Sim.SetLevel(active)
}

type fakeMirror struct {
	readings []mirror.Reading
	err      error
}

func (f *fakeMirror) Publish(r mirror.Reading) error {
	f.readings = append(f.readings, r)
	return f.err
}

func reading(cm int) sensor.Measurement {
	return sensor.Measurement{DistanceCm: cm, OK: true, At: time.Now()}
}

func timedOut() sensor.Measurement {
	return sensor.Measurement{Err: sensor.ErrTimeout, At: time.Now()}
}

type harness struct {
	c      *Controller
	log    *calls
	remote *fakeRemote
	sensor *fakeSensor
	act    *recordingActuator
	slept  []time.Duration
}

func newHarness(t *testing.T, deps Deps) *harness {
	t.Helper()

	h := &harness{log: &calls{}}
	if deps.Remote == nil {
		h.remote = &fakeRemote{log: h.log, thresholds: []int{20}}
		deps.Remote = h.remote
	}
	if deps.Sensor == nil {
		h.sensor = &fakeSensor{log: h.log, readings: []sensor.Measurement{reading(100)}}
		deps.Sensor = h.sensor
	}
	h.act = &recordingActuator{log: h.log, Sim: actuator.NewSim(nil)}
	deps.Actuator = h.act

	c, err := New(Config{
		Device:             "test",
		Interval:           5 * time.Second,
		Pulse:              100 * time.Millisecond,
		SensorTimeout:      100 * time.Millisecond,
		DefaultThresholdCm: 20,
	}, deps)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	c.sleep = func(d time.Duration) { h.slept = append(h.slept, d) }
	h.c = c
	return h
}

func (h *harness) pulses() int {
	n := 0
	for _, l := range h.act.Levels() {
		if l {
			n++
		}
	}
	return n
}

// ---- scenarios ----

func TestRunCycle_BelowThresholdPulses(t *testing.T) {
	h := newHarness(t, Deps{})
	h.remote.thresholds = []int{15}
	h.sensor.readings = []sensor.Measurement{reading(10)}

	res := h.c.RunCycle(context.Background())

	if !res.Pulsed || h.pulses() != 1 {
		t.Fatalf("expected exactly one pulse, got pulsed=%v levels=%v", res.Pulsed, h.act.Levels())
	}
	if len(h.slept) != 1 || h.slept[0] != 100*time.Millisecond {
		t.Fatalf("expected a 100ms hold, got %v", h.slept)
	}
	if len(h.remote.posted) != 1 || h.remote.posted[0] != 10 {
		t.Fatalf("expected post of 10, got %v", h.remote.posted)
	}
	if h.act.Active() {
		t.Fatalf("actuator left active")
	}
}

func TestRunCycle_FetchFailureKeepsDefault(t *testing.T) {
	h := newHarness(t, Deps{})
	h.remote.fetchErr = errors.New("status 500")

	res := h.c.RunCycle(context.Background())

	if res.Fetch.Status != StepFailed {
		t.Fatalf("fetch status=%v", res.Fetch.Status)
	}
	if res.ThresholdCm != 20 || h.c.Threshold() != 20 {
		t.Fatalf("expected default 20, got used=%d stored=%d", res.ThresholdCm, h.c.Threshold())
	}
	if res.Measure.Status != StepOK || res.Post.Status != StepOK {
		t.Fatalf("fetch failure cascaded: %+v", res)
	}
}

func TestRunCycle_EqualOrAboveThresholdDoesNotPulse(t *testing.T) {
	h := newHarness(t, Deps{})
	h.remote.thresholds = []int{15}
	h.sensor.readings = []sensor.Measurement{reading(20)}

	res := h.c.RunCycle(context.Background())

	if res.Pulsed || h.pulses() != 0 {
		t.Fatalf("unexpected pulse")
	}
	if len(h.remote.posted) != 1 || h.remote.posted[0] != 20 {
		t.Fatalf("expected post of 20, got %v", h.remote.posted)
	}
	if res.Actuate.Status != StepOK {
		t.Fatalf("decision should be ok, got %v", res.Actuate.Status)
	}
}

// ---- invariants ----

func TestRunCycle_StrictLessThan(t *testing.T) {
	cases := []struct {
		d, t  int
		pulse bool
	}{
		{14, 15, true},
		{15, 15, false},
		{16, 15, false},
		{0, 1, true},
		{0, 0, false},
	}

	for _, tc := range cases {
		h := newHarness(t, Deps{})
		h.remote.thresholds = []int{tc.t}
		h.sensor.readings = []sensor.Measurement{reading(tc.d)}

		res := h.c.RunCycle(context.Background())
		if res.Pulsed != tc.pulse {
			t.Fatalf("D=%d T=%d: pulsed=%v want %v", tc.d, tc.t, res.Pulsed, tc.pulse)
		}
	}
}

func TestRunCycle_FallbackKeepsLastGoodValue(t *testing.T) {
	h := newHarness(t, Deps{})
	h.remote.thresholds = []int{42}

	h.c.RunCycle(context.Background())
	if h.c.Threshold() != 42 {
		t.Fatalf("expected 42, got %d", h.c.Threshold())
	}

	h.remote.fetchErr = errors.New("timeout")
	for i := 0; i < 5; i++ {
		res := h.c.RunCycle(context.Background())
		if res.ThresholdCm != 42 || h.c.Threshold() != 42 {
			t.Fatalf("cycle %d: threshold drifted to %d", i, h.c.Threshold())
		}
	}
}

func TestRunCycle_PostFailureStillActuates(t *testing.T) {
	h := newHarness(t, Deps{})
	h.remote.thresholds = []int{50}
	h.remote.postErr = errors.New("connection reset")
	h.sensor.readings = []sensor.Measurement{reading(5)}

	res := h.c.RunCycle(context.Background())

	if res.Post.Status != StepFailed {
		t.Fatalf("post status=%v", res.Post.Status)
	}
	if !res.Pulsed {
		t.Fatalf("post failure prevented actuation")
	}
}

func TestRunCycle_SensorTimeoutSkipsPostAndActuation(t *testing.T) {
	h := newHarness(t, Deps{})
	h.remote.thresholds = []int{1000}
	h.sensor.readings = []sensor.Measurement{timedOut()}

	res := h.c.RunCycle(context.Background())

	if res.Measure.Status != StepFailed || !errors.Is(res.Measure.Err, sensor.ErrTimeout) {
		t.Fatalf("measure=%+v", res.Measure)
	}
	if len(h.remote.posted) != 0 {
		t.Fatalf("expected zero posts, got %v", h.remote.posted)
	}
	if len(h.act.Levels()) != 0 {
		t.Fatalf("expected zero actuation, got %v", h.act.Levels())
	}
	if res.Post.Status != StepSkipped || res.Actuate.Status != StepSkipped {
		t.Fatalf("dependent steps not skipped: %+v", res)
	}
}

func TestRunCycle_StepOrder(t *testing.T) {
	h := newHarness(t, Deps{})
	h.remote.thresholds = []int{30}
	h.sensor.readings = []sensor.Measurement{reading(10)}

	h.c.RunCycle(context.Background())

	want := []string{"fetch", "measure", "post", "actuate", "actuate"}
	got := *h.log
	if len(got) != len(want) {
		t.Fatalf("order %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
	if h.sensor.timeouts[0] != 100*time.Millisecond {
		t.Fatalf("sensor timeout %v", h.sensor.timeouts[0])
	}
}

func TestRunCycle_MirrorFailureIsolated(t *testing.T) {
	fm := &fakeMirror{err: errors.New("broker down")}
	h := newHarness(t, Deps{Mirror: fm})
	h.remote.thresholds = []int{30}
	h.sensor.readings = []sensor.Measurement{reading(10)}

	res := h.c.RunCycle(context.Background())

	if res.Mirror.Status != StepFailed || !res.Pulsed {
		t.Fatalf("mirror=%v pulsed=%v", res.Mirror.Status, res.Pulsed)
	}
	if len(fm.readings) != 1 || !fm.readings[0].Alert || fm.readings[0].DistanceCm != 10 || fm.readings[0].Device != "test" {
		t.Fatalf("mirror readings %+v", fm.readings)
	}
}

func TestRunCycle_HealthAndMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := newHarness(t, Deps{Metrics: m})
	h.remote.fetchErr = errors.New("down")

	for i := 0; i < status.StaleAfter; i++ {
		h.c.RunCycle(context.Background())
	}

	snap := h.c.Health()
	if !snap.ThresholdStale || snap.Consecutive[status.StepFetch] != status.StaleAfter {
		t.Fatalf("snapshot %+v", snap)
	}
	if got := testutil.ToFloat64(m.ThresholdStale); got != 1 {
		t.Fatalf("stale gauge=%f", got)
	}
	if got := testutil.ToFloat64(m.Cycles); got != float64(status.StaleAfter) {
		t.Fatalf("cycles=%f", got)
	}
}

// ---- runner ----

func TestRun_SleepsIntervalBetweenCycles(t *testing.T) {
	h := newHarness(t, Deps{})

	var waits []time.Duration
	h.c.wait = func(_ context.Context, d time.Duration) bool {
		waits = append(waits, d)
		return len(waits) < 3
	}

	h.c.Run(context.Background())

	if len(waits) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(waits))
	}
	for _, w := range waits {
		if w != 5*time.Second {
			t.Fatalf("interval %v", w)
		}
	}
	if h.c.seq != 3 {
		t.Fatalf("seq=%d", h.c.seq)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(t, Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		h.c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Config{Interval: time.Second}, Deps{}); err == nil {
		t.Fatalf("expected error")
	}
}
