// internal/status/snapshot.go
package status

import (
	"sync"
	"time"
)

// Snapshot is the health of the control loop after one cycle.
// It is reporting only; nothing reads it back to change behavior.
type Snapshot struct {
	Health uint16

	// Consecutive failures per step. Reset to 0 on success.
	Consecutive map[Step]int

	ThresholdStale bool
	LastError      string
	SecondsInError uint16
	At             time.Time
}

// Tracker accumulates step outcomes across cycles.
type Tracker struct {
	mu          sync.Mutex
	consecutive map[Step]int
	lastErr     string
	errorSince  time.Time
	snap        Snapshot
	now         func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		consecutive: make(map[Step]int, len(Steps)),
		now:         time.Now,
		snap:        Snapshot{Health: HealthUnknown},
	}
}

// Observe records the outcome of one step. A nil err is success.
// Skipped steps are not observed.
func (t *Tracker) Observe(step Step, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		t.consecutive[step] = 0
		return
	}
	t.consecutive[step]++
	t.lastErr = string(step) + ": " + err.Error()
}

// Commit closes a cycle and returns the resulting snapshot.
func (t *Tracker) Commit() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := Snapshot{
		Consecutive:    make(map[Step]int, len(Steps)),
		ThresholdStale: t.consecutive[StepFetch] >= StaleAfter,
		At:             now,
	}
	for _, st := range Steps {
		s.Consecutive[st] = t.consecutive[st]
	}
	s.Health = health(s)

	if s.Health == HealthOK {
		t.errorSince = time.Time{}
		t.lastErr = ""
	} else if t.errorSince.IsZero() {
		t.errorSince = now
	}
	s.LastError = t.lastErr
	s.SecondsInError = secondsSince(t.errorSince, now)

	t.snap = s
	return s
}

// Last returns the most recent committed snapshot.
func (t *Tracker) Last() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func health(s Snapshot) uint16 {
	switch {
	case s.Consecutive[StepSensor] > 0:
		return HealthBlind
	case s.ThresholdStale:
		return HealthStale
	case s.Consecutive[StepFetch] > 0 || s.Consecutive[StepTelemetry] > 0:
		return HealthDegraded
	default:
		return HealthOK
	}
}

func secondsSince(since, now time.Time) uint16 {
	if since.IsZero() {
		return 0
	}
	sec := now.Sub(since) / time.Second
	if sec > 0xFFFF {
		return 0xFFFF
	}
	return uint16(sec)
}
