// internal/sensor/sim.go
package sensor

import (
	"sync"
	"time"
)

// SimFault in a script makes that reading time out.
const SimFault = -1

// Sim replays a fixed script of readings, wrapping around at the end.
type Sim struct {
	mu     sync.Mutex
	values []int
	next   int
	delay  time.Duration
}

// NewSim returns a scripted sensor. An empty script always reads 100 cm.
func NewSim(values []int, delay time.Duration) *Sim {
	if len(values) == 0 {
		values = []int{100}
	}
	return &Sim{values: append([]int(nil), values...), delay: delay}
}

func (s *Sim) Measure(timeout time.Duration) Measurement {
	s.mu.Lock()
	v := s.values[s.next%len(s.values)]
	s.next++
	s.mu.Unlock()

	if v < 0 {
		time.Sleep(timeout)
		return fault(ErrTimeout)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return ok(v)
}

func (s *Sim) Close() error { return nil }
