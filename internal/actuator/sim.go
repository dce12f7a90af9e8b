// internal/actuator/sim.go
package actuator

import (
	"sync"

	"go.uber.org/zap"
)

// Sim records levels instead of driving hardware.
type Sim struct {
	log *zap.SugaredLogger

	mu     sync.Mutex
	active bool
	levels []bool
}

func NewSim(log *zap.SugaredLogger) *Sim {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sim{log: log}
}

func (s *Sim) SetLevel(active bool) error {
	s.mu.Lock()
	s.active = active
	s.levels = append(s.levels, active)
	s.mu.Unlock()

	s.log.Debugw("actuator level", "active", active)
	return nil
}

// Active reports the last level written.
func (s *Sim) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Levels returns every level written so far, oldest first.
func (s *Sim) Levels() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.levels...)
}

func (s *Sim) Close() error { return s.SetLevel(false) }
