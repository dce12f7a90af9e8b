// internal/link/sim.go
package link

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SimStation is an in-process station for bench runs without a radio.
// Each association succeeds after a fixed delay; Drop injects a link loss.
type SimStation struct {
	delay  time.Duration
	addr   string
	events chan Event

	mu      sync.Mutex
	started bool
	closed  bool
	pending *time.Timer
}

func NewSimStation(delay time.Duration) *SimStation {
	return &SimStation{
		delay:  delay,
		addr:   "192.0.2.10",
		events: make(chan Event, 16),
	}
}

func (s *SimStation) Start(_ context.Context, creds Credentials) error {
	if creds.SSID == "" {
		return errors.New("sim station: ssid required")
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("sim station: already started")
	}
	s.started = true
	s.mu.Unlock()

	s.emit(Event{Kind: EventLinkStart})
	return nil
}

func (s *SimStation) Associate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("sim station: closed")
	}
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = time.AfterFunc(s.delay, func() {
		s.emit(Event{Kind: EventAddressAcquired, Addr: s.addr})
	})
	return nil
}

// Drop simulates a disassociation.
func (s *SimStation) Drop(reason string) {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventLinkLost, Reason: reason})
}

func (s *SimStation) Events() <-chan Event { return s.events }

func (s *SimStation) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
	}
	return nil
}

// emit never blocks; a full buffer drops the event.
func (s *SimStation) emit(ev Event) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	select {
	case s.events <- ev:
	default:
	}
}
