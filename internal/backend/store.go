// internal/backend/store.go
package backend

import (
	"sync"
	"time"
)

// DefaultThresholdCm is served until a threshold has been set.
const DefaultThresholdCm = 20

// MaxLogs is how many measurements are kept; older ones are dropped.
const MaxLogs = 100

// LogEntry is one stored measurement.
type LogEntry struct {
	ID         int64     `json:"id"`
	DistanceCm int       `json:"distancia_cm"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store keeps the threshold and the most recent measurements in memory.
type Store struct {
	mu        sync.RWMutex
	threshold int
	logs      []LogEntry // oldest first, at most MaxLogs
	nextID    int64
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		threshold: DefaultThresholdCm,
		nextID:    1,
		now:       time.Now,
	}
}

func (s *Store) Threshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

func (s *Store) SetThreshold(cm int) {
	s.mu.Lock()
	s.threshold = cm
	s.mu.Unlock()
}

// AddLog stores a measurement and returns its id.
func (s *Store) AddLog(cm int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := LogEntry{ID: s.nextID, DistanceCm: cm, Timestamp: s.now().UTC()}
	s.nextID++

	s.logs = append(s.logs, e)
	if len(s.logs) > MaxLogs {
		s.logs = append(s.logs[:0], s.logs[len(s.logs)-MaxLogs:]...)
	}
	return e.ID
}

// Logs returns stored measurements, newest first.
func (s *Store) Logs() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LogEntry, len(s.logs))
	for i, e := range s.logs {
		out[len(s.logs)-1-i] = e
	}
	return out
}
