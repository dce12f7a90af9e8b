// internal/link/manager.go
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/bernardothives/projeto-final-dsme/internal/metrics"
)

// DefaultRetryDelay is the pause before re-trying after Associate itself
// returned an error. Link loss reported by the station is retried immediately.
const DefaultRetryDelay = time.Second

// Manager keeps the device associated with its network.
//
// Station events are applied to a state machine on the Run goroutine:
//
//	idle       --link_start-------> connecting
//	connecting --address_acquired-> connected
//	connected  --link_lost--------> connecting
//	connecting --link_lost--------> connecting
//
// Every link_start and link_lost issues a new association attempt, forever.
type Manager struct {
	station    Station
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
	retryDelay time.Duration

	machine *fsm.FSM
	retries chan Event

	// mu guards state and up. up is closed while the link is connected.
	mu    sync.Mutex
	state State
	up    chan struct{}
}

// NewManager wires a manager around st. m may be nil.
func NewManager(st Station, log *zap.SugaredLogger, m *metrics.Metrics) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	mgr := &Manager{
		station:    st,
		log:        log,
		metrics:    m,
		retryDelay: DefaultRetryDelay,
		retries:    make(chan Event, 1),
		state:      StateIdle,
		up:         make(chan struct{}),
	}

	mgr.machine = fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventLinkStart, Src: []string{stateIdle}, Dst: stateConnecting},
			{Name: eventAddressAcquired, Src: []string{stateConnecting}, Dst: stateConnected},
			{Name: eventLinkLost, Src: []string{stateConnected, stateConnecting}, Dst: stateConnecting},
		},
		fsm.Callbacks{
			// Runs inside the FSM transition: must not call back into the FSM.
			"enter_state": func(_ context.Context, e *fsm.Event) {
				mgr.entered(parseState(e.Src), parseState(e.Dst))
			},
		},
	)

	return mgr
}

// State returns the current link state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run applies station events until ctx is done. Start it before Connect.
func (m *Manager) Run(ctx context.Context) {
	events := m.station.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				m.log.Warnw("station event stream closed")
				return
			}
			m.Handle(ctx, ev)
		case ev := <-m.retries:
			m.Handle(ctx, ev)
		}
	}
}

// Connect starts the station with creds and blocks until the link is
// connected or timeout elapses. Run must already be consuming events.
func (m *Manager) Connect(ctx context.Context, creds Credentials, timeout time.Duration) error {
	m.log.Infow("starting station", "ssid", creds.SSID, "timeout", timeout)

	if err := m.station.Start(ctx, creds); err != nil {
		return fmt.Errorf("link: start station: %w", err)
	}
	if !m.WaitConnected(ctx, timeout) {
		m.log.Errorw("link did not come up", "state", m.State().String(), "timeout", timeout)
		return ErrConnectTimeout
	}

	m.log.Infow("link connected")
	return nil
}

// WaitConnected blocks until the link is connected, timeout elapses or ctx
// ends. It reports whether the link was connected.
func (m *Manager) WaitConnected(ctx context.Context, timeout time.Duration) bool {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return true
	}
	up := m.up
	m.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-up:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Handle applies one station event. It never blocks on the network.
func (m *Manager) Handle(ctx context.Context, ev Event) {
	name := ev.Kind.fsmEvent()
	if name == "" {
		m.log.Debugw("unknown station event ignored", "kind", int(ev.Kind))
		return
	}

	switch ev.Kind {
	case EventLinkLost:
		m.metrics.LinkWasLost()
		m.log.Warnw("link lost, re-associating", "reason", ev.Reason)
	case EventAddressAcquired:
		m.log.Infow("address acquired", "addr", ev.Addr)
	}

	err := m.machine.Event(ctx, name)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		m.log.Debugw("station event ignored in current state",
			"event", name, "state", m.State().String(), "err", err)
		return
	}

	if ev.Kind == EventLinkStart || ev.Kind == EventLinkLost {
		m.associate()
	}
}

func (m *Manager) associate() {
	m.metrics.Associating()

	if err := m.station.Associate(); err != nil {
		m.log.Errorw("association attempt failed to start", "err", err, "retry_in", m.retryDelay)
		time.AfterFunc(m.retryDelay, func() {
			select {
			case m.retries <- Event{Kind: EventLinkLost, Reason: "associate: " + err.Error()}:
			default:
				// a retry is already pending
			}
		})
	}
}

func (m *Manager) entered(src, dst State) {
	m.mu.Lock()
	m.state = dst
	switch {
	case dst == StateConnected:
		close(m.up)
	case src == StateConnected:
		m.up = make(chan struct{})
	}
	m.mu.Unlock()

	m.metrics.LinkStateChanged(int(dst))
	m.log.Infow("link state changed", "from", src.String(), "to", dst.String())
}
