// internal/link/types.go
package link

import (
	"context"
	"errors"
)

// ErrConnectTimeout is returned by Manager.Connect when the link does not
// reach Connected within the wait.
var ErrConnectTimeout = errors.New("link: connect timed out")

// State is the wireless association status.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return stateIdle
	case StateConnecting:
		return stateConnecting
	case StateConnected:
		return stateConnected
	default:
		return "unknown"
	}
}

// ---- FSM names ----

const (
	stateIdle       = "idle"
	stateConnecting = "connecting"
	stateConnected  = "connected"

	eventLinkStart       = "link_start"
	eventLinkLost        = "link_lost"
	eventAddressAcquired = "address_acquired"
)

func parseState(s string) State {
	switch s {
	case stateConnecting:
		return StateConnecting
	case stateConnected:
		return StateConnected
	default:
		return StateIdle
	}
}

// EventKind is one of the asynchronous notifications a station emits.
type EventKind int

const (
	EventLinkStart EventKind = iota + 1
	EventLinkLost
	EventAddressAcquired
)

func (k EventKind) fsmEvent() string {
	switch k {
	case EventLinkStart:
		return eventLinkStart
	case EventLinkLost:
		return eventLinkLost
	case EventAddressAcquired:
		return eventAddressAcquired
	default:
		return ""
	}
}

// Event is delivered by a Station on its Events channel.
type Event struct {
	Kind   EventKind
	Reason string // link lost only
	Addr   string // address acquired only
}

// Credentials for a WPA2-PSK network.
type Credentials struct {
	SSID       string
	Passphrase string
}

// Station abstracts the radio and the network stack underneath the manager.
//
// Start brings the interface up with creds and must emit EventLinkStart once ready.
// Associate begins one association attempt and returns without waiting for it.
// Every accepted attempt must end in EventAddressAcquired or EventLinkLost
// within a bounded time, including attempts that fail silently.
type Station interface {
	Start(ctx context.Context, creds Credentials) error
	Associate() error
	Events() <-chan Event
	Close() error
}
