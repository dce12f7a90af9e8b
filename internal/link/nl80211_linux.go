// internal/link/nl80211_linux.go
//go:build linux

package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mdlayher/wifi"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
)

// DefaultAssociateTimeout bounds one association attempt, from CONNECT until
// the interface has carrier and an IPv4 address.
const DefaultAssociateTimeout = 20 * time.Second

// NL80211Station drives a Linux wireless interface.
// Association goes through nl80211 (WPA-PSK); link and address changes come
// from rtnetlink subscriptions on the same interface.
//
// The kernel acks CONNECT before the attempt completes and reports no failure
// on rtnetlink, so every attempt is armed with a watchdog: if the link is not
// up with an address within AssociateTimeout, EventLinkLost is emitted.
type NL80211Station struct {
	ifaceName string
	log       *zap.SugaredLogger

	// AssociateTimeout may be changed before Start.
	AssociateTimeout time.Duration

	client  *wifi.Client
	connect func(ifi *wifi.Interface, ssid, psk string) error
	addrOf  func(index int) (string, bool)

	events chan Event
	done   chan struct{}

	mu       sync.Mutex
	ifi      *wifi.Interface
	creds    Credentials
	up       bool // last observed carrier
	watchdog *time.Timer
}

func NewNL80211Station(iface string, log *zap.SugaredLogger) (*NL80211Station, error) {
	if iface == "" {
		return nil, errors.New("nl80211 station: interface required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	c, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("nl80211 station: open: %w", err)
	}

	return &NL80211Station{
		ifaceName:        iface,
		log:              log,
		AssociateTimeout: DefaultAssociateTimeout,
		client:           c,
		connect:          c.ConnectWPAPSK,
		addrOf:           ipv4Of,
		events:           make(chan Event, 16),
		done:             make(chan struct{}),
	}, nil
}

func (s *NL80211Station) Start(_ context.Context, creds Credentials) error {
	ifis, err := s.client.Interfaces()
	if err != nil {
		return fmt.Errorf("nl80211 station: list interfaces: %w", err)
	}

	var ifi *wifi.Interface
	for _, candidate := range ifis {
		if candidate.Name == s.ifaceName {
			ifi = candidate
			break
		}
	}
	if ifi == nil {
		return fmt.Errorf("nl80211 station: no wireless interface named %s", s.ifaceName)
	}

	nlLink, err := netlink.LinkByName(s.ifaceName)
	if err != nil {
		return fmt.Errorf("nl80211 station: lookup link: %w", err)
	}
	if err := netlink.LinkSetUp(nlLink); err != nil {
		return fmt.Errorf("nl80211 station: set link up: %w", err)
	}

	linkCh := make(chan netlink.LinkUpdate, 16)
	if err := netlink.LinkSubscribe(linkCh, s.done); err != nil {
		return fmt.Errorf("nl80211 station: subscribe link: %w", err)
	}
	addrCh := make(chan netlink.AddrUpdate, 16)
	if err := netlink.AddrSubscribe(addrCh, s.done); err != nil {
		return fmt.Errorf("nl80211 station: subscribe addr: %w", err)
	}

	s.mu.Lock()
	s.ifi = ifi
	s.creds = creds
	s.mu.Unlock()

	go s.watch(ifi.Index, linkCh, addrCh)

	s.emit(Event{Kind: EventLinkStart})
	return nil
}

// Associate sends one nl80211 CONNECT and arms the attempt watchdog.
// The kernel completes the attempt asynchronously.
func (s *NL80211Station) Associate() error {
	s.mu.Lock()
	ifi, creds := s.ifi, s.creds
	s.mu.Unlock()

	if ifi == nil {
		return errors.New("nl80211 station: not started")
	}
	if err := s.connect(ifi, creds.SSID, creds.Passphrase); err != nil {
		return err
	}

	s.arm()
	return nil
}

func (s *NL80211Station) Events() <-chan Event { return s.events }

func (s *NL80211Station) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.disarm()

	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// ---- event translation ----

func (s *NL80211Station) watch(index int, linkCh <-chan netlink.LinkUpdate, addrCh <-chan netlink.AddrUpdate) {
	for {
		select {
		case <-s.done:
			return

		case upd, ok := <-linkCh:
			if !ok {
				return
			}
			if upd.Link == nil {
				continue
			}
			attrs := upd.Link.Attrs()
			if attrs == nil || attrs.Index != index {
				continue
			}
			s.carrier(index, attrs.OperState)

		case upd, ok := <-addrCh:
			if !ok {
				return
			}
			if upd.LinkIndex != index || !upd.NewAddr || upd.LinkAddress.IP.To4() == nil {
				continue
			}
			s.addressAcquired(upd.LinkAddress.IP.String())
		}
	}
}

func (s *NL80211Station) carrier(index int, state netlink.LinkOperState) {
	carrier := state == netlink.OperUp

	s.mu.Lock()
	wasUp := s.up
	s.up = carrier
	s.mu.Unlock()

	switch {
	case wasUp && !carrier:
		s.emit(Event{Kind: EventLinkLost, Reason: "carrier " + state.String()})

	case !wasUp && carrier:
		// A reassociation that keeps its lease produces no new address update.
		if addr, ok := s.addrOf(index); ok {
			s.addressAcquired(addr)
		}
	}
}

func (s *NL80211Station) addressAcquired(addr string) {
	s.disarm()
	s.emit(Event{Kind: EventAddressAcquired, Addr: addr})
}

func (s *NL80211Station) arm() {
	timeout := s.AssociateTimeout
	if timeout <= 0 {
		timeout = DefaultAssociateTimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchdog != nil {
		s.watchdog.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(timeout, func() {
		s.mu.Lock()
		current := s.watchdog == t
		if current {
			s.watchdog = nil
		}
		s.mu.Unlock()

		if current {
			s.emit(Event{Kind: EventLinkLost, Reason: "association timed out"})
		}
	})
	s.watchdog = t
}

func (s *NL80211Station) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
}

func (s *NL80211Station) emit(ev Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- ev:
	default:
		s.log.Warnw("station event dropped, consumer too slow", "kind", int(ev.Kind))
	}
}

// ipv4Of returns the first IPv4 address already configured on the link.
func ipv4Of(index int) (string, bool) {
	l, err := netlink.LinkByIndex(index)
	if err != nil {
		return "", false
	}
	addrs, err := netlink.AddrList(l, netlink.FAMILY_V4)
	if err != nil || len(addrs) == 0 {
		return "", false
	}
	return addrs[0].IP.String(), true
}
