// internal/sensor/hcsr04.go
package sensor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// triggerWidth is the HC-SR04 trigger pulse.
const triggerWidth = 10 * time.Microsecond

type HCSR04Config struct {
	TriggerPin    string
	EchoPin       string
	MaxDistanceCm int
}

// HCSR04 drives an ultrasonic rangefinder on two GPIO lines.
type HCSR04 struct {
	mu      sync.Mutex
	trigger gpio.PinIO
	echo    gpio.PinIO
	maxCm   int
}

func NewHCSR04(c HCSR04Config) (*HCSR04, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hcsr04: host init: %w", err)
	}

	trig := gpioreg.ByName(c.TriggerPin)
	if trig == nil {
		return nil, fmt.Errorf("hcsr04: no gpio pin named %q", c.TriggerPin)
	}
	echo := gpioreg.ByName(c.EchoPin)
	if echo == nil {
		return nil, fmt.Errorf("hcsr04: no gpio pin named %q", c.EchoPin)
	}

	return newHCSR04(trig, echo, c.MaxDistanceCm)
}

func newHCSR04(trig, echo gpio.PinIO, maxCm int) (*HCSR04, error) {
	if err := trig.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("hcsr04: trigger low: %w", err)
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("hcsr04: echo input: %w", err)
	}
	return &HCSR04{trigger: trig, echo: echo, maxCm: maxCm}, nil
}

// Measure fires one ping. timeout bounds the wait for the echo to start;
// the echo itself may last at most the time of flight for maxCm.
func (s *HCSR04) Measure(timeout time.Duration) Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.echo.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return fault(fmt.Errorf("hcsr04: arm rising edge: %w", err))
	}

	if err := s.trigger.Out(gpio.High); err != nil {
		return fault(fmt.Errorf("hcsr04: trigger: %w", err))
	}
	time.Sleep(triggerWidth)
	if err := s.trigger.Out(gpio.Low); err != nil {
		return fault(fmt.Errorf("hcsr04: trigger: %w", err))
	}

	if !s.echo.WaitForEdge(timeout) {
		return fault(ErrTimeout)
	}
	start := time.Now()

	if err := s.echo.In(gpio.PullDown, gpio.FallingEdge); err != nil {
		return fault(fmt.Errorf("hcsr04: arm falling edge: %w", err))
	}

	// Margin for edge latency; anything longer is past max range anyway.
	window := EchoWindow(s.maxCm) + time.Millisecond
	if !s.echo.WaitForEdge(window) {
		return fault(ErrOutOfRange)
	}

	cm := EchoToCentimeters(time.Since(start))
	if s.maxCm > 0 && cm > s.maxCm {
		return fault(ErrOutOfRange)
	}
	return ok(cm)
}

func (s *HCSR04) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Join(
		s.trigger.Out(gpio.Low),
		s.echo.In(gpio.PullNoChange, gpio.NoEdge),
	)
}
