// internal/actuator/gpio.go
package actuator

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// GPIO is an actuator on a single output pin.
type GPIO struct {
	pin       gpio.PinOut
	activeLow bool
}

func NewGPIO(name string, activeLow bool) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio actuator: host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio actuator: no gpio pin named %q", name)
	}
	return newGPIO(p, activeLow), nil
}

func newGPIO(p gpio.PinOut, activeLow bool) *GPIO {
	return &GPIO{pin: p, activeLow: activeLow}
}

func (g *GPIO) SetLevel(active bool) error {
	return g.pin.Out(electrical(active, g.activeLow))
}

// Close leaves the output inactive.
func (g *GPIO) Close() error {
	return g.SetLevel(false)
}

func electrical(active, activeLow bool) gpio.Level {
	return gpio.Level(active != activeLow)
}
