// internal/actuator/builder.go
package actuator

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bernardothives/projeto-final-dsme/internal/config"
)

// Build opens the configured actuator and drives it inactive.
// Any error here is a startup failure.
func Build(c config.ActuatorConfig, log *zap.SugaredLogger) (Actuator, error) {
	var (
		a   Actuator
		err error
	)

	switch c.Driver {
	case config.ActuatorDriverGPIO:
		a, err = NewGPIO(c.Pin, c.ActiveLow)

	case config.ActuatorDriverModbus:
		a, err = NewModbus(ModbusConfig{
			Endpoint:  c.Endpoint,
			UnitID:    c.UnitID,
			Coil:      c.Coil,
			ActiveLow: c.ActiveLow,
			Timeout:   time.Duration(c.TimeoutMs) * time.Millisecond,
		})

	case config.ActuatorDriverSim:
		a = NewSim(log)

	default:
		return nil, fmt.Errorf("actuator: unknown driver %q", c.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := a.SetLevel(false); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("actuator: drive inactive: %w", err)
	}
	return a, nil
}
