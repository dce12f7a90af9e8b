// internal/sensor/builder.go
package sensor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bernardothives/projeto-final-dsme/internal/config"
)

// Build constructs the configured sensor driver.
// Hardware is opened once here; a failure is returned to the caller.
func Build(c config.SensorConfig, log *zap.SugaredLogger) (Sensor, error) {
	switch c.Driver {
	case config.SensorDriverHCSR04:
		return NewHCSR04(HCSR04Config{
			TriggerPin:    c.TriggerPin,
			EchoPin:       c.EchoPin,
			MaxDistanceCm: c.MaxDistanceCm,
		})

	case config.SensorDriverModbus:
		return NewModbus(ModbusConfig{
			Endpoint:      c.Endpoint,
			UnitID:        c.UnitID,
			Register:      c.Register,
			MaxDistanceCm: c.MaxDistanceCm,
		}, log)

	case config.SensorDriverSim:
		return NewSim(c.SimValues, time.Millisecond), nil

	default:
		return nil, fmt.Errorf("sensor: unknown driver %q", c.Driver)
	}
}
