// internal/actuator/actuator.go
package actuator

import (
	"errors"
	"time"
)

// Actuator drives a binary output. active is the logical level;
// drivers handle electrical inversion.
type Actuator interface {
	SetLevel(active bool) error
	Close() error
}

// Pulse sets a active, holds for hold, then sets it inactive.
// The inactive write is always attempted, even if activation failed.
func Pulse(a Actuator, hold time.Duration, sleep func(time.Duration)) error {
	if sleep == nil {
		sleep = time.Sleep
	}

	onErr := a.SetLevel(true)
	if onErr == nil {
		sleep(hold)
	}
	offErr := a.SetLevel(false)

	return errors.Join(onErr, offErr)
}
