// internal/sensor/sensor.go
package sensor

import (
	"errors"
	"time"
)

var (
	// ErrTimeout means no echo (or no reply) arrived within the measurement window.
	ErrTimeout = errors.New("sensor: measurement timed out")
	// ErrOutOfRange means a reading arrived but is outside the usable range.
	ErrOutOfRange = errors.New("sensor: distance out of range")
)

// Measurement is the result of one Measure call.
// OK is false whenever Err is set; DistanceCm is only meaningful when OK.
type Measurement struct {
	DistanceCm int
	OK         bool
	Err        error
	At         time.Time
}

func ok(cm int) Measurement {
	return Measurement{DistanceCm: cm, OK: true, At: time.Now()}
}

func fault(err error) Measurement {
	return Measurement{Err: err, At: time.Now()}
}

// Sensor measures distance. Measure blocks for at most timeout.
type Sensor interface {
	Measure(timeout time.Duration) Measurement
	Close() error
}

// speedOfSoundCmPerUs is 343 m/s expressed in centimeters per microsecond.
const speedOfSoundCmPerUs = 0.0343

// EchoToCentimeters converts an HC-SR04 echo width (round trip) into
// a one-way distance, truncated to whole centimeters.
func EchoToCentimeters(echo time.Duration) int {
	us := float64(echo) / float64(time.Microsecond)
	return int(us * speedOfSoundCmPerUs / 2)
}

// EchoWindow is the longest echo that still fits within maxCm.
func EchoWindow(maxCm int) time.Duration {
	us := float64(maxCm) * 2 / speedOfSoundCmPerUs
	return time.Duration(us * float64(time.Microsecond))
}
