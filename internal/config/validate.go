// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted where Normalize supplies a default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// WIFI
	// ------------------------------------------------------------

	w := cfg.WiFi
	switch w.Driver {
	case "", WiFiDriverNL80211:
		if w.Interface == "" {
			return fmt.Errorf("wifi: interface is required for driver %q", WiFiDriverNL80211)
		}
		// WPA2-PSK: 8..63 ASCII characters or 64 hex digits.
		if n := len(w.Passphrase); n < 8 || n > 64 {
			return fmt.Errorf("wifi: passphrase must be 8-64 characters, got %d", n)
		}
	case WiFiDriverSim:
	default:
		return fmt.Errorf("wifi: unknown driver %q", w.Driver)
	}
	if w.SSID == "" {
		return fmt.Errorf("wifi: ssid is required")
	}
	if len(w.SSID) > 32 {
		return fmt.Errorf("wifi: ssid longer than 32 bytes")
	}
	if w.ConnectTimeoutMs < 0 || w.SimAssociateDelayMs < 0 {
		return fmt.Errorf("wifi: durations must be >= 0")
	}

	// ------------------------------------------------------------
	// REMOTE
	// ------------------------------------------------------------

	r := cfg.Remote
	if r.BaseURL == "" {
		return fmt.Errorf("remote: base_url is required")
	}
	u, err := url.Parse(r.BaseURL)
	if err != nil {
		return fmt.Errorf("remote: base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("remote: base_url has no host")
	}
	for name, p := range map[string]string{"config_path": r.ConfigPath, "logs_path": r.LogsPath} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("remote: %s must start with /", name)
		}
	}
	if r.TimeoutMs < 0 {
		return fmt.Errorf("remote: timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// LOOP
	// ------------------------------------------------------------

	l := cfg.Loop
	if l.IntervalMs < 0 || l.PulseMs < 0 {
		return fmt.Errorf("loop: durations must be >= 0")
	}
	if l.DefaultThresholdCm != nil && *l.DefaultThresholdCm < 0 {
		return fmt.Errorf("loop: default_threshold_cm must be >= 0")
	}

	// ------------------------------------------------------------
	// SENSOR
	// ------------------------------------------------------------

	s := cfg.Sensor
	switch s.Driver {
	case SensorDriverHCSR04:
		if s.TriggerPin == "" || s.EchoPin == "" {
			return fmt.Errorf("sensor: trigger_pin and echo_pin are required for driver %q", s.Driver)
		}
	case SensorDriverModbus:
		if s.Endpoint == "" {
			return fmt.Errorf("sensor: endpoint is required for driver %q", s.Driver)
		}
	case SensorDriverSim:
	case "":
		return fmt.Errorf("sensor: driver is required")
	default:
		return fmt.Errorf("sensor: unknown driver %q", s.Driver)
	}
	if s.TimeoutMs < 0 || s.MaxDistanceCm < 0 {
		return fmt.Errorf("sensor: timeout_ms and max_distance_cm must be >= 0")
	}

	// ------------------------------------------------------------
	// ACTUATOR
	// ------------------------------------------------------------

	a := cfg.Actuator
	switch a.Driver {
	case ActuatorDriverGPIO:
		if a.Pin == "" {
			return fmt.Errorf("actuator: pin is required for driver %q", a.Driver)
		}
	case ActuatorDriverModbus:
		if a.Endpoint == "" {
			return fmt.Errorf("actuator: endpoint is required for driver %q", a.Driver)
		}
	case ActuatorDriverSim:
	case "":
		return fmt.Errorf("actuator: driver is required")
	default:
		return fmt.Errorf("actuator: unknown driver %q", a.Driver)
	}
	if a.TimeoutMs < 0 {
		return fmt.Errorf("actuator: timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// OBSERVABILITY
	// ------------------------------------------------------------

	if cfg.Mirror.Broker != "" {
		if _, err := url.Parse(cfg.Mirror.Broker); err != nil {
			return fmt.Errorf("mirror: broker: %w", err)
		}
	}
	if cfg.Mirror.TimeoutMs < 0 {
		return fmt.Errorf("mirror: timeout_ms must be >= 0")
	}

	switch strings.ToUpper(cfg.Logging.Format) {
	case "", "CONSOLE", "JSON":
	default:
		return fmt.Errorf("logging: unknown format %q", cfg.Logging.Format)
	}

	return nil
}
