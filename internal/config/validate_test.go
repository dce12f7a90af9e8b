// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a valid config quickly
func validConfig() *Config {
	return &Config{
		WiFi: WiFiConfig{
			Driver:     WiFiDriverNL80211,
			Interface:  "wlan0",
			SSID:       "s24",
			Passphrase: "tavulha1",
		},
		Remote: RemoteConfig{
			BaseURL: "http://192.168.1.10:3000",
		},
		Sensor: SensorConfig{
			Driver:     SensorDriverHCSR04,
			TriggerPin: "GPIO5",
			EchoPin:    "GPIO18",
		},
		Actuator: ActuatorConfig{
			Driver:    ActuatorDriverGPIO,
			Pin:       "GPIO22",
			ActiveLow: true,
		},
	}
}

func intPtr(v int) *int { return &v }

// ---- tests ----

func TestValidate_MinimalConfigAccepted(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"missing ssid":           func(c *Config) { c.WiFi.SSID = "" },
		"short passphrase":       func(c *Config) { c.WiFi.Passphrase = "short" },
		"nl80211 no interface":   func(c *Config) { c.WiFi.Interface = "" },
		"unknown wifi driver":    func(c *Config) { c.WiFi.Driver = "esp" },
		"missing base url":       func(c *Config) { c.Remote.BaseURL = "" },
		"base url bad scheme":    func(c *Config) { c.Remote.BaseURL = "ftp://host" },
		"relative config path":   func(c *Config) { c.Remote.ConfigPath = "config" },
		"negative timeout":       func(c *Config) { c.Remote.TimeoutMs = -1 },
		"negative threshold":     func(c *Config) { c.Loop.DefaultThresholdCm = intPtr(-5) },
		"missing sensor driver":  func(c *Config) { c.Sensor.Driver = "" },
		"hcsr04 without pins":    func(c *Config) { c.Sensor.EchoPin = "" },
		"modbus sensor endpoint": func(c *Config) { c.Sensor = SensorConfig{Driver: SensorDriverModbus} },
		"missing actuator":       func(c *Config) { c.Actuator.Driver = "" },
		"gpio without pin":       func(c *Config) { c.Actuator.Pin = "" },
		"unknown log format":     func(c *Config) { c.Logging.Format = "xml" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			if err := Validate(c); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_SimDriversNeedNoHardware(t *testing.T) {
	c := &Config{
		WiFi:     WiFiConfig{Driver: WiFiDriverSim, SSID: "bench"},
		Remote:   RemoteConfig{BaseURL: "http://localhost:3000"},
		Sensor:   SensorConfig{Driver: SensorDriverSim},
		Actuator: ActuatorConfig{Driver: ActuatorDriverSim},
	}
	if err := Validate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	c := validConfig()
	if err := Validate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Normalize(c)

	if c.Remote.ConfigPath != "/config" || c.Remote.LogsPath != "/logs" {
		t.Fatalf("paths: got %q %q", c.Remote.ConfigPath, c.Remote.LogsPath)
	}
	if c.Remote.TimeoutMs != 5000 {
		t.Fatalf("remote timeout: got %d want 5000", c.Remote.TimeoutMs)
	}
	if c.Loop.IntervalMs != 5000 || c.Loop.PulseMs != 100 || *c.Loop.DefaultThresholdCm != 20 {
		t.Fatalf("loop defaults: %+v", c.Loop)
	}
	if c.WiFi.ConnectTimeoutMs != 10000 {
		t.Fatalf("connect timeout: got %d want 10000", c.WiFi.ConnectTimeoutMs)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	c := validConfig()
	c.Loop.IntervalMs = 1000
	c.Remote.LogsPath = "/telemetry"
	Normalize(c)

	if c.Loop.IntervalMs != 1000 {
		t.Fatalf("interval overwritten: %d", c.Loop.IntervalMs)
	}
	if c.Remote.LogsPath != "/telemetry" {
		t.Fatalf("logs path overwritten: %q", c.Remote.LogsPath)
	}
}

func TestNormalize_KeepsExplicitZeroThreshold(t *testing.T) {
	c, err := Parse([]byte("loop:\n  default_threshold_cm: 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Loop.DefaultThresholdCm == nil {
		t.Fatalf("explicit 0 parsed as omitted")
	}
	Normalize(c)
	if *c.Loop.DefaultThresholdCm != 0 {
		t.Fatalf("explicit 0 rewritten to %d", *c.Loop.DefaultThresholdCm)
	}

	c, err = Parse([]byte("loop:\n  interval_ms: 1000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Normalize(c)
	if *c.Loop.DefaultThresholdCm != DefaultThresholdCm {
		t.Fatalf("omitted threshold: got %d want %d", *c.Loop.DefaultThresholdCm, DefaultThresholdCm)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("wifi:\n  ssid: x\n  channel: 6\n"))
	if err == nil || !strings.Contains(err.Error(), "channel") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestParse_PassphraseFromEnv(t *testing.T) {
	t.Setenv(EnvWiFiPassphrase, "from-env-secret")

	c, err := Parse([]byte("wifi:\n  ssid: s24\n  passphrase: in-file-secret\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.WiFi.Passphrase != "from-env-secret" {
		t.Fatalf("passphrase: got %q", c.WiFi.Passphrase)
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	t.Setenv(EnvWiFiPassphrase, "bench-passphrase")

	for _, path := range []string{"../../configs/distalert.example.yaml", "../../configs/distalert.sim.yaml"} {
		c, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load: %v", path, err)
		}
		if err := Validate(c); err != nil {
			t.Fatalf("%s: validate: %v", path, err)
		}
		Normalize(c)
		if c.Loop.IntervalMs != DefaultIntervalMs || c.Remote.TimeoutMs != DefaultRemoteTimeoutMs {
			t.Fatalf("%s: loop/remote timing not normalized: %+v %+v", path, c.Loop, c.Remote)
		}
	}
}
