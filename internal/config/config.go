// internal/config/config.go
package config

type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	WiFi     WiFiConfig     `yaml:"wifi"`
	Remote   RemoteConfig   `yaml:"remote"`
	Loop     LoopConfig     `yaml:"loop"`
	Sensor   SensorConfig   `yaml:"sensor"`
	Actuator ActuatorConfig `yaml:"actuator"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Mirror   MirrorConfig   `yaml:"mirror"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name string `yaml:"name"`
}

// ---- WIFI ----

type WiFiConfig struct {
	Driver           string `yaml:"driver"`    // nl80211 | sim
	Interface        string `yaml:"interface"` // nl80211 only, e.g. wlan0
	SSID             string `yaml:"ssid"`
	Passphrase       string `yaml:"passphrase"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`

	// sim only
	SimAssociateDelayMs int `yaml:"sim_associate_delay_ms"`
}

// ---- REMOTE ----

type RemoteConfig struct {
	BaseURL    string `yaml:"base_url"`
	ConfigPath string `yaml:"config_path"`
	LogsPath   string `yaml:"logs_path"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- LOOP ----

type LoopConfig struct {
	IntervalMs         int  `yaml:"interval_ms"`
	// DefaultThresholdCm is nil when omitted; an explicit 0 never alerts
	// until the backend supplies a threshold.
	DefaultThresholdCm *int `yaml:"default_threshold_cm"`
	PulseMs            int  `yaml:"pulse_ms"`
}

// ---- SENSOR ----

type SensorConfig struct {
	Driver        string `yaml:"driver"` // hcsr04 | modbus | sim
	TimeoutMs     int    `yaml:"timeout_ms"`
	MaxDistanceCm int    `yaml:"max_distance_cm"`

	// hcsr04
	TriggerPin string `yaml:"trigger_pin"`
	EchoPin    string `yaml:"echo_pin"`

	// modbus
	Endpoint string `yaml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id"`
	Register uint16 `yaml:"register"`

	// sim
	SimValues []int `yaml:"sim_values"`
}

// ---- ACTUATOR ----

type ActuatorConfig struct {
	Driver    string `yaml:"driver"` // gpio | modbus | sim
	ActiveLow bool   `yaml:"active_low"`

	// gpio
	Pin string `yaml:"pin"`

	// modbus
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Coil      uint16 `yaml:"coil"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- OBSERVABILITY ----

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the listener
}

type MirrorConfig struct {
	Broker    string `yaml:"broker"` // empty disables the mirror
	Topic     string `yaml:"topic"`
	ClientID  string `yaml:"client_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
