// internal/config/normalize.go
package config

// ---- DRIVERS ----

const (
	WiFiDriverNL80211 = "nl80211"
	WiFiDriverSim     = "sim"

	SensorDriverHCSR04 = "hcsr04"
	SensorDriverModbus = "modbus"
	SensorDriverSim    = "sim"

	ActuatorDriverGPIO   = "gpio"
	ActuatorDriverModbus = "modbus"
	ActuatorDriverSim    = "sim"
)

// ---- DEFAULTS ----

const (
	DefaultDeviceName         = "distalert"
	DefaultConnectTimeoutMs   = 10000
	DefaultSimAssociateMs     = 200
	DefaultConfigPath         = "/config"
	DefaultLogsPath           = "/logs"
	DefaultRemoteTimeoutMs    = 5000
	DefaultIntervalMs         = 5000
	DefaultThresholdCm        = 20
	DefaultPulseMs            = 100
	DefaultSensorTimeoutMs    = 100
	DefaultMaxDistanceCm      = 400
	DefaultActuatorTimeoutMs  = 1000
	DefaultMirrorTopic        = "distalert/measurements"
	DefaultMirrorTimeoutMs    = 2000
	DefaultLoggingLevel       = "INFO"
	DefaultLoggingFormat      = "CONSOLE"
	DefaultModbusSensorUnitID = 1
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.Name == "" {
		cfg.Device.Name = DefaultDeviceName
	}

	// ---- wifi ----
	if cfg.WiFi.Driver == "" {
		cfg.WiFi.Driver = WiFiDriverNL80211
	}
	if cfg.WiFi.ConnectTimeoutMs == 0 {
		cfg.WiFi.ConnectTimeoutMs = DefaultConnectTimeoutMs
	}
	if cfg.WiFi.SimAssociateDelayMs == 0 {
		cfg.WiFi.SimAssociateDelayMs = DefaultSimAssociateMs
	}

	// ---- remote ----
	if cfg.Remote.ConfigPath == "" {
		cfg.Remote.ConfigPath = DefaultConfigPath
	}
	if cfg.Remote.LogsPath == "" {
		cfg.Remote.LogsPath = DefaultLogsPath
	}
	if cfg.Remote.TimeoutMs == 0 {
		cfg.Remote.TimeoutMs = DefaultRemoteTimeoutMs
	}

	// ---- loop ----
	if cfg.Loop.IntervalMs == 0 {
		cfg.Loop.IntervalMs = DefaultIntervalMs
	}
	if cfg.Loop.DefaultThresholdCm == nil {
		v := DefaultThresholdCm
		cfg.Loop.DefaultThresholdCm = &v
	}
	if cfg.Loop.PulseMs == 0 {
		cfg.Loop.PulseMs = DefaultPulseMs
	}

	// ---- sensor ----
	if cfg.Sensor.TimeoutMs == 0 {
		cfg.Sensor.TimeoutMs = DefaultSensorTimeoutMs
	}
	if cfg.Sensor.MaxDistanceCm == 0 {
		cfg.Sensor.MaxDistanceCm = DefaultMaxDistanceCm
	}
	if cfg.Sensor.Driver == SensorDriverModbus && cfg.Sensor.UnitID == 0 {
		cfg.Sensor.UnitID = DefaultModbusSensorUnitID
	}

	// ---- actuator ----
	if cfg.Actuator.TimeoutMs == 0 {
		cfg.Actuator.TimeoutMs = DefaultActuatorTimeoutMs
	}

	// ---- mirror ----
	if cfg.Mirror.Topic == "" {
		cfg.Mirror.Topic = DefaultMirrorTopic
	}
	if cfg.Mirror.ClientID == "" {
		cfg.Mirror.ClientID = cfg.Device.Name
	}
	if cfg.Mirror.TimeoutMs == 0 {
		cfg.Mirror.TimeoutMs = DefaultMirrorTimeoutMs
	}

	// ---- logging ----
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
}
