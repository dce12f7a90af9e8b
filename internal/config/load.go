// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvWiFiPassphrase overrides wifi.passphrase when set.
const EnvWiFiPassphrase = "DISTALERT_WIFI_PASSPHRASE"

// Load reads and decodes a YAML config file.
// It does not validate or apply defaults; callers run Validate then Normalize.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes into a Config. Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if v := os.Getenv(EnvWiFiPassphrase); v != "" {
		cfg.WiFi.Passphrase = v
	}

	return &cfg, nil
}
