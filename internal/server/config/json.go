package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
	"github.com/dmitrijs2005/healthkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// both "168h" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC      string          `json:"endpoint_addr_grpc"`
	SecretKey             string          `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	LogLevel              string          `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. Fields
// missing from the file keep their current values.
func parseJson(config *Config) error {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	return nil
}
