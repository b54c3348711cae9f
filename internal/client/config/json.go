package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
	"github.com/dmitrijs2005/healthkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent fields keep
// the values of earlier sources.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	DatabasePath       string          `json:"database_path"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	MaxUnverifiedTrust *timex.Duration `json:"max_unverified_trust"`
	LogLevel           string          `json:"log_level"`
	MetricsAddr        *string         `json:"metrics_addr"`
}

func parseJson(cfg *Config) error {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxUnverifiedTrust != nil {
		cfg.MaxUnverifiedTrust = jc.MaxUnverifiedTrust.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.MetricsAddr != nil {
		cfg.MetricsAddr = *jc.MetricsAddr
	}
	return nil
}
