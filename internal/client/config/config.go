package config

import "time"

// Config holds runtime settings for the healthkeeper client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the identity gateway.
//   - DatabasePath: SQLite file backing the persistent session tier.
//   - RequestTimeout: bound for gateway calls that carry no deadline.
//   - MaxUnverifiedTrust: how long a session that cannot be verified at
//     startup stays trusted after its last confirmation; zero means forever.
//   - LogLevel: debug, info, warn or error.
//   - MetricsAddr: listen address for /metrics; empty disables it.
type Config struct {
	ServerEndpointAddr string        `env:"SERVER_ADDR"`
	DatabasePath       string        `env:"DATABASE_PATH"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	MaxUnverifiedTrust time.Duration `env:"MAX_UNVERIFIED_TRUST"`
	LogLevel           string        `env:"LOG_LEVEL"`
	MetricsAddr        string        `env:"METRICS_ADDR"`
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "healthkeeper.db"
	c.RequestTimeout = 12 * time.Second
	c.MaxUnverifiedTrust = 0
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

// LoadConfig applies defaults, then the optional JSON file, then
// HEALTHKEEPER_* environment variables and finally command-line flags.
// Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
