// Package config handles configuration for the development identity
// gateway: defaults, JSON overlay, environment and command-line flags.
package config

import "time"

// Config holds runtime settings for the development gateway.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - TokenValidityDuration: session token lifetime.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC      string        `env:"ADDR"`
	SecretKey             string        `env:"SECRET_KEY"`
	TokenValidityDuration time.Duration `env:"TOKEN_VALIDITY"`
	LogLevel              string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret is insecure and must be overridden outside local runs.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 7 * 24 * time.Hour
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the optional JSON file, then
// HEALTHKEEPER_GATEWAY_* variables and finally command-line flags.
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
