// Package config loads runtime configuration for the healthkeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed HEALTHKEEPER_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the identity gateway
//	-d string   path of the SQLite session store
//	-t int      gateway request timeout (seconds)
//	-m string   metrics listen address
//
// # JSON schema
//
// Durations accept either strings like "12s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "healthkeeper.db",
//	  "request_timeout": "12s",
//	  "max_unverified_trust": "720h",
//	  "log_level": "info",
//	  "metrics_addr": ":9102"
//	}
//
// # Environment
//
//	HEALTHKEEPER_SERVER_ADDR, HEALTHKEEPER_DATABASE_PATH,
//	HEALTHKEEPER_REQUEST_TIMEOUT, HEALTHKEEPER_MAX_UNVERIFIED_TRUST,
//	HEALTHKEEPER_LOG_LEVEL, HEALTHKEEPER_METRICS_ADDR
package config
