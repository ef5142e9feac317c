// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the AI Daily client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the sync server (http://host:port).
//   - DatabaseDSN: SQLite DSN for the local store.
//   - RequestTimeout: per-request timeout for all server calls.
type Config struct {
	ServerEndpointAddr string
	DatabaseDSN        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8001"
	c.DatabaseDSN = "aidaily.db"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
