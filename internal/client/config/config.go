package config

import (
	"time"

	"github.com/cracksmith/cracksmith/internal/buildinfo"
)

// Config holds runtime settings for the cracksmith CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API, including the /api prefix.
//   - RequestTimeout: upper bound for one HTTP round trip.
//   - DatabasePath: sqlite file holding the persisted credentials.
//   - SessionCheckInterval: how often the CLI checks access-token expiry.
//   - LogLevel: debug, info, warn or error.
//   - ClientVersion: reported to the server on installation tracking.
type Config struct {
	ServerURL            string
	RequestTimeout       time.Duration
	DatabasePath         string
	SessionCheckInterval time.Duration
	LogLevel             string
	ClientVersion        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000/api"
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "cracksmith.db"
	c.SessionCheckInterval = 30 * time.Second
	c.LogLevel = "info"
	c.ClientVersion = buildinfo.Current().Version
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
