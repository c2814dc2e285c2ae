package config

import (
	"encoding/json"
	"os"

	"github.com/cracksmith/cracksmith/internal/flagx"
	"github.com/cracksmith/cracksmith/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling.
type JSONConfig struct {
	ServerURL            string         `json:"server_url"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	DatabasePath         string         `json:"database_path"`
	SessionCheckInterval timex.Duration `json:"session_check_interval"`
	LogLevel             string         `json:"log_level"`
}

// parseJSON overlays cfg with the non-empty values of the JSON file named by
// -c or -config. Read and unmarshal errors panic.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SessionCheckInterval.Duration > 0 {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
