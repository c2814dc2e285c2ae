// Package config loads runtime configuration for the cracksmith CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the API, e.g. http://127.0.0.1:5000/api
//	-d string   path of the local sqlite database
//	-t int      request timeout (seconds)
//	-i int      session expiry check interval (seconds)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "15s"
// or integer nanoseconds. Omitted keys keep their default:
//
//	{
//	  "server_url": "https://cracker.example.com/api",
//	  "request_timeout": "15s",
//	  "database_path": "/var/lib/cracksmith/cracksmith.db",
//	  "session_check_interval": "30s",
//	  "log_level": "debug"
//	}
//
// This package does not read environment variables; use the JSON file or
// flags to configure values.
package config
