// Package config loads runtime configuration for the gophsession CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. GOPHSESSION_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the auth gRPC endpoint
//	-i int      online status check interval (seconds)
//	-s string   storage backend (sqlite|redis)
//	-d string   SQLite database path
//	-r string   Redis address
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "storage_backend": "sqlite",
//	  "database_path": "gophsession.db",
//	  "redis_addr": "127.0.0.1:6379",
//	  "redis_prefix": "gophsession",
//	  "request_timeout": "5s",
//	  "recheck_interval": "10s",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Environment variables use the same names upper-cased with a GOPHSESSION_
// prefix, e.g. GOPHSESSION_STORAGE_BACKEND=redis. Durations take Go syntax.
package config
