package config

import (
	"fmt"
	"time"
)

// Storage backends for the session store.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds runtime settings for the gophsession CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the auth gRPC endpoint.
//   - OnlineCheckInterval: how often the client checks server reachability.
//   - StorageBackend: "sqlite" (DatabasePath) or "redis" (RedisAddr, RedisPrefix).
//   - RequestTimeout: per-call deadline for transport requests.
//   - RecheckInterval: retry delay after a timer refresh that left the
//     refresh timer disarmed while the session can still be refreshed.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration

	StorageBackend string
	DatabasePath   string
	RedisAddr      string
	RedisPrefix    string

	RequestTimeout  time.Duration
	RecheckInterval time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.StorageBackend = StorageSQLite
	c.DatabasePath = "gophsession.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "gophsession"
	c.RequestTimeout = 5 * time.Second
	c.RecheckInterval = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), GOPHSESSION_* environment variables and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	parseFlags(cfg)
	return cfg, nil
}
