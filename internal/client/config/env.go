package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const envPrefix = "GOPHSESSION"

// parseEnv overlays Config with GOPHSESSION_* environment variables, e.g.
// GOPHSESSION_SERVER_ENDPOINT_ADDR or GOPHSESSION_REQUEST_TIMEOUT=2s.
// Unset variables leave the field alone. A malformed duration is reported
// and leaves cfg partly overlaid.
func parseEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	strs := map[string]*string{
		"server_endpoint_addr": &cfg.ServerEndpointAddr,
		"storage_backend":      &cfg.StorageBackend,
		"database_path":        &cfg.DatabasePath,
		"redis_addr":           &cfg.RedisAddr,
		"redis_prefix":         &cfg.RedisPrefix,
		"log_level":            &cfg.LogLevel,
		"log_format":           &cfg.LogFormat,
	}
	for key, dst := range strs {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	durations := map[string]*time.Duration{
		"online_check_interval": &cfg.OnlineCheckInterval,
		"request_timeout":       &cfg.RequestTimeout,
		"recheck_interval":      &cfg.RecheckInterval,
	}
	for key, dst := range durations {
		_ = v.BindEnv(key)
		if !v.IsSet(key) {
			continue
		}
		d, err := cast.ToDurationE(v.Get(key))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", envPrefix, strings.ToUpper(key), err)
		}
		*dst = d
	}
	return nil
}
