package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophsession/internal/flagx"
	"github.com/dmitrijs2005/gophsession/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be strings like "3s" or integer nanoseconds.
// Absent fields keep the value already in Config.
type JsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	StorageBackend      *string         `json:"storage_backend"`
	DatabasePath        *string         `json:"database_path"`
	RedisAddr           *string         `json:"redis_addr"`
	RedisPrefix         *string         `json:"redis_prefix"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RecheckInterval     *timex.Duration `json:"recheck_interval"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without the flag it does nothing. Read and unmarshal errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.StorageBackend, jc.StorageBackend)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPrefix, jc.RedisPrefix)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RecheckInterval != nil {
		cfg.RecheckInterval = jc.RecheckInterval.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
