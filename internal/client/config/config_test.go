package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, StorageSQLite, c.StorageBackend)
	assert.Equal(t, "gophsession.db", c.DatabasePath)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, 10*time.Second, c.RecheckInterval)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg, err := LoadConfig()

	require.NoError(t, err)
	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"server_endpoint_addr": "json:1",
		"database_path":        "json.db",
		"log_level":            "debug",
		"request_timeout":      "7s",
	})
	t.Setenv("GOPHSESSION_SERVER_ENDPOINT_ADDR", "env:2")
	t.Setenv("GOPHSESSION_DATABASE_PATH", "env.db")
	os.Args = []string{"testbin", "-c", path, "-a", "flag:3"}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "flag:3", cfg.ServerEndpointAddr, "flags beat env")
	assert.Equal(t, "env.db", cfg.DatabasePath, "env beats json")
	assert.Equal(t, "debug", cfg.LogLevel, "json beats defaults")
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.RecheckInterval)
}

func TestLoadConfig_BadEnvDuration(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv("GOPHSESSION_REQUEST_TIMEOUT", "later")

	cfg, err := LoadConfig()

	require.Error(t, err)
	assert.Nil(t, cfg)
}
