package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophsession/internal/client/config"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StorageBackend: config.StorageSQLite, DatabasePath: filepath.Join(t.TempDir(), "state", "s.db")}

	repo, closeFn, err := openStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	require.NoError(t, repo.Set(ctx, "k", []byte("v")))
	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestOpenStore_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := &config.Config{StorageBackend: config.StorageRedis, RedisAddr: mr.Addr(), RedisPrefix: "t"}

	repo, closeFn, err := openStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	require.NoError(t, repo.Set(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("t:k"))
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := openStore(context.Background(), &config.Config{StorageBackend: config.StorageRedis, RedisAddr: addr})
	require.Error(t, err)
}

func TestOpenStore_Unknown(t *testing.T) {
	_, _, err := openStore(context.Background(), &config.Config{StorageBackend: "etcd"})
	require.ErrorIs(t, err, common.ErrUnknownStorageBackend)
}
