package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/config"
	"github.com/dmitrijs2005/gophsession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/filex"
	"github.com/redis/go-redis/v9"
)

// openStore opens the configured session store and returns it with its
// closer.
func openStore(ctx context.Context, c *config.Config) (metadata.Repository, func() error, error) {
	switch c.StorageBackend {
	case config.StorageSQLite, "":
		if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
			return nil, nil, err
		}
		db, err := client.InitDatabase(ctx, c.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init database: %w", err)
		}
		return metadata.NewSQLiteRepository(db), db.Close, nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return metadata.NewRedisRepository(rdb, c.RedisPrefix), rdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", common.ErrUnknownStorageBackend, c.StorageBackend)
	}
}
