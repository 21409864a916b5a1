package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/config"
	"github.com/dmitrijs2005/venuebook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/venuebook/internal/filex"
	"github.com/redis/go-redis/v9"
)

// openStore builds the session store for the configured driver and returns
// the function that releases it.
func openStore(ctx context.Context, c *config.Config) (metadata.Repository, func() error, error) {
	switch c.StoreDriver {
	case config.DriverSQLite:
		path, err := filex.EnsureParentDir(c.StorePath)
		if err != nil {
			return nil, nil, err
		}
		db, err := client.InitDatabase(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("init database %s: %w", path, err)
		}
		return metadata.NewSQLiteRepository(db), db.Close, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", c.RedisAddr, err)
		}
		return metadata.NewRedisRepository(rdb, metadata.DefaultRedisPrefix), rdb.Close, nil

	case config.DriverMemory:
		return metadata.NewMemoryRepository(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
}
