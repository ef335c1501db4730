package bootstrap

import (
	"context"

	"coupon-issuer/internal/infra/db"
	"coupon-issuer/internal/infra/redisstore"
	"coupon-issuer/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// DBModule provides the durable store pool.
var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// RedisModule provides the client shared by admission, queue, lock and cache tier.
var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedis,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	closeOnStop(lc, cleanup)
	return pool, nil
}

func NewRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	rdb, cleanup, err := redisstore.Connect(cfg.Redis)
	if err != nil {
		return nil, err
	}
	closeOnStop(lc, cleanup)
	return rdb, nil
}

// Stores are constructed before their users, so these hooks run last on stop.
func closeOnStop(lc fx.Lifecycle, cleanup func()) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})
}
