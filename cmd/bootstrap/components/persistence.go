package components

import (
	"coupon-issuer/internal/infra/localcache"
	"coupon-issuer/internal/infra/redisstore"
	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/internal/infra/uow"
	"coupon-issuer/internal/pkg/config"
	"coupon-issuer/internal/usecase/commands"
	"coupon-issuer/internal/usecase/queries"
	"coupon-issuer/internal/usecase/shared"
	"coupon-issuer/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	storeModule,
	fastStoreModule,
)

var baseOption = fx.Provide(
	NewSQLQueries,
)

var storeModule = fx.Module("persistence/store",
	fx.Provide(
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Cache source reads
		NewCouponSource,
	),
)

var fastStoreModule = fx.Module("persistence/faststore",
	fx.Provide(
		// Coupon cache tiers
		fx.Annotate(
			NewLocalCouponCache,
			fx.As(new(queries.LocalCouponTier)),
		),
		fx.Annotate(
			NewSharedCouponCache,
			fx.As(new(queries.SharedCouponTier)),
		),
		// Admission
		redisstore.NewAdmissionGate,
		func(g *redisstore.AdmissionGate) commands.Admitter { return g },
		func(g *redisstore.AdmissionGate) commands.AdmissionMarker { return g },
		func(g *redisstore.AdmissionGate) worker.AdmissionReleaser { return g },
		// Queue
		fx.Annotate(
			redisstore.NewRequestQueue,
			fx.As(new(worker.Queue)),
		),
		// Lock
		fx.Annotate(
			redisstore.NewLocker,
			fx.As(new(commands.Locker)),
		),
	),
)

func NewSQLQueries(_ *pgxpool.Pool) *sqlc.Queries {
	return sqlc.New()
}

// NewCouponSource reads coupons outside any transaction, without row locks.
func NewCouponSource(u shared.UnitOfWork) queries.CouponSource {
	return u.CommandReads()
}

func NewLocalCouponCache(cfg config.IssueConfig) *localcache.CouponLocalCache {
	return localcache.NewCouponLocalCache(cfg.LocalCacheSize, cfg.LocalCacheTTL)
}

func NewSharedCouponCache(rdb *redis.Client, cfg config.IssueConfig) *redisstore.CouponCacheStore {
	return redisstore.NewCouponCacheStore(rdb, cfg.SharedCacheTTL)
}
