package components

import (
	"coupon-issuer/internal/pkg/clock"
	"coupon-issuer/internal/usecase/commands"
	"coupon-issuer/internal/usecase/event"
	"coupon-issuer/internal/usecase/queries"
	"coupon-issuer/internal/worker"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
	fx.Invoke(subscribeCacheRefresh),
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	event.NewBus,
	func(b *event.Bus) commands.EventPublisher { return b },
	func(b *event.Bus) worker.Publisher { return b },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewSubmitUseCase,
		commands.NewIssueUseCase,
		func(c commands.IssueCommands) worker.Issuer { return c },
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCouponCache,
		func(c *queries.CouponCache) commands.CouponEntryLoader { return c },
		func(c *queries.CouponCache) queries.CouponEntryLoader { return c },
		queries.NewCouponQueries,
	),
)

// Committed issuances refresh the cached coupon so pre-screening sees exhaustion.
func subscribeCacheRefresh(bus *event.Bus, cache *queries.CouponCache) {
	bus.Subscribe("coupon-cache-refresh", cache.OnIssueCompleted)
}
