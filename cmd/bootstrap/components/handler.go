package components

import (
	"context"

	"coupon-issuer/internal/handler"
	"coupon-issuer/internal/handler/api"
	"coupon-issuer/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCouponIssueHandler,
		middleware.NewAdmissionLimiter,
	),
	fx.Invoke(
		handler.NewRouter,
		startLimiterJanitor,
	),
)

func startLimiterJanitor(lc fx.Lifecycle, limiter *middleware.AdmissionLimiter) {
	if limiter == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			limiter.StartJanitor(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
