package components

import (
	"context"
	"log/slog"

	"coupon-issuer/internal/pkg/config"
	"coupon-issuer/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewFulfillmentWorker,
	),
	fx.Invoke(startFulfillmentWorker),
)

func startFulfillmentWorker(lc fx.Lifecycle, w *worker.FulfillmentWorker, cfg config.IssueConfig) {
	if !cfg.WorkerEnabled {
		slog.Info("fulfillment worker disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			w.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			w.Stop()
			return nil
		},
	})
}
