package bootstrap

import (
	"coupon-issuer/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.IssueConfig {
			return cfg.Issue
		},
	),
)
