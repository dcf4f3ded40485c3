package ratelimit

import (
	"context"
	"log/slog"

	"storehub/config"
	"storehub/internal/domain/constants"
	"storehub/internal/domain/service"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// LimiterParams holds dependencies for the auth rate limiter.
type LimiterParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
	Redis  *goredis.Client `optional:"true"`
}

// NewRateLimiter selects the backend named by auth.rateLimit.backend.
func NewRateLimiter(params LimiterParams) (service.RateLimiter, error) {
	params.Config.ApplyDefaults()
	cfg := params.Config.Auth.RateLimit

	switch cfg.Backend {
	case constants.BackendRedis:
		if params.Redis == nil {
			return nil, errors.New("redis rate limiter requires redis.url")
		}
		params.Logger.Info("Using redis rate limiter")

		return NewRedisLimiter(params.Redis, cfg.MaxAttempts, cfg.Window), nil
	case "", constants.BackendMemory:
		limiter := NewMemoryLimiter(cfg.MaxAttempts, cfg.Window)
		params.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				limiter.Stop()

				return nil
			},
		})

		return limiter, nil
	default:
		return nil, errors.Errorf("unsupported rate limit backend: %s", cfg.Backend)
	}
}

// Module provides the auth rate limiter.
var Module = fx.Options(
	fx.Provide(NewRateLimiter),
)
