// Package redis opens the shared Redis connection used by distributed backends.
package redis

import (
	"context"
	"log/slog"
	"time"

	"storehub/config"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const pingTimeout = 5 * time.Second

// ClientParams holds dependencies for the Redis client.
type ClientParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewClient returns nil when Redis is not configured. Backends that need it
// must check for nil and fail at construction.
func NewClient(params ClientParams) (*goredis.Client, error) {
	cfg := params.Config.Redis
	if cfg == nil || cfg.URL == "" {
		return nil, nil
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}

	client := goredis.NewClient(opts)

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()

			if err := client.Ping(pingCtx).Err(); err != nil {
				return errors.Wrap(err, "failed to connect to redis")
			}
			params.Logger.Info("Redis connected", slog.String("addr", opts.Addr))

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

// Module provides the optional Redis client.
var Module = fx.Options(
	fx.Provide(NewClient),
)
