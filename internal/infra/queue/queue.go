// Package queue provides delayed job queues for notification jobs.
package queue

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

// Queue accepts delayed jobs and hands due jobs to a consumer.
type Queue interface {
	service.JobQueue

	// Run delivers due jobs to handler from the configured number of workers.
	// It blocks until ctx is cancelled and all in-flight handlers return.
	Run(ctx context.Context, handler service.JobHandler) error
}

// QueueParams holds dependencies for the notification queue.
type QueueParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Redis  *goredis.Client `optional:"true"`
}

// NewQueue selects the backend named by queue.backend.
func NewQueue(params QueueParams) (Queue, error) {
	params.Config.ApplyDefaults()
	cfg := params.Config.Queue
	logger := params.Logger.With(slog.String("queue", cfg.Name))

	switch cfg.Backend {
	case constants.BackendRedis:
		if params.Redis == nil {
			return nil, errors.New("redis queue requires redis.url")
		}

		return NewRedisQueue(params.Redis, cfg.Name, cfg.Workers, cfg.PollInterval, logger), nil
	case "", constants.BackendMemory:
		return NewMemoryQueue(cfg.Workers, logger), nil
	default:
		return nil, errors.Errorf("unsupported queue backend: %s", cfg.Backend)
	}
}

func asJobQueue(q Queue) service.JobQueue {
	return q
}

// Module provides the notification queue.
var Module = fx.Options(
	fx.Provide(
		NewQueue,
		asJobQueue,
	),
)
