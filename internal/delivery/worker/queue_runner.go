package worker

import (
	"context"
	"log/slog"
	"sync"

	"storehub/internal/delivery"
	"storehub/internal/domain/lifecycle"
	"storehub/internal/infra/queue"
	"storehub/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// queueRunner consumes notification jobs until the application stops.
type queueRunner struct {
	queue     queue.Queue
	scheduler usecase.NotificationScheduler
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// QueueRunnerParams holds dependencies for the queue runner
type QueueRunnerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Queue     queue.Queue
	Scheduler usecase.NotificationScheduler
	Logger    *slog.Logger
}

// NewQueueRunner creates the delivery that drains the notification queue.
func NewQueueRunner(params QueueRunnerParams) delivery.Delivery {
	r := &queueRunner{
		queue:     params.Queue,
		scheduler: params.Scheduler,
		logger:    params.Logger,
		done:      make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r
}

// Serve blocks until stop is called and in-flight jobs have returned.
func (r *queueRunner) Serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer close(r.done)

	r.logger.Info("Starting notification queue workers")
	if err := r.queue.Run(runCtx, r.scheduler.Process); err != nil && !errors.Is(err, context.Canceled) {
		return errors.WithStack(err)
	}

	return nil
}

func (r *queueRunner) stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}

	r.logger.Info("Stopping notification queue workers")
	cancel()

	waitCtx, done := context.WithTimeout(ctx, lifecycle.ShutdownGracePeriod)
	defer done()

	select {
	case <-r.done:
		return nil
	case <-waitCtx.Done():
		return errors.Wrap(waitCtx.Err(), "queue workers did not stop in time")
	}
}
