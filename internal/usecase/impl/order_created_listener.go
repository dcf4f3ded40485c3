package impl

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"storehub/config"
	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/domain/constants"
	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type orderCreatedListener struct {
	queue         service.JobQueue
	queueName     string
	dispatchDelay time.Duration
	maxAttempts   int
	backoff       []time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewOrderCreatedListener is the constructor for orderCreatedListener.
func NewOrderCreatedListener(queue service.JobQueue, cfg *config.Config, logger *slog.Logger) usecase.OrderCreatedListener {
	cfg.ApplyDefaults()

	return &orderCreatedListener{
		queue:         queue,
		queueName:     cfg.Queue.Name,
		dispatchDelay: cfg.Queue.DispatchDelay,
		maxAttempts:   cfg.Queue.MaxAttempts,
		backoff:       slices.Clone(cfg.Queue.Backoff),
		logger:        logger,
		now:           time.Now,
	}
}

// HandleOrderCreated enqueues the first delivery attempt. The dispatch delay
// leaves room for the creating transaction to become visible to readers.
func (l *orderCreatedListener) HandleOrderCreated(ctx context.Context, event *entity.OrderCreatedEvent) error {
	if event == nil || event.Order.ID == uuid.Nil {
		return errors.New("order created event without order")
	}

	job := &entity.NotificationJob{
		ID:          uuid.New(),
		Queue:       l.queueName,
		Order:       event.Order,
		Attempt:     1,
		MaxAttempts: l.maxAttempts,
		Backoff:     slices.Clone(l.backoff),
		EnqueuedAt:  l.now().UTC(),
	}

	if err := l.queue.Enqueue(ctx, job, l.dispatchDelay); err != nil {
		return errors.Wrap(err, "failed to enqueue notification job")
	}

	deliverycontext.GetLoggerOrDefault(ctx, l.logger).Info("Order notification dispatched",
		slog.String(constants.AttrEventID, event.EventID.String()),
		slog.String(constants.AttrOrderID, event.Order.ID.String()),
		slog.String("job_id", job.ID.String()),
		slog.Duration("delay", l.dispatchDelay))

	return nil
}
