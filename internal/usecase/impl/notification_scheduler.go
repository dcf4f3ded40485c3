package impl

import (
	"context"
	"log/slog"
	"time"

	"storehub/internal/domain/constants"
	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"
	logs "storehub/internal/infra/log"
	"storehub/internal/infra/metrics"
	"storehub/internal/usecase"
	"storehub/internal/util"
)

type notificationScheduler struct {
	handler usecase.OrderNotificationUsecase
	queue   service.JobQueue
	logger  *slog.Logger
	now     func() time.Time
}

// NewNotificationScheduler is the constructor for notificationScheduler.
func NewNotificationScheduler(handler usecase.OrderNotificationUsecase, queue service.JobQueue, logger *slog.Logger) usecase.NotificationScheduler {
	return &notificationScheduler{
		handler: handler,
		queue:   queue,
		logger:  logger,
		now:     time.Now,
	}
}

// Process runs one attempt. A retryable failure is re-enqueued after the
// backoff step of the current attempt while attempts remain; everything else is final.
func (s *notificationScheduler) Process(ctx context.Context, job *entity.NotificationJob) {
	logger := s.logger.With(
		slog.String("job_id", job.ID.String()),
		slog.String(constants.AttrOrderID, job.Order.ID.String()),
		slog.String(constants.AttrStoreID, job.Order.StoreID.String()),
		slog.Int("attempt", job.Attempt),
		slog.Int("max_attempts", job.MaxAttempts),
	)

	start := s.now()
	result := s.handler.Handle(ctx, job)
	metrics.ObserveJob(string(result.Outcome), s.now().Sub(start))

	switch result.Outcome {
	case entity.JobSent:
		logger.Info("Order document delivered", slog.String("message_id", result.MessageID))

	case entity.JobPermanent:
		logger.Log(ctx, logs.LevelCritical, "Order notification failed permanently", slog.Any("error", result.Err))

	case entity.JobRetryable:
		if !job.HasAttemptsLeft() {
			logger.Log(ctx, logs.LevelCritical, "Order notification attempts exhausted", slog.Any("error", result.Err))

			return
		}

		delay := job.NextDelay()
		logger.Error("Order notification attempt failed, retrying",
			slog.Any("error", result.Err),
			slog.String("retry_in", util.FormatDuration(delay)))

		next := *job
		next.Attempt = job.Attempt + 1
		if err := s.queue.Enqueue(ctx, &next, delay); err != nil {
			logger.Log(ctx, logs.LevelCritical, "Failed to schedule order notification retry", slog.Any("error", err))
		}

	default:
		logger.Error("Unknown job outcome", slog.String("outcome", string(result.Outcome)))
	}
}
