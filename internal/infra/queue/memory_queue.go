package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"

	"github.com/pkg/errors"
)

// ErrQueueClosed is returned when enqueueing after the queue stopped.
var ErrQueueClosed = errors.New("queue closed")

type memoryQueue struct {
	workers int
	logger  *slog.Logger

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
	stop   chan struct{}
	ready  chan *entity.NotificationJob
}

// NewMemoryQueue keeps pending jobs in process memory. Jobs are lost on restart.
func NewMemoryQueue(workers int, logger *slog.Logger) Queue {
	if workers <= 0 {
		workers = 1
	}

	return &memoryQueue{
		workers: workers,
		logger:  logger,
		timers:  make(map[*time.Timer]struct{}),
		stop:    make(chan struct{}),
		ready:   make(chan *entity.NotificationJob, workers*16),
	}
}

func (q *memoryQueue) Enqueue(_ context.Context, job *entity.NotificationJob, delay time.Duration) error {
	if job == nil {
		return errors.New("job is required")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	if delay < 0 {
		delay = 0
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.timers, timer)
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return
		}
		select {
		case q.ready <- job:
		case <-q.stop:
		}
	})
	q.timers[timer] = struct{}{}

	return nil
}

func (q *memoryQueue) Run(ctx context.Context, handler service.JobHandler) error {
	var wg sync.WaitGroup
	for range q.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-q.ready:
					handler(ctx, job)
				}
			}
		}()
	}

	<-ctx.Done()
	q.close()
	wg.Wait()

	return nil
}

func (q *memoryQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.stop)
	for timer := range q.timers {
		timer.Stop()
	}
	if pending := len(q.timers) + len(q.ready); pending > 0 {
		q.logger.Warn("Dropping pending in-memory jobs", slog.Int("count", pending))
	}
	clear(q.timers)
}
