package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "storehub:queue:"
	processingSuffix = ":processing"
	defaultLease     = 5 * time.Minute
	releaseTimeout   = 5 * time.Second
)

// claimDue moves up to ARGV[2] members due at ARGV[1] from the ready set to the
// processing set, scored with their lease deadline ARGV[3].
var claimDue = goredis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, member in ipairs(due) do
  redis.call('ZREM', KEYS[1], member)
  redis.call('ZADD', KEYS[2], ARGV[3], member)
end
return due
`)

// reclaimExpired moves members whose lease ended by ARGV[1] back to the ready set.
var reclaimExpired = goredis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, member in ipairs(expired) do
  redis.call('ZREM', KEYS[2], member)
  redis.call('ZADD', KEYS[1], ARGV[1], member)
end
return #expired
`)

// release moves the listed members (ARGV[2..]) from processing back to ready, due at ARGV[1].
var release = goredis.NewScript(`
local moved = 0
for i = 2, #ARGV do
  if redis.call('ZREM', KEYS[2], ARGV[i]) == 1 then
    redis.call('ZADD', KEYS[1], ARGV[1], ARGV[i])
    moved = moved + 1
  end
end
return moved
`)

// claimed is a job popped from the ready set together with its stored member.
type claimed struct {
	job    *entity.NotificationJob
	member string
}

type redisQueue struct {
	client        *goredis.Client
	key           string
	processingKey string
	workers       int
	pollInterval  time.Duration
	lease         time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewRedisQueue stores jobs in a sorted set scored by the time they become due.
// A claimed job stays in a processing set until its handler returns, so a job is
// delivered at least once: jobs of a crashed worker come back once their lease ends.
func NewRedisQueue(client *goredis.Client, name string, workers int, pollInterval time.Duration, logger *slog.Logger) Queue {
	if workers <= 0 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	key := redisKeyPrefix + name

	return &redisQueue{
		client:        client,
		key:           key,
		processingKey: key + processingSuffix,
		workers:       workers,
		pollInterval:  pollInterval,
		lease:         defaultLease,
		logger:        logger,
		now:           time.Now,
	}
}

func (q *redisQueue) Enqueue(ctx context.Context, job *entity.NotificationJob, delay time.Duration) error {
	if job == nil {
		return errors.New("job is required")
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "failed to marshal job")
	}

	dueAt := q.now().Add(delay).UnixMilli()
	if err := q.client.ZAdd(ctx, q.key, goredis.Z{Score: float64(dueAt), Member: payload}).Err(); err != nil {
		return errors.Wrap(err, "failed to enqueue job")
	}

	return nil
}

// Run claims only as many jobs as there are idle workers. While due jobs remain
// it claims again as soon as a worker frees up instead of waiting for the next poll.
func (q *redisQueue) Run(ctx context.Context, handler service.JobHandler) error {
	jobs := make(chan claimed)
	idle := make(chan struct{}, q.workers)
	var busy atomic.Int32

	var wg sync.WaitGroup
	for range q.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				handler(ctx, c.job)
				q.ack(ctx, c.member)
				busy.Add(-1)
				select {
				case idle <- struct{}{}:
				default:
				}
			}
		}()
	}

	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	defer func() {
		close(jobs)
		wg.Wait()
	}()

	for {
		q.reclaim(ctx)

		backlog := false
		for {
			if ctx.Err() != nil {
				return nil
			}

			free := q.workers - int(busy.Load())
			if free <= 0 {
				backlog = true

				break
			}

			due, n, err := q.claim(ctx, free)
			if err != nil {
				if ctx.Err() == nil {
					q.logger.Error("Failed to poll queue", slog.Any("error", err))
				}

				break
			}

			for i, c := range due {
				if ctx.Err() != nil {
					q.release(due[i:])

					return nil
				}

				busy.Add(1)
				select {
				case jobs <- c:
				case <-ctx.Done():
					busy.Add(-1)
					q.release(due[i:])

					return nil
				}
			}

			if n < free {
				break
			}
		}

		var wake <-chan struct{}
		if backlog {
			wake = idle
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-wake:
		}
	}
}

// claim moves up to limit due jobs into the processing set. It also returns how
// many members were moved, malformed ones included.
func (q *redisQueue) claim(ctx context.Context, limit int) ([]claimed, int, error) {
	now := q.now()
	raw, err := claimDue.Run(ctx, q.client, []string{q.key, q.processingKey},
		now.UnixMilli(), limit, now.Add(q.lease).UnixMilli()).StringSlice()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, 0, nil
		}

		return nil, 0, errors.Wrap(err, "failed to claim due jobs")
	}

	jobs := make([]claimed, 0, len(raw))
	for _, member := range raw {
		job := &entity.NotificationJob{}
		if err := json.Unmarshal([]byte(member), job); err != nil {
			q.logger.Error("Discarding malformed job", slog.Any("error", err))
			q.ack(ctx, member)

			continue
		}
		jobs = append(jobs, claimed{job: job, member: member})
	}

	return jobs, len(raw), nil
}

// reclaim returns jobs whose lease expired to the ready set.
func (q *redisQueue) reclaim(ctx context.Context) {
	n, err := reclaimExpired.Run(ctx, q.client, []string{q.key, q.processingKey}, q.now().UnixMilli()).Int()
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, goredis.Nil) {
			q.logger.Error("Failed to reclaim expired jobs", slog.Any("error", err))
		}

		return
	}
	if n > 0 {
		q.logger.Warn("Reclaimed jobs with expired lease", slog.Int("count", n))
	}
}

// ack drops a finished job from the processing set.
func (q *redisQueue) ack(ctx context.Context, member string) {
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := q.client.ZRem(ackCtx, q.processingKey, member).Err(); err != nil {
		q.logger.Error("Failed to acknowledge job", slog.Any("error", err))
	}
}

// release puts back jobs that were claimed but never handed to a worker.
func (q *redisQueue) release(pending []claimed) {
	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	args := make([]any, 0, len(pending)+1)
	args = append(args, strconv.FormatInt(q.now().UnixMilli(), 10))
	for _, c := range pending {
		args = append(args, c.member)
	}

	if err := release.Run(ctx, q.client, []string{q.key, q.processingKey}, args...).Err(); err != nil {
		q.logger.Error("Failed to release claimed jobs", slog.Int("count", len(pending)), slog.Any("error", err))
	}
}
