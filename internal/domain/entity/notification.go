package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderCreatedEvent is published once an order is persisted. It carries an
// immutable snapshot so consumers never re-read the order row.
type OrderCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	Order      Order     `json:"order"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationJob is one queued attempt to deliver an order document.
type NotificationJob struct {
	ID          uuid.UUID       `json:"id"`
	Queue       string          `json:"queue"`
	Order       Order           `json:"order"`
	Attempt     int             `json:"attempt"` // 1-based number of the attempt about to run.
	MaxAttempts int             `json:"max_attempts"`
	Backoff     []time.Duration `json:"backoff"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
}

// NextDelay returns the delay before the attempt after the current one.
// The last configured step repeats if the schedule is shorter than the attempt count.
func (j *NotificationJob) NextDelay() time.Duration {
	if len(j.Backoff) == 0 {
		return 0
	}
	idx := j.Attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(j.Backoff) {
		idx = len(j.Backoff) - 1
	}

	return j.Backoff[idx]
}

// HasAttemptsLeft reports whether another attempt may be scheduled.
func (j *NotificationJob) HasAttemptsLeft() bool {
	return j.Attempt < j.MaxAttempts
}

// JobOutcome tags a JobResult.
type JobOutcome string

const (
	JobSent      JobOutcome = "sent"
	JobRetryable JobOutcome = "retryable"
	JobPermanent JobOutcome = "permanent"
)

// JobResult is the explicit outcome of one job attempt.
type JobResult struct {
	Outcome   JobOutcome
	MessageID string // Set when Outcome is JobSent.
	Err       error  // Reason when the attempt did not succeed.
}

// Sent reports a delivered document.
func Sent(messageID string) JobResult {
	return JobResult{Outcome: JobSent, MessageID: messageID}
}

// Retryable reports a transient failure worth another attempt.
func Retryable(err error) JobResult {
	return JobResult{Outcome: JobRetryable, Err: err}
}

// Permanent reports a failure no retry can fix.
func Permanent(err error) JobResult {
	return JobResult{Outcome: JobPermanent, Err: err}
}
