package service

import (
	"context"
	"time"

	"storehub/internal/domain/entity"
)

// RenderedDocument is a PDF produced for an order.
type RenderedDocument struct {
	Filename string
	Content  []byte
}

// PDFRenderer renders order summaries.
type PDFRenderer interface {
	RenderOrder(order *entity.Order, store *entity.Store) (*RenderedDocument, error)
}

// ArtifactStore persists rendered documents durably.
type ArtifactStore interface {
	// Get returns the stored bytes and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Put(ctx context.Context, key, contentType string, data []byte) error
}

// JobQueue is a delayed queue of notification jobs.
type JobQueue interface {
	// Enqueue makes the job visible to consumers after delay.
	Enqueue(ctx context.Context, job *entity.NotificationJob, delay time.Duration) error
}

// JobHandler consumes jobs from a queue.
type JobHandler func(ctx context.Context, job *entity.NotificationJob)

// RateLimiter is a soft admission control over a key.
type RateLimiter interface {
	// Allow records an attempt and reports whether it fits the window.
	Allow(ctx context.Context, key string) (bool, error)

	// Reset forgets all attempts recorded for the key.
	Reset(ctx context.Context, key string) error
}
