package repository

import (
	"context"
	"time"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

// OtpRepository stores one-time codes.
type OtpRepository interface {
	// DeleteUnused removes every unused code of the user on the channel.
	DeleteUnused(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel) error

	// Create persists a new code.
	Create(ctx context.Context, code *entity.OtpCode) error

	// MarkUsed atomically flips used to true on the matching unused, unexpired code.
	// A nil channel matches legacy rows without a channel. It reports whether a row changed.
	MarkUsed(ctx context.Context, userID uuid.UUID, channel *entity.OtpChannel, code string, now time.Time) (bool, error)

	// CountUnused returns the number of unused, unexpired codes of the user on the channel.
	CountUnused(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel, now time.Time) (int64, error)
}
