// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

// OtpStore manages the lifecycle of one-time codes.
type OtpStore interface {
	// Issue supersedes every unused code of the user on the channel with a new one.
	Issue(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel, code string, ttl time.Duration) error

	// Verify consumes a matching unused, unexpired code. A code verifies at most once.
	Verify(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel, code string) (bool, error)

	// VerifyLegacy consumes a matching code stored without a channel.
	VerifyLegacy(ctx context.Context, userID uuid.UUID, code string) (bool, error)
}

// TwoFactorProvider delivers and checks second-factor codes over one channel.
// Implementations never return transport errors; failures are logged and reported as false.
type TwoFactorProvider interface {
	Channel() entity.OtpChannel

	// GenerateAndSend issues a fresh code and delivers it to the account.
	GenerateAndSend(ctx context.Context, account *entity.Account) bool

	// Verify reports whether code is a valid second factor for the account.
	Verify(ctx context.Context, account *entity.Account, code string) bool
}

// TwoFactorProviders dispatches to the provider registered for a channel.
type TwoFactorProviders map[entity.OtpChannel]TwoFactorProvider

// NewTwoFactorProviders registers providers by their channel tag.
func NewTwoFactorProviders(providers ...TwoFactorProvider) TwoFactorProviders {
	registry := make(TwoFactorProviders, len(providers))
	for _, p := range providers {
		registry[p.Channel()] = p
	}

	return registry
}

// Get returns the provider for the channel.
func (r TwoFactorProviders) Get(channel entity.OtpChannel) (TwoFactorProvider, bool) {
	p, ok := r[channel]

	return p, ok
}
