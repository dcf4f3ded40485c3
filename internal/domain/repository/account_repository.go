// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository persists credential-bearing accounts of every guard.
type AccountRepository interface {
	// FindByID retrieves an account of the given guard.
	FindByID(ctx context.Context, guard entity.Guard, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves an account of the given guard by case-insensitive email.
	FindByEmail(ctx context.Context, guard entity.Guard, email string) (*entity.Account, error)

	// Create persists a new account.
	Create(ctx context.Context, account *entity.Account) error

	// UpdateTwoFactor stores the two-factor secret, channel and confirmation time.
	UpdateTwoFactor(ctx context.Context, id uuid.UUID, secret string, channel entity.OtpChannel, confirmedAt *time.Time) error

	// UpdatePermissions replaces the stored permission set.
	UpdatePermissions(ctx context.Context, id uuid.UUID, permissions entity.PermissionSet) error
}
