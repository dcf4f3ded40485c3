package entity

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated actor of a request within one guard.
type Principal struct {
	Guard       Guard
	AccountID   uuid.UUID
	StoreID     uuid.UUID // uuid.Nil unless Guard.IsStoreScoped.
	Permissions PermissionSet
}

// PrincipalFromAccount builds the principal an account authenticates as.
func PrincipalFromAccount(account *Account) Principal {
	principal := Principal{
		Guard:       account.Guard,
		AccountID:   account.ID,
		Permissions: account.Permissions.Clone(),
	}
	if account.StoreID != nil && account.Guard.IsStoreScoped() {
		principal.StoreID = *account.StoreID
	}

	return principal
}

// PendingChallenge is the state carried between a successful password check and
// the second factor. It travels inside a signed challenge token, never in server memory.
type PendingChallenge struct {
	Guard       Guard
	AccountID   uuid.UUID
	Remember    bool
	Channel     OtpChannel
	IntendedURL string
	IssuedAt    time.Time
}

// Session describes an issued session token.
type Session struct {
	Principal          Principal
	TwoFactorConfirmed bool
	SetupPending       bool // True while the account must finish two-factor setup first.
	ExpiresAt          time.Time
}
