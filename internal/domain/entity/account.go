package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is a credential-bearing record that can authenticate under exactly one guard.
type Account struct {
	ID                   uuid.UUID
	Guard                Guard
	Email                string
	Name                 string
	PhoneNumber          string
	PasswordHash         string
	TwoFactorSecret      string     // Empty when two-factor authentication is not configured.
	TwoFactorChannel     OtpChannel // Channel used to deliver challenge codes.
	TwoFactorConfirmedAt *time.Time // Nil until the account finished two-factor setup.
	StoreID              *uuid.UUID // Set for store owners and staff only.
	Permissions          PermissionSet
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasTwoFactor reports whether a second factor is required after the password check.
func (a *Account) HasTwoFactor() bool {
	return a.TwoFactorSecret != ""
}

// TwoFactorConfirmed reports whether the account completed two-factor setup.
func (a *Account) TwoFactorConfirmed() bool {
	return a.TwoFactorConfirmedAt != nil
}

// ChallengeChannel returns the channel used for login challenges, defaulting to email.
func (a *Account) ChallengeChannel() OtpChannel {
	if a.TwoFactorChannel.IsValid() {
		return a.TwoFactorChannel
	}

	return OtpChannelEmail
}
