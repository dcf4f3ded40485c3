package entity

import (
	"time"

	"github.com/google/uuid"
)

// OtpChannel is the delivery channel of a one-time code.
type OtpChannel string

const (
	OtpChannelEmail OtpChannel = "email"
	OtpChannelSMS   OtpChannel = "sms"
	OtpChannelTOTP  OtpChannel = "totp"
)

// IsValid checks if the OtpChannel is a valid value.
func (c OtpChannel) IsValid() bool {
	switch c {
	case OtpChannelEmail, OtpChannelSMS, OtpChannelTOTP:
		return true
	default:
		return false
	}
}

func (c OtpChannel) String() string {
	return string(c)
}

// OtpCode is a single verification code bound to a user and a channel.
type OtpCode struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	Channel   *OtpChannel // Nil for rows written before codes carried a channel.
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsUsable reports whether the code can still be consumed at the given instant.
func (o *OtpCode) IsUsable(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}
