package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OtpCodeModel mirrors the 'otp_codes' table. Channel is NULL on rows
// written before codes were tagged with a channel.
type OtpCodeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_otp_codes_lookup"`
	Code      string    `gorm:"type:varchar(16);not null"`
	Channel   *string   `gorm:"type:varchar(16);index:idx_otp_codes_lookup"`
	Used      bool      `gorm:"not null;default:false"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (OtpCodeModel) TableName() string {
	return "otp_codes"
}

// BeforeCreate assigns a UUID when the caller did not.
func (m *OtpCodeModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}
