// Package model holds the GORM persistence models. They never leave the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccountModel mirrors the 'accounts' table. One row per guard-scoped login identity.
type AccountModel struct {
	ID                   uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Guard                string                      `gorm:"type:varchar(32);not null;uniqueIndex:idx_accounts_guard_email"`
	Email                string                      `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_guard_email"`
	Name                 string                      `gorm:"type:varchar(100)"`
	PhoneNumber          string                      `gorm:"type:varchar(32)"`
	PasswordHash         string                      `gorm:"type:varchar(255);not null"`
	TwoFactorSecret      string                      `gorm:"type:varchar(128)"`
	TwoFactorChannel     string                      `gorm:"type:varchar(16)"`
	TwoFactorConfirmedAt *time.Time
	StoreID              *uuid.UUID                  `gorm:"type:uuid;index"`
	Permissions          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// BeforeCreate assigns a UUID when the caller did not.
func (m *AccountModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}
