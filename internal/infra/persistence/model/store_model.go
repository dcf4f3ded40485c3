package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreModel mirrors the 'stores' table.
type StoreModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(150);not null"`
	PhoneNumber string    `gorm:"type:varchar(32)"`
	Address     string    `gorm:"type:text"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'SAR'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (StoreModel) TableName() string {
	return "stores"
}

// BeforeCreate assigns a UUID when the caller did not.
func (m *StoreModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}

// StoreOwnerModel mirrors the 'store_owners' join table.
type StoreOwnerModel struct {
	StoreID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (StoreOwnerModel) TableName() string {
	return "store_owners"
}
