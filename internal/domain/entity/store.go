package entity

import (
	"time"

	"github.com/google/uuid"
)

// Store is a tenant of the system.
type Store struct {
	ID          uuid.UUID
	Name        string
	PhoneNumber string // WhatsApp destination for order documents, may be empty.
	Address     string
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoreOwnership links an owner account to a store. A store keeps at least one.
type StoreOwnership struct {
	StoreID   uuid.UUID
	AccountID uuid.UUID
	CreatedAt time.Time
}
