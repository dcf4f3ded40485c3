package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderModel mirrors the 'orders' table.
type OrderModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID       uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderNumber   string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerName  string    `gorm:"type:varchar(150)"`
	TotalAmount   int64     `gorm:"not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	Status        string    `gorm:"type:varchar(20);not null"`
	PaymentStatus string    `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// BeforeCreate assigns a UUID when the caller did not.
func (m *OrderModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}

// OrderItemModel mirrors the 'order_items' table.
type OrderItemModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Position  int       `gorm:"not null"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Quantity  int       `gorm:"not null"`
	UnitPrice int64     `gorm:"not null"`
	LineTotal int64     `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}

// All lists every model, in dependency order, for migrations and tests.
func All() []any {
	return []any{
		&AccountModel{},
		&StoreModel{},
		&StoreOwnerModel{},
		&OtpCodeModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
