package entity

import (
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order is the snapshot of an order that the notification workflow renders.
// Amounts are in minor units.
type Order struct {
	ID            uuid.UUID     `json:"id"`
	StoreID       uuid.UUID     `json:"store_id"`
	OrderNumber   string        `json:"order_number"`
	CustomerName  string        `json:"customer_name"`
	TotalAmount   int64         `json:"total_amount"`
	Currency      string        `json:"currency"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Items         []OrderItem   `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Order size limits. Within them a line total and the order total fit in int64.
const (
	MaxOrderItems   = 500
	MaxItemQuantity = 100_000
	MaxUnitPrice    = 100_000_000_000 // minor units
)

// OrderItem is one line of an order.
type OrderItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// RecalculateTotals fills line totals and the order total from the items.
func (o *Order) RecalculateTotals() {
	var total int64
	for i := range o.Items {
		o.Items[i].LineTotal = int64(o.Items[i].Quantity) * o.Items[i].UnitPrice
		total += o.Items[i].LineTotal
	}
	o.TotalAmount = total
}

// DocumentFilename is the name of the rendered order document shown to recipients.
func (o *Order) DocumentFilename() string {
	return fmt.Sprintf("order-%s.pdf", o.OrderNumber)
}

// DocumentKey is the artifact storage key of the rendered order document.
func (o *Order) DocumentKey() string {
	return path.Join("order-documents", o.ID.String()+".pdf")
}
