package pdf

import (
	"bytes"
	"testing"
	"time"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() (*entity.Order, *entity.Store) {
	store := &entity.Store{
		ID:          uuid.New(),
		Name:        "Corner Café",
		PhoneNumber: "+966512345678",
		Address:     "King Fahd Rd, Riyadh",
		Currency:    "SAR",
	}
	order := &entity.Order{
		ID:            uuid.New(),
		StoreID:       store.ID,
		OrderNumber:   "ABC123-000042",
		CustomerName:  "Sara",
		Currency:      "SAR",
		Status:        entity.OrderStatusPending,
		PaymentStatus: entity.PaymentStatusPaid,
		Items: []entity.OrderItem{
			{Name: "Flat white", Quantity: 2, UnitPrice: 1800},
			{Name: "Date cake", Quantity: 1, UnitPrice: 2250},
		},
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	order.RecalculateTotals()

	return order, store
}

func TestOrderRenderer_RenderOrder(t *testing.T) {
	order, store := sampleOrder()

	doc, err := NewOrderRenderer().RenderOrder(order, store)
	require.NoError(t, err)

	assert.Equal(t, "order-ABC123-000042.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF-")))
}

func TestOrderRenderer_IsDeterministic(t *testing.T) {
	order, store := sampleOrder()
	renderer := NewOrderRenderer()

	first, err := renderer.RenderOrder(order, store)
	require.NoError(t, err)
	second, err := renderer.RenderOrder(order, store)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
}

func TestOrderRenderer_RequiresInputs(t *testing.T) {
	order, _ := sampleOrder()

	_, err := NewOrderRenderer().RenderOrder(order, nil)
	assert.Error(t, err)
}
