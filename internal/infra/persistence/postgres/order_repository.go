package postgres

import (
	"context"
	"fmt"
	"strings"

	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/repository"
	"storehub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items in one statement batch.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)
	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrOrderCreationFailed.WrapMessage("order number already taken")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrStoreNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt

	return nil
}

func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel
	err := repo.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&orderM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by id")
	}

	return toOrderDomain(&orderM), nil
}

// NextOrderNumber derives the number from the store prefix and its order count.
// Callers hold the store row lock so two transactions never read the same count.
func (repo *orderRepository) NextOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	if err != nil {
		return "", domainerrors.NewDatabaseExecuteError(err, "failed to count store orders")
	}

	prefix := strings.ToUpper(strings.ReplaceAll(storeID.String(), "-", "")[:6])

	return fmt.Sprintf("%s-%06d", prefix, count+1), nil
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	items := make([]model.OrderItemModel, 0, len(data.Items))
	for i, item := range data.Items {
		items = append(items, model.OrderItemModel{
			Position:  i,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	return &model.OrderModel{
		ID:            data.ID,
		StoreID:       data.StoreID,
		OrderNumber:   data.OrderNumber,
		CustomerName:  data.CustomerName,
		TotalAmount:   data.TotalAmount,
		Currency:      data.Currency,
		Status:        string(data.Status),
		PaymentStatus: string(data.PaymentStatus),
		Items:         items,
	}
}

func toOrderDomain(data *model.OrderModel) *entity.Order {
	items := make([]entity.OrderItem, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, entity.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	return &entity.Order{
		ID:            data.ID,
		StoreID:       data.StoreID,
		OrderNumber:   data.OrderNumber,
		CustomerName:  data.CustomerName,
		TotalAmount:   data.TotalAmount,
		Currency:      data.Currency,
		Status:        entity.OrderStatus(data.Status),
		PaymentStatus: entity.PaymentStatus(data.PaymentStatus),
		Items:         items,
		CreatedAt:     data.CreatedAt,
	}
}
