package impl

import (
	"context"
	"testing"
	"time"

	"storehub/internal/domain/entity"
	mockService "storehub/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderCreatedListener_EnqueuesFirstAttempt(t *testing.T) {
	ctx := context.Background()
	queue := mockService.NewMockJobQueue(t)
	listener := NewOrderCreatedListener(queue, newTestConfig(), newDiscardLogger())
	order := entity.Order{ID: uuid.New(), StoreID: uuid.New(), OrderNumber: "1001"}

	queue.On("Enqueue", ctx, mock.MatchedBy(func(job *entity.NotificationJob) bool {
		return job.Order.ID == order.ID &&
			job.Queue == "whatsapp" &&
			job.Attempt == 1 &&
			job.MaxAttempts == 3 &&
			assert.ObjectsAreEqual([]time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}, job.Backoff)
	}), 5*time.Second).Return(nil).Once()

	require.NoError(t, listener.HandleOrderCreated(ctx, &entity.OrderCreatedEvent{EventID: uuid.New(), Order: order}))
}

func TestOrderCreatedListener_Errors(t *testing.T) {
	ctx := context.Background()
	queue := mockService.NewMockJobQueue(t)
	listener := NewOrderCreatedListener(queue, newTestConfig(), newDiscardLogger())

	assert.Error(t, listener.HandleOrderCreated(ctx, nil))
	assert.Error(t, listener.HandleOrderCreated(ctx, &entity.OrderCreatedEvent{}))

	queue.On("Enqueue", ctx, mock.Anything, mock.Anything).Return(errors.New("queue closed")).Once()
	assert.Error(t, listener.HandleOrderCreated(ctx, &entity.OrderCreatedEvent{Order: entity.Order{ID: uuid.New()}}))
}
