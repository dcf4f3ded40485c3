package impl

import (
	"context"
	"fmt"
	"log/slog"

	"storehub/config"
	"storehub/internal/domain/entity"
	"storehub/internal/domain/repository"
	"storehub/internal/domain/service"
	"storehub/internal/infra/metrics"
	"storehub/internal/usecase"
	"storehub/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const pdfContentType = "application/pdf"

var (
	// ErrStoreMissing means the order references a store that no longer exists.
	ErrStoreMissing = errors.New("order store not found")
	// ErrNoDestinationPhone means neither the store nor the configuration names a phone number.
	ErrNoDestinationPhone = errors.New("no whatsapp destination phone configured")
)

type orderNotificationService struct {
	storeRepo    repository.StoreRepository
	renderer     service.PDFRenderer
	artifacts    service.ArtifactStore
	messaging    service.MessagingService
	defaultPhone string
	logger       *slog.Logger
}

// OrderNotificationServiceParams holds dependencies for the order notification service.
type OrderNotificationServiceParams struct {
	fx.In

	StoreRepo repository.StoreRepository
	Renderer  service.PDFRenderer
	Artifacts service.ArtifactStore
	Messaging service.MessagingService
	Config    *config.Config
	Logger    *slog.Logger
}

// NewOrderNotificationService is the constructor for orderNotificationService.
func NewOrderNotificationService(params OrderNotificationServiceParams) usecase.OrderNotificationUsecase {
	params.Config.ApplyDefaults()

	return &orderNotificationService{
		storeRepo:    params.StoreRepo,
		renderer:     params.Renderer,
		artifacts:    params.Artifacts,
		messaging:    params.Messaging,
		defaultPhone: params.Config.WhatsApp.DefaultPhone,
		logger:       params.Logger,
	}
}

// Handle performs one delivery attempt and classifies its outcome.
// Configuration and data problems are permanent; transport failures are retryable.
func (srv *orderNotificationService) Handle(ctx context.Context, job *entity.NotificationJob) entity.JobResult {
	order := &job.Order

	store, err := srv.storeRepo.FindByID(ctx, order.StoreID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return entity.Permanent(errors.Wrapf(ErrStoreMissing, "store %s", order.StoreID))
		}

		return entity.Retryable(errors.Wrap(err, "failed to load store"))
	}

	phone := store.PhoneNumber
	if phone == "" {
		phone = srv.defaultPhone
	}
	if phone == "" {
		return entity.Permanent(ErrNoDestinationPhone)
	}

	content, err := srv.document(ctx, order, store)
	if err != nil {
		return entity.Permanent(err)
	}

	messageID, err := srv.messaging.SendDocument(ctx, phone, service.Document{
		Filename: order.DocumentFilename(),
		Caption:  caption(order, store),
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecipient) ||
			errors.Is(err, service.ErrTransportNotConfigured) ||
			errors.Is(err, service.ErrRequestRejected) {
			return entity.Permanent(err)
		}

		return entity.Retryable(err)
	}

	return entity.Sent(messageID)
}

// document returns the rendered PDF, reusing the stored artifact across retries.
func (srv *orderNotificationService) document(ctx context.Context, order *entity.Order, store *entity.Store) ([]byte, error) {
	key := order.DocumentKey()

	cached, found, err := srv.artifacts.Get(ctx, key)
	if err != nil {
		srv.logger.Warn("Failed to read cached order document", slog.String("key", key), slog.Any("error", err))
	}
	metrics.ObservePDFCache(found)
	if found {
		return cached, nil
	}

	rendered, err := srv.renderer.RenderOrder(order, store)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render order document")
	}

	if err := srv.artifacts.Put(ctx, key, pdfContentType, rendered.Content); err != nil {
		srv.logger.Warn("Failed to store order document", slog.String("key", key), slog.Any("error", err))
	}

	return rendered.Content, nil
}

func caption(order *entity.Order, store *entity.Store) string {
	return fmt.Sprintf("New order #%s at %s: %s %s (%s)",
		order.OrderNumber, store.Name, util.FormatMinorUnits(order.TotalAmount), order.Currency, order.PaymentStatus)
}
