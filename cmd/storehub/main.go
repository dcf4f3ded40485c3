package main

import (
	"context"
	"log/slog"
	"os"

	"storehub/config"
	"storehub/internal/delivery"
	"storehub/internal/delivery/api"
	"storehub/internal/delivery/api/middleware"
	"storehub/internal/delivery/api/router/handler"
	"storehub/internal/delivery/worker"
	"storehub/internal/domain/constants"
	"storehub/internal/infra/audit"
	"storehub/internal/infra/auth"
	logs "storehub/internal/infra/log"
	"storehub/internal/infra/mail"
	"storehub/internal/infra/pdf"
	"storehub/internal/infra/persistence/postgres"
	"storehub/internal/infra/pubsub"
	"storehub/internal/infra/qrcode"
	"storehub/internal/infra/queue"
	"storehub/internal/infra/ratelimit"
	"storehub/internal/infra/redis"
	"storehub/internal/infra/sms"
	"storehub/internal/infra/storage"
	"storehub/internal/infra/whatsapp"
	"storehub/internal/usecase"
	"storehub/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
		),
		redis.Module,
		ratelimit.Module,
		storage.Module,
		queue.Module,
		pubsub.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewAccountRepository,
			postgres.NewStoreRepository,
			postgres.NewOrderRepository,
			postgres.NewOtpRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			auth.NewTOTPService,
			qrcode.NewQRCodeServiceFromConfig,
			mail.NewSMTPTransport,
			sms.NewHTTPTransport,
			whatsapp.NewClient,
			pdf.NewOrderRenderer,
			audit.NewLogger,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewOtpStore,
			impl.NewTwoFactorProviderRegistry,
			impl.NewAuthService,
			impl.NewStoreService,
			impl.NewOrderService,
			impl.NewOrderCreatedListener,
			impl.NewOrderNotificationService,
			impl.NewNotificationScheduler,
			// The inline publisher hands events to the listener in this process
			func(listener usecase.OrderCreatedListener) pubsub.EventHandler {
				return listener
			},
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewTwoFactorHandler,
			handler.NewStoreHandler,
			handler.NewOrderHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				newInlineQueueRunner,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// newInlineQueueRunner drains the notification queue in this process when
// events never leave it. Other providers leave that to the notify worker.
func newInlineQueueRunner(cfg *config.Config, params worker.QueueRunnerParams) delivery.Delivery {
	if cfg.PubSub == nil || cfg.PubSub.Provider != constants.PubSubProviderInline {
		return nil
	}

	return worker.NewQueueRunner(params)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		if delivery == nil {
			continue
		}

		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
