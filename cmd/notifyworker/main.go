package main

import (
	"context"
	"log/slog"
	"os"

	"storehub/config"
	"storehub/internal/delivery"
	"storehub/internal/delivery/worker"
	"storehub/internal/delivery/worker/handler"
	logs "storehub/internal/infra/log"
	"storehub/internal/infra/pdf"
	"storehub/internal/infra/persistence/postgres"
	"storehub/internal/infra/queue"
	"storehub/internal/infra/redis"
	"storehub/internal/infra/storage"
	"storehub/internal/infra/whatsapp"
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
		storage.Module,
		queue.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewStoreRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			whatsapp.NewClient,
			pdf.NewOrderRenderer,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewOrderCreatedListener,
			impl.NewOrderNotificationService,
			impl.NewNotificationScheduler,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewQueueRunner,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
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
