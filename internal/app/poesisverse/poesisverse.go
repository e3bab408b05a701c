// Package poesisverse собирает и запускает основное HTTP-приложение:
// хранилище, кэш, сессии, очередь уведомлений, платежный шлюз,
// доменные сервисы и маршруты.
package poesisverse

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/danengatsby/poesisverse/internal/cache"
	"github.com/danengatsby/poesisverse/internal/config"
	"github.com/danengatsby/poesisverse/internal/lib/token"
	"github.com/danengatsby/poesisverse/internal/migrations"
	"github.com/danengatsby/poesisverse/internal/paymentprovider"
	"github.com/danengatsby/poesisverse/internal/rabbitmq"
	authservice "github.com/danengatsby/poesisverse/internal/services/auth"
	"github.com/danengatsby/poesisverse/internal/services/bookmark"
	"github.com/danengatsby/poesisverse/internal/services/payment"
	"github.com/danengatsby/poesisverse/internal/services/poem"
	subservice "github.com/danengatsby/poesisverse/internal/services/subscription"
	"github.com/danengatsby/poesisverse/internal/sessions"
	"github.com/danengatsby/poesisverse/internal/storage/repository"
)

type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	rabbitMQ *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}
	sessionStore := sessions.New(cacheRedis, cfg.SessionTTL)

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	notifier := rabbitmq.NewNotifier(ch)

	gateway := paymentprovider.NewClient(cfg.Payment.APIURL, cfg.Payment.SecretKey)
	tokenMaker := token.NewMaker(cfg.TokenSecret, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, sessionStore, tokenMaker, notifier, logger)
	poemService := poem.NewPoemService(db, cacheRedis, logger)
	bookmarkService := bookmark.NewBookmarkService(db, logger)
	subscriptionService := subservice.NewSubscriptionService(db, notifier, gateway, logger)
	paymentService := payment.New(db, gateway, payment.Pricing{
		MonthlyCents: cfg.Payment.MonthlyPriceCents,
		AnnualCents:  cfg.Payment.AnnualPriceCents,
		Currency:     cfg.Payment.Currency,
	}, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, cfg, &Services{
		Auth:         authService,
		Poems:        poemService,
		Bookmarks:    bookmarkService,
		Subscription: subscriptionService,
		Payments:     paymentService,
		Users:        db,
	})

	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		rabbitMQ: conn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		a.rabbitMQ.Close()
		return err
	}
}
