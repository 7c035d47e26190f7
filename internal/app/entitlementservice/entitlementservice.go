// Package entitlementservice собирает основное приложение: подключения
// к PostgreSQL, Redis и RabbitMQ, сервисы и HTTP-сервер.
package entitlementservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/examprep/entitlement-service/internal/cache"
	"github.com/examprep/entitlement-service/internal/config"
	"github.com/examprep/entitlement-service/internal/lib/jwt"
	"github.com/examprep/entitlement-service/internal/migrations"
	"github.com/examprep/entitlement-service/internal/rabbitmq"
	authservice "github.com/examprep/entitlement-service/internal/services/auth"
	billingservice "github.com/examprep/entitlement-service/internal/services/billing"
	catalogservice "github.com/examprep/entitlement-service/internal/services/catalog"
	entitlementsvc "github.com/examprep/entitlement-service/internal/services/entitlement"
	statusservice "github.com/examprep/entitlement-service/internal/services/status"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

// App инкапсулирует зависимости основного приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New создаёт приложение: подключается к хранилищам, применяет миграции
// и регистрирует маршруты.
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

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.DefaultQueues)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	entitlementService := entitlementsvc.New(db, cacheRedis, logger)
	statusService := statusservice.New(db, logger)
	billingService := billingservice.New(db, cacheRedis, publisher, logger)
	catalogService := catalogservice.New(db, entitlementService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker,
		authService, entitlementService, statusService, billingService, catalogService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		return err
	}
}
