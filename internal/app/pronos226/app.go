// Package pronos226 собирает основное HTTP-приложение платформы:
// хранилище, кеш, очередь уведомлений, сервисы и маршруты.
package pronos226

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/ouedraogodev/pronos226/internal/cache"
	"github.com/ouedraogodev/pronos226/internal/config"
	"github.com/ouedraogodev/pronos226/internal/lib/jwt"
	"github.com/ouedraogodev/pronos226/internal/migrations"
	"github.com/ouedraogodev/pronos226/internal/rabbitmq"
	authservice "github.com/ouedraogodev/pronos226/internal/services/auth"
	claimservice "github.com/ouedraogodev/pronos226/internal/services/claim"
	predictionservice "github.com/ouedraogodev/pronos226/internal/services/prediction"
	profileservice "github.com/ouedraogodev/pronos226/internal/services/profile"
	"github.com/ouedraogodev/pronos226/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	publisher := rabbitmq.NewNotificationPublisher(ch)

	profileService := profileservice.NewProfileService(db, cacheRedis, logger, cfg.AdminEmail)
	authService := authservice.NewAuthService(db, profileService, jwtMaker, cfg, logger)
	claimService := claimservice.NewClaimService(db, cacheRedis, publisher, cfg, logger)
	predictionService := predictionservice.NewPredictionService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService, profileService, claimService, predictionService)

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
		conn:   conn,
		ch:     ch,
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
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
