// Package sender собирает процесс-отправитель писем: подключение к
// RabbitMQ, SMTP-транспорт и потребителя очереди решений по заявкам.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/ouedraogodev/pronos226/internal/config"
	"github.com/ouedraogodev/pronos226/internal/lib/smtp"
	"github.com/ouedraogodev/pronos226/internal/rabbitmq"
	senderservice "github.com/ouedraogodev/pronos226/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, transport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.claimdecision", a.senderService.SendClaimDecision)
	if err != nil {
		a.logger.Error("failed to start claim decision consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
