package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/honeynil/raffle-service/internal/config"
	"github.com/honeynil/raffle-service/internal/infrastructure/kafka"
	"github.com/honeynil/raffle-service/internal/infrastructure/mail"
	"github.com/honeynil/raffle-service/internal/observability"
)

// mailer drains the notifications topic into SMTP.
func main() {
	cfg := config.Load()

	shutdown := observability.Setup("raffle-mailer", "", cfg.OTLPEndpoint)
	defer shutdown(context.Background())

	sender := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST is empty, deliveries will fail")
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.NotificationsTopic, cfg.KafkaGroupID, sender)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("mailer started", "topic", cfg.NotificationsTopic, "group_id", cfg.KafkaGroupID)
	consumer.Consume(ctx)
	slog.Info("mailer stopped")
}
