package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sushiramen/internal/config"
	"sushiramen/internal/logging"
	"sushiramen/internal/notification"

	"github.com/joho/godotenv"
)

// Kafkaの通知イベントを読んでメールを送る
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env failed", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS is required for the notifier")
		os.Exit(1)
	}

	renderer, err := notification.NewRenderer(cfg.FrontendURL)
	if err != nil {
		logger.Error("load templates failed", "error", err)
		os.Exit(1)
	}
	mailer, err := notification.NewMailer(cfg.SMTP, logger)
	if err != nil {
		logger.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := notification.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID,
		notification.NewSender(renderer, mailer), logger)
	defer func() { _ = consumer.Close() }()

	logger.Info("notifier consuming", "topic", cfg.KafkaTopic, "group_id", cfg.KafkaGroupID)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("notifier stopped with error", "error", err)
		os.Exit(1)
	}
}
