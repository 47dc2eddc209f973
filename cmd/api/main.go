package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sushiramen/internal/config"
	"sushiramen/internal/infra/db"
	"sushiramen/internal/logging"
	"sushiramen/internal/notification"
	"sushiramen/internal/search"
	"sushiramen/internal/server"
	"sushiramen/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい
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

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	//通知：Kafkaがあればそちらへ、なければプロセス内キューで直接送る
	var notifier usecase.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		pub := notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = pub.Close() }()
		notifier = pub
		logger.Info("notifications go to kafka", "topic", cfg.KafkaTopic)
	} else {
		sender, err := newSender(cfg, logger)
		if err != nil {
			return err
		}
		dispatcher := notification.NewDispatcher(sender, cfg.NotifyWorkers, cfg.NotifyQueueSize, logger)
		dispatcher.Start(context.Background())
		// サーバー停止後にキューを流し切る
		defer dispatcher.Close()
		notifier = dispatcher
	}

	//検索：未設定ならnilのまま（DBのLIKE）
	var searcher usecase.ProductSearcher
	if len(cfg.ElasticsearchURLs) > 0 {
		idx, err := search.NewProductIndex(cfg.ElasticsearchURLs, cfg.ElasticsearchIndex)
		if err != nil {
			return err
		}
		if err := idx.EnsureIndex(ctx); err != nil {
			// 起動は続ける。検索はDBにフォールバックする
			logger.Warn("elasticsearch index not ready", "error", err)
		}
		searcher = idx
	}

	h := server.NewHandlers(cfg, server.Deps{
		DB:       gormDB,
		Notifier: notifier,
		Searcher: searcher,
	})
	e := server.New(cfg, logger, h)

	logger.Info("api listening", "port", cfg.Port, "env", cfg.GoEnv)
	return server.Run(ctx, e, ":"+cfg.Port)
}

func newSender(cfg config.Config, logger *slog.Logger) (*notification.Sender, error) {
	renderer, err := notification.NewRenderer(cfg.FrontendURL)
	if err != nil {
		return nil, err
	}
	mailer, err := notification.NewMailer(cfg.SMTP, logger)
	if err != nil {
		return nil, err
	}
	return notification.NewSender(renderer, mailer), nil
}
