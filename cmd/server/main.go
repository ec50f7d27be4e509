package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeynil/raffle-service/internal/api"
	"github.com/honeynil/raffle-service/internal/config"
	"github.com/honeynil/raffle-service/internal/infrastructure/kafka"
	"github.com/honeynil/raffle-service/internal/infrastructure/redis"
	"github.com/honeynil/raffle-service/internal/notify"
	"github.com/honeynil/raffle-service/internal/observability"
	core "github.com/honeynil/raffle-service/internal/repository/postgres"
	service "github.com/honeynil/raffle-service/internal/services"
	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Логи, метрики, трейсы
	shutdown := observability.Setup("raffle-service", cfg.MetricsAddr, cfg.OTLPEndpoint)
	defer shutdown(context.Background())

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		slog.Error("failed to open Postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = core.Migrate(ctx, db)
	cancel()
	if err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	raffleRepo := core.NewPostgresRaffleRepository(db)
	referralRepo := core.NewPostgresReferralRepository(db)
	purchaseRepo := core.NewPostgresPurchaseRepository(db)
	txManager := core.NewPostgresTxManager(db)

	redisClient, err := redis.NewClient(cfg.RedisAddr)
	if err != nil {
		os.Exit(1)
	}
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()
	notifier := notify.NewKafkaNotifier(producer, cfg.NotificationsTopic)

	svc := service.NewRaffleService(raffleRepo, referralRepo, purchaseRepo, txManager, notifier, redisClient, service.Options{
		TxTimeout:         cfg.TxTimeout,
		TxMaxRetries:      cfg.TxMaxRetries,
		RaffleCacheTTL:    cfg.RaffleCacheTTL,
		JWTSecret:         cfg.JWTSecret,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: cfg.AdminPasswordHash,
		AdminTokenTTL:     cfg.AdminTokenTTL,
		Templates:         notify.NewTemplates(cfg.BrandName, cfg.EmailFrom),
	})

	router := api.SetupRouter(svc, redisClient, api.RouterConfig{
		JWTSecret:        cfg.JWTSecret,
		SearchRateLimit:  cfg.SearchRateLimit,
		SearchRateWindow: cfg.SearchRateWindow,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
