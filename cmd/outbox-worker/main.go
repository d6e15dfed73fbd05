package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/metrics"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/repository"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/worker"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/config"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/database"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/kafka"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/logger"
)

// Standalone outbox publisher for deployments that run event publishing
// separately from the API process.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		Environment: cfg.App.Environment,
		ServiceName: "outbox-worker",
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if _, err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting outbox worker...")

	ctx := context.Background()

	if err := metrics.Init(); err != nil {
		appLog.Fatal(fmt.Sprintf("Metrics initialization failed: %v", err))
	}

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  10 * time.Second,
		MaxRetries:      3,
		RetryInterval:   2 * time.Second,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()

	producerCfg := kafka.DefaultProducerConfig(cfg.Kafka.Brokers)
	producerCfg.ClientID = cfg.Kafka.ClientID
	producer, err := kafka.NewProducer(producerCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Kafka connection failed: %v", err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = producer.Close(closeCtx)
	}()

	outboxRepo := repository.NewPostgresOutboxRepository(db.Pool())
	outboxWorker := worker.NewOutboxWorker(outboxRepo, producer, &worker.OutboxWorkerConfig{
		PollInterval:         cfg.Outbox.PollInterval,
		BatchSize:            cfg.Outbox.BatchSize,
		RetryInterval:        cfg.Outbox.RetryInterval,
		CleanupInterval:      cfg.Outbox.CleanupInterval,
		CleanupRetentionDays: cfg.Outbox.RetentionDays,
	})

	if err := outboxWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start outbox worker: %v", err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down outbox worker...")
	outboxWorker.Stop()
	appLog.Info("Outbox worker stopped")
}
