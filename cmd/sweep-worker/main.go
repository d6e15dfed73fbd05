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
	"github.com/XavierSoh/adigo-bnd-sub003/internal/service"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/worker"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/config"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/database"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/logger"
)

// Standalone sweeper for stale pending purchases and lapsed seat holds.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		Environment: cfg.App.Environment,
		ServiceName: "sweep-worker",
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if _, err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting sweep worker...")

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

	pool := db.Pool()
	topic := cfg.Kafka.Topic

	guard := repository.NewPostgresInventoryGuard()
	outboxRepo := repository.NewPostgresOutboxRepository(pool)
	ticketTypeRepo := repository.NewPostgresTicketTypeRepository(pool)
	purchaseRepo := repository.NewTransactionalPurchaseRepository(pool, guard, outboxRepo, topic)
	seatRepo := repository.NewPostgresSeatRepository(pool, outboxRepo, topic)

	purchaseService := service.NewPurchaseService(
		purchaseRepo,
		ticketTypeRepo,
		seatRepo,
		&service.PurchaseServiceConfig{PendingTTL: cfg.Purchase.PendingTTL},
	)
	seatService := service.NewSeatService(seatRepo, &service.SeatServiceConfig{
		HoldTTL: cfg.Seat.HoldTTL,
	})

	expiryWorker := worker.NewExpiryWorker(purchaseService, &worker.ExpiryWorkerConfig{
		ScanInterval: cfg.Purchase.SweepInterval,
		BatchSize:    cfg.Purchase.SweepBatch,
	})
	seatHoldWorker := worker.NewSeatHoldWorker(seatService, &worker.SeatHoldWorkerConfig{
		ScanInterval: cfg.Seat.SweepInterval,
		BatchSize:    cfg.Seat.SweepBatch,
	})

	if err := expiryWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start expiry worker: %v", err))
	}
	if err := seatHoldWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start seat hold worker: %v", err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down sweep worker...")
	expiryWorker.Stop()
	seatHoldWorker.Stop()
	appLog.Info("Sweep worker stopped")
}
