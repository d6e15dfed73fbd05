package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/di"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/metrics"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/config"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/database"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/kafka"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/logger"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/middleware"
	pkgredis "github.com/XavierSoh/adigo-bnd-sub003/pkg/redis"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		Environment: cfg.App.Environment,
		ServiceName: cfg.App.Name,
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if _, err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting marketplace service...")

	ctx := context.Background()

	// Telemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	if err := telemetry.InitMetrics(cfg.OTel.ServiceName); err != nil {
		appLog.Fatal(fmt.Sprintf("Metrics initialization failed: %v", err))
	}
	if err := metrics.Init(); err != nil {
		appLog.Fatal(fmt.Sprintf("Domain metrics initialization failed: %v", err))
	}

	// PostgreSQL
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
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Redis
	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		MaxRetries:   3,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Kafka producer. A broker outage is not fatal: outbox messages stay
	// pending until the worker can publish them.
	producerCfg := kafka.DefaultProducerConfig(cfg.Kafka.Brokers)
	producerCfg.ClientID = cfg.Kafka.ClientID
	producer, err := kafka.NewProducer(producerCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, outbox publishing disabled: %v", err))
		producer = nil
	} else {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = producer.Close(closeCtx)
		}()
		appLog.Info("Kafka producer connected")
	}

	container := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Publisher: producer,
		Config:    cfg,
	})

	// Workers
	if producer != nil {
		if err := container.OutboxWorker.Start(ctx); err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to start outbox worker: %v", err))
		}
		defer container.OutboxWorker.Stop()
	}
	if err := container.ExpiryWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start expiry worker: %v", err))
	}
	defer container.ExpiryWorker.Stop()
	if err := container.SeatHoldWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start seat hold worker: %v", err))
	}
	defer container.SeatHoldWorker.Stop()

	router := setupRouter(cfg, container, redisClient)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Marketplace service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, container *di.Container, redisClient *pkgredis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))

	// Probes and metrics
	router.GET("/health/live", container.HealthHandler.Live)
	router.GET("/health/ready", container.HealthHandler.Ready)
	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)

	idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient.Client())
	idempotencyConfig.TTL = cfg.Purchase.IdempotencyTTL
	idempotent := middleware.IdempotencyMiddleware(idempotencyConfig)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		// Catalog reads are public
		v1.GET("/ticket-types/:id", container.TicketTypeHandler.Get)
		v1.GET("/ticket-types/:id/availability", container.TicketTypeHandler.GetAvailability)
		v1.GET("/events/:event_id/ticket-types", container.TicketTypeHandler.ListByEvent)
		v1.GET("/trips/:trip_id/seats", container.SeatHandler.ListByTrip)
		v1.GET("/seats/:id", container.SeatHandler.Get)

		// Catalog writes require the admin role
		admin := v1.Group("", auth, middleware.RequireRole("admin"))
		{
			admin.POST("/ticket-types", container.TicketTypeHandler.Create)
			admin.PUT("/ticket-types/:id", container.TicketTypeHandler.Update)
			admin.DELETE("/ticket-types/:id", container.TicketTypeHandler.Delete)

			admin.POST("/seats", container.SeatHandler.Create)
			admin.POST("/seats/:id/release", container.SeatHandler.Release)
			admin.POST("/seats/:id/block", container.SeatHandler.Block)
			admin.POST("/seats/:id/unblock", container.SeatHandler.Unblock)
		}

		// Purchase workflow requires an authenticated customer
		purchases := v1.Group("/purchases", auth)
		{
			purchases.POST("", idempotent, container.PurchaseHandler.Initiate)
			purchases.POST("/:id/confirm", idempotent, container.PurchaseHandler.ConfirmPayment)
			purchases.POST("/:id/cancel", idempotent, container.PurchaseHandler.Cancel)
			purchases.POST("/:id/refund", idempotent, container.PurchaseHandler.Refund)

			purchases.GET("", container.PurchaseHandler.List)
			purchases.GET("/:id", container.PurchaseHandler.Get)
		}

		v1.POST("/seats/:id/reserve", auth, container.SeatHandler.Reserve)
		v1.POST("/seats/:id/book", auth, container.SeatHandler.Book)

		// Redemption is staff-only and deliberately not idempotent
		staff := v1.Group("", auth, middleware.RequireRole("staff", "admin"))
		{
			staff.POST("/validations", container.ValidationHandler.ValidateTicket)
			staff.POST("/purchases/:id/validate", container.ValidationHandler.ValidateByID)
		}
	}

	return router
}
