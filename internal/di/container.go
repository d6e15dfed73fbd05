package di

import (
	"github.com/XavierSoh/adigo-bnd-sub003/internal/handler"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/repository"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/service"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/worker"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/config"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/database"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/redis"
)

// Container holds all dependencies for the marketplace service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	InventoryGuard repository.InventoryGuard
	TicketTypeRepo repository.TicketTypeRepository
	PurchaseRepo   repository.PurchaseRepository
	SeatRepo       repository.SeatRepository
	OutboxRepo     repository.OutboxRepository

	// Services
	TicketTypeService service.TicketTypeService
	PurchaseService   service.PurchaseService
	ValidationService service.ValidationService
	SeatService       service.SeatService

	// Handlers
	HealthHandler     *handler.HealthHandler
	TicketTypeHandler *handler.TicketTypeHandler
	PurchaseHandler   *handler.PurchaseHandler
	ValidationHandler *handler.ValidationHandler
	SeatHandler       *handler.SeatHandler

	// Workers
	OutboxWorker   *worker.OutboxWorker
	ExpiryWorker   *worker.ExpiryWorker
	SeatHoldWorker *worker.SeatHoldWorker
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher worker.MessagePublisher
	Config    *config.Config
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	pool := cfg.DB.Pool()
	topic := cfg.Config.Kafka.Topic

	// Repositories
	c.InventoryGuard = repository.NewPostgresInventoryGuard()
	c.OutboxRepo = repository.NewPostgresOutboxRepository(pool)
	c.TicketTypeRepo = repository.NewPostgresTicketTypeRepository(pool)
	c.PurchaseRepo = repository.NewTransactionalPurchaseRepository(pool, c.InventoryGuard, c.OutboxRepo, topic)
	c.SeatRepo = repository.NewPostgresSeatRepository(pool, c.OutboxRepo, topic)

	// Services
	c.TicketTypeService = service.NewTicketTypeService(c.TicketTypeRepo, "")
	c.PurchaseService = service.NewPurchaseService(
		c.PurchaseRepo,
		c.TicketTypeRepo,
		c.SeatRepo,
		&service.PurchaseServiceConfig{PendingTTL: cfg.Config.Purchase.PendingTTL},
	)
	c.ValidationService = service.NewValidationService(c.PurchaseRepo)
	c.SeatService = service.NewSeatService(c.SeatRepo, &service.SeatServiceConfig{
		HoldTTL: cfg.Config.Seat.HoldTTL,
	})

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(map[string]handler.HealthChecker{
		"postgres": cfg.DB,
		"redis":    cfg.Redis,
	})
	c.TicketTypeHandler = handler.NewTicketTypeHandler(c.TicketTypeService)
	c.PurchaseHandler = handler.NewPurchaseHandler(c.PurchaseService)
	c.ValidationHandler = handler.NewValidationHandler(c.ValidationService)
	c.SeatHandler = handler.NewSeatHandler(c.SeatService)

	// Workers
	c.OutboxWorker = worker.NewOutboxWorker(c.OutboxRepo, cfg.Publisher, &worker.OutboxWorkerConfig{
		PollInterval:         cfg.Config.Outbox.PollInterval,
		BatchSize:            cfg.Config.Outbox.BatchSize,
		RetryInterval:        cfg.Config.Outbox.RetryInterval,
		CleanupInterval:      cfg.Config.Outbox.CleanupInterval,
		CleanupRetentionDays: cfg.Config.Outbox.RetentionDays,
	})
	c.ExpiryWorker = worker.NewExpiryWorker(c.PurchaseService, &worker.ExpiryWorkerConfig{
		ScanInterval: cfg.Config.Purchase.SweepInterval,
		BatchSize:    cfg.Config.Purchase.SweepBatch,
	})
	c.SeatHoldWorker = worker.NewSeatHoldWorker(c.SeatService, &worker.SeatHoldWorkerConfig{
		ScanInterval: cfg.Config.Seat.SweepInterval,
		BatchSize:    cfg.Config.Seat.SweepBatch,
	})

	return c
}
