package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

// InventoryGuard holds the capacity-safe operations on a ticket type's sold
// counter. All methods run on a caller-provided transaction so there is no
// check-then-act window outside it.
type InventoryGuard interface {
	// LockTicketType locks the ticket type row FOR UPDATE
	LockTicketType(ctx context.Context, tx pgx.Tx, id string) (*domain.TicketType, error)
	// CommitSold increments sold by qty, guarded by sold + qty <= quantity
	CommitSold(ctx context.Context, tx pgx.Tx, id string, qty int) error
	// ReleaseSold decrements sold by qty, guarded so sold never goes negative
	ReleaseSold(ctx context.Context, tx pgx.Tx, id string, qty int) error
}

// TicketTypeRepository manages the ticket-type catalog
type TicketTypeRepository interface {
	Create(ctx context.Context, tt *domain.TicketType) error
	Update(ctx context.Context, tt *domain.TicketType) error
	GetByID(ctx context.Context, id string) (*domain.TicketType, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	SoftDelete(ctx context.Context, id string) error
	// GetAvailability reads quantity and sold without locking
	GetAvailability(ctx context.Context, id string) (quantity, sold int, err error)
}

// PurchaseRepository manages purchases. State-changing methods run their own
// transaction and insert the matching outbox message inside it.
type PurchaseRepository interface {
	Create(ctx context.Context, p *domain.Purchase) error
	GetByID(ctx context.Context, id string) (*domain.Purchase, error)
	GetByReference(ctx context.Context, reference string) (*domain.Purchase, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Purchase, int64, error)
	// ConfirmPayment flips pending to confirmed and commits inventory in one
	// transaction. A lost capacity race returns ErrInsufficientInventory and
	// leaves the purchase pending.
	ConfirmPayment(ctx context.Context, id, paymentRef string) (*domain.Purchase, error)
	// RecordPaymentFailure marks the payment as failed on a pending purchase.
	// The purchase stays pending and no inventory is committed.
	RecordPaymentFailure(ctx context.Context, id, paymentRef string) (*domain.Purchase, error)
	// Cancel flips pending or confirmed to cancelled, releasing inventory
	// only if the purchase had been confirmed.
	Cancel(ctx context.Context, id string) (*domain.Purchase, error)
	// Refund flips confirmed or used to refunded. Inventory is never restored.
	Refund(ctx context.Context, id, reason string) (*domain.Purchase, error)
	// Validate redeems a confirmed purchase exactly once.
	Validate(ctx context.Context, id, staffID string) (*domain.Purchase, error)
	ValidateByReference(ctx context.Context, reference, staffID string) (*domain.Purchase, error)
	// SweepStalePending cancels pending purchases created before the cutoff.
	// Pending purchases hold no inventory, so this is bookkeeping only.
	SweepStalePending(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// SeatRepository manages trip seats with guarded single-row transitions
type SeatRepository interface {
	Create(ctx context.Context, seat *domain.Seat) error
	GetByID(ctx context.Context, id string) (*domain.Seat, error)
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Seat, error)
	Reserve(ctx context.Context, id, customerID string, heldUntil time.Time) (*domain.Seat, error)
	Book(ctx context.Context, id, purchaseID string) (*domain.Seat, error)
	Release(ctx context.Context, id string) (*domain.Seat, error)
	Block(ctx context.Context, id, reason string, until *time.Time) (*domain.Seat, error)
	Unblock(ctx context.Context, id string) (*domain.Seat, error)
	// ReleaseExpiredHolds frees reserved seats whose hold lapsed before now
	ReleaseExpiredHolds(ctx context.Context, now time.Time, limit int) (int64, error)
	// UnblockExpired frees blocked seats whose block deadline passed
	UnblockExpired(ctx context.Context, now time.Time, limit int) (int64, error)
}

// OutboxRepository manages the transactional outbox table
type OutboxRepository interface {
	Create(ctx context.Context, msg *domain.OutboxMessage) error
	CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error
	GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	GetFailedMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkAsPublished(ctx context.Context, id string) error
	MarkAsFailed(ctx context.Context, id string, errMsg string) error
	DeletePublished(ctx context.Context, retentionDays int) (int64, error)
}
