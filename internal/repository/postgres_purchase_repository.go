package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// TransactionalPurchaseRepository implements PurchaseRepository. Every state
// change and its outbox message commit in the same transaction; the sold
// counter only moves through the inventory guard inside that transaction.
type TransactionalPurchaseRepository struct {
	pool      *pgxpool.Pool
	inventory InventoryGuard
	outbox    OutboxRepository
	topic     string
}

// NewTransactionalPurchaseRepository creates a new TransactionalPurchaseRepository
func NewTransactionalPurchaseRepository(
	pool *pgxpool.Pool,
	inventory InventoryGuard,
	outbox OutboxRepository,
	topic string,
) *TransactionalPurchaseRepository {
	return &TransactionalPurchaseRepository{
		pool:      pool,
		inventory: inventory,
		outbox:    outbox,
		topic:     topic,
	}
}

const purchaseColumns = `
	id, reference, customer_id, event_id, ticket_type_id,
	quantity, unit_price, total_amount, currency,
	attendee_name, attendee_email,
	status, payment_status, payment_ref, qr_code, validated_by,
	used_at, confirmed_at, cancelled_at, refunded_at, refund_reason,
	created_at, updated_at
`

// Create inserts a pending purchase and its created event in one transaction.
// Initiation never touches the sold counter.
func (r *TransactionalPurchaseRepository) Create(ctx context.Context, p *domain.Purchase) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchase_id", p.ID),
		attribute.String("customer_id", p.CustomerID),
		attribute.String("ticket_type_id", p.TicketTypeID),
		attribute.Int("quantity", p.Quantity),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO purchases (
			id, reference, customer_id, event_id, ticket_type_id,
			quantity, unit_price, total_amount, currency,
			attendee_name, attendee_email,
			status, payment_status, qr_code, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15, $16
		)
	`

	_, err = tx.Exec(ctx, query,
		p.ID,
		p.Reference,
		p.CustomerID,
		p.EventID,
		p.TicketTypeID,
		p.Quantity,
		p.UnitPrice,
		p.TotalAmount,
		p.Currency,
		nullString(p.AttendeeName),
		nullString(p.AttendeeEmail),
		p.Status.String(),
		p.PaymentStatus.String(),
		nullString(p.QRCode),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	if err := r.insertOutbox(ctx, tx, domain.EventPurchaseCreated, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a purchase by its ID
func (r *TransactionalPurchaseRepository) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("purchase_id", id))

	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`

	p, err := scanPurchase(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrPurchaseNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// GetByReference retrieves a purchase by its unique reference
func (r *TransactionalPurchaseRepository) GetByReference(ctx context.Context, reference string) (*domain.Purchase, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.get_by_reference")
	defer span.End()

	span.SetAttributes(attribute.String("reference", reference))

	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE reference = $1`

	p, err := scanPurchase(r.pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrPurchaseNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get purchase by reference: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// ListByCustomer retrieves purchases for a customer, newest first
func (r *TransactionalPurchaseRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Purchase, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.list_by_customer")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer_id", customerID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM purchases WHERE customer_id = $1`, customerID,
	).Scan(&total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	query := `
		SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, err
		}
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("error iterating purchases: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(purchases)))
	span.SetStatus(codes.Ok, "")
	return purchases, total, nil
}

// ConfirmPayment flips a pending purchase to confirmed and commits its
// inventory in one transaction. The purchase row is locked first, then the
// ticket type, so concurrent confirms and cancels serialize in one order.
func (r *TransactionalPurchaseRepository) ConfirmPayment(ctx context.Context, id, paymentRef string) (*domain.Purchase, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.confirm_payment")
	defer span.End()

	span.SetAttributes(attribute.String("purchase_id", id))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := r.lockPurchase(ctx, tx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !p.CanConfirm() {
		span.SetStatus(codes.Error, "not pending")
		switch p.Status {
		case domain.PurchaseStatusCancelled:
			return nil, domain.ErrPurchaseCancelled
		default:
			return nil, domain.ErrPurchaseNotPending
		}
	}

	if _, err := r.inventory.LockTicketType(ctx, tx, p.TicketTypeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The capacity check happens here. On failure the whole transaction
	// rolls back and the purchase stays pending.
	if err := r.inventory.CommitSold(ctx, tx, p.TicketTypeID, p.Quantity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	result, err := tx.Exec(ctx, `
		UPDATE purchases SET
			status = $2,
			payment_status = $3,
			payment_ref = $4,
			confirmed_at = $5,
			updated_at = $5
		WHERE id = $1 AND status = 'pending'
	`, id, domain.PurchaseStatusConfirmed.String(), domain.PaymentStatusPaid.String(), paymentRef, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to confirm purchase: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not pending")
		return nil, domain.ErrPurchaseNotPending
	}

	p.Status = domain.PurchaseStatusConfirmed
	p.PaymentStatus = domain.PaymentStatusPaid
	p.PaymentRef = paymentRef
	p.ConfirmedAt = &now
	p.UpdatedAt = now

	if err := r.insertOutbox(ctx, tx, domain.EventPurchaseConfirmed, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// RecordPaymentFailure marks the payment as failed on a pending purchase.
// The purchase itself stays pending so the customer can retry payment, and
// no inventory is touched.
func (r *TransactionalPurchaseRepository) RecordPaymentFailure(ctx context.Context, id, paymentRef string) (*domain.Purchase, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.record_payment_failure")
	defer span.End()

	span.SetAttributes(attribute.String("purchase_id", id))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := r.lockPurchase(ctx, tx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := p.FailPayment(paymentRef); err != nil {
		span.SetStatus(codes.Error, "not pending")
		return nil, err
	}

	result, err := tx.Exec(ctx, `
		UPDATE purchases SET
			payment_status = $2,
			payment_ref = $3,
			updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, domain.PaymentStatusFailed.String(), paymentRef, p.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to record payment failure: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not pending")
		return nil, domain.ErrPurchaseNotPending
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// Cancel flips a pending or confirmed purchase to cancelled. Inventory is
// released only if the purchase had been confirmed, in the same transaction.
func (r *TransactionalPurchaseRepository) Cancel(ctx context.Context, id string) (*domain.Purchase, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("purchase_id", id))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := r.lockPurchase(ctx, tx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	wasConfirmed := p.IsConfirmed()
	if err := p.Cancel(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result, err := tx.Exec(ctx, `
		UPDATE purchases SET
			status = $2,
			cancelled_at = $3,
			updated_at = $3
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`, id, domain.PurchaseStatusCancelled.String(), *p.CancelledAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to cancel purchase: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not cancellable")
		return nil, domain.ErrNotCancellable
	}

	if wasConfirmed {
		if _, err := r.inventory.LockTicketType(ctx, tx, p.TicketTypeID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := r.inventory.ReleaseSold(ctx, tx, p.TicketTypeID, p.Quantity); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if err := r.insertOutbox(ctx, tx, domain.EventPurchaseCancelled, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// Refund flips a confirmed or used purchase to refunded. The sold counter is
// left untouched: refunded tickets are not resold.
func (r *TransactionalPurchaseRepository) Refund(ctx context.Context, id, reason string) (*domain.Purchase, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.refund")
	defer span.End()

	span.SetAttributes(attribute.String("purchase_id", id))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := r.lockPurchase(ctx, tx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := p.Refund(reason); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result, err := tx.Exec(ctx, `
		UPDATE purchases SET
			status = $2,
			payment_status = $3,
			refunded_at = $4,
			refund_reason = $5,
			updated_at = $4
		WHERE id = $1 AND status IN ('confirmed', 'used')
	`, id, domain.PurchaseStatusRefunded.String(), domain.PaymentStatusRefunded.String(), *p.RefundedAt, nullString(reason))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to refund purchase: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not refundable")
		return nil, domain.ErrNotRefundable
	}

	if err := r.insertOutbox(ctx, tx, domain.EventPurchaseRefunded, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// Validate redeems a confirmed purchase exactly once via a guarded update.
// A second call loses the guard and returns ErrAlreadyUsed.
func (r *TransactionalPurchaseRepository) Validate(ctx context.Context, id, staffID string) (*domain.Purchase, error) {
	return r.validate(ctx, "id", id, staffID)
}

// ValidateByReference redeems a purchase located by its reference (QR scan path)
func (r *TransactionalPurchaseRepository) ValidateByReference(ctx context.Context, reference, staffID string) (*domain.Purchase, error) {
	return r.validate(ctx, "reference", reference, staffID)
}

func (r *TransactionalPurchaseRepository) validate(ctx context.Context, column, value, staffID string) (*domain.Purchase, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.validate")
	defer span.End()

	span.SetAttributes(
		attribute.String("lookup", column),
		attribute.String("staff_id", staffID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		UPDATE purchases SET
			status = 'used',
			validated_by = $2,
			used_at = NOW(),
			updated_at = NOW()
		WHERE %s = $1 AND status = 'confirmed'
		RETURNING `+purchaseColumns, column)

	p, err := scanPurchase(tx.QueryRow(ctx, query, value, staffID))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to validate purchase: %w", err)
		}

		// Guard lost. Re-read to say why.
		reason := r.classifyValidationFailure(ctx, tx, column, value)
		span.SetStatus(codes.Error, reason.Error())
		return nil, reason
	}

	if err := r.insertOutbox(ctx, tx, domain.EventPurchaseValidated, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

func (r *TransactionalPurchaseRepository) classifyValidationFailure(ctx context.Context, tx pgx.Tx, column, value string) error {
	var status string
	query := fmt.Sprintf(`SELECT status FROM purchases WHERE %s = $1`, column)
	err := tx.QueryRow(ctx, query, value).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPurchaseNotFound
		}
		return fmt.Errorf("failed to read purchase status: %w", err)
	}

	switch domain.PurchaseStatus(status) {
	case domain.PurchaseStatusUsed:
		return domain.ErrAlreadyUsed
	case domain.PurchaseStatusCancelled:
		return domain.ErrPurchaseCancelled
	default:
		return domain.ErrPurchaseNotConfirmed
	}
}

// SweepStalePending cancels pending purchases created before the cutoff.
// Pending rows never held inventory, so nothing is released.
func (r *TransactionalPurchaseRepository) SweepStalePending(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.purchase.sweep_stale_pending")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		UPDATE purchases SET
			status = 'cancelled',
			cancelled_at = NOW(),
			updated_at = NOW()
		WHERE id IN (
			SELECT id FROM purchases
			WHERE status = 'pending' AND created_at < $1
			ORDER BY created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
	`

	result, err := r.pool.Exec(ctx, query, cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to sweep stale pending purchases: %w", err)
	}

	swept := result.RowsAffected()
	span.SetAttributes(attribute.Int64("swept", swept))
	span.SetStatus(codes.Ok, "")
	return swept, nil
}

func (r *TransactionalPurchaseRepository) lockPurchase(ctx context.Context, tx pgx.Tx, id string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 FOR UPDATE`

	p, err := scanPurchase(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to lock purchase: %w", err)
	}
	return p, nil
}

func (r *TransactionalPurchaseRepository) insertOutbox(ctx context.Context, tx pgx.Tx, eventType domain.EventType, p *domain.Purchase) error {
	msg, err := domain.PurchaseOutboxEvent(eventType, p, uuid.New().String(), r.topic)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	msg.ID = uuid.New().String()

	if err := r.outbox.CreateTx(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}
	return nil
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	p := &domain.Purchase{}
	var (
		status        string
		paymentStatus string
		attendeeName  *string
		attendeeEmail *string
		paymentRef    *string
		qrCode        *string
		validatedBy   *string
		refundReason  *string
	)

	err := row.Scan(
		&p.ID,
		&p.Reference,
		&p.CustomerID,
		&p.EventID,
		&p.TicketTypeID,
		&p.Quantity,
		&p.UnitPrice,
		&p.TotalAmount,
		&p.Currency,
		&attendeeName,
		&attendeeEmail,
		&status,
		&paymentStatus,
		&paymentRef,
		&qrCode,
		&validatedBy,
		&p.UsedAt,
		&p.ConfirmedAt,
		&p.CancelledAt,
		&p.RefundedAt,
		&refundReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = domain.PurchaseStatus(status)
	p.PaymentStatus = domain.PaymentStatus(paymentStatus)
	if attendeeName != nil {
		p.AttendeeName = *attendeeName
	}
	if attendeeEmail != nil {
		p.AttendeeEmail = *attendeeEmail
	}
	if paymentRef != nil {
		p.PaymentRef = *paymentRef
	}
	if qrCode != nil {
		p.QRCode = *qrCode
	}
	if validatedBy != nil {
		p.ValidatedBy = *validatedBy
	}
	if refundReason != nil {
		p.RefundReason = *refundReason
	}

	return p, nil
}
