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

// PostgresSeatRepository implements SeatRepository. Every transition is a
// guarded single-row UPDATE whose WHERE clause names the expected current
// status; a lost race shows up as zero rows affected and is re-read into a
// typed error.
type PostgresSeatRepository struct {
	pool   *pgxpool.Pool
	outbox OutboxRepository
	topic  string
}

// NewPostgresSeatRepository creates a new PostgresSeatRepository
func NewPostgresSeatRepository(pool *pgxpool.Pool, outbox OutboxRepository, topic string) *PostgresSeatRepository {
	return &PostgresSeatRepository{pool: pool, outbox: outbox, topic: topic}
}

const seatColumns = `
	id, trip_id, number, status, customer_id, purchase_id,
	held_until, block_reason, blocked_until, created_at, updated_at
`

// Create inserts a new seat
func (r *PostgresSeatRepository) Create(ctx context.Context, seat *domain.Seat) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("trip_id", seat.TripID),
		attribute.String("number", seat.Number),
	)

	query := `
		INSERT INTO trip_seats (
			id, trip_id, number, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		seat.ID,
		seat.TripID,
		seat.Number,
		seat.Status.String(),
		seat.CreatedAt,
		seat.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create seat: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a seat by its ID
func (r *PostgresSeatRepository) GetByID(ctx context.Context, id string) (*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", id))

	query := `SELECT ` + seatColumns + ` FROM trip_seats WHERE id = $1`

	seat, err := scanSeat(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrSeatNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return seat, nil
}

// ListByTrip retrieves all seats of a trip in seat-number order
func (r *PostgresSeatRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.list_by_trip")
	defer span.End()

	span.SetAttributes(attribute.String("trip_id", tripID))

	query := `SELECT ` + seatColumns + ` FROM trip_seats WHERE trip_id = $1 ORDER BY number ASC`

	rows, err := r.pool.Query(ctx, query, tripID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	defer rows.Close()

	var seats []*domain.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating seats: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(seats)))
	span.SetStatus(codes.Ok, "")
	return seats, nil
}

// Reserve places a time-boxed hold: available -> reserved
func (r *PostgresSeatRepository) Reserve(ctx context.Context, id, customerID string, heldUntil time.Time) (*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("seat_id", id),
		attribute.String("customer_id", customerID),
	)

	query := `
		UPDATE trip_seats SET
			status = 'reserved',
			customer_id = $2,
			held_until = $3,
			updated_at = NOW()
		WHERE id = $1 AND status = 'available'
		RETURNING ` + seatColumns

	seat, err := scanSeat(r.pool.QueryRow(ctx, query, id, customerID, heldUntil))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			reason := r.classifyTransitionFailure(ctx, id, domain.SeatStatusAvailable)
			span.SetStatus(codes.Error, reason.Error())
			return nil, reason
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return seat, nil
}

// Book converts a live hold into a booking: reserved -> booked. The guard
// also requires the hold not to have lapsed, so an expired hold loses to the
// sweeper rather than silently booking.
func (r *PostgresSeatRepository) Book(ctx context.Context, id, purchaseID string) (*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.book")
	defer span.End()

	span.SetAttributes(
		attribute.String("seat_id", id),
		attribute.String("purchase_id", purchaseID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE trip_seats SET
			status = 'booked',
			purchase_id = $2,
			held_until = NULL,
			updated_at = NOW()
		WHERE id = $1 AND status = 'reserved' AND (held_until IS NULL OR held_until > NOW())
		RETURNING ` + seatColumns

	seat, err := scanSeat(tx.QueryRow(ctx, query, id, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			reason := r.classifyBookFailure(ctx, id)
			span.SetStatus(codes.Error, reason.Error())
			return nil, reason
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to book seat: %w", err)
	}

	if err := r.insertOutbox(ctx, tx, domain.EventSeatBooked, seat); err != nil {
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
	return seat, nil
}

// Release returns a reserved or booked seat to available
func (r *PostgresSeatRepository) Release(ctx context.Context, id string) (*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.release")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", id))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE trip_seats SET
			status = 'available',
			customer_id = NULL,
			purchase_id = NULL,
			held_until = NULL,
			updated_at = NOW()
		WHERE id = $1 AND status IN ('reserved', 'booked')
		RETURNING ` + seatColumns

	seat, err := scanSeat(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			reason := r.classifyReleaseFailure(ctx, id)
			span.SetStatus(codes.Error, reason.Error())
			return nil, reason
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to release seat: %w", err)
	}

	if err := r.insertOutbox(ctx, tx, domain.EventSeatReleased, seat); err != nil {
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
	return seat, nil
}

// Block takes an available seat out of sale: available -> blocked
func (r *PostgresSeatRepository) Block(ctx context.Context, id, reason string, until *time.Time) (*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.block")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", id))

	query := `
		UPDATE trip_seats SET
			status = 'blocked',
			block_reason = $2,
			blocked_until = $3,
			updated_at = NOW()
		WHERE id = $1 AND status = 'available'
		RETURNING ` + seatColumns

	seat, err := scanSeat(r.pool.QueryRow(ctx, query, id, reason, until))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			failure := r.classifyTransitionFailure(ctx, id, domain.SeatStatusAvailable)
			span.SetStatus(codes.Error, failure.Error())
			return nil, failure
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to block seat: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return seat, nil
}

// Unblock returns a blocked seat to available: blocked -> available
func (r *PostgresSeatRepository) Unblock(ctx context.Context, id string) (*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.unblock")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", id))

	query := `
		UPDATE trip_seats SET
			status = 'available',
			block_reason = NULL,
			blocked_until = NULL,
			updated_at = NOW()
		WHERE id = $1 AND status = 'blocked'
		RETURNING ` + seatColumns

	seat, err := scanSeat(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			failure := r.classifyUnblockFailure(ctx, id)
			span.SetStatus(codes.Error, failure.Error())
			return nil, failure
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to unblock seat: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return seat, nil
}

// ReleaseExpiredHolds frees reserved seats whose hold lapsed before now
func (r *PostgresSeatRepository) ReleaseExpiredHolds(ctx context.Context, now time.Time, limit int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.release_expired_holds")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		UPDATE trip_seats SET
			status = 'available',
			customer_id = NULL,
			held_until = NULL,
			updated_at = NOW()
		WHERE id IN (
			SELECT id FROM trip_seats
			WHERE status = 'reserved' AND held_until IS NOT NULL AND held_until < $1
			ORDER BY held_until ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
	`

	result, err := r.pool.Exec(ctx, query, now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to release expired holds: %w", err)
	}

	released := result.RowsAffected()
	span.SetAttributes(attribute.Int64("released", released))
	span.SetStatus(codes.Ok, "")
	return released, nil
}

// UnblockExpired frees blocked seats whose block deadline passed
func (r *PostgresSeatRepository) UnblockExpired(ctx context.Context, now time.Time, limit int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.seat.unblock_expired")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		UPDATE trip_seats SET
			status = 'available',
			block_reason = NULL,
			blocked_until = NULL,
			updated_at = NOW()
		WHERE id IN (
			SELECT id FROM trip_seats
			WHERE status = 'blocked' AND blocked_until IS NOT NULL AND blocked_until < $1
			ORDER BY blocked_until ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
	`

	result, err := r.pool.Exec(ctx, query, now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to unblock expired seats: %w", err)
	}

	unblocked := result.RowsAffected()
	span.SetAttributes(attribute.Int64("unblocked", unblocked))
	span.SetStatus(codes.Ok, "")
	return unblocked, nil
}

func (r *PostgresSeatRepository) classifyTransitionFailure(ctx context.Context, id string, expected domain.SeatStatus) error {
	status, err := r.readStatus(ctx, id)
	if err != nil {
		return err
	}

	switch status {
	case domain.SeatStatusBlocked:
		return domain.ErrSeatBlocked
	default:
		if expected == domain.SeatStatusAvailable {
			return domain.ErrSeatNotAvailable
		}
		return domain.ErrSeatNotReserved
	}
}

func (r *PostgresSeatRepository) classifyBookFailure(ctx context.Context, id string) error {
	seat, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if seat.Status == domain.SeatStatusReserved && seat.IsHoldExpired(time.Now()) {
		return domain.ErrSeatHoldExpired
	}
	return domain.ErrSeatNotReserved
}

func (r *PostgresSeatRepository) classifyReleaseFailure(ctx context.Context, id string) error {
	if _, err := r.readStatus(ctx, id); err != nil {
		return err
	}
	return domain.ErrSeatNotReleasable
}

func (r *PostgresSeatRepository) classifyUnblockFailure(ctx context.Context, id string) error {
	if _, err := r.readStatus(ctx, id); err != nil {
		return err
	}
	return domain.ErrSeatNotBlocked
}

func (r *PostgresSeatRepository) readStatus(ctx context.Context, id string) (domain.SeatStatus, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM trip_seats WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrSeatNotFound
		}
		return "", fmt.Errorf("failed to read seat status: %w", err)
	}
	return domain.SeatStatus(status), nil
}

func (r *PostgresSeatRepository) insertOutbox(ctx context.Context, tx pgx.Tx, eventType domain.EventType, seat *domain.Seat) error {
	msg, err := domain.SeatOutboxEvent(eventType, seat, uuid.New().String(), r.topic)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	msg.ID = uuid.New().String()

	if err := r.outbox.CreateTx(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}
	return nil
}

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	seat := &domain.Seat{}
	var (
		status      string
		customerID  *string
		purchaseID  *string
		blockReason *string
	)

	err := row.Scan(
		&seat.ID,
		&seat.TripID,
		&seat.Number,
		&status,
		&customerID,
		&purchaseID,
		&seat.HeldUntil,
		&blockReason,
		&seat.BlockedUntil,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	seat.Status = domain.SeatStatus(status)
	if customerID != nil {
		seat.CustomerID = *customerID
	}
	if purchaseID != nil {
		seat.PurchaseID = *purchaseID
	}
	if blockReason != nil {
		seat.BlockReason = *blockReason
	}

	return seat, nil
}
