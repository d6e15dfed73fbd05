package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// PostgresInventoryGuard implements InventoryGuard. The sold counter is only
// ever moved by the guarded updates below, inside the caller's transaction,
// so 0 <= sold <= quantity holds under any interleaving.
type PostgresInventoryGuard struct{}

// NewPostgresInventoryGuard creates a new PostgresInventoryGuard
func NewPostgresInventoryGuard() *PostgresInventoryGuard {
	return &PostgresInventoryGuard{}
}

// LockTicketType locks the ticket type row FOR UPDATE within tx
func (g *PostgresInventoryGuard) LockTicketType(ctx context.Context, tx pgx.Tx, id string) (*domain.TicketType, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.inventory.lock_ticket_type")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	query := `
		SELECT id, event_id, quantity, sold, max_per_order, active,
		       sale_start_at, sale_end_at, deleted_at
		FROM ticket_types
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	tt := &domain.TicketType{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Quantity,
		&tt.Sold,
		&tt.MaxPerOrder,
		&tt.Active,
		&tt.SaleStartAt,
		&tt.SaleEndAt,
		&tt.DeletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketTypeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock ticket type: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return tt, nil
}

// CommitSold increments sold by qty. The WHERE clause is the capacity check:
// zero rows affected means the increment would exceed quantity.
func (g *PostgresInventoryGuard) CommitSold(ctx context.Context, tx pgx.Tx, id string, qty int) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.inventory.commit_sold")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_type_id", id),
		attribute.Int("quantity", qty),
	)

	if qty <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return domain.ErrInvalidQuantity
	}

	query := `
		UPDATE ticket_types
		SET sold = sold + $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND sold + $2 <= quantity
	`

	result, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit sold: %w", err)
	}

	if result.RowsAffected() == 0 {
		exists, err := ticketTypeExists(ctx, tx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrTicketTypeNotFound
		}
		span.SetStatus(codes.Error, "insufficient inventory")
		return domain.ErrInsufficientInventory
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ReleaseSold decrements sold by qty, never below zero
func (g *PostgresInventoryGuard) ReleaseSold(ctx context.Context, tx pgx.Tx, id string, qty int) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.inventory.release_sold")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_type_id", id),
		attribute.Int("quantity", qty),
	)

	if qty <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return domain.ErrInvalidQuantity
	}

	query := `
		UPDATE ticket_types
		SET sold = sold - $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND sold - $2 >= 0
	`

	result, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release sold: %w", err)
	}

	if result.RowsAffected() == 0 {
		exists, err := ticketTypeExists(ctx, tx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrTicketTypeNotFound
		}
		span.SetStatus(codes.Error, "release below zero")
		return domain.ErrInsufficientInventory
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func ticketTypeExists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ticket_types WHERE id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ticket type existence: %w", err)
	}
	return exists, nil
}
