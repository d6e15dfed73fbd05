package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// PostgresTicketTypeRepository implements TicketTypeRepository using pgxpool
type PostgresTicketTypeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketTypeRepository creates a new PostgresTicketTypeRepository
func NewPostgresTicketTypeRepository(pool *pgxpool.Pool) *PostgresTicketTypeRepository {
	return &PostgresTicketTypeRepository{pool: pool}
}

const ticketTypeColumns = `
	id, event_id, name, description, price, currency,
	quantity, sold, max_per_order, sale_start_at, sale_end_at,
	active, created_at, updated_at, deleted_at
`

// Create inserts a new ticket type
func (r *PostgresTicketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket_type.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_type_id", tt.ID),
		attribute.String("event_id", tt.EventID),
	)

	query := `
		INSERT INTO ticket_types (
			id, event_id, name, description, price, currency,
			quantity, sold, max_per_order, sale_start_at, sale_end_at,
			active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14
		)
	`

	_, err := r.pool.Exec(ctx, query,
		tt.ID,
		tt.EventID,
		tt.Name,
		nullString(tt.Description),
		tt.Price,
		tt.Currency,
		tt.Quantity,
		tt.Sold,
		tt.MaxPerOrder,
		tt.SaleStartAt,
		tt.SaleEndAt,
		tt.Active,
		tt.CreatedAt,
		tt.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create ticket type: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update updates catalog fields of a ticket type. The sold counter is never
// written here, only through the inventory guard.
func (r *PostgresTicketTypeRepository) Update(ctx context.Context, tt *domain.TicketType) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket_type.update")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", tt.ID))

	query := `
		UPDATE ticket_types SET
			name = $2,
			description = $3,
			price = $4,
			currency = $5,
			quantity = $6,
			max_per_order = $7,
			sale_start_at = $8,
			sale_end_at = $9,
			active = $10,
			updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL AND sold <= $6
	`

	result, err := r.pool.Exec(ctx, query,
		tt.ID,
		tt.Name,
		nullString(tt.Description),
		tt.Price,
		tt.Currency,
		tt.Quantity,
		tt.MaxPerOrder,
		tt.SaleStartAt,
		tt.SaleEndAt,
		tt.Active,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update ticket type: %w", err)
	}

	if result.RowsAffected() == 0 {
		// The row is either absent (or soft-deleted), or present with more
		// units sold than the requested quantity. Re-read to tell them apart.
		if _, err := r.GetByID(ctx, tt.ID); err != nil {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrTicketTypeNotFound
		}
		span.SetStatus(codes.Error, "quantity below sold")
		return domain.ErrQuantityBelowSold
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a ticket type by ID
func (r *PostgresTicketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket_type.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1 AND deleted_at IS NULL`

	row := r.pool.QueryRow(ctx, query, id)
	tt, err := scanTicketTypeRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketTypeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return tt, nil
}

// ListByEvent retrieves all non-deleted ticket types of an event
func (r *PostgresTicketTypeRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket_type.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}
	defer rows.Close()

	var ticketTypes []*domain.TicketType
	for rows.Next() {
		tt, err := scanTicketTypeRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		ticketTypes = append(ticketTypes, tt)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(ticketTypes)))
	span.SetStatus(codes.Ok, "")
	return ticketTypes, nil
}

// SoftDelete marks a ticket type as deleted
func (r *PostgresTicketTypeRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket_type.soft_delete")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	query := `
		UPDATE ticket_types
		SET deleted_at = NOW(), active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to soft delete ticket type: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrTicketTypeNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetAvailability reads quantity and sold without locking. The numbers are a
// snapshot; only the guarded updates are authoritative.
func (r *PostgresTicketTypeRepository) GetAvailability(ctx context.Context, id string) (int, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket_type.get_availability")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	var quantity, sold int
	err := r.pool.QueryRow(ctx,
		`SELECT quantity, sold FROM ticket_types WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&quantity, &sold)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return 0, 0, domain.ErrTicketTypeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, 0, fmt.Errorf("failed to get availability: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return quantity, sold, nil
}

func scanTicketTypeRow(row pgx.Row) (*domain.TicketType, error) {
	tt := &domain.TicketType{}
	var description *string

	err := row.Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&description,
		&tt.Price,
		&tt.Currency,
		&tt.Quantity,
		&tt.Sold,
		&tt.MaxPerOrder,
		&tt.SaleStartAt,
		&tt.SaleEndAt,
		&tt.Active,
		&tt.CreatedAt,
		&tt.UpdatedAt,
		&tt.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		tt.Description = *description
	}
	return tt, nil
}

// nullString returns nil for empty strings so optional columns stay NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
