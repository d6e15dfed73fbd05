package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// PostgresOutboxRepository implements OutboxRepository
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool}
}

const outboxColumns = `
	id, aggregate_type, aggregate_id, event_type, payload,
	topic, partition_key, status, retry_count, max_retries,
	last_error, created_at, processed_at, published_at
`

// execer is satisfied by both pgxpool.Pool and pgx.Tx
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Create inserts an outbox message outside any caller transaction
func (r *PostgresOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	return r.create(ctx, r.pool, msg)
}

// CreateTx inserts an outbox message inside the caller's transaction so the
// message commits or rolls back with the state change it describes
func (r *PostgresOutboxRepository) CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error {
	return r.create(ctx, tx, msg)
}

func (r *PostgresOutboxRepository) create(ctx context.Context, q execer, msg *domain.OutboxMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("aggregate_type", msg.AggregateType),
		attribute.String("aggregate_id", msg.AggregateID),
		attribute.String("event_type", msg.EventType),
	)

	query := `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			topic, partition_key, status, retry_count, max_retries, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		)
	`

	_, err := q.Exec(ctx, query,
		msg.ID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.Topic,
		msg.PartitionKey,
		msg.Status.String(),
		msg.RetryCount,
		msg.MaxRetries,
		msg.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetPendingMessages fetches pending messages oldest first. SKIP LOCKED lets
// multiple publisher instances poll without stepping on each other.
func (r *PostgresOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.get_pending")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_messages
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	messages, err := r.queryMessages(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(messages)))
	span.SetStatus(codes.Ok, "")
	return messages, nil
}

// GetFailedMessages fetches failed messages that still have retries left
func (r *PostgresOutboxRepository) GetFailedMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.get_failed")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_messages
		WHERE status = 'failed' AND retry_count < max_retries
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	messages, err := r.queryMessages(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(messages)))
	span.SetStatus(codes.Ok, "")
	return messages, nil
}

// MarkAsPublished marks the message as successfully published
func (r *PostgresOutboxRepository) MarkAsPublished(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.mark_published")
	defer span.End()

	span.SetAttributes(attribute.String("message_id", id))

	query := `
		UPDATE outbox_messages SET
			status = 'published',
			published_at = NOW(),
			processed_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark message as published: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkAsFailed records a publish failure and bumps the retry counter
func (r *PostgresOutboxRepository) MarkAsFailed(ctx context.Context, id string, errMsg string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.mark_failed")
	defer span.End()

	span.SetAttributes(attribute.String("message_id", id))

	query := `
		UPDATE outbox_messages SET
			status = 'failed',
			last_error = $2,
			retry_count = retry_count + 1,
			processed_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, errMsg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark message as failed: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeletePublished removes published messages older than the retention window
func (r *PostgresOutboxRepository) DeletePublished(ctx context.Context, retentionDays int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.delete_published")
	defer span.End()

	span.SetAttributes(attribute.Int("retention_days", retentionDays))

	query := `
		DELETE FROM outbox_messages
		WHERE status = 'published'
		  AND published_at < NOW() - ($1 || ' days')::INTERVAL
	`

	result, err := r.pool.Exec(ctx, query, retentionDays)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to delete published messages: %w", err)
	}

	deleted := result.RowsAffected()
	span.SetAttributes(attribute.Int64("deleted", deleted))
	span.SetStatus(codes.Ok, "")
	return deleted, nil
}

func (r *PostgresOutboxRepository) queryMessages(ctx context.Context, query string, args ...any) ([]*domain.OutboxMessage, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}

	return messages, nil
}

func scanOutboxMessage(row pgx.Row) (*domain.OutboxMessage, error) {
	msg := &domain.OutboxMessage{}
	var (
		status    string
		lastError *string
	)

	err := row.Scan(
		&msg.ID,
		&msg.AggregateType,
		&msg.AggregateID,
		&msg.EventType,
		&msg.Payload,
		&msg.Topic,
		&msg.PartitionKey,
		&status,
		&msg.RetryCount,
		&msg.MaxRetries,
		&lastError,
		&msg.CreatedAt,
		&msg.ProcessedAt,
		&msg.PublishedAt,
	)
	if err != nil {
		return nil, err
	}

	msg.Status = domain.OutboxStatus(status)
	if lastError != nil {
		msg.LastError = *lastError
	}

	return msg, nil
}
