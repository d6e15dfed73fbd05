package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

// skipIfNoIntegration skips tests that require a real database
func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

// getPostgresPool creates a connection pool against the test database
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("TEST_POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("TEST_POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}
	password := os.Getenv("TEST_POSTGRES_PASSWORD")
	if password == "" {
		password = "postgres"
	}
	dbname := os.Getenv("TEST_POSTGRES_DB")
	if dbname == "" {
		dbname = "marketplace_test"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	return pool
}

// createTestTicketType inserts a ticket type with the given counters and
// registers cleanup of it and everything hanging off it
func createTestTicketType(t *testing.T, pool *pgxpool.Pool, quantity, sold int) *domain.TicketType {
	t.Helper()

	repo := NewPostgresTicketTypeRepository(pool)
	now := time.Now()
	tt := &domain.TicketType{
		ID:          uuid.New().String(),
		EventID:     uuid.New().String(),
		Name:        "Standard",
		Price:       decimal.NewFromInt(5000),
		Currency:    "XAF",
		Quantity:    quantity,
		Sold:        sold,
		MaxPerOrder: 10,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(context.Background(), tt); err != nil {
		t.Fatalf("Failed to create ticket type: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `
			DELETE FROM outbox_messages WHERE aggregate_id IN (
				SELECT id::text FROM purchases WHERE ticket_type_id = $1
			)
		`, tt.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM purchases WHERE ticket_type_id = $1`, tt.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM ticket_types WHERE id = $1`, tt.ID)
	})
	return tt
}

// A ticket type without a sale window must insert and read back cleanly:
// the window columns are optional end to end.
func TestPostgresTicketTypeRepository_Create_NoSaleWindow(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	tt := createTestTicketType(t, pool, 100, 0)
	if tt.SaleStartAt != nil || tt.SaleEndAt != nil {
		t.Fatal("test fixture should carry no sale window")
	}

	repo := NewPostgresTicketTypeRepository(pool)
	got, err := repo.GetByID(context.Background(), tt.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.SaleStartAt != nil || got.SaleEndAt != nil {
		t.Errorf("GetByID() sale window = (%v, %v), want none", got.SaleStartAt, got.SaleEndAt)
	}
	if err := got.IsOnSaleAt(time.Now()); err != nil {
		t.Errorf("IsOnSaleAt() error = %v, want on sale with no window", err)
	}
}

// Shrinking quantity below the stored sold counter must be rejected against
// the row's current value, not the value read before the update.
func TestPostgresTicketTypeRepository_Update_QuantityBelowSold(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresTicketTypeRepository(pool)
	ctx := context.Background()

	tt := createTestTicketType(t, pool, 10, 8)

	tt.Quantity = 5
	err := repo.Update(ctx, tt)
	if !errors.Is(err, domain.ErrQuantityBelowSold) {
		t.Fatalf("Update() error = %v, want ErrQuantityBelowSold", err)
	}

	quantity, sold, err := repo.GetAvailability(ctx, tt.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if quantity != 10 || sold != 8 {
		t.Errorf("counters = (%d, %d), want (10, 8)", quantity, sold)
	}

	// Shrinking down to exactly sold is allowed
	tt.Quantity = 8
	if err := repo.Update(ctx, tt); err != nil {
		t.Fatalf("Update() to sold error = %v", err)
	}

	quantity, _, err = repo.GetAvailability(ctx, tt.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if quantity != 8 {
		t.Errorf("quantity = %d, want 8", quantity)
	}
}

func TestPostgresTicketTypeRepository_Update_NotFound(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresTicketTypeRepository(pool)

	tt := &domain.TicketType{
		ID:       uuid.New().String(),
		Name:     "Ghost",
		Price:    decimal.NewFromInt(1000),
		Currency: "XAF",
		Quantity: 10,
	}
	if err := repo.Update(context.Background(), tt); !errors.Is(err, domain.ErrTicketTypeNotFound) {
		t.Errorf("Update() error = %v, want ErrTicketTypeNotFound", err)
	}
}
