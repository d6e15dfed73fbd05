package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

// The guarded increment must stop exactly at capacity: with 2 units left a
// commit of 3 fails and changes nothing, a commit of 2 fills the type.
func TestPostgresInventoryGuard_CommitSold_Boundary(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	guard := NewPostgresInventoryGuard()
	ttRepo := NewPostgresTicketTypeRepository(pool)

	tt := createTestTicketType(t, pool, 10, 8)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := guard.LockTicketType(ctx, tx, tt.ID); err != nil {
		_ = tx.Rollback(ctx)
		t.Fatalf("LockTicketType() error = %v", err)
	}
	err = guard.CommitSold(ctx, tx, tt.ID, 3)
	_ = tx.Rollback(ctx)
	if !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("CommitSold(3) error = %v, want ErrInsufficientInventory", err)
	}

	_, sold, err := ttRepo.GetAvailability(ctx, tt.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if sold != 8 {
		t.Errorf("sold after failed commit = %d, want 8", sold)
	}

	tx, err = pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := guard.CommitSold(ctx, tx, tt.ID, 2); err != nil {
		_ = tx.Rollback(ctx)
		t.Fatalf("CommitSold(2) error = %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	quantity, sold, err := ttRepo.GetAvailability(ctx, tt.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if sold != quantity {
		t.Errorf("sold = %d, want %d (sold out)", sold, quantity)
	}
}

// ReleaseSold never drives the counter negative
func TestPostgresInventoryGuard_ReleaseSold_Floor(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	guard := NewPostgresInventoryGuard()
	ttRepo := NewPostgresTicketTypeRepository(pool)

	tt := createTestTicketType(t, pool, 10, 1)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	err = guard.ReleaseSold(ctx, tx, tt.ID, 5)
	_ = tx.Rollback(ctx)
	if !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("ReleaseSold(5) with sold=1 error = %v, want ErrInsufficientInventory", err)
	}

	_, sold, err := ttRepo.GetAvailability(ctx, tt.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if sold != 1 {
		t.Errorf("sold = %d, want 1", sold)
	}
}
