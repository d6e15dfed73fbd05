package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

func newTestPurchaseRepo(pool *pgxpool.Pool) *TransactionalPurchaseRepository {
	return NewTransactionalPurchaseRepository(
		pool,
		NewPostgresInventoryGuard(),
		NewPostgresOutboxRepository(pool),
		"marketplace.events.test",
	)
}

// createTestPurchase inserts a pending purchase against the given ticket type.
// Cleanup rides on the ticket type's cleanup.
func createTestPurchase(t *testing.T, repo *TransactionalPurchaseRepository, tt *domain.TicketType, quantity int) *domain.Purchase {
	t.Helper()

	now := time.Now()
	id := uuid.New().String()
	p := &domain.Purchase{
		ID:            id,
		Reference:     fmt.Sprintf("PUR-%s", id[:8]),
		CustomerID:    uuid.New().String(),
		EventID:       tt.EventID,
		TicketTypeID:  tt.ID,
		Quantity:      quantity,
		UnitPrice:     tt.Price,
		TotalAmount:   tt.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Currency:      tt.Currency,
		Status:        domain.PurchaseStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Failed to create purchase: %v", err)
	}
	return p
}

// Two confirms racing for the last unit: exactly one wins, the loser stays
// pending, and the sold counter moves by exactly one purchase's quantity.
func TestTransactionalPurchaseRepository_ConfirmPayment_Concurrent(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := newTestPurchaseRepo(pool)
	ttRepo := NewPostgresTicketTypeRepository(pool)

	tt := createTestTicketType(t, pool, 1, 0)
	first := createTestPurchase(t, repo, tt, 1)
	second := createTestPurchase(t, repo, tt, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, p := range []*domain.Purchase{first, second} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, results[i] = repo.ConfirmPayment(ctx, id, fmt.Sprintf("pay-%d", i))
		}(i, p.ID)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrInsufficientInventory):
			losses++
		default:
			t.Fatalf("ConfirmPayment() unexpected error = %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins = %d, losses = %d, want exactly one of each", wins, losses)
	}

	quantity, sold, err := ttRepo.GetAvailability(ctx, tt.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if sold != 1 || quantity != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", quantity, sold)
	}

	// The loser is still pending and can retry once capacity frees up
	var pending int
	for _, p := range []*domain.Purchase{first, second} {
		got, err := repo.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Status == domain.PurchaseStatusPending {
			pending++
		}
	}
	if pending != 1 {
		t.Errorf("pending purchases = %d, want 1", pending)
	}
}

// Redemption is never idempotent: the second scan of the same ticket fails
// and the row keeps the first scan's staff and timestamp.
func TestTransactionalPurchaseRepository_Validate_Twice(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := newTestPurchaseRepo(pool)

	tt := createTestTicketType(t, pool, 10, 0)
	p := createTestPurchase(t, repo, tt, 2)

	if _, err := repo.ConfirmPayment(ctx, p.ID, "pay-001"); err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}

	staffID := uuid.New().String()
	validated, err := repo.Validate(ctx, p.ID, staffID)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if validated.Status != domain.PurchaseStatusUsed {
		t.Errorf("Validate() status = %s, want used", validated.Status)
	}
	if validated.UsedAt == nil {
		t.Error("Validate() used_at not set")
	}

	if _, err := repo.Validate(ctx, p.ID, uuid.New().String()); !errors.Is(err, domain.ErrAlreadyUsed) {
		t.Fatalf("second Validate() error = %v, want ErrAlreadyUsed", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ValidatedBy != staffID {
		t.Errorf("validated_by = %s, want first scanner %s", got.ValidatedBy, staffID)
	}
}

// A failed gateway result records payment_status without moving the purchase
// or the sold counter; confirming afterwards still works.
func TestTransactionalPurchaseRepository_RecordPaymentFailure(t *testing.T) {
	skipIfNoIntegration(t)
	pool := getPostgresPool(t)
	defer pool.Close()

	ctx := context.Background()
	repo := newTestPurchaseRepo(pool)
	ttRepo := NewPostgresTicketTypeRepository(pool)

	tt := createTestTicketType(t, pool, 10, 0)
	p := createTestPurchase(t, repo, tt, 1)

	failed, err := repo.RecordPaymentFailure(ctx, p.ID, "pay-failed-001")
	if err != nil {
		t.Fatalf("RecordPaymentFailure() error = %v", err)
	}
	if failed.Status != domain.PurchaseStatusPending {
		t.Errorf("status = %s, want pending", failed.Status)
	}
	if failed.PaymentStatus != domain.PaymentStatusFailed {
		t.Errorf("payment_status = %s, want failed", failed.PaymentStatus)
	}

	_, sold, err := ttRepo.GetAvailability(ctx, tt.ID)
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if sold != 0 {
		t.Errorf("sold = %d, want 0 after failed payment", sold)
	}

	confirmed, err := repo.ConfirmPayment(ctx, p.ID, "pay-retry-001")
	if err != nil {
		t.Fatalf("ConfirmPayment() after failure error = %v", err)
	}
	if confirmed.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("payment_status after retry = %s, want paid", confirmed.PaymentStatus)
	}
}
