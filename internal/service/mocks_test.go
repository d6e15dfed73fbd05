package service

import (
	"context"
	"time"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

// MockPurchaseRepository is a mock implementation of PurchaseRepository
type MockPurchaseRepository struct {
	CreateFunc               func(ctx context.Context, p *domain.Purchase) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Purchase, error)
	GetByReferenceFunc       func(ctx context.Context, reference string) (*domain.Purchase, error)
	ListByCustomerFunc       func(ctx context.Context, customerID string, limit, offset int) ([]*domain.Purchase, int64, error)
	ConfirmPaymentFunc       func(ctx context.Context, id, paymentRef string) (*domain.Purchase, error)
	RecordPaymentFailureFunc func(ctx context.Context, id, paymentRef string) (*domain.Purchase, error)
	CancelFunc               func(ctx context.Context, id string) (*domain.Purchase, error)
	RefundFunc               func(ctx context.Context, id, reason string) (*domain.Purchase, error)
	ValidateFunc             func(ctx context.Context, id, staffID string) (*domain.Purchase, error)
	ValidateByReferenceFunc  func(ctx context.Context, reference, staffID string) (*domain.Purchase, error)
	SweepStalePendingFunc    func(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

func (m *MockPurchaseRepository) Create(ctx context.Context, p *domain.Purchase) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *MockPurchaseRepository) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) GetByReference(ctx context.Context, reference string) (*domain.Purchase, error) {
	if m.GetByReferenceFunc != nil {
		return m.GetByReferenceFunc(ctx, reference)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Purchase, int64, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, customerID, limit, offset)
	}
	return []*domain.Purchase{}, 0, nil
}

func (m *MockPurchaseRepository) ConfirmPayment(ctx context.Context, id, paymentRef string) (*domain.Purchase, error) {
	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(ctx, id, paymentRef)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) RecordPaymentFailure(ctx context.Context, id, paymentRef string) (*domain.Purchase, error) {
	if m.RecordPaymentFailureFunc != nil {
		return m.RecordPaymentFailureFunc(ctx, id, paymentRef)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) Cancel(ctx context.Context, id string) (*domain.Purchase, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) Refund(ctx context.Context, id, reason string) (*domain.Purchase, error) {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, id, reason)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) Validate(ctx context.Context, id, staffID string) (*domain.Purchase, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, id, staffID)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) ValidateByReference(ctx context.Context, reference, staffID string) (*domain.Purchase, error) {
	if m.ValidateByReferenceFunc != nil {
		return m.ValidateByReferenceFunc(ctx, reference, staffID)
	}
	return nil, domain.ErrPurchaseNotFound
}

func (m *MockPurchaseRepository) SweepStalePending(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	if m.SweepStalePendingFunc != nil {
		return m.SweepStalePendingFunc(ctx, cutoff, limit)
	}
	return 0, nil
}

// MockTicketTypeRepository is a mock implementation of TicketTypeRepository
type MockTicketTypeRepository struct {
	CreateFunc          func(ctx context.Context, tt *domain.TicketType) error
	UpdateFunc          func(ctx context.Context, tt *domain.TicketType) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.TicketType, error)
	ListByEventFunc     func(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	SoftDeleteFunc      func(ctx context.Context, id string) error
	GetAvailabilityFunc func(ctx context.Context, id string) (int, int, error)
}

func (m *MockTicketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tt)
	}
	return nil
}

func (m *MockTicketTypeRepository) Update(ctx context.Context, tt *domain.TicketType) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tt)
	}
	return nil
}

func (m *MockTicketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrTicketTypeNotFound
}

func (m *MockTicketTypeRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	if m.ListByEventFunc != nil {
		return m.ListByEventFunc(ctx, eventID)
	}
	return []*domain.TicketType{}, nil
}

func (m *MockTicketTypeRepository) SoftDelete(ctx context.Context, id string) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTicketTypeRepository) GetAvailability(ctx context.Context, id string) (int, int, error) {
	if m.GetAvailabilityFunc != nil {
		return m.GetAvailabilityFunc(ctx, id)
	}
	return 0, 0, domain.ErrTicketTypeNotFound
}

// MockSeatRepository is a mock implementation of SeatRepository
type MockSeatRepository struct {
	CreateFunc              func(ctx context.Context, seat *domain.Seat) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Seat, error)
	ListByTripFunc          func(ctx context.Context, tripID string) ([]*domain.Seat, error)
	ReserveFunc             func(ctx context.Context, id, customerID string, heldUntil time.Time) (*domain.Seat, error)
	BookFunc                func(ctx context.Context, id, purchaseID string) (*domain.Seat, error)
	ReleaseFunc             func(ctx context.Context, id string) (*domain.Seat, error)
	BlockFunc               func(ctx context.Context, id, reason string, until *time.Time) (*domain.Seat, error)
	UnblockFunc             func(ctx context.Context, id string) (*domain.Seat, error)
	ReleaseExpiredHoldsFunc func(ctx context.Context, now time.Time, limit int) (int64, error)
	UnblockExpiredFunc      func(ctx context.Context, now time.Time, limit int) (int64, error)
}

func (m *MockSeatRepository) Create(ctx context.Context, seat *domain.Seat) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, seat)
	}
	return nil
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id string) (*domain.Seat, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrSeatNotFound
}

func (m *MockSeatRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Seat, error) {
	if m.ListByTripFunc != nil {
		return m.ListByTripFunc(ctx, tripID)
	}
	return []*domain.Seat{}, nil
}

func (m *MockSeatRepository) Reserve(ctx context.Context, id, customerID string, heldUntil time.Time) (*domain.Seat, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, id, customerID, heldUntil)
	}
	return nil, domain.ErrSeatNotFound
}

func (m *MockSeatRepository) Book(ctx context.Context, id, purchaseID string) (*domain.Seat, error) {
	if m.BookFunc != nil {
		return m.BookFunc(ctx, id, purchaseID)
	}
	return nil, domain.ErrSeatNotFound
}

func (m *MockSeatRepository) Release(ctx context.Context, id string) (*domain.Seat, error) {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, id)
	}
	return nil, domain.ErrSeatNotFound
}

func (m *MockSeatRepository) Block(ctx context.Context, id, reason string, until *time.Time) (*domain.Seat, error) {
	if m.BlockFunc != nil {
		return m.BlockFunc(ctx, id, reason, until)
	}
	return nil, domain.ErrSeatNotFound
}

func (m *MockSeatRepository) Unblock(ctx context.Context, id string) (*domain.Seat, error) {
	if m.UnblockFunc != nil {
		return m.UnblockFunc(ctx, id)
	}
	return nil, domain.ErrSeatNotFound
}

func (m *MockSeatRepository) ReleaseExpiredHolds(ctx context.Context, now time.Time, limit int) (int64, error) {
	if m.ReleaseExpiredHoldsFunc != nil {
		return m.ReleaseExpiredHoldsFunc(ctx, now, limit)
	}
	return 0, nil
}

func (m *MockSeatRepository) UnblockExpired(ctx context.Context, now time.Time, limit int) (int64, error) {
	if m.UnblockExpiredFunc != nil {
		return m.UnblockExpiredFunc(ctx, now, limit)
	}
	return 0, nil
}
