package worker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/kafka"
)

// MockOutboxRepository is a mock implementation of repository.OutboxRepository
type MockOutboxRepository struct {
	CreateFunc             func(ctx context.Context, msg *domain.OutboxMessage) error
	CreateTxFunc           func(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error
	GetPendingMessagesFunc func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	GetFailedMessagesFunc  func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkAsPublishedFunc    func(ctx context.Context, id string) error
	MarkAsFailedFunc       func(ctx context.Context, id string, errMsg string) error
	DeletePublishedFunc    func(ctx context.Context, retentionDays int) (int64, error)
}

func (m *MockOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, msg)
	}
	return nil
}

func (m *MockOutboxRepository) CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, msg)
	}
	return nil
}

func (m *MockOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	if m.GetPendingMessagesFunc != nil {
		return m.GetPendingMessagesFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockOutboxRepository) GetFailedMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	if m.GetFailedMessagesFunc != nil {
		return m.GetFailedMessagesFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockOutboxRepository) MarkAsPublished(ctx context.Context, id string) error {
	if m.MarkAsPublishedFunc != nil {
		return m.MarkAsPublishedFunc(ctx, id)
	}
	return nil
}

func (m *MockOutboxRepository) MarkAsFailed(ctx context.Context, id string, errMsg string) error {
	if m.MarkAsFailedFunc != nil {
		return m.MarkAsFailedFunc(ctx, id, errMsg)
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, retentionDays int) (int64, error) {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, retentionDays)
	}
	return 0, nil
}

// MockPublisher is a mock implementation of MessagePublisher
type MockPublisher struct {
	ProduceFunc func(ctx context.Context, msg *kafka.Message) error
	Produced    []*kafka.Message
}

func (m *MockPublisher) Produce(ctx context.Context, msg *kafka.Message) error {
	m.Produced = append(m.Produced, msg)
	if m.ProduceFunc != nil {
		return m.ProduceFunc(ctx, msg)
	}
	return nil
}

// MockPurchaseService is a mock implementation of service.PurchaseService
type MockPurchaseService struct {
	InitiateFunc               func(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error)
	ConfirmPaymentFunc         func(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error)
	CancelFunc                 func(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error)
	RefundFunc                 func(ctx context.Context, purchaseID, customerID, reason string) (*dto.PurchaseResponse, error)
	GetPurchaseFunc            func(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error)
	GetPurchaseByReferenceFunc func(ctx context.Context, reference, customerID string) (*dto.PurchaseResponse, error)
	ListCustomerPurchasesFunc  func(ctx context.Context, customerID string, page, pageSize int) (*dto.PaginatedResponse, error)
	ExpireStalePendingFunc     func(ctx context.Context, limit int) (int64, error)
}

func (m *MockPurchaseService) Initiate(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if m.InitiateFunc != nil {
		return m.InitiateFunc(ctx, customerID, req)
	}
	return nil, nil
}

func (m *MockPurchaseService) ConfirmPayment(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(ctx, purchaseID, customerID, req)
	}
	return nil, nil
}

func (m *MockPurchaseService) Cancel(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, purchaseID, customerID)
	}
	return nil, nil
}

func (m *MockPurchaseService) Refund(ctx context.Context, purchaseID, customerID, reason string) (*dto.PurchaseResponse, error) {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, purchaseID, customerID, reason)
	}
	return nil, nil
}

func (m *MockPurchaseService) GetPurchase(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error) {
	if m.GetPurchaseFunc != nil {
		return m.GetPurchaseFunc(ctx, purchaseID, customerID)
	}
	return nil, nil
}

func (m *MockPurchaseService) GetPurchaseByReference(ctx context.Context, reference, customerID string) (*dto.PurchaseResponse, error) {
	if m.GetPurchaseByReferenceFunc != nil {
		return m.GetPurchaseByReferenceFunc(ctx, reference, customerID)
	}
	return nil, nil
}

func (m *MockPurchaseService) ListCustomerPurchases(ctx context.Context, customerID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.ListCustomerPurchasesFunc != nil {
		return m.ListCustomerPurchasesFunc(ctx, customerID, page, pageSize)
	}
	return nil, nil
}

func (m *MockPurchaseService) ExpireStalePending(ctx context.Context, limit int) (int64, error) {
	if m.ExpireStalePendingFunc != nil {
		return m.ExpireStalePendingFunc(ctx, limit)
	}
	return 0, nil
}

// MockSeatService is a mock implementation of service.SeatService
type MockSeatService struct {
	CreateFunc              func(ctx context.Context, req *dto.CreateSeatRequest) (*dto.SeatResponse, error)
	GetFunc                 func(ctx context.Context, id string) (*dto.SeatResponse, error)
	ListByTripFunc          func(ctx context.Context, tripID string) ([]*dto.SeatResponse, error)
	ReserveFunc             func(ctx context.Context, seatID, customerID string) (*dto.SeatResponse, error)
	BookFunc                func(ctx context.Context, seatID, purchaseID string) (*dto.SeatResponse, error)
	ReleaseFunc             func(ctx context.Context, seatID string) (*dto.SeatResponse, error)
	BlockFunc               func(ctx context.Context, seatID string, req *dto.BlockSeatRequest) (*dto.SeatResponse, error)
	UnblockFunc             func(ctx context.Context, seatID string) (*dto.SeatResponse, error)
	ReleaseExpiredHoldsFunc func(ctx context.Context, limit int) (int64, error)
	UnblockExpiredFunc      func(ctx context.Context, limit int) (int64, error)
}

func (m *MockSeatService) Create(ctx context.Context, req *dto.CreateSeatRequest) (*dto.SeatResponse, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockSeatService) Get(ctx context.Context, id string) (*dto.SeatResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSeatService) ListByTrip(ctx context.Context, tripID string) ([]*dto.SeatResponse, error) {
	if m.ListByTripFunc != nil {
		return m.ListByTripFunc(ctx, tripID)
	}
	return nil, nil
}

func (m *MockSeatService) Reserve(ctx context.Context, seatID, customerID string) (*dto.SeatResponse, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, seatID, customerID)
	}
	return nil, nil
}

func (m *MockSeatService) Book(ctx context.Context, seatID, purchaseID string) (*dto.SeatResponse, error) {
	if m.BookFunc != nil {
		return m.BookFunc(ctx, seatID, purchaseID)
	}
	return nil, nil
}

func (m *MockSeatService) Release(ctx context.Context, seatID string) (*dto.SeatResponse, error) {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, seatID)
	}
	return nil, nil
}

func (m *MockSeatService) Block(ctx context.Context, seatID string, req *dto.BlockSeatRequest) (*dto.SeatResponse, error) {
	if m.BlockFunc != nil {
		return m.BlockFunc(ctx, seatID, req)
	}
	return nil, nil
}

func (m *MockSeatService) Unblock(ctx context.Context, seatID string) (*dto.SeatResponse, error) {
	if m.UnblockFunc != nil {
		return m.UnblockFunc(ctx, seatID)
	}
	return nil, nil
}

func (m *MockSeatService) ReleaseExpiredHolds(ctx context.Context, limit int) (int64, error) {
	if m.ReleaseExpiredHoldsFunc != nil {
		return m.ReleaseExpiredHoldsFunc(ctx, limit)
	}
	return 0, nil
}

func (m *MockSeatService) UnblockExpired(ctx context.Context, limit int) (int64, error) {
	if m.UnblockExpiredFunc != nil {
		return m.UnblockExpiredFunc(ctx, limit)
	}
	return 0, nil
}

func pendingMessage(id, eventType string) *domain.OutboxMessage {
	return &domain.OutboxMessage{
		ID:            id,
		AggregateType: "purchase",
		AggregateID:   "pur-001",
		EventType:     eventType,
		Payload:       []byte(`{"purchase_id":"pur-001"}`),
		Topic:         "marketplace.events",
		PartitionKey:  "pur-001",
		Status:        domain.OutboxStatusPending,
		MaxRetries:    5,
		CreatedAt:     time.Now(),
	}
}
