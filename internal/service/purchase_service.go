package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/metrics"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/repository"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/logger"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// PurchaseService defines the purchase workflow business logic
type PurchaseService interface {
	// Initiate creates a pending purchase. No inventory is committed here;
	// capacity is only checked as a courtesy snapshot.
	Initiate(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error)

	// ConfirmPayment commits inventory and flips the purchase to confirmed
	ConfirmPayment(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error)

	// Cancel cancels a pending or confirmed purchase
	Cancel(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error)

	// Refund refunds a confirmed or used purchase
	Refund(ctx context.Context, purchaseID, customerID, reason string) (*dto.PurchaseResponse, error)

	// GetPurchase retrieves a purchase by ID, scoped to its owner
	GetPurchase(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error)

	// GetPurchaseByReference retrieves a purchase by its reference
	GetPurchaseByReference(ctx context.Context, reference, customerID string) (*dto.PurchaseResponse, error)

	// ListCustomerPurchases retrieves a customer's purchases, newest first
	ListCustomerPurchases(ctx context.Context, customerID string, page, pageSize int) (*dto.PaginatedResponse, error)

	// ExpireStalePending cancels pending purchases older than the pending TTL
	ExpireStalePending(ctx context.Context, limit int) (int64, error)
}

// purchaseService implements PurchaseService
type purchaseService struct {
	purchaseRepo   repository.PurchaseRepository
	ticketTypeRepo repository.TicketTypeRepository
	seatRepo       repository.SeatRepository
	pendingTTL     time.Duration
}

// PurchaseServiceConfig contains configuration for the purchase service
type PurchaseServiceConfig struct {
	PendingTTL time.Duration
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	seatRepo repository.SeatRepository,
	cfg *PurchaseServiceConfig,
) PurchaseService {
	ttl := 30 * time.Minute
	if cfg != nil && cfg.PendingTTL > 0 {
		ttl = cfg.PendingTTL
	}
	return &purchaseService{
		purchaseRepo:   purchaseRepo,
		ticketTypeRepo: ticketTypeRepo,
		seatRepo:       seatRepo,
		pendingTTL:     ttl,
	}
}

// Initiate creates a pending purchase
func (s *purchaseService) Initiate(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.initiate")
	defer span.End()

	if req == nil || req.Quantity <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, domain.ErrInvalidQuantity
	}
	if customerID == "" {
		span.SetStatus(codes.Error, "invalid customer_id")
		return nil, domain.ErrInvalidCustomerID
	}
	if req.TicketTypeID == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return nil, domain.ErrInvalidTicketTypeID
	}

	span.SetAttributes(
		attribute.String("customer_id", customerID),
		attribute.String("ticket_type_id", req.TicketTypeID),
		attribute.Int("quantity", req.Quantity),
	)

	tt, err := s.ticketTypeRepo.GetByID(ctx, req.TicketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	if err := tt.IsOnSaleAt(now); err != nil {
		span.SetStatus(codes.Error, "not on sale")
		metrics.RecordFailure(ctx, tt.ID, "not_on_sale")
		return nil, err
	}
	if err := tt.CheckOrderQuantity(req.Quantity); err != nil {
		span.SetStatus(codes.Error, "quantity limit")
		metrics.RecordFailure(ctx, tt.ID, "max_per_order")
		return nil, err
	}

	// Courtesy check only. The authoritative capacity guard runs inside the
	// confirmation transaction; this just fails fast on obvious sell-outs.
	if tt.Available() < req.Quantity {
		span.SetStatus(codes.Error, "insufficient inventory")
		metrics.RecordFailure(ctx, tt.ID, "insufficient_inventory")
		return nil, domain.ErrInsufficientInventory
	}

	purchase := &domain.Purchase{
		ID:            uuid.New().String(),
		Reference:     newPurchaseReference(),
		CustomerID:    customerID,
		EventID:       tt.EventID,
		TicketTypeID:  tt.ID,
		Quantity:      req.Quantity,
		UnitPrice:     tt.Price,
		TotalAmount:   tt.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Currency:      tt.Currency,
		AttendeeName:  req.AttendeeName,
		AttendeeEmail: req.AttendeeEmail,
		Status:        domain.PurchaseStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	qr, err := encodeQRCode(purchase.Reference)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	purchase.QRCode = qr

	if err := purchase.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := dto.PurchaseFromDomain(purchase)

	// Optional seat hold: bind the seat to this customer while payment runs.
	// The purchase already exists at this point, so a lost hold does not fail
	// the call; the caller sees the outcome in seat_held.
	if req.SeatID != "" {
		held := true
		if _, err := s.seatRepo.Reserve(ctx, req.SeatID, customerID, now.Add(s.pendingTTL)); err != nil {
			held = false
			logger.Get().Warn(fmt.Sprintf("Seat hold failed for purchase %s, seat %s: %v", purchase.ID, req.SeatID, err))
			span.RecordError(err)
			span.AddEvent("seat_hold_failed", trace.WithAttributes(
				attribute.String("seat_id", req.SeatID),
			))
		}
		resp.SeatHeld = &held
	}

	metrics.RecordInitiation(ctx, purchase.EventID, purchase.TicketTypeID, purchase.Quantity)

	span.AddEvent("purchase_initiated", trace.WithAttributes(
		attribute.String("purchase_id", purchase.ID),
		attribute.String("reference", purchase.Reference),
	))
	span.SetAttributes(attribute.String("purchase_id", purchase.ID))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// ConfirmPayment commits inventory and confirms the purchase
func (s *purchaseService) ConfirmPayment(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.confirm_payment")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("customer_id", customerID),
	)

	if purchaseID == "" {
		span.SetStatus(codes.Error, "invalid purchase_id")
		return nil, domain.ErrInvalidPurchaseID
	}
	if req == nil || req.PaymentRef == "" {
		span.SetStatus(codes.Error, "invalid payment reference")
		return nil, domain.ErrInvalidReference
	}
	status := domain.PaymentStatus(req.PaymentStatus)
	if status != domain.PaymentStatusPaid && status != domain.PaymentStatusFailed {
		span.SetStatus(codes.Error, "invalid payment status")
		return nil, domain.ErrInvalidStatus
	}

	if err := s.checkOwnership(ctx, purchaseID, customerID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// A failed gateway result is recorded but commits nothing: the purchase
	// stays pending and the customer can retry payment.
	if status == domain.PaymentStatusFailed {
		purchase, err := s.purchaseRepo.RecordPaymentFailure(ctx, purchaseID, req.PaymentRef)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		metrics.RecordFailure(ctx, purchase.EventID, "payment_failed")
		span.AddEvent("payment_failed", trace.WithAttributes(
			attribute.String("purchase_id", purchase.ID),
			attribute.String("payment_ref", req.PaymentRef),
		))
		span.SetStatus(codes.Ok, "")
		return dto.PurchaseFromDomain(purchase), nil
	}

	purchase, err := s.purchaseRepo.ConfirmPayment(ctx, purchaseID, req.PaymentRef)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if err == domain.ErrInsufficientInventory {
			metrics.RecordFailure(ctx, "", "confirm_capacity_lost")
		}
		return nil, err
	}

	pendingSeconds := time.Since(purchase.CreatedAt).Seconds()
	metrics.RecordConfirmation(ctx, purchase.EventID, pendingSeconds)

	span.AddEvent("purchase_confirmed", trace.WithAttributes(
		attribute.String("purchase_id", purchase.ID),
		attribute.String("payment_ref", req.PaymentRef),
		attribute.Float64("pending_seconds", pendingSeconds),
	))
	span.SetStatus(codes.Ok, "")
	return dto.PurchaseFromDomain(purchase), nil
}

// Cancel cancels a pending or confirmed purchase
func (s *purchaseService) Cancel(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("customer_id", customerID),
	)

	if purchaseID == "" {
		span.SetStatus(codes.Error, "invalid purchase_id")
		return nil, domain.ErrInvalidPurchaseID
	}

	if err := s.checkOwnership(ctx, purchaseID, customerID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	purchase, err := s.purchaseRepo.Cancel(ctx, purchaseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordCancellation(ctx, purchase.EventID, purchase.ConfirmedAt != nil)

	span.SetStatus(codes.Ok, "")
	return dto.PurchaseFromDomain(purchase), nil
}

// Refund refunds a confirmed or used purchase. Inventory stays committed.
func (s *purchaseService) Refund(ctx context.Context, purchaseID, customerID, reason string) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.refund")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("customer_id", customerID),
	)

	if purchaseID == "" {
		span.SetStatus(codes.Error, "invalid purchase_id")
		return nil, domain.ErrInvalidPurchaseID
	}

	if err := s.checkOwnership(ctx, purchaseID, customerID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	purchase, err := s.purchaseRepo.Refund(ctx, purchaseID, reason)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordRefund(ctx, purchase.EventID)

	span.SetStatus(codes.Ok, "")
	return dto.PurchaseFromDomain(purchase), nil
}

// GetPurchase retrieves a purchase by ID
func (s *purchaseService) GetPurchase(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.get")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("customer_id", customerID),
	)

	if purchaseID == "" {
		span.SetStatus(codes.Error, "invalid purchase_id")
		return nil, domain.ErrInvalidPurchaseID
	}

	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !purchase.BelongsToCustomer(customerID) {
		span.SetStatus(codes.Error, "wrong customer")
		return nil, domain.ErrPurchaseNotFound
	}

	span.SetStatus(codes.Ok, "")
	return dto.PurchaseFromDomain(purchase), nil
}

// GetPurchaseByReference retrieves a purchase by its reference
func (s *purchaseService) GetPurchaseByReference(ctx context.Context, reference, customerID string) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.get_by_reference")
	defer span.End()

	span.SetAttributes(attribute.String("reference", reference))

	if reference == "" {
		span.SetStatus(codes.Error, "invalid reference")
		return nil, domain.ErrInvalidReference
	}

	purchase, err := s.purchaseRepo.GetByReference(ctx, reference)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !purchase.BelongsToCustomer(customerID) {
		span.SetStatus(codes.Error, "wrong customer")
		return nil, domain.ErrPurchaseNotFound
	}

	span.SetStatus(codes.Ok, "")
	return dto.PurchaseFromDomain(purchase), nil
}

// ListCustomerPurchases retrieves a page of the customer's purchases
func (s *purchaseService) ListCustomerPurchases(ctx context.Context, customerID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.list_customer")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer_id", customerID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	if customerID == "" {
		span.SetStatus(codes.Error, "invalid customer_id")
		return nil, domain.ErrInvalidCustomerID
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	purchases, total, err := s.purchaseRepo.ListByCustomer(ctx, customerID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.PurchaseResponse, len(purchases))
	for i, p := range purchases {
		responses[i] = dto.PurchaseFromDomain(p)
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{
		Data:     responses,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// ExpireStalePending cancels pending purchases older than the pending TTL
func (s *purchaseService) ExpireStalePending(ctx context.Context, limit int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.expire_stale_pending")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	span.SetAttributes(attribute.Int("limit", limit))

	cutoff := time.Now().Add(-s.pendingTTL)
	expired, err := s.purchaseRepo.SweepStalePending(ctx, cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	if expired > 0 {
		metrics.RecordExpiration(ctx, expired)
	}

	span.SetAttributes(attribute.Int64("expired", expired))
	span.SetStatus(codes.Ok, "")
	return expired, nil
}

// checkOwnership loads the purchase and verifies the caller owns it. A wrong
// owner gets not-found rather than forbidden to avoid leaking references.
func (s *purchaseService) checkOwnership(ctx context.Context, purchaseID, customerID string) error {
	if customerID == "" {
		return domain.ErrInvalidCustomerID
	}
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return err
	}
	if !purchase.BelongsToCustomer(customerID) {
		return domain.ErrPurchaseNotFound
	}
	return nil
}

// newPurchaseReference generates a short human-readable purchase reference
func newPurchaseReference() string {
	id := uuid.New().String()
	return fmt.Sprintf("PUR-%s", id[:8])
}

// encodeQRCode renders the reference as a base64-encoded PNG
func encodeQRCode(reference string) (string, error) {
	png, err := qrcode.Encode(reference, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
