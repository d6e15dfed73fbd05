package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/metrics"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/repository"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// SeatService defines seat lifecycle business logic
type SeatService interface {
	Create(ctx context.Context, req *dto.CreateSeatRequest) (*dto.SeatResponse, error)
	Get(ctx context.Context, id string) (*dto.SeatResponse, error)
	ListByTrip(ctx context.Context, tripID string) ([]*dto.SeatResponse, error)

	// Reserve places a time-boxed hold on an available seat
	Reserve(ctx context.Context, seatID, customerID string) (*dto.SeatResponse, error)

	// Book permanently assigns a reserved seat to a purchase. Requires an
	// unexpired hold; there is no available-to-booked shortcut.
	Book(ctx context.Context, seatID, purchaseID string) (*dto.SeatResponse, error)

	// Release frees a reserved or booked seat
	Release(ctx context.Context, seatID string) (*dto.SeatResponse, error)

	// Block takes a seat out of sale, optionally until a deadline
	Block(ctx context.Context, seatID string, req *dto.BlockSeatRequest) (*dto.SeatResponse, error)

	// Unblock returns a blocked seat to available
	Unblock(ctx context.Context, seatID string) (*dto.SeatResponse, error)

	// ReleaseExpiredHolds frees reserved seats whose hold lapsed
	ReleaseExpiredHolds(ctx context.Context, limit int) (int64, error)

	// UnblockExpired frees blocked seats whose block deadline passed
	UnblockExpired(ctx context.Context, limit int) (int64, error)
}

// seatService implements SeatService
type seatService struct {
	repo    repository.SeatRepository
	holdTTL time.Duration
}

// SeatServiceConfig contains configuration for the seat service
type SeatServiceConfig struct {
	HoldTTL time.Duration
}

// NewSeatService creates a new seat service
func NewSeatService(repo repository.SeatRepository, cfg *SeatServiceConfig) SeatService {
	ttl := 10 * time.Minute
	if cfg != nil && cfg.HoldTTL > 0 {
		ttl = cfg.HoldTTL
	}
	return &seatService{
		repo:    repo,
		holdTTL: ttl,
	}
}

// Create creates a new seat in available state
func (s *seatService) Create(ctx context.Context, req *dto.CreateSeatRequest) (*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.create")
	defer span.End()

	if req == nil || req.TripID == "" {
		span.SetStatus(codes.Error, "invalid trip_id")
		return nil, domain.ErrInvalidTripID
	}
	if req.Number == "" {
		span.SetStatus(codes.Error, "invalid seat number")
		return nil, domain.ErrInvalidSeatNumber
	}

	span.SetAttributes(
		attribute.String("trip_id", req.TripID),
		attribute.String("seat_number", req.Number),
	)

	now := time.Now()
	seat := &domain.Seat{
		ID:        uuid.New().String(),
		TripID:    req.TripID,
		Number:    req.Number,
		Status:    domain.SeatStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, seat); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("seat_id", seat.ID))
	span.SetStatus(codes.Ok, "")
	return dto.SeatFromDomain(seat), nil
}

// Get retrieves a seat by ID
func (s *seatService) Get(ctx context.Context, id string) (*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.get")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrSeatNotFound
	}

	seat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.SeatFromDomain(seat), nil
}

// ListByTrip retrieves all seats of a trip
func (s *seatService) ListByTrip(ctx context.Context, tripID string) ([]*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.list_by_trip")
	defer span.End()

	span.SetAttributes(attribute.String("trip_id", tripID))

	if tripID == "" {
		span.SetStatus(codes.Error, "invalid trip_id")
		return nil, domain.ErrInvalidTripID
	}

	seats, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.SeatResponse, len(seats))
	for i, seat := range seats {
		responses[i] = dto.SeatFromDomain(seat)
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// Reserve places a time-boxed hold on an available seat
func (s *seatService) Reserve(ctx context.Context, seatID, customerID string) (*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("customer_id", customerID),
	)

	if seatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrSeatNotFound
	}
	if customerID == "" {
		span.SetStatus(codes.Error, "invalid customer_id")
		return nil, domain.ErrInvalidCustomerID
	}

	heldUntil := time.Now().Add(s.holdTTL)
	seat, err := s.repo.Reserve(ctx, seatID, customerID, heldUntil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordSeatReservation(ctx, seat.TripID)

	span.SetStatus(codes.Ok, "")
	return dto.SeatFromDomain(seat), nil
}

// Book permanently assigns a reserved seat to a purchase
func (s *seatService) Book(ctx context.Context, seatID, purchaseID string) (*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.book")
	defer span.End()

	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("purchase_id", purchaseID),
	)

	if seatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrSeatNotFound
	}
	if purchaseID == "" {
		span.SetStatus(codes.Error, "invalid purchase_id")
		return nil, domain.ErrInvalidPurchaseID
	}

	seat, err := s.repo.Book(ctx, seatID, purchaseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordSeatBooking(ctx, seat.TripID)

	span.SetStatus(codes.Ok, "")
	return dto.SeatFromDomain(seat), nil
}

// Release frees a reserved or booked seat
func (s *seatService) Release(ctx context.Context, seatID string) (*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.release")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", seatID))

	if seatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrSeatNotFound
	}

	// Read before the transition to know whether a live hold was released
	before, err := s.repo.GetByID(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	seat, err := s.repo.Release(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordSeatRelease(ctx, seat.TripID, before.Status == domain.SeatStatusReserved)

	span.SetStatus(codes.Ok, "")
	return dto.SeatFromDomain(seat), nil
}

// Block takes a seat out of sale
func (s *seatService) Block(ctx context.Context, seatID string, req *dto.BlockSeatRequest) (*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.block")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", seatID))

	if seatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrSeatNotFound
	}
	if req == nil || req.Reason == "" {
		span.SetStatus(codes.Error, "missing reason")
		return nil, domain.ErrInvalidStatus
	}

	seat, err := s.repo.Block(ctx, seatID, req.Reason, req.BlockedUntil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.SeatFromDomain(seat), nil
}

// Unblock returns a blocked seat to available
func (s *seatService) Unblock(ctx context.Context, seatID string) (*dto.SeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.unblock")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", seatID))

	if seatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrSeatNotFound
	}

	seat, err := s.repo.Unblock(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.SeatFromDomain(seat), nil
}

// ReleaseExpiredHolds frees reserved seats whose hold lapsed
func (s *seatService) ReleaseExpiredHolds(ctx context.Context, limit int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.release_expired_holds")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	span.SetAttributes(attribute.Int("limit", limit))

	released, err := s.repo.ReleaseExpiredHolds(ctx, time.Now(), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	if released > 0 {
		metrics.RecordSeatHoldExpirations(ctx, released)
	}

	span.SetAttributes(attribute.Int64("released", released))
	span.SetStatus(codes.Ok, "")
	return released, nil
}

// UnblockExpired frees blocked seats whose block deadline passed
func (s *seatService) UnblockExpired(ctx context.Context, limit int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.unblock_expired")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	span.SetAttributes(attribute.Int("limit", limit))

	unblocked, err := s.repo.UnblockExpired(ctx, time.Now(), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("unblocked", unblocked))
	span.SetStatus(codes.Ok, "")
	return unblocked, nil
}
