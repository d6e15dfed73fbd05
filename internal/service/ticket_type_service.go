package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/repository"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// TicketTypeService defines ticket-type catalog business logic
type TicketTypeService interface {
	Create(ctx context.Context, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTicketTypeRequest) (*dto.TicketTypeResponse, error)
	Get(ctx context.Context, id string) (*dto.TicketTypeResponse, error)
	ListByEvent(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error)
	Delete(ctx context.Context, id string) error

	// GetAvailability returns an availability snapshot. Concurrent requests
	// for the same ticket type are collapsed into one database read.
	GetAvailability(ctx context.Context, id string) (*dto.AvailabilityResponse, error)
}

// ticketTypeService implements TicketTypeService
type ticketTypeService struct {
	repo            repository.TicketTypeRepository
	availability    singleflight.Group
	defaultCurrency string
}

// NewTicketTypeService creates a new ticket type service
func NewTicketTypeService(repo repository.TicketTypeRepository, defaultCurrency string) TicketTypeService {
	if defaultCurrency == "" {
		defaultCurrency = "XAF"
	}
	return &ticketTypeService{
		repo:            repo,
		defaultCurrency: defaultCurrency,
	}
}

// Create creates a new ticket type
func (s *ticketTypeService) Create(ctx context.Context, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.create")
	defer span.End()

	if req == nil || req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if req.Quantity <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, domain.ErrInvalidQuantity
	}

	span.SetAttributes(attribute.String("event_id", req.EventID))

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	tt := &domain.TicketType{
		ID:          uuid.New().String(),
		EventID:     req.EventID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    currency,
		Quantity:    req.Quantity,
		Sold:        0,
		MaxPerOrder: req.MaxPerOrder,
		SaleStartAt: req.SaleStartAt,
		SaleEndAt:   req.SaleEndAt,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := tt.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.repo.Create(ctx, tt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("ticket_type_id", tt.ID))
	span.SetStatus(codes.Ok, "")
	return dto.TicketTypeFromDomain(tt), nil
}

// Update updates catalog fields of a ticket type. The sold counter is never
// touched here. Shrinking quantity below sold is rejected twice: the read
// below fails fast, and the repository's guarded UPDATE rejects it against
// the stored counter in case sold moved in between.
func (s *ticketTypeService) Update(ctx context.Context, id string, req *dto.UpdateTicketTypeRequest) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.update")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return nil, domain.ErrInvalidTicketTypeID
	}
	if req == nil {
		span.SetStatus(codes.Error, "empty request")
		return nil, domain.ErrInvalidTicketTypeID
	}

	tt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Name != nil {
		tt.Name = *req.Name
	}
	if req.Description != nil {
		tt.Description = *req.Description
	}
	if req.Price != nil {
		tt.Price = *req.Price
	}
	if req.Currency != nil {
		tt.Currency = *req.Currency
	}
	if req.Quantity != nil {
		if *req.Quantity < tt.Sold {
			span.SetStatus(codes.Error, "quantity below sold")
			return nil, domain.ErrQuantityBelowSold
		}
		tt.Quantity = *req.Quantity
	}
	if req.MaxPerOrder != nil {
		tt.MaxPerOrder = *req.MaxPerOrder
	}
	if req.SaleStartAt != nil {
		tt.SaleStartAt = req.SaleStartAt
	}
	if req.SaleEndAt != nil {
		tt.SaleEndAt = req.SaleEndAt
	}
	if req.Active != nil {
		tt.Active = *req.Active
	}

	if err := tt.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.repo.Update(ctx, tt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tt.UpdatedAt = time.Now()

	span.SetStatus(codes.Ok, "")
	return dto.TicketTypeFromDomain(tt), nil
}

// Get retrieves a ticket type by ID
func (s *ticketTypeService) Get(ctx context.Context, id string) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.get")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return nil, domain.ErrInvalidTicketTypeID
	}

	tt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.TicketTypeFromDomain(tt), nil
}

// ListByEvent retrieves all ticket types of an event
func (s *ticketTypeService) ListByEvent(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	ticketTypes, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.TicketTypeResponse, len(ticketTypes))
	for i, tt := range ticketTypes {
		responses[i] = dto.TicketTypeFromDomain(tt)
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// Delete soft-deletes a ticket type
func (s *ticketTypeService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.delete")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return domain.ErrInvalidTicketTypeID
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetAvailability returns an availability snapshot, deduplicating concurrent
// reads of the same ticket type through singleflight
func (s *ticketTypeService) GetAvailability(ctx context.Context, id string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.get_availability")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return nil, domain.ErrInvalidTicketTypeID
	}

	v, err, shared := s.availability.Do(fmt.Sprintf("availability:%s", id), func() (interface{}, error) {
		quantity, sold, err := s.repo.GetAvailability(ctx, id)
		if err != nil {
			return nil, err
		}
		return &dto.AvailabilityResponse{
			TicketTypeID: id,
			Quantity:     quantity,
			Sold:         sold,
			Available:    quantity - sold,
			SoldOut:      sold >= quantity,
		}, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Bool("shared", shared))
	span.SetStatus(codes.Ok, "")
	return v.(*dto.AvailabilityResponse), nil
}
