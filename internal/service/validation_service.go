package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/metrics"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/repository"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// ValidationService defines gate-side ticket redemption. Validation is
// deliberately not idempotent: the first scan wins, every later scan fails.
type ValidationService interface {
	// ValidateTicket redeems a confirmed purchase by its reference
	ValidateTicket(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error)

	// ValidateByID redeems a confirmed purchase by its ID
	ValidateByID(ctx context.Context, purchaseID, staffID string) (*dto.ValidationResponse, error)
}

// validationService implements ValidationService
type validationService struct {
	purchaseRepo repository.PurchaseRepository
}

// NewValidationService creates a new validation service
func NewValidationService(purchaseRepo repository.PurchaseRepository) ValidationService {
	return &validationService{purchaseRepo: purchaseRepo}
}

// ValidateTicket redeems a confirmed purchase by its reference
func (s *validationService) ValidateTicket(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.validate_ticket")
	defer span.End()

	if req == nil || req.Reference == "" {
		span.SetStatus(codes.Error, "invalid reference")
		return nil, domain.ErrInvalidReference
	}
	if staffID == "" {
		span.SetStatus(codes.Error, "invalid staff_id")
		return nil, domain.ErrInvalidCustomerID
	}

	span.SetAttributes(
		attribute.String("reference", req.Reference),
		attribute.String("staff_id", staffID),
	)

	purchase, err := s.purchaseRepo.ValidateByReference(ctx, req.Reference, staffID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordValidationDenied(ctx, denialReason(err))
		return nil, err
	}

	metrics.RecordValidation(ctx, purchase.EventID)

	span.AddEvent("ticket_validated", trace.WithAttributes(
		attribute.String("purchase_id", purchase.ID),
		attribute.String("staff_id", staffID),
	))
	span.SetStatus(codes.Ok, "")
	return dto.ValidationFromDomain(purchase), nil
}

// ValidateByID redeems a confirmed purchase by its ID
func (s *validationService) ValidateByID(ctx context.Context, purchaseID, staffID string) (*dto.ValidationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.validation.validate_by_id")
	defer span.End()

	if purchaseID == "" {
		span.SetStatus(codes.Error, "invalid purchase_id")
		return nil, domain.ErrInvalidPurchaseID
	}
	if staffID == "" {
		span.SetStatus(codes.Error, "invalid staff_id")
		return nil, domain.ErrInvalidCustomerID
	}

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("staff_id", staffID),
	)

	purchase, err := s.purchaseRepo.Validate(ctx, purchaseID, staffID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordValidationDenied(ctx, denialReason(err))
		return nil, err
	}

	metrics.RecordValidation(ctx, purchase.EventID)

	span.SetStatus(codes.Ok, "")
	return dto.ValidationFromDomain(purchase), nil
}

func denialReason(err error) string {
	switch err {
	case domain.ErrAlreadyUsed:
		return "already_used"
	case domain.ErrPurchaseCancelled:
		return "cancelled"
	case domain.ErrPurchaseNotConfirmed:
		return "not_confirmed"
	case domain.ErrPurchaseNotFound:
		return "not_found"
	default:
		return "error"
	}
}
