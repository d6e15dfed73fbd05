package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/service"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/middleware"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/response"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// ValidationHandler handles gate-side ticket validation requests
type ValidationHandler struct {
	validationService service.ValidationService
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(validationService service.ValidationService) *ValidationHandler {
	return &ValidationHandler{validationService: validationService}
}

// ValidateTicket handles POST /validations
func (h *ValidationHandler) ValidateTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.validation.validate_ticket")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	staffID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.ValidateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("reference", req.Reference),
		attribute.String("staff_id", staffID),
	)

	result, err := h.validationService.ValidateTicket(ctx, staffID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("purchase_id", result.PurchaseID))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ValidateByID handles POST /purchases/:id/validate
func (h *ValidationHandler) ValidateByID(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.validation.validate_by_id")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	staffID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	purchaseID := c.Param("id")
	if purchaseID == "" {
		span.SetStatus(codes.Error, "purchase id required")
		response.BadRequest(c, "purchase id required")
		return
	}

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("staff_id", staffID),
	)

	result, err := h.validationService.ValidateByID(ctx, purchaseID, staffID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
