package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/service"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/middleware"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/response"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

// PurchaseHandler handles purchase HTTP requests
type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// Initiate handles POST /purchases
func (h *PurchaseHandler) Initiate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.initiate")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	customerID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.InitiatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("customer_id", customerID),
		attribute.String("ticket_type_id", req.TicketTypeID),
		attribute.Int("quantity", req.Quantity),
	)

	result, err := h.purchaseService.Initiate(ctx, customerID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("purchase_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// ConfirmPayment handles POST /purchases/:id/confirm
func (h *PurchaseHandler) ConfirmPayment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.confirm_payment")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	customerID, ok := middleware.GetUserID(c)
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

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("customer_id", customerID),
	)

	result, err := h.purchaseService.ConfirmPayment(ctx, purchaseID, customerID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Cancel handles POST /purchases/:id/cancel
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	customerID, ok := middleware.GetUserID(c)
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
		attribute.String("customer_id", customerID),
	)

	result, err := h.purchaseService.Cancel(ctx, purchaseID, customerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Refund handles POST /purchases/:id/refund
func (h *PurchaseHandler) Refund(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.refund")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	customerID, ok := middleware.GetUserID(c)
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

	// Reason is optional, an empty body is fine
	var req dto.RefundPurchaseRequest
	_ = c.ShouldBindJSON(&req)

	span.SetAttributes(
		attribute.String("purchase_id", purchaseID),
		attribute.String("customer_id", customerID),
	)

	result, err := h.purchaseService.Refund(ctx, purchaseID, customerID, req.Reason)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	customerID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	purchaseID := c.Param("id")
	span.SetAttributes(attribute.String("purchase_id", purchaseID))

	result, err := h.purchaseService.GetPurchase(ctx, purchaseID, customerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	customerID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	span.SetAttributes(
		attribute.String("customer_id", customerID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	result, err := h.purchaseService.ListCustomerPurchases(ctx, customerID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.SuccessWithMeta(c, result.Data, response.Pagination{
		Page:     result.Page,
		PageSize: result.PageSize,
		Total:    result.Total,
	})
}
