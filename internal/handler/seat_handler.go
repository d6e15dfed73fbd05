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

// SeatHandler handles seat HTTP requests
type SeatHandler struct {
	seatService service.SeatService
}

// NewSeatHandler creates a new seat handler
func NewSeatHandler(seatService service.SeatService) *SeatHandler {
	return &SeatHandler{seatService: seatService}
}

// Create handles POST /seats
func (h *SeatHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("trip_id", req.TripID),
		attribute.String("seat_number", req.Number),
	)

	result, err := h.seatService.Create(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("seat_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// ListByTrip handles GET /trips/:trip_id/seats
func (h *SeatHandler) ListByTrip(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.list_by_trip")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tripID := c.Param("trip_id")
	span.SetAttributes(attribute.String("trip_id", tripID))

	result, err := h.seatService.ListByTrip(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Reserve handles POST /seats/:id/reserve
func (h *SeatHandler) Reserve(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.reserve")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	customerID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	seatID := c.Param("id")
	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("customer_id", customerID),
	)

	result, err := h.seatService.Reserve(ctx, seatID, customerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Book handles POST /seats/:id/book
func (h *SeatHandler) Book(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	seatID := c.Param("id")
	span.SetAttributes(attribute.String("seat_id", seatID))

	var req dto.BookSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("purchase_id", req.PurchaseID))

	result, err := h.seatService.Book(ctx, seatID, req.PurchaseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Release handles POST /seats/:id/release
func (h *SeatHandler) Release(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.release")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	seatID := c.Param("id")
	span.SetAttributes(attribute.String("seat_id", seatID))

	result, err := h.seatService.Release(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Block handles POST /seats/:id/block
func (h *SeatHandler) Block(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.block")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	seatID := c.Param("id")
	span.SetAttributes(attribute.String("seat_id", seatID))

	var req dto.BlockSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.seatService.Block(ctx, seatID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Unblock handles POST /seats/:id/unblock
func (h *SeatHandler) Unblock(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.unblock")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	seatID := c.Param("id")
	span.SetAttributes(attribute.String("seat_id", seatID))

	result, err := h.seatService.Unblock(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Get handles GET /seats/:id
func (h *SeatHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.seat.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	seatID := c.Param("id")
	span.SetAttributes(attribute.String("seat_id", seatID))

	result, err := h.seatService.Get(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
