package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/response"
)

// handleError maps domain errors to HTTP responses. Specific sentinels get
// their own code; the category classifiers catch the rest.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientInventory):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_INVENTORY", err.Error(), "")
	case errors.Is(err, domain.ErrMaxPerOrderExceeded):
		response.Error(c, http.StatusConflict, "MAX_PER_ORDER_EXCEEDED", err.Error(), "")
	case errors.Is(err, domain.ErrAlreadyUsed):
		response.Error(c, http.StatusConflict, "ALREADY_USED", err.Error(), "")
	case errors.Is(err, domain.ErrAlreadyRefunded):
		response.Error(c, http.StatusConflict, "ALREADY_REFUNDED", err.Error(), "")
	case errors.Is(err, domain.ErrSeatHoldExpired):
		response.Error(c, http.StatusGone, "SEAT_HOLD_EXPIRED", err.Error(), "")
	case errors.Is(err, domain.ErrSaleNotStarted):
		response.Error(c, http.StatusForbidden, "SALE_NOT_STARTED", err.Error(), "")
	case errors.Is(err, domain.ErrSaleClosed), errors.Is(err, domain.ErrTicketTypeInactive):
		response.Error(c, http.StatusGone, "SALE_CLOSED", err.Error(), "")
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsStateTransitionError(err):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error(), "")
	case domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error(), "")
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
