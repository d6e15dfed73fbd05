package domain

import "errors"

// Domain errors
var (
	// Not found errors
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrSeatNotFound       = errors.New("seat not found")
	ErrEventNotFound      = errors.New("event not found")

	// Inventory errors
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrSaleClosed            = errors.New("ticket sales are closed")
	ErrSaleNotStarted        = errors.New("ticket sales have not started")
	ErrTicketTypeInactive    = errors.New("ticket type is not active")
	ErrMaxPerOrderExceeded   = errors.New("maximum tickets per order exceeded")
	ErrQuantityBelowSold     = errors.New("quantity cannot be reduced below units sold")

	// Purchase state errors
	ErrPurchaseNotPending   = errors.New("purchase is not pending")
	ErrPurchaseNotConfirmed = errors.New("purchase is not confirmed")
	ErrPurchaseCancelled    = errors.New("purchase is cancelled")
	ErrAlreadyUsed          = errors.New("purchase has already been validated")
	ErrAlreadyRefunded      = errors.New("purchase has already been refunded")
	ErrNotRefundable        = errors.New("purchase is not refundable")
	ErrNotCancellable       = errors.New("purchase cannot be cancelled")
	ErrPaymentFailed        = errors.New("payment failed")

	// Seat state errors
	ErrSeatNotAvailable  = errors.New("seat is not available")
	ErrSeatNotReserved   = errors.New("seat is not reserved")
	ErrSeatNotReleasable = errors.New("seat is neither reserved nor booked")
	ErrSeatBlocked       = errors.New("seat is blocked")
	ErrSeatNotBlocked    = errors.New("seat is not blocked")
	ErrSeatHoldExpired   = errors.New("seat hold has expired")

	// Validation errors
	ErrInvalidPurchaseID   = errors.New("invalid purchase id")
	ErrInvalidTicketTypeID = errors.New("invalid ticket type id")
	ErrInvalidCustomerID   = errors.New("invalid customer id")
	ErrInvalidEventID      = errors.New("invalid event id")
	ErrInvalidTripID       = errors.New("invalid trip id")
	ErrInvalidSeatNumber   = errors.New("invalid seat number")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidPrice        = errors.New("price cannot be negative")
	ErrInvalidReference    = errors.New("invalid purchase reference")
	ErrInvalidStatus       = errors.New("invalid status")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTicketTypeNotFound) ||
		errors.Is(err, ErrPurchaseNotFound) ||
		errors.Is(err, ErrSeatNotFound) ||
		errors.Is(err, ErrEventNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPurchaseID) ||
		errors.Is(err, ErrInvalidTicketTypeID) ||
		errors.Is(err, ErrInvalidCustomerID) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidTripID) ||
		errors.Is(err, ErrInvalidSeatNumber) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInsufficientInventory) ||
		errors.Is(err, ErrMaxPerOrderExceeded) ||
		errors.Is(err, ErrQuantityBelowSold) ||
		errors.Is(err, ErrAlreadyUsed) ||
		errors.Is(err, ErrAlreadyRefunded) ||
		errors.Is(err, ErrSeatNotAvailable) ||
		errors.Is(err, ErrSeatNotReserved) ||
		errors.Is(err, ErrSeatNotReleasable) ||
		errors.Is(err, ErrSeatBlocked) ||
		errors.Is(err, ErrSeatNotBlocked) ||
		errors.Is(err, ErrSeatHoldExpired)
}

// IsStateTransitionError checks if the error is an invalid state transition
func IsStateTransitionError(err error) bool {
	return errors.Is(err, ErrPurchaseNotPending) ||
		errors.Is(err, ErrPurchaseNotConfirmed) ||
		errors.Is(err, ErrPurchaseCancelled) ||
		errors.Is(err, ErrNotRefundable) ||
		errors.Is(err, ErrNotCancellable) ||
		errors.Is(err, ErrSeatNotAvailable) ||
		errors.Is(err, ErrSeatNotReserved) ||
		errors.Is(err, ErrSeatNotReleasable)
}

// IsSaleWindowError checks if the error relates to a closed or not-yet-open sale
func IsSaleWindowError(err error) bool {
	return errors.Is(err, ErrSaleClosed) ||
		errors.Is(err, ErrSaleNotStarted) ||
		errors.Is(err, ErrTicketTypeInactive)
}
