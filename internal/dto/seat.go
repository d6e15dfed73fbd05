package dto

import (
	"time"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

// CreateSeatRequest represents a request to create a seat
type CreateSeatRequest struct {
	TripID string `json:"trip_id" binding:"required"`
	Number string `json:"number" binding:"required"`
}

// ReserveSeatRequest represents a request to place a hold on a seat
type ReserveSeatRequest struct {
	SeatID string `json:"seat_id" binding:"required"`
}

// BookSeatRequest represents a request to book a reserved seat
type BookSeatRequest struct {
	PurchaseID string `json:"purchase_id" binding:"required"`
}

// BlockSeatRequest represents an operator request to block a seat
type BlockSeatRequest struct {
	Reason       string     `json:"reason" binding:"required"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// SeatResponse represents a seat in API responses
type SeatResponse struct {
	ID           string     `json:"id"`
	TripID       string     `json:"trip_id"`
	Number       string     `json:"number"`
	Status       string     `json:"status"`
	CustomerID   string     `json:"customer_id,omitempty"`
	PurchaseID   string     `json:"purchase_id,omitempty"`
	HeldUntil    *time.Time `json:"held_until,omitempty"`
	BlockReason  string     `json:"block_reason,omitempty"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SeatFromDomain converts a domain Seat to SeatResponse
func SeatFromDomain(s *domain.Seat) *SeatResponse {
	return &SeatResponse{
		ID:           s.ID,
		TripID:       s.TripID,
		Number:       s.Number,
		Status:       string(s.Status),
		CustomerID:   s.CustomerID,
		PurchaseID:   s.PurchaseID,
		HeldUntil:    s.HeldUntil,
		BlockReason:  s.BlockReason,
		BlockedUntil: s.BlockedUntil,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
