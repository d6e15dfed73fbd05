package domain

import (
	"strings"
	"time"
)

// SeatStatus represents the state of one trip seat
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusBooked    SeatStatus = "booked"
	SeatStatusBlocked   SeatStatus = "blocked"
)

// IsValid checks if the status is a valid SeatStatus
func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusBooked, SeatStatusBlocked:
		return true
	}
	return false
}

// String returns the string representation of SeatStatus
func (s SeatStatus) String() string {
	return string(s)
}

// Seat represents one physical seat on a trip. Transitions are enforced by
// guarded single-row updates in the repository; a seat is only ever booked
// from reserved, never directly from available.
type Seat struct {
	ID           string     `json:"id"`
	TripID       string     `json:"trip_id"`
	Number       string     `json:"number"`
	Status       SeatStatus `json:"status"`
	CustomerID   string     `json:"customer_id,omitempty"`
	PurchaseID   string     `json:"purchase_id,omitempty"`
	HeldUntil    *time.Time `json:"held_until,omitempty"`
	BlockReason  string     `json:"block_reason,omitempty"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Validate validates all seat fields
func (s *Seat) Validate() error {
	if strings.TrimSpace(s.TripID) == "" {
		return ErrInvalidTripID
	}
	if strings.TrimSpace(s.Number) == "" {
		return ErrInvalidSeatNumber
	}
	if !s.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// IsAvailable checks if the seat is available
func (s *Seat) IsAvailable() bool {
	return s.Status == SeatStatusAvailable
}

// IsReserved checks if the seat is reserved
func (s *Seat) IsReserved() bool {
	return s.Status == SeatStatusReserved
}

// IsBooked checks if the seat is booked
func (s *Seat) IsBooked() bool {
	return s.Status == SeatStatusBooked
}

// IsHoldExpired checks if a reserved seat's hold has lapsed at a given time
func (s *Seat) IsHoldExpired(at time.Time) bool {
	return s.Status == SeatStatusReserved && s.HeldUntil != nil && at.After(*s.HeldUntil)
}

// CanReserve checks if the seat can be reserved
func (s *Seat) CanReserve() bool {
	return s.Status == SeatStatusAvailable
}

// CanBook checks if the seat can be booked
func (s *Seat) CanBook() bool {
	return s.Status == SeatStatusReserved
}

// CanRelease checks if the seat can be released back to available
func (s *Seat) CanRelease() bool {
	return s.Status == SeatStatusReserved || s.Status == SeatStatusBooked
}

// Reserve places a time-boxed hold for a customer
func (s *Seat) Reserve(customerID string, heldUntil time.Time) error {
	if !s.CanReserve() {
		if s.Status == SeatStatusBlocked {
			return ErrSeatBlocked
		}
		return ErrSeatNotAvailable
	}
	s.Status = SeatStatusReserved
	s.CustomerID = customerID
	s.HeldUntil = &heldUntil
	s.UpdatedAt = time.Now()
	return nil
}

// Book converts a live reservation into a booking tied to a purchase
func (s *Seat) Book(purchaseID string) error {
	if !s.CanBook() {
		return ErrSeatNotReserved
	}
	if s.IsHoldExpired(time.Now()) {
		return ErrSeatHoldExpired
	}
	s.Status = SeatStatusBooked
	s.PurchaseID = purchaseID
	s.HeldUntil = nil
	s.UpdatedAt = time.Now()
	return nil
}

// Release returns a reserved or booked seat to available
func (s *Seat) Release() error {
	if !s.CanRelease() {
		return ErrSeatNotReleasable
	}
	s.Status = SeatStatusAvailable
	s.CustomerID = ""
	s.PurchaseID = ""
	s.HeldUntil = nil
	s.UpdatedAt = time.Now()
	return nil
}

// Block takes an available seat out of sale with a reason and optional deadline
func (s *Seat) Block(reason string, until *time.Time) error {
	if s.Status != SeatStatusAvailable {
		return ErrSeatNotAvailable
	}
	s.Status = SeatStatusBlocked
	s.BlockReason = reason
	s.BlockedUntil = until
	s.UpdatedAt = time.Now()
	return nil
}

// Unblock returns a blocked seat to available
func (s *Seat) Unblock() error {
	if s.Status != SeatStatusBlocked {
		return ErrSeatNotBlocked
	}
	s.Status = SeatStatusAvailable
	s.BlockReason = ""
	s.BlockedUntil = nil
	s.UpdatedAt = time.Now()
	return nil
}
