package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies a marketplace lifecycle event
type EventType string

const (
	EventPurchaseCreated   EventType = "purchase.created"
	EventPurchaseConfirmed EventType = "purchase.confirmed"
	EventPurchaseCancelled EventType = "purchase.cancelled"
	EventPurchaseRefunded  EventType = "purchase.refunded"
	EventPurchaseValidated EventType = "purchase.validated"
	EventSeatBooked        EventType = "seat.booked"
	EventSeatReleased      EventType = "seat.released"
)

// PurchaseEvent is the payload published for purchase lifecycle events
type PurchaseEvent struct {
	EventID      string          `json:"event_id"`
	Type         EventType       `json:"type"`
	PurchaseID   string          `json:"purchase_id"`
	Reference    string          `json:"reference"`
	CustomerID   string          `json:"customer_id"`
	TicketTypeID string          `json:"ticket_type_id"`
	Quantity     int             `json:"quantity"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
	Status       PurchaseStatus  `json:"status"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewPurchaseEvent builds the event payload for a purchase
func NewPurchaseEvent(eventType EventType, p *Purchase, eventID string) *PurchaseEvent {
	return &PurchaseEvent{
		EventID:      eventID,
		Type:         eventType,
		PurchaseID:   p.ID,
		Reference:    p.Reference,
		CustomerID:   p.CustomerID,
		TicketTypeID: p.TicketTypeID,
		Quantity:     p.Quantity,
		TotalAmount:  p.TotalAmount,
		Currency:     p.Currency,
		Status:       p.Status,
		OccurredAt:   time.Now(),
	}
}

// SeatEvent is the payload published for seat lifecycle events
type SeatEvent struct {
	EventID    string     `json:"event_id"`
	Type       EventType  `json:"type"`
	SeatID     string     `json:"seat_id"`
	TripID     string     `json:"trip_id"`
	Number     string     `json:"number"`
	CustomerID string     `json:"customer_id,omitempty"`
	PurchaseID string     `json:"purchase_id,omitempty"`
	Status     SeatStatus `json:"status"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewSeatEvent builds the event payload for a seat
func NewSeatEvent(eventType EventType, s *Seat, eventID string) *SeatEvent {
	return &SeatEvent{
		EventID:    eventID,
		Type:       eventType,
		SeatID:     s.ID,
		TripID:     s.TripID,
		Number:     s.Number,
		CustomerID: s.CustomerID,
		PurchaseID: s.PurchaseID,
		Status:     s.Status,
		OccurredAt: time.Now(),
	}
}
