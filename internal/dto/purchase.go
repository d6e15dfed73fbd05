package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

// InitiatePurchaseRequest represents a request to start a purchase
type InitiatePurchaseRequest struct {
	TicketTypeID  string `json:"ticket_type_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	SeatID        string `json:"seat_id,omitempty"`
	AttendeeName  string `json:"attendee_name,omitempty"`
	AttendeeEmail string `json:"attendee_email,omitempty" binding:"omitempty,email"`
}

// ConfirmPaymentRequest represents a payment confirmation callback carrying
// the gateway's result
type ConfirmPaymentRequest struct {
	PaymentRef    string `json:"payment_ref" binding:"required"`
	PaymentStatus string `json:"payment_status" binding:"required,oneof=paid failed"`
}

// RefundPurchaseRequest represents a request to refund a purchase
type RefundPurchaseRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ValidateTicketRequest represents a staff scan of a ticket
type ValidateTicketRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID            string          `json:"id"`
	Reference     string          `json:"reference"`
	CustomerID    string          `json:"customer_id"`
	EventID       string          `json:"event_id"`
	TicketTypeID  string          `json:"ticket_type_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	AttendeeName  string          `json:"attendee_name,omitempty"`
	AttendeeEmail string          `json:"attendee_email,omitempty"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	QRCode        string          `json:"qr_code,omitempty"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	RefundReason  string          `json:"refund_reason,omitempty"`
	UsedAt        *time.Time      `json:"used_at,omitempty"`
	// SeatHeld is set only when the initiation asked for a seat hold
	SeatHeld  *bool     `json:"seat_held,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidationResponse represents the result of a successful ticket scan
type ValidationResponse struct {
	PurchaseID  string    `json:"purchase_id"`
	Reference   string    `json:"reference"`
	CustomerID  string    `json:"customer_id"`
	EventID     string    `json:"event_id"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	ValidatedBy string    `json:"validated_by"`
	UsedAt      time.Time `json:"used_at"`
}

// PurchaseFromDomain converts a domain Purchase to PurchaseResponse
func PurchaseFromDomain(p *domain.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		ID:            p.ID,
		Reference:     p.Reference,
		CustomerID:    p.CustomerID,
		EventID:       p.EventID,
		TicketTypeID:  p.TicketTypeID,
		Quantity:      p.Quantity,
		UnitPrice:     p.UnitPrice,
		TotalAmount:   p.TotalAmount,
		Currency:      p.Currency,
		AttendeeName:  p.AttendeeName,
		AttendeeEmail: p.AttendeeEmail,
		Status:        string(p.Status),
		PaymentStatus: string(p.PaymentStatus),
		PaymentRef:    p.PaymentRef,
		QRCode:        p.QRCode,
		ConfirmedAt:   p.ConfirmedAt,
		CancelledAt:   p.CancelledAt,
		RefundedAt:    p.RefundedAt,
		RefundReason:  p.RefundReason,
		UsedAt:        p.UsedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// ValidationFromDomain converts a validated purchase to ValidationResponse
func ValidationFromDomain(p *domain.Purchase) *ValidationResponse {
	resp := &ValidationResponse{
		PurchaseID:  p.ID,
		Reference:   p.Reference,
		CustomerID:  p.CustomerID,
		EventID:     p.EventID,
		Quantity:    p.Quantity,
		Status:      string(p.Status),
		ValidatedBy: p.ValidatedBy,
	}
	if p.UsedAt != nil {
		resp.UsedAt = *p.UsedAt
	}
	return resp
}
