package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
)

// CreateTicketTypeRequest represents a request to create a ticket type
type CreateTicketTypeRequest struct {
	EventID     string          `json:"event_id" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Currency    string          `json:"currency,omitempty"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	MaxPerOrder int             `json:"max_per_order,omitempty"`
	SaleStartAt *time.Time      `json:"sale_start_at,omitempty"`
	SaleEndAt   *time.Time      `json:"sale_end_at,omitempty"`
	Active      *bool           `json:"active,omitempty"`
}

// UpdateTicketTypeRequest represents a request to update a ticket type.
// Pointer fields distinguish "not provided" from zero values.
type UpdateTicketTypeRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	MaxPerOrder *int             `json:"max_per_order,omitempty"`
	SaleStartAt *time.Time       `json:"sale_start_at,omitempty"`
	SaleEndAt   *time.Time       `json:"sale_end_at,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// TicketTypeResponse represents a ticket type in API responses
type TicketTypeResponse struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Quantity    int             `json:"quantity"`
	Sold        int             `json:"sold"`
	Available   int             `json:"available"`
	MaxPerOrder int             `json:"max_per_order"`
	SaleStartAt *time.Time      `json:"sale_start_at,omitempty"`
	SaleEndAt   *time.Time      `json:"sale_end_at,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AvailabilityResponse represents a point-in-time availability snapshot
type AvailabilityResponse struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	Sold         int    `json:"sold"`
	Available    int    `json:"available"`
	SoldOut      bool   `json:"sold_out"`
}

// TicketTypeFromDomain converts a domain TicketType to TicketTypeResponse
func TicketTypeFromDomain(tt *domain.TicketType) *TicketTypeResponse {
	return &TicketTypeResponse{
		ID:          tt.ID,
		EventID:     tt.EventID,
		Name:        tt.Name,
		Description: tt.Description,
		Price:       tt.Price,
		Currency:    tt.Currency,
		Quantity:    tt.Quantity,
		Sold:        tt.Sold,
		Available:   tt.Available(),
		MaxPerOrder: tt.MaxPerOrder,
		SaleStartAt: tt.SaleStartAt,
		SaleEndAt:   tt.SaleEndAt,
		Active:      tt.Active,
		CreatedAt:   tt.CreatedAt,
		UpdatedAt:   tt.UpdatedAt,
	}
}
