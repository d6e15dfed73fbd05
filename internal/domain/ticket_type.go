package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TicketType represents one sellable ticket class of an event, carrying its
// own capacity counter. The invariant 0 <= Sold <= Quantity is enforced by
// the guarded SQL updates in the repository, never by in-memory checks alone.
type TicketType struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Quantity    int             `json:"quantity"`
	Sold        int             `json:"sold"`
	MaxPerOrder int             `json:"max_per_order"`
	SaleStartAt *time.Time      `json:"sale_start_at,omitempty"`
	SaleEndAt   *time.Time      `json:"sale_end_at,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// Available returns the number of unsold tickets
func (t *TicketType) Available() int {
	return t.Quantity - t.Sold
}

// IsSoldOut checks if all tickets are sold
func (t *TicketType) IsSoldOut() bool {
	return t.Sold >= t.Quantity
}

// IsDeleted checks if the ticket type is soft-deleted
func (t *TicketType) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsOnSaleAt checks active flag and sale window at a specific time
func (t *TicketType) IsOnSaleAt(at time.Time) error {
	if !t.Active || t.IsDeleted() {
		return ErrTicketTypeInactive
	}
	if t.SaleStartAt != nil && at.Before(*t.SaleStartAt) {
		return ErrSaleNotStarted
	}
	if t.SaleEndAt != nil && at.After(*t.SaleEndAt) {
		return ErrSaleClosed
	}
	return nil
}

// CheckOrderQuantity validates a requested quantity against the per-order cap
func (t *TicketType) CheckOrderQuantity(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if t.MaxPerOrder > 0 && qty > t.MaxPerOrder {
		return ErrMaxPerOrderExceeded
	}
	return nil
}

// Validate validates all ticket type fields
func (t *TicketType) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrInvalidTicketTypeID
	}
	if strings.TrimSpace(t.EventID) == "" {
		return ErrInvalidEventID
	}
	if t.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if t.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}
