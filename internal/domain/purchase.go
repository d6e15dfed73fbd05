package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the lifecycle state of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusUsed      PurchaseStatus = "used"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
	PurchaseStatusRefunded  PurchaseStatus = "refunded"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusConfirmed, PurchaseStatusUsed,
		PurchaseStatusCancelled, PurchaseStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// PaymentStatus represents the payment state of a purchase
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Purchase represents a customer's ticket purchase. Inventory is committed
// at payment confirmation, not at initiation: a pending purchase holds no
// tickets.
type Purchase struct {
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
	Status        PurchaseStatus  `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	QRCode        string          `json:"qr_code,omitempty"`
	ValidatedBy   string          `json:"validated_by,omitempty"`
	UsedAt        *time.Time      `json:"used_at,omitempty"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	RefundReason  string          `json:"refund_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Validate validates all purchase fields
func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidPurchaseID
	}
	if strings.TrimSpace(p.CustomerID) == "" {
		return ErrInvalidCustomerID
	}
	if strings.TrimSpace(p.TicketTypeID) == "" {
		return ErrInvalidTicketTypeID
	}
	if p.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.TotalAmount.IsNegative() || p.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// IsPending checks if the purchase is pending
func (p *Purchase) IsPending() bool {
	return p.Status == PurchaseStatusPending
}

// IsConfirmed checks if the purchase is confirmed
func (p *Purchase) IsConfirmed() bool {
	return p.Status == PurchaseStatusConfirmed
}

// IsUsed checks if the purchase has been validated at entry
func (p *Purchase) IsUsed() bool {
	return p.Status == PurchaseStatusUsed
}

// CanConfirm checks if the purchase can be confirmed
func (p *Purchase) CanConfirm() bool {
	return p.Status == PurchaseStatusPending
}

// CanCancel checks if the purchase can be cancelled
func (p *Purchase) CanCancel() bool {
	return p.Status == PurchaseStatusPending || p.Status == PurchaseStatusConfirmed
}

// CanRefund checks if the purchase can be refunded
func (p *Purchase) CanRefund() bool {
	return p.Status == PurchaseStatusConfirmed || p.Status == PurchaseStatusUsed
}

// CanValidate checks if the purchase can be redeemed at entry
func (p *Purchase) CanValidate() bool {
	return p.Status == PurchaseStatusConfirmed
}

// Confirm marks the purchase as confirmed with its payment reference
func (p *Purchase) Confirm(paymentRef string) error {
	if !p.CanConfirm() {
		return ErrPurchaseNotPending
	}
	now := time.Now()
	p.Status = PurchaseStatusConfirmed
	p.PaymentStatus = PaymentStatusPaid
	p.PaymentRef = paymentRef
	p.ConfirmedAt = &now
	p.UpdatedAt = now
	return nil
}

// FailPayment records a failed payment attempt. The purchase stays pending
// so the customer can retry; no inventory is involved.
func (p *Purchase) FailPayment(paymentRef string) error {
	if !p.IsPending() {
		return ErrPurchaseNotPending
	}
	p.PaymentStatus = PaymentStatusFailed
	p.PaymentRef = paymentRef
	p.UpdatedAt = time.Now()
	return nil
}

// Cancel marks the purchase as cancelled
func (p *Purchase) Cancel() error {
	if !p.CanCancel() {
		return ErrNotCancellable
	}
	now := time.Now()
	p.Status = PurchaseStatusCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now
	return nil
}

// Refund marks the purchase as refunded. Refunds never restore inventory.
func (p *Purchase) Refund(reason string) error {
	if p.Status == PurchaseStatusRefunded {
		return ErrAlreadyRefunded
	}
	if !p.CanRefund() {
		return ErrNotRefundable
	}
	now := time.Now()
	p.Status = PurchaseStatusRefunded
	p.PaymentStatus = PaymentStatusRefunded
	p.RefundedAt = &now
	p.RefundReason = reason
	p.UpdatedAt = now
	return nil
}

// MarkUsed redeems the purchase at entry. Not idempotent: a second call fails.
func (p *Purchase) MarkUsed(staffID string) error {
	if p.Status == PurchaseStatusUsed {
		return ErrAlreadyUsed
	}
	if !p.CanValidate() {
		return ErrPurchaseNotConfirmed
	}
	now := time.Now()
	p.Status = PurchaseStatusUsed
	p.ValidatedBy = staffID
	p.UsedAt = &now
	p.UpdatedAt = now
	return nil
}

// BelongsToCustomer checks if the purchase belongs to the specified customer
func (p *Purchase) BelongsToCustomer(customerID string) bool {
	return p.CustomerID == customerID
}
