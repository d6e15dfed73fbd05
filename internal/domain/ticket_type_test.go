package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func onSaleTicketType() *TicketType {
	start := time.Now().Add(-1 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	return &TicketType{
		ID:          "tt-001",
		EventID:     "evt-001",
		Name:        "Standard",
		Price:       decimal.NewFromInt(5000),
		Currency:    "XAF",
		Quantity:    100,
		Sold:        40,
		MaxPerOrder: 4,
		SaleStartAt: &start,
		SaleEndAt:   &end,
		Active:      true,
	}
}

func TestTicketType_Available(t *testing.T) {
	tt := onSaleTicketType()

	if got := tt.Available(); got != 60 {
		t.Errorf("Available() = %d, want 60", got)
	}

	tt.Sold = 100
	if got := tt.Available(); got != 0 {
		t.Errorf("Available() = %d, want 0", got)
	}
	if !tt.IsSoldOut() {
		t.Error("expected sold out at capacity")
	}
}

func TestTicketType_IsOnSaleAt(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		modify  func(tt *TicketType)
		wantErr error
	}{
		{
			name:   "on sale",
			modify: func(tt *TicketType) {},
		},
		{
			name:    "inactive",
			modify:  func(tt *TicketType) { tt.Active = false },
			wantErr: ErrTicketTypeInactive,
		},
		{
			name: "soft deleted",
			modify: func(tt *TicketType) {
				deleted := now.Add(-1 * time.Minute)
				tt.DeletedAt = &deleted
			},
			wantErr: ErrTicketTypeInactive,
		},
		{
			name: "sale not started",
			modify: func(tt *TicketType) {
				start := now.Add(1 * time.Hour)
				tt.SaleStartAt = &start
			},
			wantErr: ErrSaleNotStarted,
		},
		{
			name: "sale closed",
			modify: func(tt *TicketType) {
				end := now.Add(-1 * time.Minute)
				tt.SaleEndAt = &end
			},
			wantErr: ErrSaleClosed,
		},
		{
			name: "no sale window",
			modify: func(tt *TicketType) {
				tt.SaleStartAt = nil
				tt.SaleEndAt = nil
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := onSaleTicketType()
			tc.modify(tt)

			err := tt.IsOnSaleAt(now)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("IsOnSaleAt() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTicketType_CheckOrderQuantity(t *testing.T) {
	tt := onSaleTicketType()

	if err := tt.CheckOrderQuantity(4); err != nil {
		t.Errorf("CheckOrderQuantity(4) error = %v", err)
	}

	if err := tt.CheckOrderQuantity(5); !errors.Is(err, ErrMaxPerOrderExceeded) {
		t.Errorf("CheckOrderQuantity(5) error = %v, want ErrMaxPerOrderExceeded", err)
	}

	if err := tt.CheckOrderQuantity(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("CheckOrderQuantity(0) error = %v, want ErrInvalidQuantity", err)
	}

	// No cap when MaxPerOrder is zero
	tt.MaxPerOrder = 0
	if err := tt.CheckOrderQuantity(50); err != nil {
		t.Errorf("CheckOrderQuantity(50) with no cap error = %v", err)
	}
}

func TestTicketType_Validate(t *testing.T) {
	tt := onSaleTicketType()
	if err := tt.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	tt.EventID = ""
	if err := tt.Validate(); !errors.Is(err, ErrInvalidEventID) {
		t.Errorf("Validate() error = %v, want ErrInvalidEventID", err)
	}

	tt = onSaleTicketType()
	tt.Quantity = -1
	if err := tt.Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Validate() error = %v, want ErrInvalidQuantity", err)
	}

	tt = onSaleTicketType()
	tt.Price = decimal.NewFromInt(-1)
	if err := tt.Validate(); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("Validate() error = %v, want ErrInvalidPrice", err)
	}
}
