package domain

import (
	"errors"
	"testing"
	"time"
)

func availableSeat() *Seat {
	return &Seat{
		ID:     "seat-001",
		TripID: "trip-001",
		Number: "12A",
		Status: SeatStatusAvailable,
	}
}

func TestSeat_Reserve(t *testing.T) {
	seat := availableSeat()
	heldUntil := time.Now().Add(10 * time.Minute)

	if err := seat.Reserve("cust-001", heldUntil); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	if seat.Status != SeatStatusReserved {
		t.Errorf("Status = %s, want reserved", seat.Status)
	}
	if seat.CustomerID != "cust-001" {
		t.Errorf("CustomerID = %s, want cust-001", seat.CustomerID)
	}
	if seat.HeldUntil == nil || !seat.HeldUntil.Equal(heldUntil) {
		t.Errorf("HeldUntil = %v, want %v", seat.HeldUntil, heldUntil)
	}

	// Reserving a reserved seat fails
	if err := seat.Reserve("cust-002", heldUntil); !errors.Is(err, ErrSeatNotAvailable) {
		t.Errorf("second Reserve() error = %v, want ErrSeatNotAvailable", err)
	}
}

func TestSeat_Reserve_Blocked(t *testing.T) {
	seat := availableSeat()
	seat.Status = SeatStatusBlocked

	err := seat.Reserve("cust-001", time.Now().Add(10*time.Minute))
	if !errors.Is(err, ErrSeatBlocked) {
		t.Errorf("Reserve() on blocked seat error = %v, want ErrSeatBlocked", err)
	}
}

func TestSeat_Book(t *testing.T) {
	seat := availableSeat()
	heldUntil := time.Now().Add(10 * time.Minute)
	if err := seat.Reserve("cust-001", heldUntil); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	if err := seat.Book("pur-001"); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	if seat.Status != SeatStatusBooked {
		t.Errorf("Status = %s, want booked", seat.Status)
	}
	if seat.PurchaseID != "pur-001" {
		t.Errorf("PurchaseID = %s, want pur-001", seat.PurchaseID)
	}
	if seat.HeldUntil != nil {
		t.Error("HeldUntil should be cleared after booking")
	}
}

func TestSeat_Book_ExpiredHold(t *testing.T) {
	seat := availableSeat()
	lapsed := time.Now().Add(-1 * time.Minute)
	seat.Status = SeatStatusReserved
	seat.CustomerID = "cust-001"
	seat.HeldUntil = &lapsed

	if err := seat.Book("pur-001"); !errors.Is(err, ErrSeatHoldExpired) {
		t.Errorf("Book() with lapsed hold error = %v, want ErrSeatHoldExpired", err)
	}
	if seat.Status != SeatStatusReserved {
		t.Errorf("Status = %s, want reserved after rejected booking", seat.Status)
	}
}

func TestSeat_Book_RequiresReservation(t *testing.T) {
	for _, status := range []SeatStatus{SeatStatusAvailable, SeatStatusBooked, SeatStatusBlocked} {
		seat := availableSeat()
		seat.Status = status
		if err := seat.Book("pur-001"); !errors.Is(err, ErrSeatNotReserved) {
			t.Errorf("Book() from %s error = %v, want ErrSeatNotReserved", status, err)
		}
	}
}

func TestSeat_Release(t *testing.T) {
	seat := availableSeat()
	heldUntil := time.Now().Add(10 * time.Minute)
	_ = seat.Reserve("cust-001", heldUntil)

	if err := seat.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	if seat.Status != SeatStatusAvailable {
		t.Errorf("Status = %s, want available", seat.Status)
	}
	if seat.CustomerID != "" || seat.PurchaseID != "" || seat.HeldUntil != nil {
		t.Error("Release() should clear customer, purchase and hold")
	}

	if err := seat.Release(); !errors.Is(err, ErrSeatNotReleasable) {
		t.Errorf("Release() on available seat error = %v, want ErrSeatNotReleasable", err)
	}
}

func TestSeat_BlockUnblock(t *testing.T) {
	seat := availableSeat()
	until := time.Now().Add(24 * time.Hour)

	if err := seat.Block("maintenance", &until); err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	if seat.Status != SeatStatusBlocked {
		t.Errorf("Status = %s, want blocked", seat.Status)
	}
	if seat.BlockReason != "maintenance" {
		t.Errorf("BlockReason = %s, want maintenance", seat.BlockReason)
	}

	// Blocking a non-available seat fails
	if err := seat.Block("again", nil); !errors.Is(err, ErrSeatNotAvailable) {
		t.Errorf("Block() on blocked seat error = %v, want ErrSeatNotAvailable", err)
	}

	if err := seat.Unblock(); err != nil {
		t.Fatalf("Unblock() error = %v", err)
	}
	if seat.Status != SeatStatusAvailable {
		t.Errorf("Status = %s, want available", seat.Status)
	}
	if seat.BlockReason != "" || seat.BlockedUntil != nil {
		t.Error("Unblock() should clear the block reason and deadline")
	}

	if err := seat.Unblock(); !errors.Is(err, ErrSeatNotBlocked) {
		t.Errorf("Unblock() on available seat error = %v, want ErrSeatNotBlocked", err)
	}
}

func TestSeat_IsHoldExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-1 * time.Minute)
	future := now.Add(1 * time.Minute)

	tests := []struct {
		name      string
		status    SeatStatus
		heldUntil *time.Time
		want      bool
	}{
		{name: "live hold", status: SeatStatusReserved, heldUntil: &future, want: false},
		{name: "lapsed hold", status: SeatStatusReserved, heldUntil: &past, want: true},
		{name: "no hold", status: SeatStatusReserved, heldUntil: nil, want: false},
		{name: "booked seat with stale timestamp", status: SeatStatusBooked, heldUntil: &past, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seat := availableSeat()
			seat.Status = tt.status
			seat.HeldUntil = tt.heldUntil

			if got := seat.IsHoldExpired(now); got != tt.want {
				t.Errorf("IsHoldExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeat_Validate(t *testing.T) {
	seat := availableSeat()
	if err := seat.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	seat.TripID = ""
	if err := seat.Validate(); !errors.Is(err, ErrInvalidTripID) {
		t.Errorf("Validate() error = %v, want ErrInvalidTripID", err)
	}

	seat = availableSeat()
	seat.Number = " "
	if err := seat.Validate(); !errors.Is(err, ErrInvalidSeatNumber) {
		t.Errorf("Validate() error = %v, want ErrInvalidSeatNumber", err)
	}
}
