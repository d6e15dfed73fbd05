package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewOutboxMessage(t *testing.T) {
	msg, err := NewOutboxMessage("purchase", "pur-001", "purchase.confirmed", "marketplace.events", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("NewOutboxMessage() error = %v", err)
	}

	if msg.Status != OutboxStatusPending {
		t.Errorf("Status = %s, want pending", msg.Status)
	}
	if msg.PartitionKey != "pur-001" {
		t.Errorf("PartitionKey = %s, want aggregate ID", msg.PartitionKey)
	}
	if msg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", msg.MaxRetries)
	}
	if len(msg.Payload) == 0 {
		t.Error("Payload should be marshalled")
	}
}

func TestOutboxMessage_CanRetry(t *testing.T) {
	msg := &OutboxMessage{Status: OutboxStatusFailed, RetryCount: 4, MaxRetries: 5}
	if !msg.CanRetry() {
		t.Error("expected retryable below max retries")
	}

	msg.RetryCount = 5
	if msg.CanRetry() {
		t.Error("expected not retryable at max retries")
	}

	msg = &OutboxMessage{Status: OutboxStatusPending, RetryCount: 0, MaxRetries: 5}
	if msg.CanRetry() {
		t.Error("pending messages are polled, not retried")
	}
}

func TestOutboxMessage_MarkAsFailed(t *testing.T) {
	msg := &OutboxMessage{Status: OutboxStatusPending, MaxRetries: 5}

	msg.MarkAsFailed("broker unavailable")

	if msg.Status != OutboxStatusFailed {
		t.Errorf("Status = %s, want failed", msg.Status)
	}
	if msg.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", msg.RetryCount)
	}
	if msg.LastError != "broker unavailable" {
		t.Errorf("LastError = %q", msg.LastError)
	}
	if msg.ProcessedAt == nil {
		t.Error("ProcessedAt should be set")
	}
}

func TestOutboxMessage_MarkAsPublished(t *testing.T) {
	msg := &OutboxMessage{Status: OutboxStatusPending}

	msg.MarkAsPublished()

	if msg.Status != OutboxStatusPublished {
		t.Errorf("Status = %s, want published", msg.Status)
	}
	if msg.PublishedAt == nil || msg.ProcessedAt == nil {
		t.Error("PublishedAt and ProcessedAt should be set")
	}
}

func TestPurchaseOutboxEvent(t *testing.T) {
	p := &Purchase{
		ID:           "pur-001",
		Reference:    "PUR-abc12345",
		CustomerID:   "cust-001",
		TicketTypeID: "tt-001",
		Quantity:     2,
		TotalAmount:  decimal.NewFromInt(10000),
		Currency:     "XAF",
		Status:       PurchaseStatusConfirmed,
	}

	msg, err := PurchaseOutboxEvent(EventPurchaseConfirmed, p, "ev-001", "marketplace.events")
	if err != nil {
		t.Fatalf("PurchaseOutboxEvent() error = %v", err)
	}

	if msg.AggregateType != "purchase" || msg.AggregateID != "pur-001" {
		t.Errorf("aggregate = %s/%s, want purchase/pur-001", msg.AggregateType, msg.AggregateID)
	}
	if msg.EventType != "purchase.confirmed" {
		t.Errorf("EventType = %s, want purchase.confirmed", msg.EventType)
	}

	var event PurchaseEvent
	if err := msg.GetPayload(&event); err != nil {
		t.Fatalf("GetPayload() error = %v", err)
	}
	if event.Reference != "PUR-abc12345" {
		t.Errorf("payload reference = %s, want PUR-abc12345", event.Reference)
	}
	if event.Status != PurchaseStatusConfirmed {
		t.Errorf("payload status = %s, want confirmed", event.Status)
	}
}
