package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/XavierSoh/adigo-bnd-sub003/pkg/telemetry"
)

var (
	// Purchase counters
	PurchasesInitiated *telemetry.Counter
	PurchasesConfirmed *telemetry.Counter
	PurchasesCancelled *telemetry.Counter
	PurchasesRefunded  *telemetry.Counter
	PurchasesExpired   *telemetry.Counter
	PurchasesFailed    *telemetry.Counter

	// Validation counters
	TicketsValidated  *telemetry.Counter
	ValidationsDenied *telemetry.Counter

	// Seat counters
	SeatsReserved    *telemetry.Counter
	SeatsBooked      *telemetry.Counter
	SeatsReleased    *telemetry.Counter
	SeatHoldsExpired *telemetry.Counter

	// Outbox counters
	OutboxPublished *telemetry.Counter
	OutboxFailed    *telemetry.Counter

	// Histograms
	PendingDuration *telemetry.Histogram
	RequestDuration *telemetry.Histogram

	// Gauges
	PendingPurchases *telemetry.UpDownCounter
	ActiveSeatHolds  *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all marketplace metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	PurchasesInitiated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_initiations_total",
		Description: "Total number of purchases initiated",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_confirmations_total",
		Description: "Total number of purchases confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_cancellations_total",
		Description: "Total number of purchases cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesRefunded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_refunds_total",
		Description: "Total number of purchases refunded",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_expirations_total",
		Description: "Total number of stale pending purchases expired",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "purchase_failures_total",
		Description: "Total number of failed purchase attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsValidated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_validations_total",
		Description: "Total number of tickets validated at the gate",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ValidationsDenied, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_validation_denials_total",
		Description: "Total number of denied validation attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SeatsReserved, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "seat_reservations_total",
		Description: "Total number of seat holds placed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SeatsBooked, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "seat_bookings_total",
		Description: "Total number of seats booked",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SeatsReleased, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "seat_releases_total",
		Description: "Total number of seats released",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SeatHoldsExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "seat_hold_expirations_total",
		Description: "Total number of expired seat holds swept",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OutboxPublished, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "outbox_published_total",
		Description: "Total number of outbox messages published",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OutboxFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "outbox_failures_total",
		Description: "Total number of outbox publish failures",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PendingDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "purchase_pending_duration_seconds",
		Description: "Duration from initiation to confirmation",
		Unit:        "s",
	}, []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "marketplace_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	PendingPurchases, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "purchase_pending_current",
		Description: "Current number of pending purchases",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ActiveSeatHolds, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "seat_holds_current",
		Description: "Current number of live seat holds",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordInitiation records a purchase initiation
func RecordInitiation(ctx context.Context, eventID, ticketTypeID string, quantity int) {
	if PurchasesInitiated != nil {
		PurchasesInitiated.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("ticket_type_id", ticketTypeID),
			attribute.Int("quantity", quantity),
		)
	}
	if PendingPurchases != nil {
		PendingPurchases.Inc(ctx)
	}
}

// RecordConfirmation records a purchase confirmation
func RecordConfirmation(ctx context.Context, eventID string, pendingSeconds float64) {
	if PurchasesConfirmed != nil {
		PurchasesConfirmed.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if PendingDuration != nil {
		PendingDuration.Record(ctx, pendingSeconds,
			attribute.String("event_id", eventID),
		)
	}
	if PendingPurchases != nil {
		PendingPurchases.Dec(ctx)
	}
}

// RecordCancellation records a purchase cancellation
func RecordCancellation(ctx context.Context, eventID string, wasConfirmed bool) {
	if PurchasesCancelled != nil {
		PurchasesCancelled.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Bool("was_confirmed", wasConfirmed),
		)
	}
	if !wasConfirmed && PendingPurchases != nil {
		PendingPurchases.Dec(ctx)
	}
}

// RecordRefund records a purchase refund
func RecordRefund(ctx context.Context, eventID string) {
	if PurchasesRefunded != nil {
		PurchasesRefunded.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordExpiration records stale pending purchases swept
func RecordExpiration(ctx context.Context, count int64) {
	if PurchasesExpired != nil {
		PurchasesExpired.Add(ctx, count)
	}
	if PendingPurchases != nil {
		PendingPurchases.Add(ctx, -count)
	}
}

// RecordFailure records a failed purchase attempt
func RecordFailure(ctx context.Context, ticketTypeID, reason string) {
	if PurchasesFailed != nil {
		PurchasesFailed.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
			attribute.String("reason", reason),
		)
	}
}

// RecordValidation records a successful ticket validation
func RecordValidation(ctx context.Context, eventID string) {
	if TicketsValidated != nil {
		TicketsValidated.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordValidationDenied records a denied validation attempt
func RecordValidationDenied(ctx context.Context, reason string) {
	if ValidationsDenied != nil {
		ValidationsDenied.Inc(ctx,
			attribute.String("reason", reason),
		)
	}
}

// RecordSeatReservation records a seat hold
func RecordSeatReservation(ctx context.Context, tripID string) {
	if SeatsReserved != nil {
		SeatsReserved.Inc(ctx,
			attribute.String("trip_id", tripID),
		)
	}
	if ActiveSeatHolds != nil {
		ActiveSeatHolds.Inc(ctx)
	}
}

// RecordSeatBooking records a seat booking
func RecordSeatBooking(ctx context.Context, tripID string) {
	if SeatsBooked != nil {
		SeatsBooked.Inc(ctx,
			attribute.String("trip_id", tripID),
		)
	}
	if ActiveSeatHolds != nil {
		ActiveSeatHolds.Dec(ctx)
	}
}

// RecordSeatRelease records a seat release
func RecordSeatRelease(ctx context.Context, tripID string, wasHold bool) {
	if SeatsReleased != nil {
		SeatsReleased.Inc(ctx,
			attribute.String("trip_id", tripID),
		)
	}
	if wasHold && ActiveSeatHolds != nil {
		ActiveSeatHolds.Dec(ctx)
	}
}

// RecordSeatHoldExpirations records expired seat holds swept
func RecordSeatHoldExpirations(ctx context.Context, count int64) {
	if SeatHoldsExpired != nil {
		SeatHoldsExpired.Add(ctx, count)
	}
	if ActiveSeatHolds != nil {
		ActiveSeatHolds.Add(ctx, -count)
	}
}

// RecordOutboxPublished records a published outbox message
func RecordOutboxPublished(ctx context.Context, eventType string) {
	if OutboxPublished != nil {
		OutboxPublished.Inc(ctx,
			attribute.String("event_type", eventType),
		)
	}
}

// RecordOutboxFailure records a failed outbox publish
func RecordOutboxFailure(ctx context.Context, eventType string) {
	if OutboxFailed != nil {
		OutboxFailed.Inc(ctx,
			attribute.String("event_type", eventType),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
