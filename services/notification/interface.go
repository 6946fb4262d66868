package notification

import (
	"context"
	"time"
)

// Dispatcher publishes notification and expiry tasks onto the background
// queue. Dispatch is fire-and-forget from the caller's perspective: enqueue
// failures are returned so the caller can log them, but they must never
// influence booking or payment state.
type Dispatcher interface {
	// Dispatch enqueues a notification for a booking state transition.
	Dispatch(ctx context.Context, bookingID, eventType string) error
	// ScheduleExpiry enqueues a payment-deadline check to run at the given time.
	ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error
}
