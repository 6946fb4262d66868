package paymentRepo

import (
	"workhive/models"
)

// PaymentRepository defines methods for payment data access.
type PaymentRepository interface {
	// Create inserts a new payment record.
	Create(p *models.Payment) error
	// GetByBookingID retrieves the payment owned by a booking (one-to-one).
	GetByBookingID(bookingID string) (*models.Payment, error)
	// MarkSucceeded records a captured payment. Must complete before the
	// owning booking may be confirmed.
	MarkSucceeded(id string) error
	// MarkRefunded records a compensating refund.
	MarkRefunded(id string) error
	// MarkCancelled records a released (never captured) authorization.
	MarkCancelled(id string) error
	// SetPaymentIntentID persists the Stripe authorization reference.
	SetPaymentIntentID(id, paymentIntentID string) error
}
