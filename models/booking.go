package models

import "time"

// Booking statuses. A booking is never physically deleted; cancellation and
// rejection are recorded by status.
const (
	BookingStatusPending         = "pending"
	BookingStatusPendingApproval = "pending_approval"
	BookingStatusConfirmed       = "confirmed"
	BookingStatusCancelled       = "cancelled"
	BookingStatusRejected        = "rejected"
)

// Booking represents a reservation of a space for a time range.
type Booking struct {
	ID          string  `bson:"id" json:"id"`
	SpaceID     string  `bson:"space_id" json:"space_id"`
	UserID      string  `bson:"user_id" json:"user_id"` // Coworker who requested the booking
	Status      string  `bson:"status" json:"status"`
	BookingDate string  `bson:"booking_date" json:"booking_date"` // "YYYY-MM-DD"
	StartTime   string  `bson:"start_time" json:"start_time"`     // "HH:MM"
	EndTime     string  `bson:"end_time" json:"end_time"`         // "HH:MM"
	Price       float64 `bson:"price" json:"price"`               // Base amount before fees
	Currency    string  `bson:"currency" json:"currency"`

	// Stripe payment authorization reference. Nullable: backfilled from the
	// checkout session when missing.
	StripePaymentIntentID string `bson:"stripe_payment_intent_id,omitempty" json:"stripe_payment_intent_id,omitempty"`

	RequestInvoice  bool       `bson:"request_invoice" json:"request_invoice"`
	PaymentDeadline *time.Time `bson:"payment_deadline,omitempty" json:"payment_deadline,omitempty"`

	CancellationReason string     `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CancelledByHost    bool       `bson:"cancelled_by_host,omitempty" json:"cancelled_by_host,omitempty"`
	CancelledAt        *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ReserveRequest is the input for reserving a slot.
type ReserveRequest struct {
	SpaceID        string `json:"space_id" binding:"required"`
	BookingDate    string `json:"booking_date" binding:"required"`
	StartTime      string `json:"start_time" binding:"required"`
	EndTime        string `json:"end_time" binding:"required"`
	RequestInvoice bool   `json:"request_invoice"`
}
