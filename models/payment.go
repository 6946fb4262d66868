package models

import "time"

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusCancelled = "cancelled"
)

// Payment records the money side of a booking (one-to-one).
type Payment struct {
	ID            string  `bson:"id" json:"id"`
	BookingID     string  `bson:"booking_id" json:"booking_id"`
	UserID        string  `bson:"user_id" json:"user_id"`
	Amount        float64 `bson:"amount" json:"amount"` // Buyer total including buyer fee
	Currency      string  `bson:"currency" json:"currency"`
	PaymentStatus string  `bson:"payment_status" json:"payment_status"`
	Method        string  `bson:"method" json:"method"` // "stripe"

	StripeSessionID       string `bson:"stripe_session_id,omitempty" json:"stripe_session_id,omitempty"`
	StripePaymentIntentID string `bson:"stripe_payment_intent_id,omitempty" json:"stripe_payment_intent_id,omitempty"`

	HostAmount  float64 `bson:"host_amount" json:"host_amount"`   // Net payout to the host
	PlatformFee float64 `bson:"platform_fee" json:"platform_fee"` // Buyer fee + host fee

	CapturedAt *time.Time `bson:"captured_at,omitempty" json:"captured_at,omitempty"`
	RefundedAt *time.Time `bson:"refunded_at,omitempty" json:"refunded_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

// CheckoutResult is returned after creating a checkout session.
type CheckoutResult struct {
	PaymentURL string           `json:"payment_url"`
	SessionID  string           `json:"session_id"`
	Breakdown  PaymentBreakdown `json:"breakdown"`
}

// PaymentBreakdown is the dual commission split for a booking amount.
type PaymentBreakdown struct {
	BaseAmount      float64 `json:"base_amount"`
	BuyerFeeAmount  float64 `json:"buyer_fee_amount"`
	BuyerTotal      float64 `json:"buyer_total_amount"`
	HostFeeAmount   float64 `json:"host_fee_amount"`
	HostNetPayout   float64 `json:"host_net_payout"`
	PlatformRevenue float64 `json:"platform_revenue"`
}
