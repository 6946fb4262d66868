package payments

import "context"

// Payment intent statuses as reported by the processor. The coordinator only
// branches on these three; anything else is anomalous but non-fatal.
const (
	IntentRequiresCapture = "requires_capture"
	IntentSucceeded       = "succeeded"
	IntentCanceled        = "canceled"
)

// CheckoutParams describes a checkout session to create. Funds are authorized,
// not captured; capture happens on host approval.
type CheckoutParams struct {
	BookingID   string
	SpaceName   string
	Description string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the processor-side session for a hosted checkout flow.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// PaymentIntent is the processor-side authorization object.
type PaymentIntent struct {
	ID     string
	Status string
}

// Gateway abstracts the external payment processor.
type Gateway interface {
	// CreateCheckoutSession creates a hosted checkout session with an
	// authorization hold (manual capture).
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// GetCheckoutSession retrieves a checkout session by ID.
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	// GetPaymentIntent retrieves the current state of an authorization.
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	// CapturePaymentIntent converts an authorization hold into a transfer.
	CapturePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	// CancelPaymentIntent releases an uncaptured authorization hold.
	CancelPaymentIntent(ctx context.Context, id string) error
	// Refund issues a refund against a captured authorization.
	Refund(ctx context.Context, paymentIntentID string, metadata map[string]string) error
}
