package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway against the Stripe API. The API key is set
// globally in main via stripe.Key.
type StripeGateway struct {
	Logger *zap.Logger
}

// NewStripeGateway creates a new Stripe-backed Gateway.
func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Logger: logger}
}

// CreateCheckoutSession creates a hosted checkout session in manual-capture mode.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(p.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Booking: " + p.SpaceName),
						Description: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(p.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			CaptureMethod: stripe.String("manual"),
		},
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	out := &CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}

	g.Logger.Info("stripe checkout session created",
		zap.String("sessionID", sess.ID),
		zap.String("bookingID", p.BookingID),
		zap.Int64("amountCents", p.AmountCents))
	return out, nil
}

// GetCheckoutSession retrieves a checkout session by ID.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	sess, err := session.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session %s: %w", id, err)
	}

	out := &CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

// GetPaymentIntent retrieves the current state of an authorization.
func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve payment intent %s: %w", id, err)
	}
	return &PaymentIntent{ID: pi.ID, Status: string(pi.Status)}, nil
}

// CapturePaymentIntent converts an authorization hold into a transfer of funds.
func (g *StripeGateway) CapturePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentCaptureParams{Params: stripe.Params{Context: ctx}}
	pi, err := paymentintent.Capture(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to capture payment intent %s: %w", id, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("stripe: capture of %s returned status %s", id, pi.Status)
	}

	g.Logger.Info("stripe payment intent captured", zap.String("paymentIntentID", id))
	return &PaymentIntent{ID: pi.ID, Status: string(pi.Status)}, nil
}

// CancelPaymentIntent releases an uncaptured authorization hold.
func (g *StripeGateway) CancelPaymentIntent(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCancelParams{
		Params:             stripe.Params{Context: ctx},
		CancellationReason: stripe.String("requested_by_customer"),
	}
	if _, err := paymentintent.Cancel(id, params); err != nil {
		return fmt.Errorf("stripe: failed to cancel payment intent %s: %w", id, err)
	}

	g.Logger.Info("stripe payment intent cancelled, funds released", zap.String("paymentIntentID", id))
	return nil
}

// Refund issues a refund against a captured authorization.
func (g *StripeGateway) Refund(ctx context.Context, paymentIntentID string, metadata map[string]string) error {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(paymentIntentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("stripe: failed to refund payment intent %s: %w", paymentIntentID, err)
	}

	g.Logger.Info("stripe refund created", zap.String("paymentIntentID", paymentIntentID))
	return nil
}
