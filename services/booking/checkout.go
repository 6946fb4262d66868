package booking

import (
	"context"
	"fmt"
	"time"

	"workhive/models"
	"workhive/services/payments"
	"workhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// How long a checkout session reference stays cached for approval-time lookup.
const sessionCacheTTL = 24 * time.Hour

func sessionCacheKey(bookingID string) string {
	return "checkout:session:" + bookingID
}

// Checkout creates a Stripe checkout session holding (not capturing) the buyer
// total, and records the payment row. On processor failure nothing else is
// touched; the booking stays reservable for retry.
func (s *DefaultBookingService) Checkout(ctx context.Context, bookingID, userID, origin string) (*models.CheckoutResult, error) {
	if userID == "" {
		return nil, NewUnauthorizedError("missing caller identity")
	}

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil || b == nil {
		return nil, NewNotFoundError("Booking not found")
	}
	if b.UserID != userID {
		return nil, NewForbiddenError("You are not the owner of this booking")
	}
	if b.Status != models.BookingStatusPendingApproval && b.Status != models.BookingStatusPending {
		return nil, NewInvalidStateError(fmt.Sprintf("Booking status is '%s', expected a pending state", b.Status))
	}

	space, err := s.Spaces.GetByID(b.SpaceID)
	if err != nil || space == nil {
		return nil, NewNotFoundError("Space not found")
	}

	breakdown := ComputeBreakdown(b.Price)

	base := origin
	if base == "" {
		base = s.CheckoutRedirectURL
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		BookingID:   b.ID,
		SpaceName:   space.Name,
		Description: fmt.Sprintf("Booking for %s, %s-%s", b.BookingDate, b.StartTime, b.EndTime),
		AmountCents: AmountCents(breakdown.BuyerTotal),
		Currency:    b.Currency,
		SuccessURL:  base + "/bookings?session_id={CHECKOUT_SESSION_ID}&success=true",
		CancelURL:   base + "/bookings?cancelled=true",
		Metadata: map[string]string{
			"booking_id": b.ID,
			"space_id":   b.SpaceID,
			"user_id":    b.UserID,
			"host_id":    space.HostID,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		ID:                    uuid.New().String(),
		BookingID:             b.ID,
		UserID:                b.UserID,
		Amount:                breakdown.BuyerTotal,
		Currency:              b.Currency,
		PaymentStatus:         models.PaymentStatusPending,
		Method:                "stripe",
		StripeSessionID:       sess.ID,
		StripePaymentIntentID: sess.PaymentIntentID,
		HostAmount:            breakdown.HostNetPayout,
		PlatformFee:           breakdown.PlatformRevenue,
	}
	if err := s.Payments.Create(p); err != nil {
		return nil, NewTransactionError(err)
	}

	if client := utils.CacheClient; client != nil {
		if err := client.Set(ctx, sessionCacheKey(b.ID), sess.ID, sessionCacheTTL).Err(); err != nil {
			s.Logger.Warn("failed to cache checkout session", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}

	// The session's payment intent, when already materialized, is persisted on
	// the booking so approval does not need to re-derive it.
	if sess.PaymentIntentID != "" {
		if err := s.Bookings.SetPaymentIntentID(b.ID, sess.PaymentIntentID); err != nil {
			s.Logger.Warn("failed to persist payment intent on booking",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}

	s.Logger.Info("checkout session created",
		zap.String("bookingID", b.ID),
		zap.String("sessionID", sess.ID),
		zap.Float64("buyerTotal", breakdown.BuyerTotal))

	return &models.CheckoutResult{
		PaymentURL: sess.URL,
		SessionID:  sess.ID,
		Breakdown:  breakdown,
	}, nil
}
