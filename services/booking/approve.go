package booking

import (
	"context"
	"errors"
	"fmt"

	"workhive/models"
	"workhive/services/notification"
	"workhive/services/payments"
	"workhive/utils"

	"go.uber.org/zap"
)

// Approve captures the payment held for a pending booking and confirms it.
//
// The capture and the two database writes span systems with no shared
// transaction, so the flow tracks whether THIS invocation performed the
// capture: only then does a later failure owe a compensating refund. A hold
// that was already captured by a prior invocation is left alone on failure,
// since refunding it would undo a legitimately completed approval.
func (s *DefaultBookingService) Approve(ctx context.Context, bookingID, callerID string) error {
	if callerID == "" {
		return NewUnauthorizedError("missing caller identity")
	}

	log := s.Logger.With(zap.String("bookingID", bookingID), zap.String("callerID", callerID))

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil || b == nil {
		return NewNotFoundError("Booking not found")
	}

	space, err := s.Spaces.GetByID(b.SpaceID)
	if err != nil || space == nil {
		return NewNotFoundError("Space not found")
	}

	if space.HostID != callerID {
		log.Warn("approval rejected, caller is not the host", zap.String("hostID", space.HostID))
		return NewForbiddenError("You are not the host of this space")
	}

	if b.Status != models.BookingStatusPendingApproval {
		return NewInvalidStateError(fmt.Sprintf("Booking status is '%s', expected 'pending_approval'", b.Status))
	}

	payment, err := s.Payments.GetByBookingID(bookingID)
	if err != nil || payment == nil {
		return NewTransactionError(fmt.Errorf("no payment record for booking %s", bookingID))
	}

	paymentIntentID, err := s.resolvePaymentIntent(ctx, b, payment)
	if err != nil {
		return NewTransactionError(err)
	}

	// Capture. capturePerformed stays false on the idempotent already-captured
	// path: the money movement there is not attributable to this invocation.
	capturePerformed := false
	pi, err := s.Gateway.GetPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return NewTransactionError(err)
	}
	switch pi.Status {
	case payments.IntentRequiresCapture:
		if _, err := s.Gateway.CapturePaymentIntent(ctx, paymentIntentID); err != nil {
			return NewTransactionError(fmt.Errorf("capture failed: %w", err))
		}
		capturePerformed = true
	case payments.IntentSucceeded:
		log.Info("payment already captured, skipping capture")
	default:
		log.Warn("unexpected payment intent status, proceeding", zap.String("status", pi.Status))
	}

	// The payment row must read succeeded before the booking may be confirmed.
	if err := s.Payments.MarkSucceeded(payment.ID); err != nil {
		return s.compensate(ctx, log, capturePerformed, paymentIntentID, bookingID,
			fmt.Errorf("failed to mark payment succeeded: %w", err))
	}

	confirmed, err := s.Bookings.Confirm(bookingID)
	if err != nil {
		return s.compensate(ctx, log, capturePerformed, paymentIntentID, bookingID, err)
	}
	if !confirmed {
		return s.compensate(ctx, log, capturePerformed, paymentIntentID, bookingID,
			errors.New("booking is no longer pending approval"))
	}

	log.Info("booking confirmed", zap.Bool("capturePerformed", capturePerformed))

	if err := s.Dispatcher.Dispatch(ctx, bookingID, notification.TypeConfirmation); err != nil {
		log.Warn("confirmation notification enqueue failed", zap.Error(err))
	}

	return nil
}

// resolvePaymentIntent returns the booking's authorization reference,
// re-deriving it from the payment's checkout session when absent and caching
// the result back onto both rows. Read-through repair: safe to repeat.
func (s *DefaultBookingService) resolvePaymentIntent(ctx context.Context, b *models.Booking, payment *models.Payment) (string, error) {
	if b.StripePaymentIntentID != "" {
		return b.StripePaymentIntentID, nil
	}
	if payment.StripePaymentIntentID != "" {
		if err := s.Bookings.SetPaymentIntentID(b.ID, payment.StripePaymentIntentID); err != nil {
			s.Logger.Warn("failed to backfill payment intent on booking",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
		return payment.StripePaymentIntentID, nil
	}

	sessionID := payment.StripeSessionID
	if sessionID == "" {
		if client := utils.CacheClient; client != nil {
			sessionID, _ = client.Get(ctx, sessionCacheKey(b.ID)).Result()
		}
	}
	if sessionID == "" {
		return "", fmt.Errorf("booking %s has no payment session to resolve an authorization from", b.ID)
	}

	sess, err := s.Gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if sess.PaymentIntentID == "" {
		return "", fmt.Errorf("checkout session %s carries no payment intent", sessionID)
	}

	s.Logger.Info("resolved missing payment intent from checkout session",
		zap.String("bookingID", b.ID),
		zap.String("sessionID", sessionID),
		zap.String("paymentIntentID", sess.PaymentIntentID))

	if err := s.Bookings.SetPaymentIntentID(b.ID, sess.PaymentIntentID); err != nil {
		s.Logger.Warn("failed to backfill payment intent on booking",
			zap.String("bookingID", b.ID), zap.Error(err))
	}
	if err := s.Payments.SetPaymentIntentID(payment.ID, sess.PaymentIntentID); err != nil {
		s.Logger.Warn("failed to backfill payment intent on payment",
			zap.String("paymentID", payment.ID), zap.Error(err))
	}

	return sess.PaymentIntentID, nil
}

// compensate refunds the capture performed by this invocation, then returns the
// original failure. Refund failures are logged for manual intervention; the
// caller always learns the transaction failed, never that it maybe succeeded.
func (s *DefaultBookingService) compensate(ctx context.Context, log *zap.Logger, capturePerformed bool, paymentIntentID, bookingID string, cause error) error {
	if !capturePerformed {
		return NewTransactionError(cause)
	}

	log.Error("approval failed after capture, issuing compensating refund", zap.Error(cause))
	if err := s.Gateway.Refund(ctx, paymentIntentID, map[string]string{
		"booking_id": bookingID,
		"reason":     "approval_rollback",
	}); err != nil {
		log.Error("REFUND FAILED: manual intervention required",
			zap.String("paymentIntentID", paymentIntentID),
			zap.Error(err))
	}

	return NewTransactionError(cause)
}
