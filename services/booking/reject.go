package booking

import (
	"context"
	"fmt"

	"workhive/models"
	"workhive/services/notification"
	"workhive/services/payments"

	"go.uber.org/zap"
)

// Reject cancels a pending booking on behalf of the host, releasing the held
// funds. If the hold was already captured the funds come back as a refund.
// Processor failures do not block the database update; an orphaned hold is
// reconciled later rather than leaving the coworker waiting on a rejection.
func (s *DefaultBookingService) Reject(ctx context.Context, bookingID, callerID, reason string) error {
	if callerID == "" {
		return NewUnauthorizedError("missing caller identity")
	}
	if reason == "" {
		reason = "Rejected by host"
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
		return NewForbiddenError("You are not the host of this space")
	}

	if b.Status != models.BookingStatusPendingApproval {
		return NewInvalidStateError(fmt.Sprintf("Booking status is '%s', expected 'pending_approval'", b.Status))
	}

	if b.StripePaymentIntentID != "" {
		s.releaseHold(ctx, log, b, reason)
	} else {
		log.Info("no payment intent on booking, skipping processor call")
	}

	cancelled, err := s.Bookings.Cancel(bookingID, reason, true, []string{models.BookingStatusPendingApproval})
	if err != nil {
		return NewTransactionError(err)
	}
	if !cancelled {
		return NewInvalidStateError("Booking is no longer pending approval")
	}

	log.Info("booking rejected by host", zap.String("reason", reason))

	if err := s.Dispatcher.Dispatch(ctx, bookingID, notification.TypeRejection); err != nil {
		log.Warn("rejection notification enqueue failed", zap.Error(err))
	}

	return nil
}

// releaseHold undoes the processor-side authorization in a state-dependent
// way: cancel an uncaptured hold, refund a captured one, no-op an already
// cancelled one. Errors are logged only.
func (s *DefaultBookingService) releaseHold(ctx context.Context, log *zap.Logger, b *models.Booking, reason string) {
	pi, err := s.Gateway.GetPaymentIntent(ctx, b.StripePaymentIntentID)
	if err != nil {
		log.Error("failed to retrieve payment intent, continuing with rejection", zap.Error(err))
		return
	}

	switch pi.Status {
	case payments.IntentRequiresCapture:
		if err := s.Gateway.CancelPaymentIntent(ctx, pi.ID); err != nil {
			log.Error("failed to cancel payment intent, continuing with rejection", zap.Error(err))
			return
		}
	case payments.IntentCanceled:
		log.Info("payment intent already cancelled")
	case payments.IntentSucceeded:
		log.Warn("payment intent already captured, refunding instead of cancelling")
		if err := s.Gateway.Refund(ctx, pi.ID, map[string]string{
			"booking_id": b.ID,
			"reason":     "host_rejection",
		}); err != nil {
			log.Error("failed to refund captured payment, continuing with rejection", zap.Error(err))
			return
		}
	default:
		log.Warn("unexpected payment intent status, attempting cancellation", zap.String("status", pi.Status))
		if err := s.Gateway.CancelPaymentIntent(ctx, pi.ID); err != nil {
			log.Error("could not cancel payment intent", zap.String("status", pi.Status), zap.Error(err))
			return
		}
	}

	if p, err := s.Payments.GetByBookingID(b.ID); err == nil && p != nil {
		markErr := error(nil)
		if pi.Status == payments.IntentSucceeded {
			markErr = s.Payments.MarkRefunded(p.ID)
		} else {
			markErr = s.Payments.MarkCancelled(p.ID)
		}
		if markErr != nil {
			log.Warn("failed to update payment status after release", zap.Error(markErr))
		}
	}
}
