package booking

import (
	"context"
	"fmt"
	"time"

	"workhive/models"
	"workhive/services/notification"
	"workhive/services/payments"

	"go.uber.org/zap"
)

// Cancellations at least this far before the booking start get a full refund
// of captured funds.
const fullRefundWindow = 24 * time.Hour

// Cancel lets the requesting coworker cancel their own booking. Uncaptured
// holds are released unconditionally; captured payments are refunded only
// inside the refund window.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, callerID string) (*CancellationResult, error) {
	if callerID == "" {
		return nil, NewUnauthorizedError("missing caller identity")
	}

	log := s.Logger.With(zap.String("bookingID", bookingID), zap.String("callerID", callerID))

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil || b == nil {
		return nil, NewNotFoundError("Booking not found")
	}
	if b.UserID != callerID {
		return nil, NewForbiddenError("You are not the owner of this booking")
	}

	cancellable := map[string]bool{
		models.BookingStatusPending:         true,
		models.BookingStatusPendingApproval: true,
		models.BookingStatusConfirmed:       true,
	}
	if !cancellable[b.Status] {
		return nil, NewInvalidStateError(fmt.Sprintf("Booking status is '%s' and cannot be cancelled", b.Status))
	}

	result := &CancellationResult{BookingID: bookingID}

	if b.StripePaymentIntentID != "" {
		pi, err := s.Gateway.GetPaymentIntent(ctx, b.StripePaymentIntentID)
		if err != nil {
			log.Error("failed to retrieve payment intent, continuing with cancellation", zap.Error(err))
		} else {
			switch pi.Status {
			case payments.IntentRequiresCapture:
				if err := s.Gateway.CancelPaymentIntent(ctx, pi.ID); err != nil {
					log.Error("failed to release hold, continuing with cancellation", zap.Error(err))
				} else {
					result.Released = true
					s.markPayment(log, bookingID, models.PaymentStatusCancelled)
				}
			case payments.IntentSucceeded:
				if s.withinRefundWindow(b) {
					if err := s.Gateway.Refund(ctx, pi.ID, map[string]string{
						"booking_id": b.ID,
						"reason":     "coworker_cancellation",
					}); err != nil {
						log.Error("failed to refund captured payment, continuing with cancellation", zap.Error(err))
					} else {
						result.Refunded = true
						s.markPayment(log, bookingID, models.PaymentStatusRefunded)
					}
				} else {
					log.Info("cancellation inside refund cutoff, captured funds kept")
				}
			case payments.IntentCanceled:
				result.Released = true
			default:
				log.Warn("unexpected payment intent status on cancellation", zap.String("status", pi.Status))
			}
		}
	}

	cancelled, err := s.Bookings.Cancel(bookingID, "Cancelled by coworker", false, []string{
		models.BookingStatusPending,
		models.BookingStatusPendingApproval,
		models.BookingStatusConfirmed,
	})
	if err != nil {
		return nil, NewTransactionError(err)
	}
	if !cancelled {
		return nil, NewInvalidStateError("Booking was already finalized")
	}

	log.Info("booking cancelled by coworker",
		zap.Bool("refunded", result.Refunded),
		zap.Bool("released", result.Released))

	if err := s.Dispatcher.Dispatch(ctx, bookingID, notification.TypeCancellation); err != nil {
		log.Warn("cancellation notification enqueue failed", zap.Error(err))
	}

	return result, nil
}

// Expire cancels a booking whose payment deadline passed while still pending.
// Invoked from the background worker at the deadline scheduled on reservation.
func (s *DefaultBookingService) Expire(ctx context.Context, bookingID string) error {
	log := s.Logger.With(zap.String("bookingID", bookingID))

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil || b == nil {
		// Nothing to expire; the task is done.
		return nil
	}
	if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusPendingApproval {
		return nil
	}

	// An uncaptured hold left behind is released so the coworker's funds free up.
	if b.StripePaymentIntentID != "" {
		pi, err := s.Gateway.GetPaymentIntent(ctx, b.StripePaymentIntentID)
		if err == nil && pi.Status == payments.IntentRequiresCapture {
			if err := s.Gateway.CancelPaymentIntent(ctx, pi.ID); err != nil {
				log.Error("failed to release hold on expiry", zap.Error(err))
			} else {
				s.markPayment(log, bookingID, models.PaymentStatusCancelled)
			}
		}
	}

	cancelled, err := s.Bookings.Cancel(bookingID, "Payment deadline expired", false, []string{
		models.BookingStatusPending,
		models.BookingStatusPendingApproval,
	})
	if err != nil {
		return fmt.Errorf("failed to expire booking %s: %w", bookingID, err)
	}
	if !cancelled {
		return nil
	}

	log.Info("booking expired, payment deadline passed")

	if err := s.Dispatcher.Dispatch(ctx, bookingID, notification.TypeExpiry); err != nil {
		log.Warn("expiry notification enqueue failed", zap.Error(err))
	}
	return nil
}

// Get returns a booking visible to the caller: the requester or the host.
func (s *DefaultBookingService) Get(ctx context.Context, bookingID, callerID string) (*models.Booking, error) {
	if callerID == "" {
		return nil, NewUnauthorizedError("missing caller identity")
	}

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil || b == nil {
		return nil, NewNotFoundError("Booking not found")
	}
	if b.UserID == callerID {
		return b, nil
	}

	space, err := s.Spaces.GetByID(b.SpaceID)
	if err != nil || space == nil || space.HostID != callerID {
		return nil, NewForbiddenError("You do not have access to this booking")
	}
	return b, nil
}

func (s *DefaultBookingService) withinRefundWindow(b *models.Booking) bool {
	start, err := bookingStart(b)
	if err != nil {
		s.Logger.Warn("could not parse booking start, denying refund", zap.String("bookingID", b.ID), zap.Error(err))
		return false
	}
	return time.Until(start) >= fullRefundWindow
}

func (s *DefaultBookingService) markPayment(log *zap.Logger, bookingID, status string) {
	p, err := s.Payments.GetByBookingID(bookingID)
	if err != nil || p == nil {
		return
	}
	switch status {
	case models.PaymentStatusRefunded:
		err = s.Payments.MarkRefunded(p.ID)
	case models.PaymentStatusCancelled:
		err = s.Payments.MarkCancelled(p.ID)
	}
	if err != nil {
		log.Warn("failed to update payment status", zap.String("status", status), zap.Error(err))
	}
}
