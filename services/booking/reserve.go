package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "workhive/database/repository/booking"
	"workhive/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reserve inserts a pending_approval booking if no overlapping non-cancelled
// booking exists for the space. Overlapping ranges are caught by the count
// query; a racing reserve for the identical slot is caught by the unique slot
// index and surfaces as a conflict instead of a double booking.
func (s *DefaultBookingService) Reserve(ctx context.Context, userID string, req models.ReserveRequest) (*models.Booking, error) {
	if userID == "" {
		return nil, NewUnauthorizedError("missing caller identity")
	}

	space, err := s.Spaces.GetByID(req.SpaceID)
	if err != nil || space == nil {
		return nil, NewNotFoundError("Space not found")
	}

	hours, err := ComputeHours(req.StartTime, req.EndTime)
	if err != nil {
		return nil, &Error{Code: CodeInvalidState, Message: err.Error()}
	}
	if _, err := time.Parse("2006-01-02", req.BookingDate); err != nil {
		return nil, &Error{Code: CodeInvalidState, Message: fmt.Sprintf("invalid booking date %q", req.BookingDate)}
	}

	overlaps, err := s.Bookings.CountOverlapping(req.SpaceID, req.BookingDate, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, NewTransactionError(err)
	}
	if overlaps > 0 {
		return nil, NewConflictError("Slot is no longer available due to conflicts")
	}

	now := time.Now()
	deadline := paymentDeadline(req.RequestInvoice, now)
	b := &models.Booking{
		ID:              uuid.New().String(),
		SpaceID:         space.ID,
		UserID:          userID,
		Status:          models.BookingStatusPendingApproval,
		BookingDate:     req.BookingDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Price:           roundCents(space.PricePerHour * hours),
		Currency:        space.Currency,
		RequestInvoice:  req.RequestInvoice,
		PaymentDeadline: &deadline,
	}

	if err := s.Bookings.Create(b); err != nil {
		if errors.Is(err, bookingRepo.ErrDuplicateSlot) {
			return nil, NewConflictError("Slot is no longer available due to conflicts")
		}
		return nil, NewTransactionError(err)
	}

	s.Logger.Info("booking reserved",
		zap.String("bookingID", b.ID),
		zap.String("spaceID", b.SpaceID),
		zap.String("userID", userID),
		zap.String("date", b.BookingDate))

	// Best-effort: a missed expiry task leaves a stale pending booking, it
	// never loses money.
	if err := s.Dispatcher.ScheduleExpiry(ctx, b.ID, deadline); err != nil {
		s.Logger.Warn("failed to schedule booking expiry", zap.String("bookingID", b.ID), zap.Error(err))
	}

	return b, nil
}
