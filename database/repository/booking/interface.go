package bookingRepo

import (
	"errors"

	"workhive/models"
)

// ErrDuplicateSlot is returned by Create when another active booking already
// holds the exact same slot key (space, date, start, end).
var ErrDuplicateSlot = errors.New("slot is already booked")

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	// Create inserts a new booking record. Returns ErrDuplicateSlot when an
	// active booking with the identical slot key already exists.
	Create(b *models.Booking) error
	// GetByID retrieves a booking by its unique ID.
	GetByID(id string) (*models.Booking, error)
	// CountOverlapping counts non-cancelled bookings for a space whose time
	// range intersects [startTime, endTime) on the given date, excluding
	// excludeID when non-empty.
	CountOverlapping(spaceID, date, startTime, endTime, excludeID string) (int64, error)
	// SetPaymentIntentID persists the Stripe authorization reference.
	SetPaymentIntentID(id, paymentIntentID string) error
	// Confirm transitions a booking from pending_approval to confirmed.
	// The update is conditional on the current status so a concurrent
	// approval loses cleanly; it returns false when no row matched.
	Confirm(id string) (bool, error)
	// Cancel transitions a booking to cancelled, conditional on its current
	// status being one of from. Returns false when no row matched.
	Cancel(id, reason string, byHost bool, from []string) (bool, error)
}
