package booking

import (
	"fmt"
	"time"

	"workhive/models"
)

// Payment deadlines after approval-eligible reservation. Invoice-requested
// bookings get the long deadline (invoicing paperwork takes time), everything
// else expires quickly to free the slot.
const (
	paymentDeadlineDefault = 2 * time.Hour
	paymentDeadlineInvoice = 72 * time.Hour
)

// paymentDeadline computes the deadline for completing payment.
func paymentDeadline(requestInvoice bool, now time.Time) time.Time {
	if requestInvoice {
		return now.Add(paymentDeadlineInvoice)
	}
	return now.Add(paymentDeadlineDefault)
}

// bookingStart parses the booking's date and start time into a timestamp.
func bookingStart(b *models.Booking) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", b.BookingDate+" "+b.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking start %s %s: %w", b.BookingDate, b.StartTime, err)
	}
	return t, nil
}
