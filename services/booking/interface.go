package booking

import (
	"context"

	bookingRepo "workhive/database/repository/booking"
	paymentRepo "workhive/database/repository/payment"
	spaceRepo "workhive/database/repository/space"
	"workhive/models"
	"workhive/services/notification"
	"workhive/services/payments"

	"go.uber.org/zap"
)

// BookingService defines the booking lifecycle operations.
type BookingService interface {
	// Reserve atomically reserves a time slot against overlapping bookings.
	Reserve(ctx context.Context, userID string, req models.ReserveRequest) (*models.Booking, error)
	// Checkout creates a payment-processor checkout session (authorization
	// hold) for a reserved booking and returns the redirect URL.
	Checkout(ctx context.Context, bookingID, userID, origin string) (*models.CheckoutResult, error)
	// Approve captures the held payment and confirms the booking. Caller must
	// be the host of the booked space.
	Approve(ctx context.Context, bookingID, callerID string) error
	// Reject releases (or refunds) the held payment and cancels the booking.
	Reject(ctx context.Context, bookingID, callerID, reason string) error
	// Cancel lets the requesting coworker cancel their own booking, releasing
	// or refunding funds per the refund policy.
	Cancel(ctx context.Context, bookingID, callerID string) (*CancellationResult, error)
	// Expire cancels a booking whose payment deadline has passed unpaid.
	Expire(ctx context.Context, bookingID string) error
	// Get returns a booking visible to the caller (requester or host).
	Get(ctx context.Context, bookingID, callerID string) (*models.Booking, error)
}

// CancellationResult reports what happened to the held funds on cancellation.
type CancellationResult struct {
	BookingID string `json:"booking_id"`
	Refunded  bool   `json:"refunded"`
	Released  bool   `json:"released"`
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings   bookingRepo.BookingRepository
	Spaces     spaceRepo.SpaceRepository
	Payments   paymentRepo.PaymentRepository
	Gateway    payments.Gateway
	Dispatcher notification.Dispatcher
	Logger     *zap.Logger

	// CheckoutRedirectURL is the front-end base URL used when the request
	// carries no origin.
	CheckoutRedirectURL string
}
