package notification

// Task type names shared by the dispatcher and the background worker.
const (
	TypeNotificationDeliver = "notification:deliver"
	TypeBookingExpire       = "booking:expire"
)

// Notification event types.
const (
	TypeConfirmation = "confirmation"
	TypeRejection    = "rejection"
	TypeCancellation = "cancellation"
	TypeExpiry       = "expiry"
)

// DeliverPayload is the payload of a notification:deliver task.
type DeliverPayload struct {
	BookingID string `json:"booking_id"`
	Type      string `json:"type"`
}

// ExpirePayload is the payload of a booking:expire task.
type ExpirePayload struct {
	BookingID string `json:"booking_id"`
}
