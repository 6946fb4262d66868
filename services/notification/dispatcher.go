package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqDispatcher implements Dispatcher on top of an asynq client.
type AsynqDispatcher struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewAsynqDispatcher creates a queue-backed dispatcher.
func NewAsynqDispatcher(client *asynq.Client, logger *zap.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{Client: client, Logger: logger}
}

// Dispatch enqueues a notification:deliver task for the booking.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, bookingID, eventType string) error {
	payload, err := json.Marshal(DeliverPayload{BookingID: bookingID, Type: eventType})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	task := asynq.NewTask(TypeNotificationDeliver, payload)
	info, err := d.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue notification for booking %s: %w", bookingID, err)
	}

	d.Logger.Debug("notification enqueued",
		zap.String("bookingID", bookingID),
		zap.String("type", eventType),
		zap.String("taskID", info.ID))
	return nil
}

// ScheduleExpiry enqueues a booking:expire task to run at the payment deadline.
func (d *AsynqDispatcher) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	payload, err := json.Marshal(ExpirePayload{BookingID: bookingID})
	if err != nil {
		return fmt.Errorf("failed to marshal expiry payload: %w", err)
	}

	task := asynq.NewTask(TypeBookingExpire, payload)
	info, err := d.Client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.MaxRetry(3))
	if err != nil {
		return fmt.Errorf("failed to schedule expiry for booking %s: %w", bookingID, err)
	}

	d.Logger.Debug("booking expiry scheduled",
		zap.String("bookingID", bookingID),
		zap.Time("at", at),
		zap.String("taskID", info.ID))
	return nil
}
