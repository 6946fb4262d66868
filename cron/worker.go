package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"workhive/config"
	bookingRepo "workhive/database/repository/booking"
	notificationRepo "workhive/database/repository/notification"
	spaceRepo "workhive/database/repository/space"
	userRepo "workhive/database/repository/user"
	"workhive/models"
	"workhive/services/booking"
	"workhive/services/notification"
	"workhive/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker processes queued notification deliveries and booking expiries.
type Worker struct {
	BookingSvc    booking.BookingService
	Bookings      bookingRepo.BookingRepository
	Spaces        spaceRepo.SpaceRepository
	Users         userRepo.UserRepository
	Notifications notificationRepo.NotificationRepository
	Logger        *zap.Logger
}

// InitWorker runs the async worker in background.
func InitWorker(w *Worker) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeNotificationDeliver, w.handleDeliver)
	mux.HandleFunc(notification.TypeBookingExpire, w.handleExpire)

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[Worker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleDeliver writes the user_notifications row for a booking transition and
// sends a push when the target has an FCM token. Every failure here is its own:
// the transition that enqueued the task already committed.
func (w *Worker) handleDeliver(ctx context.Context, task *asynq.Task) error {
	var p notification.DeliverPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		w.Logger.Error("invalid notification payload", zap.Error(err))
		return err
	}

	b, err := w.Bookings.GetByID(p.BookingID)
	if err != nil || b == nil {
		return fmt.Errorf("notification for unknown booking %s: %w", p.BookingID, err)
	}
	space, err := w.Spaces.GetByID(b.SpaceID)
	if err != nil || space == nil {
		return fmt.Errorf("notification for booking %s with unknown space: %w", p.BookingID, err)
	}

	targetID, title, content := composeNotification(p.Type, b, space)

	n := &models.Notification{
		ID:      uuid.New().String(),
		UserID:  targetID,
		Type:    "booking",
		Title:   title,
		Content: content,
		Metadata: map[string]any{
			"booking_id":   b.ID,
			"space_name":   space.Name,
			"event":        p.Type,
			"booking_date": b.BookingDate,
		},
	}
	if err := w.Notifications.Create(n); err != nil {
		return fmt.Errorf("failed to persist notification for booking %s: %w", b.ID, err)
	}

	w.sendPush(ctx, targetID, title, content, b.ID)

	w.Logger.Info("notification delivered",
		zap.String("bookingID", b.ID),
		zap.String("type", p.Type),
		zap.String("userID", targetID))
	return nil
}

// handleExpire runs the payment-deadline check scheduled at reservation time.
func (w *Worker) handleExpire(ctx context.Context, task *asynq.Task) error {
	var p notification.ExpirePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		w.Logger.Error("invalid expiry payload", zap.Error(err))
		return err
	}
	return w.BookingSvc.Expire(ctx, p.BookingID)
}

// composeNotification picks the target user and message for an event. Host
// actions notify the coworker; coworker actions notify the host.
func composeNotification(eventType string, b *models.Booking, space *models.Space) (targetID, title, content string) {
	when := fmt.Sprintf("%s %s-%s", b.BookingDate, b.StartTime, b.EndTime)
	switch eventType {
	case notification.TypeConfirmation:
		return b.UserID, "Booking Confirmed",
			fmt.Sprintf("Your booking for %q on %s has been approved and your payment completed.", space.Name, when)
	case notification.TypeRejection:
		return b.UserID, "Booking Rejected",
			fmt.Sprintf("Your booking for %q on %s was declined by the host. Any held funds have been released.", space.Name, when)
	case notification.TypeCancellation:
		return space.HostID, "Booking Cancelled",
			fmt.Sprintf("The booking for %q on %s was cancelled by the coworker.", space.Name, when)
	case notification.TypeExpiry:
		return b.UserID, "Booking Expired",
			fmt.Sprintf("Your booking for %q on %s expired because payment was not completed in time.", space.Name, when)
	default:
		return b.UserID, "Booking Update",
			fmt.Sprintf("Your booking for %q on %s was updated.", space.Name, when)
	}
}

// sendPush delivers an FCM push when possible. Best-effort only.
func (w *Worker) sendPush(ctx context.Context, userID, title, body, bookingID string) {
	if utils.FCMClient == nil {
		return
	}
	u, err := w.Users.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"booking_id": bookingID,
			"type":       "booking",
		},
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		w.Logger.Warn("push delivery failed", zap.String("userID", userID), zap.Error(err))
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Worker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
