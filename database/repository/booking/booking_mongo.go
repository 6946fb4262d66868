package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"workhive/database"
	"workhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.DB().Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	// The partial unique index on the slot key closes the window between the
	// overlap count and the insert: two racing reserves for the identical slot
	// cannot both commit, the loser gets a duplicate key error.
	activeStatuses := bson.M{"$in": []string{
		models.BookingStatusPending,
		models.BookingStatusPendingApproval,
		models.BookingStatusConfirmed,
	}}
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{
				{Key: "space_id", Value: 1},
				{Key: "booking_date", Value: 1},
				{Key: "start_time", Value: 1},
				{Key: "end_time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": activeStatuses}),
		},
		{Keys: bson.D{{Key: "space_id", Value: 1}, {Key: "booking_date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(b *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(id string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &b, nil
}

// CountOverlapping counts non-cancelled bookings intersecting the given range.
// Times are zero-padded "HH:MM" strings, so lexicographic comparison is
// equivalent to chronological comparison.
func (r *MongoBookingRepo) CountOverlapping(spaceID, date, startTime, endTime, excludeID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"space_id":     spaceID,
		"booking_date": date,
		"status": bson.M{"$in": []string{
			models.BookingStatusPending,
			models.BookingStatusPendingApproval,
			models.BookingStatusConfirmed,
		}},
		"start_time": bson.M{"$lt": endTime},
		"end_time":   bson.M{"$gt": startTime},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

// SetPaymentIntentID persists the Stripe authorization reference onto the booking.
func (r *MongoBookingRepo) SetPaymentIntentID(id, paymentIntentID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"stripe_payment_intent_id": paymentIntentID,
		"updated_at":               time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set payment intent on booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking with id %s not found", id)
	}
	return nil
}

// Confirm transitions a booking from pending_approval to confirmed. The filter
// includes the expected status so that two concurrent approvals cannot both
// succeed.
func (r *MongoBookingRepo) Confirm(id string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.BookingStatusPendingApproval}
	update := bson.M{"$set": bson.M{
		"status":     models.BookingStatusConfirmed,
		"updated_at": time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking %s: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}

// Cancel transitions a booking to cancelled, conditional on its current status.
func (r *MongoBookingRepo) Cancel(id, reason string, byHost bool, from []string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{
		"status":              models.BookingStatusCancelled,
		"cancellation_reason": reason,
		"cancelled_by_host":   byHost,
		"cancelled_at":        now,
		"updated_at":          now,
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking %s: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}
