package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo creates a new instance of PaymentRepository using MongoDB.
func NewMongoPaymentRepo() PaymentRepository {
	coll := database.DB().Collection("payments")
	repo := &MongoPaymentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create payment indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "stripe_session_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new payment document.
func (r *MongoPaymentRepo) Create(p *models.Payment) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByBookingID retrieves the payment owned by a booking.
func (r *MongoPaymentRepo) GetByBookingID(bookingID string) (*models.Payment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var p models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to fetch payment for booking %s: %w", bookingID, err)
	}
	return &p, nil
}

func (r *MongoPaymentRepo) setStatus(id, status string, extra bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	set := bson.M{
		"payment_status": status,
		"updated_at":     time.Now(),
	}
	for k, v := range extra {
		set[k] = v
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update payment %s to %s: %w", id, status, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("payment with id %s not found", id)
	}
	return nil
}

// MarkSucceeded records a captured payment.
func (r *MongoPaymentRepo) MarkSucceeded(id string) error {
	return r.setStatus(id, models.PaymentStatusSucceeded, bson.M{"captured_at": time.Now()})
}

// MarkRefunded records a compensating refund.
func (r *MongoPaymentRepo) MarkRefunded(id string) error {
	return r.setStatus(id, models.PaymentStatusRefunded, bson.M{"refunded_at": time.Now()})
}

// MarkCancelled records a released authorization.
func (r *MongoPaymentRepo) MarkCancelled(id string) error {
	return r.setStatus(id, models.PaymentStatusCancelled, nil)
}

// SetPaymentIntentID persists the Stripe authorization reference onto the payment.
func (r *MongoPaymentRepo) SetPaymentIntentID(id, paymentIntentID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"stripe_payment_intent_id": paymentIntentID,
		"updated_at":               time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set payment intent on payment %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("payment with id %s not found", id)
	}
	return nil
}
