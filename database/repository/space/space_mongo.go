package spaceRepo

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

// SpaceRepository defines methods for space data access. Spaces are read-only
// from the booking flow's perspective.
type SpaceRepository interface {
	// GetByID retrieves a space by its unique ID.
	GetByID(id string) (*models.Space, error)
}

// MongoSpaceRepo implements SpaceRepository using MongoDB.
type MongoSpaceRepo struct {
	coll *mongo.Collection
}

// NewMongoSpaceRepo creates a new instance of SpaceRepository using MongoDB.
func NewMongoSpaceRepo() SpaceRepository {
	coll := database.DB().Collection("spaces")
	repo := &MongoSpaceRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create space indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoSpaceRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "host_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a space by its unique ID.
func (r *MongoSpaceRepo) GetByID(id string) (*models.Space, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var s models.Space
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to fetch space with id %s: %w", id, err)
	}
	return &s, nil
}
