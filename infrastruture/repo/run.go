package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ i.RunRepo = &RunRepo{}

// RunRepo stores finished simulation reports in MongoDB.
type RunRepo struct {
	collection *mongo.Collection
}

// NewRunRepo creates a new RunRepo with the given MongoDB client, database name, and collection name.
func NewRunRepo(client *mongo.Client, dbName, collectionName string) *RunRepo {
	return &RunRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save inserts or replaces a report.
func (r *RunRepo) Save(ctx context.Context, report *dmn.RunReport) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": report.ID}, report, opts); err != nil {
		return fmt.Errorf("saving run report %s: %w", report.ID, err)
	}
	return nil
}

// ByID retrieves a report.
func (r *RunRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.RunReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var report dmn.RunReport
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrRunNotFound
		}
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return &report, nil
}

// Recent returns up to limit reports, newest first.
func (r *RunRepo) Recent(ctx context.Context, limit int64) ([]*dmn.RunReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "finishedAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing run reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*dmn.RunReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decoding run reports: %w", err)
	}
	return reports, nil
}
