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

var _ i.OperatorRepo = &OperatorRepo{}

// OperatorRepo handles the persistence of operators.
type OperatorRepo struct {
	collection *mongo.Collection
}

// NewOperatorRepo creates a new OperatorRepo with the given MongoDB client, database name, and collection name.
func NewOperatorRepo(client *mongo.Client, dbName, collectionName string) *OperatorRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &OperatorRepo{
		collection: collection,
	}
}

// EnsureIndexes makes usernames unique so concurrent registrations conflict.
func (o *OperatorRepo) EnsureIndexes(ctx context.Context) error {
	_, err := o.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Save inserts or updates an operator in the repository.
// If the operator already exists, it updates the existing record.
// If the operator does not exist, it adds a new record.
func (o *OperatorRepo) Save(operator *dmn.Operator) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	filter := bson.M{"_id": operator.ID}
	update := bson.M{
		"$set": bson.M{
			"username":     operator.Username,
			"passwordHash": operator.PasswordHash,
			"updatedAt":    time.Now(),
		},
		"$setOnInsert": bson.M{"createdAt": operator.CreatedAt},
	}

	opts := options.Update().SetUpsert(true)
	_, err := o.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dmn.ErrUsernameConflict
		}
		return fmt.Errorf("unexpected error: %w", err)
	}

	return nil
}

// ByID retrieves an operator by ID.
func (o *OperatorRepo) ByID(id uuid.UUID) (*dmn.Operator, error) {
	return o.findOne(bson.M{"_id": id})
}

// ByUsername retrieves an operator by username.
func (o *OperatorRepo) ByUsername(username string) (*dmn.Operator, error) {
	return o.findOne(bson.M{"username": username})
}

func (o *OperatorRepo) findOne(filter bson.M) (*dmn.Operator, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var operator dmn.Operator
	if err := o.collection.FindOne(ctx, filter).Decode(&operator); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return &operator, nil
}
