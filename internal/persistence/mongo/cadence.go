package mongo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/routine/internal/domain"
)

// NextActionStore persists per-user cadence records, one per cycle type.
type NextActionStore struct {
	coll *driver.Collection
}

// NewNextActionStore constructs a NextActionStore.
func NewNextActionStore(db *driver.Database) *NextActionStore {
	return &NextActionStore{coll: db.Collection(CollNextActions)}
}

// Get fetches the cadence record for a user and cycle type.
func (s *NextActionStore) Get(ctx context.Context, userID string, cycleType domain.CycleType) (*domain.NextAction, error) {
	const op = "mongo.NextActionStore.Get"

	var record domain.NextAction
	err := s.coll.FindOne(ctx, bson.M{"userId": userID, "type": cycleType}).Decode(&record)
	if errors.Is(err, driver.ErrNoDocuments) {
		return nil, domain.E(op, domain.KindNotFound, err)
	}
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return &record, nil
}

// Upsert writes the cadence record, creating it on first completion.
func (s *NextActionStore) Upsert(ctx context.Context, record *domain.NextAction) error {
	const op = "mongo.NextActionStore.Upsert"

	filter := bson.M{"userId": record.UserID, "type": record.Type}
	update := bson.M{
		"$set": bson.M{
			"date":  record.Date,
			"parts": record.Parts,
		},
		"$setOnInsert": bson.M{
			"_id":    uuid.NewString(),
			"userId": record.UserID,
			"type":   record.Type,
		},
	}

	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return wrapErr(op, err)
}
