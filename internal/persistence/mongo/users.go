package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/routine/internal/domain"
)

// UserStore exposes the streak slice of the user document.
type UserStore struct {
	coll *driver.Collection
}

// NewUserStore constructs a UserStore.
func NewUserStore(db *driver.Database) *UserStore {
	return &UserStore{coll: db.Collection(CollUsers)}
}

// StreakState reads the streak counters and last-increment dates. A missing
// user document yields a nil state, not an error: streaks simply have not
// started yet.
func (s *UserStore) StreakState(ctx context.Context, userID string) (*domain.StreakState, error) {
	const op = "mongo.UserStore.StreakState"

	var doc struct {
		ID          string               `bson:"_id"`
		Streaks     domain.Streaks       `bson:"streaks"`
		StreakDates map[string]time.Time `bson:"streakDates"`
	}
	err := s.coll.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"streaks": 1, "streakDates": 1})).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(op, err)
	}

	return &domain.StreakState{
		UserID:      doc.ID,
		Streaks:     doc.Streaks,
		StreakDates: doc.StreakDates,
	}, nil
}

// IncrementStreak bumps the counter for one body region and records the
// local-midnight day it was advanced.
func (s *UserStore) IncrementStreak(ctx context.Context, userID, part string, day time.Time) error {
	const op = "mongo.UserStore.IncrementStreak"

	field, ok := domain.StreakField(part)
	if !ok {
		return domain.Validationf(op, "unknown body region %q", part)
	}

	_, err := s.coll.UpdateByID(ctx, userID, bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"streakDates." + part: day},
	}, options.Update().SetUpsert(true))
	return wrapErr(op, err)
}
