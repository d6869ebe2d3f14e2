package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"

	"example.com/routine/internal/domain"
)

// RoutineStore persists routine aggregates.
type RoutineStore struct {
	coll *driver.Collection
}

// NewRoutineStore constructs a RoutineStore.
func NewRoutineStore(db *driver.Database) *RoutineStore {
	return &RoutineStore{coll: db.Collection(CollRoutines)}
}

// Get fetches one routine by id.
func (s *RoutineStore) Get(ctx context.Context, routineID string) (*domain.Routine, error) {
	const op = "mongo.RoutineStore.Get"

	var routine domain.Routine
	err := s.coll.FindOne(ctx, bson.M{"_id": routineID}).Decode(&routine)
	if errors.Is(err, driver.ErrNoDocuments) {
		return nil, domain.E(op, domain.KindNotFound, domain.ErrRoutineNotFound)
	}
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return &routine, nil
}

// UpdateAggregates writes the recalculated projection: date bounds plus the
// full per-activity aggregate array.
func (s *RoutineStore) UpdateAggregates(ctx context.Context, routine *domain.Routine) error {
	const op = "mongo.RoutineStore.UpdateAggregates"

	res, err := s.coll.UpdateByID(ctx, routine.ID, bson.M{"$set": bson.M{
		"startsAt": routine.StartsAt,
		"lastDate": routine.LastDate,
		"allTasks": routine.AllTasks,
	}})
	if err != nil {
		return wrapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.E(op, domain.KindNotFound, domain.ErrRoutineNotFound)
	}
	return nil
}

// ShiftDates adds the offset to the routine's startsAt, lastDate, and every
// occurrence ref's startsAt inside allTasks, in one pipeline update.
func (s *RoutineStore) ShiftDates(ctx context.Context, routineID string, offset time.Duration) error {
	const op = "mongo.RoutineStore.ShiftDates"

	millis := offset.Milliseconds()
	pipeline := driver.Pipeline{bson.D{{Key: "$set", Value: bson.D{
		{Key: "startsAt", Value: bson.D{{Key: "$add", Value: bson.A{"$startsAt", millis}}}},
		{Key: "lastDate", Value: bson.D{{Key: "$add", Value: bson.A{"$lastDate", millis}}}},
		{Key: "allTasks", Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: "$allTasks"},
			{Key: "as", Value: "task"},
			{Key: "in", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{"$$task", bson.D{
				{Key: "ids", Value: bson.D{{Key: "$map", Value: bson.D{
					{Key: "input", Value: "$$task.ids"},
					{Key: "as", Value: "ref"},
					{Key: "in", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{"$$ref", bson.D{
						{Key: "startsAt", Value: bson.D{{Key: "$add", Value: bson.A{"$$ref.startsAt", millis}}}},
					}}}}},
				}}}},
			}}}}},
		}}}},
	}}}}

	res, err := s.coll.UpdateByID(ctx, routineID, pipeline)
	if err != nil {
		return wrapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.E(op, domain.KindNotFound, domain.ErrRoutineNotFound)
	}
	return nil
}
