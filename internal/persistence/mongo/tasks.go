package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/routine/internal/domain"
)

// TaskStore persists task occurrences. This collection is the source of
// truth for occurrence dates and statuses; routine aggregates project it.
type TaskStore struct {
	coll *driver.Collection
}

// NewTaskStore constructs a TaskStore.
func NewTaskStore(db *driver.Database) *TaskStore {
	return &TaskStore{coll: db.Collection(CollTasks)}
}

// InsertMany persists a batch of materialized occurrences.
func (s *TaskStore) InsertMany(ctx context.Context, tasks []domain.Task) error {
	const op = "mongo.TaskStore.InsertMany"

	if len(tasks) == 0 {
		return nil
	}
	docs := make([]any, len(tasks))
	for i, task := range tasks {
		docs[i] = task
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return wrapErr(op, err)
}

// ListByRoutine returns every occurrence owned by the routine, soft-deleted
// ones included, ordered by start date.
func (s *TaskStore) ListByRoutine(ctx context.Context, routineID string) ([]domain.Task, error) {
	const op = "mongo.TaskStore.ListByRoutine"

	cursor, err := s.coll.Find(ctx, bson.M{"routineId": routineID},
		options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}}))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	var tasks []domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, wrapErr(op, err)
	}
	return tasks, nil
}

// ShiftByRoutine adds the offset to startsAt and expiresAt of every
// occurrence owned by the routine.
func (s *TaskStore) ShiftByRoutine(ctx context.Context, routineID string, offset time.Duration) error {
	const op = "mongo.TaskStore.ShiftByRoutine"

	millis := offset.Milliseconds()
	pipeline := driver.Pipeline{bson.D{{Key: "$set", Value: bson.D{
		{Key: "startsAt", Value: bson.D{{Key: "$add", Value: bson.A{"$startsAt", millis}}}},
		{Key: "expiresAt", Value: bson.D{{Key: "$add", Value: bson.A{"$expiresAt", millis}}}},
	}}}}

	_, err := s.coll.UpdateMany(ctx, bson.M{"routineId": routineID}, pipeline)
	return wrapErr(op, err)
}

// SoftDelete marks one occurrence deleted without removing the document.
// The filter includes the owning routine so a mismatched pair matches
// nothing instead of deleting another routine's occurrence.
func (s *TaskStore) SoftDelete(ctx context.Context, routineID, taskID string, when time.Time) error {
	const op = "mongo.TaskStore.SoftDelete"

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": taskID, "routineId": routineID},
		bson.M{"$set": bson.M{
			"status":    domain.TaskStatusDeleted,
			"deletedOn": when,
		}})
	if err != nil {
		return wrapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.E(op, domain.KindNotFound, domain.ErrRoutineNotFound)
	}
	return nil
}

// CountActiveInWindow counts non-deleted active occurrences for one user and
// body region starting inside [from, to).
func (s *TaskStore) CountActiveInWindow(ctx context.Context, userID, part string, from, to time.Time) (int, error) {
	const op = "mongo.TaskStore.CountActiveInWindow"

	count, err := s.coll.CountDocuments(ctx, bson.M{
		"userId":    userID,
		"part":      part,
		"status":    domain.TaskStatusActive,
		"deletedOn": bson.M{"$exists": false},
		"startsAt":  bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return 0, wrapErr(op, err)
	}
	return int(count), nil
}
