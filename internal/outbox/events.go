// Package outbox persists domain events and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	driver "go.mongodb.org/mongo-driver/mongo"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/engine"
)

// Event is one outbox document awaiting delivery.
type Event struct {
	ID               string     `bson:"_id"`
	EventType        string     `bson:"eventType"`
	Topic            string     `bson:"topic"`
	PartitionKey     string     `bson:"partitionKey"`
	Payload          []byte     `bson:"payload"`
	CreatedAt        time.Time  `bson:"createdAt"`
	ClaimedAt        *time.Time `bson:"claimedAt,omitempty"`
	PublishedAt      *time.Time `bson:"publishedAt,omitempty"`
	Attempts         int        `bson:"attempts"`
	LastError        string     `bson:"lastError,omitempty"`
	QuarantinedAt    *time.Time `bson:"quarantinedAt,omitempty"`
	QuarantineReason string     `bson:"quarantineReason,omitempty"`
}

// topicCatalog routes each event type to its Kafka topic.
var topicCatalog = map[string]string{
	engine.EventRoutineRescheduled:  "routine_lifecycle",
	engine.EventRoutineRecalculated: "routine_lifecycle",
	engine.EventRoutineExtended:     "routine_lifecycle",
	engine.EventCycleCompleted:      "cycle_events",
}

// Recorder writes domain events into the outbox collection. It satisfies the
// engine's EventRecorder contract.
type Recorder struct {
	coll *driver.Collection
}

// NewRecorder constructs a Recorder over the outbox collection.
func NewRecorder(db *driver.Database) *Recorder {
	return &Recorder{coll: db.Collection("outbox")}
}

// Record serializes the payload and enqueues it for delivery.
func (r *Recorder) Record(ctx context.Context, eventType, partitionKey string, payload any) error {
	const op = "outbox.Record"

	topic, ok := topicCatalog[eventType]
	if !ok {
		return domain.Validationf(op, "unknown event type %q", eventType)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Validationf(op, "unserializable payload for %s: %v", eventType, err)
	}

	_, err = r.coll.InsertOne(ctx, Event{
		ID:           uuid.NewString(),
		EventType:    eventType,
		Topic:        topic,
		PartitionKey: partitionKey,
		Payload:      body,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return domain.E(op, domain.KindTransient, err)
	}
	return nil
}
