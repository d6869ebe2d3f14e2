package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Dispatcher drains the outbox collection and delivers events to Kafka.
// A single dispatcher instance is assumed per deployment; claiming is a
// bookkeeping marker, not a distributed lock.
type Dispatcher struct {
	coll             *driver.Collection
	producer         messageWriter
	pollInterval     time.Duration
	batchSize        int
	maxAttempts      int
	log              zerolog.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(db *driver.Database, producer messageWriter, pollInterval time.Duration, batchSize, maxAttempts int, log zerolog.Logger) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Dispatcher{
		coll:             db.Collection("outbox"),
		producer:         producer,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		maxAttempts:      maxAttempts,
		log:              log,
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error().Err(err).Msg("outbox dispatch failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the dispatcher has stopped.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	start := time.Now()

	events, err := d.fetchAndClaim(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	if err := d.deliver(ctx, events); err != nil {
		d.log.Warn().Err(err).Int("events", len(events)).Msg("outbox delivery failure")
		failedCounter.Add(float64(len(events)))
		return d.recordFailure(ctx, events, err.Error())
	}

	deliveredCounter.Add(float64(len(events)))
	return d.markPublished(ctx, events)
}

func (d *Dispatcher) fetchAndClaim(ctx context.Context) ([]Event, error) {
	filter := bson.M{
		"publishedAt":   bson.M{"$exists": false},
		"quarantinedAt": bson.M{"$exists": false},
	}

	cursor, err := d.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(d.batchSize)))
	if err != nil {
		return nil, err
	}
	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	_, err = d.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": eventIDs(events)}},
		bson.M{"$set": bson.M{"claimedAt": now}})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *Dispatcher) deliver(ctx context.Context, events []Event) error {
	batches := make(map[string][]kafka.Message)
	for _, event := range events {
		batches[event.Topic] = append(batches[event.Topic], kafka.Message{
			Key:   []byte(event.PartitionKey),
			Value: event.Payload,
			Time:  time.Now().UTC(),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
			},
		})
	}

	for topic, messages := range batches {
		if err := d.producer.WriteMessages(ctx, topic, messages...); err != nil {
			return fmt.Errorf("topic %s: %w", topic, err)
		}
	}
	return nil
}

func (d *Dispatcher) markPublished(ctx context.Context, events []Event) error {
	_, err := d.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": eventIDs(events)}},
		bson.M{"$set": bson.M{"publishedAt": time.Now().UTC()}})
	return err
}

// recordFailure bumps the attempt counter on each event and quarantines the
// ones that have exhausted their attempts, so one poison event cannot stall
// the whole outbox.
func (d *Dispatcher) recordFailure(ctx context.Context, events []Event, reason string) error {
	_, err := d.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": eventIDs(events)}},
		bson.M{
			"$inc": bson.M{"attempts": 1},
			"$set": bson.M{"lastError": reason},
		})
	if err != nil {
		return err
	}

	res, err := d.coll.UpdateMany(ctx,
		bson.M{
			"_id":           bson.M{"$in": eventIDs(events)},
			"attempts":      bson.M{"$gte": d.maxAttempts},
			"quarantinedAt": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			"quarantinedAt":    time.Now().UTC(),
			"quarantineReason": "delivery attempts exhausted",
		}})
	if err != nil {
		return err
	}
	if res.ModifiedCount > 0 {
		quarantinedCounter.Add(float64(res.ModifiedCount))
		d.log.Error().Int64("events", res.ModifiedCount).Msg("outbox events quarantined")
	}
	return nil
}

func eventIDs(events []Event) []string {
	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	return ids
}
