// Standalone outbox drain. Runs the dispatcher without the HTTP surface, for
// deployments that publish from a separate process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/routine/internal/config"
	"example.com/routine/internal/outbox"
)

func main() {
	cfg := config.Load()
	log := rootLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := driver.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	producer := outbox.NewKafkaProducer(outbox.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		BatchTimeout: cfg.KafkaBatchTimeout,
		WriteTimeout: cfg.KafkaWriteTimeout,
	})
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(client.Database(cfg.MongoDatabase), producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize, cfg.OutboxMaxAttempts, log)
	go dispatcher.Start(ctx)

	log.Info().Msg("outbox dispatcher running")

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownCh

	cancel()
	dispatcher.Wait()
}

func rootLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Str("service", "routine-dispatcher").Logger()
}
