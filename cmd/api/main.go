package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/routine/internal/api"
	"example.com/routine/internal/config"
	"example.com/routine/internal/engine"
	"example.com/routine/internal/outbox"
	persistence "example.com/routine/internal/persistence/mongo"
	"example.com/routine/internal/retry"
	httptransport "example.com/routine/internal/transport/http"
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
	db := client.Database(cfg.MongoDatabase)

	producer := outbox.NewKafkaProducer(outbox.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		BatchTimeout: cfg.KafkaBatchTimeout,
		WriteTimeout: cfg.KafkaWriteTimeout,
	})
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(db, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize, cfg.OutboxMaxAttempts, log)
	go dispatcher.Start(ctx)

	stores := engine.Stores{
		Routines: persistence.NewRoutineStore(db),
		Tasks:    persistence.NewTaskStore(db),
		Cadence:  persistence.NewNextActionStore(db),
		Users:    persistence.NewUserStore(db),
	}
	exec := retry.NewExecutor(cfg.RetryAttempts, cfg.RetryBaseDelay, log)
	eng := engine.New(engine.Config{
		MaxTasksPerSchedule: cfg.MaxTasksPerSchedule,
		CadenceInterval:     cfg.CadenceInterval,
		TaskExpiry:          cfg.TaskExpiry,
		BatchSize:           cfg.RescheduleBatchSize,
	}, stores, outbox.NewRecorder(db), exec, log)

	handler := api.NewHandler(eng, stores.Tasks)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
			next.ServeHTTP(w, r)
		})
	}

	server := httptransport.NewServer(httptransport.ServerConfig{Address: cfg.HTTPAddress}, logger(mux))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("address", cfg.HTTPAddress).Msg("routine engine listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	dispatcher.Wait()
}

func rootLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Str("service", "routine-engine").Logger()
}
