// Package config centralises configuration parsing for the routine engine.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration values for the routine engine.
type Config struct {
	HTTPAddress         string
	MongoURI            string
	MongoDatabase       string
	KafkaBrokers        []string
	KafkaBatchTimeout   time.Duration
	KafkaWriteTimeout   time.Duration
	OutboxPollInterval  time.Duration
	OutboxBatchSize     int
	OutboxMaxAttempts   int
	MaxTasksPerSchedule int
	CadenceInterval     time.Duration
	TaskExpiry          time.Duration
	RetryAttempts       int
	RetryBaseDelay      time.Duration
	RescheduleBatchSize int
	LogLevel            string
}

// Load reads environment variables into Config, applying sensible defaults for local dev.
func Load() Config {
	cfg := Config{
		HTTPAddress:         getEnv("HTTP_ADDRESS", ":8080"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "wellness"),
		KafkaBatchTimeout:   getDurationEnv("KAFKA_BATCH_TIMEOUT", 50*time.Millisecond),
		KafkaWriteTimeout:   getDurationEnv("KAFKA_WRITE_TIMEOUT", 10*time.Second),
		OutboxPollInterval:  getDurationEnv("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:     getIntEnv("OUTBOX_BATCH_SIZE", 25),
		OutboxMaxAttempts:   getIntEnv("OUTBOX_MAX_ATTEMPTS", 5),
		MaxTasksPerSchedule: getIntEnv("MAX_TASKS_PER_SCHEDULE", 45),
		CadenceInterval:     getDurationEnv("CADENCE_INTERVAL", 7*24*time.Hour),
		TaskExpiry:          getDurationEnv("TASK_EXPIRY", 24*time.Hour),
		RetryAttempts:       getIntEnv("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:      getDurationEnv("RETRY_BASE_DELAY", 100*time.Millisecond),
		RescheduleBatchSize: getIntEnv("RESCHEDULE_BATCH_SIZE", 5),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	brokers := getEnv("KAFKA_BROKERS", "kafka:9092")
	cfg.KafkaBrokers = splitAndTrim(brokers)
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
