// Package mongo provides document-store persistence for the routine engine.
package mongo

import (
	"errors"

	driver "go.mongodb.org/mongo-driver/mongo"

	"example.com/routine/internal/domain"
)

// Collection names used by the engine.
const (
	CollRoutines    = "routines"
	CollTasks       = "tasks"
	CollNextActions = "nextActions"
	CollUsers       = "users"
	CollOutbox      = "outbox"
)

// wrapErr classifies a driver error into a domain error so raw store errors
// never escape the engine boundary. Anything unrecognized is treated as
// transient and handed to the retrying executor.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.E(op, domain.KindNotFound, err)
	}
	return domain.E(op, domain.KindTransient, err)
}
