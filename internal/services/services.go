// Package services applies the business rules of the CRM on top of storage.
package services

import (
	"context"

	"github.com/charmbracelet/log"

	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/natsbus"
	"pingcrm-backend/internal/storage"
	"pingcrm-backend/internal/validation"
)

// GuardError is returned when a mutation is refused without changing state.
type GuardError struct {
	Message string
}

func (e *GuardError) Error() string {
	return e.Message
}

// Deps are shared by every service.
type Deps struct {
	DB     *db.DB
	Events natsbus.Publisher
	Logger *log.Logger
}

type base struct {
	dbx    *db.DB
	store  *storage.Storage
	events natsbus.Publisher
	logger *log.Logger
}

func newBase(d Deps, prefix string) base {
	events := d.Events
	if events == nil {
		events = natsbus.Noop{}
	}
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	return base{
		dbx:    d.DB,
		store:  storage.New(d.DB),
		events: events,
		logger: logger.WithPrefix(prefix),
	}
}

// publish sends a lifecycle event. Failures are logged and dropped.
func (b base) publish(ctx context.Context, accountID int64, entity string, entityID int64, action string, actorID int64) {
	ev := natsbus.NewEvent(accountID, entity, entityID, action, actorID)
	if err := b.events.Publish(ctx, ev); err != nil {
		b.logger.Warn("publish event", "subject", ev.Subject(), "err", err)
	}
}

func validationErr(v interface{}) error {
	return validation.Struct(v).Err()
}
