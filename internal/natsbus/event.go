package natsbus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Entities that publish events.
const (
	EntityUser         = "user"
	EntityOrganization = "organization"
	EntityContact      = "contact"
)

// Actions of the record lifecycle.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionRestored = "restored"
)

// Event describes one change of a record.
type Event struct {
	ID         string    `msgpack:"id"`
	AccountID  int64     `msgpack:"account_id"`
	Entity     string    `msgpack:"entity"`
	EntityID   int64     `msgpack:"entity_id"`
	Action     string    `msgpack:"action"`
	ActorID    int64     `msgpack:"actor_id"`
	OccurredAt time.Time `msgpack:"occurred_at"`
}

// NewEvent returns an event with a fresh id and the current time.
func NewEvent(accountID int64, entity string, entityID int64, action string, actorID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Entity:     entity,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Subject is crm.<account>.events.<entity>.<action>.
func (e Event) Subject() string {
	return fmt.Sprintf("crm.%d.events.%s.%s", e.AccountID, e.Entity, e.Action)
}

// Marshal encodes the event with msgpack.
func (e Event) Marshal() ([]byte, error) {
	return msgpack.Marshal(e)
}

// UnmarshalEvent decodes a msgpack encoded event.
func UnmarshalEvent(data []byte) (Event, error) {
	var e Event
	err := msgpack.Unmarshal(data, &e)
	return e, err
}

// Publisher sends lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Noop drops every event. It is used when no NATS server is configured.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
