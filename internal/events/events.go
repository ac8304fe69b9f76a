package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	StatusChanged        Type = "status.changed"
	LeaseCreated         Type = "lease.created"
	LeaseExpired         Type = "lease.expired"
	MaintenanceAssigned  Type = "maintenance.assigned"
	MaintenanceInspected Type = "maintenance.inspected"
	ClearanceApproved    Type = "clearance.approved"
	ClearanceRejected    Type = "clearance.rejected"
)

// Event is the envelope written to the lifecycle topic. From and To are set for status changes only.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       Type              `json:"type"`
	Entity     string            `json:"entity"`
	EntityID   uuid.UUID         `json:"entity_id"`
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func New(t Type, entity string, id uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		Entity:     entity,
		EntityID:   id,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) With(key, value string) Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
