package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate. Events are held on the
// aggregate and published only after the save that produced them succeeds.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	TenantID() uuid.UUID
}

// EventHeader is embedded by every concrete event and satisfies DomainEvent
type EventHeader struct {
	ID          uuid.UUID `json:"event_id"`
	Type        string    `json:"event_type"`
	At          time.Time `json:"occurred_at"`
	Aggregate   uuid.UUID `json:"aggregate_id"`
	TenantScope uuid.UUID `json:"tenant_id"`
}

// NewEventHeader stamps a fresh event id. at is the aggregate's own clock
// reading, so replaying a mutation with a fixed clock yields the same timestamp.
func NewEventHeader(eventType string, aggregateID, tenantID uuid.UUID, at time.Time) EventHeader {
	return EventHeader{
		ID:          uuid.New(),
		Type:        eventType,
		At:          at,
		Aggregate:   aggregateID,
		TenantScope: tenantID,
	}
}

func (h EventHeader) EventID() uuid.UUID     { return h.ID }
func (h EventHeader) EventType() string      { return h.Type }
func (h EventHeader) OccurredAt() time.Time  { return h.At }
func (h EventHeader) AggregateID() uuid.UUID { return h.Aggregate }
func (h EventHeader) TenantID() uuid.UUID    { return h.TenantScope }
