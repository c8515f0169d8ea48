package shared

import (
	"time"

	"github.com/google/uuid"
)

// TenantAggregateRoot is embedded by aggregates owned by one brokerage tenant.
// It carries the optimistic-lock version and the events raised since the
// last publish.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
	// Version starts at 1 and is bumped by every save
	Version int

	events []DomainEvent
}

// NewTenantAggregateRoot stamps a new aggregate with the actor's tenant and user
func NewTenantAggregateRoot(actor Actor, now time.Time) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseEntity: NewBaseEntity(now),
		TenantID:   actor.TenantID,
		CreatedBy:  actor.UserRef(),
		Version:    1,
	}
}

func (a *TenantAggregateRoot) GetVersion() int   { return a.Version }
func (a *TenantAggregateRoot) IncrementVersion() { a.Version++ }

func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.events
}

func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// PullDomainEvents returns the pending events and clears them
func (a *TenantAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}
