package event

import (
	"slices"
	"sync"

	"github.com/estatebook/backend/internal/domain/shared"
)

// subscription binds a handler to the event types it receives; an empty
// types list means every type.
type subscription struct {
	handler shared.EventHandler
	types   []string
}

func (s subscription) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// HandlerRegistry keeps subscriptions in registration order, which is also
// the delivery order.
type HandlerRegistry struct {
	mu            sync.RWMutex
	subscriptions []subscription
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register subscribes handler to eventTypes, or to every type when none are given
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = append(r.subscriptions, subscription{handler: handler, types: slices.Clone(eventTypes)})
}

// Unregister drops every subscription of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = slices.DeleteFunc(r.subscriptions, func(s subscription) bool {
		return s.handler == handler
	})
}

// GetHandlers returns the handlers subscribed to eventType in registration order
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []shared.EventHandler
	for _, s := range r.subscriptions {
		if s.wants(eventType) {
			out = append(out, s.handler)
		}
	}
	return out
}
