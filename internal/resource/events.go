package resource

// Event represents a manager lifecycle event.
// Minimal and stable: name + component ID and optional fields via key/values.
type Event struct {
	Name        string
	ComponentID string
	Fields      map[string]any
}

// Event names published by the manager.
const (
	EventAllocate         = "allocate"
	EventAllocateFailed   = "allocate_failed"
	EventDeallocate       = "deallocate"
	EventReclaimCache     = "reclaim_cache"
	EventReclaimEvict     = "reclaim_evict"
	EventReclaimGC        = "reclaim_gc"
	EventEmergencyCleanup = "emergency_cleanup"
	EventProactiveCleanup = "proactive_cleanup"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
