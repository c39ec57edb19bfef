package resource

import (
	"testing"

	"memd/internal/cache"
)

func TestMemoryPublisherCollectsEvents(t *testing.T) {
	pub := NewMemoryPublisher()
	pub.Publish(Event{Name: "a"})
	pub.Publish(Event{Name: "b", ComponentID: "x"})
	got := pub.Events()
	if len(got) != 2 || got[0].Name != "a" || got[1].ComponentID != "x" {
		t.Fatalf("events=%+v", got)
	}
	// Events returns a copy
	got[0].Name = "mutated"
	if pub.Events()[0].Name != "a" {
		t.Fatalf("Events exposed internal slice")
	}
}

func TestManagerPublishesLifecycleEvents(t *testing.T) {
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{
		MaxMemoryBytes: 1000,
		Cache:          cache.New(cache.Config{MaxSizeBytes: 100}),
		Collector:      NopCollector{},
		Publisher:      pub,
	})
	if err := m.Allocate("x", 100, 5); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := m.Deallocate("x"); err != nil {
		t.Fatalf("deallocate: %v", err)
	}
	events := pub.Events()
	if len(events) != 2 {
		t.Fatalf("events=%+v", events)
	}
	if events[0].Name != EventAllocate || events[0].ComponentID != "x" {
		t.Fatalf("first=%+v", events[0])
	}
	if events[1].Name != EventDeallocate {
		t.Fatalf("second=%+v", events[1])
	}
	if sz, ok := events[0].Fields["size"].(int64); !ok || sz != 100 {
		t.Fatalf("fields=%+v", events[0].Fields)
	}
}

func TestDefaultPublisherDropsEvents(t *testing.T) {
	m := NewWithConfig(ManagerConfig{
		MaxMemoryBytes: 1000,
		Cache:          cache.New(cache.Config{MaxSizeBytes: 100}),
		Collector:      NopCollector{},
	})
	// must not panic without a publisher
	if err := m.Allocate("x", 100, 5); err != nil {
		t.Fatalf("allocate: %v", err)
	}
}
