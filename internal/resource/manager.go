package resource

import (
	"sync"
	"time"

	"memd/internal/cache"
	"memd/pkg/types"
)

// Manager is the top-level allocator: it tracks per-component reservations
// with priorities, enforces a soft ceiling, and escalates through a cascading
// reclamation strategy when a request cannot be admitted directly.
type Manager struct {
	mu                 sync.Mutex
	allocations        map[string]*Allocation
	currentUsage       int64
	maxMemoryBytes     int64
	gcThreshold        float64
	emergencyThreshold float64

	usageHistory []UsageSample
	historyLen   int

	cache      *cache.Cache
	collector  Collector
	predictor  UsagePredictor
	publisher  EventPublisher
	components []types.Component
	statePath  string
	startTime  time.Time

	// Operation counters, guarded by mu.
	allocs            uint64
	deallocs          uint64
	failedAllocs      uint64
	reclaimEvictions  uint64
	gcTriggers        uint64
	emergencyCleanups uint64
	proactiveCleanups uint64
}

// New constructs a Manager with default thresholds around the given ceiling
// and cache. See NewWithConfig for the full set of tunables.
func New(maxMemoryBytes int64, c *cache.Cache) *Manager {
	return NewWithConfig(ManagerConfig{MaxMemoryBytes: maxMemoryBytes, Cache: c})
}

// Cache returns the cache wired into the reclamation path.
func (m *Manager) Cache() *cache.Cache { return m.cache }

// ListComponents returns the component manifest the manager was built with.
func (m *Manager) ListComponents() []types.Component {
	m.mu.Lock()
	defer m.mu.Unlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Component, len(m.components))
	copy(out, m.components)
	return out
}

// Ready reports whether the manager can take requests. It is false only for
// a zero ceiling, which would reject every allocation.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxMemoryBytes > 0
}

// ceiling is the admission bound: usage beyond it triggers reclamation.
// Caller holds m.mu.
func (m *Manager) ceiling() int64 {
	return int64(float64(m.maxMemoryBytes) * m.gcThreshold)
}

// emergencyCeiling is the bound beyond which emergency cleanup engages.
// Caller holds m.mu.
func (m *Manager) emergencyCeiling() int64 {
	return int64(float64(m.maxMemoryBytes) * m.emergencyThreshold)
}

// recordSample appends a usage sample, dropping the oldest beyond historyLen.
// Caller holds m.mu.
func (m *Manager) recordSample(s UsageSample) {
	m.usageHistory = append(m.usageHistory, s)
	if len(m.usageHistory) > m.historyLen {
		m.usageHistory = m.usageHistory[len(m.usageHistory)-m.historyLen:]
	}
}

func (m *Manager) publish(name, componentID string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.publisher.Publish(Event{Name: name, ComponentID: componentID, Fields: fields})
}
