package resource

import (
	"log"
	"time"

	"memd/internal/cache"
	"memd/pkg/types"
)

// Allocate reserves sizeBytes for componentID at the given priority
// (1 low .. 10 critical). When the admission test fails, the cascading
// reclamation protocol runs first; the request is rejected with a capacity
// error only if the shortfall remains uncovered afterwards. On failure no
// ledger state changes beyond what reclamation already freed. Re-allocating
// an existing component replaces its reservation.
func (m *Manager) Allocate(componentID string, sizeBytes int64, priority int) error {
	if componentID == "" {
		return ErrInvalidArgument("component id is required")
	}
	if sizeBytes < 0 {
		return ErrInvalidArgument("size must not be negative")
	}
	if priority < 1 || priority > 10 {
		return ErrInvalidArgument("priority out of range 1..10")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old, exists := m.allocations[componentID]
	var delta = sizeBytes
	if exists {
		// The old reservation is released by the overwrite, so only the
		// difference needs to be admitted.
		delta = sizeBytes - old.Size
	}

	var credit int64
	if m.currentUsage+delta > m.ceiling() {
		credit = m.reclaim(delta, priority, componentID)
	}
	if m.currentUsage+delta-credit > m.ceiling() {
		m.failedAllocs++
		log.Printf("resource event=allocate_failed component=%q size=%d priority=%d", componentID, sizeBytes, priority)
		m.publish(EventAllocateFailed, componentID, map[string]any{"size": sizeBytes, "priority": priority})
		return capacityError{componentID: componentID, requested: sizeBytes}
	}

	now := time.Now()
	if exists {
		old.Size = sizeBytes
		old.Priority = priority
		old.AccessCount++
	} else {
		m.allocations[componentID] = &Allocation{
			ComponentID: componentID,
			Size:        sizeBytes,
			Priority:    priority,
			CreatedAt:   now,
		}
	}
	m.currentUsage += delta
	m.allocs++
	m.recordSample(UsageSample{
		Timestamp:      now,
		TotalUsage:     m.currentUsage,
		AllocationSize: sizeBytes,
		ComponentID:    componentID,
		Priority:       priority,
	})
	log.Printf("resource event=allocate component=%q size=%d priority=%d usage=%d", componentID, sizeBytes, priority, m.currentUsage)
	m.publish(EventAllocate, componentID, map[string]any{"size": sizeBytes, "priority": priority, "usage": m.currentUsage})

	// Best-effort predictive hook: allocation correctness never depends on it.
	if len(m.usageHistory) > predictiveMinHistory {
		pred := m.predictor.Predict(m.usageHistory)
		if pred.Confidence > 0 && pred.PredictedPeak > int64(float64(m.maxMemoryBytes)*proactivePeakFraction) {
			if freed := m.cache.ProactiveCleanup(pred.Confidence); freed > 0 {
				m.proactiveCleanups++
				m.publish(EventProactiveCleanup, componentID, map[string]any{"freed": freed})
			}
		}
	}
	return nil
}

// Deallocate removes the component's reservation and shrinks usage. An
// unknown component id is a normal, recoverable failure; no state changes.
func (m *Manager) Deallocate(componentID string) error {
	if componentID == "" {
		return ErrInvalidArgument("component id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.allocations[componentID]
	if !ok {
		return ErrUnknownComponent(componentID)
	}
	m.currentUsage -= a.Size
	delete(m.allocations, componentID)
	m.deallocs++
	log.Printf("resource event=deallocate component=%q size=%d usage=%d", componentID, a.Size, m.currentUsage)
	m.publish(EventDeallocate, componentID, map[string]any{"size": a.Size, "usage": m.currentUsage})
	return nil
}

// Touch records an access for the component, making its reservation less
// likely to be chosen by priority-based reclamation.
func (m *Manager) Touch(componentID string) error {
	if componentID == "" {
		return ErrInvalidArgument("component id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.allocations[componentID]
	if !ok {
		return ErrUnknownComponent(componentID)
	}
	a.AccessCount++
	return nil
}

// CachePut stores value in the smart cache, translating cache error kinds
// into the manager's taxonomy so callers deal with one set of predicates.
func (m *Manager) CachePut(key string, value any, importance float64) error {
	err := m.cache.Put(key, value, importance)
	switch {
	case err == nil:
		return nil
	case cache.IsNoSpace(err):
		return capacityError{componentID: key, requested: cache.EstimateSize(value)}
	case cache.IsInvalidArgument(err):
		return ErrInvalidArgument(err.Error())
	default:
		return err
	}
}

// CacheGet returns the cached value for key, or (nil, false) on a miss.
func (m *Manager) CacheGet(key string) (any, bool) {
	return m.cache.Get(key)
}

// PredictiveOptimization is the periodic tick hook: it consults the usage
// predictor and proactively shrinks the cache ahead of a confidently
// predicted spike. The surrounding application owns the timer.
func (m *Manager) PredictiveOptimization() types.PredictionResponse {
	m.mu.Lock()
	pred := m.predictor.Predict(m.usageHistory)
	maxBytes := m.maxMemoryBytes
	m.mu.Unlock()

	resp := types.PredictionResponse{
		PredictedPeakBytes: pred.PredictedPeak,
		TrendDirection:     pred.TrendDirection,
		Confidence:         pred.Confidence,
		CurrentUsageBytes:  pred.CurrentUsage,
	}
	if pred.Confidence > 0 && pred.PredictedPeak > int64(float64(maxBytes)*proactivePeakFraction) {
		if freed := m.cache.ProactiveCleanup(pred.Confidence); freed > 0 {
			m.mu.Lock()
			m.proactiveCleanups++
			m.mu.Unlock()
			resp.CleanupTriggered = true
			log.Printf("resource event=proactive_cleanup freed=%d confidence=%.2f", freed, pred.Confidence)
			m.publish(EventProactiveCleanup, "", map[string]any{"freed": freed, "confidence": pred.Confidence})
		}
	}
	return resp
}
