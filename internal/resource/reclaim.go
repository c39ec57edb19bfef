package resource

import (
	"log"
	"sort"
)

// reclaim runs the cascading reclamation protocol for a request that failed
// the admission test: cache shrink, then priority-based allocation eviction,
// then a garbage-collection pass, then emergency cleanup once usage crosses
// the emergency ceiling. It returns the external credit: estimated bytes
// freed outside the allocation ledger (cache content and collected garbage).
// Ledger evictions shrink currentUsage directly. Caller holds m.mu.
func (m *Manager) reclaim(delta int64, priority int, requester string) int64 {
	var external int64
	shortfall := func() int64 { return m.currentUsage + delta - m.ceiling() - external }

	if need := shortfall(); need > 0 {
		if freed := m.cache.OptimizeForSpace(need); freed > 0 {
			external += freed
			log.Printf("resource event=reclaim_cache freed=%d", freed)
			m.publish(EventReclaimCache, requester, map[string]any{"freed": freed})
		}
	}

	if need := shortfall(); need > 0 {
		m.releaseLowPriority(need, priority, requester)
	}

	if need := shortfall(); need > 0 {
		m.gcTriggers++
		if freed := m.collector.Collect(); freed > 0 {
			external += freed
			log.Printf("resource event=reclaim_gc freed_est=%d", freed)
			m.publish(EventReclaimGC, requester, map[string]any{"freed_est": freed})
		}
	}

	if m.currentUsage >= m.emergencyCeiling() {
		external += m.emergencyCleanup()
	}
	return external
}

// releaseLowPriority evicts reservations below minPriority in ascending
// (priority, access count, age) order: the least important, least accessed,
// oldest go first. The requesting component is never a candidate. Returns
// the ledger bytes freed. Caller holds m.mu.
func (m *Manager) releaseLowPriority(required int64, minPriority int, requester string) int64 {
	candidates := make([]*Allocation, 0, len(m.allocations))
	for id, a := range m.allocations {
		if id == requester {
			continue
		}
		candidates = append(candidates, a)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.AccessCount != b.AccessCount {
			return a.AccessCount < b.AccessCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	var freed int64
	for _, a := range candidates {
		if freed >= required {
			break
		}
		if a.Priority >= minPriority {
			// Sorted ascending, so nothing further is eligible either.
			break
		}
		delete(m.allocations, a.ComponentID)
		m.currentUsage -= a.Size
		freed += a.Size
		m.reclaimEvictions++
		log.Printf("resource event=reclaim_evict component=%q size=%d priority=%d", a.ComponentID, a.Size, a.Priority)
		m.publish(EventReclaimEvict, a.ComponentID, map[string]any{"size": a.Size, "priority": a.Priority})
	}
	return freed
}

// emergencyCleanup is the last-resort path: a forced collection pass plus an
// unconditional cache clear. Returns the estimated bytes freed. Caller
// holds m.mu.
func (m *Manager) emergencyCleanup() int64 {
	m.emergencyCleanups++
	freed := m.collector.Collect()
	freed += m.cache.EmergencyClear()
	log.Printf("resource event=emergency_cleanup freed_est=%d", freed)
	m.publish(EventEmergencyCleanup, "", map[string]any{"freed_est": freed})
	return freed
}
