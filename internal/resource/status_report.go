package resource

import (
	"sort"
	"time"

	"memd/pkg/types"
)

// Snapshot returns a read-only view of the allocation ledger.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		UsedBytes:   m.currentUsage,
		MaxBytes:    m.maxMemoryBytes,
		Allocations: make([]Allocation, 0, len(m.allocations)),
	}
	for _, a := range m.allocations {
		snap.Allocations = append(snap.Allocations, *a)
	}
	sort.Slice(snap.Allocations, func(i, j int) bool {
		return snap.Allocations[i].ComponentID < snap.Allocations[j].ComponentID
	})
	return snap
}

// Status builds the response for GET /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := types.StatusResponse{
		MaxMemoryBytes:     m.maxMemoryBytes,
		UsedBytes:          m.currentUsage,
		GCThreshold:        m.gcThreshold,
		EmergencyThreshold: m.emergencyThreshold,
		UptimeSeconds:      int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix:     time.Now().Unix(),
	}
	if m.maxMemoryBytes > 0 {
		resp.UsagePercent = float64(m.currentUsage) / float64(m.maxMemoryBytes) * 100
	}
	resp.Allocations = make([]types.AllocationStatus, 0, len(m.allocations))
	for _, a := range m.allocations {
		resp.Allocations = append(resp.Allocations, types.AllocationStatus{
			ComponentID: a.ComponentID,
			SizeBytes:   a.Size,
			Priority:    a.Priority,
			AccessCount: a.AccessCount,
			CreatedAt:   a.CreatedAt.Unix(),
		})
	}
	sort.Slice(resp.Allocations, func(i, j int) bool {
		return resp.Allocations[i].ComponentID < resp.Allocations[j].ComponentID
	})
	return resp
}

// Stats builds the response for GET /stats: the ledger view plus cache,
// collector, and operation counters.
func (m *Manager) Stats() types.StatsResponse {
	status := m.Status()
	m.mu.Lock()
	resp := types.StatsResponse{
		Memory:            status,
		Allocations:       m.allocs,
		Deallocations:     m.deallocs,
		FailedAllocations: m.failedAllocs,
		ReclaimEvictions:  m.reclaimEvictions,
		GCTriggers:        m.gcTriggers,
		EmergencyCleanups: m.emergencyCleanups,
		ProactiveCleanups: m.proactiveCleanups,
	}
	m.mu.Unlock()
	resp.Cache = m.cache.Stats()
	resp.GC = m.collector.Stats()
	return resp
}
