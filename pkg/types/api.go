package types

import "encoding/json"

// AllocateRequest is the payload for POST /allocate.
type AllocateRequest struct {
	// Unique component identifier making the reservation.
	// example: dashboard.table
	ComponentID string `json:"component_id" example:"dashboard.table"`
	// Requested reservation size in bytes.
	// example: 1048576
	SizeBytes int64 `json:"size_bytes" example:"1048576"`
	// Priority from 1 (low) to 10 (critical). Defaults to 5 when omitted.
	// example: 5
	Priority int `json:"priority,omitempty" example:"5"`
}

// DeallocateRequest is the payload for POST /deallocate and POST /touch.
type DeallocateRequest struct {
	// Component identifier whose reservation is released.
	// example: dashboard.table
	ComponentID string `json:"component_id" example:"dashboard.table"`
}

// CachePutRequest is the payload for PUT /cache/{key}.
type CachePutRequest struct {
	// Arbitrary JSON value to cache; its encoded length is the entry size.
	Value json.RawMessage `json:"value"`
	// Importance in [0,1] protecting the entry from low-value eviction
	// pressure. Defaults to 0.5 when omitted.
	// example: 0.8
	Importance *float64 `json:"importance,omitempty" example:"0.8"`
}

// CacheGetResponse is returned by GET /cache/{key} on a hit.
type CacheGetResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// AllocationStatus summarizes one live reservation for /status.
type AllocationStatus struct {
	ComponentID string `json:"component_id"`
	SizeBytes   int64  `json:"size_bytes"`
	// Priority from 1 (low) to 10 (critical).
	Priority int `json:"priority"`
	// Number of Touch/re-allocation hits recorded for the component.
	AccessCount int64 `json:"access_count"`
	// Creation time in unix seconds.
	CreatedAt int64 `json:"created_at_unix"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Live reservations, one per component.
	Allocations []AllocationStatus `json:"allocations"`
	// Hard memory ceiling in bytes across all reservations.
	MaxMemoryBytes int64 `json:"max_memory_bytes"`
	// Sum of live reservation sizes in bytes.
	UsedBytes int64 `json:"used_bytes"`
	// UsedBytes as a percentage of MaxMemoryBytes.
	UsagePercent float64 `json:"usage_percent"`
	// Fraction of the ceiling at which admission starts reclaiming.
	GCThreshold float64 `json:"gc_threshold"`
	// Fraction of the ceiling at which emergency cleanup triggers.
	EmergencyThreshold float64 `json:"emergency_threshold"`
	// Uptime of the manager in seconds.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}

// CacheStats is the cache portion of GET /stats.
type CacheStats struct {
	CurrentSizeBytes int64   `json:"current_size_bytes"`
	MaxSizeBytes     int64   `json:"max_size_bytes"`
	UsagePercent     float64 `json:"usage_percent"`
	Entries          int     `json:"entries"`
	Hits             uint64  `json:"hits"`
	Misses           uint64  `json:"misses"`
	Evictions        uint64  `json:"evictions"`
	// Evictions performed on behalf of the memory manager under pressure.
	SizeOptimizations uint64 `json:"size_optimizations"`
	// Hits / (Hits + Misses); zero when no lookups happened yet.
	HitRate float64 `json:"hit_rate"`
}

// GCStats is the collector portion of GET /stats.
type GCStats struct {
	Passes           uint64  `json:"passes"`
	ObjectsCollected uint64  `json:"objects_collected"`
	TimeSpentSeconds float64 `json:"time_spent_seconds"`
	// Mean of (collected / examined) over the recorded pass history.
	AvgEffectiveness float64 `json:"avg_effectiveness"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	Memory StatusResponse `json:"memory"`
	Cache  CacheStats     `json:"cache"`
	GC     GCStats        `json:"gc"`
	// Counters for manager operations since start.
	Allocations       uint64 `json:"allocations"`
	Deallocations     uint64 `json:"deallocations"`
	FailedAllocations uint64 `json:"failed_allocations"`
	// Reservations released by priority-based reclamation.
	ReclaimEvictions  uint64 `json:"reclaim_evictions"`
	GCTriggers        uint64 `json:"gc_triggers"`
	EmergencyCleanups uint64 `json:"emergency_cleanups"`
	ProactiveCleanups uint64 `json:"proactive_cleanups"`
}

// PredictionResponse is returned by POST /optimize.
type PredictionResponse struct {
	// Extrapolated near-future peak usage in bytes.
	PredictedPeakBytes int64 `json:"predicted_peak_bytes"`
	// Recent mean minus older mean; positive when usage is growing.
	TrendDirection float64 `json:"trend_direction"`
	// Confidence in [0.1, 0.9]; zero when history is too short.
	Confidence float64 `json:"confidence"`
	// Usage at prediction time in bytes.
	CurrentUsageBytes int64 `json:"current_usage_bytes"`
	// Whether the cache was proactively shrunk as a result.
	CleanupTriggered bool `json:"cleanup_triggered"`
}

// Component declares a reservation made at startup on behalf of a caller.
type Component struct {
	ID           string `json:"id" yaml:"id" toml:"id"`
	ReserveBytes int64  `json:"reserve_bytes" yaml:"reserve_bytes" toml:"reserve_bytes"`
	Priority     int    `json:"priority" yaml:"priority" toml:"priority"`
}

// ComponentsResponse wraps the manifest returned by GET /components.
type ComponentsResponse struct {
	Components []Component `json:"components"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: component not found: dashboard.table
	Error string `json:"error" example:"component not found: dashboard.table"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
