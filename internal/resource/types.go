package resource

import "time"

// Allocation is the ledger record for one component's reservation.
type Allocation struct {
	ComponentID string
	Size        int64
	// Priority from 1 (low) to 10 (critical).
	Priority    int
	CreatedAt   time.Time
	AccessCount int64
}

// UsageSample records ledger state at allocation time. The usage predictor
// consumes the sample history read-only.
type UsageSample struct {
	Timestamp      time.Time
	TotalUsage     int64
	AllocationSize int64
	ComponentID    string
	Priority       int
}

// Prediction is the usage predictor's output. A zero Prediction means the
// history was too short to say anything.
type Prediction struct {
	// Extrapolated near-future peak usage in bytes, never below current.
	PredictedPeak int64
	// Recent mean minus older mean; positive when usage is growing.
	TrendDirection float64
	// Confidence in [0.1, 0.9].
	Confidence float64
	// Usage at prediction time.
	CurrentUsage int64
}

// Snapshot is a read-only projection of the manager ledger.
type Snapshot struct {
	UsedBytes   int64
	MaxBytes    int64
	Allocations []Allocation
}
