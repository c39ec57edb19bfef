package cache

import "time"

// Entry is a cached value plus the bookkeeping the eviction scorer needs.
type Entry struct {
	Key                 string
	Value               any
	Size                int64
	AccessCount         int64
	LastAccess          time.Time
	CreatedAt           time.Time
	PredictedNextAccess time.Time
	// Importance in [0,1]; higher values shield the entry from eviction
	// triggered by lower-importance insertions.
	Importance float64

	// Recent access timestamps, oldest first, capped at historyCap.
	history []time.Time
}

// recordAccess appends now to the entry's access history, dropping the
// oldest timestamp once the cap is reached.
func (e *Entry) recordAccess(now time.Time, cap int) {
	e.AccessCount++
	e.LastAccess = now
	e.history = append(e.history, now)
	if len(e.history) > cap {
		e.history = e.history[len(e.history)-cap:]
	}
}
