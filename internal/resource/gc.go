package resource

import (
	"runtime"
	"sync"
	"time"

	"memd/pkg/types"
)

// Collector abstracts the runtime reclamation pass so the manager can be
// composed with a deterministic stand-in where forcing real collections is
// unwanted (tests, embedders with their own GC policy).
type Collector interface {
	// Collect runs a collection pass and returns an estimate of the bytes
	// freed. The estimate feeds the cascading-reclamation decision; it is
	// an approximation, not exact accounting.
	Collect() int64
	Stats() types.GCStats
}

// Defaults for the adaptive collector.
const (
	gcHistoryCap = 100
	// Per-object freed-byte estimate. A placeholder calibration: the shape
	// (collected count times an estimate) matters, the constant does not.
	defaultBytesPerObject = 100
	// Mean effectiveness over the last passes above which a second pass is
	// considered worthwhile.
	doublePassThreshold = 0.10
	doublePassWindow    = 5
)

type gcPass struct {
	Timestamp        time.Time
	ObjectsCollected uint64
	Duration         time.Duration
	// ObjectsCollected / objects examined.
	Effectiveness float64
}

// AdaptiveCollector tracks how effective recent collection passes were and
// escalates to a double pass when they keep paying off. The second pass picks
// up objects released by finalizers that ran during the first.
type AdaptiveCollector struct {
	mu             sync.Mutex
	history        []gcPass
	bytesPerObject int64

	passes    uint64
	collected uint64
	timeSpent time.Duration
}

// NewAdaptiveCollector returns a collector with the default per-object
// freed-byte estimate.
func NewAdaptiveCollector() *AdaptiveCollector {
	return &AdaptiveCollector{bytesPerObject: defaultBytesPerObject}
}

// Collect forces a garbage collection (two when recent passes were effective)
// and returns the estimated bytes freed. It never fails; a pass that frees
// nothing returns zero.
func (c *AdaptiveCollector) Collect() int64 {
	c.mu.Lock()
	double := c.shouldDoublePass()
	c.mu.Unlock()

	start := time.Now()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	runtime.GC()
	if double {
		runtime.GC()
	}
	runtime.ReadMemStats(&after)
	dur := time.Since(start)

	var objects uint64
	if before.HeapObjects > after.HeapObjects {
		objects = before.HeapObjects - after.HeapObjects
	}
	examined := before.HeapObjects
	if examined == 0 {
		examined = 1
	}

	c.mu.Lock()
	c.passes++
	c.collected += objects
	c.timeSpent += dur
	c.history = append(c.history, gcPass{
		Timestamp:        start,
		ObjectsCollected: objects,
		Duration:         dur,
		Effectiveness:    float64(objects) / float64(examined),
	})
	if len(c.history) > gcHistoryCap {
		c.history = c.history[len(c.history)-gcHistoryCap:]
	}
	c.mu.Unlock()

	return int64(objects) * c.bytesPerObject
}

// shouldDoublePass reports whether the running average effectiveness of the
// last passes justifies the cost of a second pass. Caller holds c.mu.
func (c *AdaptiveCollector) shouldDoublePass() bool {
	if len(c.history) < doublePassWindow {
		return false
	}
	recent := c.history[len(c.history)-doublePassWindow:]
	var sum float64
	for _, p := range recent {
		sum += p.Effectiveness
	}
	return sum/float64(len(recent)) > doublePassThreshold
}

// Stats returns collector counters and the mean effectiveness over the
// recorded history.
func (c *AdaptiveCollector) Stats() types.GCStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := types.GCStats{
		Passes:           c.passes,
		ObjectsCollected: c.collected,
		TimeSpentSeconds: c.timeSpent.Seconds(),
	}
	if len(c.history) > 0 {
		var sum float64
		for _, p := range c.history {
			sum += p.Effectiveness
		}
		s.AvgEffectiveness = sum / float64(len(c.history))
	}
	return s
}

// NopCollector never frees anything. Reclamation then relies on the cache
// and priority eviction alone, which keeps admission decisions a pure
// function of the ledger.
type NopCollector struct{}

func (NopCollector) Collect() int64       { return 0 }
func (NopCollector) Stats() types.GCStats { return types.GCStats{} }
