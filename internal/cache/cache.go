// Package cache implements a size-bounded key/value store whose eviction
// order is a weighted blend of recency, access frequency, entry size, the
// predicted next access, and a caller-supplied importance score. It backs the
// resource manager's reclamation path but is usable on its own.
package cache

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"memd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultHistoryCap      = 20
	defaultSizeEstimate    = 1024
	proactiveFraction      = 0.20
	proactiveMinConfidence = 0.7
	// Entries more important than requester importance times this factor
	// are never evicted to admit the requester.
	protectFactor = 1.5
)

// Config encapsulates the cache tunables.
type Config struct {
	// MaxSizeBytes bounds the sum of entry sizes. Required.
	MaxSizeBytes int64
	// Weights for the eviction score; zero value means defaults.
	Weights ScoreWeights
	// HistoryCap bounds per-entry access history; 0 means 20.
	HistoryCap int
	// Predictor estimates next accesses; zero value means defaults.
	Predictor AccessPredictor
}

// Cache is a scored-eviction key/value store. All methods are safe for
// concurrent use; a single mutex serializes mutations.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*Entry
	currentSize int64
	maxSize     int64
	weights     ScoreWeights
	historyCap  int
	predictor   AccessPredictor

	hits              uint64
	misses            uint64
	evictions         uint64
	sizeOptimizations uint64
}

// New constructs a Cache, applying defaults for unset Config fields.
func New(cfg Config) *Cache {
	c := &Cache{
		entries:    make(map[string]*Entry),
		maxSize:    cfg.MaxSizeBytes,
		weights:    cfg.Weights,
		historyCap: cfg.HistoryCap,
		predictor:  cfg.Predictor,
	}
	if c.weights == (ScoreWeights{}) {
		c.weights = DefaultScoreWeights()
	}
	if c.historyCap <= 0 {
		c.historyCap = defaultHistoryCap
	}
	if c.predictor.Horizon <= 0 {
		c.predictor = NewAccessPredictor()
	}
	return c
}

// Put stores value under key, evicting lower-value entries when needed.
// An existing key is overwritten, with its old size credited against the
// headroom check; a failed put leaves the old entry in place. Entries whose
// importance exceeds importance*1.5 are never evicted to admit this one.
// Put fails only when eviction cannot free enough room.
func (c *Cache) Put(key string, value any, importance float64) error {
	if key == "" {
		return ErrInvalidArgument("cache key is required")
	}
	if importance < 0 || importance > 1 {
		return ErrInvalidArgument("importance out of range [0,1]")
	}
	size := EstimateSize(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	// An overwrite releases the old reservation, so the headroom check
	// credits it up front. The old entry itself stays untouched until the
	// put is known to succeed: a failed put must not destroy cached state.
	var oldSize int64
	if old, ok := c.entries[key]; ok {
		oldSize = old.Size
	}

	if c.currentSize-oldSize+size > c.maxSize {
		if !c.makeSpace(c.currentSize-oldSize+size-c.maxSize, importance, key) {
			return noSpaceError{key: key, required: size}
		}
	}

	if old, ok := c.entries[key]; ok {
		c.currentSize -= old.Size
		delete(c.entries, key)
	}

	now := time.Now()
	e := &Entry{
		Key:                 key,
		Value:               value,
		Size:                size,
		AccessCount:         1,
		LastAccess:          now,
		CreatedAt:           now,
		PredictedNextAccess: now.Add(c.predictor.Horizon),
		Importance:          importance,
		history:             []time.Time{now},
	}
	c.entries[key] = e
	c.currentSize += size
	return nil
}

// Get returns the cached value for key. A miss returns (nil, false) and is
// counted; a hit refreshes recency, history, and the access prediction.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	e.recordAccess(time.Now(), c.historyCap)
	e.PredictedNextAccess = c.predictor.PredictNext(e.history)
	c.hits++
	return e.Value, true
}

// makeSpace evicts the highest-scoring unprotected entries until required
// bytes are freed. The skip key is never a candidate; its release is already
// credited by the overwrite. Caller holds c.mu.
func (c *Cache) makeSpace(required int64, importance float64, skip string) bool {
	now := time.Now()
	type candidate struct {
		score float64
		e     *Entry
	}
	candidates := make([]candidate, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Key == skip {
			continue
		}
		if e.Importance > importance*protectFactor {
			continue
		}
		candidates = append(candidates, candidate{score: c.evictionScore(e, now), e: e})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var freed int64
	for _, cand := range candidates {
		if freed >= required {
			break
		}
		freed += cand.e.Size
		c.currentSize -= cand.e.Size
		delete(c.entries, cand.e.Key)
		c.evictions++
	}
	return freed >= required
}

// OptimizeForSpace evicts entries in score order, ignoring the importance
// shield, until required bytes are freed or the cache is empty. It returns
// the bytes actually freed. The memory manager calls this under pressure,
// where all cache content is fair game.
func (c *Cache) OptimizeForSpace(required int64) int64 {
	if required <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	type candidate struct {
		score float64
		e     *Entry
	}
	candidates := make([]candidate, 0, len(c.entries))
	for _, e := range c.entries {
		candidates = append(candidates, candidate{score: c.evictionScore(e, now), e: e})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var freed int64
	for _, cand := range candidates {
		if freed >= required {
			break
		}
		freed += cand.e.Size
		c.currentSize -= cand.e.Size
		delete(c.entries, cand.e.Key)
		c.evictions++
		c.sizeOptimizations++
	}
	return freed
}

// ProactiveCleanup preemptively evicts about 20% of capacity when a usage
// spike is predicted with confidence above 0.7. Lower-confidence predictions
// are ignored. Returns the bytes freed.
func (c *Cache) ProactiveCleanup(confidence float64) int64 {
	if confidence <= proactiveMinConfidence {
		return 0
	}
	target := int64(float64(c.maxSize) * proactiveFraction)
	return c.OptimizeForSpace(target)
}

// EmergencyClear unconditionally empties the cache and returns the bytes
// freed. Only the manager's last-resort path uses this.
func (c *Cache) EmergencyClear() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	freed := c.currentSize
	c.entries = make(map[string]*Entry)
	c.currentSize = 0
	return freed
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CurrentSize returns the sum of live entry sizes in bytes.
func (c *Cache) CurrentSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// Contains reports whether key is cached without counting a hit or miss.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Stats returns a point-in-time snapshot of cache counters.
func (c *Cache) Stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := types.CacheStats{
		CurrentSizeBytes:  c.currentSize,
		MaxSizeBytes:      c.maxSize,
		Entries:           len(c.entries),
		Hits:              c.hits,
		Misses:            c.misses,
		Evictions:         c.evictions,
		SizeOptimizations: c.sizeOptimizations,
	}
	if c.maxSize > 0 {
		s.UsagePercent = float64(c.currentSize) / float64(c.maxSize) * 100
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// EstimateSize approximates the in-memory footprint of value. Byte and
// string payloads use their length; anything opaque gets a conservative
// 1KiB default so the budget check cannot be bypassed by unknown types.
func EstimateSize(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case []byte:
		return int64(len(v))
	case string:
		return int64(len(v))
	case json.RawMessage:
		return int64(len(v))
	default:
		return defaultSizeEstimate
	}
}
