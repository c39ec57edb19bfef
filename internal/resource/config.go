package resource

import (
	"time"

	"memd/internal/cache"
	"memd/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultGCThreshold        = 0.85
	defaultEmergencyThreshold = 0.95
	defaultHistoryLen         = 1000
	defaultCacheBytes         = 256 << 20
	// Fraction of the ceiling above which a confident peak prediction
	// triggers proactive cache cleanup.
	proactivePeakFraction = 0.8
	// Samples required before the predictive hook consults the predictor.
	predictiveMinHistory = 50
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// MaxMemoryBytes is the hard ceiling for the allocation ledger. Required.
	MaxMemoryBytes int64
	// GCThreshold scales the ceiling for the admission test; 0 means 0.85.
	GCThreshold float64
	// EmergencyThreshold scales the ceiling for emergency cleanup; 0 means 0.95.
	EmergencyThreshold float64
	// HistoryLen bounds the usage-sample ring; 0 means 1000.
	HistoryLen int
	// Cache backing the reclamation path; nil means a 256MiB default cache.
	Cache *cache.Cache
	// Collector for the GC reclamation stage; nil means AdaptiveCollector.
	Collector Collector
	// Publisher receives lifecycle events; nil means drop them.
	Publisher EventPublisher
	// Predictor for the proactive-cleanup hook; zero value means defaults.
	Predictor UsagePredictor
	// Components declared in the manifest, reported via ListComponents.
	Components []types.Component
	// StatePath is where SaveState persists allocation metadata; empty
	// disables persistence.
	StatePath string
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		allocations:        make(map[string]*Allocation),
		maxMemoryBytes:     cfg.MaxMemoryBytes,
		gcThreshold:        cfg.GCThreshold,
		emergencyThreshold: cfg.EmergencyThreshold,
		historyLen:         cfg.HistoryLen,
		cache:              cfg.Cache,
		collector:          cfg.Collector,
		publisher:          cfg.Publisher,
		predictor:          cfg.Predictor,
		components:         cfg.Components,
		statePath:          cfg.StatePath,
	}
	if m.gcThreshold <= 0 || m.gcThreshold > 1 {
		m.gcThreshold = defaultGCThreshold
	}
	if m.emergencyThreshold <= 0 || m.emergencyThreshold > 1 {
		m.emergencyThreshold = defaultEmergencyThreshold
	}
	if m.historyLen <= 0 {
		m.historyLen = defaultHistoryLen
	}
	if m.cache == nil {
		m.cache = cache.New(cache.Config{MaxSizeBytes: defaultCacheBytes})
	}
	if m.collector == nil {
		m.collector = NewAdaptiveCollector()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.predictor.MinSamples <= 0 {
		m.predictor = NewUsagePredictor()
	}
	m.startTime = time.Now()
	return m
}
