// Package resource provides the adaptive memory manager: priority-aware
// allocation with a soft ceiling, cascading reclamation, and predictive
// cache shrinking. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: ledger types (Allocation, UsageSample, Prediction, Snapshot).
//   - errors.go: error kinds and predicates (IsCapacityExceeded,
//     IsUnknownComponent, IsInvalidArgument).
//   - allocate.go: Allocate/Deallocate/Touch, cache pass-through, and the
//     predictive optimization hook.
//   - reclaim.go: the cascading reclamation protocol (cache shrink,
//     priority eviction, GC pass, emergency cleanup).
//   - predictor.go: usage trend/variance analysis.
//   - gc.go: the Collector interface, AdaptiveCollector, NopCollector.
//   - events.go / eventpub_memory.go: event publishing.
//   - status_report.go: Snapshot/Status/Stats projections.
//   - persist.go: allocation metadata save/restore across restarts.
//
// All mutations are serialized by one mutex per Manager; the cache carries
// its own lock because callers also reach it directly through CachePut and
// CacheGet. External packages should treat this package as the orchestration
// layer and use public methods only. Internal types are subject to change.
package resource
