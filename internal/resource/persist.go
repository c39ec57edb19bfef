package resource

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"time"
)

type allocRecord struct {
	SizeBytes     int64 `json:"size_bytes"`
	Priority      int   `json:"priority"`
	AccessCount   int64 `json:"access_count"`
	CreatedAtUnix int64 `json:"created_at_unix"`
}

// SaveState persists allocation metadata to the configured state path so a
// restart can re-admit the same reservations. A no-op without a state path.
func (m *Manager) SaveState() error {
	if m.statePath == "" {
		return nil
	}
	// Snapshot under lock
	m.mu.Lock()
	snap := make(map[string]allocRecord, len(m.allocations))
	for id, a := range m.allocations {
		snap[id] = allocRecord{
			SizeBytes:     a.Size,
			Priority:      a.Priority,
			AccessCount:   a.AccessCount,
			CreatedAtUnix: a.CreatedAt.Unix(),
		}
	}
	m.mu.Unlock()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.statePath, b, 0o644)
}

// RestoreState re-admits reservations saved by a previous run, highest
// priority first. Records that no longer pass the admission test are skipped
// and logged; a missing state file is not an error.
func (m *Manager) RestoreState() error {
	if m.statePath == "" {
		return nil
	}
	b, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var data map[string]allocRecord
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}

	type restored struct {
		id  string
		rec allocRecord
	}
	records := make([]restored, 0, len(data))
	for id, rec := range data {
		records = append(records, restored{id: id, rec: rec})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].rec.Priority != records[j].rec.Priority {
			return records[i].rec.Priority > records[j].rec.Priority
		}
		return records[i].id < records[j].id
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	skipped := 0
	for _, r := range records {
		if r.rec.SizeBytes < 0 || r.rec.Priority < 1 || r.rec.Priority > 10 {
			skipped++
			continue
		}
		if m.currentUsage+r.rec.SizeBytes > m.ceiling() {
			skipped++
			continue
		}
		m.allocations[r.id] = &Allocation{
			ComponentID: r.id,
			Size:        r.rec.SizeBytes,
			Priority:    r.rec.Priority,
			AccessCount: r.rec.AccessCount,
			CreatedAt:   time.Unix(r.rec.CreatedAtUnix, 0),
		}
		m.currentUsage += r.rec.SizeBytes
	}
	if skipped > 0 {
		log.Printf("resource event=restore_skipped count=%d", skipped)
	}
	log.Printf("resource event=restore_done restored=%d usage=%d", len(records)-skipped, m.currentUsage)
	return nil
}
