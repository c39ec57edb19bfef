package cache

import "time"

// ScoreWeights control how the eviction score blends the competing
// pressures. Higher total score means evict sooner.
type ScoreWeights struct {
	// Hours since the entry was last read.
	Recency float64
	// Average hours between reads (a day when only read once).
	Frequency float64
	// Entry size in MiB.
	Size float64
	// Hours until the predicted next read.
	Prediction float64
	// 1 - importance.
	Importance float64
}

// DefaultScoreWeights favors recency and frequency while still letting a
// large, stale, low-importance entry outrank a small hot one.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Recency:    0.30,
		Frequency:  0.25,
		Size:       0.20,
		Prediction: 0.15,
		Importance: 0.10,
	}
}

// singleAccessGapHours stands in for the average access gap of entries that
// were only ever touched once.
const singleAccessGapHours = 24.0

// evictionScore ranks an entry for removal. Callers hold c.mu.
func (c *Cache) evictionScore(e *Entry, now time.Time) float64 {
	recency := now.Sub(e.LastAccess).Hours()

	frequency := singleAccessGapHours
	if len(e.history) > 1 {
		total := e.history[len(e.history)-1].Sub(e.history[0])
		frequency = (total / time.Duration(len(e.history)-1)).Hours()
	}

	size := float64(e.Size) / (1 << 20)
	prediction := e.PredictedNextAccess.Sub(now).Hours()
	importance := 1.0 - e.Importance

	w := c.weights
	return w.Recency*recency +
		w.Frequency*frequency +
		w.Size*size +
		w.Prediction*prediction +
		w.Importance*importance
}
