package cache

import "time"

// defaultHorizon is the predicted gap for entries with too little history.
const defaultHorizon = time.Hour

// AccessPredictor estimates when an entry will next be read from the
// spacing of its previous reads.
type AccessPredictor struct {
	// Horizon returned when fewer than two accesses are known.
	Horizon time.Duration
}

// NewAccessPredictor returns a predictor with the default one hour horizon.
func NewAccessPredictor() AccessPredictor {
	return AccessPredictor{Horizon: defaultHorizon}
}

// PredictNext returns the expected time of the next access given an ordered
// access history. With fewer than two samples it falls back to now+Horizon.
// Otherwise it averages the consecutive intervals and scales the result by a
// consistency factor 1/(1+variance/mean²), so irregular patterns shorten the
// predicted gap instead of trusting the raw average.
func (p AccessPredictor) PredictNext(history []time.Time) time.Time {
	if len(history) < 2 {
		return time.Now().Add(p.Horizon)
	}
	intervals := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		intervals = append(intervals, history[i].Sub(history[i-1]).Seconds())
	}
	avg := mean(intervals)
	predicted := avg
	if len(intervals) > 1 && avg > 0 {
		consistency := 1.0 / (1.0 + variance(intervals)/(avg*avg))
		predicted = avg * consistency
	}
	last := history[len(history)-1]
	return last.Add(time.Duration(predicted * float64(time.Second)))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the sample variance, matching the statistics the scorer and
// predictor were tuned against.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}
