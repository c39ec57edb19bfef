package resource

// UsagePredictor extrapolates near-term peak usage from the allocation-size
// history using simple trend and variance analysis.
type UsagePredictor struct {
	// MinSamples below which Predict returns a zero-confidence result.
	MinSamples int
	// Window of most recent samples the confidence estimate looks at.
	Window int
	// VarianceNorm scales trend variance into a confidence in (0,1).
	VarianceNorm float64
}

// Defaults for the usage predictor.
const (
	defaultMinSamples    = 20
	defaultPredictWindow = 40
	defaultVarianceNorm  = 1_000_000
	subWindow            = 5
	minConfidence        = 0.1
	maxConfidence        = 0.9
)

// NewUsagePredictor returns a predictor with default tuning.
func NewUsagePredictor() UsagePredictor {
	return UsagePredictor{
		MinSamples:   defaultMinSamples,
		Window:       defaultPredictWindow,
		VarianceNorm: defaultVarianceNorm,
	}
}

// Predict compares the mean of the most recent ten samples against the mean
// of the preceding ten and extrapolates peak = current + 2*delta, floored at
// current usage. With fewer than MinSamples samples it returns the zero
// Prediction. Missing data never fails; it only lowers confidence.
func (p UsagePredictor) Predict(history []UsageSample) Prediction {
	if len(history) < p.MinSamples {
		return Prediction{}
	}

	values := make([]float64, 0, len(history))
	for _, s := range history {
		values = append(values, float64(s.TotalUsage))
	}

	n := len(values)
	recent := mean(values[n-10:])
	older := mean(values[n-20 : n-10])
	trend := recent - older

	current := values[n-1]
	peak := current + 2*trend
	if peak < current {
		peak = current
	}

	return Prediction{
		PredictedPeak:  int64(peak),
		TrendDirection: trend,
		Confidence:     p.confidence(values),
		CurrentUsage:   int64(current),
	}
}

// confidence derives a score from the variance of sub-window trend deltas
// over the most recent Window samples: steady trends approach 0.9, noisy
// ones approach 0.1.
func (p UsagePredictor) confidence(values []float64) float64 {
	if len(values) > p.Window {
		values = values[len(values)-p.Window:]
	}
	if len(values) < 2*subWindow {
		return 0.5
	}

	var trends []float64
	for i := subWindow; i <= len(values)-subWindow; i++ {
		recent := mean(values[i : i+subWindow])
		older := mean(values[i-subWindow : i])
		trends = append(trends, recent-older)
	}
	if len(trends) < 2 {
		return 0.5
	}

	c := 1.0 / (1.0 + variance(trends)/p.VarianceNorm)
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
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
