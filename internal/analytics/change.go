package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// PercentChange returns (current-previous)/previous*100. A zero or missing
// previous value, or a missing current value, yields 0.
func PercentChange(previous, current float64) float64 {
	if math.IsNaN(previous) || math.IsNaN(current) || previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// PercentChanges applies PercentChange element-wise.
func PercentChanges(previous, current []float64) []float64 {
	out := make([]float64, len(previous))
	for i := range previous {
		out[i] = PercentChange(previous[i], current[i])
	}
	return out
}

// RankDelta is positive when an airport moved up: previous - current.
func RankDelta(previous, current float64) float64 {
	if math.IsNaN(previous) || math.IsNaN(current) {
		return math.NaN()
	}
	return previous - current
}

// Round rounds half to even at the given number of decimal places.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return f
}
