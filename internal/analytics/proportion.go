package analytics

import (
	"math"
	"sort"

	"airtraffic/statboard/internal/constants"
)

// Share is one labelled proportion.
type Share struct {
	Label      string
	Proportion float64
}

// Proportions returns each value's share of the sum rounded to 3 decimals,
// plus a TOTAL row of 1.000, sorted by proportion descending. A zero sum
// gives every row 0. Missing values count as 0.
func Proportions(labels []string, values []float64) []Share {
	var sum float64
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
		}
	}

	out := make([]Share, 0, len(values)+1)
	for i, v := range values {
		p := 0.0
		if sum != 0 && !math.IsNaN(v) {
			p = Round(v/sum, 3)
		}
		out = append(out, Share{Label: labels[i], Proportion: p})
	}
	out = append(out, Share{Label: constants.TotalRowLabel, Proportion: 1})

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Proportion > out[b].Proportion
	})
	return out
}
