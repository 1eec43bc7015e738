package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin is one histogram bucket [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits the non-missing values into equal-width bins. The
// maximum falls into the last bin. A constant series yields one bin.
func Histogram(vals []float64, bins int) []Bin {
	x := DropMissing(vals)
	if len(x) == 0 || bins < 1 {
		return []Bin{}
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(x)}}
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	upper := dividers[bins]
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Upper = upper
	return out
}

// BoxPlot holds the five-number summary plus the values outside the
// 1.5*IQR whiskers.
type BoxPlot struct {
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Outliers []float64 `json:"outliers"`
}

// Box computes box-plot data over the non-missing values. ok is false when
// there are none.
func Box(vals []float64) (BoxPlot, bool) {
	x := DropMissing(vals)
	if len(x) == 0 {
		return BoxPlot{}, false
	}
	sort.Float64s(x)

	b := BoxPlot{
		Q1:       Quantile(x, 0.25),
		Median:   Quantile(x, 0.5),
		Q3:       Quantile(x, 0.75),
		Outliers: []float64{},
	}
	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr

	b.Min, b.Max = math.Inf(1), math.Inf(-1)
	for _, v := range x {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.Min = math.Min(b.Min, v)
		b.Max = math.Max(b.Max, v)
	}
	return b, true
}
