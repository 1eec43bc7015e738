package analytics

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the descriptive statistics of one numeric column. Undefined
// values are NaN and serialize as null.
type Summary struct {
	Column   string
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	Q25      float64
	Median   float64
	Q75      float64
	Max      float64
	Skewness float64
	Kurtosis float64
	CV       float64
}

// Describe summarizes the non-missing values of vals. The standard
// deviation is the sample (n-1) estimator, skewness the adjusted
// Fisher-Pearson coefficient and kurtosis the bias-corrected excess
// kurtosis. CV is std/mean*100, or 0 when the mean is 0.
func Describe(column string, vals []float64) Summary {
	x := DropMissing(vals)
	n := len(x)
	s := Summary{Column: column, Count: n}

	nan := math.NaN()
	if n == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		s.Skewness, s.Kurtosis, s.CV = nan, nan, nan
		return s
	}

	sort.Float64s(x)
	s.Mean = stat.Mean(x, nil)
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Q25 = Quantile(x, 0.25)
	s.Median = Quantile(x, 0.5)
	s.Q75 = Quantile(x, 0.75)

	s.Std = nan
	if n >= 2 {
		s.Std = stat.StdDev(x, nil)
	}

	constant := s.Min == s.Max
	switch {
	case n < 3:
		s.Skewness = nan
	case constant:
		s.Skewness = 0
	default:
		s.Skewness = stat.Skew(x, nil)
	}
	switch {
	case n < 4:
		s.Kurtosis = nan
	case constant:
		s.Kurtosis = 0
	default:
		s.Kurtosis = stat.ExKurtosis(x, nil)
	}

	switch {
	case math.IsNaN(s.Std):
		s.CV = nan
	case s.Mean == 0:
		s.CV = 0
	default:
		s.CV = s.Std / s.Mean * 100
	}
	return s
}

// Quantile interpolates linearly between closest ranks (h = (n-1)p) over
// sorted values.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// DropMissing returns a copy of vals without NaN.
func DropMissing(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// NonNegative returns a copy of vals without NaN or negative values.
func NonNegative(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && v >= 0 {
			out = append(out, v)
		}
	}
	return out
}

// Sum adds the non-missing values.
func Sum(vals []float64) float64 {
	return floats.Sum(DropMissing(vals))
}

func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column   string   `json:"column"`
		Count    int      `json:"count"`
		Mean     *float64 `json:"mean"`
		Std      *float64 `json:"std"`
		Min      *float64 `json:"min"`
		Q25      *float64 `json:"q25"`
		Median   *float64 `json:"median"`
		Q75      *float64 `json:"q75"`
		Max      *float64 `json:"max"`
		Skewness *float64 `json:"skewness"`
		Kurtosis *float64 `json:"kurtosis"`
		CV       *float64 `json:"cv"`
	}{
		Column: s.Column, Count: s.Count,
		Mean: nullable(s.Mean), Std: nullable(s.Std), Min: nullable(s.Min),
		Q25: nullable(s.Q25), Median: nullable(s.Median), Q75: nullable(s.Q75),
		Max: nullable(s.Max), Skewness: nullable(s.Skewness),
		Kurtosis: nullable(s.Kurtosis), CV: nullable(s.CV),
	})
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SkewShape describes a skewness value.
func SkewShape(skew float64) string {
	switch {
	case math.IsNaN(skew):
		return MissingText
	case skew > 0.5:
		return "Right-skewed"
	case skew < -0.5:
		return "Left-skewed"
	default:
		return "Symmetric"
	}
}

// KurtosisShape describes an excess kurtosis value against the normal.
func KurtosisShape(kurt float64) string {
	switch {
	case math.IsNaN(kurt):
		return MissingText
	case kurt > 0:
		return "More peaked than normal"
	case kurt < 0:
		return "Flatter than normal"
	default:
		return "Similar to normal"
	}
}
