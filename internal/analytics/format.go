package analytics

import (
	"fmt"
	"math"
	"strings"

	"airtraffic/statboard/internal/frames"

	"github.com/dustin/go-humanize"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MissingText is shown for undefined statistics.
const MissingText = "n/a"

// Statistic column headers of a formatted summary table.
var SummaryHeaders = []string{
	"Statistic", "Count", "Mean", "Std Dev", "Min", "Q25", "Median", "Q75", "Max",
	"Skewness", "Kurtosis", "CV",
}

// FormatThousands renders v rounded to an integer with comma grouping.
func FormatThousands(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingText
	}
	return humanize.Comma(int64(math.RoundToEven(v)))
}

// FormatPercent renders v with two decimals and a percent sign.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingText
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatDecimal3 renders v with three decimals.
func FormatDecimal3(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingText
	}
	return fmt.Sprintf("%.3f", v)
}

// valueFormatter picks the location/spread formatter from the row label:
// passenger counts and differences are grouped integers, growth rows are
// percentages, anything else gets two decimals.
func valueFormatter(label string) func(float64) string {
	switch {
	case strings.Contains(label, "Passengers") || strings.Contains(label, "Difference"):
		return FormatThousands
	case strings.Contains(label, "Growth") || strings.Contains(label, "%"):
		return FormatPercent
	default:
		return func(v float64) string {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return MissingText
			}
			return fmt.Sprintf("%.2f", v)
		}
	}
}

// FormatSummaries renders one display row per summary. Skewness and
// kurtosis use three decimals and CV is a percentage.
func FormatSummaries(summaries []Summary) dataframe.DataFrame {
	cols := make([][]string, len(SummaryHeaders))
	for _, s := range summaries {
		f := valueFormatter(s.Column)
		row := []string{
			s.Column,
			fmt.Sprintf("%d", s.Count),
			f(s.Mean), f(s.Std), f(s.Min), f(s.Q25), f(s.Median), f(s.Q75), f(s.Max),
			FormatDecimal3(s.Skewness),
			FormatDecimal3(s.Kurtosis),
			FormatPercent(s.CV),
		}
		for i := range row {
			cols[i] = append(cols[i], row[i])
		}
	}

	if len(summaries) == 0 {
		return frames.Empty()
	}
	ss := make([]series.Series, len(SummaryHeaders))
	for i, h := range SummaryHeaders {
		ss[i] = frames.StringSeries(h, cols[i])
	}
	return dataframe.New(ss...)
}

// SummaryFrame is the unformatted counterpart of FormatSummaries, with the
// same headers and numeric values. Undefined statistics are missing.
func SummaryFrame(summaries []Summary) dataframe.DataFrame {
	if len(summaries) == 0 {
		return frames.Empty()
	}
	labels := make([]string, len(summaries))
	counts := make([]int, len(summaries))
	values := make([][]float64, len(SummaryHeaders)-2)
	for i, s := range summaries {
		labels[i] = s.Column
		counts[i] = s.Count
		row := []float64{s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max, s.Skewness, s.Kurtosis, s.CV}
		for j, v := range row {
			values[j] = append(values[j], v)
		}
	}

	ss := []series.Series{
		frames.StringSeries(SummaryHeaders[0], labels),
		frames.IntSeries(SummaryHeaders[1], counts),
	}
	for j, h := range SummaryHeaders[2:] {
		ss = append(ss, frames.FloatSeries(h, values[j]))
	}
	return dataframe.New(ss...)
}
