package services

import (
	"context"
	"fmt"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/metrics"

	"github.com/go-gota/gota/dataframe"
)

// HistogramBins is the bin count of the passenger histograms.
const HistogramBins = 50

// StatsService computes descriptive statistics per flow.
type StatsService struct {
	tables  *TableService
	metrics *metrics.MetricsRegistry
}

func NewStatsService(tables *TableService, m *metrics.MetricsRegistry) *StatsService {
	return &StatsService{tables: tables, metrics: m}
}

// YearDistribution is the chart data of one passenger column.
type YearDistribution struct {
	Year      string             `json:"year"`
	Column    string             `json:"column"`
	Histogram []analytics.Bin    `json:"histogram"`
	Box       *analytics.BoxPlot `json:"box,omitempty"`
	Skew      string             `json:"skew_shape"`
	Kurtosis  string             `json:"kurtosis_shape"`
}

// FlowStatistics is the statistics dashboard of one flow.
type FlowStatistics struct {
	Flow          string
	Label         string
	Airports      int
	Total2023     float64
	Total2022     float64
	Growth        float64
	Summaries     []analytics.Summary
	Table         dataframe.DataFrame
	Distributions []YearDistribution
}

// FlowStatistics summarizes the 2023 and 2022 passenger columns of flow.
// Missing and negative values are left out of the statistics.
func (s *StatsService) FlowStatistics(ctx context.Context, flow string) (*FlowStatistics, error) {
	flow, err := normalizeFlow(flow)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		s.metrics.PipelineDuration.WithLabelValues("flow_statistics").Observe(time.Since(start).Seconds())
	}()

	df := s.tables.Fetch(ctx, flow)
	if frames.IsEmpty(df) {
		return nil, newError(constants.ErrCodeNoData, fmt.Errorf("table %q is empty", flow))
	}

	out := &FlowStatistics{
		Flow:     flow,
		Label:    common.TitleLabel(flow),
		Airports: df.Nrow(),
	}
	for _, year := range []string{constants.Year2023, constants.Year2022} {
		col := constants.PassengersColumn(year, flow)
		if !frames.Has(df, col) {
			return nil, newError(constants.ErrCodeColumnMissing, fmt.Errorf("%s lacks %s", flow, col))
		}
		raw := frames.Floats(df, col)
		if year == constants.Year2023 {
			out.Total2023 = analytics.Sum(raw)
		} else {
			out.Total2022 = analytics.Sum(raw)
		}

		vals := analytics.NonNegative(raw)
		if len(vals) == 0 {
			continue
		}
		summary := analytics.Describe(fmt.Sprintf("Passengers %s (%s)", year, out.Label), vals)
		out.Summaries = append(out.Summaries, summary)

		dist := YearDistribution{
			Year:      year,
			Column:    col,
			Histogram: analytics.Histogram(vals, HistogramBins),
			Skew:      analytics.SkewShape(summary.Skewness),
			Kurtosis:  analytics.KurtosisShape(summary.Kurtosis),
		}
		if box, ok := analytics.Box(vals); ok {
			dist.Box = &box
		}
		out.Distributions = append(out.Distributions, dist)
	}

	out.Growth = analytics.Round(analytics.PercentChange(out.Total2022, out.Total2023), 2)
	out.Table = analytics.FormatSummaries(out.Summaries)
	return out, nil
}
