package services

import (
	"context"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/metrics"

	"github.com/go-gota/gota/dataframe"
)

// MixService builds the domestic/international traffic mix view.
type MixService struct {
	tables  *TableService
	metrics *metrics.MetricsRegistry
}

func NewMixService(tables *TableService, m *metrics.MetricsRegistry) *MixService {
	return &MixService{tables: tables, metrics: m}
}

// TrafficMix is the filtered mix table and the summary over all airports.
type TrafficMix struct {
	Year    string
	Frame   dataframe.DataFrame
	Summary analytics.MixSummary
}

// TrafficMix classifies every airport for year. search and classification
// filter the table only.
func (s *MixService) TrafficMix(ctx context.Context, year, search, classification string) (*TrafficMix, error) {
	year, err := normalizeYear(year)
	if err != nil {
		return nil, err
	}
	if classification != "" && !analytics.IsCategory(classification) {
		return nil, invalidParam("unknown classification %q", classification)
	}
	start := time.Now()
	defer func() {
		s.metrics.PipelineDuration.WithLabelValues("traffic_mix").Observe(time.Since(start).Seconds())
	}()

	t, err := loadTables(ctx, s.tables,
		[]string{constants.TableDomestic, constants.TableInternational, constants.TableAirports})
	if err != nil {
		return nil, err
	}

	df, summary, err := analytics.TrafficMix(t[constants.TableDomestic], t[constants.TableInternational], year)
	if err != nil {
		return nil, stageError(err)
	}
	return &TrafficMix{
		Year:    year,
		Frame:   analytics.FilterMix(df, search, classification),
		Summary: summary,
	}, nil
}
