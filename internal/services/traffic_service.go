package services

import (
	"context"
	"fmt"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/metrics"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"
)

// TrafficService builds the joined, ranked and growth views.
type TrafficService struct {
	tables  *TableService
	metrics *metrics.MetricsRegistry
}

func NewTrafficService(tables *TableService, m *metrics.MetricsRegistry) *TrafficService {
	return &TrafficService{tables: tables, metrics: m}
}

// loadTables fetches the named tables (with keys) concurrently. An empty
// required table is a no-data error.
func loadTables(ctx context.Context, tables *TableService, required []string, optional ...string) (map[string]dataframe.DataFrame, error) {
	names := append(append([]string(nil), required...), optional...)
	out := make([]dataframe.DataFrame, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			df := tables.FetchWithKeys(gctx, name)
			if i < len(required) && frames.IsEmpty(df) {
				return newError(constants.ErrCodeNoData, fmt.Errorf("table %q is empty", name))
			}
			out[i] = df
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]dataframe.DataFrame, len(names))
	for i, name := range names {
		byName[name] = out[i]
	}
	return byName, nil
}

func (s *TrafficService) observe(view string, start time.Time) {
	s.metrics.PipelineDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// Denormalized returns the wide per-airport view.
func (s *TrafficService) Denormalized(ctx context.Context) (dataframe.DataFrame, error) {
	defer s.observe("denormalized", time.Now())

	t, err := loadTables(ctx, s.tables,
		[]string{constants.TableTotal},
		constants.TableDomestic, constants.TableInternational, constants.TableAirports)
	if err != nil {
		return frames.Empty(), err
	}

	df, err := analytics.Denormalize(t[constants.TableTotal], t[constants.TableDomestic],
		t[constants.TableInternational], t[constants.TableAirports])
	if err != nil {
		return frames.Empty(), stageError(err)
	}
	return df, nil
}

// TopAirports ranks the denormalized view by <year>_<flow>. n of 0 means
// DefaultLimit.
func (s *TrafficService) TopAirports(ctx context.Context, year, flow, order string, n int) (dataframe.DataFrame, error) {
	year, err := normalizeYear(year)
	if err != nil {
		return frames.Empty(), err
	}
	flow, err = normalizeFlow(flow)
	if err != nil {
		return frames.Empty(), err
	}
	order, err = normalizeOrder(order)
	if err != nil {
		return frames.Empty(), err
	}
	n, err = normalizeLimit(n)
	if err != nil {
		return frames.Empty(), err
	}

	df, err := s.Denormalized(ctx)
	if err != nil {
		return frames.Empty(), err
	}
	defer s.observe("top_airports", time.Now())

	col := constants.ShortColumn(year, flow)
	if !frames.Has(df, col) {
		return frames.Empty(), invalidParam("column %q is not available", col)
	}
	sorted, err := frames.SortBy(df, col, order == OrderBottom)
	if err != nil {
		return frames.Empty(), stageError(err)
	}
	return frames.Head(sorted, n), nil
}

// Growth lists every airport of flow with its 2022 and 2023 passengers and
// cambio_<flow>_pct, ordered by the change.
func (s *TrafficService) Growth(ctx context.Context, flow, order string, n int) (dataframe.DataFrame, error) {
	flow, err := normalizeFlow(flow)
	if err != nil {
		return frames.Empty(), err
	}
	order, err = normalizeOrder(order)
	if err != nil {
		return frames.Empty(), err
	}
	n, err = normalizeLimit(n)
	if err != nil {
		return frames.Empty(), err
	}
	defer s.observe("growth", time.Now())

	src := s.tables.Fetch(ctx, flow)
	if frames.IsEmpty(src) {
		return frames.Empty(), newError(constants.ErrCodeNoData, fmt.Errorf("table %q is empty", flow))
	}
	p22 := constants.PassengersColumn(constants.Year2022, flow)
	p23 := constants.PassengersColumn(constants.Year2023, flow)
	if missing := frames.Missing(src, constants.ColAirport, p22, p23); len(missing) > 0 {
		return frames.Empty(), newError(constants.ErrCodeColumnMissing, fmt.Errorf("%s lacks %v", flow, missing))
	}

	v22 := frames.Floats(src, p22)
	v23 := frames.Floats(src, p23)
	change := analytics.PercentChanges(v22, v23)
	for i := range change {
		change[i] = analytics.Round(change[i], 2)
	}

	df := dataframe.New(
		frames.StringSeries(constants.ColAirport, frames.Strings(src, constants.ColAirport)),
		frames.NullableIntSeries(constants.ShortColumn(constants.Year2022, flow), v22),
		frames.NullableIntSeries(constants.ShortColumn(constants.Year2023, flow), v23),
		frames.FloatSeries(constants.GrowthColumn(flow), change),
	)
	sorted, err := frames.SortBy(df, constants.GrowthColumn(flow), order == OrderBottom)
	if err != nil {
		return frames.Empty(), stageError(err)
	}
	return frames.Head(sorted, n), nil
}

// RankComparison compares the 2022 and 2023 total rankings.
func (s *TrafficService) RankComparison(ctx context.Context) (*analytics.RankComparison, error) {
	defer s.observe("rank_comparison", time.Now())

	total := s.tables.Fetch(ctx, constants.TableTotal)
	if frames.IsEmpty(total) {
		return nil, newError(constants.ErrCodeNoData, fmt.Errorf("table %q is empty", constants.TableTotal))
	}
	cmp, err := analytics.CompareRankings(total, ComparisonRankLimit)
	if err != nil {
		return nil, stageError(err)
	}
	if frames.IsEmpty(cmp.Complete) {
		return nil, newError(constants.ErrCodeNoData, fmt.Errorf("no complete ranking rows"))
	}
	return cmp, nil
}
