package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/db/repositories"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/metrics"

	"github.com/go-gota/gota/dataframe"
)

// QueryRunner executes a validated read-only statement.
type QueryRunner interface {
	Query(ctx context.Context, query string, maxRows int) (*repositories.RecordSet, error)
}

// PredefinedQuery is one canned analysis. Run computes it from the
// memoized tables; SQL is its reference text.
type PredefinedQuery struct {
	ID          string
	Title       string
	Description string
	SQL         string
	run         func(s *QueryService, ctx context.Context) (dataframe.DataFrame, error)
}

// QueryResult is a query frame and whether the row cap cut it short.
type QueryResult struct {
	Query     *PredefinedQuery
	Frame     dataframe.DataFrame
	Truncated bool
}

// QueryService runs the predefined queries and constrained custom SQL.
type QueryService struct {
	tables  *TableService
	runner  QueryRunner
	metrics *metrics.MetricsRegistry

	maxRows int
	timeout time.Duration
}

func NewQueryService(tables *TableService, runner QueryRunner, m *metrics.MetricsRegistry, maxRows int, timeout time.Duration) *QueryService {
	return &QueryService{tables: tables, runner: runner, metrics: m, maxRows: maxRows, timeout: timeout}
}

// Predefined query ids.
const (
	QueryIDTopDomesticGrowth       = "top-domestic-growth"
	QueryIDTopDomesticIncrease     = "top-domestic-increase"
	QueryIDDomesticGrowthOver20    = "domestic-growth-over-20"
	QueryIDInternationalProportion = "international-proportion"
	QueryIDTopStates               = "top-states"
	QueryIDImprovedTotalRanking    = "improved-total-ranking"
)

var predefined = []*PredefinedQuery{
	{
		ID:          QueryIDTopDomesticGrowth,
		Title:       "Top 10 domestic growth",
		Description: "Airports with the highest domestic percentage change between 2022 and 2023",
		SQL:         constants.QueryTopDomesticGrowth,
		run:         (*QueryService).topDomesticGrowth,
	},
	{
		ID:          QueryIDTopDomesticIncrease,
		Title:       "Top 10 domestic increase",
		Description: "Airports with the largest absolute domestic passenger increase",
		SQL:         constants.QueryTopDomesticIncrease,
		run:         (*QueryService).topDomesticIncrease,
	},
	{
		ID:          QueryIDDomesticGrowthOver20,
		Title:       "Domestic growth over 20%",
		Description: "Airports whose domestic traffic grew more than 20%",
		SQL:         constants.QueryDomesticGrowthOver20,
		run:         (*QueryService).domesticGrowthOver20,
	},
	{
		ID:          QueryIDInternationalProportion,
		Title:       "International passenger share",
		Description: "Each airport's share of 2023 international passengers",
		SQL:         constants.QueryInternationalProportion,
		run:         (*QueryService).internationalProportion,
	},
	{
		ID:          QueryIDTopStates,
		Title:       "Top 5 states",
		Description: "States with the most 2023 domestic plus international passengers",
		SQL:         constants.QueryTopStates,
		run:         (*QueryService).topStates,
	},
	{
		ID:          QueryIDImprovedTotalRanking,
		Title:       "Improved total ranking",
		Description: "Airports ranked higher in 2023 than in 2022",
		SQL:         constants.QueryImprovedTotalRanking,
		run:         (*QueryService).improvedTotalRanking,
	},
}

// List returns the predefined queries in display order.
func (s *QueryService) List() []*PredefinedQuery {
	return predefined
}

// Run executes the predefined query id.
func (s *QueryService) Run(ctx context.Context, id string) (*QueryResult, error) {
	for _, q := range predefined {
		if q.ID != id {
			continue
		}
		start := time.Now()
		df, err := q.run(s, ctx)
		s.metrics.PipelineDuration.WithLabelValues("query_" + q.ID).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		return &QueryResult{Query: q, Frame: df}, nil
	}
	return nil, newError(constants.ErrCodeUnknownQuery, fmt.Errorf("query %q", id))
}

// Execute runs custom SQL: a single read-only statement bounded by the
// service timeout and row cap.
func (s *QueryService) Execute(ctx context.Context, query string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rs, err := s.runner.Query(ctx, query, s.maxRows)
	if err != nil {
		return nil, s.customQueryError(err)
	}
	s.metrics.CustomQueriesTotal.WithLabelValues("ok").Inc()
	return &QueryResult{Frame: frames.FromRecordSet(rs), Truncated: rs.Truncated}, nil
}

func (s *QueryService) customQueryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrEmptyQuery),
		errors.Is(err, repositories.ErrNotReadOnly),
		errors.Is(err, repositories.ErrMultipleStatements),
		errors.Is(err, repositories.ErrForbiddenKeyword):
		s.metrics.CustomQueriesTotal.WithLabelValues("rejected").Inc()
		return &AnalyticsError{Code: constants.ErrCodeInvalidQuery, Message: err.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		s.metrics.CustomQueriesTotal.WithLabelValues("timeout").Inc()
		return newError(constants.ErrCodeQueryTimeout, err)
	default:
		s.metrics.CustomQueriesTotal.WithLabelValues("failed").Inc()
		logging.Warn("Custom query failed", "error", err)
		return newError(constants.ErrCodeQueryFailed, err)
	}
}

func (s *QueryService) domestic(ctx context.Context) (dataframe.DataFrame, error) {
	df := s.tables.Fetch(ctx, constants.TableDomestic)
	if frames.IsEmpty(df) {
		return frames.Empty(), newError(constants.ErrCodeNoData, fmt.Errorf("table %q is empty", constants.TableDomestic))
	}
	return df, nil
}

// domesticView renames the domestic columns for display; extra is appended.
func domesticView(df dataframe.DataFrame, extra ...dataframe.DataFrame) dataframe.DataFrame {
	out := dataframe.New(
		frames.StringSeries("name", frames.Strings(df, constants.ColAirport)),
		frames.NullableIntSeries("2022_passengers", frames.Floats(df, constants.PassengersColumn(constants.Year2022, constants.FlowDomestic))),
		frames.NullableIntSeries("2023_passengers", frames.Floats(df, constants.PassengersColumn(constants.Year2023, constants.FlowDomestic))),
	)
	for _, e := range extra {
		out = out.CBind(e)
	}
	return out
}

func (s *QueryService) topDomesticGrowth(ctx context.Context) (dataframe.DataFrame, error) {
	df, err := s.domestic(ctx)
	if err != nil {
		return df, err
	}
	view := domesticView(df, dataframe.New(frames.FloatSeries("percentage_change",
		frames.Floats(df, constants.ChangeColumn(constants.FlowDomestic)))))
	sorted, err := frames.SortBy(view, "percentage_change", false)
	if err != nil {
		return frames.Empty(), stageError(err)
	}
	return frames.Head(sorted, 10), nil
}

func (s *QueryService) topDomesticIncrease(ctx context.Context) (dataframe.DataFrame, error) {
	df, err := s.domestic(ctx)
	if err != nil {
		return df, err
	}
	v22 := frames.Floats(df, constants.PassengersColumn(constants.Year2022, constants.FlowDomestic))
	v23 := frames.Floats(df, constants.PassengersColumn(constants.Year2023, constants.FlowDomestic))
	inc := make([]float64, len(v22))
	for i := range inc {
		inc[i] = v23[i] - v22[i]
	}
	view := domesticView(df, dataframe.New(frames.NullableIntSeries("increase", inc)))
	sorted, err := frames.SortBy(view, "increase", false)
	if err != nil {
		return frames.Empty(), stageError(err)
	}
	return frames.Head(sorted, 10), nil
}

func (s *QueryService) domesticGrowthOver20(ctx context.Context) (dataframe.DataFrame, error) {
	df, err := s.domestic(ctx)
	if err != nil {
		return df, err
	}
	changeCol := constants.ChangeColumn(constants.FlowDomestic)
	view := domesticView(df, dataframe.New(frames.FloatSeries(changeCol, frames.Floats(df, changeCol))))
	change := frames.Floats(view, changeCol)
	view = frames.Filter(view, func(i int) bool { return change[i] > 20 })
	sorted, err := frames.SortBy(view, changeCol, false)
	if err != nil {
		return frames.Empty(), stageError(err)
	}
	return sorted, nil
}

func (s *QueryService) internationalProportion(ctx context.Context) (dataframe.DataFrame, error) {
	df := s.tables.Fetch(ctx, constants.TableInternational)
	if frames.IsEmpty(df) {
		return frames.Empty(), newError(constants.ErrCodeNoData, fmt.Errorf("table %q is empty", constants.TableInternational))
	}
	shares := analytics.Proportions(
		frames.Strings(df, constants.ColAirport),
		frames.Floats(df, constants.PassengersColumn(constants.Year2023, constants.FlowInternational)),
	)
	labels := make([]string, len(shares))
	props := make([]float64, len(shares))
	for i, sh := range shares {
		labels[i], props[i] = sh.Label, sh.Proportion
	}
	return dataframe.New(
		frames.StringSeries("airport_name", labels),
		frames.FloatSeries(constants.ColProportion, props),
	), nil
}

// topStates inner-joins domestic and international on airport_id and sums
// the 2023 passengers of airports with both counts per state.
func (s *QueryService) topStates(ctx context.Context) (dataframe.DataFrame, error) {
	t, err := loadTables(ctx, s.tables,
		[]string{constants.TableDomestic, constants.TableInternational, constants.TableAirports})
	if err != nil {
		return frames.Empty(), err
	}
	dom, inter, airports := t[constants.TableDomestic], t[constants.TableInternational], t[constants.TableAirports]

	interIdx := keyRows(inter, constants.ColAirportID)
	airportIdx := keyRows(airports, constants.ColID)
	interVals := frames.Floats(inter, constants.PassengersColumn(constants.Year2023, constants.FlowInternational))
	states := frames.Strings(airports, constants.ColState)
	if states == nil {
		return frames.Empty(), newError(constants.ErrCodeColumnMissing, fmt.Errorf("airports lacks %s", constants.ColState))
	}
	domVals := frames.Floats(dom, constants.PassengersColumn(constants.Year2023, constants.FlowDomestic))

	totals := make(map[string]float64)
	var order []string
	for i, key := range frames.Floats(dom, constants.ColAirportID) {
		ir, ok := interIdx[key]
		if !ok {
			continue
		}
		ar, ok := airportIdx[key]
		if !ok || states[ar] == "" {
			continue
		}
		v := domVals[i] + interVals[ir]
		if math.IsNaN(v) {
			continue
		}
		st := states[ar]
		if _, seen := totals[st]; !seen {
			order = append(order, st)
		}
		totals[st] += v
	}

	sort.SliceStable(order, func(a, b int) bool { return totals[order[a]] > totals[order[b]] })
	if len(order) > 5 {
		order = order[:5]
	}
	vals := make([]float64, len(order))
	for i, st := range order {
		vals[i] = totals[st]
	}
	return dataframe.New(
		frames.StringSeries("states", order),
		frames.NullableIntSeries("total_passengers", vals),
	), nil
}

func (s *QueryService) improvedTotalRanking(ctx context.Context) (dataframe.DataFrame, error) {
	df := s.tables.Fetch(ctx, constants.TableTotal)
	if frames.IsEmpty(df) {
		return frames.Empty(), newError(constants.ErrCodeNoData, fmt.Errorf("table %q is empty", constants.TableTotal))
	}
	r22 := frames.Floats(df, constants.ColRank2022Total)
	r23 := frames.Floats(df, constants.ColRank2023Total)
	view := dataframe.New(
		frames.StringSeries("name", frames.Strings(df, constants.ColAirport)),
		frames.NullableIntSeries(constants.ColRank2022Total, r22),
		frames.NullableIntSeries(constants.ColRank2023Total, r23),
	)
	view = frames.Filter(view, func(i int) bool { return r23[i] < r22[i] })
	sorted, err := frames.SortBy(view, constants.ColRank2023Total, true)
	if err != nil {
		return frames.Empty(), stageError(err)
	}
	return sorted, nil
}

// keyRows maps each numeric key of col to its first row.
func keyRows(df dataframe.DataFrame, col string) map[float64]int {
	out := make(map[float64]int)
	for i, v := range frames.Floats(df, col) {
		if math.IsNaN(v) {
			continue
		}
		if _, seen := out[v]; !seen {
			out[v] = i
		}
	}
	return out
}
