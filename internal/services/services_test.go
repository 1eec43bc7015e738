package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/db/dbtest"
	"airtraffic/statboard/internal/db/repositories"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/metrics"

	"github.com/go-gota/gota/series"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	atl = "Hartsfield-Jackson Atlanta International"
	dfw = "Dallas/Fort Worth International"
	den = "Denver International"
	ord = "Chicago O'Hare International"
	lax = "Los Angeles International"
	jfk = "John F. Kennedy International"
	aus = "Austin-Bergstrom International"
)

type countingSource struct {
	inner TableSource
	calls atomic.Int32
}

func (c *countingSource) Select(ctx context.Context, table string, embeds ...repositories.Embed) (*repositories.RecordSet, error) {
	c.calls.Add(1)
	return c.inner.Select(ctx, table, embeds...)
}

// gatedSource blocks every Select until release is closed or ctx ends.
type gatedSource struct {
	inner   TableSource
	once    sync.Once
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedSource(inner TableSource) *gatedSource {
	return &gatedSource{inner: inner, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSource) Select(ctx context.Context, table string, embeds ...repositories.Embed) (*repositories.RecordSet, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.inner.Select(ctx, table, embeds...)
}

type testEnv struct {
	repo    *repositories.TableRepository
	source  *countingSource
	cache   *common.CacheService
	metrics *metrics.MetricsRegistry
	tables  *TableService
}

func newEnv(t *testing.T, seeded bool) *testEnv {
	t.Helper()
	logging.SetLogger(zap.NewNop().Sugar())

	open := dbtest.OpenEmpty
	if seeded {
		open = dbtest.Open
	}
	conns := open(t)
	repo := repositories.NewTableRepository(conns.SQL)
	source := &countingSource{inner: repo}
	cache := common.NewCacheService(0, time.Minute)
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	return &testEnv{
		repo:    repo,
		source:  source,
		cache:   cache,
		metrics: m,
		tables:  NewTableService(source, cache, m),
	}
}

func errCode(err error) string {
	var ae *AnalyticsError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func TestTableService_FetchDomesticOrderAndShape(t *testing.T) {
	env := newEnv(t, true)
	df := env.tables.Fetch(context.Background(), constants.TableDomestic)

	want := []string{
		"id", "airport",
		"2022_enplaned_passengers_dom", "2023_enplaned_passengers_dom",
		"percentage_change_2022_2023_dom", "2023_rank_dom",
	}
	if !reflect.DeepEqual(df.Names(), want) {
		t.Fatalf("Expected columns %v, got %v", want, df.Names())
	}
	if got := frames.Floats(df, "id"); !reflect.DeepEqual(got, []float64{12, 11, 14, 16, 15, 10, 13}) {
		t.Errorf("Expected rows by 2023 rank, got ids %v", got)
	}
	if got := frames.Strings(df, "airport")[0]; got != atl {
		t.Errorf("Expected %q first, got %q", atl, got)
	}
}

func TestTableService_FetchTotalLeadsWithRanks(t *testing.T) {
	env := newEnv(t, true)
	df := env.tables.FetchWithKeys(context.Background(), constants.TableTotal)

	want := []string{
		"id", "airport", "2023_rank_total", "2022_rank_total",
		"2022_enplaned_passengers_total", "2023_enplaned_passengers_total",
		"percentage_change_2022_2023_total", "airport_id",
	}
	if !reflect.DeepEqual(df.Names(), want) {
		t.Fatalf("Expected columns %v, got %v", want, df.Names())
	}
	if got := frames.Floats(df, "2023_rank_total"); !reflect.DeepEqual(got, []float64{1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("Expected ascending ranks, got %v", got)
	}
}

func TestTableService_FetchAirportsFlattensCityAndState(t *testing.T) {
	env := newEnv(t, true)
	df := env.tables.Fetch(context.Background(), constants.TableAirports)

	want := []string{"id", "airport", "iata_code", "city", "state"}
	if !reflect.DeepEqual(df.Names(), want) {
		t.Fatalf("Expected columns %v, got %v", want, df.Names())
	}
	cities := frames.Strings(df, "city")
	states := frames.Strings(df, "state")
	if cities[0] != "Atlanta" || states[0] != "Georgia" {
		t.Errorf("Unexpected first airport %q/%q", cities[0], states[0])
	}
	if !df.Col("city").Elem(6).IsNA() || states[6] != "Texas" {
		t.Errorf("Expected AUS without city in Texas, got %q/%q", cities[6], states[6])
	}
}

func TestTableService_InternationalDropsOrphans(t *testing.T) {
	env := newEnv(t, true)
	df := env.tables.Fetch(context.Background(), constants.TableInternational)
	if df.Nrow() != 5 {
		t.Errorf("Expected 5 rows with a known airport, got %d", df.Nrow())
	}
}

func TestTableService_MemoizesUntilInvalidated(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	env.tables.Fetch(ctx, constants.TableState)
	env.tables.Fetch(ctx, constants.TableState)
	if got := env.source.calls.Load(); got != 1 {
		t.Fatalf("Expected 1 store call, got %d", got)
	}

	env.tables.Invalidate(constants.TableState)
	env.tables.Fetch(ctx, constants.TableState)
	if got := env.source.calls.Load(); got != 2 {
		t.Fatalf("Expected a reload after invalidation, got %d calls", got)
	}

	if got := env.tables.InvalidateAll(); len(got) != len(constants.Tables) {
		t.Errorf("Expected every table invalidated, got %v", got)
	}
	env.tables.Fetch(ctx, constants.TableState)
	if got := env.source.calls.Load(); got != 3 {
		t.Errorf("Expected a reload after invalidating all, got %d calls", got)
	}
}

func TestTableService_SharedLoadOutlivesCancelledCaller(t *testing.T) {
	env := newEnv(t, true)
	source := newGatedSource(env.repo)
	tables := NewTableService(source, env.cache, env.metrics)

	first, cancel := context.WithCancel(context.Background())
	firstRows := make(chan int, 1)
	go func() { firstRows <- tables.Fetch(first, constants.TableState).Nrow() }()
	<-source.started

	secondRows := make(chan int, 1)
	go func() { secondRows <- tables.Fetch(context.Background(), constants.TableState).Nrow() }()

	cancel()
	select {
	case n := <-firstRows:
		if n != 0 {
			t.Errorf("Expected the cancelled caller to get an empty frame, got %d rows", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Cancelled caller did not return")
	}

	close(source.release)
	select {
	case n := <-secondRows:
		if n != 6 {
			t.Errorf("Expected 6 rows for the live caller, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Live caller did not return")
	}

	if got := tables.Fetch(context.Background(), constants.TableState).Nrow(); got != 6 {
		t.Errorf("Expected the shared load to be cached, got %d rows", got)
	}
	if got := source.calls.Load(); got != 1 {
		t.Errorf("Expected 1 store call, got %d", got)
	}
}

func TestTableService_ReadsJSONShapedCacheEntries(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	rs, err := env.repo.Select(ctx, constants.TableState)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	raw, _ := json.Marshal(rs)
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	env.cache.Set(cacheKey(constants.TableState), generic, 0)

	df := env.tables.Fetch(ctx, constants.TableState)
	if df.Nrow() != 6 {
		t.Fatalf("Expected 6 rows from cache, got %d", df.Nrow())
	}
	if env.source.calls.Load() != 0 {
		t.Error("Expected no store call for a cached table")
	}
	if df.Col("id").Type() != series.Int {
		t.Errorf("Expected integer ids after decoding, got %v", df.Col("id").Type())
	}
}

func TestTableService_EmptyStore(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	if !frames.IsEmpty(env.tables.Fetch(ctx, constants.TableTotal)) {
		t.Error("Expected empty frame for an empty table")
	}
	if _, err := env.tables.Browse(ctx, constants.TableTotal); errCode(err) != constants.ErrCodeNoData {
		t.Errorf("Expected NO_DATA, got %v", err)
	}
	if !frames.IsEmpty(env.tables.Fetch(ctx, "flights")) {
		t.Error("Expected empty frame for an unknown table")
	}
}

func TestTableService_Browse(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	view, err := env.tables.Browse(ctx, constants.TableDomestic)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if view.Total2023 == nil || *view.Total2023 != 535000 {
		t.Errorf("Expected 2023 total 535000, got %v", view.Total2023)
	}
	if view.Total2022 == nil || *view.Total2022 != 420000 {
		t.Errorf("Expected 2022 total 420000, got %v", view.Total2022)
	}

	state, err := env.tables.Browse(ctx, constants.TableState)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if state.Label != "State" || state.Total2023 != nil {
		t.Errorf("Unexpected state view %+v", state)
	}

	if _, err := env.tables.Browse(ctx, "flights"); errCode(err) != constants.ErrCodeUnknownTable {
		t.Errorf("Expected UNKNOWN_TABLE, got %v", err)
	}
}

func TestTrafficService_Denormalized(t *testing.T) {
	env := newEnv(t, true)
	svc := NewTrafficService(env.tables, env.metrics)

	df, err := svc.Denormalized(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if df.Nrow() != 7 || df.Ncol() != 12 {
		t.Fatalf("Expected 7x12, got %dx%d", df.Nrow(), df.Ncol())
	}
	inter := frames.Floats(df, "2023_international")
	if inter[0] != 12000 || !math.IsNaN(inter[3]) {
		t.Errorf("Unexpected international column %v", inter)
	}
	if codes := frames.Strings(df, "iata_code"); codes[0] != "ATL" || codes[6] != "AUS" {
		t.Errorf("Unexpected codes %v", codes)
	}
}

func TestTrafficService_TopAirports(t *testing.T) {
	env := newEnv(t, true)
	svc := NewTrafficService(env.tables, env.metrics)
	ctx := context.Background()

	top, err := svc.TopAirports(ctx, "2023", "total", "top", 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := frames.Strings(top, "airport"); !reflect.DeepEqual(got, []string{atl, dfw, lax}) {
		t.Errorf("Unexpected top airports %v", got)
	}

	bottom, err := svc.TopAirports(ctx, "2022", "domestic", "bottom", 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := frames.Strings(bottom, "airport"); !reflect.DeepEqual(got, []string{aus, jfk}) {
		t.Errorf("Unexpected bottom airports %v", got)
	}

	def, _ := svc.TopAirports(ctx, "", "", "", 0)
	if def.Nrow() != 7 {
		t.Errorf("Expected default limit to keep all 7 rows, got %d", def.Nrow())
	}

	type params struct {
		year, flow, order string
		n                 int
	}
	for _, bad := range []params{
		{"2021", "total", "top", 5},
		{"2023", "cargo", "top", 5},
		{"2023", "total", "middle", 5},
		{"2023", "total", "top", 101},
		{"2023", "total", "top", -1},
	} {
		if _, err := svc.TopAirports(ctx, bad.year, bad.flow, bad.order, bad.n); errCode(err) != constants.ErrCodeInvalidParameter {
			t.Errorf("%+v: expected INVALID_PARAMETER, got %v", bad, err)
		}
	}
}

func TestTrafficService_Growth(t *testing.T) {
	env := newEnv(t, true)
	svc := NewTrafficService(env.tables, env.metrics)

	df, err := svc.Growth(context.Background(), "domestic", "top", 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"airport", "2022_domestic", "2023_domestic", "cambio_domestic_pct"}
	if !reflect.DeepEqual(df.Names(), want) {
		t.Fatalf("Expected columns %v, got %v", want, df.Names())
	}
	if got := frames.Strings(df, "airport"); !reflect.DeepEqual(got, []string{lax, dfw, ord}) {
		t.Errorf("Unexpected order %v", got)
	}
	if got := frames.Floats(df, "cambio_domestic_pct"); got[0] != 42 || got[1] != 25 {
		t.Errorf("Unexpected growth %v", got)
	}

	bottom, _ := svc.Growth(context.Background(), "domestic", "bottom", 1)
	if got := frames.Floats(bottom, "cambio_domestic_pct"); got[0] != 0 || frames.Strings(bottom, "airport")[0] != aus {
		t.Errorf("Expected AUS with zero-base growth 0, got %v", got)
	}
}

func TestTrafficService_RankComparison(t *testing.T) {
	env := newEnv(t, true)
	svc := NewTrafficService(env.tables, env.metrics)

	cmp, err := svc.RankComparison(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cmp.Complete.Nrow() != 6 {
		t.Errorf("Expected 6 complete rows, got %d", cmp.Complete.Nrow())
	}
	if got := frames.Strings(cmp.Top, analytics.ColCompAirport); !reflect.DeepEqual(got, []string{atl, dfw, lax, den, ord, jfk}) {
		t.Errorf("Unexpected top order %v", got)
	}
	if cmp.TopGrowth == nil || cmp.TopGrowth.Airport != lax || cmp.TopGrowth.Value != 37.14 {
		t.Errorf("Unexpected top growth %+v", cmp.TopGrowth)
	}
	if cmp.LargestDrop == nil || cmp.LargestDrop.Airport != den || cmp.LargestDrop.Value != -2 {
		t.Errorf("Unexpected largest drop %+v", cmp.LargestDrop)
	}
	if cmp.Statistics.Nrow() != 4 {
		t.Errorf("Expected 4 statistic rows, got %d", cmp.Statistics.Nrow())
	}
}

func TestStatsService_FlowStatistics(t *testing.T) {
	env := newEnv(t, true)
	svc := NewStatsService(env.tables, env.metrics)

	st, err := svc.FlowStatistics(context.Background(), "total")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if st.Airports != 7 || st.Total2023 != 627000 || st.Total2022 != 498000 {
		t.Errorf("Unexpected headline %+v", st)
	}
	if st.Growth != 25.9 {
		t.Errorf("Expected growth 25.9, got %v", st.Growth)
	}
	if len(st.Summaries) != 2 || st.Summaries[0].Count != 7 {
		t.Fatalf("Unexpected summaries %+v", st.Summaries)
	}
	if len(st.Distributions) != 2 || len(st.Distributions[0].Histogram) != HistogramBins {
		t.Errorf("Expected %d-bin histograms, got %+v", HistogramBins, st.Distributions)
	}
	if st.Table.Nrow() != 2 {
		t.Errorf("Expected 2 formatted rows, got %d", st.Table.Nrow())
	}

	if _, err := svc.FlowStatistics(context.Background(), "cargo"); errCode(err) != constants.ErrCodeInvalidParameter {
		t.Errorf("Expected INVALID_PARAMETER, got %v", err)
	}
}

func TestMixService_TrafficMix(t *testing.T) {
	env := newEnv(t, true)
	svc := NewMixService(env.tables, env.metrics)
	ctx := context.Background()

	mix, err := svc.TrafficMix(ctx, "2023", "", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := frames.Strings(mix.Frame, "airport"); !reflect.DeepEqual(got, []string{atl, dfw, lax, den, ord, jfk, aus}) {
		t.Errorf("Unexpected order %v", got)
	}
	if got := frames.Floats(mix.Frame, analytics.ColMixPctDomestic); got[0] != 90.91 || got[2] != 73.96 {
		t.Errorf("Unexpected domestic shares %v", got)
	}
	s := mix.Summary
	if s.Airports != 7 || s.TotalDomestic != 535000 || s.TotalInternational != 92000 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if s.PctDomestic != 85.3 || s.PctInternational != 14.7 {
		t.Errorf("Unexpected global shares %v/%v", s.PctDomestic, s.PctInternational)
	}
	if s.CategoryCounts[analytics.PredominantlyDomestic] != 4 || s.CategoryCounts[analytics.MostlyDomestic] != 2 {
		t.Errorf("Unexpected category counts %v", s.CategoryCounts)
	}

	filtered, err := svc.TrafficMix(ctx, "2023", "", string(analytics.Balanced))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if filtered.Frame.Nrow() != 1 || frames.Strings(filtered.Frame, "airport")[0] != jfk {
		t.Errorf("Expected only JFK as balanced, got %v", frames.Strings(filtered.Frame, "airport"))
	}
	if filtered.Summary.Airports != 7 {
		t.Error("Expected the summary to ignore filters")
	}

	if _, err := svc.TrafficMix(ctx, "2023", "", "Cargo"); errCode(err) != constants.ErrCodeInvalidParameter {
		t.Errorf("Expected INVALID_PARAMETER, got %v", err)
	}
}

func newQueryService(env *testEnv, maxRows int) *QueryService {
	return NewQueryService(env.tables, env.repo, env.metrics, maxRows, 5*time.Second)
}

func TestQueryService_Predefined(t *testing.T) {
	env := newEnv(t, true)
	svc := newQueryService(env, 100)
	ctx := context.Background()

	tests := []struct {
		id   string
		col  string
		want []string
	}{
		{QueryIDImprovedTotalRanking, "name", []string{dfw, lax, ord}},
		{QueryIDDomesticGrowthOver20, "name", []string{lax, dfw, ord}},
		{QueryIDTopStates, "states", []string{"Georgia", "Texas", "California", "Illinois", "New York"}},
		{QueryIDInternationalProportion, "airport_name", []string{constants.TotalRowLabel, jfk, lax, atl, ord, dfw}},
		{QueryIDTopDomesticIncrease, "name", []string{aus, lax, atl, dfw, ord, den, jfk}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res, err := svc.Run(ctx, tt.id)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := frames.Strings(res.Frame, tt.col); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if res.Query.SQL == "" {
				t.Error("Expected reference SQL")
			}
		})
	}

	states, _ := svc.Run(ctx, QueryIDTopStates)
	if got := frames.Floats(states.Frame, "total_passengers"); got[0] != 132000 || got[1] != 109000 {
		t.Errorf("Unexpected state totals %v", got)
	}
	props, _ := svc.Run(ctx, QueryIDInternationalProportion)
	if got := frames.Floats(props.Frame, "proportion"); got[0] != 1 || got[1] != 0.391 {
		t.Errorf("Unexpected proportions %v", got)
	}

	if _, err := svc.Run(ctx, "nope"); errCode(err) != constants.ErrCodeUnknownQuery {
		t.Errorf("Expected UNKNOWN_QUERY, got %v", err)
	}
	if len(svc.List()) != 6 {
		t.Errorf("Expected 6 predefined queries, got %d", len(svc.List()))
	}
}

func TestQueryService_Execute(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	res, err := newQueryService(env, 100).Execute(ctx, `SELECT id, name FROM state ORDER BY id`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Frame.Nrow() != 6 || res.Truncated {
		t.Errorf("Expected 6 untruncated rows, got %d (truncated=%v)", res.Frame.Nrow(), res.Truncated)
	}

	capped, err := newQueryService(env, 2).Execute(ctx, `SELECT id FROM state`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if capped.Frame.Nrow() != 2 || !capped.Truncated {
		t.Errorf("Expected 2 truncated rows, got %d (truncated=%v)", capped.Frame.Nrow(), capped.Truncated)
	}

	svc := newQueryService(env, 100)
	for _, q := range []string{"", "DELETE FROM state", "SELECT 1; DROP TABLE state", "UPDATE state SET name = 'x'"} {
		if _, err := svc.Execute(ctx, q); errCode(err) != constants.ErrCodeInvalidQuery {
			t.Errorf("%q: expected INVALID_QUERY, got %v", q, err)
		}
	}
	if _, err := svc.Execute(ctx, "SELECT * FROM flights"); errCode(err) != constants.ErrCodeQueryFailed {
		t.Errorf("Expected QUERY_FAILED, got %v", err)
	}
}
