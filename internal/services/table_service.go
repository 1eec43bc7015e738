package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/db/repositories"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/metrics"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/singleflight"
)

// TableSource reads a table with its embedded relations.
type TableSource interface {
	Select(ctx context.Context, table string, embeds ...repositories.Embed) (*repositories.RecordSet, error)
}

// TableService fetches source tables as frames. Flattened snapshots are
// memoized per table until invalidated.
type TableService struct {
	source  TableSource
	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry
	group   singleflight.Group
}

func NewTableService(source TableSource, cache common.CacheInterface, m *metrics.MetricsRegistry) *TableService {
	return &TableService{source: source, cache: cache, metrics: m}
}

// TableView is a fetched table plus the browser headline.
type TableView struct {
	Table     string
	Label     string
	Frame     dataframe.DataFrame
	Total2023 *float64
	Total2022 *float64
}

var keyColumns = []string{constants.ColAirportID, constants.ColCityID, constants.ColStateID}

// Fetch returns the display form of table: relations flattened, columns
// and rows ordered, key columns dropped. Any failure is logged and yields
// an empty frame.
func (s *TableService) Fetch(ctx context.Context, table string) dataframe.DataFrame {
	df := s.FetchWithKeys(ctx, table)
	if frames.IsEmpty(df) {
		return df
	}
	return frames.Reorder(df, nil, keyColumns)
}

// FetchWithKeys is Fetch with airport_id, city_id and state_id kept as the
// last columns.
func (s *TableService) FetchWithKeys(ctx context.Context, table string) dataframe.DataFrame {
	rs, err := s.snapshot(ctx, table)
	if err != nil {
		logging.Error("Failed to fetch table", "table", table, "error", err)
		return frames.Empty()
	}

	df := frames.FromRecordSet(rs)
	if frames.IsEmpty(df) {
		return frames.Empty()
	}

	ordered := df.Select(columnOrder(df, table))

	if rankCol, ok := sortColumn[table]; ok && frames.Has(ordered, rankCol) {
		sorted, err := frames.SortBy(ordered, rankCol, true)
		if err != nil {
			logging.Error("Failed to sort table", "table", table, "error", err)
			return frames.Empty()
		}
		ordered = sorted
	}
	return ordered
}

var sortColumn = map[string]string{
	constants.TableDomestic:      constants.RankColumn(constants.Year2023, constants.FlowDomestic),
	constants.TableInternational: constants.RankColumn(constants.Year2023, constants.FlowInternational),
	constants.TableTotal:         constants.ColRank2023Total,
}

// Invalidate drops the memoized snapshot of table.
func (s *TableService) Invalidate(table string) {
	s.cache.Delete(cacheKey(table))
	logging.Info("Table cache invalidated", "table", table)
}

// InvalidateAll drops every memoized snapshot and returns the table names.
func (s *TableService) InvalidateAll() []string {
	for _, t := range constants.Tables {
		s.cache.Delete(cacheKey(t))
	}
	logging.Info("Table cache invalidated", "tables", len(constants.Tables))
	return append([]string(nil), constants.Tables...)
}

// Browse returns the table with its headline. Unknown names and empty
// tables are coded errors.
func (s *TableService) Browse(ctx context.Context, table string) (*TableView, error) {
	if !constants.IsKnownTable(table) {
		return nil, newError(constants.ErrCodeUnknownTable, fmt.Errorf("table %q", table))
	}
	df := s.Fetch(ctx, table)
	if frames.IsEmpty(df) {
		return nil, newError(constants.ErrCodeNoData, fmt.Errorf("table %q", table))
	}

	view := &TableView{Table: table, Label: common.TitleLabel(table), Frame: df}
	switch table {
	case constants.TableDomestic, constants.TableInternational:
		t23 := sumColumn(df, constants.PassengersColumn(constants.Year2023, table))
		t22 := sumColumn(df, constants.PassengersColumn(constants.Year2022, table))
		view.Total2023, view.Total2022 = &t23, &t22
		view.Label = common.TitleLabel(table) + " Passengers"
	}
	return view, nil
}

// loadTimeout bounds a shared table load. The load runs detached from the
// caller that started it so joined callers are not cancelled with it.
const loadTimeout = 30 * time.Second

func (s *TableService) snapshot(ctx context.Context, table string) (*repositories.RecordSet, error) {
	if !constants.IsKnownTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	key := cacheKey(table)
	detached := context.WithoutCancel(ctx)

	ch := s.group.DoChan(key, func() (interface{}, error) {
		hit := true
		v, err := s.cache.GetOrSet(key, 0, func() (any, error) {
			hit = false
			return s.load(detached, table)
		})
		if err != nil {
			return nil, err
		}

		rs, err := decodeRecordSet(v)
		if err != nil {
			logging.Warn("Discarding unreadable cache entry", "table", table, "error", err)
			s.cache.Delete(key)
			if rs, err = s.load(detached, table); err != nil {
				return nil, err
			}
			s.cache.Set(key, rs, 0)
			hit = false
		}

		if hit {
			s.metrics.CacheHitsTotal.WithLabelValues(table).Inc()
		} else {
			s.metrics.CacheMissesTotal.WithLabelValues(table).Inc()
		}
		return rs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*repositories.RecordSet), nil
	}
}

// load reads table from the source and flattens its relations.
func (s *TableService) load(ctx context.Context, table string) (*repositories.RecordSet, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	start := time.Now()
	rs, err := s.source.Select(ctx, table, embedsFor(table)...)
	s.metrics.DBQueryDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.DBQueriesTotal.WithLabelValues(table, "error").Inc()
		return nil, err
	}
	s.metrics.DBQueriesTotal.WithLabelValues(table, "ok").Inc()

	flattenRelations(rs, relationsFor(table))
	logging.Debug("Table snapshot loaded", "table", table, "rows", len(rs.Rows))
	return rs, nil
}

func cacheKey(table string) string {
	return common.TableCacheKey(string(constants.CachePrefixTable), table)
}

// relation is an embedded lookup and the scalar column it flattens into.
type relation struct {
	repositories.Embed
	Column string
}

// relationsFor returns the lookups expanded for each table: flows carry
// their airport name (rows without an airport are dropped) and airports
// carry city and state names.
func relationsFor(table string) []relation {
	switch table {
	case constants.TableDomestic, constants.TableInternational, constants.TableTotal:
		return []relation{{
			Embed: repositories.Embed{
				Relation:   constants.TableAirports,
				Table:      constants.TableAirports,
				ForeignKey: constants.ColAirportID,
				Field:      constants.ColAirport,
				Inner:      true,
			},
			Column: constants.ColAirport,
		}}
	case constants.TableAirports:
		return []relation{
			{
				Embed:  repositories.Embed{Relation: constants.ColCity, Table: constants.TableCity, ForeignKey: constants.ColCityID, Field: constants.ColName},
				Column: constants.ColCity,
			},
			{
				Embed:  repositories.Embed{Relation: constants.ColState, Table: constants.TableState, ForeignKey: constants.ColStateID, Field: constants.ColName},
				Column: constants.ColState,
			},
		}
	}
	return nil
}

func embedsFor(table string) []repositories.Embed {
	var out []repositories.Embed
	for _, r := range relationsFor(table) {
		out = append(out, r.Embed)
	}
	return out
}

// columnOrder puts id and airport first (then both total ranks for the
// total table), the other columns in source order, and the key columns last.
func columnOrder(df dataframe.DataFrame, table string) []string {
	leading := []string{constants.ColID, constants.ColAirport}
	if table == constants.TableTotal {
		leading = append(leading, constants.ColRank2023Total, constants.ColRank2022Total)
	}
	skip := make(map[string]bool)
	var order []string
	for _, c := range leading {
		if frames.Has(df, c) {
			order = append(order, c)
		}
		skip[c] = true
	}
	for _, c := range keyColumns {
		skip[c] = true
	}
	for _, c := range df.Names() {
		if !skip[c] {
			order = append(order, c)
		}
	}
	for _, c := range keyColumns {
		if frames.Has(df, c) {
			order = append(order, c)
		}
	}
	return order
}

// flattenRelations replaces each nested relation with its single field.
func flattenRelations(rs *repositories.RecordSet, rels []relation) {
	for _, e := range rels {
		target := e.Column
		for _, row := range rs.Rows {
			var val any
			if nested, ok := row[e.Relation].(map[string]any); ok {
				val = nested[e.Field]
			}
			delete(row, e.Relation)
			row[target] = val
		}

		cols := rs.Columns[:0]
		seen := false
		for _, c := range rs.Columns {
			if c == target && c != e.Relation {
				continue
			}
			if c == e.Relation {
				c = target
				seen = true
			}
			cols = append(cols, c)
		}
		if !seen {
			cols = append(cols, target)
		}
		rs.Columns = cols
		delete(rs.Kinds, e.Relation)
		rs.Kinds[target] = repositories.KindString
	}
}

// decodeRecordSet accepts the in-process value or its JSON form as
// returned by the Redis backend.
func decodeRecordSet(v interface{}) (*repositories.RecordSet, error) {
	if rs, ok := v.(*repositories.RecordSet); ok {
		return rs, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rs repositories.RecordSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, err
	}
	if len(rs.Columns) == 0 {
		return nil, fmt.Errorf("cached snapshot has no columns")
	}
	return &rs, nil
}

func sumColumn(df dataframe.DataFrame, col string) float64 {
	return analytics.Sum(frames.Floats(df, col))
}
