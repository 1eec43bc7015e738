package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"airtraffic/statboard/internal/constants"

	"github.com/jmoiron/sqlx"
)

// Kind is the value type of a RecordSet column.
type Kind string

const (
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindString   Kind = "string"
	KindBool     Kind = "bool"
	KindRelation Kind = "relation"
	KindNull     Kind = "null"
)

// RecordSet is a table snapshot as returned by the store: ordered columns,
// their kinds and one map per row. Embedded relations are nested maps (or
// nil) under the relation name.
type RecordSet struct {
	Columns   []string         `json:"columns"`
	Kinds     map[string]Kind  `json:"kinds"`
	Rows      []map[string]any `json:"rows"`
	Truncated bool             `json:"truncated,omitempty"`
}

// Embed describes a to-one relation expanded into each row, e.g. the
// airport name of a flow row via airport_id.
type Embed struct {
	Relation   string // nested column name added to each row
	Table      string // referenced table
	ForeignKey string // column on the base table holding the referenced id
	Field      string // field copied from the referenced row
	Inner      bool   // drop rows whose reference does not resolve
}

type TableRepository struct {
	db *sqlx.DB
}

func NewTableRepository(db *sqlx.DB) *TableRepository {
	return &TableRepository{db: db}
}

// Ping checks the store connection.
func (r *TableRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Select reads every row of table and expands the given relations.
func (r *TableRepository) Select(ctx context.Context, table string, embeds ...Embed) (*RecordSet, error) {
	if !constants.IsKnownTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	rows, err := r.db.QueryxContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	rs, err := scanRecordSet(rows, 0)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	for _, e := range embeds {
		if err := r.embed(ctx, rs, e); err != nil {
			return nil, fmt.Errorf("embed %s into %s: %w", e.Relation, table, err)
		}
	}
	return rs, nil
}

func (r *TableRepository) embed(ctx context.Context, rs *RecordSet, e Embed) error {
	if _, ok := rs.Kinds[e.ForeignKey]; !ok {
		return fmt.Errorf("column %q not found", e.ForeignKey)
	}

	lookup, err := r.lookup(ctx, e.Table, e.Field)
	if err != nil {
		return err
	}

	kept := rs.Rows[:0]
	for _, row := range rs.Rows {
		var nested map[string]any
		if id, ok := toInt64(row[e.ForeignKey]); ok {
			if v, found := lookup[id]; found {
				nested = map[string]any{e.Field: v}
			}
		}
		if nested == nil && e.Inner {
			continue
		}
		if nested == nil {
			row[e.Relation] = nil
		} else {
			row[e.Relation] = nested
		}
		kept = append(kept, row)
	}
	rs.Rows = kept

	if _, exists := rs.Kinds[e.Relation]; !exists {
		rs.Columns = append(rs.Columns, e.Relation)
	}
	rs.Kinds[e.Relation] = KindRelation
	return nil
}

// lookup loads id -> field for a referenced table.
func (r *TableRepository) lookup(ctx context.Context, table, field string) (map[int64]any, error) {
	if !constants.IsKnownTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	query := fmt.Sprintf("SELECT %s, %s FROM %s", quoteIdent(constants.ColID), quoteIdent(field), quoteIdent(table))

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]any)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		id, ok := toInt64(normalizeValue(vals[0]))
		if !ok {
			continue
		}
		out[id] = normalizeValue(vals[1])
	}
	return out, rows.Err()
}

// scanRecordSet drains rows into a RecordSet. maxRows <= 0 means no cap;
// otherwise reading stops after maxRows and Truncated reports whether more
// rows were available.
func scanRecordSet(rows *sqlx.Rows, maxRows int) (*RecordSet, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &RecordSet{
		Columns: cols,
		Kinds:   make(map[string]Kind, len(cols)),
		Rows:    make([]map[string]any, 0),
	}

	for rows.Next() {
		if maxRows > 0 && len(rs.Rows) == maxRows {
			rs.Truncated = true
			break
		}
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(vals[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range cols {
		rs.Kinds[c] = inferKind(rs.Rows, c)
	}
	return rs, nil
}

// normalizeValue maps driver values onto int64, float64, string, bool or nil.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		s := string(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case string, bool:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func inferKind(rows []map[string]any, col string) Kind {
	kind := KindNull
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
			continue
		case string:
			return KindString
		case float64:
			kind = KindFloat
		case int64:
			if kind == KindNull {
				kind = KindInt
			}
		case bool:
			if kind == KindNull {
				kind = KindBool
			}
		case map[string]any:
			return KindRelation
		}
	}
	return kind
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), x == float64(int64(x))
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// quoteIdent double-quotes an identifier; both postgres and sqlite accept it.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
