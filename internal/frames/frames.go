// Package frames builds and reshapes gota DataFrames for the pipeline.
package frames

import (
	"fmt"
	"math"

	"airtraffic/statboard/internal/db/repositories"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Empty returns the frame used to signal "no data".
func Empty() dataframe.DataFrame {
	return dataframe.DataFrame{}
}

// IsEmpty reports whether df has no rows, no columns or carries an error.
func IsEmpty(df dataframe.DataFrame) bool {
	return df.Err != nil || df.Nrow() == 0 || df.Ncol() == 0
}

// FromRecordSet converts a store snapshot into a frame, one typed series per
// column in rs.Columns order. Relation columns are rendered as text.
func FromRecordSet(rs *repositories.RecordSet) dataframe.DataFrame {
	if rs == nil || len(rs.Columns) == 0 {
		return Empty()
	}

	cols := make([]series.Series, 0, len(rs.Columns))
	for _, name := range rs.Columns {
		vals := make([]interface{}, len(rs.Rows))
		for i, row := range rs.Rows {
			vals[i] = row[name]
		}
		cols = append(cols, NewSeries(name, rs.Kinds[name], vals))
	}
	return dataframe.New(cols...)
}

// NewSeries coerces vals to kind. nil becomes NA.
func NewSeries(name string, kind repositories.Kind, vals []interface{}) series.Series {
	out := make([]interface{}, len(vals))
	var t series.Type

	switch kind {
	case repositories.KindInt:
		t = series.Int
		for i, v := range vals {
			if f, ok := toFloat(v); ok {
				out[i] = int(f)
			}
		}
	case repositories.KindFloat, repositories.KindNull:
		t = series.Float
		for i, v := range vals {
			if f, ok := toFloat(v); ok {
				out[i] = f
			}
		}
	case repositories.KindBool:
		t = series.Bool
		for i, v := range vals {
			if b, ok := v.(bool); ok {
				out[i] = b
			}
		}
	default:
		t = series.String
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
			case string:
				out[i] = x
			default:
				out[i] = fmt.Sprint(x)
			}
		}
	}
	return series.New(out, t, name)
}

// FloatSeries builds a float column; NaN marks a missing value.
func FloatSeries(name string, vals []float64) series.Series {
	return series.New(vals, series.Float, name)
}

// StringSeries builds a text column.
func StringSeries(name string, vals []string) series.Series {
	return series.New(vals, series.String, name)
}

// IntSeries builds an integer column.
func IntSeries(name string, vals []int) series.Series {
	return series.New(vals, series.Int, name)
}

// NullableIntSeries builds an integer column where NaN marks a missing value.
func NullableIntSeries(name string, vals []float64) series.Series {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			out[i] = int(v)
		}
	}
	return series.New(out, series.Int, name)
}

// Has reports whether df contains every column in cols.
func Has(df dataframe.DataFrame, cols ...string) bool {
	return len(Missing(df, cols...)) == 0
}

// Missing returns the subset of cols absent from df.
func Missing(df dataframe.DataFrame, cols ...string) []string {
	present := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		present[n] = true
	}
	var out []string
	for _, c := range cols {
		if !present[c] {
			out = append(out, c)
		}
	}
	return out
}

// Floats returns a column as float64 with NaN for missing or non-numeric
// values. An absent column yields nil.
func Floats(df dataframe.DataFrame, col string) []float64 {
	if !Has(df, col) {
		return nil
	}
	s := df.Col(col)
	out := make([]float64, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out
}

// Strings returns a column as text with "" for missing values.
func Strings(df dataframe.DataFrame, col string) []string {
	if !Has(df, col) {
		return nil
	}
	s := df.Col(col)
	out := make([]string, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	}
	return 0, false
}
