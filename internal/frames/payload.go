package frames

import (
	"math"

	"airtraffic/statboard/internal/models/dtos"

	"github.com/go-gota/gota/dataframe"
)

// ToPayload renders df as JSON-safe rows. NA and NaN become null.
func ToPayload(df dataframe.DataFrame) dtos.TablePayload {
	if IsEmpty(df) {
		return dtos.TablePayload{Columns: safeNames(df), Rows: [][]any{}}
	}

	names := df.Names()
	rows := make([][]any, df.Nrow())
	for i := range rows {
		rows[i] = make([]any, len(names))
	}
	for c, name := range names {
		s := df.Col(name)
		for i := 0; i < s.Len(); i++ {
			rows[i][c] = cellValue(s.Val(i))
		}
	}
	return dtos.TablePayload{Columns: names, Rows: rows, RowCount: len(rows)}
}

func cellValue(v interface{}) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

func safeNames(df dataframe.DataFrame) []string {
	if df.Err != nil {
		return []string{}
	}
	names := df.Names()
	if names == nil {
		return []string{}
	}
	return names
}
