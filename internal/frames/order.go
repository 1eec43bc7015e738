package frames

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// SortBy orders rows by col. The sort is stable and missing values go last
// in both directions.
func SortBy(df dataframe.DataFrame, col string, ascending bool) (dataframe.DataFrame, error) {
	if !Has(df, col) {
		return df, fmt.Errorf("column %q not found", col)
	}
	n := df.Nrow()
	if n < 2 {
		return df, nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	if df.Col(col).Type() == series.String {
		vals := df.Col(col).Records()
		na := naMask(df.Col(col))
		sort.SliceStable(idx, func(a, b int) bool {
			ia, ib := idx[a], idx[b]
			if na[ia] || na[ib] {
				return !na[ia] && na[ib]
			}
			if ascending {
				return vals[ia] < vals[ib]
			}
			return vals[ia] > vals[ib]
		})
	} else {
		vals := Floats(df, col)
		sort.SliceStable(idx, func(a, b int) bool {
			va, vb := vals[idx[a]], vals[idx[b]]
			if math.IsNaN(va) || math.IsNaN(vb) {
				return !math.IsNaN(va) && math.IsNaN(vb)
			}
			if ascending {
				return va < vb
			}
			return va > vb
		})
	}
	return Take(df, idx), nil
}

// Take returns the rows at idx, in that order.
func Take(df dataframe.DataFrame, idx []int) dataframe.DataFrame {
	if len(idx) == 0 {
		return emptyLike(df)
	}
	return df.Subset(idx)
}

// Head keeps the first n rows.
func Head(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if n >= df.Nrow() {
		return df
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Take(df, idx)
}

// Filter keeps rows for which keep returns true.
func Filter(df dataframe.DataFrame, keep func(row int) bool) dataframe.DataFrame {
	var idx []int
	for i := 0; i < df.Nrow(); i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return Take(df, idx)
}

// Reorder puts the leading columns first (when present) followed by the
// remaining columns in their current order, skipping any in exclude.
func Reorder(df dataframe.DataFrame, leading []string, exclude []string) dataframe.DataFrame {
	skip := make(map[string]bool, len(leading)+len(exclude))
	var order []string
	for _, c := range leading {
		if Has(df, c) && !skip[c] {
			order = append(order, c)
			skip[c] = true
		}
	}
	for _, c := range exclude {
		skip[c] = true
	}
	for _, c := range df.Names() {
		if !skip[c] {
			order = append(order, c)
		}
	}
	return df.Select(order)
}

// ContainsFold keeps rows whose col contains needle, ignoring case.
func ContainsFold(df dataframe.DataFrame, col, needle string) dataframe.DataFrame {
	if needle == "" || !Has(df, col) {
		return df
	}
	vals := Strings(df, col)
	needle = strings.ToLower(needle)
	return Filter(df, func(i int) bool {
		return strings.Contains(strings.ToLower(vals[i]), needle)
	})
}

func naMask(s series.Series) []bool {
	out := make([]bool, s.Len())
	for i := range out {
		out[i] = s.Elem(i).IsNA()
	}
	return out
}

// emptyLike returns a zero-row frame with df's columns and types.
func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Ncol() == 0 {
		return Empty()
	}
	cols := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		cols = append(cols, series.New([]interface{}{}, df.Col(name).Type(), name))
	}
	return dataframe.New(cols...)
}
