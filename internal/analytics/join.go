package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrColumnMissing is returned when an input frame lacks a required column.
var ErrColumnMissing = errors.New("required column missing")

func requireColumns(df dataframe.DataFrame, table string, cols ...string) error {
	if missing := frames.Missing(df, cols...); len(missing) > 0 {
		return fmt.Errorf("%w: %s lacks %s", ErrColumnMissing, table, strings.Join(missing, ", "))
	}
	return nil
}

// keyIndex maps each non-missing integer key of col to its first row.
func keyIndex(df dataframe.DataFrame, col string) map[int64]int {
	out := make(map[int64]int)
	if frames.IsEmpty(df) || !frames.Has(df, col) {
		return out
	}
	for i, v := range frames.Floats(df, col) {
		if math.IsNaN(v) {
			continue
		}
		k := int64(v)
		if _, seen := out[k]; !seen {
			out[k] = i
		}
	}
	return out
}

// lookupColumn returns, for every key, src[col] of the matching row or NaN.
func lookupColumn(keys []float64, index map[int64]int, src dataframe.DataFrame, col string) []float64 {
	out := make([]float64, len(keys))
	var vals []float64
	if !frames.IsEmpty(src) {
		vals = frames.Floats(src, col)
	}
	for i, k := range keys {
		out[i] = math.NaN()
		if math.IsNaN(k) || vals == nil {
			continue
		}
		if row, ok := index[int64(k)]; ok {
			out[i] = vals[row]
		}
	}
	return out
}

// Denormalize builds the wide per-airport view: every row of total (in
// total's order) left-joined on airport_id with the 2022/2023 passenger
// columns of domestic and international and the airport's IATA code.
// Inputs must carry their key columns. Missing matches stay missing.
func Denormalize(total, domestic, international, airports dataframe.DataFrame) (dataframe.DataFrame, error) {
	tot22 := constants.PassengersColumn(constants.Year2022, constants.FlowTotal)
	tot23 := constants.PassengersColumn(constants.Year2023, constants.FlowTotal)
	if err := requireColumns(total, constants.TableTotal,
		constants.ColAirportID, constants.ColAirport, tot22, tot23); err != nil {
		return frames.Empty(), err
	}

	type joined struct {
		flow  string
		frame dataframe.DataFrame
	}
	flows := []joined{
		{constants.FlowDomestic, domestic},
		{constants.FlowInternational, international},
	}
	for _, j := range flows {
		if frames.IsEmpty(j.frame) {
			continue
		}
		if err := requireColumns(j.frame, j.flow, constants.ColAirportID,
			constants.PassengersColumn(constants.Year2022, j.flow),
			constants.PassengersColumn(constants.Year2023, j.flow)); err != nil {
			return frames.Empty(), err
		}
	}
	if !frames.IsEmpty(airports) {
		if err := requireColumns(airports, constants.TableAirports, constants.ColID, constants.ColIATACode); err != nil {
			return frames.Empty(), err
		}
	}

	renames := map[string]string{
		tot22: constants.ShortColumn(constants.Year2022, constants.FlowTotal),
		tot23: constants.ShortColumn(constants.Year2023, constants.FlowTotal),
	}
	keyCols := map[string]bool{
		constants.ColAirportID: true,
		constants.ColCityID:    true,
		constants.ColStateID:   true,
	}

	var cols []series.Series
	for _, name := range total.Names() {
		if keyCols[name] {
			continue
		}
		s := total.Col(name).Copy()
		if name == constants.ColAirport {
			s = frames.StringSeries(name, textValues(total.Col(name)))
		}
		if to, ok := renames[name]; ok {
			s.Name = to
		}
		cols = append(cols, s)
	}

	keys := frames.Floats(total, constants.ColAirportID)
	for _, j := range flows {
		index := keyIndex(j.frame, constants.ColAirportID)
		for _, year := range []string{constants.Year2022, constants.Year2023} {
			src := constants.PassengersColumn(year, j.flow)
			vals := lookupColumn(keys, index, j.frame, src)
			name := constants.ShortColumn(year, j.flow)
			if !frames.IsEmpty(j.frame) && j.frame.Col(src).Type() == series.Float {
				cols = append(cols, frames.FloatSeries(name, vals))
			} else {
				cols = append(cols, frames.NullableIntSeries(name, vals))
			}
		}
	}

	iata := make([]interface{}, len(keys))
	airportIndex := keyIndex(airports, constants.ColID)
	var codes []string
	var codeNA []bool
	if !frames.IsEmpty(airports) {
		codes = frames.Strings(airports, constants.ColIATACode)
		codeNA = naMask(airports.Col(constants.ColIATACode))
	}
	for i, k := range keys {
		if math.IsNaN(k) || codes == nil {
			continue
		}
		if row, ok := airportIndex[int64(k)]; ok && !codeNA[row] {
			iata[i] = codes[row]
		}
	}
	cols = append(cols, series.New(iata, series.String, constants.ColIATACode))

	return dataframe.New(cols...), nil
}

// textValues coerces a column to text, keeping missing values missing.
func textValues(s series.Series) []string {
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = "NaN"
			continue
		}
		out[i] = e.String()
	}
	return out
}

func naMask(s series.Series) []bool {
	out := make([]bool, s.Len())
	for i := range out {
		out[i] = s.Elem(i).IsNA()
	}
	return out
}
