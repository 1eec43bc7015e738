package analytics

import (
	"math"

	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Traffic mix column names.
const (
	ColMixDomestic         = "domestic_passengers"
	ColMixInternational    = "international_passengers"
	ColMixTotal            = "total_passengers"
	ColMixPctDomestic      = "pct_domestic"
	ColMixPctInternational = "pct_international"
)

// MixSummary aggregates the traffic mix over every airport.
type MixSummary struct {
	Airports           int              `json:"airports"`
	TotalDomestic      int64            `json:"total_domestic"`
	TotalInternational int64            `json:"total_international"`
	PctDomestic        float64          `json:"pct_domestic"`
	PctInternational   float64          `json:"pct_international"`
	CategoryCounts     map[Category]int `json:"category_counts"`
}

// TrafficMix builds one row per domestic airport for year with the
// international count of the same airport_id. Missing counts are 0. When
// an airport has no traffic at all both shares are 0. Rows are sorted by
// total traffic descending.
func TrafficMix(domestic, international dataframe.DataFrame, year string) (dataframe.DataFrame, MixSummary, error) {
	domCol := constants.PassengersColumn(year, constants.FlowDomestic)
	intCol := constants.PassengersColumn(year, constants.FlowInternational)
	if err := requireColumns(domestic, constants.TableDomestic,
		constants.ColAirportID, constants.ColAirport, domCol); err != nil {
		return frames.Empty(), MixSummary{}, err
	}
	if !frames.IsEmpty(international) {
		if err := requireColumns(international, constants.TableInternational,
			constants.ColAirportID, intCol); err != nil {
			return frames.Empty(), MixSummary{}, err
		}
	}

	keys := frames.Floats(domestic, constants.ColAirportID)
	dom := zeroMissing(frames.Floats(domestic, domCol))
	inter := zeroMissing(lookupColumn(keys, keyIndex(international, constants.ColAirportID), international, intCol))

	n := len(keys)
	total := make([]float64, n)
	pctDom := make([]float64, n)
	pctInt := make([]float64, n)
	class := make([]string, n)
	for i := range keys {
		total[i] = dom[i] + inter[i]
		pctDom[i] = Round(share(dom[i], total[i]), 2)
		pctInt[i] = Round(share(inter[i], total[i]), 2)
		class[i] = string(Classify(pctDom[i], pctInt[i]))
	}

	df := dataframe.New(
		frames.StringSeries(constants.ColAirport, textValues(domestic.Col(constants.ColAirport))),
		frames.NullableIntSeries(ColMixDomestic, dom),
		frames.NullableIntSeries(ColMixInternational, inter),
		frames.NullableIntSeries(ColMixTotal, total),
		frames.FloatSeries(ColMixPctDomestic, pctDom),
		frames.FloatSeries(ColMixPctInternational, pctInt),
		series.New(class, series.String, constants.ColClassification),
	)
	summary := summarizeMix(dom, inter, class)
	if n == 0 {
		return df, summary, nil
	}
	sorted, err := frames.SortBy(df, ColMixTotal, false)
	if err != nil {
		return frames.Empty(), MixSummary{}, err
	}
	return sorted, summary, nil
}

// FilterMix keeps rows whose airport contains search (case-insensitive) and
// whose classification equals classification. Empty filters match all.
func FilterMix(df dataframe.DataFrame, search, classification string) dataframe.DataFrame {
	if frames.IsEmpty(df) {
		return df
	}
	if search != "" {
		df = frames.ContainsFold(df, constants.ColAirport, search)
	}
	if classification != "" && !frames.IsEmpty(df) {
		labels := frames.Strings(df, constants.ColClassification)
		df = frames.Filter(df, func(i int) bool { return labels[i] == classification })
	}
	return df
}

func summarizeMix(dom, inter []float64, class []string) MixSummary {
	s := MixSummary{
		Airports:       len(dom),
		CategoryCounts: make(map[Category]int, len(Categories)),
	}
	for _, c := range Categories {
		s.CategoryCounts[c] = 0
	}
	for i := range dom {
		s.TotalDomestic += int64(dom[i])
		s.TotalInternational += int64(inter[i])
		s.CategoryCounts[Category(class[i])]++
	}
	all := float64(s.TotalDomestic + s.TotalInternational)
	if all > 0 {
		s.PctDomestic = Round(float64(s.TotalDomestic)/all*100, 1)
		s.PctInternational = Round(float64(s.TotalInternational)/all*100, 1)
	}
	return s
}

// share is part/total*100; with no traffic it is 100 for a positive part
// and 0 otherwise.
func share(part, total float64) float64 {
	if total > 0 {
		return part / total * 100
	}
	if part > 0 {
		return 100
	}
	return 0
}

func zeroMissing(vals []float64) []float64 {
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = 0
		}
	}
	return vals
}
