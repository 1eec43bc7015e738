package analytics

import (
	"math"

	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"

	"github.com/go-gota/gota/dataframe"
)

// Rank comparison column headers.
const (
	ColCompAirport    = "Airport"
	ColCompRank2023   = "Ranking 2023"
	ColCompRank2022   = "Ranking 2022"
	ColCompPax2023    = "Passengers 2023"
	ColCompPax2022    = "Passengers 2022"
	ColCompDifference = "Passenger Difference"
	ColCompGrowth     = "Growth (%)"
)

// Summary labels of the rank comparison statistics.
const (
	LabelPax2023    = "Total Passengers (2023)"
	LabelPax2022    = "Total Passengers (2022)"
	LabelDifference = "Passenger Difference (2022-2023)"
	LabelGrowth     = "Percentage Growth (%)"
)

// Highlight names the airport holding an extreme value.
type Highlight struct {
	Airport string  `json:"airport"`
	Value   float64 `json:"value"`
}

// RankComparison is the 2022 vs 2023 ranking view of the busiest airports.
type RankComparison struct {
	Top         dataframe.DataFrame
	Complete    dataframe.DataFrame
	Summaries   []Summary
	Statistics  dataframe.DataFrame
	TopGrowth   *Highlight
	LargestDrop *Highlight
}

// CompareRankings keeps the total-flow rows with every key value present,
// adds the passenger difference and the rank change (2022 - 2023), and
// selects the airports ranked within limit in 2023, ordered by rank. The
// statistics and the highlights cover those ranked rows only.
func CompareRankings(total dataframe.DataFrame, limit int) (*RankComparison, error) {
	pax23 := constants.PassengersColumn(constants.Year2023, constants.FlowTotal)
	pax22 := constants.PassengersColumn(constants.Year2022, constants.FlowTotal)
	growth := constants.ChangeColumn(constants.FlowTotal)
	if err := requireColumns(total, constants.TableTotal, constants.ColAirport,
		constants.ColRank2023Total, constants.ColRank2022Total, pax23, pax22, growth); err != nil {
		return nil, err
	}

	names := frames.Strings(total, constants.ColAirport)
	r23 := frames.Floats(total, constants.ColRank2023Total)
	r22 := frames.Floats(total, constants.ColRank2022Total)
	p23 := frames.Floats(total, pax23)
	p22 := frames.Floats(total, pax22)
	g := frames.Floats(total, growth)

	var (
		airports                         []string
		rank23, rank22, pa23, pa22, diff []float64
		delta, gr                        []float64
	)
	for i := range names {
		if anyNaN(r23[i], r22[i], p23[i], p22[i], g[i]) {
			continue
		}
		airports = append(airports, names[i])
		rank23 = append(rank23, r23[i])
		rank22 = append(rank22, r22[i])
		pa23 = append(pa23, p23[i])
		pa22 = append(pa22, p22[i])
		diff = append(diff, p23[i]-p22[i])
		delta = append(delta, RankDelta(r22[i], r23[i]))
		gr = append(gr, g[i])
	}

	complete := dataframe.New(
		frames.StringSeries(ColCompAirport, airports),
		frames.NullableIntSeries(ColCompRank2023, rank23),
		frames.NullableIntSeries(ColCompRank2022, rank22),
		frames.NullableIntSeries(ColCompPax2023, pa23),
		frames.NullableIntSeries(ColCompPax2022, pa22),
		frames.NullableIntSeries(constants.ColRankChange, delta),
		frames.NullableIntSeries(ColCompDifference, diff),
		frames.FloatSeries(ColCompGrowth, gr),
	)

	out := &RankComparison{Complete: complete}
	top := frames.Filter(complete, func(i int) bool { return rank23[i] <= float64(limit) })
	if top.Nrow() > 0 {
		sorted, err := frames.SortBy(top, ColCompRank2023, true)
		if err != nil {
			return nil, err
		}
		top = sorted
	}

	out.Summaries = []Summary{
		Describe(LabelPax2023, frames.Floats(top, ColCompPax2023)),
		Describe(LabelPax2022, frames.Floats(top, ColCompPax2022)),
		Describe(LabelDifference, frames.Floats(top, ColCompDifference)),
		Describe(LabelGrowth, frames.Floats(top, ColCompGrowth)),
	}
	out.Statistics = FormatSummaries(out.Summaries)

	if top.Nrow() == 0 {
		out.Top = frames.Empty()
		return out, nil
	}
	out.Top = top.Select([]string{
		ColCompAirport, ColCompRank2023, ColCompPax2023, ColCompPax2022,
		constants.ColRankChange, ColCompDifference, ColCompGrowth,
	})

	topNames := frames.Strings(top, ColCompAirport)
	if i := argExtreme(frames.Floats(top, ColCompGrowth), true); i >= 0 {
		out.TopGrowth = &Highlight{Airport: topNames[i], Value: frames.Floats(top, ColCompGrowth)[i]}
	}
	if i := argExtreme(frames.Floats(top, constants.ColRankChange), false); i >= 0 {
		out.LargestDrop = &Highlight{Airport: topNames[i], Value: frames.Floats(top, constants.ColRankChange)[i]}
	}
	return out, nil
}

// argExtreme returns the index of the first maximum (or minimum), or -1.
func argExtreme(vals []float64, max bool) int {
	best := -1
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if best < 0 || (max && v > vals[best]) || (!max && v < vals[best]) {
			best = i
		}
	}
	return best
}

func anyNaN(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
