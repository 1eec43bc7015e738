package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"

	"github.com/go-gota/gota/dataframe"
)

var nan = math.NaN()

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		dom, inter float64
		want       Category
	}{
		{100, 0, PredominantlyDomestic},
		{90, 10, PredominantlyDomestic},
		{89.99, 10.01, MostlyDomestic},
		{10, 90, PredominantlyInternational},
		{70, 30, MostlyDomestic},
		{30, 70, MostlyInternational},
		{69.99, 30.01, BalancedDomestic},
		{60, 40, BalancedDomestic},
		{40, 60, BalancedInternational},
		{55, 45, Balanced},
		{50, 50, Balanced},
		{0, 0, Balanced},
	}
	for _, tt := range tests {
		if got := Classify(tt.dom, tt.inter); got != tt.want {
			t.Errorf("Classify(%v, %v) = %q, expected %q", tt.dom, tt.inter, got, tt.want)
		}
	}
	if !IsCategory("Balanced-Domestic") || IsCategory("Domestic") {
		t.Error("Unexpected IsCategory result")
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name           string
		previous, curr float64
		want           float64
	}{
		{"growth", 100, 120, 20},
		{"decline", 200, 150, -25},
		{"zero base", 0, 50, 0},
		{"missing base", nan, 50, 0},
		{"missing current", 100, nan, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentChange(tt.previous, tt.curr); !approx(got, tt.want, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRankDeltaAndRound(t *testing.T) {
	if got := RankDelta(5, 3); got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
	if got := RankDelta(2, 4); got != -2 {
		t.Errorf("Expected -2, got %v", got)
	}
	if !math.IsNaN(RankDelta(nan, 1)) {
		t.Error("Expected NaN for missing rank")
	}
	if got := Round(0.1305, 3); got != 0.130 {
		t.Errorf("Expected banker's rounding to 0.130, got %v", got)
	}
	if got := Round(55.555, 2); !approx(got, 55.56, 1e-9) {
		t.Errorf("Expected 55.56, got %v", got)
	}
}

func TestProportions(t *testing.T) {
	shares := Proportions([]string{"A", "B", "C"}, []float64{25, 50, 25})

	if len(shares) != 4 {
		t.Fatalf("Expected 4 shares, got %d", len(shares))
	}
	if shares[0].Label != constants.TotalRowLabel || shares[0].Proportion != 1 {
		t.Errorf("Expected TOTAL first, got %+v", shares[0])
	}
	if shares[1].Label != "B" || shares[1].Proportion != 0.5 {
		t.Errorf("Expected B 0.5 second, got %+v", shares[1])
	}
	if shares[2].Label != "A" || shares[3].Label != "C" {
		t.Errorf("Expected ties to keep input order, got %+v", shares)
	}

	var sum float64
	for _, s := range shares[1:] {
		sum += s.Proportion
	}
	if !approx(sum, 1, 0.001*3) {
		t.Errorf("Expected proportions to sum to ~1, got %v", sum)
	}

	zero := Proportions([]string{"A"}, []float64{0})
	if zero[1].Proportion != 0 {
		t.Errorf("Expected 0 share for zero sum, got %+v", zero)
	}
}

func TestDescribe_Reference(t *testing.T) {
	s := Describe("Passengers", []float64{2, 4, 4, nan, 4, 5, 5, 7, 9})

	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", s.Mean, 5},
		{"std", s.Std, 2.138090},
		{"min", s.Min, 2},
		{"q25", s.Q25, 4},
		{"median", s.Median, 4.5},
		{"q75", s.Q75, 5.5},
		{"max", s.Max, 9},
		{"skewness", s.Skewness, 0.818488},
		{"kurtosis", s.Kurtosis, 0.940625},
		{"cv", s.CV, 42.76180},
	}
	if s.Count != 8 {
		t.Errorf("Expected count 8, got %d", s.Count)
	}
	for _, c := range checks {
		if !approx(c.got, c.want, 1e-3) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestDescribe_Degenerate(t *testing.T) {
	one := Describe("x", []float64{7})
	if one.Mean != 7 || !math.IsNaN(one.Std) || !math.IsNaN(one.Skewness) || !math.IsNaN(one.CV) {
		t.Errorf("Unexpected single-value summary %+v", one)
	}

	constant := Describe("x", []float64{3, 3, 3, 3})
	if constant.Std != 0 || constant.Skewness != 0 || constant.Kurtosis != 0 || constant.CV != 0 {
		t.Errorf("Unexpected constant summary %+v", constant)
	}

	zeroMean := Describe("x", []float64{-1, 1})
	if zeroMean.CV != 0 {
		t.Errorf("Expected CV 0 for zero mean, got %v", zeroMean.CV)
	}

	empty := Describe("x", nil)
	if empty.Count != 0 || !math.IsNaN(empty.Mean) {
		t.Errorf("Unexpected empty summary %+v", empty)
	}
	raw, err := json.Marshal(empty)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"mean":null`) {
		t.Errorf("Expected null mean, got %s", raw)
	}
}

func TestFormatSummaries(t *testing.T) {
	df := FormatSummaries([]Summary{
		Describe(LabelPax2023, []float64{1000, 2000, 3000, 4000}),
		Describe(LabelGrowth, []float64{1.5, 2.5}),
	})

	if df.Nrow() != 2 || df.Ncol() != len(SummaryHeaders) {
		t.Fatalf("Unexpected shape %dx%d", df.Nrow(), df.Ncol())
	}
	mean := frames.Strings(df, "Mean")
	if mean[0] != "2,500" {
		t.Errorf("Expected 2,500, got %q", mean[0])
	}
	if mean[1] != "2.00%" {
		t.Errorf("Expected 2.00%%, got %q", mean[1])
	}
	if skew := frames.Strings(df, "Skewness"); skew[1] != MissingText {
		t.Errorf("Expected %q for undefined skewness, got %q", MissingText, skew[1])
	}
	if !frames.IsEmpty(FormatSummaries(nil)) {
		t.Error("Expected empty frame for no summaries")
	}
}

func TestSummaryFrame_KeepsRawNumbers(t *testing.T) {
	df := SummaryFrame([]Summary{
		Describe(LabelPax2023, []float64{1000, 2000, 3000, 4000}),
		Describe(LabelGrowth, []float64{1.5, 2.5}),
	})

	if df.Nrow() != 2 || !reflect.DeepEqual(df.Names(), SummaryHeaders) {
		t.Fatalf("Unexpected frame %dx%d %v", df.Nrow(), df.Ncol(), df.Names())
	}
	if mean := frames.Floats(df, "Mean"); mean[0] != 2500 || mean[1] != 2 {
		t.Errorf("Expected raw means, got %v", mean)
	}
	if skew := frames.Floats(df, "Skewness"); !math.IsNaN(skew[1]) {
		t.Errorf("Expected missing skewness, got %v", skew[1])
	}
	if !frames.IsEmpty(SummaryFrame(nil)) {
		t.Error("Expected empty frame for no summaries")
	}
}

func TestHistogramAndBox(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, nan}, 5)
	if len(bins) != 5 {
		t.Fatalf("Expected 5 bins, got %d", len(bins))
	}
	total := 0
	for _, b := range bins {
		if b.Count != 2 {
			t.Errorf("Expected 2 values per bin, got %+v", b)
		}
		total += b.Count
	}
	if total != 10 || bins[4].Upper != 9 {
		t.Errorf("Unexpected histogram %+v", bins)
	}
	if got := Histogram([]float64{4, 4}, 50); len(got) != 1 || got[0].Count != 2 {
		t.Errorf("Expected single bin for constant input, got %+v", got)
	}

	box, ok := Box([]float64{1, 2, 3, 4, 100})
	if !ok {
		t.Fatal("Expected box plot data")
	}
	if box.Q1 != 2 || box.Median != 3 || box.Q3 != 4 || box.Max != 4 {
		t.Errorf("Unexpected box %+v", box)
	}
	if len(box.Outliers) != 1 || box.Outliers[0] != 100 {
		t.Errorf("Expected outlier 100, got %v", box.Outliers)
	}
	if _, ok := Box([]float64{nan}); ok {
		t.Error("Expected no box for missing values")
	}
}

func totalFrame() dataframe.DataFrame {
	return dataframe.New(
		frames.IntSeries(constants.ColID, []int{30, 31, 32, 33}),
		frames.StringSeries(constants.ColAirport, []string{"Alpha", "Bravo", "Charlie", "Delta"}),
		frames.IntSeries(constants.ColRank2023Total, []int{1, 2, 3, 4}),
		frames.IntSeries(constants.ColRank2022Total, []int{2, 1, 4, 3}),
		frames.IntSeries(constants.PassengersColumn(constants.Year2022, constants.FlowTotal), []int{90, 100, 50, 60}),
		frames.IntSeries(constants.PassengersColumn(constants.Year2023, constants.FlowTotal), []int{120, 110, 70, 60}),
		frames.FloatSeries(constants.ChangeColumn(constants.FlowTotal), []float64{33.33, 10, 40, nan}),
		frames.IntSeries(constants.ColAirportID, []int{1, 2, 3, 4}),
	)
}

func domesticFrame() dataframe.DataFrame {
	return dataframe.New(
		frames.StringSeries(constants.ColAirport, []string{"Bravo", "Alpha", "Echo"}),
		frames.IntSeries(constants.PassengersColumn(constants.Year2022, constants.FlowDomestic), []int{90, 80, 5}),
		frames.IntSeries(constants.PassengersColumn(constants.Year2023, constants.FlowDomestic), []int{100, 100, 0}),
		frames.IntSeries(constants.ColAirportID, []int{2, 1, 9}),
	)
}

func internationalFrame() dataframe.DataFrame {
	return dataframe.New(
		frames.StringSeries(constants.ColAirport, []string{"Alpha"}),
		frames.IntSeries(constants.PassengersColumn(constants.Year2022, constants.FlowInternational), []int{10}),
		frames.IntSeries(constants.PassengersColumn(constants.Year2023, constants.FlowInternational), []int{20}),
		frames.IntSeries(constants.ColAirportID, []int{1}),
	)
}

func airportsFrame() dataframe.DataFrame {
	return dataframe.New(
		frames.IntSeries(constants.ColID, []int{1, 2, 3}),
		frames.StringSeries(constants.ColIATACode, []string{"AAA", "BBB", "CCC"}),
	)
}

func TestDenormalize(t *testing.T) {
	df, err := Denormalize(totalFrame(), domesticFrame(), internationalFrame(), airportsFrame())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{
		"id", "airport", "2023_rank_total", "2022_rank_total", "2022_total", "2023_total",
		"percentage_change_2022_2023_total", "2022_domestic", "2023_domestic",
		"2022_international", "2023_international", "iata_code",
	}
	if !reflect.DeepEqual(df.Names(), want) {
		t.Fatalf("Expected columns %v, got %v", want, df.Names())
	}
	if df.Nrow() != 4 {
		t.Fatalf("Expected one row per total row, got %d", df.Nrow())
	}

	dom := frames.Floats(df, "2023_domestic")
	if dom[0] != 100 || dom[1] != 100 || !math.IsNaN(dom[2]) {
		t.Errorf("Unexpected domestic join %v", dom)
	}
	inter := frames.Floats(df, "2023_international")
	if inter[0] != 20 || !math.IsNaN(inter[1]) {
		t.Errorf("Unexpected international join %v", inter)
	}
	if codes := frames.Strings(df, "iata_code"); codes[2] != "CCC" || codes[3] != "" {
		t.Errorf("Unexpected codes %v", codes)
	}

	again, _ := Denormalize(totalFrame(), domesticFrame(), internationalFrame(), airportsFrame())
	if !reflect.DeepEqual(df.Records(), again.Records()) {
		t.Error("Expected identical output on repeated runs")
	}
}

func TestDenormalize_MissingColumn(t *testing.T) {
	_, err := Denormalize(airportsFrame(), domesticFrame(), internationalFrame(), airportsFrame())
	if !errors.Is(err, ErrColumnMissing) {
		t.Errorf("Expected ErrColumnMissing, got %v", err)
	}
}

func TestCompareRankings(t *testing.T) {
	cmp, err := CompareRankings(totalFrame(), 20)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cmp.Complete.Nrow() != 3 {
		t.Errorf("Expected the incomplete row dropped, got %d rows", cmp.Complete.Nrow())
	}
	if got := frames.Strings(cmp.Top, ColCompAirport); !reflect.DeepEqual(got, []string{"Alpha", "Bravo", "Charlie"}) {
		t.Errorf("Unexpected top order %v", got)
	}
	if got := frames.Floats(cmp.Top, constants.ColRankChange); !reflect.DeepEqual(got, []float64{1, -1, 1}) {
		t.Errorf("Unexpected rank changes %v", got)
	}
	if got := frames.Floats(cmp.Top, ColCompDifference); got[0] != 30 {
		t.Errorf("Expected difference 30, got %v", got[0])
	}
	if cmp.TopGrowth == nil || cmp.TopGrowth.Airport != "Charlie" {
		t.Errorf("Unexpected top growth %+v", cmp.TopGrowth)
	}
	if cmp.LargestDrop == nil || cmp.LargestDrop.Airport != "Bravo" || cmp.LargestDrop.Value != -1 {
		t.Errorf("Unexpected largest drop %+v", cmp.LargestDrop)
	}
	if len(cmp.Summaries) != 4 || cmp.Summaries[0].Column != LabelPax2023 {
		t.Errorf("Unexpected summaries %+v", cmp.Summaries)
	}

	limited, _ := CompareRankings(totalFrame(), 2)
	if limited.Top.Nrow() != 2 {
		t.Errorf("Expected 2 rows within rank 2, got %d", limited.Top.Nrow())
	}
}

func TestCompareRankings_StatisticsCoverRankedRowsOnly(t *testing.T) {
	const n = 25
	ids := make([]int, n)
	names := make([]string, n)
	r23 := make([]int, n)
	r22 := make([]int, n)
	p22 := make([]int, n)
	p23 := make([]int, n)
	growth := make([]float64, n)
	for i := 0; i < n; i++ {
		ids[i] = i + 1
		names[i] = fmt.Sprintf("Airport %02d", i+1)
		r23[i] = i + 1
		r22[i] = i + 1
		p23[i] = 1000 - i*10
		p22[i] = 900 - i*10
		growth[i] = 10
	}
	total := dataframe.New(
		frames.IntSeries(constants.ColID, ids),
		frames.StringSeries(constants.ColAirport, names),
		frames.IntSeries(constants.ColRank2023Total, r23),
		frames.IntSeries(constants.ColRank2022Total, r22),
		frames.IntSeries(constants.PassengersColumn(constants.Year2022, constants.FlowTotal), p22),
		frames.IntSeries(constants.PassengersColumn(constants.Year2023, constants.FlowTotal), p23),
		frames.FloatSeries(constants.ChangeColumn(constants.FlowTotal), growth),
		frames.IntSeries(constants.ColAirportID, ids),
	)

	cmp, err := CompareRankings(total, 20)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cmp.Complete.Nrow() != n || cmp.Top.Nrow() != 20 {
		t.Fatalf("Expected %d complete and 20 ranked rows, got %d and %d", n, cmp.Complete.Nrow(), cmp.Top.Nrow())
	}
	for _, s := range cmp.Summaries {
		if s.Count != cmp.Top.Nrow() {
			t.Errorf("%s: expected count %d, got %d", s.Column, cmp.Top.Nrow(), s.Count)
		}
	}
	// ranks 1..20 carry 1000, 990, ..., 810
	if got := cmp.Summaries[0].Mean; got != 905 {
		t.Errorf("Expected 2023 mean 905 over the ranked rows, got %v", got)
	}
	if got := cmp.Summaries[0].Min; got != 810 {
		t.Errorf("Expected 2023 min 810, got %v", got)
	}
}

func TestCompareRankings_NoCompleteRows(t *testing.T) {
	total := totalFrame()
	cmp, err := CompareRankings(frames.Filter(total, func(i int) bool { return i == 3 }), 20)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !frames.IsEmpty(cmp.Top) || cmp.TopGrowth != nil || cmp.LargestDrop != nil {
		t.Errorf("Expected no ranked rows, got %+v", cmp)
	}
	if len(cmp.Summaries) != 4 || cmp.Summaries[0].Count != 0 {
		t.Errorf("Expected empty summaries, got %+v", cmp.Summaries)
	}
}

func TestTrafficMix(t *testing.T) {
	df, summary, err := TrafficMix(domesticFrame(), internationalFrame(), constants.Year2023)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := frames.Strings(df, constants.ColAirport); !reflect.DeepEqual(got, []string{"Alpha", "Bravo", "Echo"}) {
		t.Errorf("Expected rows by total descending, got %v", got)
	}
	pd := frames.Floats(df, ColMixPctDomestic)
	pi := frames.Floats(df, ColMixPctInternational)
	for i := range pd {
		if i < 2 && !approx(pd[i]+pi[i], 100, 0.011) {
			t.Errorf("Row %d shares do not add to 100: %v + %v", i, pd[i], pi[i])
		}
	}
	if !approx(pd[0], 83.33, 1e-9) {
		t.Errorf("Expected 83.33, got %v", pd[0])
	}
	if pd[2] != 0 || pi[2] != 0 {
		t.Errorf("Expected zero shares without traffic, got %v/%v", pd[2], pi[2])
	}
	class := frames.Strings(df, constants.ColClassification)
	if class[0] != string(MostlyDomestic) || class[1] != string(PredominantlyDomestic) || class[2] != string(Balanced) {
		t.Errorf("Unexpected classes %v", class)
	}

	if summary.Airports != 3 || summary.TotalDomestic != 200 || summary.TotalInternational != 20 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	if summary.PctDomestic != 90.9 || summary.PctInternational != 9.1 {
		t.Errorf("Unexpected global shares %+v", summary)
	}
	if summary.CategoryCounts[Balanced] != 1 || summary.CategoryCounts[MostlyInternational] != 0 {
		t.Errorf("Unexpected category counts %v", summary.CategoryCounts)
	}

	filtered := FilterMix(df, "RAV", string(PredominantlyDomestic))
	if filtered.Nrow() != 1 || frames.Strings(filtered, constants.ColAirport)[0] != "Bravo" {
		t.Errorf("Unexpected filter result %v", frames.Strings(filtered, constants.ColAirport))
	}
	if FilterMix(df, "", string(MostlyInternational)).Nrow() != 0 {
		t.Error("Expected no mostly-international rows")
	}
}
