package api

import (
	"math"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/models/dtos"
	"airtraffic/statboard/internal/services"

	"github.com/go-gota/gota/dataframe"
)

type RankComparisonResponse struct {
	Top         dtos.TablePayload    `json:"top"`
	Summaries   []analytics.Summary  `json:"summaries"`
	Statistics  dtos.TablePayload    `json:"statistics"`
	TopGrowth   *analytics.Highlight `json:"top_growth"`
	LargestDrop *analytics.Highlight `json:"largest_drop"`
}

type FlowStatisticsResponse struct {
	Flow          string                      `json:"flow"`
	Label         string                      `json:"label"`
	Airports      int                         `json:"airports"`
	Total2023     *float64                    `json:"total_2023"`
	Total2022     *float64                    `json:"total_2022"`
	Growth        *float64                    `json:"growth_pct"`
	Summaries     []analytics.Summary         `json:"summaries"`
	Statistics    dtos.TablePayload           `json:"statistics"`
	Distributions []services.YearDistribution `json:"distributions"`
}

type TrafficMixResponse struct {
	Year    string               `json:"year"`
	Summary analytics.MixSummary `json:"summary"`
	Data    dtos.TablePayload    `json:"data"`
}

func payloadOf(df dataframe.DataFrame) func() any {
	return func() any { return frames.ToPayload(df) }
}

func tableViewResponse(v *services.TableView) dtos.TableViewResponse {
	return dtos.TableViewResponse{
		Table:       v.Table,
		Label:       v.Label,
		RowCount:    v.Frame.Nrow(),
		ColumnCount: v.Frame.Ncol(),
		Total2023:   v.Total2023,
		Total2022:   v.Total2022,
		Data:        frames.ToPayload(v.Frame),
	}
}

func rankComparisonResponse(rc *analytics.RankComparison) RankComparisonResponse {
	summaries := rc.Summaries
	if summaries == nil {
		summaries = []analytics.Summary{}
	}
	return RankComparisonResponse{
		Top:         frames.ToPayload(rc.Top),
		Summaries:   summaries,
		Statistics:  frames.ToPayload(rc.Statistics),
		TopGrowth:   rc.TopGrowth,
		LargestDrop: rc.LargestDrop,
	}
}

func flowStatisticsResponse(fs *services.FlowStatistics) FlowStatisticsResponse {
	summaries := fs.Summaries
	if summaries == nil {
		summaries = []analytics.Summary{}
	}
	dists := fs.Distributions
	if dists == nil {
		dists = []services.YearDistribution{}
	}
	return FlowStatisticsResponse{
		Flow:          fs.Flow,
		Label:         fs.Label,
		Airports:      fs.Airports,
		Total2023:     finite(fs.Total2023),
		Total2022:     finite(fs.Total2022),
		Growth:        finite(fs.Growth),
		Summaries:     summaries,
		Statistics:    frames.ToPayload(fs.Table),
		Distributions: dists,
	}
}

func queryInfo(q *services.PredefinedQuery) *dtos.QueryInfo {
	if q == nil {
		return nil
	}
	return &dtos.QueryInfo{ID: q.ID, Title: q.Title, Description: q.Description, SQL: q.SQL}
}

func queryResultResponse(res *services.QueryResult) dtos.QueryResultResponse {
	payload := frames.ToPayload(res.Frame)
	payload.Truncated = res.Truncated
	return dtos.QueryResultResponse{Query: queryInfo(res.Query), Data: payload}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
