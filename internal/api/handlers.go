package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/auth"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/models/dtos"

	"github.com/go-chi/chi/v5"
	"github.com/go-gota/gota/dataframe"
)

// maxSQLBody bounds the custom SQL request body.
const maxSQLBody = 64 << 10

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// respondFrame renders df as the download asked for by ?format, or hands
// build's JSON body to RespondSuccess.
func respondFrame(w http.ResponseWriter, r *http.Request, initTime time.Time, name, message string, df dataframe.DataFrame, build func() any) {
	format, err := exportFormat(r)
	if err != nil {
		common.RespondError(w, initTime, err, constants.ErrCodeInvalidParameter, http.StatusBadRequest)
		return
	}
	if format != "" {
		writeExport(w, initTime, df, name, format)
		return
	}
	common.RespondSuccess(w, initTime, message, build())
}

func badParam(w http.ResponseWriter, initTime time.Time, err error) {
	common.RespondError(w, initTime, err, constants.ErrCodeInvalidParameter, http.StatusBadRequest)
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

// ListTables handles GET /api/v1/tables
func (h *Handlers) ListTables() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "Tables listed", constants.Tables)
	}
}

// BrowseTable handles GET /api/v1/tables/{table}
func (h *Handlers) BrowseTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		table := chi.URLParam(r, "table")

		view, err := h.deps.Services.Tables.Browse(r.Context(), table)
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, table, constants.MsgTableFetched, view.Frame, func() any {
			return tableViewResponse(view)
		})
	}
}

// Denormalized handles GET /api/v1/airports/denormalized
func (h *Handlers) Denormalized() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		df, err := h.deps.Services.Traffic.Denormalized(r.Context())
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, "denormalized", constants.MsgTableFetched, df, payloadOf(df))
	}
}

// TopAirports handles GET /api/v1/airports/top?year=&flow=&order=&n=
func (h *Handlers) TopAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()

		n, err := queryInt(r, "n")
		if err != nil {
			badParam(w, initTime, err)
			return
		}
		req := dtos.TopAirportsReq{Year: q.Get("year"), Flow: q.Get("flow"), Order: q.Get("order"), N: n}

		df, err := h.deps.Services.Traffic.TopAirports(r.Context(), req.Year, req.Flow, req.Order, req.N)
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, "top-airports", constants.MsgTableFetched, df, payloadOf(df))
	}
}

// Growth handles GET /api/v1/airports/growth?flow=&order=&n=
func (h *Handlers) Growth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()

		n, err := queryInt(r, "n")
		if err != nil {
			badParam(w, initTime, err)
			return
		}

		df, err := h.deps.Services.Traffic.Growth(r.Context(), q.Get("flow"), q.Get("order"), n)
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, "growth", constants.MsgTableFetched, df, payloadOf(df))
	}
}

// RankComparison handles GET /api/v1/rankings/comparison
func (h *Handlers) RankComparison() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rc, err := h.deps.Services.Traffic.RankComparison(r.Context())
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, "rank-comparison", constants.MsgStatsComputed, rc.Top, func() any {
			return rankComparisonResponse(rc)
		})
	}
}

// FlowStatistics handles GET /api/v1/statistics/{flow}
func (h *Handlers) FlowStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		fs, err := h.deps.Services.Stats.FlowStatistics(r.Context(), chi.URLParam(r, "flow"))
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, fs.Flow+"-statistics", constants.MsgStatsComputed, analytics.SummaryFrame(fs.Summaries), func() any {
			return flowStatisticsResponse(fs)
		})
	}
}

// TrafficMix handles GET /api/v1/mix?year=&search=&classification=
func (h *Handlers) TrafficMix() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()
		req := dtos.TrafficMixReq{Year: q.Get("year"), Search: q.Get("search"), Classification: q.Get("classification")}

		mix, err := h.deps.Services.Mix.TrafficMix(r.Context(), req.Year, req.Search, req.Classification)
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, "mix-"+mix.Year, constants.MsgStatsComputed, mix.Frame, func() any {
			return TrafficMixResponse{Year: mix.Year, Summary: mix.Summary, Data: frames.ToPayload(mix.Frame)}
		})
	}
}

// ListQueries handles GET /api/v1/queries
func (h *Handlers) ListQueries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		list := h.deps.Services.Query.List()
		out := make([]*dtos.QueryInfo, 0, len(list))
		for _, q := range list {
			out = append(out, queryInfo(q))
		}
		common.RespondSuccess(w, initTime, "Queries listed", out)
	}
}

// RunQuery handles GET /api/v1/queries/{id}
func (h *Handlers) RunQuery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id := chi.URLParam(r, "id")

		res, err := h.deps.Services.Query.Run(r.Context(), id)
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, id, constants.MsgQueryExecuted, res.Frame, func() any {
			return queryResultResponse(res)
		})
	}
}

// CustomSQL handles POST /api/v1/sql
func (h *Handlers) CustomSQL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SQLQueryReq
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSQLBody)).Decode(&req); err != nil {
			badParam(w, initTime, fmt.Errorf("invalid request body: %w", err))
			return
		}

		res, err := h.deps.Services.Query.Execute(r.Context(), req.Query)
		if err != nil {
			handleAnalyticsError(w, initTime, err)
			return
		}
		respondFrame(w, r, initTime, "query", constants.MsgQueryExecuted, res.Frame, func() any {
			return queryResultResponse(res)
		})
	}
}

// InvalidateCache handles DELETE /api/v1/admin/cache and
// DELETE /api/v1/admin/cache/{table}
func (h *Handlers) InvalidateCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		table := chi.URLParam(r, "table")

		var dropped []string
		if table == "" {
			dropped = h.deps.Services.Tables.InvalidateAll()
		} else {
			if !constants.IsKnownTable(table) {
				common.RespondError(w, initTime, fmt.Errorf("unknown table %q", table), constants.ErrCodeUnknownTable, http.StatusNotFound)
				return
			}
			h.deps.Services.Tables.Invalidate(table)
			dropped = []string{table}
		}

		subject := ""
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			subject = claims.UserID()
		}
		logging.Info("Table cache invalidated", "tables", dropped, "by", subject)

		common.RespondSuccess(w, initTime, constants.MsgCacheInvalidated, dtos.CacheInvalidationResponse{Tables: dropped})
	}
}

// Health handles GET /healthCheck
func (h *Handlers) Health(upSince time.Time) http.HandlerFunc {
	return HealthCheckHandler(h.deps.Repo.Tables, h.deps.Services.Cache, upSince)
}
