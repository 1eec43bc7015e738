package constants

const (
	MsgTableFetched     = "Table fetched"
	MsgNoData           = "No data available"
	MsgQueryExecuted    = "Query executed"
	MsgCacheInvalidated = "Cache invalidated"
	MsgStatsComputed    = "Statistics computed"
)
