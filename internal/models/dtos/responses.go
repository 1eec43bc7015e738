package dtos

// --- Controller endpoints ----

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ErrorCode    string `json:"error_code,omitempty"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// TablePayload is a frame rendered as JSON. Missing values are null.
type TablePayload struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated,omitempty"`
}

// TableViewResponse is the table browser payload.
type TableViewResponse struct {
	Table       string       `json:"table"`
	Label       string       `json:"label"`
	RowCount    int          `json:"row_count"`
	ColumnCount int          `json:"column_count"`
	Total2023   *float64     `json:"total_2023,omitempty"`
	Total2022   *float64     `json:"total_2022,omitempty"`
	Data        TablePayload `json:"data"`
}

// QueryInfo describes a predefined query.
type QueryInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

// QueryResultResponse is the payload of a predefined or custom query.
type QueryResultResponse struct {
	Query *QueryInfo   `json:"query,omitempty"`
	Data  TablePayload `json:"data"`
}

// CacheInvalidationResponse reports which tables were dropped from the cache.
type CacheInvalidationResponse struct {
	Tables []string `json:"tables"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}
