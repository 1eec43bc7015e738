package dtos

// SQLQueryReq is the body of POST /api/v1/sql.
type SQLQueryReq struct {
	Query string `json:"query"`
}

// TopAirportsReq holds the query parameters of the top/bottom airports view.
type TopAirportsReq struct {
	Year  string
	Flow  string
	Order string
	N     int
}

// TrafficMixReq holds the query parameters of the traffic mix view.
type TrafficMixReq struct {
	Year           string
	Search         string
	Classification string
}
