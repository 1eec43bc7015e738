package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixTable CachePrefix = "TABLE_"
)

// Source tables.
const (
	TableCity          = "city"
	TableState         = "state"
	TableAirports      = "airports"
	TableDomestic      = "domestic"
	TableInternational = "international"
	TableTotal         = "total"
)

// Tables lists every table the service can fetch, in display order.
var Tables = []string{
	TableCity,
	TableState,
	TableAirports,
	TableDomestic,
	TableInternational,
	TableTotal,
}

// IsKnownTable reports whether name is one of the source tables.
func IsKnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Flows and years.
const (
	FlowDomestic      = "domestic"
	FlowInternational = "international"
	FlowTotal         = "total"

	Year2022 = "2022"
	Year2023 = "2023"
)

// FlowSuffix maps a flow to the column suffix used by its table.
var FlowSuffix = map[string]string{
	FlowDomestic:      "dom",
	FlowInternational: "inter",
	FlowTotal:         "total",
}

// Column names shared by several stages.
const (
	ColID        = "id"
	ColAirport   = "airport"
	ColAirportID = "airport_id"
	ColCityID    = "city_id"
	ColStateID   = "state_id"
	ColCity      = "city"
	ColState     = "state"
	ColName      = "name"
	ColIATACode  = "iata_code"

	ColRank2023Total = "2023_rank_total"
	ColRank2022Total = "2022_rank_total"

	ColProportion     = "proportion"
	ColRankChange     = "Cambio Ranking"
	ColClassification = "clasificacion"

	TotalRowLabel = "TOTAL"
)

// PassengersColumn returns e.g. 2023_enplaned_passengers_dom.
func PassengersColumn(year, flow string) string {
	return year + "_enplaned_passengers_" + FlowSuffix[flow]
}

// ChangeColumn returns e.g. percentage_change_2022_2023_inter.
func ChangeColumn(flow string) string {
	return "percentage_change_2022_2023_" + FlowSuffix[flow]
}

// RankColumn returns e.g. 2023_rank_dom.
func RankColumn(year, flow string) string {
	return year + "_rank_" + FlowSuffix[flow]
}

// ShortColumn returns the denormalized view name, e.g. 2023_domestic.
func ShortColumn(year, flow string) string {
	return year + "_" + flow
}

// GrowthColumn returns e.g. cambio_domestic_pct.
func GrowthColumn(flow string) string {
	return "cambio_" + flow + "_pct"
}
