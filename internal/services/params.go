package services

import (
	"strings"

	"airtraffic/statboard/internal/constants"
)

// Sort orders of the ranked views.
const (
	OrderTop    = "top"
	OrderBottom = "bottom"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// ComparisonRankLimit bounds the 2023 rank of the comparison table.
	ComparisonRankLimit = 20
)

// Flows lists the valid flow names.
var Flows = []string{constants.FlowTotal, constants.FlowDomestic, constants.FlowInternational}

func normalizeFlow(flow string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(flow))
	if f == "" {
		return constants.FlowTotal, nil
	}
	if _, ok := constants.FlowSuffix[f]; !ok {
		return "", invalidParam("flow must be one of %s", strings.Join(Flows, ", "))
	}
	return f, nil
}

func normalizeYear(year string) (string, error) {
	switch strings.TrimSpace(year) {
	case "":
		return constants.Year2023, nil
	case constants.Year2022, constants.Year2023:
		return strings.TrimSpace(year), nil
	}
	return "", invalidParam("year must be %s or %s", constants.Year2022, constants.Year2023)
}

func normalizeOrder(order string) (string, error) {
	switch o := strings.ToLower(strings.TrimSpace(order)); o {
	case "":
		return OrderTop, nil
	case OrderTop, OrderBottom:
		return o, nil
	}
	return "", invalidParam("order must be %s or %s", OrderTop, OrderBottom)
}

// normalizeLimit maps 0 to the default and rejects values outside 1..MaxLimit.
func normalizeLimit(n int) (int, error) {
	if n == 0 {
		return DefaultLimit, nil
	}
	if n < 1 || n > MaxLimit {
		return 0, invalidParam("n must be between 1 and %d", MaxLimit)
	}
	return n, nil
}
