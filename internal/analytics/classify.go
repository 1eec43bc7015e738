// Package analytics holds the pure pipeline stages: joins, derived metrics,
// descriptive statistics and traffic classification.
package analytics

// Category labels an airport by its domestic/international mix.
type Category string

const (
	PredominantlyDomestic      Category = "Predominantly Domestic"
	PredominantlyInternational Category = "Predominantly International"
	MostlyDomestic             Category = "Mostly Domestic"
	MostlyInternational        Category = "Mostly International"
	BalancedDomestic           Category = "Balanced-Domestic"
	BalancedInternational      Category = "Balanced-International"
	Balanced                   Category = "Balanced"
)

// Categories lists every label in priority order.
var Categories = []Category{
	PredominantlyDomestic,
	PredominantlyInternational,
	MostlyDomestic,
	MostlyInternational,
	BalancedDomestic,
	BalancedInternational,
	Balanced,
}

// IsCategory reports whether s is a known label.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Classify maps domestic and international shares (0..100) to a category.
// The first matching threshold wins.
func Classify(pctDomestic, pctInternational float64) Category {
	switch {
	case pctDomestic >= 90:
		return PredominantlyDomestic
	case pctInternational >= 90:
		return PredominantlyInternational
	case pctDomestic >= 70:
		return MostlyDomestic
	case pctInternational >= 70:
		return MostlyInternational
	case pctDomestic >= 60:
		return BalancedDomestic
	case pctInternational >= 60:
		return BalancedInternational
	default:
		return Balanced
	}
}
