// Package dbtest seeds an in-memory sqlite store with a small dataset whose
// derived values are easy to verify by hand.
package dbtest

import (
	"context"
	"testing"

	"airtraffic/statboard/internal/db"
	"airtraffic/statboard/internal/db/repositories"
	"airtraffic/statboard/internal/models/gorm"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

// Dataset returns the fixture.
//
//	airport  dom22   dom23   inter22 inter23 tot22   tot23   rank22 rank23
//	ATL      100000  120000  10000   12000   110000  132000  1      1
//	DFW      80000   100000  8000    9000    88000   109000  3      2
//	LAX      50000   71000   20000   25000   70000   96000   5      3
//	DEN      90000   95000   -       -       90000   95000   2      4
//	ORD      60000   75000   9000    10000   69000   85000   6      5
//	JFK      40000   44000   31000   36000   71000   80000   4      6
//	AUS      0       30000   -       -       0       30000   7      7
//
// AUS has no city. International row 90 points at a missing airport.
func Dataset() *gorm.Dataset {
	return &gorm.Dataset{
		Cities: []gorm.City{
			{ID: 1, Name: "Atlanta"},
			{ID: 2, Name: "Dallas"},
			{ID: 3, Name: "Denver"},
			{ID: 4, Name: "Chicago"},
			{ID: 5, Name: "Los Angeles"},
			{ID: 6, Name: "New York"},
		},
		States: []gorm.State{
			{ID: 1, Name: "Georgia"},
			{ID: 2, Name: "Texas"},
			{ID: 3, Name: "Colorado"},
			{ID: 4, Name: "Illinois"},
			{ID: 5, Name: "California"},
			{ID: 6, Name: "New York"},
		},
		Airports: []gorm.Airport{
			{ID: 1, Airport: "Hartsfield-Jackson Atlanta International", IATACode: "ATL", CityID: i64(1), StateID: i64(1)},
			{ID: 2, Airport: "Dallas/Fort Worth International", IATACode: "DFW", CityID: i64(2), StateID: i64(2)},
			{ID: 3, Airport: "Denver International", IATACode: "DEN", CityID: i64(3), StateID: i64(3)},
			{ID: 4, Airport: "Chicago O'Hare International", IATACode: "ORD", CityID: i64(4), StateID: i64(4)},
			{ID: 5, Airport: "Los Angeles International", IATACode: "LAX", CityID: i64(5), StateID: i64(5)},
			{ID: 6, Airport: "John F. Kennedy International", IATACode: "JFK", CityID: i64(6), StateID: i64(6)},
			{ID: 7, Airport: "Austin-Bergstrom International", IATACode: "AUS", StateID: i64(2)},
		},
		// Stored out of rank order so the fetch has to sort.
		Domestic: []gorm.DomesticFlow{
			{ID: 10, AirportID: 6, Passengers2022: i64(40000), Passengers2023: i64(44000), PercentageChange: f64(10.0), Rank2023: i64(6)},
			{ID: 11, AirportID: 2, Passengers2022: i64(80000), Passengers2023: i64(100000), PercentageChange: f64(25.0), Rank2023: i64(2)},
			{ID: 12, AirportID: 1, Passengers2022: i64(100000), Passengers2023: i64(120000), PercentageChange: f64(20.0), Rank2023: i64(1)},
			{ID: 13, AirportID: 7, Passengers2022: i64(0), Passengers2023: i64(30000), Rank2023: i64(7)},
			{ID: 14, AirportID: 3, Passengers2022: i64(90000), Passengers2023: i64(95000), PercentageChange: f64(5.56), Rank2023: i64(3)},
			{ID: 15, AirportID: 5, Passengers2022: i64(50000), Passengers2023: i64(71000), PercentageChange: f64(42.0), Rank2023: i64(5)},
			{ID: 16, AirportID: 4, Passengers2022: i64(60000), Passengers2023: i64(75000), PercentageChange: f64(25.0), Rank2023: i64(4)},
		},
		International: []gorm.InternationalFlow{
			{ID: 20, AirportID: 1, Passengers2022: i64(10000), Passengers2023: i64(12000), PercentageChange: f64(20.0), Rank2023: i64(3)},
			{ID: 21, AirportID: 2, Passengers2022: i64(8000), Passengers2023: i64(9000), PercentageChange: f64(12.5), Rank2023: i64(5)},
			{ID: 22, AirportID: 5, Passengers2022: i64(20000), Passengers2023: i64(25000), PercentageChange: f64(25.0), Rank2023: i64(2)},
			{ID: 23, AirportID: 6, Passengers2022: i64(31000), Passengers2023: i64(36000), PercentageChange: f64(16.13), Rank2023: i64(1)},
			{ID: 24, AirportID: 4, Passengers2022: i64(9000), Passengers2023: i64(10000), PercentageChange: f64(11.11), Rank2023: i64(4)},
			{ID: 90, AirportID: 99, Passengers2022: i64(1), Passengers2023: i64(1), PercentageChange: f64(0), Rank2023: i64(99)},
		},
		Total: []gorm.TotalFlow{
			{ID: 30, AirportID: 1, Passengers2022: i64(110000), Passengers2023: i64(132000), PercentageChange: f64(20.0), Rank2022: i64(1), Rank2023: i64(1)},
			{ID: 31, AirportID: 3, Passengers2022: i64(90000), Passengers2023: i64(95000), PercentageChange: f64(5.56), Rank2022: i64(2), Rank2023: i64(4)},
			{ID: 32, AirportID: 2, Passengers2022: i64(88000), Passengers2023: i64(109000), PercentageChange: f64(23.86), Rank2022: i64(3), Rank2023: i64(2)},
			{ID: 33, AirportID: 6, Passengers2022: i64(71000), Passengers2023: i64(80000), PercentageChange: f64(12.68), Rank2022: i64(4), Rank2023: i64(6)},
			{ID: 34, AirportID: 5, Passengers2022: i64(70000), Passengers2023: i64(96000), PercentageChange: f64(37.14), Rank2022: i64(5), Rank2023: i64(3)},
			{ID: 35, AirportID: 4, Passengers2022: i64(69000), Passengers2023: i64(85000), PercentageChange: f64(23.19), Rank2022: i64(6), Rank2023: i64(5)},
			{ID: 36, AirportID: 7, Passengers2022: i64(0), Passengers2023: i64(30000), Rank2022: i64(7), Rank2023: i64(7)},
		},
	}
}

// Open returns migrated in-memory connections seeded with Dataset.
func Open(t testing.TB) *db.Connections {
	t.Helper()

	conns, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conns.Close() })

	if err := db.Migrate(conns.ORM); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := repositories.NewDatasetRepository(conns.ORM).ReplaceAll(context.Background(), Dataset()); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	return conns
}

// OpenEmpty returns migrated in-memory connections with no rows.
func OpenEmpty(t testing.TB) *db.Connections {
	t.Helper()

	conns, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conns.Close() })

	if err := db.Migrate(conns.ORM); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return conns
}
