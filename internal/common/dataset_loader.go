package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/db/repositories"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/models/gorm"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	gormlib "gorm.io/gorm"
)

// DatasetLoaderService seeds the six source tables from CSV exports, one
// file per table named <table>.csv with the column names as header.
type DatasetLoaderService struct {
	repo *repositories.DatasetRepository
}

func NewDatasetLoaderService(db *gormlib.DB) *DatasetLoaderService {
	return &DatasetLoaderService{
		repo: repositories.NewDatasetRepository(db),
	}
}

// LoadDir reads every <table>.csv under dir and replaces the stored dataset.
func (s *DatasetLoaderService) LoadDir(ctx context.Context, dir string) (map[string]int64, error) {
	sources := make(map[string]io.Reader, len(constants.Tables))
	for _, table := range constants.Tables {
		path := filepath.Join(dir, table+".csv")
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		sources[table] = f
	}
	return s.Load(ctx, sources)
}

// Load parses one reader per table and replaces the stored dataset.
func (s *DatasetLoaderService) Load(ctx context.Context, sources map[string]io.Reader) (map[string]int64, error) {
	ds, err := ParseDataset(sources)
	if err != nil {
		return nil, err
	}
	logging.Info("Parsed dataset",
		"cities", len(ds.Cities), "states", len(ds.States), "airports", len(ds.Airports),
		"domestic", len(ds.Domestic), "international", len(ds.International), "total", len(ds.Total))

	if err := s.repo.ReplaceAll(ctx, ds); err != nil {
		return nil, err
	}
	return s.repo.Counts(ctx)
}

// ParseDataset converts the CSV sources into models. Every table is
// required; empty cells and NaN are stored as NULL.
func ParseDataset(sources map[string]io.Reader) (*gorm.Dataset, error) {
	frames := make(map[string]dataframe.DataFrame, len(sources))
	for _, table := range constants.Tables {
		r, ok := sources[table]
		if !ok {
			return nil, fmt.Errorf("missing source for table %s", table)
		}
		df := dataframe.ReadCSV(r,
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
			dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "<nil>", "null"}),
		)
		if df.Err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", table, df.Err)
		}
		frames[table] = df
	}

	ds := &gorm.Dataset{}
	var p rowParser

	city := frames[constants.TableCity]
	for i := 0; i < city.Nrow(); i++ {
		ds.Cities = append(ds.Cities, gorm.City{
			ID:   p.id(city, constants.ColID, i),
			Name: p.text(city, constants.ColName, i),
		})
	}

	state := frames[constants.TableState]
	for i := 0; i < state.Nrow(); i++ {
		ds.States = append(ds.States, gorm.State{
			ID:   p.id(state, constants.ColID, i),
			Name: p.text(state, constants.ColName, i),
		})
	}

	airports := frames[constants.TableAirports]
	for i := 0; i < airports.Nrow(); i++ {
		ds.Airports = append(ds.Airports, gorm.Airport{
			ID:       p.id(airports, constants.ColID, i),
			Airport:  p.text(airports, constants.ColAirport, i),
			IATACode: p.text(airports, constants.ColIATACode, i),
			CityID:   p.intPtr(airports, constants.ColCityID, i),
			StateID:  p.intPtr(airports, constants.ColStateID, i),
		})
	}

	dom := frames[constants.TableDomestic]
	for i := 0; i < dom.Nrow(); i++ {
		ds.Domestic = append(ds.Domestic, gorm.DomesticFlow{
			ID:               p.id(dom, constants.ColID, i),
			AirportID:        p.id(dom, constants.ColAirportID, i),
			Passengers2022:   p.intPtr(dom, constants.PassengersColumn(constants.Year2022, constants.FlowDomestic), i),
			Passengers2023:   p.intPtr(dom, constants.PassengersColumn(constants.Year2023, constants.FlowDomestic), i),
			PercentageChange: p.floatPtr(dom, constants.ChangeColumn(constants.FlowDomestic), i),
			Rank2023:         p.intPtr(dom, constants.RankColumn(constants.Year2023, constants.FlowDomestic), i),
		})
	}

	inter := frames[constants.TableInternational]
	for i := 0; i < inter.Nrow(); i++ {
		ds.International = append(ds.International, gorm.InternationalFlow{
			ID:               p.id(inter, constants.ColID, i),
			AirportID:        p.id(inter, constants.ColAirportID, i),
			Passengers2022:   p.intPtr(inter, constants.PassengersColumn(constants.Year2022, constants.FlowInternational), i),
			Passengers2023:   p.intPtr(inter, constants.PassengersColumn(constants.Year2023, constants.FlowInternational), i),
			PercentageChange: p.floatPtr(inter, constants.ChangeColumn(constants.FlowInternational), i),
			Rank2023:         p.intPtr(inter, constants.RankColumn(constants.Year2023, constants.FlowInternational), i),
		})
	}

	total := frames[constants.TableTotal]
	for i := 0; i < total.Nrow(); i++ {
		ds.Total = append(ds.Total, gorm.TotalFlow{
			ID:               p.id(total, constants.ColID, i),
			AirportID:        p.id(total, constants.ColAirportID, i),
			Passengers2022:   p.intPtr(total, constants.PassengersColumn(constants.Year2022, constants.FlowTotal), i),
			Passengers2023:   p.intPtr(total, constants.PassengersColumn(constants.Year2023, constants.FlowTotal), i),
			PercentageChange: p.floatPtr(total, constants.ChangeColumn(constants.FlowTotal), i),
			Rank2022:         p.intPtr(total, constants.ColRank2022Total, i),
			Rank2023:         p.intPtr(total, constants.ColRank2023Total, i),
		})
	}

	if p.err != nil {
		return nil, p.err
	}
	return ds, nil
}

// rowParser reads typed cells and keeps the first error.
type rowParser struct {
	err error
}

func (p *rowParser) cell(df dataframe.DataFrame, col string, row int) (string, bool) {
	if p.err != nil {
		return "", false
	}
	for _, name := range df.Names() {
		if name == col {
			e := df.Col(col).Elem(row)
			if e.IsNA() {
				return "", false
			}
			return strings.TrimSpace(e.String()), true
		}
	}
	return "", false
}

func (p *rowParser) id(df dataframe.DataFrame, col string, row int) int64 {
	v := p.intPtr(df, col, row)
	if v == nil {
		if p.err == nil {
			p.err = fmt.Errorf("row %d: missing %s", row+1, col)
		}
		return 0
	}
	return *v
}

func (p *rowParser) intPtr(df dataframe.DataFrame, col string, row int) *int64 {
	raw, ok := p.cell(df, col, row)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("row %d: %s: invalid integer %q", row+1, col, raw)
		return nil
	}
	v := int64(f)
	return &v
}

func (p *rowParser) floatPtr(df dataframe.DataFrame, col string, row int) *float64 {
	raw, ok := p.cell(df, col, row)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("row %d: %s: invalid number %q", row+1, col, raw)
		return nil
	}
	return &f
}

func (p *rowParser) text(df dataframe.DataFrame, col string, row int) string {
	raw, _ := p.cell(df, col, row)
	return raw
}
