package gorm

// Field order matters: AutoMigrate creates columns in declaration order and
// the table fetch keeps the source column order.

// DomesticFlow holds domestic enplanements per airport.
type DomesticFlow struct {
	ID               int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	AirportID        int64    `gorm:"column:airport_id;not null;uniqueIndex"`
	Passengers2022   *int64   `gorm:"column:2022_enplaned_passengers_dom"`
	Passengers2023   *int64   `gorm:"column:2023_enplaned_passengers_dom"`
	PercentageChange *float64 `gorm:"column:percentage_change_2022_2023_dom"`
	Rank2023         *int64   `gorm:"column:2023_rank_dom"`
}

func (DomesticFlow) TableName() string {
	return "domestic"
}

// InternationalFlow holds international enplanements per airport.
type InternationalFlow struct {
	ID               int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	AirportID        int64    `gorm:"column:airport_id;not null;uniqueIndex"`
	Passengers2022   *int64   `gorm:"column:2022_enplaned_passengers_inter"`
	Passengers2023   *int64   `gorm:"column:2023_enplaned_passengers_inter"`
	PercentageChange *float64 `gorm:"column:percentage_change_2022_2023_inter"`
	Rank2023         *int64   `gorm:"column:2023_rank_inter"`
}

func (InternationalFlow) TableName() string {
	return "international"
}

// TotalFlow holds total enplanements and both years' ranks per airport.
type TotalFlow struct {
	ID               int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	AirportID        int64    `gorm:"column:airport_id;not null;uniqueIndex"`
	Passengers2022   *int64   `gorm:"column:2022_enplaned_passengers_total"`
	Passengers2023   *int64   `gorm:"column:2023_enplaned_passengers_total"`
	PercentageChange *float64 `gorm:"column:percentage_change_2022_2023_total"`
	Rank2022         *int64   `gorm:"column:2022_rank_total"`
	Rank2023         *int64   `gorm:"column:2023_rank_total"`
}

func (TotalFlow) TableName() string {
	return "total"
}

// AllModels lists the dataset models in dependency order for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&City{},
		&State{},
		&Airport{},
		&DomesticFlow{},
		&InternationalFlow{},
		&TotalFlow{},
	}
}

// Dataset is one full snapshot of the six source tables.
type Dataset struct {
	Cities        []City
	States        []State
	Airports      []Airport
	Domestic      []DomesticFlow
	International []InternationalFlow
	Total         []TotalFlow
}
