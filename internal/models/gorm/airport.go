package gorm

// Airport is a U.S. airport with optional city/state references.
type Airport struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Airport  string `gorm:"column:airport;type:text;not null"`
	IATACode string `gorm:"column:iata_code;type:varchar(3)"`
	CityID   *int64 `gorm:"column:city_id;index"`
	StateID  *int64 `gorm:"column:state_id;index"`
}

// TableName specifies the table name for GORM
func (Airport) TableName() string {
	return "airports"
}

// City is a lookup row referenced by airports.city_id.
type City struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;type:text;not null"`
}

func (City) TableName() string {
	return "city"
}

// State is a lookup row referenced by airports.state_id.
type State struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;type:text;not null"`
}

func (State) TableName() string {
	return "state"
}
