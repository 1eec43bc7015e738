package db

import (
	"fmt"

	"airtraffic/statboard/internal/config"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Connections bundles the sqlx pool (reads, raw SQL) and the GORM handle
// (schema, bulk loads).
type Connections struct {
	SQL    *sqlx.DB
	ORM    *gorm.DB
	Driver string
}

// Open connects according to cfg.DBDriver. For sqlite both handles share
// one pool; for postgres sqlx goes through lib/pq and GORM through pgx.
func Open(cfg *config.Config) (*Connections, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		sqlDB, err := InitPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		orm, err := InitPostgresORM(cfg.PostgresDSN())
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		return &Connections{SQL: sqlDB, ORM: orm, Driver: cfg.DBDriver}, nil

	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens path through GORM and wraps the same pool with sqlx.
func OpenSQLite(path string) (*Connections, error) {
	orm, err := InitSQLiteORM(path)
	if err != nil {
		return nil, err
	}
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite pool: %w", err)
	}
	return &Connections{
		SQL:    sqlx.NewDb(sqlDB, "sqlite3"),
		ORM:    orm,
		Driver: config.DriverSQLite,
	}, nil
}

// Close releases both handles. With sqlite they share a pool, so it is
// closed once.
func (c *Connections) Close() error {
	if c.Driver == config.DriverSQLite {
		return c.SQL.Close()
	}
	if sqlDB, err := c.ORM.DB(); err == nil {
		sqlDB.Close()
	}
	return c.SQL.Close()
}
