package api

import (
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/config"
	"airtraffic/statboard/internal/db"
	"airtraffic/statboard/internal/db/repositories"
	"airtraffic/statboard/internal/metrics"
	"airtraffic/statboard/internal/services"
)

type Repositories struct {
	Tables   *repositories.TableRepository
	Datasets *repositories.DatasetRepository
}

type Services struct {
	Cache   common.CacheInterface
	Signer  *common.TokenSigner
	Loader  *common.DatasetLoaderService
	Tables  *services.TableService
	Traffic *services.TrafficService
	Stats   *services.StatsService
	Mix     *services.MixService
	Query   *services.QueryService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Config   *config.Config
	Metrics  *metrics.MetricsRegistry
	Conns    *db.Connections
}

// InitDependencies wires repositories and services over open connections
// and a cache chosen by the caller.
func InitDependencies(cfg *config.Config, conns *db.Connections, cache common.CacheInterface, m *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Tables:   repositories.NewTableRepository(conns.SQL),
		Datasets: repositories.NewDatasetRepository(conns.ORM),
	}

	tableSvc := services.NewTableService(repos.Tables, cache, m)

	svcs := &Services{
		Cache:   cache,
		Signer:  common.NewTokenSigner([]byte(cfg.AdminJWTSecret)),
		Loader:  common.NewDatasetLoaderService(conns.ORM),
		Tables:  tableSvc,
		Traffic: services.NewTrafficService(tableSvc, m),
		Stats:   services.NewStatsService(tableSvc, m),
		Mix:     services.NewMixService(tableSvc, m),
		Query:   services.NewQueryService(tableSvc, repos.Tables, m, cfg.SQLMaxRows, cfg.SQLTimeout),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Config:   cfg,
		Metrics:  m,
		Conns:    conns,
	}, nil
}
