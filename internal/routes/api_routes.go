package routes

import (
	"airtraffic/statboard/internal/api"
	"airtraffic/statboard/internal/auth"
	"airtraffic/statboard/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {

	cfg := deps.Config
	sqlLimiter := middleware.NewRateLimiter(cfg.SQLRatePerS, cfg.SQLRateBurst)

	r.Route("/api/v1", func(v1 chi.Router) {
		// Table browser
		v1.Get("/tables", handlers.ListTables())
		v1.Get("/tables/{table}", handlers.BrowseTable())

		// Airport views
		v1.Get("/airports/denormalized", handlers.Denormalized())
		v1.Get("/airports/top", handlers.TopAirports())
		v1.Get("/airports/growth", handlers.Growth())
		v1.Get("/rankings/comparison", handlers.RankComparison())

		// Statistics dashboards
		v1.Get("/statistics/{flow}", handlers.FlowStatistics())
		v1.Get("/mix", handlers.TrafficMix())

		// Queries
		v1.Get("/queries", handlers.ListQueries())
		v1.Get("/queries/{id}", handlers.RunQuery())

		v1.Group(func(limited chi.Router) {
			limited.Use(sqlLimiter.Middleware)
			limited.Post("/sql", handlers.CustomSQL())
		})

		// Admin
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminAuth(deps.Services.Signer, auth.ActionInvalidateCache))
			admin.Delete("/admin/cache", handlers.InvalidateCache())
			admin.Delete("/admin/cache/{table}", handlers.InvalidateCache())
		})
	})
}
