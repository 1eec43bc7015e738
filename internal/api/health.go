package api

import (
	"context"
	"net/http"
	"time"

	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/models/dtos"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(store Pinger, cache common.CacheInterface, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		services := make(map[string]dtos.ServiceStatus)

		storeStatus := "ok"
		storeDetails := "Store connected"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			storeStatus = "down"
			storeDetails = err.Error()
		}
		services["store"] = dtos.ServiceStatus{
			Status:  storeStatus,
			Details: storeDetails,
		}
		services["cache"] = dtos.ServiceStatus{
			Status:  "ok",
			Details: cache.Backend(),
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := dtos.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		common.RespondSuccess(w, initTime, "Health check", resp, code)
	}
}
