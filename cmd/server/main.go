package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airtraffic/statboard/internal/api"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/config"
	"airtraffic/statboard/internal/db"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/metrics"
	"airtraffic/statboard/internal/routes"
	"airtraffic/statboard/internal/workers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Statboard starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	conns, err := db.Open(cfg)
	if err != nil {
		logging.Error("Failed to connect to store", "driver", cfg.DBDriver, "error", err.Error())
		log.Fatalf("❌ Failed to connect to store: %v", err)
	}
	defer conns.Close()
	logging.Info("Connected to store", "driver", cfg.DBDriver)

	if err := db.Migrate(conns.ORM); err != nil {
		log.Fatalf("❌ Failed to migrate schema: %v", err)
	}

	cache := common.NewCache(cfg)
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, conns, cache, metricsReg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}
	if !deps.Services.Signer.Enabled() {
		logging.Warn("ADMIN_JWT_SECRET not set, admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers.InitWorkers(ctx, deps.Services.Tables, deps.Repo.Datasets, cfg.CacheWarmInterval)

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router) // Mount Chi router at root
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting",
			"port", cfg.Port,
			"environment", cfg.AppEnv,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
