package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/config"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/db"
	"airtraffic/statboard/internal/logging"
)

// seed replaces the six source tables with the CSV files in a directory.
func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()
	dir := flag.String("dir", cfg.DataDir, "directory holding <table>.csv files")
	flag.Parse()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	conns, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to store: %v", err)
	}
	defer conns.Close()

	if err := db.Migrate(conns.ORM); err != nil {
		log.Fatalf("❌ Failed to migrate schema: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	counts, err := common.NewDatasetLoaderService(conns.ORM).LoadDir(ctx, *dir)
	if err != nil {
		log.Fatalf("❌ Failed to load %s: %v", *dir, err)
	}

	for _, table := range constants.Tables {
		logging.Info("Table loaded", "table", table, "rows", counts[table])
	}
	logging.Info("Dataset loaded", "dir", *dir, "duration", time.Since(start).String())
}
