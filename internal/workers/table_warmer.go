package workers

import (
	"context"
	"time"

	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/logging"

	"github.com/go-gota/gota/dataframe"
)

// TableFetcher loads a source table through the cache.
type TableFetcher interface {
	Fetch(ctx context.Context, table string) dataframe.DataFrame
}

// RowCounter reports the stored row count of each table.
type RowCounter interface {
	Counts(ctx context.Context) (map[string]int64, error)
}

// TableWarmer keeps every source table loaded in the cache so the first
// request after start-up or an invalidation does not pay for the fetch.
type TableWarmer struct {
	tables TableFetcher
	counts RowCounter
}

func NewTableWarmer(tables TableFetcher, counts RowCounter) *TableWarmer {
	return &TableWarmer{tables: tables, counts: counts}
}

// Start warms immediately, then on every tick until ctx is done.
func (w *TableWarmer) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Table warmer starting", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.Warm(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info("Table warmer shutting down")
			return
		case <-ticker.C:
			w.Warm(ctx)
		}
	}
}

// Warm fetches every table and returns the names that came back empty.
func (w *TableWarmer) Warm(ctx context.Context) []string {
	start := time.Now()
	var empty []string
	for _, table := range constants.Tables {
		if frames.IsEmpty(w.tables.Fetch(ctx, table)) {
			empty = append(empty, table)
		}
	}

	if w.counts != nil {
		counts, err := w.counts.Counts(ctx)
		if err != nil {
			logging.Warn("Table warmer: failed to count rows", "error", err)
		} else {
			logging.Debug("Table warmer: stored rows", "counts", counts)
		}
	}

	if len(empty) > 0 {
		logging.Warn("Table warmer: tables without data", "tables", empty)
	}
	logging.Info("Tables warmed",
		"tables", len(constants.Tables)-len(empty),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return empty
}
