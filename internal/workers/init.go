package workers

import (
	"context"
	"time"
)

type WorkersContainer struct {
	Warmer *TableWarmer
}

// InitWorkers starts the background workers. An interval of zero or less
// leaves the warmer idle.
func InitWorkers(ctx context.Context, tables TableFetcher, counts RowCounter, warmInterval time.Duration) *WorkersContainer {
	warmer := NewTableWarmer(tables, counts)

	if warmInterval > 0 {
		go warmer.Start(ctx, warmInterval)
	}

	return &WorkersContainer{
		Warmer: warmer,
	}
}
