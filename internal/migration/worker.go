package migration

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// runWorkers migrates every item with at most d.workers tasks in flight.
// Each task writes only its own slot of the result slice.
func (d *Driver) runWorkers(ctx context.Context, logger zerolog.Logger, items []json.RawMessage) []Outcome {
	outcomes := make([]Outcome, len(items))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < min(d.workers, len(items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = d.migrateSafely(ctx, logger, i, items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
