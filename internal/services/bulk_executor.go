// internal/services/bulk_executor.go
package services

import (
	"context"
	"sync"
)

// BulkItemResult is the outcome for one id of a batch.
type BulkItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BulkSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BulkResult aggregates per-item outcomes. Success is true only when
// every item succeeded; callers inspect Items to learn which ids
// failed. Already-applied items are never rolled back — the remote
// store has no multi-record transaction primitive.
type BulkResult struct {
	Success bool             `json:"success"`
	Items   []BulkItemResult `json:"items"`
	Summary BulkSummary      `json:"summary"`
}

// BulkExecutor applies one operation across an id set through a bounded
// worker pool. Width 1 gives the sequential behavior that keeps remote
// API load low; wider pools keep the same per-item error isolation and
// result ordering.
type BulkExecutor struct {
	workers int
}

func NewBulkExecutor(workers int) *BulkExecutor {
	if workers < 1 {
		workers = 1
	}
	return &BulkExecutor{workers: workers}
}

// Run applies op to every id. A failing item is recorded and never
// prevents the remaining items from being processed. Results keep the
// input order regardless of pool width.
func (e *BulkExecutor) Run(ctx context.Context, ids []string, op func(ctx context.Context, id string) error) BulkResult {
	results := make([]BulkItemResult, len(ids))

	indexes := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				id := ids[i]
				if err := op(ctx, id); err != nil {
					results[i] = BulkItemResult{ID: id, Success: false, Error: err.Error()}
				} else {
					results[i] = BulkItemResult{ID: id, Success: true}
				}
			}
		}()
	}

	for i := range ids {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	summary := BulkSummary{Total: len(ids)}
	for _, r := range results {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	return BulkResult{
		Success: summary.Failed == 0,
		Items:   results,
		Summary: summary,
	}
}
