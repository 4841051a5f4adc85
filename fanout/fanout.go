// Package fanout executes independent generation tasks concurrently with a
// bounded worker budget and per-item failure isolation. One item failing or
// panicking never cancels or blocks the others; the caller always receives
// exactly one result per task, restored to stable sequence order.
package fanout

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/reelforge/reelforge/logging"
)

// DefaultWorkers bounds concurrent generation calls when no explicit budget
// is configured.
const DefaultWorkers = 8

// Task is one independent unit of generation work. Seq is the owning entity's
// stable sequence index, used to restore deterministic ordering after the
// unordered concurrent phase.
type Task struct {
	ID  string
	Seq int
	Run func(ctx context.Context) (any, error)
}

// ItemResult is the tagged outcome of one task.
type ItemResult struct {
	ID      string `json:"id"`
	Seq     int    `json:"seq"`
	Success bool   `json:"success"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult aggregates a full fan-out run. The batch is reported as
// completed even when individual items failed; per-item status carries the
// failures.
type BatchResult struct {
	Attempted int          `json:"attempted"`
	Succeeded int          `json:"succeeded"`
	Items     []ItemResult `json:"items"`
}

// Runner launches task batches with a fixed worker budget.
type Runner struct {
	workers int
	logger  logging.Logger
}

// NewRunner constructs a Runner. workers <= 0 selects DefaultWorkers.
func NewRunner(workers int, logger logging.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Runner{workers: workers, logger: logger}
}

// RunBatch executes tasks concurrently and waits for the full set. An empty
// batch is a no-op reporting success with empty results. Results are sorted
// by Seq (then ID) regardless of completion order.
func (r *Runner) RunBatch(ctx context.Context, tasks []Task) BatchResult {
	n := len(tasks)
	if n == 0 {
		return BatchResult{Items: []ItemResult{}}
	}

	maxPar := r.workers
	if maxPar > n {
		maxPar = n
	}

	results := make([]ItemResult, n)
	sem := make(chan struct{}, maxPar)
	var wg sync.WaitGroup

	start := time.Now()
	for i := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, t Task) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = r.runOne(ctx, t)
		}(i, tasks[i])
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Seq != results[j].Seq {
			return results[i].Seq < results[j].Seq
		}
		return results[i].ID < results[j].ID
	})

	out := BatchResult{Attempted: n, Items: results}
	for _, it := range results {
		if it.Success {
			out.Succeeded++
		}
	}

	r.logger.Info("fanout.batch.complete",
		"attempted", out.Attempted,
		"succeeded", out.Succeeded,
		"parallelism", maxPar,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return out
}

// runOne executes a single task, converting errors and panics into a tagged
// failure result rather than propagating them.
func (r *Runner) runOne(ctx context.Context, t Task) (res ItemResult) {
	res = ItemResult{ID: t.ID, Seq: t.Seq}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("fanout.task.panic", "id", t.ID, "recover", rec)
			res.Success = false
			res.Payload = nil
			res.Error = fmt.Sprintf("task panicked: %v", rec)
		}
	}()

	payload, err := t.Run(ctx)
	if err != nil {
		r.logger.Warn("fanout.task.failed", "id", t.ID, "error", err.Error())
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.Payload = payload
	return res
}
