package pipeline

import (
	"context"
	"fmt"

	"github.com/jackzampolin/tagsheet/internal/jobs"
)

const taskExtract = "extract"

// BatchResult is the outcome for one path of a batch.
type BatchResult struct {
	Path string `json:"path"`
	Run  *Run   `json:"run,omitempty"`
	Err  error  `json:"-"`
}

// ExtractBatch loads and extracts every path on a worker pool. Results are
// returned in input order; a failed document sets Err on its result and
// does not stop the batch. The returned error is non-nil only when ctx
// ends before every document finished.
func (r *Runner) ExtractBatch(ctx context.Context, paths []string) ([]BatchResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := jobs.NewPool(jobs.PoolConfig{
		Name:      "batch",
		Logger:    r.logger,
		Workers:   r.batchWorkers,
		QueueSize: len(paths),
	})
	pool.RegisterHandler(taskExtract, func(ctx context.Context, unit *jobs.WorkUnit) (any, error) {
		return r.ExtractFile(ctx, unit.Input.(string))
	})
	pool.Start(ctx)

	results := make([]BatchResult, len(paths))
	for i, p := range paths {
		results[i].Path = p
		unit := &jobs.WorkUnit{
			ID:    fmt.Sprintf("%s#%d", taskExtract, i),
			Index: i,
			Task:  taskExtract,
			Input: p,
		}
		if err := pool.Submit(unit); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to queue %s: %w", p, err)
		}
	}
	pool.Close()

	done := 0
	for res := range pool.Results() {
		i := res.Unit.Index
		results[i].Err = res.Err
		if run, ok := res.Output.(*Run); ok {
			results[i].Run = run
		}
		done++
	}
	if done < len(paths) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch interrupted after %d of %d documents: %w", done, len(paths), err)
		}
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch complete", "documents", len(paths), "failed", failed)
	return results, nil
}
