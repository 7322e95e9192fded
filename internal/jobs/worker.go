package jobs

import (
	"context"
	"fmt"
)

// worker processes units from the shared queue.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return

		case unit, ok := <-p.queue:
			if !ok {
				return
			}
			p.inFlight.Add(1)
			res := p.process(ctx, unit)
			p.inFlight.Add(-1)

			if res.Err != nil {
				p.failed.Add(1)
			} else {
				p.completed.Add(1)
			}
			p.logger.Debug("worker completed unit", "worker_id", id, "unit_id", unit.ID, "success", res.Err == nil)

			select {
			case p.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// process executes one work unit.
func (p *Pool) process(ctx context.Context, unit *WorkUnit) WorkResult {
	res := WorkResult{Unit: unit}

	p.mu.RLock()
	handler, ok := p.handlers[unit.Task]
	p.mu.RUnlock()

	if !ok {
		res.Err = fmt.Errorf("no handler registered for task: %s", unit.Task)
		return res
	}

	out, err := handler(ctx, unit)
	if err != nil {
		res.Err = err
		p.logger.Debug("work unit failed", "unit_id", unit.ID, "task", unit.Task, "error", err)
		return res
	}
	res.Output = out
	return res
}
