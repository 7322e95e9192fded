// Package jobs runs CPU-bound work units on a bounded pool of workers.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	// ErrQueueFull is returned by Submit when the queue has no room.
	ErrQueueFull = errors.New("worker queue full")
	// ErrPoolClosed is returned by Submit after Close.
	ErrPoolClosed = errors.New("worker pool closed")
)

// Handler processes one work unit. Implementations must be safe for
// concurrent use.
type Handler func(ctx context.Context, unit *WorkUnit) (any, error)

// WorkUnit is a single item of work routed to a handler by Task.
type WorkUnit struct {
	ID    string
	Index int
	Task  string
	Input any
}

// WorkResult is the outcome of one work unit.
type WorkResult struct {
	Unit   *WorkUnit
	Output any
	Err    error
}

// PoolStatus reports a pool's current state.
type PoolStatus struct {
	Name       string `json:"name"`
	Workers    int    `json:"workers"`
	InFlight   int    `json:"in_flight"`
	QueueDepth int    `json:"queue_depth"`
	Completed  int64  `json:"completed"`
	Failed     int64  `json:"failed"`
}

// PoolConfig configures a new pool.
type PoolConfig struct {
	Name      string
	Logger    *slog.Logger
	Workers   int // Number of worker goroutines (default 1)
	QueueSize int // Queue size (default 1000)
}

// Pool manages workers that share a single queue.
type Pool struct {
	name    string
	logger  *slog.Logger
	workers int

	queue   chan *WorkUnit
	results chan WorkResult

	handlers map[string]Handler
	mu       sync.RWMutex

	closeOnce sync.Once
	closed    atomic.Bool
	submitMu  sync.RWMutex
	wg        sync.WaitGroup

	inFlight  atomic.Int32
	completed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool. Call Start before submitting work.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "cpu"
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		name:     name,
		logger:   logger.With("pool", name, "workers", workers),
		workers:  workers,
		queue:    make(chan *WorkUnit, queueSize),
		results:  make(chan WorkResult, queueSize),
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler registers a handler for a task name.
// Must be called before Start.
func (p *Pool) RegisterHandler(task string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[task] = h
	p.logger.Debug("registered task handler", "task", task)
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Start launches the workers. They exit once the queue is closed and
// drained, or when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Debug("pool starting")
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	go func() {
		p.wg.Wait()
		close(p.results)
		p.logger.Debug("pool stopped")
	}()
}

// Submit adds a work unit to the queue.
func (p *Pool) Submit(unit *WorkUnit) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}
	select {
	case p.queue <- unit:
		return nil
	default:
		p.logger.Warn("pool queue full", "unit_id", unit.ID)
		return fmt.Errorf("%w: %s", ErrQueueFull, p.name)
	}
}

// Close stops accepting work. Queued units still run.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.submitMu.Lock()
		p.closed.Store(true)
		close(p.queue)
		p.submitMu.Unlock()
	})
}

// Results delivers one result per submitted unit. The channel is closed
// after Close once every worker has exited.
func (p *Pool) Results() <-chan WorkResult {
	return p.results
}

// Status returns current pool status.
func (p *Pool) Status() PoolStatus {
	return PoolStatus{
		Name:       p.name,
		Workers:    p.workers,
		InFlight:   int(p.inFlight.Load()),
		QueueDepth: len(p.queue),
		Completed:  p.completed.Load(),
		Failed:     p.failed.Load(),
	}
}
