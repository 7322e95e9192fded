package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func collect(p *Pool) []WorkResult {
	var out []WorkResult
	for r := range p.Results() {
		out = append(out, r)
	}
	return out
}

func TestPool(t *testing.T) {
	t.Run("runs every unit", func(t *testing.T) {
		p := NewPool(PoolConfig{Name: "test", Workers: 4})
		p.RegisterHandler("double", func(ctx context.Context, u *WorkUnit) (any, error) {
			return u.Input.(int) * 2, nil
		})
		p.Start(context.Background())

		for i := 0; i < 20; i++ {
			if err := p.Submit(&WorkUnit{ID: fmt.Sprint(i), Index: i, Task: "double", Input: i}); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
		}
		p.Close()

		results := collect(p)
		if len(results) != 20 {
			t.Fatalf("got %d results, want 20", len(results))
		}
		for _, r := range results {
			if r.Err != nil {
				t.Errorf("unit %s error = %v", r.Unit.ID, r.Err)
			}
			if r.Output.(int) != r.Unit.Index*2 {
				t.Errorf("unit %d output = %v", r.Unit.Index, r.Output)
			}
		}
		if s := p.Status(); s.Completed != 20 || s.Failed != 0 {
			t.Errorf("status = %+v", s)
		}
	})

	t.Run("reports handler errors", func(t *testing.T) {
		boom := errors.New("boom")
		p := NewPool(PoolConfig{Workers: 2})
		p.RegisterHandler("fail", func(ctx context.Context, u *WorkUnit) (any, error) {
			return nil, boom
		})
		p.Start(context.Background())
		_ = p.Submit(&WorkUnit{ID: "a", Task: "fail"})
		_ = p.Submit(&WorkUnit{ID: "b", Task: "missing"})
		p.Close()

		results := collect(p)
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
		for _, r := range results {
			switch r.Unit.ID {
			case "a":
				if !errors.Is(r.Err, boom) {
					t.Errorf("a error = %v, want boom", r.Err)
				}
			case "b":
				if r.Err == nil {
					t.Error("expected error for unregistered task")
				}
			}
		}
		if p.Status().Failed != 2 {
			t.Errorf("failed = %d, want 2", p.Status().Failed)
		}
	})

	t.Run("bounds concurrency", func(t *testing.T) {
		var running, peak atomic.Int32
		p := NewPool(PoolConfig{Workers: 3})
		p.RegisterHandler("sleep", func(ctx context.Context, u *WorkUnit) (any, error) {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil, nil
		})
		p.Start(context.Background())
		for i := 0; i < 12; i++ {
			_ = p.Submit(&WorkUnit{ID: fmt.Sprint(i), Task: "sleep"})
		}
		p.Close()
		collect(p)

		if peak.Load() > 3 {
			t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
		}
	})

	t.Run("rejects after close", func(t *testing.T) {
		p := NewPool(PoolConfig{})
		p.Start(context.Background())
		p.Close()
		p.Close()

		if err := p.Submit(&WorkUnit{ID: "late"}); !errors.Is(err, ErrPoolClosed) {
			t.Errorf("Submit() error = %v, want ErrPoolClosed", err)
		}
		collect(p)
	})

	t.Run("rejects when full", func(t *testing.T) {
		p := NewPool(PoolConfig{QueueSize: 1})
		if err := p.Submit(&WorkUnit{ID: "1"}); err != nil {
			t.Fatalf("first Submit() error = %v", err)
		}
		if err := p.Submit(&WorkUnit{ID: "2"}); !errors.Is(err, ErrQueueFull) {
			t.Errorf("second Submit() error = %v, want ErrQueueFull", err)
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewPool(PoolConfig{Workers: 2})
		p.Start(ctx)
		cancel()

		done := make(chan struct{})
		go func() {
			collect(p)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("results channel not closed after cancel")
		}
	})
}
