package assets

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/aero-boar/engine/core"
	"github.com/spaghettifunk/aero-boar/engine/resources"
)

// ErrPoolStopped is returned by Submit after the pool has been shut down.
var ErrPoolStopped = errors.New("asset pool stopped")

// Future resolves to the result of one submitted load task.
type Future struct {
	result chan resources.AssetLoadResult
}

// Wait blocks until the task completes.
func (f *Future) Wait() resources.AssetLoadResult {
	return <-f.result
}

// Poll returns the result without blocking. ok is false while the task is
// still running.
func (f *Future) Poll() (result resources.AssetLoadResult, ok bool) {
	select {
	case r := <-f.result:
		return r, true
	default:
		return resources.AssetLoadResult{}, false
	}
}

type poolTask struct {
	id     string
	fn     func() resources.AssetLoadResult
	result chan resources.AssetLoadResult
}

// Pool runs load tasks on a fixed set of worker goroutines. Workers live for
// the pool's lifetime; tasks queue when all workers are busy.
type Pool struct {
	tasks chan poolTask
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool starts a pool with the given number of workers. A non-positive
// count falls back to a single worker.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		tasks: make(chan poolTask, workers*4),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	core.LogDebug("asset pool started with %d workers", workers)
	return p
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for t := range p.tasks {
		core.LogDebug("worker %d running load task %s", n, t.id)
		t.result <- t.fn()
	}
}

// Submit enqueues a task and returns its future. Fails with ErrPoolStopped
// once Shutdown has begun.
func (p *Pool) Submit(fn func() resources.AssetLoadResult) (*Future, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return nil, ErrPoolStopped
	}
	t := poolTask{
		id:     core.NewTaskID(),
		fn:     fn,
		result: make(chan resources.AssetLoadResult, 1),
	}
	p.tasks <- t
	return &Future{result: t.result}, nil
}

// Shutdown stops accepting tasks, lets queued tasks finish and waits for the
// workers to exit. Calling it again is a no-op.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	core.LogDebug("asset pool stopped")
}
