package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs thread groups on a fixed set of goroutines.
//
// Each worker owns a queue. Work is distributed round-robin; an idle worker
// steals from the other queues before blocking, which keeps the pool busy when
// some groups are slower than others (edge tiles, background-heavy regions).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	depth := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.run(i)
	}
	return p
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
			continue
		default:
		}

		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case fn := <-p.queues[(id+i)%p.workers]:
			return fn
		default:
		}
	}
	return nil
}

// ExecuteAll runs every function and waits for all of them to return.
// After Close the functions run on the calling goroutine, so no work is lost.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		task := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queues[i%p.workers] <- task:
		case <-p.done:
			task()
		}
	}
	wg.Wait()
}

// Dispatch runs fn once per group of grid and waits for completion.
func (p *WorkerPool) Dispatch(grid Grid, fn func(Group)) {
	groups := grid.Groups()
	work := make([]func(), len(groups))
	for i, g := range groups {
		work[i] = func() { fn(g) }
	}
	p.ExecuteAll(work)
}

// Close stops the workers after their queues drain.
// Close is safe to call multiple times but must not race with ExecuteAll.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
