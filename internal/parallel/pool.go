// Package parallel runs data-parallel loops on a persistent set of worker
// goroutines.
//
// A Pool is created once and reused by every parallel kernel call. Loops are
// expressed with For, which declares how the iteration space is partitioned.
// Both strategies hand every index in [0, n) to exactly one worker, so a loop
// body that writes only the output region derived from its own indices needs
// no locking.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Strategy selects how For partitions an iteration space.
type Strategy int

const (
	// RowBlocked splits [0, n) into at most Workers contiguous chunks of
	// near-equal size. Suited to uniform work such as whole output rows.
	RowBlocked Strategy = iota
	// Dynamic hands out indices one at a time from a shared atomic counter,
	// balancing uneven work such as clamped edge tiles.
	Dynamic
)

func (s Strategy) String() string {
	switch s {
	case RowBlocked:
		return "row-blocked"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

type task struct {
	fn   func()
	done chan struct{}
}

// Pool is a fixed set of worker goroutines. The zero value is not usable;
// construct pools with New.
type Pool struct {
	size      int
	tasks     chan task
	doneSlots chan chan struct{}

	// mu is held for reading while For submits work, so Close cannot close
	// tasks under a running loop.
	mu     sync.RWMutex
	closed bool
}

// New starts a pool with the given number of workers. workers <= 0 selects
// GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		size:      workers,
		tasks:     make(chan task, workers*2),
		doneSlots: make(chan chan struct{}, workers),
	}
	for i := 0; i < workers; i++ {
		p.doneSlots <- make(chan struct{}, workers)
	}
	for w := 0; w < workers; w++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for t := range p.tasks {
		t.fn()
		t.done <- struct{}{}
	}
}

// Workers returns the number of worker goroutines. A nil pool reports 1.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.size
}

// Close stops the workers. It waits for in-flight For calls to return;
// later For calls run on the calling goroutine. Calling Close more than once
// is safe.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
}

// For calls fn over [0, n) using the given strategy and blocks until every
// call has returned. fn receives half-open index ranges; with Dynamic each
// range holds a single index. A nil or closed pool runs fn(0, n) inline.
func (p *Pool) For(n int, strategy Strategy, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p == nil {
		fn(0, n)
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		fn(0, n)
		return
	}
	workers := min(p.size, n)
	if workers <= 1 {
		fn(0, n)
		return
	}

	switch strategy {
	case Dynamic:
		var next atomic.Int64
		p.run(workers, func(int) {
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				fn(i, i+1)
			}
		})
	default:
		chunk := (n + workers - 1) / workers
		workers = (n + chunk - 1) / chunk
		p.run(workers, func(w int) {
			start := w * chunk
			end := min(start+chunk, n)
			fn(start, end)
		})
	}
}

// run submits one task per worker slot and waits for all of them.
func (p *Pool) run(workers int, body func(w int)) {
	done := <-p.doneSlots
	for w := 0; w < workers; w++ {
		p.tasks <- task{fn: func() { body(w) }, done: done}
	}
	for i := 0; i < workers; i++ {
		<-done
	}
	p.doneSlots <- done
}
