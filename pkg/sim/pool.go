package sim

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPool evaluates a tick's sensitive parts across a fixed number of
// goroutines. Grounded directly on pkg/search/worker.go's shape: a buffered
// channel of work, a fixed goroutine count draining it with a
// sync.WaitGroup, and sync/atomic counters a progress ticker goroutine can
// read without locking.
type WorkerPool struct {
	NumWorkers int
	evaluated  atomic.Int64
	errored    atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers. NumWorkers
// <= 0 is replaced by GOMAXPROCS by the caller (see Options.normalize).
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &WorkerPool{NumWorkers: numWorkers}
}

// Stats returns running totals since the pool was created.
func (wp *WorkerPool) Stats() (evaluated, errored int64) {
	return wp.evaluated.Load(), wp.errored.Load()
}

// RunParts evaluates every part in parts whose sensitivity fired,
// distributing the work across wp.NumWorkers goroutines, and returns the
// lowest-indexed RunError produced (nil if every part succeeded), so a
// deterministic single tick always reports the same failure regardless of
// goroutine scheduling.
func (wp *WorkerPool) RunParts(tick uint64, phase Phase, parts []*Part) *RunError {
	type job struct {
		index int
		part  *Part
	}

	jobs := make(chan job, len(parts))
	n := 0
	for i, p := range parts {
		if !p.sensitive() {
			continue
		}
		jobs <- job{index: i, part: p}
		n++
	}
	close(jobs)
	if n == 0 {
		return nil
	}

	errs := make([]*RunError, len(parts))
	var wg sync.WaitGroup
	workers := wp.NumWorkers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				wp.evaluated.Add(1)
				if err := j.part.update(tick); err != nil {
					wp.errored.Add(1)
					errs[j.index] = &RunError{Tick: tick, Phase: phase, Part: j.part.Name(), Err: err}
				}
			}
		}()
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// progressReporter, started by Simulator.RunVerbose, prints a
// throughput line every few seconds — the same ticker-goroutine shape as
// pkg/search/worker.go's RunTasks, rescaled to "ticks" instead of "search
// targets".
func (wp *WorkerPool) progressReporter(done <-chan struct{}, totalTicks uint64, currentTick func() uint64) {
	start := time.Now()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			tick := currentTick()
			evaluated, errored := wp.Stats()
			var pct float64
			if totalTicks > 0 {
				pct = float64(tick) / float64(totalTicks) * 100
			}
			fmt.Printf("  [%s] tick %d/%d (%.1f%%) | %d part evaluations | %d errors\n",
				elapsed.Round(time.Second), tick, totalTicks, pct, evaluated, errored)
		}
	}
}
