// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel runs per-file work on a bounded pool of goroutines.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"doclens/internal/observability"
)

// maxDefaultWorkers caps DefaultWorkers.
const maxDefaultWorkers = 8

// Job is one file to process.
type Job struct {
	Index int
	Path  string
}

// Result is the outcome of one job.
type Result[R any] struct {
	Job      Job
	Value    R
	Err      error
	Duration time.Duration
}

// Func processes a single job.
type Func[R any] func(ctx context.Context, job Job) (R, error)

// DefaultWorkers returns the CPU count, capped at 8.
func DefaultWorkers() int {
	return min(runtime.NumCPU(), maxDefaultWorkers)
}

// WorkerPool runs jobs on a fixed number of goroutines.
type WorkerPool[R any] struct {
	workers    int
	jobTimeout time.Duration
	observer   *observability.StandardObserver
	fn         Func[R]
}

// NewWorkerPool creates a pool. workers below 1 means DefaultWorkers.
func NewWorkerPool[R any](workers int, fn Func[R]) *WorkerPool[R] {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &WorkerPool[R]{workers: workers, fn: fn}
}

// SetObserver sets the observability component
func (wp *WorkerPool[R]) SetObserver(observer *observability.StandardObserver) {
	wp.observer = observer
}

// SetJobTimeout bounds each job; zero means no limit.
func (wp *WorkerPool[R]) SetJobTimeout(d time.Duration) {
	wp.jobTimeout = d
}

// Workers returns the pool size.
func (wp *WorkerPool[R]) Workers() int { return wp.workers }

// completion pairs a result with the position of its job.
type completion[R any] struct {
	pos int
	res Result[R]
}

// run dispatches jobs and sends each result as it completes. Jobs not yet
// dispatched when ctx is cancelled are reported with ctx.Err().
func (wp *WorkerPool[R]) run(ctx context.Context, jobs []Job, results chan<- completion[R]) {
	queue := make(chan int, wp.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < min(wp.workers, len(jobs)); i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for pos := range queue {
				results <- completion[R]{pos: pos, res: wp.processJob(ctx, jobs[pos], id)}
			}
		}(i)
	}

	for pos := range jobs {
		select {
		case queue <- pos:
			continue
		case <-ctx.Done():
		}
		for skipped := pos; skipped < len(jobs); skipped++ {
			results <- completion[R]{pos: skipped, res: Result[R]{Job: jobs[skipped], Err: ctx.Err()}}
		}
		break
	}
	close(queue)
	wg.Wait()
	close(results)
}

// processJob runs fn for one job, converting panics into errors.
func (wp *WorkerPool[R]) processJob(ctx context.Context, job Job, workerID int) (res Result[R]) {
	start := time.Now()
	res.Job = job

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_job", job.Path)
	}

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic processing %s: %v", job.Path, r)
			logger := wp.observer.Logger()
			logger.Error().Str("file", job.Path).Bytes("stack", debug.Stack()).Msg("worker recovered from panic")
		}
		res.Duration = time.Since(start)
		if finishTiming != nil {
			finishTiming(res.Err == nil, map[string]interface{}{
				"worker_id":   workerID,
				"duration_ms": res.Duration.Milliseconds(),
				"had_error":   res.Err != nil,
			})
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	jobCtx := ctx
	if wp.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, wp.jobTimeout)
		defer cancel()
	}

	res.Value, res.Err = wp.fn(jobCtx, job)
	return res
}
