// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"time"

	"doclens/internal/observability"
)

// ProgressCallback is called when a file is completed
type ProgressCallback func(completed, total int, currentFile string)

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`
	AvgFileTime    time.Duration `json:"avg_file_time_ms"`
}

// NewJobs numbers paths as jobs.
func NewJobs(paths []string) []Job {
	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = Job{Index: i, Path: p}
	}
	return jobs
}

// Process runs fn over jobs with a bounded pool and returns the results in
// job order. Per-job errors are captured in the results.
func Process[R any](ctx context.Context, jobs []Job, workers int, fn Func[R], progress ProgressCallback) []Result[R] {
	results, _ := NewWorkerPool(workers, fn).Process(ctx, jobs, progress)
	return results
}

// Process runs every job and returns results in job order with batch statistics.
func (wp *WorkerPool[R]) Process(ctx context.Context, jobs []Job, progress ProgressCallback) ([]Result[R], *ProcessingStats) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("parallel_processor", "process_files", "batch")
	}

	ordered := make([]Result[R], len(jobs))
	stream := make(chan completion[R], wp.workers*2)
	go wp.run(ctx, jobs, stream)

	stats := &ProcessingStats{TotalFiles: len(jobs), WorkerCount: wp.workers}
	var busy time.Duration
	completed := 0
	for c := range stream {
		res := c.res
		ordered[c.pos] = res
		completed++
		busy += res.Duration
		if res.Err != nil {
			stats.FailedFiles++
			if wp.observer != nil {
				wp.observer.LogOperation(observability.StandardObservabilityData{
					Component: "parallel_processor",
					Operation: "file_processing",
					FilePath:  res.Job.Path,
					Success:   false,
					Error:     res.Err.Error(),
				})
			}
		} else {
			stats.ProcessedFiles++
		}
		if progress != nil {
			progress(completed, len(jobs), res.Job.Path)
		}
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgFileTime = busy / time.Duration(max(completed, 1))

	if finishTiming != nil {
		finishTiming(stats.FailedFiles == 0, map[string]interface{}{
			"total_files":     stats.TotalFiles,
			"processed_files": stats.ProcessedFiles,
			"failed_files":    stats.FailedFiles,
			"worker_count":    stats.WorkerCount,
			"duration_ms":     stats.TotalDuration.Milliseconds(),
		})
	}
	return ordered, stats
}
