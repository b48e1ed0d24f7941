// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclens/internal/observability"
)

func TestProcessKeepsOrder(t *testing.T) {
	paths := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	jobs := NewJobs(paths)

	var mu sync.Mutex
	var progress []int
	results := Process(context.Background(), jobs, 3, func(ctx context.Context, job Job) (string, error) {
		// later jobs finish first
		time.Sleep(time.Duration(len(paths)-job.Index) * time.Millisecond)
		return strings.ToUpper(job.Path), nil
	}, func(completed, total int, current string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(paths), total)
		progress = append(progress, completed)
	})

	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Job.Path)
		assert.Equal(t, strings.ToUpper(paths[i]), r.Value)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
}

func TestProcessBoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	Process(context.Background(), NewJobs(make([]string, 20)), 4, func(ctx context.Context, job Job) (int, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return 0, nil
	}, nil)
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestProcessCapturesErrorsAndPanics(t *testing.T) {
	boom := errors.New("boom")
	pool := NewWorkerPool(2, func(ctx context.Context, job Job) (int, error) {
		switch job.Path {
		case "bad":
			return 0, boom
		case "panic":
			panic("corrupt input")
		}
		return 1, nil
	})
	pool.SetObserver(observability.NewStandardObserver(observability.ObservabilityMetrics, zerolog.Nop()))

	results, stats := pool.Process(context.Background(), NewJobs([]string{"ok", "bad", "panic"}), nil)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	require.Error(t, results[2].Err)
	assert.Contains(t, results[2].Err.Error(), "corrupt input")

	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 1, stats.ProcessedFiles)
	assert.Equal(t, 2, stats.FailedFiles)
	assert.Equal(t, 2, stats.WorkerCount)
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := Process(ctx, NewJobs([]string{"a", "b", "c"}), 1, func(ctx context.Context, job Job) (int, error) {
		calls.Add(1)
		return 0, nil
	}, nil)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Zero(t, calls.Load())
}

func TestJobTimeout(t *testing.T) {
	pool := NewWorkerPool(1, func(ctx context.Context, job Job) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	pool.SetJobTimeout(10 * time.Millisecond)

	results, _ := pool.Process(context.Background(), NewJobs([]string{"slow"}), nil)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, DefaultWorkers(), NewWorkerPool[int](0, nil).Workers())
	assert.LessOrEqual(t, DefaultWorkers(), maxDefaultWorkers)
	assert.Empty(t, Process(context.Background(), nil, 2, func(ctx context.Context, job Job) (int, error) { return 0, nil }, nil))
}
