// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

var (
	// ErrInvalidLimit is returned when a Runner is created with a limit below 1.
	ErrInvalidLimit = errors.New("concurrency limit must be at least 1")

	// ErrInvalidTaskTimeout is returned for a negative task timeout.
	ErrInvalidTaskTimeout = errors.New("task timeout cannot be negative")
)

// Task produces one result. It receives a context carrying the per-task
// timeout, if one is configured.
type Task[T any] func(ctx context.Context) T

// Runner bounds how many tasks are in flight at once.
type Runner struct {
	pool        *ants.Pool
	limit       int
	taskTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithTaskTimeout bounds how long a single task may run.
// Zero (the default) means no timeout.
func WithTaskTimeout(d time.Duration) Option {
	return func(r *Runner) error {
		if d < 0 {
			return ErrInvalidTaskTimeout
		}
		r.taskTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// New creates a Runner that keeps at most limit tasks in flight.
func New(limit int, opts ...Option) (*Runner, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	r := &Runner{
		limit:  limit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(limit, ants.WithPanicHandler(func(p any) {
		r.logger.Error("task panicked", "panic", p)
	}))
	if err != nil {
		return nil, err
	}
	r.pool = pool
	return r, nil
}

// Limit returns the concurrency cap.
func (r *Runner) Limit() int {
	return r.limit
}

// Release stops the worker pool. The Runner should not be used afterwards.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Collect runs every task through r and returns their results in submission
// order. Submission blocks while the pool is saturated, which is what enforces
// the cap. An error is returned only when the pool refuses work or ctx ends
// before every task was submitted; results gathered so far are still returned.
func Collect[T any](ctx context.Context, r *Runner, tasks []Task[T]) ([]T, error) {
	results := make([]T, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return results, err
		}

		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			taskCtx, cancel := r.taskContext(ctx)
			defer cancel()
			results[i] = task(taskCtx)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return results, fmt.Errorf("submitting task %d of %d: %w", i+1, len(tasks), err)
		}
	}

	wg.Wait()
	return results, nil
}

func (r *Runner) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.taskTimeout > 0 {
		return context.WithTimeout(ctx, r.taskTimeout)
	}
	return context.WithCancel(ctx)
}
