// Package worker runs bounded batches of independent tasks.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/burstcov/pkg/logger"
	"github.com/okian/burstcov/pkg/metrics"
)

const defaultPoolName = "pool"

// Task is one unit of work.
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the captured result of one task. Index is the task's position
// in the submitted batch.
type Outcome[T any] struct {
	Index   int
	Value   T
	Err     error
	Elapsed time.Duration
}

// Pool bounds how many tasks of a batch execute at once. A failing or
// panicking task never cancels its siblings.
type Pool struct {
	name   string
	size   int
	logger logger.Logger
}

// NewPool creates a pool running at most size tasks concurrently. A size
// below one defaults to runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		name:   defaultPoolName,
		size:   size,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Run executes tasks on p and returns one Outcome per task, in submission
// order. Tasks not yet started when ctx is done are not run; their outcome
// carries ctx.Err().
func Run[T any](ctx context.Context, p *Pool, tasks []Task[T]) []Outcome[T] {
	out := make([]Outcome[T], len(tasks))
	var g errgroup.Group
	g.SetLimit(p.size)

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(tasks); j++ {
				out[j] = Outcome[T]{Index: j, Err: err}
			}
			break
		}
		g.Go(func() error {
			out[i] = runOne(ctx, p, i, task)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors to the group

	return out
}

func runOne[T any](ctx context.Context, p *Pool, i int, task Task[T]) (o Outcome[T]) {
	o.Index = i
	start := time.Now()
	metrics.AddWorkerActiveTasks(p.name, 1)
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			p.logger.Error(ctx, "task panicked",
				logger.Int("task", i),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
		}
		o.Elapsed = time.Since(start)
		metrics.AddWorkerActiveTasks(p.name, -1)
		metrics.RecordWorkerTaskLatency(p.name, float64(o.Elapsed.Microseconds())/1000)
	}()

	o.Value, o.Err = task(ctx)
	return o
}
