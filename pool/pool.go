package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// WorkerPool is a fixed set of execution slots that run submitted tasks
// concurrently. It is created Unconfigured, becomes Ready with Configure and
// is released with Shutdown. Futures returned by Submit resolve exactly once.
//
// Type parameters:
//   - R: The result type produced by submitted tasks
type WorkerPool[R any] struct {
	conf  *workerPoolConfig
	mu    sync.RWMutex
	state atomic.Int32
	run   *poolState[R]
}

// poolState holds the runtime state of one configured generation of workers.
type poolState[R any] struct {
	ctx      context.Context
	cancel   context.CancelFunc
	workers  int
	taskChan chan *submittedTask[R]
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{} // closed once workers exited and the queue was drained
}

type submittedTask[R any] struct {
	fn     func(ctx context.Context) (R, error)
	future *Future[R]
}

// AwaitOutcome reports, by position in the awaited slice, which futures had
// resolved when AwaitAll returned and which had not.
type AwaitOutcome struct {
	Done    []int
	Pending []int
}

// NewWorkerPool creates an unconfigured pool. Call Configure before Submit.
//
// Example:
//
//	wp := NewWorkerPool[int](WithRateLimit(100, 10))
//	if err := wp.Configure(4); err != nil {
//	    return err
//	}
//	defer wp.Shutdown(time.Second)
func NewWorkerPool[R any](opts ...WorkerPoolOption) *WorkerPool[R] {
	return newWorkerPool[R](newWorkerPoolConfig(opts...))
}

func newWorkerPool[R any](conf *workerPoolConfig) *WorkerPool[R] {
	return &WorkerPool[R]{conf: conf}
}

// Configure starts n workers. A pool that is already Ready is shut down first
// (interrupting its in-flight work) and replaced.
//
// Returns:
//   - error: a *ConfigError when n <= 0, or ErrShutdownTimeout if the previous
//     workers could not be stopped in time
func (wp *WorkerPool[R]) Configure(n int) error {
	if n <= 0 {
		return &ConfigError{Field: "workers", Reason: fmt.Sprintf("must be positive, got %d", n)}
	}

	wp.mu.RLock()
	prev := wp.run
	wp.mu.RUnlock()
	if prev != nil {
		if err := wp.stop(prev, wp.conf.shutdownTimeout); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	buffer := wp.conf.taskBuffer
	if buffer == 0 {
		buffer = n
	}
	run := &poolState[R]{
		ctx:      ctx,
		cancel:   cancel,
		workers:  n,
		taskChan: make(chan *submittedTask[R], buffer),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			return wp.worker(run, i)
		})
	}

	go func() {
		_ = g.Wait()
		// Submitters that passed the state check finish before this lock is granted.
		wp.mu.Lock()
		wp.mu.Unlock()
		drainQueue(run.taskChan)
		wp.state.CompareAndSwap(int32(ShuttingDown), int32(Terminated))
		close(run.done)
		debugLog("pool generation with %d workers terminated", run.workers)
	}()

	wp.mu.Lock()
	wp.run = run
	wp.state.Store(int32(Ready))
	wp.mu.Unlock()

	debugLog("pool configured with %d workers (buffer %d)", n, buffer)
	return nil
}

// Submit queues fn for execution and returns its Future immediately. It only
// blocks when the submission queue is full.
//
// Returns:
//   - error: ErrNotConfigured before Configure, ErrPoolTerminated after Shutdown
func (wp *WorkerPool[R]) Submit(fn func(ctx context.Context) (R, error), index SubmissionIndex) (*Future[R], error) {
	if fn == nil {
		return nil, &ConfigError{Field: "task", Reason: "must not be nil"}
	}

	wp.mu.RLock()
	defer wp.mu.RUnlock()

	switch Lifecycle(wp.state.Load()) {
	case Unconfigured:
		return nil, ErrNotConfigured
	case ShuttingDown, Terminated:
		return nil, ErrPoolTerminated
	}

	run := wp.run
	f := newFuture[R](run.ctx, index)
	select {
	case run.taskChan <- &submittedTask[R]{fn: fn, future: f}:
		return f, nil
	case <-run.quit:
		f.cancel()
		return nil, ErrPoolTerminated
	}
}

// AwaitAll blocks until every future has resolved, the timeout elapses or ctx
// is cancelled. A timeout <= 0 falls back to the WithWaveTimeout bound, if
// any. Unless the pool was built with WithContinueOnError(true), the first
// task failure ends the wait early. A future failed by a pool shutdown always
// ends it.
//
// Returns:
//   - outcome: positions of resolved and unresolved futures at return time
//   - error: the first *TaskError (fail-fast only), an error wrapping
//     ErrPoolTerminated, a *WaveTimeoutError when the bound elapsed, or an
//     error wrapping ErrWaitInterrupted when ctx ended
func (wp *WorkerPool[R]) AwaitAll(ctx context.Context, futures []*Future[R], timeout time.Duration) (AwaitOutcome, error) {
	if timeout <= 0 {
		timeout = wp.conf.waveTimeout
	}

	var waitCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		waitCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	g, gctx := errgroup.WithContext(waitCtx)
	for _, f := range futures {
		g.Go(func() error {
			select {
			case <-f.Done():
				if f.err == nil {
					return nil
				}
				if !wp.conf.continueOnError || errors.Is(f.err, ErrPoolTerminated) {
					return f.err
				}
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err := g.Wait()

	outcome := splitResolved(futures)
	if err == nil {
		return outcome, nil
	}

	var taskErr *TaskError
	if errors.As(err, &taskErr) || errors.Is(err, ErrPoolTerminated) {
		return outcome, err
	}

	if len(outcome.Pending) == 0 {
		// Everything resolved while the deadline raced the last completion.
		for _, f := range futures {
			if f.err != nil && (!wp.conf.continueOnError || errors.Is(f.err, ErrPoolTerminated)) {
				return outcome, f.err
			}
		}
		return outcome, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return outcome, fmt.Errorf("%w: %w", ErrWaitInterrupted, ctxErr)
	}

	pending := make([]int, 0, len(outcome.Pending))
	wave := 0
	for _, i := range outcome.Pending {
		pending = append(pending, futures[i].index.Slot)
		wave = futures[i].index.Wave
	}
	return outcome, &WaveTimeoutError{Wave: wave, Pending: pending}
}

// Shutdown stops accepting submissions, interrupts in-flight tasks and waits
// for the workers to exit. Queued tasks that never started fail with
// ErrPoolTerminated. It is safe to call repeatedly and on a pool that was
// never configured.
//
// Parameters:
//   - timeout: Maximum duration to wait for workers (0 = wait forever)
func (wp *WorkerPool[R]) Shutdown(timeout time.Duration) error {
	wp.mu.RLock()
	run := wp.run
	wp.mu.RUnlock()

	if run == nil {
		return nil
	}
	return wp.stop(run, timeout)
}

func (wp *WorkerPool[R]) stop(run *poolState[R], timeout time.Duration) error {
	if wp.state.CompareAndSwap(int32(Ready), int32(ShuttingDown)) {
		debugLog("pool shutting down")
	}
	run.cancel()
	run.quitOnce.Do(func() { close(run.quit) })
	return waitUntil(run.done, timeout)
}

// WorkerCount returns the slot count of the current configuration, or 0.
func (wp *WorkerPool[R]) WorkerCount() int {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.run == nil {
		return 0
	}
	return wp.run.workers
}

// State returns the pool's lifecycle state.
func (wp *WorkerPool[R]) State() Lifecycle {
	return Lifecycle(wp.state.Load())
}

// IsTerminated reports whether a shutdown has completed.
func (wp *WorkerPool[R]) IsTerminated() bool {
	return wp.State() == Terminated
}

func splitResolved[R any](futures []*Future[R]) AwaitOutcome {
	var outcome AwaitOutcome
	for i, f := range futures {
		if f.IsReady() {
			outcome.Done = append(outcome.Done, i)
		} else {
			outcome.Pending = append(outcome.Pending, i)
		}
	}
	return outcome
}

func drainQueue[R any](taskChan chan *submittedTask[R]) {
	for {
		select {
		case t := <-taskChan:
			var zero R
			t.future.resolve(zero, terminatedError(t.future.index))
		default:
			return
		}
	}
}
