package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Phase is the position of an Engine in its wave state machine.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaiting
	PhaseCollecting
	PhaseUpdating
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "wave-submitting"
	case PhaseAwaiting:
		return "wave-awaiting"
	case PhaseCollecting:
		return "wave-collecting"
	case PhaseUpdating:
		return "state-updating"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// WaveEvent is passed to the wave progress hooks.
//
// Fields:
//   - Wave: zero-based wave index
//   - Tasks: number of tasks in the wave
//   - Elapsed: time since the wave was submitted (zero for start events)
//   - Err: the error that aborted the wave, if any (end events only)
type WaveEvent struct {
	Wave    int
	Tasks   int
	Elapsed time.Duration
	Err     error
}

// Engine runs waves of identical tasks on a fixed-size WorkerPool. Every wave
// submits exactly one task per slot, waits for the whole wave, appends the
// outcomes in slot order and then advances the loop state.
//
// Type parameters:
//   - R: The result type produced by the task
//   - S: The loop state type threaded through the predicate and updater
type Engine[R, S any] struct {
	conf    *workerPoolConfig
	workers int
	task    Task[R]
	pool    *WorkerPool[R]
	results *ResultSequence[R]

	seq     atomic.Int64
	waves   atomic.Int64
	phase   atomic.Int32
	running atomic.Bool
}

// NewEngine validates the configuration and starts a pool of threadCount
// workers. Nothing is left to be set after construction.
//
// Returns:
//   - error: a *ConfigError if threadCount <= 0 or task is nil
//
// Example:
//
//	e, err := NewEngine[int, int](3, func(ctx context.Context, inv Invocation) (int, error) {
//	    return int(inv.Seq), nil
//	}, WithWaveTimeout(time.Minute))
//	if err != nil {
//	    return err
//	}
//	defer e.Shutdown(time.Second)
//	final, err := e.Iterate(ctx, func(s int) bool { return s < 10 }, 0, func(s int) int { return s + 3 })
func NewEngine[R, S any](threadCount int, task Task[R], opts ...WorkerPoolOption) (*Engine[R, S], error) {
	if threadCount <= 0 {
		return nil, &ConfigError{Field: "threadCount", Reason: fmt.Sprintf("must be positive, got %d", threadCount)}
	}
	if task == nil {
		return nil, &ConfigError{Field: "task", Reason: "must not be nil"}
	}

	conf := newWorkerPoolConfig(opts...)
	wp := newWorkerPool[R](conf)
	if err := wp.Configure(threadCount); err != nil {
		return nil, err
	}

	return &Engine[R, S]{
		conf:    conf,
		workers: threadCount,
		task:    task,
		pool:    wp,
		results: newResultSequence[R](threadCount),
	}, nil
}

// Iterate runs waves while cont holds for the current state, starting from
// initial. The updater is called exactly once after every completed wave.
//
// A failed task aborts the wave (unless WithContinueOnError is set): pending
// siblings are cancelled, the failure is appended to the result sequence and
// a *WaveError wrapping the *TaskError is returned. A wave that exceeds the
// WithWaveTimeout bound is cancelled the same way and reported as a
// *WaveError wrapping a *WaveTimeoutError; slots that had already failed (or,
// with WithContinueOnError, already resolved) are recorded first. A pool shut
// down during a wave records nothing for it and yields a *WaveError matching
// both ErrWaitInterrupted and ErrPoolTerminated.
//
// Returns:
//   - S: the last state reached; for an aborted wave, the state it ran with
//   - error: nil when cont returned false
func (e *Engine[R, S]) Iterate(ctx context.Context, cont Predicate[S], initial S, update Updater[S]) (S, error) {
	if cont == nil {
		return initial, &ConfigError{Field: "continuationPredicate", Reason: "must not be nil"}
	}
	if update == nil {
		return initial, &ConfigError{Field: "updater", Reason: "must not be nil"}
	}
	if !e.running.CompareAndSwap(false, true) {
		return initial, ErrEngineBusy
	}
	defer e.running.Store(false)

	state := initial
	for {
		e.phase.Store(int32(PhaseIdle))
		if err := ctx.Err(); err != nil {
			e.phase.Store(int32(PhaseTerminated))
			return state, fmt.Errorf("%w: %w", ErrWaitInterrupted, err)
		}

		if !cont(state) {
			e.phase.Store(int32(PhaseTerminated))
			debugLog("iteration finished after %d wave(s), %d result(s)", e.waves.Load(), e.results.Len())
			return state, nil
		}

		wave := int(e.waves.Add(1) - 1)
		if err := e.runWave(ctx, wave); err != nil {
			e.phase.Store(int32(PhaseTerminated))
			return state, err
		}

		e.phase.Store(int32(PhaseUpdating))
		state = update(state)
	}
}

// runWave submits, awaits and collects a single wave.
func (e *Engine[R, S]) runWave(ctx context.Context, wave int) error {
	e.phase.Store(int32(PhaseSubmitting))
	futures := make([]*Future[R], 0, e.workers)
	for slot := range e.workers {
		index := SubmissionIndex{Wave: wave, Slot: slot}
		f, err := e.pool.Submit(e.bind(index), index)
		if err != nil {
			cancelAll(futures)
			return &WaveError{Wave: wave, Results: e.results.Len(), Err: err}
		}
		futures = append(futures, f)
	}

	start := time.Now()
	if e.conf.onWaveStart != nil {
		e.conf.onWaveStart(WaveEvent{Wave: wave, Tasks: len(futures)})
	}
	debugLog("wave %d submitted (%d tasks)", wave, len(futures))

	e.phase.Store(int32(PhaseAwaiting))
	outcome, err := e.pool.AwaitAll(ctx, futures, e.conf.waveTimeout)

	e.phase.Store(int32(PhaseCollecting))
	if err != nil {
		cancelAll(futures)
		var taskErr *TaskError
		switch {
		case errors.Is(err, ErrPoolTerminated):
			err = fmt.Errorf("%w: %w", ErrWaitInterrupted, err)
		case errors.As(err, &taskErr):
			var zero R
			e.results.append(Outcome[R]{Index: taskErr.Index, Value: zero, Err: taskErr})
		default:
			e.collectResolved(futures, outcome.Done)
		}
		werr := &WaveError{Wave: wave, Results: e.results.Len(), Err: err}
		e.waveEnded(wave, len(futures), start, werr)
		return werr
	}

	for _, f := range futures {
		value, ferr := f.Get()
		e.results.append(Outcome[R]{Index: f.Index(), Value: value, Err: ferr})
	}
	e.waveEnded(wave, len(futures), start, nil)
	return nil
}

// collectResolved records, in slot order, the outcomes that resolved before a
// wave timed out or was interrupted. Fail-fast keeps only failures; with
// WithContinueOnError every resolved slot is kept.
func (e *Engine[R, S]) collectResolved(futures []*Future[R], done []int) {
	for _, i := range done {
		f := futures[i]
		value, ferr := f.Get()
		if ferr == nil && !e.conf.continueOnError {
			continue
		}
		if errors.Is(ferr, ErrPoolTerminated) {
			continue
		}
		e.results.append(Outcome[R]{Index: f.Index(), Value: value, Err: ferr})
	}
}

func (e *Engine[R, S]) waveEnded(wave, tasks int, start time.Time, err error) {
	debugLog("wave %d resolved in %v (err=%v)", wave, time.Since(start), err)
	if e.conf.onWaveEnd != nil {
		e.conf.onWaveEnd(WaveEvent{Wave: wave, Tasks: tasks, Elapsed: time.Since(start), Err: err})
	}
}

// bind closes the task over its submission index. The execution counter is
// taken when the task actually starts.
func (e *Engine[R, S]) bind(index SubmissionIndex) func(ctx context.Context) (R, error) {
	return func(ctx context.Context) (R, error) {
		inv := Invocation{Index: index, Seq: e.seq.Add(1) - 1}
		return e.task(ctx, inv)
	}
}

// Results returns the engine's result sequence.
func (e *Engine[R, S]) Results() *ResultSequence[R] {
	return e.results
}

// Waves returns the number of waves submitted so far.
func (e *Engine[R, S]) Waves() int {
	return int(e.waves.Load())
}

// Executions returns how many task invocations have started.
func (e *Engine[R, S]) Executions() int64 {
	return e.seq.Load()
}

// Phase returns the current state-machine phase.
func (e *Engine[R, S]) Phase() Phase {
	return Phase(e.phase.Load())
}

// WorkerCount returns the number of slots per wave.
func (e *Engine[R, S]) WorkerCount() int {
	return e.workers
}

// Shutdown releases the engine's pool. See WorkerPool.Shutdown.
func (e *Engine[R, S]) Shutdown(timeout time.Duration) error {
	return e.pool.Shutdown(timeout)
}

// IsTerminated reports whether the engine's pool has been released.
func (e *Engine[R, S]) IsTerminated() bool {
	return e.pool.IsTerminated()
}

// Run builds an engine, iterates it and releases the pool on every exit path.
// The result sequence is returned even when the iteration failed, so that the
// partially collected outcomes can be inspected. A shutdown that exceeds the
// WithShutdownTimeout bound is joined into the returned error.
//
// Example:
//
//	results, final, err := Run(ctx, 3, task,
//	    func(s int) bool { return s < 10 }, 0,
//	    func(s int) int { return s + 3 },
//	)
func Run[R, S any](
	ctx context.Context,
	threadCount int,
	task Task[R],
	cont Predicate[S],
	initial S,
	update Updater[S],
	opts ...WorkerPoolOption,
) (results *ResultSequence[R], final S, err error) {
	e, err := NewEngine[R, S](threadCount, task, opts...)
	if err != nil {
		return nil, initial, err
	}
	defer func() {
		if serr := e.Shutdown(e.conf.shutdownTimeout); serr != nil {
			err = errors.Join(err, serr)
		}
	}()

	final, err = e.Iterate(ctx, cont, initial, update)
	return e.Results(), final, err
}

func cancelAll[R any](futures []*Future[R]) {
	for _, f := range futures {
		f.Cancel()
	}
}
