// Package pool provides a wave-based parallel task executor built on a
// fixed-size generic worker pool.
//
// The primary type is Engine[R, S]. An engine owns a WorkerPool[R] of N
// slots and repeatedly runs a "wave": it submits one Task per slot, waits
// until the whole wave has resolved, appends the outcomes to its
// ResultSequence in submission order and advances an opaque loop state S.
// It stops as soon as the continuation predicate rejects the current state.
//
// # Basic Usage
//
//	task := func(ctx context.Context, inv pool.Invocation) (int, error) {
//	    return int(inv.Seq) * 2, nil
//	}
//	results, final, err := pool.Run(ctx, 3, task,
//	    func(s int) bool { return s < 10 }, // continuation predicate
//	    0,                                  // initial state
//	    func(s int) int { return s + 3 },   // updater
//	)
//	// 4 waves ran: results.Len() == 12, final == 12
//
// # Ordering
//
// Results are ordered by SubmissionIndex (wave, then slot), never by the
// order in which tasks finished. Waves never overlap: wave k+1 is submitted
// only after wave k has been collected.
//
// # Error Handling
//
// The engine is fail-fast by default: the first task failure cancels the
// rest of its wave, is appended to the result sequence as a failed Outcome
// carrying a *TaskError, and is returned as a *WaveError. WithContinueOnError
// records every failure and keeps iterating instead. WithWaveTimeout bounds
// each wave; an expired wave is cancelled and reported as a *WaveTimeoutError.
// A Shutdown during a wave is not a task failure: the wave records nothing and
// the error matches ErrWaitInterrupted and ErrPoolTerminated.
// Panics inside tasks are recovered and reported as task failures.
//
// # Worker Pool
//
// WorkerPool can also be used directly:
//
//	wp := pool.NewWorkerPool[string]()
//	if err := wp.Configure(4); err != nil {
//	    return err
//	}
//	defer wp.Shutdown(time.Second)
//	f, err := wp.Submit(fetch, pool.SubmissionIndex{Slot: 0})
//	outcome, err := wp.AwaitAll(ctx, []*pool.Future[string]{f}, time.Second)
//
// Shutdown interrupts running tasks through their context, fails their futures
// and the queued ones with ErrPoolTerminated and is safe to call more than once.
//
// # Configuration Options
//
//   - WithTaskBuffer(n): Set the submission queue size (default: slot count)
//   - WithContinueOnError(b): Disable fail-fast
//   - WithRateLimit(tasksPerSecond, burst): Pace task starts
//   - WithCPUAffinity(): Pin slot goroutines to CPU cores
//   - WithWaveTimeout(d): Bound the wait for each wave (default AwaitAll bound on a WorkerPool)
//   - WithShutdownTimeout(d): Bound the shutdown performed by Run and by re-Configure
//   - WithBeforeTaskStart, WithOnTaskEnd: task hooks
//   - WithOnWaveStart, WithOnWaveEnd: wave hooks (Engine only)
package pool
