package pool

import (
	"context"
	"fmt"
	"runtime"

	"github.com/utkarsh5026/wavepool/internal/cpu"
)

// worker is the slot loop. It exits when the pool context is cancelled.
func (wp *WorkerPool[R]) worker(run *poolState[R], workerID int) error {
	if wp.conf.pinWorkers {
		release := cpu.SetupWorkerAffinity(workerID)
		defer release()
	}

	for {
		select {
		case <-run.ctx.Done():
			return nil
		case t := <-run.taskChan:
			wp.execute(run, t)
		}
	}
}

// execute runs a single submitted task with rate limiting, hooks and panic
// recovery, and resolves its future.
func (wp *WorkerPool[R]) execute(run *poolState[R], t *submittedTask[R]) {
	f := t.future

	if err := f.ctx.Err(); err != nil {
		wp.fail(run, f, err)
		return
	}

	if wp.conf.rateLimiter != nil {
		if err := wp.conf.rateLimiter.Wait(f.ctx); err != nil {
			// Rate limiter's error doesn't wrap context errors, so check context explicitly
			if ctxErr := f.ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			wp.fail(run, f, err)
			return
		}
	}

	if wp.conf.beforeTaskStart != nil {
		wp.conf.beforeTaskStart(f.index)
	}

	result, err := processWithRecovery(f.ctx, t.fn)

	if wp.conf.onTaskEnd != nil {
		wp.conf.onTaskEnd(f.index, err)
	}

	if err != nil {
		wp.fail(run, f, err)
		return
	}
	f.resolve(result, nil)
}

// fail resolves f with a *TaskError, or with a termination error when the
// pool generation was shut down underneath the task.
func (wp *WorkerPool[R]) fail(run *poolState[R], f *Future[R], err error) {
	var zero R
	if run.ctx.Err() != nil {
		f.resolve(zero, terminatedError(f.index))
		return
	}
	f.resolve(zero, &TaskError{Index: f.index, Err: err})
}

// processWithRecovery executes a task with panic recovery.
// If a panic occurs, it's converted to an error to prevent crashing the worker.
func processWithRecovery[R any](
	ctx context.Context,
	fn func(ctx context.Context) (R, error),
) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("worker panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()

	return fn(ctx)
}
