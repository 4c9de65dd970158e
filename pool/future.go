package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Future is the handle of a submitted task. It resolves exactly once, either
// with a value (TaskCompleted) or with an error (TaskFailed).
//
// Type parameters:
//   - R: The result type of the task
type Future[R any] struct {
	index  SubmissionIndex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	status atomic.Int32

	value R
	err   error
}

// newFuture creates a pending future whose task context derives from parent.
func newFuture[R any](parent context.Context, index SubmissionIndex) *Future[R] {
	ctx, cancel := context.WithCancel(parent)
	return &Future[R]{
		index:  index,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// resolve records the outcome. Only the first call has an effect.
func (f *Future[R]) resolve(value R, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		if err != nil {
			f.status.Store(int32(TaskFailed))
		} else {
			f.status.Store(int32(TaskCompleted))
		}
		f.cancel()
		close(f.done)
		resolved = true
	})
	return resolved
}

// Index returns the submission index the future was created with.
func (f *Future[R]) Index() SubmissionIndex {
	return f.index
}

// Status returns the current state without blocking.
func (f *Future[R]) Status() TaskStatus {
	return TaskStatus(f.status.Load())
}

// IsReady reports whether the future has resolved.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the future resolves.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the task finishes and returns its result.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext is like Get but gives up when ctx is done. Giving up does not
// cancel the task.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout is like Get but gives up after timeout.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.GetWithContext(ctx)
}

// Cancel signals the task to stop. A task that has not started yet resolves
// as failed without running; a running task observes ctx.Done().
func (f *Future[R]) Cancel() {
	f.cancel()
}
