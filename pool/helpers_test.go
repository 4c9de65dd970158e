package pool

import (
	"context"
	"testing"
	"time"
)

// indexTask returns the submission index of the invocation as its result.
func indexTask(ctx context.Context, inv Invocation) (SubmissionIndex, error) {
	return inv.Index, nil
}

// blockingTask waits for cancellation and reports it.
func blockingTask[R any](started chan<- SubmissionIndex) Task[R] {
	return func(ctx context.Context, inv Invocation) (R, error) {
		if started != nil {
			started <- inv.Index
		}
		<-ctx.Done()
		var zero R
		return zero, ctx.Err()
	}
}

// lessThan and step build the predicate/updater pair used by most engine tests.
func lessThan(limit int) Predicate[int] {
	return func(s int) bool { return s < limit }
}

func step(n int) Updater[int] {
	return func(s int) int { return s + n }
}

// newTestEngine creates an engine and registers its shutdown with t.Cleanup.
func newTestEngine[R any](t *testing.T, threads int, task Task[R], opts ...WorkerPoolOption) *Engine[R, int] {
	t.Helper()
	e, err := NewEngine[R, int](threads, task, opts...)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	t.Cleanup(func() {
		if err := e.Shutdown(time.Second); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	})
	return e
}

// assertSubmissionOrder fails the test if the sequence is not in ascending
// (wave, slot) order.
func assertSubmissionOrder[R any](t *testing.T, rs *ResultSequence[R]) {
	t.Helper()
	for i := 1; i < rs.Len(); i++ {
		prev, cur := rs.At(i-1).Index, rs.At(i).Index
		if !prev.Less(cur) {
			t.Fatalf("result %d %v is not after result %d %v", i, cur, i-1, prev)
		}
	}
}
