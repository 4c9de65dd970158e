package pool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFuture_Get(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		future := newFuture[string](context.Background(), SubmissionIndex{Wave: 1, Slot: 2})

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.resolve("success", nil)
		}()

		value, err := future.Get()
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
		if future.Status() != TaskCompleted {
			t.Errorf("expected completed, got %v", future.Status())
		}
	})

	t.Run("error result", func(t *testing.T) {
		future := newFuture[string](context.Background(), SubmissionIndex{})
		expectedErr := errors.New("task failed")

		go future.resolve("", expectedErr)

		value, err := future.Get()
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %v", value)
		}
		if future.Status() != TaskFailed {
			t.Errorf("expected failed, got %v", future.Status())
		}
	})

	t.Run("resolves only once", func(t *testing.T) {
		future := newFuture[int](context.Background(), SubmissionIndex{})

		if !future.resolve(1, nil) {
			t.Fatal("first resolve should take effect")
		}
		if future.resolve(2, errors.New("late")) {
			t.Error("second resolve should be ignored")
		}

		value1, err1 := future.Get()
		value2, err2 := future.Get()
		if value1 != 1 || value2 != 1 || err1 != nil || err2 != nil {
			t.Errorf("expected repeated Get to return 1/nil, got %v/%v and %v/%v", value1, err1, value2, err2)
		}
	})
}

func TestFuture_GetWithContext(t *testing.T) {
	t.Run("context expires first", func(t *testing.T) {
		future := newFuture[int](context.Background(), SubmissionIndex{})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := future.GetWithContext(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
		if future.IsReady() {
			t.Error("giving up must not resolve the future")
		}
	})

	t.Run("result first", func(t *testing.T) {
		future := newFuture[int](context.Background(), SubmissionIndex{})
		future.resolve(9, nil)

		value, err := future.GetWithTimeout(time.Second)
		if err != nil || value != 9 {
			t.Errorf("expected 9, got %v (err %v)", value, err)
		}
	})
}

func TestFuture_Cancel(t *testing.T) {
	t.Run("cancel propagates to task context", func(t *testing.T) {
		future := newFuture[int](context.Background(), SubmissionIndex{})
		future.Cancel()

		select {
		case <-future.ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("task context was not cancelled")
		}
		if future.Status() != TaskPending {
			t.Errorf("cancel alone must not resolve, got %v", future.Status())
		}
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		future := newFuture[int](parent, SubmissionIndex{})
		cancel()

		select {
		case <-future.ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("task context did not follow its parent")
		}
	})

	t.Run("done channel closes on resolve", func(t *testing.T) {
		future := newFuture[int](context.Background(), SubmissionIndex{})

		select {
		case <-future.Done():
			t.Fatal("done should block before resolve")
		default:
		}

		future.resolve(0, nil)

		select {
		case <-future.Done():
		case <-time.After(time.Second):
			t.Fatal("done did not close")
		}
	})
}
