package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHooks_TaskHooks(t *testing.T) {
	var before, after, failed atomic.Int32
	var mu sync.Mutex
	seen := make(map[SubmissionIndex]bool)

	task := func(ctx context.Context, inv Invocation) (int, error) {
		if inv.Index.Slot == 2 && inv.Index.Wave == 0 {
			return 0, errors.New("hook failure")
		}
		return 1, nil
	}

	e := newTestEngine(t, 3, task,
		WithContinueOnError(true),
		WithBeforeTaskStart(func(idx SubmissionIndex) {
			before.Add(1)
			mu.Lock()
			seen[idx] = true
			mu.Unlock()
		}),
		WithOnTaskEnd(func(idx SubmissionIndex, err error) {
			after.Add(1)
			if err != nil {
				failed.Add(1)
			}
		}),
	)

	if _, err := e.Iterate(context.Background(), lessThan(2), 0, step(1)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if before.Load() != 6 || after.Load() != 6 {
		t.Errorf("expected 6 before/after calls, got %d/%d", before.Load(), after.Load())
	}
	if failed.Load() != 1 {
		t.Errorf("expected 1 failed task end, got %d", failed.Load())
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct indices, got %d", len(seen))
	}
}

func TestHooks_WaveHooks(t *testing.T) {
	var starts, ends []WaveEvent

	e := newTestEngine(t, 2, indexTask,
		WithOnWaveStart(func(ev WaveEvent) { starts = append(starts, ev) }),
		WithOnWaveEnd(func(ev WaveEvent) { ends = append(ends, ev) }),
	)

	if _, err := e.Iterate(context.Background(), lessThan(3), 0, step(1)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(starts) != 3 || len(ends) != 3 {
		t.Fatalf("expected 3 start and 3 end events, got %d and %d", len(starts), len(ends))
	}
	for i := range 3 {
		if starts[i].Wave != i || ends[i].Wave != i {
			t.Errorf("event %d: expected wave %d, got start %d end %d", i, i, starts[i].Wave, ends[i].Wave)
		}
		if starts[i].Tasks != 2 || ends[i].Tasks != 2 {
			t.Errorf("event %d: expected 2 tasks", i)
		}
		if ends[i].Err != nil {
			t.Errorf("event %d: unexpected error %v", i, ends[i].Err)
		}
	}
}

func TestHooks_WaveEndOnFailure(t *testing.T) {
	var ends []WaveEvent
	task := func(ctx context.Context, inv Invocation) (int, error) {
		return 0, errors.New("nope")
	}

	e := newTestEngine(t, 1, task, WithOnWaveEnd(func(ev WaveEvent) { ends = append(ends, ev) }))

	start := time.Now()
	if _, err := e.Iterate(context.Background(), lessThan(5), 0, step(1)); err == nil {
		t.Fatal("expected error")
	}
	if len(ends) != 1 {
		t.Fatalf("expected a single wave-end event, got %d", len(ends))
	}
	var waveErr *WaveError
	if !errors.As(ends[0].Err, &waveErr) {
		t.Errorf("expected *WaveError in event, got %v", ends[0].Err)
	}
	if ends[0].Elapsed > time.Since(start) {
		t.Errorf("elapsed %v exceeds test duration", ends[0].Elapsed)
	}
}
