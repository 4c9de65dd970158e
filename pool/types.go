package pool

import (
	"context"
	"fmt"
)

// SubmissionIndex identifies a task by the wave it belongs to and the slot it
// was submitted to. It is used only to order results, never to schedule work.
type SubmissionIndex struct {
	Wave int
	Slot int
}

// Less reports whether i was submitted before j.
func (i SubmissionIndex) Less(j SubmissionIndex) bool {
	if i.Wave != j.Wave {
		return i.Wave < j.Wave
	}
	return i.Slot < j.Slot
}

func (i SubmissionIndex) String() string {
	return fmt.Sprintf("(%d,%d)", i.Wave, i.Slot)
}

// Invocation is handed to a Task when it starts running.
//
// Fields:
//   - Index: the submission index of the task
//   - Seq: the value of the engine's execution counter taken atomically at start.
//     Seq is unique per engine and increases in start order, which is not
//     necessarily submission order.
type Invocation struct {
	Index SubmissionIndex
	Seq   int64
}

// Task is the per-slot unit of work run by an Engine. It is invoked once per
// slot per wave and must honour ctx cancellation to be interruptible.
//
// Type parameters:
//   - R: The result type produced by the task
type Task[R any] func(ctx context.Context, inv Invocation) (R, error)

// Predicate decides whether another wave should run for the given state.
type Predicate[S any] func(state S) bool

// Updater produces the loop state for the next wave.
type Updater[S any] func(state S) S

// Lifecycle is the state of a WorkerPool.
type Lifecycle int32

const (
	Unconfigured Lifecycle = iota
	Ready
	ShuttingDown
	Terminated
)

func (l Lifecycle) String() string {
	switch l {
	case Unconfigured:
		return "unconfigured"
	case Ready:
		return "ready"
	case ShuttingDown:
		return "shutting-down"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("lifecycle(%d)", int32(l))
	}
}

// TaskStatus is the state of a Future.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskCompleted
	TaskFailed
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is one entry of a ResultSequence.
//
// Fields:
//   - Index: where the task was submitted
//   - Value: the task's result (only valid if Err is nil)
//   - Err: a *TaskError when the task failed, nil otherwise
type Outcome[R any] struct {
	Index SubmissionIndex
	Value R
	Err   error
}

// Failed reports whether the outcome records a task failure.
func (o Outcome[R]) Failed() bool {
	return o.Err != nil
}
