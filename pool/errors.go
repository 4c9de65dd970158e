package pool

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration   = errors.New("invalid configuration")
	ErrNotConfigured   = errors.New("pool not configured")
	ErrPoolTerminated  = errors.New("pool shut down")
	ErrTaskExecution   = errors.New("task execution failed")
	ErrWaitInterrupted = errors.New("wait interrupted")
	ErrWaveTimeout     = errors.New("wave timed out")
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")
)

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// TaskError is the typed failure recorded for a task that returned an error
// or panicked.
type TaskError struct {
	Index SubmissionIndex
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Index, e.Err)
}

// Unwrap exposes both ErrTaskExecution and the task's own error to errors.Is.
func (e *TaskError) Unwrap() []error {
	return []error{ErrTaskExecution, e.Err}
}

// terminatedError is the outcome of a task that was queued or running when
// its pool shut down. It is not a task failure.
func terminatedError(idx SubmissionIndex) error {
	return fmt.Errorf("task %s: %w", idx, ErrPoolTerminated)
}

// WaveTimeoutError is returned when a wave does not complete within the
// configured bound. Pending lists the slots that had not finished.
type WaveTimeoutError struct {
	Wave    int
	Pending []int
}

func (e *WaveTimeoutError) Error() string {
	return fmt.Sprintf("%s: wave %d, %d task(s) pending", ErrWaveTimeout, e.Wave, len(e.Pending))
}

func (e *WaveTimeoutError) Unwrap() error {
	return ErrWaveTimeout
}

// WaveError aborts an iteration. Results is the length of the result
// sequence at the time of the abort, including any recorded failure.
type WaveError struct {
	Wave    int
	Results int
	Err     error
}

func (e *WaveError) Error() string {
	return fmt.Sprintf("wave %d aborted after %d result(s): %v", e.Wave, e.Results, e.Err)
}

func (e *WaveError) Unwrap() error {
	return e.Err
}

// ErrEngineBusy is returned when Iterate is called while another Iterate on
// the same engine is still running.
var ErrEngineBusy = errors.New("engine is already iterating")
