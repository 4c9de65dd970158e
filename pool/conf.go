package pool

import (
	"time"

	"golang.org/x/time/rate"
)

// WorkerPoolOption is a functional option for configuring a WorkerPool or an
// Engine. On a bare WorkerPool, WithWaveTimeout is the default AwaitAll bound
// and the wave hooks are never called.
type WorkerPoolOption func(*workerPoolConfig)

type workerPoolConfig struct {
	taskBuffer      int
	continueOnError bool
	rateLimiter     *rate.Limiter
	pinWorkers      bool

	beforeTaskStart func(SubmissionIndex)
	onTaskEnd       func(SubmissionIndex, error)

	waveTimeout     time.Duration
	shutdownTimeout time.Duration
	onWaveStart     func(WaveEvent)
	onWaveEnd       func(WaveEvent)
}

func newWorkerPoolConfig(opts ...WorkerPoolOption) *workerPoolConfig {
	cfg := &workerPoolConfig{
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithTaskBuffer sets the buffer size of the submission queue.
// If not specified, defaults to the slot count so that a full wave never blocks Submit.
func WithTaskBuffer(size int) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if size >= 0 {
			cfg.taskBuffer = size
		}
	}
}

// WithContinueOnError disables fail-fast. AwaitAll then waits for every task
// regardless of failures, and an Engine records every failed slot in its
// result sequence and keeps iterating.
func WithContinueOnError(continueOnError bool) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.continueOnError = continueOnError
	}
}

// WithRateLimit paces task starts with a token bucket.
// tasksPerSecond specifies the sustained start rate, burst the bucket size.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithCPUAffinity locks every slot goroutine to an OS thread pinned to a
// core (linux and windows; thread locking only on darwin).
func WithCPUAffinity() WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.pinWorkers = true
	}
}

// WithBeforeTaskStart registers a hook called on the worker right before a task runs.
func WithBeforeTaskStart(fn func(SubmissionIndex)) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd registers a hook called on the worker after a task returns.
func WithOnTaskEnd(fn func(SubmissionIndex, error)) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.onTaskEnd = fn
	}
}

// WithWaveTimeout bounds how long an Engine waits for a single wave, and is
// the bound AwaitAll uses when called with timeout <= 0.
// Zero or negative means no bound.
func WithWaveTimeout(timeout time.Duration) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if timeout > 0 {
			cfg.waveTimeout = timeout
		}
	}
}

// WithShutdownTimeout sets how long Run waits for workers when releasing the
// pool, and how long Configure waits for a previous generation.
// Defaults to 5s; zero waits forever.
func WithShutdownTimeout(timeout time.Duration) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if timeout >= 0 {
			cfg.shutdownTimeout = timeout
		}
	}
}

// WithOnWaveStart registers a progress hook called after a wave is submitted.
func WithOnWaveStart(fn func(WaveEvent)) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.onWaveStart = fn
	}
}

// WithOnWaveEnd registers a progress hook called once a wave is resolved,
// successfully or not.
func WithOnWaveEnd(fn func(WaveEvent)) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.onWaveEnd = fn
	}
}
