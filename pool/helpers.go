package pool

import "time"

// waitUntil blocks until either the done channel is closed or the timeout is reached.
// It is used during shutdown to wait for workers to exit.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
