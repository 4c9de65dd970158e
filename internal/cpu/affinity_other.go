//go:build !linux && !windows && !darwin

package cpu

import "runtime"

// SetupWorkerAffinity locks the goroutine to an OS thread.
// CPU pinning is not implemented on this platform.
func SetupWorkerAffinity(slot int) func() {
	runtime.LockOSThread()

	return func() {
		runtime.UnlockOSThread()
	}
}
