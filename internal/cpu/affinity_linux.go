//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to a CPU core, wrapping slot numbers
// larger than the CPU count. Must be called after runtime.LockOSThread().
func pinToCore(slot int) (int, error) {
	core := CoreForSlot(slot)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, err
	}
	return core, nil
}

// SetupWorkerAffinity locks the calling goroutine to its OS thread and pins
// that thread to the core for the given pool slot.
// Returns a cleanup function that should be deferred.
func SetupWorkerAffinity(slot int) func() {
	runtime.LockOSThread()
	_, _ = pinToCore(slot)

	return func() {
		runtime.UnlockOSThread()
	}
}
