//go:build windows

package cpu

import (
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// pinToCore pins the current OS thread to the core for slot.
// Must be called after runtime.LockOSThread().
func pinToCore(slot int) (int, error) {
	core := CoreForSlot(slot)
	handle, _, _ := getCurrentThread.Call()

	// Bit N = CPU N
	prevMask, _, err := setThreadAffinityMask.Call(handle, uintptr(1)<<core)
	if prevMask == 0 {
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
