// Package cpu pins pool slot goroutines to CPU cores.
package cpu

import "runtime"

// CoreForSlot maps a pool slot onto a logical CPU, wrapping around when
// there are more slots than CPUs.
func CoreForSlot(slot int) int {
	n := runtime.NumCPU()
	if slot < 0 {
		slot = -slot
	}
	return slot % n
}
