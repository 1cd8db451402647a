package txm

import "runtime"

// yieldCPU is the CPU-yield hint spec §5 requires at every contention
// loop ("the core never blocks the OS; it spins with a CPU yield hint in
// every contention loop"). runtime.Gosched is the idiomatic Go analogue
// of the original's YieldCPU.
func yieldCPU() {
	runtime.Gosched()
}
