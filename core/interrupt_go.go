//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// irqMu stands in for the global interrupt enable bit on regular Go.
// Simulated interrupt sources hold it while their handlers run, so a
// critical section in the main context excludes them the way cli/sei does
// on hardware. Critical sections must not nest.
var irqMu sync.Mutex

// disableInterrupts masks simulated interrupt sources
func disableInterrupts() State {
	irqMu.Lock()
	return 0
}

// restoreInterrupts unmasks simulated interrupt sources
func restoreInterrupts(state State) {
	irqMu.Unlock()
}
