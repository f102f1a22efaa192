// Package quota implements the mocked daily chat allowance of free accounts.
package quota

import "sync"

// Gate counts sends against a fixed daily limit. The counter lives in memory
// only and is never reset.
type Gate struct {
	mu            sync.Mutex
	limit         int
	used          int
	upgradePrompt bool
}

// NewGate returns a Gate that has already spent used of limit.
func NewGate(limit, used int) *Gate {
	if used < 0 {
		used = 0
	}
	return &Gate{limit: limit, used: used}
}

// Take consumes one send. When the quota is exhausted it makes the upgrade
// prompt visible and returns false without consuming.
func (g *Gate) Take() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.used >= g.limit {
		g.upgradePrompt = true
		return false
	}
	g.used++
	return true
}

// Dismiss hides the upgrade prompt.
func (g *Gate) Dismiss() {
	g.mu.Lock()
	g.upgradePrompt = false
	g.mu.Unlock()
}

// Snapshot reports the counter, the limit and whether the prompt is visible.
func (g *Gate) Snapshot() (used, limit int, upgradePrompt bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used, g.limit, g.upgradePrompt
}
