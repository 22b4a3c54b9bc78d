package singleton

import "sync/atomic"

// Gate is the lock flag shared by every registry built on it. Locking marks
// the checkpoint after which mutable access is a usage error. There is no
// reference counting: the last writer wins.
//
// The zero value is an unlocked gate.
type Gate struct {
	locked atomic.Bool
}

// Lock sets the flag.
func (g *Gate) Lock() {
	g.locked.Store(true)
}

// Unlock clears the flag.
func (g *Gate) Unlock() {
	g.locked.Store(false)
}

// IsLocked reports the flag.
func (g *Gate) IsLocked() bool {
	return g.locked.Load()
}
