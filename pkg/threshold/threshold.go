// Package threshold holds the alert threshold shared by the sampling loop and
// the request handlers.
package threshold

import "sync"

// Cell is a reader/writer-locked int32.
// Reads are frequent (every sampling cycle, every query), writes are rare.
type Cell struct {
	mu sync.RWMutex
	v  int32
}

// New returns a Cell holding v.
func New(v int32) *Cell {
	return &Cell{v: v}
}

// Get returns the current threshold.
func (c *Cell) Get() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Set overwrites the threshold. Any value is accepted.
func (c *Cell) Set(v int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}
