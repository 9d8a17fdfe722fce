package models

import "sync"

// Cell is a mutex-guarded latest-value holder. Writers replace the whole
// value under the lock and readers copy the whole value out, so a consumer
// can never observe a half-updated sample. Seq counts stores, letting a
// paced consumer tell a fresh value from a stale one.
type Cell[T any] struct {
	mu  sync.Mutex
	val T
	seq uint64
}

// Store replaces the held value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	c.val = v
	c.seq++
	c.mu.Unlock()
}

// Load returns a copy of the held value and the store count at the time of
// the read. Seq 0 means nothing has been stored yet.
func (c *Cell[T]) Load() (T, uint64) {
	c.mu.Lock()
	v, s := c.val, c.seq
	c.mu.Unlock()
	return v, s
}
