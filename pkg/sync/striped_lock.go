// Package sync provides locks partitioned by key.
package sync

import (
	base "sync"
)

const (
	replicasPerStripe = 200
)

// StripedLock consistently maps a key space onto a fixed set of locks, so
// operations on the same key are serialized without keeping a lock per key.
type StripedLock struct {
	locks []base.Mutex
	ring  *ring
}

// NewStripedLock returns a StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks: make([]base.Mutex, stripes),
		ring:  newRing(stripes, replicasPerStripe),
	}
}

// Get returns the lock for key.
func (l *StripedLock) Get(key []byte) *base.Mutex {
	return &l.locks[l.ring.shard(key)]
}

// Lock locks key and returns the func that unlocks it.
func (l *StripedLock) Lock(key []byte) func() {
	mu := l.Get(key)
	mu.Lock()
	return mu.Unlock
}
