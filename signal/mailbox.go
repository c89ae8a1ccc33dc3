// Package signal provides single-slot mailboxes that carry the latest value
// from an input producer to the frame loop without blocking either side.
package signal

import "sync/atomic"

// Latest holds the most recent value posted by a producer. Writers never
// block; a newer Post overwrites an unread one.
type Latest[T any] struct {
	v atomic.Pointer[T]
}

// Post publishes v, replacing any previous value.
func (l *Latest[T]) Post(v T) {
	l.v.Store(&v)
}

// Peek returns the latest value without consuming it. ok is false if nothing
// has been posted yet.
func (l *Latest[T]) Peek() (v T, ok bool) {
	p := l.v.Load()
	if p == nil {
		return v, false
	}
	return *p, true
}

// Take returns the latest value and empties the slot, so each posted value is
// observed at most once.
func (l *Latest[T]) Take() (v T, ok bool) {
	p := l.v.Swap(nil)
	if p == nil {
		return v, false
	}
	return *p, true
}

// Clear empties the slot.
func (l *Latest[T]) Clear() {
	l.v.Store(nil)
}
