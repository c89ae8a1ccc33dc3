// Package shape generates per-particle target positions for the fixed shape set
// and owns the immutable buffers built from them at startup.
package shape

import (
	"errors"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ID is a stable shape slot in [0, Count).
type ID int

// The fixed, ordered shape set.
const (
	Sphere ID = iota
	Heart
	Rose
	ShortText
	LongText

	// Count is the number of shape slots (K).
	Count = 5
)

var names = [Count]string{"sphere", "heart", "rose", "text1", "text2"}

// String returns the canonical shape name.
func (id ID) String() string {
	if !id.Valid() {
		return "unknown"
	}
	return names[id]
}

// Valid reports whether id names a slot of the shape set.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

// ParseID resolves a shape name. Accepts the canonical names plus
// "short-text" and "long-text".
func ParseID(s string) (ID, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "short-text":
		return ShortText, true
	case "long-text":
		return LongText, true
	}
	for i, n := range names {
		if n == s {
			return ID(i), true
		}
	}
	return -1, false
}

// All returns every shape slot in order.
func All() [Count]ID {
	return [Count]ID{Sphere, Heart, Rose, ShortText, LongText}
}

// Buffer holds one target position per particle index.
type Buffer []r3.Vec

// ErrInvalidCount is returned when a registry is requested for N <= 0 particles.
var ErrInvalidCount = errors.New("particle count must be positive")

// fill repeats candidates cyclically into a buffer of length n.
// An empty candidate list yields n positions at the origin.
func fill(candidates []r3.Vec, n int) Buffer {
	buf := make(Buffer, n)
	m := len(candidates)
	if m == 0 {
		return buf
	}
	for i := range buf {
		buf[i] = candidates[i%m]
	}
	return buf
}
