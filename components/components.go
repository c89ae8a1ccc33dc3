// Package components defines ECS components for the particle cloud.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Particle identifies a particle by its stable index into every shape buffer.
type Particle struct {
	Index int32
}

// Phase is the particle's random phase in [0,1), fixed for the session.
// Drives jitter offset and point size variance.
type Phase struct {
	Value float64
}

// Vertex is the particle's evaluated world position for the current frame.
type Vertex struct {
	Pos r3.Vec
}
