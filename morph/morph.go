// Package morph smooths a one-hot shape selection into continuous blend weights.
package morph

import (
	"math"

	"github.com/pthm-cable/particlemorph/shape"
)

// Weights holds one blend weight per shape slot, each in [0,1].
type Weights [shape.Count]float64

// OneHot returns weights with slot id at 1 and every other slot at 0.
// An invalid id yields all zeros.
func OneHot(id shape.ID) Weights {
	var w Weights
	if id.Valid() {
		w[id] = 1
	}
	return w
}

// Sum returns the total of all weights. Not required to be 1 mid-transition.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Dominant returns the slot with the largest weight.
func (w Weights) Dominant() shape.ID {
	best := shape.ID(0)
	for i := 1; i < shape.Count; i++ {
		if w[i] > w[best] {
			best = shape.ID(i)
		}
	}
	return best
}

// State steers the current weights exponentially toward a one-hot target.
// It never reaches a terminal state; consumers must tolerate weights that
// are close to, but not exactly, one-hot.
type State struct {
	alpha   float64
	initial shape.ID
	target  shape.ID
	weights Weights
}

// NewState creates a morph state resting fully on the initial shape.
// alpha is the per-update interpolation factor (0.05 reference).
func NewState(alpha float64, initial shape.ID) *State {
	if !initial.Valid() {
		initial = shape.Sphere
	}
	s := &State{alpha: alpha, initial: initial}
	s.Reset()
	return s
}

// Reset restores the session defaults: weights one-hot on the initial shape
// and the target pointing at it.
func (s *State) Reset() {
	s.target = s.initial
	s.weights = OneHot(s.initial)
}

// SetTarget records which slot should converge to 1. Takes effect on the next
// Update. Out-of-range slots are ignored and the previous target is kept.
func (s *State) SetTarget(id shape.ID) bool {
	if !id.Valid() {
		return false
	}
	s.target = id
	return true
}

// Target returns the current target slot.
func (s *State) Target() shape.ID {
	return s.target
}

// Weights returns a copy of the current weights.
func (s *State) Weights() Weights {
	return s.weights
}

// SetWeights overwrites the current weights, clamping each to [0,1].
func (s *State) SetWeights(w Weights) {
	for i, v := range w {
		s.weights[i] = clamp01(v)
	}
}

// Alpha returns the per-update interpolation factor.
func (s *State) Alpha() float64 {
	return s.alpha
}

// Update advances every weight one step toward the target with the fixed
// per-call factor.
func (s *State) Update() {
	s.UpdateWith(s.alpha)
}

// UpdateWith advances every weight with an explicit factor, e.g. one
// produced by RateAdjusted for frame-rate independent smoothing.
func (s *State) UpdateWith(alpha float64) {
	target := OneHot(s.target)
	for i := range s.weights {
		s.weights[i] = Lerp(s.weights[i], target[i], alpha)
	}
}

// Lerp interpolates linearly from a toward b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RateAdjusted converts a per-frame smoothing factor calibrated at refFPS
// into the factor for a frame of dt seconds, so that convergence time stays
// constant in wall-clock time: 1 - (1-f)^(dt*refFPS).
func RateAdjusted(f, dt, refFPS float64) float64 {
	if dt <= 0 || refFPS <= 0 {
		return f
	}
	return clamp01(1 - math.Pow(1-f, dt*refFPS))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
