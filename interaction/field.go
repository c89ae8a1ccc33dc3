// Package interaction smooths an external 3D interaction point and computes
// the radius-bounded repulsion it applies to particles.
package interaction

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
)

// Params holds the repulsion field constants.
type Params struct {
	Smoothing         float64 // beta per update call
	ActivityThreshold float64 // smoothed activity at or below this disables the field
	Radius            float64 // no displacement at or beyond this distance
	Force             float64 // displacement magnitude at the interaction point itself
}

// ParamsFromConfig extracts field parameters from the loaded config.
func ParamsFromConfig(c config.InteractionConfig) Params {
	return Params{
		Smoothing:         c.Smoothing,
		ActivityThreshold: c.ActivityThreshold,
		Radius:            c.Radius,
		Force:             c.Force,
	}
}

// Field holds the smoothed interaction state.
type Field struct {
	params   Params
	point    r3.Vec
	activity float64
}

// NewField creates a field in its cold state: point at the origin, inactive.
func NewField(p Params) *Field {
	return &Field{params: p}
}

// Reset restores the cold state.
func (f *Field) Reset() {
	f.point = r3.Vec{}
	f.activity = 0
}

// Params returns the field constants.
func (f *Field) Params() Params {
	return f.params
}

// Point returns the smoothed interaction point.
func (f *Field) Point() r3.Vec {
	return f.point
}

// Activity returns the smoothed activity in [0,1].
func (f *Field) Activity() float64 {
	return f.activity
}

// Update moves the smoothed point and activity one step toward the raw sample.
// Calling it repeatedly with a stale sample keeps converging on that sample.
func (f *Field) Update(raw r3.Vec, active bool) {
	f.UpdateWith(raw, active, f.params.Smoothing)
}

// UpdateWith is Update with an explicit smoothing factor.
func (f *Field) UpdateWith(raw r3.Vec, active bool, beta float64) {
	f.point = r3.Add(f.point, r3.Scale(beta, r3.Sub(raw, f.point)))
	target := 0.0
	if active {
		target = 1
	}
	f.activity += (target - f.activity) * beta
}

// DisplacementAt returns the repulsion applied to a particle at p.
func (f *Field) DisplacementAt(p r3.Vec) r3.Vec {
	return Displacement(f.params, f.point, f.activity, p)
}

// Displacement computes the repulsion at p for a given smoothed point and
// activity. The push is along p-point with magnitude Force*(1 - d/Radius):
// largest at the point, zero at the radius. It is zero when the field is
// inactive, when d >= Radius, and when p coincides with the point.
func Displacement(params Params, point r3.Vec, activity float64, p r3.Vec) r3.Vec {
	if activity <= params.ActivityThreshold {
		return r3.Vec{}
	}
	delta := r3.Sub(p, point)
	d := r3.Norm(delta)
	if d >= params.Radius || d == 0 {
		return r3.Vec{}
	}
	// Normalize before scaling: Force/d overflows for subnormal d.
	u := r3.Vec{X: delta.X / d, Y: delta.Y / d, Z: delta.Z / d}
	return r3.Scale((1-d/params.Radius)*params.Force, u)
}
