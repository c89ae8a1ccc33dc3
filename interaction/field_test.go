package interaction

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

var reference = Params{
	Smoothing:         0.1,
	ActivityThreshold: 0.1,
	Radius:            10,
	Force:             5,
}

// warmField returns a field fully converged on point with activity 1.
func warmField(point r3.Vec) *Field {
	f := NewField(reference)
	for i := 0; i < 1000; i++ {
		f.Update(point, true)
	}
	return f
}

func TestColdFieldIsInactive(t *testing.T) {
	f := NewField(reference)
	if f.Activity() != 0 || f.Point() != (r3.Vec{}) {
		t.Fatalf("expected cold state, got point %v activity %f", f.Point(), f.Activity())
	}
	if d := f.DisplacementAt(r3.Vec{X: 1}); d != (r3.Vec{}) {
		t.Errorf("expected zero displacement from cold field, got %v", d)
	}
}

func TestUpdateSmoothing(t *testing.T) {
	f := NewField(reference)
	f.Update(r3.Vec{X: 10, Y: -20, Z: 5}, true)

	want := r3.Vec{X: 1, Y: -2, Z: 0.5}
	if r3.Norm(r3.Sub(f.Point(), want)) > 1e-12 {
		t.Errorf("expected point %v, got %v", want, f.Point())
	}
	if !scalar.EqualWithinAbs(f.Activity(), 0.1, 1e-12) {
		t.Errorf("expected activity 0.1, got %f", f.Activity())
	}
}

func TestActivityDecaysGradually(t *testing.T) {
	f := warmField(r3.Vec{})
	prev := f.Activity()
	for i := 0; i < 10; i++ {
		f.Update(r3.Vec{}, false)
		if f.Activity() >= prev || f.Activity() <= 0 {
			t.Fatalf("step %d: expected gradual decay, %f -> %f", i, prev, f.Activity())
		}
		prev = f.Activity()
	}
}

func TestStalledSourceIsIdempotent(t *testing.T) {
	sample := r3.Vec{X: 3, Y: 4}
	f := warmField(sample)
	p, a := f.Point(), f.Activity()
	for i := 0; i < 10; i++ {
		f.Update(sample, true)
	}
	if r3.Norm(r3.Sub(f.Point(), p)) > 1e-9 || math.Abs(f.Activity()-a) > 1e-9 {
		t.Errorf("expected converged state to stay put, got %v %f", f.Point(), f.Activity())
	}
}

func TestDisplacementZeroOutsideRadius(t *testing.T) {
	f := warmField(r3.Vec{})
	for _, d := range []float64{10, 10.0001, 15, 1000} {
		if got := f.DisplacementAt(r3.Vec{X: d}); got != (r3.Vec{}) {
			t.Errorf("d=%f: expected zero displacement, got %v", d, got)
		}
	}
}

func TestDisplacementZeroAtPoint(t *testing.T) {
	point := r3.Vec{X: 1, Y: 2, Z: 3}
	f := warmField(point)
	got := f.DisplacementAt(f.Point())
	if got != (r3.Vec{}) {
		t.Errorf("expected zero displacement at the point, got %v", got)
	}
	if math.IsNaN(got.X) || math.IsNaN(got.Y) || math.IsNaN(got.Z) {
		t.Error("displacement must never be NaN")
	}
}

func TestDisplacementZeroWhenInactive(t *testing.T) {
	for _, activity := range []float64{0, 0.05, 0.1} {
		got := Displacement(reference, r3.Vec{}, activity, r3.Vec{X: 2})
		if got != (r3.Vec{}) {
			t.Errorf("activity=%f: expected zero displacement, got %v", activity, got)
		}
	}
	if got := Displacement(reference, r3.Vec{}, 0.11, r3.Vec{X: 2}); r3.Norm(got) == 0 {
		t.Error("expected field active just above the dead zone")
	}
}

func TestDisplacementFalloffMonotone(t *testing.T) {
	f := warmField(r3.Vec{})
	dir := r3.Unit(r3.Vec{X: 1, Y: 2, Z: -0.5})

	prev := math.Inf(1)
	for d := 0.01; d < 10; d += 0.01 {
		p := r3.Scale(d, dir)
		disp := f.DisplacementAt(p)
		mag := r3.Norm(disp)
		if mag <= 0 {
			t.Fatalf("d=%f: expected positive magnitude", d)
		}
		if mag >= prev {
			t.Fatalf("d=%f: magnitude %f did not decrease from %f", d, mag, prev)
		}
		// Points away from the interaction point
		if r3.Dot(disp, r3.Sub(p, f.Point())) <= 0 {
			t.Fatalf("d=%f: displacement %v not directed away", d, disp)
		}
		prev = mag
	}
}

func TestDisplacementMagnitude(t *testing.T) {
	tests := []struct {
		d    float64
		want float64
	}{
		{1e-9, 5},
		{2.5, 3.75},
		{5, 2.5},
		{9, 0.5},
	}
	for _, tt := range tests {
		got := r3.Norm(Displacement(reference, r3.Vec{}, 1, r3.Vec{Y: tt.d}))
		if !scalar.EqualWithinAbs(got, tt.want, 1e-6) {
			t.Errorf("d=%f: expected %f, got %f", tt.d, tt.want, got)
		}
	}
}

func TestDisplacementFiniteForTinyDistances(t *testing.T) {
	for _, d := range []float64{1e-300, 1e-308, 5e-324} {
		got := Displacement(reference, r3.Vec{}, 1, r3.Vec{X: d})
		for _, c := range []float64{got.X, got.Y, got.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				t.Fatalf("d=%g: expected finite displacement, got %v", d, got)
			}
		}
		if !scalar.EqualWithinAbs(got.X, 5, 1e-9) || got.Y != 0 || got.Z != 0 {
			t.Errorf("d=%g: expected {5 0 0}, got %v", d, got)
		}
	}
}

func TestDisplacementContinuousAtBoundary(t *testing.T) {
	inside := r3.Norm(Displacement(reference, r3.Vec{}, 1, r3.Vec{X: 10 - 1e-9}))
	if inside > 1e-8 {
		t.Errorf("expected magnitude to vanish near the radius, got %g", inside)
	}
}

func TestSingleUpdateFromColdPoint(t *testing.T) {
	// Particle 5 units from the raw interaction point. The field was already
	// active; the point itself starts cold at the origin.
	raw := r3.Vec{X: 5}
	particle := r3.Vec{X: 10}

	converged := r3.Norm(Displacement(reference, raw, 1, particle))

	f := NewField(reference)
	f.activity = 1
	f.Update(raw, true)
	disp := f.DisplacementAt(particle)
	mag := r3.Norm(disp)

	if mag <= 0 {
		t.Fatal("expected non-zero displacement after one update")
	}
	if mag >= converged {
		t.Errorf("expected magnitude below converged %f, got %f", converged, mag)
	}
	if r3.Dot(disp, r3.Sub(particle, raw)) <= 0 {
		t.Errorf("expected displacement away from the point, got %v", disp)
	}
}

func TestSingleUpdateFromFullyColdState(t *testing.T) {
	// From a fully cold field one update lands activity exactly on the dead
	// zone, so the push only starts on the second frame.
	raw := r3.Vec{X: 5}
	particle := r3.Vec{X: 10}

	f := NewField(reference)
	f.Update(raw, true)
	if got := f.DisplacementAt(particle); got != (r3.Vec{}) {
		t.Errorf("expected dead zone after first update, got %v", got)
	}

	f.Update(raw, true)
	disp := f.DisplacementAt(particle)
	converged := r3.Norm(Displacement(reference, raw, 1, particle))
	if mag := r3.Norm(disp); mag <= 0 || mag >= converged {
		t.Errorf("expected 0 < magnitude < %f, got %f", converged, mag)
	}
	if disp.X <= 0 {
		t.Errorf("expected push along +x, got %v", disp)
	}
}

func TestReset(t *testing.T) {
	f := warmField(r3.Vec{X: 4})
	f.Reset()
	if f.Point() != (r3.Vec{}) || f.Activity() != 0 {
		t.Errorf("expected cold state after reset, got %v %f", f.Point(), f.Activity())
	}
}
