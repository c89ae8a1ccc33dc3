package frame

import (
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/morph"
	"github.com/pthm-cable/particlemorph/shape"
	"github.com/pthm-cable/particlemorph/signal"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestEvaluatorInitialSnapshot(t *testing.T) {
	e := NewEvaluator(testConfig(t), &signal.Inputs{})
	s := e.Last()
	if s.Weights != morph.OneHot(shape.Sphere) {
		t.Errorf("expected sphere weights, got %v", s.Weights)
	}
	if s.Visible != 0 || s.Activity != 0 || s.Frame != 0 {
		t.Errorf("unexpected initial snapshot %+v", s)
	}
}

func TestEvaluatorHeartScenario(t *testing.T) {
	in := &signal.Inputs{}
	e := NewEvaluator(testConfig(t), in)
	in.SelectShape(shape.Heart)

	var s Snapshot
	for i := 0; i < 200; i++ {
		s = e.Step(float64(i)/60, 1.0/60)
	}
	if s.Weights[shape.Heart] <= 0.999 {
		t.Errorf("expected heart > 0.999, got %f", s.Weights[shape.Heart])
	}
	for _, id := range shape.All() {
		if id != shape.Heart && s.Weights[id] >= 0.001 {
			t.Errorf("expected %s < 0.001, got %f", id, s.Weights[id])
		}
	}
	if s.Frame != 200 || s.Target != shape.Heart {
		t.Errorf("expected frame 200 targeting heart, got %d %s", s.Frame, s.Target)
	}
}

func TestEvaluatorSelectionConsumedOnce(t *testing.T) {
	in := &signal.Inputs{}
	e := NewEvaluator(testConfig(t), in)
	in.SelectShape(shape.Rose)
	e.Step(0, 1.0/60)

	// Direct selection must not be overridden by the already consumed one
	e.SetTargetShape(shape.LongText)
	s := e.Step(1.0/60, 1.0/60)
	if s.Target != shape.LongText {
		t.Errorf("expected target text2, got %s", s.Target)
	}
}

func TestEvaluatorStalledInteractionKeepsConverging(t *testing.T) {
	in := &signal.Inputs{}
	e := NewEvaluator(testConfig(t), in)
	in.PostInteraction(r3.Vec{X: 8, Y: -4}, true)

	prev := math.Inf(1)
	for i := 0; i < 50; i++ {
		s := e.Step(0, 1.0/60)
		d := r3.Norm(r3.Sub(s.Point, r3.Vec{X: 8, Y: -4}))
		if d >= prev {
			t.Fatalf("step %d: distance to stalled sample did not shrink", i)
		}
		prev = d
	}
}

func TestEvaluatorOrderFieldBeforeDisplacement(t *testing.T) {
	in := &signal.Inputs{}
	cfg := testConfig(t)
	e := NewEvaluator(cfg, in)
	in.PostInteraction(r3.Vec{X: 5}, true)

	s := e.Step(0, 1.0/60)
	if !scalar.EqualWithinAbs(s.Point.X, 0.5, 1e-12) || !scalar.EqualWithinAbs(s.Activity, 0.1, 1e-12) {
		t.Errorf("expected field updated in the same step, got %v %f", s.Point, s.Activity)
	}
}

func TestEvaluatorReset(t *testing.T) {
	in := &signal.Inputs{}
	e := NewEvaluator(testConfig(t), in)
	e.Start()
	in.PostInteraction(r3.Vec{X: 3}, true)
	in.SelectShape(shape.Heart)
	for i := 0; i < 30; i++ {
		e.Step(0, 1.0/60)
	}
	in.SelectShape(shape.Rose)
	e.Reset()

	s := e.Last()
	if s.Weights != morph.OneHot(shape.Sphere) || s.Point != (r3.Vec{}) || s.Activity != 0 {
		t.Errorf("expected cold session after reset, got %+v", s)
	}
	if _, ok := in.Shape.Take(); ok {
		t.Error("expected pending selection to be discarded")
	}
	if s.Visible != 1 {
		t.Error("expected visibility to survive reset")
	}
}

func TestEvaluatorFrameRateIndependent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timing.FrameRateIndependent = true
	cfg.Timing.ReferenceFPS = 60

	slow := NewEvaluator(cfg, &signal.Inputs{})
	fast := NewEvaluator(cfg, &signal.Inputs{})
	slow.SetTargetShape(shape.Heart)
	fast.SetTargetShape(shape.Heart)

	var a, b Snapshot
	for i := 0; i < 30; i++ {
		a = slow.Step(0, 1.0/30)
	}
	for i := 0; i < 60; i++ {
		b = fast.Step(0, 1.0/60)
	}
	if !scalar.EqualWithinAbs(a.Weights[shape.Heart], b.Weights[shape.Heart], 1e-9) {
		t.Errorf("expected equal wall-clock progress, got %f vs %f", a.Weights[shape.Heart], b.Weights[shape.Heart])
	}
}

func TestEvaluatorUnknownInitialShape(t *testing.T) {
	cfg := testConfig(t)
	cfg.Morph.InitialShape = "dodecahedron"
	e := NewEvaluator(cfg, &signal.Inputs{})
	if e.Last().Target != shape.Sphere {
		t.Errorf("expected sphere fallback, got %s", e.Last().Target)
	}
}

func testTargets() [shape.Count]r3.Vec {
	return [shape.Count]r3.Vec{
		{X: 1},
		{Y: 2},
		{Z: 3},
		{X: -1, Y: -1},
		{X: 4, Y: 4, Z: 4},
	}
}

func TestBlendPositionOneHot(t *testing.T) {
	c := NewContract(testConfig(t))
	targets := testTargets()
	for _, id := range shape.All() {
		got := c.BlendPosition(&targets, morph.OneHot(id))
		if got != targets[id] {
			t.Errorf("%s: expected %v, got %v", id, targets[id], got)
		}
	}
}

func TestBlendPositionMidTransition(t *testing.T) {
	c := NewContract(testConfig(t))
	targets := testTargets()
	w := morph.Weights{0.5, 0.5}
	got := c.BlendPosition(&targets, w)
	want := r3.Vec{X: 0.5, Y: 1}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestVertexJitterBounded(t *testing.T) {
	c := NewContract(testConfig(t))
	targets := testTargets()
	s := &Snapshot{Weights: morph.OneHot(shape.Sphere)}
	for i := 0; i < 500; i++ {
		s.Time = float64(i) * 0.037
		v := c.Vertex(&targets, float64(i%97)/97, s)
		d := r3.Sub(v, targets[shape.Sphere])
		if math.Abs(d.X) > 0.1+1e-12 || math.Abs(d.Y) > 0.1+1e-12 || d.Z != 0 {
			t.Fatalf("t=%f: jitter %v out of bounds", s.Time, d)
		}
	}
}

func TestVertexAppliesRepulsionAtBlendedPosition(t *testing.T) {
	c := NewContract(testConfig(t))
	targets := testTargets()
	s := &Snapshot{
		Weights:  morph.OneHot(shape.Sphere),
		Point:    r3.Vec{X: -4},
		Activity: 1,
	}
	v := c.Vertex(&targets, 0, s)
	jitter := c.Jitter(0, 0)
	got := r3.Sub(r3.Sub(v, targets[shape.Sphere]), jitter)
	// d = 5 from the point: magnitude 2.5 along +x
	if !scalar.EqualWithinAbs(got.X, 2.5, 1e-9) || math.Abs(got.Y) > 1e-12 {
		t.Errorf("expected displacement (2.5,0,0), got %v", got)
	}
}

func TestColorBlend(t *testing.T) {
	c := NewContract(testConfig(t))
	tests := []struct {
		name string
		w    morph.Weights
		want Color
	}{
		{"sphere", morph.OneHot(shape.Sphere), Color{0, 1, 1}},
		{"heart", morph.OneHot(shape.Heart), Color{1, 0.1, 0.3}},
		{"text2", morph.OneHot(shape.LongText), Color{1, 0.9, 0.5}},
		{"half sphere half rose", morph.Weights{0.5, 0, 0.5}, Color{0.5, 0.55, 0.55}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Color(tt.w)
			if !scalar.EqualWithinAbs(got.R, tt.want.R, 1e-12) ||
				!scalar.EqualWithinAbs(got.G, tt.want.G, 1e-12) ||
				!scalar.EqualWithinAbs(got.B, tt.want.B, 1e-12) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPointSize(t *testing.T) {
	c := NewContract(testConfig(t))
	tests := []struct {
		name                  string
		phase, depth, visible float64
		want                  float64
	}{
		{"reference", 0, 45, 1, 2 * 300.0 / 45},
		{"max phase", 1, 30, 1, 4 * 10},
		{"hidden", 0.5, 45, 0, 0},
		{"behind camera", 0.5, -1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.PointSize(tt.phase, tt.depth, tt.visible)
			if !scalar.EqualWithinAbs(got, tt.want, 1e-9) {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestSpriteAlpha(t *testing.T) {
	c := NewContract(testConfig(t))
	if a, ok := c.SpriteAlpha(0); !ok || !scalar.EqualWithinAbs(a, 0.8, 1e-12) {
		t.Errorf("expected center alpha 0.8, got %f", a)
	}
	if a, ok := c.SpriteAlpha(0.5); !ok || a != 0 {
		t.Errorf("expected rim alpha 0, got %f", a)
	}
	if _, ok := c.SpriteAlpha(0.51); ok {
		t.Error("expected fragments beyond the rim to be discarded")
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		c     Color
		alpha float64
		want  color.RGBA
	}{
		{Color{0, 1, 1}, 0.8, color.RGBA{0, 255, 255, 204}},
		{Color{1, 0.1, 0.5}, 1, color.RGBA{255, 26, 128, 255}},
		{Color{1.4, -0.2, 0.5}, 0, color.RGBA{255, 0, 128, 0}},
	}
	for _, tt := range tests {
		if got := tt.c.RGBA(tt.alpha); got != tt.want {
			t.Errorf("%v@%f: expected %v, got %v", tt.c, tt.alpha, tt.want, got)
		}
	}
}
