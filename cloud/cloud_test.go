package cloud

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/frame"
	"github.com/pthm-cable/particlemorph/morph"
	"github.com/pthm-cable/particlemorph/shape"
)

func testCloud(t *testing.T, n int) (*Cloud, *config.Config) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Particles.Count = n
	reg, err := shape.Build(context.Background(), cfg, 7)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	c, err := New(reg, frame.NewContract(cfg))
	if err != nil {
		t.Fatalf("creating cloud: %v", err)
	}
	t.Cleanup(c.Close)
	return c, cfg
}

func TestNewRejectsEmptyRegistry(t *testing.T) {
	if _, err := New(nil, frame.Contract{}); err == nil {
		t.Error("expected error for nil registry")
	}
}

func TestSpawnOneEntityPerParticle(t *testing.T) {
	c, _ := testCloud(t, 500)
	if c.Len() != 500 {
		t.Fatalf("expected 500 particles, got %d", c.Len())
	}
	seen := make([]bool, 500)
	phases := c.Registry().Phases()
	c.Each(func(i int, phase float64, pos r3.Vec) {
		if seen[i] {
			t.Fatalf("index %d visited twice", i)
		}
		seen[i] = true
		if phase != phases[i] {
			t.Errorf("particle %d: phase %f, want %f", i, phase, phases[i])
		}
	})
	for i, ok := range seen {
		if !ok {
			t.Fatalf("index %d missing", i)
		}
	}
}

func checkAgainstContract(t *testing.T, c *Cloud, s *frame.Snapshot) {
	t.Helper()
	contract := c.Contract()
	c.Each(func(i int, phase float64, pos r3.Vec) {
		targets := c.targets(i)
		want := contract.Vertex(&targets, phase, s)
		if r3.Norm(r3.Sub(pos, want)) > 1e-12 {
			t.Fatalf("particle %d: expected %v, got %v", i, want, pos)
		}
	})
}

func TestEvaluateSequential(t *testing.T) {
	c, _ := testCloud(t, 400)
	s := &frame.Snapshot{
		Time:     1.7,
		Weights:  morph.Weights{0.2, 0.5, 0.1, 0.1, 0.1},
		Point:    r3.Vec{X: 2, Y: 1},
		Activity: 0.8,
	}
	c.Evaluate(s)
	checkAgainstContract(t, c, s)
}

func TestEvaluateParallel(t *testing.T) {
	c, _ := testCloud(t, 3*parallelThreshold)
	s := &frame.Snapshot{
		Time:     0.3,
		Weights:  morph.OneHot(shape.Rose),
		Point:    r3.Vec{X: -3},
		Activity: 1,
	}
	// Evaluate twice so the second pass reuses running workers
	c.Evaluate(s)
	s.Time = 0.6
	c.Evaluate(s)
	checkAgainstContract(t, c, s)
}

func TestEvaluateOneHotSphereStaysOnSurface(t *testing.T) {
	c, cfg := testCloud(t, 300)
	s := &frame.Snapshot{Weights: morph.OneHot(shape.Sphere)}
	c.Evaluate(s)
	c.Each(func(i int, _ float64, pos r3.Vec) {
		// Jitter moves at most 0.1 per axis in x/y
		r := r3.Norm(pos)
		if r < cfg.Sphere.Radius-0.15 || r > cfg.Sphere.Radius+0.15 {
			t.Fatalf("particle %d: radius %f too far from %f", i, r, cfg.Sphere.Radius)
		}
	})
}

func TestCloseIsIdempotent(t *testing.T) {
	c, _ := testCloud(t, 3*parallelThreshold)
	c.Evaluate(&frame.Snapshot{Weights: morph.OneHot(shape.Heart)})
	c.Close()
	c.Close()
}
