// Package cloud stores the particles as ECS entities and evaluates their
// per-frame vertex positions.
package cloud

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/components"
	"github.com/pthm-cable/particlemorph/frame"
	"github.com/pthm-cable/particlemorph/shape"
)

// Cloud owns the particle world.
type Cloud struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Particle, components.Phase, components.Vertex]
	filter *ecs.Filter3[components.Particle, components.Phase, components.Vertex]

	reg      *shape.Registry
	contract frame.Contract
	count    int

	pool *workerPool
}

// New spawns one entity per particle of the registry.
func New(reg *shape.Registry, contract frame.Contract) (*Cloud, error) {
	if reg == nil || reg.Len() <= 0 {
		return nil, fmt.Errorf("creating cloud: %w", shape.ErrInvalidCount)
	}
	world := ecs.NewWorld()
	c := &Cloud{
		world:    world,
		mapper:   ecs.NewMap3[components.Particle, components.Phase, components.Vertex](world),
		filter:   ecs.NewFilter3[components.Particle, components.Phase, components.Vertex](world),
		reg:      reg,
		contract: contract,
	}
	phases := reg.Phases()
	sphere := reg.Buffer(shape.Sphere)
	for i := 0; i < reg.Len(); i++ {
		p := components.Particle{Index: int32(i)}
		ph := components.Phase{Value: phases[i]}
		v := components.Vertex{Pos: sphere[i]}
		c.mapper.NewEntity(&p, &ph, &v)
	}
	c.count = reg.Len()
	c.pool = newWorkerPool(c)
	return c, nil
}

// Len returns the number of particles.
func (c *Cloud) Len() int {
	return c.count
}

// Registry returns the shape buffers backing the cloud.
func (c *Cloud) Registry() *shape.Registry {
	return c.reg
}

// Contract returns the vertex contract used by Evaluate.
func (c *Cloud) Contract() frame.Contract {
	return c.contract
}

// targets gathers the K target positions of particle i.
func (c *Cloud) targets(i int) [shape.Count]r3.Vec {
	var t [shape.Count]r3.Vec
	for k := 0; k < shape.Count; k++ {
		t[k] = c.reg.Buffer(shape.ID(k))[i]
	}
	return t
}

// Evaluate computes every particle's vertex position for the snapshot.
// Large clouds are split across the worker pool; results are written back to
// the Vertex components after all workers finish.
func (c *Cloud) Evaluate(s *frame.Snapshot) {
	c.pool.run(s)
}

// Each calls fn for every particle with its phase and current vertex.
func (c *Cloud) Each(fn func(index int, phase float64, pos r3.Vec)) {
	q := c.filter.Query()
	for q.Next() {
		p, ph, v := q.Get()
		fn(int(p.Index), ph.Value, v.Pos)
	}
}

// Close stops the worker goroutines.
func (c *Cloud) Close() {
	c.pool.stop()
}
