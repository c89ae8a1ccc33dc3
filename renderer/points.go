// Package renderer draws the evaluated particle cloud with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/camera"
	"github.com/pthm-cable/particlemorph/cloud"
	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/frame"
)

// minRadius is the smallest sprite radius in pixels worth drawing.
const minRadius = 0.35

// PointRenderer draws every particle as a soft round sprite with additive
// blending. Sprite alpha falls off linearly from the peak at the center to
// zero at the rim, which DrawCircleGradient reproduces exactly.
type PointRenderer struct {
	contract   frame.Contract
	background rl.Color
	drawn      int
}

// NewPointRenderer creates a renderer for the given contract.
func NewPointRenderer(cfg *config.Config, contract frame.Contract) *PointRenderer {
	bg := cfg.Render.Background
	return &PointRenderer{
		contract:   contract,
		background: rl.Color{R: bg[0], G: bg[1], B: bg[2], A: 255},
	}
}

// Clear fills the frame with the background color.
func (r *PointRenderer) Clear() {
	rl.ClearBackground(r.background)
}

// Draw renders the cloud's current vertices through the projector.
func (r *PointRenderer) Draw(c *cloud.Cloud, pr *camera.Projector, s *frame.Snapshot) {
	r.drawn = 0
	if s.Visible <= 0 {
		return
	}

	peak, _ := r.contract.SpriteAlpha(0)
	col := r.contract.Color(s.Weights)
	inner := col.RGBA(peak)
	outer := col.RGBA(0)

	rl.BeginBlendMode(rl.BlendAdditive)
	c.Each(func(_ int, phase float64, pos r3.Vec) {
		sx, sy, depth, ok := pr.Project(pos)
		if !ok {
			return
		}
		radius := float32(r.contract.PointSize(phase, depth, s.Visible) / 2)
		if radius < minRadius {
			return
		}
		rl.DrawCircleGradient(int32(sx), int32(sy), radius, inner, outer)
		r.drawn++
	})
	rl.EndBlendMode()
}

// Drawn returns how many sprites the last Draw emitted.
func (r *PointRenderer) Drawn() int {
	return r.drawn
}
