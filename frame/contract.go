package frame

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/interaction"
	"github.com/pthm-cable/particlemorph/morph"
	"github.com/pthm-cable/particlemorph/shape"
)

// Color is a linear RGB triple in [0,1].
type Color struct {
	R, G, B float64
}

// Contract turns a snapshot plus per-particle data into vertex position,
// color, point size and sprite alpha.
type Contract struct {
	field interaction.Params

	jitterAmp   float64
	phaseScale  float64
	jitterSpeed float64

	baseSize  float64
	sizeVar   float64
	sizeScale float64
	alpha     float64

	colors [shape.Count]Color
}

// NewContract builds the contract from render and interaction settings.
func NewContract(cfg *config.Config) Contract {
	r := cfg.Render
	text := toColor(r.Colors.Text)
	return Contract{
		field:       interaction.ParamsFromConfig(cfg.Interaction),
		jitterAmp:   r.JitterAmplitude,
		phaseScale:  r.JitterPhaseScale,
		jitterSpeed: r.JitterYSpeed,
		baseSize:    r.BaseSize,
		sizeVar:     r.SizeVariance,
		sizeScale:   r.SizeScale,
		alpha:       r.Alpha,
		colors: [shape.Count]Color{
			shape.Sphere:    toColor(r.Colors.Sphere),
			shape.Heart:     toColor(r.Colors.Heart),
			shape.Rose:      toColor(r.Colors.Rose),
			shape.ShortText: text,
			shape.LongText:  text,
		},
	}
}

func toColor(c [3]float64) Color {
	return Color{R: c[0], G: c[1], B: c[2]}
}

// RGBA converts to 8-bit channels with the given alpha, clamping to [0,1].
func (c Color) RGBA(alpha float64) color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(alpha)}
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// BlendPosition returns sum(w_i * P_i).
func (c Contract) BlendPosition(targets *[shape.Count]r3.Vec, w morph.Weights) r3.Vec {
	var p r3.Vec
	for i, t := range targets {
		if w[i] == 0 {
			continue
		}
		p = r3.Add(p, r3.Scale(w[i], t))
	}
	return p
}

// Vertex computes the final world position of one particle: blend, then
// repulsion evaluated at the blended position, then the idle jitter.
func (c Contract) Vertex(targets *[shape.Count]r3.Vec, phase float64, s *Snapshot) r3.Vec {
	p := c.BlendPosition(targets, s.Weights)
	p = r3.Add(p, interaction.Displacement(c.field, s.Point, s.Activity, p))
	return r3.Add(p, c.Jitter(phase, s.Time))
}

// Jitter returns the time-varying offset for a particle phase.
func (c Contract) Jitter(phase, tau float64) r3.Vec {
	off := phase * c.phaseScale
	return r3.Vec{
		X: c.jitterAmp * math.Sin(tau+off),
		Y: c.jitterAmp * math.Cos(c.jitterSpeed*tau+off),
	}
}

// Color returns sum(w_i * C_i).
func (c Contract) Color(w morph.Weights) Color {
	var out Color
	for i, col := range c.colors {
		out.R += w[i] * col.R
		out.G += w[i] * col.G
		out.B += w[i] * col.B
	}
	return out
}

// PointSize returns the sprite diameter in pixels for a particle at the given
// view depth (positive in front of the camera). Points behind the camera get 0.
func (c Contract) PointSize(phase, depth, visible float64) float64 {
	if depth <= 0 {
		return 0
	}
	return (c.baseSize + c.sizeVar*phase) * (c.sizeScale / depth) * visible
}

// SpriteAlpha returns the alpha at normalized distance r from the sprite
// center (r = 0.5 at the rim). ok is false beyond the rim.
func (c Contract) SpriteAlpha(r float64) (alpha float64, ok bool) {
	if r > 0.5 {
		return 0, false
	}
	return (1 - 2*r) * c.alpha, true
}

// PeakAlpha is the sprite alpha at its center.
func (c Contract) PeakAlpha() float64 {
	return c.alpha
}
