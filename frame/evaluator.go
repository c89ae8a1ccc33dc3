// Package frame advances the per-frame morph and interaction state and
// defines how that state turns into drawable vertices.
package frame

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/interaction"
	"github.com/pthm-cable/particlemorph/morph"
	"github.com/pthm-cable/particlemorph/shape"
	"github.com/pthm-cable/particlemorph/signal"
)

// Snapshot is the immutable per-frame state handed to the renderer.
type Snapshot struct {
	Frame    uint64
	Time     float64 // tau, seconds since session start
	Weights  morph.Weights
	Target   shape.ID
	Point    r3.Vec
	Activity float64
	Visible  float64 // 0 before the session starts, 1 after
}

// Evaluator owns the morph and interaction state and steps them once per
// frame from the latest input signals.
type Evaluator struct {
	morph  *morph.State
	field  *interaction.Field
	inputs *signal.Inputs
	timing config.TimingConfig

	visible float64
	frame   uint64
	last    Snapshot
}

// NewEvaluator creates an evaluator reading from inputs. The session starts
// hidden; call Start to reveal it.
func NewEvaluator(cfg *config.Config, inputs *signal.Inputs) *Evaluator {
	initial, ok := shape.ParseID(cfg.Morph.InitialShape)
	if !ok {
		slog.Warn("unknown initial shape, using sphere", "shape", cfg.Morph.InitialShape)
		initial = shape.Sphere
	}
	e := &Evaluator{
		morph:  morph.NewState(cfg.Morph.Smoothing, initial),
		field:  interaction.NewField(interaction.ParamsFromConfig(cfg.Interaction)),
		inputs: inputs,
		timing: cfg.Timing,
	}
	e.last = e.snapshot(0)
	return e
}

// Start lifts the visibility gate.
func (e *Evaluator) Start() {
	e.visible = 1
}

// Started reports whether Start was called.
func (e *Evaluator) Started() bool {
	return e.visible > 0
}

// Reset restores session defaults: weights on the initial shape, the
// interaction point cold at the origin, frame counter at zero. Pending shape
// selections are discarded. Visibility is left as is.
func (e *Evaluator) Reset() {
	e.morph.Reset()
	e.field.Reset()
	e.inputs.Shape.Clear()
	e.frame = 0
	e.last = e.snapshot(0)
}

// SetTargetShape selects a shape directly, bypassing the mailbox.
func (e *Evaluator) SetTargetShape(id shape.ID) bool {
	return e.morph.SetTarget(id)
}

// Step advances one frame: pending shape selection, interaction update,
// morph update, in that order. tau is the elapsed session time and dt the
// frame duration (used only in frame-rate independent mode).
func (e *Evaluator) Step(tau, dt float64) Snapshot {
	if id, ok := e.inputs.Shape.Take(); ok {
		e.morph.SetTarget(id)
	}

	alpha, beta := e.morph.Alpha(), e.field.Params().Smoothing
	if e.timing.FrameRateIndependent {
		alpha = morph.RateAdjusted(alpha, dt, e.timing.ReferenceFPS)
		beta = morph.RateAdjusted(beta, dt, e.timing.ReferenceFPS)
	}

	sample := e.inputs.LastInteraction()
	e.field.UpdateWith(sample.Point, sample.Active, beta)
	e.morph.UpdateWith(alpha)

	e.frame++
	e.last = e.snapshot(tau)
	return e.last
}

// Last returns the most recent snapshot.
func (e *Evaluator) Last() Snapshot {
	return e.last
}

// Field returns the interaction field, for displacement queries.
func (e *Evaluator) Field() *interaction.Field {
	return e.field
}

func (e *Evaluator) snapshot(tau float64) Snapshot {
	return Snapshot{
		Frame:    e.frame,
		Time:     tau,
		Weights:  e.morph.Weights(),
		Target:   e.morph.Target(),
		Point:    e.field.Point(),
		Activity: e.field.Activity(),
		Visible:  e.visible,
	}
}
