package signal

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/shape"
)

// InteractionSample is one raw reading from an interaction source.
// Active=false means the source currently sees nothing.
type InteractionSample struct {
	Point  r3.Vec
	Active bool
}

// Inputs bundles the mailboxes the frame loop reads each frame.
//
// Interaction samples are sticky: if the source stalls, the last sample keeps
// being applied. Shape selections are consumed once.
type Inputs struct {
	Interaction Latest[InteractionSample]
	Shape       Latest[shape.ID]
}

// SelectShape posts a shape selection. Invalid ids are dropped here so that
// the consumer never sees them.
func (in *Inputs) SelectShape(id shape.ID) bool {
	if !id.Valid() {
		return false
	}
	in.Shape.Post(id)
	return true
}

// PostInteraction posts a raw interaction reading.
func (in *Inputs) PostInteraction(p r3.Vec, active bool) {
	in.Interaction.Post(InteractionSample{Point: p, Active: active})
}

// LastInteraction returns the last interaction sample, or an inactive one at
// the origin if none has arrived.
func (in *Inputs) LastInteraction() InteractionSample {
	s, _ := in.Interaction.Peek()
	return s
}
