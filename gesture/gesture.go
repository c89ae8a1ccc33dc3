// Package gesture classifies tracked hand landmarks into shape selections and
// an interaction point, and feeds them into the frame loop's mailboxes.
package gesture

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/shape"
)

// Landmark is one tracked hand point in normalized image coordinates:
// x and y in [0,1] from the top-left, z relative depth.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NumLandmarks is the size of a hand skeleton.
const NumLandmarks = 21

// Landmark indices used by the classifier.
const (
	Wrist     = 0
	ThumbTip  = 4
	IndexTip  = 8
	MiddleTip = 12
	RingTip   = 16
	PinkyTip  = 20
)

// Kind is a recognized hand pose.
type Kind int

const (
	None Kind = iota
	Pinch
	Fist
	Open
)

var kindLabels = [...]string{"none", "pinch", "fist", "open"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindLabels) {
		return "unknown"
	}
	return kindLabels[k]
}

// Shape returns the shape a pose selects. ok is false for None, which keeps
// the previous target.
func (k Kind) Shape() (shape.ID, bool) {
	switch k {
	case Pinch:
		return shape.Heart, true
	case Fist:
		return shape.Rose, true
	case Open:
		return shape.ShortText, true
	}
	return 0, false
}

func dist(a, b Landmark) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Classify maps a hand skeleton to a pose. Pinch wins over fist, fist over
// open. Hands with fewer than NumLandmarks points classify as None.
func Classify(hand []Landmark, cfg config.GestureConfig) Kind {
	if len(hand) < NumLandmarks {
		return None
	}
	wrist := hand[Wrist]
	di := dist(hand[IndexTip], wrist)
	dm := dist(hand[MiddleTip], wrist)
	dr := dist(hand[RingTip], wrist)

	switch {
	case dist(hand[ThumbTip], hand[IndexTip]) < cfg.PinchMax:
		return Pinch
	case di < cfg.FistMax && dm < cfg.FistMax && dr < cfg.FistMax:
		return Fist
	case di > cfg.OpenMin && dm > cfg.OpenMin && dr > cfg.OpenMin:
		return Open
	}
	return None
}

// PointerToWorld maps a normalized screen position (origin top-left) onto the
// z=0 world plane spanning span.SpanX by span.SpanY. With mirror set, x is
// flipped as for a selfie camera.
func PointerToWorld(nx, ny float64, span config.PointerConfig, mirror bool) r3.Vec {
	x := nx - 0.5
	if mirror {
		x = -x
	}
	return r3.Vec{
		X: x * span.SpanX,
		Y: (0.5 - ny) * span.SpanY,
	}
}

// InteractionPoint returns the world-space interaction point for a hand,
// taken from the index fingertip.
func InteractionPoint(hand []Landmark, span config.PointerConfig, mirror bool) (r3.Vec, bool) {
	if len(hand) <= IndexTip {
		return r3.Vec{}, false
	}
	tip := hand[IndexTip]
	return PointerToWorld(tip.X, tip.Y, span, mirror), true
}
