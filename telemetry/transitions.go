package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/particlemorph/frame"
	"github.com/pthm-cable/particlemorph/shape"
)

// TransitionType identifies a session event.
type TransitionType string

const (
	TransitionTarget         TransitionType = "target_changed"
	TransitionConverged      TransitionType = "converged"
	TransitionInteractionOn  TransitionType = "interaction_on"
	TransitionInteractionOff TransitionType = "interaction_off"
	TransitionRestart        TransitionType = "session_restart"
)

// Transition is a detected session event.
type Transition struct {
	SessionID   string         `csv:"session_id"`
	Type        TransitionType `csv:"type"`
	Frame       uint64         `csv:"frame"`
	TimeSec     float64        `csv:"time_sec"`
	Shape       string         `csv:"shape"`
	Description string         `csv:"description"`
}

// LogTransition logs the transition using slog.
func (t Transition) LogTransition() {
	slog.Info("transition",
		"type", string(t.Type),
		"frame", t.Frame,
		"shape", t.Shape,
		"description", t.Description,
	)
}

// TransitionDetector watches snapshots for target changes, morph convergence
// and the interaction field switching on or off.
type TransitionDetector struct {
	sessionID         string
	convergeAt        float64
	activityThreshold float64

	initialized bool
	target      shape.ID
	targetFrame uint64
	targetTime  float64
	converged   bool
	interacting bool
}

// NewTransitionDetector creates a detector. A morph counts as converged once
// the target weight reaches convergeAt; the field counts as on while activity
// exceeds activityThreshold.
func NewTransitionDetector(sessionID string, convergeAt, activityThreshold float64) *TransitionDetector {
	return &TransitionDetector{
		sessionID:         sessionID,
		convergeAt:        convergeAt,
		activityThreshold: activityThreshold,
	}
}

func (d *TransitionDetector) event(typ TransitionType, s *frame.Snapshot, id shape.ID, desc string) Transition {
	return Transition{
		SessionID:   d.sessionID,
		Type:        typ,
		Frame:       s.Frame,
		TimeSec:     s.Time,
		Shape:       id.String(),
		Description: desc,
	}
}

// Check analyzes the latest snapshot and returns any triggered transitions.
func (d *TransitionDetector) Check(s frame.Snapshot) []Transition {
	if !d.initialized {
		d.reset(&s)
		return nil
	}

	var out []Transition

	if s.Target != d.target {
		out = append(out, d.event(TransitionTarget, &s, s.Target,
			fmt.Sprintf("%s -> %s", d.target, s.Target)))
		d.target = s.Target
		d.targetFrame = s.Frame
		d.targetTime = s.Time
		d.converged = false
	}

	if !d.converged && s.Weights[s.Target] >= d.convergeAt {
		d.converged = true
		out = append(out, d.event(TransitionConverged, &s, s.Target,
			fmt.Sprintf("after %d frames (%.2fs)", s.Frame-d.targetFrame, s.Time-d.targetTime)))
	}

	on := s.Activity > d.activityThreshold
	if on != d.interacting {
		d.interacting = on
		typ := TransitionInteractionOff
		if on {
			typ = TransitionInteractionOn
		}
		out = append(out, d.event(typ, &s, s.Target,
			fmt.Sprintf("point (%.1f, %.1f, %.1f)", s.Point.X, s.Point.Y, s.Point.Z)))
	}

	return out
}

// Restart re-baselines the detector on a restarted session and returns the
// restart event.
func (d *TransitionDetector) Restart(s frame.Snapshot) Transition {
	d.reset(&s)
	return d.event(TransitionRestart, &s, s.Target, "session defaults restored")
}

func (d *TransitionDetector) reset(s *frame.Snapshot) {
	d.initialized = true
	d.target = s.Target
	d.targetFrame = s.Frame
	d.targetTime = s.Time
	d.converged = s.Weights[s.Target] >= d.convergeAt
	d.interacting = s.Activity > d.activityThreshold
}
