package gesture

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/signal"
)

// Record is one line of a landmark stream. An empty or missing hand means
// nothing is tracked.
type Record struct {
	Hand []Landmark `json:"hand"`
}

// Status is the latest classification, for display.
type Status struct {
	Tracking bool
	Kind     Kind
	Frames   uint64
}

// Stream reads JSON-lines landmark records and publishes selections and
// interaction samples.
type Stream struct {
	gesture config.GestureConfig
	pointer config.PointerConfig
	inputs  *signal.Inputs

	// Status is updated after every record.
	Status signal.Latest[Status]

	last   Kind
	frames uint64
}

// NewStream creates a stream producer writing into inputs.
func NewStream(cfg *config.Config, inputs *signal.Inputs) *Stream {
	return &Stream{
		gesture: cfg.Gesture,
		pointer: cfg.Pointer,
		inputs:  inputs,
	}
}

// Apply classifies one record and publishes the result. A shape selection is
// only posted when the recognized pose changes.
func (s *Stream) Apply(rec Record) {
	s.frames++
	if len(rec.Hand) == 0 {
		prev := s.inputs.LastInteraction()
		s.inputs.PostInteraction(prev.Point, false)
		s.last = None
		s.Status.Post(Status{Frames: s.frames})
		return
	}

	if p, ok := InteractionPoint(rec.Hand, s.pointer, s.gesture.Mirror); ok {
		s.inputs.PostInteraction(p, true)
	}

	kind := Classify(rec.Hand, s.gesture)
	if kind != s.last {
		if id, ok := kind.Shape(); ok {
			s.inputs.SelectShape(id)
		}
		s.last = kind
	}
	s.Status.Post(Status{Tracking: true, Kind: kind, Frames: s.frames})
}

// Run reads records from r until EOF or ctx is done. Malformed lines are
// logged and skipped. Intended to run on its own goroutine; a blocked read
// is only noticed as cancelled once the next line arrives.
func (s *Stream) Run(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		data := sc.Bytes()
		if len(data) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			slog.Warn("skipping malformed landmark record", "line", line, "error", err)
			continue
		}
		s.Apply(rec)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading landmark stream: %w", err)
	}
	return nil
}
