package telemetry

import (
	"github.com/pthm-cable/particlemorph/frame"
	"github.com/pthm-cable/particlemorph/shape"
)

// FrameRecord is one sampled frame snapshot, flattened for CSV.
type FrameRecord struct {
	SessionID string  `csv:"session_id"`
	Frame     uint64  `csv:"frame"`
	TimeSec   float64 `csv:"time_sec"`
	Target    string  `csv:"target"`
	Dominant  string  `csv:"dominant"`
	WSphere   float64 `csv:"w_sphere"`
	WHeart    float64 `csv:"w_heart"`
	WRose     float64 `csv:"w_rose"`
	WText1    float64 `csv:"w_text1"`
	WText2    float64 `csv:"w_text2"`
	PointX    float64 `csv:"point_x"`
	PointY    float64 `csv:"point_y"`
	PointZ    float64 `csv:"point_z"`
	Activity  float64 `csv:"activity"`
	Visible   float64 `csv:"visible"`
}

// NewFrameRecord flattens a snapshot.
func NewFrameRecord(sessionID string, s frame.Snapshot) FrameRecord {
	w := s.Weights
	return FrameRecord{
		SessionID: sessionID,
		Frame:     s.Frame,
		TimeSec:   s.Time,
		Target:    s.Target.String(),
		Dominant:  w.Dominant().String(),
		WSphere:   w[shape.Sphere],
		WHeart:    w[shape.Heart],
		WRose:     w[shape.Rose],
		WText1:    w[shape.ShortText],
		WText2:    w[shape.LongText],
		PointX:    s.Point.X,
		PointY:    s.Point.Y,
		PointZ:    s.Point.Z,
		Activity:  s.Activity,
		Visible:   s.Visible,
	}
}
