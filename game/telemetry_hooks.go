package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/particlemorph/telemetry"
)

// recordFrame checks the snapshot for transitions and samples it to CSV.
func (g *Game) recordFrame() {
	s := g.snapshot

	if ts := g.transitions.Check(s); len(ts) > 0 {
		for _, t := range ts {
			t.LogTransition()
		}
		g.writeTransitions(ts)
	}

	if g.outputManager == nil {
		return
	}
	every := uint64(max(g.cfg.Telemetry.FrameSampleEvery, 1))
	if s.Frame%every != 0 {
		return
	}
	if err := g.outputManager.WriteFrame(telemetry.NewFrameRecord(g.sessionID, s)); err != nil {
		slog.Error("failed to write frame", "error", err)
	}
}

func (g *Game) writeTransitions(ts []telemetry.Transition) {
	if g.outputManager == nil {
		return
	}
	if err := g.outputManager.WriteTransitions(ts); err != nil {
		slog.Error("failed to write transitions", "error", err)
	}
}

// flushPerf writes the perf window at its boundary and logs it at most once
// per log interval of session time.
func (g *Game) flushPerf() {
	window := uint64(max(g.cfg.Telemetry.PerfWindow, 1))
	n := g.snapshot.Frame
	if n == 0 || n%window != 0 {
		return
	}

	stats := g.perf.Stats()
	if g.outputManager != nil {
		if err := g.outputManager.WritePerf(stats, g.sessionID, n); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if !g.opts.LogStats {
		return
	}
	interval := time.Duration(g.cfg.Telemetry.LogInterval * float64(time.Second))
	elapsed := time.Duration((g.tau - g.lastPerfLog) * float64(time.Second))
	if g.lastPerfLog == 0 || elapsed >= interval {
		g.lastPerfLog = g.tau
		stats.LogStats()
	}
}
