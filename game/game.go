// Package game wires the particle cloud session together: shape loading,
// input sources, per-frame evaluation, rendering and telemetry.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/pthm-cable/particlemorph/camera"
	"github.com/pthm-cable/particlemorph/cloud"
	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/frame"
	"github.com/pthm-cable/particlemorph/gesture"
	"github.com/pthm-cable/particlemorph/renderer"
	"github.com/pthm-cable/particlemorph/shape"
	"github.com/pthm-cable/particlemorph/signal"
	"github.com/pthm-cable/particlemorph/telemetry"
	"github.com/pthm-cable/particlemorph/ui"
)

// convergeAt is the target weight at which a transition counts as converged.
const convergeAt = 0.99

// Options configures a session.
type Options struct {
	Seed          int64
	OutputDir     string // empty = no CSV output
	LandmarksPath string // JSON-lines hand landmarks; "-" reads stdin
	Headless      bool
	LogStats      bool
}

// Game holds the session state.
type Game struct {
	cfg       *config.Config
	opts      Options
	sessionID string

	ctx    context.Context
	cancel context.CancelFunc

	// Shape data
	loading  <-chan shape.LoadResult
	registry *shape.Registry
	cloud    *cloud.Cloud
	loadErr  error

	// Per-frame state
	inputs    *signal.Inputs
	evaluator *frame.Evaluator
	contract  frame.Contract
	snapshot  frame.Snapshot
	tau       float64

	// Input sources
	stream        *gesture.Stream
	pointerActive bool

	// Graphics
	camera    *camera.Camera
	points    *renderer.PointRenderer
	hud       *ui.HUD
	shapeBar  *ui.ShapeBar
	perfPanel *ui.PerfPanel
	showHUD   bool
	showPerf  bool

	// Telemetry
	perf          *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	transitions   *telemetry.TransitionDetector
	lastPerfLog   float64
}

// NewGameWithOptions creates a session and starts sampling shapes in the
// background. In graphics mode the raylib window must already be open.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	ctx, cancel := context.WithCancel(context.Background())

	g := &Game{
		cfg:       cfg,
		opts:      opts,
		sessionID: uuid.NewString(),
		ctx:       ctx,
		cancel:    cancel,
		inputs:    &signal.Inputs{},
		contract:  frame.NewContract(cfg),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		showHUD:   true,
	}
	g.evaluator = frame.NewEvaluator(cfg, g.inputs)
	g.snapshot = g.evaluator.Last()
	g.transitions = telemetry.NewTransitionDetector(g.sessionID, convergeAt, cfg.Interaction.ActivityThreshold)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		g.outputManager = om
		slog.Info("output enabled", "dir", opts.OutputDir)
	}

	if !opts.Headless {
		g.camera = camera.New(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()), cfg.Camera)
		g.points = renderer.NewPointRenderer(cfg, g.contract)
		g.hud = ui.NewHUD()
		g.shapeBar = ui.NewShapeBar()
		g.perfPanel = ui.NewPerfPanel(perfPanelPos(int32(rl.GetScreenHeight())))
	} else {
		// Nothing to press Space in a headless run.
		g.evaluator.Start()
	}

	if opts.LandmarksPath != "" {
		if err := g.startLandmarks(opts.LandmarksPath); err != nil {
			g.Unload()
			return nil, err
		}
	}

	g.loading = shape.LoadAsync(ctx, cfg, opts.Seed)

	slog.Info("session started",
		"session", g.sessionID,
		"seed", opts.Seed,
		"particles", humanize.Comma(int64(cfg.Particles.Count)),
		"initial_shape", g.snapshot.Target.String(),
		"headless", opts.Headless,
	)
	return g, nil
}

// startLandmarks runs the gesture stream on its own goroutine until the
// session context is cancelled or the reader is exhausted.
func (g *Game) startLandmarks(path string) error {
	var r io.ReadCloser = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening landmark stream: %w", err)
		}
		r = f
	}

	g.stream = gesture.NewStream(g.cfg, g.inputs)
	go func() {
		if path != "-" {
			defer r.Close()
		}
		err := g.stream.Run(g.ctx, r)
		switch {
		case err == nil:
			slog.Info("landmark stream ended", "path", path)
		case errors.Is(err, context.Canceled):
		default:
			slog.Error("landmark stream failed", "path", path, "error", err)
		}
	}()
	slog.Info("landmark stream attached", "path", path)
	return nil
}

// pollRegistry picks up the shape registry once the background build has
// published it. With wait set it blocks until then.
func (g *Game) pollRegistry(wait bool) error {
	if g.cloud != nil || g.loadErr != nil {
		return g.loadErr
	}

	var res shape.LoadResult
	if wait {
		res = <-g.loading
	} else {
		select {
		case res = <-g.loading:
		default:
			return nil
		}
	}

	if res.Err != nil {
		g.loadErr = fmt.Errorf("sampling shapes: %w", res.Err)
		return g.loadErr
	}
	c, err := cloud.New(res.Registry, g.contract)
	if err != nil {
		g.loadErr = err
		return err
	}
	g.registry = res.Registry
	g.cloud = c

	candidates := make([]any, 0, 2*shape.Count)
	for _, id := range shape.All() {
		candidates = append(candidates, id.String(), humanize.Comma(int64(res.Registry.Candidates(id))))
	}
	slog.Info("shapes ready",
		"particles", humanize.Comma(int64(res.Registry.Len())),
		"buffers", humanize.Bytes(res.Registry.SizeBytes()),
		slog.Group("candidates", candidates...),
	)
	return nil
}

// Ready reports whether the particle buffers are available.
func (g *Game) Ready() bool {
	return g.cloud != nil
}

// step runs one frame of evaluation: signals, morph and interaction, then
// the vertex pass when the cloud exists.
func (g *Game) step(dt float64) {
	g.perf.StartPhase(telemetry.PhaseEvaluate)
	g.tau += dt
	g.snapshot = g.evaluator.Step(g.tau, dt)

	g.perf.StartPhase(telemetry.PhaseVertices)
	if g.cloud != nil {
		g.cloud.Evaluate(&g.snapshot)
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.recordFrame()
}

// Update advances one graphics frame. Returns an error if shape sampling
// failed; the session cannot continue without buffers.
func (g *Game) Update() error {
	g.perf.StartFrame()
	g.perf.StartPhase(telemetry.PhaseSignals)

	if err := g.pollRegistry(false); err != nil {
		return err
	}
	g.handleResize()
	g.handleInput()

	g.step(float64(rl.GetFrameTime()))
	return nil
}

// UpdateHeadless advances one fixed-step frame without graphics. The first
// call blocks until the shape buffers are ready so runs are reproducible.
func (g *Game) UpdateHeadless() error {
	g.perf.StartFrame()
	g.perf.StartPhase(telemetry.PhaseSignals)

	if err := g.pollRegistry(true); err != nil {
		return err
	}

	g.step(g.cfg.Derived.DT)
	g.perf.EndFrame()
	g.flushPerf()
	return nil
}

// Draw renders the current snapshot. Call after Update.
func (g *Game) Draw() {
	g.perf.StartPhase(telemetry.PhaseDraw)

	rl.BeginDrawing()
	g.points.Clear()

	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	if g.cloud == nil {
		g.hud.DrawCentered(w, h, "Sampling shapes...", 24, rl.LightGray)
		rl.EndDrawing()
		g.perf.EndFrame()
		return
	}

	pr := g.camera.Projector()
	g.points.Draw(g.cloud, &pr, &g.snapshot)

	if !g.evaluator.Started() {
		g.hud.DrawCentered(w, h, "Press Space or click to start", 24, rl.RayWhite)
	}

	if g.showHUD {
		g.hud.Draw(g.hudData(w, h))
		if id, ok := g.shapeBar.Draw(w, h, g.snapshot.Target); ok {
			g.inputs.SelectShape(id)
		}
		g.hud.DrawControls(h, "[1-5] shape  [drag] repel  [right drag] orbit  [wheel] zoom  [R] restart  [H] HUD  [P] perf")
	}
	if g.showPerf {
		stats := g.perf.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{PhaseTimes: stats.PhaseAvg, Total: stats.AvgFrameDuration}, telemetry.PhaseOrder())
	}

	rl.EndDrawing()
	g.perf.RecordPresent()
	g.perf.EndFrame()
	g.flushPerf()
}

// perfPanelPos anchors the perf panel bottom-left, above the control legend.
func perfPanelPos(screenHeight int32) (x, y int32) {
	return 10, screenHeight - 140
}

func (g *Game) hudData(w, h int32) ui.HUDData {
	s := &g.snapshot
	col := g.contract.Color(s.Weights).RGBA(1)
	data := ui.HUDData{
		Title:        "Particle Morph",
		SessionID:    g.sessionID,
		Frame:        s.Frame,
		FPS:          rl.GetFPS(),
		Started:      g.evaluator.Started(),
		Target:       s.Target,
		Weights:      s.Weights,
		Color:        rl.Color{R: col.R, G: col.G, B: col.B, A: 255},
		PointX:       s.Point.X,
		PointY:       s.Point.Y,
		Activity:     s.Activity,
		Input:        g.inputLabel(),
		ScreenWidth:  w,
		ScreenHeight: h,
	}
	if g.registry != nil {
		data.Particles = g.registry.Len()
		data.BufferBytes = g.registry.SizeBytes()
	}
	return data
}

// inputLabel names what is currently driving the interaction point.
func (g *Game) inputLabel() string {
	if g.pointerActive {
		return "mouse"
	}
	if g.stream != nil {
		if st, ok := g.stream.Status.Peek(); ok {
			if st.Tracking {
				return "hand: " + st.Kind.String()
			}
			return "hand: none"
		}
	}
	return "idle"
}

// Restart restores the session defaults without reloading shape buffers.
func (g *Game) Restart() {
	g.evaluator.Reset()
	g.tau = 0
	g.lastPerfLog = 0
	g.pointerActive = false
	g.snapshot = g.evaluator.Last()

	t := g.transitions.Restart(g.snapshot)
	t.LogTransition()
	g.writeTransitions([]telemetry.Transition{t})
}

// Snapshot returns the most recent frame snapshot.
func (g *Game) Snapshot() frame.Snapshot {
	return g.snapshot
}

// Frame returns the number of frames evaluated in the current session.
func (g *Game) Frame() uint64 {
	return g.snapshot.Frame
}

// SessionID returns the session identifier attached to logs and CSV rows.
func (g *Game) SessionID() string {
	return g.sessionID
}

// Unload stops background work and flushes output.
func (g *Game) Unload() {
	g.cancel()
	if g.cloud != nil {
		g.cloud.Close()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}
