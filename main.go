package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlemorph/config"
	"github.com/pthm-cable/particlemorph/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	landmarks := flag.String("landmarks", "", "JSON-lines hand landmark stream (\"-\" = stdin)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config value, then time-based)")
	maxFrames := flag.Uint64("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Particles.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:          rngSeed,
		OutputDir:     *outputDir,
		LandmarksPath: *landmarks,
		Headless:      *headless,
		LogStats:      *logStats,
	}

	if *headless {
		// Headless mode - evaluator and vertex pass only, no window
		g, err := game.NewGameWithOptions(cfg, opts)
		if err != nil {
			slog.Error("failed to start session", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless session", "seed", rngSeed, "max_frames", *maxFrames)

		for {
			if err := g.UpdateHeadless(); err != nil {
				slog.Error("session failed", "error", err)
				g.Unload()
				os.Exit(1)
			}
			if *maxFrames > 0 && g.Frame() >= *maxFrames {
				s := g.Snapshot()
				slog.Info("max frames reached", "frame", s.Frame, "target", s.Target.String(), "dominant", s.Weights.Dominant().String())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Particle Morph")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			slog.Error("session failed", "error", err)
			return
		}
		g.Draw()

		if *maxFrames > 0 && g.Frame() >= *maxFrames {
			break
		}
	}
}
