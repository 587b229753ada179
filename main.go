package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/config"
	"github.com/pthm-cable/chemlab/lab"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	demo := flag.Bool("demo", false, "Run the scripted drop/pour/swirl sequence")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config before anything else
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Use config stats window unless overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := lab.Options{
		Config:         cfg,
		Seed:           rngSeed,
		Headless:       *headless,
		Demo:           *demo,
		LogStats:       *logStats,
		StepsPerUpdate: *stepsPerUpdate,
		MaxTicks:       *maxTicks,
		OutputDir:      *outputDir,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		l, err := lab.New(opts)
		if err != nil {
			slog.Error("failed to create lab", "error", err)
			os.Exit(1)
		}
		defer l.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"demo", *demo,
			"max_ticks", *maxTicks,
		)

		for !l.Done() {
			l.UpdateHeadless()
		}
		slog.Info("max ticks reached", "tick", l.Tick())
	} else {
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Chem Lab")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		l, err := lab.New(opts)
		if err != nil {
			slog.Error("failed to create lab", "error", err)
			os.Exit(1)
		}
		defer l.Unload()

		for !rl.WindowShouldClose() {
			l.Update()
			l.Draw()

			if l.Done() {
				break
			}
		}
	}
}
