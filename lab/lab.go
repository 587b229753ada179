// Package lab wires one bench scene together: the beaker simulation, its
// solution chemistry, the transient dropper and bubble effects, and the
// raylib frontend that draws and drives it all. A Lab also runs headless
// for batch telemetry and parameter tuning.
package lab

import (
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/chemlab/beaker"
	"github.com/pthm-cable/chemlab/camera"
	"github.com/pthm-cable/chemlab/chem"
	"github.com/pthm-cable/chemlab/components"
	"github.com/pthm-cable/chemlab/config"
	"github.com/pthm-cable/chemlab/renderer"
	"github.com/pthm-cable/chemlab/telemetry"
	"github.com/pthm-cable/chemlab/ui"
)

// Options configures a Lab instance.
type Options struct {
	Config *config.Config // nil loads the embedded defaults
	Seed   int64          // 0 seeds from the clock

	Headless bool // skip all rendering setup
	Demo     bool // run the scripted drop/pour/swirl sequence

	LogStats       bool  // log window stats to slog on each flush
	StepsPerUpdate int   // simulation ticks per frame, clamped to 1..10
	MaxTicks       int64 // Done() reports true past this tick; 0 runs forever

	// OutputDir enables CSV telemetry output when non-empty.
	OutputDir string

	// StatsCallback receives each flushed stats window.
	StatsCallback func(telemetry.WindowStats)

	// LogWriter redirects Logf output when non-nil.
	LogWriter io.Writer
}

// Lab holds the complete bench state.
type Lab struct {
	cfg   *config.Config
	rng   *rand.Rand
	world *ecs.World

	// Transient effect entities, in beaker-local coordinates
	dropletMapper *ecs.Map3[components.Position, components.Velocity, components.Droplet]
	dropletFilter *ecs.Filter3[components.Position, components.Velocity, components.Droplet]
	bubbleMapper  *ecs.Map2[components.Position, components.Bubble]
	bubbleFilter  *ecs.Filter2[components.Position, components.Bubble]
	rippleMapper  *ecs.Map2[components.Position, components.Ripple]
	rippleFilter  *ecs.Filter2[components.Position, components.Ripple]

	// Simulation
	chem   *chem.Solution
	mgr    *beaker.Manager
	powder *beaker.PowderSim
	frame  beaker.Frame
	demo   *demoScript

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	perf          *PerfStats
	statsCallback func(telemetry.WindowStats)
	logStats      bool

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int
	maxTicks       int64
	headless       bool
	bubbleAccum    float32
	configError    string

	// Rendering
	camera          *camera.Camera
	view            *renderer.View
	scene           *renderer.SceneRenderer
	water           *renderer.WaterRenderer
	fieldOverlay    *renderer.FieldOverlayRenderer
	plumeRenderer   *renderer.PlumeRenderer
	powderRenderer  *renderer.PowderRenderer
	effectsRenderer *renderer.EffectsRenderer
	debugRenderer   *renderer.DebugRenderer

	// UI
	overlays      *ui.OverlayRegistry
	hud           *ui.HUD
	solutionPanel *ui.SolutionPanel
	perfPanel     *ui.PerfPanel
	controlsPanel *ui.ControlsPanel
	tuningPanel   *ui.TuningPanel

	// Sprite scratch buffers, reused across frames
	droplets []renderer.DropletSprite
	bubbles  []renderer.BubbleSprite
	ripples  []renderer.RippleSprite

	screenWidth, screenHeight float32
}

// New creates a lab from the given options.
func New(opts Options) (*Lab, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.Default()
		if err != nil {
			return nil, err
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	if steps > 10 {
		steps = 10
	}

	world := ecs.NewWorld()

	l := &Lab{
		cfg:            cfg,
		rng:            rng,
		world:          &world,
		stepsPerUpdate: steps,
		maxTicks:       opts.MaxTicks,
		headless:       opts.Headless,
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
		perf:           NewPerfStats(),
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}

	l.dropletMapper = ecs.NewMap3[components.Position, components.Velocity, components.Droplet](l.world)
	l.dropletFilter = ecs.NewFilter3[components.Position, components.Velocity, components.Droplet](l.world)
	l.bubbleMapper = ecs.NewMap2[components.Position, components.Bubble](l.world)
	l.bubbleFilter = ecs.NewFilter2[components.Position, components.Bubble](l.world)
	l.rippleMapper = ecs.NewMap2[components.Position, components.Ripple](l.world)
	l.rippleFilter = ecs.NewFilter2[components.Position, components.Ripple](l.world)

	l.frame = beaker.Frame{
		Center: beaker.Vec3{
			X: float32(cfg.Beaker.WorldX),
			Y: float32(cfg.Beaker.WorldY),
			Z: float32(cfg.Beaker.WorldZ),
		},
		Yaw: float32(cfg.Beaker.Yaw),
	}

	l.chem = chem.NewSolution(cfg.Chem)
	l.mgr = beaker.NewManager(cfg, l.frame, l.chem, rng)
	l.powder = beaker.NewPowderSim(cfg, rng, l.chem)
	l.powder.SetDiffusionManager(l.mgr)

	l.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32)
	l.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	l.outputManager = output
	if output != nil {
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
	}

	if opts.Demo {
		l.demo = newDemoScript()
	}
	if opts.LogWriter != nil {
		SetLogWriter(opts.LogWriter)
	}

	if !opts.Headless {
		l.initFrontend()
	}

	return l, nil
}

// initFrontend builds the camera, renderers, and UI panels. The heavyweight
// GPU resources load lazily on first draw, after the window exists.
func (l *Lab) initFrontend() {
	cfg := l.cfg
	w := l.screenWidth
	h := l.screenHeight

	l.camera = camera.New(w, h, w, h)
	l.view = renderer.NewView(l.camera, cfg.Derived.SurfaceY32)

	l.scene = renderer.NewSceneRenderer()
	l.water = renderer.NewWaterRenderer(int32(w), int32(h))
	l.fieldOverlay = renderer.NewFieldOverlayRenderer()
	l.plumeRenderer = renderer.NewPlumeRenderer()
	l.powderRenderer = renderer.NewPowderRenderer()
	l.effectsRenderer = renderer.NewEffectsRenderer()
	l.debugRenderer = renderer.NewDebugRenderer()

	l.overlays = ui.NewOverlayRegistry()
	l.hud = ui.NewHUD()
	l.controlsPanel = ui.NewControlsPanel(10, 150, 220)
	l.tuningPanel = ui.NewTuningPanel(240, 150, 300, cfg.Plume, cfg.PlumeStyle)
	l.solutionPanel = ui.NewSolutionPanel(int32(w)-230, 10, 220)
	l.perfPanel = ui.NewPerfPanel(int32(w)-230, 170)
}

// Update runs one frame worth of input handling and simulation.
func (l *Lab) Update() {
	l.handleInput()

	if l.paused {
		return
	}

	for i := 0; i < l.stepsPerUpdate; i++ {
		l.simulationStep()
	}
}

// UpdateHeadless runs a single simulation tick with no input handling.
func (l *Lab) UpdateHeadless() {
	l.simulationStep()
}

// simulationStep advances the bench by one tick.
func (l *Lab) simulationStep() {
	dt := l.cfg.Derived.DT32

	l.perfCollector.StartTick()

	if l.demo != nil {
		l.demo.update(l, dt)
	}

	// 1. Transient effects: droplets, bubbles, ripples
	l.perfCollector.StartPhase(telemetry.PhaseEffects)
	start := time.Now()
	l.updateDroplets(dt)
	l.updateBubbles(dt)
	l.updateRipples(dt)
	l.perf.Record("effects", time.Since(start))

	// 2. Powder grains: fall, settle, swirl, dissolve
	l.perfCollector.StartPhase(telemetry.PhasePowder)
	start = time.Now()
	l.powder.Update(dt)
	if l.powder.BurstsThisTick > 0 {
		l.collector.RecordBursts(l.powder.BurstsThisTick)
		l.writeEvent(telemetry.EventBurst, l.powder.LastBurstX, l.powder.LastBurstZ, float64(l.cfg.Powder.PlumeBurstCount))
	}
	if l.powder.DissolvedThisTick > 0 {
		l.chem.DissolveAcid(l.powder.DissolvedThisTick)
		l.collector.RecordDissolved(float64(l.powder.DissolvedThisTick))
	}
	if l.powder.HiddenThisTick > 0 {
		l.writeEvent(telemetry.EventDissolved, 0, 0,
			float64(l.powder.HiddenThisTick)*l.cfg.Powder.DissolveMass)
	}
	l.perf.Record("powder", time.Since(start))

	// 3. Indicator field diffusion
	l.perfCollector.StartPhase(telemetry.PhaseField)
	start = time.Now()
	l.mgr.Step(dt)
	l.perf.Record("field", time.Since(start))

	// 4. Plume particles
	l.perfCollector.StartPhase(telemetry.PhasePlume)
	start = time.Now()
	l.mgr.Update(dt)
	ps := l.mgr.Plume()
	if ps.SpawnedThisTick > 0 {
		l.collector.RecordSpawned(ps.SpawnedThisTick)
	}
	if ps.SuppressedGlobalThisTick > 0 || ps.SuppressedLocalThisTick > 0 {
		l.collector.RecordSuppressed(ps.SuppressedGlobalThisTick, ps.SuppressedLocalThisTick)
	}
	l.perf.Record("plume", time.Since(start))

	// 5. Solution chemistry
	l.perfCollector.StartPhase(telemetry.PhaseChem)
	start = time.Now()
	l.chem.Step(dt)
	l.perf.Record("chem", time.Since(start))

	// 6. Telemetry window
	l.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	start = time.Now()
	l.collector.ObserveConcentration(float64(l.mgr.GlobalConcentration()))
	l.flushTelemetry()
	l.perf.Record("telemetry", time.Since(start))

	l.perfCollector.EndTick()
	l.tick++
}

// DropIndicator releases one indicator drop from the dropper nozzle.
func (l *Lab) DropIndicator() {
	jx := (l.rng.Float32()*2 - 1) * dropperJitter
	jz := (l.rng.Float32()*2 - 1) * dropperJitter

	pos := components.Position{
		X: jx,
		Y: l.cfg.Derived.SurfaceY32 + float32(l.cfg.Effects.DropperHeight),
		Z: jz,
	}
	vel := components.Velocity{}
	drop := components.Droplet{
		R: dropletColorR, G: dropletColorG, B: dropletColorB,
		Radius: float32(l.cfg.Effects.DropletRadius),
	}
	l.dropletMapper.NewEntity(&pos, &vel, &drop)
}

// PourPowder tips a fresh batch of powder in above the beaker center.
func (l *Lab) PourPowder() {
	spawn := l.frame.LocalToWorld(beaker.Vec3{
		Y: l.cfg.Derived.SurfaceY32 + float32(l.cfg.Effects.DropperHeight),
	})

	batch := l.powder.SpawnAt(spawn, beaker.PowderSpawnOpts{
		OnEnterWater: func() {
			l.spawnRipple(0, 0)
			l.writeEvent(telemetry.EventPour, 0, 0, float64(l.cfg.Powder.GrainCount))
		},
	})
	if batch == nil {
		return
	}
	l.collector.RecordPour()
}

// ToggleSwirl starts a dissolving stir, or stops the one in progress.
func (l *Lab) ToggleSwirl() {
	if l.powder.Swirling() {
		l.powder.StopSwirl()
		l.writeEvent(telemetry.EventSwirlStop, 0, 0, 0)
		return
	}

	demo := l.cfg.Demo
	ok := l.powder.StartSwirl(beaker.SwirlOpts{
		Duration:        float32(demo.SwirlDurationSec),
		Strength:        float32(demo.SwirlStrength),
		Inward:          float32(demo.SwirlInward),
		Drag:            float32(demo.SwirlDrag),
		Dissolve:        true,
		DissolveSeconds: float32(demo.DissolveDurationSec),
	})
	if ok {
		l.collector.RecordSwirl()
		l.writeEvent(telemetry.EventSwirlStart, 0, 0, float64(demo.SwirlDurationSec))
		// Starting a stir fades the bottom plumes already rising.
		l.writeEvent(telemetry.EventFade, 0, 0, float64(demo.SwirlDurationSec))
	}
}

// ResetSim returns the bench to clean water.
func (l *Lab) ResetSim() {
	l.chem.Reset()
	l.mgr.Reset()
	l.powder.Clear()
	l.clearEffects()
	l.bubbleAccum = 0
	l.configError = ""
}

// Tick returns the current simulation tick.
func (l *Lab) Tick() int32 {
	return l.tick
}

// Done reports whether the tick limit has been reached.
func (l *Lab) Done() bool {
	return l.maxTicks > 0 && int64(l.tick) >= l.maxTicks
}

// DemoDone reports whether the scripted sequence has finished. A lab
// without a demo script counts as finished.
func (l *Lab) DemoDone() bool {
	return l.demo == nil || l.demo.done()
}

// Unload releases GPU resources and closes telemetry output.
func (l *Lab) Unload() {
	if l.water != nil {
		l.water.Unload()
	}
	if l.fieldOverlay != nil {
		l.fieldOverlay.Unload()
	}
	l.mgr.Dispose()

	if l.outputManager != nil {
		if err := l.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
