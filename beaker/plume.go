package beaker

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/pthm-cable/chemlab/config"
)

// Spawn placement, as fractions of beaker geometry.
const (
	spawnJitterFrac = 0.06 // horizontal scatter around the request point
	bottomBandFrac  = 0.12 // bottom spawns sit this deep above the floor
	surfaceSinkFrac = 0.02 // surface spawns start just under the surface
	surfaceBandFrac = 0.10 // and scatter this far down
)

// Motion constants. Units are beaker-local lengths and seconds.
const (
	buoyancyAccel   = 0.22 // upward lift on dye
	thermalJitter   = 0.35 // random horizontal acceleration
	velocityDamping = 1.6  // exponential damping rate, 1/s
	driftSpeed      = 0.03 // per-particle wander velocity
	spawnVelXZ      = 0.05
	bottomRiseVel   = 0.18
	surfaceSinkVel  = 0.04
	ageSpreadExp    = 1.15 // outward spread ramps in late in life
)

// Crowding suppression thresholds.
const (
	crowdedFraction   = 0.85 // of MaxActive
	crowdedSkipChance = 0.5
)

// spawnRequest is one queued emission. The drain loop consumes one count per
// budget unit whether or not the resulting spawn is suppressed, so a crowded
// beaker shortens bursts instead of stalling the queue behind them.
type spawnRequest struct {
	x, z      float32
	remaining int
	bottom    bool
	gated     bool

	// Style overrides captured at enqueue time. Zero values inherit the
	// system style at spawn.
	hasColor   bool
	r, g, b    float32
	opacity    float32
	saturation float32
	brightness float32
}

// BottomSourceOpts adjusts one bottom emission request. The zero value gives
// an ungated burst in the current style: bottom plumes stay visible if the
// indicator toggle drops mid-flight, so producers decide up front whether to
// emit at all. RespectIndicator opts back into gating instead.
type BottomSourceOpts struct {
	RespectIndicator bool

	// HasColor overrides the dye color for this burst.
	HasColor bool
	R, G, B  float32

	// Per-burst style overrides; values <= 0 inherit the system style.
	Opacity    float32
	Saturation float32
	Brightness float32
}

// PlumeStats is a snapshot of pool health for HUDs and telemetry.
type PlumeStats struct {
	Active     int
	Free       int
	QueueDepth int
	Config     config.PlumeConfig
}

// PlumeSystem simulates buoyant dye plumes inside one beaker. Particle state
// lives in parallel arrays indexed by slot; ActiveList holds the live slots
// and FreeList the reusable ones. All positions are beaker-local.
type PlumeSystem struct {
	X, Y, Z        []float32
	VX, VY, VZ     []float32
	DriftX, DriftZ []float32 // constant per-particle wander
	OutX, OutZ     []float32 // unit radial direction fixed at spawn
	Life           []float32 // 1 at spawn, monotonically down to 0
	R, G, B        []float32
	Alpha          []float32 // style opacity baked at spawn
	FadeElapsed    []float32
	FadeDuration   []float32 // 0 = no forced fade
	Gated          []bool    // hidden while the indicator is off
	Active         []bool

	Count      int
	MaxCount   int
	FreeList   []int
	ActiveList []int

	// Per-update accounting, reset at the top of every Update.
	SpawnedThisTick          int
	SuppressedGlobalThisTick int
	SuppressedLocalThisTick  int

	cfg   config.PlumeConfig
	style PlumeStyle

	radius      float32
	clampRadius float32
	surfaceY    float32
	bottomY     float32

	bottomDisabled bool
	bottomOffsetX  float32
	bottomOffsetZ  float32

	queue      []spawnRequest
	spawnAccum float32

	grid *DensityGrid
	rng  *rand.Rand

	disposed bool
}

// NewPlumeSystem creates a plume pool sized by cfg.Plume.Capacity.
func NewPlumeSystem(cfg *config.Config, rng *rand.Rand) *PlumeSystem {
	n := cfg.Plume.Capacity
	radius := cfg.Derived.Radius32

	ps := &PlumeSystem{
		X: make([]float32, n), Y: make([]float32, n), Z: make([]float32, n),
		VX: make([]float32, n), VY: make([]float32, n), VZ: make([]float32, n),
		DriftX: make([]float32, n), DriftZ: make([]float32, n),
		OutX: make([]float32, n), OutZ: make([]float32, n),
		Life:         make([]float32, n),
		R:            make([]float32, n),
		G:            make([]float32, n),
		B:            make([]float32, n),
		Alpha:        make([]float32, n),
		FadeElapsed:  make([]float32, n),
		FadeDuration: make([]float32, n),
		Gated:        make([]bool, n),
		Active:       make([]bool, n),

		MaxCount:   n,
		FreeList:   make([]int, 0, n),
		ActiveList: make([]int, 0, n),

		cfg:   cfg.Plume,
		style: StyleFromConfig(cfg.PlumeStyle),

		radius:      radius,
		clampRadius: cfg.Derived.ClampRadius,
		surfaceY:    cfg.Derived.SurfaceY32,
		bottomY:     cfg.Derived.BottomY32,

		grid: NewDensityGrid(radius, float32(cfg.Plume.DensityCellSize)),
		rng:  rng,
	}
	return ps
}

// SetConfig replaces the plume configuration after validating it. The pool
// capacity is fixed at construction, so a new MaxActive must still fit.
func (ps *PlumeSystem) SetConfig(cfg config.PlumeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.MaxActive > ps.MaxCount {
		return fmt.Errorf("plume: max_active %d exceeds pool capacity %d", cfg.MaxActive, ps.MaxCount)
	}
	if float32(cfg.DensityCellSize) != ps.grid.CellSize() {
		ps.grid.Resize(ps.radius, float32(cfg.DensityCellSize))
	}
	ps.cfg = cfg
	return nil
}

// Config returns the active plume configuration.
func (ps *PlumeSystem) Config() config.PlumeConfig {
	return ps.cfg
}

// SetStyle replaces the spawn-time style. Live particles keep their baked
// color and alpha.
func (ps *PlumeSystem) SetStyle(style PlumeStyle) {
	ps.style = style
}

// Style returns the current spawn-time style.
func (ps *PlumeSystem) Style() PlumeStyle {
	return ps.style
}

// SetColor overrides the default dye color for future spawns.
func (ps *PlumeSystem) SetColor(r, g, b float32) {
	ps.style.R = clamp01(r)
	ps.style.G = clamp01(g)
	ps.style.B = clamp01(b)
}

// SetSpawnRateMultiplier scales the drain budget without touching the rest
// of the config. Negative values clamp to zero.
func (ps *PlumeSystem) SetSpawnRateMultiplier(m float64) {
	if m < 0 {
		m = 0
	}
	ps.cfg.SpawnRateMultiplier = m
}

// AddSource queues count surface particles around the beaker-local point
// (x, z). Surface plumes are gated by the indicator toggle when the config
// requires it: they keep simulating while hidden.
func (ps *PlumeSystem) AddSource(x, z float32, count int) {
	if ps.disposed || count <= 0 {
		return
	}
	ps.queue = append(ps.queue, spawnRequest{
		x: x, z: z,
		remaining: count,
		gated:     ps.cfg.RequireIndicator,
	})
}

// AddBottomSource queues count particles rising from the floor near the
// beaker-local point (x, z), offset by the configured bottom-source offset.
// Requests are dropped while bottom emission is disabled.
func (ps *PlumeSystem) AddBottomSource(x, z float32, count int, opts BottomSourceOpts) {
	if ps.disposed || count <= 0 || ps.bottomDisabled {
		return
	}
	ps.queue = append(ps.queue, spawnRequest{
		x:         x + ps.bottomOffsetX,
		z:         z + ps.bottomOffsetZ,
		remaining: count,
		bottom:    true,
		gated:     opts.RespectIndicator && ps.cfg.RequireIndicator,

		hasColor: opts.HasColor,
		r:        opts.R, g: opts.G, b: opts.B,
		opacity:    opts.Opacity,
		saturation: opts.Saturation,
		brightness: opts.Brightness,
	})
}

// SetBottomSourceOffset shifts where future bottom requests land, in local
// units. Queued requests keep the offset they were enqueued with.
func (ps *PlumeSystem) SetBottomSourceOffset(x, z float32) {
	ps.bottomOffsetX = x
	ps.bottomOffsetZ = z
}

// BottomSourceOffset returns the local XZ nudge applied to bottom requests.
func (ps *PlumeSystem) BottomSourceOffset() (x, z float32) {
	return ps.bottomOffsetX, ps.bottomOffsetZ
}

// DisableBottomPlumes rejects new bottom-source requests until
// EnableBottomPlumes. Particles already alive keep simulating; queued bottom
// requests are purged only when clearQueued is set.
func (ps *PlumeSystem) DisableBottomPlumes(clearQueued bool) {
	ps.bottomDisabled = true
	if !clearQueued {
		return
	}
	keep := ps.queue[:0]
	for _, req := range ps.queue {
		if !req.bottom {
			keep = append(keep, req)
		}
	}
	ps.queue = keep
	if len(ps.queue) == 0 {
		ps.queue = nil
	}
}

// EnableBottomPlumes lifts the bottom-source lockout.
func (ps *PlumeSystem) EnableBottomPlumes() {
	ps.bottomDisabled = false
}

// BottomPlumesDisabled reports whether bottom emission is currently blocked.
func (ps *PlumeSystem) BottomPlumesDisabled() bool {
	return ps.bottomDisabled
}

// Update advances the plume simulation by dt seconds: rebuild the crowding
// grid, drain the spawn queue, integrate particle motion, then recycle dead
// slots.
func (ps *PlumeSystem) Update(dt float32) {
	if ps.disposed || dt <= 0 {
		return
	}

	ps.SpawnedThisTick = 0
	ps.SuppressedGlobalThisTick = 0
	ps.SuppressedLocalThisTick = 0

	ps.rebuildDensity()
	if ps.cfg.Enabled {
		ps.drainQueue(dt)
	}
	ps.integrate(dt)
	ps.cleanupCompact()
}

// rebuildDensity recounts live particles into the crowding grid.
func (ps *PlumeSystem) rebuildDensity() {
	ps.grid.Clear()
	for _, i := range ps.ActiveList {
		if ps.Active[i] {
			ps.grid.Insert(ps.X[i], ps.Z[i])
		}
	}
}

// drainQueue spends this tick's spawn budget against the queue front.
func (ps *PlumeSystem) drainQueue(dt float32) {
	// Randomizing the budget keeps long bursts from pulsing at a visible
	// period; the accumulator carries fractional spawns across ticks.
	base := float32(ps.cfg.SpawnRate*ps.cfg.SpawnRateMultiplier) * dt
	base *= 0.9 + ps.rng.Float32()*0.2
	ps.spawnAccum += base

	budget := int(ps.spawnAccum)
	ps.spawnAccum -= float32(budget)
	if budget == 0 && len(ps.queue) > 0 {
		// A pending request never sits a whole tick with zero progress.
		budget = 1
	}

	for budget > 0 && len(ps.queue) > 0 {
		req := &ps.queue[0]
		budget--
		req.remaining--

		if !ps.suppressed(req) {
			ps.spawnOne(req)
		}
		if req.remaining <= 0 {
			ps.queue = ps.queue[1:]
		}
	}
	if len(ps.queue) == 0 {
		ps.queue = nil
	}
}

// suppressed decides whether one budget unit is dropped instead of spawned.
func (ps *PlumeSystem) suppressed(req *spawnRequest) bool {
	if ps.Count >= ps.cfg.MaxActive {
		ps.SuppressedGlobalThisTick++
		return true
	}
	if float32(ps.Count) > float32(ps.cfg.MaxActive)*crowdedFraction {
		if ps.rng.Float32() < crowdedSkipChance {
			ps.SuppressedGlobalThisTick++
			return true
		}
	}
	if ps.grid.CountAt(req.x, req.z) > ps.cfg.PerCellCap {
		if ps.rng.Float32() < float32(ps.cfg.SuppressChance) {
			ps.SuppressedLocalThisTick++
			return true
		}
	}
	return false
}

// spawnOne activates a pool slot for the given request.
func (ps *PlumeSystem) spawnOne(req *spawnRequest) {
	var idx int
	switch {
	case len(ps.FreeList) > 0:
		idx = ps.FreeList[len(ps.FreeList)-1]
		ps.FreeList = ps.FreeList[:len(ps.FreeList)-1]
	case ps.Count < ps.MaxCount:
		idx = ps.Count
	default:
		return // pool exhausted
	}

	ang := ps.rng.Float32() * 2 * math32.Pi
	rad := ps.rng.Float32() * spawnJitterFrac * ps.radius
	x := req.x + math32.Cos(ang)*rad
	z := req.z + math32.Sin(ang)*rad

	depth := ps.surfaceY - ps.bottomY
	var y, vy float32
	if req.bottom {
		y = ps.bottomY + ps.rng.Float32()*bottomBandFrac*depth
		vy = bottomRiseVel * (0.7 + ps.rng.Float32()*0.6)
	} else {
		y = ps.surfaceY - surfaceSinkFrac*depth - ps.rng.Float32()*surfaceBandFrac*depth
		vy = -surfaceSinkVel * ps.rng.Float32()
	}

	r, g, b, alpha := ps.resolveRequestStyle(req)

	ps.X[idx], ps.Y[idx], ps.Z[idx] = x, y, z
	ps.VX[idx] = (ps.rng.Float32()*2 - 1) * spawnVelXZ
	ps.VY[idx] = vy
	ps.VZ[idx] = (ps.rng.Float32()*2 - 1) * spawnVelXZ
	ps.DriftX[idx] = (ps.rng.Float32()*2 - 1) * driftSpeed
	ps.DriftZ[idx] = (ps.rng.Float32()*2 - 1) * driftSpeed

	// Radial direction is fixed at spawn so late-life spread pushes each
	// particle consistently outward instead of rescattering every tick.
	ox, oz := x, z
	if d := math32.Hypot(ox, oz); d > 1e-5 {
		ox /= d
		oz /= d
	} else {
		ox, oz = math32.Cos(ang), math32.Sin(ang)
	}
	ps.OutX[idx], ps.OutZ[idx] = ox, oz

	ps.Life[idx] = 1
	ps.R[idx], ps.G[idx], ps.B[idx] = r, g, b
	ps.Alpha[idx] = alpha
	ps.FadeElapsed[idx] = 0
	ps.FadeDuration[idx] = 0
	ps.Gated[idx] = req.gated
	ps.Active[idx] = true
	ps.ActiveList = append(ps.ActiveList, idx)
	ps.Count++
	ps.SpawnedThisTick++
}

// resolveRequestStyle bakes the final particle color and alpha from the
// system style plus any per-request overrides.
func (ps *PlumeSystem) resolveRequestStyle(req *spawnRequest) (r, g, b, alpha float32) {
	r, g, b = ps.style.R, ps.style.G, ps.style.B
	if req.hasColor {
		r, g, b = clamp01(req.r), clamp01(req.g), clamp01(req.b)
	}

	sat := ps.style.Saturation
	if req.saturation > 0 {
		sat = req.saturation
	}
	bri := ps.style.Brightness
	if req.brightness > 0 {
		bri = req.brightness
	}
	r, g, b = adjustColor(r, g, b, sat, bri)

	alpha = ps.style.Opacity
	if req.opacity > 0 {
		alpha = clamp01(req.opacity)
	}
	return r, g, b, alpha
}

// integrate advances particle motion and ages lives.
func (ps *PlumeSystem) integrate(dt float32) {
	damp := math32.Exp(-velocityDamping * dt)
	lifeStep := dt / float32(ps.cfg.LifeSeconds)
	spreadGain := float32(ps.cfg.AgeSpreadStrength)
	clampR2 := ps.clampRadius * ps.clampRadius
	depth := ps.surfaceY - ps.bottomY
	topY := ps.surfaceY - surfaceSinkFrac*depth*0.5

	for _, i := range ps.ActiveList {
		if !ps.Active[i] {
			continue
		}

		ps.VY[i] += buoyancyAccel * dt
		ps.VX[i] += (ps.rng.Float32()*2 - 1) * thermalJitter * dt
		ps.VZ[i] += (ps.rng.Float32()*2 - 1) * thermalJitter * dt

		ps.VX[i] *= damp
		ps.VY[i] *= damp
		ps.VZ[i] *= damp

		age := 1 - ps.Life[i]
		spread := math32.Pow(age, ageSpreadExp) * spreadGain

		ps.X[i] += (ps.VX[i] + ps.DriftX[i] + ps.OutX[i]*spread) * dt
		ps.Y[i] += ps.VY[i] * dt
		ps.Z[i] += (ps.VZ[i] + ps.DriftZ[i] + ps.OutZ[i]*spread) * dt

		// Water column bounds.
		if ps.Y[i] > topY {
			ps.Y[i] = topY
			if ps.VY[i] > 0 {
				ps.VY[i] = 0
			}
		} else if ps.Y[i] < ps.bottomY {
			ps.Y[i] = ps.bottomY
			if ps.VY[i] < 0 {
				ps.VY[i] = 0
			}
		}

		// Radial overflow re-clamps onto the wall cylinder; particles are
		// never culled for touching glass.
		if r2 := ps.X[i]*ps.X[i] + ps.Z[i]*ps.Z[i]; r2 > clampR2 {
			s := ps.clampRadius / math32.Sqrt(r2)
			ps.X[i] *= s
			ps.Z[i] *= s
		}

		ps.Life[i] -= lifeStep
		if ps.FadeDuration[i] > 0 {
			ps.FadeElapsed[i] += dt
			faded := 1 - ps.FadeElapsed[i]/ps.FadeDuration[i]
			if faded < ps.Life[i] {
				ps.Life[i] = faded
			}
		}
		if ps.Life[i] < 0 {
			ps.Life[i] = 0
		}
	}
}

// cleanupCompact recycles dead slots and compacts the active list in place.
func (ps *PlumeSystem) cleanupCompact() {
	for _, i := range ps.ActiveList {
		if ps.Active[i] && ps.Life[i] <= 0 {
			ps.Active[i] = false
			ps.FadeDuration[i] = 0
			ps.FreeList = append(ps.FreeList, i)
			ps.Count--
		}
	}

	writeIdx := 0
	for _, i := range ps.ActiveList {
		if ps.Active[i] {
			ps.ActiveList[writeIdx] = i
			writeIdx++
		}
	}
	ps.ActiveList = ps.ActiveList[:writeIdx]
}

// ClearPlume kills every particle and drops all queued requests.
func (ps *PlumeSystem) ClearPlume() {
	if ps.disposed {
		return
	}
	for _, i := range ps.ActiveList {
		if ps.Active[i] {
			ps.Active[i] = false
			ps.Life[i] = 0
			ps.FadeDuration[i] = 0
			ps.FreeList = append(ps.FreeList, i)
			ps.Count--
		}
	}
	ps.ActiveList = ps.ActiveList[:0]
	ps.queue = nil
	ps.spawnAccum = 0
}

// ClearBottomPlumeParticles kills ungated particles immediately. Bottom
// plumes spawn ungated by default, so this clears the reaction plumes while
// leaving the gated indicator plumes alone.
func (ps *PlumeSystem) ClearBottomPlumeParticles() {
	for _, i := range ps.ActiveList {
		if ps.Active[i] && !ps.Gated[i] {
			ps.Life[i] = 0
		}
	}
	ps.cleanupCompact()
}

// FadeOutBottomPlumes forces ungated particles to die within the given
// duration. Particles already fading out faster keep their shorter fade, and
// gated particles are untouched. A non-positive duration clears immediately.
func (ps *PlumeSystem) FadeOutBottomPlumes(duration float32) {
	if duration <= 0 {
		ps.ClearBottomPlumeParticles()
		return
	}
	for _, i := range ps.ActiveList {
		if !ps.Active[i] || ps.Gated[i] {
			continue
		}
		if ps.FadeDuration[i] > 0 && ps.FadeDuration[i]-ps.FadeElapsed[i] <= duration {
			continue
		}
		ps.FadeDuration[i] = duration
		ps.FadeElapsed[i] = 0
	}
}

// QueueDepth returns the number of pending spawn requests.
func (ps *PlumeSystem) QueueDepth() int {
	return len(ps.queue)
}

// Stats snapshots pool occupancy and the active config.
func (ps *PlumeSystem) Stats() PlumeStats {
	return PlumeStats{
		Active:     ps.Count,
		Free:       ps.MaxCount - ps.Count,
		QueueDepth: len(ps.queue),
		Config:     ps.cfg,
	}
}

// DensityCounts exposes the crowding grid for debug overlays.
func (ps *PlumeSystem) DensityCounts() (counts []int16, side int, cellSize float32) {
	return ps.grid.Counts(), ps.grid.Side(), ps.grid.CellSize()
}

// Dispose releases the particle arrays. A disposed system ignores all calls.
func (ps *PlumeSystem) Dispose() {
	ps.disposed = true
	ps.X, ps.Y, ps.Z = nil, nil, nil
	ps.VX, ps.VY, ps.VZ = nil, nil, nil
	ps.DriftX, ps.DriftZ = nil, nil
	ps.OutX, ps.OutZ = nil, nil
	ps.Life = nil
	ps.R, ps.G, ps.B = nil, nil, nil
	ps.Alpha = nil
	ps.FadeElapsed, ps.FadeDuration = nil, nil
	ps.Gated, ps.Active = nil, nil
	ps.FreeList, ps.ActiveList = nil, nil
	ps.queue = nil
	ps.Count = 0
}
