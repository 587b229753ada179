package beaker

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/pthm-cable/chemlab/config"
)

// Pour placement constants, as fractions of beaker geometry.
const (
	pourScatterFrac = 0.15 // horizontal scatter of the poured grains
	pourHeightBand  = 0.12 // grains start in this band below the pour point
	pourSideVel     = 0.08 // initial horizontal velocity magnitude
)

// swirlPlumeFadeBuffer pads the bottom-plume fade past the swirl itself so
// the last plumes do not vanish mid-stir.
const swirlPlumeFadeBuffer = 0.5

// PowderSpawnOpts places one poured batch of grains. The geometry fields
// override the beaker placement derived from the diffusion manager; zero
// values fall back to the manager's frame and the configured beaker shape.
type PowderSpawnOpts struct {
	CenterWorld   Vec3    // beaker axis position
	BottomYWorld  float32 // rest height for settled grains
	WaterSurfaceY float32 // world Y of the water surface
	BeakerRadius  float32

	// GrainCount overrides the configured grain count when > 0.
	GrainCount int

	// HasColor overrides the configured grain color.
	HasColor bool
	R, G, B  float32

	// OnEnterWater fires once, when the first grain of the batch submerges.
	OnEnterWater func()
}

// SwirlOpts starts a stirring pass over the settled powder.
type SwirlOpts struct {
	Duration  float32 // seconds; <= 0 rejects the swirl
	Strength  float32 // tangential acceleration
	Inward    float32 // pull toward the beaker axis
	Drag      float32 // exponential damping rate, 1/s
	Direction float32 // +1 counter-clockwise, -1 clockwise; 0 defaults to +1

	// Dissolve shrinks the batch away while it swirls and credits its mass
	// to the solution.
	Dissolve        bool
	DissolveSeconds float32 // <= 0 defaults to the swirl duration

	// BottomPlumeFade overrides how long existing bottom plumes take to die
	// when the swirl starts. <= 0 derives Duration plus a small buffer.
	BottomPlumeFade float32
}

// PowderBatch is one poured set of grains, in world coordinates. Grain state
// lives in parallel arrays; a hidden batch keeps its arrays for reuse. The
// beaker geometry is captured at spawn so a batch keeps settling correctly
// even if the bench later moves the beaker frame.
type PowderBatch struct {
	X, Y, Z    []float32
	VX, VY, VZ []float32
	Settled    []bool

	SettledCount int

	// Dropping is true from the pour until enough grains settle or the
	// drop times out. Grains still falling afterwards keep integrating.
	Dropping bool
	DropTime float32

	Swirling  bool
	SwirlTime float32
	swirl     SwirlOpts

	DissolveActive   bool
	DissolveTime     float32
	DissolveDuration float32
	Opacity          float32

	Visible bool

	R, G, B float32

	center      Vec3
	restY       float32
	surfaceY    float32 // world
	clampRadius float32

	enteredWater bool
	onEnterWater func()
}

// Count returns the number of grains in the batch.
func (b *PowderBatch) Count() int {
	return len(b.X)
}

// PowderSim drops, settles, stirs, and dissolves powder batches. Grain
// positions are world-space so a pour can start above the beaker mouth.
// The diffusion manager is an optional collaborator; without it the grains
// still settle but no reaction plumes fire.
type PowderSim struct {
	batches []*PowderBatch

	mgr  *Manager
	chem ChemState
	rng  *rand.Rand

	powder config.PowderConfig

	radius    float32
	wallClamp float32
	surfaceY  float32 // beaker-local
	bottomY   float32 // beaker-local

	plumeAccum float32

	// Per-update accounting, reset at the top of every Update. LastBurstX
	// and LastBurstZ hold the beaker-local origin of the latest burst;
	// HiddenThisTick counts batches that finished dissolving.
	DissolvedThisTick float32
	BurstsThisTick    int
	HiddenThisTick    int
	LastBurstX        float32
	LastBurstZ        float32
}

// NewPowderSim creates an empty powder simulation. The chemistry accessor
// supplies the reaction color for bottom plumes; nil disables them.
func NewPowderSim(cfg *config.Config, rng *rand.Rand, chem ChemState) *PowderSim {
	return &PowderSim{
		chem:      chem,
		rng:       rng,
		powder:    cfg.Powder,
		radius:    cfg.Derived.Radius32,
		wallClamp: float32(cfg.Beaker.WallClamp),
		surfaceY:  cfg.Derived.SurfaceY32,
		bottomY:   cfg.Derived.BottomY32,
	}
}

// SetDiffusionManager injects the plume collaborator that bottom bursts and
// swirl side effects go through.
func (sim *PowderSim) SetDiffusionManager(m *Manager) {
	sim.mgr = m
}

// SetConfig swaps the powder tuning for future batches and triggers.
func (sim *PowderSim) SetConfig(pc config.PowderConfig) {
	sim.powder = pc
}

// Batches exposes the batch list for rendering. Hidden batches are included;
// check Visible.
func (sim *PowderSim) Batches() []*PowderBatch {
	return sim.batches
}

// SpawnAt pours a batch of grains in a band below the given world point.
// Pouring fresh powder re-enables bottom plume emission so the new pile can
// react even after a swirl locked emission out.
func (sim *PowderSim) SpawnAt(world Vec3, opts PowderSpawnOpts) *PowderBatch {
	n := opts.GrainCount
	if n <= 0 {
		n = sim.powder.GrainCount
	}
	if n <= 0 {
		return nil
	}

	b := sim.acquireBatch(n)
	sim.placeBatch(b, opts)

	r, g, bl := grainColor(sim.powder)
	if opts.HasColor {
		r, g, bl = clamp01(opts.R), clamp01(opts.G), clamp01(opts.B)
	}
	b.R, b.G, b.B = r, g, bl

	scatter := pourScatterFrac * sim.radius
	for i := range b.X {
		ang := sim.rng.Float32() * 2 * math32.Pi
		rad := math32.Sqrt(sim.rng.Float32()) * scatter
		b.X[i] = world.X + math32.Cos(ang)*rad
		b.Z[i] = world.Z + math32.Sin(ang)*rad
		b.Y[i] = world.Y - sim.rng.Float32()*pourHeightBand
		b.VX[i] = (sim.rng.Float32()*2 - 1) * pourSideVel
		b.VZ[i] = (sim.rng.Float32()*2 - 1) * pourSideVel
		b.VY[i] = 0
		b.Settled[i] = false
	}

	b.SettledCount = 0
	b.Dropping = true
	b.DropTime = 0
	b.Swirling = false
	b.SwirlTime = 0
	b.DissolveActive = false
	b.DissolveTime = 0
	b.DissolveDuration = 0
	b.Opacity = 1
	b.Visible = true
	b.enteredWater = false
	b.onEnterWater = opts.OnEnterWater

	if sim.mgr != nil {
		sim.mgr.EnableBottomPlumes()
	}
	return b
}

// placeBatch captures the beaker geometry the batch settles against.
func (sim *PowderSim) placeBatch(b *PowderBatch, opts PowderSpawnOpts) {
	frame := sim.frame()
	grainR := float32(sim.powder.GrainRadius)

	b.center = opts.CenterWorld
	if b.center == (Vec3{}) {
		b.center = frame.Center
	}
	b.restY = opts.BottomYWorld
	if b.restY == 0 {
		b.restY = b.center.Y + sim.bottomY + grainR
	}
	b.surfaceY = opts.WaterSurfaceY
	if b.surfaceY == 0 {
		b.surfaceY = b.center.Y + sim.surfaceY
	}
	radius := opts.BeakerRadius
	if radius <= 0 {
		radius = sim.radius
	}
	b.clampRadius = radius*sim.wallClamp - grainR
}

// acquireBatch reuses a hidden batch with enough capacity or allocates one.
func (sim *PowderSim) acquireBatch(n int) *PowderBatch {
	for _, b := range sim.batches {
		if !b.Visible && cap(b.X) >= n {
			b.X = b.X[:n]
			b.Y = b.Y[:n]
			b.Z = b.Z[:n]
			b.VX = b.VX[:n]
			b.VY = b.VY[:n]
			b.VZ = b.VZ[:n]
			b.Settled = b.Settled[:n]
			return b
		}
	}
	b := &PowderBatch{
		X: make([]float32, n), Y: make([]float32, n), Z: make([]float32, n),
		VX: make([]float32, n), VY: make([]float32, n), VZ: make([]float32, n),
		Settled: make([]bool, n),
	}
	sim.batches = append(sim.batches, b)
	return b
}

// StartSwirl begins stirring on every visible non-dropping batch. Only one
// swirl runs at a time; a second request while one is active is rejected.
// Starting a swirl blocks new bottom plumes (queued requests survive) and
// fades the particles already rising.
func (sim *PowderSim) StartSwirl(opts SwirlOpts) bool {
	if opts.Duration <= 0 {
		return false
	}
	for _, b := range sim.batches {
		if b.Visible && b.Swirling {
			return false
		}
	}
	if opts.Direction == 0 {
		opts.Direction = 1
	}

	started := false
	for _, b := range sim.batches {
		if !b.Visible || b.Dropping {
			continue
		}
		b.Swirling = true
		b.SwirlTime = 0
		b.swirl = opts
		if opts.Dissolve && !b.DissolveActive {
			b.DissolveActive = true
			b.DissolveTime = 0
			b.DissolveDuration = opts.DissolveSeconds
			if b.DissolveDuration <= 0 {
				b.DissolveDuration = opts.Duration
			}
		}
		started = true
	}
	if !started {
		return false
	}

	if sim.mgr != nil {
		fade := opts.BottomPlumeFade
		if fade <= 0 {
			fade = opts.Duration + swirlPlumeFadeBuffer
		}
		sim.mgr.DisableBottomPlumes(false)
		sim.mgr.FadeOutBottomPlumes(fade)
	}
	sim.plumeAccum = 0
	return true
}

// StopSwirl ends any active swirl early. Dissolves in progress continue, and
// the grains stay where the stir left them.
func (sim *PowderSim) StopSwirl() {
	for _, b := range sim.batches {
		if b.Visible && b.Swirling {
			sim.endSwirl(b)
		}
	}
	sim.plumeAccum = 0
}

// Swirling reports whether any visible batch is being stirred.
func (sim *PowderSim) Swirling() bool {
	for _, b := range sim.batches {
		if b.Visible && b.Swirling {
			return true
		}
	}
	return false
}

// Dropping reports whether any visible batch is still in its drop phase.
func (sim *PowderSim) Dropping() bool {
	for _, b := range sim.batches {
		if b.Visible && b.Dropping {
			return true
		}
	}
	return false
}

// HasPowder reports whether any batch is visible.
func (sim *PowderSim) HasPowder() bool {
	for _, b := range sim.batches {
		if b.Visible {
			return true
		}
	}
	return false
}

// SettledTotal counts settled grains over all visible batches.
func (sim *PowderSim) SettledTotal() int {
	total := 0
	for _, b := range sim.batches {
		if b.Visible {
			total += b.SettledCount
		}
	}
	return total
}

// GrainTotal counts grains over all visible batches.
func (sim *PowderSim) GrainTotal() int {
	total := 0
	for _, b := range sim.batches {
		if b.Visible {
			total += len(b.X)
		}
	}
	return total
}

// Clear hides every batch immediately.
func (sim *PowderSim) Clear() {
	for _, b := range sim.batches {
		b.Visible = false
		b.Swirling = false
		b.Dropping = false
		b.DissolveActive = false
	}
	sim.plumeAccum = 0
}

// Update advances all batches by dt seconds and fires reaction plumes off
// settled piles on the configured cadence.
func (sim *PowderSim) Update(dt float32) {
	if dt <= 0 {
		return
	}
	sim.DissolvedThisTick = 0
	sim.BurstsThisTick = 0
	sim.HiddenThisTick = 0

	for _, b := range sim.batches {
		if b.Visible {
			sim.updateBatch(b, dt)
		}
	}

	sim.plumeAccum += dt
	interval := float32(sim.powder.PlumeIntervalSec)
	if interval > 0 && sim.plumeAccum >= interval {
		sim.plumeAccum = 0
		sim.tryBurst()
	}
}

func (sim *PowderSim) updateBatch(b *PowderBatch, dt float32) {
	gravity := float32(sim.powder.Gravity)
	waterGravity := gravity * float32(sim.powder.WaterGravityFactor)
	waterDamp := math32.Exp(-float32(sim.powder.WaterDrag) * dt)

	// Falling grains integrate until each one touches down, even after the
	// batch as a whole has left its drop phase.
	for i := range b.X {
		if b.Settled[i] {
			continue
		}
		inWater := b.Y[i] < b.surfaceY
		if inWater {
			if !b.enteredWater {
				b.enteredWater = true
				if b.onEnterWater != nil {
					b.onEnterWater()
				}
			}
			b.VY[i] -= waterGravity * dt
			b.VX[i] *= waterDamp
			b.VY[i] *= waterDamp
			b.VZ[i] *= waterDamp
		} else {
			b.VY[i] -= gravity * dt
		}

		b.X[i] += b.VX[i] * dt
		b.Y[i] += b.VY[i] * dt
		b.Z[i] += b.VZ[i] * dt

		if inWater {
			clampGrainRadial(b, i)
		}
		if b.Y[i] <= b.restY {
			b.Y[i] = b.restY
			b.VX[i], b.VY[i], b.VZ[i] = 0, 0, 0
			b.Settled[i] = true
			b.SettledCount++
		}
	}

	if b.Dropping {
		b.DropTime += dt
		need := int(math32.Ceil(float32(sim.powder.SettleFraction) * float32(len(b.X))))
		if b.SettledCount >= need || b.DropTime >= float32(sim.powder.DropTimeoutSec) {
			b.Dropping = false
		}
	}

	if b.Swirling {
		sim.updateSwirl(b, dt)
	}

	if b.DissolveActive {
		sim.updateDissolve(b, dt)
	}
}

// updateSwirl stirs settled grains around the beaker axis. The stir fades
// over the final 30% of its duration so the pile coasts to rest.
func (sim *PowderSim) updateSwirl(b *PowderBatch, dt float32) {
	b.SwirlTime += dt
	if b.SwirlTime >= b.swirl.Duration {
		sim.endSwirl(b)
		return
	}

	fade := float32(1)
	remaining := b.swirl.Duration - b.SwirlTime
	fadeWindow := 0.3 * b.swirl.Duration
	if remaining < fadeWindow {
		fade = remaining / fadeWindow
	}

	damp := math32.Exp(-b.swirl.Drag * dt)
	dir := b.swirl.Direction

	for i := range b.X {
		if !b.Settled[i] {
			continue
		}
		dx := b.X[i] - b.center.X
		dz := b.Z[i] - b.center.Z
		r := math32.Hypot(dx, dz)
		if r > 1e-4 {
			nx, nz := dx/r, dz/r
			b.VX[i] += (-nz*dir*b.swirl.Strength - nx*b.swirl.Inward) * fade * dt
			b.VZ[i] += (nx*dir*b.swirl.Strength - nz*b.swirl.Inward) * fade * dt
		}
		b.VX[i] *= damp
		b.VZ[i] *= damp
		b.X[i] += b.VX[i] * dt
		b.Z[i] += b.VZ[i] * dt
		b.Y[i] = b.restY
		clampGrainRadial(b, i)
	}
}

func (sim *PowderSim) updateDissolve(b *PowderBatch, dt float32) {
	b.DissolveTime += dt
	frac := dt / b.DissolveDuration
	if b.DissolveTime >= b.DissolveDuration {
		// Credit only the mass remaining, not the overshoot.
		frac -= (b.DissolveTime - b.DissolveDuration) / b.DissolveDuration
	}
	if frac > 0 {
		sim.DissolvedThisTick += frac * float32(sim.powder.DissolveMass)
	}
	b.Opacity = clamp01(1 - b.DissolveTime/b.DissolveDuration)
	if b.DissolveTime >= b.DissolveDuration {
		b.DissolveActive = false
		b.Visible = false
		sim.HiddenThisTick++
		if b.Swirling {
			sim.endSwirl(b)
		}
	}
}

func (sim *PowderSim) endSwirl(b *PowderBatch) {
	b.Swirling = false
	b.SwirlTime = 0
	for i := range b.X {
		if b.Settled[i] {
			b.VX[i], b.VZ[i] = 0, 0
		}
	}
}

// clampGrainRadial keeps grain i inside the batch's wall cylinder.
func clampGrainRadial(b *PowderBatch, i int) {
	dx := b.X[i] - b.center.X
	dz := b.Z[i] - b.center.Z
	r2 := dx*dx + dz*dz
	if r2 > b.clampRadius*b.clampRadius {
		s := b.clampRadius / math32.Sqrt(r2)
		b.X[i] = b.center.X + dx*s
		b.Z[i] = b.center.Z + dz*s
	}
}

// tryBurst emits one reaction plume off the first settled pile, colored by
// the solution's current reaction. Bursts only fire while the indicator is
// in the water, bottom emission is not locked out, and nothing is stirring.
func (sim *PowderSim) tryBurst() {
	if sim.mgr == nil || sim.chem == nil {
		return
	}
	if !sim.mgr.IsIndicatorEnabled() {
		return
	}
	if sim.mgr.Plume().BottomPlumesDisabled() {
		return
	}
	for _, b := range sim.batches {
		if b.Visible && b.Swirling {
			return
		}
	}

	var src *PowderBatch
	for _, b := range sim.batches {
		if b.Visible && !b.Dropping && b.SettledCount >= sim.powder.MinSettledForPlume {
			src = b
			break
		}
	}
	if src == nil {
		return
	}

	var cx, cz float32
	n := 0
	for i := range src.X {
		if src.Settled[i] {
			cx += src.X[i]
			cz += src.Z[i]
			n++
		}
	}
	if n == 0 {
		return
	}
	cx /= float32(n)
	cz /= float32(n)

	local := sim.frame().WorldToLocal(Vec3{X: cx, Y: src.restY, Z: cz})
	r, g, bl := sim.chem.ReactionColor()
	sim.mgr.AddBottomSource(local.X, local.Z, sim.powder.PlumeBurstCount, BottomSourceOpts{
		HasColor: true,
		R:        r, G: g, B: bl,
	})
	sim.BurstsThisTick++
	sim.LastBurstX = local.X
	sim.LastBurstZ = local.Z
}

func (sim *PowderSim) frame() Frame {
	if sim.mgr != nil {
		return sim.mgr.Frame()
	}
	return Frame{}
}

func grainColor(pc config.PowderConfig) (r, g, b float32) {
	if len(pc.GrainColor) == 3 {
		return clamp01(float32(pc.GrainColor[0])), clamp01(float32(pc.GrainColor[1])), clamp01(float32(pc.GrainColor[2]))
	}
	return 1, 1, 1
}
