package beaker

import (
	"github.com/chewxy/math32"

	"github.com/pthm-cable/chemlab/config"
)

// concentrationFloor snaps the smoothed global concentration to zero once it
// falls below visibility, so the water tint fully clears instead of lingering
// at a denormal-ish haze forever.
const concentrationFloor = 1e-4

// IndicatorField models indicator dye concentration across the water surface
// as a square scalar grid in beaker-local UV space. Splats stamp dye in,
// fixed-rate ticks spread and decay it, and a smoothed global scalar
// summarizes the whole field for the water tint.
type IndicatorField struct {
	res    int
	radius float32 // beaker radius; maps local XZ onto the grid

	values []float32 // current concentration per cell, always in [0, 1]
	spread []float32 // weighted multi-radius blur of values
	blur   []float32 // per-radius blur scratch
	tmp    []float32 // separable blur scratch

	splatRadiusFrac float32
	blurRadii       []int
	blurWeights     []float32
	tickDecay       float32 // exp(-decayRate * tickDT), applied per tick
	mix             float32
	concGain        float32
	riseBlend       float32
	decayBlend      float32
	meanThreshold   float32

	tickDT       float32
	meanInterval float32

	accum        float32 // unconsumed frame time
	time         float32 // field-local simulation time
	lastMeanTime float32

	mean          float32 // raw cell average, recomputed at the mean rate
	concentration float32 // smoothed global tint driver

	disposed bool
}

// NewIndicatorField creates a field over a beaker of the given radius.
// Blur weights are normalized so the spread pass conserves scale even when
// the configured weights do not sum to one.
func NewIndicatorField(fc config.FieldConfig, radius float32) *IndicatorField {
	res := fc.Resolution
	n := res * res

	f := &IndicatorField{
		res:    res,
		radius: radius,
		values: make([]float32, n),
		spread: make([]float32, n),
		blur:   make([]float32, n),
		tmp:    make([]float32, n),

		tickDT:       float32(1.0 / fc.StepHz),
		meanInterval: float32(1.0 / fc.MeanHz),
	}
	f.SetParams(fc)
	return f
}

// SetParams updates the tunable parameters in place. Resolution is fixed at
// construction; a resolution change requires a new field.
func (f *IndicatorField) SetParams(fc config.FieldConfig) {
	f.splatRadiusFrac = float32(fc.SplatRadiusFrac)
	f.mix = float32(fc.SpreadMix)
	f.concGain = float32(fc.ConcentrationGain)
	f.riseBlend = float32(fc.RiseBlend)
	f.decayBlend = float32(fc.DecayBlend)
	f.meanThreshold = float32(fc.MeanThreshold)
	f.tickDecay = math32.Exp(-float32(fc.DecayRate) * f.tickDT)

	f.blurRadii = make([]int, len(fc.BlurRadii))
	copy(f.blurRadii, fc.BlurRadii)

	var sum float64
	for _, w := range fc.BlurWeights {
		sum += w
	}
	if sum <= 0 {
		sum = 1
	}
	f.blurWeights = make([]float32, len(fc.BlurWeights))
	for i, w := range fc.BlurWeights {
		f.blurWeights[i] = float32(w / sum)
	}
}

// AddIndicatorAt stamps a radial splat of dye centered at the beaker-local
// position (x, z). Intensity falls off smoothly from the center to zero at
// the splat rim; cells saturate at 1. Positions outside the footprint clip
// against the grid edge.
func (f *IndicatorField) AddIndicatorAt(x, z float32) {
	if f.disposed {
		return
	}

	// The beaker footprint [-radius, +radius] spans the full grid.
	cx := (0.5 + x/(2*f.radius)) * float32(f.res)
	cz := (0.5 + z/(2*f.radius)) * float32(f.res)
	r := f.splatRadiusFrac * float32(f.res)
	if r < 1 {
		r = 1
	}

	x0 := int(math32.Floor(cx - r))
	x1 := int(math32.Ceil(cx + r))
	z0 := int(math32.Floor(cz - r))
	z1 := int(math32.Ceil(cz + r))
	if x0 < 0 {
		x0 = 0
	}
	if z0 < 0 {
		z0 = 0
	}
	if x1 > f.res-1 {
		x1 = f.res - 1
	}
	if z1 > f.res-1 {
		z1 = f.res - 1
	}

	for gz := z0; gz <= z1; gz++ {
		dz := float32(gz) + 0.5 - cz
		row := gz * f.res
		for gx := x0; gx <= x1; gx++ {
			dx := float32(gx) + 0.5 - cx
			d := math32.Sqrt(dx*dx + dz*dz)
			if d >= r {
				continue
			}
			add := smoothstep(1 - d/r)
			f.values[row+gx] = clamp01(f.values[row+gx] + add)
		}
	}
}

// Step advances the field by dt seconds of caller time. Callers may run at
// any frame rate; work happens in whole fixed-rate ticks and leftover time
// carries into the next call.
func (f *IndicatorField) Step(dt float32) {
	if f.disposed || dt <= 0 {
		return
	}
	f.accum += dt
	for f.accum >= f.tickDT {
		f.accum -= f.tickDT
		f.tick()
	}
}

// tick runs one fixed-rate field update: spread, decay, and (at its own
// slower cadence) the global concentration refresh.
func (f *IndicatorField) tick() {
	f.time += f.tickDT
	f.buildSpread()

	mix := f.mix
	decay := f.tickDecay
	for i, v := range f.values {
		f.values[i] = clamp01((v + (f.spread[i]-v)*mix) * decay)
	}

	if f.time-f.lastMeanTime >= f.meanInterval {
		f.lastMeanTime = f.time
		f.updateConcentration()
	}
}

// buildSpread accumulates the weighted multi-radius blur into f.spread.
func (f *IndicatorField) buildSpread() {
	for i := range f.spread {
		f.spread[i] = 0
	}
	for k, radius := range f.blurRadii {
		boxBlur(f.values, f.blur, f.tmp, f.res, radius)
		w := f.blurWeights[k]
		for i, b := range f.blur {
			f.spread[i] += w * b
		}
	}
}

// updateConcentration recomputes the cell mean and eases the smoothed global
// concentration toward it. The gain lets a modest mean read as a strong tint;
// rise and decay use different blend rates so color snaps in fast and fades
// out slowly.
func (f *IndicatorField) updateConcentration() {
	var sum float32
	for _, v := range f.values {
		sum += v
	}
	f.mean = sum / float32(len(f.values))

	target := f.mean * f.concGain
	if target > 1 {
		target = 1
	}
	blend := f.decayBlend
	if f.mean > f.meanThreshold {
		blend = f.riseBlend
	}
	f.concentration += (target - f.concentration) * blend
	if f.concentration < concentrationFloor {
		f.concentration = 0
	}
}

// GlobalConcentration returns the smoothed tint driver in [0, 1].
func (f *IndicatorField) GlobalConcentration() float32 {
	return f.concentration
}

// Mean returns the raw cell average from the last concentration refresh.
func (f *IndicatorField) Mean() float32 {
	return f.mean
}

// Values returns the live concentration grid in row-major order. The slice
// aliases internal state; callers must not mutate it.
func (f *IndicatorField) Values() []float32 {
	return f.values
}

// Resolution returns the grid edge length in cells.
func (f *IndicatorField) Resolution() int {
	return f.res
}

// Reset clears all dye and the concentration scalars.
func (f *IndicatorField) Reset() {
	if f.disposed {
		return
	}
	for i := range f.values {
		f.values[i] = 0
	}
	f.accum = 0
	f.time = 0
	f.lastMeanTime = 0
	f.mean = 0
	f.concentration = 0
}

// Dispose releases the grid buffers. A disposed field ignores all calls.
func (f *IndicatorField) Dispose() {
	f.disposed = true
	f.values = nil
	f.spread = nil
	f.blur = nil
	f.tmp = nil
}

// boxBlur writes a radius-r box blur of src into dst, using tmp for the
// horizontal pass. Edges clamp rather than wrap: dye piles against the
// beaker wall instead of teleporting across it.
func boxBlur(src, dst, tmp []float32, res, radius int) {
	if radius <= 0 {
		copy(dst, src)
		return
	}
	inv := 1 / float32(2*radius+1)

	// Horizontal pass: src -> tmp, sliding window.
	for y := 0; y < res; y++ {
		row := src[y*res : y*res+res]
		out := tmp[y*res : y*res+res]
		var sum float32
		for x := -radius; x <= radius; x++ {
			sum += row[clampIndex(x, res)]
		}
		for x := 0; x < res; x++ {
			out[x] = sum * inv
			sum += row[clampIndex(x+radius+1, res)] - row[clampIndex(x-radius, res)]
		}
	}

	// Vertical pass: tmp -> dst.
	for x := 0; x < res; x++ {
		var sum float32
		for y := -radius; y <= radius; y++ {
			sum += tmp[clampIndex(y, res)*res+x]
		}
		for y := 0; y < res; y++ {
			dst[y*res+x] = sum * inv
			sum += tmp[clampIndex(y+radius+1, res)*res+x] - tmp[clampIndex(y-radius, res)*res+x]
		}
	}
}

// clampIndex clamps i into [0, n).
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
