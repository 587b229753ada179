package renderer

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/beaker"
)

// Particle sprite sizing, as fractions of the beaker radius.
const (
	plumeBaseRadiusFrac = 0.030
	plumeGrowRadiusFrac = 0.055
)

// PlumeRenderer draws dye plume particles as soft circles. Alpha follows
// the configured life curve, size grows with age, and the style decides
// additive versus alpha blending.
type PlumeRenderer struct{}

// NewPlumeRenderer creates a new plume renderer.
func NewPlumeRenderer() *PlumeRenderer {
	return &PlumeRenderer{}
}

// Draw renders all live plume particles. Gated particles stay hidden
// while the indicator is off.
func (r *PlumeRenderer) Draw(view *View, ps *beaker.PlumeSystem, beakerRadius float32, indicatorOn bool) {
	cfg := ps.Config()
	style := ps.Style()

	alphaExp := float32(cfg.AlphaExponent)
	sizeExp := float32(cfg.SizeExponent)
	minAlpha := float32(cfg.MinAlpha)

	if style.Additive {
		rl.BeginBlendMode(rl.BlendAdditive)
		defer rl.EndBlendMode()
	}

	baseR := beakerRadius * plumeBaseRadiusFrac
	growR := beakerRadius * plumeGrowRadiusFrac

	for _, i := range ps.ActiveList {
		if !ps.Active[i] {
			continue
		}
		if ps.Gated[i] && !indicatorOn {
			continue
		}

		life := ps.Life[i]
		alpha := ps.Alpha[i] * math32.Pow(life, alphaExp)
		if alpha < minAlpha {
			alpha = minAlpha
		}

		age := 1 - life
		radius := baseR + growR*math32.Pow(age, sizeExp)

		sx, sy, scale := view.Project(ps.X[i], ps.Y[i], ps.Z[i])
		px := view.PxRadius(radius, scale)

		r.drawSoftCircle(sx, sy, px, ps.R[i], ps.G[i], ps.B[i], alpha, style.EdgeSoftness)
	}
}

// drawSoftCircle draws a particle as a solid core with a gradient skirt.
// EdgeSoftness sets how much of the radius feathers out.
func (r *PlumeRenderer) drawSoftCircle(sx, sy, radius, cr, cg, cb, alpha, edgeSoftness float32) {
	color := rl.Color{
		R: uint8(clampUnit(cr) * 255),
		G: uint8(clampUnit(cg) * 255),
		B: uint8(clampUnit(cb) * 255),
		A: uint8(clampUnit(alpha) * 255),
	}

	if edgeSoftness <= 0 {
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, color)
		return
	}

	core := radius * (1 - clampUnit(edgeSoftness))
	if core > 0.5 {
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, core, color)
	}

	outer := color
	outer.A = 0
	rl.DrawCircleGradient(int32(sx), int32(sy), radius, color, outer)
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
