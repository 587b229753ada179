package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/beaker"
)

// PowderRenderer draws powder grains. Grains live in world space, so each
// one projects through the beaker frame. Settled grains darken slightly
// to read as a pile rather than suspended dust.
type PowderRenderer struct{}

// NewPowderRenderer creates a new powder renderer.
func NewPowderRenderer() *PowderRenderer {
	return &PowderRenderer{}
}

// Draw renders all visible powder batches.
func (r *PowderRenderer) Draw(view *View, sim *beaker.PowderSim, frame beaker.Frame, grainRadius float32) {
	for _, b := range sim.Batches() {
		if !b.Visible || b.Opacity <= 0 {
			continue
		}

		baseAlpha := clampUnit(b.Opacity)

		for i := range b.X {
			sx, sy, scale := view.ProjectWorld(frame, beaker.Vec3{X: b.X[i], Y: b.Y[i], Z: b.Z[i]})
			px := view.PxRadius(grainRadius, scale)

			shade := float32(1.0)
			if b.Settled[i] {
				shade = 0.8
			}

			color := rl.Color{
				R: uint8(clampUnit(b.R*shade) * 255),
				G: uint8(clampUnit(b.G*shade) * 255),
				B: uint8(clampUnit(b.B*shade) * 255),
				A: uint8(baseAlpha * 255),
			}
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, px, color)
		}
	}
}
