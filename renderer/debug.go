package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/beaker"
)

// DebugRenderer draws developer overlays: the crowding density grid and
// per-particle velocity vectors.
type DebugRenderer struct{}

// NewDebugRenderer creates a new debug renderer.
func NewDebugRenderer() *DebugRenderer {
	return &DebugRenderer{}
}

// DrawDensity renders the crowding grid as a top-down inset panel. Cell
// brightness scales with occupancy; cells at or past the cap turn red.
func (r *DebugRenderer) DrawDensity(ps *beaker.PlumeSystem, perCellCap int, x, y, size int32) {
	counts, side, _ := ps.DensityCounts()
	if side <= 0 {
		return
	}

	rl.DrawRectangle(x, y, size, size, rl.Color{R: 10, G: 12, B: 16, A: 220})
	rl.DrawRectangleLines(x, y, size, size, rl.DarkGray)

	cell := float32(size) / float32(side)
	for cz := 0; cz < side; cz++ {
		for cx := 0; cx < side; cx++ {
			count := int(counts[cz*side+cx])
			if count == 0 {
				continue
			}

			frac := float32(1)
			if perCellCap > 0 {
				frac = float32(count) / float32(perCellCap)
			}

			color := rl.Color{G: 200, B: 120, A: 200}
			if frac >= 1 {
				color = rl.Color{R: 220, G: 60, B: 50, A: 230}
			} else {
				color.R = uint8(60 + 120*frac)
			}

			px := x + int32(float32(cx)*cell)
			py := y + int32(float32(cz)*cell)
			w := int32(cell) - 1
			if w < 1 {
				w = 1
			}
			rl.DrawRectangle(px, py, w, w, color)
		}
	}

	rl.DrawText(fmt.Sprintf("density (cap %d)", perCellCap), x+4, y+size+4, 12, rl.Gray)
}

// DrawVectors renders plume particle velocities as short lines from each
// particle. Drawn additively so dense clusters read as bright streaks.
func (r *DebugRenderer) DrawVectors(view *View, ps *beaker.PlumeSystem, indicatorOn bool) {
	const vectorScale = 0.4 // seconds of travel shown

	rl.BeginBlendMode(rl.BlendAdditive)

	for _, i := range ps.ActiveList {
		if !ps.Active[i] {
			continue
		}
		if ps.Gated[i] && !indicatorOn {
			continue
		}

		sx, sy, _ := view.Project(ps.X[i], ps.Y[i], ps.Z[i])
		tx, ty, _ := view.Project(
			ps.X[i]+ps.VX[i]*vectorScale,
			ps.Y[i]+ps.VY[i]*vectorScale,
			ps.Z[i]+ps.VZ[i]*vectorScale,
		)

		alpha := uint8(60 + 140*ps.Life[i])
		rl.DrawLineV(
			rl.Vector2{X: sx, Y: sy},
			rl.Vector2{X: tx, Y: ty},
			rl.Color{R: 90, G: 160, B: 200, A: alpha},
		)
	}

	rl.EndBlendMode()
}
