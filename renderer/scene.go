package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Beaker glass proportions relative to the water column.
const (
	glassWallFrac  = 1.05 // walls sit just outside the particle clamp radius
	glassMouthFrac = 1.25 // rim height as a fraction of the water surface
	rimSquash      = 0.28 // ellipse squash for the mouth and surface rings
)

// SceneRenderer draws the static lab scene: wall gradient, bench, and the
// beaker glass around the water column.
type SceneRenderer struct {
	glass   rl.Color
	surface rl.Color
	bench   rl.Color
	wallTop rl.Color
	wallBot rl.Color
}

// NewSceneRenderer creates a scene renderer with the default palette.
func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{
		glass:   rl.Color{R: 170, G: 200, B: 220, A: 170},
		surface: rl.Color{R: 200, G: 225, B: 245, A: 120},
		bench:   rl.Color{R: 52, G: 44, B: 38, A: 255},
		wallTop: rl.Color{R: 24, G: 28, B: 34, A: 255},
		wallBot: rl.Color{R: 38, G: 44, B: 52, A: 255},
	}
}

// DrawBackground fills the screen with the wall gradient and the bench
// surface under the beaker.
func (s *SceneRenderer) DrawBackground(view *View, screenW, screenH int32) {
	rl.DrawRectangleGradientV(0, 0, screenW, screenH, s.wallTop, s.wallBot)

	// Bench top aligns with the beaker floor.
	_, benchY := view.LocalToWorld(0, 0, 0)
	_, sy := view.Cam.WorldToScreen(0, benchY)
	if sy < float32(screenH) {
		rl.DrawRectangle(0, int32(sy), screenW, screenH-int32(sy), s.bench)
		rl.DrawLineEx(
			rl.Vector2{X: 0, Y: sy},
			rl.Vector2{X: float32(screenW), Y: sy},
			2,
			rl.Color{R: 70, G: 60, B: 50, A: 255},
		)
	}
}

// DrawBeaker outlines the glass: walls, floor, mouth rim, and the water
// surface line.
func (s *SceneRenderer) DrawBeaker(view *View, radius, surfaceY float32) {
	wallR := radius * glassWallFrac
	mouthY := surfaceY * glassMouthFrac
	thick := view.PxRadius(0.012, 1)

	leftBotX, botY, _ := view.Project(-wallR, 0, 0)
	rightBotX, _, _ := view.Project(wallR, 0, 0)
	leftTopX, topY, _ := view.Project(-wallR, mouthY, 0)
	rightTopX, _, _ := view.Project(wallR, mouthY, 0)

	// Walls and floor
	rl.DrawLineEx(rl.Vector2{X: leftTopX, Y: topY}, rl.Vector2{X: leftBotX, Y: botY}, thick, s.glass)
	rl.DrawLineEx(rl.Vector2{X: rightTopX, Y: topY}, rl.Vector2{X: rightBotX, Y: botY}, thick, s.glass)
	rl.DrawLineEx(rl.Vector2{X: leftBotX, Y: botY}, rl.Vector2{X: rightBotX, Y: botY}, thick, s.glass)

	// Mouth rim
	cx := (leftTopX + rightTopX) / 2
	rimR := (rightTopX - leftTopX) / 2
	rl.DrawEllipseLines(int32(cx), int32(topY), rimR, rimR*rimSquash, s.glass)

	// Water surface
	surfLX, surfY, _ := view.Project(-radius, surfaceY, 0)
	surfRX, _, _ := view.Project(radius, surfaceY, 0)
	rl.DrawLineEx(rl.Vector2{X: surfLX, Y: surfY}, rl.Vector2{X: surfRX, Y: surfY}, thick*0.7, s.surface)
	rl.DrawEllipseLines(int32(cx), int32(surfY), (surfRX-surfLX)/2, (surfRX-surfLX)/2*rimSquash, s.surface)
}
