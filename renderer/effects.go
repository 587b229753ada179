package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// DropletSprite is one falling indicator drop, in beaker-local coordinates.
type DropletSprite struct {
	X, Y, Z float32
	Radius  float32
	R, G, B float32
}

// BubbleSprite is one rising bubble, in beaker-local coordinates.
type BubbleSprite struct {
	X, Y, Z float32
	Radius  float32
}

// RippleSprite is one expanding surface ring at the water line.
type RippleSprite struct {
	X, Z   float32
	Y      float32 // water surface height
	Radius float32
	Alpha  float32
}

// EffectsRenderer draws transient effect sprites: indicator drops in
// flight, bubbles rising off dissolving powder, and surface ripples.
type EffectsRenderer struct{}

// NewEffectsRenderer creates a new effects renderer.
func NewEffectsRenderer() *EffectsRenderer {
	return &EffectsRenderer{}
}

// DrawDroplets renders falling drops with a short trailing streak.
func (r *EffectsRenderer) DrawDroplets(view *View, droplets []DropletSprite) {
	for i := range droplets {
		d := &droplets[i]
		sx, sy, scale := view.Project(d.X, d.Y, d.Z)
		px := view.PxRadius(d.Radius, scale)

		color := rl.Color{
			R: uint8(clampUnit(d.R) * 255),
			G: uint8(clampUnit(d.G) * 255),
			B: uint8(clampUnit(d.B) * 255),
			A: 230,
		}

		// Streak above the drop suggests motion without a trail buffer.
		streak := color
		streak.A = 90
		rl.DrawLineEx(
			rl.Vector2{X: sx, Y: sy - px*3},
			rl.Vector2{X: sx, Y: sy},
			px*0.7,
			streak,
		)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, px, color)
	}
}

// DrawBubbles renders bubbles as pale rings with a small highlight.
func (r *EffectsRenderer) DrawBubbles(view *View, bubbles []BubbleSprite) {
	ring := rl.Color{R: 210, G: 230, B: 245, A: 160}
	highlight := rl.Color{R: 255, G: 255, B: 255, A: 200}

	for i := range bubbles {
		b := &bubbles[i]
		sx, sy, scale := view.Project(b.X, b.Y, b.Z)
		px := view.PxRadius(b.Radius, scale)

		rl.DrawCircleLines(int32(sx), int32(sy), px, ring)
		rl.DrawCircleV(rl.Vector2{X: sx - px*0.3, Y: sy - px*0.3}, px*0.25, highlight)
	}
}

// DrawRipples renders expanding rings squashed onto the water surface.
func (r *EffectsRenderer) DrawRipples(view *View, ripples []RippleSprite) {
	for i := range ripples {
		rp := &ripples[i]
		sx, sy, scale := view.Project(rp.X, rp.Y, rp.Z)
		px := view.PxRadius(rp.Radius, scale)

		color := rl.Color{R: 220, G: 235, B: 250, A: uint8(clampUnit(rp.Alpha) * 180)}

		// Perspective squash: the ring lies flat on the surface.
		rl.DrawEllipseLines(int32(sx), int32(sy), px, px*0.28, color)
	}
}
