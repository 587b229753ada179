// Package renderer draws the beaker scene: water, field overlay, plumes,
// powder, and effect sprites. All renderers project beaker-local
// coordinates through a shared View so the camera and the oblique depth
// skew stay consistent across layers.
package renderer

import (
	"github.com/pthm-cable/chemlab/beaker"
	"github.com/pthm-cable/chemlab/camera"
)

// Oblique projection constants. Depth (local Z, toward the viewer) shifts
// particles right and slightly down, and scales them up a touch.
const (
	depthSkewX    = 0.22
	depthSkewY    = -0.10
	depthScale    = 0.10
	depthScaleMin = 0.8
	depthScaleMax = 1.25
)

// View maps beaker-local coordinates to screen space. Local X spans the
// beaker diameter, local Y runs up from the floor, local Z comes out of
// the screen toward the viewer.
type View struct {
	Cam *camera.Camera

	// PxPerUnit is scene-world pixels per beaker-local unit at zoom 1.
	PxPerUnit float32

	// OriginX, OriginY is the scene-world position of the beaker-local
	// origin (the center of the beaker floor).
	OriginX, OriginY float32
}

// NewView sizes the beaker into the scene: the water column takes a bit
// over half the scene height, leaving headroom for the dropper above the
// rim and the bench below.
func NewView(cam *camera.Camera, surfaceY float32) *View {
	v := &View{Cam: cam}
	v.PxPerUnit = cam.WorldH * 0.55 / surfaceY
	v.OriginX = cam.WorldW / 2
	v.OriginY = cam.WorldH * 0.78
	return v
}

// LocalToWorld converts a beaker-local point to scene-world coordinates,
// applying the oblique depth skew.
func (v *View) LocalToWorld(x, y, z float32) (wx, wy float32) {
	wx = v.OriginX + (x+z*depthSkewX)*v.PxPerUnit
	wy = v.OriginY - (y+z*depthSkewY)*v.PxPerUnit
	return wx, wy
}

// Project converts a beaker-local point to screen coordinates plus a
// depth scale factor for sprite sizing.
func (v *View) Project(x, y, z float32) (sx, sy, scale float32) {
	wx, wy := v.LocalToWorld(x, y, z)
	sx, sy = v.Cam.WorldToScreen(wx, wy)

	scale = 1 + z*depthScale
	if scale < depthScaleMin {
		scale = depthScaleMin
	} else if scale > depthScaleMax {
		scale = depthScaleMax
	}
	return sx, sy, scale
}

// ProjectWorld converts a world-space point (powder grains live in world
// space) to screen coordinates via the beaker frame.
func (v *View) ProjectWorld(frame beaker.Frame, p beaker.Vec3) (sx, sy, scale float32) {
	local := frame.WorldToLocal(p)
	return v.Project(local.X, local.Y, local.Z)
}

// PxRadius converts a beaker-local radius to screen pixels.
func (v *View) PxRadius(r, scale float32) float32 {
	px := r * v.PxPerUnit * v.Cam.Zoom * scale
	if px < 1 {
		px = 1
	}
	return px
}

// ScreenToLocal inverts Project at z=0, for mouse picking on the
// beaker cross-section.
func (v *View) ScreenToLocal(sx, sy float32) (x, y float32) {
	wx, wy := v.Cam.ScreenToWorld(sx, sy)
	x = (wx - v.OriginX) / v.PxPerUnit
	y = (v.OriginY - wy) / v.PxPerUnit
	return x, y
}

// WaterRect returns the screen rectangle of the water column: beaker
// diameter wide, floor to surface tall.
func (v *View) WaterRect(radius, surfaceY float32) (x, y, w, h float32) {
	leftX, topY, _ := v.Project(-radius, surfaceY, 0)
	rightX, bottomY, _ := v.Project(radius, 0, 0)
	return leftX, topY, rightX - leftX, bottomY - topY
}
