package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FieldOverlayRenderer draws the indicator concentration field as a tinted
// heat map over the water column. Field values upload to a GPU texture at
// field resolution; bilinear filtering hides the cell edges.
type FieldOverlayRenderer struct {
	fieldTex    rl.Texture2D
	texW, texH  int
	pixels      []color.RGBA
	initialized bool
}

// NewFieldOverlayRenderer creates a field overlay renderer.
func NewFieldOverlayRenderer() *FieldOverlayRenderer {
	return &FieldOverlayRenderer{}
}

// Init creates the field texture (must be called after raylib window is created).
func (r *FieldOverlayRenderer) Init(res int) {
	if r.initialized {
		return
	}

	r.texW = res
	r.texH = res

	img := rl.GenImageColor(res, res, rl.Blank)
	r.fieldTex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.fieldTex, rl.FilterBilinear)
	rl.UnloadImage(img)

	r.pixels = make([]color.RGBA, res*res)
	r.initialized = true
}

// UpdateField uploads new field values to the GPU texture. Values map to
// the tint color with alpha proportional to concentration.
func (r *FieldOverlayRenderer) UpdateField(values []float32, res int, tintR, tintG, tintB float32) {
	if !r.initialized {
		r.Init(res)
	}
	if len(values) != res*res || res != r.texW {
		return
	}

	for i, val := range values {
		v := val
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		a := uint8(v * 230)
		r.pixels[i] = color.RGBA{
			R: uint8(tintR * v * 255),
			G: uint8(tintG * v * 255),
			B: uint8(tintB * v * 255),
			A: a,
		}
	}

	rl.UpdateTexture(r.fieldTex, r.pixels)
}

// Draw stretches the field texture over the water rectangle.
func (r *FieldOverlayRenderer) Draw(x, y, width, height float32) {
	if !r.initialized {
		return
	}

	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dstRect := rl.Rectangle{X: x, Y: y, Width: width, Height: height}

	rl.DrawTexturePro(r.fieldTex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *FieldOverlayRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.fieldTex)
	r.initialized = false
}
