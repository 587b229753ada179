package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// WaterRenderer draws the water column through an animated shader. The
// solution tint and concentration feed shader uniforms so the liquid
// color tracks the chemistry without re-uploading any geometry.
type WaterRenderer struct {
	shader           rl.Shader
	timeLoc          int32
	resolutionLoc    int32
	tintLoc          int32
	concentrationLoc int32
	indicatorLoc     int32

	width       float32
	height      float32
	initialized bool
}

// NewWaterRenderer creates a water renderer for the given screen size.
func NewWaterRenderer(width, height int32) *WaterRenderer {
	return &WaterRenderer{
		width:  float32(width),
		height: float32(height),
	}
}

// Init initializes the renderer (must be called after raylib window is created).
func (w *WaterRenderer) Init() {
	if w.initialized {
		return
	}

	w.shader = rl.LoadShader("", "shaders/water.fs")
	w.timeLoc = rl.GetShaderLocation(w.shader, "time")
	w.resolutionLoc = rl.GetShaderLocation(w.shader, "resolution")
	w.tintLoc = rl.GetShaderLocation(w.shader, "tint")
	w.concentrationLoc = rl.GetShaderLocation(w.shader, "concentration")
	w.indicatorLoc = rl.GetShaderLocation(w.shader, "indicatorOn")

	resolution := []float32{w.width, w.height}
	rl.SetShaderValue(w.shader, w.resolutionLoc, resolution, rl.ShaderUniformVec2)

	w.initialized = true
}

// Resize updates the resolution uniform after a window resize.
func (w *WaterRenderer) Resize(width, height float32) {
	if width == w.width && height == w.height {
		return
	}
	w.width = width
	w.height = height
	if w.initialized {
		resolution := []float32{w.width, w.height}
		rl.SetShaderValue(w.shader, w.resolutionLoc, resolution, rl.ShaderUniformVec2)
	}
}

// Draw renders the water column into the given screen rectangle.
func (w *WaterRenderer) Draw(time float32, x, y, width, height float32, tintR, tintG, tintB, concentration float32, indicatorOn bool) {
	if !w.initialized {
		w.Init()
	}

	rl.SetShaderValue(w.shader, w.timeLoc, []float32{time}, rl.ShaderUniformFloat)
	rl.SetShaderValue(w.shader, w.tintLoc, []float32{tintR, tintG, tintB}, rl.ShaderUniformVec3)
	rl.SetShaderValue(w.shader, w.concentrationLoc, []float32{concentration}, rl.ShaderUniformFloat)

	indicator := float32(0)
	if indicatorOn {
		indicator = 1
	}
	rl.SetShaderValue(w.shader, w.indicatorLoc, []float32{indicator}, rl.ShaderUniformFloat)

	rl.BeginShaderMode(w.shader)
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: width, Height: height}, rl.White)
	rl.EndShaderMode()
}

// Unload frees resources.
func (w *WaterRenderer) Unload() {
	if w.initialized {
		rl.UnloadShader(w.shader)
		w.initialized = false
	}
}
