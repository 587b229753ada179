// Indicator field preview tool - live dye diffusion with sliders.
//
// Usage: go run ./cmd/fieldpreview
package main

import (
	"fmt"
	"image/color"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/beaker"
	"github.com/pthm-cable/chemlab/config"
)

const (
	windowWidth  = 1000
	windowHeight = 780
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	dripIntervalSec = 0.6
)

// FieldParams holds the tunable diffusion parameters
type FieldParams struct {
	SplatRadiusFrac   float32
	DecayRate         float32
	SpreadMix         float32
	ConcentrationGain float32
	RiseBlend         float32
	DecayBlend        float32
	BlurRadii         []float32
	BlurWeights       []float32
}

// defaultParams pulls the slider starting values from a config section.
func defaultParams(fc config.FieldConfig) FieldParams {
	p := FieldParams{
		SplatRadiusFrac:   float32(fc.SplatRadiusFrac),
		DecayRate:         float32(fc.DecayRate),
		SpreadMix:         float32(fc.SpreadMix),
		ConcentrationGain: float32(fc.ConcentrationGain),
		RiseBlend:         float32(fc.RiseBlend),
		DecayBlend:        float32(fc.DecayBlend),
		BlurRadii:         make([]float32, len(fc.BlurRadii)),
		BlurWeights:       make([]float32, len(fc.BlurWeights)),
	}
	for i, r := range fc.BlurRadii {
		p.BlurRadii[i] = float32(r)
	}
	for i, w := range fc.BlurWeights {
		p.BlurWeights[i] = float32(w)
	}
	return p
}

// fieldConfig merges the slider values onto a base config section.
func fieldConfig(base config.FieldConfig, p FieldParams) config.FieldConfig {
	fc := base
	fc.SplatRadiusFrac = float64(p.SplatRadiusFrac)
	fc.DecayRate = float64(p.DecayRate)
	fc.SpreadMix = float64(p.SpreadMix)
	fc.ConcentrationGain = float64(p.ConcentrationGain)
	fc.RiseBlend = float64(p.RiseBlend)
	fc.DecayBlend = float64(p.DecayBlend)
	fc.BlurRadii = make([]int, len(p.BlurRadii))
	fc.BlurWeights = make([]float64, len(p.BlurWeights))
	for i, r := range p.BlurRadii {
		fc.BlurRadii[i] = int(r + 0.5)
	}
	for i, w := range p.BlurWeights {
		fc.BlurWeights[i] = float64(w)
	}
	return fc
}

// yamlSnippet renders the current values as a field: config block.
func yamlSnippet(p FieldParams) []string {
	radii := ""
	weights := ""
	for i := range p.BlurRadii {
		if i > 0 {
			radii += ", "
			weights += ", "
		}
		radii += fmt.Sprintf("%d", int(p.BlurRadii[i]+0.5))
		weights += fmt.Sprintf("%.2f", p.BlurWeights[i])
	}
	return []string{
		"field:",
		fmt.Sprintf("  splat_radius_frac: %.2f", p.SplatRadiusFrac),
		fmt.Sprintf("  blur_radii: [%s]", radii),
		fmt.Sprintf("  blur_weights: [%s]", weights),
		fmt.Sprintf("  decay_rate: %.2f", p.DecayRate),
		fmt.Sprintf("  spread_mix: %.2f", p.SpreadMix),
		fmt.Sprintf("  concentration_gain: %.2f", p.ConcentrationGain),
		fmt.Sprintf("  rise_blend: %.2f", p.RiseBlend),
		fmt.Sprintf("  decay_blend: %.2f", p.DecayBlend),
	}
}

func main() {
	cfg, err := config.Default()
	if err != nil {
		log.Fatalf("failed to load defaults: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Indicator Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	radius := cfg.Derived.Radius32
	params := defaultParams(cfg.Field)

	field := beaker.NewIndicatorField(cfg.Field, radius)
	defer field.Dispose()

	// Create texture for rendering
	gridSize := cfg.Field.Resolution
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	running := true
	dripping := true
	var dripAccum float32

	for !rl.WindowShouldClose() {
		frame := rl.GetFrameTime()

		// Periodic test splats keep dye flowing through the field
		if running && dripping {
			dripAccum += frame
			for dripAccum >= dripIntervalSec {
				dripAccum -= dripIntervalSec
				x := float32(rl.GetRandomValue(-70, 70)) / 100 * radius
				z := float32(rl.GetRandomValue(-70, 70)) / 100 * radius
				field.AddIndicatorAt(x, z)
			}
		}

		// Click inside the preview to splat at that spot
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			m := rl.GetMousePosition()
			if m.X >= 10 && m.X < 10+previewSize && m.Y >= 10 && m.Y < 10+previewSize {
				u := (m.X - 10) / previewSize
				v := (m.Y - 10) / previewSize
				field.AddIndicatorAt((u-0.5)*2*radius, (v-0.5)*2*radius)
			}
		}

		if running {
			field.Step(frame)
		}
		updateTexture(texture, field.Values(), gridSize)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridSize), Height: float32(gridSize)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		// Draw stats
		var minVal, maxVal float32 = 1, 0
		for _, v := range field.Values() {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f  Mean: %.4f", minVal, maxVal, field.Mean()), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Concentration: %.3f", field.GlobalConcentration()), 15, statsY+20, 16, rl.DarkGray)

		// YAML output under the stats
		yamlY := statsY + 55
		rl.DrawText("YAML Config:", 15, yamlY, 16, rl.DarkGray)
		yamlY += 25
		for _, line := range yamlSnippet(params) {
			rl.DrawText(line, 15, yamlY, 14, rl.Gray)
			yamlY += 16
		}

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)
		paramsChanged := false

		rl.DrawText("Indicator Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Splat radius slider
		rl.DrawText("Splat radius (fraction of grid edge)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSplat := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.02", "0.5",
			params.SplatRadiusFrac, 0.02, 0.5,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SplatRadiusFrac), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSplat != params.SplatRadiusFrac {
			params.SplatRadiusFrac = newSplat
			paramsChanged = true
		}
		panelY += 35

		// Decay rate slider
		rl.DrawText("Decay rate (fade per second)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newDecay := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "2.0",
			params.DecayRate, 0, 2.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.DecayRate), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newDecay != params.DecayRate {
			params.DecayRate = newDecay
			paramsChanged = true
		}
		panelY += 35

		// Spread mix slider
		rl.DrawText("Spread mix (blend toward blur)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newMix := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1.0",
			params.SpreadMix, 0, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SpreadMix), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newMix != params.SpreadMix {
			params.SpreadMix = newMix
			paramsChanged = true
		}
		panelY += 35

		// Concentration gain slider
		rl.DrawText("Concentration gain (mean to tint)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newGain := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.5", "8.0",
			params.ConcentrationGain, 0.5, 8.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.ConcentrationGain), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newGain != params.ConcentrationGain {
			params.ConcentrationGain = newGain
			paramsChanged = true
		}
		panelY += 35

		// Rise blend slider
		rl.DrawText("Rise blend (tint attack)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRise := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.01", "1.0",
			params.RiseBlend, 0.01, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.RiseBlend), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRise != params.RiseBlend {
			params.RiseBlend = newRise
			paramsChanged = true
		}
		panelY += 35

		// Decay blend slider
		rl.DrawText("Decay blend (tint release)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newDecayBlend := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.01", "1.0",
			params.DecayBlend, 0.01, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.DecayBlend), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newDecayBlend != params.DecayBlend {
			params.DecayBlend = newDecayBlend
			paramsChanged = true
		}
		panelY += 35

		// Separator
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		// Blur section
		rl.DrawText("Spread blur (radius / weight per pass)", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25

		for i := range params.BlurRadii {
			rl.DrawText(fmt.Sprintf("Blur radius %d", i+1), int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
			newRadius := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"0", "8",
				params.BlurRadii[i], 0, 8,
			)
			rl.DrawText(fmt.Sprintf("%d", int(params.BlurRadii[i]+0.5)), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if newRadius != params.BlurRadii[i] {
				params.BlurRadii[i] = newRadius
				paramsChanged = true
			}
			panelY += 24

			rl.DrawText(fmt.Sprintf("Blur weight %d", i+1), int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
			newWeight := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"0", "1",
				params.BlurWeights[i], 0, 1,
			)
			rl.DrawText(fmt.Sprintf("%.2f", params.BlurWeights[i]), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if newWeight != params.BlurWeights[i] {
				params.BlurWeights[i] = newWeight
				paramsChanged = true
			}
			panelY += 24
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(running, "Pause", "Run")) {
			running = !running
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(dripping, "Stop Drip", "Auto Drip")) {
			dripping = !dripping
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Clear Dye") {
			field.Reset()
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams(cfg.Field)
			field.SetParams(fieldConfig(cfg.Field, params))
			field.Reset()
			dripAccum = 0
		}

		// Apply slider changes to the live field
		if paramsChanged {
			field.SetParams(fieldConfig(cfg.Field, params))
		}

		// Instructions
		rl.DrawText("Click the preview to splat dye", int32(panelX), int32(windowHeight-45), 12, rl.LightGray)
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			yaml := ""
			for i, line := range yamlSnippet(params) {
				if i > 0 {
					yaml += "\n"
				}
				yaml += line
			}
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// updateTexture updates the GPU texture from the field values
func updateTexture(texture rl.Texture2D, grid []float32, size int) {
	pixels := make([]color.RGBA, size*size)
	for i, v := range grid {
		// Dye gradient: water-dark -> violet -> magenta -> near white
		var r, g, b uint8
		if v < 0.25 {
			// Dark water to deep violet
			t := v / 0.25
			r = uint8(8 + t*60)
			g = uint8(10 + t*8)
			b = uint8(18 + t*90)
		} else if v < 0.5 {
			// Deep violet to violet
			t := (v - 0.25) / 0.25
			r = uint8(68 + t*80)
			g = uint8(18 + t*22)
			b = uint8(108 + t*80)
		} else if v < 0.75 {
			// Violet to magenta
			t := (v - 0.5) / 0.25
			r = uint8(148 + t*60)
			g = uint8(40 + t*60)
			b = uint8(188 + t*40)
		} else {
			// Magenta to near white
			t := (v - 0.75) / 0.25
			r = uint8(208 + t*40)
			g = uint8(100 + t*120)
			b = uint8(228 + t*27)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
