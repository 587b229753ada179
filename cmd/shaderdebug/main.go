// Shader debug tool - renders a shader to a PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -shader shaders/water.fs -out debug.png
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	shaderPath := flag.String("shader", "shaders/water.fs", "Path to fragment shader")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	simTime := flag.Float64("time", 12.0, "Value for the time uniform")
	concentration := flag.Float64("concentration", 0.6, "Value for the concentration uniform")
	indicator := flag.Bool("indicator", true, "Enable the indicatorOn uniform")
	tintFlag := flag.String("tint", "0.55,0.30,0.75", "Tint RGB, comma separated in [0,1]")
	flag.Parse()

	tint, err := parseTint(*tintFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad -tint value %q: %v\n", *tintFlag, err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	// Load the shader
	shader := rl.LoadShader("", *shaderPath)
	if shader.ID == 0 {
		fmt.Fprintf(os.Stderr, "Failed to load shader: %s\n", *shaderPath)
		os.Exit(1)
	}
	defer rl.UnloadShader(shader)

	// Get uniform locations; a missing uniform comes back -1 and the
	// corresponding SetShaderValue is a no-op, so non-water shaders work too
	timeLoc := rl.GetShaderLocation(shader, "time")
	resolutionLoc := rl.GetShaderLocation(shader, "resolution")
	tintLoc := rl.GetShaderLocation(shader, "tint")
	concentrationLoc := rl.GetShaderLocation(shader, "concentration")
	indicatorLoc := rl.GetShaderLocation(shader, "indicatorOn")

	// Set uniforms
	rl.SetShaderValue(shader, timeLoc, []float32{float32(*simTime)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(shader, resolutionLoc, []float32{float32(*width), float32(*height)}, rl.ShaderUniformVec2)
	rl.SetShaderValue(shader, tintLoc, tint[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(shader, concentrationLoc, []float32{float32(*concentration)}, rl.ShaderUniformFloat)
	indicatorOn := float32(0)
	if *indicator {
		indicatorOn = 1
	}
	rl.SetShaderValue(shader, indicatorLoc, []float32{indicatorOn}, rl.ShaderUniformFloat)

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	// Render shader to texture
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	rl.BeginShaderMode(shader)
	rl.DrawRectangle(0, 0, int32(*width), int32(*height), rl.White)
	rl.EndShaderMode()
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	// Export to PNG
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Shader rendered to: %s (%dx%d)\n", *outPath, *width, *height)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}

// parseTint parses an "r,g,b" triple of floats in [0, 1].
func parseTint(s string) ([3]float32, error) {
	var tint [3]float32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return tint, fmt.Errorf("want 3 components, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return tint, err
		}
		if v < 0 || v > 1 {
			return tint, fmt.Errorf("component %d out of range: %g", i, v)
		}
		tint[i] = float32(v)
	}
	return tint, nil
}
