package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Tick          int32
	Speed         int
	FPS           int32
	Paused        bool
	PlumeActive   int
	PlumeFree     int
	QueueDepth    int
	Concentration float32
	PH            float32
	TintR         float32
	TintG         float32
	TintB         float32
	SettledGrains int
	VisibleGrains int
	Swirling      bool
	ConfigError   string
	ScreenWidth   int32
	ScreenHeight  int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	// Title
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	// Plume pool counts
	rl.DrawText(
		fmt.Sprintf("Plumes: %d | Free: %d | Queued: %d", data.PlumeActive, data.PlumeFree, data.QueueDepth),
		10, 35, 16, rl.LightGray,
	)

	// Simulation info
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Grains: %d (%d settled)",
			data.Tick, data.Speed, data.FPS, data.VisibleGrains, data.SettledGrains),
		10, 55, 16, rl.LightGray,
	)

	// Solution readout, pH text drawn in the current reaction tint
	tint := rl.Color{
		R: uint8(data.TintR * 255),
		G: uint8(data.TintG * 255),
		B: uint8(data.TintB * 255),
		A: 255,
	}
	rl.DrawText(fmt.Sprintf("Conc: %.3f", data.Concentration), 10, 75, 16, rl.LightGray)
	rl.DrawText(fmt.Sprintf("pH %.2f", data.PH), 110, 75, 16, tint)

	// Status
	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Swirling {
		statusText += " | swirling"
	}
	rl.DrawText(statusText, 10, 95, 16, rl.Yellow)

	// Config errors from the tuning panel stay visible until resolved
	if data.ConfigError != "" {
		rl.DrawText("config: "+data.ConfigError, 10, 115, 14, rl.Red)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Total      time.Duration
}

// PerfPanel renders the step phase performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData, sortedNames []string) {
	x := p.x
	y := p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for i, name := range sortedNames {
		if i >= 12 {
			break
		}

		avg := data.PhaseTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 20 {
			color = rl.Red
		} else if pct > 10 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-16s %6s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// SolutionPanelData holds data for the solution readout panel.
type SolutionPanelData struct {
	PH            float32
	Concentration float32
	DissolvedMass float32
	IndicatorOn   bool
	Tint          rl.Color
}

// SolutionPanel renders the chemistry readout in the top-right corner.
type SolutionPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewSolutionPanel creates a new solution panel.
func NewSolutionPanel(x, y, width int32) *SolutionPanel {
	return &SolutionPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *SolutionPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the solution panel.
func (s *SolutionPanel) Draw(data SolutionPanelData) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	panelHeight := lineHeight*6 + padding*2

	// Draw panel background
	r.DrawPanel(s.x, s.y, s.width, panelHeight)

	y := s.y + padding

	y = r.DrawSectionHeader(s.x+padding, y, "Solution")
	y += 2

	// pH scaled to the acid floor..neutral range for the bar
	phNorm := (data.PH - 3.0) / 4.0
	y = r.DrawBar(s.x+padding, y, "pH", phNorm, s.width-padding*2)
	y = r.DrawLabelValue(s.x+padding, y, "Conc", fmt.Sprintf("%.3f", data.Concentration), s.width-padding*2)
	y = r.DrawLabelValue(s.x+padding, y, "Acid", fmt.Sprintf("%.2f", data.DissolvedMass), s.width-padding*2)

	indicator := "off"
	if data.IndicatorOn {
		indicator = "on"
	}
	y = r.DrawLabelValue(s.x+padding, y, "Indic", indicator, s.width-padding*2)
	y = r.DrawColorSwatch(s.x+padding, y, "Tint", data.Tint, s.width-padding*2)

	return y
}
