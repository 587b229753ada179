package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/config"
)

// TuningAction reports what the user did in the tuning panel this frame.
type TuningAction int

const (
	TuningNone  TuningAction = iota
	TuningApply              // push the working values into the simulation
	TuningReset              // restore the working values from config
)

// TuningPanel edits a working copy of the plume and style sections at
// runtime. Values only reach the simulation when the user hits Apply, so
// half-dragged sliders never feed the spawn loop.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	plume config.PlumeConfig
	style config.StyleConfig

	// Capacity bounds the max-active slider; it is fixed at pool creation.
	capacity int
}

// NewTuningPanel creates a panel seeded with the given config sections.
func NewTuningPanel(x, y, width int32, plume config.PlumeConfig, style config.StyleConfig) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		plume:    plume,
		style:    style,
		capacity: plume.Capacity,
	}
}

// SetPosition updates the panel position.
func (p *TuningPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Toggle switches panel visibility.
func (p *TuningPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *TuningPanel) IsVisible() bool {
	return p.visible
}

// Values returns the current working copies.
func (p *TuningPanel) Values() (config.PlumeConfig, config.StyleConfig) {
	return p.plume, p.style
}

// SetValues replaces the working copies, e.g. after a reset.
func (p *TuningPanel) SetValues(plume config.PlumeConfig, style config.StyleConfig) {
	p.plume = plume
	p.style = style
	p.capacity = plume.Capacity
}

// Draw renders the panel and returns the action the user took.
func (p *TuningPanel) Draw() TuningAction {
	if !p.visible {
		return TuningNone
	}

	r := p.renderer
	padding := r.Theme.Padding

	const rowHeight = 34
	const rows = 13
	panelHeight := int32(rows*rowHeight) + padding*4 + 80

	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := p.y + padding

	rl.DrawText("Plume Tuning", x, y, 16, rl.White)
	y += 24

	p.plume.SpawnRate = float64(p.sliderRow(x, &y, "Spawn rate", float32(p.plume.SpawnRate), 0, 400, "%.0f"))
	p.plume.SpawnRateMultiplier = float64(p.sliderRow(x, &y, "Rate multiplier", float32(p.plume.SpawnRateMultiplier), 0, 3, "%.2f"))
	p.plume.MaxActive = int(p.sliderRow(x, &y, "Max active", float32(p.plume.MaxActive), 1, float32(p.capacity), "%.0f"))
	p.plume.LifeSeconds = float64(p.sliderRow(x, &y, "Life (s)", float32(p.plume.LifeSeconds), 0.5, 6, "%.2f"))
	p.plume.AlphaExponent = float64(p.sliderRow(x, &y, "Alpha exponent", float32(p.plume.AlphaExponent), 0.5, 3, "%.2f"))
	p.plume.SizeExponent = float64(p.sliderRow(x, &y, "Size exponent", float32(p.plume.SizeExponent), 0.2, 2, "%.2f"))
	p.plume.MinAlpha = float64(p.sliderRow(x, &y, "Min alpha", float32(p.plume.MinAlpha), 0, 0.3, "%.3f"))
	p.plume.AgeSpreadStrength = float64(p.sliderRow(x, &y, "Age spread", float32(p.plume.AgeSpreadStrength), 0, 1, "%.2f"))
	p.plume.PerCellCap = int(p.sliderRow(x, &y, "Per-cell cap", float32(p.plume.PerCellCap), 0, 40, "%.0f"))
	p.plume.SuppressChance = float64(p.sliderRow(x, &y, "Suppress chance", float32(p.plume.SuppressChance), 0, 1, "%.2f"))

	p.style.Opacity = float64(p.sliderRow(x, &y, "Opacity", float32(p.style.Opacity), 0, 1, "%.2f"))
	p.style.Saturation = float64(p.sliderRow(x, &y, "Saturation", float32(p.style.Saturation), 0, 2, "%.2f"))
	p.style.Brightness = float64(p.sliderRow(x, &y, "Brightness", float32(p.style.Brightness), 0, 2, "%.2f"))

	// Toggles
	toggleW := (p.width - padding*3) / 2
	p.plume.Enabled = gui.CheckBox(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: 16, Height: 16},
		"Spawning", p.plume.Enabled)
	p.style.Additive = gui.CheckBox(
		rl.Rectangle{X: float32(x + toggleW), Y: float32(y), Width: 16, Height: 16},
		"Additive blend", p.style.Additive)
	y += 22

	p.plume.RequireIndicator = gui.CheckBox(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: 16, Height: 16},
		"Require indicator", p.plume.RequireIndicator)
	y += 26

	// Buttons
	action := TuningNone
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 90, Height: 26}, "Apply") {
		action = TuningApply
	}
	if gui.Button(rl.Rectangle{X: float32(x + 100), Y: float32(y), Width: 90, Height: 26}, "Reset") {
		action = TuningReset
	}

	return action
}

// sliderRow draws one labelled slider and advances the Y cursor.
func (p *TuningPanel) sliderRow(x int32, y *int32, label string, value, min, max float32, format string) float32 {
	r := p.renderer
	padding := r.Theme.Padding

	rl.DrawText(label, x, *y, r.Theme.FontSize, r.Theme.LabelColor)
	*y += 14

	sliderW := float32(p.width - padding*2 - 60)
	v := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(*y), Width: sliderW, Height: 16},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, v), x+int32(sliderW)+8, *y+2, r.Theme.FontSize, r.Theme.ValueColor)
	*y += 20

	return v
}
