package lab

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/ui"
)

// Plume particles added by clicking in the water
const clickSourceCount = 6

// Base mass neutralized per key press
const baseDoseMass = 0.25

// handleInput processes keyboard and mouse input.
func (l *Lab) handleInput() {
	// Window resize propagation
	l.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		l.paused = !l.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && l.stepsPerUpdate > 1 {
		l.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && l.stepsPerUpdate < 10 {
		l.stepsPerUpdate++
	}

	// Bench actions
	if rl.IsKeyPressed(rl.KeyD) {
		l.DropIndicator()
	}
	if rl.IsKeyPressed(rl.KeyW) {
		l.PourPowder()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		l.ToggleSwirl()
	}
	if rl.IsKeyPressed(rl.KeyB) {
		l.chem.AddBase(baseDoseMass)
	}
	if rl.IsKeyPressed(rl.KeyC) {
		l.mgr.ClearPlume()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		l.ResetSim()
	}

	// Panels
	if rl.IsKeyPressed(rl.KeyTab) {
		l.tuningPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyO) {
		l.controlsPanel.Toggle()
	}

	l.handleOverlayKeys()
	l.handleCameraInput()
	l.handleMouse()
}

// handleOverlayKeys checks for overlay toggle key presses.
func (l *Lab) handleOverlayKeys() {
	for _, desc := range l.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			newState := l.overlays.Toggle(desc.ID)

			// Enabling the perf overlay also dumps a console snapshot.
			if desc.ID == ui.OverlayPerf && newState {
				l.logPerfStats()
			}
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (l *Lab) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == l.screenWidth && h == l.screenHeight {
		return
	}
	l.screenWidth = w
	l.screenHeight = h

	if l.camera != nil {
		l.camera.Resize(w, h)
	}
	if l.water != nil {
		l.water.Resize(w, h)
	}
	if l.solutionPanel != nil {
		l.solutionPanel.SetPosition(int32(w)-230, 10)
	}
	if l.perfPanel != nil {
		l.perfPanel.SetPosition(int32(w)-230, 170)
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (l *Lab) handleCameraInput() {
	if l.camera == nil {
		return
	}

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / l.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		l.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		l.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		l.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		l.camera.Pan(0, -panSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		zoomFactor := float32(1.0) + wheelMove*0.1
		l.camera.ZoomBy(zoomFactor)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		l.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		l.camera.ZoomBy(0.8)
	}

	// Reset view
	if rl.IsKeyPressed(rl.KeyHome) {
		l.camera.Reset()
	}
}

// handleMouse lets a click inject dye directly into the water.
func (l *Lab) handleMouse() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mouse := rl.GetMousePosition()
	x, y := l.view.ScreenToLocal(mouse.X, mouse.Y)

	r := l.cfg.Derived.ClampRadius
	if x < -r || x > r || y < 0 || y > l.cfg.Derived.SurfaceY32 {
		return
	}

	l.mgr.AddIndicatorAt(x, 0)
	l.mgr.AddSource(x, 0, clickSourceCount)
}
