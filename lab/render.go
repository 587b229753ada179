package lab

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/chemlab/beaker"
	"github.com/pthm-cable/chemlab/ui"
)

// Draw renders one frame of the bench scene.
func (l *Lab) Draw() {
	l.perfCollector.RecordFrame()

	rl.BeginDrawing()
	renderStart := time.Now()
	rl.ClearBackground(rl.Black)

	l.scene.DrawBackground(l.view, int32(l.screenWidth), int32(l.screenHeight))

	radius := l.cfg.Derived.Radius32
	surfaceY := l.cfg.Derived.SurfaceY32
	indicatorOn := l.mgr.IsIndicatorEnabled()
	tintR, tintG, tintB := l.chem.ReactionColor()

	// Water body with its dye tint
	wx, wy, ww, wh := l.view.WaterRect(radius, surfaceY)
	l.water.Draw(float32(l.tick)*0.01, wx, wy, ww, wh,
		tintR, tintG, tintB, l.mgr.GlobalConcentration(), indicatorOn)

	// Contents, back to front
	l.powderRenderer.Draw(l.view, l.powder, l.frame, float32(l.cfg.Powder.GrainRadius))
	l.plumeRenderer.Draw(l.view, l.mgr.Plume(), radius, indicatorOn)

	l.collectEffectSprites()
	l.effectsRenderer.DrawBubbles(l.view, l.bubbles)
	l.effectsRenderer.DrawRipples(l.view, l.ripples)
	l.effectsRenderer.DrawDroplets(l.view, l.droplets)

	// Glass drawn last so the rim overlays the contents
	l.scene.DrawBeaker(l.view, radius, surfaceY)

	l.drawActiveOverlays()
	l.drawUI()
	l.perf.Record("render", time.Since(renderStart))

	rl.EndDrawing()
}

// drawActiveOverlays renders all currently enabled overlays.
func (l *Lab) drawActiveOverlays() {
	// Top-down insets share the bottom-right corner; field and density are
	// mutually exclusive in the registry so they never fight for it.
	insetSize := int32(200)
	insetX := int32(l.screenWidth) - insetSize - 10
	insetY := int32(l.screenHeight) - insetSize - 40

	for _, id := range l.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayField:
			field := l.mgr.Field()
			tintR, tintG, tintB := l.chem.ReactionColor()
			l.fieldOverlay.Init(field.Resolution())
			l.fieldOverlay.UpdateField(field.Values(), field.Resolution(), tintR, tintG, tintB)
			l.fieldOverlay.Draw(float32(insetX), float32(insetY), float32(insetSize), float32(insetSize))
		case ui.OverlayDensity:
			l.debugRenderer.DrawDensity(l.mgr.Plume(), l.cfg.Plume.PerCellCap, insetX, insetY, insetSize)
		case ui.OverlayVectors:
			l.debugRenderer.DrawVectors(l.view, l.mgr.Plume(), l.mgr.IsIndicatorEnabled())
		case ui.OverlayPerf:
			l.drawPerfPanel()
		}
	}
}

// drawPerfPanel renders the step timing breakdown.
func (l *Lab) drawPerfPanel() {
	phaseTimes := make(map[string]time.Duration)
	for _, name := range l.perf.SortedNames() {
		phaseTimes[name] = l.perf.Avg(name)
	}

	l.perfPanel.Draw(ui.PerfPanelData{
		PhaseTimes: phaseTimes,
		Total:      l.perf.Total(),
	}, l.perf.SortedNames())
}

// drawUI draws the HUD and panels.
func (l *Lab) drawUI() {
	stats := l.mgr.PlumeStats()
	hr, hg, hb := l.chem.Tint()

	l.hud.Draw(ui.HUDData{
		Title:         "Chem Lab",
		Tick:          l.tick,
		Speed:         l.stepsPerUpdate,
		FPS:           rl.GetFPS(),
		Paused:        l.paused,
		PlumeActive:   stats.Active,
		PlumeFree:     stats.Free,
		QueueDepth:    stats.QueueDepth,
		Concentration: l.mgr.GlobalConcentration(),
		PH:            l.chem.PHScore(),
		TintR:         hr,
		TintG:         hg,
		TintB:         hb,
		SettledGrains: l.powder.SettledTotal(),
		VisibleGrains: l.powder.GrainTotal(),
		Swirling:      l.powder.Swirling(),
		ConfigError:   l.configError,
		ScreenWidth:   int32(l.screenWidth),
		ScreenHeight:  int32(l.screenHeight),
	})

	l.solutionPanel.Draw(ui.SolutionPanelData{
		PH:            l.chem.PHScore(),
		Concentration: l.mgr.GlobalConcentration(),
		DissolvedMass: l.chem.DissolvedAcid(),
		IndicatorOn:   l.chem.HasIndicator(),
		Tint: rl.Color{
			R: uint8(hr * 255),
			G: uint8(hg * 255),
			B: uint8(hb * 255),
			A: 255,
		},
	})

	l.controlsPanel.Draw(l.overlays)
	l.applyTuning(l.tuningPanel.Draw())

	l.hud.DrawControls(int32(l.screenWidth), int32(l.screenHeight),
		"SPACE: Pause | < >: Speed | D: Drop | W: Pour | S: Swirl | B: Base | C: Clear | R: Reset | TAB: Tune | O: Overlays | Click: Dye")
}

// applyTuning pushes tuning panel edits into the live plume system.
func (l *Lab) applyTuning(action ui.TuningAction) {
	switch action {
	case ui.TuningApply:
		plume, style := l.tuningPanel.Values()
		if err := l.mgr.SetPlumeConfig(plume); err != nil {
			l.configError = err.Error()
			return
		}
		l.configError = ""
		l.mgr.SetPlumeStyle(beaker.StyleFromConfig(style))

	case ui.TuningReset:
		l.tuningPanel.SetValues(l.cfg.Plume, l.cfg.PlumeStyle)
		if err := l.mgr.SetPlumeConfig(l.cfg.Plume); err == nil {
			l.mgr.SetPlumeStyle(beaker.StyleFromConfig(l.cfg.PlumeStyle))
			l.configError = ""
		}
	}
}
