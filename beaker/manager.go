// Package beaker simulates the contents of one lab beaker: an indicator
// concentration field over the water surface, a pooled system of buoyant dye
// plumes, and powder grains that pour, settle, swirl, and dissolve. The
// package is pure simulation; rendering and orchestration live elsewhere.
//
// Everything advances from explicit Step/Update calls on a single goroutine.
// Coordinates are beaker-local unless a name says otherwise; Frame converts
// to and from world space.
package beaker

import (
	"math/rand"

	"github.com/pthm-cable/chemlab/config"
)

// ChemState exposes the solution chemistry the beaker visuals depend on.
// chem.Solution implements it; tests substitute fixed values.
type ChemState interface {
	HasIndicator() bool
	PHScore() float32
	ReactionColor() (r, g, b float32)
}

// Manager owns one indicator field and one plume system and routes the
// operations the rest of the program needs. The chemistry accessor gates
// indicator-dependent behavior; a nil accessor reads as no indicator.
type Manager struct {
	field *IndicatorField
	plume *PlumeSystem
	chem  ChemState
	frame Frame
}

// NewManager builds the field and plume for a beaker placed at frame.
func NewManager(cfg *config.Config, frame Frame, chem ChemState, rng *rand.Rand) *Manager {
	return &Manager{
		field: NewIndicatorField(cfg.Field, cfg.Derived.Radius32),
		plume: NewPlumeSystem(cfg, rng),
		chem:  chem,
		frame: frame,
	}
}

// Frame returns the beaker's world placement.
func (m *Manager) Frame() Frame {
	return m.frame
}

// Field exposes the indicator field for rendering and tests.
func (m *Manager) Field() *IndicatorField {
	return m.field
}

// Plume exposes the plume system for rendering and tests.
func (m *Manager) Plume() *PlumeSystem {
	return m.plume
}

// IsIndicatorEnabled reports whether indicator has been added to the water.
func (m *Manager) IsIndicatorEnabled() bool {
	return m.chem != nil && m.chem.HasIndicator()
}

// PH returns the solution pH, or neutral when no chemistry is attached.
func (m *Manager) PH() float32 {
	if m.chem == nil {
		return 7
	}
	return m.chem.PHScore()
}

// AddIndicatorAt stamps the indicator field at the beaker-local point.
func (m *Manager) AddIndicatorAt(x, z float32) {
	m.field.AddIndicatorAt(x, z)
}

// Step advances the indicator field by dt seconds.
func (m *Manager) Step(dt float32) {
	m.field.Step(dt)
}

// GlobalConcentration returns the smoothed field intensity in [0, 1].
func (m *Manager) GlobalConcentration() float32 {
	return m.field.GlobalConcentration()
}

// AddSource queues gated surface plume particles at the local point.
func (m *Manager) AddSource(x, z float32, count int) {
	m.plume.AddSource(x, z, count)
}

// AddBottomSource queues bottom plume particles at the local point.
func (m *Manager) AddBottomSource(x, z float32, count int, opts BottomSourceOpts) {
	m.plume.AddBottomSource(x, z, count, opts)
}

// Update advances the plume system by dt seconds.
func (m *Manager) Update(dt float32) {
	m.plume.Update(dt)
}

// SetPlumeConfig validates and applies a new plume configuration.
func (m *Manager) SetPlumeConfig(cfg config.PlumeConfig) error {
	return m.plume.SetConfig(cfg)
}

// SetPlumeStyle replaces the spawn-time plume style.
func (m *Manager) SetPlumeStyle(style PlumeStyle) {
	m.plume.SetStyle(style)
}

// SetPlumeColor overrides the default dye color for future spawns.
func (m *Manager) SetPlumeColor(r, g, b float32) {
	m.plume.SetColor(r, g, b)
}

// PlumeStats snapshots plume pool occupancy.
func (m *Manager) PlumeStats() PlumeStats {
	return m.plume.Stats()
}

// ClearPlume kills every plume particle and drops queued requests.
func (m *Manager) ClearPlume() {
	m.plume.ClearPlume()
}

// ClearBottomPlumeParticles kills ungated plume particles immediately.
func (m *Manager) ClearBottomPlumeParticles() {
	m.plume.ClearBottomPlumeParticles()
}

// FadeOutBottomPlumes fades ungated plume particles out over duration.
func (m *Manager) FadeOutBottomPlumes(duration float32) {
	m.plume.FadeOutBottomPlumes(duration)
}

// DisableBottomPlumes blocks new bottom requests, optionally purging queued
// ones.
func (m *Manager) DisableBottomPlumes(clearQueued bool) {
	m.plume.DisableBottomPlumes(clearQueued)
}

// EnableBottomPlumes lifts the bottom request lockout.
func (m *Manager) EnableBottomPlumes() {
	m.plume.EnableBottomPlumes()
}

// SetBottomPlumeOffset nudges where bottom requests land, in local units.
func (m *Manager) SetBottomPlumeOffset(x, z float32) {
	m.plume.SetBottomSourceOffset(x, z)
}

// BottomPlumeOffset returns the local XZ nudge applied to bottom requests.
func (m *Manager) BottomPlumeOffset() (x, z float32) {
	return m.plume.BottomSourceOffset()
}

// Reset zeroes the field and kills all plume particles.
func (m *Manager) Reset() {
	m.field.Reset()
	m.plume.ClearPlume()
}

// Dispose releases field and plume buffers. All later calls no-op.
func (m *Manager) Dispose() {
	m.field.Dispose()
	m.plume.Dispose()
}
