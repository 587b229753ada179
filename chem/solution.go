// Package chem models the solution chemistry the beaker visuals react to:
// pH, indicator presence, and the reaction color rule.
package chem

import (
	"github.com/chewxy/math32"
	"github.com/crazy3lf/colorconv"

	"github.com/pthm-cable/chemlab/config"
)

// acidFloorEps snaps tiny residual acid to zero so pH returns exactly to
// neutral after relaxation.
const acidFloorEps = 1e-5

// Solution tracks what has been mixed into the beaker water. pH follows the
// dissolved acid mass with a saturating response: heavy dosing approaches the
// configured acid floor instead of running off the scale.
type Solution struct {
	cfg config.ChemConfig

	dissolvedAcid  float32
	indicator      bool
	indicatorDrops int
}

// NewSolution starts from neutral water with nothing dissolved.
func NewSolution(cfg config.ChemConfig) *Solution {
	return &Solution{cfg: cfg}
}

// AddIndicatorDrop marks the indicator present and counts the drop.
func (s *Solution) AddIndicatorDrop() {
	s.indicator = true
	s.indicatorDrops++
}

// HasIndicator reports whether any indicator has been added.
func (s *Solution) HasIndicator() bool {
	return s.indicator
}

// IndicatorDrops returns how many drops have been added since the last reset.
func (s *Solution) IndicatorDrops() int {
	return s.indicatorDrops
}

// DissolveAcid adds dissolved acid mass, pushing pH toward the acid floor.
// Negative mass is ignored.
func (s *Solution) DissolveAcid(mass float32) {
	if mass > 0 {
		s.dissolvedAcid += mass
	}
}

// AddBase neutralizes dissolved acid, pushing pH back toward neutral.
// Negative mass is ignored.
func (s *Solution) AddBase(mass float32) {
	if mass <= 0 {
		return
	}
	s.dissolvedAcid -= mass * float32(s.cfg.BaseStrength)
	if s.dissolvedAcid < 0 {
		s.dissolvedAcid = 0
	}
}

// Step relaxes the dissolved acid toward zero, modeling slow dilution.
func (s *Solution) Step(dt float32) {
	if dt <= 0 || s.dissolvedAcid == 0 {
		return
	}
	s.dissolvedAcid *= math32.Exp(-float32(s.cfg.RelaxRate) * dt)
	if s.dissolvedAcid < acidFloorEps {
		s.dissolvedAcid = 0
	}
}

// PHScore returns the current pH. Neutral water reads 7; dissolving acid
// saturates toward the configured floor.
func (s *Solution) PHScore() float32 {
	floor := float32(s.cfg.AcidFloor)
	sat := 1 - math32.Exp(-float32(s.cfg.AcidStrength)*s.dissolvedAcid)
	return 7 - (7-floor)*sat
}

// DissolvedAcid returns the dissolved acid mass.
func (s *Solution) DissolvedAcid() float32 {
	return s.dissolvedAcid
}

// ReactionColor returns the plume color for the current pH: the acid color
// once pH drops past the threshold, the neutral color otherwise.
func (s *Solution) ReactionColor() (r, g, b float32) {
	if s.PHScore() < float32(s.cfg.AcidThreshold) {
		return colorTriple(s.cfg.AcidColor, 0.2, 0.9, 0.3)
	}
	return colorTriple(s.cfg.NeutralColor, 0.3, 0.45, 0.9)
}

// Tint maps pH onto a universal-indicator hue ramp, red through green to
// violet. Used for readouts; the water shader derives its own tint.
func (s *Solution) Tint() (r, g, b float32) {
	ph := s.PHScore()
	t := (ph - 3) / 8
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	r8, g8, b8, err := colorconv.HSVToRGB(float64(t)*270, 0.75, 0.85)
	if err != nil {
		return colorTriple(s.cfg.NeutralColor, 0.3, 0.45, 0.9)
	}
	return float32(r8) / 255, float32(g8) / 255, float32(b8) / 255
}

// Reset returns the solution to plain neutral water.
func (s *Solution) Reset() {
	s.dissolvedAcid = 0
	s.indicator = false
	s.indicatorDrops = 0
}

// colorTriple reads a 3-element config color, falling back when unset.
func colorTriple(c []float64, dr, dg, db float32) (r, g, b float32) {
	if len(c) != 3 {
		return dr, dg, db
	}
	return float32(c[0]), float32(c[1]), float32(c[2])
}
