// Package main provides CMA-ES tuning for plume and dye-field parameters.
package main

import (
	"math"

	"github.com/pthm-cable/chemlab/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Plume pool (capacity locked at 1000, pool size is fixed at construction)
			{Name: "max_active", Path: "plume.max_active", Min: 150, Max: 1000, Default: 600},
			{Name: "spawn_rate", Path: "plume.spawn_rate", Min: 30, Max: 360, Default: 120},
			{Name: "life_seconds", Path: "plume.life_seconds", Min: 0.8, Max: 5.0, Default: 2.2},
			// Plume shape
			{Name: "alpha_exponent", Path: "plume.alpha_exponent", Min: 0.5, Max: 3.0, Default: 1.4},
			{Name: "size_exponent", Path: "plume.size_exponent", Min: 0.2, Max: 2.0, Default: 0.6},
			{Name: "min_alpha", Path: "plume.min_alpha", Min: 0.0, Max: 0.3, Default: 0.05},
			{Name: "age_spread", Path: "plume.age_spread_strength", Min: 0.0, Max: 0.8, Default: 0.22},
			// Crowding control
			{Name: "density_cell_size", Path: "plume.density_cell_size", Min: 0.06, Max: 0.40, Default: 0.16},
			{Name: "per_cell_cap", Path: "plume.per_cell_cap", Min: 4, Max: 30, Default: 14},
			{Name: "suppress_chance", Path: "plume.suppress_chance", Min: 0.1, Max: 0.95, Default: 0.65},
			// Dye field
			{Name: "splat_radius_frac", Path: "field.splat_radius_frac", Min: 0.04, Max: 0.25, Default: 0.12},
			{Name: "field_decay_rate", Path: "field.decay_rate", Min: 0.05, Max: 1.2, Default: 0.35},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	// Clamp values to ensure they're within bounds
	clamped := pv.Clamp(values)

	// Apply each parameter to the config
	// Order must match Specs order
	i := 0

	// Plume pool (capacity locked, multiplier stays neutral during tuning)
	cfg.Plume.Capacity = 1000
	cfg.Plume.SpawnRateMultiplier = 1.0
	cfg.Plume.MaxActive = int(math.Round(clamped[i])); i++
	cfg.Plume.SpawnRate = clamped[i]; i++
	cfg.Plume.LifeSeconds = clamped[i]; i++

	// Plume shape
	cfg.Plume.AlphaExponent = clamped[i]; i++
	cfg.Plume.SizeExponent = clamped[i]; i++
	cfg.Plume.MinAlpha = clamped[i]; i++
	cfg.Plume.AgeSpreadStrength = clamped[i]; i++

	// Crowding control
	cfg.Plume.DensityCellSize = clamped[i]; i++
	cfg.Plume.PerCellCap = int(math.Round(clamped[i])); i++
	cfg.Plume.SuppressChance = clamped[i]; i++

	// Dye field
	cfg.Field.SplatRadiusFrac = clamped[i]; i++
	cfg.Field.DecayRate = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		// Plume pool
		float64(cfg.Plume.MaxActive),
		cfg.Plume.SpawnRate,
		cfg.Plume.LifeSeconds,
		// Plume shape
		cfg.Plume.AlphaExponent,
		cfg.Plume.SizeExponent,
		cfg.Plume.MinAlpha,
		cfg.Plume.AgeSpreadStrength,
		// Crowding control
		cfg.Plume.DensityCellSize,
		float64(cfg.Plume.PerCellCap),
		cfg.Plume.SuppressChance,
		// Dye field
		cfg.Field.SplatRadiusFrac,
		cfg.Field.DecayRate,
	}
}
