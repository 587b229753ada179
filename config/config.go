// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig    `yaml:"screen"`
	Physics    PhysicsConfig   `yaml:"physics"`
	Beaker     BeakerConfig    `yaml:"beaker"`
	Field      FieldConfig     `yaml:"field"`
	Plume      PlumeConfig     `yaml:"plume"`
	PlumeStyle StyleConfig     `yaml:"plume_style"`
	Powder     PowderConfig    `yaml:"powder"`
	Chem       ChemConfig      `yaml:"chem"`
	Effects    EffectsConfig   `yaml:"effects"`
	Demo       DemoConfig      `yaml:"demo"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds simulation timing parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per simulation tick
}

// BeakerConfig holds vessel geometry in local and world space.
type BeakerConfig struct {
	Radius        float64 `yaml:"radius"`          // inner radius, local units
	WaterSurfaceY float64 `yaml:"water_surface_y"` // local Y of the water surface
	BottomY       float64 `yaml:"bottom_y"`        // local Y of the floor
	WallClamp     float64 `yaml:"wall_clamp"`      // fraction of radius particles may reach
	WorldX        float64 `yaml:"world_x"`         // beaker center in world space
	WorldY        float64 `yaml:"world_y"`
	WorldZ        float64 `yaml:"world_z"`
	Yaw           float64 `yaml:"yaw"` // rotation about world Y, radians
}

// FieldConfig holds indicator surface-field parameters.
type FieldConfig struct {
	Resolution        int       `yaml:"resolution"`         // grid edge length in cells
	StepHz            float64   `yaml:"step_hz"`            // field simulation rate
	MeanHz            float64   `yaml:"mean_hz"`            // concentration recompute rate
	SplatRadiusFrac   float64   `yaml:"splat_radius_frac"`  // splat radius as fraction of grid edge
	BlurRadii         []int     `yaml:"blur_radii"`         // box blur radii in cells
	BlurWeights       []float64 `yaml:"blur_weights"`       // per-radius weights, normalized in use
	DecayRate         float64   `yaml:"decay_rate"`         // exponential fade per second
	SpreadMix         float64   `yaml:"spread_mix"`         // blend toward blurred field per step
	ConcentrationGain float64   `yaml:"concentration_gain"` // mean-to-concentration amplification
	RiseBlend         float64   `yaml:"rise_blend"`         // concentration blend when mean above threshold
	DecayBlend        float64   `yaml:"decay_blend"`        // concentration blend when mean below threshold
	MeanThreshold     float64   `yaml:"mean_threshold"`     // mean level separating rise from decay
}

// PlumeConfig holds dye plume parameters. The whole section can be swapped
// at runtime through PlumeSystem.SetConfig, which validates it first.
type PlumeConfig struct {
	Capacity            int     `yaml:"capacity"`              // particle pool size, fixed at construction
	MaxActive           int     `yaml:"max_active"`            // hard cap on live particles
	SpawnRate           float64 `yaml:"spawn_rate"`            // queue drain budget per second
	SpawnRateMultiplier float64 `yaml:"spawn_rate_multiplier"` // runtime scale on spawn_rate
	LifeSeconds         float64 `yaml:"life_seconds"`          // particle lifetime
	AlphaExponent       float64 `yaml:"alpha_exponent"`        // life-to-alpha curve shape
	SizeExponent        float64 `yaml:"size_exponent"`         // age-to-size curve shape
	MinAlpha            float64 `yaml:"min_alpha"`             // render alpha floor for live particles
	Enabled             bool    `yaml:"enabled"`               // false stops spawning, keeps integration
	AgeSpreadStrength   float64 `yaml:"age_spread_strength"`   // outward drift gain as particles age
	DensityCellSize     float64 `yaml:"density_cell_size"`     // crowding grid cell edge, local units
	PerCellCap          int     `yaml:"per_cell_cap"`          // crowding threshold per grid cell
	SuppressChance      float64 `yaml:"suppress_chance"`       // skip probability in crowded cells
	RequireIndicator    bool    `yaml:"require_indicator"`     // surface plumes hidden without indicator
}

// Validate checks internal consistency of a plume section.
func (p PlumeConfig) Validate() error {
	if p.Capacity <= 0 {
		return fmt.Errorf("plume: capacity must be positive, got %d", p.Capacity)
	}
	if p.MaxActive <= 0 || p.MaxActive > p.Capacity {
		return fmt.Errorf("plume: max_active must be in 1..%d, got %d", p.Capacity, p.MaxActive)
	}
	if p.SpawnRate < 0 {
		return fmt.Errorf("plume: spawn_rate must be non-negative, got %g", p.SpawnRate)
	}
	if p.SpawnRateMultiplier < 0 {
		return fmt.Errorf("plume: spawn_rate_multiplier must be non-negative, got %g", p.SpawnRateMultiplier)
	}
	if p.LifeSeconds <= 0 {
		return fmt.Errorf("plume: life_seconds must be positive, got %g", p.LifeSeconds)
	}
	if p.AlphaExponent <= 0 || p.SizeExponent <= 0 {
		return fmt.Errorf("plume: exponents must be positive, got alpha=%g size=%g", p.AlphaExponent, p.SizeExponent)
	}
	if p.MinAlpha < 0 || p.MinAlpha > 1 {
		return fmt.Errorf("plume: min_alpha must be in [0, 1], got %g", p.MinAlpha)
	}
	if p.AgeSpreadStrength < 0 {
		return fmt.Errorf("plume: age_spread_strength must be non-negative, got %g", p.AgeSpreadStrength)
	}
	if p.DensityCellSize <= 0 {
		return fmt.Errorf("plume: density_cell_size must be positive, got %g", p.DensityCellSize)
	}
	if p.PerCellCap < 0 {
		return fmt.Errorf("plume: per_cell_cap must be non-negative, got %d", p.PerCellCap)
	}
	if p.SuppressChance < 0 || p.SuppressChance > 1 {
		return fmt.Errorf("plume: suppress_chance must be in [0, 1], got %g", p.SuppressChance)
	}
	return nil
}

// StyleConfig holds default plume appearance. Style applies at spawn time
// only: edits never retint particles that are already alive.
type StyleConfig struct {
	Opacity      float64   `yaml:"opacity"`       // base particle alpha
	Saturation   float64   `yaml:"saturation"`    // HSV saturation multiplier
	Brightness   float64   `yaml:"brightness"`    // HSV value multiplier
	EdgeSoftness float64   `yaml:"edge_softness"` // feathered fraction of particle radius
	Additive     bool      `yaml:"additive"`      // additive vs alpha blending
	Color        []float64 `yaml:"color"`         // default dye color, RGB in [0, 1]
}

// PowderConfig holds powder reagent parameters.
type PowderConfig struct {
	GrainCount         int       `yaml:"grain_count"`           // grains per poured batch
	GrainRadius        float64   `yaml:"grain_radius"`          // render size, world units
	Gravity            float64   `yaml:"gravity"`               // fall acceleration above water
	WaterGravityFactor float64   `yaml:"water_gravity_factor"`  // gravity scale once submerged
	WaterDrag          float64   `yaml:"water_drag"`            // exponential damping in water, 1/s
	SettleFraction     float64   `yaml:"settle_fraction"`       // settled share that ends the drop phase
	DropTimeoutSec     float64   `yaml:"drop_timeout_sec"`      // hard cap on the drop phase
	PlumeIntervalSec   float64   `yaml:"plume_interval_sec"`    // min spacing between bottom bursts
	PlumeBurstCount    int       `yaml:"plume_burst_count"`     // particles requested per burst
	MinSettledForPlume int       `yaml:"min_settled_for_plume"` // settled grains required to emit
	DissolveMass       float64   `yaml:"dissolve_mass"`         // reagent mass released per batch
	GrainColor         []float64 `yaml:"grain_color"`           // default grain color, RGB in [0, 1]
}

// ChemConfig holds solution chemistry parameters.
type ChemConfig struct {
	AcidThreshold float64   `yaml:"acid_threshold"` // pH below this reads as acidic
	AcidFloor     float64   `yaml:"acid_floor"`     // asymptotic minimum pH
	AcidStrength  float64   `yaml:"acid_strength"`  // dissolved mass to pH drop rate
	BaseStrength  float64   `yaml:"base_strength"`  // neutralization per base dose
	RelaxRate     float64   `yaml:"relax_rate"`     // dissolved mass decay per second
	AcidColor     []float64 `yaml:"acid_color"`     // reaction color below threshold
	NeutralColor  []float64 `yaml:"neutral_color"`  // reaction color at or above threshold
}

// EffectsConfig holds droplet, bubble, and ripple parameters.
type EffectsConfig struct {
	DropletGravity     float64 `yaml:"droplet_gravity"`      // fall acceleration of indicator drops
	DropletRadius      float64 `yaml:"droplet_radius"`       // render size, local units
	DropletSplashCount int     `yaml:"droplet_splash_count"` // surface plume particles per landing
	DropperHeight      float64 `yaml:"dropper_height"`       // spawn height above the water surface
	BubbleRate         float64 `yaml:"bubble_rate"`          // bubbles per second while dissolving
	BubbleRiseSpeed    float64 `yaml:"bubble_rise_speed"`
	BubbleWobble       float64 `yaml:"bubble_wobble"` // horizontal wobble amplitude
	RippleExpandSpeed  float64 `yaml:"ripple_expand_speed"`
	RippleLifeSec      float64 `yaml:"ripple_life_sec"`
}

// DemoConfig holds the scripted demo timeline.
type DemoConfig struct {
	DropCount           int     `yaml:"drop_count"`        // indicator drops at the start
	DropIntervalSec     float64 `yaml:"drop_interval_sec"` // spacing between drops
	PourDelaySec        float64 `yaml:"pour_delay_sec"`    // wait between last drop and powder pour
	SettleWaitSec       float64 `yaml:"settle_wait_sec"`   // wait after the drop phase ends
	SwirlDelaySec       float64 `yaml:"swirl_delay_sec"`   // wait before stirring starts
	SwirlDurationSec    float64 `yaml:"swirl_duration_sec"`
	SwirlStrength       float64 `yaml:"swirl_strength"` // tangential stir force
	SwirlInward         float64 `yaml:"swirl_inward"`   // centripetal pull fraction
	SwirlDrag           float64 `yaml:"swirl_drag"`     // velocity damping while stirring, 1/s
	DissolveDurationSec float64 `yaml:"dissolve_duration_sec"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32 // Physics.DT as float32
	Radius32     float32 // Beaker.Radius as float32
	SurfaceY32   float32 // Beaker.WaterSurfaceY as float32
	BottomY32    float32 // Beaker.BottomY as float32
	ClampRadius  float32 // Beaker.Radius * Beaker.WallClamp
	FieldTickDT  float32 // 1 / Field.StepHz
	MeanInterval float32 // 1 / Field.MeanHz
	ScreenW32    float32 // Screen.Width as float32
	ScreenH32    float32 // Screen.Height as float32
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return Load("")
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the full configuration for consistency.
func (c *Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen: dimensions must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics: dt must be positive, got %g", c.Physics.DT)
	}

	if c.Beaker.Radius <= 0 {
		return fmt.Errorf("beaker: radius must be positive, got %g", c.Beaker.Radius)
	}
	if c.Beaker.WaterSurfaceY <= c.Beaker.BottomY {
		return fmt.Errorf("beaker: water_surface_y %g must be above bottom_y %g", c.Beaker.WaterSurfaceY, c.Beaker.BottomY)
	}
	if c.Beaker.WallClamp <= 0 || c.Beaker.WallClamp > 1 {
		return fmt.Errorf("beaker: wall_clamp must be in (0, 1], got %g", c.Beaker.WallClamp)
	}

	if c.Field.Resolution < 8 {
		return fmt.Errorf("field: resolution must be at least 8, got %d", c.Field.Resolution)
	}
	if c.Field.StepHz <= 0 || c.Field.MeanHz <= 0 {
		return fmt.Errorf("field: step_hz and mean_hz must be positive, got %g and %g", c.Field.StepHz, c.Field.MeanHz)
	}
	if c.Field.SplatRadiusFrac <= 0 || c.Field.SplatRadiusFrac > 0.5 {
		return fmt.Errorf("field: splat_radius_frac must be in (0, 0.5], got %g", c.Field.SplatRadiusFrac)
	}
	if len(c.Field.BlurRadii) == 0 || len(c.Field.BlurRadii) != len(c.Field.BlurWeights) {
		return fmt.Errorf("field: blur_radii and blur_weights must be non-empty and the same length, got %d and %d",
			len(c.Field.BlurRadii), len(c.Field.BlurWeights))
	}
	var weightSum float64
	for i, r := range c.Field.BlurRadii {
		if r < 0 {
			return fmt.Errorf("field: blur_radii[%d] must be non-negative, got %d", i, r)
		}
		if c.Field.BlurWeights[i] < 0 {
			return fmt.Errorf("field: blur_weights[%d] must be non-negative, got %g", i, c.Field.BlurWeights[i])
		}
		weightSum += c.Field.BlurWeights[i]
	}
	if weightSum <= 0 {
		return fmt.Errorf("field: blur_weights must sum to a positive value")
	}
	if c.Field.DecayRate < 0 {
		return fmt.Errorf("field: decay_rate must be non-negative, got %g", c.Field.DecayRate)
	}
	if c.Field.SpreadMix < 0 || c.Field.SpreadMix > 1 {
		return fmt.Errorf("field: spread_mix must be in [0, 1], got %g", c.Field.SpreadMix)
	}
	if c.Field.ConcentrationGain <= 0 {
		return fmt.Errorf("field: concentration_gain must be positive, got %g", c.Field.ConcentrationGain)
	}
	if c.Field.RiseBlend <= 0 || c.Field.RiseBlend > 1 || c.Field.DecayBlend <= 0 || c.Field.DecayBlend > 1 {
		return fmt.Errorf("field: rise_blend and decay_blend must be in (0, 1], got %g and %g", c.Field.RiseBlend, c.Field.DecayBlend)
	}
	if c.Field.MeanThreshold < 0 {
		return fmt.Errorf("field: mean_threshold must be non-negative, got %g", c.Field.MeanThreshold)
	}

	if err := c.Plume.Validate(); err != nil {
		return err
	}

	if c.PlumeStyle.Opacity < 0 || c.PlumeStyle.Opacity > 1 {
		return fmt.Errorf("plume_style: opacity must be in [0, 1], got %g", c.PlumeStyle.Opacity)
	}
	if c.PlumeStyle.Saturation < 0 || c.PlumeStyle.Brightness < 0 {
		return fmt.Errorf("plume_style: saturation and brightness must be non-negative")
	}
	if len(c.PlumeStyle.Color) != 3 {
		return fmt.Errorf("plume_style: color must have 3 components, got %d", len(c.PlumeStyle.Color))
	}

	if c.Powder.GrainCount <= 0 {
		return fmt.Errorf("powder: grain_count must be positive, got %d", c.Powder.GrainCount)
	}
	if c.Powder.SettleFraction <= 0 || c.Powder.SettleFraction > 1 {
		return fmt.Errorf("powder: settle_fraction must be in (0, 1], got %g", c.Powder.SettleFraction)
	}
	if c.Powder.DropTimeoutSec <= 0 {
		return fmt.Errorf("powder: drop_timeout_sec must be positive, got %g", c.Powder.DropTimeoutSec)
	}
	if c.Powder.PlumeIntervalSec <= 0 {
		return fmt.Errorf("powder: plume_interval_sec must be positive, got %g", c.Powder.PlumeIntervalSec)
	}
	if c.Powder.MinSettledForPlume < 0 {
		return fmt.Errorf("powder: min_settled_for_plume must be non-negative, got %d", c.Powder.MinSettledForPlume)
	}
	if len(c.Powder.GrainColor) != 3 {
		return fmt.Errorf("powder: grain_color must have 3 components, got %d", len(c.Powder.GrainColor))
	}

	if c.Chem.AcidFloor <= 0 || c.Chem.AcidFloor >= 7 {
		return fmt.Errorf("chem: acid_floor must be in (0, 7), got %g", c.Chem.AcidFloor)
	}
	if c.Chem.AcidThreshold <= c.Chem.AcidFloor || c.Chem.AcidThreshold > 7 {
		return fmt.Errorf("chem: acid_threshold must be in (%g, 7], got %g", c.Chem.AcidFloor, c.Chem.AcidThreshold)
	}
	if len(c.Chem.AcidColor) != 3 || len(c.Chem.NeutralColor) != 3 {
		return fmt.Errorf("chem: acid_color and neutral_color must have 3 components")
	}

	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("telemetry: stats_window must be positive, got %g", c.Telemetry.StatsWindow)
	}

	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Radius32 = float32(c.Beaker.Radius)
	c.Derived.SurfaceY32 = float32(c.Beaker.WaterSurfaceY)
	c.Derived.BottomY32 = float32(c.Beaker.BottomY)
	c.Derived.ClampRadius = float32(c.Beaker.Radius * c.Beaker.WallClamp)
	c.Derived.FieldTickDT = float32(1.0 / c.Field.StepHz)
	c.Derived.MeanInterval = float32(1.0 / c.Field.MeanHz)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
