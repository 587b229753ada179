package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.Screen.Width != 1280 {
		t.Errorf("expected default screen width 1280, got %d", cfg.Screen.Width)
	}
	if cfg.Field.Resolution != 256 {
		t.Errorf("expected default field resolution 256, got %d", cfg.Field.Resolution)
	}
	if cfg.Plume.Capacity != 1000 {
		t.Errorf("expected default plume capacity 1000, got %d", cfg.Plume.Capacity)
	}
	if cfg.Plume.MaxActive != 600 {
		t.Errorf("expected default max active 600, got %d", cfg.Plume.MaxActive)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	content := "field:\n  resolution: 128\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading merged config: %v", err)
	}

	if cfg.Field.Resolution != 128 {
		t.Errorf("expected overridden resolution 128, got %d", cfg.Field.Resolution)
	}
	// Untouched sections keep their embedded defaults.
	if cfg.Plume.Capacity != 1000 {
		t.Errorf("expected untouched plume capacity 1000, got %d", cfg.Plume.Capacity)
	}
	if cfg.Screen.Width != 1280 {
		t.Errorf("expected untouched screen width 1280, got %d", cfg.Screen.Width)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero screen width", func(c *Config) { c.Screen.Width = 0 }},
		{"zero physics dt", func(c *Config) { c.Physics.DT = 0 }},
		{"zero beaker radius", func(c *Config) { c.Beaker.Radius = 0 }},
		{"surface below bottom", func(c *Config) { c.Beaker.WaterSurfaceY = c.Beaker.BottomY - 0.1 }},
		{"wall clamp above one", func(c *Config) { c.Beaker.WallClamp = 1.5 }},
		{"tiny field resolution", func(c *Config) { c.Field.Resolution = 4 }},
		{"oversized splat radius", func(c *Config) { c.Field.SplatRadiusFrac = 0.6 }},
		{"blur radii weights mismatch", func(c *Config) { c.Field.BlurRadii = []int{1, 2} }},
		{"zero plume capacity", func(c *Config) { c.Plume.Capacity = 0 }},
		{"zero max active", func(c *Config) { c.Plume.MaxActive = 0 }},
		{"max active above capacity", func(c *Config) { c.Plume.MaxActive = c.Plume.Capacity + 1 }},
		{"zero plume life", func(c *Config) { c.Plume.LifeSeconds = 0 }},
		{"suppress chance above one", func(c *Config) { c.Plume.SuppressChance = 1.5 }},
		{"style opacity above one", func(c *Config) { c.PlumeStyle.Opacity = 2 }},
		{"style color wrong length", func(c *Config) { c.PlumeStyle.Color = []float64{1, 0} }},
		{"zero grain count", func(c *Config) { c.Powder.GrainCount = 0 }},
		{"settle fraction above one", func(c *Config) { c.Powder.SettleFraction = 1.2 }},
		{"zero drop timeout", func(c *Config) { c.Powder.DropTimeoutSec = 0 }},
		{"acid floor at neutral", func(c *Config) { c.Chem.AcidFloor = 7 }},
		{"acid threshold below floor", func(c *Config) { c.Chem.AcidThreshold = c.Chem.AcidFloor - 0.5 }},
		{"zero stats window", func(c *Config) { c.Telemetry.StatsWindow = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Default()
			if err != nil {
				t.Fatalf("loading defaults: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestDerivedValues(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if math.Abs(float64(cfg.Derived.DT32)-1.0/60.0) > 1e-6 {
		t.Errorf("expected DT32 near 1/60, got %f", cfg.Derived.DT32)
	}
	if math.Abs(float64(cfg.Derived.FieldTickDT)-1.0/30.0) > 1e-6 {
		t.Errorf("expected field tick near 1/30, got %f", cfg.Derived.FieldTickDT)
	}
	want := float32(cfg.Beaker.Radius * cfg.Beaker.WallClamp)
	if cfg.Derived.ClampRadius != want {
		t.Errorf("expected clamp radius %f, got %f", want, cfg.Derived.ClampRadius)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Field.Resolution = 64
	cfg.Plume.SpawnRate = 42

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if loaded.Field.Resolution != 64 {
		t.Errorf("expected resolution 64 after round trip, got %d", loaded.Field.Resolution)
	}
	if loaded.Plume.SpawnRate != 42 {
		t.Errorf("expected spawn rate 42 after round trip, got %f", loaded.Plume.SpawnRate)
	}
}

func TestPlumeConfigValidate(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	pc := cfg.Plume
	if err := pc.Validate(); err != nil {
		t.Errorf("expected default plume config to validate, got %v", err)
	}

	pc.DensityCellSize = 0
	if err := pc.Validate(); err == nil {
		t.Error("expected error for zero density cell size")
	}
}
