package beaker

import (
	"testing"

	"github.com/pthm-cable/chemlab/config"
)

// mustConfig loads the embedded defaults for a test.
func mustConfig(tb testing.TB) *config.Config {
	tb.Helper()
	cfg, err := config.Default()
	if err != nil {
		tb.Fatalf("loading default config: %v", err)
	}
	return cfg
}

// smallField builds a low-resolution field so long simulated runs stay fast.
func smallField(tb testing.TB) *IndicatorField {
	cfg := mustConfig(tb)
	cfg.Field.Resolution = 32
	return NewIndicatorField(cfg.Field, cfg.Derived.Radius32)
}

func fieldSum(f *IndicatorField) float32 {
	var sum float32
	for _, v := range f.Values() {
		sum += v
	}
	return sum
}

func TestIndicatorFieldCreation(t *testing.T) {
	f := smallField(t)

	if f.Resolution() != 32 {
		t.Errorf("expected resolution 32, got %d", f.Resolution())
	}
	if len(f.Values()) != 32*32 {
		t.Errorf("expected %d cells, got %d", 32*32, len(f.Values()))
	}
	if f.GlobalConcentration() != 0 {
		t.Errorf("expected zero initial concentration, got %f", f.GlobalConcentration())
	}
	if fieldSum(f) != 0 {
		t.Errorf("expected empty field, got sum %f", fieldSum(f))
	}
}

func TestIndicatorFieldSplat(t *testing.T) {
	f := smallField(t)

	f.AddIndicatorAt(0, 0)

	// Local (0,0) maps to the grid center; the nearest cell should be near
	// full intensity.
	center := f.Values()[16*32+16]
	if center < 0.8 {
		t.Errorf("expected strong center intensity, got %f", center)
	}

	// All values stay saturated within [0,1] even after repeated stamps.
	for i := 0; i < 20; i++ {
		f.AddIndicatorAt(0, 0)
	}
	for i, v := range f.Values() {
		if v < 0 || v > 1 {
			t.Fatalf("cell %d out of range after repeated splats: %f", i, v)
		}
	}
}

func TestIndicatorFieldSplatClipsAtEdge(t *testing.T) {
	f := smallField(t)

	// Far outside the footprint: must clip, not panic, and may deposit
	// nothing.
	f.AddIndicatorAt(10, 10)
	f.AddIndicatorAt(-10, 0)

	// On the rim: deposits into the border cells only.
	f.AddIndicatorAt(1.0, 0)
	for i, v := range f.Values() {
		if v < 0 || v > 1 {
			t.Fatalf("cell %d out of range after edge splats: %f", i, v)
		}
	}
}

func TestIndicatorFieldStepThrottle(t *testing.T) {
	f := smallField(t)
	f.AddIndicatorAt(0, 0)

	before := fieldSum(f)

	// Less than one field tick of elapsed time: nothing may change yet.
	f.Step(0.01)
	if got := fieldSum(f); got != before {
		t.Errorf("expected no change below one tick, sum %f -> %f", before, got)
	}

	// Crossing the tick boundary consumes the accumulated time.
	f.Step(0.03)
	if got := fieldSum(f); got == before {
		t.Error("expected field to change after a full tick elapsed")
	}
}

func TestIndicatorFieldDecays(t *testing.T) {
	f := smallField(t)
	f.AddIndicatorAt(0, 0)

	prev := fieldSum(f)
	for i := 0; i < 5; i++ {
		f.Step(1.0)
		sum := fieldSum(f)
		if sum >= prev {
			t.Fatalf("expected decaying field, sum %f -> %f at second %d", prev, sum, i+1)
		}
		prev = sum
	}
}

func TestIndicatorFieldConcentrationLifecycle(t *testing.T) {
	f := smallField(t)

	// Pump dye across the footprint, stepping as a frame loop would.
	for i := 0; i < 8; i++ {
		x := float32(i%4)*0.4 - 0.6
		z := float32(i/4)*0.6 - 0.3
		for j := 0; j < 5; j++ {
			f.AddIndicatorAt(x, z)
		}
		f.Step(0.25)
	}
	peak := f.GlobalConcentration()
	if peak <= 0.05 {
		t.Fatalf("expected concentration to rise after splats, got %f", peak)
	}
	if peak > 1 {
		t.Fatalf("concentration above 1: %f", peak)
	}

	// Let the smoothed value cross below the decaying target, then the tail
	// must fall monotonically and never leave [0,1].
	f.Step(5.0)
	prev := f.GlobalConcentration()
	for i := 0; i < 40; i++ {
		f.Step(0.5)
		c := f.GlobalConcentration()
		if c < 0 || c > 1 {
			t.Fatalf("concentration out of range during decay: %f", c)
		}
		if c > prev {
			t.Fatalf("concentration rose during decay: %f -> %f", prev, c)
		}
		prev = c
	}
	if prev >= peak {
		t.Errorf("expected concentration to fall from peak %f, still %f", peak, prev)
	}

	// A long quiet stretch converges to exactly zero via the floor snap.
	f.Step(240)
	if got := f.GlobalConcentration(); got != 0 {
		t.Errorf("expected concentration to reach 0, got %g", got)
	}
}

func TestIndicatorFieldReset(t *testing.T) {
	f := smallField(t)
	f.AddIndicatorAt(0.2, -0.1)
	f.Step(1.0)

	f.Reset()

	if fieldSum(f) != 0 {
		t.Errorf("expected zeroed field after reset, sum %f", fieldSum(f))
	}
	if f.GlobalConcentration() != 0 || f.Mean() != 0 {
		t.Errorf("expected zeroed scalars after reset, conc=%f mean=%f",
			f.GlobalConcentration(), f.Mean())
	}
}

func TestIndicatorFieldDispose(t *testing.T) {
	f := smallField(t)
	f.AddIndicatorAt(0, 0)
	f.Dispose()

	if f.Values() != nil {
		t.Error("expected released buffers after dispose")
	}

	// Every later call is a no-op.
	f.AddIndicatorAt(0, 0)
	f.Step(1.0)
	f.Reset()
}

func TestIndicatorFieldWeightNormalization(t *testing.T) {
	cfg := mustConfig(t)
	cfg.Field.Resolution = 32
	cfg.Field.BlurWeights = []float64{6, 2.5, 1.5} // unnormalized on purpose
	f := NewIndicatorField(cfg.Field, cfg.Derived.Radius32)

	f.AddIndicatorAt(0, 0)
	f.Step(2.0)

	for i, v := range f.Values() {
		if v < 0 || v > 1 {
			t.Fatalf("cell %d out of range with unnormalized weights: %f", i, v)
		}
	}
}

func BenchmarkIndicatorFieldStep(b *testing.B) {
	cfg := mustConfig(b)
	f := NewIndicatorField(cfg.Field, cfg.Derived.Radius32)
	for i := 0; i < 30; i++ {
		f.AddIndicatorAt(float32(i%5)*0.3-0.6, float32(i/5)*0.3-0.6)
	}
	tick := cfg.Derived.FieldTickDT

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		f.Step(tick)
	}
}
