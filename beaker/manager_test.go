package beaker

import (
	"math/rand"
	"testing"
)

func newTestManager(tb testing.TB, chem ChemState) *Manager {
	cfg := mustConfig(tb)
	cfg.Field.Resolution = 32
	return NewManager(cfg, Frame{}, chem, rand.New(rand.NewSource(1)))
}

func TestManagerIndicatorGate(t *testing.T) {
	chem := &stubChem{indicator: false, ph: 7}
	m := newTestManager(t, chem)

	if m.IsIndicatorEnabled() {
		t.Error("expected indicator disabled before any drop")
	}
	chem.indicator = true
	if !m.IsIndicatorEnabled() {
		t.Error("expected indicator enabled")
	}

	// No chemistry attached reads as no indicator and neutral water.
	bare := newTestManager(t, nil)
	if bare.IsIndicatorEnabled() {
		t.Error("expected nil chemistry to read as disabled")
	}
	if got := bare.PH(); got != 7 {
		t.Errorf("expected neutral pH without chemistry, got %f", got)
	}
}

func TestManagerSplatAndConcentration(t *testing.T) {
	m := newTestManager(t, &stubChem{})

	for i := 0; i < 10; i++ {
		m.AddIndicatorAt(0, 0)
		m.Step(0.25)
	}
	if m.GlobalConcentration() <= 0 {
		t.Error("expected concentration to rise after indicator splats")
	}
}

func TestManagerReset(t *testing.T) {
	m := newTestManager(t, &stubChem{})

	m.AddIndicatorAt(0, 0)
	m.AddSource(0, 0, 20)
	m.Step(1.0)
	m.Update(1.0 / 60.0)
	if m.PlumeStats().Active == 0 {
		t.Fatal("expected live particles before reset")
	}

	m.Reset()

	if got := m.PlumeStats().Active; got != 0 {
		t.Errorf("expected no particles after reset, got %d", got)
	}
	if got := fieldSum(m.Field()); got != 0 {
		t.Errorf("expected empty field after reset, sum %f", got)
	}
}

func TestManagerBottomPlumeOffset(t *testing.T) {
	m := newTestManager(t, &stubChem{})

	m.SetBottomPlumeOffset(0.2, -0.1)
	x, z := m.BottomPlumeOffset()
	if x != 0.2 || z != -0.1 {
		t.Errorf("offset round trip failed: (%f, %f)", x, z)
	}

	// The offset lands on queued bottom requests.
	m.AddBottomSource(0, 0, 1, BottomSourceOpts{})
	m.Update(1.0 / 60.0)
	ps := m.Plume()
	if ps.Count != 1 {
		t.Fatalf("expected one particle, got %d", ps.Count)
	}
	idx := ps.ActiveList[0]
	// Spawn jitter is at most 6% of the radius around the offset point.
	if dx := ps.X[idx] - 0.2; dx < -0.07 || dx > 0.07 {
		t.Errorf("expected spawn near offset x=0.2, got %f", ps.X[idx])
	}
	if dz := ps.Z[idx] + 0.1; dz < -0.07 || dz > 0.07 {
		t.Errorf("expected spawn near offset z=-0.1, got %f", ps.Z[idx])
	}
}

func TestManagerDispose(t *testing.T) {
	m := newTestManager(t, &stubChem{})
	m.AddSource(0, 0, 10)
	m.Update(1.0 / 60.0)

	m.Dispose()

	// Every later call is a no-op.
	m.AddIndicatorAt(0, 0)
	m.AddSource(0, 0, 10)
	m.Step(1.0)
	m.Update(1.0 / 60.0)
	if got := m.PlumeStats().Active; got != 0 {
		t.Errorf("expected inert manager after dispose, active %d", got)
	}
}
