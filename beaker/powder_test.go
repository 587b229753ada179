package beaker

import (
	"math/rand"
	"testing"
)

type stubChem struct {
	indicator bool
	ph        float32
}

func (s *stubChem) HasIndicator() bool { return s.indicator }
func (s *stubChem) PHScore() float32   { return s.ph }
func (s *stubChem) ReactionColor() (r, g, b float32) {
	if s.ph < 6.5 {
		return 0.2, 0.9, 0.3
	}
	return 0.3, 0.45, 0.9
}

func newTestPowder(tb testing.TB, seed int64, chem ChemState) (*PowderSim, *Manager) {
	cfg := mustConfig(tb)
	rng := rand.New(rand.NewSource(seed))
	mgr := NewManager(cfg, Frame{}, chem, rng)
	sim := NewPowderSim(cfg, rng, chem)
	sim.SetDiffusionManager(mgr)
	return sim, mgr
}

// settle pours a batch above the water and steps until its drop phase ends.
func settle(tb testing.TB, sim *PowderSim, grains int) *PowderBatch {
	tb.Helper()
	b := sim.SpawnAt(Vec3{X: 0, Y: 2.0, Z: 0}, PowderSpawnOpts{GrainCount: grains})
	if b == nil {
		tb.Fatal("expected a batch from SpawnAt")
	}
	for i := 0; i < 480; i++ { // 8 seconds
		sim.Update(tickDT)
		if !b.Dropping {
			return b
		}
	}
	tb.Fatal("batch never left its drop phase")
	return nil
}

func TestPowderDropAndSettle(t *testing.T) {
	sim, _ := newTestPowder(t, 1, &stubChem{})

	b := settle(t, sim, 60)

	if b.SettledCount < 36 { // 60% of 60
		t.Errorf("expected at least 60%% settled, got %d of 60", b.SettledCount)
	}
	for i := range b.X {
		if b.Settled[i] && b.Y[i] != b.restY {
			t.Fatalf("settled grain %d floated at y=%f, rest=%f", i, b.Y[i], b.restY)
		}
	}
	if sim.SettledTotal() != b.SettledCount {
		t.Errorf("settled total %d != batch settled %d", sim.SettledTotal(), b.SettledCount)
	}
}

func TestPowderEnterWaterFiresOnce(t *testing.T) {
	sim, _ := newTestPowder(t, 2, &stubChem{})

	entered := 0
	b := sim.SpawnAt(Vec3{X: 0, Y: 2.0, Z: 0}, PowderSpawnOpts{
		GrainCount:   40,
		OnEnterWater: func() { entered++ },
	})
	for i := 0; i < 480 && b.Dropping; i++ {
		sim.Update(tickDT)
	}

	if entered != 1 {
		t.Errorf("expected OnEnterWater to fire exactly once, fired %d times", entered)
	}
}

func TestPowderBurstRequiresIndicator(t *testing.T) {
	chem := &stubChem{indicator: false}
	sim, mgr := newTestPowder(t, 3, chem)

	settle(t, sim, 60)

	// A settled pile with the indicator absent must stay silent.
	for i := 0; i < 60; i++ {
		sim.Update(tickDT)
		mgr.Update(tickDT)
		if sim.BurstsThisTick != 0 {
			t.Fatalf("burst fired without indicator at tick %d", i)
		}
	}
	if stats := mgr.PlumeStats(); stats.Active != 0 || stats.QueueDepth != 0 {
		t.Errorf("expected no plume activity, active=%d queued=%d",
			stats.Active, stats.QueueDepth)
	}
}

func TestPowderBurstFiresWithIndicator(t *testing.T) {
	chem := &stubChem{indicator: true, ph: 5.0}
	sim, mgr := newTestPowder(t, 4, chem)

	b := settle(t, sim, 60)

	bursts := 0
	for i := 0; i < 60; i++ {
		sim.Update(tickDT)
		mgr.Update(tickDT)
		bursts += sim.BurstsThisTick
	}
	if bursts == 0 {
		t.Fatal("expected reaction bursts off the settled pile")
	}

	// The burst origin is the settled-pile centroid, so it must sit inside
	// the wall.
	if x, z := sim.LastBurstX, sim.LastBurstZ; x*x+z*z > b.clampRadius*b.clampRadius+1e-3 {
		t.Errorf("burst origin outside the wall: (%f, %f)", x, z)
	}

	ps := mgr.Plume()
	if ps.Count == 0 {
		t.Fatal("expected live bottom plume particles")
	}

	// Acidic solution: the stub reports green, and the spawn path must bake
	// that color unchanged at default saturation/brightness.
	idx := ps.ActiveList[0]
	if ps.G[idx] <= ps.R[idx] || ps.G[idx] <= ps.B[idx] {
		t.Errorf("expected green-dominant reaction color, got rgb(%f, %f, %f)",
			ps.R[idx], ps.G[idx], ps.B[idx])
	}
}

func TestPowderSwirlDissolve(t *testing.T) {
	sim, _ := newTestPowder(t, 5, &stubChem{})
	b := settle(t, sim, 60)

	ok := sim.StartSwirl(SwirlOpts{
		Duration: 1.0, Strength: 2.4, Inward: 0.8, Drag: 1.6,
		Dissolve: true, DissolveSeconds: 1.0,
	})
	if !ok {
		t.Fatal("expected swirl to start on a settled batch")
	}

	dissolved := float32(0)
	hidden := 0
	for i := 0; i < 61; i++ {
		sim.Update(tickDT)
		dissolved += sim.DissolvedThisTick
		hidden += sim.HiddenThisTick

		// Stirred grains stay inside the wall.
		for g := range b.X {
			if b.Settled[g] {
				dx, dz := b.X[g], b.Z[g]
				if r2 := dx*dx + dz*dz; r2 > b.clampRadius*b.clampRadius+1e-3 {
					t.Fatalf("grain %d escaped during swirl: r2=%f", g, r2)
				}
			}
		}
	}

	if b.Visible {
		t.Error("expected batch hidden after the dissolve completed")
	}
	if b.Opacity > 0.02 {
		t.Errorf("expected opacity near zero, got %f", b.Opacity)
	}
	if sim.Swirling() || sim.HasPowder() {
		t.Error("expected an empty, quiet sim after dissolve")
	}
	// The batch mass is credited to the solution in full, once.
	if dissolved < 0.99 || dissolved > 1.01 {
		t.Errorf("expected ~1.0 dissolved mass, got %f", dissolved)
	}
	if hidden != 1 {
		t.Errorf("expected one dissolve completion, got %d", hidden)
	}
}

func TestPowderSwirlSideEffects(t *testing.T) {
	sim, mgr := newTestPowder(t, 6, &stubChem{})
	settle(t, sim, 60)

	mgr.AddBottomSource(0, 0, 5, BottomSourceOpts{})
	if depth := mgr.PlumeStats().QueueDepth; depth != 1 {
		t.Fatalf("expected one queued request, got %d", depth)
	}

	if !sim.StartSwirl(SwirlOpts{Duration: 2.0, Strength: 1.0, Drag: 1.0}) {
		t.Fatal("expected swirl to start")
	}

	if !mgr.Plume().BottomPlumesDisabled() {
		t.Error("expected swirl to lock out new bottom plumes")
	}
	if depth := mgr.PlumeStats().QueueDepth; depth != 1 {
		t.Errorf("swirl purged the queue, depth %d", depth)
	}
	if sim.StartSwirl(SwirlOpts{Duration: 1.0}) {
		t.Error("expected a second swirl to be rejected while one is active")
	}
}

func TestPowderSwirlRejectedWhileDropping(t *testing.T) {
	sim, _ := newTestPowder(t, 7, &stubChem{})
	sim.SpawnAt(Vec3{X: 0, Y: 2.0, Z: 0}, PowderSpawnOpts{GrainCount: 40})

	if sim.StartSwirl(SwirlOpts{Duration: 1.0}) {
		t.Error("expected swirl rejection while the batch is still dropping")
	}
}

func TestPowderStopSwirlKeepsDissolve(t *testing.T) {
	sim, _ := newTestPowder(t, 8, &stubChem{})
	b := settle(t, sim, 60)

	sim.StartSwirl(SwirlOpts{
		Duration: 2.0, Strength: 1.0, Drag: 1.0,
		Dissolve: true, DissolveSeconds: 2.0,
	})
	for i := 0; i < 30; i++ { // 0.5s
		sim.Update(tickDT)
	}
	sim.StopSwirl()

	if sim.Swirling() {
		t.Fatal("expected swirl stopped")
	}
	if !b.DissolveActive {
		t.Fatal("expected dissolve to continue after the swirl stopped")
	}

	for i := 0; i < 100; i++ { // 1.67s, past the 2.0s dissolve end
		sim.Update(tickDT)
	}
	if b.Visible {
		t.Error("expected dissolve to finish and hide the batch")
	}
}

func TestPowderSpawnReEnablesBottomPlumes(t *testing.T) {
	sim, mgr := newTestPowder(t, 9, &stubChem{})

	mgr.DisableBottomPlumes(true)
	if !mgr.Plume().BottomPlumesDisabled() {
		t.Fatal("expected bottom plumes disabled")
	}

	sim.SpawnAt(Vec3{X: 0, Y: 2.0, Z: 0}, PowderSpawnOpts{GrainCount: 10})

	if mgr.Plume().BottomPlumesDisabled() {
		t.Error("expected a fresh pour to re-enable bottom plumes")
	}
}

func TestPowderBatchReuse(t *testing.T) {
	sim, _ := newTestPowder(t, 10, &stubChem{})
	settle(t, sim, 40)

	sim.StartSwirl(SwirlOpts{Duration: 0.5, Strength: 1.0, Drag: 1.0, Dissolve: true, DissolveSeconds: 0.5})
	for i := 0; i < 40; i++ {
		sim.Update(tickDT)
	}
	if sim.HasPowder() {
		t.Fatal("expected batch hidden after dissolve")
	}

	// A same-size pour reuses the hidden batch's buffers.
	sim.SpawnAt(Vec3{X: 0, Y: 2.0, Z: 0}, PowderSpawnOpts{GrainCount: 40})
	if got := len(sim.Batches()); got != 1 {
		t.Errorf("expected buffer reuse, have %d batches", got)
	}

	// Pouring while one batch is visible allocates a second.
	sim.SpawnAt(Vec3{X: 0, Y: 2.0, Z: 0}, PowderSpawnOpts{GrainCount: 40})
	if got := len(sim.Batches()); got != 2 {
		t.Errorf("expected a second batch, have %d", got)
	}
}

func TestPowderClear(t *testing.T) {
	sim, _ := newTestPowder(t, 11, &stubChem{})
	settle(t, sim, 40)

	sim.Clear()

	if sim.HasPowder() || sim.Dropping() || sim.Swirling() {
		t.Error("expected an inert sim after clear")
	}
	if sim.GrainTotal() != 0 {
		t.Errorf("expected no visible grains, got %d", sim.GrainTotal())
	}
}

func BenchmarkPowderUpdate(b *testing.B) {
	cfg := mustConfig(b)
	rng := rand.New(rand.NewSource(1))
	sim := NewPowderSim(cfg, rng, &stubChem{})
	sim.SpawnAt(Vec3{X: 0, Y: 2.0, Z: 0}, PowderSpawnOpts{})
	for i := 0; i < 60; i++ {
		sim.Update(tickDT)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		sim.Update(tickDT)
	}
}
