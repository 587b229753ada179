package beaker

import (
	"math/rand"
	"testing"
)

const tickDT = float32(1.0 / 60.0)

func newTestPlume(tb testing.TB, seed int64) *PlumeSystem {
	cfg := mustConfig(tb)
	return NewPlumeSystem(cfg, rand.New(rand.NewSource(seed)))
}

func countGated(ps *PlumeSystem) (gated, ungated int) {
	for _, i := range ps.ActiveList {
		if !ps.Active[i] {
			continue
		}
		if ps.Gated[i] {
			gated++
		} else {
			ungated++
		}
	}
	return gated, ungated
}

func TestPlumeSurfaceBurstDrainsAndDies(t *testing.T) {
	ps := newTestPlume(t, 1)

	ps.AddSource(0, 0, 60)

	peak := 0
	for i := 0; i < 180; i++ { // 3 seconds
		ps.Update(tickDT)
		if ps.Count > peak {
			peak = ps.Count
		}
	}

	if peak < 10 {
		t.Errorf("expected a visible burst, peak active %d", peak)
	}
	if ps.Count != 0 {
		t.Errorf("expected all particles dead after 3s, got %d active", ps.Count)
	}
	if ps.QueueDepth() != 0 {
		t.Errorf("expected drained queue, depth %d", ps.QueueDepth())
	}
}

func TestPlumeMaxActiveCap(t *testing.T) {
	cfg := mustConfig(t)
	cfg.Plume.MaxActive = 50
	ps := NewPlumeSystem(cfg, rand.New(rand.NewSource(2)))

	peak := 0
	for i := 0; i < 300; i++ {
		x := float32(i%5)*0.3 - 0.6
		ps.AddSource(x, 0, 20)
		ps.Update(tickDT)
		if ps.Count > 50 {
			t.Fatalf("active count %d exceeded max_active 50 at tick %d", ps.Count, i)
		}
		if ps.Count > peak {
			peak = ps.Count
		}
	}
	if peak < 40 {
		t.Errorf("expected spawn pressure to approach the cap, peak %d", peak)
	}
}

func TestPlumeRadialClamp(t *testing.T) {
	ps := newTestPlume(t, 3)

	// Spawn against the wall so jitter and age spread push outward.
	ps.AddSource(0.95, 0, 30)

	clampR := ps.clampRadius
	for i := 0; i < 120; i++ {
		ps.Update(tickDT)
		for _, idx := range ps.ActiveList {
			if !ps.Active[idx] {
				continue
			}
			r2 := ps.X[idx]*ps.X[idx] + ps.Z[idx]*ps.Z[idx]
			if r2 > clampR*clampR+1e-3 {
				t.Fatalf("particle %d outside wall at tick %d: r2=%f", idx, i, r2)
			}
		}
	}

	// Touching the wall rescales, never kills: a 1-second-old burst with a
	// 2.2s life must still be alive.
	ps2 := newTestPlume(t, 4)
	ps2.AddSource(0.95, 0, 10)
	for i := 0; i < 60; i++ {
		ps2.Update(tickDT)
	}
	if ps2.Count == 0 {
		t.Error("expected wall contact to rescale particles, not kill them")
	}
}

func TestPlumeLifeMonotonic(t *testing.T) {
	ps := newTestPlume(t, 5)
	ps.AddSource(0, 0, 5)
	ps.Update(tickDT)
	if ps.Count == 0 {
		t.Fatal("expected at least one spawn on the first update")
	}

	slot := ps.ActiveList[0]
	prev := ps.Life[slot]
	steps := 0
	for ps.Active[slot] {
		ps.Update(tickDT)
		if !ps.Active[slot] {
			break
		}
		if ps.Life[slot] > prev {
			t.Fatalf("life rose from %f to %f", prev, ps.Life[slot])
		}
		prev = ps.Life[slot]
		steps++
		if steps > 600 {
			t.Fatal("particle outlived its configured lifetime by far")
		}
	}
	if steps < 100 {
		t.Errorf("expected roughly 2.2s of life at 60Hz, observed %d steps", steps)
	}
}

func TestPlumeFadeOutTargetsUngatedOnly(t *testing.T) {
	ps := newTestPlume(t, 6)

	// Gated surface dye on one side, ungated bottom plumes on the other.
	ps.AddSource(-0.4, 0, 20)
	ps.AddBottomSource(0.4, 0, 20, BottomSourceOpts{})
	for i := 0; i < 30; i++ {
		ps.Update(tickDT)
	}

	gatedBefore, ungatedBefore := countGated(ps)
	if gatedBefore == 0 || ungatedBefore == 0 {
		t.Fatalf("expected both populations, gated=%d ungated=%d", gatedBefore, ungatedBefore)
	}

	ps.FadeOutBottomPlumes(0.3)
	for i := 0; i < 21; i++ { // 0.35s
		ps.Update(tickDT)
	}

	gatedAfter, ungatedAfter := countGated(ps)
	if ungatedAfter != 0 {
		t.Errorf("expected all ungated particles dead after the fade, %d left", ungatedAfter)
	}
	if gatedAfter != gatedBefore {
		t.Errorf("fade touched gated particles: %d -> %d", gatedBefore, gatedAfter)
	}
}

func TestPlumeFadeKeepsShorterExisting(t *testing.T) {
	ps := newTestPlume(t, 7)
	ps.AddBottomSource(0, 0, 1, BottomSourceOpts{})
	ps.Update(tickDT)
	if ps.Count != 1 {
		t.Fatalf("expected exactly one particle, got %d", ps.Count)
	}
	slot := ps.ActiveList[0]

	ps.FadeOutBottomPlumes(0.3)
	if got := ps.FadeDuration[slot]; got != 0.3 {
		t.Fatalf("expected fade duration 0.3, got %f", got)
	}

	// A longer fade never extends an active shorter one.
	ps.FadeOutBottomPlumes(5.0)
	if got := ps.FadeDuration[slot]; got != 0.3 {
		t.Errorf("longer fade overwrote shorter one: %f", got)
	}

	// A shorter fade tightens it.
	ps.FadeOutBottomPlumes(0.1)
	if got := ps.FadeDuration[slot]; got != 0.1 {
		t.Errorf("expected tightened fade 0.1, got %f", got)
	}
}

func TestPlumeBottomDisable(t *testing.T) {
	ps := newTestPlume(t, 8)

	ps.AddSource(-0.3, 0, 10)
	for i := 0; i < 5; i++ {
		ps.AddBottomSource(0.3, 0, 10, BottomSourceOpts{})
	}
	if ps.QueueDepth() != 6 {
		t.Fatalf("expected 6 queued requests, got %d", ps.QueueDepth())
	}

	// Disabling with purge drops the queued bottom entries but keeps the
	// surface one.
	ps.DisableBottomPlumes(true)
	if ps.QueueDepth() != 1 {
		t.Fatalf("expected only the surface request to survive, depth %d", ps.QueueDepth())
	}

	// New bottom requests are rejected while disabled.
	ps.AddBottomSource(0, 0, 10, BottomSourceOpts{})
	if ps.QueueDepth() != 1 {
		t.Errorf("expected bottom request to be dropped, depth %d", ps.QueueDepth())
	}

	ps.EnableBottomPlumes()
	ps.AddBottomSource(0, 0, 10, BottomSourceOpts{})
	if ps.QueueDepth() != 2 {
		t.Errorf("expected bottom request accepted after enable, depth %d", ps.QueueDepth())
	}
}

func TestPlumeQueueForcedProgress(t *testing.T) {
	cfg := mustConfig(t)
	cfg.Plume.SpawnRate = 0 // integer budget always 0
	ps := NewPlumeSystem(cfg, rand.New(rand.NewSource(9)))

	ps.AddSource(0, 0, 3)
	for i := 0; i < 3; i++ {
		ps.Update(tickDT)
		if ps.SpawnedThisTick != 1 {
			t.Fatalf("expected exactly one forced spawn per tick, got %d at tick %d",
				ps.SpawnedThisTick, i)
		}
	}
	if ps.Count != 3 || ps.QueueDepth() != 0 {
		t.Errorf("expected 3 active and empty queue, got %d active depth %d",
			ps.Count, ps.QueueDepth())
	}
}

func TestPlumeSetConfigValidation(t *testing.T) {
	ps := newTestPlume(t, 10)
	orig := ps.Stats().Config

	bad := orig
	bad.MaxActive = 0
	if err := ps.SetConfig(bad); err == nil {
		t.Error("expected error for max_active 0")
	}
	if got := ps.Stats().Config.MaxActive; got != orig.MaxActive {
		t.Errorf("rejected config mutated state: max_active %d", got)
	}

	// Internally consistent, but larger than this pool.
	big := orig
	big.Capacity = 4000
	big.MaxActive = 2000
	if err := ps.SetConfig(big); err == nil {
		t.Error("expected error for max_active above pool capacity")
	}

	ok := orig
	ok.MaxActive = 100
	if err := ps.SetConfig(ok); err != nil {
		t.Fatalf("unexpected error for valid config: %v", err)
	}
	if got := ps.Stats().Config.MaxActive; got != 100 {
		t.Errorf("valid config not applied, max_active %d", got)
	}
}

func TestPlumeClear(t *testing.T) {
	ps := newTestPlume(t, 11)
	ps.AddSource(0, 0, 40)
	for i := 0; i < 30; i++ {
		ps.Update(tickDT)
	}
	if ps.Count == 0 {
		t.Fatal("expected live particles before clear")
	}

	ps.ClearPlume()

	stats := ps.Stats()
	if stats.Active != 0 || stats.QueueDepth != 0 {
		t.Errorf("expected empty system, active=%d queued=%d", stats.Active, stats.QueueDepth)
	}
	if stats.Free != ps.MaxCount {
		t.Errorf("expected all slots free, got %d of %d", stats.Free, ps.MaxCount)
	}
}

func TestPlumeSpawnRateMultiplier(t *testing.T) {
	ps := newTestPlume(t, 12)
	ps.SetSpawnRateMultiplier(3)

	ps.AddSource(0, 0, 60)
	drained := -1
	for i := 0; i < 30; i++ {
		ps.Update(tickDT)
		if ps.QueueDepth() == 0 {
			drained = i
			break
		}
	}
	// 60 units at ~6 per tick should drain in roughly 10 ticks.
	if drained < 0 || drained > 15 {
		t.Errorf("expected tripled rate to drain 60 units quickly, took %d ticks", drained)
	}
}

func BenchmarkPlumeUpdate(b *testing.B) {
	cfg := mustConfig(b)
	ps := NewPlumeSystem(cfg, rand.New(rand.NewSource(1)))
	ps.AddSource(0, 0, 600)
	for i := 0; i < 120; i++ {
		ps.Update(tickDT)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if ps.Count < 200 {
			ps.AddSource(0, 0, 400)
		}
		ps.Update(tickDT)
	}
}
