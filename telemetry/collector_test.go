package telemetry

import (
	"math"
	"testing"
)

func TestCollectorFlushCadence(t *testing.T) {
	c := NewCollector(2.0, 1.0/60.0)

	// 2 second windows at 60Hz, within a tick of 120 after float32 dt
	// truncation.
	win := c.WindowDurationTicks()
	if win < 119 || win > 120 {
		t.Fatalf("ticks per window = %d, want ~120", win)
	}

	if c.ShouldFlush(win - 1) {
		t.Error("should not flush before the window elapses")
	}
	if !c.ShouldFlush(win) {
		t.Error("should flush once the window elapses")
	}

	c.Flush(win, Gauges{}, nil)

	// Window start advances to the flush tick.
	if c.ShouldFlush(2*win - 1) {
		t.Error("should not flush mid-way through the second window")
	}
	if !c.ShouldFlush(2 * win) {
		t.Error("should flush at the end of the second window")
	}
}

func TestCollectorCountersResetOnFlush(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)

	c.RecordSpawned(40)
	c.RecordSpawned(20)
	c.RecordSuppressed(3, 7)
	c.RecordBursts(2)
	c.RecordPour()
	c.RecordIndicatorDrop()
	c.RecordIndicatorDrop()
	c.RecordSwirl()
	c.RecordDissolved(0.25)
	c.RecordDissolved(0.25)

	stats := c.Flush(60, Gauges{PlumeActive: 50, PlumeFree: 950, QueueDepth: 4, PH: 6.1}, nil)

	if stats.Spawned != 60 {
		t.Errorf("expected 60 spawned, got %d", stats.Spawned)
	}
	if stats.SuppressedGlobal != 3 || stats.SuppressedLocal != 7 {
		t.Errorf("expected suppression 3/7, got %d/%d", stats.SuppressedGlobal, stats.SuppressedLocal)
	}
	if stats.Bursts != 2 || stats.Pours != 1 || stats.IndicatorDrops != 2 || stats.Swirls != 1 {
		t.Errorf("unexpected event counts: %+v", stats)
	}
	if math.Abs(stats.DissolvedMass-0.5) > 1e-9 {
		t.Errorf("expected 0.5 dissolved mass, got %f", stats.DissolvedMass)
	}
	if stats.PlumeActive != 50 || stats.PlumeFree != 950 || stats.QueueDepth != 4 {
		t.Errorf("gauges not carried through: %+v", stats)
	}

	// Second flush with no activity reports zeros.
	next := c.Flush(120, Gauges{}, nil)
	if next.Spawned != 0 || next.Bursts != 0 || next.DissolvedMass != 0 {
		t.Errorf("counters did not reset: %+v", next)
	}
	if next.WindowStartTick != 60 {
		t.Errorf("expected next window to start at 60, got %d", next.WindowStartTick)
	}
}

func TestCollectorConcentrationWindow(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)

	c.ObserveConcentration(0.2)
	c.ObserveConcentration(0.6)
	c.ObserveConcentration(0.4)

	stats := c.Flush(60, Gauges{}, nil)

	if math.Abs(stats.Concentration-0.4) > 1e-9 {
		t.Errorf("expected mean concentration 0.4, got %f", stats.Concentration)
	}
	if math.Abs(stats.ConcentrationMax-0.6) > 1e-9 {
		t.Errorf("expected max concentration 0.6, got %f", stats.ConcentrationMax)
	}
}

func TestCollectorLifePercentiles(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)

	lives := []float64{0.1, 0.5, 0.9}
	stats := c.Flush(60, Gauges{}, lives)

	if math.Abs(stats.LifeMean-0.5) > 1e-9 {
		t.Errorf("expected life mean 0.5, got %f", stats.LifeMean)
	}
	if math.Abs(stats.LifeP50-0.5) > 1e-9 {
		t.Errorf("expected life p50 0.5, got %f", stats.LifeP50)
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	// A window shorter than one tick clamps to one tick.
	c := NewCollector(0.001, 1.0/60.0)
	if got := c.WindowDurationTicks(); got != 1 {
		t.Errorf("expected 1 tick minimum window, got %d", got)
	}
}
