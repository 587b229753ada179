package beaker

import "testing"

func TestDensityGridCounting(t *testing.T) {
	g := NewDensityGrid(1.0, 0.16)

	g.Insert(0, 0)
	g.Insert(0.01, 0.01)
	g.Insert(0.02, -0.02)
	if got := g.CountAt(0, 0); got != 3 {
		t.Errorf("expected 3 in the center cell, got %d", got)
	}

	// A point in a distant cell stays separate.
	g.Insert(0.8, 0.8)
	if got := g.CountAt(0.8, 0.8); got != 1 {
		t.Errorf("expected 1 in the far cell, got %d", got)
	}
	if got := g.CountAt(0, 0); got != 3 {
		t.Errorf("far insert leaked into center cell: %d", got)
	}
}

func TestDensityGridClampsOutOfRange(t *testing.T) {
	g := NewDensityGrid(1.0, 0.16)

	// Way outside the footprint: clamps to the border cell, no panic.
	g.Insert(5, 5)
	g.Insert(7, 9)
	if got := g.CountAt(5, 5); got != 2 {
		t.Errorf("expected out-of-range inserts to share the border cell, got %d", got)
	}
}

func TestDensityGridClearAndResize(t *testing.T) {
	g := NewDensityGrid(1.0, 0.16)
	g.Insert(0, 0)

	g.Clear()
	if got := g.CountAt(0, 0); got != 0 {
		t.Errorf("expected empty grid after clear, got %d", got)
	}

	g.Resize(1.0, 0.5)
	if got := g.Side(); got != 4 {
		t.Errorf("expected 4 cells per side at cell size 0.5, got %d", got)
	}
	g.Insert(0.1, 0.1)
	if got := g.CountAt(0.1, 0.1); got != 1 {
		t.Errorf("expected count 1 after resize, got %d", got)
	}

	// A degenerate cell size falls back to a radius-derived one.
	g.Resize(1.0, 0)
	if g.CellSize() <= 0 {
		t.Errorf("expected positive fallback cell size, got %f", g.CellSize())
	}
}
