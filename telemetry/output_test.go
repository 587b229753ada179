package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("empty dir should disable output, got error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// Nil manager methods are safe no-ops.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager WriteTelemetry: %v", err)
	}
	if err := om.WriteEvent(Event{}); err != nil {
		t.Errorf("nil manager WriteEvent: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager Close: %v", err)
	}
	if om.Dir() != "" {
		t.Error("nil manager Dir should be empty")
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output manager: %v", err)
	}
	defer om.Close()

	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 120, Spawned: 10}); err != nil {
		t.Fatalf("first telemetry write: %v", err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 240, Spawned: 20}); err != nil {
		t.Fatalf("second telemetry write: %v", err)
	}

	if err := om.Close(); err != nil {
		t.Fatalf("closing output manager: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") || !strings.Contains(lines[0], "spawned") {
		t.Errorf("header missing expected columns: %s", lines[0])
	}
	if strings.Contains(lines[1], "window_end") {
		t.Error("second line should be data, not a repeated header")
	}
}

func TestOutputManagerEvents(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output manager: %v", err)
	}

	ev := NewEvent(120, 1.0/60.0, EventPour, 0.1, -0.2, 140)
	if ev.TimeSec < 1.99 || ev.TimeSec > 2.01 {
		t.Errorf("expected event time around 2s, got %f", ev.TimeSec)
	}

	if err := om.WriteEvent(ev); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	if err := om.WriteEvent(NewEvent(180, 1.0/60.0, EventSwirlStart, 0, 0, 3.0)); err != nil {
		t.Fatalf("writing second event: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("closing output manager: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatalf("reading events.csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], EventPour) {
		t.Errorf("expected pour row, got %s", lines[1])
	}
	if !strings.Contains(lines[2], EventSwirlStart) {
		t.Errorf("expected swirl_start row, got %s", lines[2])
	}
}

func TestOutputManagerPerfCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output manager: %v", err)
	}

	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase(PhaseField)
	pc.EndTick()

	if err := om.WritePerf(pc.Stats(), 60); err != nil {
		t.Fatalf("writing perf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("closing output manager: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if !strings.Contains(string(data), "field_pct") {
		t.Errorf("perf.csv missing field_pct column: %s", string(data))
	}
}
