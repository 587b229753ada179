package lab

import (
	"log/slog"

	"github.com/pthm-cable/chemlab/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and routes
// the results to the callback, the console, and the CSV writers.
func (l *Lab) flushTelemetry() {
	if !l.collector.ShouldFlush(l.tick) {
		return
	}

	plume := l.mgr.PlumeStats()
	gauges := telemetry.Gauges{
		PlumeActive:   plume.Active,
		PlumeFree:     plume.Free,
		QueueDepth:    plume.QueueDepth,
		FieldMean:     float64(l.mgr.Field().Mean()),
		PH:            float64(l.chem.PHScore()),
		SettledGrains: l.powder.SettledTotal(),
		VisibleGrains: l.powder.GrainTotal(),
	}

	stats := l.collector.Flush(l.tick, gauges, l.sampleLifeValues())
	perfStats := l.perfCollector.Stats()

	// Call stats callback if provided
	if l.statsCallback != nil {
		l.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if l.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if l.outputManager != nil {
		if err := l.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := l.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sampleLifeValues collects the remaining-life fractions of live plume
// particles for percentile calculation.
func (l *Lab) sampleLifeValues() []float64 {
	ps := l.mgr.Plume()
	if len(ps.ActiveList) == 0 {
		return nil
	}

	values := make([]float64, 0, len(ps.ActiveList))
	for _, i := range ps.ActiveList {
		if ps.Active[i] {
			values = append(values, float64(ps.Life[i]))
		}
	}
	return values
}

// writeEvent records a discrete simulation event to the events log.
func (l *Lab) writeEvent(kind string, x, z float32, value float64) {
	if l.outputManager == nil {
		return
	}
	ev := telemetry.NewEvent(l.tick, l.cfg.Derived.DT32, kind, x, z, value)
	if err := l.outputManager.WriteEvent(ev); err != nil {
		slog.Error("failed to write event", "error", err)
	}
}
