package lab

import (
	"fmt"
	"io"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logPerfStats logs per-phase step timing.
func (l *Lab) logPerfStats() {
	total := l.perf.Total()
	fps := rl.GetFPS()
	Logf("=== Perf @ Tick %d (speed %dx) | FPS: %d ===", l.tick, l.stepsPerUpdate, fps)
	Logf("Total step time: %s", total.Round(time.Microsecond))

	for _, name := range l.perf.SortedNames() {
		avg := l.perf.Avg(name)
		pct := float64(0)
		if total > 0 {
			pct = float64(avg) / float64(total) * 100
		}
		Logf("  %-18s %10s  %5.1f%%", name, avg.Round(time.Microsecond), pct)
	}
	Logf("")
}

// logBenchState logs a one-shot summary of the beaker contents.
func (l *Lab) logBenchState() {
	stats := l.mgr.PlumeStats()
	Logf("=== Tick %d ===", l.tick)
	Logf("Plumes: %d active, %d free, %d queued", stats.Active, stats.Free, stats.QueueDepth)
	Logf("Powder: %d grains (%d settled), dropping=%v, swirling=%v",
		l.powder.GrainTotal(), l.powder.SettledTotal(), l.powder.Dropping(), l.powder.Swirling())
	Logf("Solution: pH=%.2f, dissolved=%.3f, indicator=%v, conc=%.3f",
		l.chem.PHScore(), l.chem.DissolvedAcid(), l.chem.HasIndicator(), l.mgr.GlobalConcentration())
	Logf("")
}
