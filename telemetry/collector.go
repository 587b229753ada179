package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	spawned          int
	suppressedGlobal int
	suppressedLocal  int
	bursts           int
	pours            int
	indicatorDrops   int
	swirls           int
	dissolvedMass    float64

	// Per-tick concentration observations
	concSum   float64
	concMax   float64
	concTicks int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordSpawned records particles spawned this tick.
func (c *Collector) RecordSpawned(n int) {
	c.spawned += n
}

// RecordSuppressed records suppressed spawn requests this tick.
func (c *Collector) RecordSuppressed(global, local int) {
	c.suppressedGlobal += global
	c.suppressedLocal += local
}

// RecordBursts records bottom-plume bursts this tick.
func (c *Collector) RecordBursts(n int) {
	c.bursts += n
}

// RecordPour records a powder pour.
func (c *Collector) RecordPour() {
	c.pours++
}

// RecordIndicatorDrop records an indicator drop landing in the water.
func (c *Collector) RecordIndicatorDrop() {
	c.indicatorDrops++
}

// RecordSwirl records a swirl start.
func (c *Collector) RecordSwirl() {
	c.swirls++
}

// RecordDissolved records dissolved powder mass this tick.
func (c *Collector) RecordDissolved(mass float64) {
	c.dissolvedMass += mass
}

// ObserveConcentration records the global concentration for this tick.
// Called once per tick so the flush can report window mean and max.
func (c *Collector) ObserveConcentration(conc float64) {
	c.concSum += conc
	if conc > c.concMax {
		c.concMax = conc
	}
	c.concTicks++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Gauges holds point-in-time values sampled by the caller at flush.
type Gauges struct {
	PlumeActive   int
	PlumeFree     int
	QueueDepth    int
	FieldMean     float64
	PH            float64
	SettledGrains int
	VisibleGrains int
}

// Flush produces a WindowStats and resets counters for the next window.
// lifeValues holds the remaining-life samples of currently alive particles
// for percentile calculation; it may be nil.
func (c *Collector) Flush(currentTick int32, gauges Gauges, lifeValues []float64) WindowStats {
	var concMean float64
	if c.concTicks > 0 {
		concMean = c.concSum / float64(c.concTicks)
	}

	lifeMean, lifeP10, lifeP50, lifeP90 := ComputeLifeStats(lifeValues)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		PlumeActive: gauges.PlumeActive,
		PlumeFree:   gauges.PlumeFree,
		QueueDepth:  gauges.QueueDepth,

		Spawned:          c.spawned,
		SuppressedGlobal: c.suppressedGlobal,
		SuppressedLocal:  c.suppressedLocal,
		Bursts:           c.bursts,
		Pours:            c.pours,
		IndicatorDrops:   c.indicatorDrops,
		Swirls:           c.swirls,

		DissolvedMass: c.dissolvedMass,
		PH:            gauges.PH,

		Concentration:    concMean,
		ConcentrationMax: c.concMax,
		FieldMean:        gauges.FieldMean,

		SettledGrains: gauges.SettledGrains,
		VisibleGrains: gauges.VisibleGrains,

		LifeMean: lifeMean,
		LifeP10:  lifeP10,
		LifeP50:  lifeP50,
		LifeP90:  lifeP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawned = 0
	c.suppressedGlobal = 0
	c.suppressedLocal = 0
	c.bursts = 0
	c.pours = 0
	c.indicatorDrops = 0
	c.swirls = 0
	c.dissolvedMass = 0
	c.concSum = 0
	c.concMax = 0
	c.concTicks = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
