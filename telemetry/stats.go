package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Plume pool state at window end
	PlumeActive int `csv:"plume_active"`
	PlumeFree   int `csv:"plume_free"`
	QueueDepth  int `csv:"queue_depth"`

	// Events during window
	Spawned          int `csv:"spawned"`
	SuppressedGlobal int `csv:"suppressed_global"`
	SuppressedLocal  int `csv:"suppressed_local"`
	Bursts           int `csv:"bursts"`
	Pours            int `csv:"pours"`
	IndicatorDrops   int `csv:"indicator_drops"`
	Swirls           int `csv:"swirls"`

	// Chemistry during window
	DissolvedMass float64 `csv:"dissolved_mass"`
	PH            float64 `csv:"ph"`

	// Field state (concentration observed per tick within the window)
	Concentration    float64 `csv:"concentration"`
	ConcentrationMax float64 `csv:"concentration_max"`
	FieldMean        float64 `csv:"field_mean"`

	// Powder state at window end
	SettledGrains int `csv:"settled_grains"`
	VisibleGrains int `csv:"visible_grains"`

	// Particle life distribution (sampled at window end)
	LifeMean float64 `csv:"life_mean"`
	LifeP10  float64 `csv:"life_p10"`
	LifeP50  float64 `csv:"life_p50"`
	LifeP90  float64 `csv:"life_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeLifeStats calculates mean and percentiles from particle life values.
func ComputeLifeStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("plume_active", s.PlumeActive),
		slog.Int("plume_free", s.PlumeFree),
		slog.Int("queue_depth", s.QueueDepth),
		slog.Int("spawned", s.Spawned),
		slog.Int("suppressed_global", s.SuppressedGlobal),
		slog.Int("suppressed_local", s.SuppressedLocal),
		slog.Int("bursts", s.Bursts),
		slog.Int("pours", s.Pours),
		slog.Int("indicator_drops", s.IndicatorDrops),
		slog.Int("swirls", s.Swirls),
		slog.Float64("dissolved_mass", s.DissolvedMass),
		slog.Float64("ph", s.PH),
		slog.Float64("concentration", s.Concentration),
		slog.Float64("concentration_max", s.ConcentrationMax),
		slog.Float64("field_mean", s.FieldMean),
		slog.Int("settled_grains", s.SettledGrains),
		slog.Int("visible_grains", s.VisibleGrains),
		slog.Float64("life_mean", s.LifeMean),
		slog.Float64("life_p10", s.LifeP10),
		slog.Float64("life_p50", s.LifeP50),
		slog.Float64("life_p90", s.LifeP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"plume_active", s.PlumeActive,
		"plume_free", s.PlumeFree,
		"queue_depth", s.QueueDepth,
		"spawned", s.Spawned,
		"suppressed_global", s.SuppressedGlobal,
		"suppressed_local", s.SuppressedLocal,
		"bursts", s.Bursts,
		"pours", s.Pours,
		"indicator_drops", s.IndicatorDrops,
		"swirls", s.Swirls,
		"dissolved_mass", s.DissolvedMass,
		"ph", s.PH,
		"concentration", s.Concentration,
		"concentration_max", s.ConcentrationMax,
		"field_mean", s.FieldMean,
		"settled_grains", s.SettledGrains,
		"visible_grains", s.VisibleGrains,
		"life_mean", s.LifeMean,
		"life_p10", s.LifeP10,
		"life_p50", s.LifeP50,
		"life_p90", s.LifeP90,
	)
}
