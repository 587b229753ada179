package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/chemlab/config"
	"github.com/pthm-cable/chemlab/lab"
	"github.com/pthm-cable/chemlab/telemetry"
)

// FitnessEvaluator runs headless demo benches and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 2.0, // 2 seconds per window
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// postDemoGraceSec keeps the bench running after the demo script finishes so
// the fade-out windows still land in the stats.
const postDemoGraceSec = 4.0

// runResult holds the results from a single bench run.
type runResult struct {
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	maxActive     int                     // applied plume cap, normalizes utilization
	demoCompleted bool
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Every run plays the same demo script, so fitness is negated visual
// quality averaged across seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result),
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	// Update best tracking
	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless demo run. The bench plays the
// scripted drop-pour-swirl sequence and stops a few seconds after the script
// finishes, or at maxTicks if it never does.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	// Create a fresh config copy and apply parameters
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Telemetry.StatsWindow = fe.statsWindow

	result := &runResult{maxActive: cfg.Plume.MaxActive}

	l, err := lab.New(lab.Options{
		Seed:           seed,
		Headless:       true,
		Demo:           true,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		// A run that cannot start scores worst: no windows, no quality.
		return result
	}

	dt := cfg.Physics.DT
	graceTicks := int64(postDemoGraceSec / dt)
	var doneTick int64 = -1

	for int64(l.Tick()) < fe.maxTicks {
		l.UpdateHeadless()

		if doneTick < 0 && l.DemoDone() {
			doneTick = int64(l.Tick())
		}
		if doneTick >= 0 && int64(l.Tick())-doneTick >= graceTicks {
			break
		}
	}

	result.demoCompleted = l.DemoDone()
	l.Unload()
	return result
}

// copyConfig returns a mutable copy of the base config. Every section is a
// value type, so a struct copy suffices; the blur slices are shared but never
// written after load.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Runs share a fixed script, so quality carries the whole signal; a run
// whose script never finished scores worst.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	if !r.demoCompleted {
		return 0
	}
	return -fe.computeQuality(r)
}

// Quality component weights.
const (
	qualityWeightCoverage  = 0.30
	qualityWeightPool      = 0.25
	qualityWeightStability = 0.25
	qualityWeightSpread    = 0.20

	qualityWarmupWindows = 2  // skip first N windows (drops still landing)
	qualityMinActive     = 10 // exclude windows with a near-empty pool
)

// computeQuality computes bench visual quality ∈ [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(r *runResult) float64 {
	windows := r.windowStats
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	// Collect valid windows (past warmup, pool populated)
	valid := windows[qualityWarmupWindows:]

	maxActive := float64(r.maxActive)

	// --- Per-window accumulators ---
	var coverageSum, poolSum, spreadSum float64
	var coverageCount, poolCount, spreadCount int

	// --- Full time series for stability ---
	activeCounts := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.PlumeActive < qualityMinActive {
			continue
		}

		activeCounts = append(activeCounts, float64(w.PlumeActive))

		// 1. Dye coverage score
		coverageSum += math.Exp(-math.Pow((w.Concentration-0.25)/0.15, 2))
		coverageCount++

		// 2. Pool health score: utilization near target, crowding control
		// engaged but not choking spawns
		util := float64(w.PlumeActive) / maxActive
		utilScore := math.Exp(-math.Pow((util-0.55)/0.25, 2))
		attempts := w.Spawned + w.SuppressedGlobal + w.SuppressedLocal
		if attempts > 0 {
			supFrac := float64(w.SuppressedGlobal+w.SuppressedLocal) / float64(attempts)
			crowdScore := math.Exp(-math.Pow((supFrac-0.15)/0.25, 2))
			poolSum += 0.6*utilScore + 0.4*crowdScore
		} else {
			poolSum += utilScore
		}
		poolCount++

		// 3. Age spread score: wide life percentiles mean steady turnover,
		// narrow ones mean the plumes pulse in bursts
		spreadSum += clamp01((w.LifeP90 - w.LifeP10) / 0.6)
		spreadCount++
	}

	// No valid windows → zero quality
	if coverageCount == 0 {
		return 0
	}

	// 1. Dye coverage (averaged per valid window)
	coverageScore := coverageSum / float64(coverageCount)

	// 2. Pool health (averaged per valid window)
	poolScore := poolSum / float64(poolCount)

	// 3. Pool stability (CV across all valid windows)
	stabilityScore := 0.0
	if len(activeCounts) >= 2 {
		cvActive := cv(activeCounts)
		stabilityScore = math.Exp(-cvActive * cvActive)
	}

	// 4. Age spread (averaged per valid window)
	spreadScore := spreadSum / float64(spreadCount)

	quality := qualityWeightCoverage*coverageScore +
		qualityWeightPool*poolScore +
		qualityWeightStability*stabilityScore +
		qualityWeightSpread*spreadScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
