package pricing

import (
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/scoring"
)

// runSeedStride separates the seeds of consecutive Monte Carlo runs.
const runSeedStride = 1000

// RunSeed is the scenario seed for the run-th estimation run.
func RunSeed(seed int64, run int) int64 {
	return seed + int64(run)*runSeedStride
}

// ScenarioSource produces a scenario for a seed.
type ScenarioSource interface {
	Generate(seed int64) model.Scenario
}

// SoloTotals scores every id as a one-person roster over the scenario.
func SoloTotals(sc *model.Scenario, ids []string, cfg *scoring.Config) map[string]float64 {
	out := make(map[string]float64, len(ids))
	for i := range sc.Episodes {
		ep := &sc.Episodes[i]
		for _, id := range ids {
			out[id] += scoring.ContestantEpisodePoints(id, ep, cfg)
		}
	}
	return out
}

// Estimate accumulates per-run solo totals into a mean.
type Estimate struct {
	ids  []string
	sum  map[string]float64
	runs int
}

// NewEstimate starts an empty estimate over ids.
func NewEstimate(ids []string) *Estimate {
	return &Estimate{ids: ids, sum: make(map[string]float64, len(ids))}
}

// Add folds one run's totals in.
func (e *Estimate) Add(totals map[string]float64) {
	for _, id := range e.ids {
		e.sum[id] += totals[id]
	}
	e.runs++
}

// Runs is the number of runs folded in.
func (e *Estimate) Runs() int {
	return e.runs
}

// Mean returns the average total per id. It is empty before the first Add.
func (e *Estimate) Mean() map[string]float64 {
	out := make(map[string]float64, len(e.ids))
	if e.runs == 0 {
		return out
	}
	for _, id := range e.ids {
		out[id] = e.sum[id] / float64(e.runs)
	}
	return out
}

// ExpectedPoints averages each contestant's solo season total over runs
// scenarios seeded RunSeed(seed, 0..runs-1).
func ExpectedPoints(src ScenarioSource, ids []string, cfg *scoring.Config, runs int, seed int64) map[string]float64 {
	est := NewEstimate(ids)
	for run := 0; run < runs; run++ {
		sc := src.Generate(RunSeed(seed, run))
		est.Add(SoloTotals(&sc, ids, cfg))
	}
	return est.Mean()
}
