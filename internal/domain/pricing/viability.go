package pricing

import (
	"math"
	"slices"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/roster"
)

// DefaultTolerance is the fixed value tolerance used when no model is given.
const DefaultTolerance FixedTolerance = 0.10

// Adaptive widening steps.
const (
	compressedBump = 0.05
	lateSeasonBump = 0.04
)

// Tolerance decides how far below the best value a candidate may be and
// still count as viable.
type Tolerance interface {
	For(affordablePrices []int, poolSize int) float64
}

// FixedTolerance is a constant tolerance.
type FixedTolerance float64

// For returns the fixed tolerance.
func (f FixedTolerance) For([]int, int) float64 {
	return float64(f)
}

// AdaptiveTolerance widens from Base when affordable prices are tightly
// bunched (range/median below CompressedRatio) and again when the pool is
// smaller than LateThreshold, never beyond Max.
type AdaptiveTolerance struct {
	Base            float64
	Max             float64
	LateThreshold   int
	CompressedRatio float64
}

// For returns the tolerance for this affordable set and pool size.
func (a AdaptiveTolerance) For(prices []int, poolSize int) float64 {
	if len(prices) == 0 {
		return a.Base
	}
	sorted := slices.Clone(prices)
	slices.Sort(sorted)
	spread := float64(sorted[len(sorted)-1] - sorted[0])
	median := float64(sorted[len(sorted)/2])
	ratio := 1.0
	if median > 0 {
		ratio = spread / median
	}

	tol := a.Base
	if ratio < a.CompressedRatio {
		tol = math.Min(a.Max, a.Base+compressedBump)
	}
	if poolSize < a.LateThreshold {
		tol = math.Min(a.Max, tol+lateSeasonBump)
	}
	return math.Min(a.Max, tol)
}

// Candidate is an affordable replacement.
type Candidate struct {
	ID       string  `json:"id" yaml:"id"`
	Price    int     `json:"price" yaml:"price"`
	Expected float64 `json:"expected_points" yaml:"expected_points"`
	Value    float64 `json:"value" yaml:"value"`
}

// Viability summarises the replacement options for a freed budget.
type Viability struct {
	Count      int         `json:"count" yaml:"count"`
	BestValue  float64     `json:"best_value" yaml:"best_value"`
	Viable     []Candidate `json:"viable" yaml:"viable"`
	Affordable int         `json:"affordable_count" yaml:"affordable_count"`
	Tolerance  float64     `json:"value_tolerance_used" yaml:"value_tolerance_used"`
}

// CountViable finds pool members priced within budget and keeps those whose
// value (expected points per dollar) is within tolerance of the best. No
// affordable candidate is a valid outcome and yields the zero Viability.
// Viable candidates keep pool order. A nil tol means DefaultTolerance.
func CountViable(pool []string, prices model.PriceMap, expected map[string]float64, budget int, tol Tolerance) Viability {
	var affordable []Candidate
	for _, id := range pool {
		p := prices[id]
		if p > budget {
			continue
		}
		c := Candidate{ID: id, Price: p, Expected: expected[id]}
		if p > 0 {
			c.Value = c.Expected / float64(p)
		}
		affordable = append(affordable, c)
	}
	if len(affordable) == 0 {
		return Viability{}
	}

	if tol == nil {
		tol = DefaultTolerance
	}
	affordablePrices := make([]int, len(affordable))
	for i, c := range affordable {
		affordablePrices[i] = c.Price
	}
	t := tol.For(affordablePrices, len(pool))

	best := affordable[0].Value
	for _, c := range affordable[1:] {
		best = math.Max(best, c.Value)
	}
	threshold := best * (1 - t)

	v := Viability{BestValue: best, Affordable: len(affordable), Tolerance: t}
	for _, c := range affordable {
		if c.Value >= threshold {
			v.Viable = append(v.Viable, c)
		}
	}
	v.Count = len(v.Viable)
	return v
}

// MergeValidity is the share of tribe-valid rosters of size that fit budget
// among the remaining cast.
type MergeValidity struct {
	Valid      int     `json:"merge_valid_count" yaml:"merge_valid_count"`
	TribeValid int     `json:"merge_total_tribe_valid" yaml:"merge_total_tribe_valid"`
	Pct        float64 `json:"merge_valid_pct" yaml:"merge_valid_pct"`
}

// MergeValid counts the size-player rosters of remaining that fit budget
// against all tribe-valid ones.
func MergeValid(remaining model.Cast, prices model.PriceMap, budget, size int) MergeValidity {
	rules := roster.Rules{Budget: budget, Min: size, Max: size}
	mv := MergeValidity{
		Valid:      roster.CountValid(remaining, prices, rules).Total,
		TribeValid: roster.CountTribeValid(remaining, rules),
	}
	if mv.TribeValid > 0 {
		mv.Pct = 100 * float64(mv.Valid) / float64(mv.TribeValid)
	}
	return mv
}
