package pricing

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/roster"
)

// byExpected returns ids sorted by expected points descending, then id.
func byExpected(expected map[string]float64) []string {
	ids := make([]string, 0, len(expected))
	for id := range expected {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		switch {
		case expected[a] > expected[b]:
			return -1
		case expected[a] < expected[b]:
			return 1
		}
		return strings.Compare(a, b)
	})
	return ids
}

// ToPrices maps expected points onto [PriceMin, PriceMax] along a power
// curve, rescales so the top roster-size players cost the configured target,
// then rounds to the increment and clamps. Off-grid bounds are snapped inward
// first so every price is a multiple of the increment.
func ToPrices(expected map[string]float64, cfg Config) model.PriceMap {
	out := make(model.PriceMap, len(expected))
	if len(expected) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range expected {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	minP, maxP := cfg.GridBounds()
	lowP, highP := float64(minP), float64(maxP)
	raw := make(map[string]float64, len(expected))
	for id, v := range expected {
		norm := math.Max(0, math.Min(1, (v-lo)/span))
		raw[id] = lowP + math.Pow(norm, cfg.PriceCurve)*(highP-lowP)
	}

	ranked := byExpected(expected)
	n := min(cfg.RosterMax, len(ranked))
	var top float64
	for _, id := range ranked[:max(n, 0)] {
		top += raw[id]
	}
	if target := cfg.topTarget(); target > 0 && top > 0 {
		scale := target / top
		for id := range raw {
			raw[id] *= scale
		}
	}

	for id, p := range raw {
		clamped := math.Max(lowP, math.Min(highP, p))
		out[id] = clampInt(roundTo(clamped, cfg.PriceIncrement), minP, maxP)
	}
	return out
}

// rescale multiplies every price by scale, rounds to the increment and clamps.
func rescale(prices model.PriceMap, scale float64, cfg Config) model.PriceMap {
	lo, hi := cfg.GridBounds()
	out := make(model.PriceMap, len(prices))
	for id, p := range prices {
		out[id] = clampInt(roundTo(float64(p)*scale, cfg.PriceIncrement), lo, hi)
	}
	return out
}

// Calibration reports what Calibrate did.
type Calibration struct {
	TargetCost int     `json:"target_cost" yaml:"target_cost"`
	Scale      float64 `json:"scale" yaml:"scale"`
	TopScale   float64 `json:"top_scale" yaml:"top_scale"`
	TopCost    int     `json:"top_cost" yaml:"top_cost"`
}

// Calibrate scales prices so the TargetValidPct percentile of tribe-valid
// roster costs lands on the budget, then, if the most expensive roster-size
// players still fit the budget, scales again so they cost budget+increment.
// It is a no-op unless TargetValidPct is in (0,1) and rosters have one size.
func Calibrate(prices model.PriceMap, cast model.Cast, cfg Config) (model.PriceMap, Calibration) {
	var cal Calibration
	if cfg.TargetValidPct <= 0 || cfg.TargetValidPct >= 1 || cfg.RosterMin != cfg.RosterMax {
		return prices.Clone(), cal
	}

	rules := roster.Rules{Budget: cfg.Budget, Min: cfg.RosterMax, Max: cfg.RosterMax}
	cal.TargetCost = roster.CostPercentiles(cast, prices, rules, cfg.TargetValidPct)[cfg.TargetValidPct]
	out := prices.Clone()
	if cal.TargetCost > 0 {
		cal.Scale = float64(cfg.Budget) / float64(cal.TargetCost)
		out = rescale(out, cal.Scale, cfg)
	}

	cal.TopCost = TopCost(out, cfg.RosterMax)
	if cal.TopCost <= cfg.Budget && cal.TopCost > 0 {
		cal.TopScale = float64(cfg.Budget+cfg.PriceIncrement) / float64(cal.TopCost)
		out = rescale(out, cal.TopScale, cfg)
		cal.TopCost = TopCost(out, cfg.RosterMax)
	}
	return out, cal
}

// TopCost is the summed price of the n most expensive contestants.
func TopCost(prices model.PriceMap, n int) int {
	ids := prices.SortedIDs()
	return prices.Cost(ids[:min(n, len(ids))])
}

// TopExpectedCost is the summed price of the n contestants with the most
// expected points.
func TopExpectedCost(prices model.PriceMap, expected map[string]float64, n int) int {
	ids := byExpected(expected)
	return prices.Cost(ids[:min(n, len(ids))])
}
