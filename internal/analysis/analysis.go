// Package analysis aggregates scored roster seasons into run summaries:
// averages, category and event shares, per-strategy statistics, percentiles
// and example runs.
package analysis

import (
	"cmp"
	"slices"

	"github.com/okian/castaway/internal/domain/scoring"
)

// Result is one roster scored against one scenario.
type Result struct {
	ScenarioID int                                      `json:"scenario_id"`
	Strategy   string                                   `json:"strategy"`
	Style      string                                   `json:"style,omitempty"`
	Roster     []string                                 `json:"roster"`
	Cost       int                                      `json:"cost,omitempty"`
	Total      float64                                  `json:"total"`
	Categories map[scoring.Category]float64             `json:"breakdown"`
	Events     map[scoring.EventType]scoring.EventTotal `json:"event_breakdown"`

	CaptainBonus float64 `json:"captain_bonus,omitempty"`
	Replacements int     `json:"replacements,omitempty"`
	Penalty      float64 `json:"replacement_penalty,omitempty"`
}

// Group is the aggregation key: the strategy, qualified by play style when
// one is set.
func (r *Result) Group() string {
	if r.Style == "" {
		return r.Strategy
	}
	return r.Strategy + "/" + r.Style
}

// FromTally builds a Result from a scoring result.
func FromTally(scenarioID int, strategy string, roster []string, res scoring.Result) Result {
	return Result{
		ScenarioID:   scenarioID,
		Strategy:     strategy,
		Roster:       slices.Clone(roster),
		Total:        res.Total,
		Categories:   res.Categories,
		Events:       res.Events,
		CaptainBonus: res.CaptainBonus,
	}
}

// Stats summarises a sample of totals.
type Stats struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Describe computes Stats for vals. The zero Stats describes an empty sample.
func Describe(vals []float64) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	s := Stats{Min: vals[0], Max: vals[0], Count: len(vals)}
	var sum float64
	for _, v := range vals {
		sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Mean = sum / float64(len(vals))
	return s
}

// Percentiles of the run totals.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// Percentile returns sorted[int(n*p)], clamped to the last element. sorted
// must be ascending; an empty slice yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	return sorted[min(int(float64(n)*p), n-1)]
}

// Example is a notable run kept for the report.
type Example struct {
	Label      string                                   `json:"label"`
	Total      float64                                  `json:"total"`
	Strategy   string                                   `json:"strategy"`
	ScenarioID int                                      `json:"scenario_id"`
	Events     map[scoring.EventType]scoring.EventTotal `json:"event_breakdown"`
}

// Summary is the aggregate of a batch of results.
type Summary struct {
	TotalRuns   int                                      `json:"total_runs"`
	TotalAvg    float64                                  `json:"total_avg"`
	TotalPoints float64                                  `json:"total_points_all_runs"`
	CategoryAvg map[scoring.Category]float64             `json:"category_avg"`
	CategoryPct map[scoring.Category]float64             `json:"category_pct"`
	EventTotals map[scoring.EventType]scoring.EventTotal `json:"event_totals"`
	EventPct    map[scoring.EventType]float64            `json:"event_pct"`
	Strategies  map[string]Stats                         `json:"strategy_stats"`
	Percentiles Percentiles                              `json:"percentiles"`
	Examples    []Example                                `json:"examples"`
}

// Analyze aggregates results. Shares are percentages of the average (for
// categories) or overall (for events) total and are zero when the total is.
func Analyze(results []Result) Summary {
	s := Summary{
		TotalRuns:   len(results),
		CategoryAvg: map[scoring.Category]float64{},
		CategoryPct: map[scoring.Category]float64{},
		EventTotals: map[scoring.EventType]scoring.EventTotal{},
		EventPct:    map[scoring.EventType]float64{},
		Strategies:  map[string]Stats{},
	}
	if len(results) == 0 {
		return s
	}

	byGroup := map[string][]float64{}
	catSum := map[scoring.Category]float64{}
	catN := map[scoring.Category]int{}
	totals := make([]float64, 0, len(results))
	for i := range results {
		r := &results[i]
		totals = append(totals, r.Total)
		s.TotalPoints += r.Total
		byGroup[r.Group()] = append(byGroup[r.Group()], r.Total)
		for c, v := range r.Categories {
			catSum[c] += v
			catN[c]++
		}
		for e, t := range r.Events {
			acc := s.EventTotals[e]
			acc.Count += t.Count
			acc.Points += t.Points
			s.EventTotals[e] = acc
		}
	}

	s.TotalAvg = s.TotalPoints / float64(len(results))
	for c, sum := range catSum {
		avg := sum / float64(catN[c])
		s.CategoryAvg[c] = avg
		if s.TotalAvg != 0 {
			s.CategoryPct[c] = 100 * avg / s.TotalAvg
		}
	}
	for e, t := range s.EventTotals {
		if s.TotalPoints != 0 {
			s.EventPct[e] = 100 * t.Points / s.TotalPoints
		} else {
			s.EventPct[e] = 0
		}
	}
	for g, vals := range byGroup {
		s.Strategies[g] = Describe(vals)
	}

	sorted := slices.Clone(totals)
	slices.Sort(sorted)
	s.Percentiles = Percentiles{
		P10: Percentile(sorted, 0.10),
		P25: Percentile(sorted, 0.25),
		P50: Percentile(sorted, 0.50),
		P75: Percentile(sorted, 0.75),
		P90: Percentile(sorted, 0.90),
	}
	s.Examples = examples(results)
	return s
}

// examples picks the lowest, median and highest run. Ties keep input order.
func examples(results []Result) []Example {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(results[a].Total, results[b].Total)
	})
	labels := []string{"Lowest", "Median", "Highest"}
	picks := []int{order[0], order[len(order)/2], order[len(order)-1]}
	out := make([]Example, len(picks))
	for i, idx := range picks {
		r := &results[idx]
		out[i] = Example{
			Label:      labels[i],
			Total:      r.Total,
			Strategy:   r.Group(),
			ScenarioID: r.ScenarioID,
			Events:     r.Events,
		}
	}
	return out
}

// Ranked returns the strategy keys ordered by mean descending, then name.
func Ranked(stats map[string]Stats) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(stats[b].Mean, stats[a].Mean); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}
