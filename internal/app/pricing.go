package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/okian/castaway/internal/adapters/mq/queue"
	"github.com/okian/castaway/internal/adapters/repository"
	"github.com/okian/castaway/internal/analysis"
	"github.com/okian/castaway/internal/domain/dedupe"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/pricing"
	"github.com/okian/castaway/internal/domain/roster"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/pkg/logger"
	"github.com/okian/castaway/pkg/metrics"
	"github.com/okian/castaway/pkg/random"
)

// SampledStrategy tags rosters drawn uniformly from the valid set.
const SampledStrategy = "sampled"

const topPicks = 10

// PricingOptions tunes a pricing simulation.
type PricingOptions struct {
	ExpectedRuns int
	Scenarios    int
	PerStrategy  int
	// Sample, when positive, replaces the strategy rosters with that many
	// unique valid rosters drawn at random.
	Sample int
}

// PriceSummary describes the priced field.
type PriceSummary struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Sum  int `json:"sum_all"`
	Top5 int `json:"top5_by_expected"`
	Top6 int `json:"top6_by_expected"`
	Top7 int `json:"top7_by_expected"`
}

// PriceTier groups contestants sharing a price, best expected first.
type PriceTier struct {
	Price int      `json:"price"`
	IDs   []string `json:"contestants"`
}

// Pick counts how often a contestant appeared in a strategy's results.
type Pick struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// StrategyStats extends the score statistics with cost and pick data.
type StrategyStats struct {
	analysis.Stats
	AvgCost  float64  `json:"avg_cost"`
	Example  []string `json:"example_roster"`
	TopPicks []Pick   `json:"top_picks"`
}

// PricingReport is the outcome of a pricing simulation.
type PricingReport struct {
	RunID        string `json:"run_id"`
	Seed         int64  `json:"seed"`
	ExpectedRuns int    `json:"expected_runs"`
	Scenarios    int    `json:"scenarios"`
	Sampled      int    `json:"sample_rosters,omitempty"`

	Config pricing.Config `json:"pricing_config"`
	Market *Market        `json:"market"`

	Counts      roster.Counts `json:"roster_counts"`
	TribeValid  int           `json:"total_possible_combos"`
	ExcludedPct float64       `json:"excluded_by_pricing_pct"`

	Rosters            []model.Roster           `json:"rosters"`
	UniqueCompositions int                      `json:"unique_roster_compositions"`
	PriceSummary       PriceSummary             `json:"price_summary"`
	Tiers              []PriceTier              `json:"players_by_price"`
	Strategies         map[string]StrategyStats `json:"strategy_stats"`
	Best               []repository.Entry       `json:"best_rosters"`
	Summary            analysis.Summary         `json:"summary"`
	Results            []analysis.Result        `json:"-"`
}

// Pricing prices the cast, counts the valid rosters the prices allow and
// scores budget rosters over opts.Scenarios seasons.
func (s *Service) Pricing(ctx context.Context, opts PricingOptions, seed int64) (_ *PricingReport, err error) {
	ctx, runID, done := s.begin(ctx, "pricing",
		logger.Int("expected_runs", opts.ExpectedRuns),
		logger.Int("scenarios", opts.Scenarios),
		logger.Int("sample", opts.Sample),
		logger.Int64("seed", seed),
	)
	defer func() { done(err) }()

	cfg := s.sim.Pricing
	mkt, err := s.Market(ctx, opts.ExpectedRuns, seed)
	if err != nil {
		return nil, err
	}

	rep := &PricingReport{
		RunID:        runID,
		Seed:         seed,
		ExpectedRuns: opts.ExpectedRuns,
		Scenarios:    opts.Scenarios,
		Config:       cfg,
		Market:       mkt,
		Counts:       roster.CountValid(s.sim.Cast, mkt.Prices, cfg.Rules()),
		TribeValid:   roster.CountTribeValid(s.sim.Cast, cfg.Rules()),
		PriceSummary: summarizePrices(mkt.Prices, mkt.Expected),
		Tiers:        priceTiers(mkt.Prices, mkt.Expected),
	}
	if rep.TribeValid > 0 {
		rep.ExcludedPct = 100 * (1 - float64(rep.Counts.Total)/float64(rep.TribeValid))
	}
	s.logger.Info(ctx, "valid rosters counted",
		logger.Int("valid", rep.Counts.Total),
		logger.Int("tribe_valid", rep.TribeValid),
		logger.Float64("excluded_pct", rep.ExcludedPct),
	)

	if opts.Sample > 0 {
		rep.Sampled = opts.Sample
		for _, ids := range roster.SampleValid(s.sim.Cast, mkt.Prices, cfg.Rules(), opts.Sample, random.New(seed)) {
			rep.Rosters = append(rep.Rosters, model.Roster{Members: ids, Strategy: SampledStrategy, Cost: mkt.Prices.Cost(ids)})
		}
		if len(rep.Rosters) < opts.Sample {
			s.logger.Warn(ctx, "roster sampling exhausted",
				logger.Int("wanted", opts.Sample),
				logger.Int("found", len(rep.Rosters)),
			)
		}
	} else {
		m := roster.Market{Prices: mkt.Prices, Expected: mkt.Expected}
		if rep.Rosters, err = roster.BuildBudgetForSimulation(s.sim.Cast, m, cfg.Rules(), opts.PerStrategy, seed); err != nil {
			return nil, fmt.Errorf("build rosters: %w", err)
		}
	}

	rosters := rep.Rosters
	batches, err := fanOut[[]analysis.Result](ctx, s, "pricing", opts.Scenarios, seed, scenarioStride,
		func(_ context.Context, job queue.Job) ([]analysis.Result, error) {
			sc := s.Scenario(job.Seed)
			out := make([]analysis.Result, 0, len(rosters))
			for _, r := range rosters {
				res := analysis.FromTally(job.Index, r.Strategy, r.Members,
					scoring.RosterPoints(r.Members, sc.Episodes, &s.sim.Scoring, nil))
				res.Cost = r.Cost
				out = append(out, res)
			}
			metrics.RecordRosterScored(len(rosters))
			return out, nil
		})
	if err != nil {
		return nil, err
	}

	rep.Results = flatten(batches)
	rep.Summary = analysis.Analyze(rep.Results)
	rep.Strategies = strategyStats(rep.Results)
	rep.UniqueCompositions = uniqueRosters(rep.Results)
	if rep.Best, err = leaderboard(ctx, rep.Results); err != nil {
		return nil, err
	}
	return rep, nil
}

func summarizePrices(prices model.PriceMap, expected map[string]float64) PriceSummary {
	var ps PriceSummary
	first := true
	for _, p := range prices {
		ps.Sum += p
		if first {
			ps.Min, ps.Max, first = p, p, false
			continue
		}
		ps.Min = min(ps.Min, p)
		ps.Max = max(ps.Max, p)
	}
	ps.Top5 = pricing.TopExpectedCost(prices, expected, 5)
	ps.Top6 = pricing.TopExpectedCost(prices, expected, 6)
	ps.Top7 = pricing.TopExpectedCost(prices, expected, 7)
	return ps
}

// priceTiers groups ids by price, most expensive first.
func priceTiers(prices model.PriceMap, expected map[string]float64) []PriceTier {
	byPrice := map[int][]string{}
	for id, p := range prices {
		byPrice[p] = append(byPrice[p], id)
	}
	tiers := make([]PriceTier, 0, len(byPrice))
	for p, ids := range byPrice {
		slices.SortFunc(ids, func(a, b string) int {
			if c := cmp.Compare(expected[b], expected[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		tiers = append(tiers, PriceTier{Price: p, IDs: ids})
	}
	slices.SortFunc(tiers, func(a, b PriceTier) int { return cmp.Compare(b.Price, a.Price) })
	return tiers
}

func strategyStats(results []analysis.Result) map[string]StrategyStats {
	totals := map[string][]float64{}
	costs := map[string]int{}
	examples := map[string][]string{}
	picks := map[string]map[string]int{}
	for i := range results {
		r := &results[i]
		g := r.Group()
		if _, ok := examples[g]; !ok {
			examples[g] = r.Roster
			picks[g] = map[string]int{}
		}
		totals[g] = append(totals[g], r.Total)
		costs[g] += r.Cost
		for _, id := range r.Roster {
			picks[g][id]++
		}
	}

	out := make(map[string]StrategyStats, len(totals))
	for g, vals := range totals {
		top := make([]Pick, 0, len(picks[g]))
		for id, n := range picks[g] {
			top = append(top, Pick{ID: id, Count: n})
		}
		slices.SortFunc(top, func(a, b Pick) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		out[g] = StrategyStats{
			Stats:    analysis.Describe(vals),
			AvgCost:  float64(costs[g]) / float64(len(vals)),
			Example:  examples[g],
			TopPicks: top[:min(topPicks, len(top))],
		}
	}
	return out
}

// uniqueRosters counts distinct roster compositions among results.
func uniqueRosters(results []analysis.Result) int {
	seen := dedupe.NewInMemoryDeduper()
	for i := range results {
		seen.SeenAndRecord(dedupe.Key(results[i].Roster))
	}
	return seen.Size()
}
