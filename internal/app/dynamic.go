package service

import (
	"context"

	"github.com/okian/castaway/internal/adapters/mq/queue"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/pricing"
	"github.com/okian/castaway/pkg/logger"
	"github.com/okian/castaway/pkg/metrics"
)

// The merge validity check runs while mergeWindowLow..mergeWindowHigh
// players remain.
const (
	mergeWindowLow  = 10
	mergeWindowHigh = 12
	healthyViable   = 3
	sampleEvents    = 50
	sampleHistory   = 6
)

// ReplacementEvent is one elimination seen from a team that must replace
// the ousted player.
type ReplacementEvent struct {
	Scenario    int                    `json:"scenario"`
	Episode     int                    `json:"episode"`
	VotedOut    string                 `json:"voted_out"`
	Remaining   int                    `json:"remaining"`
	BudgetFreed int                    `json:"budget_freed"`
	Viability   pricing.Viability      `json:"viability"`
	Merge       *pricing.MergeValidity `json:"merge,omitempty"`
}

// DynamicReport is the outcome of a dynamic pricing simulation.
type DynamicReport struct {
	RunID     string          `json:"run_id"`
	Seed      int64           `json:"seed"`
	Scenarios int             `json:"num_scenarios"`
	Config    pricing.Dynamic `json:"dynamic_config"`
	Market    *Market         `json:"market"`

	Events       int     `json:"replacement_events"`
	AvgViable    float64 `json:"avg_viable_replacements"`
	MinViable    int     `json:"min_viable_replacements"`
	ZeroViable   int     `json:"zero_viable_events"`
	ThreePlusPct float64 `json:"pct_with_3plus_viable"`
	MergeEvents  int     `json:"merge_events"`
	AvgMergePct  float64 `json:"avg_merge_valid_pct"`
	MergeTarget  float64 `json:"merge_valid_pct_target"`

	// Sample holds the first events; History the first price maps of scenario 0.
	Sample  []ReplacementEvent `json:"replacement_stats_sample"`
	History []model.PriceMap   `json:"price_evolution"`
}

type dynamicRun struct {
	events  []ReplacementEvent
	history []model.PriceMap
}

// Dynamic steps scenarios seeded seed, seed+7777, ... through their tribals,
// repricing after each and measuring how many viable replacements the
// freed budget buys among the players still in the game.
func (s *Service) Dynamic(ctx context.Context, scenarios, expectedRuns int, seed int64) (_ *DynamicReport, err error) {
	ctx, runID, done := s.begin(ctx, "dynamic",
		logger.Int("scenarios", scenarios),
		logger.Int("expected_runs", expectedRuns),
		logger.Int64("seed", seed),
	)
	defer func() { done(err) }()

	mkt, err := s.Market(ctx, expectedRuns, seed)
	if err != nil {
		return nil, err
	}

	runs, err := fanOut[dynamicRun](ctx, s, "dynamic", scenarios, seed, dynamicStride,
		func(_ context.Context, job queue.Job) (dynamicRun, error) {
			sc := s.Scenario(job.Seed)
			return s.replay(job.Index, &sc, mkt), nil
		})
	if err != nil {
		return nil, err
	}

	rep := &DynamicReport{
		RunID:       runID,
		Seed:        seed,
		Scenarios:   scenarios,
		Config:      s.sim.Dynamic,
		Market:      mkt,
		MergeTarget: 100 * s.sim.Dynamic.TargetMergeValidPct,
	}
	if len(runs) > 0 {
		rep.History = runs[0].history[:min(sampleHistory, len(runs[0].history))]
	}

	var viableSum, mergeSum float64
	threePlus := 0
	for _, run := range runs {
		for _, ev := range run.events {
			n := ev.Viability.Count
			if rep.Events == 0 || n < rep.MinViable {
				rep.MinViable = n
			}
			rep.Events++
			viableSum += float64(n)
			if n == 0 {
				rep.ZeroViable++
			}
			if n >= healthyViable {
				threePlus++
			}
			if ev.Merge != nil {
				rep.MergeEvents++
				mergeSum += ev.Merge.Pct
			}
			if len(rep.Sample) < sampleEvents {
				rep.Sample = append(rep.Sample, ev)
			}
		}
	}
	if rep.Events > 0 {
		rep.AvgViable = viableSum / float64(rep.Events)
		rep.ThreePlusPct = 100 * float64(threePlus) / float64(rep.Events)
	}
	if rep.MergeEvents > 0 {
		rep.AvgMergePct = mergeSum / float64(rep.MergeEvents)
	}
	s.logger.Info(ctx, "replacement viability",
		logger.Int("events", rep.Events),
		logger.Float64("avg_viable", rep.AvgViable),
		logger.Int("zero_viable", rep.ZeroViable),
		logger.Float64("avg_merge_valid_pct", rep.AvgMergePct),
	)
	return rep, nil
}

// replay walks one scenario. The freed budget is the ousted player's price
// before the episode's update; the pool is everyone still in the game.
func (s *Service) replay(idx int, sc *model.Scenario, mkt *Market) dynamicRun {
	tol := s.sim.Dynamic.Tolerance()
	size := s.sim.Pricing.RosterMax
	current := mkt.Prices
	run := dynamicRun{history: []model.PriceMap{current}}

	for i := range sc.Episodes {
		ep := &sc.Episodes[i]
		if ep.IsFinale() {
			break
		}
		out := ep.VotedOut()
		if out == "" {
			continue
		}
		freed := current[out]
		current = pricing.UpdateFromEpisode(current, ep, &s.sim.Scoring, s.sim.Dynamic, i+1)
		metrics.RecordPriceUpdate()
		run.history = append(run.history, current)
		if len(ep.Active) == 0 {
			continue
		}

		v := pricing.CountViable(ep.Active, current, mkt.Expected, freed, tol)
		metrics.RecordViableOptions(v.Count)
		ev := ReplacementEvent{
			Scenario:    idx,
			Episode:     i + 1,
			VotedOut:    out,
			Remaining:   len(ep.Active),
			BudgetFreed: freed,
			Viability:   v,
		}
		if n := len(ep.Active); n >= mergeWindowLow && n <= mergeWindowHigh && n >= size {
			mv := pricing.MergeValid(s.sim.Cast.Subset(ep.Active), current, s.mergeBudget(), size)
			metrics.UpdateMergeValidRatio(mv.Pct / 100)
			ev.Merge = &mv
		}
		run.events = append(run.events, ev)
	}
	return run
}
