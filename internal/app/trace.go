package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/roster"
	"github.com/okian/castaway/pkg/logger"
)

const tracePerStrategy = 5

// traceStrategies are the sample teams of a trace, in order.
var traceStrategies = []roster.Strategy{roster.StrategyValue, roster.StrategyMidTier, roster.StrategyRandom}

// PriceChange is one contestant's move across an episode.
type PriceChange struct {
	ID     string  `json:"id"`
	Before int     `json:"before"`
	After  int     `json:"after"`
	Delta  int     `json:"delta"`
	Pct    float64 `json:"pct"`
}

// TeamUpdate is one sample team in one episode under one play style.
type TeamUpdate struct {
	Team        int          `json:"team"`
	Strategy    string       `json:"strategy"`
	Style       PlayStyle    `json:"style"`
	Captain     string       `json:"captain,omitempty"`
	Points      float64      `json:"episode_pts"`
	Cumulative  float64      `json:"cumulative_pts"`
	Roster      []string     `json:"roster"`
	Replacement *Replacement `json:"replacement,omitempty"`
}

// TraceEpisode is one non-finale episode of a trace.
type TraceEpisode struct {
	Episode  int            `json:"episode"`
	Phase    model.Phase    `json:"phase"`
	VotedOut string         `json:"voted_out,omitempty"`
	Before   model.PriceMap `json:"prices_before"`
	After    model.PriceMap `json:"prices_after"`
	Changes  []PriceChange  `json:"price_changes"`
	Teams    []TeamUpdate   `json:"team_updates"`
}

// TraceTeam is a sample team and where each style finished.
type TraceTeam struct {
	Strategy      string   `json:"strategy"`
	InitialRoster []string `json:"initial_roster"`
	InitialCost   int      `json:"initial_cost"`
	Fixed         []string `json:"fixed_roster"`
	FixedPoints   float64  `json:"fixed_pts"`
	Replace       []string `json:"replace_roster"`
	ReplacePoints float64  `json:"replace_pts"`
}

// Trace is a week-by-week view of one scenario.
type Trace struct {
	RunID            string            `json:"run_id"`
	Seed             int64             `json:"scenario_seed"`
	Budget           int               `json:"budget"`
	AddPlayerPenalty float64           `json:"add_player_penalty"`
	Names            map[string]string `json:"id_to_name"`
	Market           *Market           `json:"market"`
	Teams            []TraceTeam       `json:"teams"`
	Episodes         []TraceEpisode    `json:"episode_trace"`
}

// Trace plays sample teams through the scenario for seed under both
// play styles, recording price moves and team changes episode by episode.
func (s *Service) Trace(ctx context.Context, teams, expectedRuns int, seed int64) (_ *Trace, err error) {
	ctx, runID, done := s.begin(ctx, "trace", logger.Int("teams", teams), logger.Int64("seed", seed))
	defer func() { done(err) }()

	mkt, err := s.Market(ctx, expectedRuns, seed)
	if err != nil {
		return nil, err
	}
	m := roster.Market{Prices: mkt.Prices, Expected: mkt.Expected}
	all, err := roster.BuildBudgetForSimulation(s.sim.Cast, m, s.sim.Pricing.Rules(), tracePerStrategy, seed)
	if err != nil {
		return nil, fmt.Errorf("build rosters: %w", err)
	}
	samples := sampleTeams(all, teams)

	sc := s.Scenario(seed)
	history := s.priceHistory(&sc, mkt.Prices)

	tr := &Trace{
		RunID:            runID,
		Seed:             seed,
		Budget:           s.sim.Pricing.Budget,
		AddPlayerPenalty: s.sim.Scoring.Other.AddPlayerPenalty,
		Names:            make(map[string]string, len(s.sim.Cast)),
		Market:           mkt,
	}
	for _, c := range s.sim.Cast {
		tr.Names[c.ID] = c.Name
	}

	playing := make([][]*team, len(samples))
	for i, r := range samples {
		for _, style := range PlayStyles {
			playing[i] = append(playing[i], s.newTeam(r.Members, style))
		}
	}

	at := 0
	for i := range sc.Episodes {
		ep := &sc.Episodes[i]
		if ep.IsFinale() {
			break
		}
		out := ep.VotedOut()
		before := history[min(at, len(history)-1)]
		after := before
		if out != "" {
			after = history[min(at+1, len(history)-1)]
		}
		te := TraceEpisode{
			Episode:  i + 1,
			Phase:    ep.Phase,
			VotedOut: out,
			Before:   before,
			After:    after,
			Changes:  priceChanges(before, after),
		}
		for ti, ts := range playing {
			for _, t := range ts {
				turn := s.play(t, ep, history, at, mkt.Expected)
				te.Teams = append(te.Teams, TeamUpdate{
					Team:        ti + 1,
					Strategy:    samples[ti].Strategy,
					Style:       t.style,
					Captain:     turn.captain,
					Points:      turn.points,
					Cumulative:  t.cumulative,
					Roster:      slices.Clone(t.members),
					Replacement: turn.replacement,
				})
			}
		}
		if out != "" {
			at++
		}
		tr.Episodes = append(tr.Episodes, te)
	}

	for i, r := range samples {
		fixed, replace := playing[i][0], playing[i][1]
		tr.Teams = append(tr.Teams, TraceTeam{
			Strategy:      r.Strategy,
			InitialRoster: r.Members,
			InitialCost:   mkt.Prices.Cost(r.Members),
			Fixed:         fixed.members,
			FixedPoints:   fixed.cumulative,
			Replace:       replace.members,
			ReplacePoints: replace.cumulative,
		})
	}
	s.logger.Info(ctx, "trace complete",
		logger.Int("episodes", len(tr.Episodes)),
		logger.Int("teams", len(tr.Teams)),
	)
	return tr, nil
}

// sampleTeams takes the first roster of each trace strategy, or the first n
// rosters when that does not yield n teams.
func sampleTeams(all []model.Roster, n int) []model.Roster {
	var out []model.Roster
	seen := map[string]bool{}
	for _, r := range all {
		if len(out) >= n {
			break
		}
		if slices.Contains(traceStrategies, roster.Strategy(r.Strategy)) && !seen[r.Strategy] {
			seen[r.Strategy] = true
			out = append(out, r)
		}
	}
	if len(out) < n {
		out = all[:min(n, len(all))]
	}
	return out
}

// priceChanges lists contestants whose price moved, largest move first.
func priceChanges(before, after model.PriceMap) []PriceChange {
	var out []PriceChange
	for _, id := range before.SortedIDs() {
		b, a := before[id], after[id]
		if a == b {
			continue
		}
		pc := PriceChange{ID: id, Before: b, After: a, Delta: a - b}
		if b != 0 {
			pc.Pct = 100 * float64(a-b) / float64(b)
		}
		out = append(out, pc)
	}
	slices.SortStableFunc(out, func(x, y PriceChange) int {
		return cmp.Compare(abs(y.Delta), abs(x.Delta))
	})
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
