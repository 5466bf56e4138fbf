package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/castaway/internal/adapters/mq/queue"
	"github.com/okian/castaway/internal/adapters/repository"
	"github.com/okian/castaway/internal/analysis"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/pricing"
	"github.com/okian/castaway/internal/domain/roster"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/pkg/logger"
	"github.com/okian/castaway/pkg/metrics"
)

// PlayStyle is how a team reacts when a member is voted out.
type PlayStyle string

// Play styles.
const (
	StyleFixed   PlayStyle = "fixed"
	StyleReplace PlayStyle = "replace"
)

// PlayStyles lists every style in reporting order.
var PlayStyles = []PlayStyle{StyleFixed, StyleReplace}

// Replacement is one roster change made after an elimination.
type Replacement struct {
	Out         string  `json:"out"`
	In          string  `json:"in"`
	BudgetFreed int     `json:"budget_freed"`
	Viable      int     `json:"viable_count"`
	Penalty     float64 `json:"add_penalty"`
}

// team is a working roster being played through a season.
type team struct {
	style        PlayStyle
	members      []string
	tally        *scoring.Tally
	cumulative   float64
	penalty      float64
	replacements int
}

func (s *Service) newTeam(members []string, style PlayStyle) *team {
	return &team{style: style, members: slices.Clone(members), tally: scoring.NewTally(&s.sim.Scoring)}
}

// turn is what happened to a team in one episode.
type turn struct {
	captain     string
	points      float64
	replacement *Replacement
}

// play scores ep for t with a captain picked by expected points, then, for
// the replace style, swaps a voted-out member for the first viable
// candidate. history is the scenario's price history and at the index of
// the prices in force before ep. A replacement scores from the next episode.
func (s *Service) play(t *team, ep *model.Episode, history []model.PriceMap, at int, expected map[string]float64) turn {
	var tr turn
	tr.captain = roster.PickCaptain(t.members, expected, ep)
	raw := t.tally.AddEpisode(t.members, ep, tr.captain)
	for _, v := range raw {
		tr.points += v
	}
	tr.points += (s.sim.Scoring.CaptainMultiplier - 1) * raw[tr.captain]

	out := ep.VotedOut()
	if t.style != StyleReplace || out == "" || !slices.Contains(t.members, out) || len(history) == 0 {
		t.cumulative += tr.points
		return tr
	}

	freed := history[min(at, len(history)-1)][out]
	prices := history[min(at+1, len(history)-1)]
	pool := make([]string, 0, len(ep.Active))
	for _, id := range ep.Active {
		if !slices.Contains(t.members, id) {
			pool = append(pool, id)
		}
	}
	v := pricing.CountViable(pool, prices, expected, freed, s.sim.Dynamic.Tolerance())
	metrics.RecordViableOptions(v.Count)
	if v.Count > 0 {
		in := v.Viable[0].ID
		penalty := s.sim.Scoring.Other.AddPlayerPenalty
		t.members = append(slices.DeleteFunc(t.members, func(id string) bool { return id == out }), in)
		t.tally.Adjust(scoring.CategoryPenalties, penalty)
		t.penalty += penalty
		t.replacements++
		tr.points += penalty
		tr.replacement = &Replacement{Out: out, In: in, BudgetFreed: freed, Viable: v.Count, Penalty: penalty}
		metrics.RecordReplacement()
	}
	t.cumulative += tr.points
	return tr
}

// playSeason plays every episode of sc for t.
func (s *Service) playSeason(t *team, sc *model.Scenario, history []model.PriceMap, expected map[string]float64) {
	at := 0
	for i := range sc.Episodes {
		ep := &sc.Episodes[i]
		s.play(t, ep, history, at, expected)
		if ep.VotedOut() != "" {
			at++
		}
	}
}

// FullReport is the outcome of a full-season simulation.
type FullReport struct {
	RunID       string  `json:"run_id"`
	Seed        int64   `json:"seed"`
	Scenarios   int     `json:"num_scenarios"`
	PerStrategy int     `json:"rosters_per_strategy"`
	Market      *Market `json:"market"`

	CaptainMultiplier float64 `json:"captain_multiplier"`
	AddPlayerPenalty  float64 `json:"replacement_penalty"`

	Styles       map[string]analysis.Stats `json:"style_stats"`
	CaptainBonus float64                   `json:"captain_bonus_total"`
	Replacements int                       `json:"replacement_count"`
	PenaltyTotal float64                   `json:"replacement_penalty_total"`

	Rosters []model.Roster     `json:"rosters"`
	Best    []repository.Entry `json:"best_rosters"`
	Summary analysis.Summary   `json:"summary"`
	Results []analysis.Result  `json:"-"`
}

// Full plays budget rosters through scenarios seeded seed, seed+7777, ...
// once per play style. All teams of a scenario see the same price history.
func (s *Service) Full(ctx context.Context, scenarios, perStrategy, expectedRuns int, seed int64) (_ *FullReport, err error) {
	ctx, runID, done := s.begin(ctx, "full",
		logger.Int("scenarios", scenarios),
		logger.Int("rosters_per_strategy", perStrategy),
		logger.Int64("seed", seed),
	)
	defer func() { done(err) }()

	mkt, err := s.Market(ctx, expectedRuns, seed)
	if err != nil {
		return nil, err
	}
	m := roster.Market{Prices: mkt.Prices, Expected: mkt.Expected}
	rosters, err := roster.BuildBudgetForSimulation(s.sim.Cast, m, s.sim.Pricing.Rules(), perStrategy, seed)
	if err != nil {
		return nil, fmt.Errorf("build rosters: %w", err)
	}

	batches, err := fanOut[[]analysis.Result](ctx, s, "full", scenarios, seed, dynamicStride,
		func(_ context.Context, job queue.Job) ([]analysis.Result, error) {
			sc := s.Scenario(job.Seed)
			history := s.priceHistory(&sc, mkt.Prices)
			out := make([]analysis.Result, 0, len(rosters)*len(PlayStyles))
			for _, r := range rosters {
				for _, style := range PlayStyles {
					t := s.newTeam(r.Members, style)
					s.playSeason(t, &sc, history, mkt.Expected)
					res := analysis.FromTally(job.Index, r.Strategy, t.members, t.tally.Result())
					res.Style = string(style)
					res.Cost = r.Cost
					res.Replacements = t.replacements
					res.Penalty = t.penalty
					out = append(out, res)
				}
			}
			metrics.RecordRosterScored(len(out))
			return out, nil
		})
	if err != nil {
		return nil, err
	}

	rep := &FullReport{
		RunID:             runID,
		Seed:              seed,
		Scenarios:         scenarios,
		PerStrategy:       perStrategy,
		Market:            mkt,
		CaptainMultiplier: s.sim.Scoring.CaptainMultiplier,
		AddPlayerPenalty:  s.sim.Scoring.Other.AddPlayerPenalty,
		Styles:            map[string]analysis.Stats{},
		Rosters:           rosters,
		Results:           flatten(batches),
	}
	byStyle := map[string][]float64{}
	for i := range rep.Results {
		r := &rep.Results[i]
		byStyle[r.Style] = append(byStyle[r.Style], r.Total)
		rep.CaptainBonus += r.CaptainBonus
		rep.Replacements += r.Replacements
		rep.PenaltyTotal += r.Penalty
	}
	for style, vals := range byStyle {
		rep.Styles[style] = analysis.Describe(vals)
	}
	rep.Summary = analysis.Analyze(rep.Results)
	if rep.Best, err = leaderboard(ctx, rep.Results); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "full season played",
		logger.Int("results", len(rep.Results)),
		logger.Int("replacements", rep.Replacements),
		logger.Float64("fixed_mean", rep.Styles[string(StyleFixed)].Mean),
		logger.Float64("replace_mean", rep.Styles[string(StyleReplace)].Mean),
	)
	return rep, nil
}
