package roster

import (
	"fmt"
	"slices"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/pkg/random"
)

// Strategy names a roster-building heuristic.
type Strategy string

// Trait strategies ignore prices.
const (
	StrategyRandom         Strategy = "random"
	StrategyChallengeBeast Strategy = "challenge_beast"
	StrategyIdolHunter     Strategy = "idol_hunter"
	StrategyUnderTheRadar  Strategy = "utr"
	StrategyBalanced       Strategy = "balanced"
)

// Budget strategies spend against prices and expected points. Random and
// Balanced are shared with the trait family.
const (
	StrategyMaxExpected    Strategy = "max_expected"
	StrategyValue          Strategy = "value"
	StrategyMidTier        Strategy = "mid_tier"
	StrategyStarsAndScrubs Strategy = "stars_and_scrubs"
	StrategyFivePremium    Strategy = "five_premium"
	StrategySixPremium     Strategy = "six_premium"
)

// TraitStrategies lists the price-blind strategies in build order.
var TraitStrategies = []Strategy{
	StrategyRandom,
	StrategyChallengeBeast,
	StrategyIdolHunter,
	StrategyUnderTheRadar,
	StrategyBalanced,
}

// BudgetStrategies lists the budget strategies in build order.
var BudgetStrategies = []Strategy{
	StrategyMaxExpected,
	StrategyValue,
	StrategyBalanced,
	StrategyMidTier,
	StrategyStarsAndScrubs,
	StrategyFivePremium,
	StrategySixPremium,
	StrategyRandom,
}

const (
	picksPerTribe   = 2
	traitRosterSize = 7
	seedStride      = 100
	midTierPenalty  = -1000
	balancedEPShare = 0.001
	starCount       = 2
)

// trait returns the contestant trait a strategy ranks by, or nil when it
// picks at random.
func trait(s Strategy) func(model.Contestant) float64 {
	switch s {
	case StrategyChallengeBeast:
		return func(c model.Contestant) float64 { return c.ChallengeAbility }
	case StrategyIdolHunter:
		return func(c model.Contestant) float64 { return c.IdolLikelihood }
	case StrategyUnderTheRadar:
		return func(c model.Contestant) float64 { return c.SurvivalBias }
	default:
		return nil
	}
}

// BuildTrait builds a 7-player roster: two per starting tribe plus a wild
// card. Ranked strategies take the highest trait values; the wild card is
// the best remaining for challenge_beast and idol_hunter and random otherwise.
func BuildTrait(cast model.Cast, s Strategy, rng *random.Stream) ([]string, error) {
	if !slices.Contains(TraitStrategies, s) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
	tribes := cast.StartingTribes()
	if len(tribes) < MinTribes {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewTribes, len(tribes))
	}
	byID := cast.ByID()
	rank := trait(s)
	byTrait := func(ids []string) []string {
		sorted := slices.Clone(ids)
		slices.SortStableFunc(sorted, func(a, b string) int {
			ta, tb := rank(byID[a]), rank(byID[b])
			switch {
			case ta > tb:
				return -1
			case ta < tb:
				return 1
			}
			return 0
		})
		return sorted
	}

	var roster []string
	for _, t := range tribes {
		if rank == nil {
			roster = append(roster, random.Sample(rng, t.Members, picksPerTribe)...)
			continue
		}
		sorted := byTrait(t.Members)
		roster = append(roster, sorted[:min(picksPerTribe, len(sorted))]...)
	}

	remaining := without(cast.IDs(), roster)
	if len(remaining) > 0 {
		if s == StrategyChallengeBeast || s == StrategyIdolHunter {
			roster = append(roster, byTrait(remaining)[0])
		} else {
			roster = append(roster, random.Choice(rng, remaining))
		}
	}
	if len(roster) > traitRosterSize {
		roster = roster[:traitRosterSize]
	}
	return roster, nil
}

// BuildForSimulation builds n trait rosters per trait strategy, seeding the
// i-th build of each strategy with seed+i*100.
func BuildForSimulation(cast model.Cast, n int, seed int64) ([]model.Roster, error) {
	out := make([]model.Roster, 0, n*len(TraitStrategies))
	for _, s := range TraitStrategies {
		for i := 0; i < n; i++ {
			ids, err := BuildTrait(cast, s, random.New(seed+int64(i*seedStride)))
			if err != nil {
				return nil, err
			}
			out = append(out, model.Roster{Members: ids, Strategy: string(s)})
		}
	}
	return out, nil
}

// Market is what budget strategies shop against.
type Market struct {
	Prices   model.PriceMap
	Expected map[string]float64
}

// BuildBudget builds a roster under r.Budget with at least one player per
// starting tribe, filling up to r.Max.
func BuildBudget(cast model.Cast, m Market, s Strategy, r Rules, rng *random.Stream) ([]string, error) {
	if !slices.Contains(BudgetStrategies, s) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
	tribes := cast.StartingTribes()
	if len(tribes) < MinTribes {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewTribes, len(tribes))
	}
	switch s {
	case StrategyStarsAndScrubs:
		return starsAndScrubs(cast, tribes, m, r, rng), nil
	case StrategyFivePremium:
		return premium(cast, tribes, m, r, 5, rng), nil
	case StrategySixPremium:
		return premium(cast, tribes, m, r, 6, rng), nil
	}

	score := pickScore(s, m)
	pick := func(cands []string) string {
		if s == StrategyRandom {
			return random.Choice(rng, cands)
		}
		return best(cands, score, rng)
	}

	var roster []string
	for _, t := range tribes {
		left := r.Budget - m.Prices.Cost(roster)
		affordable := filter(t.Members, func(id string) bool { return m.Prices[id] <= left })
		if len(affordable) == 0 {
			roster = append(roster, cheapest(t.Members, m.Prices)[0])
			continue
		}
		roster = append(roster, pick(affordable))
	}

	left := r.Budget - m.Prices.Cost(roster)
	cands := filter(without(cast.IDs(), roster), func(id string) bool { return m.Prices[id] <= left })
	for len(roster) < r.Max && len(cands) > 0 {
		id := pick(cands)
		roster = append(roster, id)
		left -= m.Prices[id]
		cands = filter(cands, func(c string) bool { return c != id && m.Prices[c] <= left })
	}
	return truncate(roster, r.Max), nil
}

// pickScore returns the ranking function for the simple budget strategies.
func pickScore(s Strategy, m Market) func(string) float64 {
	value := func(id string) float64 {
		p, ok := m.Prices[id]
		if !ok {
			p = 1
		}
		if p <= 0 {
			return 0
		}
		return m.Expected[id] / float64(p)
	}
	switch s {
	case StrategyValue:
		return value
	case StrategyBalanced:
		return func(id string) float64 { return value(id) + balancedEPShare*m.Expected[id] }
	case StrategyMidTier:
		lo, hi := quartiles(m.Expected)
		return func(id string) float64 {
			if ep := m.Expected[id]; ep >= lo && ep <= hi {
				return value(id)
			}
			return midTierPenalty
		}
	default:
		return func(id string) float64 { return m.Expected[id] }
	}
}

// quartiles returns the values at len/4 and 3*len/4 of the sorted expected points.
func quartiles(expected map[string]float64) (float64, float64) {
	if len(expected) == 0 {
		return 0, 0
	}
	vals := make([]float64, 0, len(expected))
	for _, v := range expected {
		vals = append(vals, v)
	}
	slices.Sort(vals)
	return vals[len(vals)/4], vals[3*len(vals)/4]
}

// starsAndScrubs takes the two best affordable players by expected points,
// then the cheapest player of each uncovered tribe, then the cheapest overall.
func starsAndScrubs(cast model.Cast, tribes []model.Tribe, m Market, r Rules, rng *random.Stream) []string {
	ids := cast.IDs()
	ep := func(id string) float64 { return m.Expected[id] }

	var roster []string
	for i := 0; i < starCount; i++ {
		left := r.Budget - m.Prices.Cost(roster)
		affordable := filter(without(ids, roster), func(id string) bool { return m.Prices[id] <= left })
		if len(affordable) == 0 {
			break
		}
		roster = append(roster, best(affordable, ep, rng))
	}

	left := r.Budget - m.Prices.Cost(roster)
	for _, t := range tribes {
		if slices.ContainsFunc(roster, func(id string) bool { return slices.Contains(t.Members, id) }) {
			continue
		}
		for _, id := range cheapest(without(t.Members, roster), m.Prices) {
			if p := m.Prices[id]; p <= left {
				roster = append(roster, id)
				left -= p
				break
			}
		}
	}

	rest := filter(without(ids, roster), func(id string) bool { return m.Prices[id] <= left })
	for _, id := range cheapest(rest, m.Prices) {
		if len(roster) >= r.Max {
			break
		}
		if p := m.Prices[id]; p <= left {
			roster = append(roster, id)
			left -= p
		}
	}
	return truncate(roster, r.Max)
}

// premium takes the best affordable player of each tribe, then keeps adding
// the best affordable player by expected points until max(target, r.Max).
func premium(cast model.Cast, tribes []model.Tribe, m Market, r Rules, target int, rng *random.Stream) []string {
	ep := func(id string) float64 { return m.Expected[id] }

	var roster []string
	for _, t := range tribes {
		left := r.Budget - m.Prices.Cost(roster)
		affordable := filter(t.Members, func(id string) bool { return m.Prices[id] <= left })
		if len(affordable) == 0 {
			affordable = cheapest(t.Members, m.Prices)[:1]
		}
		roster = append(roster, best(affordable, ep, rng))
	}

	left := r.Budget - m.Prices.Cost(roster)
	cands := without(cast.IDs(), roster)
	fill := max(target, r.Max)
	for len(roster) < fill && len(cands) > 0 {
		affordable := filter(cands, func(id string) bool { return m.Prices[id] <= left })
		if len(affordable) == 0 {
			break
		}
		id := best(affordable, ep, rng)
		roster = append(roster, id)
		left -= m.Prices[id]
		cands = without(cands, []string{id})
	}
	return truncate(roster, r.Max)
}

// BuildBudgetForSimulation builds n rosters per budget strategy, seeding the
// i-th build of each strategy with seed+i*100.
func BuildBudgetForSimulation(cast model.Cast, m Market, r Rules, n int, seed int64) ([]model.Roster, error) {
	out := make([]model.Roster, 0, n*len(BudgetStrategies))
	for _, s := range BudgetStrategies {
		for i := 0; i < n; i++ {
			ids, err := BuildBudget(cast, m, s, r, random.New(seed+int64(i*seedStride)))
			if err != nil {
				return nil, err
			}
			out = append(out, model.Roster{Members: ids, Strategy: string(s), Cost: m.Prices.Cost(ids)})
		}
	}
	return out, nil
}

// best returns the highest scoring id, breaking ties uniformly at random.
func best(ids []string, score func(string) float64, rng *random.Stream) string {
	var ties []string
	var top float64
	for i, id := range ids {
		v := score(id)
		switch {
		case i == 0 || v > top:
			top = v
			ties = append(ties[:0], id)
		case v == top:
			ties = append(ties, id)
		}
	}
	return random.Choice(rng, ties)
}

// cheapest returns ids sorted by price ascending, keeping input order on ties.
func cheapest(ids []string, prices model.PriceMap) []string {
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b string) int { return prices[a] - prices[b] })
	return out
}

func filter(ids []string, keep func(string) bool) []string {
	var out []string
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

func without(ids, drop []string) []string {
	return filter(ids, func(id string) bool { return !slices.Contains(drop, id) })
}

func truncate(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}
