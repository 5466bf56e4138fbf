// Package scenario generates randomized, internally consistent seasons of
// episode outcomes from a cast, a season template and an event-rate model.
//
// All randomness comes from one random.Stream consumed in a fixed order:
// swap timing, merge timing, boot order, side-event schedules, then the
// per-episode draws in episode order.
package scenario

import (
	"fmt"
	"slices"
	"sort"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/pkg/random"
)

const (
	startingTeams = 3
	mergeTribe    = "Merge"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithTemplate sets the season template.
func WithTemplate(t Template) Option {
	return func(g *Generator) {
		g.template = t
	}
}

// WithProbabilities sets the event-rate model.
func WithProbabilities(p Probabilities) Option {
	return func(g *Generator) {
		g.probs = p
	}
}

// Generator produces scenarios for a fixed cast. It holds no random state and
// is safe for concurrent use.
type Generator struct {
	cast     model.Cast
	byID     map[string]model.Contestant
	tribes   []model.Tribe
	template Template
	probs    Probabilities
}

// NewGenerator validates the cast and template and returns a Generator.
func NewGenerator(cast model.Cast, opts ...Option) (*Generator, error) {
	g := &Generator{
		cast:     cast,
		byID:     cast.ByID(),
		tribes:   cast.StartingTribes(),
		template: DefaultTemplate(),
		probs:    DefaultProbabilities(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.tribes) < startingTeams {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewTribes, len(g.tribes))
	}
	if err := g.template.Validate(len(cast)); err != nil {
		return nil, err
	}
	return g, nil
}

// Generate is the one-shot form: validate, seed a fresh stream and generate.
func Generate(cast model.Cast, t Template, seed int64, p Probabilities) (model.Scenario, error) {
	g, err := NewGenerator(cast, WithTemplate(t), WithProbabilities(p))
	if err != nil {
		return model.Scenario{}, err
	}
	return g.Generate(seed), nil
}

// Generate builds the scenario for seed.
func (g *Generator) Generate(seed int64) model.Scenario {
	sc := g.Run(random.New(seed))
	sc.Seed = seed
	return sc
}

// idolPlay is a precomputed idol play.
type idolPlay struct {
	episode int
	finder  string
	success bool
}

// schedule holds the season-wide side events drawn before any episode.
type schedule struct {
	idolFindEpisodes []int
	idolFinders      []string
	idolPlays        []idolPlay
	clueEpisodes     []int
	advPlayEpisodes  []int
	advPlayers       []string
	advFindEpisodes  []int
}

// Run generates a scenario from rng.
func (g *Generator) Run(rng *random.Stream) model.Scenario {
	ids := g.cast.IDs()
	n := len(ids)

	swapAt := g.template.SwapAt[rng.Intn(len(g.template.SwapAt))]
	mergeAt := g.template.MergeAt[rng.Intn(len(g.template.MergeAt))]
	slots := BuildSchedule(n, swapAt, mergeAt, g.template.Finalists)
	tribal := TribalIndices(slots)

	boot := g.bootOrder(rng, ids)
	sched := g.drawSchedule(rng, ids, tribal)

	active := append([]string(nil), ids...)
	tribes := cloneTribes(g.tribes)
	eliminated := 0
	next := 0

	episodes := make([]model.Episode, 0, len(slots))
	for idx, slot := range slots {
		switch {
		case idx > 0 && eliminated == n-swapAt:
			tribes = g.swapTribes(rng, active)
		case idx > 0 && eliminated == n-mergeAt:
			tribes = []model.Tribe{{Name: mergeTribe, Members: append([]string(nil), active...)}}
		}

		ep := model.Episode{
			ID:            slot.ID,
			Phase:         slot.Phase,
			ImmunityType:  slot.ImmunityType,
			RewardType:    slot.RewardType,
			ImmunityTeams: slot.ImmunityTeams,
			RewardTeams:   slot.RewardTeams,
		}

		if slot.Finale {
			remaining := append([]string(nil), active...)
			random.Shuffle(rng, remaining)
			final := remaining
			if len(final) > g.template.Finalists {
				final = final[:g.template.Finalists]
			}
			ep.Active = append([]string(nil), active...)
			ep.Tribes = snapshotTribes(tribes, ep.Active)
			ep.Finale = &model.FinaleOutcome{
				FinalThree: final,
				Winner:     random.Choice(rng, final),
			}
			episodes = append(episodes, ep)
			break
		}

		for next < len(boot) && !slices.Contains(active, boot[next]) {
			next++
		}
		votedOut := boot[next]
		next++
		ep.Tribes = snapshotTribes(tribes, active)
		active = remove(active, votedOut)
		tribes = pruneTribes(tribes, votedOut)
		eliminated++

		ep.Active = append([]string(nil), active...)
		ep.Tribal = g.tribal(rng, idx, slot, votedOut, active, ep.Tribes, sched)
		episodes = append(episodes, ep)
	}

	return model.Scenario{
		SwapAt:    swapAt,
		MergeAt:   mergeAt,
		BootOrder: boot,
		Episodes:  episodes,
	}
}

// bootOrder draws len(ids) weighted picks with replacement, keeps first
// occurrences and backfills the missing ids in shuffled order.
func (g *Generator) bootOrder(rng *random.Stream, ids []string) []string {
	weights := make([]float64, len(ids))
	for i, id := range ids {
		weights[i] = g.byID[id].SurvivalBias
	}
	seen := make(map[string]struct{}, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range rng.WeightedChoices(ids, weights, len(ids)) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	var missing []string
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return append(order, random.Sample(rng, missing, len(missing))...)
}

func (g *Generator) drawSchedule(rng *random.Stream, ids []string, tribal []int) schedule {
	p := g.probs
	var s schedule

	numIdols := rng.IntRange(p.Idols.FindsMin, p.Idols.FindsMax)
	s.idolFindEpisodes = random.Sample(rng, tribal, numIdols)
	sort.Ints(s.idolFindEpisodes)
	s.idolFinders = random.Sample(rng, ids, numIdols)
	if len(s.idolFindEpisodes) > 0 && len(s.idolFinders) > 0 {
		for i := 0; i < numIdols; i++ {
			finder := s.idolFinders[i%len(s.idolFinders)]
			found := s.idolFindEpisodes[i%len(s.idolFindEpisodes)]
			later := filterInts(tribal, func(j int) bool { return j > found })
			if len(later) == 0 {
				continue
			}
			s.idolPlays = append(s.idolPlays, idolPlay{
				episode: random.Choice(rng, later),
				finder:  finder,
				success: rng.Chance(p.Idols.PlaySuccessRate),
			})
		}
		sort.SliceStable(s.idolPlays, func(a, b int) bool { return s.idolPlays[a].episode < s.idolPlays[b].episode })
	}

	numClues := rng.IntRange(p.Clues.ReadsMin, p.Clues.ReadsMax)
	if numClues > 0 {
		s.clueEpisodes = random.Sample(rng, tribal, numClues)
	}

	numAdv := rng.IntRange(p.Advantages.PlaysMin, p.Advantages.PlaysMax)
	if numAdv > 0 {
		s.advPlayEpisodes = random.Sample(rng, tribal, numAdv)
		sort.Ints(s.advPlayEpisodes)
		s.advPlayers = random.Sample(rng, ids, numAdv)
	}
	for _, play := range s.advPlayEpisodes {
		earlier := filterInts(tribal, func(j int) bool { return j < play })
		if len(earlier) == 0 {
			s.advFindEpisodes = append(s.advFindEpisodes, play)
			continue
		}
		s.advFindEpisodes = append(s.advFindEpisodes, random.Choice(rng, earlier))
	}
	return s
}

// swapTribes shuffles the remaining players into two even tribes named after
// the first two starting tribes.
func (g *Generator) swapTribes(rng *random.Stream, active []string) []model.Tribe {
	remaining := append([]string(nil), active...)
	random.Shuffle(rng, remaining)
	mid := len(remaining) / 2
	return []model.Tribe{
		{Name: g.tribes[0].Name, Members: remaining[:mid]},
		{Name: g.tribes[1].Name, Members: remaining[mid:]},
	}
}

func (g *Generator) tribal(
	rng *random.Stream,
	idx int,
	slot Slot,
	votedOut string,
	active []string,
	tribes []model.Tribe,
	sched schedule,
) *model.TribalOutcome {
	p := g.probs
	out := &model.TribalOutcome{
		VotedOut: votedOut,
		Survived: append([]string(nil), active...),
	}

	if len(active) > 0 {
		lo := max(1, int(float64(len(active))*p.Matched.PctMin))
		hi := min(len(active), int(float64(len(active))*p.Matched.PctMax))
		if hi < lo {
			hi = lo
		}
		out.VoteMatched = random.Sample(rng, active, rng.IntRange(lo, hi))
	}

	if len(out.VoteMatched) > 0 {
		weights := make([]float64, len(out.VoteMatched))
		for i, id := range out.VoteMatched {
			weights[i] = g.byID[id].SurvivalBias
		}
		out.StrategicPlayer = rng.Weighted(out.VoteMatched, weights)
	}

	if slot.Phase.Team() {
		out.Votes = rng.IntRange(p.Votes.PreMergeMin, p.Votes.PreMergeMax)
	} else {
		out.Votes = rng.IntRange(p.Votes.PostMergeMin, p.Votes.PostMergeMax)
	}

	if rng.Chance(p.Pocket.HasItem) {
		out.PocketItems = 1
		if rng.Chance(p.Pocket.TwoItems) {
			out.PocketItems = 2
		}
	}

	if slot.Phase.Team() && slot.ImmunityTeams >= 2 {
		out.TeamImmunity = placements(rng, tribes, slot.ImmunityTeams)
		sendToTribal(out.TeamImmunity, tribes, votedOut, slot.ImmunityTeams)
		out.TeamReward = placements(rng, tribes, slot.RewardTeams)
	}

	if slot.ImmunityType == model.ChallengeIndividual && len(active) > 0 {
		weights := make([]float64, len(active))
		for i, id := range active {
			weights[i] = g.byID[id].ChallengeAbility
		}
		out.ImmunityWinner = rng.Weighted(active, weights)
	}

	if slices.Contains(sched.clueEpisodes, idx) && len(active) > 0 {
		k := rng.IntRange(p.Clues.ReadersMin, p.Clues.ReadersMax)
		out.ClueReaders = random.Sample(rng, active, k)
		if len(out.ClueReaders) > 0 {
			out.ClueFinder = out.ClueReaders[0]
		}
	}

	if pos := slices.Index(sched.idolFindEpisodes, idx); pos >= 0 && pos < len(sched.idolFinders) {
		if f := sched.idolFinders[pos]; slices.Contains(active, f) {
			out.IdolFinder = f
		}
	}

	for _, play := range sched.idolPlays {
		if play.episode != idx || !slices.Contains(active, play.finder) {
			continue
		}
		if play.success {
			out.IdolPlayed = []string{play.finder}
		} else {
			out.IdolFailed = []string{play.finder}
		}
		break
	}

	if pos := slices.Index(sched.advPlayEpisodes, idx); pos >= 0 && pos < len(sched.advPlayers) {
		if a := sched.advPlayers[pos]; slices.Contains(active, a) {
			out.AdvantagePlayed = []string{a}
		}
	}
	if pos := slices.Index(sched.advFindEpisodes, idx); pos >= 0 && pos < len(sched.advPlayers) {
		if a := sched.advPlayers[pos]; slices.Contains(active, a) {
			out.AdvantageFinder = a
		}
	}

	out.VoteTargets = make(map[string]string, len(active))
	out.VotesReceived = make(map[string]int, len(active)+1)
	for _, voter := range active {
		if slices.Contains(out.VoteMatched, voter) {
			out.VoteTargets[voter] = votedOut
			continue
		}
		others := make([]string, 0, len(active))
		for _, x := range active {
			if x != voter {
				others = append(others, x)
			}
		}
		if len(others) == 0 {
			out.VoteTargets[voter] = votedOut
			continue
		}
		out.VoteTargets[voter] = random.Choice(rng, others)
	}
	out.VotesReceived[votedOut] = out.Votes
	for _, voter := range active {
		out.VotesReceived[voter] = 0
	}

	if len(out.IdolPlayed) > 0 {
		out.IdolVotesNullified = out.Votes
	}

	out.Confessionals = make(map[string]int, len(active)+1)
	for _, id := range append(append([]string(nil), active...), votedOut) {
		switch {
		case rng.Chance(p.Confessionals.HighChance):
			out.Confessionals[id] = rng.IntRange(4, 7)
		case rng.Chance(p.Confessionals.MidChance):
			out.Confessionals[id] = rng.IntRange(4, 6)
		default:
			out.Confessionals[id] = rng.IntRange(0, 3)
		}
	}

	return out
}

// placements assigns a shuffled 1..teams permutation to the first teams tribes.
func placements(rng *random.Stream, tribes []model.Tribe, teams int) map[string]int {
	order := make([]int, teams)
	for i := range order {
		order[i] = i + 1
	}
	random.Shuffle(rng, order)
	out := make(map[string]int, teams)
	for i, t := range tribes {
		if i >= teams {
			break
		}
		out[t.Name] = order[i]
	}
	return out
}

// sendToTribal swaps immunity placements so the ousted player's tribe holds
// the losing place. No randomness is consumed.
func sendToTribal(placed map[string]int, tribes []model.Tribe, votedOut string, losing int) {
	var own string
	for _, t := range tribes {
		if slices.Contains(t.Members, votedOut) {
			own = t.Name
			break
		}
	}
	mine, ok := placed[own]
	if !ok || mine == losing {
		return
	}
	for name, place := range placed {
		if place == losing {
			placed[name] = mine
			placed[own] = losing
			return
		}
	}
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func filterInts(vals []int, keep func(int) bool) []int {
	var out []int
	for _, v := range vals {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func cloneTribes(tribes []model.Tribe) []model.Tribe {
	out := make([]model.Tribe, len(tribes))
	for i, t := range tribes {
		out[i] = model.Tribe{Name: t.Name, Members: append([]string(nil), t.Members...)}
	}
	return out
}

// pruneTribes drops the eliminated player from the running grouping.
func pruneTribes(tribes []model.Tribe, gone string) []model.Tribe {
	out := make([]model.Tribe, len(tribes))
	for i, t := range tribes {
		out[i] = model.Tribe{Name: t.Name, Members: remove(t.Members, gone)}
	}
	return out
}

// snapshotTribes records the grouping for an episode, restricted to participants.
func snapshotTribes(tribes []model.Tribe, participants []string) []model.Tribe {
	out := make([]model.Tribe, len(tribes))
	for i, t := range tribes {
		out[i] = model.Tribe{Name: t.Name}
		for _, id := range participants {
			if slices.Contains(t.Members, id) {
				out[i].Members = append(out[i].Members, id)
			}
		}
	}
	return out
}
