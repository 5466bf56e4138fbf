package scoring

import (
	"math"
	"slices"

	"github.com/okian/castaway/internal/domain/model"
)

// AttendedTribal reports whether id went to tribal council in ep. Everyone
// attends after the merge; before it only the tribe with the losing
// immunity placement does.
func AttendedTribal(id string, ep *model.Episode) bool {
	if ep.ImmunityType == model.ChallengeIndividual {
		return true
	}
	if ep.Tribal == nil {
		return false
	}
	tribe, ok := ep.TribeOf(id)
	if !ok {
		return false
	}
	place, ok := ep.Tribal.TeamImmunity[tribe]
	if !ok {
		return false
	}
	losing := ep.ImmunityTeams
	if losing == 0 {
		losing = 3
	}
	return place == losing
}

// emitFunc receives each scoring event a contestant triggers.
type emitFunc func(EventType, float64)

// scoreEpisode walks every rule for one contestant in one episode.
func scoreEpisode(id string, ep *model.Episode, cfg *Config, emit emitFunc) {
	if !ep.Participated(id) {
		return
	}
	if t := ep.Tribal; t != nil {
		scoreTribal(id, ep, t, cfg, emit)
	}
	if f := ep.Finale; f != nil && slices.Contains(f.FinalThree, id) {
		emit(EventFinalTribal, cfg.Placement.FinalTribal)
		if f.Winner == id {
			emit(EventWinSeason, cfg.Placement.WinSeason)
		}
	}
}

func scoreTribal(id string, ep *model.Episode, t *model.TribalOutcome, cfg *Config, emit emitFunc) {
	if slices.Contains(t.Survived, id) {
		emit(survivalEvent(ep.Phase), cfg.Survival.Points(ep.Phase))
	}

	tribe, inTribe := ep.TribeOf(id)
	if ep.ImmunityType == model.ChallengeTeam && inTribe {
		if place, ok := t.TeamImmunity[tribe]; ok {
			ti := cfg.TeamImmunity
			switch {
			case place == 1:
				emit(EventTeamImmunityFirst, ti.First)
			case place == 2 && ep.ImmunityTeams == 3:
				emit(EventTeamImmunitySecondThree, ti.SecondThreeTeam)
			case place == 2 && ep.ImmunityTeams == 2:
				emit(EventTeamImmunitySecondTwo, ti.SecondTwoTeam)
			default:
				emit(EventTeamImmunityLast, ti.Last)
			}
		}
	}
	if ep.RewardType == model.ChallengeTeam && inTribe {
		if place, ok := t.TeamReward[tribe]; ok {
			tr := cfg.TeamReward
			switch {
			case place == 1:
				emit(EventTeamRewardFirst, tr.First)
			case place == 2 && ep.RewardTeams == 3:
				emit(EventTeamRewardSecondThree, tr.SecondThreeTeam)
			case place == 2 && ep.RewardTeams == 2:
				emit(EventTeamRewardSecondTwo, tr.SecondTwoTeam)
			}
		}
	}

	if ep.ImmunityType == model.ChallengeIndividual && t.ImmunityWinner == id {
		emit(EventIndividualImmunity, cfg.IndividualImmunity)
	}

	attended := AttendedTribal(id, ep)
	if attended && slices.Contains(t.VoteMatched, id) {
		emit(EventVoteMatched, cfg.Tribal.VoteMatched)
	}
	if v := cfg.Tribal.CorrectTargetVote; v != nil && *v != 0 && attended &&
		t.VotedOut != "" && t.VoteTargets[id] == t.VotedOut {
		emit(EventCorrectTargetVote, *v)
	}
	if v := cfg.Tribal.ZeroVotesReceived; v != nil && *v != 0 && attended && t.VotesReceived[id] == 0 {
		emit(EventZeroVotesReceived, *v)
	}

	if t.VotedOut == id {
		emit(EventVotedOut, VotedOutPenalty(&cfg.Tribal, t.PocketItems, t.Votes))
	}

	if c := cfg.Confessionals; c != nil {
		switch n := t.Confessionals[id]; {
		case n >= 7:
			emit(EventConfessionals, c.Range7Up)
		case n >= 4:
			emit(EventConfessionals, c.Range4To6)
		}
	}

	adv := cfg.Advantages
	if slices.Contains(t.ClueReaders, id) {
		emit(EventClueRead, adv.ClueRead)
	}
	if slices.Contains(t.AdvantagePlayed, id) {
		emit(EventAdvantagePlay, adv.AdvantagePlay)
	}
	if slices.Contains(t.IdolPlayed, id) {
		if adv.IdolPlayPerVote != nil {
			emit(EventIdolPlay, *adv.IdolPlayPerVote*float64(t.IdolVotesNullified))
		} else {
			emit(EventIdolPlay, adv.IdolPlay)
		}
	}
	if slices.Contains(t.IdolFailed, id) {
		emit(EventIdolFailure, adv.IdolFailure)
	}
	if attended && t.StrategicPlayer == id {
		emit(EventStrategicPlayer, adv.StrategicPlayer)
	}

	if t.Quit == id {
		emit(EventQuit, cfg.Other.Quit)
	}
}

func survivalEvent(p model.Phase) EventType {
	switch p {
	case model.PhasePreMerge:
		return EventSurvivalPreMerge
	case model.PhaseSwap:
		return EventSurvivalSwap
	default:
		return EventSurvivalPostMerge
	}
}

// VotedOutPenalty is base*multiplier^items + perVote*votes.
func VotedOutPenalty(t *Tribal, items, votes int) float64 {
	return t.VotedOutBase*math.Pow(t.VotedOutPocketMultiplier, float64(items)) + t.VotedOutPerVote*float64(votes)
}

// ContestantEpisodePoints returns the raw points id earned in ep.
func ContestantEpisodePoints(id string, ep *model.Episode, cfg *Config) float64 {
	var pts float64
	scoreEpisode(id, ep, cfg, func(_ EventType, v float64) { pts += v })
	return pts
}

// EpisodePoints returns raw points for every participant of ep.
func EpisodePoints(ep *model.Episode, cfg *Config) map[string]float64 {
	parts := ep.Participants()
	out := make(map[string]float64, len(parts))
	for _, id := range parts {
		out[id] = ContestantEpisodePoints(id, ep, cfg)
	}
	return out
}

// EventTotal counts occurrences of one event and the points they produced.
type EventTotal struct {
	Count  int     `json:"count" yaml:"count"`
	Points float64 `json:"points" yaml:"points"`
}

// Result is a roster's season score.
type Result struct {
	Total        float64                  `json:"total" yaml:"total"`
	Categories   map[Category]float64     `json:"breakdown" yaml:"breakdown"`
	Events       map[EventType]EventTotal `json:"event_breakdown" yaml:"event_breakdown"`
	CaptainBonus float64                  `json:"captain_bonus" yaml:"captain_bonus"`
}

// Tally accumulates a Result episode by episode. It lets a caller score a
// roster that changes mid-season.
type Tally struct {
	cfg    *Config
	result Result
}

// NewTally returns an empty Tally with every category and event zeroed.
func NewTally(cfg *Config) *Tally {
	r := Result{
		Categories: make(map[Category]float64, len(Categories)),
		Events:     make(map[EventType]EventTotal, len(EventTypes)),
	}
	for _, c := range Categories {
		r.Categories[c] = 0
	}
	for _, e := range EventTypes {
		r.Events[e] = EventTotal{}
	}
	return &Tally{cfg: cfg, result: r}
}

// AddEpisode scores roster for ep. A non-empty captain on the roster earns
// (multiplier-1) times their raw episode points as a separate bonus. It
// returns the raw points each participating member earned.
func (t *Tally) AddEpisode(roster []string, ep *model.Episode, captain string) map[string]float64 {
	raw := make(map[string]float64, len(roster))
	for _, id := range roster {
		if !ep.Participated(id) {
			continue
		}
		var pts float64
		scoreEpisode(id, ep, t.cfg, func(e EventType, v float64) {
			pts += v
			t.result.Categories[e.Category()] += v
			et := t.result.Events[e]
			et.Count++
			et.Points += v
			t.result.Events[e] = et
		})
		raw[id] = pts
	}
	if captain != "" && slices.Contains(roster, captain) {
		t.result.CaptainBonus += (t.cfg.CaptainMultiplier - 1) * raw[captain]
	}
	return raw
}

// Adjust adds a flat amount to a category outside any event, such as a
// roster change penalty.
func (t *Tally) Adjust(c Category, v float64) {
	t.result.Categories[c] += v
}

// Result returns the accumulated score. The returned maps are copies.
func (t *Tally) Result() Result {
	r := Result{
		CaptainBonus: t.result.CaptainBonus,
		Categories:   make(map[Category]float64, len(t.result.Categories)),
		Events:       make(map[EventType]EventTotal, len(t.result.Events)),
	}
	for c, v := range t.result.Categories {
		r.Categories[c] = v
		r.Total += v
	}
	for e, v := range t.result.Events {
		r.Events[e] = v
	}
	r.Total += r.CaptainBonus
	return r
}

// RosterPoints scores a fixed roster over a season. captains, when non-nil,
// names the captain for each episode by index; "" means no captain.
func RosterPoints(roster []string, episodes []model.Episode, cfg *Config, captains []string) Result {
	t := NewTally(cfg)
	for i := range episodes {
		var captain string
		if i < len(captains) {
			captain = captains[i]
		}
		t.AddEpisode(roster, &episodes[i], captain)
	}
	return t.Result()
}
