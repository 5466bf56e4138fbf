package model

import "slices"

// Phase is the structural stage of the season.
type Phase string

// Season phases.
const (
	PhasePreMerge  Phase = "pre_merge"
	PhaseSwap      Phase = "swap"
	PhasePostMerge Phase = "post_merge"
)

// Team reports whether the phase plays team challenges.
func (p Phase) Team() bool {
	return p == PhasePreMerge || p == PhaseSwap
}

// ChallengeType distinguishes team from individual challenges.
type ChallengeType string

// Challenge types.
const (
	ChallengeTeam       ChallengeType = "team"
	ChallengeIndividual ChallengeType = "individual"
)

// Tribe is a named group of contestants for one episode.
type Tribe struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

// Episode is one televised episode. Exactly one of Tribal and Finale is set.
type Episode struct {
	ID            int           `json:"episode_id" yaml:"episode_id"`
	Phase         Phase         `json:"phase" yaml:"phase"`
	ImmunityType  ChallengeType `json:"immunity_type" yaml:"immunity_type"`
	RewardType    ChallengeType `json:"reward_type" yaml:"reward_type"`
	ImmunityTeams int           `json:"immunity_teams,omitempty" yaml:"immunity_teams,omitempty"`
	RewardTeams   int           `json:"reward_teams,omitempty" yaml:"reward_teams,omitempty"`

	// Active lists contestants still in the game after this episode's elimination.
	Active []string `json:"active_contestants" yaml:"active_contestants"`
	Tribes []Tribe  `json:"contestant_tribes" yaml:"contestant_tribes"`

	Tribal *TribalOutcome `json:"tribal,omitempty" yaml:"tribal,omitempty"`
	Finale *FinaleOutcome `json:"finale,omitempty" yaml:"finale,omitempty"`
}

// TribalOutcome holds everything that happens in an episode ending in a vote.
type TribalOutcome struct {
	VotedOut    string   `json:"voted_out" yaml:"voted_out"`
	Votes       int      `json:"voted_out_votes" yaml:"voted_out_votes"`
	PocketItems int      `json:"voted_out_pocket_items" yaml:"voted_out_pocket_items"`
	Survived    []string `json:"survived" yaml:"survived"`
	VoteMatched []string `json:"vote_matched" yaml:"vote_matched"`

	StrategicPlayer string `json:"strategic_player,omitempty" yaml:"strategic_player,omitempty"`

	// TeamImmunity and TeamReward map tribe name to placement (1 is first).
	TeamImmunity   map[string]int `json:"team_immunity_results,omitempty" yaml:"team_immunity_results,omitempty"`
	TeamReward     map[string]int `json:"team_reward_results,omitempty" yaml:"team_reward_results,omitempty"`
	ImmunityWinner string         `json:"individual_immunity_winner,omitempty" yaml:"individual_immunity_winner,omitempty"`

	ClueReaders     []string `json:"clue_readers,omitempty" yaml:"clue_readers,omitempty"`
	ClueFinder      string   `json:"clue_finder,omitempty" yaml:"clue_finder,omitempty"`
	IdolFinder      string   `json:"idol_finder,omitempty" yaml:"idol_finder,omitempty"`
	IdolPlayed      []string `json:"idol_played,omitempty" yaml:"idol_played,omitempty"`
	IdolFailed      []string `json:"idol_failed,omitempty" yaml:"idol_failed,omitempty"`
	AdvantagePlayed []string `json:"advantage_played,omitempty" yaml:"advantage_played,omitempty"`
	AdvantageFinder string   `json:"advantage_finder,omitempty" yaml:"advantage_finder,omitempty"`

	VoteTargets        map[string]string `json:"vote_targets,omitempty" yaml:"vote_targets,omitempty"`
	VotesReceived      map[string]int    `json:"votes_received,omitempty" yaml:"votes_received,omitempty"`
	IdolVotesNullified int               `json:"idol_votes_nullified" yaml:"idol_votes_nullified"`
	Confessionals      map[string]int    `json:"confessional_counts,omitempty" yaml:"confessional_counts,omitempty"`

	// Quit is never generated but is scored when present.
	Quit string `json:"quit,omitempty" yaml:"quit,omitempty"`
}

// FinaleOutcome is the last episode: no elimination, a winner from the final three.
type FinaleOutcome struct {
	FinalThree []string `json:"final_three" yaml:"final_three"`
	Winner     string   `json:"winner" yaml:"winner"`
}

// IsFinale reports whether the episode is the finale.
func (e *Episode) IsFinale() bool {
	return e.Finale != nil
}

// VotedOut returns the contestant eliminated this episode, or "" for the finale.
func (e *Episode) VotedOut() string {
	if e.Tribal == nil {
		return ""
	}
	return e.Tribal.VotedOut
}

// IsActive reports whether id is still in the game after this episode.
func (e *Episode) IsActive(id string) bool {
	return slices.Contains(e.Active, id)
}

// Participated reports whether id played in this episode: still active or
// eliminated in it.
func (e *Episode) Participated(id string) bool {
	return e.IsActive(id) || (id != "" && e.VotedOut() == id)
}

// Participants returns the active contestants plus the one voted out.
func (e *Episode) Participants() []string {
	out := append([]string(nil), e.Active...)
	if v := e.VotedOut(); v != "" && !slices.Contains(out, v) {
		out = append(out, v)
	}
	return out
}

// TribeOf returns the tribe the contestant belonged to this episode.
func (e *Episode) TribeOf(id string) (string, bool) {
	for _, t := range e.Tribes {
		if slices.Contains(t.Members, id) {
			return t.Name, true
		}
	}
	return "", false
}

// Scenario is one generated season: the ordered episode log plus the
// structural draws that shaped it.
type Scenario struct {
	Seed      int64     `json:"seed" yaml:"seed"`
	SwapAt    int       `json:"swap_at" yaml:"swap_at"`
	MergeAt   int       `json:"merge_at" yaml:"merge_at"`
	BootOrder []string  `json:"boot_order" yaml:"boot_order"`
	Episodes  []Episode `json:"episodes" yaml:"episodes"`
}

// Finale returns the finale episode, or nil if the scenario has none.
func (s *Scenario) Finale() *Episode {
	for i := range s.Episodes {
		if s.Episodes[i].IsFinale() {
			return &s.Episodes[i]
		}
	}
	return nil
}

// Eliminated returns voted-out contestants in elimination order.
func (s *Scenario) Eliminated() []string {
	var out []string
	for i := range s.Episodes {
		if v := s.Episodes[i].VotedOut(); v != "" {
			out = append(out, v)
		}
	}
	return out
}
