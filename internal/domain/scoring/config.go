// Package scoring turns episode outcomes into fantasy points.
//
// Points are computed per contestant per episode by a single pure function;
// roster totals, category and event breakdowns and the captain bonus are all
// derived from it, so price updates and roster scoring can never disagree.
package scoring

import "github.com/okian/castaway/internal/domain/model"

// Defaults for keys that may be omitted from a scoring source.
const (
	DefaultCaptainMultiplier = 2.0
	DefaultAddPlayerPenalty  = -10.0
	defaultPreMergeSurvival  = 1.0
	defaultPostMergeSurvival = 3.0
	defaultVoteMatched       = 1.0
	defaultIdolPlay          = 8.0
)

// RequiredKeys are the dotted keys a scoring source must define. Everything
// else either has a default or is an optional no-op when absent.
var RequiredKeys = []string{
	"team_immunity.first",
	"team_immunity.second_three_team",
	"team_immunity.last_or_second_two_team",
	"team_reward.first",
	"team_reward.second_three_team",
	"individual_immunity",
	"tribal.voted_out_base",
	"tribal.voted_out_per_vote",
	"tribal.voted_out_pocket_multiplier",
	"advantages.clue_read",
	"advantages.advantage_play",
	"advantages.idol_failure",
	"advantages.strategic_player",
	"placement.final_tribal",
	"placement.win_season",
	"other.quit",
}

// CheckRequired reports every required key for which exists returns false.
func CheckRequired(exists func(key string) bool) error {
	var missing []string
	for _, k := range RequiredKeys {
		if !exists(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingKeyError{Keys: missing}
	}
	return nil
}

// Survival holds per-tribal survival points.
type Survival struct {
	// PreMergeTribal wins over PreMerge when both are set.
	PreMergeTribal *float64 `koanf:"pre_merge_tribal" yaml:"pre_merge_tribal,omitempty" json:"pre_merge_tribal,omitempty"`
	PreMerge       *float64 `koanf:"pre_merge" yaml:"pre_merge,omitempty" json:"pre_merge,omitempty"`
	PostMerge      float64  `koanf:"post_merge" yaml:"post_merge" json:"post_merge"`
}

// Points returns the survival award for phase.
func (s Survival) Points(phase model.Phase) float64 {
	if !phase.Team() {
		return s.PostMerge
	}
	switch {
	case s.PreMergeTribal != nil:
		return *s.PreMergeTribal
	case s.PreMerge != nil:
		return *s.PreMerge
	default:
		return defaultPreMergeSurvival
	}
}

// TeamImmunity is the team immunity placement table.
type TeamImmunity struct {
	First           float64 `koanf:"first" yaml:"first" json:"first"`
	SecondThreeTeam float64 `koanf:"second_three_team" yaml:"second_three_team" json:"second_three_team"`
	SecondTwoTeam   float64 `koanf:"second_two_team" yaml:"second_two_team" json:"second_two_team"`
	Last            float64 `koanf:"last_or_second_two_team" yaml:"last_or_second_two_team" json:"last_or_second_two_team"`
}

// TeamReward is the team reward placement table. Last place scores nothing.
type TeamReward struct {
	First           float64 `koanf:"first" yaml:"first" json:"first"`
	SecondThreeTeam float64 `koanf:"second_three_team" yaml:"second_three_team" json:"second_three_team"`
	SecondTwoTeam   float64 `koanf:"second_two_team" yaml:"second_two_team" json:"second_two_team"`
}

// Tribal holds vote and elimination values.
type Tribal struct {
	VoteMatched float64 `koanf:"vote_matched" yaml:"vote_matched" json:"vote_matched"`
	// CorrectTargetVote and ZeroVotesReceived are optional bonuses.
	CorrectTargetVote *float64 `koanf:"correct_target_vote" yaml:"correct_target_vote,omitempty" json:"correct_target_vote,omitempty"`
	ZeroVotesReceived *float64 `koanf:"zero_votes_received" yaml:"zero_votes_received,omitempty" json:"zero_votes_received,omitempty"`

	VotedOutBase             float64 `koanf:"voted_out_base" yaml:"voted_out_base" json:"voted_out_base"`
	VotedOutPerVote          float64 `koanf:"voted_out_per_vote" yaml:"voted_out_per_vote" json:"voted_out_per_vote"`
	VotedOutPocketMultiplier float64 `koanf:"voted_out_pocket_multiplier" yaml:"voted_out_pocket_multiplier" json:"voted_out_pocket_multiplier"`
}

// Confessionals holds the optional confessional-count tiers.
type Confessionals struct {
	Range4To6 float64 `koanf:"range_4_6" yaml:"range_4_6" json:"range_4_6"`
	Range7Up  float64 `koanf:"range_7_plus" yaml:"range_7_plus" json:"range_7_plus"`
}

// Advantages holds clue, idol and advantage values.
type Advantages struct {
	ClueRead      float64 `koanf:"clue_read" yaml:"clue_read" json:"clue_read"`
	AdvantagePlay float64 `koanf:"advantage_play" yaml:"advantage_play" json:"advantage_play"`
	IdolPlay      float64 `koanf:"idol_play" yaml:"idol_play" json:"idol_play"`
	// IdolPlayPerVote, when set, replaces IdolPlay with a per-nullified-vote award.
	IdolPlayPerVote *float64 `koanf:"idol_play_per_vote" yaml:"idol_play_per_vote,omitempty" json:"idol_play_per_vote,omitempty"`
	IdolFailure     float64  `koanf:"idol_failure" yaml:"idol_failure" json:"idol_failure"`
	StrategicPlayer float64  `koanf:"strategic_player" yaml:"strategic_player" json:"strategic_player"`
}

// Placement holds finale values.
type Placement struct {
	FinalTribal float64 `koanf:"final_tribal" yaml:"final_tribal" json:"final_tribal"`
	WinSeason   float64 `koanf:"win_season" yaml:"win_season" json:"win_season"`
}

// Other holds rarely triggered values.
type Other struct {
	Quit float64 `koanf:"quit" yaml:"quit" json:"quit"`
	// AddPlayerPenalty is charged each time a roster adds a replacement.
	AddPlayerPenalty float64 `koanf:"add_player_penalty" yaml:"add_player_penalty" json:"add_player_penalty"`
}

// Config is the typed scoring table.
type Config struct {
	Survival           Survival       `koanf:"survival" yaml:"survival" json:"survival"`
	TeamImmunity       TeamImmunity   `koanf:"team_immunity" yaml:"team_immunity" json:"team_immunity"`
	TeamReward         TeamReward     `koanf:"team_reward" yaml:"team_reward" json:"team_reward"`
	IndividualImmunity float64        `koanf:"individual_immunity" yaml:"individual_immunity" json:"individual_immunity"`
	Tribal             Tribal         `koanf:"tribal" yaml:"tribal" json:"tribal"`
	Confessionals      *Confessionals `koanf:"confessionals" yaml:"confessionals,omitempty" json:"confessionals,omitempty"`
	Advantages         Advantages     `koanf:"advantages" yaml:"advantages" json:"advantages"`
	Placement          Placement      `koanf:"placement" yaml:"placement" json:"placement"`
	Other              Other          `koanf:"other" yaml:"other" json:"other"`

	CaptainMultiplier float64 `koanf:"captain_multiplier" yaml:"captain_multiplier" json:"captain_multiplier"`
}

// Base returns a Config holding only the defaults for optional keys. Loaders
// unmarshal a source over it after checking RequiredKeys.
func Base() Config {
	return Config{
		Survival:          Survival{PostMerge: defaultPostMergeSurvival},
		Tribal:            Tribal{VoteMatched: defaultVoteMatched},
		Advantages:        Advantages{IdolPlay: defaultIdolPlay},
		Other:             Other{AddPlayerPenalty: DefaultAddPlayerPenalty},
		CaptainMultiplier: DefaultCaptainMultiplier,
	}
}

// Default returns a complete scoring table with the standard league values.
func Default() Config {
	c := Base()
	pre := 2.0
	c.Survival.PreMergeTribal = &pre
	c.Survival.PostMerge = 3
	c.TeamImmunity = TeamImmunity{First: 3, SecondThreeTeam: 1, SecondTwoTeam: 0, Last: -1}
	c.TeamReward = TeamReward{First: 2, SecondThreeTeam: 1, SecondTwoTeam: 0}
	c.IndividualImmunity = 5
	c.Tribal.VoteMatched = 2
	c.Tribal.VotedOutBase = -4
	c.Tribal.VotedOutPerVote = -1
	c.Tribal.VotedOutPocketMultiplier = 2
	c.Advantages.ClueRead = 1
	c.Advantages.AdvantagePlay = 4
	c.Advantages.IdolPlay = 7
	c.Advantages.IdolFailure = -2
	c.Advantages.StrategicPlayer = 4
	c.Placement = Placement{FinalTribal: 5, WinSeason: 9}
	c.Other.Quit = -10
	return c
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 {
	return &v
}
