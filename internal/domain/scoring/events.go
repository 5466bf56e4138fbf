package scoring

// Category groups event types for breakdown reporting.
type Category string

// Breakdown categories.
const (
	CategorySurvival   Category = "survival"
	CategoryChallenges Category = "challenges"
	CategoryTribal     Category = "tribal"
	CategoryAdvantages Category = "advantages"
	CategoryPlacement  Category = "placement"
	CategoryPenalties  Category = "penalties"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategorySurvival,
	CategoryChallenges,
	CategoryTribal,
	CategoryAdvantages,
	CategoryPlacement,
	CategoryPenalties,
}

// EventType identifies one scoring event.
type EventType string

// Scoring events.
const (
	EventSurvivalPreMerge        EventType = "survival_pre_merge"
	EventSurvivalPostMerge       EventType = "survival_post_merge"
	EventSurvivalSwap            EventType = "survival_swap"
	EventTeamImmunityFirst       EventType = "team_immunity_first"
	EventTeamImmunitySecondThree EventType = "team_immunity_second_three"
	EventTeamImmunitySecondTwo   EventType = "team_immunity_second_two"
	EventTeamImmunityLast        EventType = "team_immunity_last"
	EventTeamRewardFirst         EventType = "team_reward_first"
	EventTeamRewardSecondThree   EventType = "team_reward_second_three"
	EventTeamRewardSecondTwo     EventType = "team_reward_second_two"
	EventIndividualImmunity      EventType = "individual_immunity"
	EventVoteMatched             EventType = "vote_matched"
	EventCorrectTargetVote       EventType = "correct_target_vote"
	EventZeroVotesReceived       EventType = "zero_votes_received"
	EventVotedOut                EventType = "voted_out"
	EventConfessionals           EventType = "confessionals"
	EventEpisodeRankBonus        EventType = "episode_rank_bonus"
	EventClueRead                EventType = "clue_read"
	EventAdvantagePlay           EventType = "advantage_play"
	EventIdolPlay                EventType = "idol_play"
	EventIdolFailure             EventType = "idol_failure"
	EventStrategicPlayer         EventType = "strategic_player"
	EventFinalTribal             EventType = "final_tribal"
	EventWinSeason               EventType = "win_season"
	EventQuit                    EventType = "quit"
)

type eventInfo struct {
	category Category
	label    string
}

// EventTypes lists every event in report order. EventEpisodeRankBonus is
// reserved and never produced by the calculator.
var EventTypes = []EventType{
	EventSurvivalPreMerge,
	EventSurvivalPostMerge,
	EventSurvivalSwap,
	EventTeamImmunityFirst,
	EventTeamImmunitySecondThree,
	EventTeamImmunitySecondTwo,
	EventTeamImmunityLast,
	EventTeamRewardFirst,
	EventTeamRewardSecondThree,
	EventTeamRewardSecondTwo,
	EventIndividualImmunity,
	EventVoteMatched,
	EventCorrectTargetVote,
	EventZeroVotesReceived,
	EventVotedOut,
	EventConfessionals,
	EventEpisodeRankBonus,
	EventClueRead,
	EventAdvantagePlay,
	EventIdolPlay,
	EventIdolFailure,
	EventStrategicPlayer,
	EventFinalTribal,
	EventWinSeason,
	EventQuit,
}

var events = map[EventType]eventInfo{
	EventSurvivalPreMerge:        {CategorySurvival, "Survival (pre-merge tribal)"},
	EventSurvivalPostMerge:       {CategorySurvival, "Survival (post-merge)"},
	EventSurvivalSwap:            {CategorySurvival, "Survival (swap)"},
	EventTeamImmunityFirst:       {CategoryChallenges, "Team immunity 1st"},
	EventTeamImmunitySecondThree: {CategoryChallenges, "Team immunity 2nd (3 tribes)"},
	EventTeamImmunitySecondTwo:   {CategoryChallenges, "Team immunity 2nd (2 tribes)"},
	EventTeamImmunityLast:        {CategoryChallenges, "Team immunity last"},
	EventTeamRewardFirst:         {CategoryChallenges, "Team reward 1st"},
	EventTeamRewardSecondThree:   {CategoryChallenges, "Team reward 2nd (3 tribes)"},
	EventTeamRewardSecondTwo:     {CategoryChallenges, "Team reward 2nd (2 tribes)"},
	EventIndividualImmunity:      {CategoryChallenges, "Individual immunity"},
	EventVoteMatched:             {CategoryTribal, "Vote matched"},
	EventCorrectTargetVote:       {CategoryTribal, "Correct target vote"},
	EventZeroVotesReceived:       {CategoryTribal, "Zero votes received"},
	EventVotedOut:                {CategoryPenalties, "Voted out"},
	EventConfessionals:           {CategoryAdvantages, "Confessionals"},
	EventEpisodeRankBonus:        {CategoryAdvantages, "Episode rank bonus"},
	EventClueRead:                {CategoryAdvantages, "Clue read"},
	EventAdvantagePlay:           {CategoryAdvantages, "Advantage play"},
	EventIdolPlay:                {CategoryAdvantages, "Idol play"},
	EventIdolFailure:             {CategoryPenalties, "Idol failure"},
	EventStrategicPlayer:         {CategoryAdvantages, "Strategic player"},
	EventFinalTribal:             {CategoryPlacement, "Final tribal"},
	EventWinSeason:               {CategoryPlacement, "Win season"},
	EventQuit:                    {CategoryPenalties, "Quit"},
}

// Category returns the breakdown category the event counts toward.
func (e EventType) Category() Category {
	return events[e].category
}

// Label returns a human-readable name.
func (e EventType) Label() string {
	if info, ok := events[e]; ok {
		return info.label
	}
	return string(e)
}
