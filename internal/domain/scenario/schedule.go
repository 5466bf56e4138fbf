package scenario

import "github.com/okian/castaway/internal/domain/model"

// Slot is one structural episode of the season before any outcome is drawn.
type Slot struct {
	ID            int
	Phase         model.Phase
	ImmunityType  model.ChallengeType
	RewardType    model.ChallengeType
	ImmunityTeams int
	RewardTeams   int
	Finale        bool
}

// BuildSchedule lays out the season for a cast of n: 3-tribe team episodes until
// swapAt remain, 2-tribe team episodes until mergeAt remain, individual episodes
// down to the finalists, then the finale.
func BuildSchedule(n, swapAt, mergeAt, finalists int) []Slot {
	slots := make([]Slot, 0, n-finalists+1)
	add := func(count int, s Slot) {
		for i := 0; i < count; i++ {
			s.ID = len(slots) + 1
			slots = append(slots, s)
		}
	}
	add(n-swapAt, Slot{
		Phase:         model.PhasePreMerge,
		ImmunityType:  model.ChallengeTeam,
		RewardType:    model.ChallengeTeam,
		ImmunityTeams: 3,
		RewardTeams:   3,
	})
	add(swapAt-mergeAt, Slot{
		Phase:         model.PhaseSwap,
		ImmunityType:  model.ChallengeTeam,
		RewardType:    model.ChallengeTeam,
		ImmunityTeams: 2,
		RewardTeams:   2,
	})
	add(mergeAt-finalists, Slot{
		Phase:        model.PhasePostMerge,
		ImmunityType: model.ChallengeIndividual,
		RewardType:   model.ChallengeIndividual,
	})
	add(1, Slot{
		Phase:        model.PhasePostMerge,
		ImmunityType: model.ChallengeIndividual,
		RewardType:   model.ChallengeIndividual,
		Finale:       true,
	})
	return slots
}

// TribalIndices returns the indices of slots that end in a vote.
func TribalIndices(slots []Slot) []int {
	var out []int
	for i, s := range slots {
		if !s.Finale {
			out = append(out, i)
		}
	}
	return out
}
