// Package model holds the value types shared by the simulation packages:
// contestants, episode outcomes, scenarios, rosters and price maps.
package model

// Contestant is one player of the season. Trait scalars are in [0, 1] and bias
// the random outcome selection of the scenario generator.
type Contestant struct {
	ID               string  `json:"id" yaml:"id" koanf:"id"`
	Name             string  `json:"name" yaml:"name" koanf:"name"`
	StartingTribe    string  `json:"starting_tribe" yaml:"starting_tribe" koanf:"starting_tribe"`
	ChallengeAbility float64 `json:"challenge_ability" yaml:"challenge_ability" koanf:"challenge_ability"`
	IdolLikelihood   float64 `json:"idol_likelihood" yaml:"idol_likelihood" koanf:"idol_likelihood"`
	SurvivalBias     float64 `json:"survival_bias" yaml:"survival_bias" koanf:"survival_bias"`
}

// Cast is the ordered contestant list of a season.
type Cast []Contestant

// IDs returns contestant ids in cast order.
func (c Cast) IDs() []string {
	ids := make([]string, len(c))
	for i, x := range c {
		ids[i] = x.ID
	}
	return ids
}

// ByID indexes the cast by contestant id.
func (c Cast) ByID() map[string]Contestant {
	m := make(map[string]Contestant, len(c))
	for _, x := range c {
		m[x.ID] = x
	}
	return m
}

// TribeMap maps contestant id to starting tribe.
func (c Cast) TribeMap() map[string]string {
	m := make(map[string]string, len(c))
	for _, x := range c {
		m[x.ID] = x.StartingTribe
	}
	return m
}

// StartingTribes groups ids by starting tribe, tribes ordered by first appearance.
func (c Cast) StartingTribes() []Tribe {
	var tribes []Tribe
	index := make(map[string]int)
	for _, x := range c {
		i, ok := index[x.StartingTribe]
		if !ok {
			i = len(tribes)
			index[x.StartingTribe] = i
			tribes = append(tribes, Tribe{Name: x.StartingTribe})
		}
		tribes[i].Members = append(tribes[i].Members, x.ID)
	}
	return tribes
}

// Subset returns the contestants whose ids are in keep, preserving cast order.
func (c Cast) Subset(keep []string) Cast {
	set := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		set[id] = struct{}{}
	}
	out := make(Cast, 0, len(keep))
	for _, x := range c {
		if _, ok := set[x.ID]; ok {
			out = append(out, x)
		}
	}
	return out
}
