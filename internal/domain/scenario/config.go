package scenario

import "fmt"

// Template is the structural shape of a season. Swap and merge points are drawn
// uniformly from their candidate lists once per scenario.
type Template struct {
	// SwapAt lists player counts at which the 3 tribes swap into 2.
	SwapAt []int `koanf:"swap_at" yaml:"swap_at"`
	// MergeAt lists player counts at which the tribes merge into one.
	MergeAt []int `koanf:"merge_at" yaml:"merge_at"`
	// Finalists is the number of players left at the finale.
	Finalists int `koanf:"finalists" yaml:"finalists"`
}

// DefaultTemplate returns the 24-player shape: swap at 16 or 17, merge at 12 or 11, final 3.
func DefaultTemplate() Template {
	return Template{
		SwapAt:    []int{16, 17},
		MergeAt:   []int{12, 11},
		Finalists: 3,
	}
}

// Validate checks the template against a cast of size n.
func (t Template) Validate(n int) error {
	if len(t.SwapAt) == 0 || len(t.MergeAt) == 0 {
		return fmt.Errorf("%w: swap_at and merge_at need at least one candidate", ErrInvalidTemplate)
	}
	if t.Finalists < 1 {
		return fmt.Errorf("%w: finalists must be positive", ErrInvalidTemplate)
	}
	for _, s := range t.SwapAt {
		for _, m := range t.MergeAt {
			if !(n > s && s > m && m > t.Finalists) {
				return fmt.Errorf("%w: need cast %d > swap %d > merge %d > finalists %d",
					ErrInvalidTemplate, n, s, m, t.Finalists)
			}
		}
	}
	return nil
}

// IdolRates configures hidden immunity idols.
type IdolRates struct {
	FindsMin        int     `koanf:"finds_per_season_min"`
	FindsMax        int     `koanf:"finds_per_season_max"`
	PlaySuccessRate float64 `koanf:"play_success_rate"`
}

// ClueRates configures clue-read events.
type ClueRates struct {
	ReadsMin   int `koanf:"reads_per_season_min"`
	ReadsMax   int `koanf:"reads_per_season_max"`
	ReadersMin int `koanf:"readers_per_clue_min"`
	ReadersMax int `koanf:"readers_per_clue_max"`
}

// AdvantageRates configures non-idol advantage plays.
type AdvantageRates struct {
	PlaysMin int `koanf:"successful_plays_per_season_min"`
	PlaysMax int `koanf:"successful_plays_per_season_max"`
}

// PocketRates configures unplayed items held at elimination.
type PocketRates struct {
	HasItem  float64 `koanf:"probability_has_item"`
	TwoItems float64 `koanf:"probability_two_items"`
}

// VoteRanges configures the votes cast against the eliminated player.
type VoteRanges struct {
	PreMergeMin  int `koanf:"pre_merge_min"`
	PreMergeMax  int `koanf:"pre_merge_max"`
	PostMergeMin int `koanf:"post_merge_min"`
	PostMergeMax int `koanf:"post_merge_max"`
}

// MatchedRange is the fraction of remaining voters on the right side of the vote.
type MatchedRange struct {
	PctMin float64 `koanf:"pct_of_voters_min"`
	PctMax float64 `koanf:"pct_of_voters_max"`
}

// ConfessionalRates shapes the per-episode confessional count distribution.
type ConfessionalRates struct {
	HighChance float64 `koanf:"high_chance"`
	MidChance  float64 `koanf:"mid_chance"`
}

// Probabilities is the event-rate model consumed by the generator.
type Probabilities struct {
	Idols         IdolRates         `koanf:"idols"`
	Clues         ClueRates         `koanf:"clues"`
	Advantages    AdvantageRates    `koanf:"advantages"`
	Pocket        PocketRates       `koanf:"voted_out_pocket"`
	Votes         VoteRanges        `koanf:"vote_counts"`
	Matched       MatchedRange      `koanf:"vote_matched"`
	Confessionals ConfessionalRates `koanf:"confessionals"`
}

// DefaultProbabilities returns the research-based default rates.
func DefaultProbabilities() Probabilities {
	return Probabilities{
		Idols:         IdolRates{FindsMin: 3, FindsMax: 6, PlaySuccessRate: 0.55},
		Clues:         ClueRates{ReadsMin: 1, ReadsMax: 4, ReadersMin: 1, ReadersMax: 2},
		Advantages:    AdvantageRates{PlaysMin: 0, PlaysMax: 2},
		Pocket:        PocketRates{HasItem: 0.17, TwoItems: 0.03},
		Votes:         VoteRanges{PreMergeMin: 4, PreMergeMax: 7, PostMergeMin: 5, PostMergeMax: 10},
		Matched:       MatchedRange{PctMin: 0.65, PctMax: 0.95},
		Confessionals: ConfessionalRates{HighChance: 0.15, MidChance: 0.25},
	}
}
