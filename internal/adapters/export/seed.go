package export

import (
	"fmt"
	"path/filepath"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/scoring"
)

// Seed bundle defaults.
const (
	DefaultSeedEpisodes = 6
	DefaultSeedPrice    = 150000

	photoURLFormat = "https://api.dicebear.com/7.x/avataaars/png?seed=%s&size=80"
)

// Seed bundle file names.
const (
	ContestantsFile = "contestants.json"
	EpisodesFile    = "episode_outcomes.json"
	PricesFile      = "prices.json"
	ScoringFile     = "scoring_config.json"
	ManifestFile    = "manifest.json"
)

// SeedContestant is a contestant as the game app lists it.
type SeedContestant struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StartingTribe string `json:"starting_tribe"`
	PreMergePrice int    `json:"pre_merge_price"`
	PhotoURL      string `json:"photo_url"`
}

// Manifest identifies the run that produced a bundle.
type Manifest struct {
	RunID        string `json:"run_id"`
	ScenarioSeed int64  `json:"scenario_seed"`
	Contestants  int    `json:"contestants"`
	Episodes     int    `json:"episodes"`
}

// SeedBundle is the prototype data set: priced contestants, the opening
// pre-merge episodes of one scenario and the scoring table.
type SeedBundle struct {
	Manifest    Manifest
	Contestants []SeedContestant
	Episodes    []model.Episode
	Prices      model.PriceMap
	Scoring     scoring.Config
}

// NewSeedBundle assembles a bundle from the first episodes pre-merge (or
// swap) episodes of sc. When sc has none, its first episodes are used.
// Contestants without a price get DefaultSeedPrice.
func NewSeedBundle(runID string, cast model.Cast, prices model.PriceMap, sc *model.Scenario, cfg scoring.Config, episodes int) *SeedBundle {
	if episodes <= 0 {
		episodes = DefaultSeedEpisodes
	}
	b := &SeedBundle{Prices: prices, Scoring: cfg}
	for _, c := range cast {
		p, ok := prices[c.ID]
		if !ok {
			p = DefaultSeedPrice
		}
		b.Contestants = append(b.Contestants, SeedContestant{
			ID:            c.ID,
			Name:          c.Name,
			StartingTribe: c.StartingTribe,
			PreMergePrice: p,
			PhotoURL:      fmt.Sprintf(photoURLFormat, c.ID),
		})
	}
	for _, ep := range sc.Episodes {
		if len(b.Episodes) == episodes {
			break
		}
		if ep.Phase.Team() {
			b.Episodes = append(b.Episodes, ep)
		}
	}
	if len(b.Episodes) == 0 {
		b.Episodes = sc.Episodes[:min(episodes, len(sc.Episodes))]
	}
	b.Manifest = Manifest{
		RunID:        runID,
		ScenarioSeed: sc.Seed,
		Contestants:  len(b.Contestants),
		Episodes:     len(b.Episodes),
	}
	return b
}

// Write stores the bundle as one JSON file per part under dir.
func (b *SeedBundle) Write(dir string) error {
	parts := []struct {
		name string
		v    any
	}{
		{ContestantsFile, b.Contestants},
		{EpisodesFile, b.Episodes},
		{PricesFile, b.Prices},
		{ScoringFile, b.Scoring},
		{ManifestFile, b.Manifest},
	}
	for _, p := range parts {
		if err := WriteJSON(filepath.Join(dir, p.name), p.v); err != nil {
			return err
		}
	}
	return nil
}
