package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/pricing"
	"github.com/okian/castaway/internal/domain/scenario"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/internal/fixtures"
)

// Simulation config file names inside the config directory.
const (
	ContestantsFile   = "contestants.yaml"
	ScoringFile       = "scoring.yaml"
	PricingFile       = "pricing.yaml"
	DynamicFile       = "dynamic_pricing.yaml"
	ProbabilitiesFile = "probabilities.yaml"
	TemplateFile      = "season_template.yaml"
)

// Simulation is the typed simulation model.
type Simulation struct {
	Cast          model.Cast
	Scoring       scoring.Config
	Pricing       pricing.Config
	Dynamic       pricing.Dynamic
	Probabilities scenario.Probabilities
	Template      scenario.Template

	// SyntheticCast is set when no contestants file was found and the cast
	// was generated from the seed.
	SyntheticCast bool
}

var unmarshalConf = koanf.UnmarshalConf{Tag: "koanf"}

// LoadSimulation reads the simulation model from dir. scoring.yaml is
// required and must define every scoring.RequiredKeys entry; the other files
// fall back to defaults, and a missing contestants file yields a synthetic
// cast drawn from seed.
func LoadSimulation(_ context.Context, dir string, seed int64) (*Simulation, error) {
	sim := &Simulation{
		Pricing:       pricing.DefaultConfig(),
		Probabilities: scenario.DefaultProbabilities(),
		Template:      scenario.DefaultTemplate(),
	}

	var err error
	if sim.Scoring, err = loadScoring(filepath.Join(dir, ScoringFile)); err != nil {
		return nil, err
	}
	if sim.Cast, sim.SyntheticCast, err = loadCast(filepath.Join(dir, ContestantsFile), seed); err != nil {
		return nil, err
	}
	if err := loadOptional(filepath.Join(dir, PricingFile), &sim.Pricing); err != nil {
		return nil, err
	}
	if err := loadOptional(filepath.Join(dir, ProbabilitiesFile), &sim.Probabilities); err != nil {
		return nil, err
	}
	if err := loadOptional(filepath.Join(dir, TemplateFile), &sim.Template); err != nil {
		return nil, err
	}
	if sim.Dynamic, err = loadDynamic(dir); err != nil {
		return nil, err
	}
	if err := sim.Validate(); err != nil {
		return nil, err
	}
	return sim, nil
}

// Validate checks cross-field constraints of the pricing model and template.
func (s *Simulation) Validate() error {
	p := s.Pricing
	switch {
	case p.Budget <= 0:
		return fmt.Errorf("%w: pricing budget must be positive", ErrInvalidConfig)
	case p.RosterMin < 1 || p.RosterMin > p.RosterMax:
		return fmt.Errorf("%w: roster_min %d, roster_max %d", ErrInvalidConfig, p.RosterMin, p.RosterMax)
	case p.PriceMin <= 0 || p.PriceMin > p.PriceMax:
		return fmt.Errorf("%w: price_min %d, price_max %d", ErrInvalidConfig, p.PriceMin, p.PriceMax)
	case p.PriceIncrement <= 0:
		return fmt.Errorf("%w: price_increment must be positive", ErrInvalidConfig)
	}
	if lo, hi := p.GridBounds(); lo > hi {
		return fmt.Errorf("%w: no multiple of %d between price_min %d and price_max %d",
			ErrInvalidConfig, p.PriceIncrement, p.PriceMin, p.PriceMax)
	}
	d := s.Dynamic
	if d.PriceMin > d.PriceMax || d.PriceIncrement <= 0 || d.Reactivity < 0 {
		return fmt.Errorf("%w: dynamic pricing bounds or reactivity", ErrInvalidConfig)
	}
	if lo, hi := d.Bounds(0); lo > hi {
		return fmt.Errorf("%w: no multiple of %d between dynamic price_min %d and price_max %d",
			ErrInvalidConfig, d.PriceIncrement, d.PriceMin, d.PriceMax)
	}
	if err := s.Template.Validate(len(s.Cast)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func readYAML(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return k, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
}

func loadScoring(path string) (scoring.Config, error) {
	k, err := readYAML(path)
	if err != nil {
		return scoring.Config{}, err
	}
	if err := scoring.CheckRequired(k.Exists); err != nil {
		return scoring.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg := scoring.Base()
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return scoring.Config{}, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return cfg, nil
}

func loadCast(path string, seed int64) (model.Cast, bool, error) {
	ok, err := exists(path)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return fixtures.Cast(seed), true, nil
	}
	k, err := readYAML(path)
	if err != nil {
		return nil, false, err
	}
	var cast model.Cast
	if err := k.UnmarshalWithConf("contestants", &cast, unmarshalConf); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	if len(cast) == 0 {
		return nil, false, fmt.Errorf("%w: %s", ErrEmptyCast, path)
	}
	seen := make(map[string]bool, len(cast))
	for i, c := range cast {
		if c.ID == "" || c.StartingTribe == "" {
			return nil, false, fmt.Errorf("%w: contestant %d needs id and starting_tribe", ErrInvalidConfig, i)
		}
		if seen[c.ID] {
			return nil, false, fmt.Errorf("%w: duplicate contestant id %q", ErrInvalidConfig, c.ID)
		}
		seen[c.ID] = true
	}
	return cast, false, nil
}

// loadOptional unmarshals path over out when the file exists.
func loadOptional(path string, out any) error {
	ok, err := exists(path)
	if err != nil || !ok {
		return err
	}
	k, err := readYAML(path)
	if err != nil {
		return err
	}
	if err := k.UnmarshalWithConf("", out, unmarshalConf); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// loadDynamic layers dynamic_pricing.yaml over pricing.yaml so the dynamic
// model inherits the initial price bounds unless it overrides them.
func loadDynamic(dir string) (pricing.Dynamic, error) {
	d := pricing.DefaultDynamic()
	k := koanf.New(".")
	for _, name := range []string{PricingFile, DynamicFile} {
		path := filepath.Join(dir, name)
		ok, err := exists(path)
		if err != nil {
			return d, err
		}
		if !ok {
			continue
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return d, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}
	if err := k.UnmarshalWithConf("", &d, unmarshalConf); err != nil {
		return d, fmt.Errorf("%w: dynamic pricing: %w", ErrLoadConfig, err)
	}
	return d, nil
}
