// Package fixtures generates deterministic synthetic casts for simulations
// that run without a contestants file, and for tests.
package fixtures

import (
	"fmt"
	"math"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/pkg/random"
)

// Cast shape constants.
const (
	DefaultTribes     = 3
	DefaultTribeSize  = 8
	archetypeCount    = 6
	traitFloor        = 0.05
	traitCeiling      = 0.95
	traitSpreadNarrow = 0.15
	traitSpreadWide   = 0.35
)

// Archetype cases.
const (
	caseChallengeBeast = 0
	caseIdolHunter     = 1
	caseUnderTheRadar  = 2
	caseSocialThreat   = 3
	caseEarlyBoot      = 4
	caseAllRounder     = 5
)

var tribeNames = []string{"Tribe A", "Tribe B", "Tribe C", "Tribe D", "Tribe E", "Tribe F"}

// Option applies a configuration option to cast generation.
type Option func(*castConfig)

type castConfig struct {
	tribes    int
	tribeSize int
}

// WithTribes sets the number of starting tribes.
func WithTribes(n int) Option {
	return func(c *castConfig) {
		if n > 0 && n <= len(tribeNames) {
			c.tribes = n
		}
	}
}

// WithTribeSize sets the players per starting tribe.
func WithTribeSize(n int) Option {
	return func(c *castConfig) {
		if n > 0 {
			c.tribeSize = n
		}
	}
}

// Cast returns a cast of tribes*tribeSize contestants with ids c01, c02, ...
// in tribe order. The same seed always yields the same cast.
func Cast(seed int64, opts ...Option) model.Cast {
	cfg := castConfig{tribes: DefaultTribes, tribeSize: DefaultTribeSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	rng := random.New(seed)
	cast := make(model.Cast, 0, cfg.tribes*cfg.tribeSize)
	for t := 0; t < cfg.tribes; t++ {
		for i := 0; i < cfg.tribeSize; i++ {
			n := len(cast) + 1
			c := model.Contestant{
				ID:            fmt.Sprintf("c%02d", n),
				Name:          fmt.Sprintf("Castaway %d", n),
				StartingTribe: tribeNames[t],
			}
			c.ChallengeAbility, c.IdolLikelihood, c.SurvivalBias = traits(rng)
			cast = append(cast, c)
		}
	}
	return cast
}

// traits draws (challenge, idol, survival) for one archetype.
func traits(rng *random.Stream) (float64, float64, float64) {
	switch rng.Intn(archetypeCount) {
	case caseChallengeBeast:
		return around(rng, 0.85, traitSpreadNarrow), around(rng, 0.3, traitSpreadWide), around(rng, 0.45, traitSpreadWide)
	case caseIdolHunter:
		return around(rng, 0.45, traitSpreadWide), around(rng, 0.85, traitSpreadNarrow), around(rng, 0.55, traitSpreadWide)
	case caseUnderTheRadar:
		return around(rng, 0.35, traitSpreadWide), around(rng, 0.3, traitSpreadWide), around(rng, 0.85, traitSpreadNarrow)
	case caseSocialThreat:
		return around(rng, 0.5, traitSpreadWide), around(rng, 0.5, traitSpreadWide), around(rng, 0.7, traitSpreadNarrow)
	case caseEarlyBoot:
		return around(rng, 0.3, traitSpreadWide), around(rng, 0.2, traitSpreadNarrow), around(rng, 0.2, traitSpreadNarrow)
	default:
		return around(rng, 0.55, traitSpreadWide), around(rng, 0.45, traitSpreadWide), around(rng, 0.5, traitSpreadWide)
	}
}

// around returns center +/- spread, clamped to the trait range and rounded to 2 places.
func around(rng *random.Stream, center, spread float64) float64 {
	v := center + (rng.Float64()*2-1)*spread
	v = math.Max(traitFloor, math.Min(traitCeiling, v))
	return math.Round(v*100) / 100
}
