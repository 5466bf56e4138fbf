// Package pricing estimates expected points, maps them to contestant prices,
// reprices after each episode and measures replacement viability.
package pricing

import (
	"math"

	"github.com/okian/castaway/internal/domain/roster"
)

// Config is the initial pricing model.
type Config struct {
	Budget    int `koanf:"budget" yaml:"budget" json:"budget"`
	RosterMin int `koanf:"roster_min" yaml:"roster_min" json:"roster_min"`
	RosterMax int `koanf:"roster_max" yaml:"roster_max" json:"roster_max"`

	PriceMin       int     `koanf:"price_min" yaml:"price_min" json:"price_min"`
	PriceMax       int     `koanf:"price_max" yaml:"price_max" json:"price_max"`
	PriceIncrement int     `koanf:"price_increment" yaml:"price_increment" json:"price_increment"`
	PriceCurve     float64 `koanf:"price_curve" yaml:"price_curve" json:"price_curve"`

	// TargetTop7Sum is what the top-N by expected points should cost when
	// rosters hold 7; TargetTop5Sum is used otherwise and falls back to 95%
	// of TargetTop7Sum. Zero disables the rescale.
	TargetTop7Sum float64  `koanf:"target_top7_sum" yaml:"target_top7_sum" json:"target_top7_sum"`
	TargetTop5Sum *float64 `koanf:"target_top5_sum" yaml:"target_top5_sum,omitempty" json:"target_top5_sum,omitempty"`

	// TargetValidPct in (0,1) enables Calibrate.
	TargetValidPct float64 `koanf:"target_valid_pct" yaml:"target_valid_pct" json:"target_valid_pct"`
}

// DefaultConfig returns the standard pricing model.
func DefaultConfig() Config {
	return Config{
		Budget:         1_000_000,
		RosterMin:      7,
		RosterMax:      7,
		PriceMin:       80_000,
		PriceMax:       260_000,
		PriceIncrement: 2_500,
		PriceCurve:     1.8,
		TargetTop7Sum:  1_050_000,
		TargetValidPct: 0.5,
	}
}

// Rules returns the roster constraints implied by the config.
func (c Config) Rules() roster.Rules {
	return roster.Rules{Budget: c.Budget, Min: c.RosterMin, Max: c.RosterMax}
}

// GridBounds returns the price bounds snapped inward onto the increment grid.
// lo > hi means the configured range holds no grid price.
func (c Config) GridBounds() (int, int) {
	return gridBounds(float64(c.PriceMin), float64(c.PriceMax), c.PriceIncrement)
}

func (c Config) topTarget() float64 {
	if c.RosterMax == 7 {
		return c.TargetTop7Sum
	}
	if c.TargetTop5Sum != nil {
		return *c.TargetTop5Sum
	}
	return c.TargetTop7Sum * 0.95
}

// Dynamic is the episode-by-episode repricing and replacement model. Its
// bounds default to the initial pricing bounds.
type Dynamic struct {
	Reactivity float64 `koanf:"price_reactivity" yaml:"price_reactivity" json:"price_reactivity"`

	PriceMin       int `koanf:"price_min" yaml:"price_min" json:"price_min"`
	PriceMax       int `koanf:"price_max" yaml:"price_max" json:"price_max"`
	PriceIncrement int `koanf:"price_increment" yaml:"price_increment" json:"price_increment"`

	// Compression pulls active prices toward their median, growing from
	// CompressionBase early to CompressionLate as the cast shrinks.
	Compression     float64  `koanf:"diversity_compression" yaml:"diversity_compression" json:"diversity_compression"`
	CompressionBase *float64 `koanf:"diversity_compression_base" yaml:"diversity_compression_base,omitempty" json:"diversity_compression_base,omitempty"`
	CompressionLate float64  `koanf:"diversity_compression_late" yaml:"diversity_compression_late" json:"diversity_compression_late"`

	// MergePriceMultiplier above 1 inflates prices geometrically over
	// MergeEpisodes tribals and widens the bounds with it.
	MergeEpisodes        int     `koanf:"merge_episodes" yaml:"merge_episodes" json:"merge_episodes"`
	MergePriceMultiplier float64 `koanf:"merge_price_multiplier" yaml:"merge_price_multiplier" json:"merge_price_multiplier"`

	ToleranceBase         float64 `koanf:"replacement_value_tolerance_base" yaml:"replacement_value_tolerance_base" json:"replacement_value_tolerance_base"`
	ToleranceMax          float64 `koanf:"replacement_value_tolerance_max" yaml:"replacement_value_tolerance_max" json:"replacement_value_tolerance_max"`
	LateSeasonThreshold   int     `koanf:"late_season_threshold" yaml:"late_season_threshold" json:"late_season_threshold"`
	HighlyCompressedRatio float64 `koanf:"highly_compressed_ratio" yaml:"highly_compressed_ratio" json:"highly_compressed_ratio"`

	// MergeBudget is the budget for the merge-validity check; zero means the
	// pricing budget.
	MergeBudget         int     `koanf:"merge_budget" yaml:"merge_budget" json:"merge_budget"`
	TargetMergeValidPct float64 `koanf:"target_merge_valid_pct" yaml:"target_merge_valid_pct" json:"target_merge_valid_pct"`
}

// DefaultDynamic returns demand-only repricing: no compression, no inflation.
func DefaultDynamic() Dynamic {
	return Dynamic{
		Reactivity:            0.05,
		PriceMin:              80_000,
		PriceMax:              260_000,
		PriceIncrement:        2_500,
		MergeEpisodes:         12,
		MergePriceMultiplier:  1.0,
		ToleranceBase:         0.10,
		ToleranceMax:          0.18,
		LateSeasonThreshold:   12,
		HighlyCompressedRatio: 0.35,
		TargetMergeValidPct:   0.70,
	}
}

// compressionAt interpolates the median pull for progress in [0,1].
func (d Dynamic) compressionAt(progress float64) float64 {
	base := d.Compression
	if d.CompressionBase != nil {
		base = *d.CompressionBase
	}
	return base + (d.CompressionLate-base)*progress
}

func (d Dynamic) inflating() bool {
	return d.MergeEpisodes > 0 && d.MergePriceMultiplier > 1
}

// Tolerance returns the adaptive replacement tolerance for this model.
func (d Dynamic) Tolerance() AdaptiveTolerance {
	return AdaptiveTolerance{
		Base:            d.ToleranceBase,
		Max:             d.ToleranceMax,
		LateThreshold:   d.LateSeasonThreshold,
		CompressedRatio: d.HighlyCompressedRatio,
	}
}

// gridBounds rounds lo up and hi down to multiples of inc.
func gridBounds(lo, hi float64, inc int) (int, int) {
	if inc <= 0 {
		return int(math.Ceil(lo)), int(math.Floor(hi))
	}
	step := float64(inc)
	return int(math.Ceil(lo/step) * step), int(math.Floor(hi/step) * step)
}

// roundTo rounds v to the nearest multiple of inc.
func roundTo(v float64, inc int) int {
	if inc <= 0 {
		return int(math.Round(v))
	}
	return int(math.Round(v/float64(inc))) * inc
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
