package pricing_test

import (
	"fmt"
	"testing"

	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/pricing"
	"github.com/okian/castaway/internal/domain/scenario"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/internal/fixtures"
	. "github.com/smartystreets/goconvey/convey"
)

// linearExpected gives c01..c24 expected points 10, 13, 16, ...
func linearExpected() map[string]float64 {
	out := map[string]float64{}
	for i := 0; i < 24; i++ {
		out[fmt.Sprintf("c%02d", i+1)] = float64(10 + 3*i)
	}
	return out
}

func onGrid(prices model.PriceMap, inc, lo, hi int) {
	for _, p := range prices {
		So(p%inc, ShouldEqual, 0)
		So(p, ShouldBeBetweenOrEqual, lo, hi)
	}
}

func TestToPrices(t *testing.T) {
	Convey("Given three contestants on a linear curve", t, func() {
		cfg := pricing.Config{
			RosterMin: 2, RosterMax: 2,
			PriceMin: 100_000, PriceMax: 200_000, PriceIncrement: 5_000,
			PriceCurve: 1,
		}
		prices := pricing.ToPrices(map[string]float64{"A": 100, "B": 50, "C": 0}, cfg)

		Convey("Then the best costs the max, the worst the min and the middle sits halfway", func() {
			So(prices["A"], ShouldEqual, 200_000)
			So(prices["C"], ShouldEqual, 100_000)
			So(prices["B"], ShouldEqual, 150_000)
		})
	})

	Convey("Given bounds that are off the increment grid", t, func() {
		cfg := pricing.Config{
			RosterMin: 2, RosterMax: 2,
			PriceMin: 81_000, PriceMax: 259_000, PriceIncrement: 2_500,
			PriceCurve: 1,
		}
		prices := pricing.ToPrices(map[string]float64{"a": 100, "b": 50, "c": 0}, cfg)

		Convey("Then the bounds snap inward and every price is on the grid", func() {
			lo, hi := cfg.GridBounds()
			So(lo, ShouldEqual, 82_500)
			So(hi, ShouldEqual, 257_500)
			So(prices["a"], ShouldEqual, 257_500)
			So(prices["c"], ShouldEqual, 82_500)
			So(prices["b"], ShouldEqual, 170_000)
			onGrid(prices, cfg.PriceIncrement, lo, hi)
		})
	})

	Convey("Given no expected points", t, func() {
		So(pricing.ToPrices(nil, pricing.DefaultConfig()), ShouldBeEmpty)
	})

	Convey("Given equal expected points", t, func() {
		cfg := pricing.DefaultConfig()
		cfg.TargetTop7Sum = 0
		prices := pricing.ToPrices(map[string]float64{"a": 5, "b": 5}, cfg)
		So(prices["a"], ShouldEqual, cfg.PriceMin)
		So(prices["b"], ShouldEqual, cfg.PriceMin)
	})

	Convey("Given a 24 player field and the default model", t, func() {
		cfg := pricing.DefaultConfig()
		expected := linearExpected()
		prices := pricing.ToPrices(expected, cfg)

		Convey("Then every price is on the increment grid within bounds", func() {
			So(len(prices), ShouldEqual, 24)
			onGrid(prices, cfg.PriceIncrement, cfg.PriceMin, cfg.PriceMax)
		})

		Convey("Then the top seven by expected points cannot all fit the budget", func() {
			So(pricing.TopExpectedCost(prices, expected, 7), ShouldBeGreaterThan, cfg.Budget)
		})

		Convey("Then prices never invert expected points", func() {
			So(prices["c24"], ShouldBeGreaterThanOrEqualTo, prices["c23"])
			So(prices["c02"], ShouldBeGreaterThanOrEqualTo, prices["c01"])
		})
	})
}

func TestCalibrate(t *testing.T) {
	Convey("Given default prices for the synthetic cast", t, func() {
		cast := fixtures.Cast(42)
		cfg := pricing.DefaultConfig()
		prices := pricing.ToPrices(linearExpected(), cfg)

		Convey("When calibrating to the median combination", func() {
			out, cal := pricing.Calibrate(prices, cast, cfg)

			Convey("Then the most expensive seven exceed the budget", func() {
				So(cal.TargetCost, ShouldBeGreaterThan, 0)
				So(cal.Scale, ShouldBeGreaterThan, 0)
				So(pricing.TopCost(out, 7), ShouldBeGreaterThan, cfg.Budget)
				So(cal.TopCost, ShouldEqual, pricing.TopCost(out, 7))
				onGrid(out, cfg.PriceIncrement, cfg.PriceMin, cfg.PriceMax)
			})

			Convey("Then the input map is untouched", func() {
				So(prices, ShouldResemble, pricing.ToPrices(linearExpected(), cfg))
			})
		})

		Convey("When calibration is disabled", func() {
			cfg.TargetValidPct = 0
			out, cal := pricing.Calibrate(prices, cast, cfg)
			So(out, ShouldResemble, prices)
			So(cal, ShouldResemble, pricing.Calibration{})
		})
	})
}

// tribalEpisode: a wins immunity, b and c survive, d is voted out with 5 votes.
func tribalEpisode() *model.Episode {
	return &model.Episode{
		ID:           14,
		Phase:        model.PhasePostMerge,
		ImmunityType: model.ChallengeIndividual,
		RewardType:   model.ChallengeIndividual,
		Active:       []string{"a", "b", "c"},
		Tribes:       []model.Tribe{{Name: "Merge", Members: []string{"a", "b", "c", "d"}}},
		Tribal: &model.TribalOutcome{
			VotedOut:       "d",
			Votes:          5,
			Survived:       []string{"a", "b", "c"},
			ImmunityWinner: "a",
		},
	}
}

func TestUpdateFromEpisode(t *testing.T) {
	Convey("Given flat prices and one tribal episode", t, func() {
		sc := scoring.Default()
		d := pricing.DefaultDynamic()
		prior := model.PriceMap{"a": 150_000, "b": 150_000, "c": 150_000, "d": 150_000, "z": 99_999}
		ep := tribalEpisode()

		Convey("When repricing on demand only", func() {
			out := pricing.UpdateFromEpisode(prior, ep, &sc, d, 14)

			Convey("Then strong performers rise and the ousted falls", func() {
				So(out["a"], ShouldEqual, 152_500)
				So(out["b"], ShouldEqual, 150_000)
				So(out["c"], ShouldEqual, 150_000)
				So(out["d"], ShouldEqual, 145_000)
			})

			Convey("Then a previously eliminated contestant is frozen", func() {
				So(out["z"], ShouldEqual, 99_999)
			})

			Convey("Then the prior map is not modified", func() {
				So(prior["a"], ShouldEqual, 150_000)
			})
		})

		Convey("When full median compression is on", func() {
			d.CompressionBase = scoring.Float(1)
			d.CompressionLate = 1
			out := pricing.UpdateFromEpisode(prior, ep, &sc, d, 14)

			Convey("Then every participant lands on the median", func() {
				So(out["a"], ShouldEqual, out["b"])
				So(out["d"], ShouldEqual, out["b"])
				So(out["z"], ShouldEqual, 99_999)
			})
		})

		Convey("When the dynamic bounds are off the increment grid", func() {
			d.PriceMin, d.PriceMax = 151_000, 151_500
			d.PriceIncrement = 1_000
			d.Reactivity = 1
			out := pricing.UpdateFromEpisode(prior, ep, &sc, d, 14)
			lo, hi := d.Bounds(0)

			Convey("Then clamped prices stay on the grid", func() {
				So(lo, ShouldEqual, 151_000)
				So(hi, ShouldEqual, 151_000)
				for _, id := range []string{"a", "b", "c", "d"} {
					So(out[id], ShouldEqual, 151_000)
				}
				So(out["z"], ShouldEqual, 99_999)
			})
		})

		Convey("When merge inflation is on", func() {
			d.MergePriceMultiplier = 2
			out := pricing.UpdateFromEpisode(prior, ep, &sc, d, 6)
			lo, hi := d.Bounds(6)

			Convey("Then prices inflate and bounds widen on the grid", func() {
				So(lo, ShouldEqual, 120_000)
				So(hi, ShouldEqual, 390_000)
				So(out["a"], ShouldBeGreaterThan, 152_500)
				for _, id := range []string{"a", "b", "c", "d"} {
					So(out[id]%d.PriceIncrement, ShouldEqual, 0)
					So(out[id], ShouldBeBetweenOrEqual, lo, hi)
				}
				So(out["z"], ShouldEqual, 99_999)
			})
		})
	})

	Convey("Given a whole generated season", t, func() {
		cast := fixtures.Cast(11)
		gen, err := scenario.NewGenerator(cast)
		So(err, ShouldBeNil)
		sc := scoring.Default()
		pcfg := pricing.DefaultConfig()
		prices := pricing.ToPrices(linearExpected(), pcfg)

		for _, inflate := range []float64{1, 1.5} {
			d := pricing.DefaultDynamic()
			d.MergePriceMultiplier = inflate
			d.CompressionLate = 0.2

			Convey(fmt.Sprintf("When stepping every tribal with multiplier %.1f", inflate), func() {
				season := gen.Generate(5)
				current := prices.Clone()
				gone := map[string]bool{}
				for i := range season.Episodes {
					ep := &season.Episodes[i]
					if ep.IsFinale() {
						break
					}
					next := pricing.UpdateFromEpisode(current, ep, &sc, d, i+1)
					lo, hi := d.Bounds(i + 1)
					for id, p := range next {
						if gone[id] {
							So(p, ShouldEqual, current[id])
							continue
						}
						So(p%d.PriceIncrement, ShouldEqual, 0)
						So(p, ShouldBeBetweenOrEqual, lo, hi)
					}
					gone[ep.VotedOut()] = true
					current = next
				}
				So(len(gone), ShouldEqual, 21)
			})
		}
	})
}

func TestViability(t *testing.T) {
	Convey("Given five candidates at the same price late in the season", t, func() {
		pool := []string{"a", "b", "c", "d", "e"}
		prices := model.PriceMap{"a": 100_000, "b": 100_000, "c": 100_000, "d": 100_000, "e": 100_000}
		expected := map[string]float64{"a": 100, "b": 92, "c": 86, "d": 83, "e": 70}
		adaptive := pricing.DefaultDynamic().Tolerance()

		Convey("When using the fixed default tolerance", func() {
			v := pricing.CountViable(pool, prices, expected, 100_000, nil)

			Convey("Then only options within 10% of the best are viable", func() {
				So(v.Count, ShouldEqual, 2)
				So(v.Affordable, ShouldEqual, 5)
				So(v.Tolerance, ShouldAlmostEqual, 0.10)
				So(v.BestValue, ShouldAlmostEqual, 0.001)
				So(v.Viable[0].ID, ShouldEqual, "a")
			})
		})

		Convey("When using the adaptive tolerance", func() {
			v := pricing.CountViable(pool, prices, expected, 100_000, adaptive)

			Convey("Then compression and late season widen it to the cap", func() {
				So(v.Tolerance, ShouldAlmostEqual, 0.18)
				So(v.Count, ShouldEqual, 4)
			})

			Convey("Then it offers more options than the fixed tolerance", func() {
				fixed := pricing.CountViable(pool, prices, expected, 100_000, pricing.DefaultTolerance)
				So(v.Count, ShouldBeGreaterThan, fixed.Count)
			})
		})

		Convey("When widening a fixed tolerance step by step", func() {
			last := 0
			for _, tol := range []float64{0, 0.05, 0.1, 0.15, 0.2, 0.5, 1} {
				v := pricing.CountViable(pool, prices, expected, 100_000, pricing.FixedTolerance(tol))
				So(v.Count, ShouldBeGreaterThanOrEqualTo, last)
				last = v.Count
			}
			So(last, ShouldEqual, 5)
		})

		Convey("When nothing is affordable", func() {
			v := pricing.CountViable(pool, prices, expected, 50_000, adaptive)

			Convey("Then a zero result is returned rather than an error", func() {
				So(v.Count, ShouldEqual, 0)
				So(v.Affordable, ShouldEqual, 0)
				So(v.Viable, ShouldBeEmpty)
			})
		})
	})

	Convey("Given the adaptive tolerance rules", t, func() {
		a := pricing.AdaptiveTolerance{Base: 0.10, Max: 0.18, LateThreshold: 12, CompressedRatio: 0.35}
		spread := []int{80_000, 150_000, 250_000}
		tight := []int{100_000, 105_000, 110_000}

		So(a.For(spread, 20), ShouldAlmostEqual, 0.10)
		So(a.For(tight, 20), ShouldAlmostEqual, 0.15)
		So(a.For(spread, 8), ShouldAlmostEqual, 0.14)
		So(a.For(tight, 8), ShouldAlmostEqual, 0.18)
		So(a.For(nil, 8), ShouldAlmostEqual, 0.10)
		So(a.For([]int{0, 0}, 20), ShouldAlmostEqual, 0.10)
	})
}

func TestExpectedPoints(t *testing.T) {
	Convey("Given a generator and the default scoring", t, func() {
		cast := fixtures.Cast(42)
		gen, err := scenario.NewGenerator(cast)
		So(err, ShouldBeNil)
		sc := scoring.Default()

		Convey("When estimating twice with the same seed", func() {
			a := pricing.ExpectedPoints(gen, cast.IDs(), &sc, 6, 42)
			b := pricing.ExpectedPoints(gen, cast.IDs(), &sc, 6, 42)

			Convey("Then the estimates agree and cover the cast", func() {
				So(a, ShouldResemble, b)
				So(len(a), ShouldEqual, 24)
			})

			Convey("Then the estimate equals the mean of the solo totals", func() {
				est := pricing.NewEstimate(cast.IDs())
				for run := 0; run < 6; run++ {
					season := gen.Generate(pricing.RunSeed(42, run))
					est.Add(pricing.SoloTotals(&season, cast.IDs(), &sc))
				}
				So(est.Runs(), ShouldEqual, 6)
				So(est.Mean(), ShouldResemble, a)
			})
		})

		Convey("When nothing has been folded in", func() {
			So(pricing.NewEstimate(cast.IDs()).Mean(), ShouldBeEmpty)
		})

		Convey("Then run seeds are spaced by a thousand", func() {
			So(pricing.RunSeed(42, 3), ShouldEqual, int64(3042))
		})
	})
}

func TestMergeValid(t *testing.T) {
	Convey("Given twelve remaining players", t, func() {
		cast := fixtures.Cast(42)
		remaining := cast.Subset(cast.IDs()[6:18])
		prices := model.PriceMap{}
		for _, id := range remaining.IDs() {
			prices[id] = 100_000
		}

		Convey("Then a generous budget admits every tribe-valid roster", func() {
			mv := pricing.MergeValid(remaining, prices, 1_000_000, 7)
			So(mv.TribeValid, ShouldBeGreaterThan, 0)
			So(mv.Valid, ShouldEqual, mv.TribeValid)
			So(mv.Pct, ShouldAlmostEqual, 100)
		})

		Convey("Then a tight budget admits none", func() {
			mv := pricing.MergeValid(remaining, prices, 600_000, 7)
			So(mv.Valid, ShouldEqual, 0)
			So(mv.Pct, ShouldAlmostEqual, 0)
		})
	})
}
