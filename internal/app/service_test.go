package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/okian/castaway/internal/app"
	"github.com/okian/castaway/internal/config"
	"github.com/okian/castaway/internal/domain/pricing"
	"github.com/okian/castaway/internal/domain/roster"
	"github.com/okian/castaway/internal/domain/scenario"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/internal/fixtures"
	"github.com/okian/castaway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

func simulation() *config.Simulation {
	return &config.Simulation{
		Cast:          fixtures.Cast(42),
		Scoring:       scoring.Default(),
		Pricing:       pricing.DefaultConfig(),
		Dynamic:       pricing.DefaultDynamic(),
		Probabilities: scenario.DefaultProbabilities(),
		Template:      scenario.DefaultTemplate(),
	}
}

func newService(workers int) *service.Service {
	svc, err := service.New(simulation(), service.WithWorkerCount(workers), service.WithQueueSize(8))
	if err != nil {
		panic(err)
	}
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given no simulation model", t, func() {
		_, err := service.New(nil)
		So(errors.Is(err, service.ErrNoSimulation), ShouldBeTrue)
	})

	Convey("Given a cast with two tribes", t, func() {
		sim := simulation()
		sim.Cast = fixtures.Cast(42, fixtures.WithTribes(2))
		_, err := service.New(sim)

		Convey("Then the generator rejects it", func() {
			So(errors.Is(err, scenario.ErrTooFewTribes), ShouldBeTrue)
		})
	})

	Convey("Given a valid model and options", t, func() {
		svc, err := service.New(simulation(), service.WithWorkerCount(2), service.WithLogger(logger.Nop()))
		So(err, ShouldBeNil)
		So(svc.Simulation().Cast, ShouldHaveLength, 24)

		Convey("Then scenarios are reproducible by seed", func() {
			a, b := svc.Scenario(7), svc.Scenario(7)
			So(a.BootOrder, ShouldResemble, b.BootOrder)
			So(a.Seed, ShouldEqual, 7)
		})
	})
}

func TestService_Expected(t *testing.T) {
	Convey("Given services with one and eight workers", t, func() {
		ctx := context.Background()
		one, eight := newService(1), newService(8)

		Convey("When estimating expected points", func() {
			a, err := one.Expected(ctx, 12, 42)
			So(err, ShouldBeNil)
			b, err := eight.Expected(ctx, 12, 42)
			So(err, ShouldBeNil)

			Convey("Then the pool size does not change the result", func() {
				So(a, ShouldResemble, b)
				So(a, ShouldHaveLength, 24)
			})

			Convey("Then it matches the sequential estimate", func() {
				sim := simulation()
				gen, err := scenario.NewGenerator(sim.Cast,
					scenario.WithTemplate(sim.Template),
					scenario.WithProbabilities(sim.Probabilities),
				)
				So(err, ShouldBeNil)
				So(a, ShouldResemble, pricing.ExpectedPoints(gen, sim.Cast.IDs(), &sim.Scoring, 12, 42))
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := one.Expected(cctx, 12, 42)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestService_Market(t *testing.T) {
	Convey("Given a priced market", t, func() {
		svc := newService(4)
		mkt, err := svc.Market(context.Background(), 10, 42)
		So(err, ShouldBeNil)
		cfg := pricing.DefaultConfig()

		Convey("Then calibrated prices are on the grid and within bounds", func() {
			So(mkt.Prices, ShouldHaveLength, 24)
			for _, p := range mkt.Prices {
				So(p%cfg.PriceIncrement, ShouldEqual, 0)
				So(p, ShouldBeBetweenOrEqual, cfg.PriceMin, cfg.PriceMax)
			}
		})

		Convey("Then the most expensive roster does not fit the budget", func() {
			So(pricing.TopCost(mkt.Prices, cfg.RosterMax), ShouldBeGreaterThan, cfg.Budget)
		})
	})
}

func TestService_Points(t *testing.T) {
	Convey("Given a points simulation", t, func() {
		svc := newService(4)
		ctx := context.Background()
		rep, err := svc.Points(ctx, 3, 2, 42)
		So(err, ShouldBeNil)

		Convey("Then every trait roster is scored in every scenario", func() {
			n := 3 * 2 * len(roster.TraitStrategies)
			So(rep.Results, ShouldHaveLength, n)
			So(rep.Summary.TotalRuns, ShouldEqual, n)
			So(rep.Summary.Strategies, ShouldHaveLength, len(roster.TraitStrategies))
			So(rep.RunID, ShouldNotBeEmpty)
		})

		Convey("Then results are grouped by scenario in job order", func() {
			per := 2 * len(roster.TraitStrategies)
			So(rep.Results[0].ScenarioID, ShouldEqual, 0)
			So(rep.Results[per].ScenarioID, ShouldEqual, 1)
			So(rep.Results[len(rep.Results)-1].ScenarioID, ShouldEqual, 2)
		})

		Convey("Then a second run reproduces the totals under a new run id", func() {
			again, err := newService(1).Points(ctx, 3, 2, 42)
			So(err, ShouldBeNil)
			So(again.Summary.TotalPoints, ShouldEqual, rep.Summary.TotalPoints)
			So(again.RunID, ShouldNotEqual, rep.RunID)
		})

		Convey("Then fixed rosters score like a direct season tally", func() {
			sc := svc.Scenario(42)
			r := rep.Results[0]
			want := scoring.RosterPoints(r.Roster, sc.Episodes, &svc.Simulation().Scoring, nil)
			So(r.Total, ShouldEqual, want.Total)
		})
	})
}

func TestService_Pricing(t *testing.T) {
	Convey("Given a pricing simulation with strategy rosters", t, func() {
		svc := newService(4)
		ctx := context.Background()
		rep, err := svc.Pricing(ctx, service.PricingOptions{ExpectedRuns: 10, Scenarios: 2, PerStrategy: 1}, 42)
		So(err, ShouldBeNil)
		cfg := svc.Simulation().Pricing

		Convey("Then one roster per budget strategy is scored per scenario", func() {
			So(rep.Rosters, ShouldHaveLength, len(roster.BudgetStrategies))
			So(rep.Results, ShouldHaveLength, 2*len(roster.BudgetStrategies))
			So(rep.Strategies, ShouldHaveLength, len(roster.BudgetStrategies))
			So(rep.UniqueCompositions, ShouldBeBetweenOrEqual, 1, len(roster.BudgetStrategies))
		})

		Convey("Then counts describe the priced field", func() {
			So(rep.TribeValid, ShouldEqual, roster.CountTribeValid(svc.Simulation().Cast, cfg.Rules()))
			So(rep.Counts.Total, ShouldBeLessThanOrEqualTo, rep.TribeValid)
			So(rep.ExcludedPct, ShouldBeBetweenOrEqual, 0, 100)
		})

		Convey("Then price tiers are descending and cover the cast", func() {
			total := 0
			for i, tier := range rep.Tiers {
				total += len(tier.IDs)
				if i > 0 {
					So(tier.Price, ShouldBeLessThan, rep.Tiers[i-1].Price)
				}
			}
			So(total, ShouldEqual, 24)
			So(rep.PriceSummary.Max, ShouldEqual, rep.Tiers[0].Price)
			So(rep.PriceSummary.Top5, ShouldBeLessThan, rep.PriceSummary.Top7)
		})

		Convey("Then strategy stats carry costs and picks", func() {
			st := rep.Strategies[string(roster.StrategyValue)]
			So(st.Count, ShouldEqual, 2)
			So(st.AvgCost, ShouldBeLessThanOrEqualTo, float64(cfg.Budget))
			So(st.Example, ShouldNotBeEmpty)
			So(st.TopPicks[0].Count, ShouldEqual, 2)
		})
	})

	Convey("Given a pricing simulation with sampled rosters", t, func() {
		svc := newService(4)
		rep, err := svc.Pricing(context.Background(), service.PricingOptions{ExpectedRuns: 10, Scenarios: 1, Sample: 5}, 42)
		So(err, ShouldBeNil)
		sim := svc.Simulation()

		Convey("Then every roster is a distinct valid sampled roster", func() {
			So(rep.Sampled, ShouldEqual, 5)
			So(len(rep.Rosters), ShouldBeBetweenOrEqual, 1, 5)
			for _, r := range rep.Rosters {
				So(r.Strategy, ShouldEqual, service.SampledStrategy)
				So(roster.IsValid(r.Members, rep.Market.Prices, sim.Cast.TribeMap(), sim.Pricing.Rules()), ShouldBeTrue)
			}
			So(rep.UniqueCompositions, ShouldEqual, len(rep.Rosters))
		})
	})
}
