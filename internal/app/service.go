// Package service runs the simulation drivers on top of the domain core:
// points, pricing, dynamic repricing, full season and episode trace. It owns
// the worker pool, the run identifiers, logging and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/okian/castaway/internal/adapters/mq/queue"
	"github.com/okian/castaway/internal/adapters/mq/worker"
	"github.com/okian/castaway/internal/config"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/pricing"
	"github.com/okian/castaway/internal/domain/scenario"
	"github.com/okian/castaway/pkg/logger"
	"github.com/okian/castaway/pkg/metrics"
)

// Seed strides between consecutive scenarios of a driver.
const (
	scenarioStride = 1000
	dynamicStride  = 7777
)

// ErrNoSimulation is returned when a Service is built without a simulation model.
var ErrNoSimulation = errors.New("service: simulation model is required")

// Service runs simulation drivers for one loaded simulation model. It is
// safe for concurrent use; every run owns its own random streams.
type Service struct {
	sim *config.Simulation
	gen *scenario.Generator

	workerCount int
	queueSize   int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a Service around sim. The scenario generator is validated here,
// so a cast with fewer than three tribes or a bad template fails early.
func New(sim *config.Simulation, opts ...Option) (*Service, error) {
	if sim == nil {
		return nil, ErrNoSimulation
	}
	s := &Service{
		sim:         sim,
		workerCount: runtime.NumCPU(),
		queueSize:   256,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Current().Named("service")
	}

	gen, err := scenario.NewGenerator(sim.Cast,
		scenario.WithTemplate(sim.Template),
		scenario.WithProbabilities(sim.Probabilities),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario generator: %w", err)
	}
	s.gen = gen
	return s, nil
}

// Simulation returns the model the service runs against.
func (s *Service) Simulation() *config.Simulation {
	return s.sim
}

// Scenario generates the scenario for seed.
func (s *Service) Scenario(seed int64) model.Scenario {
	sc := s.gen.Generate(seed)
	metrics.RecordScenarioGenerated()
	return sc
}

// begin tags ctx with a fresh run ID and returns a func that records the
// outcome of the run.
func (s *Service) begin(ctx context.Context, driver string, fields ...logger.Field) (context.Context, string, func(error)) {
	id := uuid.NewString()
	ctx = logger.WithRunID(ctx, id)
	start := time.Now()
	s.logger.Info(ctx, driver+" run started", append(fields, logger.String("driver", driver))...)
	return ctx, id, func(err error) {
		elapsed := time.Since(start)
		if err != nil {
			metrics.RecordRun(driver, "error", elapsed.Seconds())
			metrics.RecordErrorByComponent(driver, "run_failed")
			s.logger.Error(ctx, driver+" run failed", logger.Error(err), logger.Duration("elapsed", elapsed))
			return
		}
		metrics.RecordRun(driver, "ok", elapsed.Seconds())
		s.logger.Info(ctx, driver+" run finished", logger.Duration("elapsed", elapsed))
	}
}

// fanOut runs handler over n seeded jobs on the worker pool. Results come
// back in job order.
func fanOut[T any](ctx context.Context, s *Service, name string, n int, base, stride int64, handler worker.Handler[T]) ([]T, error) {
	pool := worker.NewPool(handler,
		worker.WithName(name),
		worker.WithWorkers(s.workerCount),
		worker.WithQueueSize(s.queueSize),
		worker.WithLogger(s.logger.Named(name)),
	)
	return pool.Run(ctx, worker.SeededJobs(n, base, stride))
}

// Market is the priced contestant pool every budget driver shops in.
type Market struct {
	Expected    map[string]float64  `json:"expected_points"`
	Initial     model.PriceMap      `json:"initial_prices"`
	Prices      model.PriceMap      `json:"prices"`
	Calibration pricing.Calibration `json:"calibration"`
}

// Expected estimates each contestant's expected season points over runs
// scenarios seeded seed, seed+1000, ...
func (s *Service) Expected(ctx context.Context, runs int, seed int64) (map[string]float64, error) {
	ids := s.sim.Cast.IDs()
	totals, err := fanOut[map[string]float64](ctx, s, "expected", runs, seed, scenarioStride,
		func(_ context.Context, job queue.Job) (map[string]float64, error) {
			sc := s.Scenario(job.Seed)
			return pricing.SoloTotals(&sc, ids, &s.sim.Scoring), nil
		})
	if err != nil {
		return nil, err
	}
	est := pricing.NewEstimate(ids)
	for _, t := range totals {
		est.Add(t)
	}
	return est.Mean(), nil
}

// Market prices the cast from expected points and calibrates the result.
func (s *Service) Market(ctx context.Context, runs int, seed int64) (*Market, error) {
	expected, err := s.Expected(ctx, runs, seed)
	if err != nil {
		return nil, fmt.Errorf("expected points: %w", err)
	}
	initial := pricing.ToPrices(expected, s.sim.Pricing)
	prices, cal := pricing.Calibrate(initial, s.sim.Cast, s.sim.Pricing)
	s.logger.Debug(ctx, "market priced",
		logger.Int("runs", runs),
		logger.Int("top_cost", pricing.TopCost(prices, s.sim.Pricing.RosterMax)),
		logger.Float64("scale", cal.Scale),
	)
	return &Market{Expected: expected, Initial: initial, Prices: prices, Calibration: cal}, nil
}

// priceHistory replays a scenario's tribals: entry 0 is start, entry i+1
// follows the i-th elimination. It stops at the finale.
func (s *Service) priceHistory(sc *model.Scenario, start model.PriceMap) []model.PriceMap {
	history := []model.PriceMap{start}
	current := start
	for i := range sc.Episodes {
		ep := &sc.Episodes[i]
		if ep.IsFinale() {
			break
		}
		if ep.VotedOut() == "" {
			continue
		}
		current = pricing.UpdateFromEpisode(current, ep, &s.sim.Scoring, s.sim.Dynamic, i+1)
		metrics.RecordPriceUpdate()
		history = append(history, current)
	}
	return history
}

// mergeBudget is the budget for the merge validity check.
func (s *Service) mergeBudget() int {
	if b := s.sim.Dynamic.MergeBudget; b > 0 {
		return b
	}
	return s.sim.Pricing.Budget
}
