package service

import (
	"context"
	"fmt"

	"github.com/okian/castaway/internal/adapters/mq/queue"
	"github.com/okian/castaway/internal/analysis"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/roster"
	"github.com/okian/castaway/internal/domain/scoring"
	"github.com/okian/castaway/pkg/logger"
	"github.com/okian/castaway/pkg/metrics"
)

// PointsReport is the outcome of a points simulation: trait rosters scored
// with fixed lineups and no captain.
type PointsReport struct {
	RunID     string            `json:"run_id"`
	Seed      int64             `json:"seed"`
	Scenarios int               `json:"scenarios"`
	Rosters   []model.Roster    `json:"rosters"`
	Summary   analysis.Summary  `json:"summary"`
	Results   []analysis.Result `json:"-"`
}

// Points builds perStrategy rosters for every trait strategy and scores them
// over scenarios seasons seeded seed, seed+1000, ...
func (s *Service) Points(ctx context.Context, scenarios, perStrategy int, seed int64) (_ *PointsReport, err error) {
	ctx, runID, done := s.begin(ctx, "points",
		logger.Int("scenarios", scenarios),
		logger.Int("rosters_per_strategy", perStrategy),
		logger.Int64("seed", seed),
	)
	defer func() { done(err) }()

	rosters, err := roster.BuildForSimulation(s.sim.Cast, perStrategy, seed)
	if err != nil {
		return nil, fmt.Errorf("build rosters: %w", err)
	}

	batches, err := fanOut[[]analysis.Result](ctx, s, "points", scenarios, seed, scenarioStride,
		func(_ context.Context, job queue.Job) ([]analysis.Result, error) {
			sc := s.Scenario(job.Seed)
			out := make([]analysis.Result, 0, len(rosters))
			for _, r := range rosters {
				res := scoring.RosterPoints(r.Members, sc.Episodes, &s.sim.Scoring, nil)
				out = append(out, analysis.FromTally(job.Index, r.Strategy, r.Members, res))
			}
			metrics.RecordRosterScored(len(rosters))
			return out, nil
		})
	if err != nil {
		return nil, err
	}

	results := flatten(batches)
	return &PointsReport{
		RunID:     runID,
		Seed:      seed,
		Scenarios: scenarios,
		Rosters:   rosters,
		Summary:   analysis.Analyze(results),
		Results:   results,
	}, nil
}

func flatten[T any](batches [][]T) []T {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	out := make([]T, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}
