package service

import (
	"context"
	"fmt"

	"github.com/okian/castaway/internal/adapters/repository"
	"github.com/okian/castaway/internal/analysis"
	"github.com/okian/castaway/internal/domain/dedupe"
)

// bestRosters is the leaderboard size kept for reports.
const bestRosters = 10

// leaderboard ranks the best single seasons per roster composition and
// strategy group.
func leaderboard(ctx context.Context, results []analysis.Result) ([]repository.Entry, error) {
	board := repository.NewBoard(repository.WithCapacity(bestRosters))
	for i := range results {
		r := &results[i]
		_, err := board.UpdateBest(ctx, repository.Entry{
			Key:      r.Group() + ":" + dedupe.Key(r.Roster),
			Score:    r.Total,
			Strategy: r.Group(),
			Scenario: r.ScenarioID,
			Members:  r.Roster,
		})
		if err != nil {
			return nil, fmt.Errorf("rank roster: %w", err)
		}
	}
	if board.Count(ctx) == 0 {
		return nil, nil
	}
	return board.TopN(ctx, bestRosters)
}
