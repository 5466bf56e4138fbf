// Package repository keeps leaderboards of scored roster compositions.
package repository

import "context"

// Entry is a leaderboard row: the best season a roster composition played.
type Entry struct {
	Rank     int      `json:"rank"`
	Key      string   `json:"key"`
	Score    float64  `json:"score"`
	Strategy string   `json:"strategy"`
	Scenario int      `json:"scenario_id"`
	Members  []string `json:"roster"`
}

// Store provides read/write access to a leaderboard.
type Store interface {
	// UpdateBest records e if its score beats the one stored for e.Key.
	// Returns true if the store changed.
	UpdateBest(ctx context.Context, e Entry) (bool, error)

	// Rank returns the current rank and best entry for key.
	// Returns ErrNotFound if the key is unknown.
	Rank(ctx context.Context, key string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of keys on the board.
	Count(ctx context.Context) int
}
