// Package roster counts, enumerates, samples and builds fantasy rosters under
// size, tribe and budget constraints.
package roster

import (
	"github.com/okian/castaway/internal/domain/model"
)

// MinTribes is the number of distinct starting tribes a roster must cover.
const MinTribes = 3

// Rules are the roster constraints.
type Rules struct {
	Budget int
	Min    int
	Max    int
}

// DefaultRules is a 7-player roster on a one million budget.
func DefaultRules() Rules {
	return Rules{Budget: 1_000_000, Min: 7, Max: 7}
}

// Sizes returns the allowed roster sizes in ascending order.
func (r Rules) Sizes() []int {
	var out []int
	for s := r.Min; s <= r.Max; s++ {
		out = append(out, s)
	}
	return out
}

// TribeValid reports whether ids cover at least MinTribes starting tribes.
func TribeValid(ids []string, tribes map[string]string) bool {
	seen := make(map[string]struct{}, MinTribes)
	for _, id := range ids {
		seen[tribes[id]] = struct{}{}
		if len(seen) >= MinTribes {
			return true
		}
	}
	return false
}

// IsValid reports whether ids is a legal roster: allowed size, enough
// tribes, within budget.
func IsValid(ids []string, prices model.PriceMap, tribes map[string]string, r Rules) bool {
	if len(ids) < r.Min || len(ids) > r.Max {
		return false
	}
	if !TribeValid(ids, tribes) {
		return false
	}
	return prices.Cost(ids) <= r.Budget
}
