package roster

import (
	"slices"

	"github.com/okian/castaway/internal/domain/dedupe"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/pkg/random"
)

// maxAttemptsPerRoster bounds rejection sampling.
const maxAttemptsPerRoster = 500

// combinations calls fn with every k-subset of ids in lexicographic index
// order. The slice passed to fn is reused; fn returns false to stop.
func combinations(ids []string, k int, fn func([]string) bool) {
	n := len(ids)
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	combo := make([]string, k)
	for {
		for i, j := range idx {
			combo[i] = ids[j]
		}
		if !fn(combo) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Counts is the number of valid rosters per size.
type Counts struct {
	Total  int         `json:"total" yaml:"total"`
	BySize map[int]int `json:"by_size" yaml:"by_size"`
}

// CountValid counts every valid roster of each allowed size.
func CountValid(cast model.Cast, prices model.PriceMap, r Rules) Counts {
	ids := cast.IDs()
	tribes := cast.TribeMap()
	out := Counts{BySize: make(map[int]int)}
	for _, size := range r.Sizes() {
		combinations(ids, size, func(c []string) bool {
			if IsValid(c, prices, tribes, r) {
				out.BySize[size]++
				out.Total++
			}
			return true
		})
	}
	return out
}

// CountTribeValid counts tribe-valid combinations of each allowed size,
// ignoring the budget.
func CountTribeValid(cast model.Cast, r Rules) int {
	ids := cast.IDs()
	tribes := cast.TribeMap()
	total := 0
	for _, size := range r.Sizes() {
		combinations(ids, size, func(c []string) bool {
			if TribeValid(c, tribes) {
				total++
			}
			return true
		})
	}
	return total
}

// CostPercentiles returns, for each p, the cost of the combination at
// rank min(int(n*p), n-1) among all tribe-valid combinations sorted by cost.
func CostPercentiles(cast model.Cast, prices model.PriceMap, r Rules, ps ...float64) map[float64]int {
	ids := cast.IDs()
	tribes := cast.TribeMap()
	var costs []int
	for _, size := range r.Sizes() {
		combinations(ids, size, func(c []string) bool {
			if TribeValid(c, tribes) {
				costs = append(costs, prices.Cost(c))
			}
			return true
		})
	}
	out := make(map[float64]int, len(ps))
	if len(costs) == 0 {
		for _, p := range ps {
			out[p] = 0
		}
		return out
	}
	slices.Sort(costs)
	n := len(costs)
	for _, p := range ps {
		out[p] = costs[min(int(float64(n)*p), n-1)]
	}
	return out
}

// Enumerate lists valid rosters, smallest size first, stopping after limit
// when limit > 0.
func Enumerate(cast model.Cast, prices model.PriceMap, r Rules, limit int) [][]string {
	ids := cast.IDs()
	tribes := cast.TribeMap()
	var out [][]string
	for _, size := range r.Sizes() {
		done := false
		combinations(ids, size, func(c []string) bool {
			if IsValid(c, prices, tribes, r) {
				out = append(out, slices.Clone(c))
				if limit > 0 && len(out) >= limit {
					done = true
					return false
				}
			}
			return true
		})
		if done {
			break
		}
	}
	return out
}

// SampleValid draws up to n distinct valid rosters by rejection sampling.
// It gives up after n*500 attempts and returns what it found.
func SampleValid(cast model.Cast, prices model.PriceMap, r Rules, n int, rng *random.Stream) [][]string {
	ids := cast.IDs()
	tribes := cast.TribeMap()
	seen := dedupe.NewInMemoryDeduper()
	var out [][]string
	for attempts := 0; len(out) < n && attempts < n*maxAttemptsPerRoster; attempts++ {
		size := r.Min
		if r.Min != r.Max {
			size = rng.IntRange(r.Min, r.Max)
		}
		combo := random.Sample(rng, ids, size)
		slices.Sort(combo)
		if !IsValid(combo, prices, tribes, r) {
			continue
		}
		if seen.SeenAndRecord(dedupe.Key(combo)) {
			continue
		}
		out = append(out, combo)
	}
	return out
}
