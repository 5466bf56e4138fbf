package model

import "slices"

// Roster is a fantasy team: contestant ids plus the strategy that built it.
type Roster struct {
	Members  []string `json:"roster" yaml:"roster"`
	Strategy string   `json:"strategy" yaml:"strategy"`
	Cost     int      `json:"total_cost" yaml:"total_cost"`
}

// Has reports whether id is on the roster.
func (r Roster) Has(id string) bool {
	return slices.Contains(r.Members, id)
}

// PriceMap maps contestant id to an integer dollar price.
type PriceMap map[string]int

// Clone returns an independent copy.
func (p PriceMap) Clone() PriceMap {
	out := make(PriceMap, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Cost sums the prices of ids. Unknown ids cost nothing.
func (p PriceMap) Cost(ids []string) int {
	total := 0
	for _, id := range ids {
		total += p[id]
	}
	return total
}

// SortedIDs returns ids ordered by price descending, then id ascending.
func (p PriceMap) SortedIDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if p[a] != p[b] {
			return p[b] - p[a]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return ids
}
