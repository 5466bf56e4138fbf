package report

import (
	"cmp"
	"slices"

	"github.com/okian/castaway/internal/analysis"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/scoring"
)

// StrategyTable ranks strategies by mean points.
func StrategyTable(stats map[string]analysis.Stats) string {
	rows := make([][]string, 0, len(stats))
	for i, k := range analysis.Ranked(stats) {
		st := stats[k]
		rows = append(rows, []string{
			Count(i + 1), k, Points(st.Mean), Points(st.Min), Points(st.Max), Count(st.Count),
		})
	}
	return Table([]string{"#", "Strategy", "Mean", "Min", "Max", "Runs"}, rows, 0, 2, 3, 4, 5)
}

// CategoryTable shows the average points and share of each category.
func CategoryTable(s *analysis.Summary) string {
	rows := make([][]string, 0, len(scoring.Categories))
	for _, c := range scoring.Categories {
		rows = append(rows, []string{string(c), Points(s.CategoryAvg[c]), Pct(s.CategoryPct[c])})
	}
	return Table([]string{"Category", "Avg / team", "Share"}, rows, 1, 2)
}

// EventTable lists every event that fired, by share of all points.
func EventTable(s *analysis.Summary) string {
	events := firedEvents(s)
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		t := s.EventTotals[e]
		rows = append(rows, []string{
			e.Label(),
			string(e.Category()),
			Count(t.Count),
			Points(perRun(float64(t.Count), s.TotalRuns)),
			Points(t.Points),
			Pct(s.EventPct[e]),
		})
	}
	return Table([]string{"Event", "Category", "Count", "Avg / team", "Points", "Share"}, rows, 2, 3, 4, 5)
}

// PriceTable lists contestants from most to least expensive.
func PriceTable(cast model.Cast, prices model.PriceMap, expected map[string]float64) string {
	ids := byPrice(prices, expected)
	names := Names(cast)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{id, names[id], Money(prices[id]), Points(expected[id])})
	}
	return Table([]string{"ID", "Name", "Price", "Expected"}, rows, 2, 3)
}

// Names maps contestant id to display name.
func Names(cast model.Cast) map[string]string {
	out := make(map[string]string, len(cast))
	for _, c := range cast {
		out[c.ID] = c.Name
	}
	return out
}

// firedEvents returns the events with a non-zero count, largest share of
// points first.
func firedEvents(s *analysis.Summary) []scoring.EventType {
	var out []scoring.EventType
	for _, e := range scoring.EventTypes {
		if s.EventTotals[e].Count > 0 {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b scoring.EventType) int {
		return cmp.Compare(abs(s.EventPct[b]), abs(s.EventPct[a]))
	})
	return out
}

// byPrice orders ids by price, then expected points, descending.
func byPrice(prices model.PriceMap, expected map[string]float64) []string {
	ids := prices.SortedIDs()
	slices.SortStableFunc(ids, func(a, b string) int {
		if c := cmp.Compare(prices[b], prices[a]); c != 0 {
			return c
		}
		return cmp.Compare(expected[b], expected[a])
	})
	return ids
}

func perRun(v float64, runs int) float64 {
	if runs == 0 {
		return 0
	}
	return v / float64(runs)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
