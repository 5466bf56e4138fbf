package report

import (
	"fmt"
	"strings"

	"github.com/okian/castaway/internal/adapters/repository"
	"github.com/okian/castaway/internal/analysis"
	service "github.com/okian/castaway/internal/app"
	"github.com/okian/castaway/internal/domain/model"
	"github.com/okian/castaway/internal/domain/scoring"
)

// maxTraceChanges caps the price changes listed per traced episode.
const maxTraceChanges = 12

// PointsMarkdown renders a points simulation.
func PointsMarkdown(rep *service.PointsReport) string {
	var md markdown
	md.heading(1, "Points Simulation")
	md.bullet("Run: `%s`", rep.RunID)
	md.bullet("Seed: %d", rep.Seed)
	md.bullet("Scenarios: %s", Count(rep.Scenarios))
	md.bullet("Rosters: %s", Count(len(rep.Rosters)))
	summary(&md, &rep.Summary)
	return md.String()
}

// PricingMarkdown renders a pricing simulation.
func PricingMarkdown(rep *service.PricingReport, cast model.Cast) string {
	var md markdown
	names := Names(cast)
	md.heading(1, "Pricing Simulation")
	md.bullet("Run: `%s`", rep.RunID)
	md.bullet("Seed: %d", rep.Seed)
	md.bullet("Expected-points runs: %s", Count(rep.ExpectedRuns))
	md.bullet("Scenarios: %s", Count(rep.Scenarios))
	md.bullet("Budget: %s for %d-%d players", Money(rep.Config.Budget), rep.Config.RosterMin, rep.Config.RosterMax)
	md.bullet("Valid rosters: %s of %s tribe-valid (%s excluded by price)",
		Count(rep.Counts.Total), Count(rep.TribeValid), Pct(rep.ExcludedPct))
	md.bullet("Unique compositions scored: %s", Count(rep.UniqueCompositions))
	if cal := rep.Market.Calibration; cal.Scale != 0 {
		md.bullet("Calibration: x%.3f (target roster cost %s), top scale x%.3f", cal.Scale, Money(cal.TargetCost), cal.TopScale)
	}

	ps := rep.PriceSummary
	md.heading(2, "Price Distribution")
	md.table([]string{"Min", "Max", "All players", "Top 5", "Top 6", "Top 7"}, [][]string{{
		Money(ps.Min), Money(ps.Max), Money(ps.Sum), Money(ps.Top5), Money(ps.Top6), Money(ps.Top7),
	}})

	md.heading(2, "Players by Price")
	rows := make([][]string, 0, len(rep.Tiers))
	for _, t := range rep.Tiers {
		rows = append(rows, []string{Money(t.Price), Count(len(t.IDs)), strings.Join(labels(t.IDs, names), ", ")})
	}
	md.table([]string{"Price", "Players", "Contestants"}, rows)

	md.heading(2, "Strategy Results")
	rows = rows[:0]
	for _, k := range rankedStrategies(rep.Strategies) {
		st := rep.Strategies[k]
		picks := make([]string, 0, len(st.TopPicks))
		for _, p := range st.TopPicks {
			picks = append(picks, fmt.Sprintf("%s (%d)", label(p.ID, names), p.Count))
		}
		rows = append(rows, []string{
			k, Points(st.Mean), Points(st.Min), Points(st.Max), Money(int(st.AvgCost)), strings.Join(picks[:min(3, len(picks))], ", "),
		})
	}
	md.table([]string{"Strategy", "Mean", "Min", "Max", "Avg cost", "Top picks"}, rows)

	best(&md, rep.Best, names)
	summary(&md, &rep.Summary)

	md.heading(2, "Contestant Prices")
	rows = rows[:0]
	for _, id := range byPrice(rep.Market.Prices, rep.Market.Expected) {
		rows = append(rows, []string{
			id, names[id], Money(rep.Market.Initial[id]), Money(rep.Market.Prices[id]), Points(rep.Market.Expected[id]),
		})
	}
	md.table([]string{"ID", "Name", "Curve price", "Price", "Expected"}, rows)
	return md.String()
}

// DynamicMarkdown renders a dynamic pricing simulation.
func DynamicMarkdown(rep *service.DynamicReport, cast model.Cast) string {
	var md markdown
	names := Names(cast)
	md.heading(1, "Dynamic Pricing Simulation")
	md.bullet("Run: `%s`", rep.RunID)
	md.bullet("Seed: %d", rep.Seed)
	md.bullet("Scenarios: %s", Count(rep.Scenarios))
	md.bullet("Reactivity: %.2f", rep.Config.Reactivity)

	md.heading(2, "Replacement Viability")
	md.table([]string{"Events", "Avg viable", "Min viable", "Zero viable", "3+ viable"}, [][]string{{
		Count(rep.Events), Points(rep.AvgViable), Count(rep.MinViable), Count(rep.ZeroViable), Pct(rep.ThreePlusPct),
	}})

	md.heading(2, "Merge Validity")
	md.table([]string{"Checks", "Avg valid", "Target"}, [][]string{{
		Count(rep.MergeEvents), Pct(rep.AvgMergePct), Pct(rep.MergeTarget),
	}})

	md.heading(2, "Sample Events")
	rows := make([][]string, 0, len(rep.Sample))
	for _, ev := range rep.Sample {
		merge := "-"
		if ev.Merge != nil {
			merge = Pct(ev.Merge.Pct)
		}
		best := "-"
		if len(ev.Viability.Viable) > 0 {
			best = label(ev.Viability.Viable[0].ID, names)
		}
		rows = append(rows, []string{
			Count(ev.Scenario), Count(ev.Episode), label(ev.VotedOut, names), Count(ev.Remaining),
			Money(ev.BudgetFreed), Count(ev.Viability.Affordable), Count(ev.Viability.Count), best, merge,
		})
	}
	md.table([]string{"Scenario", "Episode", "Voted out", "Remaining", "Freed", "Affordable", "Viable", "Best", "Merge valid"}, rows)

	if len(rep.History) > 0 {
		md.heading(2, "Price Evolution")
		headers := []string{"Contestant"}
		for i := range rep.History {
			headers = append(headers, fmt.Sprintf("T%d", i))
		}
		rows = rows[:0]
		for _, id := range rep.History[0].SortedIDs() {
			row := []string{label(id, names)}
			for _, prices := range rep.History {
				row = append(row, Money(prices[id]))
			}
			rows = append(rows, row)
		}
		md.table(headers, rows)
	}
	return md.String()
}

// FullMarkdown renders a full season simulation.
func FullMarkdown(rep *service.FullReport) string {
	var md markdown
	md.heading(1, "Full Season Simulation")
	md.bullet("Run: `%s`", rep.RunID)
	md.bullet("Seed: %d", rep.Seed)
	md.bullet("Scenarios: %s, rosters per strategy: %d", Count(rep.Scenarios), rep.PerStrategy)
	md.bullet("Captain multiplier: x%.1f", rep.CaptainMultiplier)
	md.bullet("Replacement penalty: %s", Points(rep.AddPlayerPenalty))

	md.heading(2, "Play Styles")
	rows := make([][]string, 0, len(service.PlayStyles))
	for _, style := range service.PlayStyles {
		st := rep.Styles[string(style)]
		rows = append(rows, []string{string(style), Points(st.Mean), Points(st.Min), Points(st.Max), Count(st.Count)})
	}
	md.table([]string{"Style", "Mean", "Min", "Max", "Runs"}, rows)
	md.bullet("Captain bonus, all runs: %s", Points(rep.CaptainBonus))
	md.bullet("Replacements: %s costing %s", Count(rep.Replacements), Points(rep.PenaltyTotal))

	best(&md, rep.Best, nil)
	summary(&md, &rep.Summary)
	return md.String()
}

// TraceMarkdown renders an episode trace.
func TraceMarkdown(tr *service.Trace) string {
	var md markdown
	md.heading(1, "Episode Trace")
	md.bullet("Run: `%s`", tr.RunID)
	md.bullet("Scenario seed: %d", tr.Seed)
	md.bullet("Budget: %s", Money(tr.Budget))
	md.bullet("Replacement penalty: %s", Points(tr.AddPlayerPenalty))

	md.heading(2, "Sample Teams")
	rows := make([][]string, 0, len(tr.Teams))
	for i, t := range tr.Teams {
		rows = append(rows, []string{
			Count(i + 1), t.Strategy, strings.Join(labels(t.InitialRoster, tr.Names), ", "), Money(t.InitialCost),
			Points(t.FixedPoints), Points(t.ReplacePoints),
		})
	}
	md.table([]string{"Team", "Strategy", "Roster", "Cost", "Fixed pts", "Replace pts"}, rows)

	for _, ep := range tr.Episodes {
		md.heading(2, "Episode %d (%s)", ep.Episode, strings.ReplaceAll(string(ep.Phase), "_", " "))
		if ep.VotedOut != "" {
			md.line("Voted out: **%s** at %s", label(ep.VotedOut, tr.Names), Money(ep.Before[ep.VotedOut]))
			md.line("")
		}
		if len(ep.Changes) > 0 {
			rows = rows[:0]
			for _, c := range ep.Changes[:min(maxTraceChanges, len(ep.Changes))] {
				rows = append(rows, []string{
					label(c.ID, tr.Names), Money(c.Before), Money(c.After), signedMoney(c.Delta), fmt.Sprintf("%+.1f%%", c.Pct),
				})
			}
			md.table([]string{"Contestant", "Before", "After", "Change", "%"}, rows)
		}
		rows = rows[:0]
		for _, u := range ep.Teams {
			change := "-"
			if r := u.Replacement; r != nil {
				change = fmt.Sprintf("%s -> %s (%s freed, %d viable, %s)",
					label(r.Out, tr.Names), label(r.In, tr.Names), Money(r.BudgetFreed), r.Viable, Points(r.Penalty))
			}
			rows = append(rows, []string{
				Count(u.Team), string(u.Style), Points(u.Points), Points(u.Cumulative), change, label(u.Captain, tr.Names),
			})
		}
		md.table([]string{"Team", "Style", "Episode Pts", "Cumulative", "Roster Change", "Captain"}, rows)
	}
	return md.String()
}

// best lists the leaderboard of single-season roster scores.
func best(md *markdown, entries []repository.Entry, names map[string]string) {
	if len(entries) == 0 {
		return
	}
	md.heading(2, "Best Rosters")
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			Count(e.Rank), Points(e.Score), e.Strategy, Count(e.Scenario), strings.Join(labels(e.Members, names), ", "),
		})
	}
	md.table([]string{"Rank", "Points", "Strategy", "Scenario", "Roster"}, rows)
}

// summary writes the shared strategy, category, event and percentile sections.
func summary(md *markdown, s *analysis.Summary) {
	md.heading(2, "Summary")
	md.bullet("Runs: %s", Count(s.TotalRuns))
	md.bullet("Average team total: %s", Points(s.TotalAvg))

	md.heading(2, "Strategies")
	rows := make([][]string, 0, len(s.Strategies))
	for _, k := range analysis.Ranked(s.Strategies) {
		st := s.Strategies[k]
		rows = append(rows, []string{k, Points(st.Mean), Points(st.Min), Points(st.Max), Count(st.Count)})
	}
	md.table([]string{"Strategy", "Mean", "Min", "Max", "Runs"}, rows)

	md.heading(2, "Categories")
	rows = rows[:0]
	for _, c := range scoring.Categories {
		rows = append(rows, []string{string(c), Points(s.CategoryAvg[c]), Pct(s.CategoryPct[c])})
	}
	md.table([]string{"Category", "Avg / team", "Share"}, rows)

	md.heading(2, "Events")
	rows = rows[:0]
	for _, e := range firedEvents(s) {
		t := s.EventTotals[e]
		rows = append(rows, []string{
			e.Label(), Count(t.Count), Points(perRun(float64(t.Count), s.TotalRuns)), Points(t.Points), Pct(s.EventPct[e]),
		})
	}
	md.table([]string{"Event", "Count", "Avg / team", "Points", "Share"}, rows)

	p := s.Percentiles
	md.heading(2, "Percentiles")
	md.table([]string{"P10", "P25", "P50", "P75", "P90"}, [][]string{{
		Points(p.P10), Points(p.P25), Points(p.P50), Points(p.P75), Points(p.P90),
	}})

	if len(s.Examples) > 0 {
		md.heading(2, "Examples")
		for _, ex := range s.Examples {
			md.bullet("%s: %s points, %s, scenario %d", ex.Label, Points(ex.Total), ex.Strategy, ex.ScenarioID)
		}
	}
}

func rankedStrategies(stats map[string]service.StrategyStats) []string {
	plain := make(map[string]analysis.Stats, len(stats))
	for k, v := range stats {
		plain[k] = v.Stats
	}
	return analysis.Ranked(plain)
}

func label(id string, names map[string]string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

func labels(ids []string, names map[string]string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = label(id, names)
	}
	return out
}

func signedMoney(v int) string {
	if v > 0 {
		return "+" + Money(v)
	}
	return Money(v)
}
