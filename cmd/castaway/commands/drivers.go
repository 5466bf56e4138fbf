package commands

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/castaway/internal/adapters/export"
	service "github.com/okian/castaway/internal/app"
	"github.com/okian/castaway/internal/report"
	"github.com/okian/castaway/pkg/logger"
)

// Output file names.
const (
	pointsJSON   = "points_analysis.json"
	pointsMD     = "points_report.md"
	expectedJSON = "expected_points.json"
	pricingJSON  = "pricing_analysis.json"
	pricingMD    = "pricing_report.md"
	pricesYAML   = "prices.yaml"
	dynamicJSON  = "dynamic_pricing_analysis.json"
	dynamicMD    = "dynamic_pricing_report.md"
	fullJSON     = "full_simulation_analysis.json"
	fullMD       = "full_simulation_report.md"
	traceJSON    = "episode_trace.json"
	traceMD      = "episode_trace_report.md"
	seedDir      = "seed"
	defaultTeams = 3
)

func newScenarioCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Generate one season and write it as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := e.svc.Scenario(e.cfg.Seed)
			path := e.path(fmt.Sprintf("scenario_%d.yaml", sc.Seed))
			if err := export.WriteScenarioYAML(path, &sc); err != nil {
				return err
			}
			names := report.Names(e.sim.Cast)
			rows := make([][]string, 0, len(sc.BootOrder))
			for i, id := range sc.BootOrder {
				rows = append(rows, []string{report.Count(i + 1), id, names[id]})
			}
			fmt.Fprint(e.out, report.Section(
				fmt.Sprintf("Season %d: swap at %d, merge at %d", sc.Seed, sc.SwapAt, sc.MergeAt),
				report.Table([]string{"Out", "ID", "Name"}, rows, 0),
			))
			e.log.Info(cmd.Context(), "scenario written",
				logger.String("path", path),
				logger.Int("episodes", len(sc.Episodes)),
			)
			return nil
		},
	}
}

func newExpectedCommand(e *env) *cobra.Command {
	var runs int
	cmd := &cobra.Command{
		Use:   "expected",
		Short: "Estimate each contestant's expected season points",
		RunE: func(cmd *cobra.Command, _ []string) error {
			expected, err := e.svc.Expected(cmd.Context(), pick(cmd, "runs", runs, e.cfg.ExpectedRuns), e.cfg.Seed)
			if err != nil {
				return err
			}
			if err := export.WriteJSON(e.path(expectedJSON), expected); err != nil {
				return err
			}
			ids := e.sim.Cast.IDs()
			slices.SortStableFunc(ids, func(a, b string) int { return cmp.Compare(expected[b], expected[a]) })
			names := report.Names(e.sim.Cast)
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, []string{id, names[id], report.Points(expected[id])})
			}
			fmt.Fprint(e.out, report.Section("Expected points", report.Table([]string{"ID", "Name", "Expected"}, rows, 2)))
			return nil
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 0, "scenarios per estimate (default from config)")
	return cmd
}

func newPriceCommand(e *env) *cobra.Command {
	var runs, scenarios, perStrategy, sample int
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price the cast, count valid rosters and score budget rosters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := service.PricingOptions{
				ExpectedRuns: pick(cmd, "runs", runs, e.cfg.ExpectedRuns),
				Scenarios:    pick(cmd, "scenarios", scenarios, e.cfg.PricingScenarios),
				PerStrategy:  pick(cmd, "per-strategy", perStrategy, e.cfg.RostersPerStrategy),
				Sample:       pick(cmd, "sample", sample, e.cfg.SampleRosters),
			}
			rep, err := e.svc.Pricing(cmd.Context(), opts, e.cfg.Seed)
			if err != nil {
				return err
			}
			if err := export.WritePricesYAML(e.path(pricesYAML), rep.Market.Prices); err != nil {
				return err
			}
			if err := e.save(cmd, pricingJSON, rep, pricingMD, report.PricingMarkdown(rep, e.sim.Cast)); err != nil {
				return err
			}
			fmt.Fprint(e.out, report.Section("Prices", report.PriceTable(e.sim.Cast, rep.Market.Prices, rep.Market.Expected)))
			fmt.Fprint(e.out, report.Section(
				fmt.Sprintf("Strategies (%s valid rosters, %s excluded)", report.Count(rep.Counts.Total), report.Pct(rep.ExcludedPct)),
				report.StrategyTable(rep.Summary.Strategies),
			))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&runs, "runs", 0, "expected-points scenarios (default from config)")
	f.IntVar(&scenarios, "scenarios", 0, "scenarios to score rosters over (default from config)")
	f.IntVar(&perStrategy, "per-strategy", 0, "rosters per budget strategy (default from config)")
	f.IntVar(&sample, "sample", 0, "score this many unique valid rosters instead of strategy rosters")
	return cmd
}

func newSimulateCommand(e *env) *cobra.Command {
	var scenarios, perStrategy int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Score trait rosters over many seasons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := e.svc.Points(cmd.Context(),
				pick(cmd, "scenarios", scenarios, e.cfg.ScenarioRuns),
				pick(cmd, "per-strategy", perStrategy, e.cfg.RostersPerStrategy),
				e.cfg.Seed,
			)
			if err != nil {
				return err
			}
			if err := e.save(cmd, pointsJSON, rep, pointsMD, report.PointsMarkdown(rep)); err != nil {
				return err
			}
			fmt.Fprint(e.out, report.Section("Strategies", report.StrategyTable(rep.Summary.Strategies)))
			fmt.Fprint(e.out, report.Section("Categories", report.CategoryTable(&rep.Summary)))
			fmt.Fprint(e.out, report.Section("Events", report.EventTable(&rep.Summary)))
			return nil
		},
	}
	cmd.Flags().IntVar(&scenarios, "scenarios", 0, "seasons to simulate (default from config)")
	cmd.Flags().IntVar(&perStrategy, "per-strategy", 0, "rosters per trait strategy (default from config)")
	return cmd
}

func newDynamicCommand(e *env) *cobra.Command {
	var scenarios, runs int
	cmd := &cobra.Command{
		Use:   "dynamic",
		Short: "Replay prices episode by episode and measure replacement viability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := e.svc.Dynamic(cmd.Context(),
				pick(cmd, "scenarios", scenarios, e.cfg.DynamicScenarios),
				pick(cmd, "runs", runs, e.cfg.ExpectedRuns),
				e.cfg.Seed,
			)
			if err != nil {
				return err
			}
			if err := e.save(cmd, dynamicJSON, rep, dynamicMD, report.DynamicMarkdown(rep, e.sim.Cast)); err != nil {
				return err
			}
			fmt.Fprint(e.out, report.Section("Replacement viability", report.Table(
				[]string{"Events", "Avg viable", "Min", "Zero", "3+ viable", "Merge valid", "Target"},
				[][]string{{
					report.Count(rep.Events), report.Points(rep.AvgViable), report.Count(rep.MinViable),
					report.Count(rep.ZeroViable), report.Pct(rep.ThreePlusPct), report.Pct(rep.AvgMergePct), report.Pct(rep.MergeTarget),
				}},
				0, 1, 2, 3, 4, 5, 6,
			)))
			return nil
		},
	}
	cmd.Flags().IntVar(&scenarios, "scenarios", 0, "seasons to replay (default from config)")
	cmd.Flags().IntVar(&runs, "runs", 0, "expected-points scenarios (default from config)")
	return cmd
}

func newFullCommand(e *env) *cobra.Command {
	var scenarios, perStrategy, runs int
	cmd := &cobra.Command{
		Use:   "full",
		Short: "Play budget rosters through whole seasons with and without replacements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := e.svc.Full(cmd.Context(),
				pick(cmd, "scenarios", scenarios, e.cfg.FullScenarios),
				pick(cmd, "per-strategy", perStrategy, e.cfg.RostersPerStrategy),
				pick(cmd, "runs", runs, e.cfg.ExpectedRuns),
				e.cfg.Seed,
			)
			if err != nil {
				return err
			}
			if err := e.save(cmd, fullJSON, rep, fullMD, report.FullMarkdown(rep)); err != nil {
				return err
			}
			fmt.Fprint(e.out, report.Section("Play styles", report.StrategyTable(rep.Styles)))
			fmt.Fprint(e.out, report.Section("Strategy and style", report.StrategyTable(rep.Summary.Strategies)))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&scenarios, "scenarios", 0, "seasons to play (default from config)")
	f.IntVar(&perStrategy, "per-strategy", 0, "rosters per budget strategy (default from config)")
	f.IntVar(&runs, "runs", 0, "expected-points scenarios (default from config)")
	return cmd
}

func newTraceCommand(e *env) *cobra.Command {
	var teams, runs int
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Trace sample teams and prices week by week through one season",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tr, err := e.svc.Trace(cmd.Context(), teams, pick(cmd, "runs", runs, e.cfg.ExpectedRuns), e.cfg.Seed)
			if err != nil {
				return err
			}
			if err := e.save(cmd, traceJSON, tr, traceMD, report.TraceMarkdown(tr)); err != nil {
				return err
			}
			rows := make([][]string, 0, len(tr.Teams))
			for i, t := range tr.Teams {
				rows = append(rows, []string{
					report.Count(i + 1), t.Strategy, report.Money(t.InitialCost),
					report.Points(t.FixedPoints), report.Points(t.ReplacePoints),
				})
			}
			fmt.Fprint(e.out, report.Section(
				fmt.Sprintf("Trace of season %d (%d episodes)", tr.Seed, len(tr.Episodes)),
				report.Table([]string{"Team", "Strategy", "Cost", "Fixed", "Replace"}, rows, 0, 2, 3, 4),
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&teams, "teams", defaultTeams, "sample teams to trace")
	cmd.Flags().IntVar(&runs, "runs", 0, "expected-points scenarios (default from config)")
	return cmd
}

func newExportCommand(e *env) *cobra.Command {
	var runs, episodes int
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the seed bundle: priced contestants, opening episodes and scoring",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mkt, err := e.svc.Market(ctx, pick(cmd, "runs", runs, e.cfg.ExpectedRuns), e.cfg.Seed)
			if err != nil {
				return err
			}
			sc := e.svc.Scenario(e.cfg.Seed)
			b := export.NewSeedBundle(uuid.NewString(), e.sim.Cast, mkt.Prices, &sc, e.sim.Scoring, episodes)
			if dir == "" {
				dir = e.path(seedDir)
			}
			if err := b.Write(dir); err != nil {
				return err
			}
			if err := export.WriteScenarioYAML(filepath.Join(dir, fmt.Sprintf("scenario_%d.yaml", sc.Seed)), &sc); err != nil {
				return err
			}
			e.log.Info(ctx, "seed bundle written",
				logger.String("dir", dir),
				logger.String("run_id", b.Manifest.RunID),
				logger.Int("contestants", b.Manifest.Contestants),
				logger.Int("episodes", b.Manifest.Episodes),
			)
			fmt.Fprintf(e.out, "seed bundle written to %s (%d contestants, %d episodes)\n",
				dir, b.Manifest.Contestants, b.Manifest.Episodes)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&runs, "runs", 0, "expected-points scenarios (default from config)")
	f.IntVar(&episodes, "episodes", export.DefaultSeedEpisodes, "pre-merge episodes to include")
	f.StringVar(&dir, "dir", "", "bundle directory (default <output-dir>/seed)")
	return cmd
}
