// Package commands holds the castaway command tree.
package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okian/castaway/internal/adapters/export"
	service "github.com/okian/castaway/internal/app"
	"github.com/okian/castaway/internal/config"
	"github.com/okian/castaway/pkg/logger"
	"github.com/okian/castaway/pkg/metrics"
)

var (
	// Version and Commit are set at build time via ldflags.
	Version = "dev"
	Commit  = "none"
)

// env is what every subcommand runs against once the root has loaded
// configuration.
type env struct {
	cfg *config.Config
	sim *config.Simulation
	svc *service.Service
	log logger.Logger
	out io.Writer
}

// rootFlags override process configuration when set.
type rootFlags struct {
	configDir   string
	outputDir   string
	logLevel    string
	logFile     string
	metricsPath string
	seed        int64
	workers     int
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var (
		flags rootFlags
		e     env
	)
	root := &cobra.Command{
		Use:   "castaway",
		Short: "Monte Carlo simulation and price calibration for survival fantasy leagues",
		Long: `castaway generates randomized seasons, scores fantasy rosters against them,
prices contestants from expected points and replays prices episode by episode
to test how well replacement and roster validity hold up.`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd, &flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return e.teardown(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "directory with contestants, scoring and pricing files")
	pf.StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for reports and exports")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&flags.logFile, "log-file", "", "rotating JSON log file")
	pf.StringVar(&flags.metricsPath, "metrics", "", "write a Prometheus textfile here on exit")
	pf.Int64Var(&flags.seed, "seed", 0, "base random seed")
	pf.IntVarP(&flags.workers, "workers", "w", 0, "simulation workers (0 = one per CPU)")

	root.AddCommand(
		newScenarioCommand(&e),
		newExpectedCommand(&e),
		newPriceCommand(&e),
		newSimulateCommand(&e),
		newDynamicCommand(&e),
		newFullCommand(&e),
		newTraceCommand(&e),
		newExportCommand(&e),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command, f *rootFlags) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	if fs.Changed("config-dir") {
		cfg.ConfigDir = f.configDir
	}
	if fs.Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if fs.Changed("metrics") {
		cfg.MetricsPath = f.metricsPath
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []logger.Option{logger.WithLevel(cfg.LogLevel)}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile))
	}
	if err := logger.Init(opts...); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	e.log = logger.Named("cli")

	sim, err := config.LoadSimulation(ctx, cfg.ConfigDir, cfg.Seed)
	if err != nil {
		return err
	}
	if sim.SyntheticCast {
		e.log.Warn(ctx, "no contestants file, using a synthetic cast",
			logger.String("config_dir", cfg.ConfigDir),
			logger.Int("contestants", len(sim.Cast)),
		)
	}
	svc, err := service.New(sim,
		service.WithWorkerCount(cfg.Workers),
		service.WithQueueSize(cfg.QueueSize),
		service.WithLogger(logger.Named("service")),
	)
	if err != nil {
		return err
	}

	e.cfg, e.sim, e.svc = cfg, sim, svc
	e.out = cmd.OutOrStdout()
	e.log.Debug(ctx, "configuration loaded",
		logger.String("config_dir", cfg.ConfigDir),
		logger.String("output_dir", cfg.OutputDir),
		logger.Int64("seed", cfg.Seed),
		logger.Int("workers", cfg.Workers),
	)
	return nil
}

func (e *env) teardown(cmd *cobra.Command) error {
	if e.cfg != nil && e.cfg.MetricsPath != "" {
		if err := metrics.WriteTextfile(e.cfg.MetricsPath); err != nil {
			return err
		}
		e.log.Info(cmd.Context(), "metrics written", logger.String("path", e.cfg.MetricsPath))
	}
	return logger.Sync()
}

// path resolves name inside the output directory.
func (e *env) path(name string) string {
	return filepath.Join(e.cfg.OutputDir, name)
}

// save writes a JSON result and a markdown report next to it.
func (e *env) save(cmd *cobra.Command, jsonName string, v any, mdName, md string) error {
	if err := export.WriteJSON(e.path(jsonName), v); err != nil {
		return err
	}
	if mdName != "" {
		if err := export.WriteText(e.path(mdName), md); err != nil {
			return err
		}
	}
	e.log.Info(cmd.Context(), "results written",
		logger.String("json", e.path(jsonName)),
		logger.String("report", mdName),
	)
	return nil
}

// pick returns v when the flag was set, otherwise fallback.
func pick(cmd *cobra.Command, name string, v, fallback int) int {
	if cmd.Flags().Changed(name) {
		return v
	}
	return fallback
}
