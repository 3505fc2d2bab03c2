// Command schelling runs the Schelling segregation model.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/schelling/internal/config"
	"github.com/talgya/schelling/internal/engine"
	"github.com/talgya/schelling/internal/entropy"
	"github.com/talgya/schelling/internal/logging"
	"github.com/talgya/schelling/internal/world"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schelling",
		Short: "Schelling segregation model simulator",
		Long: `schelling simulates two agent populations on a square grid.

Each tick every agent checks whether enough of its neighbours share its type;
unsatisfied agents move to random empty cells until the grid settles.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSimulateCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "schelling version %s\n", version)
		},
	}
}

// addSimulationFlags registers the flags shared by run and simulate.
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("locations", 0, "Total grid locations (must be a perfect square)")
	cmd.Flags().Float64("frac-a", 0, "Fraction of type A agents")
	cmd.Flags().Float64("frac-b", 0, "Fraction of type B agents")
	cmd.Flags().Float64("threshold", 0, "Same-type neighbour fraction needed to stay")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = random)")
	cmd.Flags().String("layout", "", "Initial layout: random or noise")
	cmd.Flags().String("layout-file", "", "Load the initial grid from an A/B/. text file")
}

// loadConfig reads the config file and environment, then applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("locations") {
		cfg.World.Locations, _ = flags.GetInt("locations")
	}
	if flags.Changed("frac-a") {
		cfg.World.FracA, _ = flags.GetFloat64("frac-a")
	}
	if flags.Changed("frac-b") {
		cfg.World.FracB, _ = flags.GetFloat64("frac-b")
	}
	if flags.Changed("threshold") {
		cfg.Simulation.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("layout") {
		layout, _ := flags.GetString("layout")
		cfg.World.Layout = world.Layout(layout)
	}
	if flags.Changed("layout-file") {
		cfg.Simulation.LayoutFile, _ = flags.GetString("layout-file")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	slog.SetDefault(logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()))
	return cfg, nil
}

// buildSimulation creates the simulation from a layout file or a generated grid.
func buildSimulation(cfg *config.Config) (*engine.Simulation, error) {
	rng, seed := entropy.NewRand(cfg.Simulation.Seed)

	var sim *engine.Simulation
	if cfg.Simulation.LayoutFile != "" {
		data, err := os.ReadFile(cfg.Simulation.LayoutFile)
		if err != nil {
			return nil, fmt.Errorf("reading layout file: %w", err)
		}
		g, err := world.ParseGrid(string(data))
		if err != nil {
			return nil, fmt.Errorf("loading layout %s: %w", cfg.Simulation.LayoutFile, err)
		}
		sim = engine.NewSimulation(g, cfg.Simulation.Threshold, rng)
	} else {
		var err error
		sim, err = engine.Initialize(cfg.World, cfg.Simulation.Threshold, rng)
		if err != nil {
			return nil, fmt.Errorf("initialize simulation: %w", err)
		}
	}
	sim.ReportEvery = cfg.Simulation.ReportEvery

	counts := sim.Stats().Counts
	slog.Info("simulation ready",
		"run_id", sim.RunID,
		"seed", seed,
		"size", sim.Size(),
		"a", counts.A,
		"b", counts.B,
		"empty", counts.Empty,
		"threshold", cfg.Simulation.Threshold,
	)
	return sim, nil
}
