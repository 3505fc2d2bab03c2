package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/schelling/internal/api"
	"github.com/talgya/schelling/internal/engine"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation on a timer, optionally serving it over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("interval") {
				cfg.Engine.Interval, _ = flags.GetDuration("interval")
			}
			if flags.Changed("max-ticks") {
				cfg.Engine.MaxTicks, _ = flags.GetUint64("max-ticks")
			}
			if flags.Changed("stop-on-convergence") {
				cfg.Engine.StopOnConvergence, _ = flags.GetBool("stop-on-convergence")
			}
			if flags.Changed("api") {
				cfg.API.Enabled, _ = flags.GetBool("api")
			}
			if flags.Changed("port") {
				cfg.API.Port, _ = flags.GetInt("port")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if cfg.Engine.Speed == 0 && !cfg.API.Enabled {
				return fmt.Errorf("invalid configuration: engine speed 0 starts paused and needs --api to resume")
			}

			sim, err := buildSimulation(cfg)
			if err != nil {
				return err
			}

			eng := engine.NewEngine()
			eng.Interval = cfg.Engine.Interval
			eng.SetSpeed(cfg.Engine.Speed)
			eng.MaxTicks = cfg.Engine.MaxTicks
			eng.StopOnConvergence = cfg.Engine.StopOnConvergence
			eng.OnTick = func(uint64) engine.StepResult { return sim.Step() }

			var server *api.Server
			if cfg.API.Enabled {
				server = &api.Server{
					Sim:      sim,
					Eng:      eng,
					Port:     cfg.API.Port,
					AdminKey: cfg.API.AdminKey,
				}
				if server.AdminKey == "" {
					slog.Warn("no admin key set; admin POST endpoints will be disabled")
				}
				server.Start()
				fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(cmd.OutOrStdout(), "Starting simulation... (Ctrl+C to stop)")
			eng.Run(ctx)

			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("API shutdown failed", "error", err)
				}
			}

			printSummary(cmd, sim.Stats())
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Duration("interval", engine.DefaultInterval, "Time between ticks")
	cmd.Flags().Uint64("max-ticks", 0, "Stop after this many ticks (0 = run until interrupted)")
	cmd.Flags().Bool("stop-on-convergence", false, "Stop once no agent can or needs to move")
	cmd.Flags().Bool("api", false, "Serve the grid over HTTP")
	cmd.Flags().Int("port", 8080, "HTTP API port")
	return cmd
}

func printSummary(cmd *cobra.Command, stats engine.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ticks: %d\n", stats.Tick)
	fmt.Fprintf(out, "agents: %s (a=%s, b=%s), empty: %s\n",
		humanize.Comma(int64(stats.Counts.Occupied())),
		humanize.Comma(int64(stats.Counts.A)),
		humanize.Comma(int64(stats.Counts.B)),
		humanize.Comma(int64(stats.Counts.Empty)))
	fmt.Fprintf(out, "unsatisfied: %s, total moves: %s\n",
		humanize.Comma(int64(stats.Unsatisfied)),
		humanize.Comma(int64(stats.TotalMoves)))
	fmt.Fprintf(out, "mean similarity: %.3f\n", stats.MeanSimilarity)
	if stats.Converged {
		fmt.Fprintf(out, "converged at tick %d\n", stats.ConvergedTick)
	}
}
