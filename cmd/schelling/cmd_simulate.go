package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// maxPrintSize caps the grid side printed by --print.
const maxPrintSize = 100

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a fixed number of ticks without a timer and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ticks, _ := cmd.Flags().GetUint64("ticks")
			untilConverged, _ := cmd.Flags().GetBool("until-converged")
			printGrid, _ := cmd.Flags().GetBool("print")

			sim, err := buildSimulation(cfg)
			if err != nil {
				return err
			}

			for i := uint64(0); i < ticks; i++ {
				res := sim.Step()
				if untilConverged && res.Converged() {
					break
				}
			}

			printSummary(cmd, sim.Stats())
			if printGrid {
				g := sim.Snapshot()
				if g.Size() > maxPrintSize {
					return fmt.Errorf("grid is %dx%d; --print supports up to %dx%d", g.Size(), g.Size(), maxPrintSize, maxPrintSize)
				}
				fmt.Fprint(cmd.OutOrStdout(), g.String())
			}
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Uint64("ticks", 100, "Maximum number of ticks to run")
	cmd.Flags().Bool("until-converged", false, "Stop early once the grid converges")
	cmd.Flags().Bool("print", false, "Print the final grid (A, B, .)")
	return cmd
}
