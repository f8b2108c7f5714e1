package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/oisee/hdlsim/pkg/sim"
)

func newRunCmd() *cobra.Command {
	var (
		ticks          uint64
		workers        int
		symmetric      bool
		multiDriver    bool
		maxDeltaCycles int
		verbose        bool
		outputPath     string
	)

	cmd := &cobra.Command{
		Use:   "run <demo>",
		Short: "Run a demo netlist for a number of ticks and print its final signal values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDemo(args[0])
			if err != nil {
				return err
			}

			reg := sim.NewRegistry()
			atexit.Register(reg.Cleanup)

			opts := sim.Options{
				Symmetric:             symmetric,
				MultiDriver:           multiDriver,
				WorkerThreads:         workers,
				MaxDeltaCyclesPerTick: maxDeltaCycles,
			}
			watches := d.build(reg, opts)

			s := sim.NewSimulator(reg, opts)
			runFn := s.Run
			if verbose {
				runFn = s.RunVerbose
			}
			if err := runFn(ticks); err != nil {
				return fmt.Errorf("run %s: %w", d.name, err)
			}

			rows := make([]reportRow, len(watches))
			for i, w := range watches {
				rows[i] = reportRow{Signal: w.name, Value: w.read()}
			}
			return emitReport(cmd, d.name, ticks, rows, outputPath)
		},
	}

	cmd.Flags().Uint64Var(&ticks, "ticks", 20, "number of ticks to run")
	cmd.Flags().IntVar(&workers, "workers", 0, "delta-cycle worker pool size (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&symmetric, "symmetric", false, "enable symmetric fixed-point rounding")
	cmd.Flags().BoolVar(&multiDriver, "multi-driver", false, "resolve multiple drivers on resolver-backed signals instead of keeping only the last drive")
	cmd.Flags().IntVar(&maxDeltaCycles, "max-delta-cycles", sim.DefaultMaxDeltaCycles, "delta cycles allowed per tick before reporting an oscillation")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print periodic progress while running")
	cmd.Flags().StringVar(&outputPath, "output", "", "write the final report as JSON to this path instead of stdout")

	return cmd
}
