package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oisee/hdlsim/pkg/report"
	"github.com/oisee/hdlsim/pkg/sim"
)

func newBenchCmd() *cobra.Command {
	var (
		ticks   uint64
		workers string
	)

	cmd := &cobra.Command{
		Use:   "bench <demo>",
		Short: "Time a demo netlist across several worker-pool sizes, run concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDemo(args[0])
			if err != nil {
				return err
			}
			configs, err := parseWorkerCounts(workers)
			if err != nil {
				return err
			}

			entries := make([]report.BenchEntry, len(configs))

			// Each configuration builds its own Registry/Simulator, so the
			// trials are fully independent and can race to completion —
			// errgroup.Group collects the first error, same as
			// cmd/z80opt's use of RunE to stop at the first failure,
			// generalized to run several trials side by side instead of
			// one at a time.
			var g errgroup.Group
			for i, w := range configs {
				i, w := i, w
				g.Go(func() error {
					reg := sim.NewRegistry()
					opts := sim.DefaultOptions()
					opts.WorkerThreads = w
					d.build(reg, opts)

					s := sim.NewSimulator(reg, opts)
					start := time.Now()
					if err := s.Run(ticks); err != nil {
						return fmt.Errorf("bench %s workers=%d: %w", d.name, w, err)
					}
					elapsed := time.Since(start)

					var ticksPerUS float64
					if us := elapsed.Microseconds(); us > 0 {
						ticksPerUS = float64(ticks) / float64(us)
					}
					entries[i] = report.BenchEntry{
						Workers:    w,
						Ticks:      ticks,
						Elapsed:    elapsed.String(),
						TicksPerUS: ticksPerUS,
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			report.WriteBenchTable(os.Stdout, fmt.Sprintf("%s bench", d.name), entries)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&ticks, "ticks", 10000, "number of ticks to run per configuration")
	cmd.Flags().StringVar(&workers, "workers", "1,2,4", "comma-separated list of worker-pool sizes to benchmark")

	return cmd
}

func parseWorkerCounts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid worker count %q: must be a positive integer", p)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("--workers must list at least one positive integer")
	}
	return out, nil
}
