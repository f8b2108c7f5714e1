package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/oisee/hdlsim/pkg/sim"
)

func newTraceCmd() *cobra.Command {
	var (
		ticks   uint64
		signals string
	)

	cmd := &cobra.Command{
		Use:   "trace <demo>",
		Short: "Run a demo netlist and print every watched signal's value on every tick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDemo(args[0])
			if err != nil {
				return err
			}

			reg := sim.NewRegistry()
			opts := sim.DefaultOptions()
			watches := d.build(reg, opts)

			if signals != "" {
				wanted := make(map[string]bool)
				for _, n := range strings.Split(signals, ",") {
					wanted[strings.TrimSpace(n)] = true
				}
				filtered := watches[:0]
				for _, w := range watches {
					if wanted[w.name] {
						filtered = append(filtered, w)
					}
				}
				watches = filtered
			}
			if len(watches) == 0 {
				return fmt.Errorf("no matching signals to trace for demo %q", d.name)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetTitle(fmt.Sprintf("%s trace", d.name))
			header := table.Row{"tick"}
			for _, w := range watches {
				header = append(header, w.name)
			}
			tw.AppendHeader(header)

			s := sim.NewSimulator(reg, opts)
			for i := uint64(0); i < ticks; i++ {
				if err := s.Run(1); err != nil {
					return fmt.Errorf("trace %s at tick %d: %w", d.name, i, err)
				}
				row := table.Row{s.Tick()}
				for _, w := range watches {
					row = append(row, w.read())
				}
				tw.AppendRow(row)
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().Uint64Var(&ticks, "ticks", 20, "number of ticks to trace")
	cmd.Flags().StringVar(&signals, "signals", "", "comma-separated list of signal names to trace (default: all watched signals)")

	return cmd
}
