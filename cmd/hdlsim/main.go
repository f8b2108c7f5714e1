// Command hdlsim drives the sim package's netlists from the command line:
// run a demo for a fixed number of ticks, trace selected signals tick by
// tick, or benchmark several worker-count configurations side by side.
// Grounded on z80opt's cobra layout (root command + one file of flag
// variables and a RunE closure per subcommand).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hdlsim",
		Short: "Discrete-event digital-logic simulator",
		Long:  "hdlsim builds and runs small fixed-point/4-valued-logic netlists from pkg/stdlib's built-in demo catalogue.",
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTraceCmd())
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(newListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	atexit.Exit(0)
}
