// Package cmd provides the command-line interface of elasticbuf.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "elasticbuf",
	Short: "Simulates and verifies a two-stage valid/ready elastic buffer.",
	Long: `elasticbuf runs a cycle-accurate model of a two-entry elastic ` +
		`buffer against scripted scenarios or random traffic. Flags can ` +
		`default from ELASTICBUF_* environment variables and from a .env ` +
		`file in the working directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadDotEnv(".env"); err != nil {
			return err
		}

		return applyEnv(cmd.Flags(), os.LookupEnv)
	},
}

func init() {
	addCommonFlags(rootCmd.PersistentFlags())
}

func addCommonFlags(f *pflag.FlagSet) {
	f.String("freq", "100MHz", "Clock frequency of the benches")
	f.String("trace-db", "",
		"Record transfers into the given SQLite database (name without "+
			"extension, \"auto\" picks a unique one)")
	f.Bool("trace-signals", false,
		"With --trace-db, record the signals of every cycle as well")
	f.String("vcd", "", "Dump a VCD waveform into the given file")
	f.BoolP("verbose", "v", false, "Log every transfer to stderr")
	f.Bool("log-events", false, "Log every engine event to stderr")
	f.Bool("monitor", false, "Serve the simulation over HTTP")
	f.Int("monitor-port", 0, "Port of the monitor, 0 picks a free one")
	f.Bool("open-browser", false, "With --monitor, open the monitor page")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
