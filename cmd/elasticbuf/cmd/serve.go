package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run random traffic behind the monitor.",
	Long: "`serve` builds a stress bench with the monitor on and keeps the " +
		"engine paused until it is continued from the monitor. The monitor " +
		"keeps serving after the run until the process is interrupted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := parseCommonOptions(cmd.Flags())
		if err != nil {
			return err
		}

		opts.monitor = true

		c, err := parseStressConfig(cmd.Flags(), opts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runStress(cmd.OutOrStdout(), opts, c, true); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Run finished, press Ctrl-C to exit")
		<-ctx.Done()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addStressFlags(serveCmd.Flags())
}
