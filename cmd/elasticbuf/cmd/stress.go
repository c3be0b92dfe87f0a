package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/elasticbuf/verification"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run random traffic through the buffer.",
	Long: "`stress` drives the buffer with a random producer and a random " +
		"consumer, checks every cycle, and reports the transfer counts.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := parseCommonOptions(cmd.Flags())
		if err != nil {
			return err
		}

		c, err := parseStressConfig(cmd.Flags(), opts)
		if err != nil {
			return err
		}

		return runStress(cmd.OutOrStdout(), opts, c, false)
	},
}

func init() {
	rootCmd.AddCommand(stressCmd)
	addStressFlags(stressCmd.Flags())
}

func addStressFlags(f *pflag.FlagSet) {
	d := verification.DefaultStressConfig()

	f.Int64("seed", d.Seed, "Seed of the random producer and consumer")
	f.Uint64("cycles", d.Cycles, "Cycles to run after reset, 0 for no limit")
	f.Uint64("elements", d.Elements,
		"Elements to send, 0 for no limit")
	f.Float64("input-rate", d.InputRate,
		"Probability that the producer offers an element in a cycle")
	f.Float64("output-rate", d.OutputRate,
		"Probability that the consumer is ready in a cycle")
	f.Bool("wait-for-ready", d.WaitForReady,
		"Make the producer wait for input_ready before raising valid")
	f.Int("width", d.Width, "Width of the data bus in bits")
	f.Uint64("reset-cycles", d.ResetCycles,
		"Cycles reset is held at the start")
}

func parseStressConfig(
	flags *pflag.FlagSet,
	opts commonOptions,
) (verification.StressConfig, error) {
	c := verification.DefaultStressConfig()
	c.Freq = opts.freq

	var (
		errs []error
		err  error
	)

	get := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.Seed, err = flags.GetInt64("seed")
	get(err)
	c.Cycles, err = flags.GetUint64("cycles")
	get(err)
	c.Elements, err = flags.GetUint64("elements")
	get(err)
	c.InputRate, err = flags.GetFloat64("input-rate")
	get(err)
	c.OutputRate, err = flags.GetFloat64("output-rate")
	get(err)
	c.WaitForReady, err = flags.GetBool("wait-for-ready")
	get(err)
	c.Width, err = flags.GetInt("width")
	get(err)
	c.ResetCycles, err = flags.GetUint64("reset-cycles")
	get(err)

	if len(errs) > 0 {
		return c, errors.Join(errs...)
	}

	return c, c.Validate()
}

// runStress runs one stress bench. With paused set, the engine waits for the
// monitor to continue it.
func runStress(
	out io.Writer,
	opts commonOptions,
	c verification.StressConfig,
	paused bool,
) error {
	sim, terminate, err := opts.buildSimulation(c.Width)
	if err != nil {
		return err
	}

	bench, err := verification.BuildStressBench(sim.Engine(), "Stress", c)
	if err != nil {
		return errors.Join(err, terminate())
	}

	sim.RegisterBench(bench)

	if paused {
		sim.Engine().Pause()
		fmt.Fprintf(out, "Paused, continue from %s\n", sim.MonitorURL())
	}

	runErr := bench.Run()

	printReport(out, bench)

	if termErr := terminate(); termErr != nil {
		return termErr
	}

	return runErr
}

func printReport(out io.Writer, b *verification.Bench) {
	r := b.Scoreboard().Report()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "bench\t%s\n", b.Name())
	fmt.Fprintf(w, "cycles\t%d\n", r.Cycles)
	fmt.Fprintf(w, "reset cycles\t%d\n", r.ResetCycles)
	fmt.Fprintf(w, "accepted\t%d\n", r.Accepted)
	fmt.Fprintf(w, "drained\t%d\n", r.Drained)
	fmt.Fprintf(w, "rejected\t%d\n", r.Rejected)
	fmt.Fprintf(w, "discarded\t%d\n", r.Discarded)
	fmt.Fprintf(w, "backpressure cycles\t%d\n", r.BackpressureCycles)
	fmt.Fprintf(w, "max occupancy\t%d\n", r.MaxOccupancy)
	fmt.Fprintf(w, "throughput\t%.4f\n", r.Throughput())
	fmt.Fprintf(w, "violations\t%d\n", len(b.Scoreboard().Violations()))
	w.Flush()
}
