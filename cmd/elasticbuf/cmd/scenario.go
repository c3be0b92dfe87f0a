package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/verification"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [name...]",
	Short: "Run scripted scenarios.",
	Long: "`scenario` runs the named built-in scenarios, or all of them when " +
		"no name is given. `scenario --file path.yaml` runs user scenarios " +
		"instead. `scenario --list` prints the built-in ones.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return listScenarios()
		}

		files, _ := cmd.Flags().GetStringSlice("file")

		scenarios, err := selectScenarios(args, files)
		if err != nil {
			return err
		}

		opts, err := parseCommonOptions(cmd.Flags())
		if err != nil {
			return err
		}

		return runScenarios(opts, scenarios)
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
	scenarioCmd.Flags().StringSliceP("file", "f", nil,
		"Run the scenarios in the given YAML files")
	scenarioCmd.Flags().Bool("list", false, "List the built-in scenarios")
}

func listScenarios() error {
	scenarios, err := verification.BuiltinScenarios()
	if err != nil {
		return err
	}

	for _, s := range scenarios {
		fmt.Printf("%-20s %s\n", s.Name, strings.TrimSpace(s.Description))
	}

	return nil
}

func selectScenarios(
	names []string,
	files []string,
) ([]verification.Scenario, error) {
	if len(files) > 0 {
		if len(names) > 0 {
			return nil, errors.New("scenario names and --file are exclusive")
		}

		scenarios := make([]verification.Scenario, 0, len(files))
		for _, f := range files {
			s, err := verification.LoadScenarioFile(f)
			if err != nil {
				return nil, err
			}

			scenarios = append(scenarios, s)
		}

		return scenarios, nil
	}

	if len(names) == 0 {
		return verification.BuiltinScenarios()
	}

	scenarios := make([]verification.Scenario, 0, len(names))
	for _, name := range names {
		s, err := verification.BuiltinScenario(name)
		if err != nil {
			return nil, err
		}

		scenarios = append(scenarios, s)
	}

	return scenarios, nil
}

// waveformWidth is the widest data bus among the scenarios.
func waveformWidth(scenarios []verification.Scenario) int {
	width := elasticbuf.DefaultWidth
	for _, s := range scenarios {
		if s.Width > width {
			width = s.Width
		}
	}

	return width
}

func runScenarios(
	opts commonOptions,
	scenarios []verification.Scenario,
) error {
	sim, terminate, err := opts.buildSimulation(waveformWidth(scenarios))
	if err != nil {
		return err
	}

	runner := verification.MakeScenarioRunner().
		WithEngine(sim.Engine()).
		WithFreq(sim.Freq()).
		WithBenchCallback(sim.RegisterBench)

	var errs []error

	for _, s := range scenarios {
		result, err := runner.Run(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("scenario %s: %w", s.Name, err))
			continue
		}

		if checkErr := result.Err(); checkErr != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s\n%v\n", s.Name, checkErr)
			errs = append(errs, fmt.Errorf("scenario %s failed", s.Name))

			continue
		}

		fmt.Printf("PASS %s (%d cycles)\n", s.Name, result.Report.Cycles)
	}

	errs = append(errs, terminate())

	return errors.Join(errs...)
}
