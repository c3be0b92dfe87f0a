package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/sarchlab/elasticbuf/simulation"
	"github.com/sarchlab/elasticbuf/timing"
)

// EnvPrefix starts the name of every environment variable that sets a flag
// default.
const EnvPrefix = "ELASTICBUF_"

// envName maps a flag name to its environment variable, e.g. monitor-port to
// ELASTICBUF_MONITOR_PORT.
func envName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// loadDotEnv loads the variables of a .env file into the environment.
// Variables already set are kept. A missing file is not an error.
func loadDotEnv(filename string) error {
	err := godotenv.Load(filename)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", filename, err)
	}

	return nil
}

// applyEnv sets every flag that was not given on the command line from its
// environment variable.
func applyEnv(
	flags *pflag.FlagSet,
	lookup func(string) (string, bool),
) error {
	var errs []error

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}

		value, found := lookup(envName(f.Name))
		if !found {
			return
		}

		if err := f.Value.Set(value); err != nil {
			errs = append(errs,
				fmt.Errorf("%s=%q: %w", envName(f.Name), value, err))
		}
	})

	return errors.Join(errs...)
}

// commonOptions are the flags shared by all the commands.
type commonOptions struct {
	freq         timing.FreqInHz
	traceDB      string
	traceSignals bool
	vcd          string
	verbose      bool
	logEvents    bool
	monitor      bool
	monitorPort  int
	openBrowser  bool
}

func parseCommonOptions(flags *pflag.FlagSet) (commonOptions, error) {
	var (
		o    commonOptions
		errs []error
	)

	get := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	freq, err := flags.GetString("freq")
	get(err)

	if err == nil {
		o.freq, err = timing.ParseFreq(freq)
		get(err)
	}

	o.traceDB, err = flags.GetString("trace-db")
	get(err)
	o.traceSignals, err = flags.GetBool("trace-signals")
	get(err)
	o.vcd, err = flags.GetString("vcd")
	get(err)
	o.verbose, err = flags.GetBool("verbose")
	get(err)
	o.logEvents, err = flags.GetBool("log-events")
	get(err)
	o.monitor, err = flags.GetBool("monitor")
	get(err)
	o.monitorPort, err = flags.GetInt("monitor-port")
	get(err)
	o.openBrowser, err = flags.GetBool("open-browser")
	get(err)

	return o, errors.Join(errs...)
}

// buildSimulation builds a simulation as the options describe. The returned
// function terminates the simulation and closes the waveform file.
func (o commonOptions) buildSimulation(
	width int,
) (*simulation.Simulation, func() error, error) {
	b := simulation.MakeBuilder().WithFreq(o.freq)

	switch o.traceDB {
	case "":
	case "auto":
		b = b.WithTraceDB("", o.traceSignals)
	default:
		b = b.WithTraceDB(o.traceDB, o.traceSignals)
	}

	var vcdFile io.WriteCloser

	if o.vcd != "" {
		f, err := os.Create(o.vcd)
		if err != nil {
			return nil, nil, err
		}

		vcdFile = f
		b = b.WithWaveform(f, width)
	}

	if o.verbose {
		b = b.WithTransferLog(log.New(os.Stderr, "", 0))
	}

	if o.logEvents {
		b = b.WithEventLog(log.New(os.Stderr, "", 0))
	}

	if o.monitor {
		b = b.WithMonitor(o.monitorPort, o.openBrowser)
	}

	s := b.Build()

	terminate := func() error {
		err := s.Terminate()
		if vcdFile != nil {
			err = errors.Join(err, vcdFile.Close())
		}

		return err
	}

	return s, terminate, nil
}
