// Package simulation wires benches to the services around them: the engine,
// recording, waveforms, logging, metrics, and the monitor.
package simulation

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/elasticbuf/datarecording"
	"github.com/sarchlab/elasticbuf/monitoring"
	"github.com/sarchlab/elasticbuf/timing"
	"github.com/sarchlab/elasticbuf/tracing"
	"github.com/sarchlab/elasticbuf/verification"
)

// A Simulation owns one engine and the benches that run on it.
type Simulation struct {
	id     string
	engine *timing.SerialEngine
	freq   timing.FreqInHz

	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	tracers      []tracing.Tracer
	monitor      *monitoring.Monitor
	monitorURL   string
	transferLog  *log.Logger

	benches    []*verification.Bench
	benchIndex map[string]int
	terminated bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the engine used in the simulation.
func (s *Simulation) Engine() *timing.SerialEngine {
	return s.engine
}

// Freq returns the clock frequency of the benches.
func (s *Simulation) Freq() timing.FreqInHz {
	return s.freq
}

// DataRecorder returns the recorder, or nil if the simulation does not
// record.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor, or nil if the simulation is not monitored.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address the monitor serves on.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// RegisterBench attaches the services of the simulation to a bench. Bench
// names must be unique.
func (s *Simulation) RegisterBench(b *verification.Bench) {
	name := b.Name()
	if _, found := s.benchIndex[name]; found {
		panic("bench " + name + " already registered")
	}

	s.benches = append(s.benches, b)
	s.benchIndex[name] = len(s.benches) - 1

	for _, t := range s.tracers {
		tracing.CollectSamples(b, t)
	}

	if s.transferLog != nil {
		b.Buffer().AcceptHook(tracing.NewTransferLogger(s.transferLog, s.engine))
	}

	if s.monitor != nil {
		s.monitor.RegisterComponent(b)

		metrics := tracing.NewMetricsTracer(s.monitor.Registry(), name)
		tracing.CollectSamples(b, metrics)

		b.AcceptHook(s.monitor.CreateProgressBar(name, 0))
	}
}

// Benches returns all registered benches.
func (s *Simulation) Benches() []*verification.Bench {
	return s.benches
}

// BenchByName returns the bench with the given name, or nil.
func (s *Simulation) BenchByName(name string) *verification.Bench {
	i, found := s.benchIndex[name]
	if !found {
		return nil
	}

	return s.benches[i]
}

// Terminate records a report per bench, flushes the tracers, and closes the
// recorder. It returns the first error met while closing.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true

	if s.dbTracer != nil {
		for _, b := range s.benches {
			s.dbTracer.RecordReport(b.Name(), b.Scoreboard())
		}
	}

	var errs []error

	for _, t := range s.tracers {
		t.Terminate()

		if w, ok := t.(interface{ Err() error }); ok && w.Err() != nil {
			errs = append(errs, fmt.Errorf("waveform: %w", w.Err()))
		}
	}

	if s.dataRecorder != nil {
		if err := s.dataRecorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("recorder: %w", err))
		}
	}

	return errors.Join(errs...)
}
