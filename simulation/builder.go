package simulation

import (
	"io"
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/elasticbuf/datarecording"
	"github.com/sarchlab/elasticbuf/monitoring"
	"github.com/sarchlab/elasticbuf/timing"
	"github.com/sarchlab/elasticbuf/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	freq timing.FreqInHz

	traceDB      bool
	traceSignals bool
	outputName   string

	waveform io.Writer
	width    int

	monitorOn   bool
	monitorPort int
	openBrowser bool

	transferLog *log.Logger
	eventLog    *log.Logger
}

// MakeBuilder creates a builder for a 100 MHz simulation without recording,
// monitoring, or logging.
func MakeBuilder() Builder {
	return Builder{
		freq: 100 * timing.MHz,
	}
}

// WithFreq sets the clock of the benches.
func (b Builder) WithFreq(freq timing.FreqInHz) Builder {
	b.freq = freq
	return b
}

// WithTraceDB records transfers into an SQLite database named name.sqlite3.
// An empty name picks a unique one. With signals set, every cycle is recorded
// as well.
func (b Builder) WithTraceDB(name string, signals bool) Builder {
	b.traceDB = true
	b.outputName = name
	b.traceSignals = signals

	return b
}

// WithWaveform dumps the signals of a buffer of the given width into w.
func (b Builder) WithWaveform(w io.Writer, width int) Builder {
	b.waveform = w
	b.width = width

	return b
}

// WithMonitor serves the simulation over HTTP. Port zero picks a free port.
func (b Builder) WithMonitor(port int, openBrowser bool) Builder {
	b.monitorOn = true
	b.monitorPort = port
	b.openBrowser = openBrowser

	return b
}

// WithTransferLog logs the transfers of every buffer.
func (b Builder) WithTransferLog(logger *log.Logger) Builder {
	b.transferLog = logger
	return b
}

// WithEventLog logs every event the engine dispatches.
func (b Builder) WithEventLog(logger *log.Logger) Builder {
	b.eventLog = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.freq == 0 {
		panic(timing.ErrZeroFrequency)
	}

	if b.waveform != nil && (b.width < 1 || b.width > 64) {
		panic("waveform width must be between 1 and 64")
	}
}

// Build builds the simulation. When a monitor is requested, it starts
// serving right away.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:          xid.New().String(),
		engine:      timing.NewSerialEngine(),
		freq:        b.freq,
		benchIndex:  make(map[string]int),
		transferLog: b.transferLog,
	}

	if b.eventLog != nil {
		s.engine.AcceptHook(timing.NewEventLogger(b.eventLog))
	}

	if b.traceDB {
		outputPath := b.outputName
		if outputPath == "" {
			outputPath = "elasticbuf_sim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.dbTracer = tracing.NewDBTracer(s.dataRecorder, b.freq, b.traceSignals)
		s.tracers = append(s.tracers, s.dbTracer)
	}

	if b.waveform != nil {
		s.tracers = append(s.tracers,
			tracing.NewWaveformWriter(b.waveform, "elasticbuf", b.freq, b.width))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().WithPortNumber(b.monitorPort)
		if b.openBrowser {
			s.monitor.WithBrowser()
		}

		s.monitor.RegisterEngine(s.engine)
		s.monitorURL = s.monitor.StartServer()
	}

	return s
}
