package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/elasticbuf/datarecording"
	"github.com/sarchlab/elasticbuf/timing"
	"github.com/sarchlab/elasticbuf/verification"
)

// Table names written by the DBTracer.
const (
	SignalTable   = "signals"
	TransferTable = "transfers"
	ReportTable   = "runs"
)

// SignalEntry is one row of the signal table: the handshake signals of a
// cycle plus the committed slots.
type SignalEntry struct {
	Bench       string
	Cycle       uint64
	Time        float64
	Reset       bool
	InputValid  bool
	InputValue  uint64
	OutputReady bool
	OutputValid bool
	OutputValue uint64
	InputReady  bool
	Occupancy   int
	MainValid   bool
	MainValue   uint64
	OverValid   bool
	OverValue   uint64
}

// TransferEntry is one completed handshake.
type TransferEntry struct {
	Bench string
	Cycle uint64
	Time  float64
	Kind  string
	Value uint64
}

// ReportEntry summarizes a run.
type ReportEntry struct {
	Bench              string
	Cycles             uint64
	ResetCycles        uint64
	Accepted           uint64
	Drained            uint64
	Rejected           uint64
	Discarded          uint64
	BackpressureCycles uint64
	MaxOccupancy       int
	Throughput         float64
	Violations         int
}

// DBTracer stores samples into a DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	freq    timing.FreqInHz

	signals    bool
	terminated bool
}

// NewDBTracer creates the tables and returns a tracer that writes into them.
// When signals is false, only transfers are recorded. The tracer terminates
// at exit if it was not terminated before.
func NewDBTracer(
	backend datarecording.DataRecorder,
	freq timing.FreqInHz,
	signals bool,
) *DBTracer {
	if signals {
		backend.CreateTable(SignalTable, SignalEntry{})
	}

	backend.CreateTable(TransferTable, TransferEntry{})
	backend.CreateTable(ReportTable, ReportEntry{})

	t := &DBTracer{
		backend: backend,
		freq:    freq,
		signals: signals,
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// TraceSample records the sample.
func (t *DBTracer) TraceSample(s verification.Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	now := float64(t.freq.CyclesToSec(s.Time))

	if t.signals {
		t.backend.InsertData(SignalTable, signalEntry(s, now))
	}

	if s.Transfer.Drained {
		t.backend.InsertData(TransferTable, TransferEntry{
			Bench: s.Bench,
			Cycle: s.Cycle,
			Time:  now,
			Kind:  "drain",
			Value: uint64(s.Transfer.DrainedValue),
		})
	}

	if s.Transfer.Accepted {
		t.backend.InsertData(TransferTable, TransferEntry{
			Bench: s.Bench,
			Cycle: s.Cycle,
			Time:  now,
			Kind:  "accept",
			Value: uint64(s.Transfer.AcceptedValue),
		})
	}
}

func signalEntry(s verification.Sample, now float64) SignalEntry {
	main, mainValid := s.State.Main.Value()
	over, overValid := s.State.Overflow.Value()

	return SignalEntry{
		Bench:       s.Bench,
		Cycle:       s.Cycle,
		Time:        now,
		Reset:       s.Inputs.Reset,
		InputValid:  s.Inputs.InputValid,
		InputValue:  uint64(s.Inputs.InputValue),
		OutputReady: s.Inputs.OutputReady,
		OutputValid: s.Outputs.OutputValid,
		OutputValue: uint64(s.Outputs.OutputValue),
		InputReady:  s.Outputs.InputReady,
		Occupancy:   s.State.Size(),
		MainValid:   mainValid,
		MainValue:   uint64(main),
		OverValid:   overValid,
		OverValue:   uint64(over),
	}
}

// RecordReport stores the summary of a bench run.
func (t *DBTracer) RecordReport(bench string, sb *verification.Scoreboard) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := sb.Report()

	t.backend.InsertData(ReportTable, ReportEntry{
		Bench:              bench,
		Cycles:             r.Cycles,
		ResetCycles:        r.ResetCycles,
		Accepted:           r.Accepted,
		Drained:            r.Drained,
		Rejected:           r.Rejected,
		Discarded:          r.Discarded,
		BackpressureCycles: r.BackpressureCycles,
		MaxOccupancy:       r.MaxOccupancy,
		Throughput:         r.Throughput(),
		Violations:         len(sb.Violations()),
	})
}

// Terminate flushes the recorder.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.terminated = true
	t.backend.Flush()
}
