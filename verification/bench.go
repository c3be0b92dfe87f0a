package verification

import (
	"sync"

	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/hooking"
	"github.com/sarchlab/elasticbuf/timing"
)

// HookPosSample fires at the end of every bench cycle. The item is a Sample.
var HookPosSample = &hooking.HookPos{Name: "Bench Sample"}

// Bench is the clocked environment of one elastic buffer.
type Bench struct {
	*timing.TickingComponent

	engine     timing.Engine
	buffer     *elasticbuf.Buffer
	producer   Producer
	consumer   Consumer
	resetter   Resetter
	scoreboard *Scoreboard

	resetCycles  uint64
	maxCycles    uint64
	stopWhenDone bool

	cycle uint64

	lastLock  sync.Mutex
	last      Sample
	hasSample bool
}

// Buffer returns the buffer under test.
func (b *Bench) Buffer() *elasticbuf.Buffer {
	return b.buffer
}

// Scoreboard returns the scoreboard that checks the buffer.
func (b *Bench) Scoreboard() *Scoreboard {
	return b.scoreboard
}

// Cycle returns the number of cycles run so far.
func (b *Bench) Cycle() uint64 {
	return b.cycle
}

// LastSample returns the most recent sample. It is safe to call while the
// engine runs in another goroutine.
func (b *Bench) LastSample() (Sample, bool) {
	b.lastLock.Lock()
	defer b.lastLock.Unlock()

	return b.last, b.hasSample
}

// Start schedules the first cycle. On an engine that already ran, the bench
// starts in the cycle after the current one.
func (b *Bench) Start() {
	if b.engine.CurrentTime() > 0 {
		b.TickLater()
		return
	}

	b.TickNow()
}

// Run starts the bench, runs the engine to the end, and returns the first
// violation the scoreboard found, if any.
func (b *Bench) Run() error {
	b.Start()

	if err := b.engine.Run(); err != nil {
		return err
	}

	return b.scoreboard.Err()
}

// Tick runs one cycle. It reports whether another cycle should follow.
func (b *Bench) Tick() bool {
	sample := b.runCycle()

	b.scoreboard.Check(sample)
	b.setLast(sample)

	if b.NumHooks() > 0 {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosSample,
			Item:   sample,
		})
	}

	b.cycle++

	return !b.finished()
}

func (b *Bench) runCycle() Sample {
	out := b.buffer.Outputs()
	in := elasticbuf.Inputs{Reset: b.inReset()}

	// The producer and consumer start once the initial reset is over. A reset
	// asserted later does not stop them, the buffer ignores what they drive.
	if b.cycle >= b.resetCycles {
		offer := b.producer.Offer(b.cycle, out)
		in.InputValid = offer.Valid
		in.InputValue = offer.Value
		in.OutputReady = b.consumer.Ready(b.cycle, out)
	}

	transfer := b.buffer.Tick(in)

	if transfer.Drained {
		b.consumer.Drained(transfer.DrainedValue)
	}

	if transfer.Accepted {
		b.producer.Accepted(transfer.AcceptedValue)
	}

	return Sample{
		Bench:    b.Name(),
		Cycle:    b.cycle,
		Time:     b.CurrentTime(),
		Inputs:   in,
		Outputs:  out,
		Transfer: transfer,
		State:    b.buffer.State(),
		Next:     b.buffer.Outputs(),
	}
}

func (b *Bench) inReset() bool {
	if b.cycle < b.resetCycles {
		return true
	}

	return b.resetter != nil && b.resetter.Reset(b.cycle)
}

func (b *Bench) finished() bool {
	if b.maxCycles > 0 && b.cycle >= b.resetCycles+b.maxCycles {
		return true
	}

	return b.stopWhenDone &&
		b.cycle > b.resetCycles &&
		b.producer.Done() &&
		b.buffer.Size() == 0
}

func (b *Bench) setLast(s Sample) {
	b.lastLock.Lock()
	b.last = s
	b.hasSample = true
	b.lastLock.Unlock()
}
