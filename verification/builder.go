package verification

import (
	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/naming"
	"github.com/sarchlab/elasticbuf/timing"
)

// DefaultResetCycles is how long a bench holds reset before driving traffic.
const DefaultResetCycles = 10

// Builder builds Benches.
type Builder struct {
	engine       timing.Engine
	freq         timing.FreqInHz
	width        int
	producer     Producer
	consumer     Consumer
	resetCycles  uint64
	maxCycles    uint64
	stopWhenDone bool
}

// MakeBuilder creates a Builder with default parameters: a 100 MHz clock, an
// 8-bit buffer, and 10 cycles of reset.
func MakeBuilder() Builder {
	return Builder{
		freq:        100 * timing.MHz,
		width:       elasticbuf.DefaultWidth,
		resetCycles: DefaultResetCycles,
	}
}

// WithEngine sets the engine that runs the bench.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(freq timing.FreqInHz) Builder {
	b.freq = freq
	return b
}

// WithWidth sets the element width of the buffer.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// WithProducer sets the producer.
func (b Builder) WithProducer(p Producer) Builder {
	b.producer = p
	return b
}

// WithConsumer sets the consumer.
func (b Builder) WithConsumer(c Consumer) Builder {
	b.consumer = c
	return b
}

// WithResetCycles sets the number of cycles reset is held at the start.
func (b Builder) WithResetCycles(n uint64) Builder {
	b.resetCycles = n
	return b
}

// WithMaxCycles stops the bench after n cycles out of reset. Zero means no
// limit.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// WithStopWhenDone stops the bench once the producer is done and the buffer is
// empty.
func (b Builder) WithStopWhenDone() Builder {
	b.stopWhenDone = true
	return b
}

// Build creates the bench and its buffer, named name.Buffer.
func (b Builder) Build(name string) *Bench {
	naming.NameMustBeValid(name)

	if b.engine == nil {
		panic("verification: bench needs an engine")
	}

	if b.producer == nil {
		b.producer = NewSequenceProducer()
	}

	if b.consumer == nil {
		b.consumer = &AlwaysReadyConsumer{}
	}

	if b.maxCycles == 0 && !b.stopWhenDone {
		panic("verification: bench never stops; set max cycles or stop when done")
	}

	bench := &Bench{
		engine:       b.engine,
		producer:     b.producer,
		consumer:     b.consumer,
		scoreboard:   NewScoreboard(),
		resetCycles:  b.resetCycles,
		maxCycles:    b.maxCycles,
		stopWhenDone: b.stopWhenDone,
	}

	if r, ok := b.producer.(Resetter); ok {
		bench.resetter = r
	}

	bench.TickingComponent = timing.NewTickingComponent(
		name, b.engine, b.freq, bench)
	bench.buffer = elasticbuf.MakeBuilder().
		WithWidth(b.width).
		Build(naming.BuildName(name, "Buffer"))

	return bench
}
