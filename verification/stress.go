package verification

import (
	"fmt"

	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/timing"
)

// StressConfig describes a random traffic run.
type StressConfig struct {
	Seed int64

	// Cycles limits the run, counted after reset. Zero runs until Elements
	// elements have gone through the buffer.
	Cycles uint64

	// Elements limits the number of elements the producer sends. Zero means
	// no limit.
	Elements uint64

	// InputRate and OutputRate are the probabilities that the producer starts
	// an offer and that the consumer is ready, per cycle.
	InputRate  float64
	OutputRate float64

	// WaitForReady makes the producer respect InputReady before raising valid.
	WaitForReady bool

	Width       int
	Freq        timing.FreqInHz
	ResetCycles uint64
}

// DefaultStressConfig returns a config with both sides busy half the time.
func DefaultStressConfig() StressConfig {
	return StressConfig{
		Seed:        1,
		Cycles:      10000,
		InputRate:   0.5,
		OutputRate:  0.5,
		Width:       elasticbuf.DefaultWidth,
		Freq:        100 * timing.MHz,
		ResetCycles: DefaultResetCycles,
	}
}

// Validate checks that the config describes a run that ends.
func (c StressConfig) Validate() error {
	if c.Cycles == 0 && c.Elements == 0 {
		return fmt.Errorf("stress: either cycles or elements must be set")
	}

	if c.InputRate < 0 || c.InputRate > 1 {
		return fmt.Errorf("stress: input rate %v is not in [0, 1]", c.InputRate)
	}

	if c.OutputRate < 0 || c.OutputRate > 1 {
		return fmt.Errorf("stress: output rate %v is not in [0, 1]", c.OutputRate)
	}

	if c.Cycles == 0 && (c.InputRate == 0 || c.OutputRate == 0) {
		return fmt.Errorf("stress: a run with a zero rate needs a cycle limit")
	}

	if c.Width < 1 || c.Width > 64 {
		return fmt.Errorf("stress: width %d is not in [1, 64]", c.Width)
	}

	if c.Freq == 0 {
		return timing.ErrZeroFrequency
	}

	return nil
}

// BuildStressBench creates a bench with a random producer and consumer. The
// consumer uses a seed derived from the producer's so the two are not
// correlated.
func BuildStressBench(
	engine timing.Engine,
	name string,
	c StressConfig,
) (*Bench, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	producer := NewRandomProducer(c.Seed, c.InputRate, c.Elements)
	producer.WaitForReady = c.WaitForReady

	consumer := NewRandomConsumer(c.Seed^0x5DEECE66D, c.OutputRate)

	b := MakeBuilder().
		WithEngine(engine).
		WithFreq(c.Freq).
		WithWidth(c.Width).
		WithProducer(producer).
		WithConsumer(consumer).
		WithResetCycles(c.ResetCycles).
		WithMaxCycles(c.Cycles)

	if c.Elements > 0 {
		b = b.WithStopWhenDone()
	}

	return b.Build(name), nil
}
