package verification

import (
	"math/rand"

	"github.com/sarchlab/elasticbuf/elasticbuf"
)

// A Consumer drives the output side of the buffer.
type Consumer interface {
	// Ready decides whether the consumer takes the output element in the
	// given bench cycle.
	Ready(cycle uint64, out elasticbuf.Outputs) bool

	// Drained hands over the element the consumer took.
	Drained(e elasticbuf.Element)
}

// Sink keeps the elements a consumer received.
type Sink struct {
	received []elasticbuf.Element
}

// Drained records the element.
func (s *Sink) Drained(e elasticbuf.Element) {
	s.received = append(s.received, e)
}

// Received returns the elements received so far, in order.
func (s *Sink) Received() []elasticbuf.Element {
	return s.received
}

// AlwaysReadyConsumer takes an element every cycle.
type AlwaysReadyConsumer struct {
	Sink
}

// Ready returns true.
func (c *AlwaysReadyConsumer) Ready(uint64, elasticbuf.Outputs) bool {
	return true
}

// RandomConsumer is ready with a given probability every cycle.
type RandomConsumer struct {
	Sink

	rng  *rand.Rand
	rate float64
}

// NewRandomConsumer creates a RandomConsumer.
func NewRandomConsumer(seed int64, rate float64) *RandomConsumer {
	return &RandomConsumer{
		rng:  rand.New(rand.NewSource(seed)),
		rate: rate,
	}
}

// Ready flips a biased coin.
func (c *RandomConsumer) Ready(uint64, elasticbuf.Outputs) bool {
	return c.rng.Float64() < c.rate
}
