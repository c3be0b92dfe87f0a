package verification

import (
	"math/rand"

	"github.com/sarchlab/elasticbuf/elasticbuf"
)

// Offer is what a producer drives on the input side for a cycle.
type Offer struct {
	Valid bool
	Value elasticbuf.Element
}

// A Producer drives the input side of the buffer.
type Producer interface {
	// Offer decides the input signals of the given bench cycle from the
	// outputs registered in the previous cycle.
	Offer(cycle uint64, out elasticbuf.Outputs) Offer

	// Accepted tells the producer that the buffer took its offer.
	Accepted(e elasticbuf.Element)

	// Done tells if the producer has nothing more to send.
	Done() bool
}

// A Resetter asserts reset in some cycles. A producer that also implements
// Resetter can reset the buffer on its own schedule.
type Resetter interface {
	Reset(cycle uint64) bool
}

// SequenceProducer sends a fixed list of elements in order. It holds each
// element on the input until the buffer takes it.
type SequenceProducer struct {
	values []elasticbuf.Element
	next   int

	// WaitForReady makes the producer drop valid while InputReady is low,
	// instead of presenting the element regardless.
	WaitForReady bool
}

// NewSequenceProducer creates a SequenceProducer.
func NewSequenceProducer(values ...elasticbuf.Element) *SequenceProducer {
	return &SequenceProducer{values: values}
}

// Offer presents the next element.
func (p *SequenceProducer) Offer(_ uint64, out elasticbuf.Outputs) Offer {
	if p.Done() {
		return Offer{}
	}

	if p.WaitForReady && !out.InputReady {
		return Offer{}
	}

	return Offer{Valid: true, Value: p.values[p.next]}
}

// Accepted moves to the next element.
func (p *SequenceProducer) Accepted(_ elasticbuf.Element) {
	p.next++
}

// Done tells if all elements were taken.
func (p *SequenceProducer) Done() bool {
	return p.next >= len(p.values)
}

// RandomProducer offers random elements at a given rate. Once it raises valid
// it keeps the same element on the input until the buffer takes it.
type RandomProducer struct {
	rng   *rand.Rand
	rate  float64
	limit uint64

	holding bool
	value   elasticbuf.Element
	sent    uint64

	// WaitForReady makes the producer drop valid while InputReady is low.
	WaitForReady bool
}

// NewRandomProducer creates a RandomProducer. In every idle cycle it starts a
// new offer with probability rate. It stops after limit elements, or never if
// limit is zero.
func NewRandomProducer(seed int64, rate float64, limit uint64) *RandomProducer {
	return &RandomProducer{
		rng:   rand.New(rand.NewSource(seed)),
		rate:  rate,
		limit: limit,
	}
}

// Offer presents the held element or maybe starts a new one.
func (p *RandomProducer) Offer(_ uint64, out elasticbuf.Outputs) Offer {
	if p.Done() {
		return Offer{}
	}

	if !p.holding && p.rng.Float64() < p.rate {
		p.holding = true
		p.value = elasticbuf.Element(p.rng.Uint64())
	}

	if !p.holding || (p.WaitForReady && !out.InputReady) {
		return Offer{}
	}

	return Offer{Valid: true, Value: p.value}
}

// Accepted releases the held element.
func (p *RandomProducer) Accepted(_ elasticbuf.Element) {
	p.holding = false
	p.sent++
}

// Done tells if the producer reached its limit.
func (p *RandomProducer) Done() bool {
	return p.limit > 0 && p.sent >= p.limit
}

// Sent returns the number of elements taken by the buffer.
func (p *RandomProducer) Sent() uint64 {
	return p.sent
}
