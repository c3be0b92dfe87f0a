package verification

import (
	"github.com/sarchlab/elasticbuf/elasticbuf"
	"github.com/sarchlab/elasticbuf/timing"
)

// Sample is the frozen picture of one bench cycle.
type Sample struct {
	// Bench is the name of the bench that took the sample.
	Bench string

	// Cycle counts the bench's cycles from zero, reset cycles included.
	Cycle uint64

	// Time is the engine time of the cycle.
	Time timing.VTimeInCycle

	// Inputs are the signals driven into the buffer during the cycle.
	Inputs elasticbuf.Inputs

	// Outputs are the registered outputs the producer and consumer saw.
	Outputs elasticbuf.Outputs

	// Transfer tells which handshakes completed.
	Transfer elasticbuf.Transfer

	// State and Next are committed at the end of the cycle. Next is what the
	// outputs read during the following cycle.
	State elasticbuf.State
	Next  elasticbuf.Outputs
}

// Rejected tells if the producer offered an element that was not taken
// because the buffer was not ready.
func (s Sample) Rejected() bool {
	return !s.Inputs.Reset && s.Inputs.InputValid && !s.Outputs.InputReady
}

// Backpressured tells if the consumer refused an available element.
func (s Sample) Backpressured() bool {
	return !s.Inputs.Reset && s.Outputs.OutputValid && !s.Inputs.OutputReady
}
