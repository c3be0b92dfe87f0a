package elasticbuf

import (
	"github.com/sarchlab/elasticbuf/hooking"
)

// Capacity is the number of elements the buffer can hold.
const Capacity = 2

var (
	// HookPosAccept fires when the producer handshake completes. The item is
	// the accepted Element.
	HookPosAccept = &hooking.HookPos{Name: "ElasticBuffer Accept"}

	// HookPosDrain fires when the consumer handshake completes. The item is
	// the drained Element.
	HookPosDrain = &hooking.HookPos{Name: "ElasticBuffer Drain"}

	// HookPosReset fires on every cycle that samples reset asserted. The item
	// is the State that was discarded.
	HookPosReset = &hooking.HookPos{Name: "ElasticBuffer Reset"}
)

// Buffer is a two-stage elastic buffer with registered outputs. It is owned
// by whoever drives its clock and is not safe for concurrent use.
type Buffer struct {
	*hooking.HookableBase

	name  string
	width int
	mask  Element

	state State

	// Output registers. They only differ from Derive(state) after a reset.
	outputValid bool
	inputReady  bool
}

// Name returns the name of the buffer.
func (b *Buffer) Name() string {
	return b.name
}

// Width returns the number of bits of an element.
func (b *Buffer) Width() int {
	return b.width
}

// Capacity returns the number of elements the buffer can hold.
func (b *Buffer) Capacity() int {
	return Capacity
}

// Size returns the number of elements in the buffer.
func (b *Buffer) Size() int {
	return b.state.Size()
}

// State returns a copy of the committed state.
func (b *Buffer) State() State {
	return b.state
}

// Outputs returns the registered outputs, as seen by the producer and the
// consumer during the current cycle.
func (b *Buffer) Outputs() Outputs {
	out := Outputs{
		OutputValid: b.outputValid,
		InputReady:  b.inputReady,
	}

	if b.outputValid {
		out.OutputValue = b.state.Main.value
	}

	return out
}

// Tick advances the buffer by one cycle.
//
// When the inputs carry reset, the state is cleared and both output registers
// are forced low; nothing transfers. Otherwise the handshakes are decided from
// the output registers, the next state is committed, and the registers are
// reloaded from it. The first cycle after reset is released still sees the low
// registers, so it cannot transfer anything either.
//
// An element offered while InputReady is low is ignored.
func (b *Buffer) Tick(in Inputs) Transfer {
	if in.Reset {
		b.reset()
		return Transfer{}
	}

	accept := in.InputValid && b.inputReady
	drain := b.outputValid && in.OutputReady

	next, transfer := step(b.state, accept, drain, in.InputValue&b.mask)
	next.mustBeValid()

	b.state = next

	out := Derive(next)
	b.outputValid = out.OutputValid
	b.inputReady = out.InputReady

	b.invokeTransferHooks(transfer)

	return transfer
}

func (b *Buffer) reset() {
	discarded := b.state

	b.state = State{}
	b.outputValid = false
	b.inputReady = false

	if b.NumHooks() > 0 {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosReset,
			Item:   discarded,
		})
	}
}

func (b *Buffer) invokeTransferHooks(transfer Transfer) {
	if b.NumHooks() == 0 {
		return
	}

	if transfer.Drained {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosDrain,
			Item:   transfer.DrainedValue,
		})
	}

	if transfer.Accepted {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosAccept,
			Item:   transfer.AcceptedValue,
		})
	}
}
